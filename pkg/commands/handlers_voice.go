package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const notInVoiceText = "I'm not in a voice channel!"

func vcJoinCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)
	userLine := "Join my voice channel please."

	channelID := req.Meta("voice_channel_id")
	if channelID == "" {
		return recorded(Text("You're not in a voice channel!"), userLine), nil
	}
	if err := rt.Voice.Join(req.Meta("guild_id"), channelID); err != nil {
		return Response{}, err
	}
	return Response{Record: true, RecordUser: userLine, RecordBot: "If you insist."}, nil
}

func vcLeaveCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)
	userLine := "Leave the current voice channel please."

	guildID := req.Meta("guild_id")
	if !rt.Voice.Connected(guildID) {
		return recorded(Text(notInVoiceText), userLine), nil
	}
	if err := rt.Voice.Leave(guildID); err != nil {
		return Response{}, err
	}
	return Response{Record: true, RecordUser: userLine, RecordBot: "If you insist."}, nil
}

func vcSoundCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)
	userLine := "Hey, play that sound in the voice channel."

	guildID := req.Meta("guild_id")
	if !rt.Voice.Connected(guildID) {
		return recorded(Text(notInVoiceText), userLine), nil
	}

	name := firstArg(req)
	if name == "" {
		return recorded(Text("%s", pickText(soundNotProvidedTexts)), userLine), nil
	}

	userLine = fmt.Sprintf("Can you play the %s sound in the voice channel?", name)
	candidates := rt.Sounds.Candidates(name)
	if len(candidates) == 0 {
		return recorded(Text("%s", pickText(soundNotFoundTexts)), userLine), nil
	}
	if len(candidates) > 1 {
		return recorded(Text("There are %d potential matches: %s",
			len(candidates), joinMatchNames(candidates)), userLine), nil
	}

	match := candidates[0]
	if err := rt.Voice.Play(ctx, guildID, req.Meta("voice_channel_id"), match.Path); err != nil {
		return Response{}, err
	}
	bumpPlaycount(ctx, rt, req, match.Name)

	return Response{Record: true, RecordUser: userLine, RecordBot: "Sure, here you go."}, nil
}

func vcRandomCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)
	userLine := "Can you play a random sound for me?"

	guildID := req.Meta("guild_id")
	if !rt.Voice.Connected(guildID) {
		return recorded(Text(notInVoiceText), userLine), nil
	}

	match, err := rt.Sounds.Random(newRNG())
	if err != nil {
		return Response{}, err
	}
	if err := rt.Voice.Play(ctx, guildID, req.Meta("voice_channel_id"), match.Path); err != nil {
		return Response{}, err
	}
	bumpPlaycount(ctx, rt, req, match.Name)

	return Response{
		Record:     true,
		RecordUser: userLine,
		RecordBot:  fmt.Sprintf("Sure, I chose the sound '%s'.", match.Name),
	}, nil
}

func vcStopCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)

	rt.Voice.Stop(req.Meta("guild_id"))
	return Response{
		Record:     true,
		RecordUser: "Stop making all that noise please.",
		RecordBot:  "If you insist.",
	}, nil
}

func vcPauseCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)
	userLine := "Please toggle pause on the voice stream."

	guildID := req.Meta("guild_id")
	if !rt.Voice.Connected(guildID) {
		return recorded(Text(notInVoiceText), userLine), nil
	}
	if _, err := rt.Voice.Pause(guildID); err != nil {
		return recorded(Text("Nothing is playing!"), userLine), nil
	}
	return Response{Record: true, RecordUser: userLine, RecordBot: "Done."}, nil
}

func vcStreamCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)
	userLine := "Can you play this stream for me in the voice chat?"

	guildID := req.Meta("guild_id")
	if !rt.Voice.Connected(guildID) {
		return recorded(Text(notInVoiceText), userLine), nil
	}

	url := req.ArgString()
	if url == "" {
		return recorded(Text("You didn't give me a stream URL."), userLine), nil
	}

	if err := rt.Voice.Play(ctx, guildID, req.Meta("voice_channel_id"), url); err != nil {
		return recorded(Text("Couldn't play audio from that URL!"), userLine), nil
	}
	return recorded(Text("Now playing: %s", url), userLine), nil
}

func vcSayCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)

	guildID := req.Meta("guild_id")
	if !rt.Voice.Connected(guildID) {
		return recorded(Text(notInVoiceText), "Hey, can you say that in the voice channel?"), nil
	}

	prompt, userLine, errResp := ttsPrompt(rt, req, "Can you say this for me in the voice channel: %s")
	if errResp != nil {
		return *errResp, nil
	}

	if !rt.TTS.Available() {
		return recorded(Text("My voice synthesizer is not configured."), userLine), nil
	}

	audio, err := rt.TTS.Synthesize(ctx, prompt)
	if err != nil {
		return recorded(Text("%s", err.Error()), userLine), nil
	}

	path := filepath.Join(rt.Config.TempPath(), uuid.NewString()+".mp3")
	if err := os.WriteFile(path, audio, 0644); err != nil {
		return Response{}, err
	}
	if err := rt.Voice.Play(ctx, guildID, req.Meta("voice_channel_id"), path); err != nil {
		return Response{}, err
	}

	return Response{
		Record:     true,
		RecordUser: userLine,
		RecordBot:  "Fine, I'll say your stupid phrase.",
	}, nil
}
