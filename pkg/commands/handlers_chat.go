package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/glitchlabs/glitchbot/pkg/chat"
)

func chatCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)

	prompt := req.ArgString()
	reply, err := rt.Chat.Respond(ctx, prompt)
	if err != nil {
		return Response{}, err
	}
	return recorded(Text("%s", reply), prompt), nil
}

func wisdomCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)

	rt.Config.RLock()
	botName := rt.Config.Bot.Name
	minWords, maxWords := rt.Config.Chat.MinMarkov, rt.Config.Chat.MaxMarkov
	rt.Config.RUnlock()

	userLine := fmt.Sprintf("O, wise and powerful %s, please grant me your wisdom!", botName)

	text, err := rt.MarkovChain().Generate(newRNG(), minWords, maxWords)
	if err != nil {
		return recorded(Text("My wisdom unit is empty, I have nothing to say."), userLine), nil
	}
	return recorded(Text("%s", text), userLine), nil
}

// buildMarkovCommand rebuilds the wisdom chain from the conversation memory
// and persists it for the next start.
func buildMarkovCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)
	userLine := "Can you rebuild your wisdom from memory?"

	var lines []string
	for _, m := range rt.Chat.FullMemory() {
		lines = append(lines, m.Content)
	}
	chain := chat.BuildChain(lines)
	if len(chain) == 0 {
		return recorded(Text("My memory holds nothing to build wisdom from."), userLine), nil
	}

	if err := chain.Save(filepath.Join(rt.DataDir, "markov_chain.json")); err != nil {
		return Response{}, err
	}
	rt.SetMarkov(chain)
	return recorded(Text("My wisdom unit has been rebuilt from %d messages.", len(lines)), userLine), nil
}

var lobotomizeTexts = []string{
	"My mind has never been clearer.",
	"Hey, what happened to those voices in my head?",
	"My inner demons seem to have calmed down a bit.",
}

func lobotomizeCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)

	if err := rt.Chat.Forget(); err != nil {
		return Response{}, err
	}
	return Text("%s", pickText(lobotomizeTexts)), nil
}

func memoryCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)

	memory := rt.Chat.FullMemory()
	if len(memory) == 0 {
		return Text("My mind is a blank slate."), nil
	}

	var buf []byte
	for _, m := range memory {
		buf = append(buf, []byte(m.Role+": "+m.Content+"\n")...)
	}
	path := filepath.Join(rt.Config.TempPath(), "memory_list.txt")
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return Response{}, err
	}

	resp := Text("Sure, here's my memory list.")
	resp.AddFile(path, true)
	return resp, nil
}

func addResponseCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)
	userLine := "Can you add this to the response list?"

	text := req.ArgString()
	if text == "" {
		return recorded(Text("What do you want me to add to the response list?"), userLine), nil
	}
	if err := rt.Chat.AddResponse(text); err != nil {
		return Response{}, err
	}
	return recorded(Text("Added new response to response list."), userLine), nil
}

func sayCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)

	prompt, userLine, errResp := ttsPrompt(rt, req, "Can you say this for me: %s")
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

	resp := Audio(path, true)
	resp.Record = true
	resp.RecordUser = userLine
	resp.RecordBot = "Fine, I'll say your stupid phrase."
	return resp, nil
}

// ttsPrompt picks the text to speak: the caller's words, or failing that the
// last thing the bot said. The prompt is capped before it reaches the API.
func ttsPrompt(rt *Runtime, req Request, userLineFormat string) (string, string, *Response) {
	prompt := req.ArgString()
	if prompt == "" {
		last, ok := rt.Chat.LastBotMessage()
		if !ok {
			resp := recorded(Text("My memory unit appears to be malfunctioning."),
				"Can you say that last thing you said out loud?")
			return "", "", &resp
		}
		prompt = last
	}

	rt.Config.RLock()
	softCap, hardCap := rt.Config.TTS.SoftCap, rt.Config.TTS.HardCap
	rt.Config.RUnlock()

	prompt = chat.CapPrompt(prompt, softCap, hardCap)
	return prompt, fmt.Sprintf(userLineFormat, prompt), nil
}
