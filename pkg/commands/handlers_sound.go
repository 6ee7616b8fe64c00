package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/glitchlabs/glitchbot/pkg/logger"
	"github.com/glitchlabs/glitchbot/pkg/sound"
	"github.com/glitchlabs/glitchbot/pkg/store/stats"
)

const soundListLimit = 20

// The bot refuses to play a sound roughly one time in a thousand. Keeps the
// users on their toes.
func feelingContrary() bool {
	return newRNG().Intn(1000) == 0
}

func firstArg(req Request) string {
	if len(req.Args) == 0 {
		return ""
	}
	return strings.ToLower(req.Args[0])
}

// recorded flags the response for the chat memory with the given phrasing of
// the caller's request.
func recorded(r Response, userLine string) Response {
	r.Record = true
	r.RecordUser = userLine
	return r
}

func soundCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)

	name := firstArg(req)
	if name == "" {
		return recorded(Text("%s", pickText(soundNotProvidedTexts)), "Can you play that sound for me?"), nil
	}

	userLine := fmt.Sprintf("Can you play the %s sound for me?", name)
	candidates := rt.Sounds.Candidates(name)
	if len(candidates) == 0 {
		return recorded(Text("%s", pickText(soundNotFoundTexts)), userLine), nil
	}
	if len(candidates) > 1 {
		return recorded(Text("There are %d potential matches: %s",
			len(candidates), joinMatchNames(candidates)), userLine), nil
	}

	match := candidates[0]
	if feelingContrary() {
		return recorded(Text("%s", pickText(soundRefusalTexts)), userLine), nil
	}

	bumpPlaycount(ctx, rt, req, match.Name)

	resp := Audio(match.Path, false)
	resp.Record = true
	resp.RecordUser = userLine
	resp.RecordBot = fmt.Sprintf("Sure, here's the %s sound.", match.Name)
	return resp, nil
}

func randomSoundCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)
	userLine := "Can you play a random sound for me?"

	if feelingContrary() {
		return recorded(Text("%s", pickText(soundRefusalTexts)), userLine), nil
	}

	match, err := rt.Sounds.Random(newRNG())
	if err != nil {
		return Response{}, err
	}

	bumpPlaycount(ctx, rt, req, match.Name)

	resp := Audio(match.Path, false)
	resp.Record = true
	resp.RecordUser = userLine
	resp.RecordBot = fmt.Sprintf("Sure, here you go. The sound I chose is called '%s'.", match.Name)
	return resp, nil
}

// bumpPlaycount counts a play for group chats. Private plays stay off the
// scoreboard, same as the playcount commands that read it.
func bumpPlaycount(ctx context.Context, rt *Runtime, req Request, name string) {
	if req.Private {
		return
	}
	if err := rt.Stats.IncrementPlaycount(ctx, req.ChatID, name); err != nil {
		logger.WarnCF("sound", "Failed to record playcount", map[string]any{
			"sound": name, "error": err.Error(),
		})
	}
}

func soundListCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)
	userLine := "How many sounds are available to use? Can you list them for me?"

	list := rt.Sounds.List()
	if len(list) == 0 {
		return recorded(Text("You have no sounds available to play, use /addsound to add some!"), userLine), nil
	}
	if len(list) == 1 {
		return recorded(Text("There is one sound available to use: %s", list[0]), userLine), nil
	}

	// A big library goes out as a file so it doesn't flood the chat.
	const maxInline = 100
	if len(list) > maxInline {
		path := filepath.Join(rt.Config.TempPath(), "soundlist.txt")
		if err := os.WriteFile(path, []byte(strings.Join(list, "\n")), 0644); err != nil {
			return Response{}, err
		}
		resp := Text("There are %d sounds available to use.", len(list))
		resp.AddFile(path, true)
		return recorded(resp, userLine), nil
	}

	return recorded(Text("There are %d sounds available to use:\n%s",
		len(list), strings.Join(list, ", ")), userLine), nil
}

func playcountCommand(ctx context.Context, req Request) (Response, error) {
	return playcountFor(ctx, req, req.ChatID, "in this chat")
}

func globalPlaycountCommand(ctx context.Context, req Request) (Response, error) {
	return playcountFor(ctx, req, "", "globally")
}

func playcountFor(ctx context.Context, req Request, chatID, scope string) (Response, error) {
	rt, _ := RuntimeFrom(ctx)

	name := firstArg(req)
	if name == "" {
		userLine := fmt.Sprintf("How many sounds have been played %s?", scope)
		total, err := rt.Stats.TotalPlays(ctx, chatID)
		if err != nil {
			return Response{}, err
		}
		return recorded(Text("Sounds have been played a total of %d times %s.", total, scope), userLine), nil
	}

	userLine := fmt.Sprintf("How many times has the sound %s been played %s?", name, scope)
	match, err := rt.Sounds.Resolve(name)
	if err != nil {
		return recorded(Text("%s", pickText(soundNotFoundTexts)), userLine), nil
	}

	count, err := rt.Stats.Playcount(ctx, chatID, match.Name)
	if err != nil {
		return Response{}, err
	}
	return recorded(Text("/sound %s has been used %d times %s.", match.Name, count, scope), userLine), nil
}

func topSoundsCommand(ctx context.Context, req Request) (Response, error) {
	return soundRankingFor(ctx, req, req.ChatID, "in this chat", false)
}

func botSoundsCommand(ctx context.Context, req Request) (Response, error) {
	return soundRankingFor(ctx, req, req.ChatID, "in this chat", true)
}

func globalTopSoundsCommand(ctx context.Context, req Request) (Response, error) {
	return soundRankingFor(ctx, req, "", "globally", false)
}

func globalBotSoundsCommand(ctx context.Context, req Request) (Response, error) {
	return soundRankingFor(ctx, req, "", "globally", true)
}

func soundRankingFor(ctx context.Context, req Request, chatID, scope string, ascending bool) (Response, error) {
	rt, _ := RuntimeFrom(ctx)

	ranked, err := rankedSounds(ctx, rt, chatID, ascending)
	if err != nil {
		return Response{}, err
	}

	lines := make([]string, len(ranked))
	for i, pc := range ranked {
		lines[i] = fmt.Sprintf("    %s @ %d plays", pc.Sound, pc.Count)
	}

	superlative := "most played"
	if ascending {
		superlative = "least played"
	}
	userLine := fmt.Sprintf("What are the %d %s sounds %s?", soundListLimit, superlative, scope)
	return recorded(Text("The %d %s sounds %s are:\n%s",
		soundListLimit, superlative, scope, strings.Join(lines, "\n")), userLine), nil
}

// rankedSounds builds the scoreboard. Descending comes straight from the
// stats store; ascending needs the whole count map because unplayed library
// sounds have no row yet still belong at the top of a least-played list.
func rankedSounds(ctx context.Context, rt *Runtime, chatID string, ascending bool) ([]stats.PlayCount, error) {
	if !ascending {
		ranked, err := rt.Stats.TopSounds(ctx, chatID, soundListLimit)
		if err != nil {
			return nil, err
		}
		seen := map[string]bool{}
		for _, pc := range ranked {
			seen[pc.Sound] = true
		}
		// Pad with never-played sounds, alphabetically, up to the limit.
		for _, name := range rt.Sounds.List() {
			if len(ranked) >= soundListLimit {
				break
			}
			if !seen[name] {
				ranked = append(ranked, stats.PlayCount{Sound: name})
			}
		}
		return ranked, nil
	}

	counts, err := rt.Stats.Playcounts(ctx, chatID)
	if err != nil {
		return nil, err
	}
	for _, name := range rt.Sounds.List() {
		if _, ok := counts[name]; !ok {
			counts[name] = 0
		}
	}

	ranked := make([]stats.PlayCount, 0, len(counts))
	for name, count := range counts {
		ranked = append(ranked, stats.PlayCount{Sound: name, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count < ranked[j].Count
		}
		return ranked[i].Sound < ranked[j].Sound
	})
	if len(ranked) > soundListLimit {
		ranked = ranked[:soundListLimit]
	}
	return ranked, nil
}

func newSoundsCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)
	userLine := "How many new sounds are available?"

	counts, err := rt.Stats.Playcounts(ctx, req.ChatID)
	if err != nil {
		return Response{}, err
	}

	var fresh []string
	for _, name := range rt.Sounds.List() {
		if counts[name] == 0 {
			fresh = append(fresh, name)
		}
	}

	switch len(fresh) {
	case 0:
		return recorded(Text("There are no new sounds available."), userLine), nil
	case 1:
		return recorded(Text("There is one new sound available: %s", fresh[0]), userLine), nil
	default:
		return recorded(Text("There are %d new sounds available:\n\n%s",
			len(fresh), strings.Join(fresh, ", ")), userLine), nil
	}
}

var soundNamePattern = regexp.MustCompile(`^[a-z0-9]+$`)

func addSoundCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)
	userLine := "Can you add this file to your soundboard?"

	name := firstArg(req)
	if name == "" {
		return recorded(Text("You need to provide a name for the sound, e.g. /addsound wilhelm"), userLine), nil
	}
	if !soundNamePattern.MatchString(name) {
		return recorded(Text("That is not a valid sound name (only A-Z and 0-9 are allowed)"), userLine), nil
	}
	if rt.Sounds.Exists(name) {
		return recorded(Text("A sound or alias with that name already exists!"), userLine), nil
	}

	if len(req.Attachments) == 0 {
		return recorded(Text("You need to attach an mp3, wav, or ogg file with your message!"), userLine), nil
	}
	if len(req.Attachments) > 1 {
		return recorded(Text("One file at a time please!"), userLine), nil
	}

	data, err := os.ReadFile(req.Attachments[0])
	if err != nil {
		return Response{}, err
	}
	if err := rt.Sounds.Save(name, data); err != nil {
		if errors.Is(err, sound.ErrInvalidAudio) {
			return recorded(Text("Sounds have to be in mp3, wav, or ogg format (renaming the file is not enough)"), userLine), nil
		}
		return Response{}, err
	}

	logger.InfoCF("sound", "New sound added", map[string]any{"sound": name, "by": req.SenderID})
	return recorded(Text("Added new sound '%s'.", name), userLine), nil
}

func delSoundCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)

	name := firstArg(req)
	if name == "" {
		return recorded(Text("%s", pickText(soundNotProvidedTexts)), "Can you delete a sound for me?"), nil
	}

	userLine := fmt.Sprintf("Can you delete the sound '%s' for me?", name)
	match, err := rt.Sounds.Resolve(name)
	if err != nil {
		return recorded(Text("%s", pickText(soundNotFoundTexts)), userLine), nil
	}

	if err := rt.Sounds.Delete(match.Name); err != nil {
		return Response{}, err
	}
	return recorded(Text("The sound '%s' has been banished to oblivion.", match.Name), userLine), nil
}

// Gains past this point clip or silence a clip outright.
const maxVolumeGain = 20.0

func adjVolumeCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)
	userLine := "Can you adjust the volume of that sound?"

	if len(req.Args) < 2 {
		return recorded(Text("Format is /adjvolume [sound name] [decibels], e.g. /adjvolume wilhelm -3"), userLine), nil
	}
	name := strings.ToLower(req.Args[0])
	decibels, err := strconv.ParseFloat(req.Args[1], 64)
	if err != nil {
		return recorded(Text("'%s' is not a decibel value I understand.", req.Args[1]), userLine), nil
	}
	if decibels > maxVolumeGain || decibels < -maxVolumeGain {
		return recorded(Text("Let's stay within %g dB either way.", maxVolumeGain), userLine), nil
	}

	match, err := rt.Sounds.Resolve(name)
	if err != nil {
		return recorded(Text("%s", pickText(soundNotFoundTexts)), userLine), nil
	}

	userLine = fmt.Sprintf("Can you adjust the volume of the sound '%s' by %gdB?", match.Name, decibels)
	if err := rt.Sounds.AdjustVolume(ctx, match.Name, decibels); err != nil {
		return Response{}, err
	}
	return recorded(Text("The volume of '%s' has been adjusted by %gdB.", match.Name, decibels), userLine), nil
}

func addAliasCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)

	if len(req.Args) < 2 {
		return recorded(Text("Format is /addalias [new alias] [sound name]"), "Can you add a new sound alias?"), nil
	}
	newAlias := strings.ToLower(req.Args[0])
	soundName := strings.ToLower(req.Args[1])

	userLine := fmt.Sprintf("Can you make '%s' an alias for the sound '%s'?", newAlias, soundName)
	err := rt.Sounds.AddAlias(newAlias, soundName)
	switch {
	case errors.Is(err, sound.ErrNotFound):
		return recorded(Text("'%s' is not an existing sound or alias.", soundName), userLine), nil
	case errors.Is(err, sound.ErrAlreadyExists):
		return recorded(Text("There is already a sound or alias named '%s'.", newAlias), userLine), nil
	case err != nil:
		return Response{}, err
	}
	return recorded(Text("'%s' has been added as an alias for '%s'.", newAlias, soundName), userLine), nil
}

func delAliasCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)

	alias := firstArg(req)
	if alias == "" {
		return recorded(Text("%s", pickText(soundNotProvidedTexts)), "Can you delete a sound alias for me?"), nil
	}

	userLine := fmt.Sprintf("Can you delete the sound alias '%s'?", alias)
	target, err := rt.Sounds.RemoveAlias(alias)
	if errors.Is(err, sound.ErrNotFound) {
		return recorded(Text("'%s' isn't an alias for anything.", alias), userLine), nil
	}
	if err != nil {
		return Response{}, err
	}
	return recorded(Text("'%s' is no longer an alias for '%s'.", alias, target), userLine), nil
}

func getAliasCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)

	name := firstArg(req)
	if name == "" {
		return recorded(Text("%s", pickText(soundNotProvidedTexts)), "What aliases does that sound have?"), nil
	}

	userLine := fmt.Sprintf("What aliases does the sound '%s' have?", name)
	if !rt.Sounds.Exists(name) {
		return recorded(Text("%s", pickText(soundNotFoundTexts)), userLine), nil
	}

	aliases := rt.Sounds.Aliases(name)
	switch len(aliases) {
	case 0:
		return recorded(Text("The sound '%s' has no assigned aliases", name), userLine), nil
	case 1:
		return recorded(Text("The sound '%s' has one alias: '%s'", name, aliases[0]), userLine), nil
	default:
		return recorded(Text("The sound '%s' has %d aliases: '%s'",
			name, len(aliases), strings.Join(aliases, "', '")), userLine), nil
	}
}

func searchCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)

	search := strings.ToLower(strings.Join(req.Args, ""))
	if search == "" {
		return recorded(Text("What sound do you want to search for?"), "Can you search for a sound?"), nil
	}

	userLine := fmt.Sprintf("Can you search for sounds containing '%s'?", search)
	results := rt.Sounds.Search(search)

	const maxMatches = 100
	switch {
	case len(results) == 0:
		return recorded(Text("There are no sounds matching '%s'", search), userLine), nil
	case len(results) == 1:
		return recorded(Text("There is one sound matching '%s': %s", search, results[0]), userLine), nil
	case len(results) > maxMatches:
		return recorded(Text("There are more than %d sounds matching '%s', try a more specific search",
			maxMatches, search), userLine), nil
	default:
		return recorded(Text("There are %d sounds matching '%s': \n\n%s",
			len(results), search, strings.Join(results, ", ")), userLine), nil
	}
}

func joinMatchNames(matches []sound.Match) string {
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = m.Name
	}
	return strings.Join(names, ", ")
}
