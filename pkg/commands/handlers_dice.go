package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/glitchlabs/glitchbot/pkg/dice"
)

func rollCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)

	roll, err := dice.Parse(req.Args)
	if err != nil {
		return recorded(Text("Please use dice notation like a civilized humanoid, e.g. '3d6 + 2'"),
			"Can you roll some dice for me?"), nil
	}

	userLine := fmt.Sprintf("Can you roll a %s for me?", roll)

	rt.Config.RLock()
	maxDice, maxFaces := rt.Config.Dice.MaxDice, rt.Config.Dice.MaxFaces
	rt.Config.RUnlock()

	if roll.Count > maxDice {
		return recorded(Text("Keep it to %s dice or fewer please, I'm not a god.", commas(maxDice)), userLine), nil
	}
	if roll.Faces > maxFaces {
		return recorded(Text("Keep it to %s sides or fewer please, I'm not a god.", commas(maxFaces)), userLine), nil
	}

	rolls, total := roll.Do(newRNG())

	detail := ""
	if roll.Modifier != 0 || roll.Count > 1 {
		parts := make([]string, len(rolls))
		for i, r := range rolls {
			parts[i] = commas(r)
		}
		detail = fmt.Sprintf(" (%s)", strings.Join(parts, ", "))
	}

	return recorded(Text("%s rolled a %s%s", req.SenderName, commas(total), detail), userLine), nil
}

func statRollCommand(ctx context.Context, req Request) (Response, error) {
	game := firstArg(req)
	if game == "" {
		return recorded(Text("Please provide a valid game name (dnd, coc, mythras)"),
			"Can you roll me a tabletop character?"), nil
	}

	userLine := fmt.Sprintf("Can you roll me a character for %s?", game)
	block, err := dice.StatRoll(newRNG(), game)
	if err != nil {
		return recorded(Text("Please provide a valid game name (dnd, coc, mythras)"), userLine), nil
	}
	return recorded(Text("Stat roll for %s:\n%s", game, block), userLine), nil
}

func d10000Command(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)
	userLine := "Can you roll an effect on the d10000 table?"

	effect, err := rt.Effects.Draw(newRNG(), req.SenderName)
	if err != nil {
		return Response{}, err
	}
	return recorded(Text("%s", effect), userLine), nil
}

func effectsCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)
	userLine := "Can I get a list of my active d10000 effects?"

	active, err := rt.Effects.Active(req.SenderName)
	if err != nil {
		return Response{}, err
	}
	if len(active) == 0 {
		return recorded(Text("You don't have any active effects, use the /d10000 command to get some!"), userLine), nil
	}
	return recorded(Text("Here are %s's active effects:\n    %s",
		req.SenderName, strings.Join(active, "\n    ")), userLine), nil
}

func resetEffectsCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)

	if err := rt.Effects.Reset(req.SenderName); err != nil {
		return Response{}, err
	}
	return recorded(Text("Active effects reset for %s.", req.SenderName),
		"Can you reset my active d10000 effects?"), nil
}

// commas formats an integer with thousands separators.
func commas(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}
