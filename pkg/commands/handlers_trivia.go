package commands

import (
	"context"
	"fmt"
	"strings"
)

func triviaCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)

	q, err := rt.Trivia.Current(ctx, req.ChatID)
	if err != nil {
		return Response{}, err
	}
	return recorded(Text("%s", q.Prompt()), "Can you give me a trivia question?"), nil
}

func guessCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)

	guess := req.ArgString()
	userLine := fmt.Sprintf("Is the trivia answer %s?", guess)

	q, err := rt.Trivia.Active(req.ChatID)
	if err != nil || q == nil {
		return recorded(Text("Trivia is not active, use /trivia to start."), userLine), nil
	}
	if guess == "" {
		return recorded(Text("You need to provide an answer, like /guess abc"), userLine), nil
	}

	if q.IsCorrect(guess) {
		points := q.Points()
		if err := rt.Stats.AddTriviaPoints(ctx, req.ChatID, req.SenderID, req.SenderName, points); err != nil {
			return Response{}, err
		}
		if err := rt.Trivia.ClearCurrent(req.ChatID); err != nil {
			return Response{}, err
		}
		return recorded(Text("That's correct, the answer is '%s'. %s earned %d points!",
			q.CorrectAnswer, req.SenderName, points), userLine), nil
	}

	if q.OnList(guess) {
		more, err := rt.Trivia.RecordMiss(req.ChatID, q)
		if err != nil {
			return Response{}, err
		}
		if more {
			return recorded(Text("That is incorrect, %d guesses remaining.", q.GuessesLeft), userLine), nil
		}
		return recorded(Text("That is incorrect! Out of guesses, the answer was %s!",
			q.CorrectAnswer), userLine), nil
	}

	return recorded(Text("That isn't an option for this question!"), userLine), nil
}

func triviaRankCommand(ctx context.Context, req Request) (Response, error) {
	rt, _ := RuntimeFrom(ctx)
	userLine := "What are the current trivia rankings for this chat?"

	rankings, err := rt.Stats.TriviaRankings(ctx, req.ChatID)
	if err != nil {
		return Response{}, err
	}
	if len(rankings) == 0 {
		return recorded(Text("There are no trivia rankings for this chat."), userLine), nil
	}

	lines := make([]string, len(rankings))
	for i, player := range rankings {
		lines[i] = fmt.Sprintf("    %d. %s @ %s points", i+1, player.Name, commas(player.Score))
	}
	return recorded(Text("The current trivia rankings for this chat are:\n%s",
		strings.Join(lines, "\n")), userLine), nil
}
