package trivia

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glitchlabs/glitchbot/pkg/store"
)

const sampleResponse = `{
	"response_code": 0,
	"results": [{
		"type": "multiple",
		"difficulty": "medium",
		"category": "Entertainment: Video Games",
		"question": "What does &quot;RNG&quot; stand for?",
		"correct_answer": "Random Number Generator",
		"incorrect_answers": ["Really New Game", "Rapid Nuke Gun", "Red Neon Glow"]
	}]
}`

func newTestClient(t *testing.T, payload string) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	t.Cleanup(srv.Close)

	st, err := store.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c := NewClient(st)
	c.SetBaseURL(srv.URL)
	return c, srv
}

func TestFetchNormalizesQuestion(t *testing.T) {
	c, _ := newTestClient(t, sampleResponse)

	q, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if q.Category != "Video Games" {
		t.Errorf("category not trimmed: %q", q.Category)
	}
	if !strings.Contains(q.Question, `"RNG"`) {
		t.Errorf("HTML entities not unescaped: %q", q.Question)
	}
	if len(q.AnswerList) != 4 {
		t.Fatalf("expected 4 answers, got %v", q.AnswerList)
	}
	if !sortedStrings(q.AnswerList) {
		t.Errorf("answers not sorted: %v", q.AnswerList)
	}
	if q.GuessesLeft != 3 {
		t.Errorf("guesses = %d", q.GuessesLeft)
	}
}

func sortedStrings(ss []string) bool {
	for i := 1; i < len(ss); i++ {
		if ss[i-1] > ss[i] {
			return false
		}
	}
	return true
}

func TestCurrentPersistsPerChat(t *testing.T) {
	c, _ := newTestClient(t, sampleResponse)
	ctx := context.Background()

	q1, err := c.Current(ctx, "chat1")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}

	// Same chat gets the stored question back, not a refetch.
	q2, err := c.Current(ctx, "chat1")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if q1.Question != q2.Question {
		t.Error("active question not reused")
	}

	active, err := c.Active("chat2")
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if active != nil {
		t.Error("question leaked across chats")
	}

	if err := c.ClearCurrent("chat1"); err != nil {
		t.Fatalf("ClearCurrent: %v", err)
	}
	active, _ = c.Active("chat1")
	if active != nil {
		t.Error("question survived clear")
	}
}

func TestGuessMatching(t *testing.T) {
	q := newQuestion("multiple", "hard", "General Knowledge", "Pick B", "bravo",
		[]string{"alpha", "charlie", "delta"})

	// Sorted list: alpha, bravo, charlie, delta. Correct letter is b.
	if !q.IsCorrect("BRAVO") {
		t.Error("case-insensitive text match failed")
	}
	if !q.IsCorrect("b") {
		t.Error("letter match failed")
	}
	if q.IsCorrect("a") || q.IsCorrect("alpha") {
		t.Error("wrong answer accepted")
	}
	if !q.OnList("d") || !q.OnList("delta") {
		t.Error("valid guesses reported off-list")
	}
	if q.OnList("e") || q.OnList("echo") {
		t.Error("invalid guesses reported on-list")
	}
}

func TestBooleanQuestionAnswers(t *testing.T) {
	q := newQuestion("boolean", "easy", "Science", "Water is wet", "True", []string{"False"})
	if len(q.AnswerList) != 2 || q.AnswerList[0] != "True" || q.AnswerList[1] != "False" {
		t.Errorf("boolean answers wrong: %v", q.AnswerList)
	}
	if q.GuessesLeft != 1 {
		t.Errorf("boolean guesses = %d", q.GuessesLeft)
	}
}

func TestPoints(t *testing.T) {
	q := newQuestion("multiple", "hard", "X", "Q", "a", []string{"b", "c", "d"})

	// Full guesses left: full 30 points.
	if pts := q.Points(); pts != 30 {
		t.Errorf("full points = %d", pts)
	}
	q.GuessesLeft = 1
	if pts := q.Points(); pts != 10 {
		t.Errorf("one-guess points = %d", pts)
	}
}

func TestRecordMiss(t *testing.T) {
	c, _ := newTestClient(t, sampleResponse)

	q, err := c.Current(context.Background(), "chat1")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}

	for q.GuessesLeft > 1 {
		more, err := c.RecordMiss("chat1", q)
		if err != nil || !more {
			t.Fatalf("mid-question miss: more=%v err=%v", more, err)
		}
	}
	more, err := c.RecordMiss("chat1", q)
	if err != nil {
		t.Fatalf("final miss: %v", err)
	}
	if more {
		t.Error("expected question to be exhausted")
	}
	active, _ := c.Active("chat1")
	if active != nil {
		t.Error("exhausted question not cleared")
	}
}

func TestPromptShape(t *testing.T) {
	q := newQuestion("multiple", "easy", "Film", "Best dog?", "Rex", []string{"Fido", "Spot", "Max"})
	p := q.Prompt()
	for _, want := range []string{"[Category: Film - Easy]", "Q. Best dog?", "A. ", "D. ", "/guess"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
}
