package chat

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/glitchlabs/glitchbot/pkg/config"
	"github.com/glitchlabs/glitchbot/pkg/store"
)

type stubCompleter struct {
	replies []string
	errs    []error
	calls   int
	got     [][]Message
}

func (s *stubCompleter) Complete(ctx context.Context, messages []Message) (string, error) {
	s.got = append(s.got, messages)
	i := s.calls
	s.calls++
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	var reply string
	if i < len(s.replies) {
		reply = s.replies[i]
	}
	return reply, err
}

func newTestService(t *testing.T) (*Service, *stubCompleter, string) {
	t.Helper()
	dataDir := t.TempDir()
	st, err := store.New(filepath.Join(dataDir, "store"))
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.DefaultConfig()
	svc := NewService(cfg, st, dataDir)
	stub := &stubCompleter{}
	svc.SetCompleter(stub)
	return svc, stub, dataDir
}

func TestRespondStripsQuotes(t *testing.T) {
	svc, stub, _ := newTestService(t)
	stub.replies = []string{`"hello there"`}

	out, err := svc.Respond(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if out != "hello there" {
		t.Errorf("quotes not stripped: %q", out)
	}
}

func TestRespondRetriesEmptyAndFailing(t *testing.T) {
	svc, stub, _ := newTestService(t)
	stub.replies = []string{"", "", "finally"}
	stub.errs = []error{nil, fmt.Errorf("transient"), nil}

	out, err := svc.Respond(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if out != "finally" || stub.calls != 3 {
		t.Errorf("out=%q calls=%d", out, stub.calls)
	}
}

func TestRespondGivesUpAfterAttempts(t *testing.T) {
	svc, stub, _ := newTestService(t)
	boom := errors.New("provider down")
	stub.errs = []error{boom, boom, boom}

	_, err := svc.Respond(context.Background(), "hi")
	if err == nil {
		t.Fatal("expected error after exhausted attempts")
	}
	if !errors.Is(err, boom) {
		t.Errorf("cause not wrapped: %v", err)
	}
	if stub.calls != 3 {
		t.Errorf("calls = %d", stub.calls)
	}
}

func TestRespondIncludesSystemPromptAndMemory(t *testing.T) {
	svc, stub, dataDir := newTestService(t)
	stub.replies = []string{"ok"}

	if err := os.WriteFile(filepath.Join(dataDir, "gpt_prompt.txt"), []byte("you are a robot"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := svc.Remember("earlier question", "earlier answer"); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Respond(context.Background(), "now"); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	msgs := stub.got[0]
	if msgs[0].Role != "system" || msgs[0].Content != "you are a robot" {
		t.Errorf("system prompt missing: %+v", msgs[0])
	}
	last := msgs[len(msgs)-1]
	if last.Role != "user" || last.Content != "now" {
		t.Errorf("user prompt not last: %+v", last)
	}
	found := false
	for _, m := range msgs {
		if m.Role == "assistant" && m.Content == "earlier answer" {
			found = true
		}
	}
	if !found {
		t.Error("memory not recalled into request")
	}
}

func TestMemoryWindowAndForget(t *testing.T) {
	svc, _, _ := newTestService(t)
	svc.cfg.Chat.MemorySize = 4

	for i := 0; i < 10; i++ {
		if err := svc.Remember(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i)); err != nil {
			t.Fatal(err)
		}
	}

	recall := svc.Recall()
	if len(recall) != 4 {
		t.Fatalf("recall window = %d", len(recall))
	}
	if recall[len(recall)-1].Content != "a9" {
		t.Errorf("recall not most recent: %+v", recall)
	}

	last, ok := svc.LastBotMessage()
	if !ok || last != "a9" {
		t.Errorf("LastBotMessage = %q, %v", last, ok)
	}

	if err := svc.Forget(); err != nil {
		t.Fatal(err)
	}
	if len(svc.Recall()) != 0 {
		t.Error("memory survived Forget")
	}
}

func TestResponseList(t *testing.T) {
	svc, _, _ := newTestService(t)

	if got := svc.Responses(); got != nil {
		t.Errorf("expected empty list, got %v", got)
	}
	if err := svc.AddResponse("beep boop"); err != nil {
		t.Fatal(err)
	}
	if err := svc.AddResponse("  multi\nline  "); err != nil {
		t.Fatal(err)
	}
	got := svc.Responses()
	if len(got) != 2 || got[0] != "beep boop" || got[1] != "multi line" {
		t.Errorf("unexpected responses: %v", got)
	}
	if err := svc.AddResponse("   "); err == nil {
		t.Error("blank response accepted")
	}
}
