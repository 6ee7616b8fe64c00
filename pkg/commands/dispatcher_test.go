package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glitchlabs/glitchbot/pkg/chat"
	"github.com/glitchlabs/glitchbot/pkg/config"
	"github.com/glitchlabs/glitchbot/pkg/dice"
	"github.com/glitchlabs/glitchbot/pkg/sound"
	"github.com/glitchlabs/glitchbot/pkg/store"
	"github.com/glitchlabs/glitchbot/pkg/store/stats"
	"github.com/glitchlabs/glitchbot/pkg/trivia"
)

// stubCompleter stands in for the OpenAI backend.
type stubCompleter struct {
	reply string
	err   error
	calls int
}

func (s *stubCompleter) Complete(ctx context.Context, messages []chat.Message) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

// stubVoice records playback calls without touching Discord.
type stubVoice struct {
	mu        sync.Mutex
	connected map[string]bool
	played    []string
	stopped   int
}

func newStubVoice() *stubVoice {
	return &stubVoice{connected: map[string]bool{}}
}

func (v *stubVoice) Play(ctx context.Context, guildID, channelID, source string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.played = append(v.played, source)
	return nil
}

func (v *stubVoice) Stop(guildID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stopped++
	return true
}

func (v *stubVoice) Pause(guildID string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.played) == 0 {
		return false, fmt.Errorf("nothing playing")
	}
	return true, nil
}

func (v *stubVoice) Join(guildID, channelID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.connected[guildID] = true
	return nil
}

func (v *stubVoice) Leave(guildID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.connected, guildID)
	return nil
}

func (v *stubVoice) Connected(guildID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.connected[guildID]
}

// mp3Bytes is a minimal payload that passes the audio signature check.
var mp3Bytes = append([]byte("ID3\x03\x00\x00\x00\x00\x00\x00"), make([]byte, 16)...)

func testRuntime(t *testing.T) (*Runtime, *stubCompleter, *stubVoice) {
	t.Helper()

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Bot.DataDir = dir

	for _, p := range []string{cfg.SoundsPath(), cfg.TempPath(), cfg.StorePath()} {
		if err := os.MkdirAll(p, 0755); err != nil {
			t.Fatalf("mkdir %s: %v", p, err)
		}
	}

	st, err := store.New(cfg.StorePath())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}

	db, err := stats.Open(filepath.Join(cfg.StorePath(), "stats.db"))
	if err != nil {
		t.Fatalf("stats.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sounds, err := sound.NewLibrary(cfg.SoundsPath(), st, cfg.Sound.MinSimilarity)
	if err != nil {
		t.Fatalf("sound.NewLibrary: %v", err)
	}

	effectsPath := filepath.Join(dir, "d10000_list.txt")
	if err := os.WriteFile(effectsPath, []byte("You grow a splendid moustache.\nGravity reverses for you alone.\n"), 0644); err != nil {
		t.Fatalf("write effects list: %v", err)
	}
	effects, err := dice.LoadEffects(effectsPath, st)
	if err != nil {
		t.Fatalf("dice.LoadEffects: %v", err)
	}

	completer := &stubCompleter{reply: "stub reply"}
	svc := chat.NewService(cfg, st, dir)
	svc.SetCompleter(completer)

	voice := newStubVoice()

	rt := &Runtime{
		Config:     cfg,
		ConfigPath: filepath.Join(dir, "config.json"),
		Store:      st,
		Stats:      db,
		Sounds:     sounds,
		Chat:       svc,
		TTS:        chat.NewTTSClient(cfg),
		Markov:     chat.Chain{},
		Trivia:     trivia.NewClient(st),
		Effects:    effects,
		Voice:      voice,
		Registry:   Builtins(),
		DataDir:    dir,
		Version:    "v0.0.0-test",
		StartedAt:  time.Now(),
	}
	return rt, completer, voice
}

func addSoundFile(t *testing.T, rt *Runtime, name string) {
	t.Helper()
	if err := rt.Sounds.Save(name, mp3Bytes); err != nil {
		t.Fatalf("save sound %s: %v", name, err)
	}
}

func telegramRequest(text string) Request {
	return Request{
		Platform:   "telegram",
		SenderID:   "1001",
		SenderName: "tester",
		ChatID:     "2002",
		Text:       text,
	}
}

func discordRequest(text string) Request {
	return Request{
		Platform:   "discord",
		SenderID:   "3003",
		SenderName: "tester",
		ChatID:     "4004",
		Text:       text,
		Metadata:   map[string]string{"guild_id": "5005", "voice_channel_id": "6006"},
	}
}

func dispatch(t *testing.T, rt *Runtime, req Request) Result {
	t.Helper()
	d := NewDispatcher(rt.Registry, rt)
	return d.Dispatch(context.Background(), req)
}

func oneOf(t *testing.T, got string, options []string) {
	t.Helper()
	for _, opt := range options {
		if got == opt {
			return
		}
	}
	t.Fatalf("response %q is not one of the expected texts", got)
}

func TestDispatchIgnoresNonCommands(t *testing.T) {
	rt, _, _ := testRuntime(t)

	for _, text := range []string{"hello there", "", "   ", "/ leading space"} {
		res := dispatch(t, rt, telegramRequest(text))
		if res.Matched {
			t.Fatalf("input %q should not match a command", text)
		}
	}
}

func TestDispatchUnknownCommandStaysSilent(t *testing.T) {
	rt, _, _ := testRuntime(t)

	for _, platform := range []string{"telegram", "discord"} {
		req := telegramRequest("/definitelynotacommand")
		req.Platform = platform
		res := dispatch(t, rt, req)
		if res.Matched {
			t.Fatalf("unknown command matched on %s", platform)
		}
		if !res.Response.Empty() {
			t.Fatalf("unknown command produced output on %s: %q", platform, res.Response.FirstText())
		}
	}
}

func TestAliasRunsIdenticalHandler(t *testing.T) {
	rt, _, _ := testRuntime(t)

	pattern := regexp.MustCompile(`^tester rolled a \d{1,2} \(\d, \d\)$`)
	for _, cmd := range []string{"/roll 2d6", "/dice 2d6"} {
		res := dispatch(t, rt, telegramRequest(cmd))
		if !res.Matched {
			t.Fatalf("%s did not match", cmd)
		}
		if res.Command != "roll" {
			t.Fatalf("%s resolved to %q, want roll", cmd, res.Command)
		}
		if got := res.Response.FirstText(); !pattern.MatchString(got) {
			t.Fatalf("%s output %q does not match %v", cmd, got, pattern)
		}
	}
}

func TestDuplicateRegistrationFailsAtomically(t *testing.T) {
	reg := NewRegistry()
	first := &Definition{Name: "alpha", Aliases: []string{"beta"}, Handler: helpCommand}
	if err := reg.Register(first); err != nil {
		t.Fatalf("first register: %v", err)
	}

	dup := &Definition{Name: "gamma", Aliases: []string{"beta"}, Handler: helpCommand}
	err := reg.Register(dup)
	if !errors.Is(err, ErrDuplicateCommand) {
		t.Fatalf("expected ErrDuplicateCommand, got %v", err)
	}

	// The failed registration must leave no trace, not even its fresh name.
	if _, err := reg.Resolve("gamma"); !errors.Is(err, ErrCommandNotFound) {
		t.Fatalf("gamma should not resolve after failed registration")
	}
	if def, err := reg.Resolve("beta"); err != nil || def.Name != "alpha" {
		t.Fatalf("beta should still resolve to alpha, got %v / %v", def, err)
	}
	if len(reg.List()) != 1 {
		t.Fatalf("registry should hold one definition, has %d", len(reg.List()))
	}
}

func TestPermissionDeniedNeverInvokesHandler(t *testing.T) {
	rt, _, _ := testRuntime(t)

	calls := 0
	rt.Registry = NewRegistry()
	rt.Registry.MustRegister(&Definition{
		Name:       "secret",
		Permission: PermAdmin,
		Handler: func(ctx context.Context, req Request) (Response, error) {
			calls++
			return Text("granted"), nil
		},
	})

	res := dispatch(t, rt, telegramRequest("/secret"))
	if !res.Matched {
		t.Fatal("command should match even when denied")
	}
	if calls != 0 {
		t.Fatalf("handler invoked %d times for denied caller", calls)
	}
	oneOf(t, res.Response.FirstText(), noPermissionTexts)

	if err := rt.Store.AddAdmin("telegram", "1001", false); err != nil {
		t.Fatalf("AddAdmin: %v", err)
	}
	res = dispatch(t, rt, telegramRequest("/secret"))
	if calls != 1 || res.Response.FirstText() != "granted" {
		t.Fatalf("admin caller got %q with %d calls", res.Response.FirstText(), calls)
	}
}

func TestSuperadminTier(t *testing.T) {
	rt, _, _ := testRuntime(t)

	if err := rt.Store.AddAdmin("telegram", "1001", false); err != nil {
		t.Fatalf("AddAdmin: %v", err)
	}

	// A plain admin cannot run superadmin commands.
	res := dispatch(t, rt, telegramRequest("/delsound boom"))
	oneOf(t, res.Response.FirstText(), noPermissionTexts)

	if err := rt.Store.AddAdmin("telegram", "1001", true); err != nil {
		t.Fatalf("promote: %v", err)
	}
	res = dispatch(t, rt, telegramRequest("/delsound boom"))
	oneOf(t, res.Response.FirstText(), soundNotFoundTexts)
}

func TestRequireAdminOff(t *testing.T) {
	rt, _, _ := testRuntime(t)
	rt.Config.Bot.RequireAdmin = false

	res := dispatch(t, rt, telegramRequest("/version"))
	if got := res.Response.FirstText(); !strings.Contains(got, "v0.0.0-test") {
		t.Fatalf("unprivileged caller should get version with checks off, got %q", got)
	}
}

func TestPlatformRestrictionNotice(t *testing.T) {
	rt, _, _ := testRuntime(t)

	res := dispatch(t, rt, telegramRequest("/vcjoin"))
	if got := res.Response.FirstText(); got != "Command /vcjoin only works on discord." {
		t.Fatalf("unexpected notice: %q", got)
	}
}

func TestHandlerErrorBecomesCircuitText(t *testing.T) {
	rt, _, _ := testRuntime(t)

	rt.Registry = NewRegistry()
	rt.Registry.MustRegister(&Definition{
		Name: "broken",
		Handler: func(ctx context.Context, req Request) (Response, error) {
			return Response{}, errors.New("backend exploded")
		},
	})

	res := dispatch(t, rt, telegramRequest("/broken"))
	if res.Response.FirstText() != errorText {
		t.Fatalf("got %q, want the malfunction text", res.Response.FirstText())
	}
	if res.Err == nil {
		t.Fatal("expected the error preserved on the result")
	}
}

func TestHandlerPanicIsContained(t *testing.T) {
	rt, _, _ := testRuntime(t)

	rt.Registry = NewRegistry()
	rt.Registry.MustRegister(&Definition{
		Name: "boomer",
		Handler: func(ctx context.Context, req Request) (Response, error) {
			panic("kaboom")
		},
	})

	res := dispatch(t, rt, telegramRequest("/boomer"))
	if res.Response.FirstText() != errorText {
		t.Fatalf("got %q, want the malfunction text", res.Response.FirstText())
	}
	if res.Err == nil || !strings.Contains(res.Err.Error(), "panicked") {
		t.Fatalf("expected panic error, got %v", res.Err)
	}
}

func TestChatBackendFailureAnswersInCharacter(t *testing.T) {
	rt, completer, _ := testRuntime(t)
	completer.err = errors.New("simulated outage")

	res := dispatch(t, rt, telegramRequest("/chat hello?"))
	if res.Response.FirstText() != errorText {
		t.Fatalf("got %q, want the malfunction text", res.Response.FirstText())
	}
}

func TestResponseTruncatedToConfiguredLength(t *testing.T) {
	rt, _, _ := testRuntime(t)
	rt.Config.Bot.MaxMessageLength = 10

	rt.Registry = NewRegistry()
	rt.Registry.MustRegister(&Definition{
		Name: "talky",
		Handler: func(ctx context.Context, req Request) (Response, error) {
			return Text("%s", strings.Repeat("x", 50)), nil
		},
	})

	res := dispatch(t, rt, telegramRequest("/talky"))
	if got := res.Response.FirstText(); len(got) != 10 {
		t.Fatalf("truncated length %d, want 10", len(got))
	}
}

func TestCommandLineParsing(t *testing.T) {
	tests := []struct {
		in   string
		name string
		args []string
		ok   bool
	}{
		{"/sound boom", "sound", []string{"boom"}, true},
		{"/SOUND@GlitchBot boom", "sound", []string{"boom"}, true},
		{"/roll 2d6 + 1", "roll", []string{"2d6", "+", "1"}, true},
		{"not a command", "", nil, false},
		{"/", "", nil, false},
	}
	for _, tt := range tests {
		name, args, ok := parseCommandLine(tt.in)
		if ok != tt.ok || name != tt.name {
			t.Fatalf("parse %q = (%q, %v), want (%q, %v)", tt.in, name, ok, tt.name, tt.ok)
		}
		if len(args) != len(tt.args) {
			t.Fatalf("parse %q args = %v, want %v", tt.in, args, tt.args)
		}
	}
}
