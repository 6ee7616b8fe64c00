package chat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glitchlabs/glitchbot/pkg/config"
)

func newTestTTS(t *testing.T, handler http.HandlerFunc) *TTSClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.DefaultConfig()
	cfg.TTS.APIKey = "test-key"
	c := NewTTSClient(cfg)
	c.SetBaseURL(srv.URL)
	return c
}

func TestSynthesize(t *testing.T) {
	var gotPath, gotKey string
	c := newTestTTS(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("xi-api-key")
		w.Write([]byte("mp3bytes"))
	})

	audio, err := c.Synthesize(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(audio) != "mp3bytes" {
		t.Errorf("unexpected audio: %q", audio)
	}
	if !strings.HasPrefix(gotPath, "/v1/text-to-speech/") {
		t.Errorf("unexpected path: %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("api key header missing: %q", gotKey)
	}
}

func TestSynthesizeErrorMapping(t *testing.T) {
	c := newTestTTS(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": {"status": "quota_exceeded"}}`))
	})

	_, err := c.Synthesize(context.Background(), "hello")
	if err == nil || !strings.Contains(err.Error(), "out of credits") {
		t.Errorf("quota error not mapped: %v", err)
	}
}

func TestSynthesizeWithoutKey(t *testing.T) {
	c := NewTTSClient(config.DefaultConfig())
	if c.Available() {
		t.Error("client without key reports available")
	}
	if _, err := c.Synthesize(context.Background(), "hello"); err == nil {
		t.Error("expected error without API key")
	}
}

func TestCapPrompt(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		soft, hard int
		want       string
	}{
		{"short untouched", "hello world", 100, 200, "hello world"},
		{"soft cap at space", "aaaa bbbb cccc", 6, 100, "aaaa bbbb"},
		{"hard cap abrupt", strings.Repeat("x", 50), 100, 10, strings.Repeat("x", 10)},
		{"soft cap no break char", "aaaaaaaaaa", 5, 100, "aaaaaaaaaa"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CapPrompt(tt.text, tt.soft, tt.hard); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
