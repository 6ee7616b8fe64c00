package setup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/glitchlabs/glitchbot/pkg/config"
)

func TestBootstrapCreatesLayout(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Bot.DataDir = t.TempDir()

	if err := Bootstrap(cfg); err != nil {
		t.Fatal(err)
	}

	for _, dir := range []string{cfg.SoundsPath(), cfg.TempPath(), cfg.StorePath(), cfg.LogsPath()} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("missing directory %s: %v", dir, err)
		}
	}
	for _, name := range []string{"gpt_prompt.txt", "response_list.txt", "d10000_list.txt"} {
		if _, err := os.Stat(filepath.Join(cfg.DataPath(), name)); err != nil {
			t.Fatalf("missing seed file %s: %v", name, err)
		}
	}
}

func TestBootstrapKeepsExistingFiles(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Bot.DataDir = t.TempDir()

	if err := os.WriteFile(filepath.Join(cfg.DataPath(), "gpt_prompt.txt"), []byte("custom"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Bootstrap(cfg); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(cfg.DataPath(), "gpt_prompt.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "custom" {
		t.Fatalf("seed overwrote an existing file: %q", data)
	}
}

func TestCleanTemp(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Bot.DataDir = t.TempDir()
	if err := Bootstrap(cfg); err != nil {
		t.Fatal(err)
	}

	stale := filepath.Join(cfg.TempPath(), "old_download.mp3")
	if err := os.WriteFile(stale, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	CleanTemp(cfg)
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatal("stale temp file should be removed")
	}
}
