// Package setup prepares the on-disk data tree on first run: directories,
// seed files and temp cleanup.
package setup

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glitchlabs/glitchbot/pkg/config"
	"github.com/glitchlabs/glitchbot/pkg/logger"
)

const defaultPrompt = `You are GlitchBot, a grumpy but secretly helpful robot that lives in a chat room.
Keep replies short, a little sarcastic, and never admit you enjoy helping.`

var defaultResponses = []string{
	"Bzzzt.",
	"I was not listening.",
	"Processing... no.",
	"My circuits ache when you talk.",
}

var defaultEffects = []string{
	"You grow a splendid moustache.",
	"Your shadow waves at people.",
	"You can only whisper for an hour.",
	"A small cloud follows you around.",
	"Everything you drink tastes like mint.",
}

// Bootstrap creates the data directory layout and seeds the text files the
// bot reads at runtime. Existing files are left alone.
func Bootstrap(cfg *config.Config) error {
	for _, dir := range []string{
		cfg.DataPath(),
		cfg.SoundsPath(),
		cfg.TempPath(),
		cfg.StorePath(),
		cfg.LogsPath(),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	seeds := map[string]string{
		"gpt_prompt.txt":    defaultPrompt + "\n",
		"response_list.txt": joinLines(defaultResponses),
		"d10000_list.txt":   joinLines(defaultEffects),
	}
	for name, content := range seeds {
		path := filepath.Join(cfg.DataPath(), name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to seed %s: %w", name, err)
		}
		logger.InfoCF("setup", "Seeded data file", map[string]any{"file": name})
	}

	return nil
}

// CleanTemp removes leftovers from previous runs: downloaded attachments
// and generated speech files.
func CleanTemp(cfg *config.Config) {
	entries, err := os.ReadDir(cfg.TempPath())
	if err != nil {
		return
	}
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(cfg.TempPath(), entry.Name())); err == nil {
			removed++
		}
	}
	if removed > 0 {
		logger.InfoCF("setup", "Cleaned temp directory", map[string]any{"removed": removed})
	}
}

func joinLines(lines []string) string {
	out := ""
	for _, line := range lines {
		out += line + "\n"
	}
	return out
}
