package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/glitchlabs/glitchbot/pkg/bus"
	"github.com/glitchlabs/glitchbot/pkg/channels"
	"github.com/glitchlabs/glitchbot/pkg/chat"
	"github.com/glitchlabs/glitchbot/pkg/commands"
	"github.com/glitchlabs/glitchbot/pkg/config"
	"github.com/glitchlabs/glitchbot/pkg/dice"
	"github.com/glitchlabs/glitchbot/pkg/logger"
	"github.com/glitchlabs/glitchbot/pkg/router"
	"github.com/glitchlabs/glitchbot/pkg/setup"
	"github.com/glitchlabs/glitchbot/pkg/sound"
	"github.com/glitchlabs/glitchbot/pkg/store"
	"github.com/glitchlabs/glitchbot/pkg/store/stats"
	"github.com/glitchlabs/glitchbot/pkg/trivia"
	"github.com/glitchlabs/glitchbot/pkg/voice"
)

func runBot() error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	if err := setup.Bootstrap(cfg); err != nil {
		return fmt.Errorf("error preparing data directory: %w", err)
	}
	setup.CleanTemp(cfg)

	logger.SetLevel(parseLogLevel(cfg.ParsedLogLevel()))
	if err := logger.EnableFileLogging(filepath.Join(cfg.LogsPath(), "glitchbot.log")); err != nil {
		logger.WarnCF("main", "File logging disabled", map[string]any{"error": err.Error()})
	}

	logger.InfoCF("main", "GlitchBot starting", map[string]any{
		"version": formatVersion(), "data_dir": cfg.DataPath(),
	})

	st, err := store.New(cfg.StorePath())
	if err != nil {
		return fmt.Errorf("error opening store: %w", err)
	}

	db, err := stats.Open(filepath.Join(cfg.StorePath(), "stats.db"))
	if err != nil {
		return fmt.Errorf("error opening stats database: %w", err)
	}
	defer db.Close()

	sounds, err := sound.NewLibrary(cfg.SoundsPath(), st, cfg.Sound.MinSimilarity)
	if err != nil {
		return fmt.Errorf("error loading sound library: %w", err)
	}

	effects, err := dice.LoadEffects(filepath.Join(cfg.DataPath(), "d10000_list.txt"), st)
	if err != nil {
		return fmt.Errorf("error loading d10000 list: %w", err)
	}

	chatSvc := chat.NewService(cfg, st, cfg.DataPath())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt := &commands.Runtime{
		Config:     cfg,
		ConfigPath: configPath,
		Store:      st,
		Stats:      db,
		Sounds:     sounds,
		Chat:       chatSvc,
		TTS:        chat.NewTTSClient(cfg),
		Markov:     loadMarkov(cfg, chatSvc),
		Trivia:     trivia.NewClient(st),
		Effects:    effects,
		Registry:   commands.Builtins(),
		DataDir:    cfg.DataPath(),
		Version:    formatVersion(),
		StartedAt:  time.Now(),
		Restart:    restartProcess(stop),
	}

	msgBus := bus.NewMessageBus()
	manager, discordCh := buildChannels(cfg, msgBus)
	if len(manager.GetEnabledChannels()) == 0 {
		return fmt.Errorf("no channels enabled: set a Discord or Telegram token in %s or the environment", configPath)
	}
	if err := manager.StartAll(ctx); err != nil {
		return fmt.Errorf("error starting channels: %w", err)
	}

	// Voice playback rides on the Discord gateway connection, so it only
	// exists when the Discord channel does.
	if discordCh != nil {
		rt.Voice = voice.NewManager(discordCh.Session(), cfg)
	}

	go router.New(cfg, msgBus, rt).Run(ctx)

	logger.InfoCF("main", "GlitchBot running", map[string]any{
		"channels": manager.GetEnabledChannels(),
	})
	fmt.Println("GlitchBot is running. Press Ctrl+C to stop.")

	<-ctx.Done()

	logger.InfoC("main", "Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := manager.StopAll(shutdownCtx); err != nil {
		logger.ErrorCF("main", "Error stopping channels", map[string]any{"error": err.Error()})
	}
	msgBus.Close()

	if pendingRestart {
		return execSelf()
	}
	return nil
}

// buildChannels constructs the adapters with configured tokens and hands
// them to a manager. A bad token logs and skips that platform rather than
// aborting the other one.
func buildChannels(cfg *config.Config, msgBus *bus.MessageBus) (*channels.Manager, *channels.DiscordChannel) {
	manager := channels.NewManager(msgBus)
	tempDir := cfg.TempPath()

	if c := cfg.Channels.Telegram; c.Enabled && c.Token != "" {
		ch, err := channels.NewTelegramChannel(c, msgBus, tempDir)
		if err != nil {
			logger.ErrorCF("main", "Failed to initialize telegram", map[string]any{"error": err.Error()})
		} else {
			manager.RegisterChannel("telegram", ch)
		}
	}

	var discordCh *channels.DiscordChannel
	if c := cfg.Channels.Discord; c.Enabled && c.Token != "" {
		ch, err := channels.NewDiscordChannel(c, msgBus, tempDir)
		if err != nil {
			logger.ErrorCF("main", "Failed to initialize discord", map[string]any{"error": err.Error()})
		} else {
			manager.RegisterChannel("discord", ch)
			discordCh = ch
		}
	}

	return manager, discordCh
}

// loadMarkov reads the saved wisdom chain, or rebuilds one from whatever
// the conversation memory holds.
func loadMarkov(cfg *config.Config, chatSvc *chat.Service) chat.Chain {
	path := filepath.Join(cfg.DataPath(), "markov_chain.json")
	if chain, err := chat.LoadChain(path); err == nil {
		return chain
	}

	var lines []string
	for _, msg := range chatSvc.FullMemory() {
		lines = append(lines, msg.Content)
	}
	return chat.BuildChain(lines)
}

var pendingRestart bool

// restartProcess arms a re-exec and triggers the normal shutdown path, so
// /restart drains queues before the process replaces itself.
func restartProcess(stop context.CancelFunc) func() {
	return func() {
		pendingRestart = true
		go func() {
			time.Sleep(500 * time.Millisecond)
			stop()
		}()
	}
}

// runOnboard prepares the data tree and writes a default config file so a
// new install has something to edit before the first run.
func runOnboard() error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if err := setup.Bootstrap(cfg); err != nil {
		return fmt.Errorf("error preparing data directory: %w", err)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := config.SaveConfig(configPath, cfg); err != nil {
			return fmt.Errorf("error writing default config: %w", err)
		}
		fmt.Printf("Wrote default config to %s\n", configPath)
	}
	fmt.Printf("Data directory ready at %s. Add your tokens and run `glitchbot`.\n", cfg.DataPath())
	return nil
}

func execSelf() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("cannot restart: %w", err)
	}
	logger.InfoCF("main", "Restarting process", map[string]any{"exe": exe})
	return syscall.Exec(exe, os.Args, os.Environ())
}
