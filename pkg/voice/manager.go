// Package voice plays audio into Discord voice channels. Playback is
// serialized per guild; a new play request replaces whatever is running.
package voice

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/glitchlabs/glitchbot/pkg/config"
	"github.com/glitchlabs/glitchbot/pkg/logger"
)

type Manager struct {
	session *discordgo.Session
	cfg     *config.Config
	mu      sync.Mutex
	guilds  map[string]*guildPlayer
}

// guildPlayer owns one guild's voice connection and the playback that may
// be running on it.
type guildPlayer struct {
	mu      sync.Mutex
	conn    *discordgo.VoiceConnection
	stream  *stream
	cancel  context.CancelFunc
	playing bool
}

func NewManager(session *discordgo.Session, cfg *config.Config) *Manager {
	m := &Manager{
		session: session,
		cfg:     cfg,
		guilds:  make(map[string]*guildPlayer),
	}
	session.AddHandler(m.handleVoiceStateUpdate)
	return m
}

func (m *Manager) player(guildID string) *guildPlayer {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.guilds[guildID]
	if !ok {
		p = &guildPlayer{}
		m.guilds[guildID] = p
	}
	return p
}

func (m *Manager) Join(guildID, channelID string) error {
	p := m.player(guildID)
	p.mu.Lock()
	defer p.mu.Unlock()
	return m.joinLocked(p, guildID, channelID)
}

func (m *Manager) joinLocked(p *guildPlayer, guildID, channelID string) error {
	if p.conn != nil && p.conn.ChannelID == channelID {
		return nil
	}

	conn, err := m.session.ChannelVoiceJoin(guildID, channelID, false, true)
	if err != nil {
		return fmt.Errorf("failed to join voice channel: %w", err)
	}
	p.conn = conn

	logger.InfoCF("voice", "Joined voice channel", map[string]any{
		"guild_id": guildID, "channel_id": channelID,
	})
	return nil
}

func (m *Manager) Leave(guildID string) error {
	p := m.player(guildID)
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	if p.conn == nil {
		return nil
	}
	err := p.conn.Disconnect()
	p.conn = nil

	logger.InfoCF("voice", "Left voice channel", map[string]any{
		"guild_id": guildID,
	})
	return err
}

func (m *Manager) Connected(guildID string) bool {
	p := m.player(guildID)
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn != nil
}

// Play starts source (a local file, or anything else ffmpeg can open, URLs
// included) in the guild's voice channel, replacing any running playback.
// It returns once the stream has produced its first frame, so an unplayable
// source fails here rather than silently in the background.
func (m *Manager) Play(ctx context.Context, guildID, channelID, source string) error {
	p := m.player(guildID)
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		if channelID == "" {
			return fmt.Errorf("not connected to a voice channel in guild %s", guildID)
		}
		if err := m.joinLocked(p, guildID, channelID); err != nil {
			return err
		}
	}

	p.stopLocked()

	playCtx, cancel := context.WithCancel(context.Background())
	s, err := newStream(playCtx, source)
	if err != nil {
		cancel()
		return err
	}

	p.stream = s
	p.cancel = cancel
	p.playing = true

	conn := p.conn
	go func() {
		err := s.run(playCtx, conn)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.WarnCF("voice", "Playback ended with error", map[string]any{
				"guild_id": guildID, "source": source, "error": err.Error(),
			})
		}
		p.mu.Lock()
		if p.stream == s {
			p.playing = false
			p.stream = nil
			p.cancel = nil
		}
		p.mu.Unlock()
		cancel()
	}()

	return nil
}

// Stop cancels the running playback. Returns whether anything was playing.
func (m *Manager) Stop(guildID string) bool {
	p := m.player(guildID)
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopLocked()
}

func (p *guildPlayer) stopLocked() bool {
	if !p.playing || p.cancel == nil {
		return false
	}
	p.cancel()
	p.playing = false
	p.stream = nil
	p.cancel = nil
	return true
}

// Pause toggles pause on the running playback and returns the new paused
// state. Errors when nothing is playing.
func (m *Manager) Pause(guildID string) (bool, error) {
	p := m.player(guildID)
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.playing || p.stream == nil {
		return false, fmt.Errorf("nothing is playing in guild %s", guildID)
	}
	return p.stream.togglePause(), nil
}

// handleVoiceStateUpdate leaves a voice channel once the bot is the only
// one left in it, when the auto-leave flag is on.
func (m *Manager) handleVoiceStateUpdate(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
	if vs == nil || !m.cfg.Channels.Discord.VCAutoLeave {
		return
	}

	p := m.player(vs.GuildID)
	p.mu.Lock()
	conn := p.conn
	p.mu.Unlock()
	if conn == nil {
		return
	}

	guild, err := s.State.Guild(vs.GuildID)
	if err != nil {
		return
	}

	others := 0
	for _, state := range guild.VoiceStates {
		if state.ChannelID == conn.ChannelID && state.UserID != s.State.User.ID {
			others++
		}
	}
	if others > 0 {
		return
	}

	logger.InfoCF("voice", "Alone in voice channel, leaving", map[string]any{
		"guild_id": vs.GuildID,
	})
	if err := m.Leave(vs.GuildID); err != nil {
		logger.WarnCF("voice", "Auto-leave failed", map[string]any{
			"guild_id": vs.GuildID, "error": err.Error(),
		})
	}
}
