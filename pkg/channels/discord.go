package channels

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/glitchlabs/glitchbot/pkg/bus"
	"github.com/glitchlabs/glitchbot/pkg/config"
	"github.com/glitchlabs/glitchbot/pkg/logger"
	"github.com/glitchlabs/glitchbot/pkg/utils"
)

const (
	// Discord allows 2000 characters per message; split well below that
	// so chunks can extend to close a code block.
	discordSplitLimit  = 1500
	discordSendTimeout = 10 * time.Second
)

type DiscordChannel struct {
	*BaseChannel
	session *discordgo.Session
	config  config.DiscordConfig
	tempDir string
}

func NewDiscordChannel(cfg config.DiscordConfig, messageBus *bus.MessageBus, tempDir string) (*DiscordChannel, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentDirectMessages |
		discordgo.IntentGuildVoiceStates |
		discordgo.IntentMessageContent

	base := NewBaseChannel("discord", cfg, messageBus, cfg.AllowFrom)

	return &DiscordChannel{
		BaseChannel: base,
		session:     session,
		config:      cfg,
		tempDir:     tempDir,
	}, nil
}

// Session exposes the gateway connection so the voice player can attach to
// the same websocket.
func (c *DiscordChannel) Session() *discordgo.Session {
	return c.session
}

func (c *DiscordChannel) Start(ctx context.Context) error {
	logger.InfoC("discord", "Starting Discord bot")

	c.session.AddHandler(c.handleMessage)

	if err := c.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}

	c.setRunning(true)

	botUser, err := c.session.User("@me")
	if err != nil {
		return fmt.Errorf("failed to get bot user: %w", err)
	}
	logger.InfoCF("discord", "Discord bot connected", map[string]any{
		"username": botUser.Username,
		"user_id":  botUser.ID,
	})

	return nil
}

func (c *DiscordChannel) Stop(ctx context.Context) error {
	logger.InfoC("discord", "Stopping Discord bot")
	c.setRunning(false)

	if err := c.session.Close(); err != nil {
		return fmt.Errorf("failed to close discord session: %w", err)
	}
	return nil
}

func (c *DiscordChannel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	if !c.IsRunning() {
		return fmt.Errorf("discord bot not running")
	}
	if msg.ChatID == "" {
		return fmt.Errorf("channel ID is empty")
	}

	for _, part := range msg.Parts {
		var err error
		switch part.Kind {
		case bus.PartText:
			err = c.sendText(ctx, msg.ChatID, part.Text)
		case bus.PartAudio, bus.PartFile:
			err = c.sendFile(ctx, msg.ChatID, part)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *DiscordChannel) sendText(ctx context.Context, channelID, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	for _, chunk := range utils.SplitMessage(text, discordSplitLimit) {
		if err := c.sendChunk(ctx, channelID, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (c *DiscordChannel) sendChunk(ctx context.Context, channelID, content string) error {
	sendCtx, cancel := context.WithTimeout(ctx, discordSendTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := c.session.ChannelMessageSend(channelID, content)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send discord message: %w", err)
		}
		return nil
	case <-sendCtx.Done():
		return fmt.Errorf("send message timeout: %w", sendCtx.Err())
	}
}

// sendFile uploads an audio or file part as an attachment. Temp parts are
// removed once the upload finishes.
func (c *DiscordChannel) sendFile(ctx context.Context, channelID string, part bus.Part) error {
	f, err := os.Open(part.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", part.Path, err)
	}
	defer f.Close()
	if part.Temp {
		defer os.Remove(part.Path)
	}

	sendCtx, cancel := context.WithTimeout(ctx, discordSendTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := c.session.ChannelFileSend(channelID, filepath.Base(part.Path), f)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to upload file: %w", err)
		}
		return nil
	case <-sendCtx.Done():
		return fmt.Errorf("file upload timeout: %w", sendCtx.Err())
	}
}

func (c *DiscordChannel) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m == nil || m.Author == nil {
		return
	}
	if m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}

	// Check the allowlist before downloading anything on a denied
	// sender's behalf.
	if !c.IsAllowed(m.Author.ID) {
		logger.DebugCF("discord", "Message rejected by allowlist", map[string]any{
			"user_id": m.Author.ID,
		})
		return
	}

	senderName := m.Author.Username
	if m.Author.Discriminator != "" && m.Author.Discriminator != "0" {
		senderName += "#" + m.Author.Discriminator
	}

	// Attachments land in the temp dir; the router removes them after the
	// command has run, since handling is asynchronous.
	mediaPaths := make([]string, 0, len(m.Attachments))
	for _, attachment := range m.Attachments {
		localPath := utils.DownloadFile(attachment.URL, c.tempDir, attachment.Filename, utils.DownloadOptions{
			LoggerPrefix: "discord",
		})
		if localPath == "" {
			logger.WarnCF("discord", "Failed to download attachment", map[string]any{
				"url": attachment.URL, "filename": attachment.Filename,
			})
			continue
		}
		mediaPaths = append(mediaPaths, localPath)
	}

	if m.Content == "" && len(mediaPaths) == 0 {
		return
	}

	logger.DebugCF("discord", "Received message", map[string]any{
		"sender_name": senderName,
		"sender_id":   m.Author.ID,
		"preview":     utils.Truncate(m.Content, 50),
	})

	metadata := map[string]string{
		"message_id":   m.ID,
		"user_id":      m.Author.ID,
		"username":     m.Author.Username,
		"display_name": senderName,
		"guild_id":     m.GuildID,
		"channel_id":   m.ChannelID,
		"is_dm":        fmt.Sprintf("%t", m.GuildID == ""),
	}
	if vs, err := s.State.VoiceState(m.GuildID, m.Author.ID); err == nil && vs != nil {
		metadata["voice_channel_id"] = vs.ChannelID
	}

	c.HandleMessage(m.Author.ID, m.ChannelID, m.Content, mediaPaths, metadata)
}
