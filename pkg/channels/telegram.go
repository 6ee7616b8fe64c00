package channels

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/glitchlabs/glitchbot/pkg/bus"
	"github.com/glitchlabs/glitchbot/pkg/config"
	"github.com/glitchlabs/glitchbot/pkg/logger"
	"github.com/glitchlabs/glitchbot/pkg/utils"
)

const telegramMaxMessageLength = 4096

type TelegramChannel struct {
	*BaseChannel
	bot     *telego.Bot
	config  config.TelegramConfig
	tempDir string
}

func NewTelegramChannel(cfg config.TelegramConfig, messageBus *bus.MessageBus, tempDir string) (*TelegramChannel, error) {
	bot, err := telego.NewBot(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	base := NewBaseChannel("telegram", cfg, messageBus, cfg.AllowFrom)

	return &TelegramChannel{
		BaseChannel: base,
		bot:         bot,
		config:      cfg,
		tempDir:     tempDir,
	}, nil
}

func (c *TelegramChannel) Start(ctx context.Context) error {
	logger.InfoC("telegram", "Starting Telegram bot (polling mode)")

	updates, err := c.bot.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout: 30,
	})
	if err != nil {
		return fmt.Errorf("failed to start long polling: %w", err)
	}

	c.setRunning(true)
	logger.InfoCF("telegram", "Telegram bot connected", map[string]any{
		"username": c.bot.Username(),
	})

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case update, ok := <-updates:
				if !ok {
					logger.InfoC("telegram", "Updates channel closed")
					return
				}
				if update.Message != nil {
					c.handleMessage(ctx, update)
				}
			}
		}
	}()

	return nil
}

func (c *TelegramChannel) Stop(ctx context.Context) error {
	logger.InfoC("telegram", "Stopping Telegram bot")
	c.setRunning(false)
	return nil
}

func (c *TelegramChannel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	if !c.IsRunning() {
		return fmt.Errorf("telegram bot not running")
	}

	chatID, err := parseChatID(msg.ChatID)
	if err != nil {
		return fmt.Errorf("invalid chat ID: %w", err)
	}

	for _, part := range msg.Parts {
		switch part.Kind {
		case bus.PartText:
			err = c.sendText(ctx, chatID, part.Text)
		case bus.PartAudio:
			err = c.sendAudio(ctx, chatID, part)
		case bus.PartFile:
			err = c.sendDocument(ctx, chatID, part)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *TelegramChannel) sendText(ctx context.Context, chatID int64, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	for _, chunk := range utils.SplitMessage(text, telegramMaxMessageLength) {
		if _, err := c.bot.SendMessage(ctx, tu.Message(tu.ID(chatID), chunk)); err != nil {
			return fmt.Errorf("failed to send telegram message: %w", err)
		}
	}
	return nil
}

// sendAudio delivers an audio part. Opus files go out as voice messages,
// which Telegram renders with the round play button; everything else is a
// regular audio upload.
func (c *TelegramChannel) sendAudio(ctx context.Context, chatID int64, part bus.Part) error {
	f, err := os.Open(part.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", part.Path, err)
	}
	defer f.Close()
	if part.Temp {
		defer os.Remove(part.Path)
	}

	name := filepath.Base(part.Path)
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".ogg" || ext == ".oga" {
		_, err = c.bot.SendVoice(ctx, tu.Voice(tu.ID(chatID), tu.File(tu.NameReader(f, name))))
	} else {
		_, err = c.bot.SendAudio(ctx, tu.Audio(tu.ID(chatID), tu.File(tu.NameReader(f, name))))
	}
	if err != nil {
		return fmt.Errorf("failed to send telegram audio: %w", err)
	}
	return nil
}

func (c *TelegramChannel) sendDocument(ctx context.Context, chatID int64, part bus.Part) error {
	f, err := os.Open(part.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", part.Path, err)
	}
	defer f.Close()
	if part.Temp {
		defer os.Remove(part.Path)
	}

	name := filepath.Base(part.Path)
	if _, err := c.bot.SendDocument(ctx, tu.Document(tu.ID(chatID), tu.File(tu.NameReader(f, name)))); err != nil {
		return fmt.Errorf("failed to send telegram document: %w", err)
	}
	return nil
}

func (c *TelegramChannel) handleMessage(ctx context.Context, update telego.Update) {
	message := update.Message
	if message == nil {
		return
	}

	user := message.From
	if user == nil || user.IsBot {
		return
	}

	userID := fmt.Sprintf("%d", user.ID)
	senderID := userID
	if user.Username != "" {
		senderID = fmt.Sprintf("%s|%s", userID, user.Username)
	}

	// Check the allowlist before downloading anything on a denied
	// sender's behalf.
	if !c.IsAllowed(userID) && !c.IsAllowed(senderID) {
		logger.DebugCF("telegram", "Message rejected by allowlist", map[string]any{
			"user_id":  userID,
			"username": user.Username,
		})
		return
	}

	content := message.Text
	if message.Caption != "" {
		if content != "" {
			content += "\n"
		}
		content += message.Caption
	}

	// Downloaded attachments stay in the temp dir until the router has
	// dispatched the command; it removes them afterwards.
	var mediaPaths []string
	if message.Voice != nil {
		if path := c.downloadFile(ctx, message.Voice.FileID, ".ogg"); path != "" {
			mediaPaths = append(mediaPaths, path)
		}
	}
	if message.Audio != nil {
		if path := c.downloadFile(ctx, message.Audio.FileID, ".mp3"); path != "" {
			mediaPaths = append(mediaPaths, path)
		}
	}
	if message.Document != nil {
		if path := c.downloadFile(ctx, message.Document.FileID, ""); path != "" {
			mediaPaths = append(mediaPaths, path)
		}
	}

	if content == "" && len(mediaPaths) == 0 {
		return
	}

	chatID := fmt.Sprintf("%d", message.Chat.ID)
	logger.DebugCF("telegram", "Received message", map[string]any{
		"sender_id": senderID,
		"chat_id":   chatID,
		"preview":   utils.Truncate(content, 50),
	})

	// Not every Telegram account has a username; the profile name keeps
	// chat-facing text from falling back to the numeric ID.
	metadata := map[string]string{
		"message_id":     fmt.Sprintf("%d", message.MessageID),
		"user_id":        userID,
		"username":       user.Username,
		"first_name":     user.FirstName,
		"display_name":   strings.TrimSpace(user.FirstName + " " + user.LastName),
		"is_group":       fmt.Sprintf("%t", message.Chat.Type != telego.ChatTypePrivate),
		"can_send_voice": "true",
	}

	c.HandleMessage(senderID, chatID, content, mediaPaths, metadata)
}

func (c *TelegramChannel) downloadFile(ctx context.Context, fileID, ext string) string {
	file, err := c.bot.GetFile(ctx, &telego.GetFileParams{FileID: fileID})
	if err != nil {
		logger.ErrorCF("telegram", "Failed to get file", map[string]any{
			"error": err.Error(),
		})
		return ""
	}
	if file.FilePath == "" {
		return ""
	}

	url := c.bot.FileDownloadURL(file.FilePath)
	filename := filepath.Base(file.FilePath) + ext
	return utils.DownloadFile(url, c.tempDir, filename, utils.DownloadOptions{
		LoggerPrefix: "telegram",
	})
}

func parseChatID(chatIDStr string) (int64, error) {
	var id int64
	_, err := fmt.Sscanf(chatIDStr, "%d", &id)
	return id, err
}
