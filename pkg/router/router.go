// Package router consumes the inbound bus, dispatches commands and runs
// the passive replier for everything that is not a command.
package router

import (
	"context"
	"os"
	"strings"

	"github.com/glitchlabs/glitchbot/pkg/bus"
	"github.com/glitchlabs/glitchbot/pkg/commands"
	"github.com/glitchlabs/glitchbot/pkg/config"
	"github.com/glitchlabs/glitchbot/pkg/logger"
)

type Router struct {
	cfg  *config.Config
	bus  *bus.MessageBus
	rt   *commands.Runtime
	disp *commands.Dispatcher
}

func New(cfg *config.Config, messageBus *bus.MessageBus, rt *commands.Runtime) *Router {
	return &Router{
		cfg:  cfg,
		bus:  messageBus,
		rt:   rt,
		disp: commands.NewDispatcher(rt.Registry, rt),
	}
}

// Run consumes inbound messages until the context ends. Each message is
// handled on its own goroutine so a slow handler cannot stall the loop.
func (r *Router) Run(ctx context.Context) {
	logger.InfoC("router", "Router loop started")
	for {
		msg, ok := r.bus.ConsumeInbound(ctx)
		if !ok {
			logger.InfoC("router", "Router loop stopped")
			return
		}
		go r.Handle(ctx, msg)
	}
}

// Handle processes one inbound message end to end.
func (r *Router) Handle(ctx context.Context, msg bus.InboundMessage) {
	defer r.cleanupAttachments(msg.Media)

	senderID, username := splitSender(msg.SenderID)
	senderName := msg.SenderName
	if senderName == "" {
		senderName = username
	}
	if senderName == "" {
		senderName = senderID
	}

	if username != "" {
		if err := r.rt.Stats.TrackUser(ctx, msg.Channel, username, senderID); err != nil {
			logger.DebugCF("router", "Failed to track user", map[string]any{
				"error": err.Error(),
			})
		}
	}

	// Admins pass the whitelist gate so they can still manage it from an
	// unlisted chat.
	if r.cfg.Bot.UseWhitelist &&
		!r.rt.Store.IsWhitelisted(msg.Channel, msg.ChatID) &&
		!r.rt.Store.IsAdmin(msg.Channel, senderID) {
		logger.DebugCF("router", "Chat not whitelisted, dropping message", map[string]any{
			"platform": msg.Channel, "chat_id": msg.ChatID,
		})
		return
	}

	r.maybeAssignSuperadmin(msg.Channel, senderID, senderName)

	req := commands.Request{
		Platform:    msg.Channel,
		SenderID:    senderID,
		SenderName:  senderName,
		ChatID:      msg.ChatID,
		Text:        msg.Content,
		Attachments: msg.Media,
		Private:     msg.Private,
		Metadata:    msg.Metadata,
	}

	result := r.disp.Dispatch(ctx, req)
	if result.Matched {
		r.deliver(msg, result.Response)
		r.record(result.Response)
		return
	}

	r.passiveReply(ctx, msg, senderName)
}

// maybeAssignSuperadmin promotes the first caller on a platform that has
// auto-assignment enabled and no superadmin yet.
func (r *Router) maybeAssignSuperadmin(platform, senderID, senderName string) {
	var auto bool
	switch platform {
	case "discord":
		auto = r.cfg.Channels.Discord.AutoSuper
	case "telegram":
		auto = r.cfg.Channels.Telegram.AutoSuper
	}
	if !auto || r.rt.Store.HasSuperadmins(platform) {
		return
	}

	assigned, err := r.rt.Store.AssignFirstSuperadmin(platform, senderID)
	if err != nil {
		logger.ErrorCF("router", "Failed to assign first superadmin", map[string]any{
			"platform": platform, "error": err.Error(),
		})
		return
	}
	if assigned {
		logger.InfoCF("router", "Assigned first superadmin", map[string]any{
			"platform": platform, "user_id": senderID, "name": senderName,
		})
	}
}

func (r *Router) deliver(msg bus.InboundMessage, resp commands.Response) {
	if resp.Empty() {
		return
	}
	r.bus.PublishOutbound(bus.OutboundMessage{
		Channel: msg.Channel,
		ChatID:  msg.ChatID,
		Parts:   resp.Parts,
	})
}

// record stores the exchange a handler asked to remember.
func (r *Router) record(resp commands.Response) {
	if !resp.Record || !r.cfg.Chat.UseMemory {
		return
	}
	botLine := resp.RecordBot
	if botLine == "" {
		botLine = resp.FirstText()
	}
	if err := r.rt.Chat.Remember(resp.RecordUser, botLine); err != nil {
		logger.WarnCF("router", "Failed to record exchange", map[string]any{
			"error": err.Error(),
		})
	}
}

func (r *Router) cleanupAttachments(paths []string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.DebugCF("router", "Failed to remove attachment", map[string]any{
				"path": path, "error": err.Error(),
			})
		}
	}
}

// splitSender breaks a compound "id|username" sender into its parts. The
// Telegram adapter sends the compound form; Discord sends the bare ID.
func splitSender(s string) (string, string) {
	if i := strings.IndexByte(s, '|'); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}
