package router

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/glitchlabs/glitchbot/pkg/bus"
	"github.com/glitchlabs/glitchbot/pkg/commands"
	"github.com/glitchlabs/glitchbot/pkg/logger"
)

const monkeyScreech = "AAAAAHHHHH-EEEEE-AAAAAHHHHH!"

// passiveReply handles every message that was not a command: memory
// recording, the monkey easter egg, name mentions and the random reply
// chance. At most one reply goes out per message.
func (r *Router) passiveReply(ctx context.Context, msg bus.InboundMessage, senderName string) {
	if strings.TrimSpace(msg.Content) == "" {
		return
	}

	if r.cfg.Chat.RecordAll && r.cfg.Chat.UseMemory {
		line := fmt.Sprintf("%s says: %s", senderName, msg.Content)
		if err := r.rt.Chat.Remember(line, ""); err != nil {
			logger.WarnCF("router", "Failed to record message", map[string]any{
				"error": err.Error(),
			})
		}
	}

	lowered := strings.ToLower(msg.Content)

	if r.cfg.Chat.ReplyToMonkey && strings.Contains(lowered, "monkey") {
		r.replyToMonkey(msg)
		return
	}

	botName := strings.ToLower(r.cfg.Bot.Name)
	if r.cfg.Chat.ReplyToName && botName != "" && strings.Contains(lowered, botName) {
		r.replyToName(ctx, msg, senderName)
		return
	}

	if chance := r.cfg.Chat.RandReplyChance; chance > 0 && rand.Float64() < chance {
		r.randomReply(msg)
	}
}

// replyToMonkey screeches and plays the monkey sound, when the library has
// one.
func (r *Router) replyToMonkey(msg bus.InboundMessage) {
	resp := commands.Text("%s", monkeyScreech)
	if match, err := r.rt.Sounds.Resolve("monkey"); err == nil {
		resp.AddAudio(match.Path, false)
	}
	r.deliver(msg, resp)
}

// replyToName answers a mention of the bot's name with a GPT reply, falling
// back to the canned response list when the backend fails.
func (r *Router) replyToName(ctx context.Context, msg bus.InboundMessage, senderName string) {
	prompt := fmt.Sprintf("%s says: %s", senderName, msg.Content)

	reply, err := r.rt.Chat.Respond(ctx, prompt)
	if err != nil {
		logger.WarnCF("router", "Name mention reply failed, using canned response", map[string]any{
			"error": err.Error(),
		})
		r.randomReply(msg)
		return
	}

	r.deliver(msg, commands.Text("%s", reply))
	if r.cfg.Chat.UseMemory {
		if err := r.rt.Chat.Remember(prompt, reply); err != nil {
			logger.WarnCF("router", "Failed to record mention reply", map[string]any{
				"error": err.Error(),
			})
		}
	}
}

// randomReply sends one line from the canned response list, if any exist.
func (r *Router) randomReply(msg bus.InboundMessage) {
	responses := r.rt.Chat.Responses()
	if len(responses) == 0 {
		return
	}
	r.deliver(msg, commands.Text("%s", responses[rand.Intn(len(responses))]))
}
