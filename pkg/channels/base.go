package channels

import (
	"strings"
	"sync/atomic"

	"github.com/glitchlabs/glitchbot/pkg/bus"
	"github.com/glitchlabs/glitchbot/pkg/logger"
)

// BaseChannel carries the behavior every adapter shares: the allowlist
// check and publishing accepted messages onto the bus.
type BaseChannel struct {
	name      string
	config    any
	bus       *bus.MessageBus
	allowFrom []string
	running   atomic.Bool
}

func NewBaseChannel(name string, cfg any, messageBus *bus.MessageBus, allowFrom []string) *BaseChannel {
	return &BaseChannel{
		name:      name,
		config:    cfg,
		bus:       messageBus,
		allowFrom: allowFrom,
	}
}

func (b *BaseChannel) Name() string { return b.name }

func (b *BaseChannel) IsRunning() bool { return b.running.Load() }

func (b *BaseChannel) setRunning(v bool) { b.running.Store(v) }

// IsAllowed checks a sender against the allowlist. An empty allowlist
// admits everyone. Both sides may use the compound "id|username" form, so
// each component of the sender is matched against each component of every
// entry.
func (b *BaseChannel) IsAllowed(senderID string) bool {
	if len(b.allowFrom) == 0 {
		return true
	}

	id, username := splitSenderID(senderID)
	for _, entry := range b.allowFrom {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if entry == senderID || entry == id {
			return true
		}
		if username != "" && (entry == username || entry == "@"+username) {
			return true
		}
		entryID, entryName := splitSenderID(entry)
		if entryID == id {
			return true
		}
		if username != "" && entryName == username {
			return true
		}
	}
	return false
}

// splitSenderID breaks a compound "id|username" sender into its parts.
func splitSenderID(s string) (string, string) {
	if i := strings.IndexByte(s, '|'); i >= 0 {
		return s[:i], s[i+1:]
	}
	return s, ""
}

// HandleMessage filters an incoming platform message through the allowlist
// and publishes it inbound. Adapters call this instead of touching the bus
// directly.
func (b *BaseChannel) HandleMessage(senderID, chatID, content string, media []string, metadata map[string]string) {
	if !b.IsAllowed(senderID) {
		logger.DebugCF(b.name, "Message rejected by allowlist", map[string]any{
			"sender_id": senderID,
		})
		return
	}

	_, username := splitSenderID(senderID)
	senderName := metadata["display_name"]
	if senderName == "" {
		senderName = metadata["username"]
	}
	if senderName == "" {
		senderName = username
	}

	private := metadata["is_dm"] == "true" || metadata["is_group"] == "false"

	b.bus.PublishInbound(bus.InboundMessage{
		Channel:    b.name,
		SenderID:   senderID,
		SenderName: senderName,
		ChatID:     chatID,
		Content:    content,
		Media:      media,
		Private:    private,
		Metadata:   metadata,
	})
}
