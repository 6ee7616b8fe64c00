package channels

import (
	"context"
	"testing"
	"time"

	"github.com/mymmrac/telego"

	"github.com/glitchlabs/glitchbot/pkg/bus"
)

func TestParseChatID(t *testing.T) {
	tests := []struct {
		input   string
		want    int64
		wantErr bool
	}{
		{"123456", 123456, false},
		{"-1001234567890", -1001234567890, false},
		{"not-a-number", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := parseChatID(tt.input)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseChatID(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseChatID(%q) error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseChatID(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

// Accounts without a username still need a readable sender name, so the
// profile name carries through as the display name.
func TestTelegramSenderNameWithoutUsername(t *testing.T) {
	mb := bus.NewMessageBus()
	defer mb.Close()

	ch := &TelegramChannel{BaseChannel: NewBaseChannel("telegram", nil, mb, nil)}
	ch.handleMessage(context.Background(), telego.Update{Message: &telego.Message{
		MessageID: 1,
		From:      &telego.User{ID: 42, FirstName: "Carol", LastName: "Smith"},
		Chat:      telego.Chat{ID: 100, Type: telego.ChatTypePrivate},
		Text:      "hello",
	}})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	msg, ok := mb.ConsumeInbound(ctx)
	if !ok {
		t.Fatal("message never reached the bus")
	}
	if msg.SenderName != "Carol Smith" {
		t.Errorf("unexpected sender name: %q", msg.SenderName)
	}
	if msg.SenderID != "42" {
		t.Errorf("unexpected sender ID: %q", msg.SenderID)
	}
	if !msg.Private {
		t.Error("private chat not flagged")
	}
}
