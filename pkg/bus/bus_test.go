package bus

import (
	"context"
	"testing"
	"time"
)

func TestPublishConsumeInbound(t *testing.T) {
	mb := NewMessageBus()
	defer mb.Close()

	mb.PublishInbound(InboundMessage{Channel: "discord", SenderID: "42", Content: "/roll 2d6"})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	msg, ok := mb.ConsumeInbound(ctx)
	if !ok {
		t.Fatal("expected inbound message")
	}
	if msg.Channel != "discord" || msg.Content != "/roll 2d6" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestOutboundPartsPreserveOrder(t *testing.T) {
	mb := NewMessageBus()
	defer mb.Close()

	mb.PublishOutbound(OutboundMessage{
		Channel: "telegram",
		ChatID:  "100",
		Parts: []Part{
			{Kind: PartText, Text: "rolled 7"},
			{Kind: PartAudio, Path: "/tmp/clip.mp3", Temp: true},
		},
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	msg, ok := mb.SubscribeOutbound(ctx)
	if !ok {
		t.Fatal("expected outbound message")
	}
	if len(msg.Parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(msg.Parts))
	}
	if msg.Parts[0].Kind != PartText || msg.Parts[1].Kind != PartAudio {
		t.Fatalf("parts out of order: %+v", msg.Parts)
	}
	if !msg.Parts[1].Temp {
		t.Fatal("temp flag lost")
	}
}

func TestConsumeInboundHonoursCancel(t *testing.T) {
	mb := NewMessageBus()
	defer mb.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, ok := mb.ConsumeInbound(ctx); ok {
		t.Fatal("expected cancelled read to fail")
	}
}

func TestPublishAfterCloseDoesNotPanic(t *testing.T) {
	mb := NewMessageBus()
	mb.Close()
	mb.PublishInbound(InboundMessage{Channel: "discord"})
	mb.PublishOutbound(OutboundMessage{Channel: "discord"})
}
