package channels

import (
	"context"

	"github.com/glitchlabs/glitchbot/pkg/bus"
)

// Channel is one chat platform adapter. Send delivers a routed outbound
// message; splitting to the platform's length limit happens inside the
// adapter, not in the manager.
type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Send(ctx context.Context, msg bus.OutboundMessage) error
	IsRunning() bool
}
