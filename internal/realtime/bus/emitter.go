package bus

import (
	"context"
	"time"

	"github.com/yungbote/clinireason-backend/internal/platform/logger"
	"github.com/yungbote/clinireason-backend/internal/realtime"
)

// Emitter publishes through the bus; the forwarder on every instance,
// this one included, delivers to its local hub. If publishing fails the
// message still reaches local streams.
type Emitter struct {
	log *logger.Logger
	bus Bus
	hub *realtime.SSEHub
}

func NewEmitter(log *logger.Logger, b Bus, hub *realtime.SSEHub) *Emitter {
	return &Emitter{log: log.With("service", "SSEEmitter"), bus: b, hub: hub}
}

func (e *Emitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	if e.bus == nil {
		e.hub.Broadcast(msg)
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := e.bus.Publish(pctx, msg); err != nil {
		e.log.Warn("SSE publish failed; delivering locally", "event", string(msg.Event), "error", err)
		e.hub.Broadcast(msg)
	}
}

// Forward starts delivering bus messages into the local hub.
func (e *Emitter) Forward(ctx context.Context) error {
	if e.bus == nil {
		return nil
	}
	return e.bus.StartForwarder(ctx, e.hub.Broadcast)
}
