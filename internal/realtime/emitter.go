package realtime

import "context"

// Emitter delivers a message to live listeners. Delivery is best effort and
// callers never fail because of it.
type Emitter interface {
	Emit(ctx context.Context, msg SSEMessage)
}

type NopEmitter struct{}

func (NopEmitter) Emit(context.Context, SSEMessage) {}
