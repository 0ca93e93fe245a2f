package bus

import (
	"context"

	"github.com/yungbote/clinireason-backend/internal/realtime"
)

// Bus carries SSE messages between instances so a notification created on one
// instance reaches streams held by another.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}
