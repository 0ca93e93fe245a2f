package bus

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/clinireason-backend/internal/platform/logger"
	"github.com/yungbote/clinireason-backend/internal/realtime"
)

func TestRedisEnvelopeRoundTripAndTopics(t *testing.T) {
	b := newRedisBus(logger.NewNop(), nil, " clinireason:test: ")
	if b.prefix != "clinireason:test" {
		t.Fatalf("prefix: %q", b.prefix)
	}
	userID := uuid.New()
	msg := realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   realtime.SSEEventNotificationCreated,
		Data:    map[string]any{"title": "Feedback received"},
	}
	if got := b.topic(msg.Channel); got != "clinireason:test:user:"+userID.String() {
		t.Fatalf("topic: %q", got)
	}

	raw, err := b.encode(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := b.decode(string(raw))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Channel != msg.Channel || got.Event != msg.Event {
		t.Fatalf("decoded %+v", got)
	}

	if _, err := b.encode(realtime.SSEMessage{Event: realtime.SSEEventNotificationCreated}); err == nil {
		t.Fatalf("expected error for a message without channel")
	}
}

func TestRedisEnvelopeRejectsStaleAndForeignVersions(t *testing.T) {
	b := newRedisBus(logger.NewNop(), nil, "")
	if b.prefix != defaultChannelPrefix {
		t.Fatalf("default prefix: %q", b.prefix)
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	stale, _ := json.Marshal(envelope{V: envelopeVersion, SentAt: now.Add(-time.Minute), Msg: realtime.SSEMessage{Channel: "user:x"}})
	if _, err := b.decode(string(stale)); err == nil {
		t.Fatalf("expected stale envelope to be rejected")
	}
	foreign, _ := json.Marshal(envelope{V: 2, SentAt: now, Msg: realtime.SSEMessage{Channel: "user:x"}})
	if _, err := b.decode(string(foreign)); err == nil {
		t.Fatalf("expected unknown version to be rejected")
	}
	if _, err := b.decode("not json"); err == nil {
		t.Fatalf("expected garbage to be rejected")
	}
}
