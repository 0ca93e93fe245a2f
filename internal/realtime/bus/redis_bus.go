package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/clinireason-backend/internal/platform/logger"
	"github.com/yungbote/clinireason-backend/internal/realtime"
)

const (
	defaultChannelPrefix = "clinireason:sse"
	envelopeVersion      = 1
	// Pushes older than this are dropped; the client re-reads its mailbox on reconnect.
	maxEnvelopeAge = 30 * time.Second
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Channel is the prefix of the per-user pub/sub channels.
	Channel string
}

// envelope is the wire form of a message on the Redis channel.
type envelope struct {
	V      int                 `json:"v"`
	Origin string              `json:"origin"`
	SentAt time.Time           `json:"sent_at"`
	Msg    realtime.SSEMessage `json:"msg"`
}

type redisBus struct {
	log    *logger.Logger
	rdb    *goredis.Client
	prefix string
	origin string
	now    func() time.Time
}

// NewRedisBus connects and pings Redis before returning. Every SSE channel
// maps to its own Redis channel under the configured prefix.
func NewRedisBus(log *logger.Logger, cfg RedisConfig) (Bus, *goredis.Client, error) {
	if log == nil {
		return nil, nil, fmt.Errorf("logger required")
	}
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis ping: %w", err)
	}
	b := newRedisBus(log, rdb, cfg.Channel)
	b.log.Info("Redis SSE bus connected", "addr", addr, "prefix", b.prefix, "origin", b.origin)
	return b, rdb, nil
}

func newRedisBus(log *logger.Logger, rdb *goredis.Client, prefix string) *redisBus {
	prefix = strings.TrimRight(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = defaultChannelPrefix
	}
	return &redisBus{
		log:    log.With("service", "RedisSSEBus"),
		rdb:    rdb,
		prefix: prefix,
		origin: uuid.NewString(),
		now:    time.Now,
	}
}

func (b *redisBus) topic(channel string) string {
	return b.prefix + ":" + channel
}

func (b *redisBus) encode(msg realtime.SSEMessage) ([]byte, error) {
	if strings.TrimSpace(msg.Channel) == "" {
		return nil, fmt.Errorf("message has no channel")
	}
	return json.Marshal(envelope{V: envelopeVersion, Origin: b.origin, SentAt: b.now().UTC(), Msg: msg})
}

// decode rejects payloads from other wire versions and stale pushes.
func (b *redisBus) decode(payload string) (realtime.SSEMessage, error) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return realtime.SSEMessage{}, err
	}
	if env.V != envelopeVersion {
		return realtime.SSEMessage{}, fmt.Errorf("unsupported envelope version %d", env.V)
	}
	if age := b.now().Sub(env.SentAt); age > maxEnvelopeAge {
		return realtime.SSEMessage{}, fmt.Errorf("stale envelope (%s old)", age.Round(time.Second))
	}
	return env.Msg, nil
}

func (b *redisBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis SSE bus not initialized")
	}
	raw, err := b.encode(msg)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.topic(msg.Channel), raw).Err()
}

func (b *redisBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if b == nil || b.rdb == nil {
		return fmt.Errorf("redis SSE bus not initialized")
	}
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}

	sub := b.rdb.PSubscribe(ctx, b.topic("*"))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("redis psubscribe: %w", err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok || m == nil {
					return
				}
				msg, err := b.decode(m.Payload)
				if err != nil {
					b.log.Warn("dropping redis SSE payload", "channel", m.Channel, "error", err)
					continue
				}
				onMsg(msg)
			}
		}
	}()
	return nil
}

func (b *redisBus) Close() error {
	if b == nil || b.rdb == nil {
		return nil
	}
	return b.rdb.Close()
}
