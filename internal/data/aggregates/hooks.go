package aggregates

import (
	"context"
	"strings"
	"time"

	"github.com/yungbote/clinireason-backend/internal/observability"
)

// Hooks receives aggregate signals. Operation outcomes fire for every write;
// StageCommitted and ReviewRecorded fire only after the transaction commits.
type Hooks interface {
	ObserveOperation(name, status string, dur time.Duration)
	IncConflict(name string)
	IncRetry(name string)
	StageCommitted(stage string)
	ReviewRecorded(status string)
}

type noopHooks struct{}

func (noopHooks) ObserveOperation(string, string, time.Duration) {}
func (noopHooks) IncConflict(string)                             {}
func (noopHooks) IncRetry(string)                                {}
func (noopHooks) StageCommitted(string)                          {}
func (noopHooks) ReviewRecorded(string)                          {}

type metricsHooks struct {
	metrics *observability.Metrics
}

// NewObservabilityHooks reports aggregate signals to the metrics registry.
// A nil registry yields hooks that drop everything.
func NewObservabilityHooks(metrics *observability.Metrics) Hooks {
	if metrics == nil {
		return noopHooks{}
	}
	return metricsHooks{metrics: metrics}
}

func (h metricsHooks) ObserveOperation(name, status string, dur time.Duration) {
	h.metrics.ObserveAggregateOperation(strings.TrimSpace(name), strings.TrimSpace(status), dur)
}

func (h metricsHooks) IncConflict(name string) {
	h.metrics.IncAggregateConflict(strings.TrimSpace(name))
}

func (h metricsHooks) IncRetry(name string) {
	h.metrics.IncAggregateRetry(strings.TrimSpace(name))
}

func (h metricsHooks) StageCommitted(stage string) { h.metrics.IncSessionStage(stage) }

func (h metricsHooks) ReviewRecorded(status string) { h.metrics.IncReviewOutcome(status) }

// commitLog collects facts produced inside a transaction. They are replayed
// to Hooks only when the transaction commits.
type commitLog struct {
	stages  []string
	reviews []string
}

type commitLogKey struct{}

func withCommitLog(ctx context.Context) (context.Context, *commitLog) {
	l := &commitLog{}
	return context.WithValue(ctx, commitLogKey{}, l), l
}

func noteStage(ctx context.Context, stage string) {
	if l, ok := ctx.Value(commitLogKey{}).(*commitLog); ok {
		l.stages = append(l.stages, stage)
	}
}

func noteReview(ctx context.Context, status string) {
	if l, ok := ctx.Value(commitLogKey{}).(*commitLog); ok {
		l.reviews = append(l.reviews, status)
	}
}

func (l *commitLog) replay(h Hooks) {
	for _, s := range l.stages {
		h.StageCommitted(s)
	}
	for _, s := range l.reviews {
		h.ReviewRecorded(s)
	}
}
