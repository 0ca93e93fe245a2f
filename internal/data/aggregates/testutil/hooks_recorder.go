package testutil

import (
	"sync"
	"time"

	"github.com/yungbote/clinireason-backend/internal/data/aggregates"
)

// HooksRecorder captures aggregate hook signals in tests.
type HooksRecorder struct {
	mu sync.Mutex

	Operations []OperationEvent
	Conflicts  []string
	Retries    []string
	Stages     []string
	Reviews    []string
}

type OperationEvent struct {
	Name     string
	Status   string
	Duration time.Duration
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveOperation(name, status string, dur time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Operations = append(h.Operations, OperationEvent{Name: name, Status: status, Duration: dur})
}

func (h *HooksRecorder) IncConflict(name string) { h.append(&h.Conflicts, name) }
func (h *HooksRecorder) IncRetry(name string)    { h.append(&h.Retries, name) }
func (h *HooksRecorder) StageCommitted(s string) { h.append(&h.Stages, s) }
func (h *HooksRecorder) ReviewRecorded(s string) { h.append(&h.Reviews, s) }

func (h *HooksRecorder) append(dst *[]string, v string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	*dst = append(*dst, v)
}

// StagesSnapshot returns a copy of the committed stages seen so far.
func (h *HooksRecorder) StagesSnapshot() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.Stages...)
}
