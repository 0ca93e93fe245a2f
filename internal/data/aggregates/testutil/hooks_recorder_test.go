package testutil

import (
	"testing"
	"time"
)

func TestHooksRecorderKeepsSignalsApart(t *testing.T) {
	h := &HooksRecorder{}
	h.ObserveOperation("Reasoning.Session.Start", "success", 3*time.Millisecond)
	h.IncConflict("Reasoning.Session.CommitQuestions")
	h.StageCommitted("question_1")
	h.StageCommitted("question_2")
	h.ReviewRecorded("approved")

	if len(h.Operations) != 1 || h.Operations[0].Status != "success" {
		t.Fatalf("operations: %+v", h.Operations)
	}
	if len(h.Conflicts) != 1 || len(h.Retries) != 0 {
		t.Fatalf("conflicts=%v retries=%v", h.Conflicts, h.Retries)
	}
	got := h.StagesSnapshot()
	if len(got) != 2 || got[1] != "question_2" {
		t.Fatalf("stages: %v", got)
	}
	got[0] = "mutated"
	if h.Stages[0] != "question_1" {
		t.Fatalf("snapshot aliases recorder state")
	}
	if len(h.Reviews) != 1 || h.Reviews[0] != "approved" {
		t.Fatalf("reviews: %v", h.Reviews)
	}
}
