package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestLogFields(t *testing.T) {
	if got := LogFields(context.Background()); len(got) != 0 {
		t.Fatalf("empty context: %v", got)
	}
	id := uuid.New()
	ctx := WithTraceData(context.Background(), &TraceData{TraceID: "t-1"})
	ctx = WithRequestData(ctx, &RequestData{UserID: id, Role: "student"})
	got := LogFields(ctx)
	want := []any{"trace_id", "t-1", "user_id", id.String(), "role", "student"}
	if len(got) != len(want) {
		t.Fatalf("fields: got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("field %d: got %v want %v", i, got[i], want[i])
		}
	}
}

func TestDefaultAndNilLookups(t *testing.T) {
	if Default(nil) == nil {
		t.Fatalf("Default(nil) returned nil")
	}
	if GetRequestData(nil) != nil || GetTraceData(nil) != nil {
		t.Fatalf("nil context lookups must return nil")
	}
}
