package aggregates

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormattingAndCodes(t *testing.T) {
	base := errors.New("timeout talking to generator")
	err := Wrap(CodeGenerationFailed, "Generation.Symptoms", base)
	if !IsCode(err, CodeGenerationFailed) {
		t.Fatalf("expected generation_failed code, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected cause to unwrap")
	}
	wrapped := fmt.Errorf("outer: %w", err)
	if CodeOf(wrapped) != CodeGenerationFailed {
		t.Fatalf("CodeOf through fmt wrap: %s", CodeOf(wrapped))
	}
	if got := NewError(CodeNotFound, "Op", "", nil).Error(); got != "Op (not_found)" {
		t.Fatalf("unexpected message %q", got)
	}
	if Wrap(CodeInternal, "x", nil) != nil {
		t.Fatalf("Wrap(nil) should be nil")
	}
}

func TestRetryableCodes(t *testing.T) {
	for code, want := range map[ErrorCode]bool{
		CodeGenerationFailed: true,
		CodeConflict:         true,
		CodeRetryable:        true,
		CodeValidation:       false,
		CodeNotFound:         false,
	} {
		if code.Retryable() != want {
			t.Fatalf("%s retryable=%v want %v", code, code.Retryable(), want)
		}
	}
}
