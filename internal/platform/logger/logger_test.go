package logger

import (
	"strings"
	"testing"
)

func TestScrubberValues(t *testing.T) {
	s := newScrubber(Options{Redact: true, HashSalt: "pepper"})
	cases := []struct {
		key  string
		val  any
		want string
	}{
		{"openai_api_key", "sk-123", "[REDACTED]"},
		{"feedback_text", "Good differential, but missed PE.", "[TEXT len=33]"},
		{"rationale", nil, "[TEXT len=0]"},
		{"session_id", "abc", "abc"},
		{"note", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NTY3ODkwIn0.sig", "[REDACTED]"},
	}
	for _, tc := range cases {
		if got := s.value(tc.key, tc.val); got != tc.want {
			t.Fatalf("%s: got %v want %s", tc.key, got, tc.want)
		}
	}

	got, ok := s.value("student_id", "7b0d0b6e").(string)
	if !ok || !strings.HasPrefix(got, "hash:") {
		t.Fatalf("student_id: want hash got=%v", got)
	}
	unsalted := newScrubber(Options{Redact: true}).hash("7b0d0b6e")
	if got == unsalted {
		t.Fatalf("salt must change the pseudonym")
	}
}

func TestScrubberDisabledAndOddLength(t *testing.T) {
	off := newScrubber(Options{})
	in := []any{"password", "hunter2"}
	if out := off.kvs(in); out[1] != "hunter2" {
		t.Fatalf("disabled scrubber must pass values through, got %v", out)
	}
	on := newScrubber(Options{Redact: true})
	out := on.kvs([]any{"a", 1, "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected kvs: %+v", out)
	}
}

func TestWithKeepsPolicy(t *testing.T) {
	l := NewNop()
	child := l.With("service", "SessionService")
	if child.scrub != l.scrub {
		t.Fatalf("child logger must share the parent's scrub policy")
	}
}
