package promptstyle

import (
	"strings"
	"testing"
)

func TestApplySystemIsIdempotent(t *testing.T) {
	once := ApplySystem("Generate symptoms.", "json")
	if !strings.HasPrefix(once, marker) {
		t.Fatalf("expected marker prefix, got %q", once)
	}
	if !strings.Contains(once, "conforms to the schema") {
		t.Fatalf("json mode guidance missing: %q", once)
	}
	if twice := ApplySystem(once, "json"); twice != once {
		t.Fatalf("second application changed prompt")
	}
	if got := ApplySystem("   ", "json"); got != "" {
		t.Fatalf("blank prompt should stay blank, got %q", got)
	}
}
