package aggregates

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/clinireason-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/clinireason-backend/internal/domain/aggregates"
	"github.com/yungbote/clinireason-backend/internal/domain/reasoning"
	"github.com/yungbote/clinireason-backend/internal/platform/dbctx"
)

func TestRequireStage(t *testing.T) {
	if err := RequireStage(reasoning.StageSymptomsReady, reasoning.StageSymptomsReady); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	err := MapError("op", RequireStage(reasoning.StageRegionSelected, reasoning.StageSymptomsReady))
	if !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("wrong stage should be a validation error, got %v", err)
	}
}

func TestRequireStatusAllowed(t *testing.T) {
	if err := RequireStatusAllowed("pending", "pending", "in_review"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := RequireStatusAllowed("approved", "pending", "in_review"); err == nil {
		t.Fatalf("expected conflict error")
	}
}

func TestRequireVersionMatch(t *testing.T) {
	if err := RequireVersionMatch(3, 3); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := RequireVersionMatch(2, 3); !domainagg.IsCode(MapError("op", err), domainagg.CodeConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestRequireCASSuccess(t *testing.T) {
	if err := RequireCASSuccess(true, "ok"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := RequireCASSuccess(false, "stale"); err == nil {
		t.Fatalf("expected conflict error")
	}
}

func TestAdvanceStageBumpsVersionOnce(t *testing.T) {
	db := testutil.DB(t)
	student := testutil.SeedUser(t, db, "student")
	s := testutil.SeedSession(t, db, student.ID, reasoning.StatusInProgress, reasoning.StageRegionSelected)
	guard := NewCASGuard(db)
	dbc := dbctx.Context{Ctx: context.Background()}

	ok, err := guard.AdvanceStage(dbc, "session", s.ID, 0, reasoning.StageRegionSelected, map[string]any{"stage": reasoning.StageSymptomsReady})
	if err != nil || !ok {
		t.Fatalf("first advance: ok=%v err=%v", ok, err)
	}
	ok, err = guard.AdvanceStage(dbc, "session", s.ID, 0, reasoning.StageRegionSelected, map[string]any{"stage": reasoning.StageSymptomsReady})
	if err != nil || ok {
		t.Fatalf("stale advance must not apply: ok=%v err=%v", ok, err)
	}
	var got reasoning.Session
	if err := db.First(&got, "id = ?", s.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Version != 1 || got.Stage != reasoning.StageSymptomsReady {
		t.Fatalf("unexpected session after CAS: version=%d stage=%s", got.Version, got.Stage)
	}
	if _, err := guard.AdvanceStage(dbc, "session", uuid.Nil, 0, "x", nil); err == nil {
		t.Fatalf("expected validation error for nil id")
	}
}
