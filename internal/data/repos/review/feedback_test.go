package review

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/clinireason-backend/internal/data/repos/testutil"
	types "github.com/yungbote/clinireason-backend/internal/domain"
	"github.com/yungbote/clinireason-backend/internal/platform/dbctx"
)

func TestFeedbackUpsertReplacesSingleRow(t *testing.T) {
	db := testutil.DB(t)
	repo := NewFeedbackRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}
	submissionID := uuid.New()
	reviewerID := uuid.New()

	first, err := repo.Upsert(dbc, &types.Feedback{
		SubmissionID:     submissionID,
		ReviewerID:       reviewerID,
		Text:             "Consider PE.",
		RevisionRequired: true,
	})
	if err != nil {
		t.Fatalf("Upsert first: %v", err)
	}
	second, err := repo.Upsert(dbc, &types.Feedback{
		SubmissionID: submissionID,
		ReviewerID:   reviewerID,
		Text:         "Good work.",
		IsApproved:   true,
	})
	if err != nil {
		t.Fatalf("Upsert second: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected the same row to be replaced, ids %s vs %s", first.ID, second.ID)
	}
	if second.Text != "Good work." || !second.IsApproved || second.RevisionRequired {
		t.Fatalf("unexpected replaced row: %+v", second)
	}
	var n int64
	db.Model(&types.Feedback{}).Where("submission_id = ?", submissionID).Count(&n)
	if n != 1 {
		t.Fatalf("expected one feedback row, got %d", n)
	}
}
