package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/clinireason-backend/internal/domain/notify"
	"github.com/yungbote/clinireason-backend/internal/domain/review"
)

var SubmissionAggregateContract = Contract{
	Name:             "Review.SubmissionAggregate",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Writes:           []string{"submission", "submission_feedback", "session", "notification"},
	Notes:            "Owns submission status, feedback, the session status flip and the notification row in one transaction.",
}

// SubmissionAggregate owns the submission/review state machine.
//
// Notification rows are written inside the same transaction and returned so the
// caller can push them to live listeners after commit.
type SubmissionAggregate interface {
	Aggregate

	Submit(ctx context.Context, in SubmitInput) (SubmitResult, error)
	StartReview(ctx context.Context, in StartReviewInput) (*review.Submission, error)
	Review(ctx context.Context, in ReviewInput) (ReviewResult, error)
}

type SubmitInput struct {
	ReportID    uuid.UUID
	StudentID   uuid.UUID
	ReviewerID  uuid.UUID
	Notes       *string
	SubmittedAt time.Time
}

type SubmitResult struct {
	Submission   *review.Submission
	Notification *notify.Notification
}

type StartReviewInput struct {
	SubmissionID uuid.UUID
	ReviewerID   uuid.UUID
}

type ReviewInput struct {
	SubmissionID uuid.UUID
	ReviewerID   uuid.UUID
	Feedback     *review.Feedback
	ReviewedAt   time.Time
}

type ReviewResult struct {
	Submission   *review.Submission
	Feedback     *review.Feedback
	Notification *notify.Notification
}
