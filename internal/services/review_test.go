package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/clinireason-backend/internal/domain"
	domainagg "github.com/yungbote/clinireason-backend/internal/domain/aggregates"
	"github.com/yungbote/clinireason-backend/internal/domain/notify"
	"github.com/yungbote/clinireason-backend/internal/domain/reasoning"
	"github.com/yungbote/clinireason-backend/internal/domain/review"
	"github.com/yungbote/clinireason-backend/internal/realtime"
)

func TestApprovedReviewNotifiesStudentOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	student := h.student(t)
	reviewer := h.instructor(t)
	sess, rep := h.completedSession(t, student.ID)

	sub, err := h.reviews.Submit(ctx, student.ID, rep.ID, reviewer.ID, strPtr("Please check my plan"))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if sub.Status != review.StatusPending || sub.SessionID != sess.ID {
		t.Fatalf("unexpected submission %+v", sub)
	}
	if h.emitter.count(realtime.SSEEventNotificationCreated, reviewer.ID) != 1 {
		t.Fatalf("reviewer should get one live notification")
	}
	queue, err := h.reviews.ListQueue(ctx, reviewer.ID, nil, 0)
	if err != nil || len(queue) != 1 || queue[0].ID != sub.ID {
		t.Fatalf("ListQueue: n=%d err=%v", len(queue), err)
	}

	out, err := h.reviews.Review(ctx, reviewer.ID, sub.ID, FeedbackInput{
		Text:       "Good reasoning.",
		Grade:      strPtr("A"),
		IsApproved: true,
		Strengths:  []string{"Thorough history"},
	})
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if out.Submission.Status != review.StatusApproved || out.Submission.ReviewedAt == nil || out.Feedback == nil {
		t.Fatalf("unexpected outcome %+v", out.Submission)
	}
	cur, _ := h.repos.Sessions.GetByID(dbcOf(ctx), sess.ID)
	if cur.Status != reasoning.StatusReviewed {
		t.Fatalf("session status = %s, want reviewed", cur.Status)
	}
	if n := h.count(t, &types.Notification{}, "user_id = ? AND type = ?", student.ID, notify.TypeFeedbackReceived); n != 1 {
		t.Fatalf("expected one feedback notification, got %d", n)
	}
	if h.emitter.count(realtime.SSEEventSubmissionUpdated, student.ID) == 0 {
		t.Fatalf("student should see submission updates")
	}

	if _, err := h.reviews.Review(ctx, reviewer.ID, sub.ID, FeedbackInput{Text: "Changed my mind.", IsRejected: true}); !domainagg.IsCode(err, domainagg.CodeConflict) {
		t.Fatalf("second review: expected conflict, got %v", err)
	}
	if n := h.count(t, &types.Notification{}, "user_id = ?", student.ID); n != 1 {
		t.Fatalf("failed review must not notify, got %d", n)
	}
	queue, _ = h.reviews.ListQueue(ctx, reviewer.ID, nil, 0)
	if len(queue) != 0 {
		t.Fatalf("reviewed submission should leave the open queue")
	}
}

func TestReviewRequiresFeedbackText(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	student := h.student(t)
	reviewer := h.instructor(t)
	_, rep := h.completedSession(t, student.ID)
	sub, err := h.reviews.Submit(ctx, student.ID, rep.ID, reviewer.ID, nil)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := h.reviews.Review(ctx, reviewer.ID, sub.ID, FeedbackInput{Text: "  ", IsApproved: true}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("expected validation, got %v", err)
	}
	cur, _ := h.repos.Submissions.GetByID(dbcOf(ctx), sub.ID)
	if cur.Status != review.StatusPending {
		t.Fatalf("status = %s, want pending", cur.Status)
	}
}

func TestRevisionRequestedFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	student := h.student(t)
	reviewer := h.instructor(t)
	_, rep := h.completedSession(t, student.ID)
	sub, _ := h.reviews.Submit(ctx, student.ID, rep.ID, reviewer.ID, nil)

	if _, err := h.reviews.StartReview(ctx, reviewer.ID, sub.ID); err != nil {
		t.Fatalf("StartReview: %v", err)
	}
	out, err := h.reviews.Review(ctx, reviewer.ID, sub.ID, FeedbackInput{
		Text:                "Consider PE.",
		SuggestedDiagnosis:  strPtr("Pulmonary embolism"),
		RevisionRequired:    true,
		AreasForImprovement: []string{"Risk stratification"},
	})
	if err != nil {
		t.Fatalf("Review: %v", err)
	}
	if out.Submission.Status != review.StatusRevisionRequested {
		t.Fatalf("status = %s, want revision_requested", out.Submission.Status)
	}
}

func TestSubmissionVisibility(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	student := h.student(t)
	reviewer := h.instructor(t)
	stranger := h.student(t)
	_, rep := h.completedSession(t, student.ID)
	sub, err := h.reviews.Submit(ctx, student.ID, rep.ID, reviewer.ID, nil)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	for _, id := range []uuid.UUID{student.ID, reviewer.ID} {
		detail, err := h.reviews.GetSubmission(ctx, id, sub.ID)
		if err != nil {
			t.Fatalf("GetSubmission(%s): %v", id, err)
		}
		if detail.Session == nil || detail.Session.Report == nil || len(detail.Session.Differentials) != 3 || detail.Feedback != nil {
			t.Fatalf("unexpected detail for %s", id)
		}
	}
	if _, err := h.reviews.GetSubmission(ctx, stranger.ID, sub.ID); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("stranger: expected not_found, got %v", err)
	}

	mine, err := h.reviews.ListMine(ctx, student.ID, 0)
	if err != nil || len(mine) != 1 {
		t.Fatalf("ListMine: n=%d err=%v", len(mine), err)
	}
	reviewers, err := h.reviews.ListReviewers(ctx)
	if err != nil || len(reviewers) != 1 || reviewers[0].ID != reviewer.ID {
		t.Fatalf("ListReviewers: n=%d err=%v", len(reviewers), err)
	}
}
