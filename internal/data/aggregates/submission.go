package aggregates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/clinireason-backend/internal/data/repos"
	domainagg "github.com/yungbote/clinireason-backend/internal/domain/aggregates"
	"github.com/yungbote/clinireason-backend/internal/domain/notify"
	"github.com/yungbote/clinireason-backend/internal/domain/reasoning"
	"github.com/yungbote/clinireason-backend/internal/domain/review"
	"github.com/yungbote/clinireason-backend/internal/platform/dbctx"
)

const submissionTable = "submission"

type SubmissionAggregateDeps struct {
	Base BaseDeps

	Users         repos.UserRepo
	Sessions      repos.SessionRepo
	Reports       repos.ReportRepo
	Submissions   repos.SubmissionRepo
	Feedback      repos.FeedbackRepo
	Notifications repos.NotificationRepo
}

type submissionAggregate struct {
	deps SubmissionAggregateDeps
}

func NewSubmissionAggregate(deps SubmissionAggregateDeps) domainagg.SubmissionAggregate {
	deps.Base = deps.Base.withDefaults()
	return &submissionAggregate{deps: deps}
}

func (a *submissionAggregate) Contract() domainagg.Contract {
	return domainagg.SubmissionAggregateContract
}

func (a *submissionAggregate) Submit(ctx context.Context, in domainagg.SubmitInput) (domainagg.SubmitResult, error) {
	const op = "Review.Submission.Submit"
	var out domainagg.SubmitResult
	if in.ReportID == uuid.Nil || in.StudentID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing report_id or student_id", nil)
	}
	if in.ReviewerID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing reviewer_id", nil)
	}
	if in.ReviewerID == in.StudentID {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "a student cannot review their own report", nil)
	}
	submittedAt := in.SubmittedAt.UTC()
	if in.SubmittedAt.IsZero() {
		submittedAt = time.Now().UTC()
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		rep, err := a.deps.Reports.GetByID(dbc, in.ReportID)
		if err != nil {
			return err
		}
		if rep == nil || rep.StudentID != in.StudentID {
			return NotFoundError(fmt.Sprintf("report not found: %s", in.ReportID))
		}
		prior, err := a.deps.Submissions.CountByReport(dbc, rep.ID)
		if err != nil {
			return err
		}
		if prior > 0 {
			return ConflictError("report has already been submitted")
		}
		sess, err := a.deps.Sessions.GetByID(dbc, rep.SessionID)
		if err != nil {
			return err
		}
		if sess == nil {
			return InvariantError("report references a missing session")
		}
		if sess.Status != reasoning.StatusCompleted {
			return ValidationError("session must be completed before submission, is " + sess.Status)
		}
		reviewer, err := a.deps.Users.GetByID(dbc, in.ReviewerID)
		if err != nil {
			return err
		}
		if reviewer == nil {
			return NotFoundError(fmt.Sprintf("reviewer not found: %s", in.ReviewerID))
		}
		if !reviewer.CanReview() {
			return ValidationError("user is not permitted to review submissions")
		}

		sub, err := a.deps.Submissions.Create(dbc, &review.Submission{
			ReportID:    rep.ID,
			SessionID:   sess.ID,
			StudentID:   in.StudentID,
			ReviewerID:  reviewer.ID,
			Status:      review.StatusPending,
			Notes:       trimmedOrNil(in.Notes),
			SubmittedAt: submittedAt,
		})
		if err != nil {
			return err
		}
		ok, err := a.deps.Base.CASGuard.UpdateByVersion(dbc, sessionTable, sess.ID, sess.Version, map[string]any{
			"status":     reasoning.StatusSubmitted,
			"updated_at": submittedAt,
		})
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "session changed while submitting"); err != nil {
			return err
		}

		n, err := a.deps.Notifications.Create(dbc, submissionNotification(
			reviewer.ID,
			notify.TypeSubmissionReceived,
			"New submission to review",
			fmt.Sprintf("%q was submitted for your review.", rep.Title),
			sub.ID,
			"/reviews/"+sub.ID.String(),
		))
		if err != nil {
			return err
		}
		out = domainagg.SubmitResult{Submission: sub, Notification: n}
		return nil
	})
	return out, err
}

func (a *submissionAggregate) StartReview(ctx context.Context, in domainagg.StartReviewInput) (*review.Submission, error) {
	const op = "Review.Submission.StartReview"
	if in.SubmissionID == uuid.Nil || in.ReviewerID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing submission_id or reviewer_id", nil)
	}
	var out *review.Submission
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		sub, err := a.loadForReviewer(dbc, in.SubmissionID, in.ReviewerID)
		if err != nil {
			return err
		}
		switch {
		case sub.Status == review.StatusInReview:
			out = sub
			return nil
		case review.IsTerminal(sub.Status):
			return ConflictError("submission has already been reviewed")
		}
		now := time.Now().UTC()
		ok, err := a.deps.Base.CASGuard.UpdateByStatus(dbc, submissionTable, sub.ID, []string{review.StatusPending}, map[string]any{
			"status":     review.StatusInReview,
			"updated_at": now,
		})
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "submission changed concurrently"); err != nil {
			return err
		}
		sub.Status = review.StatusInReview
		sub.UpdatedAt = now
		out = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (a *submissionAggregate) Review(ctx context.Context, in domainagg.ReviewInput) (domainagg.ReviewResult, error) {
	const op = "Review.Submission.Review"
	var out domainagg.ReviewResult
	if in.SubmissionID == uuid.Nil || in.ReviewerID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing submission_id or reviewer_id", nil)
	}
	if in.Feedback == nil || strings.TrimSpace(in.Feedback.Text) == "" {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "feedback text is required", nil)
	}
	reviewedAt := in.ReviewedAt.UTC()
	if in.ReviewedAt.IsZero() {
		reviewedAt = time.Now().UTC()
	}

	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		sub, err := a.loadForReviewer(dbc, in.SubmissionID, in.ReviewerID)
		if err != nil {
			return err
		}
		if err := RequireStatusAllowed(sub.Status, review.OpenStatuses...); err != nil {
			return err
		}

		fb := in.Feedback
		fb.SubmissionID = sub.ID
		fb.ReviewerID = in.ReviewerID
		fb.Text = strings.TrimSpace(fb.Text)
		if len(fb.Strengths) == 0 {
			fb.Strengths = []byte("[]")
		}
		if len(fb.AreasForImprovement) == 0 {
			fb.AreasForImprovement = []byte("[]")
		}
		newStatus := fb.ResultingStatus()

		ok, err := a.deps.Base.CASGuard.UpdateByStatus(dbc, submissionTable, sub.ID, review.OpenStatuses, map[string]any{
			"status":      newStatus,
			"reviewed_at": reviewedAt,
			"updated_at":  reviewedAt,
		})
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "submission reviewed concurrently"); err != nil {
			return err
		}
		noteReview(dbc.Ctx, newStatus)
		saved, err := a.deps.Feedback.Upsert(dbc, fb)
		if err != nil {
			return err
		}

		sess, err := a.deps.Sessions.GetByID(dbc, sub.SessionID)
		if err != nil {
			return err
		}
		if sess == nil {
			return InvariantError("submission references a missing session")
		}
		if !reasoning.StatusAdvances(sess.Status, reasoning.StatusReviewed) {
			return InvariantError("session cannot move to reviewed from " + sess.Status)
		}
		if sess.Status != reasoning.StatusReviewed {
			ok, err = a.deps.Base.CASGuard.UpdateByVersion(dbc, sessionTable, sess.ID, sess.Version, map[string]any{
				"status":     reasoning.StatusReviewed,
				"updated_at": reviewedAt,
			})
			if err != nil {
				return err
			}
			if err := RequireCASSuccess(ok, "session changed while reviewing"); err != nil {
				return err
			}
		}

		title := "your report"
		if rep, err := a.deps.Reports.GetByID(dbc, sub.ReportID); err != nil {
			return err
		} else if rep != nil {
			title = fmt.Sprintf("%q", rep.Title)
		}
		n, err := a.deps.Notifications.Create(dbc, submissionNotification(
			sub.StudentID,
			notify.TypeFeedbackReceived,
			"Feedback received",
			feedbackMessage(newStatus, title),
			sub.ID,
			"/submissions/"+sub.ID.String(),
		))
		if err != nil {
			return err
		}

		sub.Status = newStatus
		sub.ReviewedAt = &reviewedAt
		sub.UpdatedAt = reviewedAt
		out = domainagg.ReviewResult{Submission: sub, Feedback: saved, Notification: n}
		return nil
	})
	return out, err
}

// loadForReviewer resolves the submission and checks it is addressed to reviewerID.
func (a *submissionAggregate) loadForReviewer(dbc dbctx.Context, submissionID, reviewerID uuid.UUID) (*review.Submission, error) {
	sub, err := a.deps.Submissions.GetByID(dbc, submissionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, NotFoundError(fmt.Sprintf("submission not found: %s", submissionID))
	}
	if sub.ReviewerID != reviewerID {
		return nil, ValidationError("submission is not addressed to this reviewer")
	}
	return sub, nil
}

func feedbackMessage(status, title string) string {
	switch status {
	case review.StatusApproved:
		return fmt.Sprintf("Your reviewer approved %s.", title)
	case review.StatusRejected:
		return fmt.Sprintf("Your reviewer did not accept %s.", title)
	case review.StatusRevisionRequested:
		return fmt.Sprintf("Your reviewer requested revisions to %s.", title)
	default:
		return fmt.Sprintf("Your reviewer left feedback on %s.", title)
	}
}

func submissionNotification(userID uuid.UUID, kind, title, message string, submissionID uuid.UUID, actionURL string) *notify.Notification {
	entityType := notify.EntitySubmission
	return &notify.Notification{
		UserID:     userID,
		Title:      title,
		Message:    message,
		Type:       kind,
		EntityType: &entityType,
		EntityID:   &submissionID,
		ActionURL:  &actionURL,
		CreatedAt:  time.Now().UTC(),
	}
}
