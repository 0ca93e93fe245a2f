package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/clinireason-backend/internal/data/repos"
	types "github.com/yungbote/clinireason-backend/internal/domain"
	domainagg "github.com/yungbote/clinireason-backend/internal/domain/aggregates"
	"github.com/yungbote/clinireason-backend/internal/domain/review"
	"github.com/yungbote/clinireason-backend/internal/domain/user"
	"github.com/yungbote/clinireason-backend/internal/modules/regions"
	"github.com/yungbote/clinireason-backend/internal/observability"
	"github.com/yungbote/clinireason-backend/internal/platform/dbctx"
	"github.com/yungbote/clinireason-backend/internal/platform/logger"
	"github.com/yungbote/clinireason-backend/internal/realtime"
)

// ReviewService routes completed reports to reviewers and records their feedback.
type ReviewService interface {
	Submit(ctx context.Context, studentID, reportID, reviewerID uuid.UUID, notes *string) (*types.Submission, error)
	StartReview(ctx context.Context, reviewerID, submissionID uuid.UUID) (*types.Submission, error)
	Review(ctx context.Context, reviewerID, submissionID uuid.UUID, in FeedbackInput) (*ReviewOutcome, error)

	ListQueue(ctx context.Context, reviewerID uuid.UUID, statuses []string, limit int) ([]*types.Submission, error)
	ListMine(ctx context.Context, studentID uuid.UUID, limit int) ([]*types.Submission, error)
	GetSubmission(ctx context.Context, userID, submissionID uuid.UUID) (*SubmissionDetail, error)
	ListReviewers(ctx context.Context) ([]*types.User, error)
}

type FeedbackInput struct {
	Text                string
	SuggestedDiagnosis  *string
	Grade               *string
	IsApproved          bool
	RevisionRequired    bool
	IsRejected          bool
	Strengths           []string
	AreasForImprovement []string
}

type ReviewOutcome struct {
	Submission *types.Submission `json:"submission"`
	Feedback   *types.Feedback   `json:"feedback"`
}

type SubmissionDetail struct {
	Submission *types.Submission `json:"submission"`
	Feedback   *types.Feedback   `json:"feedback,omitempty"`
	Session    *SessionDetail    `json:"session"`
}

type ReviewServiceDeps struct {
	Log           *logger.Logger
	Aggregate     domainagg.SubmissionAggregate
	Notifications NotificationService
	Emitter       realtime.Emitter
	Regions       *regions.Catalog
	Repos         repos.Repos
	Now           func() time.Time
}

type reviewService struct {
	log           *logger.Logger
	agg           domainagg.SubmissionAggregate
	notifications NotificationService
	emitter       realtime.Emitter
	regions       *regions.Catalog
	repos         repos.Repos
	now           func() time.Time
}

func NewReviewService(deps ReviewServiceDeps) ReviewService {
	if deps.Emitter == nil {
		deps.Emitter = realtime.NopEmitter{}
	}
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	return &reviewService{
		log:           deps.Log.With("service", "ReviewService"),
		agg:           deps.Aggregate,
		notifications: deps.Notifications,
		emitter:       deps.Emitter,
		regions:       deps.Regions,
		repos:         deps.Repos,
		now:           deps.Now,
	}
}

func (s *reviewService) Submit(ctx context.Context, studentID, reportID, reviewerID uuid.UUID, notes *string) (*types.Submission, error) {
	res, err := s.agg.Submit(ctx, domainagg.SubmitInput{
		ReportID:    reportID,
		StudentID:   studentID,
		ReviewerID:  reviewerID,
		Notes:       notes,
		SubmittedAt: s.now(),
	})
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, res.Submission, res.Notification)
	return res.Submission, nil
}

func (s *reviewService) StartReview(ctx context.Context, reviewerID, submissionID uuid.UUID) (*types.Submission, error) {
	sub, err := s.agg.StartReview(ctx, domainagg.StartReviewInput{SubmissionID: submissionID, ReviewerID: reviewerID})
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, sub, nil)
	return sub, nil
}

func (s *reviewService) Review(ctx context.Context, reviewerID, submissionID uuid.UUID, in FeedbackInput) (*ReviewOutcome, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, "Review.Review", "feedback text is required", nil)
	}
	res, err := s.agg.Review(ctx, domainagg.ReviewInput{
		SubmissionID: submissionID,
		ReviewerID:   reviewerID,
		ReviewedAt:   s.now(),
		Feedback: &types.Feedback{
			Text:                text,
			SuggestedDiagnosis:  in.SuggestedDiagnosis,
			Grade:               in.Grade,
			IsApproved:          in.IsApproved,
			RevisionRequired:    in.RevisionRequired,
			IsRejected:          in.IsRejected,
			Strengths:           jsonList(in.Strengths),
			AreasForImprovement: jsonList(in.AreasForImprovement),
		},
	})
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, res.Submission, res.Notification)
	return &ReviewOutcome{Submission: res.Submission, Feedback: res.Feedback}, nil
}

func (s *reviewService) ListQueue(ctx context.Context, reviewerID uuid.UUID, statuses []string, limit int) ([]*types.Submission, error) {
	if len(statuses) == 0 {
		statuses = review.OpenStatuses
	}
	return s.repos.Submissions.ListByReviewer(dbctx.Context{Ctx: ctx}, reviewerID, statuses, clampLimit(limit))
}

func (s *reviewService) ListMine(ctx context.Context, studentID uuid.UUID, limit int) ([]*types.Submission, error) {
	return s.repos.Submissions.ListByStudent(dbctx.Context{Ctx: ctx}, studentID, clampLimit(limit))
}

// GetSubmission is visible to the submitting student and the addressed reviewer.
func (s *reviewService) GetSubmission(ctx context.Context, userID, submissionID uuid.UUID) (*SubmissionDetail, error) {
	const op = "Review.GetSubmission"
	dbc := dbctx.Context{Ctx: ctx}
	sub, err := s.repos.Submissions.GetByID(dbc, submissionID)
	if err != nil {
		return nil, err
	}
	if sub == nil || (sub.StudentID != userID && sub.ReviewerID != userID) {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "submission not found", nil)
	}
	sess, err := s.repos.Sessions.GetByID(dbc, sub.SessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, domainagg.NewError(domainagg.CodeNotFound, op, "session not found", nil)
	}

	out := &SubmissionDetail{Submission: sub}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Feedback, err = s.repos.Feedback.GetBySubmission(dbctx.Context{Ctx: gctx}, sub.ID)
		return err
	})
	g.Go(func() (err error) {
		out.Session, err = loadSessionDetail(gctx, s.repos, s.regions, sess)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *reviewService) ListReviewers(ctx context.Context) ([]*types.User, error) {
	return s.repos.Users.ListByRoles(dbctx.Context{Ctx: ctx}, []string{user.RoleInstructor, user.RoleAdmin})
}

// afterCommit pushes the committed notification and a status event to both parties.
func (s *reviewService) afterCommit(ctx context.Context, sub *types.Submission, n *types.Notification) {
	if n != nil {
		observability.Current().IncNotification(n.Type, "created")
		s.notifications.Push(ctx, n)
	}
	if sub == nil {
		return
	}
	data := map[string]any{"submission_id": sub.ID, "status": sub.Status}
	for _, uid := range []uuid.UUID{sub.StudentID, sub.ReviewerID} {
		s.emitter.Emit(ctx, realtime.SSEMessage{
			Channel: realtime.UserChannel(uid),
			Event:   realtime.SSEEventSubmissionUpdated,
			Data:    data,
		})
	}
}
