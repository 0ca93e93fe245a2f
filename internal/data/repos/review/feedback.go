package review

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/clinireason-backend/internal/domain"
	"github.com/yungbote/clinireason-backend/internal/platform/dbctx"
	"github.com/yungbote/clinireason-backend/internal/platform/logger"
)

type FeedbackRepo interface {
	// Upsert writes the single feedback row of a submission, replacing an earlier one.
	Upsert(dbc dbctx.Context, row *types.Feedback) (*types.Feedback, error)
	GetBySubmission(dbc dbctx.Context, submissionID uuid.UUID) (*types.Feedback, error)
}

type feedbackRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFeedbackRepo(db *gorm.DB, baseLog *logger.Logger) FeedbackRepo {
	return &feedbackRepo{db: db, log: baseLog.With("repo", "FeedbackRepo")}
}

func (r *feedbackRepo) Upsert(dbc dbctx.Context, row *types.Feedback) (*types.Feedback, error) {
	if row == nil {
		return nil, nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now
	err := dbc.DB(r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "submission_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"reviewer_id",
			"text",
			"suggested_diagnosis",
			"grade",
			"is_approved",
			"revision_required",
			"is_rejected",
			"strengths",
			"areas_for_improvement",
			"updated_at",
		}),
	}).Create(row).Error
	if err != nil {
		return nil, err
	}
	return r.GetBySubmission(dbc, row.SubmissionID)
}

func (r *feedbackRepo) GetBySubmission(dbc dbctx.Context, submissionID uuid.UUID) (*types.Feedback, error) {
	var out types.Feedback
	if err := dbc.DB(r.db).Where("submission_id = ?", submissionID).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}
