package review

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/clinireason-backend/internal/domain"
	"github.com/yungbote/clinireason-backend/internal/platform/dbctx"
	"github.com/yungbote/clinireason-backend/internal/platform/logger"
)

type SubmissionRepo interface {
	Create(dbc dbctx.Context, row *types.Submission) (*types.Submission, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Submission, error)
	GetByReport(dbc dbctx.Context, reportID uuid.UUID) (*types.Submission, error)
	CountByReport(dbc dbctx.Context, reportID uuid.UUID) (int64, error)
	ListByReviewer(dbc dbctx.Context, reviewerID uuid.UUID, statuses []string, limit int) ([]*types.Submission, error)
	ListByStudent(dbc dbctx.Context, studentID uuid.UUID, limit int) ([]*types.Submission, error)
}

type submissionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) SubmissionRepo {
	return &submissionRepo{db: db, log: baseLog.With("repo", "SubmissionRepo")}
}

func (r *submissionRepo) Create(dbc dbctx.Context, row *types.Submission) (*types.Submission, error) {
	if row == nil {
		return nil, nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *submissionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Submission, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.Submission
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

func (r *submissionRepo) GetByReport(dbc dbctx.Context, reportID uuid.UUID) (*types.Submission, error) {
	var out types.Submission
	if err := dbc.DB(r.db).Where("report_id = ?", reportID).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

func (r *submissionRepo) CountByReport(dbc dbctx.Context, reportID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.Submission{}).Where("report_id = ?", reportID).Count(&n).Error
	return n, err
}

// ListByReviewer returns the reviewer's queue, oldest first. An empty statuses list means all.
func (r *submissionRepo) ListByReviewer(dbc dbctx.Context, reviewerID uuid.UUID, statuses []string, limit int) ([]*types.Submission, error) {
	var out []*types.Submission
	q := dbc.DB(r.db).Where("reviewer_id = ?", reviewerID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	q = q.Order("submitted_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *submissionRepo) ListByStudent(dbc dbctx.Context, studentID uuid.UUID, limit int) ([]*types.Submission, error) {
	var out []*types.Submission
	q := dbc.DB(r.db).Where("student_id = ?", studentID).Order("submitted_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
