package reasoning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/clinireason-backend/internal/domain"
	"github.com/yungbote/clinireason-backend/internal/platform/dbctx"
	"github.com/yungbote/clinireason-backend/internal/platform/logger"
)

type ReportRepo interface {
	Create(dbc dbctx.Context, row *types.ClinicalReport) (*types.ClinicalReport, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ClinicalReport, error)
	GetBySession(dbc dbctx.Context, sessionID uuid.UUID) (*types.ClinicalReport, error)
	CountBySession(dbc dbctx.Context, sessionID uuid.UUID) (int64, error)
	ListByStudent(dbc dbctx.Context, studentID uuid.UUID, limit int) ([]*types.ClinicalReport, error)
}

type reportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewReportRepo(db *gorm.DB, baseLog *logger.Logger) ReportRepo {
	return &reportRepo{db: db, log: baseLog.With("repo", "ReportRepo")}
}

func (r *reportRepo) Create(dbc dbctx.Context, row *types.ClinicalReport) (*types.ClinicalReport, error) {
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

func (r *reportRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ClinicalReport, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.ClinicalReport
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

func (r *reportRepo) GetBySession(dbc dbctx.Context, sessionID uuid.UUID) (*types.ClinicalReport, error) {
	var out types.ClinicalReport
	if err := dbc.DB(r.db).Where("session_id = ?", sessionID).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

func (r *reportRepo) CountBySession(dbc dbctx.Context, sessionID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.ClinicalReport{}).Where("session_id = ?", sessionID).Count(&n).Error
	return n, err
}

func (r *reportRepo) ListByStudent(dbc dbctx.Context, studentID uuid.UUID, limit int) ([]*types.ClinicalReport, error) {
	var out []*types.ClinicalReport
	q := dbc.DB(r.db).Where("student_id = ?", studentID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
