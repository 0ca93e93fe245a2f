package reasoning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/clinireason-backend/internal/domain"
	"github.com/yungbote/clinireason-backend/internal/platform/dbctx"
	"github.com/yungbote/clinireason-backend/internal/platform/logger"
)

type StepRepo interface {
	CreateBatch(dbc dbctx.Context, rows []*types.SessionStep) ([]*types.SessionStep, error)
	ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.SessionStep, error)
	GetByNumber(dbc dbctx.Context, sessionID uuid.UUID, stepNumber int) (*types.SessionStep, error)
	CountBySession(dbc dbctx.Context, sessionID uuid.UUID) (int64, error)
	CountAnswered(dbc dbctx.Context, sessionID uuid.UUID) (int64, error)
	// AnswerIfOpen records the answer only when the step has none yet.
	AnswerIfOpen(dbc dbctx.Context, stepID uuid.UUID, updates map[string]interface{}) (bool, error)
}

type stepRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStepRepo(db *gorm.DB, baseLog *logger.Logger) StepRepo {
	return &stepRepo{db: db, log: baseLog.With("repo", "StepRepo")}
}

func (r *stepRepo) CreateBatch(dbc dbctx.Context, rows []*types.SessionStep) ([]*types.SessionStep, error) {
	if len(rows) == 0 {
		return []*types.SessionStep{}, nil
	}
	for _, row := range rows {
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *stepRepo) ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.SessionStep, error) {
	var out []*types.SessionStep
	if sessionID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("session_id = ?", sessionID).
		Order("step_number ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *stepRepo) GetByNumber(dbc dbctx.Context, sessionID uuid.UUID, stepNumber int) (*types.SessionStep, error) {
	var out types.SessionStep
	if err := dbc.DB(r.db).
		Where("session_id = ? AND step_number = ?", sessionID, stepNumber).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

func (r *stepRepo) CountBySession(dbc dbctx.Context, sessionID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.SessionStep{}).Where("session_id = ?", sessionID).Count(&n).Error
	return n, err
}

func (r *stepRepo) CountAnswered(dbc dbctx.Context, sessionID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.SessionStep{}).
		Where("session_id = ? AND answered_at IS NOT NULL", sessionID).
		Count(&n).Error
	return n, err
}

func (r *stepRepo) AnswerIfOpen(dbc dbctx.Context, stepID uuid.UUID, updates map[string]interface{}) (bool, error) {
	res := dbc.DB(r.db).Model(&types.SessionStep{}).
		Where("id = ? AND answered_at IS NULL", stepID).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
