package reasoning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/clinireason-backend/internal/domain"
	"github.com/yungbote/clinireason-backend/internal/platform/dbctx"
	"github.com/yungbote/clinireason-backend/internal/platform/logger"
)

type SymptomRepo interface {
	CreateBatch(dbc dbctx.Context, rows []*types.SessionSymptom) ([]*types.SessionSymptom, error)
	ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.SessionSymptom, error)
	CountBySession(dbc dbctx.Context, sessionID uuid.UUID) (int64, error)
	DeleteExcept(dbc dbctx.Context, sessionID uuid.UUID, keepIDs []uuid.UUID) (int64, error)
}

type symptomRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSymptomRepo(db *gorm.DB, baseLog *logger.Logger) SymptomRepo {
	return &symptomRepo{db: db, log: baseLog.With("repo", "SymptomRepo")}
}

func (r *symptomRepo) CreateBatch(dbc dbctx.Context, rows []*types.SessionSymptom) ([]*types.SessionSymptom, error) {
	if len(rows) == 0 {
		return []*types.SessionSymptom{}, nil
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

func (r *symptomRepo) ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.SessionSymptom, error) {
	var out []*types.SessionSymptom
	if sessionID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("session_id = ?", sessionID).
		Order("position ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *symptomRepo) CountBySession(dbc dbctx.Context, sessionID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.SessionSymptom{}).Where("session_id = ?", sessionID).Count(&n).Error
	return n, err
}

// DeleteExcept removes every symptom of the session whose id is not in keepIDs.
func (r *symptomRepo) DeleteExcept(dbc dbctx.Context, sessionID uuid.UUID, keepIDs []uuid.UUID) (int64, error) {
	if sessionID == uuid.Nil {
		return 0, nil
	}
	q := dbc.DB(r.db).Where("session_id = ?", sessionID)
	if len(keepIDs) > 0 {
		q = q.Where("id NOT IN ?", keepIDs)
	}
	res := q.Delete(&types.SessionSymptom{})
	return res.RowsAffected, res.Error
}
