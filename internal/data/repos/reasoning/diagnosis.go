package reasoning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/clinireason-backend/internal/domain"
	"github.com/yungbote/clinireason-backend/internal/platform/dbctx"
	"github.com/yungbote/clinireason-backend/internal/platform/logger"
)

type DifferentialRepo interface {
	CreateBatch(dbc dbctx.Context, rows []*types.DifferentialDiagnosis) ([]*types.DifferentialDiagnosis, error)
	ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.DifferentialDiagnosis, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.DifferentialDiagnosis, error)
	CountBySession(dbc dbctx.Context, sessionID uuid.UUID) (int64, error)
}

type differentialRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDifferentialRepo(db *gorm.DB, baseLog *logger.Logger) DifferentialRepo {
	return &differentialRepo{db: db, log: baseLog.With("repo", "DifferentialRepo")}
}

func (r *differentialRepo) CreateBatch(dbc dbctx.Context, rows []*types.DifferentialDiagnosis) ([]*types.DifferentialDiagnosis, error) {
	if len(rows) == 0 {
		return []*types.DifferentialDiagnosis{}, nil
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

// ListBySession returns differentials in rank order.
func (r *differentialRepo) ListBySession(dbc dbctx.Context, sessionID uuid.UUID) ([]*types.DifferentialDiagnosis, error) {
	var out []*types.DifferentialDiagnosis
	if sessionID == uuid.Nil {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("session_id = ?", sessionID).
		Order("display_order ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *differentialRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.DifferentialDiagnosis, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.DifferentialDiagnosis
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

func (r *differentialRepo) CountBySession(dbc dbctx.Context, sessionID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.DifferentialDiagnosis{}).Where("session_id = ?", sessionID).Count(&n).Error
	return n, err
}

type FinalDiagnosisRepo interface {
	Create(dbc dbctx.Context, row *types.FinalDiagnosis) (*types.FinalDiagnosis, error)
	GetBySession(dbc dbctx.Context, sessionID uuid.UUID) (*types.FinalDiagnosis, error)
}

type finalDiagnosisRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFinalDiagnosisRepo(db *gorm.DB, baseLog *logger.Logger) FinalDiagnosisRepo {
	return &finalDiagnosisRepo{db: db, log: baseLog.With("repo", "FinalDiagnosisRepo")}
}

func (r *finalDiagnosisRepo) Create(dbc dbctx.Context, row *types.FinalDiagnosis) (*types.FinalDiagnosis, error) {
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

func (r *finalDiagnosisRepo) GetBySession(dbc dbctx.Context, sessionID uuid.UUID) (*types.FinalDiagnosis, error) {
	var out types.FinalDiagnosis
	if err := dbc.DB(r.db).Where("session_id = ?", sessionID).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}
