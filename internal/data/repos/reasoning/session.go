package reasoning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/clinireason-backend/internal/domain"
	"github.com/yungbote/clinireason-backend/internal/platform/dbctx"
	"github.com/yungbote/clinireason-backend/internal/platform/logger"
)

type SessionRepo interface {
	Create(dbc dbctx.Context, s *types.Session) (*types.Session, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Session, error)
	GetForStudent(dbc dbctx.Context, studentID, id uuid.UUID) (*types.Session, error)
	ListByStudent(dbc dbctx.Context, studentID uuid.UUID, limit int) ([]*types.Session, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type sessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return &sessionRepo{db: db, log: baseLog.With("repo", "SessionRepo")}
}

func (r *sessionRepo) Create(dbc dbctx.Context, s *types.Session) (*types.Session, error) {
	if s == nil {
		return nil, nil
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if err := dbc.DB(r.db).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID returns nil, nil when no session matches.
func (r *sessionRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Session, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.Session
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

// GetForStudent scopes the lookup to the owning student; other students' sessions read as missing.
func (r *sessionRepo) GetForStudent(dbc dbctx.Context, studentID, id uuid.UUID) (*types.Session, error) {
	if id == uuid.Nil || studentID == uuid.Nil {
		return nil, nil
	}
	var out types.Session
	if err := dbc.DB(r.db).
		Where("id = ? AND student_id = ?", id, studentID).
		Limit(1).
		Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

func (r *sessionRepo) ListByStudent(dbc dbctx.Context, studentID uuid.UUID, limit int) ([]*types.Session, error) {
	var out []*types.Session
	if studentID == uuid.Nil {
		return out, nil
	}
	q := dbc.DB(r.db).Where("student_id = ?", studentID).Order("started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sessionRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.Session{}).Where("id = ?", id).Updates(updates).Error
}
