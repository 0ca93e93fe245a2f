package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/clinireason-backend/internal/domain"
	"github.com/yungbote/clinireason-backend/internal/domain/reasoning"
	"github.com/yungbote/clinireason-backend/internal/domain/user"
)

func SeedUser(tb testing.TB, db *gorm.DB, role string) *types.User {
	tb.Helper()
	id := uuid.New()
	u := &types.User{
		ID:        id,
		Email:     id.String() + "@example.com",
		FirstName: "Test",
		LastName:  role,
		Role:      role,
		Level:     user.LevelClinical,
	}
	if err := db.Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedSession inserts a session at the given stage and status.
func SeedSession(tb testing.TB, db *gorm.DB, studentID uuid.UUID, status, stage string) *types.Session {
	tb.Helper()
	s := &types.Session{
		ID:              uuid.New(),
		StudentID:       studentID,
		Status:          status,
		Stage:           stage,
		StudentLevel:    user.LevelClinical,
		InitialRegionID: "chest",
		StartedAt:       time.Now().UTC().Add(-10 * time.Minute),
	}
	if err := db.Create(s).Error; err != nil {
		tb.Fatalf("seed session: %v", err)
	}
	return s
}

// SeedCompletedSessionWithReport inserts a completed session and its report.
func SeedCompletedSessionWithReport(tb testing.TB, db *gorm.DB, studentID uuid.UUID) (*types.Session, *types.ClinicalReport) {
	tb.Helper()
	s := SeedSession(tb, db, studentID, reasoning.StatusCompleted, reasoning.StageCompleted)
	rep := &types.ClinicalReport{
		ID:          uuid.New(),
		SessionID:   s.ID,
		StudentID:   studentID,
		Title:       "Chest pain work-up",
		Subjective:  "S",
		Objective:   "O",
		Assessment:  "A",
		Plan:        "P",
		KeyFindings: []byte("[]"),
	}
	if err := db.Create(rep).Error; err != nil {
		tb.Fatalf("seed report: %v", err)
	}
	return s, rep
}
