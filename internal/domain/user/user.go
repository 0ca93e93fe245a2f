package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"

	LevelPreclinical = "preclinical"
	LevelClinical    = "clinical"
	LevelResident    = "resident"
)

// User is the identity row sessions and submissions hang off. Profile editing lives elsewhere.
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	FirstName string    `gorm:"not null;column:first_name" json:"first_name"`
	LastName  string    `gorm:"not null;column:last_name" json:"last_name"`
	Role      string    `gorm:"not null;column:role;index" json:"role"`
	Level     string    `gorm:"column:level" json:"level"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }

// CanReview reports whether the user may be addressed as a submission reviewer.
func (u *User) CanReview() bool {
	if u == nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(u.Role)) {
	case RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// EffectiveLevel falls back to preclinical when no level is recorded.
func (u *User) EffectiveLevel() string {
	if u == nil || strings.TrimSpace(u.Level) == "" {
		return LevelPreclinical
	}
	return strings.TrimSpace(u.Level)
}
