package reasoning

import (
	"time"

	"github.com/google/uuid"
)

// SessionSymptom is one generated symptom offered for the session's region.
type SessionSymptom struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID   uuid.UUID `gorm:"type:uuid;not null;index;column:session_id" json:"session_id"`
	RegionID    string    `gorm:"not null;column:region_id" json:"region_id"`
	SymptomKey  string    `gorm:"not null;column:symptom_key" json:"symptom_key"`
	Name        string    `gorm:"not null;column:name" json:"name"`
	Description string    `gorm:"column:description" json:"description"`
	Category    string    `gorm:"column:category" json:"category"`
	IsRedFlag   bool      `gorm:"not null;default:false;column:is_red_flag" json:"is_red_flag"`
	Position    int       `gorm:"not null;default:0;column:position" json:"position"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (SessionSymptom) TableName() string { return "session_symptom" }
