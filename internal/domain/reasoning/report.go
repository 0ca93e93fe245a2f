package reasoning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ClinicalReport is the learner's SOAP write-up for a completed session.
type ClinicalReport struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex;column:session_id" json:"session_id"`
	StudentID        uuid.UUID      `gorm:"type:uuid;not null;index;column:student_id" json:"student_id"`
	Title            string         `gorm:"not null;column:title" json:"title"`
	Subjective       string         `gorm:"column:subjective" json:"subjective"`
	Objective        string         `gorm:"column:objective" json:"objective"`
	Assessment       string         `gorm:"column:assessment" json:"assessment"`
	Plan             string         `gorm:"column:plan" json:"plan"`
	ExecutiveSummary *string        `gorm:"column:executive_summary" json:"executive_summary,omitempty"`
	KeyFindings      datatypes.JSON `gorm:"type:jsonb;column:key_findings" json:"key_findings"`
	Urgency          string         `gorm:"column:urgency" json:"urgency"`
	EducationalNote  string         `gorm:"column:educational_note" json:"educational_note"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ClinicalReport) TableName() string { return "clinical_report" }
