package reasoning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ProbabilityHigh     = "high"
	ProbabilityModerate = "moderate"
	ProbabilityLow      = "low"

	UrgencyEmergency = "emergency"
	UrgencyUrgent    = "urgent"
	UrgencyRoutine   = "routine"
)

type DifferentialDiagnosis struct {
	ID                    uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID             uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_differential_order,priority:1;column:session_id" json:"session_id"`
	Name                  string         `gorm:"not null;column:name" json:"name"`
	ICDCode               *string        `gorm:"column:icd_code" json:"icd_code,omitempty"`
	Probability           string         `gorm:"not null;column:probability" json:"probability"`
	ConfidenceScore       float64        `gorm:"not null;column:confidence_score" json:"confidence_score"`
	Description           string         `gorm:"column:description" json:"description"`
	SupportingFindings    datatypes.JSON `gorm:"type:jsonb;column:supporting_findings" json:"supporting_findings"`
	ContradictingFindings datatypes.JSON `gorm:"type:jsonb;column:contradicting_findings" json:"contradicting_findings"`
	RedFlags              datatypes.JSON `gorm:"type:jsonb;column:red_flags" json:"red_flags"`
	NextSteps             datatypes.JSON `gorm:"type:jsonb;column:next_steps" json:"next_steps"`
	DisplayOrder          int            `gorm:"not null;uniqueIndex:idx_differential_order,priority:2;column:display_order" json:"display_order"`
	Urgency               string         `gorm:"column:urgency" json:"urgency"`
	EducationalNote       string         `gorm:"column:educational_note" json:"educational_note"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (DifferentialDiagnosis) TableName() string { return "differential_diagnosis" }

type FinalDiagnosis struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SessionID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex;column:session_id" json:"session_id"`
	DifferentialID uuid.UUID `gorm:"type:uuid;not null;column:differential_id" json:"differential_id"`
	Rationale      *string   `gorm:"column:rationale" json:"rationale,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (FinalDiagnosis) TableName() string { return "final_diagnosis" }
