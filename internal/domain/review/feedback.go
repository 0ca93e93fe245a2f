package review

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Feedback struct {
	ID                  uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SubmissionID        uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex;column:submission_id" json:"submission_id"`
	ReviewerID          uuid.UUID      `gorm:"type:uuid;not null;column:reviewer_id" json:"reviewer_id"`
	Text                string         `gorm:"not null;column:text" json:"text"`
	SuggestedDiagnosis  *string        `gorm:"column:suggested_diagnosis" json:"suggested_diagnosis,omitempty"`
	Grade               *string        `gorm:"column:grade" json:"grade,omitempty"`
	IsApproved          bool           `gorm:"not null;default:false;column:is_approved" json:"is_approved"`
	RevisionRequired    bool           `gorm:"not null;default:false;column:revision_required" json:"revision_required"`
	IsRejected          bool           `gorm:"not null;default:false;column:is_rejected" json:"is_rejected"`
	Strengths           datatypes.JSON `gorm:"type:jsonb;column:strengths" json:"strengths"`
	AreasForImprovement datatypes.JSON `gorm:"type:jsonb;column:areas_for_improvement" json:"areas_for_improvement"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Feedback) TableName() string { return "submission_feedback" }

// ResultingStatus derives the submission status a feedback write produces.
// Approval wins over rejection, which wins over a revision request.
func (f *Feedback) ResultingStatus() string {
	switch {
	case f == nil:
		return StatusInReview
	case f.IsApproved:
		return StatusApproved
	case f.IsRejected:
		return StatusRejected
	case f.RevisionRequired:
		return StatusRevisionRequested
	default:
		return StatusInReview
	}
}
