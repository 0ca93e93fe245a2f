package review

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending           = "pending"
	StatusInReview          = "in_review"
	StatusApproved          = "approved"
	StatusRevisionRequested = "revision_requested"
	StatusRejected          = "rejected"
)

// OpenStatuses are the statuses a reviewer may still act on.
var OpenStatuses = []string{StatusPending, StatusInReview}

func IsTerminal(status string) bool {
	switch status {
	case StatusApproved, StatusRevisionRequested, StatusRejected:
		return true
	}
	return false
}

type Submission struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex;column:report_id" json:"report_id"`
	SessionID   uuid.UUID  `gorm:"type:uuid;not null;index;column:session_id" json:"session_id"`
	StudentID   uuid.UUID  `gorm:"type:uuid;not null;index;column:student_id" json:"student_id"`
	ReviewerID  uuid.UUID  `gorm:"type:uuid;not null;index;column:reviewer_id" json:"reviewer_id"`
	Status      string     `gorm:"not null;column:status;index" json:"status"`
	Notes       *string    `gorm:"column:notes" json:"notes,omitempty"`
	SubmittedAt time.Time  `gorm:"not null;column:submitted_at" json:"submitted_at"`
	ReviewedAt  *time.Time `gorm:"column:reviewed_at" json:"reviewed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Submission) TableName() string { return "submission" }
