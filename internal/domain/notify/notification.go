package notify

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypeSubmissionReceived = "submission_received"
	TypeFeedbackReceived   = "feedback_received"
	TypeSystem             = "system"

	EntitySubmission = "submission"
	EntitySession    = "session"
)

type Notification struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index:idx_notification_user_created,priority:1;column:user_id" json:"user_id"`
	Title      string     `gorm:"not null;column:title" json:"title"`
	Message    string     `gorm:"not null;column:message" json:"message"`
	Type       string     `gorm:"not null;column:type" json:"type"`
	EntityType *string    `gorm:"column:entity_type" json:"entity_type,omitempty"`
	EntityID   *uuid.UUID `gorm:"type:uuid;column:entity_id" json:"entity_id,omitempty"`
	ActionURL  *string    `gorm:"column:action_url" json:"action_url,omitempty"`
	IsRead     bool       `gorm:"not null;default:false;column:is_read;index" json:"is_read"`

	CreatedAt time.Time `gorm:"not null;index:idx_notification_user_created,priority:2" json:"created_at"`
}

func (Notification) TableName() string { return "notification" }
