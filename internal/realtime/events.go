package realtime

import "github.com/google/uuid"

type SSEEvent string

const (
	SSEEventNotificationCreated SSEEvent = "NotificationCreated"
	SSEEventNotificationsRead   SSEEvent = "NotificationsRead"
	SSEEventSubmissionUpdated   SSEEvent = "SubmissionUpdated"
	SSEEventSessionAdvanced     SSEEvent = "SessionAdvanced"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// UserChannel is the channel every stream of userID is subscribed to.
func UserChannel(userID uuid.UUID) string {
	return "user:" + userID.String()
}
