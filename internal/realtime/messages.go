package realtime

import "github.com/google/uuid"

type SSEEvent string

const (
	SSEEventNotificationCreated SSEEvent = "NotificationCreated"
	SSEEventAchievementEarned   SSEEvent = "AchievementEarned"
	SSEEventGoalCompleted       SSEEvent = "GoalCompleted"
	SSEEventProgressUpdated     SSEEvent = "ProgressUpdated"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}

// UserChannel is the channel every stream of userID subscribes to.
func UserChannel(userID uuid.UUID) string {
	return "user:" + userID.String()
}
