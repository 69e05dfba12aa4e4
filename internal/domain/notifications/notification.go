package notifications

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TypeAchievementEarned = "achievement_earned"
	TypeGoalCompleted     = "goal_completed"
	TypeGoalReminder      = "goal_reminder"
	TypeNewMessage        = "new_message"
	TypeStreakMilestone   = "streak_milestone"
	TypeMotivational      = "motivational"
	TypeEducational       = "educational"
	TypeDailyReminder     = "daily_reminder"
)

var Types = []string{
	TypeAchievementEarned,
	TypeGoalCompleted,
	TypeGoalReminder,
	TypeNewMessage,
	TypeStreakMilestone,
	TypeMotivational,
	TypeEducational,
	TypeDailyReminder,
}

type Notification struct {
	ID      uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	Type    string         `gorm:"not null;index;column:type" json:"type"`
	Title   string         `gorm:"not null;column:title" json:"title"`
	Message string         `gorm:"not null;column:message;type:text" json:"message"`
	Data    datatypes.JSON `gorm:"column:data;type:jsonb" json:"data,omitempty"`

	IsRead    bool       `gorm:"not null;default:false;index;column:is_read" json:"is_read"`
	ReadAt    *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`
	CreatedAt time.Time  `gorm:"not null;index" json:"created_at"`
}

func (Notification) TableName() string { return "notification" }

func (n *Notification) BeforeCreate(*gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

func IsType(s string) bool {
	for _, t := range Types {
		if t == s {
			return true
		}
	}
	return false
}
