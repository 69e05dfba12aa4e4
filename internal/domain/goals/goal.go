package goals

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TypeReduceDaily     = "reduce_daily"
	TypeSmokeFreeDays   = "smoke_free_days"
	TypeMoneySaved      = "money_saved"
	TypeHealthMilestone = "health_milestone"
)

var Types = []string{TypeReduceDaily, TypeSmokeFreeDays, TypeMoneySaved, TypeHealthMilestone}

const (
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var Statuses = []string{StatusActive, StatusPaused, StatusCompleted, StatusFailed}

type Goal struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	GoalType     string `gorm:"not null;index;column:goal_type" json:"goal_type"`
	TargetValue  int    `gorm:"not null;column:target_value" json:"target_value"`
	CurrentValue int    `gorm:"not null;default:0;column:current_value" json:"current_value"`
	Description  string `gorm:"column:description;type:text" json:"description,omitempty"`

	StartDate  time.Time  `gorm:"type:date;not null;column:start_date" json:"start_date"`
	TargetDate *time.Time `gorm:"type:date;index;column:target_date" json:"target_date,omitempty"`

	Status           string     `gorm:"not null;default:'active';index;column:status" json:"status"`
	NotificationSent bool       `gorm:"not null;default:false;column:notification_sent" json:"notification_sent"`
	CompletedAt      *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Goal) TableName() string { return "goal" }

func (g *Goal) BeforeCreate(*gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	if g.Status == "" {
		g.Status = StatusActive
	}
	return nil
}

func (g *Goal) ProgressPercentage() float64 {
	if g == nil || g.TargetValue <= 0 {
		return 0
	}
	return float64(g.CurrentValue) / float64(g.TargetValue) * 100
}

func (g *Goal) IsTerminal() bool {
	return g != nil && (g.Status == StatusCompleted || g.Status == StatusFailed)
}

func IsType(s string) bool {
	for _, t := range Types {
		if t == s {
			return true
		}
	}
	return false
}

func IsStatus(s string) bool {
	for _, st := range Statuses {
		if st == s {
			return true
		}
	}
	return false
}

// TypeTitle renders a goal type for humans: "smoke_free_days" -> "Smoke Free Days".
func TypeTitle(goalType string) string {
	parts := strings.Split(strings.TrimSpace(goalType), "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
	}
	return strings.Join(parts, " ")
}
