package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserProfile holds the per-user ledger counters next to the descriptive
// smoking history. The counters are written only by the progress ledger.
type UserProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	CurrentStreakDays      int     `gorm:"not null;default:0;column:current_streak_days" json:"current_streak_days"`
	LongestStreakDays      int     `gorm:"not null;default:0;column:longest_streak_days" json:"longest_streak_days"`
	TotalMoneySaved        float64 `gorm:"type:numeric(12,2);not null;default:0;column:total_money_saved" json:"total_money_saved"`
	TotalCigarettesAvoided int     `gorm:"not null;default:0;column:total_cigarettes_avoided" json:"total_cigarettes_avoided"`

	// Baseline used for avoided-cigarette math on new records.
	CigarettesPerDay int `gorm:"not null;default:0;column:cigarettes_per_day" json:"cigarettes_per_day"`

	SmokingStartAge  *int   `gorm:"column:smoking_start_age" json:"smoking_start_age,omitempty"`
	SmokingYears     *int   `gorm:"column:smoking_years" json:"smoking_years,omitempty"`
	QuitAttempts     int    `gorm:"not null;default:0;column:quit_attempts" json:"quit_attempts"`
	MotivationLevel  string `gorm:"column:motivation_level" json:"motivation_level,omitempty"`
	QuitReason       string `gorm:"column:quit_reason;type:text" json:"quit_reason,omitempty"`
	HealthConditions string `gorm:"column:health_conditions;type:text" json:"health_conditions,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (UserProfile) TableName() string { return "user_profile" }

func (p *UserProfile) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
