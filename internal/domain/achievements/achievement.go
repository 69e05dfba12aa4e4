package achievements

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CriteriaDaysSmokeFree    = "days_smoke_free"
	CriteriaMoneySaved       = "money_saved"
	CriteriaGoalsCompleted   = "goals_completed"
	CriteriaContentCompleted = "content_completed"
	CriteriaTotalRecords     = "total_records"
)

var CriteriaTypes = []string{
	CriteriaDaysSmokeFree,
	CriteriaMoneySaved,
	CriteriaGoalsCompleted,
	CriteriaContentCompleted,
	CriteriaTotalRecords,
}

const (
	BadgeBeginner     = "beginner"
	BadgeIntermediate = "intermediate"
	BadgeAdvanced     = "advanced"
)

// Achievement is catalog data; rows are seeded and never edited by the ledger.
type Achievement struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string    `gorm:"not null;uniqueIndex;column:name" json:"name"`
	Description   string    `gorm:"column:description;type:text" json:"description,omitempty"`
	IconURL       string    `gorm:"column:icon_url" json:"icon_url,omitempty"`
	BadgeType     string    `gorm:"column:badge_type;index" json:"badge_type,omitempty"`
	CriteriaType  string    `gorm:"not null;column:criteria_type;index" json:"criteria_type"`
	CriteriaValue int       `gorm:"not null;column:criteria_value" json:"criteria_value"`
	Points        int       `gorm:"not null;default:0;column:points" json:"points"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}

func (Achievement) TableName() string { return "achievement" }

func (a *Achievement) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func IsCriteriaType(s string) bool {
	for _, c := range CriteriaTypes {
		if c == s {
			return true
		}
	}
	return false
}

// UserAchievement is append-only: one row per (user, achievement), never revoked.
type UserAchievement struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement_pair,priority:1" json:"user_id"`
	AchievementID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement_pair,priority:2;index" json:"achievement_id"`
	Achievement   *Achievement `gorm:"foreignKey:AchievementID;references:ID" json:"achievement,omitempty"`
	EarnedAt      time.Time    `gorm:"not null;index;column:earned_at" json:"earned_at"`
}

func (UserAchievement) TableName() string { return "user_achievement" }

func (ua *UserAchievement) BeforeCreate(*gorm.DB) error {
	if ua.ID == uuid.Nil {
		ua.ID = uuid.New()
	}
	if ua.EarnedAt.IsZero() {
		ua.EarnedAt = time.Now().UTC()
	}
	return nil
}
