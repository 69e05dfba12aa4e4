package tracking

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MoodHappy    = "happy"
	MoodNeutral  = "neutral"
	MoodStressed = "stressed"
	MoodAnxious  = "anxious"
	MoodSad      = "sad"
)

var Moods = []string{MoodHappy, MoodNeutral, MoodStressed, MoodAnxious, MoodSad}

// SmokingRecord is one user's log for one calendar day.
type SmokingRecord struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_smoking_record_user_date,priority:1" json:"user_id"`
	RecordDate time.Time `gorm:"type:date;not null;uniqueIndex:idx_smoking_record_user_date,priority:2;column:record_date" json:"record_date"`

	CigarettesSmoked int    `gorm:"not null;column:cigarettes_smoked" json:"cigarettes_smoked"`
	CravingsCount    int    `gorm:"not null;default:0;column:cravings_count" json:"cravings_count"`
	Mood             string `gorm:"column:mood" json:"mood,omitempty"`
	Triggers         string `gorm:"column:triggers;type:text" json:"triggers,omitempty"`
	Notes            string `gorm:"column:notes;type:text" json:"notes,omitempty"`

	// Baseline in effect when the record was created; edits reuse it.
	BaselinePerDay int `gorm:"not null;default:0;column:baseline_per_day" json:"baseline_per_day"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (SmokingRecord) TableName() string { return "smoking_record" }

func (r *SmokingRecord) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// DayOf truncates t to its UTC calendar day.
func DayOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date.
func ParseDay(raw string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, err
	}
	return DayOf(t), nil
}

func IsMood(s string) bool {
	for _, m := range Moods {
		if m == s {
			return true
		}
	}
	return false
}
