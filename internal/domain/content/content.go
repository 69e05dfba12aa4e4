package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EducationalContent struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"not null;column:title" json:"title"`
	ContentType string    `gorm:"column:content_type" json:"content_type,omitempty"`
	ContentText string    `gorm:"column:content_text;type:text" json:"content_text,omitempty"`
	ContentURL  string    `gorm:"column:content_url" json:"content_url,omitempty"`
	Category    string    `gorm:"column:category;index" json:"category,omitempty"`
	Language    string    `gorm:"not null;default:'ar-dz';column:language" json:"language"`
	ReadingTime int       `gorm:"column:reading_time" json:"reading_time,omitempty"`
	IsPublished bool      `gorm:"not null;default:false;index;column:is_published" json:"is_published"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (EducationalContent) TableName() string { return "educational_content" }

func (c *EducationalContent) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// UserContentProgress tracks how far a user got through one content item.
// Completed rows feed the content_completed achievement metric.
type UserContentProgress struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_content_pair,priority:1" json:"user_id"`
	ContentID          uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_content_pair,priority:2" json:"content_id"`
	ProgressPercentage int       `gorm:"not null;default:0;column:progress_percentage" json:"progress_percentage"`
	Completed          bool      `gorm:"not null;default:false;index;column:completed" json:"completed"`
	LastAccessed       time.Time `gorm:"not null;column:last_accessed" json:"last_accessed"`
}

func (UserContentProgress) TableName() string { return "user_content_progress" }

func (p *UserContentProgress) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.LastAccessed.IsZero() {
		p.LastAccessed = time.Now().UTC()
	}
	return nil
}
