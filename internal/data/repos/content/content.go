package content

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quitbridge-backend/internal/data/repos/query"
	types "github.com/yungbote/quitbridge-backend/internal/domain"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/quitbridge-backend/internal/platform/logger"
)

type ContentFilter struct {
	Category    string
	Language    string
	ContentType string
}

type ContentRepo interface {
	Create(dbc dbctx.Context, c *types.EducationalContent) (*types.EducationalContent, error)
	GetPublishedByID(dbc dbctx.Context, id uuid.UUID) (*types.EducationalContent, error)
	ListPublished(dbc dbctx.Context, f ContentFilter, page query.Page) ([]*types.EducationalContent, int64, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.EducationalContent, error)
	Search(dbc dbctx.Context, text string, limit int) ([]*types.EducationalContent, error)
	ListRecommended(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.EducationalContent, error)
	CountPublished(dbc dbctx.Context) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type contentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentRepo(db *gorm.DB, baseLog *logger.Logger) ContentRepo {
	return &contentRepo{db: db, log: baseLog.With("repo", "ContentRepo")}
}

func (r *contentRepo) Create(dbc dbctx.Context, c *types.EducationalContent) (*types.EducationalContent, error) {
	if c == nil || c.Title == "" {
		return nil, fmt.Errorf("missing title")
	}
	if err := dbc.DB(r.db).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetPublishedByID hides unpublished rows; nil, nil when absent.
func (r *contentRepo) GetPublishedByID(dbc dbctx.Context, id uuid.UUID) (*types.EducationalContent, error) {
	var out types.EducationalContent
	err := dbc.DB(r.db).Where("id = ? AND is_published = ?", id, true).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *contentRepo) ListPublished(dbc dbctx.Context, f ContentFilter, page query.Page) ([]*types.EducationalContent, int64, error) {
	page = page.Normalize(20, 100)
	scoped := func() *gorm.DB {
		q := dbc.DB(r.db).Model(&types.EducationalContent{}).Where("is_published = ?", true)
		if f.Category != "" {
			q = q.Where("category = ?", f.Category)
		}
		if f.Language != "" {
			q = q.Where("language = ?", f.Language)
		}
		if f.ContentType != "" {
			q = q.Where("content_type = ?", f.ContentType)
		}
		return q
	}
	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.EducationalContent
	if err := scoped().
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetByID includes unpublished rows; nil, nil when absent.
func (r *contentRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.EducationalContent, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.EducationalContent
	err := dbc.DB(r.db).Where("id = ?", id).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// Search matches published rows whose title or text contains text, case-insensitively.
func (r *contentRepo) Search(dbc dbctx.Context, text string, limit int) ([]*types.EducationalContent, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(text)) + "%"
	var out []*types.EducationalContent
	if err := dbc.DB(r.db).
		Where("is_published = ?", true).
		Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(content_text) LIKE ? ESCAPE '\')`, pattern, pattern).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListRecommended returns published rows the user has not completed,
// grouped by category with the newest first.
func (r *contentRepo) ListRecommended(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.EducationalContent, error) {
	db := dbc.DB(r.db)
	completed := db.Session(&gorm.Session{NewDB: true}).
		Model(&types.UserContentProgress{}).
		Select("content_id").
		Where("user_id = ? AND completed = ?", userID, true)
	var out []*types.EducationalContent
	if err := db.
		Where("is_published = ?", true).
		Where("id NOT IN (?)", completed).
		Order("category ASC").
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contentRepo) CountPublished(dbc dbctx.Context) (int64, error) {
	var count int64
	err := dbc.DB(r.db).Model(&types.EducationalContent{}).Where("is_published = ?", true).Count(&count).Error
	return count, err
}

func (r *contentRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return dbc.DB(r.db).Model(&types.EducationalContent{}).Where("id = ?", id).Updates(updates).Error
}

// Delete removes the item and all user progress on it.
func (r *contentRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if dbc.Tx == nil {
		return fmt.Errorf("Delete requires dbc.Tx")
	}
	tx := dbc.Tx.WithContext(dbc.Ctx)
	if err := tx.Where("content_id = ?", id).Delete(&types.UserContentProgress{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&types.EducationalContent{}).Error
}
