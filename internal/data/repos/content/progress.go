package content

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/quitbridge-backend/internal/domain"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/quitbridge-backend/internal/platform/logger"
)

type ContentProgressRepo interface {
	Create(dbc dbctx.Context, p *types.UserContentProgress) (*types.UserContentProgress, error)
	LockByUserAndContent(dbc dbctx.Context, userID, contentID uuid.UUID) (*types.UserContentProgress, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserContentProgress, error)
	CountCompleted(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	Summarize(dbc dbctx.Context, userID uuid.UUID) (ProgressSummary, error)
}

// ProgressSummary aggregates one user's progress rows.
type ProgressSummary struct {
	Accessed            int64
	Completed           int64
	AvgUncompleted      float64
	CompletedByCategory map[string]int64
}

type contentProgressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContentProgressRepo(db *gorm.DB, baseLog *logger.Logger) ContentProgressRepo {
	return &contentProgressRepo{db: db, log: baseLog.With("repo", "ContentProgressRepo")}
}

func (r *contentProgressRepo) Create(dbc dbctx.Context, p *types.UserContentProgress) (*types.UserContentProgress, error) {
	if p == nil || p.UserID == uuid.Nil || p.ContentID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id or content_id")
	}
	if err := dbc.DB(r.db).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (r *contentProgressRepo) LockByUserAndContent(dbc dbctx.Context, userID, contentID uuid.UUID) (*types.UserContentProgress, error) {
	if dbc.Tx == nil {
		return nil, fmt.Errorf("LockByUserAndContent requires dbc.Tx")
	}
	var out types.UserContentProgress
	err := dbc.Tx.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND content_id = ?", userID, contentID).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *contentProgressRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if len(updates) == 0 {
		return nil
	}
	return dbc.DB(r.db).Model(&types.UserContentProgress{}).Where("id = ?", id).Updates(updates).Error
}

func (r *contentProgressRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserContentProgress, error) {
	var out []*types.UserContentProgress
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("last_accessed DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *contentProgressRepo) CountCompleted(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := dbc.DB(r.db).
		Model(&types.UserContentProgress{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&count).Error
	return count, err
}

func (r *contentProgressRepo) Summarize(dbc dbctx.Context, userID uuid.UUID) (ProgressSummary, error) {
	out := ProgressSummary{CompletedByCategory: map[string]int64{}}
	db := dbc.DB(r.db)

	var totals struct {
		Accessed       int64
		Completed      int64
		AvgUncompleted *float64
	}
	if err := db.Model(&types.UserContentProgress{}).
		Select(`COUNT(*) AS accessed,
			COALESCE(SUM(CASE WHEN completed THEN 1 ELSE 0 END), 0) AS completed,
			AVG(CASE WHEN completed THEN NULL ELSE progress_percentage END) AS avg_uncompleted`).
		Where("user_id = ?", userID).
		Scan(&totals).Error; err != nil {
		return out, err
	}
	out.Accessed = totals.Accessed
	out.Completed = totals.Completed
	if totals.AvgUncompleted != nil {
		out.AvgUncompleted = *totals.AvgUncompleted
	}

	var rows []struct {
		Category string
		Count    int64
	}
	if err := db.Table("user_content_progress AS p").
		Select("COALESCE(c.category, '') AS category, COUNT(p.id) AS count").
		Joins("JOIN educational_content AS c ON c.id = p.content_id").
		Where("p.user_id = ? AND p.completed = ?", userID, true).
		Group("c.category").
		Scan(&rows).Error; err != nil {
		return out, err
	}
	for _, row := range rows {
		out.CompletedByCategory[row.Category] += row.Count
	}
	return out, nil
}
