package goals

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/quitbridge-backend/internal/domain"
	domaingoals "github.com/yungbote/quitbridge-backend/internal/domain/goals"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/quitbridge-backend/internal/platform/logger"
)

type GoalFilter struct {
	Status   string
	GoalType string
}

type GoalRepo interface {
	Create(dbc dbctx.Context, g *types.Goal) (*types.Goal, error)
	GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.Goal, error)
	LockByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.Goal, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, f GoalFilter) ([]*types.Goal, error)
	ListActiveByTypes(dbc dbctx.Context, userID uuid.UUID, goalTypes []string) ([]*types.Goal, error)
	ListDueUnnotified(dbc dbctx.Context, day time.Time) ([]*types.Goal, error)
	CountCompleted(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
}

type goalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGoalRepo(db *gorm.DB, baseLog *logger.Logger) GoalRepo {
	return &goalRepo{db: db, log: baseLog.With("repo", "GoalRepo")}
}

func (r *goalRepo) Create(dbc dbctx.Context, g *types.Goal) (*types.Goal, error) {
	if g == nil || g.UserID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if err := dbc.DB(r.db).Create(g).Error; err != nil {
		return nil, err
	}
	return g, nil
}

func (r *goalRepo) GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.Goal, error) {
	var out types.Goal
	err := dbc.DB(r.db).Where("id = ? AND user_id = ?", id, userID).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *goalRepo) LockByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.Goal, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	if dbc.Tx == nil {
		return nil, fmt.Errorf("LockByID requires dbc.Tx")
	}
	var out types.Goal
	err := dbc.Tx.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", id, userID).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *goalRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, f GoalFilter) ([]*types.Goal, error) {
	q := dbc.DB(r.db).Where("user_id = ?", userID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.GoalType != "" {
		q = q.Where("goal_type = ?", f.GoalType)
	}
	var out []*types.Goal
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *goalRepo) ListActiveByTypes(dbc dbctx.Context, userID uuid.UUID, goalTypes []string) ([]*types.Goal, error) {
	var out []*types.Goal
	if len(goalTypes) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).
		Where("user_id = ? AND status = ? AND goal_type IN ?", userID, domaingoals.StatusActive, goalTypes).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListDueUnnotified returns goals across all users whose target date is day
// and whose reminder has not been sent.
func (r *goalRepo) ListDueUnnotified(dbc dbctx.Context, day time.Time) ([]*types.Goal, error) {
	var out []*types.Goal
	if err := dbc.DB(r.db).
		Where("target_date = ? AND notification_sent = ?", day, false).
		Order("user_id ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *goalRepo) CountCompleted(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := dbc.DB(r.db).
		Model(&types.Goal{}).
		Where("user_id = ? AND status = ?", userID, domaingoals.StatusCompleted).
		Count(&count).Error
	return count, err
}

func (r *goalRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return dbc.DB(r.db).Model(&types.Goal{}).Where("id = ?", id).Updates(updates).Error
}

func (r *goalRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.Goal{}).Error
}
