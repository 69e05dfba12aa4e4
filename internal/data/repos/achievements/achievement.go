package achievements

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/quitbridge-backend/internal/domain"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/quitbridge-backend/internal/platform/logger"
)

type AchievementRepo interface {
	Create(dbc dbctx.Context, a *types.Achievement) (*types.Achievement, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Achievement, error)
	GetByName(dbc dbctx.Context, name string) (*types.Achievement, error)
	List(dbc dbctx.Context, badgeType string) ([]*types.Achievement, error)
	Count(dbc dbctx.Context) (int64, error)
	ListUnearnedByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Achievement, error)
}

type achievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAchievementRepo(db *gorm.DB, baseLog *logger.Logger) AchievementRepo {
	return &achievementRepo{db: db, log: baseLog.With("repo", "AchievementRepo")}
}

func (r *achievementRepo) Create(dbc dbctx.Context, a *types.Achievement) (*types.Achievement, error) {
	if a == nil || a.Name == "" {
		return nil, fmt.Errorf("missing name")
	}
	if err := dbc.DB(r.db).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

func (r *achievementRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Achievement, error) {
	var out types.Achievement
	err := dbc.DB(r.db).Where("id = ?", id).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *achievementRepo) GetByName(dbc dbctx.Context, name string) (*types.Achievement, error) {
	var out types.Achievement
	err := dbc.DB(r.db).Where("name = ?", name).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// List orders the catalog by points descending, then name.
func (r *achievementRepo) List(dbc dbctx.Context, badgeType string) ([]*types.Achievement, error) {
	q := dbc.DB(r.db)
	if badgeType != "" {
		q = q.Where("badge_type = ?", badgeType)
	}
	var out []*types.Achievement
	if err := q.Order("points DESC").Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *achievementRepo) Count(dbc dbctx.Context) (int64, error) {
	var count int64
	err := dbc.DB(r.db).Model(&types.Achievement{}).Count(&count).Error
	return count, err
}

// ListUnearnedByUser returns catalog rows the user has not earned, cheapest first.
func (r *achievementRepo) ListUnearnedByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Achievement, error) {
	earned := dbc.DB(r.db).
		Model(&types.UserAchievement{}).
		Select("achievement_id").
		Where("user_id = ?", userID)
	var out []*types.Achievement
	if err := dbc.DB(r.db).
		Where("id NOT IN (?)", earned).
		Order("points ASC").
		Order("criteria_value ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
