package achievements

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/quitbridge-backend/internal/domain"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/quitbridge-backend/internal/platform/logger"
)

type LeaderboardRow struct {
	UserID           uuid.UUID `json:"user_id"`
	Username         string    `json:"username"`
	TotalPoints      int64     `json:"total_points"`
	AchievementCount int64     `json:"achievement_count"`
}

type UserAchievementRepo interface {
	Create(dbc dbctx.Context, ua *types.UserAchievement) (*types.UserAchievement, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserAchievement, error)
	ListByUserSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]*types.UserAchievement, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	Exists(dbc dbctx.Context, userID, achievementID uuid.UUID) (bool, error)
	Leaderboard(dbc dbctx.Context, limit int) ([]LeaderboardRow, error)
}

type userAchievementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserAchievementRepo(db *gorm.DB, baseLog *logger.Logger) UserAchievementRepo {
	return &userAchievementRepo{db: db, log: baseLog.With("repo", "UserAchievementRepo")}
}

func (r *userAchievementRepo) Create(dbc dbctx.Context, ua *types.UserAchievement) (*types.UserAchievement, error) {
	if ua == nil || ua.UserID == uuid.Nil || ua.AchievementID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id or achievement_id")
	}
	if err := dbc.DB(r.db).Omit("Achievement").Create(ua).Error; err != nil {
		return nil, err
	}
	return ua, nil
}

// ListByUser preloads the catalog row, newest first.
func (r *userAchievementRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.UserAchievement, error) {
	var out []*types.UserAchievement
	if err := dbc.DB(r.db).
		Preload("Achievement").
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userAchievementRepo) ListByUserSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]*types.UserAchievement, error) {
	var out []*types.UserAchievement
	if err := dbc.DB(r.db).
		Preload("Achievement").
		Where("user_id = ? AND earned_at >= ?", userID, since).
		Order("earned_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userAchievementRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := dbc.DB(r.db).Model(&types.UserAchievement{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *userAchievementRepo) Exists(dbc dbctx.Context, userID, achievementID uuid.UUID) (bool, error) {
	var count int64
	err := dbc.DB(r.db).
		Model(&types.UserAchievement{}).
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		Count(&count).Error
	return count > 0, err
}

func (r *userAchievementRepo) Leaderboard(dbc dbctx.Context, limit int) ([]LeaderboardRow, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	var out []LeaderboardRow
	err := dbc.DB(r.db).
		Table(`"user_achievement" AS ua`).
		Select(`ua.user_id AS user_id, u.username AS username, COALESCE(SUM(a.points), 0) AS total_points, COUNT(ua.id) AS achievement_count`).
		Joins(`JOIN "achievement" AS a ON a.id = ua.achievement_id`).
		Joins(`JOIN "user" AS u ON u.id = ua.user_id`).
		Group("ua.user_id, u.username").
		Order("total_points DESC").
		Order("achievement_count DESC").
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
