package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/quitbridge-backend/internal/data/repos/achievements"
	"github.com/yungbote/quitbridge-backend/internal/data/repos/auth"
	"github.com/yungbote/quitbridge-backend/internal/data/repos/content"
	"github.com/yungbote/quitbridge-backend/internal/data/repos/goals"
	"github.com/yungbote/quitbridge-backend/internal/data/repos/notifications"
	"github.com/yungbote/quitbridge-backend/internal/data/repos/tracking"
	"github.com/yungbote/quitbridge-backend/internal/data/repos/user"
	"github.com/yungbote/quitbridge-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserProfileRepo = user.UserProfileRepo
type UserTokenRepo = auth.UserTokenRepo

type SmokingRecordRepo = tracking.SmokingRecordRepo

type GoalRepo = goals.GoalRepo
type GoalFilter = goals.GoalFilter

type AchievementRepo = achievements.AchievementRepo
type UserAchievementRepo = achievements.UserAchievementRepo
type LeaderboardRow = achievements.LeaderboardRow

type NotificationRepo = notifications.NotificationRepo
type NotificationFilter = notifications.NotificationFilter
type NotificationTypeCount = notifications.TypeCount

type ContentRepo = content.ContentRepo
type ContentFilter = content.ContentFilter
type ContentProgressRepo = content.ContentProgressRepo
type ContentProgressSummary = content.ProgressSummary

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewUserProfileRepo(db *gorm.DB, baseLog *logger.Logger) UserProfileRepo {
	return user.NewUserProfileRepo(db, baseLog)
}
func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewSmokingRecordRepo(db *gorm.DB, baseLog *logger.Logger) SmokingRecordRepo {
	return tracking.NewSmokingRecordRepo(db, baseLog)
}

func NewGoalRepo(db *gorm.DB, baseLog *logger.Logger) GoalRepo { return goals.NewGoalRepo(db, baseLog) }

func NewAchievementRepo(db *gorm.DB, baseLog *logger.Logger) AchievementRepo {
	return achievements.NewAchievementRepo(db, baseLog)
}
func NewUserAchievementRepo(db *gorm.DB, baseLog *logger.Logger) UserAchievementRepo {
	return achievements.NewUserAchievementRepo(db, baseLog)
}

func NewNotificationRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRepo {
	return notifications.NewNotificationRepo(db, baseLog)
}

func NewContentRepo(db *gorm.DB, baseLog *logger.Logger) ContentRepo {
	return content.NewContentRepo(db, baseLog)
}
func NewContentProgressRepo(db *gorm.DB, baseLog *logger.Logger) ContentProgressRepo {
	return content.NewContentProgressRepo(db, baseLog)
}

// Set bundles every repo over one handle.
type Set struct {
	Users            UserRepo
	Profiles         UserProfileRepo
	Tokens           UserTokenRepo
	Records          SmokingRecordRepo
	Goals            GoalRepo
	Achievements     AchievementRepo
	UserAchievements UserAchievementRepo
	Notifications    NotificationRepo
	Content          ContentRepo
	ContentProgress  ContentProgressRepo
}

func NewSet(db *gorm.DB, baseLog *logger.Logger) Set {
	return Set{
		Users:            NewUserRepo(db, baseLog),
		Profiles:         NewUserProfileRepo(db, baseLog),
		Tokens:           NewUserTokenRepo(db, baseLog),
		Records:          NewSmokingRecordRepo(db, baseLog),
		Goals:            NewGoalRepo(db, baseLog),
		Achievements:     NewAchievementRepo(db, baseLog),
		UserAchievements: NewUserAchievementRepo(db, baseLog),
		Notifications:    NewNotificationRepo(db, baseLog),
		Content:          NewContentRepo(db, baseLog),
		ContentProgress:  NewContentProgressRepo(db, baseLog),
	}
}
