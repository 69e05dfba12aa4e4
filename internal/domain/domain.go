package domain

import (
	"github.com/yungbote/quitbridge-backend/internal/domain/achievements"
	"github.com/yungbote/quitbridge-backend/internal/domain/auth"
	"github.com/yungbote/quitbridge-backend/internal/domain/content"
	"github.com/yungbote/quitbridge-backend/internal/domain/goals"
	"github.com/yungbote/quitbridge-backend/internal/domain/notifications"
	"github.com/yungbote/quitbridge-backend/internal/domain/tracking"
	"github.com/yungbote/quitbridge-backend/internal/domain/user"
)

type User = user.User
type UserProfile = user.UserProfile
type UserToken = auth.UserToken

type SmokingRecord = tracking.SmokingRecord

type Goal = goals.Goal

type Achievement = achievements.Achievement
type UserAchievement = achievements.UserAchievement

type Notification = notifications.Notification

type EducationalContent = content.EducationalContent
type UserContentProgress = content.UserContentProgress

// UnitPrice is the fixed cost of one cigarette used to convert avoided
// cigarettes into money saved.
const UnitPrice = 25.0

// Models lists every persisted entity in migration order.
func Models() []any {
	return []any{
		&User{},
		&UserToken{},
		&UserProfile{},
		&SmokingRecord{},
		&Goal{},
		&Achievement{},
		&UserAchievement{},
		&Notification{},
		&EducationalContent{},
		&UserContentProgress{},
	}
}
