package aggregates

import (
	"context"

	"github.com/google/uuid"
	"github.com/yungbote/quitbridge-backend/internal/domain/achievements"
	"github.com/yungbote/quitbridge-backend/internal/domain/content"
	"github.com/yungbote/quitbridge-backend/internal/domain/notifications"
)

var ContentProgressContract = Contract{
	Name:             "Content.Progress",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns user content progress; the first completion re-evaluates achievements atomically.",
}

type ContentProgressAggregate interface {
	Aggregate

	RecordProgress(ctx context.Context, in RecordContentProgressInput) (ContentProgressResult, error)
}

type RecordContentProgressInput struct {
	UserID             uuid.UUID
	ContentID          uuid.UUID
	ProgressPercentage *int
	Completed          *bool
}

type ContentProgressResult struct {
	Progress        content.UserContentProgress
	NewlyCompleted  bool
	NewAchievements []achievements.Achievement
	Notifications   []notifications.Notification
}
