package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/quitbridge-backend/internal/domain/achievements"
	"github.com/yungbote/quitbridge-backend/internal/domain/goals"
	"github.com/yungbote/quitbridge-backend/internal/domain/notifications"
	"github.com/yungbote/quitbridge-backend/internal/domain/user"
	"github.com/yungbote/quitbridge-backend/internal/observability"
	"github.com/yungbote/quitbridge-backend/internal/realtime"
)

// Outcome is what a committed write produced for one user.
type Outcome struct {
	UserID          uuid.UUID
	Profile         *user.UserProfile
	CompletedGoals  []goals.Goal
	NewAchievements []achievements.Achievement
	Notifications   []notifications.Notification
}

// Notifier pushes committed outcomes to connected clients. Callers invoke it
// only after their transaction has committed.
type Notifier interface {
	Committed(ctx context.Context, out Outcome)
	Notifications(ctx context.Context, ns []notifications.Notification)
}

type notifier struct {
	emit    SSEEmitter
	metrics *observability.Metrics
}

func NewNotifier(emit SSEEmitter, metrics *observability.Metrics) Notifier {
	return &notifier{emit: emit, metrics: metrics}
}

func (n *notifier) Committed(ctx context.Context, out Outcome) {
	if n == nil {
		return
	}
	n.metrics.AddAchievementsEarned(len(out.NewAchievements))
	n.metrics.AddGoalsCompleted(len(out.CompletedGoals))
	if n.emit == nil || out.UserID == uuid.Nil {
		return
	}
	channel := realtime.UserChannel(out.UserID)
	if out.Profile != nil {
		n.emit.Emit(ctx, realtime.SSEMessage{
			Channel: channel,
			Event:   realtime.SSEEventProgressUpdated,
			Data:    map[string]any{"profile": out.Profile},
		})
	}
	for i := range out.CompletedGoals {
		n.emit.Emit(ctx, realtime.SSEMessage{
			Channel: channel,
			Event:   realtime.SSEEventGoalCompleted,
			Data:    map[string]any{"goal": out.CompletedGoals[i]},
		})
	}
	for i := range out.NewAchievements {
		n.emit.Emit(ctx, realtime.SSEMessage{
			Channel: channel,
			Event:   realtime.SSEEventAchievementEarned,
			Data:    map[string]any{"achievement": out.NewAchievements[i]},
		})
	}
	n.Notifications(ctx, out.Notifications)
}

func (n *notifier) Notifications(ctx context.Context, ns []notifications.Notification) {
	if n == nil || n.emit == nil {
		return
	}
	for i := range ns {
		if ns[i].UserID == uuid.Nil {
			continue
		}
		n.emit.Emit(ctx, realtime.SSEMessage{
			Channel: realtime.UserChannel(ns[i].UserID),
			Event:   realtime.SSEEventNotificationCreated,
			Data:    map[string]any{"notification": ns[i]},
		})
	}
}

// nopNotifier is used when realtime delivery is not wired.
type nopNotifier struct{}

func (nopNotifier) Committed(context.Context, Outcome)                           {}
func (nopNotifier) Notifications(context.Context, []notifications.Notification) {}

func notifierOrNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
