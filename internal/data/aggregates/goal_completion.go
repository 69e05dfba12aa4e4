package aggregates

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/quitbridge-backend/internal/data/repos"
	types "github.com/yungbote/quitbridge-backend/internal/domain"
	"github.com/yungbote/quitbridge-backend/internal/domain/goals"
	"github.com/yungbote/quitbridge-backend/internal/domain/notifications"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
)

const (
	goalTable                      = "goal"
	goalCompletedNotificationTitle = "Goal Completed!"
	goalCompletedNotificationFmt   = "Congratulations! You completed your goal: %s"
)

// goalCompleter performs the completion transition shared by explicit goal
// updates and the ledger's automatic goal sync.
type goalCompleter struct {
	goals   repos.GoalRepo
	cas     CASGuard
	emitter *NotificationEmitter
}

func newGoalCompleter(r repos.Set, cas CASGuard) goalCompleter {
	return goalCompleter{goals: r.Goals, cas: cas, emitter: NewNotificationEmitter(r.Notifications)}
}

func (c goalCompleter) complete(dbc dbctx.Context, g *types.Goal, value int, at time.Time, from ...string) (types.Notification, error) {
	if len(from) == 0 {
		from = []string{goals.StatusActive}
	}
	if err := RequireStatusAllowed(g.Status, from...); err != nil {
		return types.Notification{}, err
	}
	ok, err := c.cas.UpdateByStatus(dbc, goalTable, g.ID, from, map[string]any{
		"status":        goals.StatusCompleted,
		"current_value": value,
		"completed_at":  at,
		"updated_at":    at,
	})
	if err != nil {
		return types.Notification{}, err
	}
	if err := RequireCASSuccess(ok, "goal status changed concurrently"); err != nil {
		return types.Notification{}, err
	}
	g.Status = goals.StatusCompleted
	g.CurrentValue = value
	g.CompletedAt = &at
	g.UpdatedAt = at

	return c.emitter.EmitWithData(dbc, g.UserID,
		notifications.TypeGoalCompleted,
		goalCompletedNotificationTitle,
		fmt.Sprintf(goalCompletedNotificationFmt, goals.TypeTitle(g.GoalType)),
		map[string]any{"goal_id": g.ID.String(), "goal_type": g.GoalType},
	)
}

// syncedGoalTypes maps goal types the ledger drives to the profile value they follow.
var syncedGoalTypes = map[string]func(p *types.UserProfile) int{
	goals.TypeSmokeFreeDays: func(p *types.UserProfile) int { return p.CurrentStreakDays },
	goals.TypeMoneySaved:    func(p *types.UserProfile) int { return int(math.Floor(p.TotalMoneySaved)) },
}

// syncGoals moves active ledger-driven goals to the profile's current values
// and completes the ones that reached their target.
func (c goalCompleter) syncGoals(dbc dbctx.Context, userID uuid.UUID, p *types.UserProfile, at time.Time) ([]types.Goal, []types.Notification, error) {
	goalTypes := make([]string, 0, len(syncedGoalTypes))
	for _, t := range goals.Types {
		if _, ok := syncedGoalTypes[t]; ok {
			goalTypes = append(goalTypes, t)
		}
	}
	active, err := c.goals.ListActiveByTypes(dbc, userID, goalTypes)
	if err != nil {
		return nil, nil, err
	}
	var completed []types.Goal
	var notes []types.Notification
	for _, g := range active {
		value := syncedGoalTypes[g.GoalType](p)
		if value >= g.TargetValue {
			n, err := c.complete(dbc, g, value, at)
			if err != nil {
				return nil, nil, err
			}
			completed = append(completed, *g)
			notes = append(notes, n)
			continue
		}
		if value != g.CurrentValue {
			if err := c.goals.UpdateFields(dbc, g.ID, map[string]interface{}{"current_value": value}); err != nil {
				return nil, nil, err
			}
		}
	}
	return completed, notes, nil
}
