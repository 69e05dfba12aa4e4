package aggregates

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	types "github.com/yungbote/quitbridge-backend/internal/domain"
	domainagg "github.com/yungbote/quitbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/domain/goals"
	"github.com/yungbote/quitbridge-backend/internal/domain/notifications"
	"github.com/yungbote/quitbridge-backend/internal/domain/tracking"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
)

const (
	goalReminderTitle  = "Goal Deadline Today!"
	goalReminderFormat = "Today is the deadline for your goal: %s"
)

// SweepDue reminds owners of goals whose target date is day. Each owner is
// handled in its own transaction; the notification_sent flag is flipped with
// a compare-and-set so a goal is reminded at most once across runs.
func (t *goalTracker) SweepDue(ctx context.Context, day time.Time) (domainagg.SweepResult, error) {
	const op = "aggregate.goal_tracker.sweep_due"
	day = tracking.DayOf(day)
	out := domainagg.SweepResult{Day: day}

	due, err := t.deps.Repos.Goals.ListDueUnnotified(dbctx.Context{Ctx: ctx}, day)
	if err != nil {
		return out, MapError(op, err)
	}
	out.Due = len(due)
	if len(due) == 0 {
		return out, nil
	}

	byUser := map[uuid.UUID][]*types.Goal{}
	var order []uuid.UUID
	for _, g := range due {
		if _, ok := byUser[g.UserID]; !ok {
			order = append(order, g.UserID)
		}
		byUser[g.UserID] = append(byUser[g.UserID], g)
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(t.deps.SweepConcurrency)
	for _, userID := range order {
		userID, userGoals := userID, byUser[userID]
		eg.Go(func() error {
			var sent []types.Notification
			err := executeWrite(egCtx, t.deps.Base, op, func(dbc dbctx.Context) error {
				sent = sent[:0]
				for _, g := range userGoals {
					n, ok, err := t.remind(dbc, g)
					if err != nil {
						return err
					}
					if ok {
						sent = append(sent, n)
					}
				}
				return nil
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				out.Failed += len(userGoals)
				errs = append(errs, err)
				t.deps.Base.Log.Warn("goal sweep failed for user", "user_id", userID, "error", err)
				return nil
			}
			out.Notified += len(sent)
			out.Notifications = append(out.Notifications, sent...)
			return nil
		})
	}
	_ = eg.Wait()
	return out, errors.Join(errs...)
}

func (t *goalTracker) remind(dbc dbctx.Context, g *types.Goal) (types.Notification, bool, error) {
	ok, err := t.deps.Base.CASGuard.UpdateWhereFalse(dbc, goalTable, g.ID, "notification_sent", map[string]any{
		"notification_sent": true,
		"updated_at":        t.deps.Now(),
	})
	if err != nil || !ok {
		return types.Notification{}, false, err
	}
	n, err := t.completer.emitter.EmitWithData(dbc, g.UserID,
		notifications.TypeGoalReminder,
		goalReminderTitle,
		fmt.Sprintf(goalReminderFormat, goals.TypeTitle(g.GoalType)),
		map[string]any{"goal_id": g.ID.String(), "goal_type": g.GoalType},
	)
	if err != nil {
		return types.Notification{}, false, err
	}
	return n, true, nil
}
