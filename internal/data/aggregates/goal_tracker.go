package aggregates

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/quitbridge-backend/internal/data/repos"
	types "github.com/yungbote/quitbridge-backend/internal/domain"
	domainagg "github.com/yungbote/quitbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/domain/goals"
	"github.com/yungbote/quitbridge-backend/internal/domain/tracking"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
)

type GoalTrackerDeps struct {
	Base  BaseDeps
	Repos repos.Set
	Now   func() time.Time
	// SweepConcurrency bounds how many users the deadline sweep processes at once.
	SweepConcurrency int
}

type goalTracker struct {
	deps      GoalTrackerDeps
	unlocker  achievementUnlocker
	completer goalCompleter
}

func NewGoalTracker(deps GoalTrackerDeps) domainagg.GoalTracker {
	deps.Base = deps.Base.withDefaults()
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	if deps.SweepConcurrency <= 0 {
		deps.SweepConcurrency = 4
	}
	return &goalTracker{
		deps:      deps,
		unlocker:  newAchievementUnlocker(deps.Repos),
		completer: newGoalCompleter(deps.Repos, deps.Base.CASGuard),
	}
}

func (t *goalTracker) Contract() domainagg.Contract {
	return domainagg.GoalTrackerContract
}

func validateRef(op string, ref domainagg.GoalRef) error {
	if ref.UserID == uuid.Nil || ref.GoalID == uuid.Nil {
		return domainagg.NewError(domainagg.CodeValidation, op, "missing user_id or goal_id", nil)
	}
	return nil
}

// lockGoal takes the user's write lock and then the goal row.
func (t *goalTracker) lockGoal(dbc dbctx.Context, ref domainagg.GoalRef) (*types.Goal, error) {
	u, err := t.deps.Repos.Users.LockByID(dbc, ref.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, NotFoundError("user not found")
	}
	g, err := t.deps.Repos.Goals.LockByID(dbc, ref.UserID, ref.GoalID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, NotFoundError("goal not found")
	}
	return g, nil
}

func (t *goalTracker) CreateGoal(ctx context.Context, in domainagg.CreateGoalInput) (types.Goal, error) {
	const op = "aggregate.goal_tracker.create_goal"
	var out types.Goal
	in.GoalType = strings.TrimSpace(in.GoalType)
	switch {
	case in.UserID == uuid.Nil:
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	case !goals.IsType(in.GoalType):
		return out, domainagg.NewError(domainagg.CodeValidation, op, "goal_type must be one of "+strings.Join(goals.Types, ", "), nil)
	case in.TargetValue <= 0:
		return out, domainagg.NewError(domainagg.CodeValidation, op, "target_value must be > 0", nil)
	}
	start := tracking.DayOf(t.deps.Now())
	if in.StartDate != nil && !in.StartDate.IsZero() {
		start = tracking.DayOf(*in.StartDate)
	}
	var target *time.Time
	if in.TargetDate != nil && !in.TargetDate.IsZero() {
		d := tracking.DayOf(*in.TargetDate)
		if !d.After(start) {
			return out, domainagg.NewError(domainagg.CodeValidation, op, "target_date must be after start_date", nil)
		}
		target = &d
	}

	err := executeWrite(ctx, t.deps.Base, op, func(dbc dbctx.Context) error {
		exists, err := t.deps.Repos.Users.Exists(dbc, in.UserID)
		if err != nil {
			return err
		}
		if !exists {
			return NotFoundError("user not found")
		}
		g, err := t.deps.Repos.Goals.Create(dbc, &types.Goal{
			UserID:      in.UserID,
			GoalType:    in.GoalType,
			TargetValue: in.TargetValue,
			Description: strings.TrimSpace(in.Description),
			StartDate:   start,
			TargetDate:  target,
			Status:      goals.StatusActive,
		})
		if err != nil {
			return err
		}
		out = *g
		return nil
	})
	if err != nil {
		return types.Goal{}, err
	}
	return out, nil
}

func (t *goalTracker) UpdateGoal(ctx context.Context, in domainagg.UpdateGoalInput) (domainagg.GoalResult, error) {
	const op = "aggregate.goal_tracker.update_goal"
	var out domainagg.GoalResult
	if err := validateRef(op, in.GoalRef); err != nil {
		return out, err
	}
	if in.TargetValue != nil && *in.TargetValue <= 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "target_value must be > 0", nil)
	}
	err := executeWrite(ctx, t.deps.Base, op, func(dbc dbctx.Context) error {
		g, err := t.lockGoal(dbc, in.GoalRef)
		if err != nil {
			return err
		}
		if g.IsTerminal() {
			return InvalidTransitionError("cannot edit a " + g.Status + " goal")
		}
		updates := map[string]interface{}{}
		if in.Description != nil {
			g.Description = strings.TrimSpace(*in.Description)
			updates["description"] = g.Description
		}
		if in.TargetValue != nil {
			g.TargetValue = *in.TargetValue
			updates["target_value"] = g.TargetValue
		}
		if in.TargetDate != nil && !in.TargetDate.IsZero() {
			d := tracking.DayOf(*in.TargetDate)
			if !d.After(tracking.DayOf(g.StartDate)) {
				return ValidationError("target_date must be after start_date")
			}
			g.TargetDate = &d
			updates["target_date"] = d
			updates["notification_sent"] = false
			g.NotificationSent = false
		}
		if err := t.deps.Repos.Goals.UpdateFields(dbc, g.ID, updates); err != nil {
			return err
		}
		if g.Status == goals.StatusActive && g.CurrentValue >= g.TargetValue {
			res, err := t.completeAndEvaluate(dbc, g, g.CurrentValue)
			if err != nil {
				return err
			}
			out = res
			return nil
		}
		out.Goal = *g
		return nil
	})
	if err != nil {
		return domainagg.GoalResult{}, err
	}
	return out, nil
}

func (t *goalTracker) UpdateProgress(ctx context.Context, in domainagg.UpdateProgressInput) (domainagg.GoalResult, error) {
	const op = "aggregate.goal_tracker.update_progress"
	var out domainagg.GoalResult
	if err := validateRef(op, in.GoalRef); err != nil {
		return out, err
	}
	if in.CurrentValue < 0 {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "current_value must be >= 0", nil)
	}
	err := executeWrite(ctx, t.deps.Base, op, func(dbc dbctx.Context) error {
		g, err := t.lockGoal(dbc, in.GoalRef)
		if err != nil {
			return err
		}
		if g.Status == goals.StatusActive && in.CurrentValue >= g.TargetValue {
			res, err := t.completeAndEvaluate(dbc, g, in.CurrentValue)
			if err != nil {
				return err
			}
			out = res
			return nil
		}
		if in.CurrentValue != g.CurrentValue {
			if err := t.deps.Repos.Goals.UpdateFields(dbc, g.ID, map[string]interface{}{"current_value": in.CurrentValue}); err != nil {
				return err
			}
			g.CurrentValue = in.CurrentValue
		}
		out.Goal = *g
		return nil
	})
	if err != nil {
		return domainagg.GoalResult{}, err
	}
	return out, nil
}

func (t *goalTracker) Complete(ctx context.Context, ref domainagg.GoalRef) (domainagg.GoalResult, error) {
	const op = "aggregate.goal_tracker.complete"
	var out domainagg.GoalResult
	if err := validateRef(op, ref); err != nil {
		return out, err
	}
	err := executeWrite(ctx, t.deps.Base, op, func(dbc dbctx.Context) error {
		g, err := t.lockGoal(dbc, ref)
		if err != nil {
			return err
		}
		res, err := t.completeAndEvaluate(dbc, g, g.TargetValue, goals.StatusActive, goals.StatusPaused)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return domainagg.GoalResult{}, err
	}
	return out, nil
}

// completeAndEvaluate completes g and re-runs the achievement pass so
// goals_completed thresholds unlock in the same transaction.
func (t *goalTracker) completeAndEvaluate(dbc dbctx.Context, g *types.Goal, value int, from ...string) (domainagg.GoalResult, error) {
	var out domainagg.GoalResult
	n, err := t.completer.complete(dbc, g, value, t.deps.Now(), from...)
	if err != nil {
		return out, err
	}
	eval, err := t.unlocker.evaluate(dbc, g.UserID)
	if err != nil {
		return out, err
	}
	out.Goal = *g
	out.Completed = true
	out.NewAchievements = eval.Unlocked
	out.Notifications = append([]types.Notification{n}, eval.Notifications...)
	return out, nil
}

func (t *goalTracker) transition(ctx context.Context, op string, ref domainagg.GoalRef, to string, from ...string) (domainagg.GoalResult, error) {
	var out domainagg.GoalResult
	if err := validateRef(op, ref); err != nil {
		return out, err
	}
	err := executeWrite(ctx, t.deps.Base, op, func(dbc dbctx.Context) error {
		g, err := t.lockGoal(dbc, ref)
		if err != nil {
			return err
		}
		if err := RequireStatusAllowed(g.Status, from...); err != nil {
			return err
		}
		now := t.deps.Now()
		ok, err := t.deps.Base.CASGuard.UpdateByStatus(dbc, goalTable, g.ID, from, map[string]any{
			"status":     to,
			"updated_at": now,
		})
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "goal status changed concurrently"); err != nil {
			return err
		}
		g.Status = to
		g.UpdatedAt = now
		out.Goal = *g
		return nil
	})
	if err != nil {
		return domainagg.GoalResult{}, err
	}
	return out, nil
}

func (t *goalTracker) Pause(ctx context.Context, ref domainagg.GoalRef) (domainagg.GoalResult, error) {
	return t.transition(ctx, "aggregate.goal_tracker.pause", ref, goals.StatusPaused, goals.StatusActive)
}

// Resume reactivates a paused goal. A goal whose progress already reached its
// target completes instead.
func (t *goalTracker) Resume(ctx context.Context, ref domainagg.GoalRef) (domainagg.GoalResult, error) {
	const op = "aggregate.goal_tracker.resume"
	var out domainagg.GoalResult
	if err := validateRef(op, ref); err != nil {
		return out, err
	}
	err := executeWrite(ctx, t.deps.Base, op, func(dbc dbctx.Context) error {
		g, err := t.lockGoal(dbc, ref)
		if err != nil {
			return err
		}
		if err := RequireStatusAllowed(g.Status, goals.StatusPaused); err != nil {
			return err
		}
		if g.CurrentValue >= g.TargetValue {
			res, err := t.completeAndEvaluate(dbc, g, g.CurrentValue, goals.StatusPaused)
			if err != nil {
				return err
			}
			out = res
			return nil
		}
		now := t.deps.Now()
		ok, err := t.deps.Base.CASGuard.UpdateByStatus(dbc, goalTable, g.ID, []string{goals.StatusPaused}, map[string]any{
			"status":     goals.StatusActive,
			"updated_at": now,
		})
		if err != nil {
			return err
		}
		if err := RequireCASSuccess(ok, "goal status changed concurrently"); err != nil {
			return err
		}
		g.Status = goals.StatusActive
		g.UpdatedAt = now
		out.Goal = *g
		return nil
	})
	if err != nil {
		return domainagg.GoalResult{}, err
	}
	return out, nil
}

func (t *goalTracker) Fail(ctx context.Context, ref domainagg.GoalRef) (domainagg.GoalResult, error) {
	return t.transition(ctx, "aggregate.goal_tracker.fail", ref, goals.StatusFailed, goals.StatusActive, goals.StatusPaused)
}

func (t *goalTracker) Delete(ctx context.Context, ref domainagg.GoalRef) error {
	const op = "aggregate.goal_tracker.delete"
	if err := validateRef(op, ref); err != nil {
		return err
	}
	return executeWrite(ctx, t.deps.Base, op, func(dbc dbctx.Context) error {
		g, err := t.lockGoal(dbc, ref)
		if err != nil {
			return err
		}
		if g.IsTerminal() {
			return InvalidTransitionError("cannot delete a " + g.Status + " goal")
		}
		return t.deps.Repos.Goals.Delete(dbc, g.ID)
	})
}

func (t *goalTracker) MarkNotified(ctx context.Context, ref domainagg.GoalRef) (domainagg.GoalResult, error) {
	const op = "aggregate.goal_tracker.mark_notified"
	var out domainagg.GoalResult
	if err := validateRef(op, ref); err != nil {
		return out, err
	}
	err := executeWrite(ctx, t.deps.Base, op, func(dbc dbctx.Context) error {
		g, err := t.lockGoal(dbc, ref)
		if err != nil {
			return err
		}
		if !g.NotificationSent {
			if err := t.deps.Repos.Goals.UpdateFields(dbc, g.ID, map[string]interface{}{"notification_sent": true}); err != nil {
				return err
			}
			g.NotificationSent = true
		}
		out.Goal = *g
		return nil
	})
	if err != nil {
		return domainagg.GoalResult{}, err
	}
	return out, nil
}
