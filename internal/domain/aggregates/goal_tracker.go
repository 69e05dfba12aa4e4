package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yungbote/quitbridge-backend/internal/domain/achievements"
	"github.com/yungbote/quitbridge-backend/internal/domain/goals"
	"github.com/yungbote/quitbridge-backend/internal/domain/notifications"
)

var GoalTrackerContract = Contract{
	Name:             "Goals.Tracker",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Owns goal status transitions; completion raises a notification and re-evaluates achievements in the same transaction.",
}

// GoalTracker owns the goal state machine:
// active -> completed | failed, active <-> paused, paused -> failed,
// non-terminal -> deleted.
//
// Write method failures return *aggregates.Error with codes:
// CodeValidation, CodeNotFound, CodeInvalidStateTransition, CodeConflict, CodeInternal.
type GoalTracker interface {
	Aggregate

	CreateGoal(ctx context.Context, in CreateGoalInput) (goals.Goal, error)
	UpdateGoal(ctx context.Context, in UpdateGoalInput) (GoalResult, error)

	// UpdateProgress sets current_value and completes an active goal that reached its target.
	UpdateProgress(ctx context.Context, in UpdateProgressInput) (GoalResult, error)

	Complete(ctx context.Context, ref GoalRef) (GoalResult, error)
	Pause(ctx context.Context, ref GoalRef) (GoalResult, error)
	// Resume is valid only from paused.
	Resume(ctx context.Context, ref GoalRef) (GoalResult, error)
	Fail(ctx context.Context, ref GoalRef) (GoalResult, error)
	Delete(ctx context.Context, ref GoalRef) error
	MarkNotified(ctx context.Context, ref GoalRef) (GoalResult, error)

	// SweepDue emits one reminder per goal due on day that was not yet notified.
	SweepDue(ctx context.Context, day time.Time) (SweepResult, error)
}

type GoalRef struct {
	UserID uuid.UUID
	GoalID uuid.UUID
}

type CreateGoalInput struct {
	UserID      uuid.UUID
	GoalType    string
	TargetValue int
	StartDate   *time.Time
	TargetDate  *time.Time
	Description string
}

type UpdateGoalInput struct {
	GoalRef
	TargetValue *int
	TargetDate  *time.Time
	Description *string
}

type UpdateProgressInput struct {
	GoalRef
	CurrentValue int
}

type GoalResult struct {
	Goal            goals.Goal
	Completed       bool
	NewAchievements []achievements.Achievement
	Notifications   []notifications.Notification
}

type SweepResult struct {
	Day           time.Time
	Due           int
	Notified      int
	Failed        int
	Notifications []notifications.Notification
}
