package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/quitbridge-backend/internal/data/repos"
	types "github.com/yungbote/quitbridge-backend/internal/domain"
	"github.com/yungbote/quitbridge-backend/internal/domain/achievements"
	domainagg "github.com/yungbote/quitbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/domain/goals"
	"github.com/yungbote/quitbridge-backend/internal/domain/notifications"
	"github.com/yungbote/quitbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/quitbridge-backend/internal/platform/logger"
)

// fakeGoalTracker implements only what the tests call; anything else panics
// on the nil embedded interface.
type fakeGoalTracker struct {
	domainagg.GoalTracker

	progressIn  domainagg.UpdateProgressInput
	progressRes domainagg.GoalResult
	pausedRef   domainagg.GoalRef
	err         error
}

func (f *fakeGoalTracker) UpdateProgress(_ context.Context, in domainagg.UpdateProgressInput) (domainagg.GoalResult, error) {
	f.progressIn = in
	return f.progressRes, f.err
}

func (f *fakeGoalTracker) Pause(_ context.Context, ref domainagg.GoalRef) (domainagg.GoalResult, error) {
	f.pausedRef = ref
	return domainagg.GoalResult{Goal: goals.Goal{ID: ref.GoalID, Status: goals.StatusPaused}}, f.err
}

type recordingNotifier struct {
	outcomes []Outcome
}

func (r *recordingNotifier) Committed(_ context.Context, out Outcome) {
	r.outcomes = append(r.outcomes, out)
}

func (r *recordingNotifier) Notifications(_ context.Context, ns []notifications.Notification) {
	r.outcomes = append(r.outcomes, Outcome{Notifications: ns})
}

func authedCtx(userID uuid.UUID, role string) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: userID, Role: role})
}

func TestGoalServiceUpdateProgressPublishesCompletion(t *testing.T) {
	userID, goalID := uuid.New(), uuid.New()
	tracker := &fakeGoalTracker{progressRes: domainagg.GoalResult{
		Goal:            goals.Goal{ID: goalID, Status: goals.StatusCompleted},
		Completed:       true,
		NewAchievements: []achievements.Achievement{{Name: "Goal Getter"}},
	}}
	rec := &recordingNotifier{}
	svc := NewGoalService(logger.Nop(), nil, tracker, rec)

	res, err := svc.UpdateProgress(authedCtx(userID, "user"), goalID, 10)
	if err != nil {
		t.Fatalf("UpdateProgress: %v", err)
	}
	if !res.Completed {
		t.Fatalf("completed: want=true got=false")
	}
	if tracker.progressIn.UserID != userID || tracker.progressIn.GoalID != goalID || tracker.progressIn.CurrentValue != 10 {
		t.Fatalf("tracker input: got %+v", tracker.progressIn)
	}
	if len(rec.outcomes) != 1 {
		t.Fatalf("outcomes: want=1 got=%d", len(rec.outcomes))
	}
	out := rec.outcomes[0]
	if out.UserID != userID || len(out.CompletedGoals) != 1 || len(out.NewAchievements) != 1 {
		t.Fatalf("outcome: got %+v", out)
	}
}

func TestGoalServiceTransitionErrorSkipsNotifier(t *testing.T) {
	boom := domainagg.NewError(domainagg.CodeInvalidStateTransition, "goal.pause", "goal is completed", nil)
	tracker := &fakeGoalTracker{err: boom}
	rec := &recordingNotifier{}
	svc := NewGoalService(logger.Nop(), nil, tracker, rec)

	goalID := uuid.New()
	_, err := svc.Pause(authedCtx(uuid.New(), "user"), goalID)
	if !errors.Is(err, boom) {
		t.Fatalf("Pause error: want=%v got=%v", boom, err)
	}
	if tracker.pausedRef.GoalID != goalID {
		t.Fatalf("paused goal: want=%s got=%s", goalID, tracker.pausedRef.GoalID)
	}
	if len(rec.outcomes) != 0 {
		t.Fatalf("outcomes: want=0 got=%d", len(rec.outcomes))
	}
}

func TestGoalServiceRequiresCaller(t *testing.T) {
	svc := NewGoalService(logger.Nop(), nil, &fakeGoalTracker{}, nil)
	if _, err := svc.Pause(context.Background(), uuid.New()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Pause without caller: want=%v got=%v", ErrUnauthorized, err)
	}
	if _, err := svc.List(context.Background(), repos.GoalFilter{}); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("List without caller: want=%v got=%v", ErrUnauthorized, err)
	}
}

func TestComputeGoalStatistics(t *testing.T) {
	all := []*types.Goal{
		{GoalType: goals.TypeReduceDaily, Status: goals.StatusActive, TargetValue: 10, CurrentValue: 5},
		{GoalType: goals.TypeReduceDaily, Status: goals.StatusActive, TargetValue: 4, CurrentValue: 1},
		{GoalType: goals.TypeMoneySaved, Status: goals.StatusCompleted, TargetValue: 100, CurrentValue: 100},
		{GoalType: goals.TypeSmokeFreeDays, Status: goals.StatusFailed, TargetValue: 7},
	}
	st := computeGoalStatistics(all)
	if st.TotalGoals != 4 || st.ActiveGoals != 2 || st.CompletedGoals != 1 || st.FailedGoals != 1 {
		t.Fatalf("counts: got %+v", st)
	}
	if st.CompletionRate != 25 {
		t.Fatalf("completion_rate: want=25 got=%v", st.CompletionRate)
	}
	if st.AverageActiveProgress != 37.5 {
		t.Fatalf("average_active_progress: want=37.5 got=%v", st.AverageActiveProgress)
	}
	if st.GoalsByType[goals.TypeHealthMilestone] != 0 || st.GoalsByType[goals.TypeReduceDaily] != 2 {
		t.Fatalf("goals_by_type: got %v", st.GoalsByType)
	}
	if _, ok := st.GoalsByType[goals.TypeHealthMilestone]; !ok {
		t.Fatalf("goals_by_type must list every type")
	}
}

type sweepTracker struct {
	domainagg.GoalTracker
	res domainagg.SweepResult
	err error
}

func (s *sweepTracker) SweepDue(context.Context, time.Time) (domainagg.SweepResult, error) {
	return s.res, s.err
}

func TestGoalSweeperRunOncePushesPartialResults(t *testing.T) {
	userID := uuid.New()
	tracker := &sweepTracker{
		res: domainagg.SweepResult{
			Due:           2,
			Notified:      1,
			Failed:        1,
			Notifications: []notifications.Notification{{UserID: userID, Type: notifications.TypeGoalReminder}},
		},
		err: errors.New("user lock timeout"),
	}
	rec := &recordingNotifier{}
	sweeper := NewGoalSweeper(logger.Nop(), tracker, rec, nil)

	res, err := sweeper.RunOnce(context.Background())
	if err == nil {
		t.Fatalf("RunOnce: want joined error")
	}
	if res.Notified != 1 {
		t.Fatalf("notified: want=1 got=%d", res.Notified)
	}
	if len(rec.outcomes) != 1 || len(rec.outcomes[0].Notifications) != 1 {
		t.Fatalf("reminders pushed despite partial failure: got %+v", rec.outcomes)
	}
}
