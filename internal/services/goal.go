package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/quitbridge-backend/internal/data/repos"
	types "github.com/yungbote/quitbridge-backend/internal/domain"
	domainagg "github.com/yungbote/quitbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/domain/goals"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/quitbridge-backend/internal/platform/logger"
)

type GoalStatistics struct {
	TotalGoals            int            `json:"total_goals"`
	ActiveGoals           int            `json:"active_goals"`
	CompletedGoals        int            `json:"completed_goals"`
	FailedGoals           int            `json:"failed_goals"`
	PausedGoals           int            `json:"paused_goals"`
	CompletionRate        float64        `json:"completion_rate"`
	AverageActiveProgress float64        `json:"average_active_progress"`
	GoalsByType           map[string]int `json:"goals_by_type"`
}

type GoalService interface {
	Create(ctx context.Context, in domainagg.CreateGoalInput) (*types.Goal, error)
	Update(ctx context.Context, in domainagg.UpdateGoalInput) (domainagg.GoalResult, error)
	UpdateProgress(ctx context.Context, goalID uuid.UUID, currentValue int) (domainagg.GoalResult, error)
	Complete(ctx context.Context, goalID uuid.UUID) (domainagg.GoalResult, error)
	Pause(ctx context.Context, goalID uuid.UUID) (domainagg.GoalResult, error)
	Resume(ctx context.Context, goalID uuid.UUID) (domainagg.GoalResult, error)
	Fail(ctx context.Context, goalID uuid.UUID) (domainagg.GoalResult, error)
	Delete(ctx context.Context, goalID uuid.UUID) error
	MarkNotified(ctx context.Context, goalID uuid.UUID) (domainagg.GoalResult, error)

	List(ctx context.Context, f repos.GoalFilter) ([]*types.Goal, error)
	Get(ctx context.Context, goalID uuid.UUID) (*types.Goal, error)
	Statistics(ctx context.Context) (GoalStatistics, error)
}

type goalService struct {
	log      *logger.Logger
	goals    repos.GoalRepo
	tracker  domainagg.GoalTracker
	notifier Notifier
}

func NewGoalService(log *logger.Logger, goalRepo repos.GoalRepo, tracker domainagg.GoalTracker, notifier Notifier) GoalService {
	return &goalService{
		log:      log.With("service", "GoalService"),
		goals:    goalRepo,
		tracker:  tracker,
		notifier: notifierOrNop(notifier),
	}
}

func (s *goalService) Create(ctx context.Context, in domainagg.CreateGoalInput) (*types.Goal, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	in.UserID = userID
	g, err := s.tracker.CreateGoal(ctx, in)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *goalService) Update(ctx context.Context, in domainagg.UpdateGoalInput) (domainagg.GoalResult, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return domainagg.GoalResult{}, err
	}
	in.UserID = userID
	return s.committed(ctx, userID)(s.tracker.UpdateGoal(ctx, in))
}

func (s *goalService) UpdateProgress(ctx context.Context, goalID uuid.UUID, currentValue int) (domainagg.GoalResult, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return domainagg.GoalResult{}, err
	}
	in := domainagg.UpdateProgressInput{GoalRef: domainagg.GoalRef{UserID: userID, GoalID: goalID}, CurrentValue: currentValue}
	return s.committed(ctx, userID)(s.tracker.UpdateProgress(ctx, in))
}

func (s *goalService) Complete(ctx context.Context, goalID uuid.UUID) (domainagg.GoalResult, error) {
	return s.transition(ctx, goalID, s.tracker.Complete)
}

func (s *goalService) Pause(ctx context.Context, goalID uuid.UUID) (domainagg.GoalResult, error) {
	return s.transition(ctx, goalID, s.tracker.Pause)
}

func (s *goalService) Resume(ctx context.Context, goalID uuid.UUID) (domainagg.GoalResult, error) {
	return s.transition(ctx, goalID, s.tracker.Resume)
}

func (s *goalService) Fail(ctx context.Context, goalID uuid.UUID) (domainagg.GoalResult, error) {
	return s.transition(ctx, goalID, s.tracker.Fail)
}

func (s *goalService) MarkNotified(ctx context.Context, goalID uuid.UUID) (domainagg.GoalResult, error) {
	return s.transition(ctx, goalID, s.tracker.MarkNotified)
}

func (s *goalService) Delete(ctx context.Context, goalID uuid.UUID) error {
	userID, err := requestUser(ctx)
	if err != nil {
		return err
	}
	return s.tracker.Delete(ctx, domainagg.GoalRef{UserID: userID, GoalID: goalID})
}

func (s *goalService) transition(ctx context.Context, goalID uuid.UUID, fn func(context.Context, domainagg.GoalRef) (domainagg.GoalResult, error)) (domainagg.GoalResult, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return domainagg.GoalResult{}, err
	}
	return s.committed(ctx, userID)(fn(ctx, domainagg.GoalRef{UserID: userID, GoalID: goalID}))
}

// committed forwards a successful tracker result to the notifier.
func (s *goalService) committed(ctx context.Context, userID uuid.UUID) func(domainagg.GoalResult, error) (domainagg.GoalResult, error) {
	return func(res domainagg.GoalResult, err error) (domainagg.GoalResult, error) {
		if err != nil {
			return res, err
		}
		out := Outcome{
			UserID:          userID,
			NewAchievements: res.NewAchievements,
			Notifications:   res.Notifications,
		}
		if res.Completed {
			out.CompletedGoals = []goals.Goal{res.Goal}
		}
		s.notifier.Committed(ctx, out)
		return res, nil
	}
}

func (s *goalService) List(ctx context.Context, f repos.GoalFilter) ([]*types.Goal, error) {
	const op = "goals.list"
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	f.Status = strings.TrimSpace(f.Status)
	f.GoalType = strings.TrimSpace(f.GoalType)
	if f.Status != "" && !goals.IsStatus(f.Status) {
		return nil, validationErr(op, "status must be one of "+strings.Join(goals.Statuses, ", "))
	}
	if f.GoalType != "" && !goals.IsType(f.GoalType) {
		return nil, validationErr(op, "goal_type must be one of "+strings.Join(goals.Types, ", "))
	}
	out, err := s.goals.ListByUser(dbctx.New(ctx), userID, f)
	if err != nil {
		return nil, internalErr(op, err)
	}
	return out, nil
}

func (s *goalService) Get(ctx context.Context, goalID uuid.UUID) (*types.Goal, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	g, err := s.goals.GetByID(dbctx.New(ctx), userID, goalID)
	if err != nil {
		return nil, internalErr("goals.get", err)
	}
	if g == nil {
		return nil, notFoundErr("goals.get", "goal not found")
	}
	return g, nil
}

func (s *goalService) Statistics(ctx context.Context) (GoalStatistics, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return GoalStatistics{}, err
	}
	all, err := s.goals.ListByUser(dbctx.New(ctx), userID, repos.GoalFilter{})
	if err != nil {
		return GoalStatistics{}, internalErr("goals.statistics", err)
	}
	return computeGoalStatistics(all), nil
}

func computeGoalStatistics(all []*types.Goal) GoalStatistics {
	st := GoalStatistics{GoalsByType: make(map[string]int, len(goals.Types))}
	for _, t := range goals.Types {
		st.GoalsByType[t] = 0
	}
	var activeProgress float64
	for _, g := range all {
		st.TotalGoals++
		st.GoalsByType[g.GoalType]++
		switch g.Status {
		case goals.StatusActive:
			st.ActiveGoals++
			activeProgress += g.ProgressPercentage()
		case goals.StatusCompleted:
			st.CompletedGoals++
		case goals.StatusFailed:
			st.FailedGoals++
		case goals.StatusPaused:
			st.PausedGoals++
		}
	}
	st.CompletionRate = percentOf(float64(st.CompletedGoals), float64(st.TotalGoals))
	if st.ActiveGoals > 0 {
		st.AverageActiveProgress = round(activeProgress/float64(st.ActiveGoals), 1)
	}
	return st
}
