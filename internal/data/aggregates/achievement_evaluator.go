package aggregates

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/quitbridge-backend/internal/data/repos"
	types "github.com/yungbote/quitbridge-backend/internal/domain"
	domainagg "github.com/yungbote/quitbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/domain/notifications"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
)

const (
	achievementNotificationTitle  = "New Achievement!"
	achievementNotificationFormat = "Congratulations! You earned: %s"
)

type AchievementEvaluatorDeps struct {
	Base  BaseDeps
	Repos repos.Set
}

type achievementEvaluator struct {
	deps     AchievementEvaluatorDeps
	unlocker achievementUnlocker
}

func NewAchievementEvaluator(deps AchievementEvaluatorDeps) domainagg.AchievementEvaluator {
	deps.Base = deps.Base.withDefaults()
	return &achievementEvaluator{deps: deps, unlocker: newAchievementUnlocker(deps.Repos)}
}

func (a *achievementEvaluator) Contract() domainagg.Contract {
	return domainagg.AchievementEvaluatorContract
}

func (a *achievementEvaluator) Evaluate(ctx context.Context, userID uuid.UUID) (domainagg.EvaluationResult, error) {
	const op = "aggregate.achievement_evaluator.evaluate"
	var out domainagg.EvaluationResult
	if userID == uuid.Nil {
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	err := executeWrite(ctx, a.deps.Base, op, func(dbc dbctx.Context) error {
		u, err := a.deps.Repos.Users.LockByID(dbc, userID)
		if err != nil {
			return err
		}
		if u == nil {
			return NotFoundError("user not found")
		}
		res, err := a.unlocker.evaluate(dbc, userID)
		if err != nil {
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return domainagg.EvaluationResult{}, err
	}
	return out, nil
}

// achievementUnlocker runs the evaluation pass inside an existing transaction.
// Callers must already hold the user's row lock.
type achievementUnlocker struct {
	repos   repos.Set
	emitter *NotificationEmitter
}

func newAchievementUnlocker(r repos.Set) achievementUnlocker {
	return achievementUnlocker{repos: r, emitter: NewNotificationEmitter(r.Notifications)}
}

func (u achievementUnlocker) metrics(dbc dbctx.Context, userID uuid.UUID) (domainagg.AchievementMetrics, error) {
	return ReadAchievementMetrics(dbc, u.repos, userID)
}

// ReadAchievementMetrics reads the values achievement thresholds are tested
// against. Inside a write it must run under the user's row lock.
func ReadAchievementMetrics(dbc dbctx.Context, r repos.Set, userID uuid.UUID) (domainagg.AchievementMetrics, error) {
	var m domainagg.AchievementMetrics
	profile, err := r.Profiles.GetByUserID(dbc, userID)
	if err != nil {
		return m, err
	}
	if profile != nil {
		m.LongestStreakDays = profile.LongestStreakDays
		m.MoneySaved = profile.TotalMoneySaved
	}
	if m.GoalsCompleted, err = r.Goals.CountCompleted(dbc, userID); err != nil {
		return m, err
	}
	if m.ContentCompleted, err = r.ContentProgress.CountCompleted(dbc, userID); err != nil {
		return m, err
	}
	if m.TotalRecords, err = r.Records.CountByUser(dbc, userID); err != nil {
		return m, err
	}
	return m, nil
}

func (u achievementUnlocker) evaluate(dbc dbctx.Context, userID uuid.UUID) (domainagg.EvaluationResult, error) {
	out := domainagg.EvaluationResult{UserID: userID}
	m, err := u.metrics(dbc, userID)
	if err != nil {
		return out, err
	}
	out.Metrics = m

	unearned, err := u.repos.Achievements.ListUnearnedByUser(dbc, userID)
	if err != nil {
		return out, err
	}
	for _, ach := range unearned {
		if ach == nil || !m.Meets(*ach) {
			continue
		}
		if _, err := u.repos.UserAchievements.Create(dbc, &types.UserAchievement{
			UserID:        userID,
			AchievementID: ach.ID,
		}); err != nil {
			return out, err
		}
		n, err := u.emitter.EmitWithData(dbc, userID,
			notifications.TypeAchievementEarned,
			achievementNotificationTitle,
			fmt.Sprintf(achievementNotificationFormat, ach.Name),
			map[string]any{"achievement_id": ach.ID.String(), "points": ach.Points},
		)
		if err != nil {
			return out, err
		}
		out.Unlocked = append(out.Unlocked, *ach)
		out.Notifications = append(out.Notifications, n)
	}
	return out, nil
}
