package aggregates

import (
	"context"

	"github.com/google/uuid"
	"github.com/yungbote/quitbridge-backend/internal/domain/achievements"
	"github.com/yungbote/quitbridge-backend/internal/domain/notifications"
)

var AchievementEvaluatorContract = Contract{
	Name:             "Achievements.Evaluator",
	WriteTxOwnership: WriteTxOwnedByAggregate,
	ReadPolicy:       ReadPolicyInvariantScoped,
	Notes:            "Unlocks every unearned achievement whose threshold is met by freshly read metrics; append-only.",
}

// AchievementEvaluator owns user_achievement inserts.
type AchievementEvaluator interface {
	Aggregate

	// Evaluate unlocks all qualifying achievements in one pass. Re-running with
	// unchanged metrics unlocks nothing.
	Evaluate(ctx context.Context, userID uuid.UUID) (EvaluationResult, error)
}

type EvaluationResult struct {
	UserID        uuid.UUID
	Metrics       AchievementMetrics
	Unlocked      []achievements.Achievement
	Notifications []notifications.Notification
}

// AchievementMetrics are the values achievement thresholds are tested against.
type AchievementMetrics struct {
	LongestStreakDays int
	MoneySaved        float64
	GoalsCompleted    int64
	ContentCompleted  int64
	TotalRecords      int64
}

// AchievementCriteria maps a criteria type to the metric it reads.
var AchievementCriteria = map[string]func(AchievementMetrics) float64{
	achievements.CriteriaDaysSmokeFree:    func(m AchievementMetrics) float64 { return float64(m.LongestStreakDays) },
	achievements.CriteriaMoneySaved:       func(m AchievementMetrics) float64 { return m.MoneySaved },
	achievements.CriteriaGoalsCompleted:   func(m AchievementMetrics) float64 { return float64(m.GoalsCompleted) },
	achievements.CriteriaContentCompleted: func(m AchievementMetrics) float64 { return float64(m.ContentCompleted) },
	achievements.CriteriaTotalRecords:     func(m AchievementMetrics) float64 { return float64(m.TotalRecords) },
}

// Value returns the metric for criteriaType; ok is false for unknown types.
func (m AchievementMetrics) Value(criteriaType string) (float64, bool) {
	fn, ok := AchievementCriteria[criteriaType]
	if !ok {
		return 0, false
	}
	return fn(m), true
}

// Meets reports whether the metrics reach a's threshold.
func (m AchievementMetrics) Meets(a achievements.Achievement) bool {
	v, ok := m.Value(a.CriteriaType)
	return ok && v >= float64(a.CriteriaValue)
}
