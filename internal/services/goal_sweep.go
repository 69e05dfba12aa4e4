package services

import (
	"context"
	"time"

	domainagg "github.com/yungbote/quitbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/observability"
	"github.com/yungbote/quitbridge-backend/internal/platform/logger"
)

// GoalSweeper runs the deadline reminder sweep and pushes what it sent.
type GoalSweeper struct {
	log      *logger.Logger
	tracker  domainagg.GoalTracker
	notifier Notifier
	metrics  *observability.Metrics
	now      func() time.Time
}

func NewGoalSweeper(log *logger.Logger, tracker domainagg.GoalTracker, notifier Notifier, metrics *observability.Metrics) *GoalSweeper {
	return &GoalSweeper{
		log:      log.With("service", "GoalSweeper"),
		tracker:  tracker,
		notifier: notifierOrNop(notifier),
		metrics:  metrics,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// RunOnce sweeps goals due today. Partial failures still push the reminders
// that committed.
func (s *GoalSweeper) RunOnce(ctx context.Context) (domainagg.SweepResult, error) {
	start := time.Now()
	res, err := s.tracker.SweepDue(ctx, s.now())
	s.notifier.Notifications(ctx, res.Notifications)

	status := "success"
	if err != nil {
		status = "partial"
		if res.Notified == 0 {
			status = "failure"
		}
		s.log.Warn("goal sweep finished with errors", "day", res.Day, "due", res.Due, "notified", res.Notified, "failed", res.Failed, "error", err)
	} else if res.Due > 0 {
		s.log.Info("goal sweep finished", "day", res.Day, "due", res.Due, "notified", res.Notified)
	}
	s.metrics.ObserveGoalSweep(status, res.Notified, time.Since(start))
	return res, err
}

// Run sweeps immediately and then on every tick until ctx is done.
func (s *GoalSweeper) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Hour
	}
	_, _ = s.RunOnce(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			_, _ = s.RunOnce(ctx)
		}
	}
}
