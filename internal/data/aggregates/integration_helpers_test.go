package aggregates

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/quitbridge-backend/internal/data/repos"
	repotest "github.com/yungbote/quitbridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/quitbridge-backend/internal/domain"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
)

var errForcedRollback = errors.New("forced rollback")

// rollbackAfterBodyRunner runs the body in a savepoint and then fails so the
// savepoint is rolled back.
type rollbackAfterBodyRunner struct {
	db *gorm.DB
}

func (r rollbackAfterBodyRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := fn(dbctx.Context{Ctx: ctx, Tx: tx}); err != nil {
			return err
		}
		return errForcedRollback
	})
}

type fixture struct {
	ctx   context.Context
	tx    *gorm.DB
	repos repos.Set
	base  BaseDeps
	now   time.Time
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := repotest.DB(t)
	tx := repotest.Tx(t, db)
	log := repotest.Logger(t)
	return fixture{
		ctx:   context.Background(),
		tx:    tx,
		repos: repos.NewSet(tx, log),
		base: BaseDeps{
			DB:       tx,
			Log:      log,
			Runner:   NewGormTxRunner(tx),
			CASGuard: NewCASGuard(tx),
		},
		now: time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC),
	}
}

func (f fixture) clock() func() time.Time { return func() time.Time { return f.now } }

func (f fixture) ledger() *progressLedger {
	return NewProgressLedger(ProgressLedgerDeps{Base: f.base, Repos: f.repos, Now: f.clock()}).(*progressLedger)
}

func (f fixture) tracker() *goalTracker {
	return NewGoalTracker(GoalTrackerDeps{Base: f.base, Repos: f.repos, Now: f.clock(), SweepConcurrency: 1}).(*goalTracker)
}

func (f fixture) countNotifications(t *testing.T, userID any, notifType string) int64 {
	t.Helper()
	var n int64
	q := f.tx.WithContext(f.ctx).Model(&types.Notification{}).Where("user_id = ?", userID)
	if notifType != "" {
		q = q.Where("type = ?", notifType)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count notifications: %v", err)
	}
	return n
}

func intPtr(v int) *int { return &v }
