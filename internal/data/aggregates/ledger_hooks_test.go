package aggregates_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/quitbridge-backend/internal/data/aggregates"
	aggtest "github.com/yungbote/quitbridge-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/quitbridge-backend/internal/data/repos"
	repotest "github.com/yungbote/quitbridge-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/quitbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
)

func TestProgressLedgerReportsHooksAndRollsBackFailedCommit(t *testing.T) {
	ctx := context.Background()
	tx := repotest.Tx(t, repotest.DB(t))
	log := repotest.Logger(t)
	r := repos.NewSet(tx, log)
	u := repotest.SeedUser(t, ctx, tx, "ledger-hooks@example.com")
	repotest.SeedProfile(t, ctx, tx, u.ID, 10)

	hooks := &aggtest.HooksRecorder{}
	runner := &aggtest.InjectedTxRunner{DB: tx}
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	ledger := aggregates.NewProgressLedger(aggregates.ProgressLedgerDeps{
		Base: aggregates.BaseDeps{
			DB:       tx,
			Log:      log,
			Runner:   runner,
			Hooks:    hooks,
			CASGuard: aggregates.NewCASGuard(tx),
		},
		Repos: r,
		Now:   func() time.Time { return now },
	})

	_, err := ledger.ApplyRecord(ctx, domainagg.ApplyRecordInput{UserID: u.ID, RecordDate: now, CigarettesSmoked: 4})
	require.NoError(t, err)

	runner.FailCommit = aggtest.ErrInjected
	_, err = ledger.ApplyRecord(ctx, domainagg.ApplyRecordInput{UserID: u.ID, RecordDate: now.AddDate(0, 0, 1)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, aggtest.ErrInjected))

	assert.Equal(t, 2, runner.BeginCalls)
	assert.Equal(t, 1, runner.CommitCalls)
	assert.Equal(t, 1, runner.RollbackCalls)

	statuses := hooks.StatusesFor("aggregate.progress_ledger.apply_record")
	require.Len(t, statuses, 2)
	assert.Equal(t, "success", statuses[0])
	assert.NotEqual(t, "success", statuses[1])
	assert.Empty(t, hooks.Conflicts)

	dbc := dbctx.Context{Ctx: ctx}
	count, err := r.Records.CountByUser(dbc, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
	p, err := r.Profiles.GetByUserID(dbc, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, p.TotalCigarettesAvoided)
}
