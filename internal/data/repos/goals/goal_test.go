package goals

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/quitbridge-backend/internal/data/repos/testutil"
	domaingoals "github.com/yungbote/quitbridge-backend/internal/domain/goals"
	"github.com/yungbote/quitbridge-backend/internal/domain/tracking"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
)

func TestGoalRepo_Filters(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewGoalRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	u := testutil.SeedUser(t, ctx, tx, "goals@example.com")
	testutil.SeedGoal(t, ctx, tx, u.ID, domaingoals.TypeSmokeFreeDays, 7, domaingoals.StatusActive)
	testutil.SeedGoal(t, ctx, tx, u.ID, domaingoals.TypeMoneySaved, 500, domaingoals.StatusActive)
	testutil.SeedGoal(t, ctx, tx, u.ID, domaingoals.TypeReduceDaily, 5, domaingoals.StatusCompleted)
	testutil.SeedGoal(t, ctx, tx, u.ID, domaingoals.TypeSmokeFreeDays, 30, domaingoals.StatusPaused)

	all, err := repo.ListByUser(dbc, u.ID, GoalFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)

	active, err := repo.ListByUser(dbc, u.ID, GoalFilter{Status: domaingoals.StatusActive})
	require.NoError(t, err)
	require.Len(t, active, 2)

	smokeFree, err := repo.ListByUser(dbc, u.ID, GoalFilter{GoalType: domaingoals.TypeSmokeFreeDays})
	require.NoError(t, err)
	require.Len(t, smokeFree, 2)

	synced, err := repo.ListActiveByTypes(dbc, u.ID, []string{domaingoals.TypeSmokeFreeDays, domaingoals.TypeMoneySaved})
	require.NoError(t, err)
	require.Len(t, synced, 2)

	completed, err := repo.CountCompleted(dbc, u.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, completed)
}

func TestGoalRepo_ListDueUnnotified(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewGoalRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	today := tracking.DayOf(time.Date(2031, 6, 1, 12, 0, 0, 0, time.UTC))
	tomorrow := today.AddDate(0, 0, 1)
	u := testutil.SeedUser(t, ctx, tx, "due@example.com")

	due := testutil.SeedGoal(t, ctx, tx, u.ID, domaingoals.TypeSmokeFreeDays, 7, domaingoals.StatusActive)
	notified := testutil.SeedGoal(t, ctx, tx, u.ID, domaingoals.TypeSmokeFreeDays, 7, domaingoals.StatusActive)
	later := testutil.SeedGoal(t, ctx, tx, u.ID, domaingoals.TypeSmokeFreeDays, 7, domaingoals.StatusActive)
	require.NoError(t, repo.UpdateFields(dbc, due.ID, map[string]interface{}{"target_date": today}))
	require.NoError(t, repo.UpdateFields(dbc, notified.ID, map[string]interface{}{"target_date": today, "notification_sent": true}))
	require.NoError(t, repo.UpdateFields(dbc, later.ID, map[string]interface{}{"target_date": tomorrow}))

	rows, err := repo.ListDueUnnotified(dbc, today)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, due.ID, rows[0].ID)
}

func TestGoalRepo_LockRequiresTx(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewGoalRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "lock@example.com")
	g := testutil.SeedGoal(t, ctx, tx, u.ID, domaingoals.TypeReduceDaily, 3, "")

	got, err := repo.LockByID(dbctx.Context{Ctx: ctx, Tx: tx}, u.ID, g.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, domaingoals.StatusActive, got.Status)

	_, err = repo.LockByID(dbctx.Context{Ctx: ctx}, u.ID, g.ID)
	require.Error(t, err)
}
