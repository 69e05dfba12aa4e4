package user

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/quitbridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/quitbridge-backend/internal/domain"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	created, err := repo.Create(dbc, []*types.User{{Email: "Mixed@Example.com", Username: "mixed", Password: "pw"}})
	require.NoError(t, err)
	require.Len(t, created, 1)
	require.Equal(t, "user", created[0].Role)
	require.Equal(t, "mixed@example.com", created[0].Email)

	got, err := repo.GetByEmail(dbc, "MIXED@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, created[0].ID, got.ID)

	exists, err := repo.UsernameExists(dbc, "mixed")
	require.NoError(t, err)
	require.True(t, exists)

	at := time.Now().UTC()
	require.NoError(t, repo.TouchLastLogin(dbc, got.ID, at))
	reloaded, err := repo.GetByID(dbc, got.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.LastLoginAt)
}

func TestUserRepoLockByID(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	missing, err := repo.LockByID(dbc, uuid.New())
	require.NoError(t, err)
	require.Nil(t, missing)

	u := testutil.SeedUser(t, ctx, tx, "locked@example.com")
	locked, err := repo.LockByID(dbc, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.ID, locked.ID)

	_, err = repo.LockByID(dbctx.Context{Ctx: ctx}, u.ID)
	require.Error(t, err)
}

func TestUserRepoDeleteAccount(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewUserRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	gone := testutil.SeedUser(t, ctx, tx, "gone@example.com")
	kept := testutil.SeedUser(t, ctx, tx, "kept@example.com")
	day := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []uuid.UUID{gone.ID, kept.ID} {
		testutil.SeedProfile(t, ctx, tx, id, 10)
		testutil.SeedRecord(t, ctx, tx, id, day, 2, 10)
		testutil.SeedGoal(t, ctx, tx, id, "reduce_daily", 5, "active")
	}

	require.NoError(t, repo.DeleteAccount(dbc, gone.ID))

	got, err := repo.GetByID(dbc, gone.ID)
	require.NoError(t, err)
	require.Nil(t, got)
	var n int64
	require.NoError(t, tx.Unscoped().Model(&types.User{}).Where("id = ?", gone.ID).Count(&n).Error)
	require.Zero(t, n)
	for _, m := range []interface{}{&types.UserProfile{}, &types.SmokingRecord{}, &types.Goal{}} {
		require.NoError(t, tx.Model(m).Where("user_id = ?", gone.ID).Count(&n).Error)
		require.Zero(t, n)
		require.NoError(t, tx.Model(m).Where("user_id = ?", kept.ID).Count(&n).Error)
		require.EqualValues(t, 1, n)
	}

	exists, err := repo.EmailExists(dbc, "gone@example.com")
	require.NoError(t, err)
	require.False(t, exists)

	require.Error(t, repo.DeleteAccount(dbctx.Context{Ctx: ctx}, kept.ID))
}

func TestUserProfileRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	repo := NewUserProfileRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	u := testutil.SeedUser(t, ctx, tx, "profile@example.com")

	missing, err := repo.LockByUserID(dbc, u.ID)
	require.NoError(t, err)
	require.Nil(t, missing)

	p := testutil.SeedProfile(t, ctx, tx, u.ID, 20)
	locked, err := repo.LockByUserID(dbc, u.ID)
	require.NoError(t, err)
	require.Equal(t, p.ID, locked.ID)
	require.Equal(t, 20, locked.CigarettesPerDay)

	require.NoError(t, repo.UpdateFields(dbc, p.ID, map[string]interface{}{
		"current_streak_days":      2,
		"longest_streak_days":      2,
		"total_cigarettes_avoided": 40,
		"total_money_saved":        1000.0,
	}))
	got, err := repo.GetByUserID(dbc, u.ID)
	require.NoError(t, err)
	require.Equal(t, 2, got.LongestStreakDays)
	require.InDelta(t, 1000.0, got.TotalMoneySaved, 0.001)

	_, err = repo.LockByUserID(dbctx.Context{Ctx: ctx}, u.ID)
	require.Error(t, err)
}
