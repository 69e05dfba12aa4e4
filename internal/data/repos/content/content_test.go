package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/quitbridge-backend/internal/data/repos/query"
	"github.com/yungbote/quitbridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/quitbridge-backend/internal/domain"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
)

func TestContentRepos(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	log := testutil.Logger(t)
	contentRepo := NewContentRepo(db, log)
	progressRepo := NewContentProgressRepo(db, log)
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	health := testutil.SeedContent(t, ctx, tx, "lungs", "health-test", true)
	testutil.SeedContent(t, ctx, tx, "draft", "health-test", false)
	testutil.SeedContent(t, ctx, tx, "habits", "habits-test", true)

	rows, total, err := contentRepo.ListPublished(dbc, ContentFilter{Category: "health-test"}, query.Page{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, rows, 1)
	require.Equal(t, health.ID, rows[0].ID)

	u := testutil.SeedUser(t, ctx, tx, "content@example.com")
	p, err := progressRepo.Create(dbc, &types.UserContentProgress{UserID: u.ID, ContentID: health.ID, ProgressPercentage: 40})
	require.NoError(t, err)

	locked, err := progressRepo.LockByUserAndContent(dbc, u.ID, health.ID)
	require.NoError(t, err)
	require.Equal(t, p.ID, locked.ID)

	require.NoError(t, progressRepo.UpdateFields(dbc, p.ID, map[string]interface{}{"progress_percentage": 100, "completed": true}))
	done, err := progressRepo.CountCompleted(dbc, u.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, done)
}
