package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/quitbridge-backend/internal/data/repos"
	repotest "github.com/yungbote/quitbridge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/quitbridge-backend/internal/domain"
	domainagg "github.com/yungbote/quitbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/domain/user"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
)

func contentIDs(rows []*types.EducationalContent) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func TestContentServiceReads(t *testing.T) {
	ctx := context.Background()
	db := repotest.FreshDB(t)
	log := repotest.Logger(t)
	r := repos.NewSet(db, log)
	svc := NewContentService(db, log, r, nil, nil)

	lungs := repotest.SeedContent(t, ctx, db, "Lungs heal fast", "health", true)
	money := repotest.SeedContent(t, ctx, db, "Money you keep", "finance", true)
	repotest.SeedContent(t, ctx, db, "Lungs draft", "health", false)
	cravings := repotest.SeedContent(t, ctx, db, "Riding out cravings", "coping", true)
	percent := repotest.SeedContent(t, ctx, db, "Save 50% more", "finance", true)

	u := repotest.SeedUser(t, ctx, db, "reader@example.com")
	dbc := dbctx.New(ctx)
	for _, p := range []*types.UserContentProgress{
		{UserID: u.ID, ContentID: lungs.ID, ProgressPercentage: 100, Completed: true},
		{UserID: u.ID, ContentID: money.ID, ProgressPercentage: 40},
		{UserID: u.ID, ContentID: cravings.ID, ProgressPercentage: 60},
	} {
		_, err := r.ContentProgress.Create(dbc, p)
		require.NoError(t, err)
	}
	reader := authedCtx(u.ID, user.RoleUser)

	stats, err := svc.Statistics(reader)
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.TotalAvailable)
	assert.EqualValues(t, 3, stats.AccessedCount)
	assert.EqualValues(t, 1, stats.CompletedCount)
	assert.EqualValues(t, 2, stats.InProgress)
	assert.InDelta(t, 33.3, stats.CompletionRate, 0.001)
	assert.InDelta(t, 50.0, stats.AvgProgressUncompleted, 0.001)
	assert.Equal(t, map[string]int64{"health": 1}, stats.CompletedByCategory)

	recommended, err := svc.Recommended(reader)
	require.NoError(t, err)
	require.Len(t, recommended, 3)
	assert.Equal(t, cravings.ID, recommended[0].ID, "categories sort ascending")
	assert.ElementsMatch(t, []uuid.UUID{cravings.ID, money.ID, percent.ID}, contentIDs(recommended))

	found, err := svc.Search(ctx, "LUNGS")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{lungs.ID}, contentIDs(found), "unpublished rows are hidden")

	found, err = svc.Search(ctx, "%")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{percent.ID}, contentIDs(found), "wildcards match literally")

	_, err = svc.Search(ctx, "  ")
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation), "got %v", err)

	_, err = svc.Statistics(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestContentServiceAdminUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	db := repotest.FreshDB(t)
	log := repotest.Logger(t)
	r := repos.NewSet(db, log)
	svc := NewContentService(db, log, r, nil, nil)

	draft := repotest.SeedContent(t, ctx, db, "Draft", "health", false)
	u := repotest.SeedUser(t, ctx, db, "admin-content@example.com")
	_, err := r.ContentProgress.Create(dbctx.New(ctx), &types.UserContentProgress{UserID: u.ID, ContentID: draft.ID, ProgressPercentage: 10})
	require.NoError(t, err)

	title, published := "  Published now ", true
	_, err = svc.Update(authedCtx(u.ID, user.RoleUser), draft.ID, UpdateContentInput{Title: &title})
	assert.ErrorIs(t, err, ErrForbidden)

	admin := authedCtx(uuid.New(), user.RoleAdmin)
	updated, err := svc.Update(admin, draft.ID, UpdateContentInput{Title: &title, IsPublished: &published})
	require.NoError(t, err)
	assert.Equal(t, "Published now", updated.Title)
	assert.True(t, updated.IsPublished)
	assert.Equal(t, "health", updated.Category)

	visible, err := svc.Get(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, visible.ID)

	blank := " "
	_, err = svc.Update(admin, draft.ID, UpdateContentInput{Title: &blank})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeValidation), "got %v", err)
	_, err = svc.Update(admin, uuid.New(), UpdateContentInput{Title: &title})
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound), "got %v", err)

	assert.ErrorIs(t, svc.Delete(authedCtx(u.ID, user.RoleUser), draft.ID), ErrForbidden)
	require.NoError(t, svc.Delete(admin, draft.ID))
	_, err = svc.Get(ctx, draft.ID)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound), "got %v", err)
	progress, err := r.ContentProgress.ListByUser(dbctx.New(ctx), u.ID)
	require.NoError(t, err)
	assert.Empty(t, progress)

	err = svc.Delete(admin, draft.ID)
	assert.True(t, domainagg.IsCode(err, domainagg.CodeNotFound), "got %v", err)
}
