package aggregates

import (
	"testing"

	"github.com/google/uuid"

	repotest "github.com/yungbote/quitbridge-backend/internal/data/repos/testutil"
	domainagg "github.com/yungbote/quitbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/domain/achievements"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
)

func TestContentProgressFirstCompletionEvaluatesAchievements(t *testing.T) {
	f := newFixture(t)
	u := repotest.SeedUser(t, f.ctx, f.tx, "content-complete@example.com")
	item := repotest.SeedContent(t, f.ctx, f.tx, "Why cravings pass", "cravings", true)
	reader := repotest.SeedAchievement(t, f.ctx, f.tx, "content-test reader", achievements.CriteriaContentCompleted, 1, 20)
	agg := NewContentProgress(ContentProgressDeps{Base: f.base, Repos: f.repos, Now: f.clock()})

	half := 50
	res, err := agg.RecordProgress(f.ctx, domainagg.RecordContentProgressInput{UserID: u.ID, ContentID: item.ID, ProgressPercentage: &half})
	if err != nil {
		t.Fatalf("RecordProgress half: %v", err)
	}
	if res.NewlyCompleted || res.Progress.Completed || res.Progress.ProgressPercentage != 50 {
		t.Fatalf("half progress: %+v", res)
	}

	full := 100
	res, err = agg.RecordProgress(f.ctx, domainagg.RecordContentProgressInput{UserID: u.ID, ContentID: item.ID, ProgressPercentage: &full})
	if err != nil {
		t.Fatalf("RecordProgress full: %v", err)
	}
	if !res.NewlyCompleted || !res.Progress.Completed {
		t.Fatalf("full progress: %+v", res.Progress)
	}
	if len(res.NewAchievements) != 1 || res.NewAchievements[0].ID != reader.ID {
		t.Fatalf("achievements: %+v", res.NewAchievements)
	}

	done := true
	res, err = agg.RecordProgress(f.ctx, domainagg.RecordContentProgressInput{UserID: u.ID, ContentID: item.ID, Completed: &done})
	if err != nil {
		t.Fatalf("RecordProgress repeat: %v", err)
	}
	if res.NewlyCompleted || len(res.NewAchievements) != 0 {
		t.Fatalf("repeat completion: %+v", res)
	}
	completed, err := f.repos.ContentProgress.CountCompleted(dbctx.Context{Ctx: f.ctx}, u.ID)
	if err != nil || completed != 1 {
		t.Fatalf("completed count: want=1 got=%d err=%v", completed, err)
	}
}

func TestContentProgressRejectsUnpublishedAndOutOfRange(t *testing.T) {
	f := newFixture(t)
	u := repotest.SeedUser(t, f.ctx, f.tx, "content-reject@example.com")
	draft := repotest.SeedContent(t, f.ctx, f.tx, "Draft", "health", false)
	agg := NewContentProgress(ContentProgressDeps{Base: f.base, Repos: f.repos, Now: f.clock()})

	if _, err := agg.RecordProgress(f.ctx, domainagg.RecordContentProgressInput{UserID: u.ID, ContentID: draft.ID}); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("unpublished: want not_found got=%v", err)
	}
	tooMuch := 101
	if _, err := agg.RecordProgress(f.ctx, domainagg.RecordContentProgressInput{UserID: u.ID, ContentID: uuid.New(), ProgressPercentage: &tooMuch}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("out of range: want validation got=%v", err)
	}
}
