package seed

import (
	"context"

	"github.com/yungbote/quitbridge-backend/internal/data/repos"
	types "github.com/yungbote/quitbridge-backend/internal/domain"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/quitbridge-backend/internal/platform/logger"
)

type Result struct {
	Created int
	Skipped int
}

// Achievements inserts every catalog entry whose name is not yet present.
// Existing rows are left untouched, so re-running is a no-op.
func Achievements(ctx context.Context, log *logger.Logger, repo repos.AchievementRepo, catalog []types.Achievement) (Result, error) {
	var res Result
	dbc := dbctx.Context{Ctx: ctx}
	for i := range catalog {
		a := catalog[i]
		existing, err := repo.GetByName(dbc, a.Name)
		if err != nil {
			return res, err
		}
		if existing != nil {
			res.Skipped++
			continue
		}
		if _, err := repo.Create(dbc, &a); err != nil {
			return res, err
		}
		res.Created++
	}
	if log != nil {
		log.Info("achievement catalog seeded", "created", res.Created, "skipped", res.Skipped)
	}
	return res, nil
}
