package aggregates

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/quitbridge-backend/internal/data/repos"
	types "github.com/yungbote/quitbridge-backend/internal/domain"
	domainagg "github.com/yungbote/quitbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
)

type ContentProgressDeps struct {
	Base  BaseDeps
	Repos repos.Set
	Now   func() time.Time
}

type contentProgress struct {
	deps     ContentProgressDeps
	unlocker achievementUnlocker
}

func NewContentProgress(deps ContentProgressDeps) domainagg.ContentProgressAggregate {
	deps.Base = deps.Base.withDefaults()
	if deps.Now == nil {
		deps.Now = func() time.Time { return time.Now().UTC() }
	}
	return &contentProgress{deps: deps, unlocker: newAchievementUnlocker(deps.Repos)}
}

func (c *contentProgress) Contract() domainagg.Contract {
	return domainagg.ContentProgressContract
}

// RecordProgress upserts the user's progress on one content item. Reaching
// 100% completes it; completion is sticky. The first completion re-runs the
// achievement pass.
func (c *contentProgress) RecordProgress(ctx context.Context, in domainagg.RecordContentProgressInput) (domainagg.ContentProgressResult, error) {
	const op = "aggregate.content_progress.record_progress"
	var out domainagg.ContentProgressResult
	switch {
	case in.UserID == uuid.Nil || in.ContentID == uuid.Nil:
		return out, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id or content_id", nil)
	case in.ProgressPercentage != nil && (*in.ProgressPercentage < 0 || *in.ProgressPercentage > 100):
		return out, domainagg.NewError(domainagg.CodeValidation, op, "progress_percentage must be within 0..100", nil)
	}

	err := executeWrite(ctx, c.deps.Base, op, func(dbc dbctx.Context) error {
		u, err := c.deps.Repos.Users.LockByID(dbc, in.UserID)
		if err != nil {
			return err
		}
		if u == nil {
			return NotFoundError("user not found")
		}
		item, err := c.deps.Repos.Content.GetPublishedByID(dbc, in.ContentID)
		if err != nil {
			return err
		}
		if item == nil {
			return NotFoundError("content not found")
		}

		now := c.deps.Now()
		p, err := c.deps.Repos.ContentProgress.LockByUserAndContent(dbc, in.UserID, in.ContentID)
		if err != nil {
			return err
		}
		wasCompleted := p != nil && p.Completed
		if p == nil {
			p = &types.UserContentProgress{UserID: in.UserID, ContentID: in.ContentID}
		}
		if in.ProgressPercentage != nil {
			p.ProgressPercentage = *in.ProgressPercentage
		}
		if p.ProgressPercentage >= 100 || (in.Completed != nil && *in.Completed) {
			p.Completed = true
			p.ProgressPercentage = 100
		}
		p.LastAccessed = now

		if p.ID == uuid.Nil {
			if _, err := c.deps.Repos.ContentProgress.Create(dbc, p); err != nil {
				return err
			}
		} else if err := c.deps.Repos.ContentProgress.UpdateFields(dbc, p.ID, map[string]interface{}{
			"progress_percentage": p.ProgressPercentage,
			"completed":           p.Completed,
			"last_accessed":       now,
		}); err != nil {
			return err
		}

		out.Progress = *p
		out.NewlyCompleted = p.Completed && !wasCompleted
		if !out.NewlyCompleted {
			return nil
		}
		eval, err := c.unlocker.evaluate(dbc, in.UserID)
		if err != nil {
			return err
		}
		out.NewAchievements = eval.Unlocked
		out.Notifications = eval.Notifications
		return nil
	})
	if err != nil {
		return domainagg.ContentProgressResult{}, err
	}
	return out, nil
}
