package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quitbridge-backend/internal/data/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/data/repos"
	"github.com/yungbote/quitbridge-backend/internal/data/repos/query"
	types "github.com/yungbote/quitbridge-backend/internal/domain"
	domainagg "github.com/yungbote/quitbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/quitbridge-backend/internal/platform/logger"
)

type CreateContentInput struct {
	Title       string
	ContentType string
	ContentText string
	ContentURL  string
	Category    string
	Language    string
	ReadingTime int
	IsPublished bool
}

// UpdateContentInput carries admin edits; nil fields are left unchanged.
type UpdateContentInput struct {
	Title       *string
	ContentType *string
	ContentText *string
	ContentURL  *string
	Category    *string
	Language    *string
	ReadingTime *int
	IsPublished *bool
}

type ContentStatistics struct {
	TotalAvailable         int64            `json:"total_available"`
	AccessedCount          int64            `json:"accessed_count"`
	CompletedCount         int64            `json:"completed_count"`
	InProgress             int64            `json:"in_progress"`
	CompletionRate         float64          `json:"completion_rate"`
	AvgProgressUncompleted float64          `json:"avg_progress_uncompleted"`
	CompletedByCategory    map[string]int64 `json:"completed_by_category"`
}

const (
	recommendedContentLimit = 10
	searchContentLimit      = 20
)

type ContentService interface {
	List(ctx context.Context, f repos.ContentFilter, page query.Page) ([]*types.EducationalContent, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*types.EducationalContent, error)
	RecordProgress(ctx context.Context, in domainagg.RecordContentProgressInput) (domainagg.ContentProgressResult, error)
	UserProgress(ctx context.Context) ([]*types.UserContentProgress, error)
	Statistics(ctx context.Context) (ContentStatistics, error)
	Recommended(ctx context.Context) ([]*types.EducationalContent, error)
	Search(ctx context.Context, text string) ([]*types.EducationalContent, error)
	Create(ctx context.Context, in CreateContentInput) (*types.EducationalContent, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateContentInput) (*types.EducationalContent, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type contentService struct {
	db       *gorm.DB
	log      *logger.Logger
	repos    repos.Set
	progress domainagg.ContentProgressAggregate
	notifier Notifier
}

func NewContentService(db *gorm.DB, log *logger.Logger, r repos.Set, progress domainagg.ContentProgressAggregate, notifier Notifier) ContentService {
	return &contentService{
		db:       db,
		log:      log.With("service", "ContentService"),
		repos:    r,
		progress: progress,
		notifier: notifierOrNop(notifier),
	}
}

func (s *contentService) List(ctx context.Context, f repos.ContentFilter, page query.Page) ([]*types.EducationalContent, int64, error) {
	f.Category = strings.TrimSpace(f.Category)
	f.Language = strings.TrimSpace(f.Language)
	f.ContentType = strings.TrimSpace(f.ContentType)
	rows, total, err := s.repos.Content.ListPublished(dbctx.New(ctx), f, page.Normalize(20, 100))
	if err != nil {
		return nil, 0, internalErr("content.list", err)
	}
	return rows, total, nil
}

func (s *contentService) Get(ctx context.Context, id uuid.UUID) (*types.EducationalContent, error) {
	c, err := s.repos.Content.GetPublishedByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, internalErr("content.get", err)
	}
	if c == nil {
		return nil, notFoundErr("content.get", "content not found")
	}
	return c, nil
}

func (s *contentService) RecordProgress(ctx context.Context, in domainagg.RecordContentProgressInput) (domainagg.ContentProgressResult, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return domainagg.ContentProgressResult{}, err
	}
	in.UserID = userID
	res, err := s.progress.RecordProgress(ctx, in)
	if err != nil {
		return res, err
	}
	s.notifier.Committed(ctx, Outcome{
		UserID:          userID,
		NewAchievements: res.NewAchievements,
		Notifications:   res.Notifications,
	})
	return res, nil
}

func (s *contentService) UserProgress(ctx context.Context) ([]*types.UserContentProgress, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.repos.ContentProgress.ListByUser(dbctx.New(ctx), userID)
	if err != nil {
		return nil, internalErr("content.user_progress", err)
	}
	return rows, nil
}

func (s *contentService) Create(ctx context.Context, in CreateContentInput) (*types.EducationalContent, error) {
	const op = "content.create"
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, validationErr(op, "title is required")
	}
	if in.ReadingTime < 0 {
		return nil, validationErr(op, "reading_time must not be negative")
	}
	c := &types.EducationalContent{
		Title:       in.Title,
		ContentType: strings.TrimSpace(in.ContentType),
		ContentText: in.ContentText,
		ContentURL:  strings.TrimSpace(in.ContentURL),
		Category:    strings.TrimSpace(in.Category),
		Language:    strings.TrimSpace(in.Language),
		ReadingTime: in.ReadingTime,
		IsPublished: in.IsPublished,
	}
	if c.Language == "" {
		c.Language = "ar-dz"
	}
	created, err := s.repos.Content.Create(dbctx.New(ctx), c)
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	return created, nil
}

func (s *contentService) Statistics(ctx context.Context) (ContentStatistics, error) {
	const op = "content.statistics"
	userID, err := requestUser(ctx)
	if err != nil {
		return ContentStatistics{}, err
	}
	dbc := dbctx.New(ctx)
	total, err := s.repos.Content.CountPublished(dbc)
	if err != nil {
		return ContentStatistics{}, internalErr(op, err)
	}
	sum, err := s.repos.ContentProgress.Summarize(dbc, userID)
	if err != nil {
		return ContentStatistics{}, internalErr(op, err)
	}
	return ContentStatistics{
		TotalAvailable:         total,
		AccessedCount:          sum.Accessed,
		CompletedCount:         sum.Completed,
		InProgress:             sum.Accessed - sum.Completed,
		CompletionRate:         percentOf(float64(sum.Completed), float64(sum.Accessed)),
		AvgProgressUncompleted: round(sum.AvgUncompleted, 1),
		CompletedByCategory:    sum.CompletedByCategory,
	}, nil
}

func (s *contentService) Recommended(ctx context.Context) ([]*types.EducationalContent, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.repos.Content.ListRecommended(dbctx.New(ctx), userID, recommendedContentLimit)
	if err != nil {
		return nil, internalErr("content.recommended", err)
	}
	return rows, nil
}

func (s *contentService) Search(ctx context.Context, text string) ([]*types.EducationalContent, error) {
	const op = "content.search"
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, validationErr(op, "search query (q) is required")
	}
	rows, err := s.repos.Content.Search(dbctx.New(ctx), text, searchContentLimit)
	if err != nil {
		return nil, internalErr(op, err)
	}
	return rows, nil
}

func (s *contentService) Update(ctx context.Context, id uuid.UUID, in UpdateContentInput) (*types.EducationalContent, error) {
	const op = "content.update"
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, validationErr(op, "title must not be empty")
		}
		updates["title"] = title
	}
	if in.ReadingTime != nil {
		if *in.ReadingTime < 0 {
			return nil, validationErr(op, "reading_time must not be negative")
		}
		updates["reading_time"] = *in.ReadingTime
	}
	for col, v := range map[string]*string{
		"content_type": in.ContentType,
		"content_url":  in.ContentURL,
		"category":     in.Category,
		"language":     in.Language,
	} {
		if v != nil {
			updates[col] = strings.TrimSpace(*v)
		}
	}
	if in.ContentText != nil {
		updates["content_text"] = *in.ContentText
	}
	if in.IsPublished != nil {
		updates["is_published"] = *in.IsPublished
	}

	dbc := dbctx.New(ctx)
	existing, err := s.repos.Content.GetByID(dbc, id)
	if err != nil {
		return nil, internalErr(op, err)
	}
	if existing == nil {
		return nil, notFoundErr(op, "content not found")
	}
	if err := s.repos.Content.UpdateFields(dbc, id, updates); err != nil {
		return nil, aggregates.MapError(op, err)
	}
	updated, err := s.repos.Content.GetByID(dbc, id)
	if err != nil {
		return nil, internalErr(op, err)
	}
	return updated, nil
}

func (s *contentService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "content.delete"
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, err := s.repos.Content.GetByID(dbc, id)
		if err != nil {
			return internalErr(op, err)
		}
		if existing == nil {
			return notFoundErr(op, "content not found")
		}
		if err := s.repos.Content.Delete(dbc, id); err != nil {
			return internalErr(op, err)
		}
		return nil
	})
}
