package services

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quitbridge-backend/internal/data/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/data/repos"
	types "github.com/yungbote/quitbridge-backend/internal/domain"
	domainagg "github.com/yungbote/quitbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/domain/achievements"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/quitbridge-backend/internal/platform/logger"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
	recentAchievementDays   = 7
)

type EarnedAchievements struct {
	Achievements []*types.UserAchievement `json:"achievements"`
	TotalPoints  int                      `json:"total_points"`
}

type AchievementProgress struct {
	types.Achievement
	CurrentValue       float64 `json:"current_value"`
	ProgressPercentage float64 `json:"progress_percentage"`
}

type AchievementStatistics struct {
	TotalAchievements int64          `json:"total_achievements"`
	EarnedCount       int            `json:"earned_count"`
	AvailableCount    int64          `json:"available_count"`
	TotalPoints       int            `json:"total_points"`
	CompletionRate    float64        `json:"completion_rate"`
	EarnedByType      map[string]int `json:"earned_by_type"`
	RecentEarned      int            `json:"recent_earned"`
}

type LeaderboardEntry struct {
	Rank int `json:"rank"`
	repos.LeaderboardRow
}

type CreateAchievementInput struct {
	Name          string
	Description   string
	IconURL       string
	BadgeType     string
	CriteriaType  string
	CriteriaValue int
	Points        int
}

type AchievementService interface {
	Catalog(ctx context.Context, badgeType string) ([]*types.Achievement, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Achievement, error)
	Earned(ctx context.Context) (EarnedAchievements, error)
	Available(ctx context.Context) ([]*types.Achievement, error)
	Progress(ctx context.Context) ([]AchievementProgress, error)
	Statistics(ctx context.Context) (AchievementStatistics, error)
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	Create(ctx context.Context, in CreateAchievementInput) (*types.Achievement, error)
	Check(ctx context.Context) (domainagg.EvaluationResult, error)
	Badge(ctx context.Context, id uuid.UUID) (bytes.Buffer, error)
}

type achievementService struct {
	db        *gorm.DB
	log       *logger.Logger
	repos     repos.Set
	evaluator domainagg.AchievementEvaluator
	badges    *BadgeRenderer
	notifier  Notifier
	now       func() time.Time
}

func NewAchievementService(db *gorm.DB, log *logger.Logger, r repos.Set, evaluator domainagg.AchievementEvaluator, badges *BadgeRenderer, notifier Notifier) AchievementService {
	return &achievementService{
		db:        db,
		log:       log.With("service", "AchievementService"),
		repos:     r,
		evaluator: evaluator,
		badges:    badges,
		notifier:  notifierOrNop(notifier),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *achievementService) Catalog(ctx context.Context, badgeType string) ([]*types.Achievement, error) {
	out, err := s.repos.Achievements.List(dbctx.New(ctx), strings.TrimSpace(badgeType))
	if err != nil {
		return nil, internalErr("achievements.catalog", err)
	}
	return out, nil
}

func (s *achievementService) Get(ctx context.Context, id uuid.UUID) (*types.Achievement, error) {
	a, err := s.repos.Achievements.GetByID(dbctx.New(ctx), id)
	if err != nil {
		return nil, internalErr("achievements.get", err)
	}
	if a == nil {
		return nil, notFoundErr("achievements.get", "achievement not found")
	}
	return a, nil
}

func (s *achievementService) Earned(ctx context.Context) (EarnedAchievements, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return EarnedAchievements{}, err
	}
	rows, err := s.repos.UserAchievements.ListByUser(dbctx.New(ctx), userID)
	if err != nil {
		return EarnedAchievements{}, internalErr("achievements.earned", err)
	}
	out := EarnedAchievements{Achievements: rows}
	for _, ua := range rows {
		if ua.Achievement != nil {
			out.TotalPoints += ua.Achievement.Points
		}
	}
	return out, nil
}

func (s *achievementService) Available(ctx context.Context) ([]*types.Achievement, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	out, err := s.repos.Achievements.ListUnearnedByUser(dbctx.New(ctx), userID)
	if err != nil {
		return nil, internalErr("achievements.available", err)
	}
	return out, nil
}

// Progress reports how close the caller is to each unearned achievement,
// closest first.
func (s *achievementService) Progress(ctx context.Context) ([]AchievementProgress, error) {
	const op = "achievements.progress"
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.New(ctx)
	m, err := aggregates.ReadAchievementMetrics(dbc, s.repos, userID)
	if err != nil {
		return nil, internalErr(op, err)
	}
	unearned, err := s.repos.Achievements.ListUnearnedByUser(dbc, userID)
	if err != nil {
		return nil, internalErr(op, err)
	}
	out := make([]AchievementProgress, 0, len(unearned))
	for _, a := range unearned {
		cur, _ := m.Value(a.CriteriaType)
		p := AchievementProgress{Achievement: *a, CurrentValue: cur}
		if a.CriteriaValue > 0 {
			p.ProgressPercentage = min(100, percentOf(cur, float64(a.CriteriaValue)))
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ProgressPercentage > out[j].ProgressPercentage })
	return out, nil
}

func (s *achievementService) Statistics(ctx context.Context) (AchievementStatistics, error) {
	const op = "achievements.statistics"
	userID, err := requestUser(ctx)
	if err != nil {
		return AchievementStatistics{}, err
	}
	dbc := dbctx.New(ctx)
	total, err := s.repos.Achievements.Count(dbc)
	if err != nil {
		return AchievementStatistics{}, internalErr(op, err)
	}
	earned, err := s.repos.UserAchievements.ListByUser(dbc, userID)
	if err != nil {
		return AchievementStatistics{}, internalErr(op, err)
	}
	return computeAchievementStatistics(total, earned, s.now().AddDate(0, 0, -recentAchievementDays)), nil
}

func computeAchievementStatistics(total int64, earned []*types.UserAchievement, recentSince time.Time) AchievementStatistics {
	st := AchievementStatistics{
		TotalAchievements: total,
		EarnedCount:       len(earned),
		EarnedByType:      map[string]int{},
	}
	for _, ua := range earned {
		if !ua.EarnedAt.Before(recentSince) {
			st.RecentEarned++
		}
		if ua.Achievement == nil {
			continue
		}
		st.TotalPoints += ua.Achievement.Points
		bt := ua.Achievement.BadgeType
		if bt == "" {
			bt = "other"
		}
		st.EarnedByType[bt]++
	}
	st.AvailableCount = total - int64(st.EarnedCount)
	st.CompletionRate = percentOf(float64(st.EarnedCount), float64(total))
	return st
}

func (s *achievementService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}
	rows, err := s.repos.UserAchievements.Leaderboard(dbctx.New(ctx), limit)
	if err != nil {
		return nil, internalErr("achievements.leaderboard", err)
	}
	out := make([]LeaderboardEntry, len(rows))
	for i, r := range rows {
		out[i] = LeaderboardEntry{Rank: i + 1, LeaderboardRow: r}
	}
	return out, nil
}

func (s *achievementService) Create(ctx context.Context, in CreateAchievementInput) (*types.Achievement, error) {
	const op = "achievements.create"
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.CriteriaType = strings.TrimSpace(in.CriteriaType)
	switch {
	case in.Name == "":
		return nil, validationErr(op, "name is required")
	case !achievements.IsCriteriaType(in.CriteriaType):
		return nil, validationErr(op, "criteria_type must be one of "+strings.Join(achievements.CriteriaTypes, ", "))
	case in.CriteriaValue < 0 || in.Points < 0:
		return nil, validationErr(op, "criteria_value and points must not be negative")
	}
	dbc := dbctx.New(ctx)
	existing, err := s.repos.Achievements.GetByName(dbc, in.Name)
	if err != nil {
		return nil, internalErr(op, err)
	}
	if existing != nil {
		return nil, validationErr(op, "an achievement with this name already exists")
	}
	a, err := s.repos.Achievements.Create(dbc, &types.Achievement{
		Name:          in.Name,
		Description:   strings.TrimSpace(in.Description),
		IconURL:       strings.TrimSpace(in.IconURL),
		BadgeType:     strings.TrimSpace(in.BadgeType),
		CriteriaType:  in.CriteriaType,
		CriteriaValue: in.CriteriaValue,
		Points:        in.Points,
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	s.log.Info("achievement created", "achievement_id", a.ID, "name", a.Name)
	return a, nil
}

func (s *achievementService) Check(ctx context.Context) (domainagg.EvaluationResult, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return domainagg.EvaluationResult{}, err
	}
	res, err := s.evaluator.Evaluate(ctx, userID)
	if err != nil {
		return res, err
	}
	s.notifier.Committed(ctx, Outcome{
		UserID:          userID,
		NewAchievements: res.Unlocked,
		Notifications:   res.Notifications,
	})
	return res, nil
}

func (s *achievementService) Badge(ctx context.Context, id uuid.UUID) (bytes.Buffer, error) {
	const op = "achievements.badge"
	if s.badges == nil {
		return bytes.Buffer{}, domainagg.NewError(domainagg.CodePreconditionFailed, op, "badge rendering not configured", nil)
	}
	a, err := s.Get(ctx, id)
	if err != nil {
		return bytes.Buffer{}, err
	}
	earned := false
	if userID, err := requestUser(ctx); err == nil {
		if earned, err = s.repos.UserAchievements.Exists(dbctx.New(ctx), userID, a.ID); err != nil {
			return bytes.Buffer{}, internalErr(op, err)
		}
	}
	return s.badges.Render(a, earned)
}
