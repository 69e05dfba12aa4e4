package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quitbridge-backend/internal/data/repos"
	"github.com/yungbote/quitbridge-backend/internal/data/repos/query"
	types "github.com/yungbote/quitbridge-backend/internal/domain"
	domainagg "github.com/yungbote/quitbridge-backend/internal/domain/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/domain/goals"
	"github.com/yungbote/quitbridge-backend/internal/domain/tracking"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/quitbridge-backend/internal/platform/logger"
)

const (
	defaultStatisticsDays = 30
	maxStatisticsDays     = 366
	trendWindowDays       = 30
	dashboardRecentDays   = 7
)

type DashboardStatistics struct {
	TotalRecords           int64   `json:"total_records"`
	AvgCigarettesLast7Days float64 `json:"avg_cigarettes_last_7_days"`
	TotalCigarettesLogged  int     `json:"total_cigarettes_logged"`
	ActiveGoals            int     `json:"active_goals"`
	CompletedGoals         int     `json:"completed_goals"`
	AchievementsEarned     int64   `json:"achievements_earned"`
	UnreadNotifications    int64   `json:"unread_notifications"`
	CurrentStreakDays      int     `json:"current_streak_days"`
	LongestStreakDays      int     `json:"longest_streak_days"`
	TotalMoneySaved        float64 `json:"total_money_saved"`
	TotalCigarettesAvoided int     `json:"total_cigarettes_avoided"`
}

type Dashboard struct {
	Profile    *types.UserProfile  `json:"profile"`
	Statistics DashboardStatistics `json:"statistics"`
}

type TrackingService interface {
	CreateRecord(ctx context.Context, in domainagg.ApplyRecordInput) (domainagg.LedgerResult, error)
	UpdateRecord(ctx context.Context, in domainagg.UpdateRecordInput) (domainagg.LedgerResult, error)
	DeleteRecord(ctx context.Context, recordID uuid.UUID) (domainagg.LedgerResult, error)

	ListRecords(ctx context.Context, page query.Page) ([]*types.SmokingRecord, int64, error)
	GetRecord(ctx context.Context, recordID uuid.UUID) (*types.SmokingRecord, error)
	Today(ctx context.Context) (*types.SmokingRecord, error)
	Statistics(ctx context.Context, days int) (StatisticsReport, error)
	Trends(ctx context.Context) (TrendReport, error)
	Dashboard(ctx context.Context) (Dashboard, error)
}

type trackingService struct {
	db       *gorm.DB
	log      *logger.Logger
	repos    repos.Set
	ledger   domainagg.ProgressLedger
	notifier Notifier
	now      func() time.Time
}

func NewTrackingService(db *gorm.DB, log *logger.Logger, r repos.Set, ledger domainagg.ProgressLedger, notifier Notifier) TrackingService {
	return &trackingService{
		db:       db,
		log:      log.With("service", "TrackingService"),
		repos:    r,
		ledger:   ledger,
		notifier: notifierOrNop(notifier),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *trackingService) CreateRecord(ctx context.Context, in domainagg.ApplyRecordInput) (domainagg.LedgerResult, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return domainagg.LedgerResult{}, err
	}
	in.UserID = userID
	res, err := s.ledger.ApplyRecord(ctx, in)
	if err != nil {
		return res, err
	}
	s.publish(ctx, userID, res)
	return res, nil
}

func (s *trackingService) UpdateRecord(ctx context.Context, in domainagg.UpdateRecordInput) (domainagg.LedgerResult, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return domainagg.LedgerResult{}, err
	}
	in.UserID = userID
	res, err := s.ledger.UpdateRecord(ctx, in)
	if err != nil {
		return res, err
	}
	s.publish(ctx, userID, res)
	return res, nil
}

func (s *trackingService) DeleteRecord(ctx context.Context, recordID uuid.UUID) (domainagg.LedgerResult, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return domainagg.LedgerResult{}, err
	}
	res, err := s.ledger.DeleteRecord(ctx, domainagg.DeleteRecordInput{UserID: userID, RecordID: recordID})
	if err != nil {
		return res, err
	}
	s.publish(ctx, userID, res)
	return res, nil
}

func (s *trackingService) publish(ctx context.Context, userID uuid.UUID, res domainagg.LedgerResult) {
	profile := res.Profile
	s.notifier.Committed(ctx, Outcome{
		UserID:          userID,
		Profile:         &profile,
		CompletedGoals:  res.CompletedGoals,
		NewAchievements: res.NewAchievements,
		Notifications:   res.Notifications,
	})
}

func (s *trackingService) ListRecords(ctx context.Context, page query.Page) ([]*types.SmokingRecord, int64, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, 0, err
	}
	recs, total, err := s.repos.Records.ListByUser(dbctx.New(ctx), userID, page.Normalize(20, 100))
	if err != nil {
		return nil, 0, internalErr("tracking.list_records", err)
	}
	return recs, total, nil
}

func (s *trackingService) GetRecord(ctx context.Context, recordID uuid.UUID) (*types.SmokingRecord, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := s.repos.Records.GetByID(dbctx.New(ctx), userID, recordID)
	if err != nil {
		return nil, internalErr("tracking.get_record", err)
	}
	if rec == nil {
		return nil, notFoundErr("tracking.get_record", "record not found")
	}
	return rec, nil
}

// Today returns nil without error when no record exists for the current day.
func (s *trackingService) Today(ctx context.Context) (*types.SmokingRecord, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := s.repos.Records.GetByUserAndDate(dbctx.New(ctx), userID, tracking.DayOf(s.now()))
	if err != nil {
		return nil, internalErr("tracking.today", err)
	}
	return rec, nil
}

func (s *trackingService) Statistics(ctx context.Context, days int) (StatisticsReport, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return StatisticsReport{}, err
	}
	if days <= 0 {
		days = defaultStatisticsDays
	}
	if days > maxStatisticsDays {
		days = maxStatisticsDays
	}
	dbc := dbctx.New(ctx)
	from := tracking.DayOf(s.now()).AddDate(0, 0, -days)
	recs, err := s.repos.Records.ListByUserSince(dbc, userID, from)
	if err != nil {
		return StatisticsReport{}, internalErr("tracking.statistics", err)
	}
	profile, err := s.repos.Profiles.GetByUserID(dbc, userID)
	if err != nil {
		return StatisticsReport{}, internalErr("tracking.statistics", err)
	}
	return computeStatistics(recs, profile, days), nil
}

func (s *trackingService) Trends(ctx context.Context) (TrendReport, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return TrendReport{}, err
	}
	from := tracking.DayOf(s.now()).AddDate(0, 0, -trendWindowDays)
	recs, err := s.repos.Records.ListByUserSince(dbctx.New(ctx), userID, from)
	if err != nil {
		return TrendReport{}, internalErr("tracking.trends", err)
	}
	return computeTrend(recs), nil
}

func (s *trackingService) Dashboard(ctx context.Context) (Dashboard, error) {
	const op = "tracking.dashboard"
	userID, err := requestUser(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	dbc := dbctx.New(ctx)
	var out Dashboard

	profile, err := s.repos.Profiles.GetByUserID(dbc, userID)
	if err != nil {
		return out, internalErr(op, err)
	}
	out.Profile = profile
	if profile != nil {
		out.Statistics.CurrentStreakDays = profile.CurrentStreakDays
		out.Statistics.LongestStreakDays = profile.LongestStreakDays
		out.Statistics.TotalMoneySaved = profile.TotalMoneySaved
		out.Statistics.TotalCigarettesAvoided = profile.TotalCigarettesAvoided
	}

	all, err := s.repos.Records.ListByUserSince(dbc, userID, time.Time{})
	if err != nil {
		return out, internalErr(op, err)
	}
	out.Statistics.TotalRecords = int64(len(all))
	recentFrom := tracking.DayOf(s.now()).AddDate(0, 0, -dashboardRecentDays)
	var recentSum, recentN int
	for _, r := range all {
		out.Statistics.TotalCigarettesLogged += r.CigarettesSmoked
		if !r.RecordDate.Before(recentFrom) {
			recentSum += r.CigarettesSmoked
			recentN++
		}
	}
	if recentN > 0 {
		out.Statistics.AvgCigarettesLast7Days = round(float64(recentSum)/float64(recentN), 1)
	}

	userGoals, err := s.repos.Goals.ListByUser(dbc, userID, repos.GoalFilter{})
	if err != nil {
		return out, internalErr(op, err)
	}
	for _, g := range userGoals {
		switch g.Status {
		case goals.StatusActive:
			out.Statistics.ActiveGoals++
		case goals.StatusCompleted:
			out.Statistics.CompletedGoals++
		}
	}

	if out.Statistics.AchievementsEarned, err = s.repos.UserAchievements.CountByUser(dbc, userID); err != nil {
		return out, internalErr(op, err)
	}
	if out.Statistics.UnreadNotifications, err = s.repos.Notifications.CountUnread(dbc, userID); err != nil {
		return out, internalErr(op, err)
	}
	return out, nil
}
