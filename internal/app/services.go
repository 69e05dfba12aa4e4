package app

import (
	"fmt"

	"gorm.io/gorm"

	aggregates "github.com/yungbote/quitbridge-backend/internal/data/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/data/repos"
	"github.com/yungbote/quitbridge-backend/internal/observability"
	"github.com/yungbote/quitbridge-backend/internal/platform/logger"
	"github.com/yungbote/quitbridge-backend/internal/realtime"
	"github.com/yungbote/quitbridge-backend/internal/services"
)

type Services struct {
	Auth         services.AuthService
	Profile      services.ProfileService
	Tracking     services.TrackingService
	Goal         services.GoalService
	Achievement  services.AchievementService
	Notification services.NotificationService
	Content      services.ContentService

	// Background
	Notifier    services.Notifier
	GoalSweeper *services.GoalSweeper
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r repos.Set, sseHub *realtime.SSEHub, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	base := aggregates.BaseDeps{
		DB:    db,
		Log:   log,
		Hooks: aggregates.NewMetricsHooks(metrics),
	}
	ledger := aggregates.NewProgressLedger(aggregates.ProgressLedgerDeps{Base: base, Repos: r})
	tracker := aggregates.NewGoalTracker(aggregates.GoalTrackerDeps{
		Base:             base,
		Repos:            r,
		SweepConcurrency: cfg.GoalSweepConcurrency,
	})
	evaluator := aggregates.NewAchievementEvaluator(aggregates.AchievementEvaluatorDeps{Base: base, Repos: r})
	contentProgress := aggregates.NewContentProgress(aggregates.ContentProgressDeps{Base: base, Repos: r})

	var emitter services.SSEEmitter = &services.HubEmitter{Hub: sseHub, Metrics: metrics}
	if clients.SSEBus != nil {
		emitter = &services.RedisEmitter{Bus: clients.SSEBus, Log: log, Metrics: metrics}
	}
	notifier := services.NewNotifier(emitter, metrics)

	badges, err := services.NewBadgeRenderer(cfg.BadgeFontPath)
	if err != nil {
		return Services{}, fmt.Errorf("init badge renderer: %w", err)
	}

	return Services{
		Auth:         services.NewAuthService(db, log, r.Users, r.Tokens, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		Profile:      services.NewProfileService(log, r.Profiles, ledger, notifier),
		Tracking:     services.NewTrackingService(db, log, r, ledger, notifier),
		Goal:         services.NewGoalService(log, r.Goals, tracker, notifier),
		Achievement:  services.NewAchievementService(db, log, r, evaluator, badges, notifier),
		Notification: services.NewNotificationService(db, log, r, notifier),
		Content:      services.NewContentService(db, log, r, contentProgress, notifier),
		Notifier:     notifier,
		GoalSweeper:  services.NewGoalSweeper(log, tracker, notifier, metrics),
	}, nil
}
