package app

import (
	"gorm.io/gorm"

	apphttp "github.com/yungbote/quitbridge-backend/internal/http"
	httpH "github.com/yungbote/quitbridge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/quitbridge-backend/internal/http/middleware"
	"github.com/yungbote/quitbridge-backend/internal/observability"
	"github.com/yungbote/quitbridge-backend/internal/platform/logger"
	"github.com/yungbote/quitbridge-backend/internal/realtime"
)

type Middleware struct {
	Auth      *httpMW.AuthMiddleware
	RateLimit *httpMW.RateLimiter
}

type Handlers struct {
	Health       *httpH.HealthHandler
	Auth         *httpH.AuthHandler
	Profile      *httpH.ProfileHandler
	Tracking     *httpH.TrackingHandler
	Goal         *httpH.GoalHandler
	Achievement  *httpH.AchievementHandler
	Notification *httpH.NotificationHandler
	Content      *httpH.ContentHandler
	Realtime     *httpH.RealtimeHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, svc Services, sseHub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:       httpH.NewHealthHandler(db),
		Auth:         httpH.NewAuthHandler(svc.Auth),
		Profile:      httpH.NewProfileHandler(svc.Profile),
		Tracking:     httpH.NewTrackingHandler(svc.Tracking),
		Goal:         httpH.NewGoalHandler(svc.Goal),
		Achievement:  httpH.NewAchievementHandler(svc.Achievement),
		Notification: httpH.NewNotificationHandler(svc.Notification),
		Content:      httpH.NewContentHandler(svc.Content),
		Realtime:     httpH.NewRealtimeHandler(log, sseHub),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config, svc Services, metrics *observability.Metrics) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth:      httpMW.NewAuthMiddleware(log, svc.Auth),
		RateLimit: httpMW.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log, metrics),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, mw Middleware, metrics *observability.Metrics, traceEnabled bool) *apphttp.Server {
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:                 log,
		Metrics:             metrics,
		ServiceName:         serviceName,
		CORSOrigins:         cfg.CORSOrigins,
		TraceEnabled:        traceEnabled,
		AuthMiddleware:      mw.Auth,
		RateLimiter:         mw.RateLimit,
		HealthHandler:       handlers.Health,
		AuthHandler:         handlers.Auth,
		ProfileHandler:      handlers.Profile,
		TrackingHandler:     handlers.Tracking,
		GoalHandler:         handlers.Goal,
		AchievementHandler:  handlers.Achievement,
		NotificationHandler: handlers.Notification,
		ContentHandler:      handlers.Content,
		RealtimeHandler:     handlers.Realtime,
	})
}
