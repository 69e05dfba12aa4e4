package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/quitbridge-backend/internal/domain/user"
	httpH "github.com/yungbote/quitbridge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/quitbridge-backend/internal/http/middleware"
	"github.com/yungbote/quitbridge-backend/internal/observability"
	"github.com/yungbote/quitbridge-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log          *logger.Logger
	Metrics      *observability.Metrics
	ServiceName  string
	CORSOrigins  []string
	TraceEnabled bool

	AuthMiddleware *httpMW.AuthMiddleware
	RateLimiter    *httpMW.RateLimiter

	HealthHandler       *httpH.HealthHandler
	AuthHandler         *httpH.AuthHandler
	ProfileHandler      *httpH.ProfileHandler
	TrackingHandler     *httpH.TrackingHandler
	GoalHandler         *httpH.GoalHandler
	AchievementHandler  *httpH.AchievementHandler
	NotificationHandler *httpH.NotificationHandler
	ContentHandler      *httpH.ContentHandler
	RealtimeHandler     *httpH.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TraceEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS(cfg.CORSOrigins...))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	limit := cfg.RateLimiter.Handler()

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", limit, cfg.AuthHandler.Register)
			api.POST("/login", limit, cfg.AuthHandler.Login)
			api.POST("/refresh", limit, cfg.AuthHandler.Refresh)
			api.GET("/auth/check-username/:username", cfg.AuthHandler.CheckUsername)
			api.GET("/auth/check-email/:email", cfg.AuthHandler.CheckEmail)
		}
	}

	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		// Auth (protected)
		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
			protected.GET("/me", cfg.AuthHandler.Me)
			protected.DELETE("/account", limit, cfg.AuthHandler.DeleteAccount)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
		}

		// Profile
		if cfg.ProfileHandler != nil {
			protected.GET("/profile", cfg.ProfileHandler.Get)
			protected.PUT("/profile", limit, cfg.ProfileHandler.Setup)
		}

		// Tracking
		if h := cfg.TrackingHandler; h != nil {
			protected.GET("/dashboard", h.Dashboard)
			protected.GET("/tracking/records", h.ListRecords)
			protected.POST("/tracking/records", limit, h.CreateRecord)
			protected.GET("/tracking/records/:id", h.GetRecord)
			protected.PATCH("/tracking/records/:id", limit, h.UpdateRecord)
			protected.DELETE("/tracking/records/:id", limit, h.DeleteRecord)
			protected.GET("/tracking/today", h.Today)
			protected.GET("/tracking/statistics", h.Statistics)
			protected.GET("/tracking/trends", h.Trends)
		}

		// Goals
		if h := cfg.GoalHandler; h != nil {
			protected.GET("/goals", h.List)
			protected.POST("/goals", limit, h.Create)
			protected.GET("/goals/active", h.Active)
			protected.GET("/goals/completed", h.Completed)
			protected.GET("/goals/statistics", h.Statistics)
			protected.GET("/goals/:id", h.Get)
			protected.PATCH("/goals/:id", limit, h.Update)
			protected.DELETE("/goals/:id", limit, h.Delete)
			protected.POST("/goals/:id/progress", limit, h.UpdateProgress)
			protected.POST("/goals/:id/complete", limit, h.Complete)
			protected.POST("/goals/:id/pause", limit, h.Pause)
			protected.POST("/goals/:id/resume", limit, h.Resume)
			protected.POST("/goals/:id/fail", limit, h.Fail)
			protected.POST("/goals/:id/notified", limit, h.MarkNotified)
		}

		// Achievements
		if h := cfg.AchievementHandler; h != nil {
			protected.GET("/achievements", h.Catalog)
			protected.GET("/achievements/earned", h.Earned)
			protected.GET("/achievements/available", h.Available)
			protected.GET("/achievements/progress", h.Progress)
			protected.GET("/achievements/statistics", h.Statistics)
			protected.GET("/achievements/leaderboard", h.Leaderboard)
			protected.POST("/achievements/check", limit, h.Check)
			protected.GET("/achievements/:id", h.Get)
			protected.GET("/achievements/:id/badge.png", h.Badge)
		}

		// Notifications
		if h := cfg.NotificationHandler; h != nil {
			protected.GET("/notifications", h.List)
			protected.GET("/notifications/unread", h.Unread)
			protected.GET("/notifications/statistics", h.Statistics)
			protected.GET("/notifications/types", h.Types)
			protected.GET("/notifications/recent", h.Recent)
			protected.POST("/notifications/read-all", limit, h.MarkAllRead)
			protected.DELETE("/notifications/read", limit, h.DeleteRead)
			protected.DELETE("/notifications/old", limit, h.ClearOld)
			protected.GET("/notifications/:id", h.Get)
			protected.POST("/notifications/:id/read", limit, h.MarkRead)
			protected.DELETE("/notifications/:id", limit, h.Delete)
		}

		// Content
		if h := cfg.ContentHandler; h != nil {
			protected.GET("/content", h.List)
			protected.GET("/content/progress", h.UserProgress)
			protected.GET("/content/statistics", h.Statistics)
			protected.GET("/content/recommended", h.Recommended)
			protected.GET("/content/search", h.Search)
			protected.GET("/content/:id", h.Get)
			protected.POST("/content/:id/progress", limit, h.RecordProgress)
		}
	}

	admin := protected.Group("/admin")
	admin.Use(httpMW.RequireRole(user.RoleAdmin))
	{
		if cfg.AchievementHandler != nil {
			admin.POST("/achievements", cfg.AchievementHandler.Create)
		}
		if cfg.NotificationHandler != nil {
			admin.POST("/notifications", cfg.NotificationHandler.Send)
			admin.POST("/notifications/bulk", cfg.NotificationHandler.SendBulk)
		}
		if cfg.ContentHandler != nil {
			admin.POST("/content", cfg.ContentHandler.Create)
			admin.PUT("/content/:id", cfg.ContentHandler.Update)
			admin.DELETE("/content/:id", cfg.ContentHandler.Delete)
		}
	}

	return r
}
