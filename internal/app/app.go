package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/quitbridge-backend/internal/data/repos"
	"github.com/yungbote/quitbridge-backend/internal/data/seed"
	"github.com/yungbote/quitbridge-backend/internal/db"
	apphttp "github.com/yungbote/quitbridge-backend/internal/http"
	"github.com/yungbote/quitbridge-backend/internal/observability"
	"github.com/yungbote/quitbridge-backend/internal/platform/envutil"
	"github.com/yungbote/quitbridge-backend/internal/platform/logger"
	"github.com/yungbote/quitbridge-backend/internal/realtime"
)

const rateLimitResetInterval = 10 * time.Minute

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    repos.Set
	Services Services
	Clients  Clients
	SSEHub   *realtime.SSEHub
	Server   *apphttp.Server
	Metrics  *observability.Metrics

	mw           Middleware
	pg           *db.PostgresService
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "dev"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	metrics := observability.Init(log)
	otelCfg := observability.OtelConfigFromEnv(serviceName)
	otelShutdown := observability.InitOTel(ctx, log, otelCfg)

	pg, err := db.NewPostgresService(ctx, log, db.PostgresConfigFromEnv())
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, err
	}

	a, err := build(ctx, log, cfg, pg.DB(), clients, metrics, otelCfg.Enabled)
	if err != nil {
		clients.Close()
		_ = pg.Close()
		log.Sync()
		return nil, err
	}
	a.pg = pg
	a.otelShutdown = otelShutdown
	return a, nil
}

// build wires everything above the database and external clients.
func build(ctx context.Context, log *logger.Logger, cfg Config, theDB *gorm.DB, clients Clients, metrics *observability.Metrics, traceEnabled bool) (*App, error) {
	sseHub := realtime.NewSSEHub(log)
	reposet := repos.NewSet(theDB, log)

	if cfg.SeedAchievements {
		catalog, err := seed.LoadCatalog()
		if err != nil {
			return nil, fmt.Errorf("load achievement catalog: %w", err)
		}
		if _, err := seed.Achievements(ctx, log, reposet.Achievements, catalog); err != nil {
			return nil, fmt.Errorf("seed achievements: %w", err)
		}
	}

	serviceset, err := wireServices(theDB, log, cfg, reposet, sseHub, clients, metrics)
	if err != nil {
		return nil, err
	}
	handlerset := wireHandlers(theDB, log, serviceset, sseHub)
	middleware := wireMiddleware(log, cfg, serviceset, metrics)
	server := wireServer(log, cfg, handlerset, middleware, metrics, traceEnabled)

	return &App{
		Log:      log,
		DB:       theDB,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
		Clients:  clients,
		SSEHub:   sseHub,
		Server:   server,
		Metrics:  metrics,
		mw:       middleware,
	}, nil
}

// Run serves HTTP and runs the background loops until ctx is cancelled or
// one of them fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	if a.Clients.SSEBus != nil {
		if err := a.Clients.SSEBus.StartForwarder(gctx, a.SSEHub.Broadcast); err != nil {
			return fmt.Errorf("start SSE forwarder: %w", err)
		}
	}

	a.mw.RateLimit.StartCleanup(rateLimitResetInterval, gctx.Done())

	if a.Metrics != nil {
		a.Metrics.StartServer(gctx, a.Log, a.Cfg.MetricsAddr)
		a.Metrics.StartPostgresCollector(gctx, a.Log, a.DB)
		if a.Clients.Redis != nil {
			a.Metrics.StartRedisCollector(gctx, a.Log, a.Clients.Redis)
		}
	}

	if a.Cfg.GoalSweepEnabled {
		g.Go(func() error {
			return a.Services.GoalSweeper.Run(gctx, a.Cfg.GoalSweepInterval)
		})
	}

	g.Go(func() error {
		return a.Server.Run(gctx, a.Cfg.Addr())
	})

	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.pg != nil {
		_ = a.pg.Close()
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.otelShutdown(ctx)
		cancel()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
