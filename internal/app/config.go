package app

import (
	"strings"
	"time"

	"github.com/yungbote/quitbridge-backend/internal/platform/envutil"
	"github.com/yungbote/quitbridge-backend/internal/platform/logger"
)

const serviceName = "quitbridge-backend"

type Config struct {
	Port    string
	LogMode string

	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	RedisAddr    string
	RedisChannel string

	GoalSweepEnabled     bool
	GoalSweepInterval    time.Duration
	GoalSweepConcurrency int

	RateLimitRPS   float64
	RateLimitBurst int

	MetricsAddr string

	SeedAchievements bool
	BadgeFontPath    string
	CORSOrigins      []string
}

func LoadConfig(log *logger.Logger) Config {
	cfg := Config{
		Port:                 envutil.String("PORT", "8080"),
		LogMode:              envutil.String("LOG_MODE", "dev"),
		JWTSecretKey:         envutil.String("JWT_SECRET_KEY", ""),
		AccessTokenTTL:       envutil.Duration("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL:      envutil.Duration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		RedisAddr:            envutil.String("REDIS_ADDR", ""),
		RedisChannel:         envutil.String("REDIS_CHANNEL", ""),
		GoalSweepEnabled:     envutil.Bool("GOAL_SWEEP_ENABLED", true),
		GoalSweepInterval:    envutil.Duration("GOAL_SWEEP_INTERVAL", time.Hour),
		GoalSweepConcurrency: envutil.Int("GOAL_SWEEP_CONCURRENCY", 4),
		RateLimitRPS:         envutil.Float("RATE_LIMIT_RPS", 10),
		RateLimitBurst:       envutil.Int("RATE_LIMIT_BURST", 20),
		MetricsAddr:          envutil.String("METRICS_ADDR", ""),
		SeedAchievements:     envutil.Bool("SEED_ACHIEVEMENTS", true),
		BadgeFontPath:        envutil.String("BADGE_FONT", ""),
		CORSOrigins:          splitList(envutil.String("CORS_ORIGINS", "")),
	}
	if cfg.JWTSecretKey == "" {
		cfg.JWTSecretKey = "defaultsecret"
		if log != nil {
			log.Warn("JWT_SECRET_KEY not set, using insecure default")
		}
	}
	return cfg
}

func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
