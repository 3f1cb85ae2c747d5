package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/wonny/grocer/internal/metrics"
	"github.com/wonny/grocer/internal/recommend"
	"github.com/wonny/grocer/internal/signals"
	"github.com/wonny/grocer/pkg/config"
	"github.com/wonny/grocer/pkg/database"
	"github.com/wonny/grocer/pkg/logger"
	"github.com/wonny/grocer/pkg/redis"
)

// app holds the shared dependencies of a command run
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	db      *database.DB // nil without DATABASE_URL
	redis   *redis.Client
	signals *signals.Stack
}

// loadConfig loads config and applies the global flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newApp connects the optional stores and builds the signal stack.
// logOut overrides the log destination; nil uses the configured stdout logger.
func newApp(ctx context.Context, cfg *config.Config, logOut io.Writer) (*app, error) {
	log := logger.New(cfg)
	if logOut != nil {
		log = logger.NewWithWriter(logOut, cfg.LogLevel)
	}

	if cfg.MetricsEnabled {
		metrics.Init()
	}

	a := &app{cfg: cfg, log: log}

	if cfg.Database.URL != "" {
		db, err := database.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.db = db
		log.Info("Connected to database")
	}

	rc, err := redis.New(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.redis = rc

	stack, err := signals.Build(cfg, signals.Deps{DB: a.db, Redis: rc, Logger: log})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("build signal provider: %w", err)
	}
	a.signals = stack

	return a, nil
}

// service builds the recommendation service over the signal stack
func (a *app) service() *recommend.Service {
	var cache *redis.Cache
	if a.redis.Enabled() {
		cache = redis.NewCache(a.redis, "grocer")
	}
	return recommend.NewService(a.signals.Provider, recommend.ServiceConfig{
		FallbackMode: a.cfg.Recommend.FallbackMode,
		CacheTTL:     a.cfg.Recommend.CacheTTL,
	}, cache, a.log)
}

// Close releases connections
func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
