package signals

import (
	"fmt"
	"time"

	"github.com/wonny/grocer/internal/contracts"
	"github.com/wonny/grocer/pkg/config"
	"github.com/wonny/grocer/pkg/database"
	"github.com/wonny/grocer/pkg/httputil"
	"github.com/wonny/grocer/pkg/logger"
	"github.com/wonny/grocer/pkg/redis"
)

// Deps are the shared resources a provider stack may use.
// DB is required for the postgres source; Redis may be disabled.
type Deps struct {
	DB     *database.DB
	Redis  *redis.Client
	Logger *logger.Logger
}

// Stack is the assembled provider chain: source → breaker → cache.
type Stack struct {
	Provider contracts.SignalProvider
	Catalog  *Catalog       // nil unless the source is mock
	Cached   *CachedProvider // nil when Redis is disabled
}

// Build assembles the provider chain described by cfg.Signals
func Build(cfg *config.Config, deps Deps) (*Stack, error) {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}

	stack := &Stack{}

	switch cfg.Signals.Source {
	case config.SourceMock:
		catalog, err := CatalogFromConfig(cfg.Signals.CatalogPath)
		if err != nil {
			return nil, err
		}
		fp, err := catalog.Fingerprint()
		if err != nil {
			return nil, fmt.Errorf("fingerprint catalog: %w", err)
		}
		log.WithFields(map[string]interface{}{
			"catalog_path": cfg.Signals.CatalogPath,
			"fingerprint":  fp,
			"latency":      cfg.Signals.SimulateLatency,
		}).Info("Signal catalog loaded")

		stack.Catalog = catalog
		stack.Provider = NewMockProvider(catalog, cfg.Signals.SimulateLatency)

	case config.SourcePostgres:
		if deps.DB == nil {
			return nil, fmt.Errorf("signal source %q requires a database", cfg.Signals.Source)
		}
		stack.Provider = NewPostgresProvider(deps.DB.Pool)

	case config.SourceRemote:
		client := httputil.New(log, 10*time.Second)
		stack.Provider = NewRemoteProvider(client, cfg.Signals.RemoteURL, cfg.Signals.RemoteRPS)

	default:
		return nil, fmt.Errorf("unknown signal source %q", cfg.Signals.Source)
	}

	if cfg.Signals.BreakerEnabled {
		stack.Provider = NewBreakerProvider(stack.Provider, DefaultBreakerSettings(), log)
	}

	if deps.Redis != nil && deps.Redis.Enabled() && cfg.Signals.CacheTTL > 0 {
		cache := redis.NewCache(deps.Redis, "grocer")
		stack.Cached = NewCachedProvider(stack.Provider, cache, cfg.Signals.CacheTTL, log)
		stack.Provider = stack.Cached
	}

	log.WithFields(map[string]interface{}{
		"source":  cfg.Signals.Source,
		"breaker": cfg.Signals.BreakerEnabled,
		"cached":  stack.Cached != nil,
	}).Info("Signal provider ready")

	return stack, nil
}
