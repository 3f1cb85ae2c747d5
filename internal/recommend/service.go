package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/grocer/internal/contracts"
	"github.com/wonny/grocer/internal/metrics"
	"github.com/wonny/grocer/internal/progress"
	"github.com/wonny/grocer/internal/scoring"
	"github.com/wonny/grocer/pkg/config"
	"github.com/wonny/grocer/pkg/logger"
	"github.com/wonny/grocer/pkg/redis"
)

// ServiceConfig tunes fallback and caching
type ServiceConfig struct {
	FallbackMode string        // config.FallbackSimple or config.FallbackStatic
	CacheTTL     time.Duration // 0 disables the recommendation cache
}

// Service is the caller-side entry point used by the API and CLI.
// It validates input, serves cached results and degrades when signal
// providers fail: to the simple scorer, or to the static default.
// ⭐ SSOT: recommendation fallback policy
type Service struct {
	advanced *Recommender
	fallback *Recommender
	mode     string

	cache    *redis.Cache
	cacheTTL time.Duration

	now   func() time.Time
	newID func() string

	logger *logger.Logger
}

// NewService creates the service. cache may be nil.
func NewService(provider contracts.SignalProvider, cfg ServiceConfig, cache *redis.Cache, log *logger.Logger) *Service {
	mode := cfg.FallbackMode
	if mode == "" {
		mode = config.FallbackSimple
	}
	return &Service{
		advanced: NewRecommender(provider, scoring.NewAdvancedScorer(), log),
		fallback: NewOfflineRecommender(scoring.NewSimpleScorer(scoring.GlobalRand), log),
		mode:     mode,
		cache:    cache,
		cacheTTL: cfg.CacheTTL,
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   log,
	}
}

// Validate checks the request before any stage runs
func Validate(req Request) error {
	if len(req.StoreTotals) == 0 {
		return contracts.ErrNoStores
	}
	if !req.ShoppingType.Valid() {
		return fmt.Errorf("%w: %q", contracts.ErrInvalidShoppingType, req.ShoppingType)
	}
	for _, st := range req.StoreTotals {
		if err := st.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Recommend runs an analysis. Only invalid input and caller cancellation
// are returned as errors; provider failures degrade per the fallback mode.
func (s *Service) Recommend(ctx context.Context, req Request) (*contracts.Recommendation, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	report := progress.Monotonic(req.OnProgress)
	req.OnProgress = report

	key := redis.RecommendationKey(Fingerprint(req))
	if rec, ok := s.cached(ctx, key); ok {
		s.rebind(rec, req)
		for step := 0; step < progress.StageCount; step++ {
			report(step)
		}
		s.observe(rec)
		return rec, nil
	}

	rec, err := s.advanced.Recommend(ctx, req)
	if err == nil {
		s.store(ctx, key, rec)
		s.observe(rec)
		return rec, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if !errors.Is(err, contracts.ErrProviderFailure) {
		return nil, err
	}

	stage, _ := FailedStage(err)
	metrics.ProviderFailuresTotal.WithLabelValues(stageLabel(stage)).Inc()

	s.logger.WithError(err).WithFields(map[string]interface{}{
		"stage":    stage.Label(),
		"fallback": s.mode,
	}).Warn("Signal analysis failed, falling back")

	if s.mode == config.FallbackStatic {
		rec = DefaultRecommendation(req.StoreTotals, req.ShoppingType)
		for step := 0; step < progress.StageCount; step++ {
			report(step)
		}
	} else {
		rec, err = s.fallback.Recommend(ctx, req)
		if err != nil {
			return nil, err
		}
	}

	s.observe(rec)
	return rec, nil
}

func (s *Service) cached(ctx context.Context, key string) (*contracts.Recommendation, bool) {
	if s.cache == nil || s.cacheTTL <= 0 || !s.cache.Enabled() {
		return nil, false
	}

	var rec contracts.Recommendation
	found, err := s.cache.Get(ctx, key, &rec)
	switch {
	case err != nil:
		metrics.CacheLookupsTotal.WithLabelValues("recommendation", "error").Inc()
		s.logger.WithError(err).Warn("Recommendation cache read failed")
		return nil, false
	case !found:
		metrics.CacheLookupsTotal.WithLabelValues("recommendation", "miss").Inc()
		return nil, false
	}

	metrics.CacheLookupsTotal.WithLabelValues("recommendation", "hit").Inc()
	return &rec, true
}

// rebind makes a cached result answer this request: stores come from the
// request and the analysis gets its own ID and timestamp.
func (s *Service) rebind(rec *contracts.Recommendation, req Request) {
	winner := -1
	for i := range rec.Ranking {
		if winner < 0 && rec.Ranking[i].Store.StoreKey == rec.RecommendedStore.StoreKey {
			winner = i
		}
		if i < len(req.StoreTotals) {
			rec.Ranking[i].Store = req.StoreTotals[i]
		}
	}
	if winner >= 0 && winner < len(req.StoreTotals) {
		rec.RecommendedStore = req.StoreTotals[winner]
	}

	rec.AnalysisID = s.newID()
	rec.GeneratedAt = s.now()
}

// store caches advanced results only; fallback answers are not reusable
func (s *Service) store(ctx context.Context, key string, rec *contracts.Recommendation) {
	if s.cache == nil || s.cacheTTL <= 0 || rec.Strategy != contracts.StrategyAdvanced {
		return
	}
	if err := s.cache.Set(ctx, key, rec, s.cacheTTL); err != nil {
		s.logger.WithError(err).Warn("Recommendation cache write failed")
	}
}

func (s *Service) observe(rec *contracts.Recommendation) {
	metrics.RecommendationsTotal.WithLabelValues(string(rec.Strategy)).Inc()
	metrics.RecommendationConfidence.Observe(float64(rec.Confidence))
}
