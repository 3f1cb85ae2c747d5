package signals

import (
	"context"
	"time"

	"github.com/wonny/grocer/internal/contracts"
	"github.com/wonny/grocer/internal/metrics"
	"github.com/wonny/grocer/pkg/logger"
	"github.com/wonny/grocer/pkg/redis"
)

// CachedProvider is a Redis read-through cache in front of a provider.
// Cache errors are logged and bypassed; only the inner provider can fail a call.
type CachedProvider struct {
	next  contracts.SignalProvider
	cache *redis.Cache
	ttl   time.Duration
	log   *logger.Logger
}

// NewCachedProvider wraps next
func NewCachedProvider(next contracts.SignalProvider, cache *redis.Cache, ttl time.Duration, log *logger.Logger) *CachedProvider {
	if ttl <= 0 {
		ttl = redis.TTLMedium
	}
	return &CachedProvider{next: next, cache: cache, ttl: ttl, log: log}
}

// FetchProductReviews caches per normalized name set
func (p *CachedProvider) FetchProductReviews(ctx context.Context, productNames []string) ([]contracts.ProductReview, error) {
	key := redis.ProductReviewsKey(productNames)

	var reviews []contracts.ProductReview
	if p.lookup(ctx, key, &reviews) {
		return reviews, nil
	}

	reviews, err := p.next.FetchProductReviews(ctx, productNames)
	if err != nil {
		return nil, err
	}
	p.store(ctx, key, reviews)
	return reviews, nil
}

// FetchStoreMetrics caches the whole table under one key
func (p *CachedProvider) FetchStoreMetrics(ctx context.Context) ([]contracts.StoreMetrics, error) {
	key := redis.StoreMetricsKey()

	var m []contracts.StoreMetrics
	if p.lookup(ctx, key, &m) {
		return m, nil
	}

	m, err := p.next.FetchStoreMetrics(ctx)
	if err != nil {
		return nil, err
	}
	p.store(ctx, key, m)
	return m, nil
}

// AnalyzeMarketTrends caches under one key; trends are never filtered by store
func (p *CachedProvider) AnalyzeMarketTrends(ctx context.Context, storeNames []string) (*contracts.MarketTrendData, error) {
	key := redis.MarketTrendsKey()

	var t contracts.MarketTrendData
	if p.lookup(ctx, key, &t) {
		return &t, nil
	}

	fresh, err := p.next.AnalyzeMarketTrends(ctx, storeNames)
	if err != nil {
		return nil, err
	}
	p.store(ctx, key, fresh)
	return fresh, nil
}

// Refresh re-fetches store metrics and trends from the inner provider and
// overwrites the cached copies.
func (p *CachedProvider) Refresh(ctx context.Context) error {
	m, err := p.next.FetchStoreMetrics(ctx)
	if err != nil {
		return err
	}
	if err := p.cache.Set(ctx, redis.StoreMetricsKey(), m, p.ttl); err != nil {
		return err
	}

	t, err := p.next.AnalyzeMarketTrends(ctx, contracts.StoreNamesFromMetrics(m))
	if err != nil {
		return err
	}
	return p.cache.Set(ctx, redis.MarketTrendsKey(), t, p.ttl)
}

func (p *CachedProvider) lookup(ctx context.Context, key string, dest interface{}) bool {
	if !p.cache.Enabled() {
		return false
	}

	found, err := p.cache.Get(ctx, key, dest)
	switch {
	case err != nil:
		metrics.CacheLookupsTotal.WithLabelValues("signals", "error").Inc()
		p.log.WithError(err).WithField("key", key).Warn("Signal cache read failed")
		return false
	case found:
		metrics.CacheLookupsTotal.WithLabelValues("signals", "hit").Inc()
		return true
	default:
		metrics.CacheLookupsTotal.WithLabelValues("signals", "miss").Inc()
		return false
	}
}

func (p *CachedProvider) store(ctx context.Context, key string, value interface{}) {
	if err := p.cache.Set(ctx, key, value, p.ttl); err != nil {
		p.log.WithError(err).WithField("key", key).Warn("Signal cache write failed")
	}
}
