package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/grocer/internal/contracts"
	"github.com/wonny/grocer/internal/progress"
	"github.com/wonny/grocer/internal/signals"
	"github.com/wonny/grocer/pkg/config"
	"github.com/wonny/grocer/pkg/logger"
	"github.com/wonny/grocer/pkg/redis"
)

func newTestService(provider contracts.SignalProvider, mode string) *Service {
	cache := redis.NewCache(redis.Disabled(), "grocer")
	return NewService(provider, ServiceConfig{FallbackMode: mode, CacheTTL: redis.TTLShort}, cache, logger.Nop())
}

// newCachedTestService backs the recommendation cache with miniredis
func newCachedTestService(t *testing.T, provider contracts.SignalProvider, mode string) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := redis.New(context.Background(), &config.Config{
		Redis: config.RedisConfig{Host: mr.Host(), Port: mr.Port(), Enabled: true},
	})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	s := NewService(provider, ServiceConfig{FallbackMode: mode, CacheTTL: redis.TTLShort}, redis.NewCache(client, "grocer"), logger.Nop())
	s.now = func() time.Time { return fixedTime.Add(time.Hour) }
	s.newID = func() string { return "cached-1" }
	return s, mr
}

func storeSplit(t *testing.T, subtotal, fees string) Request {
	t.Helper()
	heb, err := contracts.NewStoreTotal("H-E-B", "heb", subtotal, fees)
	require.NoError(t, err)
	walmart, err := contracts.NewStoreTotal("Walmart", "walmart", "55.00", "3.00")
	require.NoError(t, err)
	return Request{
		StoreTotals:  []contracts.StoreTotal{walmart, heb},
		ShoppingType: contracts.ShoppingPickup,
	}
}

func TestService_Advanced(t *testing.T) {
	s := newTestService(signals.NewMockProvider(nil, false), config.FallbackSimple)

	got, err := s.Recommend(context.Background(), Request{
		StoreTotals:  threeStores(),
		ShoppingType: contracts.ShoppingPickup,
	})
	require.NoError(t, err)
	assert.Equal(t, contracts.StrategyAdvanced, got.Strategy)
	assert.Equal(t, "H-E-B", got.RecommendedStore.Store)
}

func TestService_SimpleFallback(t *testing.T) {
	var rec progress.Recorder
	provider := &fakeProvider{fails: true, failAt: progress.StageTrends}
	s := newTestService(provider, config.FallbackSimple)

	got, err := s.Recommend(context.Background(), Request{
		StoreTotals:  threeStores(),
		ShoppingType: contracts.ShoppingPickup,
		OnProgress:   rec.Report,
	})
	require.NoError(t, err)

	assert.Equal(t, contracts.StrategySimple, got.Strategy)
	assert.Len(t, got.Ranking, 3)
	assert.NotEmpty(t, got.Reason)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, rec.Steps())
}

func TestService_StaticFallback(t *testing.T) {
	var rec progress.Recorder
	provider := &fakeProvider{fails: true, failAt: progress.StageReviews}
	s := newTestService(provider, config.FallbackStatic)

	got, err := s.Recommend(context.Background(), Request{
		StoreTotals:  threeStores(),
		ShoppingType: contracts.ShoppingDelivery,
		OnProgress:   rec.Report,
	})
	require.NoError(t, err)

	assert.Equal(t, contracts.StrategyDefault, got.Strategy)
	assert.Equal(t, "Walmart", got.RecommendedStore.Store)
	assert.Equal(t, 85, got.Confidence)
	assert.Equal(t, contracts.ScoreBreakdown{
		PriceScore:       85,
		QualityScore:     80,
		ReliabilityScore: 90,
		ConvenienceScore: 85,
		OverallScore:     85,
	}, got.Factors)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, rec.Steps())
}

func TestService_ValidationErrors(t *testing.T) {
	s := newTestService(signals.NewMockProvider(nil, false), config.FallbackStatic)
	ctx := context.Background()

	_, err := s.Recommend(ctx, Request{ShoppingType: contracts.ShoppingPickup})
	assert.ErrorIs(t, err, contracts.ErrNoStores)

	_, err = s.Recommend(ctx, Request{StoreTotals: threeStores(), ShoppingType: "drone"})
	assert.ErrorIs(t, err, contracts.ErrInvalidShoppingType)

	bad := threeStores()
	bad[1] = total("H-E-B", "heb", "-1")
	_, err = s.Recommend(ctx, Request{StoreTotals: bad, ShoppingType: contracts.ShoppingPickup})
	assert.ErrorIs(t, err, contracts.ErrInvalidStoreTotal)
}

func TestService_CancelledContextDoesNotFallBack(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := &fakeProvider{fails: true, failAt: progress.StageReviews, err: context.Canceled}
	s := newTestService(provider, config.FallbackStatic)

	got, err := s.Recommend(ctx, Request{StoreTotals: threeStores(), ShoppingType: contracts.ShoppingPickup})
	assert.Nil(t, got)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultRecommendation(t *testing.T) {
	got := DefaultRecommendation(threeStores()[2:], contracts.ShoppingInStore)

	assert.Equal(t, "Target", got.RecommendedStore.Store)
	assert.Equal(t, 85, got.Confidence)
	assert.NotEmpty(t, got.AnalysisID)
	assert.Contains(t, got.Reason, "Target")
}

func TestService_CacheMissThenHit(t *testing.T) {
	provider := &countingProvider{SignalProvider: signals.NewMockProvider(nil, false)}
	s, mr := newCachedTestService(t, provider, config.FallbackSimple)
	s.advanced.newID = sequentialIDs()
	ctx := context.Background()
	req := Request{StoreTotals: threeStores(), ShoppingType: contracts.ShoppingPickup}

	first, err := s.Recommend(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.analyses)
	assert.Equal(t, "analysis-1", first.AnalysisID)

	key := "grocer:cache:" + redis.RecommendationKey(Fingerprint(req))
	require.True(t, mr.Exists(key))
	assert.Equal(t, redis.TTLShort, mr.TTL(key))

	var rec progress.Recorder
	req.OnProgress = rec.Report
	second, err := s.Recommend(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, 1, provider.analyses, "hit must not reach the provider")
	assert.Equal(t, []int{0, 1, 2, 3, 4}, rec.Steps())
	assert.Equal(t, "cached-1", second.AnalysisID)
	assert.Equal(t, fixedTime.Add(time.Hour), second.GeneratedAt)
	assert.Equal(t, first.RecommendedStore.Store, second.RecommendedStore.Store)
	assert.Equal(t, first.Confidence, second.Confidence)
	assert.Equal(t, first.Factors, second.Factors)
	assert.Equal(t, contracts.StrategyAdvanced, second.Strategy)
}

func TestService_CacheKeepsFeeSplitsApart(t *testing.T) {
	provider := &countingProvider{SignalProvider: signals.NewMockProvider(nil, false)}
	s, _ := newCachedTestService(t, provider, config.FallbackSimple)
	ctx := context.Background()

	_, err := s.Recommend(ctx, storeSplit(t, "48.00", "4.00"))
	require.NoError(t, err)

	got, err := s.Recommend(ctx, storeSplit(t, "50.00", "2.00"))
	require.NoError(t, err)

	assert.Equal(t, 2, provider.analyses)
	require.Len(t, got.Ranking, 2)
	assert.Equal(t, "50", got.Ranking[1].Store.Subtotal.String())
	assert.Equal(t, "2", got.Ranking[1].Store.TaxesAndFees.String())
}

func TestService_CacheHitUsesRequestStores(t *testing.T) {
	provider := &countingProvider{SignalProvider: signals.NewMockProvider(nil, false)}
	s, _ := newCachedTestService(t, provider, config.FallbackSimple)
	ctx := context.Background()

	stale, err := s.advanced.Recommend(ctx, storeSplit(t, "48.00", "4.00"))
	require.NoError(t, err)
	require.Equal(t, "H-E-B", stale.RecommendedStore.Store)

	// an entry written for another fee split is served with this request's stores
	req := storeSplit(t, "50.00", "2.00")
	require.NoError(t, s.cache.Set(ctx, redis.RecommendationKey(Fingerprint(req)), stale, redis.TTLShort))
	before := provider.analyses

	got, err := s.Recommend(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, before, provider.analyses)
	assert.Equal(t, "H-E-B", got.RecommendedStore.Store)
	assert.Equal(t, "50", got.RecommendedStore.Subtotal.String())
	assert.Equal(t, "2", got.RecommendedStore.TaxesAndFees.String())
	assert.Equal(t, req.StoreTotals[0], got.Ranking[0].Store)
	assert.Equal(t, req.StoreTotals[1], got.Ranking[1].Store)
	assert.Equal(t, "cached-1", got.AnalysisID)
	assert.NotEqual(t, stale.AnalysisID, got.AnalysisID)
	assert.Equal(t, fixedTime.Add(time.Hour), got.GeneratedAt)
}

func TestService_FallbackResultsNotCached(t *testing.T) {
	tests := []struct {
		name string
		mode string
	}{
		{"simple", config.FallbackSimple},
		{"static", config.FallbackStatic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeProvider{fails: true, failAt: progress.StageTrends}
			s, mr := newCachedTestService(t, provider, tt.mode)

			got, err := s.Recommend(context.Background(), Request{
				StoreTotals:  threeStores(),
				ShoppingType: contracts.ShoppingPickup,
			})
			require.NoError(t, err)
			assert.NotEqual(t, contracts.StrategyAdvanced, got.Strategy)
			assert.Empty(t, mr.Keys())
		})
	}
}

func TestService_CorruptCacheEntryIsMiss(t *testing.T) {
	provider := &countingProvider{SignalProvider: signals.NewMockProvider(nil, false)}
	s, mr := newCachedTestService(t, provider, config.FallbackSimple)
	req := Request{StoreTotals: threeStores(), ShoppingType: contracts.ShoppingPickup}

	require.NoError(t, mr.Set("grocer:cache:"+redis.RecommendationKey(Fingerprint(req)), "{"))

	got, err := s.Recommend(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.analyses)
	assert.Equal(t, contracts.StrategyAdvanced, got.Strategy)
}
