package signals

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/wonny/grocer/internal/contracts"
)

// Simulated network latency windows per call.
var (
	reviewsLatency = latencyWindow{200 * time.Millisecond, 600 * time.Millisecond}
	metricsLatency = latencyWindow{200 * time.Millisecond, 700 * time.Millisecond}
	trendsLatency  = latencyWindow{200 * time.Millisecond, 700 * time.Millisecond}
)

type latencyWindow struct {
	min time.Duration
	max time.Duration
}

// LatencyFunc picks a delay within [min, max).
type LatencyFunc func(min, max time.Duration) time.Duration

// RandomLatency draws uniformly from the window.
func RandomLatency(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int64N(int64(max-min)))
}

// NoLatency returns immediately.
func NoLatency(time.Duration, time.Duration) time.Duration { return 0 }

// MockProvider serves the canned catalog with simulated latency.
// It never fails except on context cancellation.
type MockProvider struct {
	catalog *Catalog
	latency LatencyFunc
}

// NewMockProvider creates a provider over catalog (DefaultCatalog when nil).
func NewMockProvider(catalog *Catalog, simulateLatency bool) *MockProvider {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	p := &MockProvider{catalog: catalog, latency: NoLatency}
	if simulateLatency {
		p.latency = RandomLatency
	}
	return p
}

// WithLatency overrides the latency source.
func (p *MockProvider) WithLatency(fn LatencyFunc) *MockProvider {
	if fn == nil {
		fn = NoLatency
	}
	p.latency = fn
	return p
}

// Catalog returns the backing catalog.
func (p *MockProvider) Catalog() *Catalog {
	return p.catalog
}

// FetchProductReviews returns catalog reviews matching any requested name.
func (p *MockProvider) FetchProductReviews(ctx context.Context, productNames []string) ([]contracts.ProductReview, error) {
	if err := p.wait(ctx, reviewsLatency); err != nil {
		return nil, err
	}
	return p.catalog.Reviews(productNames), nil
}

// FetchStoreMetrics returns metrics for every chain in the catalog.
func (p *MockProvider) FetchStoreMetrics(ctx context.Context) ([]contracts.StoreMetrics, error) {
	if err := p.wait(ctx, metricsLatency); err != nil {
		return nil, err
	}
	return p.catalog.Metrics(), nil
}

// AnalyzeMarketTrends returns the full trend dataset. storeNames is not
// used to filter the result.
func (p *MockProvider) AnalyzeMarketTrends(ctx context.Context, storeNames []string) (*contracts.MarketTrendData, error) {
	if err := p.wait(ctx, trendsLatency); err != nil {
		return nil, err
	}
	return p.catalog.Trends(), nil
}

func (p *MockProvider) wait(ctx context.Context, w latencyWindow) error {
	d := p.latency(w.min, w.max)
	if d <= 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", contracts.ErrProviderFailure, err)
		}
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", contracts.ErrProviderFailure, ctx.Err())
	case <-timer.C:
		return nil
	}
}
