package signals

import (
	"context"
	"sync/atomic"

	"github.com/wonny/grocer/internal/contracts"
)

// countingProvider counts calls and fails while err is set.
type countingProvider struct {
	inner *MockProvider
	calls atomic.Int32
	err   error
}

func newCountingProvider() *countingProvider {
	return &countingProvider{inner: NewMockProvider(nil, false)}
}

func (p *countingProvider) FetchProductReviews(ctx context.Context, names []string) ([]contracts.ProductReview, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	return p.inner.FetchProductReviews(ctx, names)
}

func (p *countingProvider) FetchStoreMetrics(ctx context.Context) ([]contracts.StoreMetrics, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	return p.inner.FetchStoreMetrics(ctx)
}

func (p *countingProvider) AnalyzeMarketTrends(ctx context.Context, names []string) (*contracts.MarketTrendData, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	return p.inner.AnalyzeMarketTrends(ctx, names)
}
