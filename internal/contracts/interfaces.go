package contracts

import (
	"context"
	"errors"
)

var (
	// ErrProviderFailure wraps any signal provider error.
	ErrProviderFailure = errors.New("signal provider failure")

	// ErrNoStores is returned when an analysis is requested for zero stores.
	ErrNoStores = errors.New("no store totals to compare")

	// ErrInvalidStoreTotal marks malformed store totals.
	ErrInvalidStoreTotal = errors.New("invalid store total")

	// ErrInvalidShoppingType marks an unknown fulfillment mode.
	ErrInvalidShoppingType = errors.New("invalid shopping type")
)

// SignalProvider supplies the auxiliary data used by the scorer.
// Implementations either succeed with a best-effort dataset or fail with an
// error wrapping ErrProviderFailure.
// ⭐ SSOT: signal provider interface
type SignalProvider interface {
	FetchProductReviews(ctx context.Context, productNames []string) ([]ProductReview, error)
	FetchStoreMetrics(ctx context.Context) ([]StoreMetrics, error)
	AnalyzeMarketTrends(ctx context.Context, storeNames []string) (*MarketTrendData, error)
}

// Scorer computes the breakdown for one store.
type Scorer interface {
	Strategy() Strategy
	Score(in ScoreInput) ScoreBreakdown
}
