package handlers

import (
	"context"
	"errors"

	"github.com/wonny/grocer/internal/contracts"
	"github.com/wonny/grocer/internal/recommend"
	"github.com/wonny/grocer/internal/signals"
	"github.com/wonny/grocer/pkg/logger"
)

var errBoom = errors.New("boom")

func newService() *recommend.Service {
	return recommend.NewService(signals.NewMockProvider(nil, false), recommend.ServiceConfig{}, nil, logger.Nop())
}

// failingService always returns err
type failingService struct {
	err error
}

func (s failingService) Recommend(ctx context.Context, req recommend.Request) (*contracts.Recommendation, error) {
	return nil, s.err
}

// failingProvider fails every call
type failingProvider struct{}

func (failingProvider) FetchProductReviews(ctx context.Context, names []string) ([]contracts.ProductReview, error) {
	return nil, errBoom
}

func (failingProvider) FetchStoreMetrics(ctx context.Context) ([]contracts.StoreMetrics, error) {
	return nil, errBoom
}

func (failingProvider) AnalyzeMarketTrends(ctx context.Context, names []string) (*contracts.MarketTrendData, error) {
	return nil, errBoom
}

const threeStoresBody = `{
	"storeTotals": [
		{"store": "Walmart", "storeKey": "walmart", "total": "50.00"},
		{"store": "H-E-B", "storeKey": "heb", "total": "52.00"},
		{"store": "Target", "storeKey": "target", "total": "60.00"}
	],
	"substitutionCounts": {},
	"shoppingType": "pickup",
	"cartItems": [{"name": "milk", "quantity": 1}]
}`
