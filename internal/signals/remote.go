package signals

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"github.com/wonny/grocer/internal/contracts"
	"github.com/wonny/grocer/pkg/httputil"
)

// Remote signal endpoints, relative to the base URL. A grocer API instance
// serves the same paths.
const (
	remoteStoresPath  = "/api/signals/stores"
	remoteTrendsPath  = "/api/signals/trends"
	remoteReviewsPath = "/api/signals/reviews"
)

// RemoteProvider fetches signal datasets from a remote HTTP service.
// Requests are throttled client-side; retries come from httputil.
type RemoteProvider struct {
	client  *httputil.Client
	baseURL string
	limiter *rate.Limiter
}

// NewRemoteProvider creates a provider for baseURL allowing rps requests
// per second (burst equal to rps, minimum 1).
func NewRemoteProvider(client *httputil.Client, baseURL string, rps float64) *RemoteProvider {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &RemoteProvider{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// FetchProductReviews queries reviews for every name as repeated q params.
func (p *RemoteProvider) FetchProductReviews(ctx context.Context, productNames []string) ([]contracts.ProductReview, error) {
	q := url.Values{}
	for _, n := range productNames {
		if n = strings.TrimSpace(n); n != "" {
			q.Add("q", n)
		}
	}
	if len(q) == 0 {
		return []contracts.ProductReview{}, nil
	}

	reviews := make([]contracts.ProductReview, 0)
	if err := p.get(ctx, remoteReviewsPath+"?"+q.Encode(), &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// FetchStoreMetrics fetches the store metrics table
func (p *RemoteProvider) FetchStoreMetrics(ctx context.Context) ([]contracts.StoreMetrics, error) {
	var metrics []contracts.StoreMetrics
	if err := p.get(ctx, remoteStoresPath, &metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

// AnalyzeMarketTrends fetches the full trend dataset
func (p *RemoteProvider) AnalyzeMarketTrends(ctx context.Context, storeNames []string) (*contracts.MarketTrendData, error) {
	var trends contracts.MarketTrendData
	if err := p.get(ctx, remoteTrendsPath, &trends); err != nil {
		return nil, err
	}
	return &trends, nil
}

func (p *RemoteProvider) get(ctx context.Context, path string, dest interface{}) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: rate limiter: %w", contracts.ErrProviderFailure, err)
	}
	if err := p.client.GetJSON(ctx, p.baseURL+path, dest); err != nil {
		return fmt.Errorf("%w: GET %s: %w", contracts.ErrProviderFailure, path, err)
	}
	return nil
}
