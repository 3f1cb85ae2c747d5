package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wonny/grocer/internal/contracts"
	"github.com/wonny/grocer/internal/progress"
)

var errBoom = errors.New("boom")

// fakeProvider serves fixed data and can fail at one stage.
type fakeProvider struct {
	metrics []contracts.StoreMetrics
	trends  *contracts.MarketTrendData
	reviews []contracts.ProductReview
	failAt  progress.Stage
	fails   bool
	err     error
}

func (p *fakeProvider) fail(stage progress.Stage) error {
	if p.fails && p.failAt == stage {
		if p.err != nil {
			return p.err
		}
		return errBoom
	}
	return nil
}

func (p *fakeProvider) FetchProductReviews(ctx context.Context, names []string) ([]contracts.ProductReview, error) {
	if err := p.fail(progress.StageReviews); err != nil {
		return nil, err
	}
	return p.reviews, nil
}

func (p *fakeProvider) FetchStoreMetrics(ctx context.Context) ([]contracts.StoreMetrics, error) {
	if err := p.fail(progress.StageMetrics); err != nil {
		return nil, err
	}
	return p.metrics, nil
}

func (p *fakeProvider) AnalyzeMarketTrends(ctx context.Context, names []string) (*contracts.MarketTrendData, error) {
	if err := p.fail(progress.StageTrends); err != nil {
		return nil, err
	}
	return p.trends, nil
}

// fixedScorer returns a preset breakdown per store key.
type fixedScorer map[string]contracts.ScoreBreakdown

func (s fixedScorer) Strategy() contracts.Strategy { return contracts.StrategyAdvanced }

func (s fixedScorer) Score(in contracts.ScoreInput) contracts.ScoreBreakdown {
	return s[in.Store.StoreKey]
}

func total(name, key, amount string) contracts.StoreTotal {
	return contracts.StoreTotal{Store: name, StoreKey: key, Total: decimal.RequireFromString(amount)}
}

func threeStores() []contracts.StoreTotal {
	return []contracts.StoreTotal{
		total("Walmart", "walmart", "50.00"),
		total("H-E-B", "heb", "52.00"),
		total("Target", "target", "60.00"),
	}
}

var fixedTime = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

// pin makes AnalysisID and GeneratedAt reproducible
func pin(r *Recommender) *Recommender {
	r.now = func() time.Time { return fixedTime }
	r.newID = func() string { return "analysis-1" }
	return r
}

// countingProvider counts store metric fetches, one per advanced analysis.
type countingProvider struct {
	contracts.SignalProvider
	analyses int
}

func (p *countingProvider) FetchStoreMetrics(ctx context.Context) ([]contracts.StoreMetrics, error) {
	p.analyses++
	return p.SignalProvider.FetchStoreMetrics(ctx)
}

// sequentialIDs returns analysis-1, analysis-2, ...
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("analysis-%d", n)
	}
}
