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
	"github.com/wonny/grocer/pkg/logger"
)

// Request is one analysis invocation
type Request struct {
	StoreTotals        []contracts.StoreTotal
	SubstitutionCounts contracts.SubstitutionCounts
	ShoppingType       contracts.ShoppingType
	CartItems          []contracts.CartItem
	OnProgress         progress.Func
}

// StageError records which stage failed
type StageError struct {
	Stage progress.Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage.Label(), e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage returns the stage recorded in err, if any
func FailedStage(err error) (progress.Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return 0, false
}

// Recommender runs the five analysis stages and picks a store.
// It holds no per-call state; every call re-fetches signals.
// ⭐ SSOT: stage order and winner selection
type Recommender struct {
	provider contracts.SignalProvider // nil = offline, signal stages return nothing
	scorer   contracts.Scorer
	logger   *logger.Logger

	now   func() time.Time
	newID func() string
}

// NewRecommender creates a recommender over a signal provider
func NewRecommender(provider contracts.SignalProvider, scorer contracts.Scorer, log *logger.Logger) *Recommender {
	return &Recommender{
		provider: provider,
		scorer:   scorer,
		logger:   log,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// NewOfflineRecommender creates a recommender that skips signal fetches.
// Stages are still reported so progress UIs behave the same.
func NewOfflineRecommender(scorer contracts.Scorer, log *logger.Logger) *Recommender {
	return NewRecommender(nil, scorer, log)
}

// Strategy is the strategy of the underlying scorer
func (r *Recommender) Strategy() contracts.Strategy {
	return r.scorer.Strategy()
}

// Recommend scores every store and returns the winner.
// Requires at least one store; provider errors abort the run.
func (r *Recommender) Recommend(ctx context.Context, req Request) (*contracts.Recommendation, error) {
	if len(req.StoreTotals) == 0 {
		return nil, contracts.ErrNoStores
	}

	report := progress.OrNoop(req.OnProgress)
	analysisID := r.newID()
	log := r.logger.WithFields(map[string]interface{}{
		"analysis_id": analysisID,
		"strategy":    string(r.scorer.Strategy()),
	})

	log.WithFields(map[string]interface{}{
		"stores":        len(req.StoreTotals),
		"shopping_type": string(req.ShoppingType),
		"cart_items":    len(req.CartItems),
	}).Info("Starting analysis")

	// Stage 0: product reviews
	var reviews []contracts.ProductReview
	err := r.runStage(log, progress.StageReviews, report, func() error {
		if r.provider == nil {
			return nil
		}
		var err error
		reviews, err = r.provider.FetchProductReviews(ctx, contracts.CartItemNames(req.CartItems))
		return err
	})
	if err != nil {
		return nil, err
	}

	// Stage 1: store metrics
	var storeMetrics []contracts.StoreMetrics
	err = r.runStage(log, progress.StageMetrics, report, func() error {
		if r.provider == nil {
			return nil
		}
		var err error
		storeMetrics, err = r.provider.FetchStoreMetrics(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	// Stage 2: market trends
	var market *contracts.MarketTrendData
	err = r.runStage(log, progress.StageTrends, report, func() error {
		if r.provider == nil {
			return nil
		}
		var err error
		market, err = r.provider.AnalyzeMarketTrends(ctx, contracts.StoreNames(req.StoreTotals))
		return err
	})
	if err != nil {
		return nil, err
	}

	// Stage 3: score every store
	var ranking []contracts.StoreScore
	r.runLocalStage(log, progress.StageScoring, report, func() {
		ranking = r.scoreAll(req, storeMetrics, market)
	})

	// Stage 4: select + explain
	var rec *contracts.Recommendation
	r.runLocalStage(log, progress.StageRecommend, report, func() {
		winner := SelectWinner(ranking)
		rec = &contracts.Recommendation{
			RecommendedStore:  winner.Store,
			Reason:            BuildReason(winner, req.ShoppingType),
			Confidence:        winner.Factors.OverallScore,
			Factors:           winner.Factors,
			AnalysisID:        analysisID,
			Strategy:          r.scorer.Strategy(),
			ShoppingType:      req.ShoppingType,
			Ranking:           ranking,
			ReviewsConsidered: len(reviews),
			GeneratedAt:       r.now(),
		}
	})

	log.WithFields(map[string]interface{}{
		"store":      rec.RecommendedStore.Store,
		"confidence": rec.Confidence,
		"reviews":    rec.ReviewsConsidered,
	}).Info("Analysis completed")

	return rec, nil
}

func (r *Recommender) scoreAll(req Request, storeMetrics []contracts.StoreMetrics, market *contracts.MarketTrendData) []contracts.StoreScore {
	ranks := scoring.Ranks(req.StoreTotals)
	ranking := make([]contracts.StoreScore, len(req.StoreTotals))

	for i, st := range req.StoreTotals {
		subs := req.SubstitutionCounts.For(st.StoreKey)
		ranking[i] = contracts.StoreScore{
			Store: st,
			Factors: r.scorer.Score(contracts.ScoreInput{
				Store:             st,
				AllStores:         req.StoreTotals,
				Metrics:           contracts.MetricsFor(storeMetrics, st.Store),
				SubstitutionCount: subs,
				ShoppingType:      req.ShoppingType,
				Market:            market,
				Rank:              ranks[i],
			}),
			SubstitutionCount: subs,
		}
	}
	return ranking
}

// runStage reports the stage, runs fn and wraps any failure
func (r *Recommender) runStage(log *logger.Logger, stage progress.Stage, report progress.Func, fn func() error) error {
	report(int(stage))

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	metrics.StageDuration.WithLabelValues(stageLabel(stage)).Observe(elapsed.Seconds())

	if err != nil {
		if !errors.Is(err, contracts.ErrProviderFailure) {
			err = fmt.Errorf("%w: %w", contracts.ErrProviderFailure, err)
		}
		log.WithError(err).WithField("stage", stage.Label()).Error("Analysis stage failed")
		return &StageError{Stage: stage, Err: err}
	}

	stageCompleted(log, stage, elapsed)
	return nil
}

// runLocalStage reports and times a stage that makes no provider calls
func (r *Recommender) runLocalStage(log *logger.Logger, stage progress.Stage, report progress.Func, fn func()) {
	report(int(stage))

	start := time.Now()
	fn()
	elapsed := time.Since(start)
	metrics.StageDuration.WithLabelValues(stageLabel(stage)).Observe(elapsed.Seconds())

	stageCompleted(log, stage, elapsed)
}

func stageCompleted(log *logger.Logger, stage progress.Stage, elapsed time.Duration) {
	log.WithFields(map[string]interface{}{
		"stage":    stage.Label(),
		"duration": elapsed,
	}).Debug("Analysis stage completed")
}

// SelectWinner returns the store with the highest overall score.
// Only a strictly greater score replaces the current best, so ties go to
// the earlier store. ranking must not be empty.
func SelectWinner(ranking []contracts.StoreScore) contracts.StoreScore {
	best := ranking[0]
	for _, s := range ranking[1:] {
		if s.Factors.OverallScore > best.Factors.OverallScore {
			best = s
		}
	}
	return best
}

var stageNames = [progress.StageCount]string{"reviews", "metrics", "trends", "scoring", "recommend"}

// stageLabel is the metric label for a stage
func stageLabel(s progress.Stage) string {
	if s < 0 || int(s) >= progress.StageCount {
		return "unknown"
	}
	return stageNames[s]
}
