package scoring

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/wonny/grocer/internal/contracts"
	"github.com/wonny/grocer/internal/signals"
)

// Weights of the advanced formulation. Fixed design constants.
const (
	WeightPrice       = 0.35
	WeightQuality     = 0.25
	WeightReliability = 0.25
	WeightConvenience = 0.15
)

// Fallbacks when a store has no metrics or market entry.
const (
	defaultQualityScore    = 50.0
	defaultReliability     = 50.0
	defaultDeliveryMinutes = 60
	defaultDemand          = 0.5

	baseConvenience     = 50.0
	pickupBonusHEB      = 20.0
	trendBonus          = 10.0
	demandBonusScale    = 20.0
	substitutionPenalty = 10.0
)

// AdvancedScorer scores a store from price, store metrics, fulfillment type,
// pending substitutions and market data. Deterministic.
// ⭐ SSOT: primary scoring formula
type AdvancedScorer struct{}

// NewAdvancedScorer creates the metrics-based scorer
func NewAdvancedScorer() *AdvancedScorer {
	return &AdvancedScorer{}
}

// Strategy implements contracts.Scorer
func (s *AdvancedScorer) Strategy() contracts.Strategy {
	return contracts.StrategyAdvanced
}

// Score implements contracts.Scorer
func (s *AdvancedScorer) Score(in contracts.ScoreInput) contracts.ScoreBreakdown {
	price := priceScore(in.Store.Total, in.AllStores)

	quality := defaultQualityScore
	if in.Metrics != nil {
		quality = in.Metrics.ProductQuality * 25
	}

	subs := float64(in.SubstitutionCount)

	reliability := math.Max(0, defaultReliability-subs*substitutionPenalty)
	if in.Metrics != nil {
		// Not clamped; heavy substitutions drive it negative.
		reliability = in.Metrics.DeliveryReliability*50 - subs*substitutionPenalty
	}

	convenience := convenienceScore(in)

	var trend float64
	if in.Market.IsTrending(in.Store.Store) {
		trend = trendBonus
	}
	demand, ok := in.Market.Demand(in.Store.Store)
	if !ok {
		demand = defaultDemand
	}

	overall := price*WeightPrice +
		quality*WeightQuality +
		reliability*WeightReliability +
		convenience*WeightConvenience +
		trend + demand*demandBonusScale

	return contracts.ScoreBreakdown{
		PriceScore:       roundHalfUp(price),
		QualityScore:     roundHalfUp(quality),
		ReliabilityScore: roundHalfUp(reliability),
		ConvenienceScore: roundHalfUp(convenience),
		OverallScore:     roundHalfUp(overall),
	}
}

// priceScore decays linearly from 100 at the cheapest store, reaching 0 at
// twice the cheapest total. A zero minimum gives every store 100.
func priceScore(total decimal.Decimal, all []contracts.StoreTotal) float64 {
	minPrice := total
	if len(all) > 0 {
		minPrice = contracts.MinTotal(all)
	}
	if minPrice.IsZero() {
		return 100
	}

	pct := total.Sub(minPrice).Div(minPrice).Mul(decimal.NewFromInt(100)).InexactFloat64()
	return math.Max(0, 100-pct)
}

func convenienceScore(in contracts.ScoreInput) float64 {
	switch in.ShoppingType {
	case contracts.ShoppingDelivery:
		minutes := defaultDeliveryMinutes
		if in.Metrics != nil {
			minutes = in.Metrics.AvgDeliveryTime
		}
		// Replaces the base score.
		return math.Max(0, 100-float64(minutes-30))
	case contracts.ShoppingPickup:
		if signals.CanonicalChain(in.Store.Store, in.Store.StoreKey) == signals.StoreHEB {
			return baseConvenience + pickupBonusHEB
		}
	}
	return baseConvenience
}
