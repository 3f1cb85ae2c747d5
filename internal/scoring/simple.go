package scoring

import (
	"math"
	"math/rand/v2"
	"sync"

	"github.com/wonny/grocer/internal/contracts"
	"github.com/wonny/grocer/internal/signals"
)

// RandSource supplies jitter in [0,1).
type RandSource interface {
	Float64() float64
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

// GlobalRand draws from the process-wide generator.
var GlobalRand RandSource = globalRand{}

const (
	maxJitter          = 5.0
	simplePenalty      = 5.0
	defaultReviewScore = 4.0
	defaultTypeBonus   = 5.0
)

// reviewScores is the per-chain review rating (out of 5)
var reviewScores = map[string]float64{
	signals.StoreWalmart:  4.1,
	signals.StoreHEB:      4.6,
	signals.StoreTarget:   4.3,
	signals.StoreKroger:   4.2,
	signals.StoreAldi:     4.4,
	signals.StoreSamsClub: 4.0,
}

// typeBonuses are flat points per fulfillment type; chains not listed get 5
var typeBonuses = map[contracts.ShoppingType]map[string]float64{
	contracts.ShoppingPickup: {
		signals.StoreHEB:     15,
		signals.StoreWalmart: 10,
		signals.StoreTarget:  8,
	},
	contracts.ShoppingDelivery: {
		signals.StoreWalmart: 10,
		signals.StoreTarget:  10,
		signals.StoreKroger:  8,
	},
	contracts.ShoppingInStore: {
		signals.StoreAldi: 10,
		signals.StoreHEB:  8,
	},
}

// SimpleScorer is the rank-based fallback used without live signals.
// Jitter makes results vary run to run so the same store does not always
// win; pass a nil RandSource for reproducible output.
type SimpleScorer struct {
	mu  sync.Mutex
	rnd RandSource
}

// NewSimpleScorer creates the fallback scorer
func NewSimpleScorer(rnd RandSource) *SimpleScorer {
	return &SimpleScorer{rnd: rnd}
}

// Strategy implements contracts.Scorer
func (s *SimpleScorer) Strategy() contracts.Strategy {
	return contracts.StrategySimple
}

// Score implements contracts.Scorer. Metrics and market data are ignored.
func (s *SimpleScorer) Score(in contracts.ScoreInput) contracts.ScoreBreakdown {
	chain := signals.CanonicalChain(in.Store.Store, in.Store.StoreKey)

	points := rankPoints(in.Rank)

	rating, ok := reviewScores[chain]
	if !ok {
		rating = defaultReviewScore
	}

	bonus, ok := typeBonuses[in.ShoppingType][chain]
	if !ok {
		bonus = defaultTypeBonus
	}

	subs := float64(in.SubstitutionCount)
	overall := points + rating*6 + bonus + s.jitter() - subs*simplePenalty

	return contracts.ScoreBreakdown{
		PriceScore:       roundHalfUp(points / 40 * 100),
		QualityScore:     roundHalfUp(rating * 20),
		ReliabilityScore: roundHalfUp(math.Max(0, 100-subs*10)),
		ConvenienceScore: roundHalfUp(50 + bonus*2),
		OverallScore:     roundHalfUp(overall),
	}
}

// rankPoints: cheapest 40, second 35, third 25, then 20 minus 5 per rank
func rankPoints(rank int) float64 {
	switch rank {
	case 0:
		return 40
	case 1:
		return 35
	case 2:
		return 25
	default:
		return math.Max(0, 20-5*float64(rank))
	}
}

func (s *SimpleScorer) jitter() float64 {
	if s.rnd == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64() * maxJitter
}
