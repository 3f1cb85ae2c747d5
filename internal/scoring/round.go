package scoring

import (
	"math"
	"sort"

	"github.com/wonny/grocer/internal/contracts"
)

// roundHalfUp rounds to the nearest integer, .5 toward +Inf (-2.5 → -2).
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// Ranks returns each store's 0-based position when ordered by ascending
// total. Equal totals keep input order.
func Ranks(totals []contracts.StoreTotal) []int {
	idx := make([]int, len(totals))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return totals[idx[a]].Total.LessThan(totals[idx[b]].Total)
	})

	ranks := make([]int, len(totals))
	for rank, i := range idx {
		ranks[i] = rank
	}
	return ranks
}

// ForSignals picks the scorer for the data at hand: advanced when live
// signal data is available, otherwise the rank-based fallback.
func ForSignals(available bool, rnd RandSource) contracts.Scorer {
	if available {
		return NewAdvancedScorer()
	}
	return NewSimpleScorer(rnd)
}
