package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wonny/grocer/internal/contracts"
	"github.com/wonny/grocer/internal/scheduler"
	"github.com/wonny/grocer/internal/signals"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// every command prints through these helpers
// ═══════════════════════════════════════════════════════════

// PrintHeader prints a formatted section header
func PrintHeader(title string) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  %s\n", title)
	PrintSeparator()
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintWarning prints a warning message
func PrintWarning(message string) {
	fmt.Println()
	fmt.Printf("⚠️  %s\n", message)
	fmt.Println()
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Println()
	fmt.Printf("✅ %s\n", message)
}

// PrintRecommendation prints the winner, its factors and the full ranking
func PrintRecommendation(rec *contracts.Recommendation) {
	PrintHeader("Recommendation")
	fmt.Printf("  Store      : %s ($%s)\n", rec.RecommendedStore.Store, rec.RecommendedStore.Total.StringFixed(2))
	fmt.Printf("  Confidence : %d\n", rec.Confidence)
	fmt.Printf("  Strategy   : %s\n", rec.Strategy)
	fmt.Printf("  Reviews    : %d considered\n", rec.ReviewsConsidered)
	PrintSeparator()
	fmt.Printf("  %s\n", rec.Reason)

	if len(rec.Ranking) == 0 {
		PrintDoubleSeparator()
		return
	}

	PrintSeparator()
	fmt.Print(formatRanking(rec))
	PrintDoubleSeparator()
}

// formatRanking renders the ranking table, best overall first
func formatRanking(rec *contracts.Recommendation) string {
	ranking := make([]contracts.StoreScore, len(rec.Ranking))
	copy(ranking, rec.Ranking)
	sort.SliceStable(ranking, func(i, j int) bool {
		return ranking[i].Factors.OverallScore > ranking[j].Factors.OverallScore
	})

	var b strings.Builder
	fmt.Fprintf(&b, "  %-14s %9s %6s %6s %6s %6s %7s\n", "Store", "Total", "Price", "Qual", "Reli", "Conv", "Overall")
	for _, s := range ranking {
		marker := " "
		if s.Store.StoreKey == rec.RecommendedStore.StoreKey {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s %-14s %9s %6d %6d %6d %6d %7d\n",
			marker,
			truncate(s.Store.Store, 14),
			"$"+s.Store.Total.StringFixed(2),
			s.Factors.PriceScore,
			s.Factors.QualityScore,
			s.Factors.ReliabilityScore,
			s.Factors.ConvenienceScore,
			s.Factors.OverallScore,
		)
	}
	return b.String()
}

// PrintCatalog prints the signal catalog
func PrintCatalog(c *signals.Catalog, source, fingerprint string) {
	PrintHeader("Signal catalog")
	fmt.Printf("  Source      : %s\n", source)
	fmt.Printf("  Fingerprint : %s\n", fingerprint)
	PrintSeparator()

	fmt.Printf("  %-12s %6s %6s %6s %6s %6s %5s\n", "Store", "Rating", "Reli", "Qual", "Svc", "Subst", "Mins")
	for _, m := range c.StoreMetrics {
		fmt.Printf("  %-12s %6.1f %6.2f %6.1f %6.1f %6.2f %5d\n",
			truncate(m.Name, 12), m.OverallRating, m.DeliveryReliability,
			m.ProductQuality, m.CustomerService, m.SubstitutionRate, m.AvgDeliveryTime)
	}

	PrintSeparator()
	fmt.Printf("  Trending : %s\n", strings.Join(c.MarketTrends.Trending, ", "))
	fmt.Printf("  Reviews  : %d\n", len(c.ProductReviews))
	PrintDoubleSeparator()
}

// PrintJobStats prints scheduler statistics
func PrintJobStats(stats map[string]scheduler.JobStats) {
	PrintHeader("Job statistics")
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		st := stats[name]
		fmt.Printf("  %-16s runs=%d ok=%d failed=%d rate=%.0f%%\n",
			name, st.TotalRuns, st.SuccessCount, st.FailureCount, st.SuccessRate*100)
		if st.LastError != "" {
			fmt.Printf("  %-16s last error: %s\n", "", st.LastError)
		}
	}
	PrintDoubleSeparator()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
