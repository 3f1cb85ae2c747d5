package contracts

// ScoreBreakdown is the per-store multi-factor score.
// Components are nominally 0-100; OverallScore carries additive market
// bonuses and is not clamped, and ReliabilityScore may go negative.
type ScoreBreakdown struct {
	PriceScore       int `json:"priceScore"`
	QualityScore     int `json:"qualityScore"`
	ReliabilityScore int `json:"reliabilityScore"`
	ConvenienceScore int `json:"convenienceScore"`
	OverallScore     int `json:"overallScore"`
}

// StoreScore pairs a store with its computed breakdown.
type StoreScore struct {
	Store             StoreTotal     `json:"store"`
	Factors           ScoreBreakdown `json:"factors"`
	SubstitutionCount int            `json:"substitutionCount"`
}

// ScoreInput carries everything a Scorer needs for one store.
type ScoreInput struct {
	Store             StoreTotal
	AllStores         []StoreTotal
	Metrics           *StoreMetrics // nil when the catalog has no entry
	SubstitutionCount int
	ShoppingType      ShoppingType
	Market            *MarketTrendData

	// Rank is the store's 0-based position when all stores are ordered by
	// ascending total. Only the rank-based scorer reads it.
	Rank int
}

// Strategy names the scoring formulation that produced a recommendation.
type Strategy string

const (
	// StrategyAdvanced uses live signal data (metrics, market trends).
	StrategyAdvanced Strategy = "advanced"
	// StrategySimple is the rank-based fallback with randomized jitter.
	StrategySimple Strategy = "simple"
	// StrategyDefault is the static recommendation used when analysis fails.
	StrategyDefault Strategy = "default"
)
