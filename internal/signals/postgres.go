package signals

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/grocer/internal/contracts"
)

const schemaSQL = `
CREATE SCHEMA IF NOT EXISTS signals;

CREATE TABLE IF NOT EXISTS signals.store_metrics (
	name                 TEXT PRIMARY KEY,
	overall_rating       DOUBLE PRECISION NOT NULL,
	delivery_reliability DOUBLE PRECISION NOT NULL,
	product_quality      DOUBLE PRECISION NOT NULL,
	customer_service     DOUBLE PRECISION NOT NULL,
	substitution_rate    DOUBLE PRECISION NOT NULL,
	avg_delivery_time    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS signals.market_trends (
	store            TEXT PRIMARY KEY,
	trending         BOOLEAN NOT NULL DEFAULT FALSE,
	price_volatility DOUBLE PRECISION,
	demand_score     DOUBLE PRECISION
);

CREATE TABLE IF NOT EXISTS signals.product_reviews (
	product_name TEXT NOT NULL,
	store        TEXT NOT NULL,
	rating       DOUBLE PRECISION NOT NULL,
	review_count INTEGER NOT NULL,
	freshness    DOUBLE PRECISION NOT NULL,
	summary      TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (product_name, store)
);
`

// PostgresProvider reads signal tables from the signals schema.
// ⭐ SSOT: signal tables are only read and written here
type PostgresProvider struct {
	pool *pgxpool.Pool
}

// NewPostgresProvider creates a provider over pool
func NewPostgresProvider(pool *pgxpool.Pool) *PostgresProvider {
	return &PostgresProvider{pool: pool}
}

// EnsureSchema creates the signals schema and tables if missing
func (p *PostgresProvider) EnsureSchema(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create signals schema: %w", err)
	}
	return nil
}

// FetchProductReviews matches product names case-insensitively in both
// directions, same as the catalog.
func (p *PostgresProvider) FetchProductReviews(ctx context.Context, productNames []string) ([]contracts.ProductReview, error) {
	reviews := make([]contracts.ProductReview, 0)

	patterns := make([]string, 0, len(productNames))
	for _, n := range productNames {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			patterns = append(patterns, n)
		}
	}
	if len(patterns) == 0 {
		return reviews, nil
	}

	query := `
		SELECT product_name, store, rating, review_count, freshness, summary
		FROM signals.product_reviews r
		WHERE EXISTS (
			SELECT 1 FROM unnest($1::text[]) AS q(name)
			WHERE strpos(lower(r.product_name), q.name) > 0
			   OR strpos(q.name, lower(r.product_name)) > 0
		)
		ORDER BY product_name, store
	`

	rows, err := p.pool.Query(ctx, query, patterns)
	if err != nil {
		return nil, fmt.Errorf("%w: query product reviews: %w", contracts.ErrProviderFailure, err)
	}
	defer rows.Close()

	for rows.Next() {
		var r contracts.ProductReview
		if err := rows.Scan(&r.ProductName, &r.Store, &r.Rating, &r.ReviewCount, &r.Freshness, &r.Summary); err != nil {
			return nil, fmt.Errorf("%w: scan product review: %w", contracts.ErrProviderFailure, err)
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", contracts.ErrProviderFailure, err)
	}
	return reviews, nil
}

// FetchStoreMetrics returns every row of signals.store_metrics
func (p *PostgresProvider) FetchStoreMetrics(ctx context.Context) ([]contracts.StoreMetrics, error) {
	query := `
		SELECT name, overall_rating, delivery_reliability, product_quality,
		       customer_service, substitution_rate, avg_delivery_time
		FROM signals.store_metrics
		ORDER BY name
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: query store metrics: %w", contracts.ErrProviderFailure, err)
	}
	defer rows.Close()

	var metrics []contracts.StoreMetrics
	for rows.Next() {
		var m contracts.StoreMetrics
		if err := rows.Scan(&m.Name, &m.OverallRating, &m.DeliveryReliability, &m.ProductQuality,
			&m.CustomerService, &m.SubstitutionRate, &m.AvgDeliveryTime); err != nil {
			return nil, fmt.Errorf("%w: scan store metrics: %w", contracts.ErrProviderFailure, err)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", contracts.ErrProviderFailure, err)
	}
	return metrics, nil
}

// AnalyzeMarketTrends returns the whole trend table; storeNames is not used
// as a filter.
func (p *PostgresProvider) AnalyzeMarketTrends(ctx context.Context, storeNames []string) (*contracts.MarketTrendData, error) {
	query := `
		SELECT store, trending, price_volatility, demand_score
		FROM signals.market_trends
		ORDER BY store
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: query market trends: %w", contracts.ErrProviderFailure, err)
	}
	defer rows.Close()

	data := &contracts.MarketTrendData{
		Trending:        []string{},
		PriceVolatility: make(map[string]float64),
		DemandScore:     make(map[string]float64),
	}
	for rows.Next() {
		var (
			store      string
			trending   bool
			volatility *float64
			demand     *float64
		)
		if err := rows.Scan(&store, &trending, &volatility, &demand); err != nil {
			return nil, fmt.Errorf("%w: scan market trend: %w", contracts.ErrProviderFailure, err)
		}
		if trending {
			data.Trending = append(data.Trending, store)
		}
		if volatility != nil {
			data.PriceVolatility[store] = *volatility
		}
		if demand != nil {
			data.DemandScore[store] = *demand
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", contracts.ErrProviderFailure, err)
	}
	return data, nil
}

// SeedResult counts rows written by Seed
type SeedResult struct {
	StoreMetrics   int `json:"store_metrics"`
	MarketTrends   int `json:"market_trends"`
	ProductReviews int `json:"product_reviews"`
}

// Seed upserts every catalog row in one transaction
func (p *PostgresProvider) Seed(ctx context.Context, catalog *Catalog) (*SeedResult, error) {
	if err := catalog.Validate(); err != nil {
		return nil, err
	}
	if err := p.EnsureSchema(ctx); err != nil {
		return nil, err
	}

	batch := &pgx.Batch{}
	for _, m := range catalog.StoreMetrics {
		batch.Queue(`
			INSERT INTO signals.store_metrics (name, overall_rating, delivery_reliability, product_quality,
				customer_service, substitution_rate, avg_delivery_time)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (name) DO UPDATE SET
				overall_rating = EXCLUDED.overall_rating,
				delivery_reliability = EXCLUDED.delivery_reliability,
				product_quality = EXCLUDED.product_quality,
				customer_service = EXCLUDED.customer_service,
				substitution_rate = EXCLUDED.substitution_rate,
				avg_delivery_time = EXCLUDED.avg_delivery_time
		`, m.Name, m.OverallRating, m.DeliveryReliability, m.ProductQuality,
			m.CustomerService, m.SubstitutionRate, m.AvgDeliveryTime)
	}

	trendStores := trendStoreSet(&catalog.MarketTrends)
	for _, store := range trendStores {
		var volatility, demand *float64
		if v, ok := catalog.MarketTrends.PriceVolatility[store]; ok {
			volatility = &v
		}
		if d, ok := catalog.MarketTrends.DemandScore[store]; ok {
			demand = &d
		}
		batch.Queue(`
			INSERT INTO signals.market_trends (store, trending, price_volatility, demand_score)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (store) DO UPDATE SET
				trending = EXCLUDED.trending,
				price_volatility = EXCLUDED.price_volatility,
				demand_score = EXCLUDED.demand_score
		`, store, catalog.MarketTrends.IsTrending(store), volatility, demand)
	}

	for _, r := range catalog.ProductReviews {
		batch.Queue(`
			INSERT INTO signals.product_reviews (product_name, store, rating, review_count, freshness, summary)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (product_name, store) DO UPDATE SET
				rating = EXCLUDED.rating,
				review_count = EXCLUDED.review_count,
				freshness = EXCLUDED.freshness,
				summary = EXCLUDED.summary
		`, r.ProductName, r.Store, r.Rating, r.ReviewCount, r.Freshness, r.Summary)
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, fmt.Errorf("seed signals: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit seed: %w", err)
	}

	return &SeedResult{
		StoreMetrics:   len(catalog.StoreMetrics),
		MarketTrends:   len(trendStores),
		ProductReviews: len(catalog.ProductReviews),
	}, nil
}

// trendStoreSet returns every store named in any trend field, in first-seen
// order: trending list, then demand, then volatility (sorted per map).
func trendStoreSet(t *contracts.MarketTrendData) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range t.Trending {
		add(s)
	}
	for _, s := range sortedKeys(t.DemandScore) {
		add(s)
	}
	for _, s := range sortedKeys(t.PriceVolatility) {
		add(s)
	}
	return out
}
