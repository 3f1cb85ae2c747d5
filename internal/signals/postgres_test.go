package signals

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrendStoreSet(t *testing.T) {
	stores := trendStoreSet(&DefaultCatalog().MarketTrends)

	assert.Equal(t, []string{StoreHEB, StoreAldi, StoreTarget}, stores[:3])
	assert.ElementsMatch(t, Chains, stores)
}

func TestPostgresProvider_SeedAndRead(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	defer pool.Close()

	p := NewPostgresProvider(pool)
	res, err := p.Seed(ctx, DefaultCatalog())
	require.NoError(t, err)
	assert.Equal(t, 6, res.StoreMetrics)
	assert.Equal(t, 6, res.MarketTrends)

	metrics, err := p.FetchStoreMetrics(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(metrics), 6)

	trends, err := p.AnalyzeMarketTrends(ctx, nil)
	require.NoError(t, err)
	assert.True(t, trends.IsTrending(StoreHEB))
	assert.Equal(t, 0.92, trends.DemandScore[StoreHEB])

	reviews, err := p.FetchProductReviews(ctx, []string{"MILK"})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(reviews), 2)
}
