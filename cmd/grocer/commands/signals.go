package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/grocer/internal/signals"
	"github.com/wonny/grocer/pkg/database"
)

// signalsCmd represents the signals command
var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "Manage the signal catalog",
	Long: `Inspect the signal catalog or load it into PostgreSQL.

The catalog is the built-in table of store metrics, market trends and
product reviews, or the YAML file named by SIGNAL_CATALOG_PATH.

Subcommands:
  show  - print the catalog and its fingerprint
  seed  - upsert the catalog into PostgreSQL (DATABASE_URL)

Example:
  go run ./cmd/grocer signals show
  go run ./cmd/grocer signals seed --catalog ./catalog.yaml`,
}

var (
	signalsShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the catalog and its fingerprint",
		RunE:  runSignalsShow,
	}

	signalsSeedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Upsert the catalog into PostgreSQL",
		RunE:  runSignalsSeed,
	}
)

var (
	catalogPath string
)

func init() {
	rootCmd.AddCommand(signalsCmd)
	signalsCmd.AddCommand(signalsShowCmd)
	signalsCmd.AddCommand(signalsSeedCmd)

	signalsCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "catalog YAML (default SIGNAL_CATALOG_PATH, then built-in)")
}

// loadCatalog prefers the flag over the configured path
func loadCatalog(configured string) (*signals.Catalog, string, error) {
	path := configured
	if catalogPath != "" {
		path = catalogPath
	}
	c, err := signals.CatalogFromConfig(path)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		path = "built-in"
	}
	return c, path, nil
}

func runSignalsShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	catalog, source, err := loadCatalog(cfg.Signals.CatalogPath)
	if err != nil {
		return err
	}

	fp, err := catalog.Fingerprint()
	if err != nil {
		return err
	}

	PrintCatalog(catalog, source, fp)
	return nil
}

func runSignalsSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL is required to seed signals")
	}

	catalog, source, err := loadCatalog(cfg.Signals.CatalogPath)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	start := time.Now()
	res, err := signals.NewPostgresProvider(db.Pool).Seed(ctx, catalog)
	if err != nil {
		return err
	}

	PrintHeader("Signal seed")
	fmt.Printf("  Catalog   : %s\n", source)
	fmt.Printf("  Metrics   : %d rows\n", res.StoreMetrics)
	fmt.Printf("  Trends    : %d rows\n", res.MarketTrends)
	fmt.Printf("  Reviews   : %d rows\n", res.ProductReviews)
	PrintSuccess(fmt.Sprintf("Seeded in %.2fs", time.Since(start).Seconds()))
	return nil
}
