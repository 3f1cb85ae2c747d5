package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/wonny/grocer/internal/contracts"
	"github.com/wonny/grocer/internal/progress"
	"github.com/wonny/grocer/internal/recommend"
)

// recommendCmd represents the recommend command
var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend a store for a cart",
	Long: `Run one analysis and print the recommendation.

Each --store is "Name=total" or "Name=subtotal+fees". Store keys are derived
from names ("H-E-B" → "heb") and are what --subs refers to.

Example:
  go run ./cmd/grocer recommend \
    --store "Walmart=50.00" --store "H-E-B=48.00+4.00" --store "Target=60.00" \
    --type pickup --item milk --item eggs --subs heb=1`,
	RunE: runRecommend,
}

var (
	recStores []string
	recType   string
	recItems  []string
	recSubs   []string
	recJSON   bool
)

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringArrayVar(&recStores, "store", nil, `store total, "Name=50.00" (repeatable)`)
	recommendCmd.Flags().StringVar(&recType, "type", "pickup", "shopping type: pickup, delivery, instore")
	recommendCmd.Flags().StringArrayVar(&recItems, "item", nil, "cart item name (repeatable)")
	recommendCmd.Flags().StringArrayVar(&recSubs, "subs", nil, "pending substitutions, key=count (repeatable)")
	recommendCmd.Flags().BoolVar(&recJSON, "json", false, "print the recommendation as JSON")
	recommendCmd.MarkFlagRequired("store")
}

func runRecommend(cmd *cobra.Command, args []string) error {
	req, err := buildRequest(recStores, recType, recItems, recSubs)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// stdout is kept for the result
	a, err := newApp(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer a.Close()

	bar := progressbar.NewOptions(progress.StageCount,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("Starting analysis"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	req.OnProgress = func(step int) {
		bar.Describe(progress.Stage(step).Label())
		bar.Set(step)
	}

	rec, err := a.service().Recommend(ctx, req)
	bar.Finish()
	if err != nil {
		return err
	}

	if recJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	PrintRecommendation(rec)
	return nil
}

func buildRequest(stores []string, shoppingType string, items, subs []string) (recommend.Request, error) {
	totals := make([]contracts.StoreTotal, 0, len(stores))
	for _, s := range stores {
		st, err := parseStoreFlag(s)
		if err != nil {
			return recommend.Request{}, err
		}
		totals = append(totals, st)
	}

	st, err := contracts.ParseShoppingType(shoppingType)
	if err != nil {
		return recommend.Request{}, err
	}

	counts, err := parseSubsFlags(subs)
	if err != nil {
		return recommend.Request{}, err
	}

	req := recommend.Request{
		StoreTotals:        totals,
		SubstitutionCounts: counts,
		ShoppingType:       st,
		CartItems:          parseItems(items),
	}
	if err := recommend.Validate(req); err != nil {
		return recommend.Request{}, fmt.Errorf("invalid request: %w", err)
	}
	return req, nil
}
