package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "grocer",
	Short: "Grocer - multi-store grocery recommendation engine",
	Long: `Grocer compares a cart across grocery chains and recommends where to shop.

Each analysis fetches product reviews, store metrics and market trends,
scores every store on price, quality, reliability and convenience, and
explains the winner.

Usage:
  go run ./cmd/grocer [command]

Examples:
  go run ./cmd/grocer api
  go run ./cmd/grocer recommend --store "Walmart=50.00" --store "H-E-B=52.00" --type pickup
  go run ./cmd/grocer signals show
  go run ./cmd/grocer worker`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}
