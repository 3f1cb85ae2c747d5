package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/grocer/internal/api"
	"github.com/wonny/grocer/internal/api/handlers"
	"github.com/wonny/grocer/pkg/redis"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Start the HTTP API server.

Endpoints:
  GET  /health                       - Health check
  POST /api/recommendations          - Run one analysis
  GET  /api/recommendations/stream   - Run one analysis over a WebSocket with progress
  GET  /api/signals/stores           - Store metrics
  GET  /api/signals/trends           - Market trends
  GET  /api/signals/reviews?q=milk   - Product reviews
  GET  /metrics                      - Prometheus metrics

Example:
  go run ./cmd/grocer api
  go run ./cmd/grocer api --port 9090`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (default from PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	log := a.log
	log.WithFields(map[string]interface{}{
		"port":     cfg.Port,
		"env":      cfg.Env,
		"source":   cfg.Signals.Source,
		"fallback": cfg.Recommend.FallbackMode,
	}).Info("Initializing API server")

	opts := api.RouterOptions{
		MetricsEnabled:     cfg.MetricsEnabled,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	}
	if a.redis.Enabled() {
		opts.RateLimiter = redis.NewRateLimiter(a.redis, "grocer")
	}

	router := api.NewRouter(api.Handlers{
		Health:    handlers.NewHealthHandler(a.db, cfg.Signals.Source),
		Recommend: handlers.NewRecommendHandler(a.service(), cfg.AllowedOrigins, log),
		Signals:   handlers.NewSignalsHandler(a.signals.Provider, log),
	}, opts, log)

	server := api.New(cfg, log, router)

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	if err := server.Run(ctx); err != nil {
		return err
	}

	log.Info("Server stopped")
	return nil
}
