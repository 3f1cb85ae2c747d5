package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/grocer/internal/scheduler"
	"github.com/wonny/grocer/internal/scheduler/jobs"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Run background jobs",
	Long: `Run the cron scheduler.

Registered jobs:
- signal_refresh: re-fetch store metrics and market trends into the Redis
  signal cache (SIGNAL_REFRESH_SCHEDULE, default every ten minutes)

Requires REDIS_ENABLED=true and a positive SIGNAL_CACHE_TTL.

Example:
  go run ./cmd/grocer worker
  go run ./cmd/grocer worker --warm`,
	RunE: runWorker,
}

var (
	workerWarm bool
)

func init() {
	rootCmd.AddCommand(workerCmd)

	workerCmd.Flags().BoolVar(&workerWarm, "warm", true, "run every job once at startup")
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.signals.Cached == nil {
		return errors.New("signal cache is disabled: set REDIS_ENABLED=true and SIGNAL_CACHE_TTL")
	}

	sched := scheduler.New(a.log)
	job := jobs.NewSignalRefreshJob(a.signals.Cached, cfg.Signals.RefreshSchedule, a.log)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("add job: %w", err)
	}

	if workerWarm {
		for _, name := range sched.Jobs() {
			res, err := sched.RunNow(name)
			if err != nil {
				return err
			}
			if !res.Success {
				PrintWarning(fmt.Sprintf("%s warm-up failed: %s", name, res.Error))
			}
		}
	}

	sched.Start()
	fmt.Println("\n✅ Worker started")
	fmt.Println("\nRegistered jobs:")
	for _, name := range sched.Jobs() {
		fmt.Printf("  - %s\n", name)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	<-ctx.Done()
	sched.Stop()

	PrintJobStats(sched.Stats())
	return nil
}
