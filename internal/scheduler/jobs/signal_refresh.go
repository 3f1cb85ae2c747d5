package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/grocer/pkg/logger"
)

// Refresher re-fetches and caches signal data
type Refresher interface {
	Refresh(ctx context.Context) error
}

// SignalRefreshJob keeps the Redis signal cache warm so analyses rarely
// wait on the upstream provider.
type SignalRefreshJob struct {
	refresher Refresher
	schedule  string
	logger    *logger.Logger
}

// NewSignalRefreshJob creates a new signal refresh job
func NewSignalRefreshJob(refresher Refresher, schedule string, log *logger.Logger) *SignalRefreshJob {
	return &SignalRefreshJob{
		refresher: refresher,
		schedule:  schedule,
		logger:    log,
	}
}

// Name returns the job name
func (j *SignalRefreshJob) Name() string {
	return "signal_refresh"
}

// Schedule returns the cron expression
func (j *SignalRefreshJob) Schedule() string {
	return j.schedule
}

// Run refreshes store metrics and market trends
func (j *SignalRefreshJob) Run(ctx context.Context) error {
	j.logger.Debug("Refreshing signal cache")

	if err := j.refresher.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh signals: %w", err)
	}
	return nil
}
