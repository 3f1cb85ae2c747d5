package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/grocer/pkg/logger"
)

// countingJob fails its first failures runs
type countingJob struct {
	name     string
	schedule string
	failures int32
	runs     atomic.Int32
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(ctx context.Context) error {
	n := j.runs.Add(1)
	if n <= j.failures {
		return errors.New("upstream down")
	}
	return nil
}

func newTestScheduler(retries int) *Scheduler {
	return New(logger.Nop(), WithRetries(retries, 0), WithJobTimeout(time.Second))
}

func TestScheduler_AddJob(t *testing.T) {
	s := newTestScheduler(0)

	require.NoError(t, s.AddJob(&countingJob{name: "b", schedule: "@hourly"}))
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "0 */10 * * * *"}))
	assert.Equal(t, []string{"a", "b"}, s.Jobs())

	err := s.AddJob(&countingJob{name: "a", schedule: "@hourly"})
	assert.ErrorContains(t, err, "already exists")

	err = s.AddJob(&countingJob{name: "bad", schedule: "not a schedule"})
	assert.ErrorContains(t, err, "failed to schedule")
	assert.Equal(t, []string{"a", "b"}, s.Jobs())
}

func TestScheduler_RunNowRetries(t *testing.T) {
	tests := []struct {
		name         string
		retries      int
		failures     int32
		wantSuccess  bool
		wantAttempts int
	}{
		{"first try", 3, 0, true, 1},
		{"recovers", 3, 2, true, 3},
		{"exhausted", 2, 5, false, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestScheduler(tt.retries)
			job := &countingJob{name: "refresh", schedule: "@hourly", failures: tt.failures}
			require.NoError(t, s.AddJob(job))

			res, err := s.RunNow("refresh")
			require.NoError(t, err)
			assert.Equal(t, tt.wantSuccess, res.Success)
			assert.Equal(t, tt.wantAttempts, res.Attempts)
			assert.Equal(t, int32(tt.wantAttempts), job.runs.Load())
			if !tt.wantSuccess {
				assert.Equal(t, "upstream down", res.Error)
			}

			stats := s.Stats()["refresh"]
			assert.Equal(t, 1, stats.TotalRuns)
			assert.Equal(t, "@hourly", stats.Schedule)
			require.NotNil(t, stats.LastRun)
		})
	}
}

func TestScheduler_RunNowUnknownJob(t *testing.T) {
	s := newTestScheduler(0)
	_, err := s.RunNow("missing")
	assert.ErrorContains(t, err, "not found")
}

func TestScheduler_RemoveJobKeepsHistory(t *testing.T) {
	s := newTestScheduler(0)
	require.NoError(t, s.AddJob(&countingJob{name: "refresh", schedule: "@hourly"}))
	_, err := s.RunNow("refresh")
	require.NoError(t, err)

	require.NoError(t, s.RemoveJob("refresh"))
	assert.Empty(t, s.Jobs())
	assert.Equal(t, 1, s.Stats()["refresh"].TotalRuns)
	assert.Error(t, s.RemoveJob("refresh"))
}

func TestScheduler_StopEndsRetries(t *testing.T) {
	s := New(logger.Nop(), WithRetries(5, time.Hour), WithJobTimeout(time.Second))
	job := &countingJob{name: "refresh", schedule: "@hourly", failures: 100}
	require.NoError(t, s.AddJob(job))
	s.Start()

	done := make(chan JobResult, 1)
	go func() {
		res, _ := s.RunNow("refresh")
		done <- res
	}()

	require.Eventually(t, func() bool { return job.runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	s.Stop()

	select {
	case res := <-done:
		assert.False(t, res.Success)
		assert.Equal(t, 1, res.Attempts)
	case <-time.After(2 * time.Second):
		t.Fatal("retry loop did not stop")
	}
}

func TestJobHistory(t *testing.T) {
	var h JobHistory
	for i := 0; i < historySize+5; i++ {
		h.AddResult(JobResult{Success: i%2 == 0})
	}

	assert.Len(t, h.Results, historySize)
	assert.Len(t, h.Latest(3), 3)
	assert.Len(t, h.Latest(1000), historySize)
	assert.Equal(t, historySize/2, h.Failures())
	assert.InDelta(t, 0.5, h.SuccessRate(), 1e-9)

	var empty JobHistory
	assert.Equal(t, 0.0, empty.SuccessRate())
	assert.Empty(t, empty.Latest(5))
}
