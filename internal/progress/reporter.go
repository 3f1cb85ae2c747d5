package progress

import (
	"sync"

	"github.com/wonny/grocer/pkg/logger"
)

// Stage is a pipeline step index reported before the step begins.
type Stage int

const (
	StageReviews Stage = iota
	StageMetrics
	StageTrends
	StageScoring
	StageRecommend
)

// StageCount is the number of stages in one analysis run.
const StageCount = 5

var stageLabels = [StageCount]string{
	"Fetching product reviews",
	"Fetching store metrics",
	"Analyzing market trends",
	"Scoring stores",
	"Building recommendation",
}

// Label returns the human-readable stage name.
func (s Stage) Label() string {
	if s < 0 || int(s) >= StageCount {
		return "Unknown stage"
	}
	return stageLabels[s]
}

// Func is the progress callback. It is called synchronously and must not
// influence the analysis.
type Func func(step int)

// Noop ignores every step.
func Noop(int) {}

// OrNoop returns f, or Noop when f is nil.
func OrNoop(f Func) Func {
	if f == nil {
		return Noop
	}
	return f
}

// Chain fans a step out to every non-nil reporter, in order.
func Chain(fns ...Func) Func {
	return func(step int) {
		for _, f := range fns {
			if f != nil {
				f(step)
			}
		}
	}
}

// Monotonic forwards only steps greater than the last forwarded one, so a
// retried run never reports a stage twice.
func Monotonic(f Func) Func {
	f = OrNoop(f)
	var mu sync.Mutex
	last := -1
	return func(step int) {
		mu.Lock()
		defer mu.Unlock()
		if step <= last {
			return
		}
		last = step
		f(step)
	}
}

// Logging reports each stage as a debug log line.
func Logging(log *logger.Logger) Func {
	return func(step int) {
		log.WithFields(map[string]interface{}{
			"step":  step,
			"stage": Stage(step).Label(),
		}).Debug("Analysis stage started")
	}
}

// Recorder collects reported steps. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	steps []int
}

// Report is a Func.
func (r *Recorder) Report(step int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = append(r.steps, step)
}

// Steps returns a copy of the recorded steps.
func (r *Recorder) Steps() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.steps))
	copy(out, r.steps)
	return out
}
