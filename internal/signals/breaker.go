package signals

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/wonny/grocer/internal/contracts"
	"github.com/wonny/grocer/internal/metrics"
	"github.com/wonny/grocer/pkg/logger"
)

// ErrProviderUnavailable is returned while the breaker is open.
var ErrProviderUnavailable = errors.New("signal provider unavailable")

// BreakerSettings tunes the circuit breaker
type BreakerSettings struct {
	MaxRequests  uint32        // allowed calls in half-open state
	Interval     time.Duration // closed-state count reset
	Timeout      time.Duration // open → half-open
	MinRequests  uint32
	FailureRatio float64
}

// DefaultBreakerSettings opens after 60% failures over at least 10 calls
// and retries after 30 seconds.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// BreakerProvider guards a SignalProvider with a circuit breaker.
// Context cancellation by the caller does not count as a failure.
type BreakerProvider struct {
	next contracts.SignalProvider
	cb   *gobreaker.CircuitBreaker[interface{}]
	name string
	log  *logger.Logger
}

// NewBreakerProvider wraps next
func NewBreakerProvider(next contracts.SignalProvider, settings BreakerSettings, log *logger.Logger) *BreakerProvider {
	name := "signal-provider"
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.MaxRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= settings.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &BreakerProvider{next: next, cb: cb, name: name, log: log}
}

// State reports the current breaker state
func (p *BreakerProvider) State() gobreaker.State {
	return p.cb.State()
}

// FetchProductReviews calls through the breaker
func (p *BreakerProvider) FetchProductReviews(ctx context.Context, productNames []string) ([]contracts.ProductReview, error) {
	res, err := p.execute(func() (interface{}, error) {
		return p.next.FetchProductReviews(ctx, productNames)
	})
	if err != nil {
		return nil, err
	}
	return res.([]contracts.ProductReview), nil
}

// FetchStoreMetrics calls through the breaker
func (p *BreakerProvider) FetchStoreMetrics(ctx context.Context) ([]contracts.StoreMetrics, error) {
	res, err := p.execute(func() (interface{}, error) {
		return p.next.FetchStoreMetrics(ctx)
	})
	if err != nil {
		return nil, err
	}
	return res.([]contracts.StoreMetrics), nil
}

// AnalyzeMarketTrends calls through the breaker
func (p *BreakerProvider) AnalyzeMarketTrends(ctx context.Context, storeNames []string) (*contracts.MarketTrendData, error) {
	res, err := p.execute(func() (interface{}, error) {
		return p.next.AnalyzeMarketTrends(ctx, storeNames)
	})
	if err != nil {
		return nil, err
	}
	return res.(*contracts.MarketTrendData), nil
}

func (p *BreakerProvider) execute(fn func() (interface{}, error)) (interface{}, error) {
	res, err := p.cb.Execute(fn)
	if err == nil {
		metrics.CircuitBreakerRequests.WithLabelValues(p.name, "success").Inc()
		return res, nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.CircuitBreakerRequests.WithLabelValues(p.name, "rejected").Inc()
		return nil, fmt.Errorf("%w: %w: %w", contracts.ErrProviderFailure, ErrProviderUnavailable, err)
	}

	metrics.CircuitBreakerRequests.WithLabelValues(p.name, "failure").Inc()
	return nil, err
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
