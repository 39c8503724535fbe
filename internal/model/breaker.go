package model

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/meronoumer/moodreads/internal/domain"
	"github.com/meronoumer/moodreads/internal/logger"
	"github.com/meronoumer/moodreads/internal/metrics"
)

// BreakerSettings control the per-endpoint circuit breaker.
type BreakerSettings struct {
	// ConsecutiveFailures opens the circuit.
	ConsecutiveFailures uint32
	// Timeout is how long an open circuit waits before a half-open probe.
	Timeout time.Duration
	// Interval resets the closed-state counts. Zero never resets.
	Interval time.Duration
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		ConsecutiveFailures: 5,
		Timeout:             30 * time.Second,
		Interval:            time.Minute,
	}
}

type endpoint struct {
	url string
	cb  *gobreaker.CircuitBreaker[[]domain.Book]
}

func newEndpoint(u string, s BreakerSettings) *endpoint {
	metrics.CircuitBreakerState.WithLabelValues(u).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]domain.Book](gobreaker.Settings{
		Name:        u,
		MaxRequests: 1,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.ConsecutiveFailures
		},
		// a caller giving up is not the endpoint's fault
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Component(context.Background(), "model").
				WithField("endpoint", name).
				WithField("from", from.String()).
				WithField("to", to.String()).
				Warn("[CIRCUIT BREAKER] state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &endpoint{url: u, cb: cb}
}

// call runs fn through the breaker. A rejected call is reported as a
// TransportError so the caller moves on to the next endpoint.
func (e *endpoint) call(fn func() ([]domain.Book, error)) ([]domain.Book, error) {
	books, err := e.cb.Execute(fn)
	switch {
	case err == nil:
		metrics.BackendRequestsTotal.WithLabelValues(e.url, "success").Inc()
		return books, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.BackendRequestsTotal.WithLabelValues(e.url, "rejected").Inc()
		return nil, &domain.TransportError{Endpoint: e.url, Err: err}
	default:
		metrics.BackendRequestsTotal.WithLabelValues(e.url, "failure").Inc()
		return nil, err
	}
}

func (e *endpoint) state() gobreaker.State {
	return e.cb.State()
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
