package httpclient

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker/v2"
)

// Doer is satisfied by both *Client and *CircuitBreakerClient.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// CircuitBreakerConfig tunes the breaker guarding one upstream.
type CircuitBreakerConfig struct {
	Name string

	// MaxRequests admitted while half-open.
	MaxRequests uint32
	// Interval clears the closed-state counters; zero never clears them.
	Interval time.Duration
	// Timeout is how long the breaker stays open.
	Timeout time.Duration

	// The breaker trips once MinRequests have been seen and at least
	// FailureRatio of them failed.
	FailureRatio float64
	MinRequests  uint32
}

// DefaultCircuitBreakerConfig returns the settings used for storefront upstreams.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      30 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  5,
	}
}

func (c CircuitBreakerConfig) readyToTrip(counts gobreaker.Counts) bool {
	if counts.Requests < c.MinRequests {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= c.FailureRatio
}

var (
	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "circuit_breaker_state",
		Help: "Circuit breaker state per upstream (0=closed, 1=half-open, 2=open).",
	}, []string{"name"})

	breakerRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "circuit_breaker_rejected_total",
		Help: "Calls refused while the circuit breaker was open or saturated.",
	}, []string{"name"})
)

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return -1
}

// CircuitBreakerClient wraps a Client with a breaker that counts transport
// errors and 5xx responses as failures.
type CircuitBreakerClient struct {
	client  *Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
	name    string
}

// NewCircuitBreakerClient wraps client with a breaker configured by cfg.
func NewCircuitBreakerClient(client *Client, cfg CircuitBreakerConfig, logger *slog.Logger) *CircuitBreakerClient {
	breakerState.WithLabelValues(cfg.Name).Set(0)

	return &CircuitBreakerClient{
		client: client,
		name:   cfg.Name,
		breaker: gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: cfg.MaxRequests,
			Interval:    cfg.Interval,
			Timeout:     cfg.Timeout,
			ReadyToTrip: cfg.readyToTrip,
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state change",
					slog.String("breaker", name),
					slog.String("from", from.String()),
					slog.String("to", to.String()),
				)
				breakerState.WithLabelValues(name).Set(stateValue(to))
			},
		}),
	}
}

// IsRejected reports whether err came from the breaker refusing the call.
func IsRejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

// Do sends req through the breaker. A 5xx response is closed and returned
// as an error wrapping apperrors.ErrServiceUnavail; other responses are
// handed to the caller untouched.
func (c *CircuitBreakerClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		resp, err := c.client.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, ParseResponseError(resp, c.name)
		}
		return resp, nil
	})
	if err != nil {
		if IsRejected(err) {
			breakerRejected.WithLabelValues(c.name).Inc()
		}
		return nil, err
	}
	return resp, nil
}

// State returns the current breaker state.
func (c *CircuitBreakerClient) State() gobreaker.State {
	return c.breaker.State()
}
