// Package resilience wraps outbound HTTP calls to collaborating services
// (the remote path store) with timeouts, retries and a circuit breaker, and
// keeps a registry of their health for the ops status endpoint.
package resilience

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerConfig configures the circuit breaker that guards a client.
type BreakerConfig struct {
	// Name identifies the breaker in logs and status output.
	Name string

	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32

	// Interval clears the closed-state counts periodically. Zero never clears.
	Interval time.Duration

	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration

	// ReadyToTrip decides when to open. Nil uses TripOnFailureRatio.
	ReadyToTrip func(counts gobreaker.Counts) bool

	// OnStateChange observes transitions, e.g. for logging.
	OnStateChange func(name string, from gobreaker.State, to gobreaker.State)
}

// DefaultBreakerConfig returns the breaker settings used for store clients.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:        name,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: TripOnFailureRatio,
	}
}

// TripOnFailureRatio opens the breaker once five or more requests were seen and
// at least half of them failed.
func TripOnFailureRatio(counts gobreaker.Counts) bool {
	if counts.Requests < 5 {
		return false
	}
	return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.5
}

func newBreaker[T any](cfg BreakerConfig) *gobreaker.CircuitBreaker[T] {
	if cfg.ReadyToTrip == nil {
		cfg.ReadyToTrip = TripOnFailureRatio
	}
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:          cfg.Name,
		MaxRequests:   cfg.MaxRequests,
		Interval:      cfg.Interval,
		Timeout:       cfg.Timeout,
		ReadyToTrip:   cfg.ReadyToTrip,
		OnStateChange: cfg.OnStateChange,
	})
}
