package resilience

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

var (
	// ErrCircuitOpen is returned without calling the upstream while the breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker is open")

	// ErrBodyNotReplayable is returned when a request with a body must be retried
	// but carries no GetBody func.
	ErrBodyNotReplayable = errors.New("request body cannot be replayed")
)

// ClientConfig configures a Client.
type ClientConfig struct {
	Name            string
	Timeout         time.Duration
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Breaker         *BreakerConfig

	// Registry, when set, receives the client and its call outcomes.
	Registry *Registry

	// Transport overrides the underlying round tripper (tests).
	Transport http.RoundTripper
}

// DefaultClientConfig returns defaults for a named client.
func DefaultClientConfig(name string) ClientConfig {
	breaker := DefaultBreakerConfig(name)
	return ClientConfig{
		Name:            name,
		Timeout:         10 * time.Second,
		MaxRetries:      3,
		InitialInterval: 100 * time.Millisecond,
		MaxInterval:     5 * time.Second,
		Breaker:         &breaker,
	}
}

// Client is an HTTP client that retries transient failures with exponential
// backoff behind a circuit breaker. Retried statuses are 5xx and 429.
type Client struct {
	name     string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[*http.Response]
	cfg      ClientConfig
	registry *Registry
}

// NewClient builds a Client. Zero durations fall back to the defaults; a zero
// MaxRetries means a single attempt.
func NewClient(cfg ClientConfig) *Client {
	defaults := DefaultClientConfig(cfg.Name)
	if cfg.Timeout == 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = defaults.InitialInterval
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = defaults.MaxInterval
	}
	if cfg.Breaker == nil {
		cfg.Breaker = defaults.Breaker
	}

	c := &Client{
		name: cfg.Name,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
		breaker:  newBreaker[*http.Response](*cfg.Breaker), //nolint:bodyclose // type param
		cfg:      cfg,
		registry: cfg.Registry,
	}
	if c.registry != nil {
		c.registry.Register(c)
	}
	return c
}

// Name returns the client name used for registry lookups.
func (c *Client) Name() string {
	return c.name
}

// State returns the breaker state.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// Counts returns the breaker counters.
func (c *Client) Counts() gobreaker.Counts {
	return c.breaker.Counts()
}

// Do sends req. On exhausted retries against a retryable status the last
// response is returned with a nil error so callers can inspect it.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.InitialInterval
	bo.MaxInterval = c.cfg.MaxInterval
	bo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.cfg.MaxRetries), ctx)

	var last *http.Response
	attempt := 0

	operation := func() error {
		attempt++
		attemptReq, err := replay(ctx, req, attempt)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // returned to caller
			r, err := c.http.Do(attemptReq)
			if err != nil {
				return nil, err
			}
			if retryable(r.StatusCode) {
				return r, &StatusError{StatusCode: r.StatusCode}
			}
			return r, nil
		})

		if last != nil {
			drain(last)
			last = nil
		}

		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			last = resp
			return err
		}

		last = resp
		return nil
	}

	err := backoff.Retry(operation, policy)
	if err != nil {
		if last != nil && ctx.Err() == nil {
			c.record(&StatusError{StatusCode: last.StatusCode})
			return last, nil
		}
		if last != nil {
			drain(last)
		}
		c.record(err)
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}

	c.record(nil)
	return last, nil
}

func (c *Client) record(err error) {
	if c.registry == nil {
		return
	}
	if err != nil {
		c.registry.RecordFailure(c.name, err)
		return
	}
	c.registry.RecordSuccess(c.name)
}

// replay returns the request to send for the given attempt, re-creating the
// body through GetBody after the first attempt.
func replay(ctx context.Context, req *http.Request, attempt int) (*http.Request, error) {
	clone := req.Clone(ctx)
	if attempt == 1 || req.Body == nil || req.Body == http.NoBody {
		return clone, nil
	}
	if req.GetBody == nil {
		return nil, ErrBodyNotReplayable
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("replay body: %w", err)
	}
	clone.Body = body
	return clone, nil
}

func retryable(status int) bool {
	return status >= http.StatusInternalServerError || status == http.StatusTooManyRequests
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

// StatusError is a retryable upstream status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}
