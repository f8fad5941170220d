package gateway

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"vbgateway/internal/price"
)

type CircuitBreakerConfig struct {
	FailureThreshold int
	SuccessThreshold int
	OpenTimeout      time.Duration
	IsFailure        func(error) bool
}

// CircuitBreakerClient guards the bank round-trips. ParseResponse is pure and
// passes through untouched.
type CircuitBreakerClient struct {
	next Client
	cfg  CircuitBreakerConfig

	mu           sync.Mutex
	state        int
	failures     int
	successes    int
	openedAt     time.Time
	halfInFlight bool
}

const (
	cbClosed = iota
	cbOpen
	cbHalfOpen
)

func NewCircuitBreakerClient(next Client, cfg CircuitBreakerConfig) *CircuitBreakerClient {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 1
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 2 * time.Second
	}
	if cfg.IsFailure == nil {
		cfg.IsFailure = func(err error) bool {
			return errors.Is(err, ErrTimeout) || errors.Is(err, ErrServer) || errors.Is(err, context.DeadlineExceeded)
		}
	}
	return &CircuitBreakerClient{next: next, cfg: cfg, state: cbClosed}
}

func (c *CircuitBreakerClient) RequestAuthorization(ctx context.Context, req AuthorizationRequest) (*RedirectForm, error) {
	if err := c.beforeCall(); err != nil {
		return nil, err
	}
	form, err := c.next.RequestAuthorization(ctx, req)
	c.afterCall(err)
	return form, err
}

func (c *CircuitBreakerClient) RequestCompletion(ctx context.Context, orderID string, amount price.Price, rrn, intRef string) (url.Values, error) {
	if err := c.beforeCall(); err != nil {
		return nil, err
	}
	fields, err := c.next.RequestCompletion(ctx, orderID, amount, rrn, intRef)
	c.afterCall(err)
	return fields, err
}

func (c *CircuitBreakerClient) RequestReversal(ctx context.Context, orderID string, amount price.Price, rrn, intRef string) (url.Values, error) {
	if err := c.beforeCall(); err != nil {
		return nil, err
	}
	fields, err := c.next.RequestReversal(ctx, orderID, amount, rrn, intRef)
	c.afterCall(err)
	return fields, err
}

func (c *CircuitBreakerClient) ParseResponse(fields url.Values) (*Message, error) {
	return c.next.ParseResponse(fields)
}

func (c *CircuitBreakerClient) beforeCall() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case cbClosed:
		return nil
	case cbOpen:
		if time.Since(c.openedAt) >= c.cfg.OpenTimeout {
			c.state = cbHalfOpen
			c.successes = 0
			c.halfInFlight = false
		} else {
			return ErrCircuitOpen
		}
		fallthrough
	case cbHalfOpen:
		if c.halfInFlight {
			return ErrCircuitOpen
		}
		c.halfInFlight = true
		return nil
	default:
		return ErrCircuitOpen
	}
}

func (c *CircuitBreakerClient) afterCall(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == cbHalfOpen {
		c.halfInFlight = false
	}

	if err == nil {
		switch c.state {
		case cbClosed:
			c.failures = 0
		case cbHalfOpen:
			c.successes++
			if c.successes >= c.cfg.SuccessThreshold {
				c.state = cbClosed
				c.failures = 0
				c.successes = 0
			}
		}
		return
	}

	if !c.cfg.IsFailure(err) {
		return
	}

	switch c.state {
	case cbClosed:
		c.failures++
		if c.failures >= c.cfg.FailureThreshold {
			c.state = cbOpen
			c.openedAt = time.Now().UTC()
			c.successes = 0
			c.halfInFlight = false
		}
	case cbHalfOpen:
		c.state = cbOpen
		c.openedAt = time.Now().UTC()
		c.failures = c.cfg.FailureThreshold
		c.successes = 0
		c.halfInFlight = false
	}
}
