package weather

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sony/gobreaker"
)

// Cache is the contract the forecast cache must satisfy. Get must return
// false for entries older than the cache's TTL; Put replaces any existing
// entry for the location.
type Cache interface {
	Get(loc Location) (Snapshot, bool)
	Put(loc Location, snap Snapshot)
}

// RetryPolicy controls the client's attempt loop. MaxAttempts is the total
// number of tries, not the number of retries after the first.
type RetryPolicy struct {
	MaxAttempts int
	BaseBackoff time.Duration
	MaxBackoff  time.Duration // 0 = uncapped
}

// Client is the only component that talks to the remote API. It consults
// the cache before issuing a network call, retries transient failures with
// exponential backoff, and fails fast through a circuit breaker when the
// provider is persistently down.
type Client struct {
	provider Provider
	cache    Cache
	retry    RetryPolicy
	circuit  *gobreaker.CircuitBreaker

	// sleep waits between attempts or returns early on context
	// cancellation. Overridden in tests to observe backoff delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient wires a provider and cache into a resilient fetch client.
func NewClient(provider Provider, cache Cache, retry RetryPolicy) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        provider.Name(),
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		// Auth and parse failures say nothing about provider availability.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrAuth) || errors.Is(err, ErrParse)
		},
	})

	return &Client{
		provider: provider,
		cache:    cache,
		retry:    retry,
		circuit:  cb,
		sleep:    sleepContext,
	}
}

// Fetch returns the weather snapshot for loc, from cache when a fresh
// entry exists, otherwise from the provider. Failures are classified as
// ErrAuth (never retried), ErrParse (never retried) or ErrNetwork
// (retried up to the policy's attempt limit).
func (c *Client) Fetch(ctx context.Context, loc Location) (Snapshot, error) {
	if snap, ok := c.cache.Get(loc); ok {
		return snap, nil
	}

	attempts := c.retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, c.backoff(attempt)); err != nil {
				return Snapshot{}, fmt.Errorf("%w: fetch abandoned: %v", ErrNetwork, err)
			}
		}
		if err := ctx.Err(); err != nil {
			return Snapshot{}, fmt.Errorf("%w: fetch abandoned: %v", ErrNetwork, err)
		}

		result, err := c.circuit.Execute(func() (interface{}, error) {
			return c.provider.Fetch(ctx, loc)
		})
		if err == nil {
			snap, ok := result.(Snapshot)
			if !ok {
				return Snapshot{}, fmt.Errorf("%w: unexpected result type from circuit breaker", ErrNetwork)
			}
			c.cache.Put(loc, snap)
			return snap, nil
		}

		if errors.Is(err, ErrAuth) || errors.Is(err, ErrParse) {
			return Snapshot{}, err
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Snapshot{}, fmt.Errorf("%w: circuit open: %v", ErrNetwork, err)
		}

		lastErr = err
		log.Printf("weather: attempt %d/%d for %s failed: %v", attempt+1, attempts, loc.Key(), err)
	}

	return Snapshot{}, fmt.Errorf("%w: %d attempts exhausted: %v", ErrNetwork, attempts, lastErr)
}

// backoff returns the delay before the given attempt (1-based for the
// first retry): base doubled per attempt, capped at MaxBackoff.
func (c *Client) backoff(attempt int) time.Duration {
	d := c.retry.BaseBackoff << (attempt - 1)
	if c.retry.MaxBackoff > 0 && d > c.retry.MaxBackoff {
		d = c.retry.MaxBackoff
	}
	return d
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
