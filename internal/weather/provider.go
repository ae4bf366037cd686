package weather

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// Provider abstracts a weather data source. Fetch performs exactly one
// network attempt and returns a fully normalized Snapshot; retry policy
// lives in the Client, not here. Tests substitute deterministic fakes.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, loc Location) (Snapshot, error)
}

// RateLimitedProvider wraps a Provider with a token-bucket rate limit so a
// misconfigured refresh interval cannot hammer the upstream API.
type RateLimitedProvider struct {
	provider Provider
	limiter  *rate.Limiter
	name     string
}

// NewRateLimitedProvider allows rps requests per second with the given
// burst. Fractional rps values are accepted for less than one request per
// second.
func NewRateLimitedProvider(provider Provider, rps float64, burst int) *RateLimitedProvider {
	return &RateLimitedProvider{
		provider: provider,
		limiter:  rate.NewLimiter(rate.Limit(rps), burst),
		name:     provider.Name() + " [rate limited]",
	}
}

func (r *RateLimitedProvider) Name() string {
	return r.name
}

// Fetch waits for limiter permission, then forwards to the wrapped
// provider. A cancelled wait surfaces as a network failure so the client
// classifies it like any other transient error.
func (r *RateLimitedProvider) Fetch(ctx context.Context, loc Location) (Snapshot, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return Snapshot{}, fmt.Errorf("%w: rate limit wait: %v", ErrNetwork, err)
	}
	return r.provider.Fetch(ctx, loc)
}

var _ Provider = (*RateLimitedProvider)(nil)
