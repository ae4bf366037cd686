package weather

import (
	"context"
	"errors"
	"testing"
)

func TestRateLimitedProviderDelegatesWithinLimit(t *testing.T) {
	inner := &fakeProvider{snap: Snapshot{Location: testLoc, Current: CurrentConditions{Temperature: 12}}}
	p := NewRateLimitedProvider(inner, 100, 1)

	snap, err := p.Fetch(context.Background(), testLoc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Current.Temperature != 12 {
		t.Errorf("expected the wrapped provider's snapshot, got %+v", snap.Current)
	}
	if inner.calls != 1 {
		t.Errorf("expected 1 delegated call, got %d", inner.calls)
	}
	if p.Name() != "fake [rate limited]" {
		t.Errorf("unexpected name %q", p.Name())
	}
}

func TestRateLimitedProviderCancelledWaitIsNetworkError(t *testing.T) {
	inner := &fakeProvider{}
	p := NewRateLimitedProvider(inner, 0.001, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Fetch(ctx, testLoc)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("cancelled wait must surface as ErrNetwork, got %v", err)
	}
	if inner.calls != 0 {
		t.Errorf("cancelled wait must not reach the wrapped provider, got %d calls", inner.calls)
	}
}

func TestRateLimitedProviderExhaustedBurstIsNetworkError(t *testing.T) {
	inner := &fakeProvider{}
	// A zero burst can never grant a permit; Wait fails immediately.
	p := NewRateLimitedProvider(inner, 0.001, 0)

	_, err := p.Fetch(context.Background(), testLoc)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("unsatisfiable wait must surface as ErrNetwork, got %v", err)
	}
	if inner.calls != 0 {
		t.Errorf("unsatisfiable wait must not reach the wrapped provider, got %d calls", inner.calls)
	}
}
