// Package scheduler drives the refresh loop: fetch, render, write,
// sleep. One tick is in flight at a time, and a failed tick keeps the
// previous panel on screen instead of crashing the loop.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/nasharino/weather-forecast-panel/internal/panel"
	"github.com/nasharino/weather-forecast-panel/internal/weather"
)

// Fetcher is the slice of the weather client the loop needs.
type Fetcher interface {
	Fetch(ctx context.Context, loc weather.Location) (weather.Snapshot, error)
}

// Display is the terminal surface the loop writes to.
type Display interface {
	Geometry() panel.Geometry
	WritePanel(lines []string, snap weather.Snapshot, fetchedAt time.Time, fetchErr error)
}

// Scheduler periodically refreshes the panel for a single location.
type Scheduler struct {
	scheduler   *gocron.Scheduler
	fetcher     Fetcher
	display     Display
	location    weather.Location
	interval    time.Duration
	tickTimeout time.Duration

	mu        sync.RWMutex
	lastSnap  weather.Snapshot
	lastLines []string
	fetchedAt time.Time
	hasSnap   bool
}

// New creates a Scheduler that refreshes every interval. tickTimeout
// bounds one whole tick, including the client's retries and backoff.
func New(loc weather.Location, interval, tickTimeout time.Duration, fetcher Fetcher, display Display) *Scheduler {
	return &Scheduler{
		scheduler:   gocron.NewScheduler(time.UTC),
		fetcher:     fetcher,
		display:     display,
		location:    loc,
		interval:    interval,
		tickTimeout: tickTimeout,
	}
}

// Start runs the first refresh synchronously so the panel is populated
// before the process settles into its interval, then schedules the rest.
func (s *Scheduler) Start() error {
	s.tick()

	// At most one in-flight fetch at a time, even if a tick overruns the
	// interval.
	s.scheduler.SingletonModeAll()
	if _, err := s.scheduler.Every(s.interval).Do(s.tick); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future ticks.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// Latest returns the last successfully fetched snapshot and its fetch
// time. ok is false before the first successful refresh.
func (s *Scheduler) Latest() (snap weather.Snapshot, fetchedAt time.Time, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSnap, s.fetchedAt, s.hasSnap
}

// tick runs one refresh cycle. Any failure leaves the previous panel in
// place, annotated; the loop itself never terminates on error.
func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.tickTimeout)
	defer cancel()

	snap, err := s.fetcher.Fetch(ctx, s.location)
	if err != nil {
		log.Printf("scheduler: refresh failed for %s: %v", s.location.Key(), err)
		s.writeStale(err)
		return
	}

	lines, err := panel.Render(snap, s.display.Geometry())
	if err != nil {
		// Geometry problem; the snapshot is still good, so keep it for
		// the HTTP surface and retry rendering next tick.
		log.Printf("scheduler: render failed: %v", err)
		s.mu.Lock()
		s.lastSnap = snap
		s.fetchedAt = time.Now().UTC()
		s.hasSnap = true
		s.mu.Unlock()
		return
	}

	now := time.Now().UTC()
	s.mu.Lock()
	s.lastSnap = snap
	s.lastLines = lines
	s.fetchedAt = now
	s.hasSnap = true
	s.mu.Unlock()

	s.display.WritePanel(lines, snap, now, nil)
}

// writeStale re-displays the last good panel with a stale marker, or a
// placeholder when no fetch has ever succeeded.
func (s *Scheduler) writeStale(fetchErr error) {
	s.mu.RLock()
	lines, snap, fetchedAt, has := s.lastLines, s.lastSnap, s.fetchedAt, s.hasSnap
	s.mu.RUnlock()

	if !has || len(lines) == 0 {
		lines = []string{"weather unavailable"}
		fetchedAt = time.Now().UTC()
	}
	s.display.WritePanel(lines, snap, fetchedAt, fetchErr)
}
