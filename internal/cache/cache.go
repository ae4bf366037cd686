// Package cache holds the single-entry-per-location forecast cache. An
// entry is valid for its TTL and no longer: expiry is a hard cutoff, and
// expired entries are evicted on read so a later Put cannot race with a
// lingering stale value.
package cache

import (
	"sync"
	"time"

	"github.com/nasharino/weather-forecast-panel/internal/weather"
)

type entry struct {
	snapshot  weather.Snapshot
	fetchedAt time.Time
}

// Cache is a concurrency-safe TTL cache mapping locations to their most
// recent snapshot. The refresh loop serializes writes by contract, but the
// HTTP surface reads concurrently, so access stays mutex-guarded.
type Cache struct {
	mu   sync.RWMutex
	data map[string]entry
	ttl  time.Duration
	now  func() time.Time
}

// New creates a Cache with the given TTL. now is the clock used for
// stamping and expiry; pass nil for time.Now. Tests inject a fake clock to
// make expiry deterministic.
func New(ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{
		data: make(map[string]entry),
		ttl:  ttl,
		now:  now,
	}
}

// Get returns the cached snapshot for loc if one exists and its age is
// within the TTL. An expired entry is evicted and reported absent.
func (c *Cache) Get(loc weather.Location) (weather.Snapshot, bool) {
	key := loc.Key()

	c.mu.RLock()
	e, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return weather.Snapshot{}, false
	}

	if c.now().Sub(e.fetchedAt) > c.ttl {
		c.mu.Lock()
		// Re-check under the write lock; a Put may have replaced the
		// entry since the read above.
		if cur, ok := c.data[key]; ok && cur.fetchedAt.Equal(e.fetchedAt) {
			delete(c.data, key)
		}
		c.mu.Unlock()
		return weather.Snapshot{}, false
	}

	return e.snapshot, true
}

// Put stores snap for loc with a fresh fetch timestamp, unconditionally
// replacing any existing entry.
func (c *Cache) Put(loc weather.Location, snap weather.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[loc.Key()] = entry{
		snapshot:  snap,
		fetchedAt: c.now(),
	}
}

var _ weather.Cache = (*Cache)(nil)
