package cache

import (
	"context"
	"sync"
	"time"
)

// Loader fetches a fresh value for a key on cache miss.
type Loader func(ctx context.Context) (interface{}, error)

type entry struct {
	data      interface{}
	timestamp time.Time
	ttl       time.Duration
}

func (e *entry) fresh(now time.Time) bool {
	return now.Sub(e.timestamp) < e.ttl
}

// call tracks an in-flight loader so concurrent misses for the same key
// share one upstream fetch instead of racing duplicate requests.
type call struct {
	done chan struct{}
	val  interface{}
	err  error
}

// Stats are cumulative cache counters, exported for observability.
type Stats struct {
	Hits        int64
	Misses      int64
	StaleServes int64
}

// Cache is a TTL-based memoizing cache around asynchronous loaders.
// A stale entry is still served when the refreshing load fails, so
// consumers keep rendering the last known-good data. The clock is
// injectable so tests control expiry without wall-clock sleeps.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	pending map[string]*call
	now     func() time.Time
	stats   Stats
}

// New creates an empty cache using the real clock.
func New() *Cache {
	return NewWithClock(time.Now)
}

// NewWithClock creates an empty cache with a custom time source.
func NewWithClock(now func() time.Time) *Cache {
	return &Cache{
		entries: make(map[string]*entry),
		pending: make(map[string]*call),
		now:     now,
	}
}

// Get returns the cached value for key when one is fresher than ttl,
// otherwise invokes load. On load success the result is stored and
// returned; on load failure any previous value (fresh or stale) is
// returned instead, and the error only propagates when the cache holds
// nothing at all for the key.
func (c *Cache) Get(ctx context.Context, key string, ttl time.Duration, load Loader) (interface{}, error) {
	c.mu.Lock()

	if e, ok := c.entries[key]; ok && e.fresh(c.now()) {
		c.stats.Hits++
		c.mu.Unlock()
		return e.data, nil
	}

	if inflight, ok := c.pending[key]; ok {
		c.mu.Unlock()
		select {
		case <-inflight.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return c.resolve(key, inflight.val, inflight.err)
	}

	c.stats.Misses++
	inflight := &call{done: make(chan struct{})}
	c.pending[key] = inflight
	c.mu.Unlock()

	inflight.val, inflight.err = load(ctx)

	c.mu.Lock()
	if inflight.err == nil {
		c.entries[key] = &entry{data: inflight.val, timestamp: c.now(), ttl: ttl}
	}
	delete(c.pending, key)
	c.mu.Unlock()
	close(inflight.done)

	return c.resolve(key, inflight.val, inflight.err)
}

// resolve applies the stale-fallback rule to a completed load.
func (c *Cache) resolve(key string, val interface{}, err error) (interface{}, error) {
	if err == nil {
		return val, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		c.stats.StaleServes++
		return e.data, nil
	}
	return nil, err
}

// Invalidate removes a single entry.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Clear empties the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*entry)
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cumulative counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Fetch is a typed convenience wrapper around Get.
func Fetch[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, error) {
	v, err := c.Get(ctx, key, ttl, func(ctx context.Context) (interface{}, error) {
		return load(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}
