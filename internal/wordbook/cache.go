// Implements the value and resource caches.

package wordbook

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// DefaultTTL is how long fetched values stay fresh.
const DefaultTTL = 60 * time.Second

// Clock returns the current time. Tests substitute a manual clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// entry is a memoized value and the instant it stops being fresh.
type entry struct {
	value   any
	expires time.Time
}

// Cache is a time-bounded memoization of fetch results keyed by operation
// (and arguments, for per-item lookups).
//
// Expiry is judged against the injected Clock, never the wall clock, so go-cache
// is used purely as the concurrent key/value store and never expires items
// on its own. It is safe for concurrent use. Invalidate and Flush take effect
// before they return; a fill that was in flight at that moment is discarded
// instead of stored.
type Cache struct {
	clock Clock
	ttl   time.Duration
	store *gocache.Cache

	mu         sync.Mutex
	generation uint64

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache returns a Cache. A nil clock means SystemClock, a zero ttl means
// DefaultTTL.
func NewCache(clock Clock, ttl time.Duration) *Cache {
	if clock == nil {
		clock = SystemClock{}
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		clock: clock,
		ttl:   ttl,
		store: gocache.New(gocache.NoExpiration, 0),
	}
}

// TTL returns the freshness window.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the fresh value stored under key.
func (c *Cache) Get(key string) (any, bool) {
	v, ok := c.store.Get(key)
	if !ok {
		return nil, false
	}
	e := v.(entry)
	if !c.clock.Now().Before(e.expires) {
		c.store.Delete(key)
		return nil, false
	}
	return e.value, true
}

// Set stores value under key with a fresh expiry stamp.
func (c *Cache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.set(key, value)
}

func (c *Cache) set(key string, value any) {
	c.store.Set(key, entry{value: value, expires: c.clock.Now().Add(c.ttl)}, gocache.NoExpiration)
}

// Invalidate drops key. The next read for key misses.
func (c *Cache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.store.Delete(key)
}

// Flush drops every entry.
func (c *Cache) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.store.Flush()
}

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

// Stats returns the current counters.
func (c *Cache) Stats() CacheStats {
	return CacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.store.ItemCount(),
	}
}

// Memo returns the fresh value under key or calls fill and stores its result.
//
// Errors are returned to the caller and never cached.
func Memo[T any](ctx context.Context, c *Cache, key string, fill func(context.Context) (T, error)) (T, error) {
	if v, ok := c.Get(key); ok {
		if t, ok := v.(T); ok {
			c.hits.Add(1)
			slog.DebugContext(ctx, "Cache hit", "key", key)
			return t, nil
		}
	}
	c.misses.Add(1)
	slog.DebugContext(ctx, "Cache miss", "key", key)

	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()

	v, err := fill(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation == gen {
		c.set(key, v)
	}
	return v, nil
}

// Resource is a value created on first use and kept for the process
// lifetime. It never expires and is never invalidated.
type Resource[T any] struct {
	get func() (T, error)
}

// NewResource returns a Resource built by create on first Get. A failed
// creation is remembered too.
func NewResource[T any](create func() (T, error)) *Resource[T] {
	return &Resource[T]{get: sync.OnceValues(create)}
}

// Get returns the resource, creating it if needed.
func (r *Resource[T]) Get() (T, error) {
	return r.get()
}
