package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// NoExpiry keeps an entry for the lifetime of the cache.
const NoExpiry time.Duration = 0

type Clock func() time.Time

type entry[V any] struct {
	value     V
	fetchedAt time.Time
	ttl       time.Duration
}

func (e entry[V]) fresh(now time.Time) bool {
	return e.ttl == NoExpiry || now.Sub(e.fetchedAt) < e.ttl
}

// Cache memoizes fetch results per key. Failed fetches are never stored, and
// concurrent misses on the same key share one fetch.
type Cache[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]entry[V]
	group   singleflight.Group
	now     Clock
}

func New[K comparable, V any](clock Clock) *Cache[K, V] {
	if clock == nil {
		clock = time.Now
	}
	return &Cache[K, V]{
		entries: make(map[K]entry[V]),
		now:     clock,
	}
}

// GetOrFetch returns the cached value for key while it is fresh, otherwise it
// calls fetch and stores the result with the given ttl.
//
// Callers missing on the same key share one fetch, which runs on a context
// detached from ctx's cancellation. A caller whose ctx ends stops waiting
// with ctx.Err() while the fetch carries on.
func (c *Cache[K, V]) GetOrFetch(ctx context.Context, key K, ttl time.Duration, fetch func(context.Context) (V, error)) (V, error) {
	if v, ok := c.lookup(key); ok {
		return v, nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(fmt.Sprint(key), func() (any, error) {
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		v, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.store(key, v, ttl)
		return v, nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}

// FetchedAt reports when the entry for key was stored, if it is still fresh.
func (c *Cache[K, V]) FetchedAt(key K) (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || !e.fresh(c.now()) {
		return time.Time{}, false
	}
	return e.fetchedAt, true
}

// Len counts stored entries, stale ones included.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[K, V]) lookup(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || !e.fresh(c.now()) {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *Cache[K, V]) store(key K, v V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: v, fetchedAt: c.now(), ttl: ttl}
}
