// Package cache provides the explicit read-through cache used in front of
// store reads: one cached value with a TTL, refreshed by GetOrFetch and
// dropped by Invalidate, which every write path calls so the next read
// observes the new state.
package cache

import (
	"context"
	"sync"
	"time"
)

type Cache[T any] struct {
	mu        sync.Mutex
	ttl       time.Duration
	value     T
	fetchedAt time.Time
	valid     bool
}

func New[T any](ttl time.Duration) *Cache[T] {
	return &Cache[T]{ttl: ttl}
}

// GetOrFetch returns the cached value when it is still fresh, otherwise calls
// fetch and caches its result. A fetch error leaves the cache empty. The lock
// is held across fetch so concurrent readers do not stampede the store.
func (c *Cache[T]) GetOrFetch(ctx context.Context, fetch func(context.Context) (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && time.Since(c.fetchedAt) < c.ttl {
		return c.value, nil
	}

	value, err := fetch(ctx)
	if err != nil {
		var zero T
		c.valid = false
		c.value = zero

		return zero, err
	}

	c.value = value
	c.fetchedAt = time.Now()
	c.valid = true

	return value, nil
}

// Invalidate drops the cached value so the next GetOrFetch hits the store.
func (c *Cache[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	c.valid = false
	c.value = zero
}
