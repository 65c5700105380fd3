// Package cache provides a small read-through cache for expensive loads,
// combining LRU storage with singleflight so concurrent misses for the same
// key trigger a single load.
package cache

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// LoadFunc loads the value for a key on cache miss.
type LoadFunc[V any] func(ctx context.Context) (V, error)

// ReadThrough caches values by string key. On a miss, exactly one caller runs
// the loader; concurrent callers for the same key wait for and share its result.
// Load errors are never cached.
type ReadThrough[V any] struct {
	entries *lru.Cache[string, V]
	group   singleflight.Group
}

// NewReadThrough creates a cache holding at most maxEntries values.
func NewReadThrough[V any](maxEntries int) (*ReadThrough[V], error) {
	entries, err := lru.New[string, V](maxEntries)
	if err != nil {
		return nil, err
	}

	return &ReadThrough[V]{entries: entries}, nil
}

// Get returns the cached value for key, loading it on miss. The second return
// reports whether the value came from cache.
func (c *ReadThrough[V]) Get(ctx context.Context, key string, load LoadFunc[V]) (V, bool, error) {
	if v, ok := c.entries.Get(key); ok {
		return v, true, nil
	}

	val, err, _ := c.group.Do(key, func() (any, error) {
		loaded, loadErr := load(ctx)
		if loadErr != nil {
			return nil, loadErr
		}

		c.entries.Add(key, loaded)

		return loaded, nil
	})
	if err != nil {
		var zero V

		return zero, false, err
	}

	v, ok := val.(V)
	if !ok {
		var zero V

		return zero, false, nil
	}

	return v, false, nil
}

// Invalidate removes the entry for key, if present.
func (c *ReadThrough[V]) Invalidate(key string) {
	c.entries.Remove(key)
}

// Len returns the number of cached entries.
func (c *ReadThrough[V]) Len() int {
	return c.entries.Len()
}
