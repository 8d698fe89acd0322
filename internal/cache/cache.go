// Package cache wraps a bounded LRU with hit/miss accounting.
//
// Entries are evicted only under capacity pressure, never by time.
package cache

import (
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRU is a bounded least-recently-used cache. Safe for concurrent use.
type LRU[K comparable, V any] struct {
	inner  *lru.Cache[K, V]
	hits   uint64
	misses uint64
}

// New creates an LRU with the given capacity. Capacity below 1 is
// clamped to 1 so callers can wire config values straight through.
func New[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	inner, err := lru.New[K, V](capacity)
	if err != nil {
		// lru.New only fails on non-positive size, excluded above.
		panic(err)
	}
	return &LRU[K, V]{inner: inner}
}

// Get returns the cached value and whether it was present.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	v, ok := c.inner.Get(key)
	if ok {
		atomic.AddUint64(&c.hits, 1)
	} else {
		atomic.AddUint64(&c.misses, 1)
	}
	return v, ok
}

// Put stores a value, evicting the least-recently-used entry if full.
func (c *LRU[K, V]) Put(key K, value V) {
	c.inner.Add(key, value)
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	return c.inner.Len()
}

// Stats returns hit and miss counts since creation.
func (c *LRU[K, V]) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses)
}

// Clear empties the cache and resets counters.
func (c *LRU[K, V]) Clear() {
	c.inner.Purge()
	atomic.StoreUint64(&c.hits, 0)
	atomic.StoreUint64(&c.misses, 0)
}
