// Package cache provides a thread-safe LRU cache for compiled queries.
//
// The same source text compiles to different ASTs in match and context mode
// (the root variable differs), so entries are keyed by mode and source.
//
// # Example
//
//	c := cache.New(1024)
//	expr, err := c.GetOrCompile(types.ModeMatch, `id == $0`, compile)
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/sandrolain/catql/pkg/metrics"
	"github.com/sandrolain/catql/pkg/types"
)

// DefaultCapacity is used when New is given a non-positive capacity.
const DefaultCapacity = 256

// Key identifies a compiled query.
type Key struct {
	Mode   types.Mode
	Source string
}

// Cache is an LRU cache of compiled expressions. Once the capacity is
// reached, the least recently used entry is evicted.
//
// Safe for concurrent use by multiple goroutines.
type Cache struct {
	lru      *lru.Cache[Key, *types.Expression]
	capacity int
	metrics  *metrics.Metrics
}

// Option configures a Cache.
type Option func(*Cache)

// WithMetrics records hits and misses on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// New creates a cache holding up to capacity expressions.
func New(capacity int, opts ...Option) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	l, err := lru.New[Key, *types.Expression](capacity)
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}
	c := &Cache{lru: l, capacity: capacity}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached expression and marks it most recently used.
func (c *Cache) Get(mode types.Mode, source string) (*types.Expression, bool) {
	expr, ok := c.lru.Get(Key{mode, source})
	c.metrics.ObserveCache(ok)
	return expr, ok
}

// Set inserts or replaces an expression.
func (c *Cache) Set(expr *types.Expression) {
	c.lru.Add(Key{expr.Mode(), expr.Source()}, expr)
}

// GetOrCompile returns the cached expression for mode and source, or calls
// compile and caches its result. Errors are not cached.
func (c *Cache) GetOrCompile(mode types.Mode, source string, compile func() (*types.Expression, error)) (*types.Expression, error) {
	if expr, ok := c.Get(mode, source); ok {
		return expr, nil
	}
	expr, err := compile()
	if err != nil {
		return nil, err
	}
	c.lru.Add(Key{mode, source}, expr)
	return expr, nil
}

// Len returns the number of cached expressions.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Capacity returns the maximum number of entries.
func (c *Cache) Capacity() int {
	return c.capacity
}

// Invalidate removes one entry.
func (c *Cache) Invalidate(mode types.Mode, source string) {
	c.lru.Remove(Key{mode, source})
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.lru.Purge()
}
