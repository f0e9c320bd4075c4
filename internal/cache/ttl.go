// Package cache provides a small in-process TTL cache.  The response cache
// uses it when Redis is not reachable.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	v   V
	exp time.Time
}

// TTLCache is a mutex-guarded map whose entries expire.  Expired entries are
// dropped lazily on read and by Sweep.
type TTLCache[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]entry[V]
	ttl  time.Duration
	max  int // 0 means unbounded
	now  func() time.Time
}

// NewTTL returns a cache whose Set uses ttl as the default lifetime.
func NewTTL[K comparable, V any](ttl time.Duration) *TTLCache[K, V] {
	return &TTLCache[K, V]{data: make(map[K]entry[V]), ttl: ttl, now: time.Now}
}

// NewBoundedTTL is NewTTL holding at most size entries.  A full cache first
// drops expired entries, then the one closest to expiry.
func NewBoundedTTL[K comparable, V any](ttl time.Duration, size int) *TTLCache[K, V] {
	c := NewTTL[K, V](ttl)
	c.max = size
	return c
}

func (c *TTLCache[K, V]) Get(k K) (V, bool) {
	c.mu.RLock()
	e, ok := c.data[k]
	c.mu.RUnlock()
	if !ok {
		var zero V
		return zero, false
	}
	if c.now().After(e.exp) {
		c.mu.Lock()
		// re-check: a concurrent Set may have refreshed the entry
		if cur, ok := c.data[k]; ok && !c.now().Before(cur.exp) {
			delete(c.data, k)
		}
		c.mu.Unlock()
		var zero V
		return zero, false
	}
	return e.v, true
}

func (c *TTLCache[K, V]) Set(k K, v V) { c.SetWithTTL(k, v, c.ttl) }

// SetWithTTL stores v under k for ttl instead of the default lifetime.
func (c *TTLCache[K, V]) SetWithTTL(k K, v V, ttl time.Duration) {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.data[k]; !exists && c.max > 0 && len(c.data) >= c.max {
		c.evictLocked(now)
	}
	c.data[k] = entry[V]{v: v, exp: now.Add(ttl)}
}

// evictLocked makes room for one entry.  c.mu must be held.
func (c *TTLCache[K, V]) evictLocked(now time.Time) {
	var (
		oldest    K
		oldestExp time.Time
		found     bool
	)
	for k, e := range c.data {
		if now.After(e.exp) {
			delete(c.data, k)
			continue
		}
		if !found || e.exp.Before(oldestExp) {
			oldest, oldestExp, found = k, e.exp, true
		}
	}
	if len(c.data) >= c.max && found {
		delete(c.data, oldest)
	}
}

func (c *TTLCache[K, V]) Delete(k K) {
	c.mu.Lock()
	delete(c.data, k)
	c.mu.Unlock()
}

// Len returns the number of stored entries, expired or not.
func (c *TTLCache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Sweep removes every expired entry and returns how many were dropped.
func (c *TTLCache[K, V]) Sweep() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k, e := range c.data {
		if now.After(e.exp) {
			delete(c.data, k)
			n++
		}
	}
	return n
}
