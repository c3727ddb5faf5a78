package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultTTL is used when a cache is created with WithTTL omitted.
const DefaultTTL = 30 * time.Second

type ttlEntry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
}

// TTLCache is a thread-safe cache whose entries expire after a fixed time-to-live.
// Expiry is lazy: stale entries are never returned, and are dropped on the next read,
// write or Cleanup call. When a capacity is configured the least recently used entry
// is evicted once the cache is full.
type TTLCache[K comparable, V any] struct {
	ttl      time.Duration
	capacity int
	clock    clock.Clock
	items    map[K]*list.Element
	eviction *list.List
	mu       sync.Mutex
	onEvict  func(key K, value V)
}

type options struct {
	ttl      time.Duration
	capacity int
	clock    clock.Clock
}

// Option configures a TTLCache.
type Option func(*options)

// WithTTL sets the entry lifetime. A TTL <= 0 disables caching: every Put is dropped
// and every Get is a miss.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.ttl = ttl
	}
}

// WithCapacity bounds the number of live entries. Zero or negative means unbounded.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}

// WithClock replaces the wall clock, mostly for tests.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// NewTTLCache creates a cache with a 30 second TTL unless configured otherwise.
func NewTTLCache[K comparable, V any](opts ...Option) *TTLCache[K, V] {
	o := &options{
		ttl:   DefaultTTL,
		clock: clock.New(),
	}
	for _, opt := range opts {
		opt(o)
	}

	return &TTLCache[K, V]{
		ttl:      o.ttl,
		capacity: o.capacity,
		clock:    o.clock,
		items:    make(map[K]*list.Element),
		eviction: list.New(),
	}
}

// TTL returns the configured lifetime.
func (c *TTLCache[K, V]) TTL() time.Duration {
	return c.ttl
}

// Enabled reports whether the cache stores anything at all.
func (c *TTLCache[K, V]) Enabled() bool {
	return c.ttl > 0
}

// SetEvictCallback registers fn to be called for every entry that leaves the cache
// through eviction, expiry, invalidation or Clear.
func (c *TTLCache[K, V]) SetEvictCallback(fn func(key K, value V)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEvict = fn
}

// Get returns the cached value iff it exists and has not expired.
func (c *TTLCache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	elem, ok := c.items[key]
	if !ok {
		return zero, false
	}

	entry := elem.Value.(*ttlEntry[K, V])
	if !c.clock.Now().Before(entry.expiresAt) {
		c.removeElement(elem)
		return zero, false
	}

	c.eviction.MoveToFront(elem)
	return entry.value, true
}

// Put stores value under key using the cache TTL.
func (c *TTLCache[K, V]) Put(key K, value V) {
	c.PutWithTTL(key, value, c.ttl)
}

// PutWithTTL stores value under key with an explicit lifetime, overwriting any
// previous entry. A ttl <= 0 is a no-op.
func (c *TTLCache[K, V]) PutWithTTL(key K, value V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.clock.Now().Add(ttl)

	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*ttlEntry[K, V])
		entry.value = value
		entry.expiresAt = expiresAt
		c.eviction.MoveToFront(elem)
		return
	}

	elem := c.eviction.PushFront(&ttlEntry[K, V]{key: key, value: value, expiresAt: expiresAt})
	c.items[key] = elem

	if c.capacity > 0 && c.eviction.Len() > c.capacity {
		// Expired entries go first so a full cache does not push out live data.
		if c.removeExpired() == 0 {
			c.evictOldest()
		}
	}
}

// Invalidate removes key and reports whether a live or stale entry was present.
func (c *TTLCache[K, V]) Invalidate(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return false
	}
	c.removeElement(elem)
	return true
}

// Clear removes every entry.
func (c *TTLCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.onEvict != nil {
		for _, elem := range c.items {
			entry := elem.Value.(*ttlEntry[K, V])
			c.onEvict(entry.key, entry.value)
		}
	}

	c.items = make(map[K]*list.Element)
	c.eviction.Init()
}

// Cleanup drops all expired entries and returns how many were removed.
func (c *TTLCache[K, V]) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.removeExpired()
}

// Len returns the number of stored entries, including expired ones not yet dropped.
func (c *TTLCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eviction.Len()
}

// Must be called with lock held.
func (c *TTLCache[K, V]) removeExpired() int {
	now := c.clock.Now()
	removed := 0
	for elem := c.eviction.Back(); elem != nil; {
		prev := elem.Prev()
		if entry := elem.Value.(*ttlEntry[K, V]); !now.Before(entry.expiresAt) {
			c.removeElement(elem)
			removed++
		}
		elem = prev
	}
	return removed
}

// Must be called with lock held.
func (c *TTLCache[K, V]) evictOldest() {
	if elem := c.eviction.Back(); elem != nil {
		c.removeElement(elem)
	}
}

// Must be called with lock held.
func (c *TTLCache[K, V]) removeElement(elem *list.Element) {
	c.eviction.Remove(elem)
	entry := elem.Value.(*ttlEntry[K, V])
	delete(c.items, entry.key)

	if c.onEvict != nil {
		c.onEvict(entry.key, entry.value)
	}
}
