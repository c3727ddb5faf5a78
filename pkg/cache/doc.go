// Package cache provides a generic, thread-safe in-memory cache with per-entry
// time-to-live and an optional capacity bound.
//
// Entries expire lazily: Get never returns a value whose expiry time has been
// reached, and the stale entry is dropped at that moment. No background goroutine
// is started; call Cleanup periodically if memory held by expired entries matters.
//
// # Usage
//
//	c := cache.NewTTLCache[string, bool](
//		cache.WithTTL(30*time.Second),
//		cache.WithCapacity(10_000),
//	)
//
//	c.Put("new-checkout", true)
//
//	if v, ok := c.Get("new-checkout"); ok {
//		// fresh value
//	}
//
//	c.Invalidate("new-checkout")
//	c.Clear()
//
// A TTL of zero or less turns the cache into a no-op, which lets callers keep a
// single code path whether caching is configured or not.
//
// # Capacity Management
//
// When a capacity is configured and a new entry would exceed it, expired entries
// are dropped first. If none are expired the least recently used entry is evicted.
// Entries count as used when they are read with Get or written with Put.
//
// # Time
//
// The cache reads time through github.com/benbjohnson/clock so tests can drive
// expiry deterministically with clock.NewMock and WithClock.
//
// # Thread Safety
//
// All operations take a single mutex and are safe for concurrent use. Eviction
// callbacks run with that mutex held and must not call back into the cache.
package cache
