package cache_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/flaglite/pkg/cache"
)

func TestTTLCache_Basic(t *testing.T) {
	t.Parallel()

	t.Run("put and get", func(t *testing.T) {
		t.Parallel()
		c := cache.NewTTLCache[string, bool]()

		c.Put("a", true)
		c.Put("b", false)

		val, ok := c.Get("a")
		assert.True(t, ok)
		assert.True(t, val)

		val, ok = c.Get("b")
		assert.True(t, ok)
		assert.False(t, val)

		assert.Equal(t, 2, c.Len())
		assert.Equal(t, cache.DefaultTTL, c.TTL())
	})

	t.Run("get non-existent", func(t *testing.T) {
		t.Parallel()
		c := cache.NewTTLCache[string, int]()

		val, ok := c.Get("missing")
		assert.False(t, ok)
		assert.Equal(t, 0, val)
	})

	t.Run("overwrite existing", func(t *testing.T) {
		t.Parallel()
		c := cache.NewTTLCache[string, int]()

		c.Put("a", 1)
		c.Put("a", 2)

		val, ok := c.Get("a")
		require.True(t, ok)
		assert.Equal(t, 2, val)
		assert.Equal(t, 1, c.Len())
	})
}

func TestTTLCache_Expiry(t *testing.T) {
	t.Parallel()

	t.Run("entry expires after ttl", func(t *testing.T) {
		t.Parallel()
		mock := clock.NewMock()
		c := cache.NewTTLCache[string, bool](cache.WithTTL(30*time.Second), cache.WithClock(mock))

		c.Put("flag", true)

		mock.Add(29 * time.Second)
		val, ok := c.Get("flag")
		assert.True(t, ok)
		assert.True(t, val)

		mock.Add(time.Second)
		_, ok = c.Get("flag")
		assert.False(t, ok, "entry must not be returned once expiresAt is reached")
		assert.Equal(t, 0, c.Len(), "expired entry is dropped on read")
	})

	t.Run("overwrite refreshes expiry", func(t *testing.T) {
		t.Parallel()
		mock := clock.NewMock()
		c := cache.NewTTLCache[string, bool](cache.WithTTL(10*time.Second), cache.WithClock(mock))

		c.Put("flag", true)
		mock.Add(8 * time.Second)
		c.Put("flag", false)
		mock.Add(8 * time.Second)

		val, ok := c.Get("flag")
		assert.True(t, ok)
		assert.False(t, val)
	})

	t.Run("explicit ttl", func(t *testing.T) {
		t.Parallel()
		mock := clock.NewMock()
		c := cache.NewTTLCache[string, bool](cache.WithClock(mock))

		c.PutWithTTL("short", true, time.Second)
		c.PutWithTTL("long", true, time.Minute)

		mock.Add(2 * time.Second)
		_, ok := c.Get("short")
		assert.False(t, ok)
		_, ok = c.Get("long")
		assert.True(t, ok)
	})

	t.Run("cleanup removes only expired entries", func(t *testing.T) {
		t.Parallel()
		mock := clock.NewMock()
		c := cache.NewTTLCache[string, bool](cache.WithClock(mock))

		c.PutWithTTL("a", true, time.Second)
		c.PutWithTTL("b", true, time.Second)
		c.PutWithTTL("c", true, time.Hour)

		mock.Add(5 * time.Second)
		assert.Equal(t, 3, c.Len(), "lazy expiry keeps entries until touched")
		assert.Equal(t, 2, c.Cleanup())
		assert.Equal(t, 1, c.Len())
		assert.Equal(t, 0, c.Cleanup())
	})
}

func TestTTLCache_Disabled(t *testing.T) {
	t.Parallel()

	for _, ttl := range []time.Duration{0, -time.Second} {
		t.Run(fmt.Sprintf("ttl=%s", ttl), func(t *testing.T) {
			t.Parallel()
			c := cache.NewTTLCache[string, bool](cache.WithTTL(ttl))

			c.Put("flag", true)
			c.PutWithTTL("other", true, ttl)

			_, ok := c.Get("flag")
			assert.False(t, ok)
			assert.Equal(t, 0, c.Len())
			assert.False(t, c.Enabled())
		})
	}
}

func TestTTLCache_InvalidateAndClear(t *testing.T) {
	t.Parallel()

	t.Run("invalidate removes only the given key", func(t *testing.T) {
		t.Parallel()
		c := cache.NewTTLCache[string, bool]()
		c.Put("a", true)
		c.Put("b", true)

		assert.True(t, c.Invalidate("a"))
		assert.False(t, c.Invalidate("a"), "second invalidate is a no-op")
		assert.False(t, c.Invalidate("missing"))

		_, ok := c.Get("a")
		assert.False(t, ok)
		_, ok = c.Get("b")
		assert.True(t, ok)
	})

	t.Run("clear removes all and fires callback", func(t *testing.T) {
		t.Parallel()
		c := cache.NewTTLCache[string, bool]()
		var evicted []string
		c.SetEvictCallback(func(key string, _ bool) {
			evicted = append(evicted, key)
		})

		c.Put("a", true)
		c.Put("b", false)
		c.Clear()

		assert.Equal(t, 0, c.Len())
		assert.ElementsMatch(t, []string{"a", "b"}, evicted)
	})
}

func TestTTLCache_Capacity(t *testing.T) {
	t.Parallel()

	t.Run("evicts least recently used", func(t *testing.T) {
		t.Parallel()
		c := cache.NewTTLCache[string, int](cache.WithCapacity(3))

		c.Put("a", 1)
		c.Put("b", 2)
		c.Put("c", 3)

		// Touch "a" so "b" becomes the oldest.
		_, _ = c.Get("a")
		c.Put("d", 4)

		_, ok := c.Get("b")
		assert.False(t, ok, "b should have been evicted")
		for _, k := range []string{"a", "c", "d"} {
			_, ok := c.Get(k)
			assert.True(t, ok, k)
		}
		assert.Equal(t, 3, c.Len())
	})

	t.Run("expired entries are dropped before live ones", func(t *testing.T) {
		t.Parallel()
		mock := clock.NewMock()
		c := cache.NewTTLCache[string, int](cache.WithCapacity(2), cache.WithClock(mock))

		c.PutWithTTL("stale", 1, time.Second)
		c.PutWithTTL("live", 2, time.Hour)
		mock.Add(2 * time.Second)
		c.Put("new", 3)

		_, ok := c.Get("live")
		assert.True(t, ok)
		_, ok = c.Get("new")
		assert.True(t, ok)
		assert.Equal(t, 2, c.Len())
	})
}

func TestTTLCache_Concurrent(t *testing.T) {
	t.Parallel()
	c := cache.NewTTLCache[string, int]()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", n%10)
			for j := range 100 {
				c.Put(key, j)
				_, _ = c.Get(key)
				if j%25 == 0 {
					c.Invalidate(key)
				}
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Len(), 10)
}
