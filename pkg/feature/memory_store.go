package feature

import (
	"context"
	"time"

	"github.com/dmitrymomot/flaglite/pkg/cache"
)

// MemoryStore adapts an in-process TTLCache to the Store interface.
type MemoryStore struct {
	cache *cache.TTLCache[string, bool]
}

// NewMemoryStore wraps c. A nil cache gets a default one with a 30 second TTL.
func NewMemoryStore(c *cache.TTLCache[string, bool]) *MemoryStore {
	if c == nil {
		c = cache.NewTTLCache[string, bool]()
	}
	return &MemoryStore{cache: c}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) (bool, bool, error) {
	v, ok := s.cache.Get(key)
	return v, ok, nil
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, key string, value bool, ttl time.Duration) error {
	s.cache.PutWithTTL(key, value, ttl)
	return nil
}

// Invalidate implements Store.
func (s *MemoryStore) Invalidate(_ context.Context, key string) error {
	s.cache.Invalidate(key)
	return nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(context.Context) error {
	s.cache.Clear()
	return nil
}

// Len returns the number of entries held, expired ones included.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}
