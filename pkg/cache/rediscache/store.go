package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/flaglite/pkg/feature"
)

const (
	// DefaultKeyPrefix namespaces cached evaluations.
	DefaultKeyPrefix = "flaglite:"

	defaultScanBatchSize = 1000

	valueOn  = "1"
	valueOff = "0"
)

// Store keeps evaluation results in Redis so several processes share one cache.
// Entries expire server-side after the TTL passed to Put.
type Store struct {
	db            redis.UniversalClient
	prefix        string
	scanBatchSize int64
}

var _ feature.Store = (*Store)(nil)

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithKeyPrefix sets the key namespace. Clear removes every key under it.
func WithKeyPrefix(prefix string) StoreOption {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithScanBatchSize sets the SCAN COUNT hint used by Clear.
func WithScanBatchSize(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.scanBatchSize = int64(n)
		}
	}
}

// NewStore wraps client as a feature.Store.
func NewStore(client redis.UniversalClient, opts ...StoreOption) *Store {
	s := &Store{
		db:            client,
		prefix:        DefaultKeyPrefix,
		scanBatchSize: defaultScanBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewStoreWithConfig creates a Store using the prefix and batch size from cfg.
func NewStoreWithConfig(client redis.UniversalClient, cfg Config) *Store {
	return NewStore(client, WithKeyPrefix(cfg.KeyPrefix), WithScanBatchSize(cfg.ScanBatchSize))
}

// Get returns ok=false for missing or expired keys (redis.Nil is a miss).
func (s *Store) Get(ctx context.Context, key string) (bool, bool, error) {
	val, err := s.db.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}

	switch val {
	case valueOn:
		return true, true, nil
	case valueOff:
		return false, true, nil
	default:
		return false, false, fmt.Errorf("%w: %q", ErrCorruptValue, val)
	}
}

// Put stores value with expiration ttl. A non-positive ttl stores nothing,
// since Redis would otherwise keep the entry forever.
func (s *Store) Put(ctx context.Context, key string, value bool, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	v := valueOff
	if value {
		v = valueOn
	}
	return s.db.Set(ctx, s.prefix+key, v, ttl).Err()
}

// Invalidate removes a single entry.
func (s *Store) Invalidate(ctx context.Context, key string) error {
	return s.db.Del(ctx, s.prefix+key).Err()
}

// Clear removes every key under the store prefix using SCAN so Redis is never
// blocked. Keys outside the prefix are untouched.
func (s *Store) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		batch, next, err := s.db.Scan(ctx, cursor, s.prefix+"*", s.scanBatchSize).Result()
		if err != nil {
			return err
		}
		if len(batch) > 0 {
			if err := s.db.Del(ctx, batch...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Healthcheck pings the server; it fits readiness probes.
func (s *Store) Healthcheck(ctx context.Context) error {
	if err := s.db.Ping(ctx).Err(); err != nil {
		return errors.Join(ErrHealthcheckFailed, err)
	}
	return nil
}

// Close terminates the Redis connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Conn returns the underlying Redis client for advanced operations.
func (s *Store) Conn() redis.UniversalClient {
	return s.db
}
