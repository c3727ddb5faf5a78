package feature

import (
	"context"
	"errors"
	"time"
)

// Definition is the remote-sourced description of a flag.
type Definition struct {
	Key     string `json:"key"`
	Enabled bool   `json:"enabled"`
	// RolloutPercentage restricts an enabled flag to a share of users in [0, 100].
	// Nil means the flag is fully on or off according to Enabled.
	RolloutPercentage *int `json:"rollout_percentage,omitempty"`
	// Salt replaces the flag key as hash seed, letting two flags share or
	// decorrelate their buckets.
	Salt string `json:"salt,omitempty"`
}

// Validate checks that the definition can be evaluated.
func (d Definition) Validate() error {
	if d.RolloutPercentage != nil {
		if p := *d.RolloutPercentage; p < 0 || p > 100 {
			return errors.Join(ErrInvalidDefinition,
				errors.New("rollout percentage must be between 0 and 100"))
		}
	}
	return nil
}

// Percentage is a helper for building definitions inline.
func Percentage(p int) *int {
	return &p
}

// Result is the outcome of a single evaluation.
type Result struct {
	Enabled bool `json:"enabled"`
	// Default is true when Enabled came from the caller's fallback rather than
	// a real evaluation.
	Default bool `json:"default"`
	// Err is the swallowed failure behind a default result, kept for observability.
	Err error `json:"-"`
}

// Fetcher loads a flag definition from the source of truth.
type Fetcher interface {
	// Fetch returns the definition for flagKey or an error classified with the
	// package sentinels (ErrAuthentication, ErrRateLimit, ErrNetwork, ErrUnexpected).
	Fetch(ctx context.Context, flagKey string) (Definition, error)
}

// FetcherFunc adapts a plain function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, flagKey string) (Definition, error)

// Fetch calls f(ctx, flagKey).
func (f FetcherFunc) Fetch(ctx context.Context, flagKey string) (Definition, error) {
	return f(ctx, flagKey)
}

// Store holds evaluation results keyed by CacheKey.
// Get reports a miss for absent or expired entries; it must never return a stale value.
type Store interface {
	Get(ctx context.Context, key string) (value bool, ok bool, err error)
	Put(ctx context.Context, key string, value bool, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// CacheKey derives the cache key for an evaluation. An empty userID is the
// anonymous evaluation and maps to a key distinct from every named user.
func CacheKey(flagKey, userID string) string {
	if userID == "" {
		return flagKey
	}
	return flagKey + keySeparator + userID
}
