package feature

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/flaglite/pkg/logger"
)

const (
	// DefaultCacheTTL is how long evaluation results stay cached.
	DefaultCacheTTL = 30 * time.Second
	// DefaultFetchTimeout bounds a single remote fetch.
	DefaultFetchTimeout = 5 * time.Second
)

// Evaluator decides whether a flag is enabled. It consults the store first,
// coalesces concurrent misses for the same cache key into one fetch, buckets the
// fetched definition, caches the outcome and turns every failure into the
// caller's default value.
//
// Only successful evaluations are cached. A failed fetch leaves no trace, so the
// next call for the same key fetches again.
type Evaluator struct {
	fetcher   Fetcher
	store     Store
	ttl       time.Duration
	timeout   time.Duration
	anonymous AnonymousMode
	logger    *slog.Logger
	metrics   *Metrics

	// flights is the registry of pending fetches, one per cache key.
	flights singleflight.Group
}

// EvaluatorOption configures an Evaluator.
type EvaluatorOption func(*Evaluator)

// WithStore enables caching in s with the given TTL. A nil store or a TTL <= 0
// disables caching.
func WithStore(s Store, ttl time.Duration) EvaluatorOption {
	return func(e *Evaluator) {
		e.store = s
		e.ttl = ttl
	}
}

// WithFetchTimeout bounds each remote fetch. Values <= 0 keep the default.
func WithFetchTimeout(d time.Duration) EvaluatorOption {
	return func(e *Evaluator) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithAnonymousMode selects how percentage rollouts treat anonymous evaluations.
func WithAnonymousMode(m AnonymousMode) EvaluatorOption {
	return func(e *Evaluator) {
		if m != "" {
			e.anonymous = m
		}
	}
}

// WithLogger sets the logger used to report swallowed failures.
func WithLogger(l *slog.Logger) EvaluatorOption {
	return func(e *Evaluator) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics records evaluation counters in m.
func WithMetrics(m *Metrics) EvaluatorOption {
	return func(e *Evaluator) {
		e.metrics = m
	}
}

// NewEvaluator creates an evaluator over fetcher. Without WithStore it never caches.
func NewEvaluator(fetcher Fetcher, opts ...EvaluatorOption) (*Evaluator, error) {
	if fetcher == nil {
		return nil, errors.Join(ErrConfiguration, errors.New("fetcher is required"))
	}

	e := &Evaluator{
		fetcher:   fetcher,
		timeout:   DefaultFetchTimeout,
		anonymous: AnonymousGlobal,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.ttl <= 0 {
		e.store = nil
	}
	if e.store == nil {
		e.ttl = 0
	}

	e.logger = e.logger.With(logger.Component("flaglite.evaluator"))
	return e, nil
}

// CacheTTL returns the effective cache TTL, zero when caching is off.
func (e *Evaluator) CacheTTL() time.Duration {
	return e.ttl
}

// Lookup returns a live cached result without fetching. Store failures count as misses.
func (e *Evaluator) Lookup(ctx context.Context, flagKey, userID string) (bool, bool) {
	if e.store == nil || ValidateKey(flagKey, userID) != nil {
		return false, false
	}

	v, ok, err := e.store.Get(ctx, CacheKey(flagKey, userID))
	if err != nil {
		e.logger.DebugContext(ctx, "flag cache read failed",
			logger.FlagKey(flagKey),
			logger.Error(err),
		)
		return false, false
	}
	return v, ok
}

// Evaluate resolves flagKey for userID. It never returns an error: any failure
// yields Result{Enabled: defaultOnError, Default: true}.
//
// Cancelling ctx only abandons this caller's wait. The fetch itself runs on a
// detached context bounded by the fetch timeout, so it still populates the cache
// for other and future callers.
func (e *Evaluator) Evaluate(ctx context.Context, flagKey, userID string, defaultOnError bool) Result {
	if err := ValidateKey(flagKey, userID); err != nil {
		return e.fallback(ctx, flagKey, userID, defaultOnError, err)
	}

	if v, ok := e.Lookup(ctx, flagKey, userID); ok {
		e.metrics.observeEvaluation("cache")
		e.logger.DebugContext(ctx, "flag cache hit",
			logger.FlagKey(flagKey),
			logger.UserID(userID),
		)
		return Result{Enabled: v}
	}

	key := CacheKey(flagKey, userID)
	ch := e.flights.DoChan(key, func() (any, error) {
		return e.load(ctx, flagKey, userID, key)
	})

	select {
	case res := <-ch:
		if res.Shared {
			e.metrics.observeCoalesced()
		}
		if res.Err != nil {
			return e.fallback(ctx, flagKey, userID, defaultOnError, res.Err)
		}
		e.metrics.observeEvaluation("fetch")
		return Result{Enabled: res.Val.(bool)}
	case <-ctx.Done():
		return e.fallback(ctx, flagKey, userID, defaultOnError, ctx.Err())
	}
}

// Enabled is Evaluate reduced to its boolean.
func (e *Evaluator) Enabled(ctx context.Context, flagKey, userID string, defaultOnError bool) bool {
	return e.Evaluate(ctx, flagKey, userID, defaultOnError).Enabled
}

// Fetch calls the fetcher directly, bypassing cache and coalescing, and returns
// its error instead of swallowing it.
func (e *Evaluator) Fetch(ctx context.Context, flagKey string) (Definition, error) {
	if err := ValidateKey(flagKey, ""); err != nil {
		return Definition{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.fetch(ctx, flagKey)
}

// Invalidate drops the cached result for (flagKey, userID). A fetch already in
// flight for the key is left running and keeps serving its waiters. Store errors
// propagate.
func (e *Evaluator) Invalidate(ctx context.Context, flagKey, userID string) error {
	if err := ValidateKey(flagKey, userID); err != nil {
		return err
	}
	if e.store == nil {
		return nil
	}
	return e.store.Invalidate(ctx, CacheKey(flagKey, userID))
}

// Clear drops every cached result. Store errors propagate.
func (e *Evaluator) Clear(ctx context.Context) error {
	if e.store == nil {
		return nil
	}
	return e.store.Clear(ctx)
}

// load runs once per flight; its outcome is shared by every waiter on key.
func (e *Evaluator) load(ctx context.Context, flagKey, userID, key string) (any, error) {
	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	defer cancel()

	// A previous flight may have filled the store after this caller missed.
	if v, ok := e.Lookup(fetchCtx, flagKey, userID); ok {
		return v, nil
	}

	def, err := e.fetch(fetchCtx, flagKey)
	if err != nil {
		return nil, err
	}

	enabled, err := EnabledFor(def, flagKey, userID, e.anonymous)
	if err != nil {
		return nil, err
	}

	if e.store != nil {
		if err := e.store.Put(fetchCtx, key, enabled, e.ttl); err != nil {
			e.logger.WarnContext(ctx, "flag cache write failed",
				logger.FlagKey(flagKey),
				logger.Error(err),
			)
		}
	}

	return enabled, nil
}

func (e *Evaluator) fetch(ctx context.Context, flagKey string) (def Definition, err error) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			def = Definition{}
			err = fmt.Errorf("%w: fetcher panicked: %v", ErrUnexpected, r)
		}
		e.metrics.observeFetch(err, time.Since(start))
	}()

	def, err = e.fetcher.Fetch(ctx, flagKey)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, ErrNetwork) {
		err = errors.Join(ErrNetwork, err)
	}
	return def, err
}

func (e *Evaluator) fallback(ctx context.Context, flagKey, userID string, value bool, err error) Result {
	e.metrics.observeEvaluation("default")
	e.metrics.observeError(err)
	e.logger.WarnContext(ctx, "flag evaluation failed, using default",
		logger.FlagKey(flagKey),
		logger.UserID(userID),
		logger.ErrorKind(Kind(err)),
		logger.Error(err),
		slog.Bool("default", value),
	)
	return Result{Enabled: value, Default: true, Err: err}
}
