package flaglite

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dmitrymomot/flaglite/pkg/async"
	"github.com/dmitrymomot/flaglite/pkg/cache"
	"github.com/dmitrymomot/flaglite/pkg/feature"
	"github.com/dmitrymomot/flaglite/pkg/flagapi"
	"github.com/dmitrymomot/flaglite/pkg/logger"
)

// Client evaluates feature flags. It is an explicit instance owned by the host
// application: construct it once, share it between goroutines and Close it on
// shutdown.
//
// Blocking (Enabled, Evaluate) and non-blocking (EnabledAsync) callers share one
// evaluator, so they see the same cache and coalesce into the same fetches.
type Client struct {
	evaluator *feature.Evaluator
	fetcher   feature.Fetcher
	logger    *slog.Logger

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// New builds a Client from cfg. A missing API key, malformed base URL or unknown
// anonymous mode fails with feature.ErrConfiguration. This is the only place an
// error surfaces to the application; evaluations never fail.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg, err := cfg.resolve()
	if err != nil {
		return nil, err
	}

	o := options{clock: clock.New()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.timeout > 0 {
		cfg.Timeout = o.timeout
	}
	if o.cacheTTL != nil {
		cfg.CacheTTL = *o.cacheTTL
	}
	if o.noCache {
		cfg.DisableCache = true
	}

	fetcher := o.fetcher
	if fetcher == nil {
		fetcher, err = flagapi.New(cfg.BaseURL, cfg.APIKey,
			flagapi.WithHTTPClient(o.httpClient),
			flagapi.WithTimeout(cfg.Timeout),
			flagapi.WithLogger(o.logger),
		)
		if err != nil {
			return nil, err
		}
	}

	c := &Client{
		fetcher: fetcher,
		logger:  o.logger.With(logger.Component("flaglite")),
	}

	mode, _ := feature.ParseAnonymousMode(cfg.AnonymousBucketing)
	ttl := cfg.cacheTTL()
	store := o.store
	if store == nil && ttl > 0 {
		store = feature.NewMemoryStore(cache.NewTTLCache[string, bool](
			cache.WithTTL(ttl),
			cache.WithCapacity(cfg.CacheMaxEntries),
			cache.WithClock(o.clock),
		))
	}

	c.evaluator, err = feature.NewEvaluator(feature.FetcherFunc(c.fetch),
		feature.WithStore(store, ttl),
		feature.WithFetchTimeout(cfg.Timeout),
		feature.WithAnonymousMode(mode),
		feature.WithLogger(o.logger),
		feature.WithMetrics(o.metrics),
	)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// NewFromEnv builds a Client from FLAGLITE_* environment variables.
func NewFromEnv(opts ...Option) (*Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

// With constructs a Client, passes it to fn and closes it on every exit path,
// including a panic in fn. Errors from fn and Close are joined.
func With(cfg Config, fn func(*Client) error, opts ...Option) (err error) {
	c, err := New(cfg, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := c.Close(); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()
	return fn(c)
}

// Enabled reports whether flagKey is on. It blocks until the result is cached,
// fetched or abandoned through ctx, and returns the WithDefault value (false
// unless set) on any failure.
func (c *Client) Enabled(ctx context.Context, flagKey string, opts ...EvalOption) bool {
	return c.Evaluate(ctx, flagKey, opts...).Enabled
}

// Evaluate is Enabled with the failure details kept in the Result.
func (c *Client) Evaluate(ctx context.Context, flagKey string, opts ...EvalOption) feature.Result {
	o := newEvalOptions(opts)
	return c.evaluator.Evaluate(ctx, flagKey, o.userID, o.defaultValue)
}

// EnabledAsync starts an evaluation and returns immediately. A cached result
// resolves the future at once without spawning a goroutine. The future never
// carries an error: failures resolve to the default value.
func (c *Client) EnabledAsync(ctx context.Context, flagKey string, opts ...EvalOption) *async.Future[bool] {
	o := newEvalOptions(opts)
	if v, ok := c.evaluator.Lookup(ctx, flagKey, o.userID); ok {
		return async.Resolved(v, nil)
	}
	return async.Go(ctx, func(ctx context.Context) (bool, error) {
		return c.evaluator.Enabled(ctx, flagKey, o.userID, o.defaultValue), nil
	})
}

// Invalidate drops the cached result for flagKey and the ForUser identifier,
// leaving every other entry intact.
func (c *Client) Invalidate(ctx context.Context, flagKey string, opts ...EvalOption) error {
	o := newEvalOptions(opts)
	return c.evaluator.Invalidate(ctx, flagKey, o.userID)
}

// InvalidateAsync runs Invalidate in the background.
func (c *Client) InvalidateAsync(ctx context.Context, flagKey string, opts ...EvalOption) *async.Future[struct{}] {
	return async.Go(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.Invalidate(ctx, flagKey, opts...)
	})
}

// Clear drops every cached result.
func (c *Client) Clear(ctx context.Context) error {
	return c.evaluator.Clear(ctx)
}

// ClearAsync runs Clear in the background.
func (c *Client) ClearAsync(ctx context.Context) *async.Future[struct{}] {
	return async.Go(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.Clear(ctx)
	})
}

// Fetch loads the raw definition of flagKey, bypassing the cache, and returns
// the specific error instead of a default: feature.ErrAuthentication,
// feature.ErrRateLimit, feature.ErrNetwork and so on.
func (c *Client) Fetch(ctx context.Context, flagKey string) (feature.Definition, error) {
	return c.evaluator.Fetch(ctx, flagKey)
}

// CacheTTL returns the effective cache TTL, zero when caching is disabled.
func (c *Client) CacheTTL() time.Duration {
	return c.evaluator.CacheTTL()
}

// Close releases the fetcher's resources. It is idempotent. Cached results keep
// being served after Close; cache misses resolve to their defaults with
// feature.ErrClosed.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		if closer, ok := c.fetcher.(io.Closer); ok {
			c.closeErr = closer.Close()
		}
		c.logger.Debug("flaglite client closed")
	})
	return c.closeErr
}

func (c *Client) fetch(ctx context.Context, flagKey string) (feature.Definition, error) {
	if c.closed.Load() {
		return feature.Definition{}, feature.ErrClosed
	}
	return c.fetcher.Fetch(ctx, flagKey)
}
