package flaglite

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dmitrymomot/flaglite/pkg/feature"
)

// Option customizes a Client beyond what Config expresses.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	fetcher    feature.Fetcher
	httpClient *http.Client
	store      feature.Store
	clock      clock.Clock
	metrics    *feature.Metrics
	cacheTTL   *time.Duration
	timeout    time.Duration
	noCache    bool
}

// WithLogger sets the logger for swallowed evaluation failures and diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithFetcher replaces the HTTP fetcher, e.g. with a feature.MemoryFetcher in
// tests. The API key is still required.
func WithFetcher(f feature.Fetcher) Option {
	return func(o *options) {
		o.fetcher = f
	}
}

// WithHTTPClient sets the base HTTP client used by the HTTP fetcher.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithStore replaces the in-memory cache, e.g. with a rediscache.Store.
func WithStore(s feature.Store) Option {
	return func(o *options) {
		o.store = s
	}
}

// WithClock sets the clock driving in-memory cache expiry.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

// WithMetrics records evaluation metrics in m.
func WithMetrics(m *feature.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithCacheTTL overrides Config.CacheTTL. A TTL <= 0 disables caching.
func WithCacheTTL(d time.Duration) Option {
	return func(o *options) {
		o.cacheTTL = &d
	}
}

// WithTimeout overrides Config.Timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithoutCache disables caching. Every evaluation fetches, concurrent ones still coalesce.
func WithoutCache() Option {
	return func(o *options) {
		o.noCache = true
	}
}

// EvalOption customizes a single evaluation.
type EvalOption func(*evalOptions)

type evalOptions struct {
	userID       string
	defaultValue bool
}

// ForUser evaluates the flag for userID. Without it the evaluation is anonymous.
func ForUser(userID string) EvalOption {
	return func(o *evalOptions) {
		o.userID = userID
	}
}

// WithDefault sets the value returned when evaluation fails. The default is false.
func WithDefault(v bool) EvalOption {
	return func(o *evalOptions) {
		o.defaultValue = v
	}
}

func newEvalOptions(opts []EvalOption) evalOptions {
	var o evalOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
