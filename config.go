package flaglite

import (
	"errors"
	"strings"
	"time"

	"github.com/dmitrymomot/flaglite/pkg/config"
	"github.com/dmitrymomot/flaglite/pkg/feature"
	"github.com/dmitrymomot/flaglite/pkg/flagapi"
)

// Config holds the client construction parameters. Every field can be read
// from the environment with NewFromEnv.
type Config struct {
	// APIKey authenticates with the flag service. Required; when empty New
	// falls back to FLAGLITE_API_KEY.
	APIKey string `env:"FLAGLITE_API_KEY"`
	// BaseURL of the flag service. When empty New falls back to
	// FLAGLITE_BASE_URL and then the production endpoint.
	BaseURL string `env:"FLAGLITE_BASE_URL" envDefault:"https://api.flaglite.dev/v1"`
	// CacheTTL is how long an evaluation is cached. Zero selects the 30 second
	// default; a negative value disables caching.
	CacheTTL time.Duration `env:"FLAGLITE_CACHE_TTL" envDefault:"30s"`
	// Timeout bounds each remote fetch. Zero selects the 5 second default.
	Timeout time.Duration `env:"FLAGLITE_TIMEOUT" envDefault:"5s"`
	// DisableCache turns caching off regardless of CacheTTL.
	DisableCache bool `env:"FLAGLITE_DISABLE_CACHE"`
	// CacheMaxEntries bounds the in-memory cache. Zero means unbounded.
	CacheMaxEntries int `env:"FLAGLITE_CACHE_MAX_ENTRIES"`
	// AnonymousBucketing selects how rollouts treat evaluations without a user:
	// "global" or "placeholder".
	AnonymousBucketing string `env:"FLAGLITE_ANONYMOUS_BUCKETING" envDefault:"global"`
}

// DefaultConfig returns the configuration used when nothing is overridden,
// minus the API key.
func DefaultConfig() Config {
	return Config{
		BaseURL:            flagapi.DefaultBaseURL,
		CacheTTL:           feature.DefaultCacheTTL,
		Timeout:            feature.DefaultFetchTimeout,
		AnonymousBucketing: string(feature.AnonymousGlobal),
	}
}

// LoadConfig reads Config from the environment and an optional .env file.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, errors.Join(feature.ErrConfiguration, err)
	}
	return cfg, nil
}

// credentials are the only settings an explicit Config takes from the
// environment.
type credentials struct {
	APIKey  string `env:"FLAGLITE_API_KEY"`
	BaseURL string `env:"FLAGLITE_BASE_URL" envDefault:"https://api.flaglite.dev/v1"`
}

// resolve fills credentials missing from an explicit Config with their
// environment values and applies defaults. The explicit argument always wins.
func (c Config) resolve() (Config, error) {
	if strings.TrimSpace(c.APIKey) == "" || c.BaseURL == "" {
		var env credentials
		if err := config.Load(&env); err != nil {
			return Config{}, errors.Join(feature.ErrConfiguration, err)
		}
		if strings.TrimSpace(c.APIKey) == "" {
			c.APIKey = env.APIKey
		}
		if c.BaseURL == "" {
			c.BaseURL = env.BaseURL
		}
	}

	if strings.TrimSpace(c.APIKey) == "" {
		return Config{}, errors.Join(feature.ErrConfiguration,
			errors.New("api key is required: pass Config.APIKey or set FLAGLITE_API_KEY"))
	}
	if c.Timeout <= 0 {
		c.Timeout = feature.DefaultFetchTimeout
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = feature.DefaultCacheTTL
	}
	if c.CacheMaxEntries < 0 {
		return Config{}, errors.Join(feature.ErrConfiguration, errors.New("cache max entries cannot be negative"))
	}
	if c.AnonymousBucketing == "" {
		c.AnonymousBucketing = string(feature.AnonymousGlobal)
	}
	if _, err := feature.ParseAnonymousMode(c.AnonymousBucketing); err != nil {
		return Config{}, errors.Join(feature.ErrConfiguration, err)
	}
	return c, nil
}

func (c Config) cacheTTL() time.Duration {
	if c.DisableCache || c.CacheTTL <= 0 {
		return 0
	}
	return c.CacheTTL
}
