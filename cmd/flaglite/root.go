package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/flaglite"
	"github.com/dmitrymomot/flaglite/pkg/cache/rediscache"
	"github.com/dmitrymomot/flaglite/pkg/config"
	"github.com/dmitrymomot/flaglite/pkg/feature"
	"github.com/dmitrymomot/flaglite/pkg/logger"
	"github.com/dmitrymomot/flaglite/pkg/requestid"
)

type globalArgs struct {
	apiKey    string
	baseURL   string
	timeout   time.Duration
	redisURL  string
	local     string
	logLevel  string
	logFormat string
}

// NewRootCommand builds the flaglite command tree.
func NewRootCommand() *cobra.Command {
	var args globalArgs
	cmd := &cobra.Command{
		Use:           "flaglite",
		Short:         "Evaluate FlagLite feature flags from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&args.apiKey, "api-key", "", "API key (defaults to $FLAGLITE_API_KEY)")
	pf.StringVar(&args.baseURL, "base-url", "", "Flag service URL (defaults to $FLAGLITE_BASE_URL)")
	pf.DurationVar(&args.timeout, "timeout", 0, "Per-fetch timeout (defaults to $FLAGLITE_TIMEOUT)")
	pf.StringVar(&args.redisURL, "redis-url", "", "Share the evaluation cache through Redis (defaults to $FLAGLITE_REDIS_URL)")
	pf.StringVar(&args.local, "local", "", "Evaluate against flag definitions in a JSON file instead of the service")
	pf.StringVar(&args.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	pf.StringVar(&args.logFormat, "log-format", string(logger.FormatText), "Log format: text or json")

	cmd.AddCommand(
		newEnabledCommand(&args),
		newGetCommand(&args),
	)
	return cmd
}

// setup builds the client for a command run and returns a cleanup closing
// everything it opened.
func (a *globalArgs) setup(cmd *cobra.Command) (*flaglite.Client, context.Context, func(), error) {
	level, err := logger.ParseLevel(a.logLevel)
	if err != nil {
		return nil, nil, nil, err
	}
	format := logger.Format(a.logFormat)
	if format != logger.FormatText && format != logger.FormatJSON {
		return nil, nil, nil, fmt.Errorf("unknown log format %q", a.logFormat)
	}

	log := logger.New(
		logger.WithLevel(level),
		logger.WithFormat(format),
		logger.WithOutput(cmd.ErrOrStderr()),
		logger.WithContextExtractors(requestid.LoggerExtractor()),
	)
	// One correlation ID per invocation, sent with every fetch it makes.
	ctx := requestid.WithContext(cmd.Context(), uuid.NewString())

	cfg, err := flaglite.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	if a.apiKey != "" {
		cfg.APIKey = a.apiKey
	}
	if a.baseURL != "" {
		cfg.BaseURL = a.baseURL
	}
	if a.timeout > 0 {
		cfg.Timeout = a.timeout
	}

	opts := []flaglite.Option{flaglite.WithLogger(log)}
	closers := []func() error{}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.WarnContext(ctx, "cleanup failed", logger.Error(err))
			}
		}
	}

	if a.local != "" {
		fetcher, err := loadLocalFlags(a.local)
		if err != nil {
			return nil, nil, nil, err
		}
		opts = append(opts, flaglite.WithFetcher(fetcher))
		if cfg.APIKey == "" {
			cfg.APIKey = "local"
		}
	}

	var redisCfg rediscache.Config
	if err := config.Load(&redisCfg); err != nil {
		return nil, nil, nil, err
	}
	if a.redisURL != "" {
		redisCfg.ConnectionURL = a.redisURL
	}
	if redisCfg.ConnectionURL != "" {
		client, err := rediscache.Connect(ctx, redisCfg)
		if err != nil {
			return nil, nil, nil, err
		}
		store := rediscache.NewStoreWithConfig(client, redisCfg)
		closers = append(closers, store.Close)
		opts = append(opts, flaglite.WithStore(store))
		log.DebugContext(ctx, "using redis evaluation cache")
	}

	fl, err := flaglite.New(cfg, opts...)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	closers = append(closers, fl.Close)

	return fl, ctx, cleanup, nil
}

// loadLocalFlags reads a JSON array of definitions in the service response shape.
func loadLocalFlags(path string) (*feature.MemoryFetcher, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var defs []feature.Definition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	fetcher, err := feature.NewMemoryFetcher(defs...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return fetcher, nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
