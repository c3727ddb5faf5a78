// Package flaglite is a client-side feature flag evaluator.
//
// A Client answers "is this flag on for this user?" by consulting a local cache
// before the remote flag service, bucketing percentage rollouts deterministically
// per user, and turning every service failure into a caller-chosen default.
// Flag evaluation never returns an error and never panics because the flag
// service is unavailable.
//
// Basic Usage:
//
//	fl, err := flaglite.New(flaglite.Config{APIKey: os.Getenv("FLAGLITE_API_KEY")})
//	if err != nil {
//		log.Fatal(err) // feature.ErrConfiguration
//	}
//	defer fl.Close()
//
//	if fl.Enabled(ctx, "new-checkout", flaglite.ForUser(user.ID)) {
//		// new flow
//	}
//
//	// Keep the feature on if the service is unreachable.
//	on := fl.Enabled(ctx, "search-v2", flaglite.WithDefault(true))
//
// Non-blocking Usage:
//
// EnabledAsync shares the cache and in-flight fetches with Enabled, so a blocking
// and a non-blocking caller racing on the same flag trigger a single request:
//
//	a := fl.EnabledAsync(ctx, "new-checkout", flaglite.ForUser("u1"))
//	b := fl.EnabledAsync(ctx, "dark-mode", flaglite.ForUser("u1"))
//	results, _ := async.WaitAll(a, b)
//
// Configuration:
//
// Config fields map to FLAGLITE_* environment variables; NewFromEnv reads them
// all, and New falls back to FLAGLITE_API_KEY and FLAGLITE_BASE_URL when the
// explicit fields are empty. Functional options swap collaborators:
//
//	fl, err := flaglite.New(cfg,
//		flaglite.WithLogger(log),
//		flaglite.WithStore(rediscache.NewStore(redisClient)),
//		flaglite.WithMetrics(feature.NewMetrics(prometheus.DefaultRegisterer)),
//	)
//
// Lifecycle:
//
// The Client is an explicit instance; there is no package-level singleton. With
// scopes a Client to a function and closes it on every exit path:
//
//	err := flaglite.With(cfg, func(fl *flaglite.Client) error {
//		return run(ctx, fl)
//	})
//
// Errors:
//
// Only construction and cache maintenance (Invalidate, Clear) return errors.
// Fetch exposes the raw service errors for callers that want explicit handling;
// classify them with errors.Is against the feature sentinels or feature.Kind.
package flaglite
