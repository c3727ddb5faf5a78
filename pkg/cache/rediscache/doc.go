// Package rediscache provides a Redis-backed evaluation cache for processes that
// should share flag results, plus helpers for connecting to Redis.
//
// The package wraps the go-redis client and adds:
//
//   - `Connect`, which retries the connection using the supplied configuration.
//   - `Store`, a feature.Store that keeps each evaluation as "1" or "0" under a
//     key prefix with a server-side TTL.
//   - `Store.Healthcheck` for liveness and readiness probes.
//
// # Usage
//
//	client, err := rediscache.Connect(ctx, rediscache.Config{
//	    ConnectionURL:  "redis://localhost:6379/0",
//	    RetryAttempts:  3,
//	    RetryInterval:  time.Second,
//	    ConnectTimeout: 10 * time.Second,
//	})
//	if err != nil {
//	    return err
//	}
//
//	fl, err := flaglite.New(cfg, flaglite.WithStore(rediscache.NewStore(client)))
//
// Clear only touches keys under the configured prefix, never the whole database.
package rediscache
