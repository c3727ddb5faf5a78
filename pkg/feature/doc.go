// Package feature implements client-side feature flag evaluation: deterministic
// percentage bucketing, a cached and coalesced evaluation pipeline, and a
// fail-closed error policy.
//
// # Architecture
//
// The package is built around four pieces:
//
//  1. Definition - the remote description of a flag (enabled state, optional
//     rollout percentage and salt).
//  2. Fetcher - loads a Definition from the source of truth. pkg/flagapi provides
//     the HTTP implementation; MemoryFetcher serves tests and offline use.
//  3. Store - caches evaluation results by CacheKey. MemoryStore wraps the
//     in-process TTL cache; pkg/cache/rediscache shares results through Redis.
//  4. Evaluator - checks the Store, coalesces concurrent misses for the same
//     CacheKey into one fetch, buckets the Definition, caches the outcome, and
//     converts every failure into the caller's default.
//
// # Usage
//
//	fetcher, _ := feature.NewMemoryFetcher(feature.Definition{
//		Key:               "new-checkout",
//		Enabled:           true,
//		RolloutPercentage: feature.Percentage(25),
//	})
//
//	store := feature.NewMemoryStore(cache.NewTTLCache[string, bool]())
//	ev, err := feature.NewEvaluator(fetcher,
//		feature.WithStore(store, feature.DefaultCacheTTL),
//		feature.WithLogger(log),
//	)
//	if err != nil {
//		return err
//	}
//
//	if ev.Enabled(ctx, "new-checkout", "user-123", false) {
//		// new checkout
//	}
//
// # Bucketing
//
// Bucket hashes the flag key (or the definition salt), a NUL byte and the user
// identifier with FNV-1a 32 and reduces the sum modulo 100. The same inputs give
// the same bucket in every process and in any other implementation of the
// algorithm. A user is in the rollout iff their bucket is below the percentage.
//
// Anonymous evaluations (empty user identifier) cannot be sticky. By default
// (AnonymousGlobal) a partial rollout is off for them; AnonymousBucketing instead
// buckets them all as AnonymousPlaceholder.
//
// # Error Handling
//
// Evaluate never fails. Authentication, rate limit, network, malformed response
// and any other fetch error is logged with the flag key and error kind, counted
// in Metrics, and replaced by the caller's default. Failures are not cached: the
// next call fetches again. Use Evaluator.Fetch to receive the error instead.
//
//	if _, err := ev.Fetch(ctx, "new-checkout"); errors.Is(err, feature.ErrRateLimit) {
//		// back off
//	}
//
// Kind maps errors to stable labels (authentication, rate_limit, network, ...).
package feature
