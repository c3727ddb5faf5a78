package feature_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/flaglite/pkg/feature"
)

func TestBucket(t *testing.T) {
	t.Parallel()

	t.Run("known values", func(t *testing.T) {
		t.Parallel()
		// FNV-1a 32 of "<seed>\x00<user>" mod 100; pinned so a change in the
		// algorithm cannot silently reshuffle every user.
		tests := []struct {
			seed, user string
			want       int
		}{
			{"new-checkout", "user-123", 54},
			{"new-checkout", "user-456", 69},
			{"dark-mode", "alice", 7},
			{"dark-mode", "bob", 60},
			{"salty", "user-123", 10},
			{"new-checkout", feature.AnonymousPlaceholder, 81},
		}
		for _, tt := range tests {
			assert.Equal(t, tt.want, feature.Bucket(tt.seed, tt.user), "%s/%s", tt.seed, tt.user)
		}
	})

	t.Run("deterministic and in range", func(t *testing.T) {
		t.Parallel()
		for i := range 1000 {
			user := fmt.Sprintf("user-%d", i)
			b := feature.Bucket("flag", user)
			assert.GreaterOrEqual(t, b, 0)
			assert.Less(t, b, feature.BucketCount)
			assert.Equal(t, b, feature.Bucket("flag", user))
		}
	})

	t.Run("separator prevents concatenation collisions", func(t *testing.T) {
		t.Parallel()
		// "ab"+"c" and "a"+"bc" concatenate to the same bytes without a separator.
		collisions := 0
		for i := range 200 {
			a := feature.Bucket(fmt.Sprintf("flag%d", i), "x")
			b := feature.Bucket("flag", fmt.Sprintf("%dx", i))
			if a == b {
				collisions++
			}
		}
		assert.Less(t, collisions, 20)
	})
}

func TestEnabledFor(t *testing.T) {
	t.Parallel()

	t.Run("no rollout returns base state", func(t *testing.T) {
		t.Parallel()
		on, err := feature.EnabledFor(feature.Definition{Enabled: true}, "f", "u", feature.AnonymousGlobal)
		require.NoError(t, err)
		assert.True(t, on)

		on, err = feature.EnabledFor(feature.Definition{Enabled: false}, "f", "u", feature.AnonymousGlobal)
		require.NoError(t, err)
		assert.False(t, on)
	})

	t.Run("rollout decides over base state", func(t *testing.T) {
		t.Parallel()
		on, err := feature.EnabledFor(feature.Definition{Enabled: false, RolloutPercentage: feature.Percentage(100)},
			"f", "u", feature.AnonymousGlobal)
		require.NoError(t, err)
		assert.True(t, on)

		// new-checkout/user-123 lands in bucket 54.
		on, err = feature.EnabledFor(feature.Definition{Enabled: false, RolloutPercentage: feature.Percentage(55)},
			"new-checkout", "user-123", feature.AnonymousGlobal)
		require.NoError(t, err)
		assert.True(t, on)

		on, err = feature.EnabledFor(feature.Definition{Enabled: true, RolloutPercentage: feature.Percentage(0)},
			"new-checkout", "user-123", feature.AnonymousGlobal)
		require.NoError(t, err)
		assert.False(t, on)

		def := feature.Definition{Enabled: false, RolloutPercentage: feature.Percentage(50)}
		enabled := 0
		for i := range 1000 {
			on, err := feature.EnabledFor(def, "experiment", fmt.Sprintf("user-%d", i), feature.AnonymousGlobal)
			require.NoError(t, err)
			if on {
				enabled++
			}
		}
		assert.InDelta(t, 500, enabled, 100)
	})

	t.Run("bucket below percentage is enabled", func(t *testing.T) {
		t.Parallel()
		// new-checkout/user-123 lands in bucket 54.
		on, err := feature.EnabledFor(feature.Definition{Enabled: true, RolloutPercentage: feature.Percentage(55)},
			"new-checkout", "user-123", feature.AnonymousGlobal)
		require.NoError(t, err)
		assert.True(t, on)

		on, err = feature.EnabledFor(feature.Definition{Enabled: true, RolloutPercentage: feature.Percentage(54)},
			"new-checkout", "user-123", feature.AnonymousGlobal)
		require.NoError(t, err)
		assert.False(t, on)
	})

	t.Run("salt replaces flag key as seed", func(t *testing.T) {
		t.Parallel()
		// salty/user-123 lands in bucket 10, new-checkout/user-123 in 54.
		def := feature.Definition{Enabled: true, RolloutPercentage: feature.Percentage(20), Salt: "salty"}
		on, err := feature.EnabledFor(def, "new-checkout", "user-123", feature.AnonymousGlobal)
		require.NoError(t, err)
		assert.True(t, on)
	})

	t.Run("zero and full rollout", func(t *testing.T) {
		t.Parallel()
		for i := range 100 {
			user := fmt.Sprintf("u%d", i)
			on, err := feature.EnabledFor(feature.Definition{Enabled: true, RolloutPercentage: feature.Percentage(0)}, "f", user, feature.AnonymousGlobal)
			require.NoError(t, err)
			assert.False(t, on)

			on, err = feature.EnabledFor(feature.Definition{Enabled: true, RolloutPercentage: feature.Percentage(100)}, "f", user, feature.AnonymousGlobal)
			require.NoError(t, err)
			assert.True(t, on)
		}
	})

	t.Run("invalid percentage", func(t *testing.T) {
		t.Parallel()
		for _, p := range []int{-1, 101} {
			_, err := feature.EnabledFor(feature.Definition{Enabled: true, RolloutPercentage: feature.Percentage(p)}, "f", "u", feature.AnonymousGlobal)
			require.ErrorIs(t, err, feature.ErrInvalidDefinition)
		}
	})

	t.Run("anonymous global mode", func(t *testing.T) {
		t.Parallel()
		partial := feature.Definition{Enabled: true, RolloutPercentage: feature.Percentage(99)}
		on, err := feature.EnabledFor(partial, "new-checkout", "", feature.AnonymousGlobal)
		require.NoError(t, err)
		assert.False(t, on, "partial rollout is off for anonymous callers")

		full := feature.Definition{Enabled: true, RolloutPercentage: feature.Percentage(100)}
		on, err = feature.EnabledFor(full, "new-checkout", "", feature.AnonymousGlobal)
		require.NoError(t, err)
		assert.True(t, on)

		plain := feature.Definition{Enabled: true}
		on, err = feature.EnabledFor(plain, "new-checkout", "", feature.AnonymousGlobal)
		require.NoError(t, err)
		assert.True(t, on)
	})

	t.Run("anonymous placeholder mode", func(t *testing.T) {
		t.Parallel()
		// new-checkout/anonymous lands in bucket 81.
		on, err := feature.EnabledFor(feature.Definition{Enabled: true, RolloutPercentage: feature.Percentage(82)},
			"new-checkout", "", feature.AnonymousBucketing)
		require.NoError(t, err)
		assert.True(t, on)

		on, err = feature.EnabledFor(feature.Definition{Enabled: true, RolloutPercentage: feature.Percentage(81)},
			"new-checkout", "", feature.AnonymousBucketing)
		require.NoError(t, err)
		assert.False(t, on)
	})

	t.Run("rollout converges to percentage", func(t *testing.T) {
		t.Parallel()
		def := feature.Definition{Enabled: true, RolloutPercentage: feature.Percentage(50)}
		const n = 10000
		enabled := 0
		for i := range n {
			user := fmt.Sprintf("user-%d", i)
			on, err := feature.EnabledFor(def, "experiment", user, feature.AnonymousGlobal)
			require.NoError(t, err)
			again, _ := feature.EnabledFor(def, "experiment", user, feature.AnonymousGlobal)
			require.Equal(t, on, again, "result must be sticky for %s", user)
			if on {
				enabled++
			}
		}
		ratio := float64(enabled) / n
		assert.InDelta(t, 0.5, ratio, 0.03)
	})
}

func TestParseAnonymousMode(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]feature.AnonymousMode{
		"":            feature.AnonymousGlobal,
		"global":      feature.AnonymousGlobal,
		"Placeholder": feature.AnonymousBucketing,
	} {
		got, err := feature.ParseAnonymousMode(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := feature.ParseAnonymousMode("random")
	require.ErrorIs(t, err, feature.ErrConfiguration)
}

func TestCacheKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, feature.CacheKey("f", "u"), feature.CacheKey("f", "u"))
	assert.Equal(t, feature.CacheKey("f", ""), feature.CacheKey("f", ""))
	assert.NotEqual(t, feature.CacheKey("f", "u1"), feature.CacheKey("f", "u2"))
	assert.NotEqual(t, feature.CacheKey("f", ""), feature.CacheKey("f", "u"))
	assert.NotEqual(t, feature.CacheKey("ab", "c"), feature.CacheKey("a", "bc"))

	require.ErrorIs(t, feature.ValidateKey("", "u"), feature.ErrInvalidFlag)
	require.ErrorIs(t, feature.ValidateKey("f\x00", "u"), feature.ErrInvalidFlag)
	require.ErrorIs(t, feature.ValidateKey("f", "u\x00x"), feature.ErrInvalidFlag)
	require.NoError(t, feature.ValidateKey("f", ""))
}
