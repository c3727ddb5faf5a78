package feature

import (
	"errors"
	"hash/fnv"
	"strings"
)

// keySeparator joins the hash seed and the user identifier. Flag keys and user IDs
// may not contain it, so distinct pairs never produce the same input bytes.
const keySeparator = "\x00"

// BucketCount is the number of rollout buckets.
const BucketCount = 100

// AnonymousPlaceholder is the identifier used for anonymous users in
// AnonymousBucketing mode.
const AnonymousPlaceholder = "anonymous"

// AnonymousMode decides how percentage rollouts treat evaluations without a user.
type AnonymousMode string

const (
	// AnonymousGlobal evaluates anonymous callers as a global on/off switch: a
	// partial rollout is off for them and only a 100% rollout turns the flag on.
	AnonymousGlobal AnonymousMode = "global"
	// AnonymousBucketing puts every anonymous caller into the single bucket of
	// AnonymousPlaceholder. All anonymous callers share one result.
	AnonymousBucketing AnonymousMode = "placeholder"
)

// ParseAnonymousMode accepts "global" and "placeholder"; empty means AnonymousGlobal.
func ParseAnonymousMode(s string) (AnonymousMode, error) {
	switch AnonymousMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", AnonymousGlobal:
		return AnonymousGlobal, nil
	case AnonymousBucketing:
		return AnonymousBucketing, nil
	default:
		return "", errors.Join(ErrConfiguration,
			errors.New("anonymous mode must be \"global\" or \"placeholder\""))
	}
}

// ValidateKey checks that a flag key or user identifier can be bucketed and cached.
func ValidateKey(flagKey, userID string) error {
	if flagKey == "" {
		return errors.Join(ErrInvalidFlag, errors.New("flag key cannot be empty"))
	}
	if strings.Contains(flagKey, keySeparator) || strings.Contains(userID, keySeparator) {
		return errors.Join(ErrInvalidFlag, errors.New("flag key and user id cannot contain NUL bytes"))
	}
	return nil
}

// Bucket maps (seed, userID) to a stable bucket in [0, 100). The seed is normally
// the flag key. The hash is FNV-1a 32 over seed, a NUL byte, and userID, reduced
// modulo 100, so any implementation of the same algorithm agrees on the bucket.
func Bucket(seed, userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(seed))
	_, _ = h.Write([]byte(keySeparator))
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % BucketCount)
}

// EnabledFor evaluates def for userID.
//
// Without a rollout percentage the result is the base enabled state. With one,
// the user is on iff their bucket is below the percentage. Anonymous callers
// (empty userID) follow mode.
func EnabledFor(def Definition, flagKey, userID string, mode AnonymousMode) (bool, error) {
	if err := def.Validate(); err != nil {
		return false, err
	}

	if def.RolloutPercentage == nil {
		return def.Enabled, nil
	}

	percentage := *def.RolloutPercentage
	switch percentage {
	case 0:
		return false, nil
	case 100:
		return true, nil
	}

	if userID == "" {
		if mode != AnonymousBucketing {
			return false, nil
		}
		userID = AnonymousPlaceholder
	}

	seed := flagKey
	if def.Salt != "" {
		seed = def.Salt
	}

	return Bucket(seed, userID) < percentage, nil
}
