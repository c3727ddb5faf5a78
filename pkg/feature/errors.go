package feature

import (
	"context"
	"errors"
)

// Predefined errors for the feature package.
//
// Configuration errors are fatal and surface from constructors. Every other kind is
// swallowed at the Evaluator boundary and converted into the caller's default value.
var (
	// ErrConfiguration indicates a missing or invalid client setting, such as an empty API key.
	ErrConfiguration = errors.New("feature: invalid configuration")

	// ErrAuthentication indicates the flag service rejected the credential.
	ErrAuthentication = errors.New("feature: authentication failed")

	// ErrRateLimit indicates the flag service throttled the request.
	ErrRateLimit = errors.New("feature: rate limit exceeded")

	// ErrNetwork indicates a transport failure or timeout talking to the flag service.
	ErrNetwork = errors.New("feature: network error")

	// ErrUnexpected indicates any other failure: malformed responses, 5xx, panics in a fetcher.
	ErrUnexpected = errors.New("feature: unexpected error")

	// ErrFlagNotFound indicates that the requested feature flag was not found.
	ErrFlagNotFound = errors.New("feature: flag not found")

	// ErrInvalidFlag indicates that the provided flag key or definition parameters are invalid.
	ErrInvalidFlag = errors.New("feature: invalid flag parameters")

	// ErrInvalidDefinition indicates a fetched definition that cannot be evaluated.
	ErrInvalidDefinition = errors.New("feature: invalid flag definition")

	// ErrClosed indicates the client was closed before the operation started.
	ErrClosed = errors.New("feature: client closed")
)

// Error kinds reported by Kind.
const (
	KindConfiguration  = "configuration"
	KindAuthentication = "authentication"
	KindRateLimit      = "rate_limit"
	KindNetwork        = "network"
	KindNotFound       = "not_found"
	KindInvalid        = "invalid"
	KindClosed         = "closed"
	KindUnexpected     = "unexpected"
)

// Kind maps an error to a stable label for logs and metrics.
// Context cancellation and deadlines count as network failures.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrAuthentication):
		return KindAuthentication
	case errors.Is(err, ErrRateLimit):
		return KindRateLimit
	case errors.Is(err, ErrNetwork),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return KindNetwork
	case errors.Is(err, ErrFlagNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidFlag), errors.Is(err, ErrInvalidDefinition):
		return KindInvalid
	case errors.Is(err, ErrClosed):
		return KindClosed
	default:
		return KindUnexpected
	}
}
