package flagapi

import (
	"fmt"
	"time"
)

// APIError describes a non-success response from the flag service.
// It unwraps to the feature sentinel matching its status code, so callers can
// use errors.Is(err, feature.ErrRateLimit) and friends.
type APIError struct {
	StatusCode int
	Message    string
	// RetryAfter is the server-requested delay for 429 responses, zero if absent.
	RetryAfter time.Duration
	// RequestID is the X-Request-ID sent with the failing request.
	RequestID string

	kind error
}

func (e *APIError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("flagapi: %s (status %d, retry after %s)", e.Message, e.StatusCode, e.RetryAfter)
	}
	return fmt.Sprintf("flagapi: %s (status %d)", e.Message, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.kind
}
