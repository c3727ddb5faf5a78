package requestid

import (
	"context"
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

const (
	Header      = "X-Request-ID"
	maxIDLength = 128
	idPattern   = "^[a-zA-Z0-9_-]+$"
)

var validIDRegex = regexp.MustCompile(idPattern)

type ctxKey struct{}

// WithContext returns a copy of ctx carrying id.
func WithContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the ID carried by ctx, or "" when there is none.
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Valid reports whether id is safe to send as a header value.
func Valid(id string) bool {
	if len(id) == 0 || len(id) > maxIDLength {
		return false
	}
	return validIDRegex.MatchString(id)
}

// Resolve returns the valid ID carried by ctx or a fresh UUID.
func Resolve(ctx context.Context) string {
	if id := FromContext(ctx); Valid(id) {
		return id
	}
	return uuid.NewString()
}

// Transport stamps outgoing requests with an X-Request-ID header unless one is
// already set. The value comes from the request context when present.
type Transport struct {
	Next http.RoundTripper
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.Next
	if next == nil {
		next = http.DefaultTransport
	}
	if req.Header.Get(Header) != "" {
		return next.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	clone.Header.Set(Header, Resolve(req.Context()))
	return next.RoundTrip(clone)
}
