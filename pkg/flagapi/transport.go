package flagapi

import (
	"net/http"
)

// headerTransport stamps every outgoing request with the client identity.
type headerTransport struct {
	next      http.RoundTripper
	userAgent string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("User-Agent", t.userAgent)
	clone.Header.Set("Accept", "application/json")
	return t.next.RoundTrip(clone)
}
