package flagapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/dmitrymomot/flaglite/pkg/feature"
	"github.com/dmitrymomot/flaglite/pkg/logger"
	"github.com/dmitrymomot/flaglite/pkg/requestid"
)

const (
	// DefaultBaseURL is the production flag service endpoint.
	DefaultBaseURL = "https://api.flaglite.dev/v1"
	// DefaultTimeout bounds each HTTP request.
	DefaultTimeout = 5 * time.Second
	// DefaultUserAgent identifies this client to the service.
	DefaultUserAgent = "flaglite-go/1.0.0"

	// maxErrorBody caps how much of an error response is read for its message.
	maxErrorBody = 64 << 10
)

// Client fetches flag definitions from the flag service over HTTP.
// It implements feature.Fetcher and is safe for concurrent use.
type Client struct {
	baseURL   *url.URL
	base      *http.Client
	http      *http.Client
	transport http.RoundTripper
	timeout   time.Duration
	userAgent string
	logger    *slog.Logger

	closeOnce sync.Once
}

var _ feature.Fetcher = (*Client)(nil)

// flagResponse is the JSON body of GET /flags/{key}.
type flagResponse struct {
	Key               string `json:"key"`
	Enabled           *bool  `json:"enabled"`
	RolloutPercentage *int   `json:"rollout_percentage"`
	Salt              string `json:"salt"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// New creates a client for baseURL authenticated with apiKey as a bearer token.
// An empty baseURL selects DefaultBaseURL. An empty apiKey or malformed URL is a
// configuration error.
func New(baseURL, apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.Join(feature.ErrConfiguration, errors.New("api key is required"))
	}

	u, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:   u,
		base:      &http.Client{},
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.transport = c.base.Transport
	if c.transport == nil {
		c.transport = http.DefaultTransport
	}

	c.http = &http.Client{
		Timeout:       c.timeout,
		CheckRedirect: c.base.CheckRedirect,
		Jar:           c.base.Jar,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{
				AccessToken: apiKey,
				TokenType:   "Bearer",
			}),
			Base: &headerTransport{
				next:      &requestid.Transport{Next: c.transport},
				userAgent: c.userAgent,
			},
		},
	}
	c.logger = c.logger.With(logger.Component("flaglite.api"))

	return c, nil
}

// BaseURL returns the normalised service URL, always ending in a slash.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Fetch implements feature.Fetcher with GET {baseURL}/flags/{flagKey}.
//
// 200 decodes the definition, 404 yields a disabled definition (an unknown flag
// is off), 401/403 wrap feature.ErrAuthentication, 429 wraps feature.ErrRateLimit,
// transport failures and timeouts wrap feature.ErrNetwork, and everything else,
// including malformed bodies, wraps feature.ErrUnexpected.
func (c *Client) Fetch(ctx context.Context, flagKey string) (feature.Definition, error) {
	if flagKey == "" {
		return feature.Definition{}, errors.Join(feature.ErrInvalidFlag, errors.New("flag key cannot be empty"))
	}

	endpoint := c.baseURL.String() + "flags/" + url.PathEscape(flagKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return feature.Definition{}, fmt.Errorf("%w: build request: %w", feature.ErrUnexpected, err)
	}
	requestID := requestid.Resolve(ctx)
	req.Header.Set(requestid.Header, requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return feature.Definition{}, fmt.Errorf("%w: %w", feature.ErrNetwork, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		_ = resp.Body.Close()
	}()

	c.logger.DebugContext(ctx, "flag fetched",
		logger.FlagKey(flagKey),
		logger.StatusCode(resp.StatusCode),
		logger.RequestID(requestID),
		logger.Duration(time.Since(start)),
	)

	switch {
	case resp.StatusCode == http.StatusOK:
		return decodeDefinition(resp.Body, flagKey)
	case resp.StatusCode == http.StatusNotFound:
		return feature.Definition{Key: flagKey, Enabled: false}, nil
	default:
		return feature.Definition{}, newAPIError(resp, requestID)
	}
}

// Close releases idle connections held by the underlying transport. It is safe
// to call more than once, and the client keeps working afterwards by dialing anew.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		if ci, ok := c.transport.(interface{ CloseIdleConnections() }); ok {
			ci.CloseIdleConnections()
		}
	})
	return nil
}

func decodeDefinition(body io.Reader, flagKey string) (feature.Definition, error) {
	var payload flagResponse
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return feature.Definition{}, fmt.Errorf("%w: decode flag response: %w", feature.ErrUnexpected, err)
	}
	if payload.Enabled == nil {
		return feature.Definition{}, fmt.Errorf("%w: flag response has no enabled field", feature.ErrUnexpected)
	}

	def := feature.Definition{
		Key:               flagKey,
		Enabled:           *payload.Enabled,
		RolloutPercentage: payload.RolloutPercentage,
		Salt:              payload.Salt,
	}
	if err := def.Validate(); err != nil {
		return feature.Definition{}, fmt.Errorf("%w: %w", feature.ErrUnexpected, err)
	}
	return def, nil
}

func newAPIError(resp *http.Response, requestID string) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    readErrorMessage(resp),
		RequestID:  requestID,
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		apiErr.kind = feature.ErrAuthentication
	case http.StatusTooManyRequests:
		apiErr.kind = feature.ErrRateLimit
		apiErr.RetryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
	default:
		apiErr.kind = feature.ErrUnexpected
	}

	return apiErr
}

func readErrorMessage(resp *http.Response) string {
	fallback := fmt.Sprintf("HTTP %d", resp.StatusCode)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return fallback
	}

	var payload errorResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}
	switch {
	case payload.Message != "":
		return payload.Message
	case payload.Error != "":
		return payload.Error
	default:
		return fallback
	}
}

// parseRetryAfter accepts delay-seconds or an HTTP date.
func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

func parseBaseURL(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		raw = DefaultBaseURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Join(feature.ErrConfiguration, fmt.Errorf("invalid base url: %w", err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Join(feature.ErrConfiguration, errors.New("base url must use http or https"))
	}
	if u.Host == "" {
		return nil, errors.Join(feature.ErrConfiguration, errors.New("base url host is required"))
	}

	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}
