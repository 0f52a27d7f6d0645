package poller

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2"
)

const maxResponseBodySize = 1 << 20 // 1MB

// the bot keeps a single outstanding request, so the pool stays small
const (
	defaultMaxIdleConns        = 4
	defaultMaxIdleConnsPerHost = 2
	defaultMaxConnsPerHost     = 2
	defaultIdleConnTimeout     = 90 * time.Second
)

// Response holds the result of an HTTP request made by [Client].
//
// Response captures the body (limited to 1MB), status code, latency, and any
// transport error that occurred.
type Response struct {
	// Body contains the HTTP response body, limited to 1MB.
	Body []byte

	// StatusCode is the HTTP status code (e.g., 200, 404, 500).
	// Zero if the request failed before receiving a response.
	StatusCode int

	// Latency is the total time taken for the request.
	Latency time.Duration

	// Error contains any error that occurred during the request.
	// nil indicates the request completed (though status may indicate an error).
	Error error
}

// Client is an HTTP client wrapper for polling a status API.
//
// Client uses per-request timeouts via context rather than a global timeout,
// so a hung connection can never stall the caller for longer than the timeout
// passed to [Client.Get]. Response bodies are limited to 1MB.
type Client struct {
	httpClient *http.Client
}

// ClientOption configures a [Client].
type ClientOption func(*clientConfig)

type clientConfig struct {
	tokenSource oauth2.TokenSource
}

// WithTokenSource authenticates every request with tokens from ts. The
// Authorization header is "<TokenType> <AccessToken>".
func WithTokenSource(ts oauth2.TokenSource) ClientOption {
	return func(c *clientConfig) {
		c.tokenSource = ts
	}
}

// NewClient creates a new polling [Client].
//
// Timeouts are applied per-request via the context parameter in [Client.Get],
// not as a global client timeout.
func NewClient(opts ...ClientOption) *Client {
	var cfg clientConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var transport http.RoundTripper = &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        defaultMaxIdleConns,
		MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
		MaxConnsPerHost:     defaultMaxConnsPerHost,
		IdleConnTimeout:     defaultIdleConnTimeout,
	}
	if cfg.tokenSource != nil {
		transport = &oauth2.Transport{Source: cfg.tokenSource, Base: transport}
	}

	return &Client{
		// no default timeout - we use per-request timeouts via context
		httpClient: &http.Client{Transport: transport},
	}
}

// Get performs an HTTP GET and returns a structured [Response].
//
// params are encoded into the query string, replacing any query already
// present in rawURL. The timeout is applied via context cancellation; a
// non-positive timeout leaves the parent context untouched.
//
// Get always returns a Response; errors are captured in the Error field
// rather than returned separately.
func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string, params url.Values, timeout time.Duration) Response {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()

	target, err := url.Parse(rawURL)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("invalid url: %w", err),
		}
	}
	if len(params) > 0 {
		target.RawQuery = params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("failed to create request: %w", err),
		}
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("request failed: %w", err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	// read body with size limit
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return Response{
			StatusCode: resp.StatusCode,
			Latency:    time.Since(start),
			Error:      fmt.Errorf("failed to read response body: %w", err),
		}
	}

	return Response{
		Body:       body,
		StatusCode: resp.StatusCode,
		Latency:    time.Since(start),
	}
}

// Close closes all idle connections in the client's connection pool.
//
// Safe to call multiple times and on a nil receiver. After Close, the client
// remains usable but new connections will be established as needed.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	transport := c.httpClient.Transport
	if authed, ok := transport.(*oauth2.Transport); ok {
		transport = authed.Base
	}
	if base, ok := transport.(*http.Transport); ok {
		base.CloseIdleConnections()
	}
}
