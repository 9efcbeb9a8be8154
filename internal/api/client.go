package api

import (
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the backend address used when none is configured.
const DefaultBaseURL = "http://localhost:8000"

// RetryPolicy controls how often idempotent reads are retried.
type RetryPolicy struct {
	Max     int           // Retries after the first attempt
	Backoff time.Duration // Base delay, doubled per retry
}

// delay returns the wait before retry n (1-based), jittered to 0.5x..1.5x.
func (p RetryPolicy) delay(n int) time.Duration {
	base := p.Backoff << (n - 1)
	if base <= 0 {
		return 0
	}
	return base/2 + time.Duration(rand.Int64N(int64(base)+1))
}

// Client talks to the NaviHire REST API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	header     http.Header // Sent on every request
	retry      RetryPolicy
	httpClient *http.Client
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient returns a client for the backend at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		header:     http.Header{"Accept": {"application/json"}},
		retry:      RetryPolicy{Max: 3, Backoff: time.Second},
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// WithTimeout bounds each HTTP exchange.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithRetries sets the retry policy for GET requests.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) { c.retry = RetryPolicy{Max: max, Backoff: backoff} }
}

func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithBearerToken authenticates every request. An empty token sends nothing.
func WithBearerToken(token string) ClientOption {
	return func(c *Client) {
		if token != "" {
			c.header.Set("Authorization", "Bearer "+token)
		}
	}
}

// WithUserAgent identifies the caller on every request.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.header.Set("User-Agent", ua)
		}
	}
}
