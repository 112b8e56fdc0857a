package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Client provides access to the Dhan REST endpoints.
type Client struct {
	snapshotURL string
	catalogURL  string
	clientID    string
	accessToken string
	httpClient  *http.Client
	logger      *slog.Logger

	maxAttempts  int
	retryBackoff time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a new REST API client.
func NewClient(snapshotURL, catalogURL, clientID, accessToken string, opts ...ClientOption) *Client {
	c := &Client{
		snapshotURL: snapshotURL,
		catalogURL:  catalogURL,
		clientID:    clientID,
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger:       slog.Default(),
		maxAttempts:  3,
		retryBackoff: 2 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithRetries sets the attempt count and the linear backoff base.
func WithRetries(attempts int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxAttempts = attempts
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// APIError represents a non-2xx response from a Dhan endpoint.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("dhan api error %d: %s", e.StatusCode, e.Message)
}
