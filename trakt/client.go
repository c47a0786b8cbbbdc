// Package trakt is an authenticated client for the Trakt.tv API v2. It
// manages the OAuth token lifecycle (acquire, use, refresh, persist),
// injects the required headers on every request, and translates API
// failures into a typed error taxonomy.
package trakt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the production API host
const DefaultBaseURL = "https://api.trakt.tv"

// apiVersion is the value of the trakt-api-version header
const apiVersion = "2"

// Client performs authenticated API calls. It merges the default headers
// with the bearer token from its authenticator, proactively refreshes an
// expired token before sending, and retries exactly once after a
// refresh-eligible 401.
type Client struct {
	baseURL    string
	auth       *TokenAuth
	httpClient *http.Client
	headers    map[string]string
	logger     zerolog.Logger
}

// Option customizes a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the underlying HTTP client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithHeader adds a default header sent on every request
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// NewClient creates a client for the given API host. An empty baseURL
// selects the production host.
func NewClient(baseURL string, auth *TokenAuth, logger zerolog.Logger, opts ...Option) (*Client, error) {
	if auth == nil {
		return nil, fmt.Errorf("authenticator is required")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	client := &Client{
		baseURL: trimBaseURL(baseURL),
		auth:    auth,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		headers: map[string]string{
			"Content-Type":      "application/json",
			"trakt-api-version": apiVersion,
		},
		logger: logger,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// trimBaseURL normalizes a base URL to carry no trailing slash
func trimBaseURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/")
}

// Auth returns the client's authenticator
func (c *Client) Auth() *TokenAuth {
	return c.auth
}

// BaseURL returns the API host the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request performs an API call and decodes the JSON response into out.
// out may be nil when the caller ignores the body; the API answers many
// writes with 204 No Content.
func (c *Client) Request(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = data
	}

	return c.do(ctx, method, path, payload, out, false)
}

// Get performs a GET request
func (c *Client) Get(ctx context.Context, path string, out interface{}) error {
	return c.Request(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST request
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Request(ctx, http.MethodPost, path, body, out)
}

// Delete performs a DELETE request
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Request(ctx, http.MethodDelete, path, nil, nil)
}

// do executes one attempt plus at most one refresh-driven retry
func (c *Client) do(ctx context.Context, method, path string, payload []byte, out interface{}, retried bool) error {
	// A token that is already known to be expired would only buy a 401
	// round trip, refresh it up front when we can.
	if c.auth.Expired() && c.auth.CanRefresh() {
		if err := c.auth.Refresh(ctx); err != nil {
			return err
		}
	}

	url := c.baseURL + "/" + strings.TrimLeft(path, "/")

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	req.Header.Set("trakt-api-key", c.auth.clientID())
	if header, ok := c.auth.AuthHeader(); ok {
		req.Header.Set("Authorization", header)
	}

	c.logger.Debug().
		Str("method", method).
		Str("url", url).
		Msg("Making API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: method, URL: url, Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return badResponseError(resp, respBody)
		}
		return nil
	}

	// A 401 on a refresh-capable session gets exactly one refresh plus
	// retry. A failed refresh surfaces its own error instead of the
	// original 401.
	if resp.StatusCode == http.StatusUnauthorized && !retried && c.auth.CanRefresh() {
		c.logger.Debug().
			Str("url", url).
			Msg("Received 401, refreshing token and retrying")

		if err := c.auth.Refresh(ctx); err != nil {
			return err
		}
		return c.do(ctx, method, path, payload, out, true)
	}

	return newAPIError(resp, respBody)
}
