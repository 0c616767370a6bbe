// Package immich is a small client for the Immich REST API.
package immich

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Client talks to a single Immich server using an API key.
type Client struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
	captureDir string
}

// Option configures a Client.
type Option func(*Client) error

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		c.httpClient = hc
		return nil
	}
}

// WithTimeout sets the timeout of every request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		c.httpClient.Timeout = d
		return nil
	}
}

// WithCaptureDir enables API response capturing to the specified directory.
func WithCaptureDir(dir string) Option {
	return func(c *Client) error {
		return c.SetCaptureDir(dir)
	}
}

// New creates a client for the server at serverAddress (e.g. http://immich:2283).
func New(serverAddress, apiKey string, opts ...Option) (*Client, error) {
	if serverAddress == "" {
		return nil, fmt.Errorf("server address is required")
	}
	parsed, err := url.Parse(strings.TrimSuffix(serverAddress, "/") + "/api")
	if err != nil {
		return nil, fmt.Errorf("invalid Immich server address: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid Immich server address %q: scheme and host are required", serverAddress)
	}

	c := &Client{
		baseURL:    parsed,
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// BaseURL returns the API base URL (server address + /api).
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// resolveURL builds a full URL from the API base, the endpoint path and an optional query.
func (c *Client) resolveURL(endpoint string, query url.Values) string {
	u := c.baseURL.JoinPath(endpoint)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// newRequest creates a request with the API key and JSON content negotiation headers.
func (c *Client) newRequest(req *http.Request, hasBody bool) {
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
}

// readErrorBody reads the response body for error messages.
// Returns a placeholder if reading fails (we're already in an error path).
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(r)
	if err != nil {
		return "(could not read error body)"
	}
	return string(body)
}

// SetCaptureDir enables API response capturing to the specified directory.
// Pass an empty string to disable capturing.
func (c *Client) SetCaptureDir(dir string) error {
	if dir == "" {
		c.captureDir = ""
		return nil
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("could not create capture directory: %w", err)
	}
	c.captureDir = dir
	return nil
}

// captureResponse saves the API response body to a file if capturing is enabled.
func (c *Client) captureResponse(method, endpoint string, body []byte) {
	if c.captureDir == "" {
		return
	}

	filename := strings.ReplaceAll(endpoint, "/", "_")
	filename = strings.TrimPrefix(filename, "_")
	timestamp := time.Now().Format("20060102_150405")
	filename = fmt.Sprintf("%s_%s_%s.json", strings.ToLower(method), filename, timestamp)

	path := filepath.Join(c.captureDir, filename)

	var prettyJSON bytes.Buffer
	if err := json.Indent(&prettyJSON, body, "", "  "); err == nil {
		body = prettyJSON.Bytes()
	}

	// WriteFile error is non-critical for capturing
	if err := os.WriteFile(path, body, 0600); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to capture response to %s: %v\n", path, err)
	}
}
