package immich

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

var (
	// ErrNotFound is returned when a lookup matched nothing.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguous is returned when a lookup that must match exactly once matched several times.
	ErrAmbiguous = errors.New("ambiguous match")
)

// APIError is returned for every non-2xx response.
type APIError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s failed with status %d: %s", e.Method, e.Endpoint, e.StatusCode, e.Body)
}

// ResponseBody returns the body of a failed API response, or "" if err is not an APIError.
func ResponseBody(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	return ""
}

// IsNotFoundError returns true if the error indicates a 404 Not Found response
// or an empty lookup.
func IsNotFoundError(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// doGetJSON performs a GET request and unmarshals the JSON response into the result type.
// The endpoint should be the path after the base API URL (e.g., "albums/123").
func doGetJSON[T any](ctx context.Context, c *Client, endpoint string, query url.Values) (*T, error) {
	return doRequestJSON[T](ctx, c, http.MethodGet, endpoint, query, nil)
}

// doPostJSON performs a POST request with a JSON body and unmarshals the JSON response.
func doPostJSON[T any](ctx context.Context, c *Client, endpoint string, requestBody any) (*T, error) {
	return doRequestJSON[T](ctx, c, http.MethodPost, endpoint, nil, requestBody)
}

// doPutJSON performs a PUT request with a JSON body and unmarshals the JSON response.
func doPutJSON[T any](ctx context.Context, c *Client, endpoint string, requestBody any) (*T, error) {
	return doRequestJSON[T](ctx, c, http.MethodPut, endpoint, nil, requestBody)
}

// doRequestJSON performs an HTTP request with an optional JSON body and decodes the JSON response.
func doRequestJSON[T any](
	ctx context.Context, c *Client, method, endpoint string, query url.Values, requestBody any,
) (*T, error) {
	body, err := doRequestRaw(ctx, c, method, endpoint, query, requestBody)
	if err != nil {
		return nil, err
	}

	var result T
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}

	return &result, nil
}

// doRequestRaw performs an HTTP request and returns the raw response body.
// Any status outside 2xx becomes an *APIError.
func doRequestRaw(
	ctx context.Context, c *Client, method, endpoint string, query url.Values, requestBody any,
) ([]byte, error) {
	var bodyReader io.Reader
	if requestBody != nil {
		jsonBody, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("could not marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolveURL(endpoint, query), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	c.newRequest(req, requestBody != nil)

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL constructed from validated baseURL via resolveURL
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			Method:     method,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       readErrorBody(resp.Body),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}

	c.captureResponse(method, endpoint, body)

	return body, nil
}
