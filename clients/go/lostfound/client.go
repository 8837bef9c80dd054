// Package lostfound provides a client for the lost-and-found REST API.
package lostfound

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8080"

// ErrNotFound is matched by errors.Is for any 404 response.
var ErrNotFound = errors.New("not found")

// Client is a lost-and-found API client.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient creates a new client. The token is sent as a bearer credential
// issued by the identity provider.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is returned for any response with status >= 400.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("lostfound error %d", e.StatusCode)
	}
	return fmt.Sprintf("lostfound error %d: %s", e.StatusCode, e.Message)
}

// Is reports 404 responses as ErrNotFound.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// envelope is the {"data": ...} wrapper most endpoints use.
type envelope[T any] struct {
	Data T `json:"data"`
}

// doRequest performs an HTTP request and returns the raw response body.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Message string `json:"message"`
			Error   string `json:"error"`
		}
		_ = json.Unmarshal(respBody, &errResp)
		msg := errResp.Message
		if msg == "" {
			msg = errResp.Error
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	return respBody, nil
}

// getData performs a request and decodes the {"data": ...} envelope.
func getData[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var zero T
	respBody, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return zero, err
	}
	if len(bytes.TrimSpace(respBody)) == 0 {
		return zero, nil
	}

	var env envelope[T]
	if err := json.Unmarshal(respBody, &env); err != nil {
		return zero, err
	}
	return env.Data, nil
}

// getRaw performs a request and decodes an unwrapped body.
func getRaw[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var out T
	respBody, err := c.doRequest(ctx, method, path, body)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(respBody, &out); err != nil {
		return out, err
	}
	return out, nil
}

// HealthResponse is the response from the health endpoint.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	Checks    map[string]interface{} `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// Health checks server health.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	return getRaw[*HealthResponse](ctx, c, http.MethodGet, "/health", nil)
}
