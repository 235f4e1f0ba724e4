package gamesession

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ClientConfig holds settings for the session-management HTTP client
type ClientConfig struct {
	// BaseURL is the root of the session-management API
	BaseURL string
	// UserAgent identifies the client application
	UserAgent string
	// Timeout bounds each request
	Timeout time.Duration
}

// DefaultClientConfig returns sensible defaults for the HTTP client
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:   "https://openapi.crowdcontrol.live",
		UserAgent: "Super Example Game 65",
		Timeout:   30 * time.Second,
	}
}

// Client calls the remote session-management API
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a new session-management client
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultClientConfig().Timeout
	}
	return &Client{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// APIError represents an error response from the API
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an API error
type ErrorResponse struct {
	Error APIError `json:"error"`
}

func (e *APIError) String() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// StartRequest is the body of a session start call
type StartRequest struct {
	GamePackID string `json:"gamePackID"`
}

// StartResponse is the body returned by a session start call
type StartResponse struct {
	GameSessionID string `json:"gameSessionID"`
}

// StopRequest is the body of a session stop call
type StopRequest struct {
	GameSessionID string `json:"gameSessionID"`
}

// Start asks the service to open a game session for a game pack. The
// service also announces the session with a game-session-start event.
func (c *Client) Start(ctx context.Context, token, gamePackID string) (string, error) {
	var resp StartResponse
	if err := c.Do(ctx, http.MethodPost, "/game-session/start", token, StartRequest{GamePackID: gamePackID}, &resp); err != nil {
		return "", err
	}
	return resp.GameSessionID, nil
}

// Stop asks the service to close a game session
func (c *Client) Stop(ctx context.Context, token, gameSessionID string) error {
	return c.Do(ctx, http.MethodPost, "/game-session/stop", token, StopRequest{GameSessionID: gameSessionID}, nil)
}

// Do performs an HTTP request
func (c *Client) Do(ctx context.Context, method, path, token string, body, result any) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Code != "" {
			return fmt.Errorf("%s", errResp.Error.String())
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}
