package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agenticauto/autobuilder/internal/logging"
	"github.com/agenticauto/autobuilder/internal/version"
)

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 10 << 20

// Client talks to the automation builder backend
type Client struct {
	// BaseURL is the backend root, e.g. "https://agentic-automation-api.onrender.com"
	BaseURL string

	// Token is sent as a bearer token when non-empty
	Token string

	// HTTPClient is the underlying HTTP client. Its zero timeout means
	// requests are bounded only by their context.
	HTTPClient *http.Client

	// newRequestID generates X-Request-ID values
	newRequestID func() string
}

// NewClient creates a client for baseURL with no timeout and no token
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:      strings.TrimRight(baseURL, "/"),
		HTTPClient:   &http.Client{},
		newRequestID: uuid.NewString,
	}
}

// SetTimeout sets the HTTP client timeout; 0 disables it
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// SetToken sets the bearer token
func (c *Client) SetToken(token string) {
	c.Token = token
}

func (c *Client) host() string {
	if u, err := url.Parse(c.BaseURL); err == nil && u.Host != "" {
		return u.Host
	}
	return c.BaseURL
}

// do performs one JSON request. in is marshalled as the body when non-nil;
// a 2xx body is decoded into out when out is non-nil. action names the
// operation in error messages.
func (c *Client) do(ctx context.Context, method, path string, in, out any, action string) error {
	requestID := c.newRequestID()

	var body io.Reader
	var payload []byte
	if in != nil {
		var err error
		payload, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", action, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		e := NewNetworkError(fmt.Sprintf("failed to create %s request", action), err)
		e.RequestID = requestID
		return e
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set("X-Request-ID", requestID)
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	logging.LogAPIRequest(requestID, method, path)
	if payload != nil {
		logging.LogBody(requestID, "request", payload)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		e := NewNetworkError(action+" failed", err)
		e.RequestID = requestID
		e.Host = c.host()
		return e
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	logging.LogAPIResponse(requestID, resp.StatusCode, time.Since(start))
	if err != nil {
		e := NewNetworkError("failed to read "+action+" response", err)
		e.RequestID = requestID
		e.Host = c.host()
		return e
	}
	logging.LogBody(requestID, "response", respBody)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := NewHTTPError(resp.StatusCode, action+" failed", parseDetail(respBody))
		e.RequestID = requestID
		e.Host = c.host()
		return e
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		e := NewParseError(fmt.Sprintf("failed to parse %s response", action), err)
		e.RequestID = requestID
		e.StatusCode = resp.StatusCode
		return e
	}
	return nil
}
