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

	"go.uber.org/zap"
)

const sessionCookieName = "session"

// Config carries everything the client needs to reach the backend.
type Config struct {
	// BaseURL is the API root, e.g. "http://localhost:5000/api".
	BaseURL string
	// SessionCookie is the value of the backend session cookie. Empty means
	// unauthenticated; requests are still sent and the backend answers 4xx.
	SessionCookie string
	// Timeout bounds non-streaming calls. Streaming responses are exempt so
	// a long completion is not cut off mid-answer.
	Timeout time.Duration
}

// StatusError reports a non-2xx backend response. Message carries the
// decoded {error} body when one was present.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("api: status %d", e.Code)
}

// Client talks to the LearnNova backend. All methods attach the session
// cookie and decode the backend's {error} envelope on failure.
type Client struct {
	baseURL string
	cookie  string
	httpc   *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// New builds a client from config. A nil logger falls back to a no-op one.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	base, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: base,
		cookie:  cfg.SessionCookie,
		// The client itself carries no Timeout: streaming reads may outlive
		// any fixed deadline. Non-streaming calls bound themselves through
		// the request context instead.
		httpc:   &http.Client{},
		timeout: timeout,
		logger:  logger,
	}, nil
}

// normalizeBaseURL validates the configured root and strips a trailing slash.
func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("api base url is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid api base url %q", raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.attachSession(req)
	return req, nil
}

func (c *Client) attachSession(req *http.Request) {
	if c.cookie != "" {
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: c.cookie})
	}
}

// do runs a non-streaming call: request out, JSON in. A nil out discards the
// response body. Non-2xx statuses come back as *StatusError.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeStatusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// PostStream issues a POST whose response body the caller will consume
// incrementally. The response is returned with its body open; the caller
// owns closing it. Non-2xx responses are drained, closed and returned as
// *StatusError.
func (c *Client) PostStream(ctx context.Context, path string, body any, accept string) (*http.Response, error) {
	req, err := c.newRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeStatusError(resp)
	}
	return resp, nil
}

// decodeStatusError reads the error envelope from a failed response. The
// body is capped so a misbehaving server cannot balloon memory.
func decodeStatusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	var envelope struct {
		Error string `json:"error"`
	}
	message := ""
	if err := json.Unmarshal(raw, &envelope); err == nil {
		message = envelope.Error
	}
	if message == "" {
		message = strings.TrimSpace(string(raw))
		if len(message) > 200 {
			message = message[:200]
		}
	}
	return &StatusError{Code: resp.StatusCode, Message: message}
}
