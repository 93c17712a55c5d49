// Package backend wraps the remote RBAC REST API the console delegates to.
// All durable state lives behind this API; the console only caches session
// claims on top of it.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/KrunalTTech03/rbac-console/internal/platform/httpx"
	"github.com/KrunalTTech03/rbac-console/internal/shared"
)

// Client is a thin typed wrapper around the backend REST surface. It attaches
// the bearer credential from the request's session and decodes the shared
// response envelope. Domain packages layer their own typed calls on top.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	logger        *slog.Logger
	metrics       ErrorCounter
	onAuthFailure func(context.Context)
}

// ErrorCounter records failed upstream calls.
type ErrorCounter interface {
	BackendError(kind string)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// NewClient constructs a new client.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// WithMetrics attaches an error counter for upstream failures.
func (c *Client) WithMetrics(m ErrorCounter) *Client {
	c.metrics = m
	return c
}

// OnAuthFailure registers the single subscriber notified when the backend
// rejects the credential. Called once at startup; later registrations are
// ignored so the logout path cannot be wired twice.
func (c *Client) OnAuthFailure(fn func(context.Context)) {
	if c.onAuthFailure != nil {
		return
	}
	c.onAuthFailure = fn
}

// Ping checks if the backend is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/health", c.baseURL), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("backend returned status %d", resp.StatusCode)
	}
	return nil
}

// Get issues a GET request and decodes the envelope payload into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE request, optionally with a JSON body.
func (c *Client) Delete(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodDelete, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := shared.SessionFromContext(ctx).Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.countError("transport")
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Drain the body before classifying so the connection can be reused
	// and the backend's own message survives into the error.
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env envelope
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &env); err != nil {
			if resp.StatusCode != http.StatusUnauthorized {
				return &httpx.RemoteError{Status: resp.StatusCode, Message: "malformed backend response"}
			}
		}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// Credential expired or revoked. Notify the single subscriber so the
		// session is torn down in one place, then report upward.
		c.countError("unauthorized")
		if c.onAuthFailure != nil {
			c.onAuthFailure(ctx)
		}
		if env.Message != "" {
			return fmt.Errorf("backend rejected credential: %s: %w", env.Message, httpx.ErrUnauthenticated)
		}
		return fmt.Errorf("backend rejected credential: %w", httpx.ErrUnauthenticated)
	}

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s: %w", env.Message, httpx.ErrNotFound)
	}
	if resp.StatusCode >= 400 || !env.Success {
		c.countError("api")
		return &httpx.RemoteError{Status: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) countError(kind string) {
	if c.metrics != nil {
		c.metrics.BackendError(kind)
	}
}
