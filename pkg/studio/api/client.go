// Package api is the HTTP client for the studio backend. Every remote
// operation the canvas needs goes through Client: node library and
// stats, workflow submission, discovery lookups, credentials, auth,
// workspaces, templates, and the audit/billing/comment listings.
//
// All failures are returned as errors for the caller to surface or
// swallow; nothing in this package panics or retries.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"

	"github.com/tyboo/studiograph/pkg/studio/observability"
)

// APIError is a non-2xx backend response.
type APIError struct {
	// Endpoint is the request path.
	Endpoint string
	// Status is the HTTP status code.
	Status int
	// Detail is the backend's error detail, when the body carried one.
	Detail string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s: status %d", e.Endpoint, e.Status)
}

// Options configures a Client.
type Options struct {
	// BaseURL is the backend HTTP base, e.g. "http://localhost:8000".
	BaseURL string

	// Session supplies the bearer token. Required; use NewSession() for
	// an anonymous client.
	Session *Session

	// HTTPClient overrides the default pooled client.
	HTTPClient *http.Client

	// Timeout bounds each request when HTTPClient is not supplied.
	// Default: 30s.
	Timeout time.Duration

	// Logger receives request diagnostics. Nil disables logging.
	Logger *slog.Logger

	// Metrics and Spans default to no-ops.
	Metrics observability.MetricsRecorder
	Spans   observability.SpanManager
}

// Client talks to the studio backend.
type Client struct {
	base    string
	http    *http.Client
	session *Session
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
}

// NewClient creates a backend client.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}
	sess := opts.Session
	if sess == nil {
		sess = NewSession()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	spans := opts.Spans
	if spans == nil {
		spans = observability.NoopSpanManager{}
	}
	return &Client{
		base:    opts.BaseURL,
		http:    httpClient,
		session: sess,
		logger:  opts.Logger,
		metrics: metrics,
		spans:   spans,
	}
}

// Session returns the client's authentication context.
func (c *Client) Session() *Session {
	return c.session
}

// errorDetail is the FastAPI error body shape.
type errorDetail struct {
	Detail string `json:"detail"`
}

// do performs one request. body (when non-nil) is serialized as JSON;
// out (when non-nil) receives the decoded response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	ctx, span := c.spans.StartRequestSpan(ctx, method, path)
	start := time.Now()
	err := c.doOnce(ctx, method, path, query, body, out)
	c.metrics.RecordRequest(ctx, path, time.Since(start), err)
	c.spans.EndSpanWithError(span, err)
	return err
}

func (c *Client) doOnce(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := sonic.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.session.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s response: %w", path, err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Endpoint: path, Status: resp.StatusCode}
		var detail errorDetail
		if sonic.Unmarshal(data, &detail) == nil {
			apiErr.Detail = detail.Detail
		}
		return apiErr
	}

	if out != nil {
		if err := sonic.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.do(ctx, http.MethodPost, path, query, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}
