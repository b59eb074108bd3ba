// Package api wraps the MARK backend REST API.
//
// Every resource function builds a URL, issues the request and hands the raw
// response to one shared handler. The handler never validates schemas: a
// successful response with an unparsable body becomes an empty Payload, and a
// failed one becomes an *APIError carrying the backend's message.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/google/uuid"
)

// DefaultBaseURL is where the backend listens when started locally.
const DefaultBaseURL = "http://localhost:5000"

// Payload is a parsed JSON response body.
type Payload map[string]any

// Decode copies the payload into out using the json field tags.
// Missing fields are left at their zero value.
func (p Payload) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(map[string]any(p))
}

// String returns a string field or "" when absent or not a string.
func (p Payload) String(key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

// Bool returns a boolean field or false when absent.
func (p Payload) Bool(key string) bool {
	if v, ok := p[key].(bool); ok {
		return v
	}
	return false
}

// APIError is returned when the backend answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
	Body       Payload
}

func (e *APIError) Error() string {
	return e.Message
}

// Client talks to the backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records request counts and latencies.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend root the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) get(ctx context.Context, path string, query url.Values) (Payload, error) {
	return c.do(ctx, http.MethodGet, path, query, nil)
}

func (c *Client) post(ctx context.Context, path string, body any) (Payload, error) {
	return c.do(ctx, http.MethodPost, path, nil, body)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) (Payload, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path, query), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, routeLabel(path))
}

// send executes req and applies the shared response handling.
func (c *Client) send(req *http.Request, endpoint string) (Payload, error) {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "request_id", requestID, "method", req.Method, "endpoint", endpoint, "error", err)
		c.metrics.observe(endpoint, req.Method, "error", time.Since(start))
		return nil, err
	}
	defer resp.Body.Close()

	c.logger.Debug("request done", "request_id", requestID, "method", req.Method, "endpoint", endpoint, "status", resp.StatusCode, "elapsed", time.Since(start))
	c.metrics.observe(endpoint, req.Method, fmt.Sprint(resp.StatusCode), time.Since(start))

	return handleResponse(resp)
}

// handleResponse parses the body and maps non-2xx statuses to *APIError.
func handleResponse(resp *http.Response) (Payload, error) {
	data := Payload{}
	raw, err := io.ReadAll(resp.Body)
	if err == nil {
		var parsed map[string]any
		if json.Unmarshal(raw, &parsed) == nil && parsed != nil {
			data = parsed
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := data.String("message")
		if msg == "" {
			msg = data.String("error")
		}
		if msg == "" {
			msg = fmt.Sprintf("Server error: %d", resp.StatusCode)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg, Body: data}
	}

	return data, nil
}

// idRoutes are path prefixes followed by a single identifier segment.
var idRoutes = []string{
	"/api/analysis/status/",
	"/api/analysis/cancel/",
	"/api/analysis/jobs/",
	"/api/llm/session/",
}

// routeLabel collapses identifiers so metric labels stay bounded.
func routeLabel(path string) string {
	for _, prefix := range idRoutes {
		if strings.HasPrefix(path, prefix) && len(path) > len(prefix) {
			return prefix + "{id}"
		}
	}
	return path
}

func (c *Client) buildURL(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		// Spaces go out as %20; a literal plus is already %2B.
		u += "?" + strings.ReplaceAll(query.Encode(), "+", "%20")
	}
	return u
}

// decode copies p into out as far as it can. Fields with an unexpected type
// keep their zero value; a successful response never fails on its shape.
func (c *Client) decode(p Payload, out any) {
	if err := p.Decode(out); err != nil {
		c.logger.Debug("response partially decoded", "error", err)
	}
}

// decodeInto decodes p into a new T. An empty payload yields the zero value.
func decodeInto[T any](c *Client, p Payload) *T {
	out := new(T)
	c.decode(p, out)
	return out
}
