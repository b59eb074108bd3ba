package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billie-coop/mark/internal/testutil"
)

// call invokes one resource function and discards the typed result.
type call func(ctx context.Context, c *Client) error

func allCalls() map[string]call {
	return map[string]call{
		"StartAnalysis": func(ctx context.Context, c *Client) error {
			_, err := c.StartAnalysis(ctx, "in", "out", StartOptions{})
			return err
		},
		"AnalysisStatus": func(ctx context.Context, c *Client) error {
			_, err := c.AnalysisStatus(ctx, "job-1")
			return err
		},
		"CancelAnalysis": func(ctx context.Context, c *Client) error {
			_, err := c.CancelAnalysis(ctx, "job-1")
			return err
		},
		"ListJobs": func(ctx context.Context, c *Client) error {
			_, err := c.ListJobs(ctx)
			return err
		},
		"JobLogs": func(ctx context.Context, c *Client) error {
			_, err := c.JobLogs(ctx, "job-1")
			return err
		},
		"Summary": func(ctx context.Context, c *Client) error {
			_, err := c.Summary(ctx, "/out")
			return err
		},
		"Distribution": func(ctx context.Context, c *Client) error {
			_, err := c.Distribution(ctx, "/out")
			return err
		},
		"Keywords": func(ctx context.Context, c *Client) error {
			_, err := c.Keywords(ctx, "/out", 0)
			return err
		},
		"Libraries": func(ctx context.Context, c *Client) error {
			_, err := c.Libraries(ctx, "/out", 0)
			return err
		},
		"Filter": func(ctx context.Context, c *Client) error {
			_, err := c.Filter(ctx, "/out", FilterOptions{})
			return err
		},
		"AnalyticsHealth": func(ctx context.Context, c *Client) error {
			_, err := c.AnalyticsHealth(ctx)
			return err
		},
		"ValidateInput": func(ctx context.Context, c *Client) error {
			_, err := c.ValidateInput(ctx, "/in")
			return err
		},
		"ValidateOutput": func(ctx context.Context, c *Client) error {
			_, err := c.ValidateOutput(ctx, "/out")
			return err
		},
		"ValidateCSV": func(ctx context.Context, c *Client) error {
			_, err := c.ValidateCSV(ctx, "repos.csv")
			return err
		},
		"Download": func(ctx context.Context, c *Client) error {
			_, err := c.Download(ctx, "/out/a.csv")
			return err
		},
		"ListDirectory": func(ctx context.Context, c *Client) error {
			_, err := c.ListDirectory(ctx, "/out")
			return err
		},
		"ListResults": func(ctx context.Context, c *Client) error {
			_, err := c.ListResults(ctx, "/out")
			return err
		},
		"ViewResult": func(ctx context.Context, c *Client) error {
			_, err := c.ViewResult(ctx, "/out/a.csv", ViewOptions{})
			return err
		},
		"SearchResult": func(ctx context.Context, c *Client) error {
			_, err := c.SearchResult(ctx, "/out/a.csv", "torch", "")
			return err
		},
		"ResultStats": func(ctx context.Context, c *Client) error {
			_, err := c.ResultStats(ctx, "/out")
			return err
		},
		"LLMStatus": func(ctx context.Context, c *Client) error {
			_, err := c.LLMStatus(ctx)
			return err
		},
		"Ask": func(ctx context.Context, c *Client) error {
			_, err := c.Ask(ctx, AskRequest{InputPath: "in", OutputPath: "out", Question: "q"})
			return err
		},
		"Explain": func(ctx context.Context, c *Client) error {
			_, err := c.Explain(ctx, "in", "out")
			return err
		},
		"ProjectSummary": func(ctx context.Context, c *Client) error {
			_, err := c.ProjectSummary(ctx, "in", "out")
			return err
		},
		"DeleteSession": func(ctx context.Context, c *Client) error {
			return c.DeleteSession(ctx, "s-1")
		},
	}
}

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, WithLogger(testutil.NewTestLogger(t)))
}

func TestResponseHandling_AllCalls(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "ok_bad_json", status: http.StatusOK, body: "<html>not json"},
		{name: "ok_empty_body", status: http.StatusOK, body: ""},
		{name: "fail_message", status: http.StatusBadRequest, body: `{"message":"X"}`, wantErr: "X"},
		{name: "fail_error_field", status: http.StatusInternalServerError, body: `{"error":"boom"}`, wantErr: "boom"},
		{name: "fail_message_wins", status: http.StatusInternalServerError, body: `{"error":"boom","message":"Failed to get summary"}`, wantErr: "Failed to get summary"},
		{name: "fail_bad_json", status: http.StatusBadGateway, body: "oops", wantErr: "Server error: 502"},
		{name: "fail_no_message", status: http.StatusNotFound, body: `{"success":false}`, wantErr: "Server error: 404"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			for name, fn := range allCalls() {
				err := fn(context.Background(), c)
				if tt.wantErr == "" {
					assert.NoError(t, err, name)
					continue
				}
				require.Error(t, err, name)
				assert.Equal(t, tt.wantErr, err.Error(), name)

				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr), name)
				assert.Equal(t, tt.status, apiErr.StatusCode, name)
			}
		})
	}
}

func TestResponseHandling_OKBadJSONIsEmptyPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "{truncated")
	})

	p, err := c.AnalyticsHealth(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, p)
	assert.Empty(t, p)
}

func TestTransportErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url)
	_, err := c.Summary(context.Background(), "/out")
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestRequestHeaders(t *testing.T) {
	var got http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = io.WriteString(w, `{}`)
	})

	_, err := c.ValidateInput(context.Background(), "/in")
	require.NoError(t, err)
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))
}

func TestMetricsObserveRequests(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/analysis/status/missing" {
			w.WriteHeader(http.StatusNotFound)
		}
		_, _ = io.WriteString(w, `{}`)
	}))
	t.Cleanup(srv.Close)
	c := NewClient(srv.URL, WithMetrics(m))

	ctx := context.Background()
	_, err := c.AnalysisStatus(ctx, "job-1")
	require.NoError(t, err)
	_, err = c.AnalysisStatus(ctx, "job-2")
	require.NoError(t, err)
	_, err = c.AnalysisStatus(ctx, "missing")
	require.Error(t, err)

	ok := m.requestsTotal.WithLabelValues("/api/analysis/status/{id}", http.MethodGet, "200")
	notFound := m.requestsTotal.WithLabelValues("/api/analysis/status/{id}", http.MethodGet, "404")
	assert.Equal(t, 2.0, promtest.ToFloat64(ok))
	assert.Equal(t, 1.0, promtest.ToFloat64(notFound))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.observe("/x", http.MethodGet, "200", 0) })
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/api/analysis/jobs", routeLabel("/api/analysis/jobs"))
	assert.Equal(t, "/api/analysis/jobs/{id}", routeLabel("/api/analysis/jobs/abc"))
	assert.Equal(t, "/api/llm/session/{id}", routeLabel("/api/llm/session/s-1"))
	assert.Equal(t, "/api/file/validate/csv", routeLabel("/api/file/validate/csv"))
}

func TestMistypedFieldKeepsSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"total_models":"many","consumer_count":4}`)
	})

	s, err := c.Summary(context.Background(), "/out")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Zero(t, s.TotalModels)
	assert.Equal(t, 4, s.ConsumerCount)
}

func TestMistypedFieldKeepsSuccess_AllCalls(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"total_models":"many","job_id":[1],"jobs":"none","status":7,"data":"x","results":"x","stats":"x","valid":{}}`)
	})

	for name, fn := range allCalls() {
		assert.NoError(t, fn(context.Background(), c), name)
	}
}

func TestPayloadDecodeMissingFields(t *testing.T) {
	var s Summary
	require.NoError(t, Payload{"total_models": 3.0}.Decode(&s))
	assert.Equal(t, 3, s.TotalModels)
	assert.Zero(t, s.ConsumerCount)
}

// decodeBody reads a JSON request body into a generic map.
func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var m map[string]any
	assert.NoError(t, json.NewDecoder(r.Body).Decode(&m))
	return m
}
