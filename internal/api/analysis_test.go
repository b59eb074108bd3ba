package api

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartAnalysis_Body(t *testing.T) {
	no := false

	tests := []struct {
		name string
		opts StartOptions
		want string
	}{
		{
			name: "paths_only",
			want: `{"input_path":"in","output_path":"out"}`,
		},
		{
			name: "with_csv",
			opts: StartOptions{GithubCSV: "repos.csv"},
			want: `{"input_path":"in","output_path":"out","github_csv":"repos.csv","run_cloner":true}`,
		},
		{
			name: "csv_without_cloner",
			opts: StartOptions{GithubCSV: "repos.csv", RunCloner: &no},
			want: `{"input_path":"in","output_path":"out","github_csv":"repos.csv"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body string
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/analysis/start", r.URL.Path)
				b, _ := io.ReadAll(r.Body)
				body = string(b)
				_, _ = io.WriteString(w, `{"success":true,"job_id":"j1"}`)
			})

			resp, err := c.StartAnalysis(context.Background(), "in", "out", tt.opts)
			require.NoError(t, err)
			assert.Equal(t, "j1", resp.JobID)
			assert.Equal(t, tt.want, body)
		})
	}
}

func TestStartAnalysis_JobIDFromJob(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":true,"job":{"job_id":"j9","status":"queued"}}`)
	})

	resp, err := c.StartAnalysis(context.Background(), "in", "out", StartOptions{})
	require.NoError(t, err)
	assert.Equal(t, "j9", resp.JobID)
	assert.Equal(t, StatusQueued, resp.Job.Status)
}

func TestAnalysisStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/analysis/status/j1", r.URL.Path)
		_, _ = io.WriteString(w, `{"success":true,"message":"Job found","job":{"job_id":"j1","status":"running","progress":40,"message":"Cloning","error":null}}`)
	})

	job, err := c.AnalysisStatus(context.Background(), "j1")
	require.NoError(t, err)
	assert.Equal(t, "j1", job.ID)
	assert.Equal(t, StatusRunning, job.Status)
	assert.Equal(t, 40, job.Progress)
	assert.Equal(t, "Cloning", job.Message)
	assert.False(t, job.Status.Terminal())
}

func TestCancelUsesGET(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/analysis/cancel/j1", r.URL.Path)
		_, _ = io.WriteString(w, `{"success":true,"message":"Job cancelled"}`)
	})

	p, err := c.CancelAnalysis(context.Background(), "j1")
	require.NoError(t, err)
	assert.Equal(t, "Job cancelled", p.String("message"))
	assert.True(t, p.Bool("success"))
}

func TestListJobsAndLogs(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/analysis/jobs":
			_, _ = io.WriteString(w, `{"jobs":[{"job_id":"a","status":"completed"},{"job_id":"b","status":"failed"}]}`)
		case "/api/analysis/jobs/a":
			_, _ = io.WriteString(w, `{"message":"Retrieved 2 log entries","logs":["one","two"]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	jobs, err := c.ListJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.True(t, jobs[0].Status.Terminal())
	assert.True(t, jobs[1].Status.Terminal())

	logs, err := c.JobLogs(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, logs.Logs)
}
