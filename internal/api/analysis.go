package api

import (
	"context"
	"net/url"
)

type startBody struct {
	InputPath  string `json:"input_path"`
	OutputPath string `json:"output_path"`
	GithubCSV  string `json:"github_csv,omitempty"`
	RunCloner  bool   `json:"run_cloner,omitempty"`
}

// StartAnalysis asks the backend to analyze in and write results to out.
func (c *Client) StartAnalysis(ctx context.Context, in, out string, opts StartOptions) (*StartResponse, error) {
	runCloner := opts.GithubCSV != ""
	if opts.RunCloner != nil {
		runCloner = *opts.RunCloner
	}
	body := startBody{
		InputPath:  in,
		OutputPath: out,
		GithubCSV:  opts.GithubCSV,
		RunCloner:  runCloner,
	}

	p, err := c.post(ctx, "/api/analysis/start", body)
	if err != nil {
		return nil, err
	}
	resp := decodeInto[StartResponse](c, p)
	if resp.JobID == "" && resp.Job != nil {
		resp.JobID = resp.Job.ID
	}
	return resp, nil
}

// AnalysisStatus fetches the current state of a job.
func (c *Client) AnalysisStatus(ctx context.Context, jobID string) (*Job, error) {
	p, err := c.get(ctx, "/api/analysis/status/"+url.PathEscape(jobID), nil)
	if err != nil {
		return nil, err
	}
	return c.jobFrom(p), nil
}

// CancelAnalysis asks the backend to stop a job.
func (c *Client) CancelAnalysis(ctx context.Context, jobID string) (Payload, error) {
	return c.get(ctx, "/api/analysis/cancel/"+url.PathEscape(jobID), nil)
}

// ListJobs returns every job the backend knows about.
func (c *Client) ListJobs(ctx context.Context) ([]Job, error) {
	p, err := c.get(ctx, "/api/analysis/jobs", nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Jobs []Job `json:"jobs"`
	}
	c.decode(p, &out)
	return out.Jobs, nil
}

// JobLogs returns the recent output lines of a job.
func (c *Client) JobLogs(ctx context.Context, jobID string) (*JobLog, error) {
	p, err := c.get(ctx, "/api/analysis/jobs/"+url.PathEscape(jobID), nil)
	if err != nil {
		return nil, err
	}
	return decodeInto[JobLog](c, p), nil
}

// jobFrom reads a job from either a {"job": {...}} envelope or a bare body.
func (c *Client) jobFrom(p Payload) *Job {
	if inner, ok := p["job"].(map[string]any); ok {
		return decodeInto[Job](c, Payload(inner))
	}
	return decodeInto[Job](c, p)
}
