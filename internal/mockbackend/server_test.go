package mockbackend_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billie-coop/mark/internal/api"
	"github.com/billie-coop/mark/internal/mockbackend"
	"github.com/billie-coop/mark/internal/testutil"
)

func newClient(t *testing.T, opts mockbackend.Options) (*mockbackend.Server, *api.Client) {
	opts.Logger = testutil.NewTestLogger(t)
	srv, url := mockbackend.NewTestServer(t, opts)
	return srv, api.NewClient(url, api.WithLogger(opts.Logger))
}

func TestJobLifecycle(t *testing.T) {
	_, c := newClient(t, mockbackend.Options{Steps: 3})
	ctx := context.Background()

	start, err := c.StartAnalysis(ctx, "/projects", "/out", api.StartOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, start.JobID)

	first, err := c.AnalysisStatus(ctx, start.JobID)
	require.NoError(t, err)
	assert.Equal(t, api.StatusRunning, first.Status)
	assert.Equal(t, "Cloning repositories", first.Message)
	assert.Equal(t, 33, first.Progress)

	_, err = c.AnalysisStatus(ctx, start.JobID)
	require.NoError(t, err)
	done, err := c.AnalysisStatus(ctx, start.JobID)
	require.NoError(t, err)
	assert.Equal(t, api.StatusCompleted, done.Status)
	assert.Equal(t, 100, done.Progress)
	assert.NotEmpty(t, done.CompletedAt)

	jobs, err := c.ListJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "/projects", jobs[0].InputPath)

	logs, err := c.JobLogs(ctx, start.JobID)
	require.NoError(t, err)
	assert.Equal(t, "Job created", logs.Logs[0])
	assert.Equal(t, "Analysis completed successfully", logs.Logs[len(logs.Logs)-1])
}

func TestJobFailure(t *testing.T) {
	_, c := newClient(t, mockbackend.Options{})
	ctx := context.Background()

	start, err := c.StartAnalysis(ctx, "/will-fail", "/out", api.StartOptions{})
	require.NoError(t, err)

	j, err := c.AnalysisStatus(ctx, start.JobID)
	require.NoError(t, err)
	assert.Equal(t, api.StatusFailed, j.Status)
	assert.Contains(t, j.Message, "Analysis failed")
}

func TestCancel(t *testing.T) {
	srv, c := newClient(t, mockbackend.Options{Steps: 10})
	ctx := context.Background()

	start, err := c.StartAnalysis(ctx, "/projects", "/out", api.StartOptions{})
	require.NoError(t, err)

	_, err = c.CancelAnalysis(ctx, start.JobID)
	require.NoError(t, err)
	j, ok := srv.Job(start.JobID)
	require.True(t, ok)
	assert.Equal(t, api.StatusCancelled, j.Status)

	_, err = c.CancelAnalysis(ctx, start.JobID)
	assert.EqualError(t, err, "job is already cancelled")
}

func TestUnknownJob(t *testing.T) {
	_, c := newClient(t, mockbackend.Options{})

	_, err := c.AnalysisStatus(context.Background(), "nope")
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "Job not found", apiErr.Error())
}

func TestValidation(t *testing.T) {
	_, c := newClient(t, mockbackend.Options{})
	ctx := context.Background()

	v, err := c.ValidateInput(ctx, "/projects")
	require.NoError(t, err)
	assert.True(t, v.OK())

	_, err = c.ValidateOutput(ctx, "/missing/out")
	assert.EqualError(t, err, "Output directory does not exist: /missing/out")

	v, err = c.ValidateCSV(ctx, "/repos.csv")
	require.NoError(t, err)
	assert.True(t, v.OK())

	_, err = c.ValidateCSV(ctx, "/repos.txt")
	assert.EqualError(t, err, "File must be a CSV")
}

func TestAnalytics(t *testing.T) {
	_, c := newClient(t, mockbackend.Options{})
	ctx := context.Background()

	sum, err := c.Summary(ctx, "/out")
	require.NoError(t, err)
	assert.Equal(t, 6, sum.TotalModels)
	assert.Equal(t, 4, sum.ConsumerCount)
	assert.Equal(t, 2, sum.ProducerCount)
	assert.Equal(t, 4, sum.TotalProjects)

	dist, err := c.Distribution(ctx, "/out")
	require.NoError(t, err)
	require.NoError(t, dist.Validate())
	assert.Equal(t, []int{4, 2}, dist.Counts)
	assert.InDeltaSlice(t, []float64{66.66, 33.33}, dist.Percentages, 0.001)

	kw, err := c.Keywords(ctx, "/out", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"fit", "predict"}, kw.Labels)
	assert.Equal(t, []int{2, 2}, kw.Counts)
	assert.Equal(t, 4, kw.TotalUnique)

	libs, err := c.Libraries(ctx, "/out", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"torch", "transformers", "sklearn", "tensorflow"}, libs.Labels)
	assert.Equal(t, 4, libs.TotalUnique)

	f, err := c.Filter(ctx, "/out", api.FilterOptions{Type: "producer"})
	require.NoError(t, err)
	assert.Equal(t, 2, f.Count)
	assert.Equal(t, "producer", f.FiltersApplied["type"])

	f, err = c.Filter(ctx, "/out", api.FilterOptions{Library: "transformers", Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, f.Count)
	assert.Equal(t, "chatbot", f.Results[0]["ProjectName"])
}

func TestAnalytics_NoResults(t *testing.T) {
	_, c := newClient(t, mockbackend.Options{})

	_, err := c.Summary(context.Background(), "/empty-out")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "No consumer"))

	_, err = c.Keywords(context.Background(), "", 0)
	assert.EqualError(t, err, "output_path parameter is required")
}

func TestResults(t *testing.T) {
	_, c := newClient(t, mockbackend.Options{})
	ctx := context.Background()

	list, err := c.ListResults(ctx, "/out")
	require.NoError(t, err)
	require.Len(t, list.AllFiles, 2)
	assert.Equal(t, "/out/consumer_results.csv", list.Consumers[0].Path)

	limit, offset := 3, 2
	view, err := c.ViewResult(ctx, list.Consumers[0].Path, api.ViewOptions{Limit: &limit, Offset: &offset})
	require.NoError(t, err)
	assert.Equal(t, 4, view.TotalRows)
	assert.Equal(t, 2, view.RowCount)
	assert.False(t, view.HasMore)
	assert.Equal(t, "ProjectName", view.Headers[0])

	found, err := c.SearchResult(ctx, list.Consumers[0].Path, "CHAT", "ProjectName")
	require.NoError(t, err)
	assert.Equal(t, 2, found.MatchCount)

	_, err = c.SearchResult(ctx, list.Consumers[0].Path, "x", "nope")
	assert.EqualError(t, err, "Column not found: nope")

	stats, err := c.ResultStats(ctx, "/out")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalFiles)
	require.NotNil(t, stats.LatestFile)
}

func TestUpload(t *testing.T) {
	srv, c := newClient(t, mockbackend.Options{})

	p, err := c.Upload(context.Background(), "repos.csv", strings.NewReader("url\nhttps://example.com/a\n"))
	require.NoError(t, err)
	assert.True(t, p.Bool("success"))

	n, ok := srv.Uploaded("repos.csv")
	require.True(t, ok)
	assert.EqualValues(t, 26, n)
}

func TestLLMSession(t *testing.T) {
	_, c := newClient(t, mockbackend.Options{})
	ctx := context.Background()

	resp, err := c.Ask(ctx, api.AskRequest{InputPath: "/in", OutputPath: "/out", Question: "what?"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.SessionID)
	assert.Contains(t, resp.Answer, "what?")
	assert.Len(t, resp.History, 2)

	st, err := c.LLMStatus(ctx)
	require.NoError(t, err)
	assert.True(t, st.Available)
	assert.Equal(t, 1, st.ActiveSessions)

	require.NoError(t, c.DeleteSession(ctx, resp.SessionID))
	err = c.DeleteSession(ctx, resp.SessionID)
	var apiErr *api.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestLLMUnavailable(t *testing.T) {
	_, c := newClient(t, mockbackend.Options{LLMUnavailable: true})
	ctx := context.Background()

	st, err := c.LLMStatus(ctx)
	require.NoError(t, err)
	assert.False(t, st.Available)

	_, err = c.Explain(ctx, "/in", "/out")
	assert.EqualError(t, err, "LLM service is not available")
}
