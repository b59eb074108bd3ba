package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billie-coop/mark/internal/api"
	"github.com/billie-coop/mark/internal/app"
	"github.com/billie-coop/mark/internal/config"
	"github.com/billie-coop/mark/internal/mockbackend"
	"github.com/billie-coop/mark/internal/testutil"
)

// runCLI executes the root command against a fresh mock backend.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	_, url := mockbackend.NewTestServer(t, mockbackend.Options{Steps: 2, Logger: testutil.NewTestLogger(t)})

	rt := &state{}
	t.Cleanup(rt.close)

	var out, errOut bytes.Buffer
	cmd := newRootCmd(rt)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--base-url", url, "--poll-interval", "1ms", "--log-level", "error"}, args...))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "mark "+Version)
	assert.Contains(t, out, "commit:")
}

func TestValidateInput(t *testing.T) {
	out, _, err := runCLI(t, "validate", "input", "/projects")
	require.NoError(t, err)
	assert.Contains(t, out, "valid: Valid input directory")
}

func TestValidateInput_Missing(t *testing.T) {
	_, _, err := runCLI(t, "validate", "input", "/missing/projects")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestValidateCSV_WrongExtension(t *testing.T) {
	_, _, err := runCLI(t, "validate", "csv", "/repos.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a CSV")
}

func TestAnalyze_Completes(t *testing.T) {
	out, _, err := runCLI(t, "analyze", "--input", "/projects", "--output-dir", "/out")
	require.NoError(t, err)
	assert.Contains(t, out, "Started job")
	assert.Contains(t, out, "Results written to /out")
}

func TestAnalyze_JSON(t *testing.T) {
	out, _, err := runCLI(t, "-o", "json", "analyze", "--input", "/projects", "--output-dir", "/out")
	require.NoError(t, err)

	var job api.Job
	require.NoError(t, json.Unmarshal([]byte(out), &job))
	assert.Equal(t, api.StatusCompleted, job.Status)
	assert.NotEmpty(t, job.ID)
}

func TestAnalyze_NoPoll(t *testing.T) {
	out, _, err := runCLI(t, "-o", "json", "analyze", "-i", "/projects", "-d", "/out", "--no-poll")
	require.NoError(t, err)

	var resp map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.NotEmpty(t, resp["job_id"])
}

func TestAnalyze_JobFails(t *testing.T) {
	_, _, err := runCLI(t, "analyze", "--input", "/fail-here", "--output-dir", "/out")
	require.Error(t, err)
}

func TestAnalyze_ValidationFails(t *testing.T) {
	_, _, err := runCLI(t, "analyze", "--input", "/missing", "--output-dir", "/out")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestAnalyze_RequiresFlags(t *testing.T) {
	_, _, err := runCLI(t, "analyze", "--input", "/projects")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output-dir")
}

func TestJobsStatus_Unknown(t *testing.T) {
	_, _, err := runCLI(t, "jobs", "status", "no-such-job")
	require.Error(t, err)
}

func TestJobsList_Empty(t *testing.T) {
	out, _, err := runCLI(t, "jobs", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "(0 rows)")
}

func TestAnalyticsSummary_JSON(t *testing.T) {
	out, _, err := runCLI(t, "--output", "json", "analytics", "summary", "/out")
	require.NoError(t, err)

	var s api.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, len(mockbackend.DefaultRecords), s.TotalModels)
	assert.Equal(t, 4, s.ConsumerCount)
	assert.Equal(t, 2, s.ProducerCount)
}

func TestResultsStats_JSON(t *testing.T) {
	out, _, err := runCLI(t, "-o", "json", "results", "stats", "/out")
	require.NoError(t, err)

	var s api.ResultStats
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Positive(t, s.TotalFiles)
}

func TestInvalidOutputFormat(t *testing.T) {
	_, _, err := runCLI(t, "-o", "yaml", "analytics", "summary", "/out")
	require.Error(t, err)
}

func TestPrinter(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		p := newPrinter(&buf, config.OutputJSON)
		called := false
		require.NoError(t, p.Result(map[string]int{"n": 1}, func() { called = true }))
		assert.False(t, called)
		assert.JSONEq(t, `{"n":1}`, buf.String())
	})

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		p := newPrinter(&buf, config.OutputText)
		require.NoError(t, p.Result(nil, func() { p.Linef("hello %s", "world") }))
		assert.Equal(t, "hello world\n", buf.String())
	})

	t.Run("empty table", func(t *testing.T) {
		var buf bytes.Buffer
		newPrinter(&buf, config.OutputText).Table([]string{"A"}, nil)
		assert.Equal(t, "(0 rows)\n", buf.String())
	})

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		newPrinter(&buf, config.OutputText).Table([]string{"Name"}, [][]string{{"torch"}})
		assert.Contains(t, buf.String(), "torch")
	})
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", formatSize(512))
	assert.Equal(t, "1.0 KiB", formatSize(1024))
	assert.Equal(t, "1.5 MiB", formatSize(1536*1024))
	assert.Equal(t, "0 B", formatSize(-1))
	assert.Equal(t, "", formatModified(0))
}

func newTestChatSession(t *testing.T) (*chatSession, *app.App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	_, url := mockbackend.NewTestServer(t, mockbackend.Options{Logger: logger})

	cfg := config.DefaultConfig()
	cfg.BaseURL = url
	a := app.New(cfg, logger, nil)
	t.Cleanup(a.Close)

	var out, errOut bytes.Buffer
	return newChatSession(a.Chat, &out, &errOut), a, &out, &errOut
}

func TestChatSession_Commands(t *testing.T) {
	ctx := context.Background()
	s, _, out, errOut := newTestChatSession(t)

	assert.False(t, s.handle(ctx, "   "))
	assert.Empty(t, out.String())

	assert.False(t, s.handle(ctx, "/help"))
	assert.Contains(t, out.String(), "Commands:")

	assert.False(t, s.handle(ctx, "/bogus"))
	assert.Contains(t, errOut.String(), "Unknown command: /bogus")

	assert.False(t, s.handle(ctx, "/status"))
	assert.Contains(t, out.String(), "LLM service is available")

	assert.True(t, s.handle(ctx, "/quit"))
	assert.True(t, s.handle(ctx, "/EXIT"))
}

func TestChatSession_AskWithoutProject(t *testing.T) {
	s, _, _, errOut := newTestChatSession(t)

	assert.False(t, s.handle(context.Background(), "how many models?"))
	assert.Contains(t, errOut.String(), "Please run an analysis first")
}

func TestChatSession_AskAndClear(t *testing.T) {
	ctx := context.Background()
	s, a, out, errOut := newTestChatSession(t)
	a.Chat.SetProjectPaths("/projects", "/out")

	assert.False(t, s.handle(ctx, "how many models?"))
	assert.Empty(t, errOut.String())
	assert.NotEmpty(t, out.String())

	turns := a.Chat.Turns()
	require.Len(t, turns, 3)
	assert.Contains(t, turns[2].Content, "how many models?")
	assert.NotEmpty(t, a.Chat.SessionID())

	assert.False(t, s.handle(ctx, "/clear"))
	assert.Contains(t, out.String(), "Conversation cleared.")
	assert.Len(t, a.Chat.Turns(), 1)
	assert.Empty(t, a.Chat.SessionID())
}

func TestResultsWatch_MissingDir(t *testing.T) {
	_, _, err := runCLI(t, "results", "watch", "/missing/out")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to watch")
}
