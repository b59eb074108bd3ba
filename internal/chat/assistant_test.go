package chat

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billie-coop/mark/internal/api"
	"github.com/billie-coop/mark/internal/testutil"
)

type fakeBackend struct {
	mu        sync.Mutex
	asks      []api.AskRequest
	deleted   []string
	calls     int
	err       error
	deleteErr error

	// block, when set, holds Ask until closed.
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeBackend) Ask(ctx context.Context, req api.AskRequest) (*api.AskResponse, error) {
	f.mu.Lock()
	f.asks = append(f.asks, req)
	f.calls++
	block, entered := f.block, f.entered
	f.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	if f.err != nil {
		return nil, f.err
	}
	return &api.AskResponse{Answer: "answer to " + req.Question, SessionID: "s-1"}, nil
}

func (f *fakeBackend) Explain(ctx context.Context, in, out string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return "explained " + out, nil
}

func (f *fakeBackend) ProjectSummary(ctx context.Context, in, out string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return "summary of " + in, nil
}

func (f *fakeBackend) DeleteSession(ctx context.Context, id string) error {
	f.mu.Lock()
	f.deleted = append(f.deleted, id)
	f.mu.Unlock()
	return f.deleteErr
}

func (f *fakeBackend) LLMStatus(ctx context.Context) (*api.LLMStatus, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &api.LLMStatus{Available: true}, nil
}

func newAssistant(t *testing.T, b *fakeBackend) *Assistant {
	a := New(b, testutil.NewTestLogger(t))
	a.SetProjectPaths("/in", "/out")
	return a
}

func roles(turns []Turn) []Role {
	out := make([]Role, len(turns))
	for i, t := range turns {
		out[i] = t.Role
	}
	return out
}

func TestNew_Welcome(t *testing.T) {
	a := New(&fakeBackend{}, nil)
	turns := a.Turns()
	require.Len(t, turns, 1)
	assert.Equal(t, RoleSystem, turns[0].Role)
	assert.Equal(t, WelcomeMessage, turns[0].Content)
}

func TestAsk_HistoryAndSession(t *testing.T) {
	b := &fakeBackend{}
	a := newAssistant(t, b)

	answer, err := a.Ask(context.Background(), "  first?  ")
	require.NoError(t, err)
	assert.Equal(t, "answer to first?", answer)
	assert.Equal(t, "s-1", a.SessionID())

	_, err = a.Ask(context.Background(), "second?")
	require.NoError(t, err)

	require.Len(t, b.asks, 2)
	assert.Empty(t, b.asks[0].History, "system turns are not sent")
	assert.Nil(t, b.asks[0].SessionID)
	assert.Equal(t, "/in", b.asks[0].InputPath)
	assert.Equal(t, "/out", b.asks[0].OutputPath)

	require.NotNil(t, b.asks[1].SessionID)
	assert.Equal(t, "s-1", *b.asks[1].SessionID)
	assert.Equal(t, []api.HistoryTurn{
		{Role: "user", Content: "first?"},
		{Role: "assistant", Content: "answer to first?"},
	}, b.asks[1].History)

	assert.Equal(t, []Role{RoleSystem, RoleUser, RoleAssistant, RoleUser, RoleAssistant}, roles(a.Turns()))
}

func TestAsk_Blank(t *testing.T) {
	b := &fakeBackend{}
	a := newAssistant(t, b)

	answer, err := a.Ask(context.Background(), "   ")
	assert.NoError(t, err)
	assert.Empty(t, answer)
	assert.Zero(t, b.calls)
}

func TestAsk_NoProjectContext(t *testing.T) {
	b := &fakeBackend{}
	a := New(b, testutil.NewTestLogger(t))

	_, err := a.Ask(context.Background(), "why?")
	assert.ErrorIs(t, err, ErrNoProjectContext)
	assert.Equal(t, "Please run an analysis first from the Input tab.", err.Error())

	_, err = a.Explain(context.Background())
	assert.ErrorIs(t, err, ErrNoProjectContext)
	_, err = a.Summarize(context.Background())
	assert.ErrorIs(t, err, ErrNoProjectContext)

	assert.Zero(t, b.calls)
	assert.Len(t, a.Turns(), 1)
}

func TestAsk_FailureLeavesHistory(t *testing.T) {
	b := &fakeBackend{err: errors.New("LLM service unavailable")}
	a := newAssistant(t, b)

	_, err := a.Ask(context.Background(), "why?")
	require.EqualError(t, err, "LLM service unavailable")
	assert.Len(t, a.Turns(), 1)
	assert.Empty(t, a.SessionID())
	assert.False(t, a.Busy())
}

func TestAsk_BusyRejectsSecondCall(t *testing.T) {
	b := &fakeBackend{block: make(chan struct{}), entered: make(chan struct{}, 1)}
	a := newAssistant(t, b)

	done := make(chan error, 1)
	go func() {
		_, err := a.Ask(context.Background(), "slow")
		done <- err
	}()
	<-b.entered
	assert.True(t, a.Busy())

	_, err := a.Ask(context.Background(), "fast")
	assert.ErrorIs(t, err, ErrBusy)
	_, err = a.Explain(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	close(b.block)
	require.NoError(t, <-done)
	assert.False(t, a.Busy())

	b.mu.Lock()
	defer b.mu.Unlock()
	assert.Equal(t, 1, b.calls)
}

func TestExplainAndSummarize(t *testing.T) {
	b := &fakeBackend{}
	a := newAssistant(t, b)

	reply, err := a.Explain(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "explained /out", reply)

	reply, err = a.Summarize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "summary of /in", reply)

	turns := a.Turns()
	require.Len(t, turns, 5)
	assert.Equal(t, ExplainingNotice, turns[1].Content)
	assert.Equal(t, RoleAssistant, turns[2].Role)
	assert.Equal(t, SummarizeNotice, turns[3].Content)
	assert.Equal(t, RoleAssistant, turns[4].Role)
}

func TestExplain_FailureKeepsNotice(t *testing.T) {
	b := &fakeBackend{err: errors.New("Server error: 500")}
	a := newAssistant(t, b)

	_, err := a.Explain(context.Background())
	require.Error(t, err)
	assert.Equal(t, []Role{RoleSystem, RoleSystem}, roles(a.Turns()))
}

func TestClear(t *testing.T) {
	b := &fakeBackend{deleteErr: errors.New("gone")}
	a := newAssistant(t, b)
	_, err := a.Ask(context.Background(), "q")
	require.NoError(t, err)

	a.Clear(context.Background())

	assert.Equal(t, []string{"s-1"}, b.deleted)
	assert.Empty(t, a.SessionID())
	assert.Len(t, a.Turns(), 1)

	a.Clear(context.Background())
	assert.Len(t, b.deleted, 1, "no session, no delete")
}

func TestCheckStatus(t *testing.T) {
	ok, err := New(&fakeBackend{}, nil).CheckStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = New(&fakeBackend{err: errors.New("down")}, nil).CheckStatus(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRender(t *testing.T) {
	out := Render("**bold** text", 40)
	assert.Contains(t, out, "bold")
	assert.Contains(t, out, "text")
}
