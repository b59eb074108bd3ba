package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/billie-coop/mark/internal/api"
	"github.com/billie-coop/mark/internal/csync"
)

// Role identifies who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Fixed system messages.
const (
	WelcomeMessage   = "Welcome! I can help you understand the MARK analysis results. Ask me anything about the analyzed project."
	ExplainingNotice = "Generating automatic explanation..."
	SummarizeNotice  = "Generating project summary..."
)

var (
	// ErrBusy is returned when a request is already outstanding.
	ErrBusy = errors.New("assistant is busy")
	// ErrNoProjectContext is returned before any analysis has run.
	ErrNoProjectContext = errors.New("Please run an analysis first from the Input tab.")
)

// Turn is one message of the conversation.
type Turn struct {
	Role      Role
	Content   string
	Timestamp time.Time
}

// Backend is the subset of the API client the assistant talks to.
type Backend interface {
	Ask(ctx context.Context, req api.AskRequest) (*api.AskResponse, error)
	Explain(ctx context.Context, in, out string) (string, error)
	ProjectSummary(ctx context.Context, in, out string) (string, error)
	DeleteSession(ctx context.Context, sessionID string) error
	LLMStatus(ctx context.Context) (*api.LLMStatus, error)
}

// Assistant holds one conversation about an analyzed project.
type Assistant struct {
	backend Backend
	logger  *slog.Logger
	turns   *csync.Slice[Turn]
	now     func() time.Time

	mu         sync.Mutex
	busy       bool
	sessionID  string
	inputPath  string
	outputPath string
}

// New creates an assistant primed with the welcome message.
func New(backend Backend, logger *slog.Logger) *Assistant {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	a := &Assistant{
		backend: backend,
		logger:  logger,
		turns:   csync.NewSlice[Turn](),
		now:     time.Now,
	}
	a.add(RoleSystem, WelcomeMessage)
	return a
}

// SetProjectPaths sets the project the questions are about.
func (a *Assistant) SetProjectPaths(in, out string) {
	a.mu.Lock()
	a.inputPath, a.outputPath = in, out
	a.mu.Unlock()
	a.logger.Debug("project paths set", "input", in, "output", out)
}

// ProjectPaths returns the current project paths.
func (a *Assistant) ProjectPaths() (in, out string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inputPath, a.outputPath
}

// SessionID returns the backend session, empty before the first answer.
func (a *Assistant) SessionID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sessionID
}

// Busy reports whether a request is outstanding.
func (a *Assistant) Busy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.busy
}

// Turns returns a copy of the conversation.
func (a *Assistant) Turns() []Turn {
	return a.turns.ToSlice()
}

// Ask sends a question and records it with the answer on success.
// A blank question does nothing.
func (a *Assistant) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", nil
	}

	in, out, err := a.acquire()
	if err != nil {
		return "", err
	}
	defer a.release()

	var session *string
	if id := a.SessionID(); id != "" {
		session = &id
	}
	resp, err := a.backend.Ask(ctx, api.AskRequest{
		InputPath:  in,
		OutputPath: out,
		Question:   question,
		SessionID:  session,
		History:    a.history(),
	})
	if err != nil {
		a.logger.Warn("ask failed", "error", err)
		return "", err
	}

	if resp.SessionID != "" {
		a.mu.Lock()
		a.sessionID = resp.SessionID
		a.mu.Unlock()
	}
	a.add(RoleUser, question)
	a.add(RoleAssistant, resp.Answer)
	return resp.Answer, nil
}

// Explain asks the backend to explain the analysis results.
func (a *Assistant) Explain(ctx context.Context) (string, error) {
	return a.generate(ctx, ExplainingNotice, a.backend.Explain)
}

// Summarize asks the backend for a project summary.
func (a *Assistant) Summarize(ctx context.Context) (string, error) {
	return a.generate(ctx, SummarizeNotice, a.backend.ProjectSummary)
}

func (a *Assistant) generate(ctx context.Context, notice string, fn func(context.Context, string, string) (string, error)) (string, error) {
	in, out, err := a.acquire()
	if err != nil {
		return "", err
	}
	defer a.release()

	a.add(RoleSystem, notice)
	reply, err := fn(ctx, in, out)
	if err != nil {
		a.logger.Warn("generation failed", "notice", notice, "error", err)
		return "", err
	}
	a.add(RoleAssistant, reply)
	return reply, nil
}

// Clear drops the backend session and resets the conversation.
func (a *Assistant) Clear(ctx context.Context) {
	a.mu.Lock()
	id := a.sessionID
	a.sessionID = ""
	a.mu.Unlock()

	if id != "" {
		if err := a.backend.DeleteSession(ctx, id); err != nil {
			a.logger.Warn("failed to delete session", "session_id", id, "error", err)
		}
	}
	a.turns.Clear()
	a.add(RoleSystem, WelcomeMessage)
}

// CheckStatus reports whether the LLM service is available.
func (a *Assistant) CheckStatus(ctx context.Context) (bool, error) {
	st, err := a.backend.LLMStatus(ctx)
	if err != nil {
		return false, err
	}
	return st.Available, nil
}

// acquire marks the assistant busy once the project context is known.
func (a *Assistant) acquire() (string, string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.busy {
		return "", "", ErrBusy
	}
	if a.inputPath == "" || a.outputPath == "" {
		return "", "", ErrNoProjectContext
	}
	a.busy = true
	return a.inputPath, a.outputPath, nil
}

func (a *Assistant) release() {
	a.mu.Lock()
	a.busy = false
	a.mu.Unlock()
}

func (a *Assistant) add(role Role, content string) {
	a.turns.Append(Turn{Role: role, Content: content, Timestamp: a.now()})
}

// history is the conversation without system turns, in wire form.
func (a *Assistant) history() []api.HistoryTurn {
	turns := a.turns.ToSlice()
	out := make([]api.HistoryTurn, 0, len(turns))
	for _, t := range turns {
		if t.Role == RoleSystem {
			continue
		}
		out = append(out, api.HistoryTurn{Role: string(t.Role), Content: t.Content})
	}
	return out
}
