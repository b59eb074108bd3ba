// Package poller re-checks an analysis job until it reaches a terminal state.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/billie-coop/mark/internal/api"
)

// State is the poller's view of a job.
type State string

const (
	StateSubmitted State = "submitted"
	StatePolling   State = "polling"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateCancelled State = "cancelled"
)

// Terminal reports whether no further updates follow.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateCancelled
}

// DefaultInterval is the wait before each status check.
const DefaultInterval = 2 * time.Second

// ErrPollLimit is reported when MaxPolls checks pass without a terminal status.
var ErrPollLimit = errors.New("job did not finish within the poll limit")

// errStillRunning marks a poll that should be retried.
var errStillRunning = errors.New("job still running")

// Fetcher returns the current state of a job.
type Fetcher interface {
	AnalysisStatus(ctx context.Context, jobID string) (*api.Job, error)
}

// Update is delivered after every status change.
type Update struct {
	JobID   string
	State   State
	Job     *api.Job
	Message string
	Err     error
	Polls   int
}

// Poller checks a job every Interval.
type Poller struct {
	fetcher  Fetcher
	Interval time.Duration
	// MaxPolls bounds the number of status checks; zero polls until done.
	MaxPolls int
	Logger   *slog.Logger
}

// New creates a poller with the default interval.
func New(fetcher Fetcher, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Poller{
		fetcher:  fetcher,
		Interval: DefaultInterval,
		Logger:   logger,
	}
}

func (p *Poller) interval() time.Duration {
	if p.Interval <= 0 {
		return DefaultInterval
	}
	return p.Interval
}

func (p *Poller) backoff() retry.Backoff {
	b := retry.NewConstant(p.interval())
	if p.MaxPolls > 0 {
		b = retry.WithMaxRetries(uint64(p.MaxPolls-1), b)
	}
	return b
}

// Run polls jobID until it completes, fails, or ctx is cancelled, calling
// onUpdate synchronously for each state. It returns the final update.
func (p *Poller) Run(ctx context.Context, jobID string, onUpdate func(Update)) Update {
	if onUpdate == nil {
		onUpdate = func(Update) {}
	}
	logger := p.Logger.With("job_id", jobID)
	onUpdate(Update{JobID: jobID, State: StateSubmitted, Message: "Analysis submitted"})

	polls := 0
	var final Update

	err := func() error {
		t := time.NewTimer(p.interval())
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}

		return retry.Do(ctx, p.backoff(), func(ctx context.Context) error {
			polls++
			job, err := p.fetcher.AnalysisStatus(ctx, jobID)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("failed to check job status: %w", err)
			}

			switch job.Status {
			case api.StatusCompleted:
				final = Update{JobID: jobID, State: StateCompleted, Job: job, Message: job.Message, Polls: polls}
				return nil
			case api.StatusFailed, api.StatusCancelled:
				msg := job.Error
				if msg == "" {
					msg = job.Message
				}
				return &JobError{Status: job.Status, Message: msg, Job: job}
			}

			logger.Debug("job not finished", "status", job.Status, "progress", job.Progress, "poll", polls)
			onUpdate(Update{JobID: jobID, State: StatePolling, Job: job, Message: job.Message, Polls: polls})
			return retry.RetryableError(errStillRunning)
		})
	}()

	switch {
	case err == nil:
	case ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)):
		final = Update{JobID: jobID, State: StateCancelled, Message: "Polling cancelled", Err: err, Polls: polls}
	case errors.Is(err, errStillRunning):
		final = Update{JobID: jobID, State: StateFailed, Message: ErrPollLimit.Error(), Err: ErrPollLimit, Polls: polls}
	default:
		final = Update{JobID: jobID, State: StateFailed, Message: err.Error(), Err: err, Polls: polls}
		var jerr *JobError
		if errors.As(err, &jerr) {
			final.Job = jerr.Job
			final.Message = jerr.Message
		}
	}

	logger.Info("polling finished", "state", final.State, "polls", final.Polls)
	onUpdate(final)
	return final
}

// JobError reports a job the backend marked failed or cancelled.
type JobError struct {
	Status  api.JobStatus
	Message string
	Job     *api.Job
}

func (e *JobError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("job %s", e.Status)
	}
	return e.Message
}

// Handle controls a poll started with Start.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu    sync.Mutex
	final Update
}

// Start runs Run in a goroutine and returns a handle to stop it.
func (p *Poller) Start(ctx context.Context, jobID string, onUpdate func(Update)) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		defer cancel()
		final := p.Run(ctx, jobID, onUpdate)
		h.mu.Lock()
		h.final = final
		h.mu.Unlock()
	}()
	return h
}

// Cancel stops polling. The final update has state cancelled unless the job
// already finished. Only the local poll stops; the backend job keeps running.
func (h *Handle) Cancel() {
	h.cancel()
}

// Done is closed once the final update has been delivered.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until polling ends and returns the final update.
func (h *Handle) Wait() Update {
	<-h.done
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.final
}
