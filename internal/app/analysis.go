package app

import (
	"context"
	"fmt"

	"github.com/billie-coop/mark/internal/api"
	"github.com/billie-coop/mark/internal/events"
	"github.com/billie-coop/mark/internal/poller"
)

// StartRequest names the folders of a new analysis.
type StartRequest struct {
	InputPath  string
	OutputPath string
	// GithubCSV optionally lists repositories to clone first.
	GithubCSV string
}

// Analysis is the job the app is currently tracking.
type Analysis struct {
	JobID      string
	InputPath  string
	OutputPath string

	handle *poller.Handle
}

// Wait blocks until polling ends and returns the final update.
func (an *Analysis) Wait() poller.Update {
	return an.handle.Wait()
}

// ValidationError is a negative backend verdict on a path.
type ValidationError struct {
	Field   string
	Path    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Path)
}

// Running returns the analysis in progress, or nil.
func (a *App) Running() *Analysis {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running == nil || a.running.handle == nil {
		return nil
	}
	return a.running
}

// StartAnalysis validates the folders, starts the job and polls it in the
// background. Progress is published as analysis events on a.Events.
func (a *App) StartAnalysis(ctx context.Context, req StartRequest) (*Analysis, error) {
	a.mu.Lock()
	if a.running != nil {
		a.mu.Unlock()
		return nil, ErrAnalysisRunning
	}
	run := &Analysis{InputPath: req.InputPath, OutputPath: req.OutputPath}
	a.running = run
	a.mu.Unlock()

	if err := a.startJob(ctx, run, req); err != nil {
		a.finish(run)
		a.Events.Publish(events.Event{
			Type:    events.AnalysisErrorEvent,
			Payload: events.AnalysisPayload{InputPath: req.InputPath, OutputPath: req.OutputPath, Message: err.Error(), Err: err},
		})
		return nil, err
	}
	return run, nil
}

func (a *App) startJob(ctx context.Context, run *Analysis, req StartRequest) error {
	if err := a.validate(ctx, req); err != nil {
		return err
	}
	a.Session.SetPaths(req.InputPath, req.OutputPath)

	resp, err := a.Client.StartAnalysis(ctx, req.InputPath, req.OutputPath, api.StartOptions{GithubCSV: req.GithubCSV})
	if err != nil {
		return fmt.Errorf("failed to start analysis: %w", err)
	}
	if resp.JobID == "" {
		return fmt.Errorf("failed to start analysis: backend returned no job id")
	}
	run.JobID = resp.JobID
	a.remember(req)

	a.Logger.Info("analysis started", "job_id", run.JobID, "input", req.InputPath, "output", req.OutputPath)
	a.Events.Publish(events.Event{
		Type:    events.AnalysisStartedEvent,
		Payload: a.payload(run, resp.Message, resp.Job, nil),
	})

	// Polling outlives the request that started it.
	pollCtx := context.WithoutCancel(ctx)
	handle := a.Poller.Start(pollCtx, run.JobID, func(u poller.Update) { a.onUpdate(run, u) })

	a.mu.Lock()
	run.handle = handle
	a.mu.Unlock()
	return nil
}

type pathCheck struct {
	field string
	path  string
	fn    func(context.Context, string) (*api.Validation, error)
}

// validate asks the backend about each folder and the optional CSV.
func (a *App) validate(ctx context.Context, req StartRequest) error {
	checks := []pathCheck{
		{"input folder", req.InputPath, a.Client.ValidateInput},
		{"output folder", req.OutputPath, a.Client.ValidateOutput},
	}
	if req.GithubCSV != "" {
		checks = append(checks, pathCheck{"GitHub CSV", req.GithubCSV, a.Client.ValidateCSV})
	}

	for _, c := range checks {
		v, err := c.fn(ctx, c.path)
		if err != nil {
			return err
		}
		if !v.OK() {
			return &ValidationError{Field: c.field, Path: c.path, Message: v.Message}
		}
	}
	return nil
}

func (a *App) onUpdate(run *Analysis, u poller.Update) {
	var typ events.EventType
	switch u.State {
	case poller.StateSubmitted, poller.StatePolling:
		typ = events.AnalysisProgressEvent
	case poller.StateCompleted:
		typ = events.AnalysisCompletedEvent
	case poller.StateCancelled:
		typ = events.AnalysisCancelledEvent
	default:
		typ = events.AnalysisErrorEvent
	}
	if u.State.Terminal() {
		a.finish(run)
		a.Logger.Info("analysis finished", "job_id", run.JobID, "state", u.State)
	}
	a.Events.Publish(events.Event{Type: typ, Payload: a.payload(run, u.Message, u.Job, u.Err)})
}

// finish releases the running slot if run still holds it.
func (a *App) finish(run *Analysis) {
	a.mu.Lock()
	if a.running == run {
		a.running = nil
	}
	a.mu.Unlock()
}

func (a *App) payload(run *Analysis, msg string, job *api.Job, err error) events.AnalysisPayload {
	return events.AnalysisPayload{
		JobID:      run.JobID,
		InputPath:  run.InputPath,
		OutputPath: run.OutputPath,
		Message:    msg,
		Job:        job,
		Err:        err,
	}
}

// CancelAnalysis stops polling the running job and asks the backend to stop it.
func (a *App) CancelAnalysis(ctx context.Context) error {
	run := a.Running()
	if run == nil {
		return ErrNoAnalysis
	}
	run.handle.Cancel()
	run.handle.Wait()

	if _, err := a.Client.CancelAnalysis(ctx, run.JobID); err != nil {
		a.Logger.Warn("backend cancel failed", "job_id", run.JobID, "error", err)
		a.status("Failed to cancel analysis: "+err.Error(), "error")
		return fmt.Errorf("failed to cancel analysis: %w", err)
	}
	a.status("Analysis cancelled", "warning")
	return nil
}
