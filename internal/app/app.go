// Package app wires the backend client to the tabs, poller, dashboard and
// assistant the front ends drive.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/billie-coop/mark/internal/api"
	"github.com/billie-coop/mark/internal/chat"
	"github.com/billie-coop/mark/internal/config"
	"github.com/billie-coop/mark/internal/dashboard"
	"github.com/billie-coop/mark/internal/events"
	"github.com/billie-coop/mark/internal/poller"
	"github.com/billie-coop/mark/internal/session"
	"github.com/billie-coop/mark/internal/state"
	"github.com/billie-coop/mark/internal/tabs"
	"github.com/billie-coop/mark/internal/watcher"
)

var (
	// ErrAnalysisRunning is returned when a second analysis is started.
	ErrAnalysisRunning = errors.New("an analysis is already running")
	// ErrNoAnalysis is returned when there is no analysis to act on.
	ErrNoAnalysis = errors.New("no analysis is running")
	// ErrNoOutputPath is returned before any output folder is known.
	ErrNoOutputPath = errors.New("no output path specified")
)

// App holds all the core services
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	Events  *events.Broker
	Client  *api.Client
	Poller  *poller.Poller
	Tabs    *tabs.Manager
	Session *session.Store
	Chat    *chat.Assistant
	// Recent is nil unless a state file is configured.
	Recent *state.Store[state.Recent]

	mu         sync.Mutex
	running    *Analysis
	dashboard  *dashboard.Dashboard
	watcher    *watcher.Watcher
	watchDir   string
	watchDelay time.Duration
}

// New creates an app from cfg. Request metrics are registered on reg when it
// is not nil.
func New(cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) *App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	opts := []api.Option{
		api.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		api.WithLogger(logger.With("component", "api")),
	}
	if reg != nil {
		opts = append(opts, api.WithMetrics(api.NewMetrics(reg)))
	}
	client := api.NewClient(cfg.BaseURL, opts...)

	p := poller.New(client, logger.With("component", "poller"))
	p.Interval = cfg.PollInterval
	p.MaxPolls = cfg.MaxPolls

	broker := events.NewBroker()

	var recent *state.Store[state.Recent]
	if cfg.StateFile != "" {
		recent = state.NewStore(cfg.StateFile, state.Recent{})
	}

	return &App{
		Config:  cfg,
		Logger:  logger,
		Events:  broker,
		Client:  client,
		Poller:  p,
		Tabs:    tabs.NewManager(broker),
		Session: session.NewStore(),
		Chat:    chat.New(client, logger.With("component", "chat")),
		Recent:  recent,

		watchDelay: watcher.DefaultDelay,
	}
}

// SelectTab activates a tab. The assistant picks up the last analyzed
// project when its tab is opened.
func (a *App) SelectTab(name string) error {
	if err := a.Tabs.Select(name); err != nil {
		return err
	}
	if name == tabs.Assistant {
		a.Chat.SetProjectPaths(a.Session.Paths())
	}
	return nil
}

// LastRequest returns the folders to offer for the next analysis: those of
// this run, else the ones remembered from an earlier run.
func (a *App) LastRequest() StartRequest {
	if in, out := a.Session.Paths(); in != "" || out != "" {
		return StartRequest{InputPath: in, OutputPath: out}
	}
	if a.Recent == nil {
		return StartRequest{}
	}
	r := a.Recent.Get()
	return StartRequest{InputPath: r.InputPath, OutputPath: r.OutputPath, GithubCSV: r.GithubCSV}
}

func (a *App) remember(req StartRequest) {
	if a.Recent == nil {
		return
	}
	err := a.Recent.Set(state.Recent{
		InputPath:  req.InputPath,
		OutputPath: req.OutputPath,
		GithubCSV:  req.GithubCSV,
		StartedAt:  time.Now(),
	})
	if err != nil {
		a.Logger.Warn("failed to save recent folders", "path", a.Recent.Path(), "error", err)
	}
}

// Dashboard returns the current dashboard, or nil before OpenDashboard.
func (a *App) Dashboard() *dashboard.Dashboard {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dashboard
}

// OpenDashboard loads analytics for the last output path and shows them in
// the Dashboard tab. The dashboard is rebuilt when the output path changed.
func (a *App) OpenDashboard(ctx context.Context) *dashboard.Snapshot {
	_, out := a.Session.Paths()

	a.mu.Lock()
	d := a.dashboard
	if d == nil || d.OutputPath() != out {
		d = dashboard.New(a.Client, out, a.Logger.With("component", "dashboard"))
		a.dashboard = d
	}
	a.mu.Unlock()

	snap := d.Load(ctx)
	_ = a.Tabs.SetContent(tabs.Dashboard, snap)
	_ = a.SelectTab(tabs.Dashboard)
	a.Events.Publish(events.Event{Type: events.DashboardLoadedEvent, Payload: snap})
	return snap
}

// OpenResults lists the result files of the last analysis in the Output tab
// and selects it.
func (a *App) OpenResults(ctx context.Context) (*api.ResultList, error) {
	list, err := a.ListResults(ctx)
	if err != nil {
		return nil, err
	}
	_ = a.SelectTab(tabs.Output)
	return list, nil
}

// ListResults refreshes the Output tab content without selecting it.
func (a *App) ListResults(ctx context.Context) (*api.ResultList, error) {
	_, out := a.Session.Paths()
	if out == "" {
		return nil, ErrNoOutputPath
	}
	list, err := a.Client.ListResults(ctx, out)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	_ = a.Tabs.SetContent(tabs.Output, list)
	return list, nil
}

// WatchResults follows dir on the local disk and publishes
// ResultsChangedEvent when its CSVs change. A previous watch of another folder
// is stopped; watching the same folder again does nothing. Folders that only
// exist on a remote backend cannot be watched and return an error.
func (a *App) WatchResults(ctx context.Context, dir string) error {
	if dir == "" {
		return ErrNoOutputPath
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.watcher != nil && a.watchDir == dir {
		return nil
	}
	if a.watcher != nil {
		a.watcher.Stop()
		a.watcher, a.watchDir = nil, ""
	}

	w := watcher.New(a.watchDelay, func(paths []string) {
		a.Logger.Debug("result files changed", "dir", dir, "count", len(paths))
		a.Events.Publish(events.Event{
			Type:    events.ResultsChangedEvent,
			Payload: events.ResultsChangedPayload{Dir: dir, Paths: paths},
		})
	})
	if err := w.Start(ctx, dir); err != nil {
		return err
	}
	a.watcher, a.watchDir = w, dir
	a.Logger.Debug("watching results", "dir", dir)
	return nil
}

// OpenResultFile shows the first page of a result CSV in a tab of its own.
func (a *App) OpenResultFile(ctx context.Context, file api.ResultFile) (*api.CSVView, error) {
	view, err := a.Client.ViewResult(ctx, file.Path, api.ViewOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", file.Filename, err)
	}
	if err := a.Tabs.Create(file.Filename, view); err != nil {
		return nil, err
	}
	_ = a.Tabs.SetContent(file.Filename, view)
	return view, nil
}

// Close stops background polling and watching and releases subscribers.
func (a *App) Close() {
	a.mu.Lock()
	run, w := a.running, a.watcher
	a.watcher, a.watchDir = nil, ""
	a.mu.Unlock()
	if run != nil && run.handle != nil {
		run.handle.Cancel()
		run.handle.Wait()
	}
	if w != nil {
		w.Stop()
	}
	a.Events.Clear()
}

func (a *App) status(msg, typ string) {
	a.Events.Publish(events.Event{
		Type:    events.StatusMessageEvent,
		Payload: events.StatusMessagePayload{Message: msg, Type: typ},
	})
}
