// Package dashboard loads the analytics aggregates of one output path and
// turns them into chart series. It has no terminal dependency; rendering
// lives in the TUI chart component.
package dashboard

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/billie-coop/mark/internal/api"
)

// TopN is the number of keywords and libraries charted.
const TopN = 10

// Alert messages shown above the charts.
const (
	AlertNoOutputPath = "No output path specified. Please run an analysis or specify an output path."
	AlertNoResults    = "No analysis results found in the specified output path or its subdirectories. Please run an analysis first."
	alertLoadFailed   = "Failed to load analytics data: "
)

// Source is the slice of the backend API the dashboard reads.
type Source interface {
	Summary(ctx context.Context, outputPath string) (*api.Summary, error)
	Distribution(ctx context.Context, outputPath string) (*api.Distribution, error)
	Keywords(ctx context.Context, outputPath string, limit int) (*api.RankedCounts, error)
	Libraries(ctx context.Context, outputPath string, limit int) (*api.RankedCounts, error)
	Filter(ctx context.Context, outputPath string, opts api.FilterOptions) (*api.FilterResult, error)
}

// Result is the outcome of one fetch.
type Result[T any] struct {
	Value *T
	Err   error
}

// OK reports whether the fetch produced a value.
func (r Result[T]) OK() bool {
	return r.Err == nil && r.Value != nil
}

// Snapshot is everything one Load produced.
type Snapshot struct {
	OutputPath   string
	Summary      Result[api.Summary]
	Distribution Result[api.Distribution]
	Keywords     Result[api.RankedCounts]
	Libraries    Result[api.RankedCounts]
}

// Err returns the first failed fetch in display order.
func (s *Snapshot) Err() error {
	for _, err := range []error{s.Summary.Err, s.Distribution.Err, s.Keywords.Err, s.Libraries.Err} {
		if err != nil {
			return err
		}
	}
	return nil
}

// Alert returns the banner to show, or "" when everything loaded.
func (s *Snapshot) Alert() string {
	if s.OutputPath == "" {
		return AlertNoOutputPath
	}
	err := s.Err()
	if err == nil {
		return ""
	}
	msg := err.Error()
	if strings.Contains(msg, "No consumer") || strings.Contains(msg, "CSV files") {
		return AlertNoResults
	}
	return alertLoadFailed + msg
}

// Charts builds the series for every fetch that succeeded.
func (s *Snapshot) Charts() []Series {
	var out []Series
	if s.Distribution.OK() {
		out = append(out, PieSeries(s.Distribution.Value), BarSeries(s.Distribution.Value))
	}
	if s.Keywords.OK() {
		out = append(out, KeywordSeries(s.Keywords.Value))
	}
	if s.Libraries.OK() {
		out = append(out, LibrarySeries(s.Libraries.Value))
	}
	return out
}

// Dashboard is the analytics view of one output path.
type Dashboard struct {
	source Source
	logger *slog.Logger

	mu         sync.RWMutex
	outputPath string
	snapshot   *Snapshot
}

// New creates a dashboard for outputPath. Nothing is fetched until Load.
func New(source Source, outputPath string, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Dashboard{source: source, outputPath: outputPath, logger: logger}
}

// OutputPath returns the folder the dashboard reads.
func (d *Dashboard) OutputPath() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.outputPath
}

// Snapshot returns the result of the last Load, or nil.
func (d *Dashboard) Snapshot() *Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshot
}

// Refresh switches to outputPath and reloads.
func (d *Dashboard) Refresh(ctx context.Context, outputPath string) *Snapshot {
	d.mu.Lock()
	d.outputPath = outputPath
	d.mu.Unlock()
	return d.Load(ctx)
}

// Load fetches the four aggregates in parallel. A failed fetch does not
// cancel the others; each outcome lands in its own slot of the snapshot.
func (d *Dashboard) Load(ctx context.Context) *Snapshot {
	out := d.OutputPath()
	snap := &Snapshot{OutputPath: out}
	if out == "" {
		d.store(snap)
		return snap
	}

	var g errgroup.Group
	g.Go(func() error {
		v, err := d.source.Summary(ctx, out)
		snap.Summary = Result[api.Summary]{Value: v, Err: err}
		return nil
	})
	g.Go(func() error {
		v, err := d.source.Distribution(ctx, out)
		if err == nil && v != nil {
			err = v.Validate()
		}
		snap.Distribution = Result[api.Distribution]{Value: v, Err: err}
		return nil
	})
	g.Go(func() error {
		v, err := d.source.Keywords(ctx, out, TopN)
		snap.Keywords = Result[api.RankedCounts]{Value: v, Err: err}
		return nil
	})
	g.Go(func() error {
		v, err := d.source.Libraries(ctx, out, TopN)
		snap.Libraries = Result[api.RankedCounts]{Value: v, Err: err}
		return nil
	})
	_ = g.Wait()

	if err := snap.Err(); err != nil {
		d.logger.Warn("analytics load failed", "output_path", out, "error", err)
	} else {
		d.logger.Debug("analytics loaded", "output_path", out)
	}
	d.store(snap)
	return snap
}

func (d *Dashboard) store(snap *Snapshot) {
	d.mu.Lock()
	d.snapshot = snap
	d.mu.Unlock()
}
