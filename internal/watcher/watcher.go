// Package watcher follows a local output folder and reports result CSVs that
// were written, replaced or removed. Bursts of changes are debounced into a
// single callback once the folder has been quiet for the configured delay.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDelay is the quiet period used when none is given.
const DefaultDelay = time.Second

// ErrStarted is returned when Start is called twice.
var ErrStarted = errors.New("watcher already started")

// Watcher collects changed result files and hands them to onChange after
// things settle.
type Watcher struct {
	delay    time.Duration
	onChange func([]string)

	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}
	stopped bool

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a watcher that calls onChange with the sorted paths changed
// during each burst.
func New(delay time.Duration, onChange func([]string)) *Watcher {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Watcher{
		delay:    delay,
		onChange: onChange,
		pending:  make(map[string]struct{}),
	}
}

// IsResultFile reports whether path names a result CSV. Hidden files and
// editor or partial-write leftovers are ignored.
func IsResultFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".csv")
}

// FileChanged records a change to path and restarts the quiet period.
func (w *Watcher) FileChanged(path string) {
	if !IsResultFile(path) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.pending[path] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for p := range w.pending {
		paths = append(paths, p)
	}
	w.pending = make(map[string]struct{})
	w.timer = nil
	w.mu.Unlock()

	if len(paths) > 0 && w.onChange != nil {
		sort.Strings(paths)
		w.onChange(paths)
	}
}

// Start begins following dir in the background until ctx is done or Stop is
// called. It fails when dir cannot be watched, such as a folder that only
// exists on a remote backend.
func (w *Watcher) Start(ctx context.Context, dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done != nil {
		return ErrStarted
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	go w.loop(ctx, fsw)
	return nil
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher) {
	defer close(w.done)
	defer func() { _ = fsw.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				w.FileChanged(ev.Name)
			}
		case _, ok := <-fsw.Errors:
			// Overflow and similar errors lose events but the watch stays usable.
			if !ok {
				return
			}
		}
	}
}

// Stop ends the watch and drops changes not yet reported. It is safe to call
// more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	cancel, done := w.cancel, w.done
	w.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}
