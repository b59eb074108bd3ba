package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(delay time.Duration) (*Watcher, chan []string) {
	ch := make(chan []string, 10)
	return New(delay, func(paths []string) { ch <- paths }), ch
}

func receive(t *testing.T, ch chan []string) []string {
	t.Helper()
	select {
	case paths := <-ch:
		return paths
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for changes")
		return nil
	}
}

func TestIsResultFile(t *testing.T) {
	assert.True(t, IsResultFile("/out/consumers.csv"))
	assert.True(t, IsResultFile("/out/PRODUCERS.CSV"))
	assert.False(t, IsResultFile("/out/.consumers.csv"))
	assert.False(t, IsResultFile("/out/consumers.csv~"))
	assert.False(t, IsResultFile("/out/analysis.log"))
}

func TestFileChanged_Debounces(t *testing.T) {
	w, ch := collect(20 * time.Millisecond)
	defer w.Stop()

	w.FileChanged("/out/b.csv")
	w.FileChanged("/out/a.csv")
	w.FileChanged("/out/b.csv")
	w.FileChanged("/out/notes.txt")

	assert.Equal(t, []string{"/out/a.csv", "/out/b.csv"}, receive(t, ch))

	select {
	case paths := <-ch:
		t.Fatalf("unexpected second batch %v", paths)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFileChanged_IgnoredAfterStop(t *testing.T) {
	w, ch := collect(10 * time.Millisecond)
	w.FileChanged("/out/a.csv")
	w.Stop()
	w.Stop()
	w.FileChanged("/out/b.csv")

	select {
	case paths := <-ch:
		t.Fatalf("unexpected batch %v", paths)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStart_ReportsWrittenCSV(t *testing.T) {
	dir := t.TempDir()
	w, ch := collect(20 * time.Millisecond)
	require.NoError(t, w.Start(context.Background(), dir))
	defer w.Stop()

	path := filepath.Join(dir, "consumers.csv")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("ProjectName\nvision-app\n"), 0o644))

	assert.Equal(t, []string{path}, receive(t, ch))
}

func TestStart_Twice(t *testing.T) {
	w, _ := collect(0)
	require.NoError(t, w.Start(context.Background(), t.TempDir()))
	defer w.Stop()
	assert.ErrorIs(t, w.Start(context.Background(), t.TempDir()), ErrStarted)
}

func TestStart_MissingDir(t *testing.T) {
	w, _ := collect(0)
	err := w.Start(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	w.Stop()
}

func TestStart_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	w, _ := collect(0)
	require.NoError(t, w.Start(ctx, t.TempDir()))
	cancel()

	select {
	case <-w.done:
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not end with its context")
	}
	w.Stop()
}
