// Package testutil holds helpers shared by package tests.
package testutil

import (
	"bytes"
	"log/slog"
	"os"
	"testing"

	"github.com/billie-coop/mark/internal/logging"
)

// LevelEnv overrides the level of test loggers, e.g. MARK_TEST_LOG_LEVEL=warn.
const LevelEnv = "MARK_TEST_LOG_LEVEL"

// NewTestLogger returns the logger mark builds in production, routed into
// t.Log. Output shows for failing tests or with -v. The level is debug
// unless LevelEnv is set.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	level := os.Getenv(LevelEnv)
	if level == "" {
		level = "debug"
	}
	return logging.New(tbWriter{t}, level)
}

// tbWriter feeds each handler record to t.Log without its trailing newline.
type tbWriter struct {
	tb testing.TB
}

func (w tbWriter) Write(p []byte) (int, error) {
	w.tb.Helper()
	w.tb.Log(string(bytes.TrimRight(p, "\n")))
	return len(p), nil
}
