package mockbackend

import (
	"net/http/httptest"
	"testing"
)

// NewTestServer starts the backend on a local port for the duration of a test
// and returns it with its base URL.
func NewTestServer(t testing.TB, opts Options) (*Server, string) {
	t.Helper()
	s := New(opts)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts.URL
}
