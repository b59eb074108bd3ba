// Package mockbackend is an in-memory stand-in for the MARK analysis backend.
// It serves every REST endpoint the client uses, with jobs that advance one
// stage per status poll, so the front end can run without the real service.
//
// Paths choose behavior: an input path containing "fail" produces a failing
// job, a path containing "missing" fails validation, and an output path
// containing "empty" has no analysis results.
package mockbackend

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/billie-coop/mark/internal/api"
)

var errJobNotFound = errors.New("Job not found")

// Options configure a Server.
type Options struct {
	// Steps is the number of status polls a job needs to complete.
	Steps int

	// Records replaces DefaultRecords.
	Records []Record

	// LLMUnavailable makes the LLM status report the service as down.
	LLMUnavailable bool
	Logger         *slog.Logger
}

// Server holds the backend state.
type Server struct {
	jobs    *jobStore
	data    dataset
	llmDown bool
	logger  *slog.Logger

	mu       sync.Mutex
	sessions map[string][]map[string]string
	uploads  map[string]int64
}

// New creates a Server.
func New(opts Options) *Server {
	if opts.Steps <= 0 {
		opts.Steps = 3
	}
	if opts.Records == nil {
		opts.Records = DefaultRecords
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Server{
		jobs:     newJobStore(opts.Steps),
		data:     dataset(opts.Records),
		llmDown:  opts.LLMUnavailable,
		logger:   opts.Logger,
		sessions: make(map[string][]map[string]string),
		uploads:  make(map[string]int64),
	}
}

// Handler returns the router serving the backend API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer, s.logRequests)

	r.Route("/api/analysis", func(r chi.Router) {
		r.Post("/start", s.startAnalysis)
		r.Get("/status/{id}", s.analysisStatus)
		r.Get("/cancel/{id}", s.cancelAnalysis)
		r.Get("/jobs", s.listJobs)
		r.Get("/jobs/{id}", s.jobLogs)
	})

	r.Route("/api/analytics", func(r chi.Router) {
		r.Get("/health", s.analyticsHealth)
		r.Group(func(r chi.Router) {
			r.Use(s.requireResults)
			r.Get("/summary", s.summary)
			r.Get("/consumer-producer-distribution", s.distribution)
			r.Get("/keywords", s.keywords)
			r.Get("/libraries", s.libraries)
			r.Get("/filter", s.filter)
		})
	})

	r.Route("/api/file", func(r chi.Router) {
		r.Post("/validate/input", s.validateDir("input"))
		r.Post("/validate/output", s.validateDir("output"))
		r.Post("/validate/csv", s.validateCSV)
		r.Post("/upload", s.upload)
		r.Post("/download", s.download)
		r.Post("/list", s.listDirectory)
	})

	r.Route("/api/results", func(r chi.Router) {
		r.Get("/view", s.viewResult)
		r.Post("/search", s.searchResult)
		r.Group(func(r chi.Router) {
			r.Use(s.requireResults)
			r.Get("/list", s.listResults)
			r.Get("/stats", s.resultStats)
		})
	})

	r.Route("/api/llm", func(r chi.Router) {
		r.Get("/status", s.llmStatus)
		r.Post("/ask", s.ask)
		r.Post("/explain", s.explain)
		r.Post("/summary", s.projectSummary)
		r.Delete("/session/{id}", s.deleteSession)
	})

	return r
}

// Job returns the current state of a job without advancing it.
func (s *Server) Job(id string) (api.Job, bool) {
	return s.jobs.get(id)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", r.Header.Get("X-Request-ID"),
			"duration", time.Since(start),
		)
	})
}

// requireResults rejects analytics and result requests for output paths
// without results, the way the backend does when no CSVs are found.
func (s *Server) requireResults(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		out := r.URL.Query().Get("output_path")
		switch {
		case out == "":
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "output_path parameter is required"})
		case strings.Contains(out, "empty"):
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "No consumer or producer CSV files found in " + out})
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFailure(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "message": msg})
}

// readJSON decodes a request body, yielding an empty map on bad input.
func readJSON(r *http.Request) map[string]any {
	body := map[string]any{}
	_ = json.NewDecoder(r.Body).Decode(&body)
	return body
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func newSessionID() string {
	return uuid.NewString()
}

// Uploaded returns the size of an uploaded file by name.
func (s *Server) Uploaded(name string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.uploads[name]
	return n, ok
}
