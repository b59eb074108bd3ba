package mockbackend

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/billie-coop/mark/internal/api"
)

const (
	consumerFile = "consumer_results.csv"
	producerFile = "producer_results.csv"
)

// Analysis

func (s *Server) startAnalysis(w http.ResponseWriter, r *http.Request) {
	body := readJSON(r)
	in, out := str(body, "input_path"), str(body, "output_path")
	if in == "" || out == "" {
		writeFailure(w, http.StatusBadRequest, "Input and output paths are required")
		return
	}
	j := s.jobs.start(in, out, str(body, "github_csv"))
	s.logger.Info("analysis started", "job_id", j.ID, "input", in, "output", out)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Analysis started",
		"job_id":  j.ID,
		"job":     j,
	})
}

func (s *Server) analysisStatus(w http.ResponseWriter, r *http.Request) {
	j, ok := s.jobs.poll(chi.URLParam(r, "id"))
	if !ok {
		writeFailure(w, http.StatusNotFound, errJobNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "job": j})
}

func (s *Server) cancelAnalysis(w http.ResponseWriter, r *http.Request) {
	j, err := s.jobs.cancel(chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, errJobNotFound):
		writeFailure(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeFailure(w, http.StatusBadRequest, err.Error())
	default:
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": j.Message, "job": j})
	}
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "jobs": s.jobs.list()})
}

func (s *Server) jobLogs(w http.ResponseWriter, r *http.Request) {
	j, ok := s.jobs.get(chi.URLParam(r, "id"))
	if !ok {
		writeFailure(w, http.StatusNotFound, errJobNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": j.Message, "logs": j.OutputLog})
}

// Analytics

func (s *Server) analyticsHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "service": "analytics"})
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.data.summary(r.URL.Query().Get("output_path")))
}

func (s *Server) distribution(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.data.distribution())
}

func (s *Server) keywords(w http.ResponseWriter, r *http.Request) {
	labels, counts, unique := ranked(s.data.keywords(), queryInt(r, "limit", api.DefaultRankLimit))
	writeJSON(w, http.StatusOK, map[string]any{
		"labels":                labels,
		"counts":                counts,
		"total_unique_keywords": unique,
	})
}

func (s *Server) libraries(w http.ResponseWriter, r *http.Request) {
	labels, counts, unique := ranked(s.data.libraries(), queryInt(r, "limit", api.DefaultRankLimit))
	writeJSON(w, http.StatusOK, map[string]any{
		"labels":                 labels,
		"counts":                 counts,
		"total_unique_libraries": unique,
	})
}

func (s *Server) filter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	applied := map[string]any{}
	for _, k := range []string{"type", "keyword", "library"} {
		if v := q.Get(k); v != "" {
			applied[k] = v
		}
	}
	rows := s.data.filter(q.Get("type"), q.Get("keyword"), q.Get("library"), queryInt(r, "limit", api.DefaultFilterLimit))
	writeJSON(w, http.StatusOK, map[string]any{
		"count":           len(rows),
		"results":         rows,
		"filters_applied": applied,
	})
}

// Files

func (s *Server) validateDir(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := str(readJSON(r), "path")
		switch {
		case p == "":
			writeFailure(w, http.StatusBadRequest, "Path is required")
		case strings.Contains(p, "missing"):
			writeFailure(w, http.StatusBadRequest, fmt.Sprintf("%s directory does not exist: %s", titleCase(kind), p))
		default:
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": fmt.Sprintf("Valid %s directory", kind)})
		}
	}
}

func (s *Server) validateCSV(w http.ResponseWriter, r *http.Request) {
	p := str(readJSON(r), "filepath")
	switch {
	case p == "":
		writeFailure(w, http.StatusBadRequest, "File path is required")
	case !strings.HasSuffix(strings.ToLower(p), ".csv"):
		writeFailure(w, http.StatusBadRequest, "File must be a CSV")
	case strings.Contains(p, "missing"):
		writeFailure(w, http.StatusBadRequest, "CSV file does not exist: "+p)
	default:
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Valid CSV file", "valid": true})
	}
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer f.Close()
	n, err := io.Copy(io.Discard, f)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.mu.Lock()
	s.uploads[hdr.Filename] = n
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "File uploaded successfully",
		"filename": hdr.Filename,
		"path":     path.Join("uploads", hdr.Filename),
		"size":     n,
	})
}

func (s *Server) download(w http.ResponseWriter, r *http.Request) {
	p := str(readJSON(r), "path")
	rows, ok := s.fileRows(p)
	if !ok {
		writeFailure(w, http.StatusNotFound, "File not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"filename": path.Base(p),
		"size":     rows.csvSize(),
	})
}

func (s *Server) listDirectory(w http.ResponseWriter, r *http.Request) {
	p := str(readJSON(r), "path")
	if p == "" || strings.Contains(p, "missing") {
		writeFailure(w, http.StatusNotFound, "Directory not found")
		return
	}
	items := []map[string]any{}
	if !strings.Contains(p, "empty") {
		for _, name := range []string{consumerFile, producerFile} {
			items = append(items, map[string]any{"name": name, "path": path.Join(p, name), "type": "file"})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "path": p, "items": items})
}

// Results

func (s *Server) resultFiles(out string) (consumers, producers []api.ResultFile) {
	file := func(name, typ string, d dataset) api.ResultFile {
		return api.ResultFile{
			Filename: name,
			Path:     path.Join(out, name),
			Size:     d.csvSize(),
			Modified: 1700000000,
			Type:     typ,
		}
	}
	consumers = []api.ResultFile{file(consumerFile, "consumer", s.data.byCategory("consumer"))}
	producers = []api.ResultFile{file(producerFile, "producer", s.data.byCategory("producer"))}
	return consumers, producers
}

func (s *Server) listResults(w http.ResponseWriter, r *http.Request) {
	consumers, producers := s.resultFiles(r.URL.Query().Get("output_path"))
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"consumers": consumers,
		"producers": producers,
		"all_files": append(append([]api.ResultFile{}, consumers...), producers...),
	})
}

func (s *Server) resultStats(w http.ResponseWriter, r *http.Request) {
	consumers, producers := s.resultFiles(r.URL.Query().Get("output_path"))
	all := append(append([]api.ResultFile{}, consumers...), producers...)
	var total int64
	for _, f := range all {
		total += f.Size
	}
	latest := all[len(all)-1]
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"stats": api.ResultStats{
			TotalFiles:    len(all),
			ConsumerFiles: len(consumers),
			ProducerFiles: len(producers),
			TotalSize:     total,
			TotalSizeMB:   float64(total) / (1024 * 1024),
			LatestFile:    &latest,
		},
	})
}

// fileRows maps a result CSV path to its records.
func (s *Server) fileRows(p string) (dataset, bool) {
	switch path.Base(p) {
	case consumerFile:
		return s.data.byCategory("consumer"), true
	case producerFile:
		return s.data.byCategory("producer"), true
	}
	return nil, false
}

func (s *Server) viewResult(w http.ResponseWriter, r *http.Request) {
	d, ok := s.fileRows(r.URL.Query().Get("filepath"))
	if !ok {
		writeFailure(w, http.StatusNotFound, "File not found")
		return
	}
	rows := d.rows()
	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)
	if offset > len(rows) {
		offset = len(rows)
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	page := rows[offset:end]
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": api.CSVView{
			Headers:     csvHeaders,
			Rows:        page,
			RowCount:    len(page),
			ColumnCount: len(csvHeaders),
			TotalRows:   len(rows),
			HasMore:     end < len(rows),
			Offset:      offset,
			Limit:       limit,
		},
	})
}

func (s *Server) searchResult(w http.ResponseWriter, r *http.Request) {
	body := readJSON(r)
	query, column := str(body, "query"), str(body, "column")
	if query == "" {
		writeFailure(w, http.StatusBadRequest, "Search query is required")
		return
	}
	d, ok := s.fileRows(str(body, "filepath"))
	if !ok {
		writeFailure(w, http.StatusNotFound, "File not found")
		return
	}
	col := -1
	if column != "" {
		for i, h := range csvHeaders {
			if h == column {
				col = i
			}
		}
		if col < 0 {
			writeFailure(w, http.StatusBadRequest, "Column not found: "+column)
			return
		}
	}

	needle := strings.ToLower(query)
	matches := []api.SearchMatch{}
	for i, row := range d.rows() {
		cells := row
		if col >= 0 {
			cells = row[col : col+1]
		}
		for _, c := range cells {
			if strings.Contains(strings.ToLower(c), needle) {
				matches = append(matches, api.SearchMatch{RowIndex: i, RowData: row})
				break
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"results": api.SearchResult{
			Headers:    csvHeaders,
			Matches:    matches,
			MatchCount: len(matches),
			Query:      query,
			Column:     column,
		},
	})
}

// LLM

func (s *Server) llmStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	active := len(s.sessions)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"status": api.LLMStatus{
			Available:      !s.llmDown,
			LLMType:        "mock",
			ModelInfo:      map[string]any{"name": "mock-model"},
			ActiveSessions: active,
		},
	})
}

func (s *Server) projectPaths(w http.ResponseWriter, body map[string]any) (string, string, bool) {
	if s.llmDown {
		writeFailure(w, http.StatusServiceUnavailable, "LLM service is not available")
		return "", "", false
	}
	in, out := str(body, "input_path"), str(body, "output_path")
	if in == "" || out == "" {
		writeFailure(w, http.StatusBadRequest, "input_path and output_path are required")
		return "", "", false
	}
	return in, out, true
}

func (s *Server) ask(w http.ResponseWriter, r *http.Request) {
	body := readJSON(r)
	_, out, ok := s.projectPaths(w, body)
	if !ok {
		return
	}
	question := str(body, "question")
	if question == "" {
		writeFailure(w, http.StatusBadRequest, "Question is required")
		return
	}
	id := str(body, "session_id")
	if id == "" {
		id = newSessionID()
	}
	sum := s.data.summary(out)
	answer := fmt.Sprintf("Based on %d classified usages (%d consumers, %d producers): %s", sum.TotalModels, sum.ConsumerCount, sum.ProducerCount, question)

	s.mu.Lock()
	history := append(s.sessions[id],
		map[string]string{"role": "user", "content": question},
		map[string]string{"role": "assistant", "content": answer},
	)
	s.sessions[id] = history
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"answer":     answer,
		"session_id": id,
		"history":    history,
	})
}

func (s *Server) explain(w http.ResponseWriter, r *http.Request) {
	_, out, ok := s.projectPaths(w, readJSON(r))
	if !ok {
		return
	}
	sum := s.data.summary(out)
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"explanation": fmt.Sprintf("## Analysis\n\nFound **%d** ML consumers and **%d** ML producers.", sum.ConsumerCount, sum.ProducerCount),
	})
}

func (s *Server) projectSummary(w http.ResponseWriter, r *http.Request) {
	in, out, ok := s.projectPaths(w, readJSON(r))
	if !ok {
		return
	}
	sum := s.data.summary(out)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"summary": fmt.Sprintf("## Summary of %s\n\n%d projects use %d ML libraries.", in, sum.TotalProjects, sum.TotalLibraries),
	})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		writeFailure(w, http.StatusNotFound, "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Session cleared"})
}

func queryInt(r *http.Request, key string, def int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 {
		return def
	}
	return n
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
