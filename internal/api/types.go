package api

import "fmt"

// JobStatus is the lifecycle state reported by the backend.
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusQueued    JobStatus = "queued"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// Terminal reports whether the job will not change status again.
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Job is a backend-tracked analysis task.
type Job struct {
	ID          string    `json:"job_id"`
	Status      JobStatus `json:"status"`
	Message     string    `json:"message"`
	Progress    int       `json:"progress"`
	InputPath   string    `json:"input_path"`
	OutputPath  string    `json:"output_path"`
	GithubCSV   string    `json:"github_csv"`
	StartedAt   string    `json:"started_at"`
	CompletedAt string    `json:"completed_at"`
	Error       string    `json:"error"`
	OutputLog   []string  `json:"output_log"`
}

// StartOptions carries the optional fields of a start request.
type StartOptions struct {
	GithubCSV string
	// RunCloner defaults to whether GithubCSV is set.
	RunCloner *bool
}

// StartResponse is returned by StartAnalysis.
type StartResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	JobID   string `json:"job_id"`
	Job     *Job   `json:"job"`
}

// JobLog holds the tail of a job's output.
type JobLog struct {
	Message string   `json:"message"`
	Logs    []string `json:"logs"`
}

// Summary is the analytics overview of one output path.
type Summary struct {
	TotalModels    int    `json:"total_models"`
	ConsumerCount  int    `json:"consumer_count"`
	ProducerCount  int    `json:"producer_count"`
	TotalProjects  int    `json:"total_projects"`
	TotalLibraries int    `json:"total_libraries"`
	LastAnalysisID string `json:"last_analysis_id"`
	OutputPath     string `json:"output_path"`
}

// Distribution is the consumer/producer split.
type Distribution struct {
	Labels      []string  `json:"labels"`
	Counts      []int     `json:"counts"`
	Percentages []float64 `json:"percentages"`
}

// Validate checks that the three slices line up.
func (d *Distribution) Validate() error {
	if len(d.Labels) != len(d.Counts) || len(d.Labels) != len(d.Percentages) {
		return &ShapeError{Labels: len(d.Labels), Counts: len(d.Counts), Percentages: len(d.Percentages)}
	}
	return nil
}

// ShapeError reports mismatched distribution slices.
type ShapeError struct {
	Labels, Counts, Percentages int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("distribution length mismatch: labels=%d counts=%d percentages=%d",
		e.Labels, e.Counts, e.Percentages)
}

// RankedCounts is a top-N list of keywords or libraries.
type RankedCounts struct {
	Labels      []string `json:"labels"`
	Counts      []int    `json:"counts"`
	TotalUnique int      `json:"-"`

	UniqueKeywords  int `json:"total_unique_keywords"`
	UniqueLibraries int `json:"total_unique_libraries"`
}

// FilterOptions selects rows in Filter. Empty fields are not sent.
type FilterOptions struct {
	Type    string
	Keyword string
	Library string
	Limit   int
}

// FilterResult is the list of classified rows matching a filter.
type FilterResult struct {
	Count          int              `json:"count"`
	Results        []map[string]any `json:"results"`
	FiltersApplied map[string]any   `json:"filters_applied"`
}

// Validation is a backend verdict on a path.
type Validation struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Valid   *bool  `json:"valid"`
}

// OK reports the verdict; an explicit valid field wins over success.
func (v *Validation) OK() bool {
	if v.Valid != nil {
		return *v.Valid
	}
	return v.Success
}

// ResultFile describes one CSV produced by an analysis.
type ResultFile struct {
	Filename string  `json:"filename"`
	Path     string  `json:"path"`
	Size     int64   `json:"size"`
	Modified float64 `json:"modified"`
	Type     string  `json:"type"`
}

// ResultList groups result files by classification.
type ResultList struct {
	Message   string       `json:"message"`
	Consumers []ResultFile `json:"consumers"`
	Producers []ResultFile `json:"producers"`
	AllFiles  []ResultFile `json:"all_files"`
}

// ViewOptions pages through a CSV. Nil fields are not sent.
type ViewOptions struct {
	Limit  *int
	Offset *int
}

// CSVView is one page of a result CSV.
type CSVView struct {
	Headers     []string   `json:"headers"`
	Rows        [][]string `json:"rows"`
	RowCount    int        `json:"row_count"`
	ColumnCount int        `json:"column_count"`
	TotalRows   int        `json:"total_rows"`
	HasMore     bool       `json:"has_more"`
	Offset      int        `json:"offset"`
	Limit       int        `json:"limit"`
}

// SearchMatch is one matching CSV row.
type SearchMatch struct {
	RowIndex int      `json:"row_index"`
	RowData  []string `json:"row_data"`
}

// SearchResult lists rows matching a query.
type SearchResult struct {
	Headers    []string      `json:"headers"`
	Matches    []SearchMatch `json:"matches"`
	MatchCount int           `json:"match_count"`
	Query      string        `json:"query"`
	Column     string        `json:"column"`
}

// ResultStats aggregates file counts for an output path.
type ResultStats struct {
	TotalFiles    int         `json:"total_files"`
	ConsumerFiles int         `json:"consumer_files"`
	ProducerFiles int         `json:"producer_files"`
	TotalSize     int64       `json:"total_size"`
	TotalSizeMB   float64     `json:"total_size_mb"`
	LatestFile    *ResultFile `json:"latest_file"`
}

// HistoryTurn is one message of chat history sent to the backend.
type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AskRequest is the body of an LLM question. A nil SessionID is sent as
// null until the backend assigns one.
type AskRequest struct {
	InputPath  string        `json:"input_path"`
	OutputPath string        `json:"output_path"`
	Question   string        `json:"question"`
	SessionID  *string       `json:"session_id"`
	History    []HistoryTurn `json:"history"`
}

// AskResponse is the assistant's reply.
type AskResponse struct {
	Answer    string        `json:"answer"`
	SessionID string        `json:"session_id"`
	History   []HistoryTurn `json:"history"`
	Timestamp string        `json:"timestamp"`
}

// LLMStatus describes the LLM service.
type LLMStatus struct {
	Available      bool           `json:"available"`
	LLMType        string         `json:"llm_type"`
	ModelInfo      map[string]any `json:"model_info"`
	ActiveSessions int            `json:"active_sessions"`
	CacheSize      int            `json:"cache_size"`
}
