package state

import "time"

// Recent holds the folders of the last analysis started from this machine.
type Recent struct {
	InputPath  string    `json:"input_path"`
	OutputPath string    `json:"output_path"`
	GithubCSV  string    `json:"github_csv,omitempty"`
	StartedAt  time.Time `json:"started_at"`
}

// Empty reports whether no analysis has been remembered.
func (r Recent) Empty() bool {
	return r.InputPath == "" && r.OutputPath == ""
}
