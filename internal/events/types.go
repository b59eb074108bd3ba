// Package events carries in-process notifications between the services and
// the terminal front end.
package events

import "github.com/billie-coop/mark/internal/api"

// EventType identifies the type of event
type EventType string

const (
	// Tab events
	TabChangedEvent EventType = "tab.changed"
	TabCreatedEvent EventType = "tab.created"
	TabRemovedEvent EventType = "tab.removed"

	// Analysis events
	AnalysisStartedEvent   EventType = "analysis.started"
	AnalysisProgressEvent  EventType = "analysis.progress"
	AnalysisCompletedEvent EventType = "analysis.completed"
	AnalysisErrorEvent     EventType = "analysis.error"
	AnalysisCancelledEvent EventType = "analysis.cancelled"

	// Dashboard events
	DashboardLoadedEvent EventType = "dashboard.loaded"

	// Results events
	ResultsChangedEvent EventType = "results.changed"

	// UI events
	StatusMessageEvent EventType = "ui.status"
)

// Event represents an event in the system
type Event struct {
	Type    EventType
	Payload any
}

// TabPayload names the tab an event refers to.
type TabPayload struct {
	Name string
}

// AnalysisPayload describes the job behind an analysis event.
type AnalysisPayload struct {
	JobID      string
	InputPath  string
	OutputPath string
	Message    string
	Job        *api.Job
	Err        error
}

// ResultsChangedPayload lists the result CSVs that changed in a watched folder.
type ResultsChangedPayload struct {
	Dir   string
	Paths []string
}

// StatusMessagePayload is a transient message for the status bar.
type StatusMessagePayload struct {
	Message string
	Type    string // "info", "warning", "error", "success"
}
