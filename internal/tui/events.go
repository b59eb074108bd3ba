package tui

import (
	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/billie-coop/mark/internal/events"
	"github.com/billie-coop/mark/internal/tabs"
	"github.com/billie-coop/mark/internal/tui/components/status"
)

// subscribedEvents are the broker events the TUI renders.
var subscribedEvents = []events.EventType{
	events.AnalysisStartedEvent,
	events.AnalysisProgressEvent,
	events.AnalysisCompletedEvent,
	events.AnalysisErrorEvent,
	events.AnalysisCancelledEvent,
	events.TabChangedEvent,
	events.TabRemovedEvent,
	events.ResultsChangedEvent,
	events.StatusMessageEvent,
}

// listenForEvents waits for the next broker event. It returns nil once the
// subscription is closed.
func (m *Model) listenForEvents() tea.Cmd {
	sub := m.eventSub
	return func() tea.Msg {
		event, ok := <-sub
		if !ok {
			return nil
		}
		return event
	}
}

// handleEvent processes events from the event broker
func (m *Model) handleEvent(event events.Event) tea.Cmd {
	switch event.Type {
	case events.AnalysisStartedEvent:
		if p, ok := event.Payload.(events.AnalysisPayload); ok {
			m.jobID = p.JobID
			m.popup.SetText(orDefault(p.Message, "Analysis started. Waiting for the backend..."))
		}

	case events.AnalysisProgressEvent:
		if p, ok := event.Payload.(events.AnalysisPayload); ok && p.JobID == m.jobID {
			if p.Message != "" {
				m.popup.SetText(p.Message)
			}
			if p.Job != nil {
				m.popup.SetProgress(p.Job.Progress)
			}
		}

	case events.AnalysisCompletedEvent:
		if p, ok := event.Payload.(events.AnalysisPayload); ok {
			m.input.SetDisabled(false)
			m.dashStale = true
			m.popup.SetText(orDefault(p.Message, "Analysis completed successfully!"))
			m.popup.SetProgress(100)
			return tea.Batch(
				m.statusBar.SetMessage("Analysis completed", status.Success),
				m.scheduleDismiss(p.JobID),
			)
		}

	case events.AnalysisErrorEvent:
		if p, ok := event.Payload.(events.AnalysisPayload); ok {
			return m.failAnalysis(p.Message)
		}

	case events.AnalysisCancelledEvent:
		m.input.SetDisabled(false)
		m.jobID = ""
		return m.popup.Hide()

	case events.TabChangedEvent:
		if p, ok := event.Payload.(events.TabPayload); ok {
			return m.onTabChanged(p.Name)
		}

	case events.TabRemovedEvent:
		if p, ok := event.Payload.(events.TabPayload); ok {
			delete(m.files, p.Name)
		}

	case events.ResultsChangedEvent:
		if p, ok := event.Payload.(events.ResultsChangedPayload); ok {
			m.app.Logger.Debug("reloading results", "dir", p.Dir, "changed", len(p.Paths))
			return m.refreshResults()
		}

	case events.StatusMessageEvent:
		if p, ok := event.Payload.(events.StatusMessagePayload); ok {
			return m.statusBar.SetMessage(p.Message, status.ParseType(p.Type))
		}
	}
	return nil
}

// failAnalysis stops the popup spinner and leaves the error on screen.
func (m *Model) failAnalysis(msg string) tea.Cmd {
	m.input.SetDisabled(false)
	m.jobID = ""

	var cmd tea.Cmd
	if !m.popup.IsOpen() {
		cmd = m.popup.Show("Analysis", "")
	}
	m.popup.HideSpinner()
	m.popup.SetTitle("Analysis failed")
	m.popup.SetText(orDefault(msg, "Unknown error"))
	m.popup.ShowAction("Dismiss")
	return cmd
}

func (m *Model) onTabChanged(name string) tea.Cmd {
	if name == tabs.Assistant {
		return m.assistant.Focus()
	}
	m.assistant.Blur()
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
