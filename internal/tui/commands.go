package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/billie-coop/mark/internal/api"
	"github.com/billie-coop/mark/internal/app"
	"github.com/billie-coop/mark/internal/dashboard"
)

// The commands below run app calls off the update loop and report back
// with a message.

func (m *Model) startAnalysis(req app.StartRequest) tea.Cmd {
	return func() tea.Msg {
		run, err := m.app.StartAnalysis(m.ctx, req)
		return analysisStartedMsg{run: run, err: err}
	}
}

func (m *Model) cancelAnalysis() tea.Cmd {
	return func() tea.Msg {
		return analysisCancelMsg{err: m.app.CancelAnalysis(m.ctx)}
	}
}

func (m *Model) scheduleDismiss(jobID string) tea.Cmd {
	d := m.app.Config.AutoDismiss
	if d <= 0 {
		return func() tea.Msg { return autoDismissMsg{jobID: jobID} }
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return autoDismissMsg{jobID: jobID} })
}

func (m *Model) openResults() tea.Cmd {
	return func() tea.Msg {
		list, err := m.app.OpenResults(m.ctx)
		return resultsLoadedMsg{list: list, err: err}
	}
}

// refreshResults reloads the Output tab in place.
func (m *Model) refreshResults() tea.Cmd {
	return func() tea.Msg {
		list, err := m.app.ListResults(m.ctx)
		return resultsLoadedMsg{list: list, err: err}
	}
}

// watchResults follows the output folder when it is on this machine.
func (m *Model) watchResults() tea.Cmd {
	_, out := m.app.Session.Paths()
	return func() tea.Msg {
		if err := m.app.WatchResults(m.ctx, out); err != nil {
			m.app.Logger.Debug("not watching results", "dir", out, "error", err)
		}
		return nil
	}
}

func (m *Model) openResultFile(file api.ResultFile) tea.Cmd {
	return func() tea.Msg {
		view, err := m.app.OpenResultFile(m.ctx, file)
		return resultFileMsg{file: file, view: view, err: err}
	}
}

func (m *Model) openDashboard() tea.Cmd {
	return func() tea.Msg {
		return dashboardLoadedMsg{snap: m.app.OpenDashboard(m.ctx)}
	}
}

func (m *Model) drillDown(s dashboard.Series, index int) tea.Cmd {
	d := m.app.Dashboard()
	if d == nil {
		return nil
	}
	return func() tea.Msg {
		drill, err := d.DrillDown(m.ctx, s, index)
		return drillMsg{drill: drill, err: err}
	}
}

func (m *Model) ask(question string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.app.Chat.Ask(m.ctx, question)
		return chatReplyMsg{err: err}
	}
}

func (m *Model) explain() tea.Cmd {
	return func() tea.Msg {
		_, err := m.app.Chat.Explain(m.ctx)
		return chatReplyMsg{err: err}
	}
}

func (m *Model) summarize() tea.Cmd {
	return func() tea.Msg {
		_, err := m.app.Chat.Summarize(m.ctx)
		return chatReplyMsg{err: err}
	}
}

func (m *Model) clearChat() tea.Cmd {
	return func() tea.Msg {
		m.app.Chat.Clear(m.ctx)
		return chatClearedMsg{}
	}
}

func (m *Model) checkLLM() tea.Cmd {
	return func() tea.Msg {
		ok, err := m.app.Chat.CheckStatus(m.ctx)
		return llmStatusMsg{available: ok, err: err}
	}
}
