// Package tui is the interactive terminal front end: a tab bar over the
// Input, Output, Dashboard and LLM Assistant panes with the analysis popup
// on top.
package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/mark/internal/app"
	"github.com/billie-coop/mark/internal/events"
	"github.com/billie-coop/mark/internal/tabs"
	"github.com/billie-coop/mark/internal/tui/components/chart"
	"github.com/billie-coop/mark/internal/tui/components/core"
	"github.com/billie-coop/mark/internal/tui/components/dialog"
	"github.com/billie-coop/mark/internal/tui/components/status"
	"github.com/billie-coop/mark/internal/tui/styles"
)

const llmUnavailable = "LLM service is not available. Answers may fail until the backend is configured."

// Model is the root bubbletea model.
type Model struct {
	ctx  context.Context
	app  *app.App
	keys KeyMap

	width  int
	height int

	// Panes
	input     *inputPane
	output    *outputPane
	dash      *dashboardPane
	assistant *assistantPane
	files     map[string]*csvPane

	// Overlays
	statusBar *status.Component
	popup     *dialog.Popup
	quit      *dialog.QuitDialog
	drill     *dialog.DrillDialog
	help      *dialog.HelpDialog
	palette   *dialog.CommandPaletteDialog
	themes    *dialog.ThemeSwitcherDialog
	overlays  *dialog.Manager

	eventSub <-chan events.Event

	// jobID is the job the popup follows.
	jobID     string
	dashStale bool

	// starting is set while validation and the start request run. A cancel
	// asked for meanwhile is queued until the job exists.
	starting     bool
	cancelQueued bool
}

// New creates the root model. ctx bounds every backend call it makes.
func New(ctx context.Context, a *app.App) *Model {
	themes := styles.NewManager(a.Config.Theme)
	styles.SetDefaultManager(themes)
	keys := DefaultKeyMap()

	m := &Model{
		ctx:       ctx,
		app:       a,
		keys:      keys,
		input:     newInputPane(a.LastRequest()),
		output:    newOutputPane(),
		dash:      newDashboardPane(),
		assistant: newAssistantPane(),
		files:     make(map[string]*csvPane),
		statusBar: status.New(),
		popup:     dialog.NewPopup(),
		quit:      dialog.NewQuitDialog(),
		drill:     dialog.NewDrillDialog(),
		help:      dialog.NewHelpDialog(keys.HelpSections()),
		palette:   dialog.NewCommandPalette(keys.PaletteCommands()),
		themes:    dialog.NewThemeSwitcher(themes),
		eventSub:  a.Events.Subscribe(subscribedEvents...),
	}
	// Topmost first: the quit dialog covers everything, the popup nothing.
	m.overlays = dialog.NewManager(m.quit, m.palette, m.help, m.themes, m.drill, m.popup)
	return m
}

// Run starts the program and blocks until the user quits or ctx ends.
func Run(ctx context.Context, a *app.App) error {
	m := New(ctx, a)
	defer a.Events.Unsubscribe(m.eventSub)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m *Model) Init() tea.Cmd {
	m.assistant.SetTurns(m.app.Chat.Turns())
	return tea.Batch(
		m.listenForEvents(),
		m.checkLLM(),
		m.statusBar.SetMessage("Welcome to MARK! Fill in the folders and press Enter to analyze.", status.Info),
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if event, ok := msg.(events.Event); ok {
		return m, tea.Batch(m.handleEvent(event), m.listenForEvents())
	}

	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = size.Width
		m.height = size.Height
		return m, m.resizeComponents()
	}

	// The topmost overlay takes keys first.
	if kp, ok := msg.(tea.KeyPressMsg); ok {
		if active := m.overlays.Active(); active != nil {
			if active == m.popup && key.Matches(kp, m.keys.Quit) {
				return m, m.quit.Open()
			}
			return m, active.Update(kp)
		}
		if cmd, handled := m.handleKey(kp); handled {
			return m, cmd
		}
		return m, m.activePane().Update(kp)
	}

	return m, m.handleMsg(msg)
}

// handleKey processes the global bindings.
func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit.Open(), true
	case key.Matches(msg, m.keys.NextTab):
		return m.selectTab(m.neighbor(1)), true
	case key.Matches(msg, m.keys.PrevTab):
		return m.selectTab(m.neighbor(-1)), true
	case key.Matches(msg, m.keys.Input):
		return m.selectTab(tabs.Input), true
	case key.Matches(msg, m.keys.Output):
		return m.selectTab(tabs.Output), true
	case key.Matches(msg, m.keys.Charts):
		return m.selectTab(tabs.Dashboard), true
	case key.Matches(msg, m.keys.Chat):
		return m.selectTab(tabs.Assistant), true
	case key.Matches(msg, m.keys.CloseTab):
		return m.closeTab(), true
	case key.Matches(msg, m.keys.Refresh):
		return m.refresh(), true
	case key.Matches(msg, m.keys.Commands):
		return m.palette.Open(), true
	case key.Matches(msg, m.keys.Theme):
		return m.themes.Open(), true
	case key.Matches(msg, m.keys.Help):
		return m.help.Open(), true
	}
	return nil, false
}

// runCommand performs a command picked in the palette.
func (m *Model) runCommand(id string) tea.Cmd {
	switch id {
	case cmdInput:
		return m.selectTab(tabs.Input)
	case cmdOutput:
		return m.selectTab(tabs.Output)
	case cmdDashboard:
		return m.selectTab(tabs.Dashboard)
	case cmdAssistant:
		return m.selectTab(tabs.Assistant)
	case cmdNextTab:
		return m.selectTab(m.neighbor(1))
	case cmdCloseTab:
		return m.closeTab()
	case cmdRefresh:
		return m.refresh()
	case cmdTheme:
		return m.themes.Open()
	case cmdHelp:
		return m.help.Open()
	case cmdQuit:
		return m.quit.Open()
	}
	return nil
}

// handleMsg processes everything that is not a key press.
func (m *Model) handleMsg(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case submitMsg:
		if m.app.Running() != nil {
			return m.statusBar.SetMessage(app.ErrAnalysisRunning.Error(), status.Warning)
		}
		m.input.SetDisabled(true)
		m.jobID = ""
		m.starting = true
		m.cancelQueued = false
		return tea.Batch(
			m.popup.Show("Analysis", "Validating folders..."),
			m.startAnalysis(msg.req),
		)

	case analysisStartedMsg:
		m.input.SetDisabled(false)
		queued := m.cancelQueued
		m.starting, m.cancelQueued = false, false
		if msg.err == nil {
			m.jobID = msg.run.JobID
			if queued {
				return m.cancelAnalysis()
			}
			return nil
		}
		if errors.Is(msg.err, app.ErrAnalysisRunning) {
			return m.statusBar.SetMessage(msg.err.Error(), status.Warning)
		}
		return m.failAnalysis(msg.err.Error())

	case dialog.PopupCancelMsg:
		if m.starting {
			m.cancelQueued = true
			m.popup.SetText("Cancelling analysis...")
			return nil
		}
		if m.app.Running() == nil {
			return m.popup.Hide()
		}
		m.popup.SetText("Cancelling analysis...")
		return m.cancelAnalysis()

	case analysisCancelMsg:
		if msg.err != nil && !errors.Is(msg.err, app.ErrNoAnalysis) {
			m.input.SetDisabled(false)
			return m.popup.Hide()
		}
		return nil

	case autoDismissMsg:
		if msg.jobID != m.jobID || !m.popup.IsOpen() {
			return nil
		}
		m.popup.HideSpinner()
		m.popup.AddAction(m.openResults)
		m.popup.ShowAction("View results")
		return nil

	case resultsLoadedMsg:
		if msg.err != nil {
			return m.statusBar.SetMessage(msg.err.Error(), status.Error)
		}
		m.output.SetResults(msg.list)
		return m.watchResults()

	case openFileMsg:
		return m.openResultFile(msg.file)

	case resultFileMsg:
		if msg.err != nil {
			return m.statusBar.SetMessage(msg.err.Error(), status.Error)
		}
		p := newCSVPane(msg.file.Filename, msg.view)
		w, h := m.paneSize()
		p.SetSize(w, h)
		m.files[msg.file.Filename] = p
		return nil

	case dashboardLoadedMsg:
		m.dashStale = false
		m.dash.SetSnapshot(msg.snap)
		return nil

	case chart.SelectMsg:
		cmd := m.drillDown(msg.Series, msg.Index)
		if cmd == nil {
			return m.statusBar.SetMessage("Load the dashboard first", status.Warning)
		}
		return cmd

	case drillMsg:
		switch {
		case msg.err != nil:
			return m.statusBar.SetMessage(msg.err.Error(), status.Error)
		case msg.drill == nil:
			return m.statusBar.SetMessage("Nothing to filter for this element", status.Info)
		}
		return m.drill.Show(msg.drill)

	case dialog.CommandSelectedMsg:
		return m.runCommand(msg.ID)

	case dialog.ThemeSelectedMsg:
		m.app.Logger.Debug("theme changed", "theme", msg.Name)
		return m.statusBar.SetMessage("Theme set to "+msg.Name, status.Info)

	case chatSendMsg:
		return m.sendChat(msg)

	case chatReplyMsg:
		m.assistant.SetTurns(m.app.Chat.Turns())
		cmd := m.assistant.SetBusy(false, "")
		if msg.err != nil {
			m.assistant.SetNotice(msg.err.Error())
		}
		return cmd

	case chatClearedMsg:
		m.assistant.SetTurns(m.app.Chat.Turns())
		return m.statusBar.SetMessage("Conversation cleared", status.Info)

	case llmStatusMsg:
		if msg.err != nil || !msg.available {
			m.assistant.SetWarning(llmUnavailable)
		} else {
			m.assistant.SetWarning("")
		}
		return nil
	}

	// Ticks and other messages reach every component that animates.
	return tea.Batch(
		m.statusBar.Update(msg),
		m.popup.Update(msg),
		m.assistant.Update(msg),
		m.activeScroller(msg),
	)
}

// activeScroller forwards mouse wheel messages to the dashboard.
func (m *Model) activeScroller(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(tea.MouseWheelMsg); ok && m.app.Tabs.Active() == tabs.Dashboard {
		return m.dash.Update(msg)
	}
	return nil
}

func (m *Model) sendChat(msg chatSendMsg) tea.Cmd {
	switch msg.command {
	case chatHelp:
		m.assistant.ShowHelp()
		return nil
	case chatClear:
		return m.clearChat()
	}

	if m.app.Chat.Busy() || m.assistant.Busy() {
		m.assistant.SetNotice("The assistant is still answering.")
		return nil
	}

	var run tea.Cmd
	pending := ""
	switch msg.command {
	case chatExplain:
		run = m.explain()
	case chatSummary:
		run = m.summarize()
	default:
		run = m.ask(msg.text)
		pending = msg.text
	}
	return tea.Batch(m.assistant.SetBusy(true, pending), run)
}

// selectTab activates name and loads what the pane needs.
func (m *Model) selectTab(name string) tea.Cmd {
	if err := m.app.SelectTab(name); err != nil {
		return m.statusBar.SetMessage(err.Error(), status.Error)
	}
	if name == tabs.Dashboard && (m.dash.Snapshot() == nil || m.dashStale) && !m.dash.loading {
		return m.loadDashboard()
	}
	return nil
}

func (m *Model) loadDashboard() tea.Cmd {
	m.dash.SetLoading(true)
	return m.openDashboard()
}

// neighbor returns the tab delta places from the active one.
func (m *Model) neighbor(delta int) string {
	names := m.app.Tabs.Names()
	active := m.app.Tabs.Active()
	for i, n := range names {
		if n == active {
			return names[((i+delta)%len(names)+len(names))%len(names)]
		}
	}
	return tabs.Input
}

func (m *Model) closeTab() tea.Cmd {
	active := m.app.Tabs.Active()
	if err := m.app.Tabs.Remove(active); err != nil {
		if errors.Is(err, tabs.ErrFixedTab) {
			return m.statusBar.SetMessage(active+" cannot be closed", status.Warning)
		}
		return m.statusBar.SetMessage(err.Error(), status.Error)
	}
	return nil
}

func (m *Model) refresh() tea.Cmd {
	switch m.app.Tabs.Active() {
	case tabs.Output:
		return m.openResults()
	case tabs.Dashboard:
		return m.loadDashboard()
	case tabs.Assistant:
		return m.checkLLM()
	}
	return nil
}

// activePane returns the component the active tab shows.
func (m *Model) activePane() core.Component {
	switch name := m.app.Tabs.Active(); name {
	case tabs.Input:
		return m.input
	case tabs.Output:
		return m.output
	case tabs.Dashboard:
		return m.dash
	case tabs.Assistant:
		return m.assistant
	default:
		if p, ok := m.files[name]; ok {
			return p
		}
	}
	return m.input
}

func (m *Model) View() tea.View {
	return tea.NewView(m.render())
}

// render draws the whole screen.
func (m *Model) render() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	if overlay := m.overlays.View(); overlay != "" {
		return overlay
	}

	w, h := m.paneSize()
	pane := lipgloss.NewStyle().
		Width(w).
		Height(h).
		MaxHeight(h).
		Margin(0, paneMarginX).
		Render(m.activePane().View())

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTabBar(),
		pane,
		m.renderHelp(),
		m.statusBar.View(),
	)
}
