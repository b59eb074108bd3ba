package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/mark/internal/tui/styles"
)

const (
	tabBarHeight    = 2
	statusBarHeight = 1
	helpHeight      = 1
	paneMarginX     = 2
)

// paneSize is the area left for the active pane.
func (m *Model) paneSize() (int, int) {
	w := max(m.width-2*paneMarginX, 20)
	h := max(m.height-tabBarHeight-statusBarHeight-helpHeight-1, 5)
	return w, h
}

// resizeComponents resizes all components based on current window size
func (m *Model) resizeComponents() tea.Cmd {
	w, h := m.paneSize()

	cmds := []tea.Cmd{
		m.input.SetSize(w, h),
		m.output.SetSize(w, h),
		m.dash.SetSize(w, h),
		m.assistant.SetSize(w, h),
		m.statusBar.SetSize(m.width, statusBarHeight),
		m.overlays.SetSize(m.width, m.height),
	}
	for _, p := range m.files {
		cmds = append(cmds, p.SetSize(w, h))
	}
	return tea.Batch(cmds...)
}

func (m *Model) renderTabBar() string {
	s := styles.CurrentTheme().S()
	active := m.app.Tabs.Active()

	var tabs []string
	for _, name := range m.app.Tabs.Names() {
		if name == active {
			tabs = append(tabs, s.TabActive.Render(name))
		} else {
			tabs = append(tabs, s.Tab.Render(name))
		}
	}
	brand := styles.RenderThemeGradient("MARK", true)
	bar := lipgloss.JoinHorizontal(lipgloss.Top, append([]string{brand, "  "}, tabs...)...)

	rule := s.Subtle.Render(strings.Repeat("─", max(m.width, 1)))
	return lipgloss.JoinVertical(lipgloss.Left, bar, rule)
}

// renderHelp lists the global bindings on one line.
func (m *Model) renderHelp() string {
	s := styles.CurrentTheme().S()
	var parts []string
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, s.Muted.Render(h.Key)+" "+s.Subtle.Render(h.Desc))
	}
	line := strings.Join(parts, s.Subtle.Render(" • "))
	if lipgloss.Width(line) > m.width {
		return ""
	}
	return line
}
