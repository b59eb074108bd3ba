package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/mark/internal/dashboard"
	"github.com/billie-coop/mark/internal/tui/components/chart"
	"github.com/billie-coop/mark/internal/tui/components/core"
	"github.com/billie-coop/mark/internal/tui/styles"
)

// dashboardPane shows the summary counters and one chart per series.
type dashboardPane struct {
	core.SizeableBase

	snap    *dashboard.Snapshot
	charts  []*chart.Model
	focus   int
	loading bool
	vp      viewport.Model
}

func newDashboardPane() *dashboardPane {
	return &dashboardPane{vp: viewport.New()}
}

func (p *dashboardPane) SetSize(width, height int) tea.Cmd {
	p.SizeableBase.SetSize(width, height)
	p.vp = viewport.New(viewport.WithWidth(width), viewport.WithHeight(max(height-2, 1)))
	p.vp.MouseWheelEnabled = true
	for _, c := range p.charts {
		c.SetSize(min(width, 100), 0)
	}
	p.refresh()
	return nil
}

func (p *dashboardPane) SetLoading(loading bool) {
	p.loading = loading
	p.refresh()
}

// SetSnapshot rebuilds every chart from snap.
func (p *dashboardPane) SetSnapshot(snap *dashboard.Snapshot) {
	p.snap = snap
	p.loading = false
	p.charts = nil
	p.focus = 0
	for _, s := range snap.Charts() {
		c := chart.New(s)
		c.SetSize(min(p.Width, 100), 0)
		p.charts = append(p.charts, c)
	}
	if len(p.charts) > 0 {
		p.charts[0].Focus()
	}
	p.refresh()
	p.vp.GotoTop()
}

func (p *dashboardPane) Snapshot() *dashboard.Snapshot {
	return p.snap
}

func (p *dashboardPane) cycle(delta int) {
	if len(p.charts) == 0 {
		return
	}
	p.charts[p.focus].Blur()
	p.focus = (p.focus + delta + len(p.charts)) % len(p.charts)
	p.charts[p.focus].Focus()
}

func (p *dashboardPane) Init() tea.Cmd {
	return nil
}

func (p *dashboardPane) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "tab":
			p.cycle(1)
			p.refresh()
			p.scrollToFocus()
			return nil
		case "shift+tab":
			p.cycle(-1)
			p.refresh()
			p.scrollToFocus()
			return nil
		case "pgup", "pgdown":
			var cmd tea.Cmd
			p.vp, cmd = p.vp.Update(msg)
			return cmd
		}
		if len(p.charts) > 0 {
			cmd := p.charts[p.focus].Update(msg)
			p.refresh()
			return cmd
		}
		return nil
	}

	var cmd tea.Cmd
	p.vp, cmd = p.vp.Update(msg)
	return cmd
}

// scrollToFocus moves the viewport to the top of the focused chart.
func (p *dashboardPane) scrollToFocus() {
	offset := lipgloss.Height(p.header()) + 1
	for i := 0; i < p.focus; i++ {
		offset += lipgloss.Height(p.charts[i].View()) + 1
	}
	p.vp.SetYOffset(offset)
}

func (p *dashboardPane) refresh() {
	p.vp.SetContent(p.content())
}

func (p *dashboardPane) header() string {
	s := styles.CurrentTheme().S()
	if p.snap == nil || !p.snap.Summary.OK() {
		return s.Title.Render("Analytics")
	}
	sum := p.snap.Summary.Value
	stat := func(label string, n int) string {
		return s.Muted.Render(label+" ") + s.Bold.Render(fmt.Sprint(n))
	}
	line := strings.Join([]string{
		stat("Models", sum.TotalModels),
		stat("Consumers", sum.ConsumerCount),
		stat("Producers", sum.ProducerCount),
		stat("Projects", sum.TotalProjects),
		stat("Libraries", sum.TotalLibraries),
	}, "   ")

	parts := []string{s.Title.Render("Analytics"), line}
	if ts, err := time.Parse(time.RFC3339, sum.LastAnalysisID); err == nil {
		parts = append(parts, s.Subtle.Render("Last analysis "+ts.Local().Format("2006-01-02 15:04")))
	} else if sum.LastAnalysisID != "" {
		parts = append(parts, s.Subtle.Render("Last analysis "+sum.LastAnalysisID))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (p *dashboardPane) content() string {
	s := styles.CurrentTheme().S()

	if p.loading {
		return s.Muted.Render("Loading analytics...")
	}
	if p.snap == nil {
		return s.Muted.Render("The dashboard loads when an analysis has produced results.")
	}

	parts := []string{p.header()}
	if alert := p.snap.Alert(); alert != "" {
		parts = append(parts, "", s.Banner.Render(alert))
	}
	for _, c := range p.charts {
		parts = append(parts, "", c.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (p *dashboardPane) View() string {
	s := styles.CurrentTheme().S()
	help := s.Subtle.Render("Tab next chart • ↑/↓ select • Enter to drill down • ctrl+r to reload")
	return lipgloss.JoinVertical(lipgloss.Left, p.vp.View(), "", help)
}
