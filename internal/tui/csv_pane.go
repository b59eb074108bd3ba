package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/mark/internal/api"
	"github.com/billie-coop/mark/internal/tui/components/core"
	"github.com/billie-coop/mark/internal/tui/components/table"
	"github.com/billie-coop/mark/internal/tui/styles"
)

// csvPane shows one page of a result file in its own tab.
type csvPane struct {
	core.SizeableBase

	name  string
	view  *api.CSVView
	table *table.Model
}

func newCSVPane(name string, view *api.CSVView) *csvPane {
	return &csvPane{
		name:  name,
		view:  view,
		table: table.New(view.Headers, view.Rows),
	}
}

func (p *csvPane) SetSize(width, height int) tea.Cmd {
	p.SizeableBase.SetSize(width, height)
	return p.table.SetSize(width, max(height-2, 3))
}

func (p *csvPane) Init() tea.Cmd {
	return nil
}

func (p *csvPane) Update(msg tea.Msg) tea.Cmd {
	return p.table.Update(msg)
}

func (p *csvPane) View() string {
	s := styles.CurrentTheme().S()

	info := fmt.Sprintf("%s %s • %d of %d rows", styles.FileIcon, p.name, p.view.RowCount, p.view.TotalRows)
	if p.view.HasMore {
		info += " (first page)"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		s.Subtitle.Render(info),
		p.table.View(),
	)
}
