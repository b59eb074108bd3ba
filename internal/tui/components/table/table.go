// Package table renders scrollable tables of string cells.
package table

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	lgtable "github.com/charmbracelet/lipgloss/v2/table"

	"github.com/billie-coop/mark/internal/tui/components/core"
	"github.com/billie-coop/mark/internal/tui/styles"
)

// Model shows a window of rows that moves with the arrow keys.
type Model struct {
	core.SizeableBase

	headers []string
	rows    [][]string
	offset  int
}

func New(headers []string, rows [][]string) *Model {
	return &Model{headers: headers, rows: rows}
}

// SetData replaces the table contents and scrolls to the top.
func (m *Model) SetData(headers []string, rows [][]string) {
	m.headers = headers
	m.rows = rows
	m.offset = 0
}

func (m *Model) Len() int {
	return len(m.rows)
}

func (m *Model) Offset() int {
	return m.offset
}

// visible is how many body rows fit. Header and borders take four lines.
func (m *Model) visible() int {
	if m.Height <= 0 {
		return len(m.rows)
	}
	return max(m.Height-5, 1)
}

func (m *Model) scroll(delta int) {
	limit := max(len(m.rows)-m.visible(), 0)
	m.offset = min(max(m.offset+delta, 0), limit)
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "up", "k":
			m.scroll(-1)
		case "down", "j":
			m.scroll(1)
		case "pgup":
			m.scroll(-m.visible())
		case "pgdown":
			m.scroll(m.visible())
		case "home", "g":
			m.offset = 0
		case "end", "G":
			m.scroll(len(m.rows))
		}
	}
	return nil
}

func (m *Model) View() string {
	theme := styles.CurrentTheme()
	s := theme.S()
	if len(m.rows) == 0 {
		return s.Muted.Render("No rows")
	}

	end := min(m.offset+m.visible(), len(m.rows))
	t := lgtable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		Headers(m.headers...).
		Rows(m.rows[m.offset:end]...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == lgtable.HeaderRow {
				return s.Subtitle.Padding(0, 1)
			}
			return s.Text.Padding(0, 1)
		})
	if m.Width > 0 {
		t = t.Width(m.Width)
	}

	footer := s.Subtle.Render(fmt.Sprintf("Rows %d-%d of %d", m.offset+1, end, len(m.rows)))
	return lipgloss.JoinVertical(lipgloss.Left, t.Render(), footer)
}
