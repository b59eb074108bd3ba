package dialog

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/mark/internal/dashboard"
	"github.com/billie-coop/mark/internal/tui/components/table"
	"github.com/billie-coop/mark/internal/tui/styles"
)

// DrillDialog lists the rows behind a clicked chart element.
type DrillDialog struct {
	*BaseDialog

	drill *dashboard.Drill
	table *table.Model
}

func NewDrillDialog() *DrillDialog {
	return &DrillDialog{
		BaseDialog: NewBaseDialog(""),
		table:      table.New(dashboard.Columns, nil),
	}
}

// Show opens the dialog for d.
func (d *DrillDialog) Show(drill *dashboard.Drill) tea.Cmd {
	d.drill = drill
	d.SetTitle(drill.Title)

	rows := make([][]string, len(drill.Rows))
	for i, r := range drill.Rows {
		rows[i] = r.Values()
	}
	d.table.SetData(dashboard.Columns, rows)
	return d.Open()
}

func (d *DrillDialog) Drill() *dashboard.Drill {
	return d.drill
}

func (d *DrillDialog) SetSize(width, height int) tea.Cmd {
	d.BaseDialog.SetSize(width, height)
	// Leave room for the frame, title and filter line.
	return d.table.SetSize(max(width-10, 20), max(height-12, 6))
}

func (d *DrillDialog) Init() tea.Cmd {
	return nil
}

func (d *DrillDialog) Update(msg tea.Msg) tea.Cmd {
	if !d.isOpen {
		return nil
	}
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "esc", "q", "enter":
			return d.Close()
		}
	}
	return d.table.Update(msg)
}

func (d *DrillDialog) View() string {
	if !d.isOpen || d.drill == nil {
		return ""
	}
	s := styles.CurrentTheme().S()

	filters := make([]string, len(d.drill.Filters))
	for i, f := range d.drill.Filters {
		filters[i] = f.Key + "=" + f.Value
	}
	info := s.Muted.Render(fmt.Sprintf("%d results • %s", d.drill.Count, strings.Join(filters, ", ")))
	help := s.Subtle.Italic(true).Render("↑/↓ scroll • Esc to close")

	return d.RenderDialog(lipgloss.JoinVertical(lipgloss.Left, info, "", d.table.View(), help))
}
