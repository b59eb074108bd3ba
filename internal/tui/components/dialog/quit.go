package dialog

import (
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/mark/internal/tui/styles"
)

// QuitDialog asks for confirmation before quitting
type QuitDialog struct {
	*BaseDialog

	selectedNo bool // true if "No" is selected (default for safety)
}

// NewQuitDialog creates a new quit confirmation dialog
func NewQuitDialog() *QuitDialog {
	return &QuitDialog{
		BaseDialog: NewBaseDialog("Quit MARK?"),
		selectedNo: true,
	}
}

// Open shows the dialog with "No" selected.
func (d *QuitDialog) Open() tea.Cmd {
	d.selectedNo = true
	return d.BaseDialog.Open()
}

func (d *QuitDialog) Init() tea.Cmd {
	return nil
}

func (d *QuitDialog) Update(msg tea.Msg) tea.Cmd {
	if !d.isOpen {
		return nil
	}

	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "ctrl+c", "y", "Y":
		// Ctrl+C while the dialog is open confirms
		return tea.Quit
	case "esc", "n", "N":
		return d.Cancel()
	case "left", "right", "tab", "h", "l":
		d.selectedNo = !d.selectedNo
	case "enter", "space":
		if d.selectedNo {
			return d.Close()
		}
		return tea.Quit
	}
	return nil
}

// QuitSelected reports whether "Yes" is the highlighted button.
func (d *QuitDialog) QuitSelected() bool {
	return !d.selectedNo
}

func (d *QuitDialog) View() string {
	if !d.isOpen {
		return ""
	}
	s := styles.CurrentTheme().S()

	question := s.Bold.Render("Are you sure you want to quit?")
	focused := 0
	if d.selectedNo {
		focused = 1
	}
	row := lipgloss.NewStyle().
		Width(lipgloss.Width(question)).
		Align(lipgloss.Right).
		Render(buttons([]string{"Yes", "No"}, focused))

	help := s.Subtle.Italic(true).Render("Ctrl+C again to quit • Esc to cancel")

	return d.RenderDialog(lipgloss.JoinVertical(lipgloss.Center, question, "", row, "", help))
}
