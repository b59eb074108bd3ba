package dialog

import (
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/mark/internal/tui/components/core"
	"github.com/billie-coop/mark/internal/tui/styles"
)

// BaseDialog provides common dialog functionality
type BaseDialog struct {
	core.FocusableBase
	core.SizeableBase

	title     string
	isOpen    bool
	cancelled bool
}

// NewBaseDialog creates a new base dialog
func NewBaseDialog(title string) *BaseDialog {
	return &BaseDialog{title: title}
}

// IsOpen returns whether the dialog is open
func (d *BaseDialog) IsOpen() bool {
	return d.isOpen
}

func (d *BaseDialog) Title() string {
	return d.title
}

func (d *BaseDialog) SetTitle(title string) {
	d.title = title
}

// Open opens the dialog
func (d *BaseDialog) Open() tea.Cmd {
	d.isOpen = true
	d.cancelled = false
	return d.Focus()
}

// Close closes the dialog
func (d *BaseDialog) Close() tea.Cmd {
	d.isOpen = false
	return d.Blur()
}

// Cancel closes the dialog as cancelled
func (d *BaseDialog) Cancel() tea.Cmd {
	d.cancelled = true
	return d.Close()
}

// IsCancelled returns whether the dialog was cancelled
func (d *BaseDialog) IsCancelled() bool {
	return d.cancelled
}

// RenderDialog frames content with the title and centers it in the
// dialog's area. It renders nothing while closed.
func (d *BaseDialog) RenderDialog(content string) string {
	if !d.isOpen {
		return ""
	}
	theme := styles.CurrentTheme()

	body := content
	if d.title != "" {
		title := theme.S().Title.MarginBottom(1).Render(d.title)
		body = lipgloss.JoinVertical(lipgloss.Left, title, content)
	}

	frame := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.BorderFocus).
		Background(theme.BgOverlay).
		Padding(1, 2).
		Render(body)

	if d.Width == 0 || d.Height == 0 {
		return frame
	}
	return lipgloss.Place(d.Width, d.Height, lipgloss.Center, lipgloss.Center, frame)
}

// HandleEscape handles the escape key
func (d *BaseDialog) HandleEscape() tea.Cmd {
	if d.isOpen {
		return d.Cancel()
	}
	return nil
}

// buttons renders labels side by side with the focused one highlighted.
func buttons(labels []string, focused int) string {
	s := styles.CurrentTheme().S()
	parts := make([]string, 0, len(labels)*2)
	for i, label := range labels {
		if i > 0 {
			parts = append(parts, "  ")
		}
		if i == focused {
			parts = append(parts, s.ButtonFocused.Render(label))
		} else {
			parts = append(parts, s.Button.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}
