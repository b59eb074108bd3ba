package dialog

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/mark/internal/tui/styles"
)

const paletteVisible = 10

// Command is an entry of the palette.
type Command struct {
	ID          string
	Name        string
	Description string
	Shortcut    string
}

// CommandSelectedMsg carries the ID of the command picked in the palette.
type CommandSelectedMsg struct {
	ID string
}

// CommandPaletteDialog is a searchable list of commands. Typing filters by
// name, description or shortcut.
type CommandPaletteDialog struct {
	*BaseDialog

	commands []Command
	filtered []Command
	query    string
	selected int
}

func NewCommandPalette(commands []Command) *CommandPaletteDialog {
	d := &CommandPaletteDialog{
		BaseDialog: NewBaseDialog("Commands"),
		commands:   commands,
	}
	d.filter()
	return d
}

// Open resets the search.
func (d *CommandPaletteDialog) Open() tea.Cmd {
	d.query = ""
	d.selected = 0
	d.filter()
	return d.BaseDialog.Open()
}

// Filtered returns the commands matching the current query.
func (d *CommandPaletteDialog) Filtered() []Command {
	return d.filtered
}

func (d *CommandPaletteDialog) Init() tea.Cmd {
	return nil
}

func (d *CommandPaletteDialog) Update(msg tea.Msg) tea.Cmd {
	if !d.isOpen {
		return nil
	}
	kp, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}

	switch kp.String() {
	case "esc":
		return d.Cancel()
	case "up", "ctrl+p":
		if d.selected > 0 {
			d.selected--
		}
	case "down", "ctrl+n":
		if d.selected < len(d.filtered)-1 {
			d.selected++
		}
	case "enter":
		if d.selected >= len(d.filtered) {
			return nil
		}
		id := d.filtered[d.selected].ID
		return tea.Batch(d.Close(), func() tea.Msg { return CommandSelectedMsg{ID: id} })
	case "backspace":
		if r := []rune(d.query); len(r) > 0 {
			d.query = string(r[:len(r)-1])
			d.filter()
		}
	default:
		if kp.Text != "" {
			d.query += kp.Text
			d.filter()
		}
	}
	return nil
}

func (d *CommandPaletteDialog) filter() {
	q := strings.ToLower(d.query)
	d.filtered = d.filtered[:0]
	for _, c := range d.commands {
		if q == "" ||
			strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Description), q) ||
			strings.Contains(strings.ToLower(c.Shortcut), q) {
			d.filtered = append(d.filtered, c)
		}
	}
	if d.selected >= len(d.filtered) {
		d.selected = 0
	}
}

func (d *CommandPaletteDialog) View() string {
	if !d.isOpen {
		return ""
	}
	s := styles.CurrentTheme().S()
	const width = 60

	search := s.InputFocused.Width(width).Render("> " + d.query)

	start := max(d.selected-paletteVisible+1, 0)
	end := min(start+paletteVisible, len(d.filtered))

	items := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		c := d.filtered[i]
		line := c.Name + s.Subtle.Render("  "+c.Shortcut) + s.Muted.Render(" - "+c.Description)
		if i == d.selected {
			line = s.ButtonFocused.Width(width).Render(c.Name + "  " + c.Shortcut)
		} else {
			line = lipgloss.NewStyle().Padding(0, 2).Width(width).Render(line)
		}
		items = append(items, line)
	}
	if len(items) == 0 {
		items = append(items, s.Muted.Render("No matching commands"))
	}

	return d.RenderDialog(lipgloss.JoinVertical(lipgloss.Left, search, "", lipgloss.JoinVertical(lipgloss.Left, items...)))
}
