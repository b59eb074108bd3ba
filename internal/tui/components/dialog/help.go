package dialog

import (
	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/mark/internal/tui/styles"
)

// HelpEntry is one key or command and what it does.
type HelpEntry struct {
	Key  string
	Desc string
}

// HelpSection is a tab of the help dialog.
type HelpSection struct {
	Title   string
	Entries []HelpEntry
}

// BindingEntries lists the help text of enabled bindings.
func BindingEntries(bindings ...key.Binding) []HelpEntry {
	out := make([]HelpEntry, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		out = append(out, HelpEntry{Key: h.Key, Desc: h.Desc})
	}
	return out
}

// HelpDialog shows the bindings and commands, one section per tab.
type HelpDialog struct {
	*BaseDialog

	sections  []HelpSection
	activeTab int
}

func NewHelpDialog(sections []HelpSection) *HelpDialog {
	return &HelpDialog{
		BaseDialog: NewBaseDialog("Help"),
		sections:   sections,
	}
}

// Open shows the first section.
func (d *HelpDialog) Open() tea.Cmd {
	d.activeTab = 0
	return d.BaseDialog.Open()
}

// ActiveSection returns the title of the section on screen.
func (d *HelpDialog) ActiveSection() string {
	if len(d.sections) == 0 {
		return ""
	}
	return d.sections[d.activeTab].Title
}

func (d *HelpDialog) Init() tea.Cmd {
	return nil
}

func (d *HelpDialog) Update(msg tea.Msg) tea.Cmd {
	if !d.isOpen {
		return nil
	}
	kp, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}

	n := len(d.sections)
	switch kp.String() {
	case "esc", "q", "enter":
		return d.Close()
	case "tab", "right", "l":
		if n > 0 {
			d.activeTab = (d.activeTab + 1) % n
		}
	case "shift+tab", "left", "h":
		if n > 0 {
			d.activeTab = (d.activeTab - 1 + n) % n
		}
	}
	return nil
}

func (d *HelpDialog) View() string {
	if !d.isOpen {
		return ""
	}
	s := styles.CurrentTheme().S()

	tabs := make([]string, len(d.sections))
	for i, sec := range d.sections {
		if i == d.activeTab {
			tabs[i] = s.TabActive.Render(sec.Title)
		} else {
			tabs[i] = s.Tab.Render(sec.Title)
		}
	}
	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	var lines []string
	if len(d.sections) > 0 {
		entries := d.sections[d.activeTab].Entries
		width := 0
		for _, e := range entries {
			width = max(width, lipgloss.Width(e.Key))
		}
		keyStyle := s.Subtitle.Width(width + 2)
		for _, e := range entries {
			lines = append(lines, keyStyle.Render(e.Key)+s.Muted.Render(e.Desc))
		}
	}

	footer := s.Subtle.Italic(true).Render("tab next section • esc close")
	return d.RenderDialog(lipgloss.JoinVertical(lipgloss.Left,
		tabBar,
		"",
		lipgloss.JoinVertical(lipgloss.Left, lines...),
		"",
		footer,
	))
}
