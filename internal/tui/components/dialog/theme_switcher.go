package dialog

import (
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/billie-coop/mark/internal/tui/styles"
)

// ThemeSelectedMsg is sent when a theme is applied.
type ThemeSelectedMsg struct {
	Name string
}

// ThemeSwitcherDialog previews themes as the selection moves. Enter keeps
// the previewed theme; esc restores the one active when the dialog opened.
type ThemeSwitcherDialog struct {
	*BaseDialog

	manager  *styles.Manager
	themes   []string
	selected int
	original string
}

func NewThemeSwitcher(manager *styles.Manager) *ThemeSwitcherDialog {
	return &ThemeSwitcherDialog{
		BaseDialog: NewBaseDialog("Theme"),
		manager:    manager,
	}
}

// Open lists the registered themes with the current one selected.
func (d *ThemeSwitcherDialog) Open() tea.Cmd {
	d.themes = d.manager.List()
	d.original = d.manager.Current().Name
	d.selected = max(slices.Index(d.themes, d.original), 0)
	return d.BaseDialog.Open()
}

// Selected returns the highlighted theme name.
func (d *ThemeSwitcherDialog) Selected() string {
	if d.selected < len(d.themes) {
		return d.themes[d.selected]
	}
	return ""
}

func (d *ThemeSwitcherDialog) Init() tea.Cmd {
	return nil
}

func (d *ThemeSwitcherDialog) Update(msg tea.Msg) tea.Cmd {
	if !d.isOpen {
		return nil
	}
	kp, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}

	switch kp.String() {
	case "up", "k":
		d.move(-1)
	case "down", "j":
		d.move(1)
	case "enter":
		name := d.Selected()
		return tea.Batch(d.Close(), func() tea.Msg { return ThemeSelectedMsg{Name: name} })
	case "esc":
		_ = d.manager.SetTheme(d.original)
		return d.Cancel()
	}
	return nil
}

func (d *ThemeSwitcherDialog) move(delta int) {
	next := d.selected + delta
	if next < 0 || next >= len(d.themes) {
		return
	}
	d.selected = next
	_ = d.manager.SetTheme(d.themes[next])
}

func (d *ThemeSwitcherDialog) View() string {
	if !d.isOpen {
		return ""
	}
	s := styles.CurrentTheme().S()

	lines := []string{s.Subtle.Render("↑/↓ preview • enter apply • esc revert"), ""}
	for i, name := range d.themes {
		label := name
		if name == d.original {
			label += " (current)"
		}
		if i == d.selected {
			lines = append(lines, styles.RenderThemeGradient("→ "+label, true))
			continue
		}
		lines = append(lines, s.Text.Render("  "+label))
	}

	samples := []string{
		s.Success.Render("Success"),
		s.Warning.Render("Warning"),
		s.Error.Render("Error"),
		s.Info.Render("Info"),
	}
	lines = append(lines, "", s.Subtle.Render("Preview:"), strings.Join(samples, " "))
	return d.RenderDialog(strings.Join(lines, "\n"))
}
