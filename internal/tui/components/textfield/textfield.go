// Package textfield is a single-line text input for path fields.
package textfield

import (
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/mark/internal/tui/components/core"
	"github.com/billie-coop/mark/internal/tui/styles"
)

// Model is a labelled single-line input. Editing is rune based.
type Model struct {
	core.FocusableBase

	Label       string
	Placeholder string
	Disabled    bool

	value  []rune
	cursor int
	width  int
}

func New(label, placeholder string) *Model {
	return &Model{Label: label, Placeholder: placeholder}
}

func (m *Model) Value() string {
	return string(m.value)
}

// SetValue replaces the text and moves the cursor to the end.
func (m *Model) SetValue(v string) {
	m.value = []rune(v)
	m.cursor = len(m.value)
}

func (m *Model) SetSize(width, _ int) tea.Cmd {
	m.width = width
	return nil
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) tea.Cmd {
	if !m.IsFocused() || m.Disabled {
		return nil
	}
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}

	switch key.String() {
	case "backspace":
		if m.cursor > 0 {
			m.value = append(m.value[:m.cursor-1], m.value[m.cursor:]...)
			m.cursor--
		}
	case "delete":
		if m.cursor < len(m.value) {
			m.value = append(m.value[:m.cursor], m.value[m.cursor+1:]...)
		}
	case "left":
		if m.cursor > 0 {
			m.cursor--
		}
	case "right":
		if m.cursor < len(m.value) {
			m.cursor++
		}
	case "home", "ctrl+a":
		m.cursor = 0
	case "end", "ctrl+e":
		m.cursor = len(m.value)
	case "ctrl+u":
		m.value = m.value[m.cursor:]
		m.cursor = 0
	case "ctrl+k":
		m.value = m.value[:m.cursor]
	default:
		if key.Text != "" {
			m.insert([]rune(key.Text))
		}
	}
	return nil
}

func (m *Model) insert(r []rune) {
	tail := append([]rune{}, m.value[m.cursor:]...)
	m.value = append(append(m.value[:m.cursor], r...), tail...)
	m.cursor += len(r)
}

func (m *Model) View() string {
	s := styles.CurrentTheme().S()

	box := s.Input
	if m.IsFocused() {
		box = s.InputFocused
	}
	if m.width > 2 {
		box = box.Width(m.width - 2)
	}

	var text string
	switch {
	case len(m.value) == 0 && !m.IsFocused():
		text = s.Subtle.Render(m.Placeholder)
	case m.IsFocused() && !m.Disabled:
		text = m.withCursor()
	default:
		text = s.Text.Render(string(m.value))
	}
	if m.Disabled {
		text = s.Muted.Render(string(m.value))
	}

	label := s.Bold.Render(m.Label)
	return lipgloss.JoinVertical(lipgloss.Left, label, box.Render(text))
}

func (m *Model) withCursor() string {
	theme := styles.CurrentTheme()
	cursor := lipgloss.NewStyle().Background(theme.Primary).Foreground(theme.FgInverted)

	before := string(m.value[:m.cursor])
	under, after := " ", ""
	if m.cursor < len(m.value) {
		under = string(m.value[m.cursor])
		after = string(m.value[m.cursor+1:])
	}
	return theme.S().Text.Render(before) + cursor.Render(under) + theme.S().Text.Render(after)
}
