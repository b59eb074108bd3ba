package status

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/mark/internal/tui/styles"
)

// MessageType represents the type of status message
type MessageType int

const (
	Info MessageType = iota
	Warning
	Error
	Success
)

// ParseType maps the status payload names to a MessageType.
func ParseType(s string) MessageType {
	switch s {
	case "warning":
		return Warning
	case "error":
		return Error
	case "success":
		return Success
	}
	return Info
}

// Message is one transient status bar message.
type Message struct {
	Content   string
	Type      MessageType
	Timestamp time.Time
}

// Component is a one-line status bar: persistent context on the left and a
// message on the right that clears itself.
type Component struct {
	message    *Message
	width      int
	left       string
	clearAfter time.Duration
	now        func() time.Time
}

// New creates a new status bar component
func New() *Component {
	return &Component{
		clearAfter: 5 * time.Second,
		now:        time.Now,
	}
}

// SetMessage shows content and schedules it to be cleared.
func (c *Component) SetMessage(content string, t MessageType) tea.Cmd {
	msg := &Message{Content: content, Type: t, Timestamp: c.now()}
	c.message = msg
	return tea.Tick(c.clearAfter, func(time.Time) tea.Msg {
		return clearMessageMsg{timestamp: msg.Timestamp}
	})
}

func (c *Component) Message() *Message {
	return c.message
}

// SetLeftContent sets the persistent left side, such as the active paths.
func (c *Component) SetLeftContent(content string) {
	c.left = content
}

func (c *Component) SetSize(width, _ int) tea.Cmd {
	c.width = width
	return nil
}

type clearMessageMsg struct {
	timestamp time.Time
}

func (c *Component) Init() tea.Cmd {
	return nil
}

func (c *Component) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(clearMessageMsg); ok {
		// A newer message replaced the one this timer was for.
		if c.message != nil && msg.timestamp.Equal(c.message.Timestamp) {
			c.message = nil
		}
	}
	return nil
}

func (c *Component) View() string {
	if c.width == 0 {
		return ""
	}
	theme := styles.CurrentTheme()

	bar := lipgloss.NewStyle().
		Width(c.width).
		Height(1).
		Background(theme.BgSubtle).
		Foreground(theme.FgBase).
		Padding(0, 1)

	available := c.width - 2
	left := c.left
	right := c.messageText()

	if lipgloss.Width(left)+lipgloss.Width(right) > available {
		right = truncate(right, available/2)
		left = truncate(left, available-lipgloss.Width(right)-1)
	}

	gap := available - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return bar.Render(left + strings.Repeat(" ", gap) + c.messageStyle().Render(right))
}

func (c *Component) messageText() string {
	if c.message == nil {
		return ""
	}
	switch c.message.Type {
	case Success:
		return styles.CheckIcon + " " + c.message.Content
	case Warning:
		return styles.WarningIcon + " " + c.message.Content
	case Error:
		return styles.ErrorIcon + " " + c.message.Content
	}
	return c.message.Content
}

func (c *Component) messageStyle() lipgloss.Style {
	s := styles.CurrentTheme().S()
	if c.message == nil {
		return s.Base
	}
	switch c.message.Type {
	case Success:
		return s.Success
	case Warning:
		return s.Warning
	case Error:
		return s.Error
	}
	return s.Info
}

func truncate(s string, width int) string {
	if width <= 3 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+3 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
