package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/textarea"
	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/mark/internal/chat"
	"github.com/billie-coop/mark/internal/tui/components/core"
	"github.com/billie-coop/mark/internal/tui/styles"
)

const assistantInputHeight = 3

// chatCommand is what the user asked the assistant pane to do.
type chatCommand int

const (
	chatAsk chatCommand = iota
	chatExplain
	chatSummary
	chatClear
	chatHelp
)

// chatSendMsg carries a submitted line to the root model.
type chatSendMsg struct {
	command chatCommand
	text    string
}

const chatHelpText = `Commands:
  /explain  explain the analysis results
  /summary  summarize the analyzed project
  /clear    start a new conversation
  /help     show this help`

// assistantPane is the LLM Assistant tab: the conversation above an input.
type assistantPane struct {
	core.SizeableBase

	vp      viewport.Model
	input   textarea.Model
	spinner spinner.Model

	turns    []chat.Turn
	pending  string
	busy     bool
	notice   string
	warning  string
	help     bool
	rendered map[int]string
}

func newAssistantPane() *assistantPane {
	ta := textarea.New()
	ta.Placeholder = "Ask about the analyzed project, or /help"
	ta.Prompt = ""
	ta.CharLimit = -1
	ta.ShowLineNumbers = false
	ta.SetHeight(assistantInputHeight)
	ta.KeyMap.InsertNewline.SetEnabled(false)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.CurrentTheme().Primary)

	return &assistantPane{
		vp:       viewport.New(),
		input:    ta,
		spinner:  sp,
		rendered: make(map[int]string),
	}
}

func (p *assistantPane) SetSize(width, height int) tea.Cmd {
	p.SizeableBase.SetSize(width, height)
	// input with its border, the spinner line and a gap
	vpHeight := max(height-assistantInputHeight-4, 3)
	p.vp = viewport.New(viewport.WithWidth(width), viewport.WithHeight(vpHeight))
	p.vp.MouseWheelEnabled = true
	p.input.SetWidth(max(width-2, 10))
	p.rendered = make(map[int]string)
	p.render()
	return nil
}

func (p *assistantPane) Focus() tea.Cmd {
	return p.input.Focus()
}

func (p *assistantPane) Blur() {
	p.input.Blur()
}

// SetTurns replaces the conversation shown.
func (p *assistantPane) SetTurns(turns []chat.Turn) {
	if len(turns) < len(p.turns) {
		p.rendered = make(map[int]string)
	}
	p.turns = turns
	p.render()
}

// SetBusy shows the spinner while a request is outstanding.
func (p *assistantPane) SetBusy(busy bool, pending string) tea.Cmd {
	p.busy = busy
	p.pending = pending
	p.render()
	if busy {
		return p.spinner.Tick
	}
	return nil
}

// SetNotice shows a line under the conversation, such as an error.
func (p *assistantPane) SetNotice(notice string) {
	p.notice = notice
}

// SetWarning sets the banner above the conversation.
func (p *assistantPane) SetWarning(warning string) {
	p.warning = warning
}

// ShowHelp lists the slash commands below the conversation.
func (p *assistantPane) ShowHelp() {
	p.help = true
	p.render()
}

func (p *assistantPane) Busy() bool {
	return p.busy
}

func (p *assistantPane) Init() tea.Cmd {
	return nil
}

func (p *assistantPane) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if !p.busy {
			return nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return cmd
	case tea.KeyPressMsg:
		switch msg.String() {
		case "enter":
			return p.submit()
		case "pgup", "pgdown":
			var cmd tea.Cmd
			p.vp, cmd = p.vp.Update(msg)
			return cmd
		}
	case tea.MouseWheelMsg:
		var cmd tea.Cmd
		p.vp, cmd = p.vp.Update(msg)
		return cmd
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return cmd
}

func (p *assistantPane) submit() tea.Cmd {
	line := strings.TrimSpace(p.input.Value())
	if line == "" {
		return nil
	}
	p.input.Reset()
	p.notice = ""
	p.help = false

	send := chatSendMsg{command: chatAsk, text: line}
	switch strings.ToLower(line) {
	case "/explain":
		send.command = chatExplain
	case "/summary":
		send.command = chatSummary
	case "/clear":
		send.command = chatClear
	case "/help":
		send.command = chatHelp
	}
	return func() tea.Msg { return send }
}

func (p *assistantPane) render() {
	s := styles.CurrentTheme().S()
	width := max(p.Width-2, 20)

	var blocks []string
	for i, t := range p.turns {
		if r, ok := p.rendered[i]; ok {
			blocks = append(blocks, r)
			continue
		}
		r := renderTurn(t, width)
		p.rendered[i] = r
		blocks = append(blocks, r)
	}
	if p.pending != "" {
		blocks = append(blocks, renderTurn(chat.Turn{Role: chat.RoleUser, Content: p.pending}, width))
	}
	if len(blocks) == 0 {
		blocks = append(blocks, s.Muted.Render(chat.WelcomeMessage))
	}
	if p.help {
		blocks = append(blocks, s.Muted.Render(chatHelpText))
	}

	p.vp.SetContent(strings.Join(blocks, "\n\n"))
	p.vp.GotoBottom()
}

func renderTurn(t chat.Turn, width int) string {
	s := styles.CurrentTheme().S()
	switch t.Role {
	case chat.RoleUser:
		return s.Subtitle.Render("You") + "\n" + s.Text.Width(width).Render(t.Content)
	case chat.RoleAssistant:
		return s.Title.Render("Assistant") + "\n" + chat.Render(t.Content, width)
	}
	return s.Muted.Italic(true).Width(width).Render(t.Content)
}

func (p *assistantPane) View() string {
	s := styles.CurrentTheme().S()

	var parts []string
	if p.warning != "" {
		parts = append(parts, s.Banner.Render(p.warning))
	}
	parts = append(parts, p.vp.View())

	status := ""
	switch {
	case p.busy:
		status = p.spinner.View() + " " + s.Muted.Render("Thinking...")
	case p.notice != "":
		status = s.Error.Render(styles.ErrorIcon + " " + p.notice)
	}
	parts = append(parts, status, s.InputFocused.Render(p.input.View()))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
