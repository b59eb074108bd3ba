package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/mark/internal/app"
	"github.com/billie-coop/mark/internal/tui/components/core"
	"github.com/billie-coop/mark/internal/tui/components/textfield"
	"github.com/billie-coop/mark/internal/tui/styles"
)

const (
	fieldInput = iota
	fieldOutput
	fieldCSV
)

// submitMsg asks the root model to start an analysis.
type submitMsg struct {
	req app.StartRequest
}

// inputPane is the form that starts an analysis.
type inputPane struct {
	core.SizeableBase

	fields []*textfield.Model
	focus  int
	err    string
}

func newInputPane(last app.StartRequest) *inputPane {
	p := &inputPane{
		fields: []*textfield.Model{
			textfield.New("Input folder", "/path/to/project"),
			textfield.New("Output folder", "/path/to/results"),
			textfield.New("GitHub repository CSV (optional)", "/path/to/repos.csv"),
		},
	}
	p.fields[fieldInput].SetValue(last.InputPath)
	p.fields[fieldOutput].SetValue(last.OutputPath)
	p.fields[fieldCSV].SetValue(last.GithubCSV)
	p.fields[fieldInput].Focus()
	return p
}

func (p *inputPane) SetSize(width, height int) tea.Cmd {
	p.SizeableBase.SetSize(width, height)
	for _, f := range p.fields {
		f.SetSize(min(width, 80), 3)
	}
	return nil
}

// SetDisabled locks the fields while an analysis is being started.
func (p *inputPane) SetDisabled(disabled bool) {
	for _, f := range p.fields {
		f.Disabled = disabled
	}
}

func (p *inputPane) request() app.StartRequest {
	return app.StartRequest{
		InputPath:  strings.TrimSpace(p.fields[fieldInput].Value()),
		OutputPath: strings.TrimSpace(p.fields[fieldOutput].Value()),
		GithubCSV:  strings.TrimSpace(p.fields[fieldCSV].Value()),
	}
}

func (p *inputPane) move(delta int) {
	p.fields[p.focus].Blur()
	p.focus = (p.focus + delta + len(p.fields)) % len(p.fields)
	p.fields[p.focus].Focus()
}

func (p *inputPane) Init() tea.Cmd {
	return nil
}

func (p *inputPane) Update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "tab", "down":
			p.move(1)
			return nil
		case "shift+tab", "up":
			p.move(-1)
			return nil
		case "enter":
			req := p.request()
			if req.InputPath == "" || req.OutputPath == "" {
				p.err = "Please enter both an input and an output folder."
				return nil
			}
			p.err = ""
			return func() tea.Msg { return submitMsg{req: req} }
		}
	}
	return p.fields[p.focus].Update(msg)
}

func (p *inputPane) View() string {
	s := styles.CurrentTheme().S()

	parts := []string{
		s.Title.Render("Start an analysis"),
		s.Muted.Render("Point MARK at a project folder and choose where the results go."),
		"",
	}
	for _, f := range p.fields {
		parts = append(parts, f.View(), "")
	}
	if p.err != "" {
		parts = append(parts, s.Error.Render(styles.ErrorIcon+" "+p.err), "")
	}
	parts = append(parts, s.Subtle.Render("Tab to switch fields • Enter to start"))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
