package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/billie-coop/mark/internal/api"
	"github.com/billie-coop/mark/internal/tui/components/core"
	"github.com/billie-coop/mark/internal/tui/styles"
)

type openFileMsg struct {
	file api.ResultFile
}

// outputPane lists the result files of the last analysis.
type outputPane struct {
	core.SizeableBase

	list     *api.ResultList
	files    []api.ResultFile
	sections []string
	selected int
}

func newOutputPane() *outputPane {
	return &outputPane{}
}

// SetResults replaces the listing. Consumers come before producers; files
// the backend did not classify are listed last.
func (p *outputPane) SetResults(list *api.ResultList) {
	p.list = list
	p.files = nil
	p.sections = nil
	p.selected = 0
	if list == nil {
		return
	}

	add := func(section string, files []api.ResultFile) {
		for _, f := range files {
			p.files = append(p.files, f)
			p.sections = append(p.sections, section)
		}
	}
	add("Consumers", list.Consumers)
	add("Producers", list.Producers)
	if len(p.files) == 0 {
		add("Files", list.AllFiles)
	}
}

func (p *outputPane) Selected() (api.ResultFile, bool) {
	if p.selected < 0 || p.selected >= len(p.files) {
		return api.ResultFile{}, false
	}
	return p.files[p.selected], true
}

func (p *outputPane) Init() tea.Cmd {
	return nil
}

func (p *outputPane) Update(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyPressMsg)
	if !ok || len(p.files) == 0 {
		return nil
	}
	switch key.String() {
	case "up", "k":
		if p.selected > 0 {
			p.selected--
		}
	case "down", "j":
		if p.selected < len(p.files)-1 {
			p.selected++
		}
	case "enter":
		if f, ok := p.Selected(); ok {
			return func() tea.Msg { return openFileMsg{file: f} }
		}
	}
	return nil
}

func (p *outputPane) View() string {
	s := styles.CurrentTheme().S()

	if p.list == nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			s.Title.Render("Results"),
			s.Muted.Render("Run an analysis, then choose \"View results\" to list its files."),
		)
	}

	lines := []string{s.Title.Render("Results")}
	if p.list.Message != "" {
		lines = append(lines, s.Muted.Render(p.list.Message))
	}
	if len(p.files) == 0 {
		lines = append(lines, "", s.Muted.Render("No result files found."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	// Keep the selection in view.
	rows := max(p.Height-4, 1)
	start := 0
	if p.selected >= rows {
		start = p.selected - rows + 1
	}
	end := min(start+rows, len(p.files))

	section := ""
	for i := start; i < end; i++ {
		if p.sections[i] != section {
			section = p.sections[i]
			lines = append(lines, "", s.Subtitle.Render(section))
		}
		f := p.files[i]
		name := styles.FileIcon + " " + f.Filename
		meta := s.Subtle.Render(fmt.Sprintf("  %s  %s", humanSize(f.Size), modified(f.Modified)))
		if i == p.selected {
			lines = append(lines, s.Title.Render("▸ ")+s.Bold.Render(name)+meta)
		} else {
			lines = append(lines, "  "+s.Text.Render(name)+meta)
		}
	}
	lines = append(lines, "", s.Subtle.Render("↑/↓ select • Enter to open • ctrl+r to refresh"))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func humanSize(n int64) string {
	return humanize.IBytes(uint64(max(n, 0)))
}

func modified(ts float64) string {
	if ts <= 0 {
		return ""
	}
	return time.Unix(int64(ts), 0).Format("2006-01-02 15:04")
}
