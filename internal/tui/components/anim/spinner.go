package anim

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/mark/internal/tui/styles"
)

// SpinnerType selects the animation frames.
type SpinnerType int

const (
	SpinnerDots SpinnerType = iota
	SpinnerLine
)

var frames = map[SpinnerType][]string{
	SpinnerDots: {"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	SpinnerLine: {"-", "\\", "|", "/"},
}

// Spinner is an animated loading indicator. A hidden spinner stops ticking
// and renders nothing.
type Spinner struct {
	Type   SpinnerType
	Label  string
	frame  int
	speed  time.Duration
	hidden bool
}

// NewSpinner creates a visible spinner.
func NewSpinner(t SpinnerType) *Spinner {
	return &Spinner{Type: t, speed: 80 * time.Millisecond}
}

// WithLabel sets the text shown after the frames.
func (s *Spinner) WithLabel(label string) *Spinner {
	s.Label = label
	return s
}

// Show makes the spinner visible and restarts the animation.
func (s *Spinner) Show() tea.Cmd {
	wasHidden := s.hidden
	s.hidden = false
	if wasHidden {
		return s.tick()
	}
	return nil
}

// Hide stops the animation.
func (s *Spinner) Hide() {
	s.hidden = true
}

func (s *Spinner) Visible() bool {
	return !s.hidden
}

func (s *Spinner) Init() tea.Cmd {
	return s.tick()
}

func (s *Spinner) Update(msg tea.Msg) tea.Cmd {
	if msg, ok := msg.(tickMsg); ok && msg.id == s && !s.hidden {
		s.frame++
		return s.tick()
	}
	return nil
}

func (s *Spinner) View() string {
	if s.hidden {
		return ""
	}
	f := frames[s.Type]
	if len(f) == 0 {
		return ""
	}
	current := styles.RenderThemeGradient(f[s.frame%len(f)], false)

	if s.Label != "" {
		return current + " " + styles.CurrentTheme().S().Subtle.Render(s.Label)
	}
	return current
}

func (s *Spinner) tick() tea.Cmd {
	return tea.Tick(s.speed, func(t time.Time) tea.Msg {
		return tickMsg{id: s, time: t}
	})
}

type tickMsg struct {
	id   *Spinner
	time time.Time
}

// ProgressBar draws a gradient bar filled to a fraction of its width.
type ProgressBar struct {
	Width    int
	progress float64
}

func NewProgressBar(width int) *ProgressBar {
	return &ProgressBar{Width: width}
}

// SetPercent sets the fill from a 0-100 percentage, clamped.
func (p *ProgressBar) SetPercent(pct int) {
	p.progress = min(max(float64(pct)/100, 0), 1)
}

func (p *ProgressBar) Progress() float64 {
	return p.progress
}

func (p *ProgressBar) View() string {
	if p.Width <= 0 {
		return ""
	}
	theme := styles.CurrentTheme()
	filled := int(float64(p.Width) * p.progress)
	colors := styles.GradientColors(p.Width)

	var b strings.Builder
	for i := 0; i < p.Width; i++ {
		if i < filled {
			b.WriteString(lipgloss.NewStyle().Foreground(colors[i]).Render(styles.BarFull))
		} else {
			b.WriteString(theme.S().Subtle.Render(styles.BarEmpty))
		}
	}
	return b.String()
}
