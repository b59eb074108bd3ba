// Package chart draws dashboard series as horizontal bar charts.
package chart

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/mark/internal/dashboard"
	"github.com/billie-coop/mark/internal/tui/components/core"
	"github.com/billie-coop/mark/internal/tui/styles"
)

const (
	maxLabelWidth = 24
	minBarWidth   = 10
)

// SelectMsg is sent when the user picks an element of a chart.
type SelectMsg struct {
	Series dashboard.Series
	Index  int
}

// Model renders one series. Pie series are drawn as share-of-total bars.
type Model struct {
	core.FocusableBase
	core.SizeableBase

	series   dashboard.Series
	selected int
}

func New(s dashboard.Series) *Model {
	return &Model{series: s}
}

func (m *Model) Series() dashboard.Series {
	return m.series
}

func (m *Model) Selected() int {
	return m.selected
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) tea.Cmd {
	if !m.IsFocused() || m.series.Len() == 0 {
		return nil
	}
	key, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < m.series.Len()-1 {
			m.selected++
		}
	case "enter":
		s, idx := m.series, m.selected
		return func() tea.Msg { return SelectMsg{Series: s, Index: idx} }
	}
	return nil
}

func (m *Model) View() string {
	theme := styles.CurrentTheme()
	s := theme.S()

	title := s.Subtitle.Render(m.series.Title)
	if m.series.Len() == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, title, s.Muted.Render("No data"))
	}

	labelWidth := 0
	for _, l := range m.series.Labels {
		labelWidth = max(labelWidth, lipgloss.Width(l))
	}
	labelWidth = min(labelWidth, maxLabelWidth)

	values := m.displayValues()
	valueText := make([]string, len(values))
	valueWidth := 0
	for i, v := range values {
		valueText[i] = formatValue(v) + m.series.Unit
		valueWidth = max(valueWidth, len(valueText[i]))
	}

	width := m.Width
	if width <= 0 {
		width = 60
	}
	// marker, label, two spaces, bar, space, value
	barWidth := max(width-2-labelWidth-2-1-valueWidth, minBarWidth)

	peak := 0.0
	for _, v := range values {
		peak = max(peak, v)
	}

	lines := []string{title}
	for i, label := range m.series.Labels {
		marker := "  "
		labelStyle := s.Text
		if m.IsFocused() && i == m.selected {
			marker = s.Title.Render("▸ ")
			labelStyle = s.Bold
		}

		filled := 0
		if peak > 0 {
			filled = int(values[i] / peak * float64(barWidth))
		}
		bar := lipgloss.NewStyle().Foreground(m.color(i)).Render(strings.Repeat(styles.BarFull, filled))
		pad := strings.Repeat(" ", barWidth-filled)

		lines = append(lines, fmt.Sprintf("%s%s  %s%s %s",
			marker,
			labelStyle.Width(labelWidth).Render(truncate(label, labelWidth)),
			bar, pad,
			s.Muted.Render(valueText[i]),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// displayValues scales pie slices to their share of the total.
func (m *Model) displayValues() []float64 {
	if m.series.Kind != dashboard.KindPie || m.series.Unit == "%" {
		return m.series.Values
	}
	total := 0.0
	for _, v := range m.series.Values {
		total += v
	}
	out := make([]float64, len(m.series.Values))
	if total == 0 {
		return out
	}
	for i, v := range m.series.Values {
		out[i] = v / total * 100
	}
	return out
}

func (m *Model) color(i int) color.Color {
	if i < len(m.series.Colors) && m.series.Colors[i] != "" {
		return lipgloss.Color(m.series.Colors[i])
	}
	return styles.CurrentTheme().Primary
}

func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
