package dialog

import (
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/mark/internal/tui/components/anim"
	"github.com/billie-coop/mark/internal/tui/components/core"
	"github.com/billie-coop/mark/internal/tui/styles"
)

const (
	popupTextWidth    = 52
	defaultActionText = "OK"
	popupTimerID      = "popup"
)

// Action runs when the popup's action button is pressed.
type Action func() tea.Cmd

// PopupClosedMsg is sent after the popup hides.
type PopupClosedMsg struct{}

// PopupCancelMsg asks the owner to stop the work the popup is waiting on.
type PopupCancelMsg struct{}

// Popup is the loading dialog shown while an analysis runs. It has a
// spinner, a line of status text and an action button that starts hidden.
// Pressing the button runs the added actions and then hides the popup.
type Popup struct {
	*BaseDialog

	text          string
	spinner       *anim.Spinner
	progress      *anim.ProgressBar
	showProgress  bool
	timer         *core.Timer
	actionLabel   string
	actionVisible bool
	actions       []Action
}

func NewPopup() *Popup {
	sp := anim.NewSpinner(anim.SpinnerDots)
	sp.Hide()
	return &Popup{
		BaseDialog:  NewBaseDialog(""),
		spinner:     sp,
		progress:    anim.NewProgressBar(popupTextWidth),
		timer:       core.NewTimer(popupTimerID, time.Second),
		actionLabel: defaultActionText,
	}
}

// Show opens the popup with the spinner running. Actions added to an
// earlier popup are dropped.
func (p *Popup) Show(title, text string) tea.Cmd {
	p.SetTitle(title)
	p.text = text
	p.actions = nil
	p.actionVisible = false
	p.actionLabel = defaultActionText
	p.showProgress = false
	p.progress.SetPercent(0)

	return tea.Batch(p.Open(), p.spinner.Show(), p.timer.Start())
}

// Hide closes the popup and stops its animation.
func (p *Popup) Hide() tea.Cmd {
	if !p.IsOpen() {
		return nil
	}
	p.spinner.Hide()
	p.timer.Stop()
	p.Close()
	return func() tea.Msg { return PopupClosedMsg{} }
}

func (p *Popup) SetText(text string) {
	p.text = text
}

func (p *Popup) Text() string {
	return p.text
}

// SetProgress shows the progress bar filled to pct percent.
func (p *Popup) SetProgress(pct int) {
	p.showProgress = true
	p.progress.SetPercent(pct)
}

// HideSpinner stops the spinner and freezes the elapsed time.
func (p *Popup) HideSpinner() {
	p.spinner.Hide()
	p.timer.Stop()
}

func (p *Popup) SpinnerVisible() bool {
	return p.spinner.Visible()
}

// AddAction adds a to the actions run when the button is pressed.
func (p *Popup) AddAction(a Action) {
	p.actions = append(p.actions, a)
}

// ShowAction reveals the button. An empty label keeps the current one.
func (p *Popup) ShowAction(label string) {
	if label != "" {
		p.actionLabel = label
	}
	p.actionVisible = true
}

func (p *Popup) ActionVisible() bool {
	return p.actionVisible
}

func (p *Popup) ActionLabel() string {
	return p.actionLabel
}

func (p *Popup) Init() tea.Cmd {
	return nil
}

func (p *Popup) Update(msg tea.Msg) tea.Cmd {
	if !p.IsOpen() {
		return nil
	}

	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "enter", "space":
			if p.actionVisible {
				return p.press()
			}
		case "esc":
			if p.spinner.Visible() {
				return func() tea.Msg { return PopupCancelMsg{} }
			}
			return p.Hide()
		}
		return nil
	}

	return tea.Batch(p.spinner.Update(msg), p.timer.Update(msg))
}

func (p *Popup) press() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(p.actions)+1)
	for _, a := range p.actions {
		cmds = append(cmds, a())
	}
	cmds = append(cmds, p.Hide())
	return tea.Batch(cmds...)
}

func (p *Popup) View() string {
	if !p.IsOpen() {
		return ""
	}
	s := styles.CurrentTheme().S()

	var lines []string
	if p.spinner.Visible() {
		elapsed := s.Subtle.Render(core.FormatHMS(p.timer.Elapsed()))
		lines = append(lines, p.spinner.View()+"  "+elapsed, "")
	}
	lines = append(lines, s.Text.Width(popupTextWidth).Render(p.text))
	if p.showProgress {
		lines = append(lines, "", p.progress.View())
	}
	if p.actionVisible {
		lines = append(lines, "", buttons([]string{p.actionLabel}, 0))
	}

	help := "Esc to cancel"
	if !p.spinner.Visible() {
		help = "Esc to close"
	}
	if p.actionVisible {
		help = "Enter to continue • " + help
	}
	lines = append(lines, "", s.Subtle.Italic(true).Render(help))

	return p.RenderDialog(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
