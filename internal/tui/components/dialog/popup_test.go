package dialog

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	enter = tea.KeyPressMsg{Code: tea.KeyEnter}
	esc   = tea.KeyPressMsg{Code: tea.KeyEscape}
)

func TestPopup_ShowStartsSpinnerWithoutAction(t *testing.T) {
	p := NewPopup()
	assert.False(t, p.IsOpen())

	cmd := p.Show("Analysis", "Validating folders...")
	require.NotNil(t, cmd)

	assert.True(t, p.IsOpen())
	assert.True(t, p.SpinnerVisible())
	assert.False(t, p.ActionVisible())
	assert.Equal(t, "Validating folders...", p.Text())
	assert.Equal(t, "Analysis", p.Title())
	assert.Contains(t, p.View(), "Validating folders...")
}

func TestPopup_EnterIgnoredUntilActionShown(t *testing.T) {
	p := NewPopup()
	p.Show("Analysis", "running")

	assert.Nil(t, p.Update(enter))
	assert.True(t, p.IsOpen())
}

func TestPopup_ActionRunsThenHides(t *testing.T) {
	p := NewPopup()
	p.Show("Analysis", "running")

	var calls []string
	p.AddAction(func() tea.Cmd { calls = append(calls, "first"); return nil })
	p.AddAction(func() tea.Cmd { calls = append(calls, "second"); return nil })
	p.HideSpinner()
	p.SetText("done")
	p.ShowAction("View results")

	assert.False(t, p.SpinnerVisible())
	assert.Equal(t, "View results", p.ActionLabel())
	assert.Contains(t, p.View(), "View results")

	cmd := p.Update(enter)
	require.NotNil(t, cmd)
	assert.Equal(t, []string{"first", "second"}, calls)
	assert.False(t, p.IsOpen())
}

func TestPopup_DefaultActionOnlyHides(t *testing.T) {
	p := NewPopup()
	p.Show("Analysis", "failed")
	p.HideSpinner()
	p.ShowAction("")

	assert.Equal(t, "OK", p.ActionLabel())
	p.Update(enter)
	assert.False(t, p.IsOpen())
}

func TestPopup_ShowDropsEarlierActions(t *testing.T) {
	p := NewPopup()
	p.Show("first", "")
	called := false
	p.AddAction(func() tea.Cmd { called = true; return nil })

	p.Show("second", "")
	p.ShowAction("Close")
	p.Update(enter)

	assert.False(t, called)
}

func TestPopup_EscWhileRunningAsksToCancel(t *testing.T) {
	p := NewPopup()
	p.Show("Analysis", "running")

	cmd := p.Update(esc)
	require.NotNil(t, cmd)
	assert.IsType(t, PopupCancelMsg{}, cmd())
	assert.True(t, p.IsOpen())
}

func TestPopup_EscAfterSpinnerStopsCloses(t *testing.T) {
	p := NewPopup()
	p.Show("Analysis", "failed")
	p.HideSpinner()

	cmd := p.Update(esc)
	require.NotNil(t, cmd)
	assert.IsType(t, PopupClosedMsg{}, cmd())
	assert.False(t, p.IsOpen())
	assert.Empty(t, p.View())
}

func TestPopup_HideWhenClosed(t *testing.T) {
	p := NewPopup()
	assert.Nil(t, p.Hide())
}

func TestPopup_Progress(t *testing.T) {
	p := NewPopup()
	p.Show("Analysis", "running")
	assert.NotContains(t, p.View(), "░")

	p.SetProgress(40)
	assert.Contains(t, p.View(), "░")
}
