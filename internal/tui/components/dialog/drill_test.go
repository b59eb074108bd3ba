package dialog

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/stretchr/testify/assert"

	"github.com/billie-coop/mark/internal/dashboard"
)

func TestDrillDialog_ShowAndClose(t *testing.T) {
	d := NewDrillDialog()
	d.SetSize(120, 40)

	drill := &dashboard.Drill{
		Title:   "Filtered Results (2 items) - type: consumer",
		Filters: []dashboard.Filter{{Key: "type", Value: "consumer"}},
		Count:   2,
		Rows: []dashboard.Row{
			{Project: "alpha", File: "train.py", Line: "12", Libraries: "torch", Keywords: "fit"},
			{Project: "beta", File: "serve.py", Line: "3", Libraries: "sklearn", Keywords: "predict"},
		},
	}
	d.Show(drill)
	assert.True(t, d.IsOpen())
	assert.Same(t, drill, d.Drill())

	view := d.View()
	assert.Contains(t, view, "type=consumer")
	assert.Contains(t, view, "train.py")
	assert.Contains(t, view, "Project")

	d.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.False(t, d.IsOpen())
	assert.Empty(t, d.View())
}
