package table

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/stretchr/testify/assert"
)

func rows(n int) [][]string {
	out := make([][]string, n)
	for i := range out {
		out[i] = []string{fmt.Sprint(i), fmt.Sprintf("file%d.py", i)}
	}
	return out
}

func TestScrollStaysInBounds(t *testing.T) {
	m := New([]string{"#", "File"}, rows(20))
	m.SetSize(60, 10) // five visible rows

	m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	assert.Equal(t, 0, m.Offset())

	m.Update(tea.KeyPressMsg{Code: tea.KeyPgDown})
	assert.Equal(t, 5, m.Offset())

	m.Update(tea.KeyPressMsg{Code: tea.KeyEnd})
	assert.Equal(t, 15, m.Offset())

	m.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	assert.Equal(t, 15, m.Offset())

	m.Update(tea.KeyPressMsg{Code: tea.KeyHome})
	assert.Equal(t, 0, m.Offset())
}

func TestView(t *testing.T) {
	m := New([]string{"#", "File"}, rows(3))
	view := m.View()
	assert.Contains(t, view, "File")
	assert.Contains(t, view, "file2.py")
	assert.Contains(t, view, "Rows 1-3 of 3")

	m.SetData([]string{"#"}, nil)
	assert.Contains(t, m.View(), "No rows")
}
