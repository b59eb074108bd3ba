package dialog

import tea "github.com/charmbracelet/bubbletea/v2"

// Dialog is an overlay the Manager stacks over the panes.
type Dialog interface {
	IsOpen() bool
	Update(tea.Msg) tea.Cmd
	View() string
	SetSize(width, height int) tea.Cmd
}

// Manager holds the overlays in stacking order, topmost first. Only the
// topmost open dialog receives keys and is drawn.
type Manager struct {
	dialogs []Dialog
}

// NewManager stacks dialogs with the first one on top.
func NewManager(dialogs ...Dialog) *Manager {
	return &Manager{dialogs: dialogs}
}

// Active returns the topmost open dialog, or nil.
func (m *Manager) Active() Dialog {
	for _, d := range m.dialogs {
		if d.IsOpen() {
			return d
		}
	}
	return nil
}

// IsDialogOpen returns whether any dialog is open
func (m *Manager) IsDialogOpen() bool {
	return m.Active() != nil
}

// Update routes msg to the active dialog.
func (m *Manager) Update(msg tea.Msg) tea.Cmd {
	if d := m.Active(); d != nil {
		return d.Update(msg)
	}
	return nil
}

// View renders the active dialog, or "" when none is open.
func (m *Manager) View() string {
	if d := m.Active(); d != nil {
		return d.View()
	}
	return ""
}

// SetSize sets the size for all dialogs
func (m *Manager) SetSize(width, height int) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.dialogs))
	for _, d := range m.dialogs {
		cmds = append(cmds, d.SetSize(width, height))
	}
	return tea.Batch(cmds...)
}
