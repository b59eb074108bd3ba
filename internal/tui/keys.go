package tui

import (
	"github.com/charmbracelet/bubbles/v2/key"

	"github.com/billie-coop/mark/internal/tui/components/dialog"
)

// KeyMap holds the bindings the root model handles before panes see keys.
type KeyMap struct {
	NextTab  key.Binding
	PrevTab  key.Binding
	CloseTab key.Binding
	Input    key.Binding
	Output   key.Binding
	Charts   key.Binding
	Chat     key.Binding
	Refresh  key.Binding
	Commands key.Binding
	Theme    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

// DefaultKeyMap returns the default global bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextTab: key.NewBinding(
			key.WithKeys("ctrl+right", "ctrl+n"),
			key.WithHelp("ctrl+→", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("ctrl+left", "ctrl+p"),
			key.WithHelp("ctrl+←", "previous tab"),
		),
		CloseTab: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("ctrl+w", "close tab"),
		),
		Input: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "input"),
		),
		Output: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("f2", "output"),
		),
		Charts: key.NewBinding(
			key.WithKeys("f3"),
			key.WithHelp("f3", "dashboard"),
		),
		Chat: key.NewBinding(
			key.WithKeys("f4"),
			key.WithHelp("f4", "assistant"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "refresh"),
		),
		Commands: key.NewBinding(
			key.WithKeys("ctrl+k"),
			key.WithHelp("ctrl+k", "commands"),
		),
		Theme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "theme"),
		),
		Help: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("ctrl+g", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp lists the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Input, k.Output, k.Charts, k.Chat, k.CloseTab, k.Refresh, k.Help, k.Quit}
}

// FullHelp groups every binding for the expanded help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.CloseTab},
		{k.Input, k.Output, k.Charts, k.Chat},
		{k.Refresh, k.Commands, k.Theme, k.Help, k.Quit},
	}
}

// Palette command IDs.
const (
	cmdInput     = "tab.input"
	cmdOutput    = "tab.output"
	cmdDashboard = "tab.dashboard"
	cmdAssistant = "tab.assistant"
	cmdNextTab   = "tab.next"
	cmdCloseTab  = "tab.close"
	cmdRefresh   = "refresh"
	cmdTheme     = "theme"
	cmdHelp      = "help"
	cmdQuit      = "quit"
)

// PaletteCommands lists what the command palette offers.
func (k KeyMap) PaletteCommands() []dialog.Command {
	entry := func(id, name, desc string, b key.Binding) dialog.Command {
		return dialog.Command{ID: id, Name: name, Description: desc, Shortcut: b.Help().Key}
	}
	return []dialog.Command{
		entry(cmdInput, "Input", "Start a new analysis", k.Input),
		entry(cmdOutput, "Output", "Browse the result files", k.Output),
		entry(cmdDashboard, "Dashboard", "Show the analytics charts", k.Charts),
		entry(cmdAssistant, "Assistant", "Ask the LLM about the results", k.Chat),
		entry(cmdNextTab, "Next tab", "Switch to the next tab", k.NextTab),
		entry(cmdCloseTab, "Close tab", "Close the open CSV tab", k.CloseTab),
		entry(cmdRefresh, "Refresh", "Reload the active tab", k.Refresh),
		entry(cmdTheme, "Theme", "Switch the color theme", k.Theme),
		entry(cmdHelp, "Help", "Show keys and commands", k.Help),
		entry(cmdQuit, "Quit", "Exit MARK", k.Quit),
	}
}

// HelpSections groups the bindings and assistant commands for the help dialog.
func (k KeyMap) HelpSections() []dialog.HelpSection {
	return []dialog.HelpSection{
		{Title: "Tabs", Entries: dialog.BindingEntries(k.NextTab, k.PrevTab, k.CloseTab, k.Input, k.Output, k.Charts, k.Chat)},
		{Title: "General", Entries: dialog.BindingEntries(k.Refresh, k.Commands, k.Theme, k.Help, k.Quit)},
		{Title: "Assistant", Entries: []dialog.HelpEntry{
			{Key: "/explain", Desc: "explain the analysis results"},
			{Key: "/summary", Desc: "summarize the analyzed project"},
			{Key: "/clear", Desc: "start a new conversation"},
			{Key: "/help", Desc: "show the commands in the chat"},
		}},
	}
}
