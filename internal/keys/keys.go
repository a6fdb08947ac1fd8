package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global keybindings for the application.
type KeyMap struct {
	// Navigation
	Down key.Binding
	Up   key.Binding

	// Selection
	Select key.Binding

	// Back / Quit
	Back key.Binding
	Quit key.Binding

	// Search
	Search key.Binding

	// Help toggle
	Help key.Binding

	// Manual refresh
	Refresh key.Binding

	// Inline task edits
	CycleWorkType key.Binding
	CycleWorkFlow key.Binding
	CyclePriority key.Binding
	CycleSprint   key.Binding
	CycleAssignee key.Binding

	// Creation
	NewTask   key.Binding
	NewSprint key.Binding

	// Sprint lifecycle
	EndSprint    key.Binding
	ShowFinished key.Binding

	// Per-sprint assignee filter
	FilterAssignee key.Binding

	// Project roster
	Assign   key.Binding
	Unassign key.Binding

	// Session
	Profile key.Binding
	Logout  key.Binding
}

// DefaultKeyMap returns the default set of keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		CycleWorkType: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "cycle type"),
		),
		CycleWorkFlow: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "cycle status"),
		),
		CyclePriority: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "cycle priority"),
		),
		CycleSprint: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "move sprint"),
		),
		CycleAssignee: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "cycle assignee"),
		),
		NewTask: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new task"),
		),
		NewSprint: key.NewBinding(
			key.WithKeys("S"),
			key.WithHelp("S", "new sprint"),
		),
		EndSprint: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "end sprint"),
		),
		ShowFinished: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "finished sprints"),
		),
		FilterAssignee: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "assignee filter"),
		),
		Assign: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "assign user"),
		),
		Unassign: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "unassign user"),
		),
		Profile: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "edit profile"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "log out"),
		),
	}
}

// ShortHelp returns the most essential keybindings for the compact help view.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{
		k.Up, k.Down, k.Select, k.Back,
		k.Quit, k.Help, k.Search,
	}
}

// FullHelp returns all keybindings grouped by category for the expanded
// help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Back, k.Quit},
		{k.Search, k.Help, k.Refresh, k.FilterAssignee},
		{k.CycleWorkType, k.CycleWorkFlow, k.CyclePriority, k.CycleSprint, k.CycleAssignee},
		{k.NewTask, k.NewSprint, k.EndSprint, k.ShowFinished},
		{k.Assign, k.Unassign, k.Profile, k.Logout},
	}
}
