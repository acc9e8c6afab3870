package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the pasture key bindings.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Pray    key.Binding
	Adopt   key.Binding
	Rename  key.Binding
	Note    key.Binding
	Delete  key.Binding
	Profile key.Binding
	Help    key.Binding
	Quit    key.Binding

	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pray, k.Adopt, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Pray},
		{k.Adopt, k.Rename, k.Note},
		{k.Delete, k.Profile},
		{k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "previous sheep"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "next sheep"),
		),
		Pray: key.NewBinding(
			key.WithKeys("p", " "),
			key.WithHelp("p/space", "pray"),
		),
		Adopt: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "adopt"),
		),
		Rename: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rename sheep"),
		),
		Note: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "edit note"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "release sheep"),
		),
		Profile: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "shepherd name"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}
