package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds every binding used by the views
type KeyMap struct {
	// Shell
	Quit      key.Binding
	ShowTasks key.Binding
	ShowNotes key.Binding
	Theme     key.Binding

	// Navigation
	Up    key.Binding
	Down  key.Binding
	Tab   key.Binding
	Enter key.Binding
	Back  key.Binding

	// Tasks
	Toggle         key.Binding
	Delete         key.Binding
	Search         key.Binding
	Add            key.Binding
	Sort           key.Binding
	ClearCompleted key.Binding
	ClearAll       key.Binding

	// Notes
	Save        key.Binding
	NewNote     key.Binding
	DeleteNote  key.Binding
	Export      key.Binding
	ClearEditor key.Binding
}

// DefaultKeyMap returns the default bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:      key.NewBinding(key.WithKeys("ctrl+c", "ctrl+q"), key.WithHelp("ctrl+q", "quit")),
		ShowTasks: key.NewBinding(key.WithKeys("alt+1", "f1"), key.WithHelp("alt+1", "tasks")),
		ShowNotes: key.NewBinding(key.WithKeys("alt+2", "f2"), key.WithHelp("alt+2", "notes")),
		Theme:     key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "theme")),

		Up:    key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:  key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Tab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
		Enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("↵", "select")),
		Back:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),

		Toggle:         key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "done")),
		Delete:         key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Search:         key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Add:            key.NewBinding(key.WithKeys("a", "n"), key.WithHelp("a", "add")),
		Sort:           key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		ClearCompleted: key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear done")),
		ClearAll:       key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "clear all")),

		Save:        key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		NewNote:     key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "new")),
		DeleteNote:  key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "delete")),
		Export:      key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "export")),
		ClearEditor: key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),
	}
}
