package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/desk/internal/db"
	"github.com/tgienger/desk/internal/logging"
	"github.com/tgienger/desk/internal/store"
	"github.com/tgienger/desk/internal/ui/keys"
	"github.com/tgienger/desk/internal/ui/styles"
	"github.com/tgienger/desk/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewTasks View = iota
	ViewNotes
)

func (v View) String() string {
	if v == ViewNotes {
		return "notes"
	}
	return "tasks"
}

// ParseView maps a saved setting back to a view, defaulting to tasks
func ParseView(s string) View {
	if strings.EqualFold(strings.TrimSpace(s), "notes") {
		return ViewNotes
	}
	return ViewTasks
}

// Settings persists shell preferences between runs
type Settings interface {
	LastView() string
	SetSetting(key, value string) error
}

// NavigateMsg switches the active view
type NavigateMsg struct {
	To View
}

// navHeight is the rows taken by the navigation bar
const navHeight = 2

type App struct {
	settings    Settings
	log         *logging.Logger
	keys        keys.KeyMap
	styles      *styles.Styles
	currentView View
	taskList    *views.TaskListView
	notes       *views.NotesView
	width       int
	height      int
}

// NewApp creates a new application over the two stores
func NewApp(settings Settings, tasks *store.TaskStore, notes *store.NoteStore, log *logging.Logger, exportDir string) *App {
	return &App{
		settings: settings,
		log:      log.WithComponent("app"),
		keys:     keys.DefaultKeyMap(),
		styles:   styles.NewStyles(),
		taskList: views.NewTaskListView(tasks, log),
		notes:    views.NewNotesView(notes, log, exportDir),
	}
}

func (a *App) Init() tea.Cmd {
	// Reopen the last tool
	a.currentView = ParseView(a.settings.LastView())

	return tea.Batch(a.taskList.Init(), a.notes.Init())
}

// CurrentView returns the active view
func (a *App) CurrentView() View {
	return a.currentView
}

func (a *App) navigate(to View) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{To: to} }
}

func (a *App) open(to View) {
	a.currentView = to

	// Save as last opened view
	if err := a.settings.SetSetting(db.SettingLastView, to.String()); err != nil {
		a.log.Warnw("saving last view failed", "error", err)
	}
}

func (a *App) toggleTheme() tea.Cmd {
	t := styles.Toggle()
	a.styles = styles.NewStyles()
	if err := a.settings.SetSetting(db.SettingTheme, t.Name); err != nil {
		a.log.Warnw("saving theme failed", "error", err)
	}
	a.log.Debugw("theme toggled", "theme", t.Name)

	a.taskList.Update(views.ThemeChanged{})
	a.notes.Update(views.ThemeChanged{})
	return nil
}

func (a *App) capturing() bool {
	if a.currentView == ViewNotes {
		return a.notes.Capturing()
	}
	return a.taskList.Capturing()
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		inner := tea.WindowSizeMsg{Width: msg.Width, Height: max(msg.Height-navHeight, 1)}
		// Both views keep their state while hidden
		a.taskList.Update(inner)
		a.notes.Update(inner)
		return a, nil

	case NavigateMsg:
		a.open(msg.To)
		return a, nil

	case views.ThemeChanged:
		a.styles = styles.NewStyles()
		a.taskList.Update(msg)
		a.notes.Update(msg)
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.Quit) {
			// Quitting from an open prompt leaves without saving
			if a.currentView == ViewNotes && !a.notes.Capturing() {
				return a, a.notes.Guard(func() tea.Cmd { return tea.Quit })
			}
			return a, tea.Quit
		}

		if !a.capturing() {
			switch {
			case key.Matches(msg, a.keys.Theme):
				return a, a.toggleTheme()

			case key.Matches(msg, a.keys.ShowTasks):
				if a.currentView == ViewNotes {
					return a, a.notes.Guard(func() tea.Cmd { return a.navigate(ViewTasks) })
				}
				return a, nil

			case key.Matches(msg, a.keys.ShowNotes):
				if a.currentView != ViewNotes {
					a.open(ViewNotes)
				}
				return a, nil
			}
		}
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewTasks:
		_, cmd = a.taskList.Update(msg)
	case ViewNotes:
		_, cmd = a.notes.Update(msg)
	}

	return a, cmd
}

func (a *App) renderNav() string {
	s := a.styles
	items := []struct {
		view  View
		label string
	}{
		{ViewTasks, "📋 Tasks"},
		{ViewNotes, "📝 Notes"},
	}

	var tabs []string
	for _, it := range items {
		if it.view == a.currentView {
			tabs = append(tabs, s.NavActive.Render(it.label))
		} else {
			tabs = append(tabs, s.NavItem.Render(it.label))
		}
	}

	themeLabel := "☀ light"
	if s.Theme.Name == styles.Dark.Name {
		themeLabel = "☾ dark"
	}
	tabs = append(tabs, s.NavItem.Render(themeLabel+" (ctrl+t)"))

	bar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	width := styles.ContentWidth(a.width)
	if width > 0 {
		bar = s.Nav.Width(width).Render(bar)
	} else {
		bar = s.Nav.Render(bar)
	}
	return styles.CenterView(bar, a.width, 1)
}

func (a *App) View() string {
	var body string
	switch a.currentView {
	case ViewNotes:
		body = a.notes.View()
	default:
		body = a.taskList.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, a.renderNav(), "", body)
}
