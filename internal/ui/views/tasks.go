package views

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/desk/internal/logging"
	"github.com/tgienger/desk/internal/models"
	"github.com/tgienger/desk/internal/store"
	"github.com/tgienger/desk/internal/ui/keys"
	"github.com/tgienger/desk/internal/ui/styles"
)

// FocusArea represents which part of the tasks view has focus
type FocusArea int

const (
	FocusAddInput FocusArea = iota
	FocusSearchInput
	FocusTaskList
)

type taskConfirm int

const (
	confirmNone taskConfirm = iota
	confirmDeleteTask
	confirmClearCompleted
	confirmClearAll
)

// TaskListView shows the task list with its add, search and sort controls
type TaskListView struct {
	store  *store.TaskStore
	log    *logging.Logger
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	// UI state
	focus       FocusArea
	cursor      int
	scrollY     int
	visible     []models.Task
	addInput    textinput.Model
	searchInput textinput.Model
	progress    progress.Model

	// Sort menu state
	sortMenuOpen bool
	sortCursor   int

	// Confirmation of destructive actions
	confirm          taskConfirm
	deleteTargetID   int
	deleteTargetName string

	status status

	// Help popup (shown with ?)
	showHelpPopup bool
}

// NewTaskListView creates a new task list view
func NewTaskListView(ts *store.TaskStore, log *logging.Logger) *TaskListView {
	addInput := textinput.New()
	addInput.Placeholder = "New task..."
	addInput.CharLimit = 200

	search := textinput.New()
	search.Placeholder = "Search tasks..."
	search.CharLimit = 100

	v := &TaskListView{
		store:       ts,
		log:         log.WithComponent("tasks-view"),
		styles:      styles.NewStyles(),
		keys:        keys.DefaultKeyMap(),
		focus:       FocusTaskList,
		addInput:    addInput,
		searchInput: search,
	}
	v.applyTheme()
	v.refresh()
	return v
}

// Init initializes the view
func (v *TaskListView) Init() tea.Cmd {
	v.refresh()
	return nil
}

// Capturing reports whether a popup owns the keyboard
func (v *TaskListView) Capturing() bool {
	return v.showHelpPopup || v.confirm != confirmNone || v.sortMenuOpen
}

func (v *TaskListView) applyTheme() {
	v.styles = styles.NewStyles()
	v.progress = progress.New(
		progress.WithSolidFill(string(v.styles.Theme.Success)),
		progress.WithoutPercentage(),
	)
	v.progress.Width = clamp(styles.ContentWidth(v.width)-4, 10, 60)
}

// refresh recomputes the displayed rows from the store
func (v *TaskListView) refresh() {
	v.visible = v.store.Visible()
	if v.cursor >= len(v.visible) {
		v.cursor = max(0, len(v.visible)-1)
	}
	v.ensureVisible()
}

func (v *TaskListView) setStatus(kind statusKind, format string, args ...any) {
	v.status = status{kind: kind, text: fmt.Sprintf(format, args...)}
}

// reportErr shows a store error; persistence failures leave memory ahead of disk
func (v *TaskListView) reportErr(action string, err error) {
	var perr *store.PersistenceError
	switch {
	case errors.As(err, &perr):
		v.log.Errorw("task persistence failed", "action", action, "error", err)
		v.setStatus(statusError, "Could not save: %v", perr.Err)
	case errors.Is(err, store.ErrNotFound):
		v.setStatus(statusWarning, "That task no longer exists")
	default:
		v.setStatus(statusError, "%s failed: %v", action, err)
	}
}

// Update handles messages
func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(v.width)
		v.addInput.Width = clamp(contentWidth-10, 10, 60)
		v.searchInput.Width = clamp(contentWidth-10, 10, 40)
		v.progress.Width = clamp(contentWidth-4, 10, 60)
		v.ensureVisible()
		return v, nil

	case ThemeChanged:
		v.applyTheme()
		return v, nil

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirm != confirmNone {
			return v.updateConfirm(msg)
		}

		if v.sortMenuOpen {
			return v.updateSortMenu(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch v.focus {
	case FocusAddInput:
		return v.updateAddInput(msg)
	case FocusSearchInput:
		return v.updateSearchInput(msg)
	}

	switch {
	case key.Matches(msg, v.keys.Tab):
		v.cycleFocus(1)
		return v, textinput.Blink

	case msg.String() == "shift+tab":
		v.cycleFocus(-1)
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.visible)-1 {
			v.cursor++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Toggle), key.Matches(msg, v.keys.Enter):
		if task, ok := v.selected(); ok {
			if _, err := v.store.Toggle(task.ID); err != nil {
				v.reportErr("Toggle", err)
			} else {
				v.status = status{}
			}
			v.refresh()
		}
		return v, nil

	case key.Matches(msg, v.keys.Delete):
		if task, ok := v.selected(); ok {
			v.confirm = confirmDeleteTask
			v.deleteTargetID = task.ID
			v.deleteTargetName = task.Text
		}
		return v, nil

	case key.Matches(msg, v.keys.Add):
		v.setFocus(FocusAddInput)
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Search):
		v.setFocus(FocusSearchInput)
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Sort):
		v.sortMenuOpen = true
		v.sortCursor = 0
		return v, nil

	case key.Matches(msg, v.keys.ClearCompleted):
		if v.store.CompletedCount() == 0 {
			v.setStatus(statusInfo, "No completed tasks to delete")
			return v, nil
		}
		v.confirm = confirmClearCompleted
		return v, nil

	case key.Matches(msg, v.keys.ClearAll):
		if v.store.Len() == 0 {
			v.setStatus(statusInfo, "No tasks to delete")
			return v, nil
		}
		v.confirm = confirmClearAll
		return v, nil

	case key.Matches(msg, v.keys.Back):
		if v.store.Query() != "" {
			v.searchInput.Reset()
			v.store.SetFilter("")
			v.refresh()
		}
		return v, nil

	case msg.String() == "?":
		v.showHelpPopup = true
		return v, nil
	}

	return v, nil
}

func (v *TaskListView) updateAddInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.setFocus(FocusTaskList)
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.cycleFocus(1)
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Enter):
		task, err := v.store.Add(v.addInput.Value())
		switch {
		case errors.Is(err, store.ErrValidation):
			// Blank input is ignored
			return v, nil
		case err != nil:
			v.reportErr("Add", err)
		default:
			v.log.Debugw("task added", "id", task.ID)
			v.status = status{}
		}
		v.addInput.Reset()
		v.refresh()
		return v, nil
	}

	var cmd tea.Cmd
	v.addInput, cmd = v.addInput.Update(msg)
	return v, cmd
}

func (v *TaskListView) updateSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Enter):
		v.setFocus(FocusTaskList)
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.cycleFocus(1)
		return v, nil
	}

	// Filter is recomputed on every keystroke
	var cmd tea.Cmd
	v.searchInput, cmd = v.searchInput.Update(msg)
	v.store.SetFilter(v.searchInput.Value())
	v.cursor = 0
	v.scrollY = 0
	v.refresh()
	return v, cmd
}

func (v *TaskListView) updateSortMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.sortMenuOpen = false
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.sortCursor > 0 {
			v.sortCursor--
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.sortCursor < len(models.SortOrders)-1 {
			v.sortCursor++
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		order := models.SortOrders[v.sortCursor]
		v.sortMenuOpen = false
		if err := v.store.Sort(order); err != nil {
			v.reportErr("Sort", err)
		} else {
			v.setStatus(statusInfo, "Sorted: %s", order.Label())
		}
		v.refresh()
		return v, nil
	}

	return v, nil
}

func (v *TaskListView) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		kind := v.confirm
		v.confirm = confirmNone
		switch kind {
		case confirmDeleteTask:
			if err := v.store.Delete(v.deleteTargetID); err != nil {
				v.reportErr("Delete", err)
			} else {
				v.status = status{}
			}
		case confirmClearCompleted:
			n, err := v.store.ClearCompleted()
			if err != nil {
				v.reportErr("Clear", err)
			} else {
				v.setStatus(statusSuccess, "%d %s deleted", n, plural(n, "task"))
			}
		case confirmClearAll:
			n, err := v.store.ClearAll()
			if err != nil {
				v.reportErr("Clear", err)
			} else {
				v.setStatus(statusSuccess, "%d %s deleted", n, plural(n, "task"))
			}
		}
		v.refresh()
		return v, nil
	case "n", "N", "esc":
		v.confirm = confirmNone
		return v, nil
	}
	return v, nil
}

func (v *TaskListView) selected() (models.Task, bool) {
	if v.cursor < 0 || v.cursor >= len(v.visible) {
		return models.Task{}, false
	}
	return v.visible[v.cursor], true
}

func (v *TaskListView) setFocus(f FocusArea) {
	v.addInput.Blur()
	v.searchInput.Blur()
	v.focus = f
	switch f {
	case FocusAddInput:
		v.addInput.Focus()
	case FocusSearchInput:
		v.searchInput.Focus()
	}
}

func (v *TaskListView) cycleFocus(dir int) {
	v.setFocus(FocusArea((int(v.focus) + dir + 3) % 3))
}

// visibleRows is the number of task rows that fit under the header and stats
func (v *TaskListView) visibleRows() int {
	return max(v.height-16, 1)
}

func (v *TaskListView) ensureVisible() {
	rows := v.visibleRows()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	} else if v.cursor >= v.scrollY+rows {
		v.scrollY = v.cursor - rows + 1
	}
	if v.scrollY < 0 {
		v.scrollY = 0
	}
}

// View renders the view
func (v *TaskListView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirm != confirmNone {
		return v.renderConfirm()
	}

	var b strings.Builder

	b.WriteString(v.renderHeader())
	b.WriteString("\n\n")

	if v.sortMenuOpen {
		b.WriteString(v.renderSortMenu())
	} else {
		b.WriteString(v.renderTaskList())
	}

	b.WriteString("\n\n")
	b.WriteString(v.renderStats())
	if line := v.status.render(v.styles); line != "" {
		b.WriteString("\n")
		b.WriteString(line)
	}
	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskListView) renderHeader() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	addStyle := s.Input
	if v.focus == FocusAddInput {
		addStyle = s.InputFocused
	}
	searchStyle := s.Input
	if v.focus == FocusSearchInput {
		searchStyle = s.InputFocused
	}

	addWidth := clamp(contentWidth-16, 20, 64)
	addBox := addStyle.Width(addWidth).Render(v.addInput.View())
	addBtn := s.ButtonPrimary.Render("+ Add")

	searchBox := searchStyle.Width(clamp(contentWidth-40, 20, 40)).Render(v.searchInput.View())

	return lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("📋 Tasks"),
		lipgloss.JoinHorizontal(lipgloss.Center, addBox, " ", addBtn),
		searchBox,
	)
}

func (v *TaskListView) renderTaskList() string {
	s := v.styles

	if len(v.visible) == 0 {
		if v.store.Query() != "" {
			return s.TitleMuted.Render("No task matches \"" + v.store.Query() + "\"")
		}
		return s.TitleMuted.Render("📭 No tasks to display. Press 'a' to add one.")
	}

	var items []string
	endIdx := min(v.scrollY+v.visibleRows(), len(v.visible))
	for i := v.scrollY; i < endIdx; i++ {
		items = append(items, v.renderTaskItem(v.visible[i], i == v.cursor && v.focus == FocusTaskList))
	}

	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (v *TaskListView) renderTaskItem(task models.Task, selected bool) string {
	s := v.styles
	width := max(styles.ContentWidth(v.width)-2, 30)

	checkbox := "[ ]"
	textStyle := s.TaskText
	if task.Completed {
		checkbox = "[x]"
		textStyle = s.TaskDone
	}

	date := s.TaskDate.Render(task.Date)
	textWidth := max(width-lipgloss.Width(checkbox)-lipgloss.Width(date)-6, 10)
	label := textStyle.Width(textWidth).MaxHeight(1).Render(task.Text)

	row := lipgloss.JoinHorizontal(lipgloss.Top, checkbox, " ", label, "  ", date)
	if selected {
		return s.ListSelected.Width(width).Render(row)
	}
	return s.ListItem.Width(width).Render(row)
}

func (v *TaskListView) renderSortMenu() string {
	s := v.styles
	items := []string{s.Title.Render("Sort tasks"), ""}
	for i, order := range models.SortOrders {
		itemStyle := s.ListItem
		if i == v.sortCursor {
			itemStyle = s.ListSelected
		}
		items = append(items, itemStyle.Render(order.Label()))
	}
	items = append(items, "", s.TitleMuted.Render("↵: apply • Esc: cancel"))
	return s.Popup.Render(lipgloss.JoinVertical(lipgloss.Left, items...))
}

func (v *TaskListView) renderStats() string {
	s := v.styles
	st := v.store.Stats()
	line := fmt.Sprintf("📊 Total: %d | ✅ Done: %d | ⭕ Remaining: %d | 📈 Progress: %.0f%%",
		st.Total, st.Completed, st.Remaining, st.Percent)
	return s.Panel.Render(lipgloss.JoinVertical(lipgloss.Left,
		s.TaskText.Render(line),
		v.progress.ViewAs(st.Percent/100),
	))
}

func (v *TaskListView) renderHelp() string {
	s := v.styles
	switch v.focus {
	case FocusAddInput:
		return s.Help.Render(fmt.Sprintf("%s add • %s next field • %s back",
			s.HelpKey.Render("↵"), s.HelpKey.Render("tab"), s.HelpKey.Render("esc")))
	case FocusSearchInput:
		return s.Help.Render(fmt.Sprintf("type to filter • %s done",
			s.HelpKey.Render("↵/esc")))
	}

	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 60 {
		return s.Help.Render(s.HelpKey.Render("?") + " help")
	}
	return s.Help.Render(
		fmt.Sprintf("%s done • %s add • %s del • %s search • %s sort • %s clear done • %s clear all • %s help",
			s.HelpKey.Render("space"),
			s.HelpKey.Render("a"),
			s.HelpKey.Render("d"),
			s.HelpKey.Render("/"),
			s.HelpKey.Render("s"),
			s.HelpKey.Render("C"),
			s.HelpKey.Render("X"),
			s.HelpKey.Render("?"),
		),
	)
}

func (v *TaskListView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("space") + "   toggle done",
		s.HelpKey.Render("a") + "       add task",
		s.HelpKey.Render("d") + "       delete task",
		s.HelpKey.Render("/") + "       search",
		s.HelpKey.Render("s") + "       sort",
		s.HelpKey.Render("C") + "       delete completed tasks",
		s.HelpKey.Render("X") + "       delete all tasks",
		s.HelpKey.Render("tab") + "     next field",
		s.HelpKey.Render("alt+2") + "   notes",
		s.HelpKey.Render("ctrl+t") + "  toggle theme",
		s.HelpKey.Render("ctrl+q") + "  quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Popup.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *TaskListView) renderConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	var title, detail string
	switch v.confirm {
	case confirmDeleteTask:
		title = "Delete Task?"
		detail = fmt.Sprintf("\"%s\"", v.deleteTargetName)
	case confirmClearCompleted:
		n := v.store.CompletedCount()
		title = "Delete Completed Tasks?"
		detail = fmt.Sprintf("%d completed %s will be deleted.", n, plural(n, "task"))
	case confirmClearAll:
		title = "⚠️ Delete ALL Tasks?"
		detail = fmt.Sprintf("All %d tasks will be deleted. This cannot be undone!", v.store.Len())
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Foreground(s.Theme.Error).Render(title),
		"",
		s.TitleMuted.Render(detail),
		"",
		lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonDanger.Render(" Y - Yes "),
			"  ",
			s.Button.Render(" N - No "),
		),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}
