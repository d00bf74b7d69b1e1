package views

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/tgienger/desk/internal/logging"
	"github.com/tgienger/desk/internal/models"
	"github.com/tgienger/desk/internal/store"
	"github.com/tgienger/desk/internal/ui/keys"
	"github.com/tgienger/desk/internal/ui/styles"
)

type noteItem struct {
	note models.Note
}

func (i noteItem) Title() string       { return i.note.Title }
func (i noteItem) Description() string { return i.note.DateModified }
func (i noteItem) FilterValue() string { return i.note.Title }

type noteDelegate struct {
	styles  *styles.Styles
	width   int
	current int
	hasCur  bool
}

func (d *noteDelegate) Height() int                               { return 2 }
func (d *noteDelegate) Spacing() int                              { return 1 }
func (d *noteDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d *noteDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	n, ok := item.(noteItem)
	if !ok {
		return
	}

	width := max(d.width-2, 12)
	title := n.Title()
	if d.hasCur && n.note.ID == d.current {
		title = "● " + title
	}

	var titleStyle, descStyle lipgloss.Style
	if index == m.Index() {
		titleStyle = d.styles.ListSelected.Width(width).MaxHeight(1)
		descStyle = d.styles.ListSelected.Foreground(d.styles.Theme.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width).MaxHeight(1)
		descStyle = d.styles.ListItem.Foreground(d.styles.Theme.ForegroundDim).Width(width)
	}

	fmt.Fprintf(w, "%s\n%s", titleStyle.Render(title), descStyle.Render(n.Description()))
}

type noteFocus int

const (
	noteFocusList noteFocus = iota
	noteFocusTitle
	noteFocusBody
)

type notePrompt int

const (
	promptNone notePrompt = iota
	promptUnsaved
	promptDelete
	promptClearBody
	promptExport
)

// NotesView is the note list beside a title and body editor
type NotesView struct {
	store     *store.NoteStore
	log       *logging.Logger
	exportDir string
	styles    *styles.Styles
	keys      keys.KeyMap

	width  int
	height int

	list     list.Model
	delegate *noteDelegate
	title    textinput.Model
	body     textarea.Model
	focus    noteFocus

	prompt           notePrompt
	pending          func() tea.Cmd
	deleteTargetID   int
	deleteTargetName string
	exportPath       textinput.Model

	status status

	showHelpPopup bool
}

// NewNotesView creates the notes view; exports are suggested under exportDir
func NewNotesView(ns *store.NoteStore, log *logging.Logger, exportDir string) *NotesView {
	s := styles.NewStyles()

	title := textinput.New()
	title.Placeholder = "Title"
	title.CharLimit = 200

	body := textarea.New()
	body.Placeholder = "Write your note..."
	body.ShowLineNumbers = false
	body.CharLimit = 0
	// ctrl+n belongs to the view
	body.KeyMap.LineNext.SetKeys("down")

	exportPath := textinput.New()
	exportPath.Placeholder = "Export path"
	exportPath.CharLimit = 500

	delegate := &noteDelegate{styles: s, width: 30}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Notes"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.Styles.Title = s.Title

	v := &NotesView{
		store:      ns,
		log:        log.WithComponent("notes-view"),
		exportDir:  exportDir,
		styles:     s,
		keys:       keys.DefaultKeyMap(),
		list:       l,
		delegate:   delegate,
		title:      title,
		body:       body,
		exportPath: exportPath,
	}
	v.loadEditor()
	v.refreshList()
	v.setFocus(noteFocusTitle)
	return v
}

// Init initializes the view
func (v *NotesView) Init() tea.Cmd {
	v.refreshList()
	return textinput.Blink
}

// Capturing reports whether a prompt or popup owns the keyboard
func (v *NotesView) Capturing() bool {
	return v.showHelpPopup || v.prompt != promptNone
}

// Guard runs action at once when the editor holds no unsaved changes to the
// current note. Otherwise it asks to save, discard or cancel first.
func (v *NotesView) Guard(action func() tea.Cmd) tea.Cmd {
	if !v.Dirty() {
		return action()
	}
	v.prompt = promptUnsaved
	v.pending = action
	return nil
}

// Dirty reports whether the editor differs from the current note
func (v *NotesView) Dirty() bool {
	return v.store.Dirty(v.title.Value(), v.body.Value())
}

// Editor returns the title and body buffers
func (v *NotesView) Editor() (title, body string) {
	return v.title.Value(), v.body.Value()
}

func (v *NotesView) applyTheme() {
	v.styles = styles.NewStyles()
	v.delegate.styles = v.styles
	v.list.Styles.Title = v.styles.Title
}

// refreshList reloads the list from the store, keeping the current note highlighted
func (v *NotesView) refreshList() {
	notes := v.store.List()
	items := make([]list.Item, len(notes))
	for i, n := range notes {
		items[i] = noteItem{note: n}
	}
	v.list.SetItems(items)

	v.delegate.current, v.delegate.hasCur = v.store.CurrentID()
	if v.delegate.hasCur {
		for i, n := range notes {
			if n.ID == v.delegate.current {
				v.list.Select(i)
				break
			}
		}
	}
}

func (v *NotesView) setStatus(kind statusKind, format string, args ...any) {
	v.status = status{kind: kind, text: fmt.Sprintf(format, args...)}
}

func (v *NotesView) reportErr(action string, err error) {
	var perr *store.PersistenceError
	switch {
	case errors.As(err, &perr):
		v.log.Errorw("note persistence failed", "action", action, "error", err)
		v.setStatus(statusError, "Could not save: %v", perr.Err)
	case errors.Is(err, store.ErrNotFound):
		v.setStatus(statusWarning, "That note no longer exists")
	case errors.Is(err, store.ErrValidation):
		v.setStatus(statusWarning, "Title and content are required")
	default:
		v.setStatus(statusError, "%s failed: %v", action, err)
	}
}

func (v *NotesView) setFocus(f noteFocus) {
	v.title.Blur()
	v.body.Blur()
	v.focus = f
	switch f {
	case noteFocusTitle:
		v.title.Focus()
	case noteFocusBody:
		v.body.Focus()
	}
}

// loadEditor fills the buffers from the note under edit, or clears them
func (v *NotesView) loadEditor() {
	if n, ok := v.store.Current(); ok {
		v.title.SetValue(n.Title)
		v.body.SetValue(n.Content)
		return
	}
	v.title.Reset()
	v.body.Reset()
}

func (v *NotesView) save() error {
	n, err := v.store.Save(v.title.Value(), v.body.Value())
	v.refreshList()
	if err != nil {
		v.reportErr("Save", err)
		return err
	}
	v.log.Debugw("note saved", "id", n.ID)
	v.setStatus(statusSuccess, "Saved \"%s\"", n.Title)
	return nil
}

func (v *NotesView) newNote() tea.Cmd {
	v.store.New()
	v.loadEditor()
	v.refreshList()
	v.status = status{}
	v.setFocus(noteFocusTitle)
	return textinput.Blink
}

func (v *NotesView) selectNote(id int) tea.Cmd {
	if _, err := v.store.Select(id); err != nil {
		v.reportErr("Open", err)
		v.refreshList()
		return nil
	}
	v.loadEditor()
	v.refreshList()
	v.status = status{}
	v.setFocus(noteFocusBody)
	return textarea.Blink
}

// Update handles messages
func (v *NotesView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.layout()
		return v, nil

	case ThemeChanged:
		v.applyTheme()
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		switch v.prompt {
		case promptUnsaved:
			return v.updateUnsaved(msg)
		case promptDelete, promptClearBody:
			return v.updateConfirm(msg)
		case promptExport:
			return v.updateExport(msg)
		}

		return v.updateNormal(msg)
	}

	return v.forward(msg)
}

func (v *NotesView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Save):
		_ = v.save()
		return v, nil

	case key.Matches(msg, v.keys.NewNote):
		return v, v.Guard(v.newNote)

	case key.Matches(msg, v.keys.DeleteNote):
		target, ok := v.deleteTarget()
		if !ok {
			v.setStatus(statusInfo, "No note selected")
			return v, nil
		}
		v.prompt = promptDelete
		v.deleteTargetID = target.ID
		v.deleteTargetName = target.Title
		return v, nil

	case key.Matches(msg, v.keys.ClearEditor):
		if v.body.Value() == "" {
			return v, nil
		}
		v.prompt = promptClearBody
		return v, nil

	case key.Matches(msg, v.keys.Export):
		if strings.TrimSpace(v.body.Value()) == "" {
			v.setStatus(statusWarning, "Nothing to export")
			return v, nil
		}
		v.prompt = promptExport
		v.exportPath.SetValue(filepath.Join(v.exportDir, store.ExportFilename(v.title.Value())))
		v.exportPath.CursorEnd()
		return v, v.exportPath.Focus()

	case key.Matches(msg, v.keys.Tab):
		v.setFocus((v.focus + 1) % 3)
		return v, textinput.Blink

	case msg.String() == "shift+tab":
		v.setFocus((v.focus + 2) % 3)
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Back):
		if v.focus != noteFocusList {
			v.setFocus(noteFocusList)
		}
		return v, nil
	}

	if v.focus == noteFocusList {
		switch {
		case key.Matches(msg, v.keys.Enter):
			item, ok := v.list.SelectedItem().(noteItem)
			if !ok {
				return v, nil
			}
			id := item.note.ID
			return v, v.Guard(func() tea.Cmd { return v.selectNote(id) })
		case msg.String() == "?":
			v.showHelpPopup = true
			return v, nil
		}
	}

	if v.focus == noteFocusTitle && key.Matches(msg, v.keys.Enter) {
		v.setFocus(noteFocusBody)
		return v, textarea.Blink
	}

	return v.forward(msg)
}

// forward hands msg to the focused component
func (v *NotesView) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch v.focus {
	case noteFocusList:
		v.list, cmd = v.list.Update(msg)
	case noteFocusTitle:
		v.title, cmd = v.title.Update(msg)
	case noteFocusBody:
		v.body, cmd = v.body.Update(msg)
	}
	return v, cmd
}

// deleteTarget is the highlighted note when the list has focus, else the note under edit
func (v *NotesView) deleteTarget() (models.Note, bool) {
	if v.focus == noteFocusList {
		if item, ok := v.list.SelectedItem().(noteItem); ok {
			return item.note, true
		}
		return models.Note{}, false
	}
	return v.store.Current()
}

func (v *NotesView) updateUnsaved(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.prompt = promptNone
		action := v.pending
		v.pending = nil
		if err := v.save(); err != nil {
			return v, nil
		}
		return v, action()
	case "n", "N":
		v.prompt = promptNone
		action := v.pending
		v.pending = nil
		// Drop the edits so the next visit starts from the stored note
		v.loadEditor()
		return v, action()
	case "esc":
		v.prompt = promptNone
		v.pending = nil
		return v, nil
	}
	return v, nil
}

func (v *NotesView) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		kind := v.prompt
		v.prompt = promptNone
		switch kind {
		case promptDelete:
			reset, err := v.store.Delete(v.deleteTargetID)
			if reset {
				v.loadEditor()
			}
			v.refreshList()
			if err != nil {
				v.reportErr("Delete", err)
				return v, nil
			}
			v.setStatus(statusSuccess, "Deleted \"%s\"", v.deleteTargetName)
		case promptClearBody:
			v.body.Reset()
			v.setFocus(noteFocusBody)
		}
		return v, nil
	case "n", "N", "esc":
		v.prompt = promptNone
		return v, nil
	}
	return v, nil
}

func (v *NotesView) updateExport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.prompt = promptNone
		v.exportPath.Blur()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		path := strings.TrimSpace(v.exportPath.Value())
		if path == "" {
			return v, nil
		}
		v.prompt = promptNone
		v.exportPath.Blur()

		err := store.Export(path, v.title.Value(), v.body.Value())
		switch {
		case errors.Is(err, store.ErrValidation):
			v.setStatus(statusWarning, "Nothing to export")
		case err != nil:
			v.log.Errorw("export failed", "path", path, "error", err)
			v.setStatus(statusError, "Export failed: %v", err)
		default:
			v.log.Infow("note exported", "path", path)
			v.setStatus(statusSuccess, "Exported to %s", path)
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.exportPath, cmd = v.exportPath.Update(msg)
	return v, cmd
}

func (v *NotesView) listWidth() int {
	return clamp(styles.ContentWidth(v.width)/3, 20, 34)
}

func (v *NotesView) layout() {
	contentWidth := styles.ContentWidth(v.width)
	listWidth := v.listWidth()
	editorWidth := max(contentWidth-listWidth-6, 20)

	v.delegate.width = listWidth
	v.list.SetSize(listWidth, max(v.height-4, 4))
	v.title.Width = editorWidth - 4
	v.body.SetWidth(editorWidth - 2)
	v.body.SetHeight(max(v.height-12, 3))
	v.exportPath.Width = clamp(contentWidth-20, 20, 70)
}

// View renders the view
func (v *NotesView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	switch v.prompt {
	case promptUnsaved, promptDelete, promptClearBody:
		return v.renderConfirm()
	case promptExport:
		return v.renderExport()
	}

	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	listWidth := v.listWidth()
	editorWidth := max(contentWidth-listWidth-6, 20)

	var left string
	if len(v.list.Items()) == 0 {
		left = lipgloss.JoinVertical(lipgloss.Left,
			s.Title.Render("Notes"),
			"",
			s.TitleMuted.Render("No notes yet."),
		)
	} else {
		left = v.list.View()
	}
	leftStyle := s.Panel
	if v.focus == noteFocusList {
		leftStyle = leftStyle.BorderForeground(s.Theme.BorderFocus)
	}
	left = leftStyle.Width(listWidth).Render(left)

	titleStyle := s.Input
	if v.focus == noteFocusTitle {
		titleStyle = s.InputFocused
	}
	bodyStyle := s.Input
	if v.focus == noteFocusBody {
		bodyStyle = s.InputFocused
	}

	heading := "New note"
	if n, ok := v.store.Current(); ok {
		heading = "Editing · modified " + n.DateModified
	}

	right := lipgloss.JoinVertical(lipgloss.Left,
		s.TitleMuted.Render(heading),
		titleStyle.Width(editorWidth).Render(v.title.View()),
		bodyStyle.Width(editorWidth).Render(v.body.View()),
	)

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
	if line := v.status.render(s); line != "" {
		b.WriteString("\n")
		b.WriteString(line)
	}
	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *NotesView) renderHelp() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)
	if contentWidth > 0 && contentWidth < 60 {
		return s.Help.Render(s.HelpKey.Render("?") + " help (from list)")
	}
	return s.Help.Render(
		fmt.Sprintf("%s save • %s new • %s delete • %s clear • %s export • %s focus • %s list",
			s.HelpKey.Render("ctrl+s"),
			s.HelpKey.Render("ctrl+n"),
			s.HelpKey.Render("ctrl+x"),
			s.HelpKey.Render("ctrl+l"),
			s.HelpKey.Render("ctrl+o"),
			s.HelpKey.Render("tab"),
			s.HelpKey.Render("esc"),
		),
	)
}

func (v *NotesView) renderHelpPopup() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	helpItems := []string{
		s.HelpKey.Render("↵") + "       open note",
		s.HelpKey.Render("ctrl+s") + "  save",
		s.HelpKey.Render("ctrl+n") + "  new note",
		s.HelpKey.Render("ctrl+x") + "  delete note",
		s.HelpKey.Render("ctrl+l") + "  clear content",
		s.HelpKey.Render("ctrl+o") + "  export to text file",
		s.HelpKey.Render("tab") + "     next field",
		s.HelpKey.Render("alt+1") + "   tasks",
		s.HelpKey.Render("ctrl+t") + "  toggle theme",
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

func (v *NotesView) renderConfirm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	var title, detail string
	buttons := lipgloss.JoinHorizontal(lipgloss.Center,
		s.ButtonDanger.Render(" Y - Yes "),
		"  ",
		s.Button.Render(" N - No "),
	)

	switch v.prompt {
	case promptUnsaved:
		title = "Unsaved Changes"
		detail = "Save changes to the current note?"
		buttons = lipgloss.JoinHorizontal(lipgloss.Center,
			s.ButtonPrimary.Render(" Y - Save "),
			"  ",
			s.ButtonDanger.Render(" N - Discard "),
			"  ",
			s.Button.Render(" Esc - Cancel "),
		)
	case promptDelete:
		title = "Delete Note?"
		detail = fmt.Sprintf("\"%s\"", v.deleteTargetName)
	case promptClearBody:
		title = "Clear Content?"
		detail = "The note body will be emptied."
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		s.Title.Render(title),
		"",
		s.TitleMuted.Render(detail),
		"",
		buttons,
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
	return styles.CenterView(centered, v.width, v.height)
}

func (v *NotesView) renderExport() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	content := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Export Note"),
		"",
		s.InputFocused.Render(v.exportPath.View()),
		"",
		s.TitleMuted.Render("↵: export • Esc: cancel"),
	)

	centered := lipgloss.Place(contentWidth, v.height,
		lipgloss.Center, lipgloss.Center,
		s.Popup.Render(content),
	)
	return styles.CenterView(centered, v.width, v.height)
}
