package views

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/desk/internal/logging"
	"github.com/tgienger/desk/internal/store"
)

// keyMsg builds the key message bubbletea would deliver for s
func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+n":
		return tea.KeyMsg{Type: tea.KeyCtrlN}
	case "ctrl+d":
		return tea.KeyMsg{Type: tea.KeyCtrlD}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	case "ctrl+e":
		return tea.KeyMsg{Type: tea.KeyCtrlE}
	case "ctrl+x":
		return tea.KeyMsg{Type: tea.KeyCtrlX}
	case "ctrl+o":
		return tea.KeyMsg{Type: tea.KeyCtrlO}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m tea.Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(keyMsg(k))
	}
	return cmd
}

func newTaskView(t *testing.T, texts ...string) (*TaskListView, *store.TaskStore) {
	t.Helper()
	ts, err := store.OpenTaskStore(filepath.Join(t.TempDir(), "tasks.json"))
	if err != nil {
		t.Fatalf("OpenTaskStore: %v", err)
	}
	for _, text := range texts {
		if _, err := ts.Add(text); err != nil {
			t.Fatalf("Add(%q): %v", text, err)
		}
	}
	v := NewTaskListView(ts, logging.Nop())
	v.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return v, ts
}

func TestTaskViewToggle(t *testing.T) {
	v, ts := newTaskView(t, "Buy milk", "Call mom")

	press(v, "down", " ")

	tasks := ts.Tasks()
	if tasks[0].Completed || !tasks[1].Completed {
		t.Errorf("expected only the second task completed, got %+v", tasks)
	}
}

func TestTaskViewAdd(t *testing.T) {
	v, ts := newTaskView(t)

	press(v, "a")
	if v.focus != FocusAddInput {
		t.Fatalf("focus: got %v, want add input", v.focus)
	}
	press(v, "Water plants", "enter")

	if ts.Len() != 1 || ts.Tasks()[0].Text != "Water plants" {
		t.Fatalf("expected one added task, got %+v", ts.Tasks())
	}
	if v.addInput.Value() != "" {
		t.Errorf("add input should be cleared, got %q", v.addInput.Value())
	}

	// Blank input adds nothing
	press(v, "   ", "enter")
	if ts.Len() != 1 {
		t.Errorf("blank add changed the store: %d tasks", ts.Len())
	}
}

func TestTaskViewDeleteConfirm(t *testing.T) {
	v, ts := newTaskView(t, "Buy milk", "Call mom")

	press(v, "d")
	if !v.Capturing() {
		t.Fatal("delete should open a confirmation")
	}
	press(v, "n")
	if ts.Len() != 2 {
		t.Fatalf("declined delete removed a task")
	}

	press(v, "d", "y")
	if ts.Len() != 1 || ts.Tasks()[0].Text != "Call mom" {
		t.Errorf("expected only Call mom left, got %+v", ts.Tasks())
	}
}

func TestTaskViewClearCompletedNothingToDo(t *testing.T) {
	v, ts := newTaskView(t, "Buy milk")

	press(v, "C")
	if v.Capturing() {
		t.Error("no confirmation expected when nothing is completed")
	}
	if v.status.kind != statusInfo || v.status.text == "" {
		t.Errorf("expected an info status, got %+v", v.status)
	}
	if ts.Len() != 1 {
		t.Errorf("store changed: %d tasks", ts.Len())
	}
}

func TestTaskViewClearAll(t *testing.T) {
	v, ts := newTaskView(t, "a", "b", "c")

	press(v, "X", "y")
	if ts.Len() != 0 {
		t.Fatalf("expected empty store, got %d tasks", ts.Len())
	}
	if !strings.Contains(v.status.text, "3 tasks") {
		t.Errorf("status: got %q", v.status.text)
	}
}

func TestTaskViewSearch(t *testing.T) {
	v, ts := newTaskView(t, "Buy milk", "Call mom", "Buy bread")

	press(v, "/", "buy")
	if len(v.visible) != 2 {
		t.Fatalf("visible: got %d, want 2", len(v.visible))
	}
	if ts.Len() != 3 {
		t.Errorf("search must not change the store")
	}

	press(v, "enter", "esc")
	if len(v.visible) != 3 {
		t.Errorf("esc should clear the filter, visible %d", len(v.visible))
	}
}

func TestTaskViewSortMenu(t *testing.T) {
	v, ts := newTaskView(t, "pear", "Apple", "fig")

	// Third entry is alphabetical ascending
	press(v, "s", "down", "down", "enter")

	got := []string{}
	for _, task := range ts.Tasks() {
		got = append(got, task.Text)
	}
	if strings.Join(got, ",") != "Apple,fig,pear" {
		t.Errorf("sorted order: got %v", got)
	}
	if v.sortMenuOpen {
		t.Error("sort menu should close after applying")
	}
}

func TestTaskViewRender(t *testing.T) {
	v, _ := newTaskView(t, "Buy milk")
	press(v, " ")

	out := v.View()
	for _, want := range []string{"Buy milk", "Total: 1", "Done: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
