package views

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tgienger/desk/internal/logging"
	"github.com/tgienger/desk/internal/store"
)

func newNotesView(t *testing.T) (*NotesView, *store.NoteStore, string) {
	t.Helper()
	dir := t.TempDir()
	// Every save lands a minute after the previous one
	now := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	clock := func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
	ns, err := store.OpenNoteStore(filepath.Join(dir, "notes.json"), store.WithClock(clock))
	if err != nil {
		t.Fatalf("OpenNoteStore: %v", err)
	}
	v := NewNotesView(ns, logging.Nop(), dir)
	v.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return v, ns, dir
}

// writeNote types a note into a fresh editor and saves it
func writeNote(t *testing.T, v *NotesView, title, content string) {
	t.Helper()
	press(v, title, "tab", content, "ctrl+s")
	if _, ok := v.store.Current(); !ok {
		t.Fatalf("saving %q did not select it", title)
	}
}

func TestNotesViewSave(t *testing.T) {
	v, ns, _ := newNotesView(t)

	writeNote(t, v, "Groceries", "milk")

	if ns.Len() != 1 {
		t.Fatalf("Len: got %d, want 1", ns.Len())
	}
	n, _ := ns.Current()
	if n.Title != "Groceries" || n.Content != "milk" {
		t.Errorf("saved note: got %+v", n)
	}
	if v.status.kind != statusSuccess {
		t.Errorf("status: got %+v", v.status)
	}
}

func TestNotesViewSaveBlankWarns(t *testing.T) {
	v, ns, _ := newNotesView(t)

	press(v, "Only a title", "ctrl+s")

	if ns.Len() != 0 {
		t.Errorf("blank content created a note")
	}
	if v.status.kind != statusWarning {
		t.Errorf("status: got %+v", v.status)
	}
}

func TestNotesViewUnsavedGuard(t *testing.T) {
	tests := []struct {
		name        string
		answer      string
		wantContent string
		wantNew     bool
	}{
		{"save", "y", "milk eggs", true},
		{"discard", "n", "milk", true},
		{"cancel", "esc", "milk", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ns, _ := newNotesView(t)
			writeNote(t, v, "Groceries", "milk")

			press(v, " eggs", "ctrl+n")
			if !v.Capturing() {
				t.Fatal("unsaved changes should open the guard")
			}
			press(v, tt.answer)

			if v.Capturing() {
				t.Error("guard should close after an answer")
			}
			n, _ := ns.Get(0)
			if n.Content != tt.wantContent {
				t.Errorf("stored content: got %q, want %q", n.Content, tt.wantContent)
			}
			_, selected := ns.Current()
			if selected == tt.wantNew {
				t.Errorf("current selected = %v, want new note %v", selected, tt.wantNew)
			}
			if tt.wantNew && v.title.Value() != "" {
				t.Errorf("editor should be cleared, title %q", v.title.Value())
			}
		})
	}
}

func TestNotesViewDiscardRestoresEditor(t *testing.T) {
	v, _, _ := newNotesView(t)
	writeNote(t, v, "Groceries", "milk")
	press(v, " eggs")

	// An action that leaves the note selected, like switching tools
	v.Guard(func() tea.Cmd { return nil })
	press(v, "n")

	if title, body := v.Editor(); title != "Groceries" || body != "milk" {
		t.Errorf("editor after discard: got %q / %q", title, body)
	}
	if v.Dirty() {
		t.Error("editor should match the stored note after discarding")
	}

	ran := false
	v.Guard(func() tea.Cmd {
		ran = true
		return nil
	})
	if !ran || v.Capturing() {
		t.Error("second guard should not ask again")
	}
}

func TestNotesViewGuardSkipsCleanEditor(t *testing.T) {
	v, _, _ := newNotesView(t)
	writeNote(t, v, "Groceries", "milk")

	ran := false
	v.Guard(func() tea.Cmd {
		ran = true
		return nil
	})
	if !ran || v.Capturing() {
		t.Error("a clean editor should run the action immediately")
	}
}

func TestNotesViewSelect(t *testing.T) {
	v, ns, _ := newNotesView(t)
	writeNote(t, v, "First", "one")
	press(v, "ctrl+n")
	writeNote(t, v, "Second", "two")

	// List is newest first; move to the older note
	press(v, "esc", "down", "enter")

	n, ok := ns.Current()
	if !ok || n.Title != "First" {
		t.Fatalf("current: got %+v", n)
	}
	if v.title.Value() != "First" || v.body.Value() != "one" {
		t.Errorf("editor: got %q / %q", v.title.Value(), v.body.Value())
	}
}

func TestNotesViewDeleteCurrent(t *testing.T) {
	v, ns, _ := newNotesView(t)
	writeNote(t, v, "Groceries", "milk")

	press(v, "ctrl+x")
	if !v.Capturing() {
		t.Fatal("delete should ask for confirmation")
	}
	press(v, "y")

	if ns.Len() != 0 {
		t.Fatalf("Len: got %d, want 0", ns.Len())
	}
	if v.title.Value() != "" || v.body.Value() != "" {
		t.Errorf("editor should reset after deleting the current note")
	}
}

func TestNotesViewClearBody(t *testing.T) {
	v, ns, _ := newNotesView(t)
	writeNote(t, v, "Groceries", "milk")

	press(v, "ctrl+l", "y")

	if v.body.Value() != "" {
		t.Errorf("body: got %q", v.body.Value())
	}
	if n, _ := ns.Current(); n.Content != "milk" {
		t.Errorf("clearing the editor must not touch the store, got %q", n.Content)
	}
}

func TestNotesViewExport(t *testing.T) {
	v, _, dir := newNotesView(t)
	writeNote(t, v, "Groceries", "milk")

	press(v, "ctrl+o")
	want := filepath.Join(dir, "Groceries.txt")
	if got := v.exportPath.Value(); got != want {
		t.Fatalf("suggested path: got %q, want %q", got, want)
	}
	press(v, "enter")

	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	expected, _ := store.FormatExport("Groceries", "milk")
	if string(data) != expected {
		t.Errorf("export content: got %q", data)
	}
	if v.status.kind != statusSuccess {
		t.Errorf("status: got %+v", v.status)
	}
}

func TestNotesViewExportBlankBodyWarns(t *testing.T) {
	v, _, _ := newNotesView(t)
	press(v, "Empty", "tab", "   ")

	press(v, "ctrl+o")
	if v.Capturing() {
		t.Fatal("a blank body should not open the export prompt")
	}
	if v.status.kind != statusWarning || v.status.text != "Nothing to export" {
		t.Errorf("status: got %+v", v.status)
	}
}
