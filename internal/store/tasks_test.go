package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/tgienger/desk/internal/models"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 9, 30, 0, 0, time.Local)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func openTasks(t *testing.T, clock *fakeClock) (*TaskStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tasks.json")
	s, err := OpenTaskStore(path, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("OpenTaskStore: %v", err)
	}
	return s, path
}

func mustAdd(t *testing.T, s *TaskStore, text string) models.Task {
	t.Helper()
	task, err := s.Add(text)
	if err != nil {
		t.Fatalf("Add(%q): %v", text, err)
	}
	return task
}

func texts(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Text
	}
	return out
}

func TestOpenTaskStoreMissingFile(t *testing.T) {
	s, path := openTasks(t, newFakeClock())
	if s.Len() != 0 {
		t.Errorf("Len: got %d, want 0", s.Len())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("opening should not create %s", path)
	}
}

func TestAddTask(t *testing.T) {
	clock := newFakeClock()
	s, path := openTasks(t, clock)

	task := mustAdd(t, s, "  Buy milk  ")
	if s.Len() != 1 {
		t.Fatalf("Len: got %d, want 1", s.Len())
	}
	if task.Completed {
		t.Error("new task should not be completed")
	}
	if task.Text != "Buy milk" {
		t.Errorf("Text: got %q, want trimmed %q", task.Text, "Buy milk")
	}
	if task.ID != 0 {
		t.Errorf("ID: got %d, want 0", task.ID)
	}
	if task.Date != "2024-03-01 09:30" {
		t.Errorf("Date: got %q", task.Date)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("task file not written: %v", err)
	}
	var onDisk []map[string]any
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatalf("task file is not a JSON array: %v", err)
	}
	if len(onDisk) != 1 {
		t.Fatalf("on disk: got %d records, want 1", len(onDisk))
	}
	for _, key := range []string{"id", "text", "completed", "date"} {
		if _, ok := onDisk[0][key]; !ok {
			t.Errorf("on disk record missing %q", key)
		}
	}
}

func TestAddTaskRejectsBlank(t *testing.T) {
	s, path := openTasks(t, newFakeClock())

	for _, text := range []string{"", "   ", "\t\n"} {
		if _, err := s.Add(text); !errors.Is(err, ErrValidation) {
			t.Errorf("Add(%q): got %v, want ErrValidation", text, err)
		}
	}
	if s.Len() != 0 {
		t.Errorf("Len: got %d, want 0", s.Len())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("rejected add should not write the task file")
	}
}

func TestToggleTwiceRestores(t *testing.T) {
	s, _ := openTasks(t, newFakeClock())
	task := mustAdd(t, s, "Call mom")

	got, err := s.Toggle(task.ID)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if !got.Completed {
		t.Error("first toggle should complete the task")
	}
	got, err = s.Toggle(task.ID)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if got.Completed != task.Completed {
		t.Errorf("Completed: got %v, want %v", got.Completed, task.Completed)
	}
}

func TestToggleUnknown(t *testing.T) {
	s, _ := openTasks(t, newFakeClock())
	mustAdd(t, s, "one")

	if _, err := s.Toggle(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("Toggle(42): got %v, want ErrNotFound", err)
	}
	if err := s.Delete(42); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(42): got %v, want ErrNotFound", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len: got %d, want 1", s.Len())
	}
}

func TestClearCompleted(t *testing.T) {
	s, _ := openTasks(t, newFakeClock())
	for _, text := range []string{"a", "b", "c", "d", "e"} {
		mustAdd(t, s, text)
	}
	for _, id := range []int{1, 3} {
		if _, err := s.Toggle(id); err != nil {
			t.Fatalf("Toggle(%d): %v", id, err)
		}
	}

	active := slices.DeleteFunc(s.Tasks(), func(t models.Task) bool { return t.Completed })

	removed, err := s.ClearCompleted()
	if err != nil {
		t.Fatalf("ClearCompleted: %v", err)
	}
	if removed != 2 {
		t.Errorf("removed: got %d, want 2", removed)
	}
	for _, task := range s.Tasks() {
		if task.Completed {
			t.Errorf("completed task %q survived", task.Text)
		}
	}
	if !slices.Equal(s.Tasks(), active) {
		t.Errorf("remaining: got %v, want %v", s.Tasks(), active)
	}

	if _, err := s.ClearCompleted(); !errors.Is(err, ErrNothingToClear) {
		t.Errorf("second ClearCompleted: got %v, want ErrNothingToClear", err)
	}
}

func TestClearAll(t *testing.T) {
	s, path := openTasks(t, newFakeClock())
	if _, err := s.ClearAll(); !errors.Is(err, ErrNothingToClear) {
		t.Errorf("ClearAll on empty: got %v, want ErrNothingToClear", err)
	}

	mustAdd(t, s, "a")
	mustAdd(t, s, "b")
	removed, err := s.ClearAll()
	if err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if removed != 2 || s.Len() != 0 {
		t.Errorf("ClearAll: removed %d, left %d", removed, s.Len())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "[]\n" {
		t.Errorf("empty store on disk: got %q, want %q", data, "[]\n")
	}
}

func TestFilter(t *testing.T) {
	s, _ := openTasks(t, newFakeClock())
	for _, text := range []string{"Buy MILK", "walk dog", "milkshake", "Read"} {
		mustAdd(t, s, text)
	}

	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"empty", "", []string{"Buy MILK", "walk dog", "milkshake", "Read"}},
		{"blank", "   ", []string{"Buy MILK", "walk dog", "milkshake", "Read"}},
		{"case insensitive", "milk", []string{"Buy MILK", "milkshake"}},
		{"upper query", "DOG", []string{"walk dog"}},
		{"no match", "zzz", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := texts(s.Filter(tt.query))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Filter(%q): got %v, want %v", tt.query, got, tt.want)
			}
		})
	}

	s.SetFilter("milk")
	if got := s.Visible(); len(got) != 2 {
		t.Errorf("Visible: got %d tasks, want 2", len(got))
	}
	if s.Len() != 4 {
		t.Errorf("filtering must not mutate the store, Len %d", s.Len())
	}
	s.SetFilter("")
	if got := s.Visible(); len(got) != 4 {
		t.Errorf("Visible after clearing filter: got %d, want 4", len(got))
	}
}

func TestSortAlphaReverses(t *testing.T) {
	s, _ := openTasks(t, newFakeClock())
	for _, text := range []string{"banana", "Apple", "cherry", "date"} {
		mustAdd(t, s, text)
	}

	if err := s.Sort(models.SortAlphaAsc); err != nil {
		t.Fatalf("Sort asc: %v", err)
	}
	asc := texts(s.Tasks())
	if want := []string{"Apple", "banana", "cherry", "date"}; !slices.Equal(asc, want) {
		t.Errorf("alpha asc: got %v, want %v", asc, want)
	}

	if err := s.Sort(models.SortAlphaDesc); err != nil {
		t.Fatalf("Sort desc: %v", err)
	}
	desc := texts(s.Tasks())
	slices.Reverse(asc)
	if !slices.Equal(desc, asc) {
		t.Errorf("alpha desc: got %v, want %v", desc, asc)
	}
}

func TestSortDate(t *testing.T) {
	clock := newFakeClock()
	s, _ := openTasks(t, clock)
	mustAdd(t, s, "old")
	clock.Advance(time.Hour)
	mustAdd(t, s, "mid")
	clock.Advance(time.Hour)
	mustAdd(t, s, "new")

	if err := s.Sort(models.SortDateDesc); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if got, want := texts(s.Tasks()), []string{"new", "mid", "old"}; !slices.Equal(got, want) {
		t.Errorf("date desc: got %v, want %v", got, want)
	}
	if err := s.Sort(models.SortDateAsc); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if got, want := texts(s.Tasks()), []string{"old", "mid", "new"}; !slices.Equal(got, want) {
		t.Errorf("date asc: got %v, want %v", got, want)
	}
}

func TestSortByFlagIsStable(t *testing.T) {
	s, path := openTasks(t, newFakeClock())
	for _, text := range []string{"a", "b", "c", "d"} {
		mustAdd(t, s, text)
	}
	s.Toggle(1)
	s.Toggle(3)

	if err := s.Sort(models.SortCompletedFirst); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if got, want := texts(s.Tasks()), []string{"b", "d", "a", "c"}; !slices.Equal(got, want) {
		t.Errorf("completed first: got %v, want %v", got, want)
	}

	if err := s.Sort(models.SortActiveFirst); err != nil {
		t.Fatalf("Sort: %v", err)
	}
	if got, want := texts(s.Tasks()), []string{"a", "c", "b", "d"}; !slices.Equal(got, want) {
		t.Errorf("active first: got %v, want %v", got, want)
	}

	reopened, err := OpenTaskStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got, want := texts(reopened.Tasks()), []string{"a", "c", "b", "d"}; !slices.Equal(got, want) {
		t.Errorf("sorted order not persisted: got %v, want %v", got, want)
	}
}

func TestSortUnknownOrder(t *testing.T) {
	s, _ := openTasks(t, newFakeClock())
	if err := s.Sort("shuffle"); !errors.Is(err, ErrValidation) {
		t.Errorf("Sort(shuffle): got %v, want ErrValidation", err)
	}
}

func TestTaskRoundTrip(t *testing.T) {
	clock := newFakeClock()
	s, path := openTasks(t, clock)
	mustAdd(t, s, "write report")
	clock.Advance(time.Minute)
	mustAdd(t, s, "café <au> lait & co")
	s.Toggle(0)

	reopened, err := OpenTaskStore(path, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if !slices.Equal(reopened.Tasks(), s.Tasks()) {
		t.Errorf("round trip: got %v, want %v", reopened.Tasks(), s.Tasks())
	}
}

func TestTaskBackfill(t *testing.T) {
	clock := newFakeClock()
	path := filepath.Join(t.TempDir(), "tasks.json")
	content := `[
  {"id": 7, "text": "complete", "completed": true, "date": "2023-01-01 10:00"},
  {"text": "no id"},
  {"id": 3, "completed": false, "date": "2023-01-02 11:00"}
]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := OpenTaskStore(path, WithClock(clock.Now))
	if err != nil {
		t.Fatalf("OpenTaskStore: %v", err)
	}

	want := []models.Task{
		{ID: 7, Text: "complete", Completed: true, Date: "2023-01-01 10:00"},
		{ID: 1, Text: "no id", Completed: false, Date: "2024-03-01 09:30"},
		{ID: 3, Text: UntitledTask, Completed: false, Date: "2023-01-02 11:00"},
	}
	if got := s.Tasks(); !slices.Equal(got, want) {
		t.Errorf("backfilled: got %v, want %v", got, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var onDisk []models.Task
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatalf("repaired file: %v", err)
	}
	if !slices.Equal(onDisk, want) {
		t.Errorf("repair not persisted: got %v, want %v", onDisk, want)
	}
}

func TestTaskBackfillKeepsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	content := `[
  {"id": 0, "text": "ship it", "completed": false, "date": "2023-01-01 10:00", "priority": "high", "tags": ["work"]},
  {"text": "no id"}
]`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := OpenTaskStore(path, WithClock(newFakeClock().Now))
	if err != nil {
		t.Fatalf("OpenTaskStore: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var onDisk []map[string]json.RawMessage
	if err := json.Unmarshal(data, &onDisk); err != nil {
		t.Fatalf("repaired file: %v", err)
	}
	if len(onDisk) != 2 {
		t.Fatalf("records: got %d, want 2", len(onDisk))
	}
	if got := string(onDisk[0]["priority"]); got != `"high"` {
		t.Errorf("priority: got %s", got)
	}
	var tags []string
	if err := json.Unmarshal(onDisk[0]["tags"], &tags); err != nil || !slices.Equal(tags, []string{"work"}) {
		t.Errorf("tags: got %s", onDisk[0]["tags"])
	}
	if _, ok := onDisk[1]["id"]; !ok {
		t.Error("missing id was not backfilled")
	}

	// Later writes still carry the unknown keys
	if _, err := s.Toggle(0); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	reopened, err := OpenTaskStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	task, _ := reopened.Get(0)
	if !task.Completed || string(task.Extra()["priority"]) != `"high"` {
		t.Errorf("after toggle: %+v extra %v", task, task.Extra())
	}
}

func TestTaskLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed", `[{"id": 1,`},
		{"not an array", `{"id": 1}`},
		{"wrong type", `[{"id": 1, "text": 5}]`},
		{"empty file", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tasks.json")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			s, err := OpenTaskStore(path)
			var perr *PersistenceError
			if !errors.As(err, &perr) {
				t.Fatalf("got %v, want *PersistenceError", err)
			}
			if perr.Path != path {
				t.Errorf("Path: got %q, want %q", perr.Path, path)
			}
			if s == nil || s.Len() != 0 {
				t.Error("store should be usable and empty after a load error")
			}
		})
	}
}

func TestDuplicateIDAfterDelete(t *testing.T) {
	s, _ := openTasks(t, newFakeClock())
	mustAdd(t, s, "zero")
	mustAdd(t, s, "one")
	mustAdd(t, s, "two")

	if err := s.Delete(1); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	added := mustAdd(t, s, "three")
	if added.ID != 2 {
		t.Fatalf("length-based id: got %d, want 2", added.ID)
	}

	if _, err := s.Toggle(2); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	tasks := s.Tasks()
	if !tasks[1].Completed || tasks[1].Text != "two" {
		t.Errorf("first id=2 record should be toggled: %+v", tasks[1])
	}
	if tasks[2].Completed {
		t.Errorf("second id=2 record should be untouched: %+v", tasks[2])
	}

	if err := s.Delete(2); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, want := texts(s.Tasks()), []string{"zero"}; !slices.Equal(got, want) {
		t.Errorf("delete removes every match: got %v, want %v", got, want)
	}
}

func TestWriteFailureKeepsMemory(t *testing.T) {
	s, path := openTasks(t, newFakeClock())
	if err := os.Mkdir(path, 0755); err != nil {
		t.Fatal(err)
	}

	_, err := s.Add("unsaved")
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("Add: got %v, want *PersistenceError", err)
	}
	if perr.Op != "write" {
		t.Errorf("Op: got %q, want write", perr.Op)
	}
	if s.Len() != 1 {
		t.Errorf("in-memory state is not rolled back, Len: got %d, want 1", s.Len())
	}
}

func TestStats(t *testing.T) {
	s, _ := openTasks(t, newFakeClock())
	if st := s.Stats(); st != (models.Stats{}) {
		t.Errorf("empty stats: got %+v", st)
	}

	for _, text := range []string{"a", "b", "c", "d"} {
		mustAdd(t, s, text)
	}
	s.Toggle(0)

	want := models.Stats{Total: 4, Completed: 1, Remaining: 3, Percent: 25}
	if st := s.Stats(); st != want {
		t.Errorf("Stats: got %+v, want %+v", st, want)
	}
}
