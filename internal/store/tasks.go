package store

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/tgienger/desk/internal/models"
)

// UntitledTask is the label given to loaded tasks that have no text
const UntitledTask = "Untitled task"

// TaskStore owns the task list and its backing file.
//
// Ids are assigned as the list length at insertion time, so a delete followed
// by an add can produce two tasks with the same id. Toggle addresses the first
// match while Delete removes every match.
type TaskStore struct {
	path  string
	tasks []models.Task
	query string
	opts  options
}

// rawTask mirrors models.Task with optional fields so missing keys can be detected
type rawTask struct {
	ID        *int    `json:"id"`
	Text      *string `json:"text"`
	Completed *bool   `json:"completed"`
	Date      *string `json:"date"`
}

// OpenTaskStore loads the task file at path, repairing records with missing keys.
// The returned store is always usable; on a load error it starts empty.
func OpenTaskStore(path string, opts ...Option) (*TaskStore, error) {
	s := &TaskStore{
		path:  path,
		tasks: []models.Task{},
		opts:  buildOptions(opts),
	}
	if err := s.load(); err != nil {
		s.opts.log.Errorw("loading tasks failed", "path", path, "error", err)
		return s, err
	}
	return s, nil
}

func (s *TaskStore) load() error {
	data, found, err := readDocument(s.path, taskSchema)
	if err != nil || !found {
		return err
	}

	var raw []rawTask
	if err := json.Unmarshal(data, &raw); err != nil {
		return &PersistenceError{Op: "decode", Path: s.path, Err: err}
	}
	var fields []map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return &PersistenceError{Op: "decode", Path: s.path, Err: err}
	}

	tasks := make([]models.Task, 0, len(raw))
	repaired := 0
	for i, r := range raw {
		t, fixed := backfillTask(r, i, s.opts.now().Format(models.TaskDateLayout))
		if fixed {
			repaired++
		}
		tasks = append(tasks, t.WithExtra(unknownFields(fields[i])))
	}
	s.tasks = tasks
	s.opts.log.Debugw("tasks loaded", "path", s.path, "count", len(tasks))

	if repaired > 0 {
		s.opts.log.Infow("repaired tasks with missing fields", "path", s.path, "repaired", repaired)
		return s.save()
	}
	return nil
}

func backfillTask(r rawTask, index int, now string) (models.Task, bool) {
	fixed := false
	t := models.Task{ID: index, Text: UntitledTask, Date: now}
	if r.ID != nil {
		t.ID = *r.ID
	} else {
		fixed = true
	}
	if r.Text != nil {
		t.Text = *r.Text
	} else {
		fixed = true
	}
	if r.Completed != nil {
		t.Completed = *r.Completed
	} else {
		fixed = true
	}
	if r.Date != nil {
		t.Date = *r.Date
	} else {
		fixed = true
	}
	return t, fixed
}

// unknownFields strips the keys rawTask reads, leaving what a rewrite must carry over
func unknownFields(rec map[string]json.RawMessage) map[string]json.RawMessage {
	for _, k := range []string{"id", "text", "completed", "date"} {
		delete(rec, k)
	}
	return rec
}

func (s *TaskStore) save() error {
	if err := writeDocument(s.path, s.tasks); err != nil {
		s.opts.log.Errorw("saving tasks failed", "path", s.path, "error", err)
		return err
	}
	s.opts.log.Debugw("tasks saved", "path", s.path, "count", len(s.tasks))
	return nil
}

// Path returns the backing file
func (s *TaskStore) Path() string {
	return s.path
}

// Tasks returns a copy of the stored order
func (s *TaskStore) Tasks() []models.Task {
	return slices.Clone(s.tasks)
}

// Len returns the number of stored tasks
func (s *TaskStore) Len() int {
	return len(s.tasks)
}

// Get returns the first task with id
func (s *TaskStore) Get(id int) (models.Task, bool) {
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

// Add appends a new active task labelled with the trimmed text
func (s *TaskStore) Add(text string) (models.Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Task{}, validationError("task text")
	}

	t := models.Task{
		ID:        len(s.tasks),
		Text:      text,
		Completed: false,
		Date:      s.opts.now().Format(models.TaskDateLayout),
	}
	s.tasks = append(s.tasks, t)
	return t, s.save()
}

// Toggle flips the completion flag of the first task with id
func (s *TaskStore) Toggle(id int) (models.Task, error) {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks[i].Completed = !s.tasks[i].Completed
			return s.tasks[i], s.save()
		}
	}
	return models.Task{}, notFoundError("task", id)
}

// Delete removes every task with id
func (s *TaskStore) Delete(id int) error {
	kept := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(s.tasks) {
		return notFoundError("task", id)
	}
	s.tasks = kept
	return s.save()
}

// CompletedCount returns how many tasks are done
func (s *TaskStore) CompletedCount() int {
	n := 0
	for _, t := range s.tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

// ClearCompleted removes every completed task and returns how many were removed
func (s *TaskStore) ClearCompleted() (int, error) {
	kept := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if !t.Completed {
			kept = append(kept, t)
		}
	}
	removed := len(s.tasks) - len(kept)
	if removed == 0 {
		return 0, fmt.Errorf("%w: no completed tasks", ErrNothingToClear)
	}
	s.tasks = kept
	return removed, s.save()
}

// ClearAll empties the store and returns how many tasks were removed
func (s *TaskStore) ClearAll() (int, error) {
	removed := len(s.tasks)
	if removed == 0 {
		return 0, fmt.Errorf("%w: no tasks", ErrNothingToClear)
	}
	s.tasks = []models.Task{}
	return removed, s.save()
}

// SetFilter sets the query used by Visible
func (s *TaskStore) SetFilter(query string) {
	s.query = strings.TrimSpace(query)
}

// Query returns the active filter query, empty when unfiltered
func (s *TaskStore) Query() string {
	return s.query
}

// Visible returns the tasks matching the active filter
func (s *TaskStore) Visible() []models.Task {
	return s.Filter(s.query)
}

// Filter returns the tasks whose text contains query, ignoring case.
// An empty query matches everything.
func (s *TaskStore) Filter(query string) []models.Task {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.Tasks()
	}
	out := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		if strings.Contains(strings.ToLower(t.Text), q) {
			out = append(out, t)
		}
	}
	return out
}

// Sort reorders the stored list and persists the new order
func (s *TaskStore) Sort(order models.SortOrder) error {
	cmpFn, err := taskComparator(order)
	if err != nil {
		return err
	}
	slices.SortStableFunc(s.tasks, cmpFn)
	s.opts.log.Debugw("tasks sorted", "order", order)
	return s.save()
}

func taskComparator(order models.SortOrder) (func(a, b models.Task) int, error) {
	switch order {
	case models.SortDateDesc:
		return func(a, b models.Task) int { return cmp.Compare(b.Date, a.Date) }, nil
	case models.SortDateAsc:
		return func(a, b models.Task) int { return cmp.Compare(a.Date, b.Date) }, nil
	case models.SortAlphaAsc:
		return func(a, b models.Task) int {
			return cmp.Compare(strings.ToLower(a.Text), strings.ToLower(b.Text))
		}, nil
	case models.SortAlphaDesc:
		return func(a, b models.Task) int {
			return cmp.Compare(strings.ToLower(b.Text), strings.ToLower(a.Text))
		}, nil
	case models.SortCompletedFirst:
		return func(a, b models.Task) int { return compareFlag(b.Completed, a.Completed) }, nil
	case models.SortActiveFirst:
		return func(a, b models.Task) int { return compareFlag(a.Completed, b.Completed) }, nil
	}
	return nil, fmt.Errorf("%w: unknown sort order %q", ErrValidation, order)
}

// compareFlag orders false before true
func compareFlag(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// Stats derives completion counts
func (s *TaskStore) Stats() models.Stats {
	total := len(s.tasks)
	done := s.CompletedCount()
	st := models.Stats{
		Total:     total,
		Completed: done,
		Remaining: total - done,
	}
	if total > 0 {
		st.Percent = 100 * float64(done) / float64(total)
	}
	return st
}
