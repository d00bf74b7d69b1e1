package store

import (
	"cmp"
	"encoding/json"
	"slices"
	"strings"

	"github.com/tgienger/desk/internal/models"
)

// NoteStore owns the note list, its backing file and the note under edit.
// Ids follow the same length-based rule as tasks.
type NoteStore struct {
	path    string
	notes   []models.Note
	current *int
	opts    options
}

// OpenNoteStore loads the note file at path. Notes are not repaired: a malformed
// file or a record with a missing field is reported and the store starts empty.
func OpenNoteStore(path string, opts ...Option) (*NoteStore, error) {
	s := &NoteStore{
		path:  path,
		notes: []models.Note{},
		opts:  buildOptions(opts),
	}
	if err := s.load(); err != nil {
		s.opts.log.Errorw("loading notes failed", "path", path, "error", err)
		return s, err
	}
	return s, nil
}

func (s *NoteStore) load() error {
	data, found, err := readDocument(s.path, noteSchema)
	if err != nil || !found {
		return err
	}

	var notes []models.Note
	if err := json.Unmarshal(data, &notes); err != nil {
		return &PersistenceError{Op: "decode", Path: s.path, Err: err}
	}
	if notes != nil {
		s.notes = notes
	}
	s.opts.log.Debugw("notes loaded", "path", s.path, "count", len(s.notes))
	return nil
}

func (s *NoteStore) save() error {
	if err := writeDocument(s.path, s.notes); err != nil {
		s.opts.log.Errorw("saving notes failed", "path", s.path, "error", err)
		return err
	}
	s.opts.log.Debugw("notes saved", "path", s.path, "count", len(s.notes))
	return nil
}

func (s *NoteStore) now() string {
	return s.opts.now().Format(models.NoteDateLayout)
}

func (s *NoteStore) index(id int) int {
	return slices.IndexFunc(s.notes, func(n models.Note) bool { return n.ID == id })
}

// Path returns the backing file
func (s *NoteStore) Path() string {
	return s.path
}

// Len returns the number of stored notes
func (s *NoteStore) Len() int {
	return len(s.notes)
}

// Get returns the first note with id
func (s *NoteStore) Get(id int) (models.Note, bool) {
	if i := s.index(id); i >= 0 {
		return s.notes[i], true
	}
	return models.Note{}, false
}

// List returns every note, most recently modified first
func (s *NoteStore) List() []models.Note {
	out := slices.Clone(s.notes)
	slices.SortStableFunc(out, func(a, b models.Note) int {
		return cmp.Compare(b.DateModified, a.DateModified)
	})
	return out
}

// CurrentID returns the id of the note under edit
func (s *NoteStore) CurrentID() (int, bool) {
	if s.current == nil {
		return 0, false
	}
	return *s.current, true
}

// Current returns the note under edit
func (s *NoteStore) Current() (models.Note, bool) {
	if s.current == nil {
		return models.Note{}, false
	}
	return s.Get(*s.current)
}

// New drops the current selection so the next Save creates a note
func (s *NoteStore) New() {
	s.current = nil
}

// Select makes id the note under edit and returns it
func (s *NoteStore) Select(id int) (models.Note, error) {
	n, ok := s.Get(id)
	if !ok {
		return models.Note{}, notFoundError("note", id)
	}
	s.current = &id
	return n, nil
}

// Dirty reports whether the edit buffers differ from the stored current note.
// With no current note there is nothing to lose and Dirty is false.
func (s *NoteStore) Dirty(title, content string) bool {
	n, ok := s.Current()
	if !ok {
		return false
	}
	return n.Title != strings.TrimSpace(title) || n.Content != strings.TrimSpace(content)
}

// Save creates a note when nothing is selected, otherwise overwrites the current one
func (s *NoteStore) Save(title, content string) (models.Note, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" {
		return models.Note{}, validationError("note title")
	}
	if content == "" {
		return models.Note{}, validationError("note content")
	}

	now := s.now()
	if s.current == nil {
		n := models.Note{
			ID:           len(s.notes),
			Title:        title,
			Content:      content,
			DateCreated:  now,
			DateModified: now,
		}
		s.notes = append(s.notes, n)
		id := n.ID
		s.current = &id
		return n, s.save()
	}

	i := s.index(*s.current)
	if i < 0 {
		return models.Note{}, notFoundError("note", *s.current)
	}
	s.notes[i].Title = title
	s.notes[i].Content = content
	s.notes[i].DateModified = now
	return s.notes[i], s.save()
}

// Delete removes every note with id. resetEditor is true when the deleted
// note was the one under edit, which is then deselected.
func (s *NoteStore) Delete(id int) (resetEditor bool, err error) {
	kept := make([]models.Note, 0, len(s.notes))
	for _, n := range s.notes {
		if n.ID != id {
			kept = append(kept, n)
		}
	}
	if len(kept) == len(s.notes) {
		return false, notFoundError("note", id)
	}
	s.notes = kept

	if s.current != nil && *s.current == id {
		s.New()
		resetEditor = true
	}
	return resetEditor, s.save()
}
