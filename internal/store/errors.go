package store

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is returned when a required field is empty
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when no record carries the requested id
	ErrNotFound = errors.New("record not found")
	// ErrNothingToClear is returned by bulk deletes that would remove nothing
	ErrNothingToClear = errors.New("nothing to clear")
)

// PersistenceError wraps a failed read, write or decode of a backing file.
// In-memory state is not rolled back when a write fails.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func validationError(field string) error {
	return fmt.Errorf("%w: %s is required", ErrValidation, field)
}

func notFoundError(kind string, id int) error {
	return fmt.Errorf("%w: %s %d", ErrNotFound, kind, id)
}
