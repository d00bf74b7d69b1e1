package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Timestamp layouts used on disk
const (
	TaskDateLayout = "2006-01-02 15:04"
	NoteDateLayout = "2006-01-02 15:04:05"
)

// Task represents a single to-do item
type Task struct {
	ID        int    `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Date      string `json:"date"`

	// extra is a JSON object of keys Task has no field for
	extra string
}

// WithExtra returns t carrying fields that are written back after the known ones
func (t Task) WithExtra(fields map[string]json.RawMessage) Task {
	if len(fields) == 0 {
		return t
	}
	b, err := encode(fields)
	if err != nil {
		return t
	}
	t.extra = string(b)
	return t
}

// Extra returns the unknown keys the task was loaded with
func (t Task) Extra() map[string]json.RawMessage {
	if t.extra == "" {
		return nil
	}
	var fields map[string]json.RawMessage
	_ = json.Unmarshal([]byte(t.extra), &fields)
	return fields
}

func (t Task) MarshalJSON() ([]byte, error) {
	type plain Task
	known, err := encode(plain(t))
	if err != nil || t.extra == "" {
		return known, err
	}
	out := append(known[:len(known)-1:len(known)-1], ',')
	return append(out, t.extra[1:]...), nil
}

// encode marshals v compactly without HTML escaping, matching the file writer
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Note represents a free-text note
type Note struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	DateCreated  string `json:"date_created"`
	DateModified string `json:"date_modified"`
}

// ModifiedAt parses the last-modified timestamp
func (n Note) ModifiedAt() (time.Time, error) {
	return time.ParseInLocation(NoteDateLayout, n.DateModified, time.Local)
}

// SortOrder names one of the task orderings
type SortOrder string

const (
	SortDateDesc       SortOrder = "date_desc"
	SortDateAsc        SortOrder = "date_asc"
	SortAlphaAsc       SortOrder = "alpha_asc"
	SortAlphaDesc      SortOrder = "alpha_desc"
	SortCompletedFirst SortOrder = "completed_first"
	SortActiveFirst    SortOrder = "active_first"
)

// SortOrders lists every ordering in menu order
var SortOrders = []SortOrder{
	SortDateDesc,
	SortDateAsc,
	SortAlphaAsc,
	SortAlphaDesc,
	SortCompletedFirst,
	SortActiveFirst,
}

// Label returns the menu label for the order
func (o SortOrder) Label() string {
	switch o {
	case SortDateDesc:
		return "By date (newest first)"
	case SortDateAsc:
		return "By date (oldest first)"
	case SortAlphaAsc:
		return "Alphabetical (A → Z)"
	case SortAlphaDesc:
		return "Alphabetical (Z → A)"
	case SortCompletedFirst:
		return "Completed first"
	case SortActiveFirst:
		return "Active first"
	}
	return string(o)
}

// ParseSortOrder accepts the canonical names plus the short "completed" and "active" aliases
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "date_desc":
		return SortDateDesc, nil
	case "date_asc":
		return SortDateAsc, nil
	case "alpha_asc":
		return SortAlphaAsc, nil
	case "alpha_desc":
		return SortAlphaDesc, nil
	case "completed_first", "completed":
		return SortCompletedFirst, nil
	case "active_first", "active":
		return SortActiveFirst, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// Stats summarizes task completion
type Stats struct {
	Total     int
	Completed int
	Remaining int
	Percent   float64
}
