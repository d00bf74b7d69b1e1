package store

import (
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Tasks only need their field types checked; missing keys are backfilled later.
const taskFileSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "id": {"type": ["integer", "null"]},
      "text": {"type": ["string", "null"]},
      "completed": {"type": ["boolean", "null"]},
      "date": {"type": ["string", "null"]}
    }
  }
}`

// Notes have no repair pass, so every field is required.
const noteFileSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "title", "content", "date_created", "date_modified"],
    "properties": {
      "id": {"type": "integer"},
      "title": {"type": "string"},
      "content": {"type": "string"},
      "date_created": {"type": "string"},
      "date_modified": {"type": "string"}
    }
  }
}`

var (
	taskSchema = jsonschema.MustCompileString("tasks.schema.json", taskFileSchema)
	noteSchema = jsonschema.MustCompileString("notes.schema.json", noteFileSchema)
)
