package store

import (
	"strings"
)

const (
	exportHeader    = "Titre: "
	exportSeparator = 50
	defaultExport   = "note"
)

// FormatExport renders the plain-text export of a note
func FormatExport(title, content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", validationError("note content")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultExport
	}

	var b strings.Builder
	b.WriteString(exportHeader)
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", exportSeparator))
	b.WriteString("\n\n")
	b.WriteString(content)
	return b.String(), nil
}

// Export writes the note body to path as plain text
func Export(path, title, content string) error {
	text, err := FormatExport(title, content)
	if err != nil {
		return err
	}
	return writeFile(path, []byte(text))
}

// ExportFilename suggests a file name for exporting a note titled title
func ExportFilename(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = defaultExport
	}
	title = strings.NewReplacer("/", "_", "\\", "_").Replace(title)
	return title + ".txt"
}
