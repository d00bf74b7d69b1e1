package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "X.txt")
	if err := Export(path, "X", "Y"); err != nil {
		t.Fatalf("Export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "Titre: X\n" + strings.Repeat("=", 50) + "\n\nY"
	if string(data) != want {
		t.Errorf("export: got %q, want %q", data, want)
	}
}

func TestExportRejectsBlankContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	if err := Export(path, "title", "  \n"); !errors.Is(err, ErrValidation) {
		t.Errorf("Export: got %v, want ErrValidation", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("blank export should not create a file")
	}
}

func TestFormatExportDefaultTitle(t *testing.T) {
	got, err := FormatExport("  ", "body")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "Titre: note\n") {
		t.Errorf("FormatExport: got %q", got)
	}
}

func TestExportFilename(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Groceries", "Groceries.txt"},
		{"", "note.txt"},
		{" a/b ", "a_b.txt"},
	}
	for _, tt := range tests {
		if got := ExportFilename(tt.title); got != tt.want {
			t.Errorf("ExportFilename(%q): got %q, want %q", tt.title, got, tt.want)
		}
	}
}
