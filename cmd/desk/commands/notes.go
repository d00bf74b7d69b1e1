package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/tgienger/desk/internal/models"
	"github.com/tgienger/desk/internal/store"
)

// NewNotesCommand creates the notes command with subcommands
func NewNotesCommand() *cobra.Command {
	notesCmd := &cobra.Command{
		Use:   "notes",
		Short: "Note commands",
		Long:  "List, write, export and delete notes without starting the UI",
	}

	notesCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List notes, most recently modified first",
		Args:  cobra.NoArgs,
		RunE: withNotes(func(cmd *cobra.Command, _ *env, ns *store.NoteStore, args []string) error {
			printNotes(cmd.OutOrStdout(), ns.List())
			return nil
		}),
	})

	notesCmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Print a note",
		Args:  cobra.ExactArgs(1),
		RunE: withNotes(func(cmd *cobra.Command, _ *env, ns *store.NoteStore, args []string) error {
			n, err := getNote(ns, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", n.Title)
			fmt.Fprintf(out, "created %s, modified %s\n\n", n.DateCreated, n.DateModified)
			fmt.Fprintln(out, n.Content)
			return nil
		}),
	})

	addCmd := &cobra.Command{
		Use:   "add --title <title> [content]...",
		Short: "Create a note; content is read from stdin when not given",
		RunE: withNotes(func(cmd *cobra.Command, _ *env, ns *store.NoteStore, args []string) error {
			title, _ := cmd.Flags().GetString("title")
			content, err := contentArg(cmd, args)
			if err != nil {
				return err
			}
			n, err := ns.Save(title, content)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added note %d: %s\n", n.ID, n.Title)
			return nil
		}),
	}
	addCmd.Flags().String("title", "", "note title (required)")
	notesCmd.AddCommand(addCmd)

	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the title or content of a note",
		Args:  cobra.ExactArgs(1),
		RunE: withNotes(func(cmd *cobra.Command, _ *env, ns *store.NoteStore, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			n, err := ns.Select(id)
			if err != nil {
				return err
			}

			title, content := n.Title, n.Content
			if cmd.Flags().Changed("title") {
				title, _ = cmd.Flags().GetString("title")
			}
			if cmd.Flags().Changed("content") {
				content, _ = cmd.Flags().GetString("content")
			}
			if title == n.Title && content == n.Content {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing changed.")
				return nil
			}

			n, err = ns.Save(title, content)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated note %d: %s\n", n.ID, n.Title)
			return nil
		}),
	}
	editCmd.Flags().String("title", "", "new title")
	editCmd.Flags().String("content", "", "new content")
	notesCmd.AddCommand(editCmd)

	notesCmd.AddCommand(&cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a note",
		Args:    cobra.ExactArgs(1),
		RunE: withNotes(func(cmd *cobra.Command, _ *env, ns *store.NoteStore, args []string) error {
			n, err := getNote(ns, args[0])
			if err != nil {
				return err
			}
			if ok, err := confirm(cmd, fmt.Sprintf("Delete note %q?", n.Title)); err != nil || !ok {
				return err
			}
			if _, err := ns.Delete(n.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted note %d\n", n.ID)
			return nil
		}),
	})

	exportCmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a note to a text file",
		Args:  cobra.ExactArgs(1),
		RunE: withNotes(func(cmd *cobra.Command, e *env, ns *store.NoteStore, args []string) error {
			n, err := getNote(ns, args[0])
			if err != nil {
				return err
			}
			path, _ := cmd.Flags().GetString("out")
			if path == "" {
				path = filepath.Join(e.cfg.ExportDir, store.ExportFilename(n.Title))
			}
			if err := store.Export(path, n.Title, n.Content); err != nil {
				return err
			}
			e.log.Infow("note exported", "id", n.ID, "path", path)
			fmt.Fprintf(cmd.OutOrStdout(), "Exported note %d to %s\n", n.ID, path)
			return nil
		}),
	}
	exportCmd.Flags().StringP("out", "o", "", "output file (default <export_dir>/<title>.txt)")
	notesCmd.AddCommand(exportCmd)

	return notesCmd
}

type notesRunFunc func(cmd *cobra.Command, e *env, ns *store.NoteStore, args []string) error

// withNotes loads the environment and note store around fn
func withNotes(fn notesRunFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		ns, err := e.openNotes()
		if err != nil {
			return err
		}
		return fn(cmd, e, ns, args)
	}
}

func getNote(ns *store.NoteStore, arg string) (models.Note, error) {
	id, err := parseID(arg)
	if err != nil {
		return models.Note{}, err
	}
	n, ok := ns.Get(id)
	if !ok {
		return models.Note{}, fmt.Errorf("note %d: %w", id, store.ErrNotFound)
	}
	return n, nil
}

func contentArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading content: %w", err)
	}
	return string(data), nil
}

func printNotes(w io.Writer, notes []models.Note) {
	if len(notes) == 0 {
		fmt.Fprintln(w, "No notes.")
		return
	}

	rows := make([][]string, 0, len(notes))
	for _, n := range notes {
		rows = append(rows, []string{strconv.Itoa(n.ID), n.Title, n.DateModified})
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "MODIFIED").
		Rows(rows...)
	fmt.Fprintln(w, tbl.Render())
}
