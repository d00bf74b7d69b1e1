package commands

import (
	"errors"
	"fmt"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/tgienger/desk/internal/db"
	"github.com/tgienger/desk/internal/store"
	"github.com/tgienger/desk/internal/ui"
	"github.com/tgienger/desk/internal/ui/styles"
)

// BuildInfo is set via ldflags in main
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the desk command; with no subcommand it starts the TUI
func NewRootCommand(info BuildInfo) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "desk",
		Short:         "Tasks and notes in the terminal",
		Long:          "desk keeps a task list and a set of notes in plain JSON files, with a terminal UI to manage both.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd)
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config file (default $XDG_CONFIG_HOME/desk/config.toml)")
	rootCmd.PersistentFlags().BoolP("yes", "y", false, "do not ask before deleting")

	rootCmd.AddCommand(NewTasksCommand())
	rootCmd.AddCommand(NewNotesCommand())
	rootCmd.AddCommand(NewSettingsCommand())
	rootCmd.AddCommand(NewVersionCommand(info))

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print desk version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "desk %s (commit: %s, built: %s, %s)\n",
				info.Version, info.Commit, info.Date, runtime.Version())
		},
	}
}

// NewSettingsCommand creates the settings command
func NewSettingsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Print resolved paths and saved UI preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			defer e.close()

			database, err := db.New(e.cfg.SettingsDB)
			if err != nil {
				return fmt.Errorf("initializing settings database: %w", err)
			}
			defer database.Close()

			saved, err := database.Settings()
			if err != nil {
				return fmt.Errorf("reading settings: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "tasks file:  %s\n", e.cfg.TasksFile)
			fmt.Fprintf(out, "notes file:  %s\n", e.cfg.NotesFile)
			fmt.Fprintf(out, "settings db: %s\n", e.cfg.SettingsDB)
			fmt.Fprintf(out, "log file:    %s\n", e.cfg.Log.File)
			for _, st := range saved {
				fmt.Fprintf(out, "%s = %s (updated %s)\n", st.Key, st.Value, st.UpdatedAt)
			}
			return nil
		},
	}
}

func runTUI(cmd *cobra.Command) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	// Initialize database
	database, err := db.New(e.cfg.SettingsDB)
	if err != nil {
		return fmt.Errorf("initializing settings database: %w", err)
	}
	defer database.Close()

	if !styles.Set(database.Theme(e.cfg.Theme)) {
		styles.Set(e.cfg.Theme)
	}

	// Unreadable files start empty; the error is kept in the log
	tasks, err := store.OpenTaskStore(e.cfg.TasksFile, e.storeOptions("tasks")...)
	if err != nil {
		warnLoad(cmd, err)
	}
	notes, err := store.OpenNoteStore(e.cfg.NotesFile, e.storeOptions("notes")...)
	if err != nil {
		warnLoad(cmd, err)
	}

	e.log.Infow("starting desk", "data_dir", e.cfg.DataDir, "theme", styles.Current().Name)

	// Create and run the application
	app := ui.NewApp(database, tasks, notes, e.log, e.cfg.ExportDir)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running application: %w", err)
	}
	return nil
}

func warnLoad(cmd *cobra.Command, err error) {
	var perr *store.PersistenceError
	if errors.As(err, &perr) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s could not be loaded, starting empty: %v\n", perr.Path, perr.Err)
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
}
