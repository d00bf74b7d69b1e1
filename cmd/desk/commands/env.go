package commands

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/tgienger/desk/internal/config"
	"github.com/tgienger/desk/internal/logging"
	"github.com/tgienger/desk/internal/store"
)

// env is what every command needs: the resolved config and a file logger
type env struct {
	cfg *config.Config
	log *logging.Logger
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	// run ties together the lines written by one process
	log = &logging.Logger{SugaredLogger: log.With("run", uuid.New().String())}
	return &env{cfg: cfg, log: log}, nil
}

func (e *env) close() {
	_ = e.log.Close()
}

func (e *env) storeOptions(component string) []store.Option {
	return []store.Option{store.WithLogger(e.log.WithComponent(component).SugaredLogger)}
}

// openTasks fails on an unreadable file so a command never overwrites it
func (e *env) openTasks() (*store.TaskStore, error) {
	ts, err := store.OpenTaskStore(e.cfg.TasksFile, e.storeOptions("tasks")...)
	if err != nil {
		return nil, err
	}
	return ts, nil
}

func (e *env) openNotes() (*store.NoteStore, error) {
	ns, err := store.OpenNoteStore(e.cfg.NotesFile, e.storeOptions("notes")...)
	if err != nil {
		return nil, err
	}
	return ns, nil
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

// confirm asks a yes/no question on the command's input unless --yes was given
func confirm(cmd *cobra.Command, question string) (bool, error) {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true, nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
	return false, nil
}
