package commands

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/tgienger/desk/internal/models"
	"github.com/tgienger/desk/internal/store"
)

// NewTasksCommand creates the tasks command with subcommands
func NewTasksCommand() *cobra.Command {
	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "Task list commands",
		Long:  "Add, complete, sort and delete tasks without starting the UI",
	}

	tasksCmd.AddCommand(&cobra.Command{
		Use:   "add <text>...",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: withTasks(func(cmd *cobra.Command, ts *store.TaskStore, args []string) error {
			task, err := ts.Add(strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added task %d: %s\n", task.ID, task.Text)
			return nil
		}),
	})

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks in stored order",
		Args:  cobra.NoArgs,
		RunE: withTasks(func(cmd *cobra.Command, ts *store.TaskStore, args []string) error {
			filter, _ := cmd.Flags().GetString("filter")
			printTasks(cmd.OutOrStdout(), ts.Filter(filter))
			return nil
		}),
	}
	listCmd.Flags().String("filter", "", "only show tasks containing this text (case-insensitive)")
	tasksCmd.AddCommand(listCmd)

	tasksCmd.AddCommand(&cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task between done and not done",
		Args:  cobra.ExactArgs(1),
		RunE: withTasks(func(cmd *cobra.Command, ts *store.TaskStore, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			task, err := ts.Toggle(id)
			if err != nil {
				return err
			}
			state := "not done"
			if task.Completed {
				state = "done"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task %d marked %s\n", task.ID, state)
			return nil
		}),
	})

	tasksCmd.AddCommand(&cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: withTasks(func(cmd *cobra.Command, ts *store.TaskStore, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			task, ok := ts.Get(id)
			if !ok {
				return fmt.Errorf("task %d: %w", id, store.ErrNotFound)
			}
			if ok, err := confirm(cmd, fmt.Sprintf("Delete task %q?", task.Text)); err != nil || !ok {
				return err
			}
			if err := ts.Delete(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %d\n", id)
			return nil
		}),
	})

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all tasks, or only completed ones with --completed",
		Args:  cobra.NoArgs,
		RunE: withTasks(func(cmd *cobra.Command, ts *store.TaskStore, args []string) error {
			completed, _ := cmd.Flags().GetBool("completed")

			n, clearFn := ts.Len(), ts.ClearAll
			question := fmt.Sprintf("Delete all %d %s?", n, plural(n, "task"))
			if completed {
				n, clearFn = ts.CompletedCount(), ts.ClearCompleted
				question = fmt.Sprintf("Delete %d completed %s?", n, plural(n, "task"))
			}

			if n > 0 {
				if ok, err := confirm(cmd, question); err != nil || !ok {
					return err
				}
			}
			removed, err := clearFn()
			if errors.Is(err, store.ErrNothingToClear) {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to delete.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d %s\n", removed, plural(removed, "task"))
			return nil
		}),
	}
	clearCmd.Flags().Bool("completed", false, "only delete completed tasks")
	tasksCmd.AddCommand(clearCmd)

	tasksCmd.AddCommand(&cobra.Command{
		Use:   "sort <order>",
		Short: "Reorder the stored task list",
		Long: "Reorder the stored task list. Orders: date_desc, date_asc, alpha_asc, alpha_desc, " +
			"completed_first, active_first.",
		Args: cobra.ExactArgs(1),
		RunE: withTasks(func(cmd *cobra.Command, ts *store.TaskStore, args []string) error {
			order, err := models.ParseSortOrder(args[0])
			if err != nil {
				return err
			}
			if err := ts.Sort(order); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sorted: %s\n", order.Label())
			return nil
		}),
	})

	tasksCmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Print task counts and progress",
		Args:  cobra.NoArgs,
		RunE: withTasks(func(cmd *cobra.Command, ts *store.TaskStore, args []string) error {
			st := ts.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "Total: %d | Done: %d | Remaining: %d | Progress: %.0f%%\n",
				st.Total, st.Completed, st.Remaining, st.Percent)
			return nil
		}),
	})

	return tasksCmd
}

type tasksRunFunc func(cmd *cobra.Command, ts *store.TaskStore, args []string) error

// withTasks loads the environment and task store around fn
func withTasks(fn tasksRunFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv(cmd)
		if err != nil {
			return err
		}
		defer e.close()

		ts, err := e.openTasks()
		if err != nil {
			return err
		}
		return fn(cmd, ts, args)
	}
}

func printTasks(w io.Writer, tasks []models.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks.")
		return
	}

	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		done := "[ ]"
		if t.Completed {
			done = "[x]"
		}
		rows = append(rows, []string{strconv.Itoa(t.ID), done, t.Text, t.Date})
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "DONE", "TASK", "CREATED").
		Rows(rows...)
	fmt.Fprintln(w, tbl.Render())
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
