package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"task-tracker/internal/model"
	"task-tracker/internal/query"
)

const dateLayout = "2006-01-02"

type credentialFlags struct {
	user     string
	password string
}

// login authenticates when --user is set. It reports whether a session exists.
func (c credentialFlags) login(ctx context.Context, app *App) (bool, error) {
	if c.user == "" {
		return false, nil
	}
	password := c.password
	if password == "" {
		password = os.Getenv("TASK_TRACKER_PASSWORD")
	}
	if err := app.Login(ctx, c.user, password); err != nil {
		return false, err
	}
	return true, nil
}

func (c *credentialFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&c.user, "user", "", "act as this user")
	cmd.PersistentFlags().StringVar(&c.password, "password", "", "password for --user (default: $TASK_TRACKER_PASSWORD)")
}

func newTaskCommand(opts *rootOptions) *cobra.Command {
	creds := &credentialFlags{}

	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}
	creds.register(cmd)

	cmd.AddCommand(newTaskAddCommand(opts, creds))
	cmd.AddCommand(newTaskListCommand(opts, creds))
	cmd.AddCommand(newTaskSearchCommand(opts, creds))
	cmd.AddCommand(newTaskDoneCommand(opts, creds))
	cmd.AddCommand(newTaskDeleteCommand(opts))

	return cmd
}

func newTaskAddCommand(opts *rootOptions, creds *credentialFlags) *cobra.Command {
	var (
		task     model.Task
		due      string
		priority string
		category string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task for --user",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := creds.login(ctx, opts.app); err != nil {
				return err
			}

			if due != "" {
				t, err := time.ParseInLocation(dateLayout, due, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --due %q, expected %s", due, dateLayout)
				}
				t = time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
				task.DueDate = &t
			}
			if priority != "" {
				p, err := model.ParsePriority(priority)
				if err != nil {
					return err
				}
				task.Priority = p
			}
			if category != "" {
				task.CategoryID = &category
			}

			if err := opts.app.Tasks.AddTaskForCurrentUser(ctx, &task); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added task %s\n", task.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&task.Title, "title", "", "task title")
	cmd.Flags().StringVar(&task.Description, "description", "", "task description")
	cmd.Flags().StringVar(&due, "due", "", "due date, "+dateLayout)
	cmd.Flags().StringVar(&priority, "priority", "", "low, medium or high")
	cmd.Flags().StringVar(&category, "category", "", "category id")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newTaskListCommand(opts *rootOptions, creds *credentialFlags) *cobra.Command {
	var status, priority, category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, only those of --user when given",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := scopeFor(ctx, opts.app, creds)
			if err != nil {
				return err
			}
			if status != "" {
				s, err := model.ParseStatus(status)
				if err != nil {
					return err
				}
				c.Status = &s
			}
			if priority != "" {
				p, err := model.ParsePriority(priority)
				if err != nil {
					return err
				}
				c.Priority = &p
			}
			if category != "" {
				c.CategoryID = &category
			}

			tasks, err := opts.app.Tasks.Find(ctx, c)
			if err != nil {
				return err
			}
			return writeTasks(cmd.OutOrStdout(), tasks)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "pending, in progress or completed")
	cmd.Flags().StringVar(&priority, "priority", "", "low, medium or high")
	cmd.Flags().StringVar(&category, "category", "", "category id")

	return cmd
}

func newTaskSearchCommand(opts *rootOptions, creds *credentialFlags) *cobra.Command {
	var titleOnly bool

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search titles and descriptions, ignoring case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := creds.login(ctx, opts.app); err != nil {
				return err
			}

			var (
				tasks []model.Task
				err   error
			)
			if titleOnly {
				tasks, err = opts.app.Tasks.SearchByTitle(ctx, args[0])
			} else {
				tasks, err = opts.app.Tasks.Search(ctx, args[0])
			}
			if err != nil {
				return err
			}
			return writeTasks(cmd.OutOrStdout(), tasks)
		},
	}

	cmd.Flags().BoolVar(&titleOnly, "title-only", false, "match titles only")
	return cmd
}

func newTaskDoneCommand(opts *rootOptions, creds *credentialFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := creds.login(ctx, opts.app); err != nil {
				return err
			}
			task, err := opts.app.Tasks.SetStatus(ctx, args[0], model.StatusCompleted)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Completed %q\n", task.Title)
			return nil
		},
	}
}

func newTaskDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.app.Tasks.DeleteTask(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

// scopeFor returns criteria limited to the logged in --user, or all tasks.
func scopeFor(ctx context.Context, app *App, creds *credentialFlags) (query.Criteria, error) {
	ok, err := creds.login(ctx, app)
	if err != nil || !ok {
		return query.Criteria{}, err
	}
	userID, err := app.Session.UserID()
	if err != nil {
		return query.Criteria{}, err
	}
	return query.Criteria{}.ForUser(userID), nil
}

func writeTasks(w io.Writer, tasks []model.Task) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tPRIORITY\tDUE\tTITLE")
	for _, t := range tasks {
		due := "-"
		if t.DueDate != nil {
			due = t.DueDate.Local().Format(dateLayout)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Status, t.Priority, due, t.Title)
	}
	return tw.Flush()
}
