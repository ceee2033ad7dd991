package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"task-tracker/internal/report"
)

func newReportCommand(opts *rootOptions) *cobra.Command {
	creds := &credentialFlags{}
	var format, from, to, out string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the status report",
		Long: `Prints the status report for all tasks, for --user, or for tasks created
between --from and --to. --format csv writes the breakdown as CSV.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app := opts.app

			var (
				r   report.StatusReport
				err error
			)
			switch {
			case from != "" || to != "":
				start, end, perr := parseRange(from, to)
				if perr != nil {
					return perr
				}
				if _, err := creds.login(ctx, app); err != nil {
					return err
				}
				r, err = app.Reports.GenerateStatusReportForDateRange(ctx, start, end)
			case creds.user != "":
				c, serr := scopeFor(ctx, app, creds)
				if serr != nil {
					return serr
				}
				r, err = app.Reports.GenerateStatusReportForUser(ctx, *c.UserID)
			default:
				r, err = app.Reports.GenerateStatusReport(ctx)
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create %s: %w", out, err)
				}
				defer f.Close()
				w = f
			}
			return writeReport(w, r, format)
		},
	}
	creds.register(cmd)
	cmd.Flags().StringVar(&format, "format", "text", "text or csv")
	cmd.Flags().StringVar(&from, "from", "", "created on or after, "+dateLayout)
	cmd.Flags().StringVar(&to, "to", "", "created on or before, "+dateLayout)
	cmd.Flags().StringVarP(&out, "output", "o", "", "write to file instead of stdout")

	cmd.AddCommand(newDetailedReportCommand(opts, creds))
	cmd.AddCommand(newOverdueCommand(opts, creds))
	cmd.AddCommand(newUpcomingCommand(opts, creds))
	return cmd
}

func newDetailedReportCommand(opts *rootOptions, creds *credentialFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "detailed",
		Short: "Print status, priority breakdown, overdue and upcoming tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := scopeFor(ctx, opts.app, creds)
			if err != nil {
				return err
			}

			var r report.DetailedReport
			if c.UserID != nil {
				r, err = opts.app.Reports.GenerateDetailedReportForUser(ctx, *c.UserID)
			} else {
				r, err = opts.app.Reports.GenerateDetailedReport(ctx)
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if err := report.WriteText(w, r.StatusSummary); err != nil {
				return err
			}
			fmt.Fprintln(w)
			for _, p := range r.PriorityBreakdown {
				fmt.Fprintf(w, "%s: %d total, %d completed (%.1f%%)\n", p.Priority, p.TotalCount, p.CompletedCount, p.CompletionRate*100)
			}
			fmt.Fprintf(w, "Average planned duration: %s\n", r.AverageCompletionTime.Round(time.Minute))
			fmt.Fprintln(w, "\nOverdue:")
			if err := writeTasks(w, r.OverdueTasks); err != nil {
				return err
			}
			fmt.Fprintln(w, "\nUpcoming:")
			return writeTasks(w, r.UpcomingTasks)
		},
	}
}

func newOverdueCommand(opts *rootOptions, creds *credentialFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "List incomplete tasks past their due date",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := scopeFor(ctx, opts.app, creds)
			if err != nil {
				return err
			}
			tasks, err := opts.app.Reports.OverdueTasks(ctx, c)
			if err != nil {
				return err
			}
			return writeTasks(cmd.OutOrStdout(), tasks)
		},
	}
}

func newUpcomingCommand(opts *rootOptions, creds *credentialFlags) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "List incomplete tasks due within --days",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := scopeFor(ctx, opts.app, creds)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("days") {
				days = opts.app.Config.Reports.UpcomingDays
			}
			tasks, err := opts.app.Reports.UpcomingTasks(ctx, c, days)
			if err != nil {
				return err
			}
			return writeTasks(cmd.OutOrStdout(), tasks)
		},
	}
	cmd.Flags().IntVar(&days, "days", report.DefaultUpcomingDays, "window in days")
	return cmd
}

func writeReport(w io.Writer, r report.StatusReport, format string) error {
	switch format {
	case "text", "":
		return report.WriteText(w, r)
	case "csv":
		return report.WriteCSV(w, r)
	default:
		return fmt.Errorf("unknown format %q, expected text or csv", format)
	}
}

// parseRange reads inclusive day bounds. A missing side is open.
func parseRange(from, to string) (time.Time, time.Time, error) {
	start := time.Time{}
	end := time.Now().AddDate(100, 0, 0)
	if from != "" {
		t, err := time.ParseInLocation(dateLayout, from, time.Local)
		if err != nil {
			return start, end, fmt.Errorf("invalid --from %q, expected %s", from, dateLayout)
		}
		start = t
	}
	if to != "" {
		t, err := time.ParseInLocation(dateLayout, to, time.Local)
		if err != nil {
			return start, end, fmt.Errorf("invalid --to %q, expected %s", to, dateLayout)
		}
		end = time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
	}
	return start, end, nil
}
