package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"task-tracker/internal/config"
)

const version = "0.3.0"

type rootOptions struct {
	configFile string
	app        *App
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "tasktracker",
		Short: "Task tracker with reports and a Telegram front end",
		Long: `tasktracker keeps personal tasks in SQLite, searches them and builds
status and detailed reports. "serve" runs the Telegram bot and the
scheduled digests; the other commands work on the same database.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configFile)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			opts.app, err = NewApp(cmd.Context(), cfg, cmd.ErrOrStderr())
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.app == nil {
				return nil
			}
			return opts.app.Close(context.WithoutCancel(cmd.Context()))
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default: task-tracker.yaml)")

	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newRegisterCommand(opts))
	rootCmd.AddCommand(newTaskCommand(opts))
	rootCmd.AddCommand(newCategoryCommand(opts))
	rootCmd.AddCommand(newReportCommand(opts))

	return rootCmd
}
