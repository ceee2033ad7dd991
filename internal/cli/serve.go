package cli

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"task-tracker/internal/bot"
	"task-tracker/internal/service"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot and scheduled report jobs",
		Long: `Runs until interrupted. With a Telegram token the bot answers the owner
chat and the detailed digest is pushed every reports.interval_hours.
With reports.daily_at set, the status report is exported as CSV once a day.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts.app)
		},
	}
}

func serve(ctx context.Context, app *App) error {
	cfg := app.Config
	logger := app.Logger

	var telegramBot *bot.Bot
	if cfg.Telegram.Token != "" {
		var err error
		telegramBot, err = bot.New(cfg.Telegram.Token, bot.Services{
			Auth:       app.Auth,
			Tasks:      app.Tasks,
			Categories: app.Categories,
			Reports:    app.Reports,
		}, cfg.Telegram.ChatID, cfg.Reports.UpcomingDays, logger)
		if err != nil {
			return err
		}
	}

	scheduler, err := buildScheduler(app, telegramBot)
	if err != nil {
		return err
	}
	if scheduler.Entries() > 0 {
		scheduler.Start()
		defer scheduler.Stop()
	}

	logger.Info("task tracker started", slog.Bool("bot", telegramBot != nil), slog.Int("jobs", scheduler.Entries()))
	if telegramBot != nil {
		if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	} else {
		<-ctx.Done()
	}
	logger.Info("shutdown complete")
	return nil
}

// buildScheduler registers the digest and CSV export jobs that cfg enables.
func buildScheduler(app *App, telegramBot *bot.Bot) (*service.SchedulerService, error) {
	cfg := app.Config
	scheduler := service.NewSchedulerService(time.Local, app.Logger)

	if telegramBot != nil && cfg.ReportInterval() > 0 {
		if _, err := scheduler.ScheduleInterval(cfg.ReportInterval(), "digest", telegramBot.SendDigest); err != nil {
			return nil, err
		}
	}

	if cfg.Reports.DailyAt != "" {
		export := func(ctx context.Context) error {
			_, err := app.Reports.WriteStatusCSV(ctx, cfg.Reports.ExportDir)
			return err
		}
		if _, err := scheduler.ScheduleDaily(cfg.Reports.DailyAt, "csv-export", export); err != nil {
			return nil, err
		}
	}

	return scheduler, nil
}
