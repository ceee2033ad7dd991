package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gorm.io/gorm"

	"task-tracker/internal/auth"
	"task-tracker/internal/config"
	"task-tracker/internal/repository"
	"task-tracker/internal/service"
	"task-tracker/internal/session"
	"task-tracker/internal/telemetry"
)

// App wires storage, services and telemetry for one process.
type App struct {
	Config     config.Config
	Logger     *slog.Logger
	Session    *session.Session
	Auth       *service.AuthService
	Tasks      *service.TaskService
	Categories *service.CategoryService
	Reports    *service.ReportService

	db     *gorm.DB
	tracer *sdktrace.TracerProvider
}

func NewApp(ctx context.Context, cfg config.Config, logOut io.Writer) (*App, error) {
	logger := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	tp, err := telemetry.InitTracerProvider(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.Environment)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("db: %w", err)
	}

	hasher, err := auth.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	sess := session.New()
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	return &App{
		Config:     cfg,
		Logger:     logger,
		Session:    sess,
		Auth:       service.NewAuthService(userRepo, hasher, sess, nil, logger),
		Tasks:      service.NewTaskService(taskRepo, userRepo, categoryRepo, sess, nil),
		Categories: service.NewCategoryService(categoryRepo),
		Reports:    service.NewReportService(taskRepo, sess, nil, cfg.Reports.UpcomingDays, logger),
		db:         db,
		tracer:     tp,
	}, nil
}

// Login authenticates the process session or fails with a readable error.
func (a *App) Login(ctx context.Context, username, password string) error {
	if username == "" {
		return errors.New("--user is required")
	}
	_, ok, err := a.Auth.Login(ctx, service.Credentials{Username: username, Password: password})
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("invalid username or password")
	}
	return nil
}

func (a *App) Close(ctx context.Context) error {
	var errs []error
	if sqlDB, err := a.db.DB(); err == nil {
		errs = append(errs, sqlDB.Close())
	}
	errs = append(errs, a.tracer.Shutdown(ctx))
	return errors.Join(errs...)
}
