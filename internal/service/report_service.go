package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"task-tracker/internal/model"
	"task-tracker/internal/query"
	"task-tracker/internal/report"
	"task-tracker/internal/session"
	"task-tracker/internal/validation"
)

var tracer = otel.Tracer("task-tracker/internal/service")

// SystemActor is recorded as report author when nobody is logged in.
const SystemActor = "system"

// ReportService scopes the task collection and hands it to the report builders.
type ReportService struct {
	tasks        TaskStore
	session      *session.Session
	clock        Clock
	upcomingDays int
	logger       *slog.Logger
}

// NewReportService builds detailed reports with an upcoming window of
// upcomingDays. Zero keeps only tasks due exactly at the reference time.
func NewReportService(tasks TaskStore, sess *session.Session, clock Clock, upcomingDays int, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReportService{tasks: tasks, session: sess, clock: clock, upcomingDays: upcomingDays, logger: logger}
}

func (s *ReportService) GenerateStatusReport(ctx context.Context) (report.StatusReport, error) {
	return s.statusReport(ctx, query.Criteria{})
}

func (s *ReportService) GenerateStatusReportForUser(ctx context.Context, userID string) (report.StatusReport, error) {
	return s.statusReport(ctx, query.Criteria{}.ForUser(userID))
}

// GenerateStatusReportForDateRange reports on tasks created in [start, end].
func (s *ReportService) GenerateStatusReportForDateRange(ctx context.Context, start, end time.Time) (report.StatusReport, error) {
	if err := validation.ValidateRange(start, end); err != nil {
		return report.StatusReport{}, err
	}
	return s.statusReport(ctx, query.ByCreatedRange(start, end))
}

func (s *ReportService) GenerateDetailedReport(ctx context.Context) (report.DetailedReport, error) {
	return s.detailedReport(ctx, query.Criteria{})
}

func (s *ReportService) GenerateDetailedReportForUser(ctx context.Context, userID string) (report.DetailedReport, error) {
	return s.detailedReport(ctx, query.Criteria{}.ForUser(userID))
}

// OverdueTasks returns incomplete tasks matching c whose due date has passed.
func (s *ReportService) OverdueTasks(ctx context.Context, c query.Criteria) ([]model.Task, error) {
	tasks, err := s.tasks.Find(ctx, c)
	if err != nil {
		return nil, err
	}
	return report.Overdue(tasks, s.clock.now()), nil
}

// UpcomingTasks returns incomplete tasks matching c due within days from now.
func (s *ReportService) UpcomingTasks(ctx context.Context, c query.Criteria, days int) ([]model.Task, error) {
	if days < 0 {
		return nil, model.NewValidationError(model.ErrInvalidRange, model.ErrUpcomingWindowNegative)
	}
	tasks, err := s.tasks.Find(ctx, c)
	if err != nil {
		return nil, err
	}
	return report.Upcoming(tasks, s.clock.now(), days), nil
}

func (s *ReportService) ExportReportToText(r report.StatusReport) string {
	return report.Text(r)
}

func (s *ReportService) ExportReportToCsv(r report.StatusReport) (string, error) {
	return report.CSV(r)
}

// WriteStatusCSV generates the status report for all tasks and writes it to
// dir/status-<timestamp>.csv. It returns the file path.
func (s *ReportService) WriteStatusCSV(ctx context.Context, dir string) (string, error) {
	r, err := s.GenerateStatusReport(ctx)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir %q: %w", dir, err)
	}
	path := filepath.Join(dir, fmt.Sprintf("status-%s.csv", r.GeneratedAt.UTC().Format("20060102T150405Z")))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	if err := report.WriteCSV(f, r); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close export file: %w", err)
	}

	s.logger.InfoContext(ctx, "status report exported", slog.String("path", path), slog.Int("tasks", r.TotalTasks))
	return path, nil
}

func (s *ReportService) statusReport(ctx context.Context, c query.Criteria) (report.StatusReport, error) {
	ctx, span := tracer.Start(ctx, "ReportService.StatusReport")
	defer span.End()

	tasks, err := s.tasks.Find(ctx, c)
	if err != nil {
		return report.StatusReport{}, err
	}
	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	return report.BuildStatusReport(tasks, s.actor(), s.clock.now()), nil
}

func (s *ReportService) detailedReport(ctx context.Context, c query.Criteria) (report.DetailedReport, error) {
	ctx, span := tracer.Start(ctx, "ReportService.DetailedReport",
		trace.WithAttributes(attribute.Int("report.upcoming_days", s.upcomingDays)))
	defer span.End()

	tasks, err := s.tasks.Find(ctx, c)
	if err != nil {
		return report.DetailedReport{}, err
	}
	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	return report.BuildDetailedReport(tasks, s.actor(), s.clock.now(), s.upcomingDays), nil
}

func (s *ReportService) actor() string {
	name, err := s.session.Username()
	if err != nil {
		return SystemActor
	}
	return name
}
