package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/config"
	"task-tracker/internal/model"
)

// setupEnv points the CLI at a fresh database file.
func setupEnv(t *testing.T) string {
	t.Helper()
	for _, key := range []string{
		"TASK_TRACKER_CONFIG", "TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID", "REPORT_INTERVAL_HOURS",
		"REPORT_DAILY_AT", "UPCOMING_DAYS", "LOG_LEVEL", "OTEL_EXPORTER_OTLP_ENDPOINT",
		"OTEL_SERVICE_NAME", "ENVIRONMENT", "TASK_TRACKER_PASSWORD",
	} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	t.Setenv("DATABASE_URL", filepath.Join(dir, "tracker.db"))
	t.Setenv("REPORT_EXPORT_DIR", filepath.Join(dir, "exports"))
	t.Setenv("BCRYPT_COST", "4")
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	require.NoError(t, err, "args: %v", args)
	return out
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "tasktracker", cmd.Use)
	assert.NotEmpty(t, cmd.Version)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"serve", "register", "task", "category", "report"} {
		assert.Contains(t, names, want)
	}
}

var idPattern = regexp.MustCompile(`[0-9a-f-]{36}`)

func TestCLI_TaskLifecycle(t *testing.T) {
	setupEnv(t)

	mustRun(t, "register", "--username", "alice", "--email", "alice@example.com", "--password", "secret1")

	_, err := run(t, "register", "--username", "alice", "--email", "other@example.com", "--password", "secret1")
	assert.ErrorIs(t, err, model.ErrUsernameTaken)

	_, err = run(t, "register", "--username", "carol", "--email", "carol@example.com", "--password", "secret1", "--confirm", "secret2")
	assert.ErrorIs(t, err, model.ErrPasswordMismatch)

	_, err = run(t, "task", "add", "--title", "Orphan")
	assert.ErrorIs(t, err, model.ErrNoActiveSession)

	_, err = run(t, "task", "add", "--user", "alice", "--password", "nope!!", "--title", "Orphan")
	assert.EqualError(t, err, "invalid username or password")

	out := mustRun(t, "category", "add", "--name", "Work")
	categoryID := idPattern.FindString(out)
	require.NotEmpty(t, categoryID)

	out = mustRun(t, "task", "add", "--user", "alice", "--password", "secret1",
		"--title", "Write docs", "--priority", "high", "--category", categoryID)
	taskID := idPattern.FindString(out)
	require.NotEmpty(t, taskID)

	t.Setenv("TASK_TRACKER_PASSWORD", "secret1")
	mustRun(t, "task", "add", "--user", "alice", "--title", "Gym", "--priority", "low")

	out = mustRun(t, "task", "list", "--category", categoryID)
	assert.Contains(t, out, "Write docs")
	assert.NotContains(t, out, "Gym")

	out = mustRun(t, "task", "list", "--user", "alice", "--priority", "low")
	assert.Contains(t, out, "Gym")

	out = mustRun(t, "task", "search", "DOCS")
	assert.Contains(t, out, taskID)

	_, err = run(t, "task", "search", "x")
	assert.ErrorIs(t, err, model.ErrInvalidSearchTerm)

	out = mustRun(t, "report", "--format", "csv")
	assert.Contains(t, out, "Status,Count,Percentage\nPending,2,100.0\nInProgress,0,0.0\nCompleted,0,0.0\n")

	mustRun(t, "task", "done", taskID)
	out = mustRun(t, "report", "--user", "alice")
	assert.Contains(t, out, "by alice")
	assert.Contains(t, out, "Completion: 50.0%")

	out = mustRun(t, "report")
	assert.Contains(t, out, "by system")

	out = mustRun(t, "report", "detailed")
	assert.Contains(t, out, "High: 1 total, 1 completed (100.0%)")

	_, err = run(t, "report", "--from", "2026-05-02", "--to", "2026-05-01")
	assert.ErrorIs(t, err, model.ErrInvalidRange)

	_, err = run(t, "report", "--format", "xml")
	assert.Error(t, err)

	mustRun(t, "category", "delete", categoryID)
	out = mustRun(t, "category", "list")
	assert.NotContains(t, out, "Work")

	mustRun(t, "task", "delete", taskID)
	_, err = run(t, "task", "delete", taskID)
	assert.ErrorIs(t, err, model.ErrTaskNotFound)
}

func TestBuildScheduler(t *testing.T) {
	dir := setupEnv(t)
	ctx := context.Background()

	cfg := config.Default()
	cfg.DatabaseURL = filepath.Join(dir, "sched.db")
	cfg.BcryptCost = 4
	cfg.Reports.DailyAt = "07:15"

	app, err := NewApp(ctx, cfg, &bytes.Buffer{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(ctx) })

	scheduler, err := buildScheduler(app, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, scheduler.Entries(), "digest needs the bot, export is daily")

	app.Config.Reports.DailyAt = ""
	scheduler, err = buildScheduler(app, nil)
	require.NoError(t, err)
	assert.Zero(t, scheduler.Entries())
}

func TestParseRange_EndOfDayAcrossClockChanges(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}
	prev := time.Local
	time.Local = loc
	t.Cleanup(func() { time.Local = prev })

	start, end, err := parseRange("2026-03-08", "2026-03-08")
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2026, 3, 8, 0, 0, 0, 0, loc)))
	assert.True(t, end.Equal(time.Date(2026, 3, 8, 23, 59, 59, int(time.Second-time.Nanosecond), loc)), "end %s", end)

	_, _, err = parseRange("03/08/2026", "")
	assert.Error(t, err)
}
