package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/logger"

	"task-tracker/internal/auth"
	"task-tracker/internal/model"
	"task-tracker/internal/repository"
	"task-tracker/internal/session"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() Clock { return func() time.Time { return now } }

func ptr[T any](v T) *T { return &v }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type env struct {
	session    *session.Session
	tasks      *TaskService
	categories *CategoryService
	auth       *AuthService
	reports    *ReportService
	users      *repository.UserRepository
	taskRepo   *repository.TaskRepository
}

// newEnv wires every service over a fresh in-memory database holding the
// owners u1, u2 and u7.
func newEnv(t *testing.T) *env {
	t.Helper()

	db, err := repository.NewDB(":memory:")
	require.NoError(t, err)
	db.Logger = logger.Default.LogMode(logger.Silent)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	hasher, err := auth.NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)

	sess := session.New()
	taskRepo := repository.NewTaskRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	userRepo := repository.NewUserRepository(db)

	for _, id := range []string{"u1", "u2", "u7"} {
		owner := &model.User{ID: id, Username: "user-" + id, Email: id + "@example.com", PasswordHash: "hash", CreatedAt: now}
		require.NoError(t, userRepo.Add(context.Background(), owner))
	}

	return &env{
		session:    sess,
		tasks:      NewTaskService(taskRepo, userRepo, categoryRepo, sess, fixedClock()),
		categories: NewCategoryService(categoryRepo),
		auth:       NewAuthService(userRepo, hasher, sess, fixedClock(), quietLogger()),
		reports:    NewReportService(taskRepo, sess, fixedClock(), 7, quietLogger()),
		users:      userRepo,
		taskRepo:   taskRepo,
	}
}

// addTask stores a task directly, bypassing due date validation.
func (e *env) addTask(t *testing.T, userID, title string, status model.TaskStatus, priority model.TaskPriority, due *time.Time) *model.Task {
	t.Helper()
	task := model.NewTask(userID, title)
	task.ID = title + "-" + userID
	task.Status = status
	task.Priority = priority
	task.DueDate = due
	task.CreatedAt = now.Add(-time.Hour)
	require.NoError(t, e.taskRepo.Add(context.Background(), &task))
	return &task
}

var errBroken = errors.New("disk I/O error")

// brokenUsers fails every lookup with a storage error.
type brokenUsers struct{ UserStore }

func (brokenUsers) GetByUsername(context.Context, string) (*model.User, error) {
	return nil, &model.PersistenceError{Op: "get user", Err: errBroken}
}

func (brokenUsers) ExistsByUsername(context.Context, string) (bool, error) {
	return false, &model.PersistenceError{Op: "check username", Err: errBroken}
}

func (brokenUsers) ExistsByEmail(context.Context, string) (bool, error) {
	return false, &model.PersistenceError{Op: "check email", Err: errBroken}
}

// staleUsers reports every username and email as free until the first insert,
// as if another registration committed between the checks and the insert.
type staleUsers struct {
	UserStore
	inserted bool
}

func (s *staleUsers) Add(ctx context.Context, user *model.User) error {
	s.inserted = true
	return s.UserStore.Add(ctx, user)
}

func (s *staleUsers) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if !s.inserted {
		return false, nil
	}
	return s.UserStore.ExistsByUsername(ctx, username)
}

func (s *staleUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if !s.inserted {
		return false, nil
	}
	return s.UserStore.ExistsByEmail(ctx, email)
}
