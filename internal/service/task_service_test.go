package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/internal/model"
	"task-tracker/internal/query"
)

func TestTaskService_AddTask(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	task := &model.Task{Title: "Write report", UserID: "u1", DueDate: ptr(now.Add(24 * time.Hour))}
	require.NoError(t, e.tasks.AddTask(ctx, task))

	assert.NotEmpty(t, task.ID)
	assert.True(t, task.CreatedAt.Equal(now))
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.Equal(t, model.StatusPending, task.Status)

	stored, err := e.tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Write report", stored.Title)
}

func TestTaskService_AddTaskRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	tests := []struct {
		name   string
		task   model.Task
		reason error
	}{
		{"blank title", model.Task{Title: "   ", UserID: "u1"}, model.ErrTitleRequired},
		{"past due date", model.Task{Title: "Late", UserID: "u1", DueDate: ptr(now.Add(-time.Minute))}, model.ErrDueDateInPast},
		{"no owner", model.Task{Title: "Orphan"}, model.ErrOwnerRequired},
		{"bad priority", model.Task{Title: "Odd", UserID: "u1", Priority: 9}, model.ErrInvalidPriority},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := tt.task
			err := e.tasks.AddTask(ctx, &task)
			assert.ErrorIs(t, err, model.ErrInvalidTask)
			assert.ErrorIs(t, err, tt.reason)
		})
	}

	all, err := e.tasks.GetAllTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTaskService_AddTaskUnknownCategory(t *testing.T) {
	e := newEnv(t)
	err := e.tasks.AddTask(context.Background(), &model.Task{Title: "Filed", UserID: "u1", CategoryID: ptr("nope")})
	assert.ErrorIs(t, err, model.ErrCategoryNotFound)
}

func TestTaskService_AddTaskUnknownOwner(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	err := e.tasks.AddTask(ctx, &model.Task{Title: "Stray", UserID: "no-such-user"})
	assert.ErrorIs(t, err, model.ErrUserNotFound)
	assert.ErrorIs(t, err, model.ErrNotFound)

	e.session.Login(model.User{ID: "ghost", Username: "ghost"})
	err = e.tasks.AddTaskForCurrentUser(ctx, &model.Task{Title: "Haunted"})
	assert.ErrorIs(t, err, model.ErrUserNotFound)

	all, err := e.tasks.GetAllTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTaskService_AddTaskForCurrentUser(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	err := e.tasks.AddTaskForCurrentUser(ctx, &model.Task{Title: "Anonymous"})
	assert.ErrorIs(t, err, model.ErrNoActiveSession)

	e.session.Login(model.User{ID: "u7", Username: "alice"})
	task := &model.Task{Title: "Mine"}
	require.NoError(t, e.tasks.AddTaskForCurrentUser(ctx, task))
	assert.Equal(t, "u7", task.UserID)
}

func TestTaskService_UpdateTask(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	task := &model.Task{Title: "Draft", UserID: "u1"}
	require.NoError(t, e.tasks.AddTask(ctx, task))

	changed := *task
	changed.Title = "Final"
	changed.UserID = "intruder"
	changed.CreatedAt = now.AddDate(-1, 0, 0)
	require.NoError(t, e.tasks.UpdateTask(ctx, &changed))

	stored, err := e.tasks.GetTask(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final", stored.Title)
	assert.Equal(t, "u1", stored.UserID)
	assert.True(t, stored.CreatedAt.Equal(now))

	changed.DueDate = ptr(now.Add(-time.Hour))
	err = e.tasks.UpdateTask(ctx, &changed)
	assert.ErrorIs(t, err, model.ErrDueDateInPast)

	err = e.tasks.UpdateTask(ctx, &model.Task{ID: "missing", Title: "Ghost", Priority: model.PriorityLow, Status: model.StatusPending})
	assert.ErrorIs(t, err, model.ErrTaskNotFound)
}

func TestTaskService_SetStatus(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	task := &model.Task{Title: "Ship", UserID: "u1"}
	require.NoError(t, e.tasks.AddTask(ctx, task))

	updated, err := e.tasks.SetStatus(ctx, task.ID, model.StatusCompleted)
	require.NoError(t, err)
	assert.True(t, updated.IsCompleted())

	_, err = e.tasks.SetStatus(ctx, task.ID, model.TaskStatus(42))
	assert.ErrorIs(t, err, model.ErrInvalidStatus)

	_, err = e.tasks.SetStatus(ctx, "missing", model.StatusCompleted)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestTaskService_DeleteTask(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	task := &model.Task{Title: "Temp", UserID: "u1"}
	require.NoError(t, e.tasks.AddTask(ctx, task))
	require.NoError(t, e.tasks.DeleteTask(ctx, task.ID))

	_, err := e.tasks.GetTask(ctx, task.ID)
	assert.ErrorIs(t, err, model.ErrTaskNotFound)
	assert.ErrorIs(t, e.tasks.DeleteTask(ctx, task.ID), model.ErrTaskNotFound)
}

func TestTaskService_Search(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	e.addTask(t, "u1", "Quarterly Report", model.StatusPending, model.PriorityHigh, nil)
	e.addTask(t, "u1", "Gym", model.StatusCompleted, model.PriorityLow, ptr(now.Add(48*time.Hour)))
	e.addTask(t, "u2", "Read book", model.StatusInProgress, model.PriorityMedium, ptr(now.Add(5*24*time.Hour)))

	found, err := e.tasks.Search(ctx, "REPORT")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Quarterly Report", found[0].Title)

	found, err = e.tasks.Search(ctx, "zz")
	require.NoError(t, err)
	assert.NotNil(t, found)
	assert.Empty(t, found)

	_, err = e.tasks.Search(ctx, "  ")
	assert.ErrorIs(t, err, model.ErrInvalidSearchTerm)
	assert.ErrorIs(t, err, model.ErrSearchTermEmpty)

	_, err = e.tasks.SearchByTitle(ctx, "r")
	assert.ErrorIs(t, err, model.ErrSearchTermTooShort)

	found, err = e.tasks.SearchByStatus(ctx, model.StatusCompleted)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = e.tasks.SearchByPriority(ctx, model.PriorityMedium)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = e.tasks.GetUserTasks(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestTaskService_SearchByDateRange(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	e.addTask(t, "u1", "Soon", model.StatusPending, model.PriorityHigh, ptr(now.Add(24*time.Hour)))
	e.addTask(t, "u1", "Later", model.StatusPending, model.PriorityHigh, ptr(now.Add(10*24*time.Hour)))
	e.addTask(t, "u1", "Never", model.StatusPending, model.PriorityHigh, nil)

	found, err := e.tasks.SearchByDateRange(ctx, now, now.Add(3*24*time.Hour))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Soon", found[0].Title)

	_, err = e.tasks.SearchByDateRange(ctx, now.Add(time.Hour), now)
	assert.ErrorIs(t, err, model.ErrInvalidRange)
	assert.ErrorIs(t, err, model.ErrStartAfterEnd)

	_, err = e.tasks.Find(ctx, query.ByCreatedRange(now, now.Add(-time.Hour)))
	assert.ErrorIs(t, err, model.ErrInvalidRange)
}

func TestTaskService_StatusCounts(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	e.addTask(t, "u1", "A", model.StatusPending, model.PriorityHigh, nil)
	e.addTask(t, "u1", "B", model.StatusPending, model.PriorityLow, nil)
	e.addTask(t, "u2", "C", model.StatusCompleted, model.PriorityLow, nil)

	counts, err := e.tasks.StatusCounts(ctx, query.Criteria{}.ForUser("u1"))
	require.NoError(t, err)
	assert.Equal(t, map[model.TaskStatus]int{
		model.StatusPending:    2,
		model.StatusInProgress: 0,
		model.StatusCompleted:  0,
	}, counts)
}
