package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"task-tracker/internal/model"
)

var now = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

func validTask() model.Task {
	t := model.NewTask("user-1", "Plan sprint")
	return t
}

func TestValidateTask(t *testing.T) {
	past := now.Add(-time.Second)
	future := now.Add(time.Hour)

	tests := []struct {
		name   string
		mutate func(*model.Task)
		reason error
	}{
		{name: "valid without due date", mutate: func(*model.Task) {}},
		{name: "valid with due date now", mutate: func(t *model.Task) { t.DueDate = &now }},
		{name: "valid at length limits", mutate: func(t *model.Task) {
			t.Title = strings.Repeat("t", 200)
			t.Description = strings.Repeat("d", 500)
			t.DueDate = &future
		}},
		{name: "limits count runes, not bytes", mutate: func(t *model.Task) { t.Title = strings.Repeat("ж", 200) }},
		{name: "empty title", mutate: func(t *model.Task) { t.Title = "" }, reason: model.ErrTitleRequired},
		{name: "whitespace title", mutate: func(t *model.Task) { t.Title = " \t\n" }, reason: model.ErrTitleRequired},
		{name: "title too long", mutate: func(t *model.Task) { t.Title = strings.Repeat("t", 201) }, reason: model.ErrTitleTooLong},
		{name: "description too long", mutate: func(t *model.Task) { t.Description = strings.Repeat("d", 501) }, reason: model.ErrDescriptionTooLong},
		{name: "due date in the past", mutate: func(t *model.Task) { t.DueDate = &past }, reason: model.ErrDueDateInPast},
		{name: "unknown priority", mutate: func(t *model.Task) { t.Priority = 9 }, reason: model.ErrInvalidPriority},
		{name: "unknown status", mutate: func(t *model.Task) { t.Status = 0 }, reason: model.ErrInvalidStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := validTask()
			tt.mutate(&task)

			err := ValidateTask(task, now)
			if tt.reason == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.reason)
			assert.ErrorIs(t, err, model.ErrInvalidTask)
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
}

func TestValidateTask_OrderIsDeterministic(t *testing.T) {
	past := now.Add(-time.Hour)

	task := validTask()
	task.Title = "   "
	task.Description = strings.Repeat("d", 501)
	task.DueDate = &past
	assert.ErrorIs(t, ValidateTask(task, now), model.ErrTitleRequired)

	task.Title = strings.Repeat("t", 201)
	assert.ErrorIs(t, ValidateTask(task, now), model.ErrTitleTooLong)

	task.Title = "ok"
	assert.ErrorIs(t, ValidateTask(task, now), model.ErrDueDateInPast)

	task.DueDate = nil
	assert.ErrorIs(t, ValidateTask(task, now), model.ErrDescriptionTooLong)
}

func TestValidateTask_RecheckedAgainstLaterClock(t *testing.T) {
	due := now.Add(24 * time.Hour)
	task := validTask()
	task.DueDate = &due

	assert.NoError(t, ValidateTask(task, now))
	assert.ErrorIs(t, ValidateTask(task, now.Add(48*time.Hour)), model.ErrDueDateInPast)
}

func TestValidateSearchTerm(t *testing.T) {
	tests := []struct {
		term   string
		reason error
	}{
		{term: "ab"},
		{term: "report"},
		{term: "", reason: model.ErrSearchTermEmpty},
		{term: "   ", reason: model.ErrSearchTermEmpty},
		{term: "a", reason: model.ErrSearchTermTooShort},
		{term: "ж", reason: model.ErrSearchTermTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			err := ValidateSearchTerm(tt.term)
			if tt.reason == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.reason)
			assert.ErrorIs(t, err, model.ErrInvalidSearchTerm)
		})
	}
}

func TestValidateRange(t *testing.T) {
	assert.NoError(t, ValidateRange(now, now))
	assert.NoError(t, ValidateRange(now, now.Add(time.Hour)))

	err := ValidateRange(now.Add(time.Hour), now)
	assert.ErrorIs(t, err, model.ErrInvalidRange)
	assert.ErrorIs(t, err, model.ErrStartAfterEnd)
}

func TestValidateCategory(t *testing.T) {
	assert.NoError(t, ValidateCategory(model.Category{Name: "Work"}))
	assert.NoError(t, ValidateCategory(model.Category{Name: "ab", Description: strings.Repeat("x", 250)}))

	assert.ErrorIs(t, ValidateCategory(model.Category{Name: " a "}), model.ErrCategoryNameLength)
	assert.ErrorIs(t, ValidateCategory(model.Category{Name: strings.Repeat("n", 101)}), model.ErrCategoryNameLength)
	assert.ErrorIs(t, ValidateCategory(model.Category{Name: "Work", Description: strings.Repeat("x", 251)}), model.ErrCategoryDescTooLong)
}
