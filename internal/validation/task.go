// Package validation holds the side-effect free rules checked before every
// mutation of tasks, categories and accounts.
package validation

import (
	"strings"
	"time"
	"unicode/utf8"

	"task-tracker/internal/model"
)

const (
	MaxTitleLength        = 200
	MaxDescriptionLength  = 500
	MinSearchTermLength   = 2
	MinCategoryNameLength = 2
	MaxCategoryNameLength = 100
	MaxCategoryDescLength = 250
)

// ValidateTask checks a task against now. Checks run in a fixed order and the
// first violation wins: empty title, title length, due date, description length.
// Due dates are re-checked on every call, so a task that was valid when created
// fails once its due date has passed.
func ValidateTask(task model.Task, now time.Time) error {
	if strings.TrimSpace(task.Title) == "" {
		return model.NewValidationError(model.ErrInvalidTask, model.ErrTitleRequired)
	}
	if utf8.RuneCountInString(task.Title) > MaxTitleLength {
		return model.NewValidationError(model.ErrInvalidTask, model.ErrTitleTooLong)
	}
	if task.DueDate != nil && task.DueDate.Before(now) {
		return model.NewValidationError(model.ErrInvalidTask, model.ErrDueDateInPast)
	}
	if utf8.RuneCountInString(task.Description) > MaxDescriptionLength {
		return model.NewValidationError(model.ErrInvalidTask, model.ErrDescriptionTooLong)
	}
	if !task.Priority.Valid() {
		return model.NewValidationError(model.ErrInvalidTask, model.ErrInvalidPriority)
	}
	if !task.Status.Valid() {
		return model.NewValidationError(model.ErrInvalidTask, model.ErrInvalidStatus)
	}
	return nil
}

// ValidateSearchTerm rejects blank terms and terms shorter than two characters.
func ValidateSearchTerm(term string) error {
	if strings.TrimSpace(term) == "" {
		return model.NewValidationError(model.ErrInvalidSearchTerm, model.ErrSearchTermEmpty)
	}
	if utf8.RuneCountInString(term) < MinSearchTermLength {
		return model.NewValidationError(model.ErrInvalidSearchTerm, model.ErrSearchTermTooShort)
	}
	return nil
}

// ValidateRange fails when start is after end. Equal bounds are allowed.
func ValidateRange(start, end time.Time) error {
	if start.After(end) {
		return model.NewValidationError(model.ErrInvalidRange, model.ErrStartAfterEnd)
	}
	return nil
}

func ValidateCategory(category model.Category) error {
	n := utf8.RuneCountInString(strings.TrimSpace(category.Name))
	if n < MinCategoryNameLength || n > MaxCategoryNameLength {
		return model.NewValidationError(model.ErrInvalidCategory, model.ErrCategoryNameLength)
	}
	if utf8.RuneCountInString(category.Description) > MaxCategoryDescLength {
		return model.NewValidationError(model.ErrInvalidCategory, model.ErrCategoryDescTooLong)
	}
	return nil
}
