package model

import (
	"errors"
	"fmt"
)

// Failure kinds. Every error returned by the core matches exactly one of
// these through errors.Is, or is a *PersistenceError.
var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrNoActiveSession = errors.New("no user is currently logged in")
)

var (
	ErrInvalidTask         = fmt.Errorf("invalid task: %w", ErrValidation)
	ErrInvalidSearchTerm   = fmt.Errorf("invalid search term: %w", ErrValidation)
	ErrInvalidRange        = fmt.Errorf("invalid range: %w", ErrValidation)
	ErrInvalidCategory     = fmt.Errorf("invalid category: %w", ErrValidation)
	ErrInvalidRegistration = fmt.Errorf("invalid registration: %w", ErrValidation)
	ErrPasswordMismatch    = fmt.Errorf("passwords do not match: %w", ErrValidation)

	ErrUsernameTaken = fmt.Errorf("username is already taken: %w", ErrConflict)
	ErrEmailTaken    = fmt.Errorf("email is already registered: %w", ErrConflict)

	ErrTaskNotFound     = fmt.Errorf("task %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
)

// Reasons attached to a ValidationError.
var (
	ErrTitleRequired          = errors.New("task title cannot be empty")
	ErrTitleTooLong           = errors.New("task title cannot exceed 200 characters")
	ErrDescriptionTooLong     = errors.New("task description cannot exceed 500 characters")
	ErrDueDateInPast          = errors.New("due date cannot be in the past")
	ErrInvalidPriority        = errors.New("unknown task priority")
	ErrInvalidStatus          = errors.New("unknown task status")
	ErrOwnerRequired          = errors.New("task owner is required")
	ErrSearchTermEmpty        = errors.New("search term cannot be empty")
	ErrSearchTermTooShort     = errors.New("search term must be at least 2 characters")
	ErrStartAfterEnd          = errors.New("start date cannot be after end date")
	ErrCategoryNameLength     = errors.New("category name must be between 2 and 100 characters")
	ErrCategoryDescTooLong    = errors.New("category description cannot exceed 250 characters")
	ErrUsernameLength         = errors.New("username must be between 5 and 50 characters")
	ErrEmailFormat            = errors.New("email must be a valid address of at most 100 characters")
	ErrPasswordTooShort       = errors.New("password must be at least 6 characters")
	ErrPasswordTooLong        = errors.New("password must be at most 72 bytes")
	ErrUpcomingWindowNegative = errors.New("upcoming window cannot be negative")
)

// ValidationError pairs a failure kind (ErrInvalidTask, ...) with the
// concrete reason. Both are reachable through errors.Is.
type ValidationError struct {
	Kind   error
	Reason error
}

func NewValidationError(kind, reason error) *ValidationError {
	return &ValidationError{Kind: kind, Reason: reason}
}

func (e *ValidationError) Error() string {
	return e.Reason.Error()
}

func (e *ValidationError) Unwrap() []error {
	return []error{e.Kind, e.Reason}
}

// PersistenceError reports a failure of the storage collaborator.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistence reports whether err came from the storage layer.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
