package service

import (
	"context"
	"time"

	"task-tracker/internal/model"
	"task-tracker/internal/query"
	"task-tracker/internal/validation"
)

// TaskStore is the storage contract for tasks. GetByID, Update and Delete
// return model.ErrTaskNotFound for unknown ids; storage failures come back as
// *model.PersistenceError.
type TaskStore interface {
	Add(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id string) (*model.Task, error)
	GetAll(ctx context.Context) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id string) error
	// Find returns the tasks matching c. Results must equal c.Apply(GetAll()).
	Find(ctx context.Context, c query.Criteria) ([]model.Task, error)
	// CountByStatus has an entry for every status.
	CountByStatus(ctx context.Context, c query.Criteria) (map[model.TaskStatus]int, error)
}

// UserGetter resolves a user by id, returning model.ErrUserNotFound for
// unknown ids.
type UserGetter interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

type UserStore interface {
	validation.UserLookup
	Add(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetAll(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string) error
}

type CategoryStore interface {
	Add(ctx context.Context, category *model.Category) error
	GetByID(ctx context.Context, id string) (*model.Category, error)
	GetAll(ctx context.Context) ([]model.Category, error)
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id string) error
}

// Clock returns the reference time for validation and reports.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
