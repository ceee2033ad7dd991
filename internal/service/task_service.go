package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"task-tracker/internal/model"
	"task-tracker/internal/query"
	"task-tracker/internal/session"
	"task-tracker/internal/validation"
)

// TaskService wraps task-related business logic.
type TaskService struct {
	tasks      TaskStore
	users      UserGetter
	categories CategoryStore
	session    *session.Session
	clock      Clock
}

func NewTaskService(tasks TaskStore, users UserGetter, categories CategoryStore, sess *session.Session, clock Clock) *TaskService {
	return &TaskService{tasks: tasks, users: users, categories: categories, session: sess, clock: clock}
}

// AddTask validates and stores a new task. It assigns the id and creation time
// and fills in the default priority and status when they are unset.
func (s *TaskService) AddTask(ctx context.Context, task *model.Task) error {
	now := s.clock.now()

	if task.Priority == 0 {
		task.Priority = model.PriorityMedium
	}
	if task.Status == 0 {
		task.Status = model.StatusPending
	}
	if err := validation.ValidateTask(*task, now); err != nil {
		return err
	}
	if task.UserID == "" {
		return model.NewValidationError(model.ErrInvalidTask, model.ErrOwnerRequired)
	}
	if _, err := s.users.GetByID(ctx, task.UserID); err != nil {
		return err
	}
	if err := s.checkCategory(ctx, task.CategoryID); err != nil {
		return err
	}

	task.ID = uuid.NewString()
	task.CreatedAt = now
	return s.tasks.Add(ctx, task)
}

// AddTaskForCurrentUser stores task on behalf of the logged in user.
func (s *TaskService) AddTaskForCurrentUser(ctx context.Context, task *model.Task) error {
	userID, err := s.session.UserID()
	if err != nil {
		return err
	}
	task.UserID = userID
	return s.AddTask(ctx, task)
}

// UpdateTask re-validates task, including its due date, and replaces the stored
// values. Owner and creation time always come from the stored task.
func (s *TaskService) UpdateTask(ctx context.Context, task *model.Task) error {
	if err := validation.ValidateTask(*task, s.clock.now()); err != nil {
		return err
	}

	existing, err := s.tasks.GetByID(ctx, task.ID)
	if err != nil {
		return err
	}
	if err := s.checkCategory(ctx, task.CategoryID); err != nil {
		return err
	}

	task.UserID = existing.UserID
	task.CreatedAt = existing.CreatedAt
	return s.tasks.Update(ctx, task)
}

// SetStatus moves a task to status through the regular update path.
func (s *TaskService) SetStatus(ctx context.Context, id string, status model.TaskStatus) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	task.Status = status
	if err := s.UpdateTask(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	if _, err := s.tasks.GetByID(ctx, id); err != nil {
		return err
	}
	return s.tasks.Delete(ctx, id)
}

func (s *TaskService) GetTask(ctx context.Context, id string) (*model.Task, error) {
	return s.tasks.GetByID(ctx, id)
}

func (s *TaskService) GetAllTasks(ctx context.Context) ([]model.Task, error) {
	return s.tasks.GetAll(ctx)
}

func (s *TaskService) GetUserTasks(ctx context.Context, userID string) ([]model.Task, error) {
	return s.tasks.Find(ctx, query.Criteria{}.ForUser(userID))
}

// Search matches term against title and description, ignoring case.
func (s *TaskService) Search(ctx context.Context, term string) ([]model.Task, error) {
	if err := validation.ValidateSearchTerm(term); err != nil {
		return nil, err
	}
	return s.Find(ctx, query.ByText(term))
}

func (s *TaskService) SearchByTitle(ctx context.Context, title string) ([]model.Task, error) {
	if err := validation.ValidateSearchTerm(title); err != nil {
		return nil, err
	}
	return s.Find(ctx, query.ByTitle(title))
}

func (s *TaskService) SearchByStatus(ctx context.Context, status model.TaskStatus) ([]model.Task, error) {
	return s.Find(ctx, query.ByStatus(status))
}

func (s *TaskService) SearchByPriority(ctx context.Context, priority model.TaskPriority) ([]model.Task, error) {
	return s.Find(ctx, query.ByPriority(priority))
}

func (s *TaskService) SearchByCategory(ctx context.Context, categoryID string) ([]model.Task, error) {
	return s.Find(ctx, query.ByCategory(categoryID))
}

// SearchByDateRange returns tasks due in [start, end].
func (s *TaskService) SearchByDateRange(ctx context.Context, start, end time.Time) ([]model.Task, error) {
	if err := validation.ValidateRange(start, end); err != nil {
		return nil, err
	}
	return s.Find(ctx, query.ByDueRange(start, end))
}

// Find validates the text terms and ranges of c before querying.
func (s *TaskService) Find(ctx context.Context, c query.Criteria) ([]model.Task, error) {
	if err := validateCriteria(c); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.Find(ctx, c)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks, nil
}

// StatusCounts counts the tasks matching c per status.
func (s *TaskService) StatusCounts(ctx context.Context, c query.Criteria) (map[model.TaskStatus]int, error) {
	if err := validateCriteria(c); err != nil {
		return nil, err
	}
	return s.tasks.CountByStatus(ctx, c)
}

func validateCriteria(c query.Criteria) error {
	if c.Text != "" {
		if err := validation.ValidateSearchTerm(c.Text); err != nil {
			return err
		}
	}
	if c.Title != "" {
		if err := validation.ValidateSearchTerm(c.Title); err != nil {
			return err
		}
	}
	if c.DueFrom != nil && c.DueTo != nil {
		if err := validation.ValidateRange(*c.DueFrom, *c.DueTo); err != nil {
			return err
		}
	}
	if c.CreatedFrom != nil && c.CreatedTo != nil {
		if err := validation.ValidateRange(*c.CreatedFrom, *c.CreatedTo); err != nil {
			return err
		}
	}
	return nil
}

func (s *TaskService) checkCategory(ctx context.Context, categoryID *string) error {
	if categoryID == nil {
		return nil
	}
	_, err := s.categories.GetByID(ctx, *categoryID)
	return err
}
