package repository

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"task-tracker/internal/model"
	"task-tracker/internal/query"
)

// TaskRepository handles CRUD and queries for tasks.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Add(ctx context.Context, task *model.Task) (err error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.Add", trace.WithAttributes(attribute.String("task.id", task.ID)))
	defer func() { finish(span, err) }()

	normalizeTask(task)
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("create task: %w", model.ErrNotFound)
		}
		return persistenceErr("create task", err)
	}
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (_ *model.Task, err error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.GetByID", trace.WithAttributes(attribute.String("task.id", id)))
	defer func() { finish(span, err) }()

	var task model.Task
	if err := r.db.WithContext(ctx).First(&task, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetAttributes(attribute.Bool("task.found", false))
			return nil, model.ErrTaskNotFound
		}
		return nil, persistenceErr("find task", err)
	}
	span.SetAttributes(attribute.Bool("task.found", true))
	return &task, nil
}

func (r *TaskRepository) GetAll(ctx context.Context) ([]model.Task, error) {
	return r.Find(ctx, query.Criteria{})
}

// Update replaces the stored field values of task. Owner and creation time are
// never rewritten.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) (err error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.Update", trace.WithAttributes(attribute.String("task.id", task.ID)))
	defer func() { finish(span, err) }()

	normalizeTask(task)
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ?", task.ID).
		Select("*").Omit("id", "user_id", "created_at").
		Updates(task)
	if result.Error != nil {
		if isForeignKeyViolation(result.Error) {
			return fmt.Errorf("update task: %w", model.ErrNotFound)
		}
		return persistenceErr("update task", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.Delete", trace.WithAttributes(attribute.String("task.id", id)))
	defer func() { finish(span, err) }()

	result := r.db.WithContext(ctx).Delete(&model.Task{}, "id = ?", id)
	if result.Error != nil {
		return persistenceErr("delete task", result.Error)
	}
	if result.RowsAffected == 0 {
		return model.ErrTaskNotFound
	}
	return nil
}

// Find narrows candidates in SQL on the structured predicates, then applies
// the full criteria so text matching follows query.Criteria semantics.
func (r *TaskRepository) Find(ctx context.Context, c query.Criteria) (_ []model.Task, err error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.Find")
	defer func() { finish(span, err) }()

	var tasks []model.Task
	if err := r.db.WithContext(ctx).Scopes(criteriaScope(c)).
		Order("created_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, persistenceErr("list tasks", err)
	}
	tasks = c.Apply(tasks)
	span.SetAttributes(attribute.Int("task.count", len(tasks)))
	return tasks, nil
}

// CountByStatus counts the tasks matching c per status. Every status is present
// in the result.
func (r *TaskRepository) CountByStatus(ctx context.Context, c query.Criteria) (_ map[model.TaskStatus]int, err error) {
	ctx, span := tracer.Start(ctx, "TaskRepository.CountByStatus")
	defer func() { finish(span, err) }()

	counts := make(map[model.TaskStatus]int, len(model.Statuses))
	for _, s := range model.Statuses {
		counts[s] = 0
	}

	if c.Text != "" || c.Title != "" {
		tasks, err := r.Find(ctx, c)
		if err != nil {
			return nil, err
		}
		for _, t := range tasks {
			counts[t.Status]++
		}
		return counts, nil
	}

	var rows []struct {
		Status model.TaskStatus
		Total  int
	}
	if err := r.db.WithContext(ctx).Model(&model.Task{}).Scopes(criteriaScope(c)).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, persistenceErr("count tasks", err)
	}
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func criteriaScope(c query.Criteria) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if c.UserID != nil {
			db = db.Where("user_id = ?", *c.UserID)
		}
		if c.Status != nil {
			db = db.Where("status = ?", *c.Status)
		}
		if c.Priority != nil {
			db = db.Where("priority = ?", *c.Priority)
		}
		if c.CategoryID != nil {
			db = db.Where("category_id = ?", *c.CategoryID)
		}
		if c.DueFrom != nil || c.DueTo != nil {
			db = db.Where("due_date IS NOT NULL")
		}
		if c.DueFrom != nil {
			db = db.Where("due_date >= ?", c.DueFrom.UTC())
		}
		if c.DueTo != nil {
			db = db.Where("due_date <= ?", c.DueTo.UTC())
		}
		if c.CreatedFrom != nil {
			db = db.Where("created_at >= ?", c.CreatedFrom.UTC())
		}
		if c.CreatedTo != nil {
			db = db.Where("created_at <= ?", c.CreatedTo.UTC())
		}
		return db
	}
}

func normalizeTask(task *model.Task) {
	task.CreatedAt = task.CreatedAt.UTC()
	task.DueDate = utc(task.DueDate)
}
