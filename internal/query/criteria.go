// Package query holds the task filter predicates shared by every store.
//
// Text matching is a case-insensitive substring test (Unicode case folding via
// strings.ToLower). Stores may narrow candidates in SQL but must finish with
// Criteria.Match so that all of them agree on the result.
package query

import (
	"sort"
	"strings"
	"time"

	"task-tracker/internal/model"
)

// Criteria is a conjunction of optional predicates. Zero values / nil pointers
// mean the predicate is not applied.
type Criteria struct {
	UserID      *string
	Text        string // title or description
	Title       string // title only
	Status      *model.TaskStatus
	Priority    *model.TaskPriority
	CategoryID  *string
	DueFrom     *time.Time
	DueTo       *time.Time
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

func ByText(term string) Criteria {
	return Criteria{Text: term}
}

func ByTitle(title string) Criteria {
	return Criteria{Title: title}
}

func ByStatus(status model.TaskStatus) Criteria {
	return Criteria{Status: &status}
}

func ByPriority(priority model.TaskPriority) Criteria {
	return Criteria{Priority: &priority}
}

func ByCategory(categoryID string) Criteria {
	return Criteria{CategoryID: &categoryID}
}

// ByDueRange matches tasks whose due date lies in [start, end].
func ByDueRange(start, end time.Time) Criteria {
	return Criteria{DueFrom: &start, DueTo: &end}
}

// ByCreatedRange matches tasks created in [start, end].
func ByCreatedRange(start, end time.Time) Criteria {
	return Criteria{CreatedFrom: &start, CreatedTo: &end}
}

// ForUser returns a copy of c restricted to tasks owned by userID.
func (c Criteria) ForUser(userID string) Criteria {
	c.UserID = &userID
	return c
}

// Match reports whether task satisfies every predicate set on c.
func (c Criteria) Match(task model.Task) bool {
	if c.UserID != nil && task.UserID != *c.UserID {
		return false
	}
	if c.Text != "" && !containsFold(task.Title, c.Text) && !containsFold(task.Description, c.Text) {
		return false
	}
	if c.Title != "" && !containsFold(task.Title, c.Title) {
		return false
	}
	if c.Status != nil && task.Status != *c.Status {
		return false
	}
	if c.Priority != nil && task.Priority != *c.Priority {
		return false
	}
	if c.CategoryID != nil && (task.CategoryID == nil || *task.CategoryID != *c.CategoryID) {
		return false
	}
	if c.DueFrom != nil || c.DueTo != nil {
		if task.DueDate == nil {
			return false
		}
		if c.DueFrom != nil && task.DueDate.Before(*c.DueFrom) {
			return false
		}
		if c.DueTo != nil && task.DueDate.After(*c.DueTo) {
			return false
		}
	}
	if c.CreatedFrom != nil && task.CreatedAt.Before(*c.CreatedFrom) {
		return false
	}
	if c.CreatedTo != nil && task.CreatedAt.After(*c.CreatedTo) {
		return false
	}
	return true
}

// Apply returns the tasks matching c, preserving input order. The result is
// never nil.
func (c Criteria) Apply(tasks []model.Task) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		if c.Match(task) {
			out = append(out, task)
		}
	}
	return out
}

// SortByDueDate orders tasks by ascending due date. Tasks without a due date
// go last, newest first.
func SortByDueDate(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		switch {
		case tasks[i].DueDate == nil && tasks[j].DueDate == nil:
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		case tasks[i].DueDate == nil:
			return false
		case tasks[j].DueDate == nil:
			return true
		default:
			return tasks[i].DueDate.Before(*tasks[j].DueDate)
		}
	})
}

func containsFold(s, substr string) bool {
	if s == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
