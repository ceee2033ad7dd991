package model

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus is the lifecycle state of a task.
type TaskStatus int

const (
	StatusPending TaskStatus = iota + 1
	StatusInProgress
	StatusCompleted
)

// Statuses lists every status in display order.
var Statuses = []TaskStatus{StatusPending, StatusInProgress, StatusCompleted}

func (s TaskStatus) String() string {
	switch s {
	case StatusPending:
		return "Pending"
	case StatusInProgress:
		return "InProgress"
	case StatusCompleted:
		return "Completed"
	default:
		return fmt.Sprintf("TaskStatus(%d)", int(s))
	}
}

func (s TaskStatus) Valid() bool {
	return s >= StatusPending && s <= StatusCompleted
}

// ParseStatus accepts the display name in any case, with or without separators
// ("in progress", "in_progress", "InProgress").
func ParseStatus(raw string) (TaskStatus, error) {
	switch normalizeEnum(raw) {
	case "pending":
		return StatusPending, nil
	case "inprogress":
		return StatusInProgress, nil
	case "completed", "done":
		return StatusCompleted, nil
	}
	return 0, fmt.Errorf("unknown status %q", raw)
}

// TaskPriority ranks tasks. Ordering is only used for display.
type TaskPriority int

const (
	PriorityLow TaskPriority = iota + 1
	PriorityMedium
	PriorityHigh
)

// Priorities lists every priority from lowest to highest.
var Priorities = []TaskPriority{PriorityLow, PriorityMedium, PriorityHigh}

func (p TaskPriority) String() string {
	switch p {
	case PriorityLow:
		return "Low"
	case PriorityMedium:
		return "Medium"
	case PriorityHigh:
		return "High"
	default:
		return fmt.Sprintf("TaskPriority(%d)", int(p))
	}
}

func (p TaskPriority) Valid() bool {
	return p >= PriorityLow && p <= PriorityHigh
}

func ParsePriority(raw string) (TaskPriority, error) {
	switch normalizeEnum(raw) {
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	}
	return 0, fmt.Errorf("unknown priority %q", raw)
}

func normalizeEnum(raw string) string {
	r := strings.NewReplacer(" ", "", "_", "", "-", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(raw)))
}

// Task represents a single unit of work owned by a user.
type Task struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Title       string    `gorm:"size:200;not null"`
	Description string    `gorm:"size:500"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
	DueDate     *time.Time   `gorm:"index"`
	Priority    TaskPriority `gorm:"not null;default:2;index"`
	Status      TaskStatus   `gorm:"not null;default:1;index"`
	UserID      string       `gorm:"size:36;not null;index"`
	CategoryID  *string      `gorm:"size:36;index"`
}

// NewTask returns a task with the default priority and status.
func NewTask(userID, title string) Task {
	return Task{
		Title:    title,
		UserID:   userID,
		Priority: PriorityMedium,
		Status:   StatusPending,
	}
}

func (t Task) IsCompleted() bool {
	return t.Status == StatusCompleted
}

func (t Task) HasDueDate() bool {
	return t.DueDate != nil
}
