// Package report turns a task collection into status and priority breakdowns
// and time-based statistics. Builders never modify their input; the caller
// decides the scope (all tasks, one user, a date range) and the reference time.
package report

import (
	"sort"
	"time"

	"task-tracker/internal/model"
)

// DefaultUpcomingDays is the forward window used for upcoming tasks.
const DefaultUpcomingDays = 7

type StatusBreakdown struct {
	Status     model.TaskStatus
	Count      int
	Percentage float64
	Tasks      []model.Task
}

type StatusReport struct {
	TotalTasks           int
	PendingTasks         int
	InProgressTasks      int
	CompletedTasks       int
	CompletionPercentage float64
	GeneratedAt          time.Time
	GeneratedBy          string
	// One entry per status, in model.Statuses order.
	Breakdown []StatusBreakdown
}

// PriorityReport summarises one priority. CompletionRate is a ratio in [0, 1].
type PriorityReport struct {
	Priority        model.TaskPriority
	TotalCount      int
	PendingCount    int
	InProgressCount int
	CompletedCount  int
	CompletionRate  float64
}

type DetailedReport struct {
	StatusSummary         StatusReport
	PriorityBreakdown     []PriorityReport
	OverdueTasks          []model.Task
	UpcomingTasks         []model.Task
	AverageCompletionTime time.Duration
}

// Percentage returns part/total*100, or 0 when total is 0.
func Percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total)
}

// BuildStatusReport counts tasks per status at now on behalf of generatedBy.
func BuildStatusReport(tasks []model.Task, generatedBy string, now time.Time) StatusReport {
	byStatus := make(map[model.TaskStatus][]model.Task, len(model.Statuses))
	for _, task := range tasks {
		byStatus[task.Status] = append(byStatus[task.Status], task)
	}

	total := len(tasks)
	r := StatusReport{
		TotalTasks:      total,
		PendingTasks:    len(byStatus[model.StatusPending]),
		InProgressTasks: len(byStatus[model.StatusInProgress]),
		CompletedTasks:  len(byStatus[model.StatusCompleted]),
		GeneratedAt:     now,
		GeneratedBy:     generatedBy,
		Breakdown:       make([]StatusBreakdown, 0, len(model.Statuses)),
	}
	r.CompletionPercentage = Percentage(r.CompletedTasks, total)

	for _, status := range model.Statuses {
		group := byStatus[status]
		if group == nil {
			group = []model.Task{}
		}
		r.Breakdown = append(r.Breakdown, StatusBreakdown{
			Status:     status,
			Count:      len(group),
			Percentage: Percentage(len(group), total),
			Tasks:      group,
		})
	}
	return r
}

func BuildPriorityReport(tasks []model.Task, priority model.TaskPriority) PriorityReport {
	r := PriorityReport{Priority: priority}
	for _, task := range tasks {
		if task.Priority != priority {
			continue
		}
		r.TotalCount++
		switch task.Status {
		case model.StatusPending:
			r.PendingCount++
		case model.StatusInProgress:
			r.InProgressCount++
		case model.StatusCompleted:
			r.CompletedCount++
		}
	}
	r.CompletionRate = ratio(r.CompletedCount, r.TotalCount)
	return r
}

// Overdue returns incomplete tasks whose due date is before now, oldest first.
func Overdue(tasks []model.Task, now time.Time) []model.Task {
	out := []model.Task{}
	for _, task := range tasks {
		if task.IsCompleted() || task.DueDate == nil {
			continue
		}
		if task.DueDate.Before(now) {
			out = append(out, task)
		}
	}
	sortByDue(out)
	return out
}

// Upcoming returns incomplete tasks due in [now, now+days], soonest first.
func Upcoming(tasks []model.Task, now time.Time, days int) []model.Task {
	limit := now.AddDate(0, 0, days)
	out := []model.Task{}
	for _, task := range tasks {
		if task.IsCompleted() || task.DueDate == nil {
			continue
		}
		if !task.DueDate.Before(now) && !task.DueDate.After(limit) {
			out = append(out, task)
		}
	}
	sortByDue(out)
	return out
}

// AverageCompletionTime is the mean of DueDate-CreatedAt over completed tasks
// that have a due date. Tasks without one are left out of the mean.
func AverageCompletionTime(tasks []model.Task) time.Duration {
	var (
		sum   time.Duration
		count int
	)
	for _, task := range tasks {
		if !task.IsCompleted() || task.DueDate == nil {
			continue
		}
		sum += task.DueDate.Sub(task.CreatedAt)
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / time.Duration(count)
}

// BuildDetailedReport bundles every statistic for tasks at now.
func BuildDetailedReport(tasks []model.Task, generatedBy string, now time.Time, upcomingDays int) DetailedReport {
	priorities := make([]PriorityReport, 0, len(model.Priorities))
	for _, p := range model.Priorities {
		priorities = append(priorities, BuildPriorityReport(tasks, p))
	}
	return DetailedReport{
		StatusSummary:         BuildStatusReport(tasks, generatedBy, now),
		PriorityBreakdown:     priorities,
		OverdueTasks:          Overdue(tasks, now),
		UpcomingTasks:         Upcoming(tasks, now, upcomingDays),
		AverageCompletionTime: AverageCompletionTime(tasks),
	}
}

func sortByDue(tasks []model.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].DueDate.Before(*tasks[j].DueDate)
	})
}
