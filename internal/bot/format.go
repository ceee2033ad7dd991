package bot

import (
	"fmt"
	"strings"
	"time"

	"task-tracker/internal/model"
)

// splitArgs splits "a | b | c" command arguments. It always returns at least
// one element.
func splitArgs(args string) []string {
	parts := strings.Split(args, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// parseAddArgs reads "title | description | due | priority". Every field after
// the title is optional and may be left empty.
func parseAddArgs(args string, loc *time.Location) (model.Task, error) {
	fields := splitArgs(args)
	if len(fields) > 4 {
		return model.Task{}, fmt.Errorf("too many fields, expected title | description | due | priority")
	}

	task := model.Task{Title: fields[0], Priority: model.PriorityMedium, Status: model.StatusPending}
	if len(fields) > 1 {
		task.Description = fields[1]
	}
	if len(fields) > 2 && fields[2] != "" {
		due, err := parseDue(fields[2], loc)
		if err != nil {
			return model.Task{}, err
		}
		task.DueDate = &due
	}
	if len(fields) > 3 && fields[3] != "" {
		p, err := model.ParsePriority(fields[3])
		if err != nil {
			return model.Task{}, err
		}
		task.Priority = p
	}
	return task, nil
}

// parseDue accepts a date or a date with time. A bare date means the end of
// that day.
func parseDue(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.ParseInLocation("2006-01-02 15:04", raw, loc); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q, use 2006-01-02 or 2006-01-02 15:04", raw)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 0, 0, loc), nil
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}
