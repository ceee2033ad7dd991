package report

import (
	"fmt"
	"html"
	"strings"
	"time"

	"task-tracker/internal/model"
)

const (
	iconDefault = "🟢"
	iconDue     = "⏳"
	iconOverdue = "⚠️"
	dueSoon     = 48 * time.Hour
)

// Digest renders a detailed report as Telegram HTML. categories maps category
// IDs to names and may be nil.
func Digest(r DetailedReport, now time.Time, categories map[string]string) string {
	s := r.StatusSummary

	var b strings.Builder
	b.WriteString("📋 <b>Task report</b>\n")
	b.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("2006-01-02")))

	b.WriteString(fmt.Sprintf("Total: %d · pending %d · in progress %d · done %d (%s%%)\n",
		s.TotalTasks, s.PendingTasks, s.InProgressTasks, s.CompletedTasks, formatPercent(s.CompletionPercentage)))
	for _, p := range r.PriorityBreakdown {
		if p.TotalCount == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("• %s: %d/%d done\n", p.Priority, p.CompletedCount, p.TotalCount))
	}
	if r.AverageCompletionTime > 0 {
		b.WriteString(fmt.Sprintf("⌛ Avg. planned duration: %.1f days\n", r.AverageCompletionTime.Hours()/24))
	}

	b.WriteString("\n⚠️ <b>Overdue</b>\n")
	if len(r.OverdueTasks) == 0 {
		b.WriteString("— nothing overdue\n")
	} else {
		for _, task := range r.OverdueTasks {
			b.WriteString(FormatTask(task, categories, now))
		}
	}

	b.WriteString("\n🔥 <b>Upcoming</b>\n")
	if len(r.UpcomingTasks) == 0 {
		b.WriteString("— nothing due soon\n")
	} else {
		for _, task := range r.UpcomingTasks {
			b.WriteString(FormatTask(task, categories, now))
		}
	}

	return strings.TrimSpace(b.String())
}

// FormatTask renders one task line with a deadline icon, category and description.
func FormatTask(task model.Task, categories map[string]string, now time.Time) string {
	var sb strings.Builder

	icon := iconDefault
	if task.DueDate != nil {
		d := task.DueDate.In(now.Location())
		switch {
		case now.After(d):
			icon = iconOverdue
		case d.Sub(now) <= dueSoon:
			icon = iconDue
		}
	}
	if task.IsCompleted() {
		icon = "✅"
	}

	sb.WriteString(fmt.Sprintf("%s %s", icon, html.EscapeString(strings.TrimSpace(task.Title))))
	sb.WriteString(fmt.Sprintf(" [%s]", task.Priority))

	if task.CategoryID != nil {
		if name := strings.TrimSpace(categories[*task.CategoryID]); name != "" {
			sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(name)))
		}
	}

	if task.DueDate != nil && !task.IsCompleted() {
		d := task.DueDate.In(now.Location())
		if now.After(d) {
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s — <b>overdue</b>", d.Format("2006-01-02")))
		} else {
			daysLeft := int(d.Sub(now).Hours()/24) + 1
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s · ≈%d day(s) left", d.Format("2006-01-02"), daysLeft))
		}
	}

	if desc := strings.TrimSpace(task.Description); desc != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(desc)))
	}

	sb.WriteByte('\n')
	return sb.String()
}
