package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"task-tracker/internal/model"
)

// CSVHeader names the status breakdown columns.
var CSVHeader = []string{"Status", "Count", "Percentage"}

const timeLayout = "2006-01-02 15:04:05"

func formatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64)
}

// WriteText renders r as plain text.
func WriteText(w io.Writer, r StatusReport) error {
	var sb strings.Builder
	sb.WriteString("Task Status Report\n")
	sb.WriteString(fmt.Sprintf("Generated: %s", r.GeneratedAt.Format(timeLayout)))
	if r.GeneratedBy != "" {
		sb.WriteString(fmt.Sprintf(" by %s", r.GeneratedBy))
	}
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("Total Tasks: %d\n", r.TotalTasks))
	for _, b := range r.Breakdown {
		sb.WriteString(fmt.Sprintf("%s: %d (%s%%)\n", statusLabel(b.Status), b.Count, formatPercent(b.Percentage)))
	}
	sb.WriteString(fmt.Sprintf("Completion: %s%%\n", formatPercent(r.CompletionPercentage)))

	_, err := io.WriteString(w, sb.String())
	return err
}

// Text is WriteText into a string.
func Text(r StatusReport) string {
	var buf bytes.Buffer
	_ = WriteText(&buf, r)
	return buf.String()
}

// WriteCSV renders the status breakdown: one header row, one row per status.
func WriteCSV(w io.Writer, r StatusReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, b := range r.Breakdown {
		row := []string{b.Status.String(), strconv.Itoa(b.Count), formatPercent(b.Percentage)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func CSV(r StatusReport) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func statusLabel(s model.TaskStatus) string {
	if s == model.StatusInProgress {
		return "In Progress"
	}
	return s.String()
}
