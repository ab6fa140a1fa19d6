// Package export renders task lists as CSV, JSON or PDF reports.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nibzard/todolist/internal/query"
	"github.com/nibzard/todolist/internal/todo"
)

// Format is an export file format.
type Format string

// Formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

// ParseFormat parses a format name. A leading dot is accepted so file
// extensions can be passed directly.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")); f {
	case FormatCSV, FormatJSON, FormatPDF:
		return f, nil
	case "":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, json or pdf)", s)
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (Format, bool) {
	f, err := ParseFormat(filepath.Ext(path))
	if err != nil || filepath.Ext(path) == "" {
		return "", false
	}
	return f, true
}

// DefaultFileName returns a timestamped file name for an export.
func DefaultFileName(format Format, now time.Time) string {
	return fmt.Sprintf("todo_export_%s.%s", now.Format("20060102_150405"), format)
}

// CSVHeader lists the CSV columns in order.
var CSVHeader = []string{"id", "description", "priority", "status", "created_at", "due_date", "category", "completed_at"}

// Report is the content of an export.
type Report struct {
	Title       string      `json:"title"`
	GeneratedAt time.Time   `json:"generated_at"`
	Sort        string      `json:"sort,omitempty"`
	Stats       query.Stats `json:"stats"`
	Tasks       []todo.Task `json:"tasks"`
}

// NewReport builds a report from a query result.
func NewReport(res query.Result, sort query.SortKey, now time.Time) Report {
	return Report{
		Title:       "To-Do Report",
		GeneratedAt: now.UTC(),
		Sort:        string(sort),
		Stats:       res.Stats,
		Tasks:       res.Tasks,
	}
}

// Render encodes the report in format.
func Render(r Report, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return renderCSV(r)
	case FormatJSON:
		return renderJSON(r)
	case FormatPDF:
		return renderPDF(r)
	}
	return nil, fmt.Errorf("unknown export format %q", format)
}

// WriteFile renders the report and writes it to path atomically.
func WriteFile(path string, r Report, format Format) error {
	data, err := Render(r, format)
	if err != nil {
		return err
	}
	if err := todo.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

func status(t todo.Task) string {
	if t.Completed {
		return "completed"
	}
	return "pending"
}

func timestamp(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func dueDate(t todo.Task) string {
	if !t.HasDueDate() {
		return ""
	}
	return t.DueDate.String()
}

func renderCSV(r Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(CSVHeader); err != nil {
		return nil, err
	}
	for _, t := range r.Tasks {
		row := []string{
			strconv.Itoa(t.ID),
			t.Description,
			string(t.Priority),
			status(t),
			timestamp(&t.CreatedAt),
			dueDate(t),
			t.Category,
			timestamp(t.CompletedAt),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return buf.Bytes(), nil
}

func renderJSON(r Report) ([]byte, error) {
	if r.Tasks == nil {
		r.Tasks = []todo.Task{}
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return append(data, '\n'), nil
}

func renderPDF(r Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(r.Title, true)
	pdf.SetCreator("todolist", true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(r.Title))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(107, 114, 128)
	pdf.Cell(0, 5, fmt.Sprintf("Generated %s", r.GeneratedAt.Format("2006-01-02 15:04 MST")))
	pdf.Ln(8)

	st := r.Stats
	pdf.SetTextColor(17, 24, 39)
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 6, "Statistics")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 10)
	lines := []string{
		fmt.Sprintf("Total: %d   Completed: %d   Pending: %d   Overdue: %d", st.Total, st.Completed, st.Pending, st.Overdue),
		fmt.Sprintf("Completion rate: %.0f%%", st.CompletionRate()),
		fmt.Sprintf("High: %d   Medium: %d   Low: %d",
			st.ByPriority[todo.PriorityHigh], st.ByPriority[todo.PriorityMedium], st.ByPriority[todo.PriorityLow]),
	}
	for _, cc := range st.SortedCategories() {
		lines = append(lines, fmt.Sprintf("%s: %d", cc.Category, cc.Count))
	}
	for _, line := range lines {
		pdf.MultiCell(0, 5, tr(line), "", "L", false)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	heading := "Tasks"
	if r.Sort != "" {
		heading = fmt.Sprintf("Tasks (sorted by %s)", query.SortKey(r.Sort).Label())
	}
	pdf.Cell(0, 6, heading)
	pdf.Ln(7)

	pdf.SetFont("Arial", "", 10)
	if len(r.Tasks) == 0 {
		pdf.MultiCell(0, 6, "No tasks.", "", "L", false)
	}
	for _, t := range r.Tasks {
		mark := "[ ]"
		if t.Completed {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s #%d %s  (%s, %s", mark, t.ID, t.Description, t.Category, t.Priority.Label())
		if t.HasDueDate() {
			line += ", due " + t.DueDate.String()
		}
		line += ")"
		pdf.MultiCell(0, 6, tr(line), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("encode pdf: %w", err)
	}
	return buf.Bytes(), nil
}
