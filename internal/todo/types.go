package todo

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrInvalidPriority is returned when a priority is not high, medium or low.
	ErrInvalidPriority = errors.New("invalid priority")
	// ErrInvalidDate is returned when a due date is not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date")
)

// Priority is the urgency of a task.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities returns all priorities from most to least urgent.
func Priorities() []Priority {
	return []Priority{PriorityHigh, PriorityMedium, PriorityLow}
}

// ParsePriority parses a priority name, ignoring case and surrounding space.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w %q, must be one of: high, medium, low", ErrInvalidPriority, s)
	}
	return p, nil
}

// Valid reports whether p is one of the defined priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank orders priorities: 0 for high, 1 for medium, 2 for low.
// Unknown values rank after low.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// Label returns the capitalized display name.
func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	}
	return string(p)
}

// UnmarshalText rejects anything outside the defined priorities, so a
// decoded Task can never carry an unknown value.
func (p *Priority) UnmarshalText(text []byte) error {
	parsed, err := ParsePriority(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// DateLayout is the wire and display format of due dates.
const DateLayout = "2006-01-02"

// Date is a calendar day without a time of day.
type Date struct {
	t time.Time
}

// NewDate returns the given calendar day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string. 0001-01-01 is rejected since the
// zero Date means no date.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil || t.IsZero() {
		return Date{}, fmt.Errorf("%w %q, expected YYYY-MM-DD", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return d.t
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after o.
func (d Date) Compare(o Date) int {
	return d.t.Compare(o.t)
}

// Before reports whether d is strictly before o.
func (d Date) Before(o Date) bool {
	return d.t.Before(o.t)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

// MarshalText encodes the day as YYYY-MM-DD.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a YYYY-MM-DD day.
func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Task represents a single to-do item.
type Task struct {
	ID          int        `json:"id"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Priority    Priority   `json:"priority"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	DueDate     *Date      `json:"due_date"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// IsZero returns true if the task is empty (has no ID).
func (t *Task) IsZero() bool {
	return t.ID == 0
}

// HasDueDate reports whether a due date is set.
func (t *Task) HasDueDate() bool {
	return t.DueDate != nil && !t.DueDate.IsZero()
}

// Overdue reports whether the task is pending and its due date lies before
// the calendar day of now.
func (t *Task) Overdue(now time.Time) bool {
	if t.Completed || !t.HasDueDate() {
		return false
	}
	return t.DueDate.Before(DateOf(now))
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		t.CompletedAt = &at
	}
	return t
}
