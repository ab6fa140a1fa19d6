// Package query derives the displayed task sequence and the collection
// statistics from a task slice and a set of view parameters.
//
// Nothing in this package mutates the slice it is given; Run and Filter
// always return fresh slices.
package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nibzard/todolist/internal/todo"
)

// All is the filter value that matches everything.
const All = "all"

// Status filters tasks by completion state.
type Status string

// Status values.
const (
	StatusAll       Status = All
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
)

// Statuses returns the status filters in cycling order.
func Statuses() []Status {
	return []Status{StatusAll, StatusPending, StatusCompleted}
}

// ParseStatus parses a status filter. The empty string means all.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", All:
		return StatusAll, nil
	case "pending", "open", "todo":
		return StatusPending, nil
	case "completed", "done":
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("unknown status %q (want all, pending or completed)", s)
}

func (s Status) match(t *todo.Task) bool {
	switch s {
	case StatusPending:
		return !t.Completed
	case StatusCompleted:
		return t.Completed
	default:
		return true
	}
}

// SortKey selects the ordering of the result.
type SortKey string

// Sort keys.
const (
	SortNewest   SortKey = "newest"
	SortOldest   SortKey = "oldest"
	SortPriority SortKey = "priority"
	SortDueDate  SortKey = "due_date"
)

// SortKeys returns the sort keys in cycling order.
func SortKeys() []SortKey {
	return []SortKey{SortNewest, SortOldest, SortPriority, SortDueDate}
}

// ParseSortKey parses a sort key. The empty string selects newest.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "newest", "new":
		return SortNewest, nil
	case "oldest", "old":
		return SortOldest, nil
	case "priority", "prio":
		return SortPriority, nil
	case "due_date", "due-date", "due":
		return SortDueDate, nil
	}
	return "", fmt.Errorf("unknown sort key %q (want newest, oldest, priority or due_date)", s)
}

// Label returns a short human readable name.
func (k SortKey) Label() string {
	switch k {
	case SortOldest:
		return "Oldest First"
	case SortPriority:
		return "Priority"
	case SortDueDate:
		return "Due Date"
	default:
		return "Newest First"
	}
}

// Filters narrows the task set. Zero values mean all; filters combine with
// AND.
type Filters struct {
	Status   Status
	Priority todo.Priority
	Category string
}

// IsZero reports whether no filter is active.
func (f Filters) IsZero() bool {
	return isAll(string(f.Status)) && isAll(string(f.Priority)) && isAll(f.Category)
}

func (f Filters) match(t *todo.Task) bool {
	if !f.Status.match(t) {
		return false
	}
	if !isAll(string(f.Priority)) && t.Priority != f.Priority {
		return false
	}
	if !isAll(f.Category) && t.Category != f.Category {
		return false
	}
	return true
}

func isAll(v string) bool {
	return v == "" || strings.EqualFold(v, All)
}

// View holds every parameter of a query.
type View struct {
	Filters Filters
	Sort    SortKey
	Search  string
}

// Result is the output of Run.
type Result struct {
	Tasks []todo.Task
	Stats Stats
}

// Run filters, searches and sorts tasks for display. The statistics always
// describe the whole of tasks, whatever the view.
func Run(tasks []todo.Task, v View) Result {
	out := Filter(tasks, v)
	Sort(out, v.Sort)
	return Result{Tasks: out, Stats: Compute(tasks)}
}

// Filter returns the tasks passing the view's filters and search text, in
// input order.
func Filter(tasks []todo.Task, v View) []todo.Task {
	needle := strings.ToLower(strings.TrimSpace(v.Search))
	out := make([]todo.Task, 0, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		if !v.Filters.match(t) {
			continue
		}
		if needle != "" && !matchSearch(t, needle) {
			continue
		}
		out = append(out, t.Clone())
	}
	return out
}

func matchSearch(t *todo.Task, needle string) bool {
	return strings.Contains(strings.ToLower(t.Description), needle) ||
		strings.Contains(strings.ToLower(t.Category), needle)
}

// Sort orders tasks in place by key. Every key yields a total order: the
// last tie-break is always the id.
func Sort(tasks []todo.Task, key SortKey) {
	var less func(a, b *todo.Task) bool
	switch key {
	case SortOldest:
		less = oldestFirst
	case SortPriority:
		less = byPriority
	case SortDueDate:
		less = byDueDate
	default:
		less = newestFirst
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return less(&tasks[i], &tasks[j])
	})
}

func newestFirst(a, b *todo.Task) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

func oldestFirst(a, b *todo.Task) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func byPriority(a, b *todo.Task) bool {
	if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
		return ra < rb
	}
	return newestFirst(a, b)
}

// byDueDate puts dated tasks first, earliest date first.
func byDueDate(a, b *todo.Task) bool {
	ad, bd := a.HasDueDate(), b.HasDueDate()
	switch {
	case ad && bd:
		if c := a.DueDate.Compare(*b.DueDate); c != 0 {
			return c < 0
		}
	case ad != bd:
		return ad
	}
	return newestFirst(a, b)
}

// Categories returns the distinct categories of tasks merged after presets,
// preserving the preset order and then first appearance.
func Categories(tasks []todo.Task, presets []string) []string {
	seen := make(map[string]bool, len(presets))
	out := make([]string, 0, len(presets))
	for _, p := range presets {
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	for i := range tasks {
		c := tasks[i].Category
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
