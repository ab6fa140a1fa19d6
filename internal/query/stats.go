package query

import (
	"sort"
	"time"

	"github.com/nibzard/todolist/internal/todo"
)

// Stats aggregates counts over a task collection.
type Stats struct {
	Total      int                   `json:"total"`
	Completed  int                   `json:"completed"`
	Pending    int                   `json:"pending"`
	Overdue    int                   `json:"overdue"`
	ByPriority map[todo.Priority]int `json:"by_priority"`
	ByCategory map[string]int        `json:"by_category"`
}

// Compute counts tasks as of the current time.
func Compute(tasks []todo.Task) Stats {
	return ComputeAt(tasks, time.Now())
}

// ComputeAt counts tasks, judging overdue against now.
func ComputeAt(tasks []todo.Task, now time.Time) Stats {
	st := Stats{
		Total:      len(tasks),
		ByPriority: make(map[todo.Priority]int, 3),
		ByCategory: make(map[string]int),
	}
	for _, p := range todo.Priorities() {
		st.ByPriority[p] = 0
	}
	for i := range tasks {
		t := &tasks[i]
		if t.Completed {
			st.Completed++
		} else {
			st.Pending++
		}
		if t.Overdue(now) {
			st.Overdue++
		}
		st.ByPriority[t.Priority]++
		st.ByCategory[t.Category]++
	}
	return st
}

// CompletionRate returns the completed share as a percentage, 0 for an
// empty collection.
func (s Stats) CompletionRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.Total) * 100
}

// CategoryCount pairs a category with its task count.
type CategoryCount struct {
	Category string
	Count    int
}

// SortedCategories returns ByCategory ordered by count descending, then name.
func (s Stats) SortedCategories() []CategoryCount {
	out := make([]CategoryCount, 0, len(s.ByCategory))
	for c, n := range s.ByCategory {
		out = append(out, CategoryCount{Category: c, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}
