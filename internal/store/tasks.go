package store

import (
	"strings"

	"github.com/nibzard/todolist/internal/todo"
)

// NewTask holds the input for Add.
type NewTask struct {
	Description string
	Category    string        // empty selects the default category
	Priority    todo.Priority // zero value selects the default priority
	DueDate     *todo.Date
}

// Patch lists the fields Update changes. Nil fields are left untouched.
type Patch struct {
	Description  *string
	Category     *string
	Priority     *todo.Priority
	DueDate      *todo.Date
	ClearDueDate bool // remove the due date; ignored when DueDate is set
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Description == nil && p.Category == nil && p.Priority == nil &&
		p.DueDate == nil && !p.ClearDueDate
}

// Add validates the input, appends a new pending task and flushes.
//
// On ErrStorageWriteFailed the task has still been added in memory and is
// returned alongside the error.
func (s *Store) Add(in NewTask) (todo.Task, error) {
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return todo.Task{}, invalid("description must not be empty")
	}

	priority := in.Priority
	if priority == "" {
		priority = s.defaultPriority
	}
	if !priority.Valid() {
		return todo.Task{}, invalid("unknown priority %q", in.Priority)
	}

	category, err := s.normalizeCategory(in.Category, true)
	if err != nil {
		return todo.Task{}, err
	}

	task := todo.Task{
		ID:          s.file.NextID,
		Description: description,
		Category:    category,
		Priority:    priority,
		CreatedAt:   s.now().UTC(),
	}
	if in.DueDate != nil && !in.DueDate.IsZero() {
		due := *in.DueDate
		task.DueDate = &due
	}

	s.file.NextID++
	s.file.Tasks = append(s.file.Tasks, task)
	s.logger.Debug("added task", "id", task.ID, "priority", task.Priority, "category", task.Category)

	return task.Clone(), s.flush()
}

// Update applies the non-nil fields of patch to the task with id and
// flushes. The collection is left unchanged when any field is rejected.
func (s *Store) Update(id int, patch Patch) (todo.Task, error) {
	current := s.file.GetTask(id)
	if current == nil {
		return todo.Task{}, notFound(id)
	}

	next := current.Clone()
	if patch.Description != nil {
		description := strings.TrimSpace(*patch.Description)
		if description == "" {
			return todo.Task{}, invalid("description must not be empty")
		}
		next.Description = description
	}
	if patch.Category != nil {
		category, err := s.normalizeCategory(*patch.Category, false)
		if err != nil {
			return todo.Task{}, err
		}
		next.Category = category
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return todo.Task{}, invalid("unknown priority %q", *patch.Priority)
		}
		next.Priority = *patch.Priority
	}
	switch {
	case patch.DueDate != nil && !patch.DueDate.IsZero():
		due := *patch.DueDate
		next.DueDate = &due
	case patch.ClearDueDate:
		next.DueDate = nil
	}

	if patch.IsEmpty() {
		return next, nil
	}

	*current = next
	s.logger.Debug("updated task", "id", id)
	return next.Clone(), s.flush()
}

// Remove deletes the task with id permanently and flushes.
func (s *Store) Remove(id int) error {
	i := s.file.IndexOf(id)
	if i < 0 {
		return notFound(id)
	}
	s.file.Tasks = append(s.file.Tasks[:i], s.file.Tasks[i+1:]...)
	s.logger.Debug("removed task", "id", id)
	return s.flush()
}

// ToggleComplete flips the completion state of the task with id and
// flushes.
func (s *Store) ToggleComplete(id int) (todo.Task, error) {
	task := s.file.GetTask(id)
	if task == nil {
		return todo.Task{}, notFound(id)
	}
	return s.setComplete(task, !task.Completed)
}

// SetComplete marks the task with id completed or pending and flushes.
// Setting the state it already has is a no-op.
func (s *Store) SetComplete(id int, done bool) (todo.Task, error) {
	task := s.file.GetTask(id)
	if task == nil {
		return todo.Task{}, notFound(id)
	}
	if task.Completed == done {
		return task.Clone(), nil
	}
	return s.setComplete(task, done)
}

func (s *Store) setComplete(task *todo.Task, done bool) (todo.Task, error) {
	task.Completed = done
	if done {
		at := s.now().UTC()
		task.CompletedAt = &at
	} else {
		task.CompletedAt = nil
	}
	s.logger.Debug("set completion", "id", task.ID, "completed", done)
	return task.Clone(), s.flush()
}

// ClearCompleted removes every completed task in a single flush and returns
// how many were removed. Nothing is written when no task is completed.
func (s *Store) ClearCompleted() (int, error) {
	kept := s.file.Tasks[:0]
	removed := 0
	for _, task := range s.file.Tasks {
		if task.Completed {
			removed++
			continue
		}
		kept = append(kept, task)
	}
	s.file.Tasks = kept
	if removed == 0 {
		return 0, nil
	}
	s.logger.Debug("cleared completed tasks", "count", removed)
	return removed, s.flush()
}
