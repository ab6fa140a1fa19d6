package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/todolist/internal/store"
	"github.com/nibzard/todolist/internal/todo"
)

type formField int

const (
	fieldDescription formField = iota
	fieldCategory
	fieldPriority
	fieldDue
	fieldCount
)

// taskForm edits the fields of a new or existing task.
type taskForm struct {
	editID      int // 0 when adding
	focus       formField
	description textinput.Model
	due         textinput.Model
	categories  []string
	category    int
	priority    int
	err         string
}

func newTaskForm(categories []string, defaultCategory string, defaultPriority todo.Priority) *taskForm {
	desc := textinput.New()
	desc.Placeholder = "What needs to be done?"
	desc.CharLimit = 256
	desc.Width = 48
	desc.Prompt = ""

	due := textinput.New()
	due.Placeholder = "YYYY-MM-DD"
	due.CharLimit = len(todo.DateLayout)
	due.Width = 12
	due.Prompt = ""

	f := &taskForm{
		description: desc,
		due:         due,
		categories:  append([]string(nil), categories...),
	}
	f.selectCategory(defaultCategory)
	f.selectPriority(defaultPriority)
	f.description.Focus()
	return f
}

func editTaskForm(t todo.Task, categories []string) *taskForm {
	f := newTaskForm(categories, t.Category, t.Priority)
	f.editID = t.ID
	f.description.SetValue(t.Description)
	if t.HasDueDate() {
		f.due.SetValue(t.DueDate.String())
	}
	return f
}

func (f *taskForm) selectCategory(name string) {
	for i, c := range f.categories {
		if strings.EqualFold(c, name) {
			f.category = i
			return
		}
	}
	if name != "" {
		f.categories = append(f.categories, name)
		f.category = len(f.categories) - 1
	}
}

func (f *taskForm) selectPriority(p todo.Priority) {
	for i, candidate := range todo.Priorities() {
		if candidate == p {
			f.priority = i
			return
		}
	}
	f.priority = 1
}

func (f *taskForm) setFocus(field formField) tea.Cmd {
	f.focus = (field + fieldCount) % fieldCount
	f.description.Blur()
	f.due.Blur()
	switch f.focus {
	case fieldDescription:
		return f.description.Focus()
	case fieldDue:
		return f.due.Focus()
	}
	return nil
}

// cycle moves a selector by delta, wrapping around.
func cycle(current, delta, n int) int {
	if n == 0 {
		return 0
	}
	return ((current+delta)%n + n) % n
}

// update handles a key in the form. It reports whether the form asked to be
// submitted or cancelled.
func (f *taskForm) update(msg tea.KeyMsg) (submit, cancel bool, cmd tea.Cmd) {
	switch msg.String() {
	case "esc":
		return false, true, nil
	case "enter", "ctrl+s":
		return true, false, nil
	case "tab", "down":
		return false, false, f.setFocus(f.focus + 1)
	case "shift+tab", "up":
		return false, false, f.setFocus(f.focus - 1)
	case "left", "right":
		delta := 1
		if msg.String() == "left" {
			delta = -1
		}
		switch f.focus {
		case fieldCategory:
			f.category = cycle(f.category, delta, len(f.categories))
			return false, false, nil
		case fieldPriority:
			f.priority = cycle(f.priority, delta, len(todo.Priorities()))
			return false, false, nil
		}
	}

	switch f.focus {
	case fieldDescription:
		f.description, cmd = f.description.Update(msg)
	case fieldDue:
		f.due, cmd = f.due.Update(msg)
	}
	return false, false, cmd
}

func (f *taskForm) categoryValue() string {
	if len(f.categories) == 0 {
		return ""
	}
	return f.categories[f.category]
}

func (f *taskForm) priorityValue() todo.Priority {
	return todo.Priorities()[f.priority]
}

// dueValue parses the due date field. A blank field means no due date.
func (f *taskForm) dueValue() (*todo.Date, error) {
	raw := strings.TrimSpace(f.due.Value())
	if raw == "" {
		return nil, nil
	}
	d, err := todo.ParseDate(raw)
	if err != nil {
		return nil, fmt.Errorf("due date must look like YYYY-MM-DD")
	}
	return &d, nil
}

// newTask validates the form for Add.
func (f *taskForm) newTask() (store.NewTask, error) {
	due, err := f.dueValue()
	if err != nil {
		return store.NewTask{}, err
	}
	if strings.TrimSpace(f.description.Value()) == "" {
		return store.NewTask{}, fmt.Errorf("description must not be empty")
	}
	return store.NewTask{
		Description: f.description.Value(),
		Category:    f.categoryValue(),
		Priority:    f.priorityValue(),
		DueDate:     due,
	}, nil
}

// patch validates the form for Update.
func (f *taskForm) patch() (store.Patch, error) {
	due, err := f.dueValue()
	if err != nil {
		return store.Patch{}, err
	}
	description := f.description.Value()
	category := f.categoryValue()
	priority := f.priorityValue()
	return store.Patch{
		Description:  &description,
		Category:     &category,
		Priority:     &priority,
		DueDate:      due,
		ClearDueDate: due == nil,
	}, nil
}

func (f *taskForm) view(th Theme) string {
	var b strings.Builder
	title := "New task"
	if f.editID != 0 {
		title = fmt.Sprintf("Edit task #%d", f.editID)
	}
	b.WriteString(th.Title.Render(title) + "\n\n")

	label := func(field formField, name string) string {
		marker := "  "
		if f.focus == field {
			marker = th.Key.Render("> ")
		}
		return marker + th.Muted.Render(fmt.Sprintf("%-12s", name))
	}
	selector := func(field formField, value string) string {
		if f.focus == field {
			return th.Key.Render("< ") + th.Normal.Render(value) + th.Key.Render(" >")
		}
		return th.Normal.Render(value)
	}

	b.WriteString(label(fieldDescription, "Description") + f.description.View() + "\n")
	b.WriteString(label(fieldCategory, "Category") + selector(fieldCategory, f.categoryValue()) + "\n")
	b.WriteString(label(fieldPriority, "Priority") + selector(fieldPriority, f.priorityValue().Label()) + "\n")
	b.WriteString(label(fieldDue, "Due date") + f.due.View() + "\n\n")

	if f.err != "" {
		b.WriteString(th.Error.Render(f.err) + "\n\n")
	}
	b.WriteString(th.Muted.Render("tab/↑↓ move • ←/→ change • enter save • esc cancel") + "\n")
	return th.Panel.Render(b.String())
}
