package cmd

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/nibzard/todolist/internal/store"
	"github.com/nibzard/todolist/internal/todo"
)

// addCommand adds a task built from the positional words.
func (a *app) addCommand(args []string) error {
	fs := flag.NewFlagSet("todolist add", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	priority := fs.String("p", "", "Priority (high, medium, low)")
	category := fs.String("c", "", "Category")
	due := fs.String("due", "", "Due date (YYYY-MM-DD)")

	words, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	in := store.NewTask{
		Description: strings.Join(words, " "),
		Category:    *category,
	}
	if *priority != "" {
		p, err := todo.ParsePriority(*priority)
		if err != nil {
			return err
		}
		in.Priority = p
	}
	if *due != "" {
		d, err := todo.ParseDate(*due)
		if err != nil {
			return err
		}
		in.DueDate = &d
	}

	st, err := a.openCommandStore()
	if err != nil {
		return err
	}
	task, err := st.Add(in)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Added task %d: %s\n", task.ID, task.Description)
	return nil
}

// editCommand changes the given fields of one task.
func (a *app) editCommand(args []string) error {
	fs := flag.NewFlagSet("todolist edit", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	description := fs.String("d", "", "New description")
	priority := fs.String("p", "", "New priority (high, medium, low)")
	category := fs.String("c", "", "New category")
	due := fs.String("due", "", "New due date (YYYY-MM-DD)")
	noDue := fs.Bool("no-due", false, "Remove the due date")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	id, err := parseID(positional)
	if err != nil {
		return err
	}

	var patch store.Patch
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "d":
			patch.Description = description
		case "c":
			patch.Category = category
		}
	})
	if *priority != "" {
		p, err := todo.ParsePriority(*priority)
		if err != nil {
			return err
		}
		patch.Priority = &p
	}
	if *due != "" && *noDue {
		return fmt.Errorf("-due and -no-due cannot be combined")
	}
	if *due != "" {
		d, err := todo.ParseDate(*due)
		if err != nil {
			return err
		}
		patch.DueDate = &d
	}
	patch.ClearDueDate = *noDue
	if patch.IsEmpty() {
		return fmt.Errorf("nothing to change: pass -d, -p, -c, -due or -no-due")
	}

	st, err := a.openCommandStore()
	if err != nil {
		return err
	}
	task, err := st.Update(id, patch)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Updated task %d: %s\n", task.ID, task.Description)
	return nil
}

// doneCommand toggles completion of one task.
func (a *app) doneCommand(args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	st, err := a.openCommandStore()
	if err != nil {
		return err
	}
	task, err := st.ToggleComplete(id)
	if err != nil {
		return err
	}
	state := "pending"
	if task.Completed {
		state = "completed"
	}
	fmt.Fprintf(a.stdout, "Task %d marked %s\n", task.ID, state)
	return nil
}

// rmCommand deletes one task.
func (a *app) rmCommand(args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	st, err := a.openCommandStore()
	if err != nil {
		return err
	}
	if err := st.Remove(id); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Deleted task %d\n", id)
	return nil
}

// clearCommand deletes every completed task.
func (a *app) clearCommand(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	st, err := a.openCommandStore()
	if err != nil {
		return err
	}
	n, err := st.ClearCompleted()
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(a.stdout, "No completed tasks to clear")
		return nil
	}
	fmt.Fprintf(a.stdout, "Cleared %d completed task(s)\n", n)
	return nil
}

// openCommandStore opens the store for a one-shot command, printing the
// corrupt-file warning to stderr.
func (a *app) openCommandStore() (*store.Store, error) {
	st, warning, err := a.openStore(a.logger)
	if err != nil {
		return nil, err
	}
	if warning != "" {
		fmt.Fprintf(a.stderr, "Warning: %s\n", warning)
	}
	return st, nil
}

func parseID(args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing task id")
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("unexpected arguments: %v", args[1:])
	}
	id, err := strconv.Atoi(strings.TrimPrefix(args[0], "#"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", args[0])
	}
	return id, nil
}
