package cmd

import (
	"flag"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nibzard/todolist/internal/export"
	"github.com/nibzard/todolist/internal/query"
	"github.com/nibzard/todolist/internal/store"
	"github.com/nibzard/todolist/internal/todo"
	"github.com/nibzard/todolist/internal/utils"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	doneStyle   = cellStyle.Faint(true)
)

// viewFlags are the filter and sort options shared by ls and export.
type viewFlags struct {
	status   *string
	priority *string
	category *string
	sort     *string
	search   *string
}

func addViewFlags(fs *flag.FlagSet, defaultSort string) viewFlags {
	return viewFlags{
		status:   fs.String("status", query.All, "Filter by status (all, pending, completed)"),
		priority: fs.String("priority", query.All, "Filter by priority (all, high, medium, low)"),
		category: fs.String("category", query.All, "Filter by category"),
		sort:     fs.String("sort", defaultSort, "Sort order (newest, oldest, priority, due_date)"),
		search:   fs.String("search", "", "Match text in description or category"),
	}
}

// view turns the flag values into a query view. Category names are matched
// case-insensitively against the known categories.
func (v viewFlags) view(st *store.Store) (query.View, error) {
	status, err := query.ParseStatus(*v.status)
	if err != nil {
		return query.View{}, err
	}
	sortKey, err := query.ParseSortKey(*v.sort)
	if err != nil {
		return query.View{}, err
	}
	filters := query.Filters{Status: status, Priority: todo.Priority(query.All), Category: query.All}
	if p := *v.priority; p != "" && p != query.All {
		priority, err := todo.ParsePriority(p)
		if err != nil {
			return query.View{}, err
		}
		filters.Priority = priority
	}
	if c := utils.NormalizeLabel(*v.category); c != "" && c != query.All {
		known := query.Categories(st.All(), st.Categories())
		if match, ok := utils.MatchLabel(c, known); ok {
			c = match
		}
		filters.Category = c
	}
	return query.View{Filters: filters, Sort: sortKey, Search: *v.search}, nil
}

// lsCommand lists tasks in the requested view.
func (a *app) lsCommand(args []string) error {
	fs := flag.NewFlagSet("todolist ls", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	vf := addViewFlags(fs, a.cfg.DefaultSort)
	verbose := fs.Bool("v", false, "Show timestamps")

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("unexpected arguments: %v", positional)
	}

	st, err := a.openCommandStore()
	if err != nil {
		return err
	}
	v, err := vf.view(st)
	if err != nil {
		return err
	}
	res := query.Run(st.All(), v)

	if len(res.Tasks) == 0 {
		if res.Stats.Total == 0 {
			fmt.Fprintln(a.stdout, "No tasks yet. Add one with: todolist add <description>")
		} else {
			fmt.Fprintln(a.stdout, "No tasks match the current view.")
		}
		return nil
	}

	fmt.Fprintln(a.stdout, taskTable(res.Tasks, *verbose, time.Now()))
	fmt.Fprintf(a.stdout, "%d of %d tasks shown | %d completed (%.0f%%) | sorted by %s\n",
		len(res.Tasks), res.Stats.Total, res.Stats.Completed, res.Stats.CompletionRate(), v.Sort.Label())
	return nil
}

func taskTable(tasks []todo.Task, verbose bool, now time.Time) string {
	headers := []string{"ID", "", "Priority", "Category", "Due", "Description"}
	if verbose {
		headers = append(headers, "Created", "Completed")
	}

	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		check := "[ ]"
		if t.Completed {
			check = "[x]"
		}
		due := ""
		if t.HasDueDate() {
			due = t.DueDate.String()
			if t.Overdue(now) {
				due += " !"
			}
		}
		row := []string{strconv.Itoa(t.ID), check, t.Priority.Label(), t.Category, due, t.Description}
		if verbose {
			completed := ""
			if t.CompletedAt != nil {
				completed = t.CompletedAt.Local().Format("2006-01-02 15:04")
			}
			row = append(row, t.CreatedAt.Local().Format("2006-01-02 15:04"), completed)
		}
		rows = append(rows, row)
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row >= 0 && row < len(tasks) && tasks[row].Completed:
				return doneStyle
			}
			return cellStyle
		}).
		String()
}

// statsCommand prints statistics for the whole collection.
func (a *app) statsCommand(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	st, err := a.openCommandStore()
	if err != nil {
		return err
	}
	s := query.Compute(st.All())

	fmt.Fprintln(a.stdout, "Task Statistics")
	fmt.Fprintln(a.stdout, "===============")
	fmt.Fprintln(a.stdout)
	summary := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style { return cellStyle }).
		Row("Total", strconv.Itoa(s.Total)).
		Row("Completed", strconv.Itoa(s.Completed)).
		Row("Pending", strconv.Itoa(s.Pending)).
		Row("Overdue", strconv.Itoa(s.Overdue)).
		Row("Completion rate", fmt.Sprintf("%.1f%%", s.CompletionRate()))
	fmt.Fprintln(a.stdout, summary.String())

	fmt.Fprintln(a.stdout)
	fmt.Fprintln(a.stdout, "By priority:")
	for _, p := range todo.Priorities() {
		fmt.Fprintf(a.stdout, "  %-8s %d\n", p.Label(), s.ByPriority[p])
	}
	if len(s.ByCategory) > 0 {
		fmt.Fprintln(a.stdout)
		fmt.Fprintln(a.stdout, "By category:")
		for _, c := range s.SortedCategories() {
			fmt.Fprintf(a.stdout, "  %-12s %d\n", c.Category, c.Count)
		}
	}
	return nil
}

// exportCommand writes the requested view as a report file.
func (a *app) exportCommand(args []string) error {
	fs := flag.NewFlagSet("todolist export", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	formatName := fs.String("format", "", "Report format (csv, json, pdf)")
	output := fs.String("o", "", "Output path")
	vf := addViewFlags(fs, a.cfg.DefaultSort)

	positional, err := parseArgs(fs, args)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("unexpected arguments: %v", positional)
	}

	format, err := export.ParseFormat(*formatName)
	if err != nil {
		return err
	}
	if *formatName == "" && *output != "" {
		if inferred, ok := export.FormatFromPath(*output); ok {
			format = inferred
		}
	}

	st, err := a.openCommandStore()
	if err != nil {
		return err
	}
	v, err := vf.view(st)
	if err != nil {
		return err
	}
	now := time.Now()
	res := query.Run(st.All(), v)

	path := *output
	if path == "" {
		path = filepath.Join(a.cfg.ExportDir, export.DefaultFileName(format, now))
	}
	if err := export.WriteFile(path, export.NewReport(res, v.Sort, now), format); err != nil {
		return err
	}
	a.logger.Info("exported tasks", "path", path, "count", len(res.Tasks))
	fmt.Fprintf(a.stdout, "Exported %d task(s) to %s\n", len(res.Tasks), path)
	return nil
}
