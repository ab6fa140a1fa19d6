// Package ui provides the interactive terminal interface.
package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/nibzard/todolist/internal/query"
	"github.com/nibzard/todolist/internal/store"
	"github.com/nibzard/todolist/internal/todo"
)

// TUIOption configures the TUI behavior.
type TUIOption func(*tuiConfig)

// tuiConfig holds TUI configuration.
type tuiConfig struct {
	light           bool
	sort            query.SortKey
	defaultCategory string
	defaultPriority todo.Priority
	logger          *log.Logger
	warning         string
}

// WithLightTheme starts with the light theme instead of the dark one.
func WithLightTheme(enabled bool) TUIOption {
	return func(c *tuiConfig) {
		c.light = enabled
	}
}

// WithSort sets the initial sort key.
func WithSort(key query.SortKey) TUIOption {
	return func(c *tuiConfig) {
		c.sort = key
	}
}

// WithDefaults preselects category and priority in the add form.
func WithDefaults(category string, priority todo.Priority) TUIOption {
	return func(c *tuiConfig) {
		c.defaultCategory = category
		c.defaultPriority = priority
	}
}

// WithLogger sets the logger. It must not write to the terminal.
func WithLogger(logger *log.Logger) TUIOption {
	return func(c *tuiConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithWarning shows a message in the status line on start, such as a data
// file that failed to load.
func WithWarning(msg string) TUIOption {
	return func(c *tuiConfig) {
		c.warning = msg
	}
}

// RunTUI starts the TUI over st and blocks until the user quits.
func RunTUI(ctx context.Context, st *store.Store, opts ...TUIOption) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	model := newTUIModel(st, opts...)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if st.Dirty() {
		return st.Save()
	}
	return nil
}

type mode int

const (
	modeList mode = iota
	modeForm
	modeSearch
	modeConfirm
	modeStats
	modeHelp
)

type confirmAction int

const (
	confirmDelete confirmAction = iota
	confirmClear
)

type tuiModel struct {
	store  *store.Store
	cfg    tuiConfig
	logger *log.Logger
	theme  Theme
	light  bool

	view   query.View
	result query.Result
	cursor int
	width  int
	height int

	mode      mode
	form      *taskForm
	search    textinput.Model
	confirm   confirmAction
	pendingID int

	status    string
	statusErr bool
}

func newTUIModel(st *store.Store, opts ...TUIOption) *tuiModel {
	c := tuiConfig{
		sort:            query.SortNewest,
		defaultCategory: store.DefaultCategory,
		defaultPriority: store.DefaultPriority,
		logger:          log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(&c)
	}

	search := textinput.New()
	search.Placeholder = "search description or category"
	search.Prompt = "/ "
	search.CharLimit = 128
	search.Width = 40

	m := &tuiModel{
		store:  st,
		cfg:    c,
		logger: c.logger,
		light:  c.light,
		view:   query.View{Sort: c.sort},
		search: search,
		status: "Press a to add a task, ? for help.",
	}
	m.applyTheme()
	if c.warning != "" {
		m.setError(c.warning)
	}
	m.refresh()
	return m
}

func (m *tuiModel) Init() tea.Cmd {
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeSearch:
			return m.updateSearch(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		case modeStats, modeHelp:
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "esc", "enter", "s", "?", "h":
				m.mode = modeList
			}
			return m, nil
		default:
			return m.updateList(msg)
		}
	}
	return m, nil
}

func (m *tuiModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = len(m.result.Tasks) - 1
		m.clampCursor()
	case "a":
		m.form = newTaskForm(m.categories(), m.cfg.defaultCategory, m.cfg.defaultPriority)
		m.mode = modeForm
		return m, textinput.Blink
	case "e", "enter":
		task, ok := m.selected()
		if !ok {
			m.setStatus("No task selected")
			return m, nil
		}
		m.form = editTaskForm(task, m.categories())
		m.mode = modeForm
		return m, textinput.Blink
	case " ", "x":
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		updated, err := m.store.ToggleComplete(task.ID)
		if m.report(err) {
			state := "pending"
			if updated.Completed {
				state = "completed"
			}
			m.setStatus(fmt.Sprintf("Marked #%d %s", task.ID, state))
		}
		m.refresh()
	case "d", "delete":
		task, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = modeConfirm
		m.confirm = confirmDelete
		m.pendingID = task.ID
	case "C":
		if m.result.Stats.Completed == 0 {
			m.setStatus("No completed tasks to clear")
			return m, nil
		}
		m.mode = modeConfirm
		m.confirm = confirmClear
	case "/":
		m.mode = modeSearch
		m.search.SetValue(m.view.Search)
		m.search.CursorEnd()
		return m, m.search.Focus()
	case "f":
		m.view.Filters.Status = nextStatus(m.view.Filters.Status)
		m.refresh()
	case "p":
		m.view.Filters.Priority = nextPriority(m.view.Filters.Priority)
		m.refresh()
	case "c":
		m.view.Filters.Category = nextCategory(m.view.Filters.Category, m.categories())
		m.refresh()
	case "o":
		m.view.Sort = nextSort(m.view.Sort)
		m.refresh()
	case "0", "esc":
		m.view = query.View{Sort: m.view.Sort}
		m.setStatus("Filters cleared")
		m.refresh()
	case "s":
		m.mode = modeStats
	case "t":
		m.light = !m.light
		m.applyTheme()
		m.setStatus("Switched to " + m.theme.Name + " theme")
	case "?", "h":
		m.mode = modeHelp
	}
	return m, nil
}

func (m *tuiModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	submit, cancel, cmd := m.form.update(msg)
	switch {
	case cancel:
		m.form = nil
		m.mode = modeList
		m.setStatus("Cancelled")
		return m, nil
	case !submit:
		return m, cmd
	}

	if m.form.editID == 0 {
		in, err := m.form.newTask()
		if err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		task, err := m.store.Add(in)
		if errors.Is(err, store.ErrInvalidInput) {
			m.form.err = err.Error()
			return m, nil
		}
		if m.report(err) {
			m.setStatus(fmt.Sprintf("Added #%d", task.ID))
		}
		m.refresh()
		m.selectID(task.ID)
	} else {
		patch, err := m.form.patch()
		if err != nil {
			m.form.err = err.Error()
			return m, nil
		}
		task, err := m.store.Update(m.form.editID, patch)
		if errors.Is(err, store.ErrInvalidInput) {
			m.form.err = err.Error()
			return m, nil
		}
		if m.report(err) {
			m.setStatus(fmt.Sprintf("Updated #%d", task.ID))
		}
		m.refresh()
		m.selectID(m.form.editID)
	}
	m.form = nil
	m.mode = modeList
	return m, nil
}

func (m *tuiModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.search.Blur()
		m.mode = modeList
		return m, nil
	case "esc":
		m.search.Blur()
		m.search.SetValue("")
		m.view.Search = ""
		m.mode = modeList
		m.refresh()
		return m, nil
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.view.Search = m.search.Value()
	m.refresh()
	return m, cmd
}

func (m *tuiModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		switch m.confirm {
		case confirmDelete:
			if m.report(m.store.Remove(m.pendingID)) {
				m.setStatus(fmt.Sprintf("Deleted #%d", m.pendingID))
			}
		case confirmClear:
			n, err := m.store.ClearCompleted()
			if m.report(err) {
				m.setStatus(fmt.Sprintf("Cleared %d completed task(s)", n))
			}
		}
		m.refresh()
	case "n", "N", "esc", "q":
		m.setStatus("Cancelled")
	default:
		return m, nil
	}
	m.mode = modeList
	m.pendingID = 0
	return m, nil
}

// report surfaces a store error in the status line and reports whether the
// operation took effect in memory.
func (m *tuiModel) report(err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, store.ErrStorageWriteFailed):
		m.logger.Error("write failed", "err", err)
		m.setError("Not saved to disk: " + err.Error())
		return false
	default:
		m.setError(err.Error())
		return false
	}
}

func (m *tuiModel) setStatus(s string) {
	m.status = s
	m.statusErr = false
}

func (m *tuiModel) setError(s string) {
	m.status = s
	m.statusErr = true
}

func (m *tuiModel) applyTheme() {
	if m.light {
		m.theme = LightTheme()
	} else {
		m.theme = DarkTheme()
	}
}

func (m *tuiModel) refresh() {
	m.result = query.Run(m.store.All(), m.view)
	m.clampCursor()
}

func (m *tuiModel) categories() []string {
	return query.Categories(m.store.All(), m.store.Categories())
}

func (m *tuiModel) selected() (todo.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.result.Tasks) {
		return todo.Task{}, false
	}
	return m.result.Tasks[m.cursor], true
}

func (m *tuiModel) selectID(id int) {
	for i, t := range m.result.Tasks {
		if t.ID == id {
			m.cursor = i
			return
		}
	}
}

func (m *tuiModel) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

func (m *tuiModel) clampCursor() {
	if m.cursor >= len(m.result.Tasks) {
		m.cursor = len(m.result.Tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func nextStatus(s query.Status) query.Status {
	statuses := query.Statuses()
	for i, candidate := range statuses {
		if candidate == s {
			return statuses[(i+1)%len(statuses)]
		}
	}
	return statuses[1]
}

func nextPriority(p todo.Priority) todo.Priority {
	options := append([]todo.Priority{""}, todo.Priorities()...)
	for i, candidate := range options {
		if candidate == p {
			return options[(i+1)%len(options)]
		}
	}
	return ""
}

func nextCategory(current string, categories []string) string {
	options := append([]string{""}, categories...)
	for i, candidate := range options {
		if candidate == current {
			return options[(i+1)%len(options)]
		}
	}
	return ""
}

func nextSort(k query.SortKey) query.SortKey {
	keys := query.SortKeys()
	for i, candidate := range keys {
		if candidate == k {
			return keys[(i+1)%len(keys)]
		}
	}
	return keys[0]
}

func (m *tuiModel) View() string {
	var b strings.Builder
	m.writeTitle(&b)

	switch m.mode {
	case modeHelp:
		m.writeHelp(&b)
		m.writeFooter(&b)
		return b.String()
	case modeStats:
		m.writeStats(&b)
		m.writeFooter(&b)
		return b.String()
	case modeForm:
		b.WriteString(m.form.view(m.theme) + "\n\n")
		m.writeStatus(&b)
		return b.String()
	}

	m.writeViewLine(&b)
	m.writeTasks(&b)
	switch m.mode {
	case modeSearch:
		b.WriteString(m.search.View() + "\n")
	case modeConfirm:
		b.WriteString(m.theme.Error.Render(m.confirmPrompt()) + "\n")
	default:
		m.writeStatus(&b)
	}
	m.writeFooter(&b)
	return b.String()
}

func (m *tuiModel) confirmPrompt() string {
	if m.confirm == confirmClear {
		return fmt.Sprintf("Remove %d completed task(s)? y/n", m.result.Stats.Completed)
	}
	if t, err := m.store.Get(m.pendingID); err == nil {
		return fmt.Sprintf("Delete #%d %q? y/n", t.ID, t.Description)
	}
	return "Delete task? y/n"
}

func (m *tuiModel) writeTitle(b *strings.Builder) {
	st := m.result.Stats
	title := m.theme.Title.Render("To-Do List")
	summary := m.theme.Muted.Render(fmt.Sprintf("  %d tasks • %d done • %d pending • %.0f%% complete",
		st.Total, st.Completed, st.Pending, st.CompletionRate()))
	if st.Overdue > 0 {
		summary += m.theme.Overdue.Render(fmt.Sprintf(" • %d overdue", st.Overdue))
	}
	b.WriteString(title + summary + "\n\n")
}

func (m *tuiModel) writeViewLine(b *strings.Builder) {
	f := m.view.Filters
	label := func(v string) string {
		if v == "" {
			return query.All
		}
		return v
	}
	line := fmt.Sprintf("status:%s  priority:%s  category:%s  sort:%s",
		label(string(f.Status)), label(string(f.Priority)), label(f.Category), m.view.Sort.Label())
	if m.view.Search != "" && m.mode != modeSearch {
		line += fmt.Sprintf("  search:%q", m.view.Search)
	}
	b.WriteString(m.theme.Muted.Render(line) + "\n\n")
}

func (m *tuiModel) writeTasks(b *strings.Builder) {
	tasks := m.result.Tasks
	if len(tasks) == 0 {
		if m.result.Stats.Total == 0 {
			b.WriteString(m.theme.Muted.Render("  No tasks yet. Press a to add one.") + "\n\n")
		} else {
			b.WriteString(m.theme.Muted.Render("  No tasks match the current view. Press 0 to clear filters.") + "\n\n")
		}
		return
	}

	start, end := m.visibleRange(len(tasks))
	now := time.Now()
	for i := start; i < end; i++ {
		b.WriteString(m.formatTask(tasks[i], i == m.cursor, now) + "\n")
	}
	if end-start < len(tasks) {
		b.WriteString(m.theme.Muted.Render(fmt.Sprintf("  %d-%d of %d", start+1, end, len(tasks))) + "\n")
	}
	b.WriteString("\n")
}

// visibleRange returns the window of rows that fits the terminal and keeps
// the cursor visible.
func (m *tuiModel) visibleRange(n int) (int, int) {
	rows := n
	if m.height > 0 {
		rows = m.height - 10
		if rows < 3 {
			rows = 3
		}
	}
	if rows >= n {
		return 0, n
	}
	start := m.cursor - rows/2
	if start < 0 {
		start = 0
	}
	if start+rows > n {
		start = n - rows
	}
	return start, start + rows
}

func (m *tuiModel) formatTask(t todo.Task, selected bool, now time.Time) string {
	th := m.theme
	check := "[ ]"
	if t.Completed {
		check = "[x]"
	}
	line := fmt.Sprintf("%s #%-3d %s", check, t.ID, t.Description)
	if selected {
		return th.Selected.Render("> " + line + "  " + meta(t))
	}

	desc := th.Normal.Render(line)
	if t.Completed {
		desc = th.Done.Render(line)
	}
	parts := []string{"  " + desc, th.Tag.Render("#" + t.Category), m.priorityStyle(t.Priority).Render(t.Priority.Label())}
	if t.HasDueDate() {
		due := "due " + t.DueDate.Time().Format("Jan 02, 2006")
		if t.Overdue(now) {
			parts = append(parts, th.Overdue.Render(due+" (overdue)"))
		} else {
			parts = append(parts, th.Muted.Render(due))
		}
	}
	return strings.Join(parts, " ")
}

func meta(t todo.Task) string {
	s := "#" + t.Category + " " + t.Priority.Label()
	if t.HasDueDate() {
		s += " due " + t.DueDate.Time().Format("Jan 02, 2006")
	}
	return s
}

func (m *tuiModel) priorityStyle(p todo.Priority) lipgloss.Style {
	switch p {
	case todo.PriorityHigh:
		return m.theme.High
	case todo.PriorityLow:
		return m.theme.Low
	default:
		return m.theme.Medium
	}
}

func (m *tuiModel) writeStats(b *strings.Builder) {
	th := m.theme
	st := m.result.Stats
	var body strings.Builder
	body.WriteString(th.Title.Render("Statistics") + "\n\n")
	body.WriteString(fmt.Sprintf("Total tasks:      %d\n", st.Total))
	body.WriteString(fmt.Sprintf("Completed:        %d\n", st.Completed))
	body.WriteString(fmt.Sprintf("Pending:          %d\n", st.Pending))
	body.WriteString(fmt.Sprintf("Overdue:          %d\n", st.Overdue))
	body.WriteString(fmt.Sprintf("Completion rate:  %.1f%%\n\n", st.CompletionRate()))

	body.WriteString(th.Header.Render("By priority") + "\n")
	for _, p := range todo.Priorities() {
		body.WriteString(fmt.Sprintf("  %-8s %d\n", m.priorityStyle(p).Render(p.Label()), st.ByPriority[p]))
	}
	body.WriteString("\n" + th.Header.Render("By category") + "\n")
	if len(st.ByCategory) == 0 {
		body.WriteString(th.Muted.Render("  none") + "\n")
	}
	for _, cc := range st.SortedCategories() {
		body.WriteString(fmt.Sprintf("  %-12s %d\n", cc.Category, cc.Count))
	}
	b.WriteString(th.Panel.Render(body.String()) + "\n\n")
}

func (m *tuiModel) writeHelp(b *strings.Builder) {
	keys := [][2]string{
		{"↑/k ↓/j", "Move"},
		{"a", "Add task"},
		{"e, enter", "Edit task"},
		{"space, x", "Toggle completed"},
		{"d", "Delete task"},
		{"C", "Clear completed tasks"},
		{"/", "Search"},
		{"f", "Cycle status filter"},
		{"p", "Cycle priority filter"},
		{"c", "Cycle category filter"},
		{"o", "Cycle sort order"},
		{"0, esc", "Clear filters and search"},
		{"s", "Statistics"},
		{"t", "Toggle dark/light theme"},
		{"h, ?", "Toggle this help screen"},
		{"q, ctrl+c", "Quit"},
	}
	b.WriteString(m.theme.Header.Render("Keyboard Shortcuts") + "\n\n")
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("  %s %s\n", m.theme.Key.Render(fmt.Sprintf("%-10s", k[0])), k[1]))
	}
	b.WriteString("\n")
}

func (m *tuiModel) writeStatus(b *strings.Builder) {
	if m.status == "" {
		return
	}
	if m.statusErr {
		b.WriteString(m.theme.Error.Render(m.status) + "\n")
		return
	}
	b.WriteString(m.theme.Success.Render(m.status) + "\n")
}

func (m *tuiModel) writeFooter(b *strings.Builder) {
	b.WriteString(m.theme.Muted.Render("Press h for help | q to quit | " + m.store.Path()))
	b.WriteString("\n")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
