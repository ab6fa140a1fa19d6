// Package cmd implements the CLI command structure for todolist.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todolist/internal/config"
	"github.com/nibzard/todolist/internal/logging"
	"github.com/nibzard/todolist/internal/store"
	"github.com/nibzard/todolist/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// app carries what every subcommand needs.
type app struct {
	cfg     *config.Config
	sources *config.ConfigWithSources
	logger  *log.Logger
	stdout  io.Writer
	stderr  io.Writer
}

// Run executes the todolist CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("todolist", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand(stdout)
	}

	logger, closer, err := logging.Open(stderr, cws.Config.LoggingOptions())
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer closer.Close()

	a := &app{
		cfg:     cws.Config,
		sources: cws,
		logger:  logger,
		stdout:  stdout,
		stderr:  stderr,
	}
	for _, w := range a.cfg.Warnings {
		logger.Warn("config", "warning", w)
	}

	// Without a command, interactive terminals get the TUI and pipes get ls.
	subcommand := "ls"
	if ui.IsTTY(stdout) {
		subcommand = "tui"
	}
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "add":
		return a.addCommand(remainingArgs)
	case "ls", "list":
		return a.lsCommand(remainingArgs)
	case "edit":
		return a.editCommand(remainingArgs)
	case "done", "toggle":
		return a.doneCommand(remainingArgs)
	case "rm", "remove":
		return a.rmCommand(remainingArgs)
	case "clear":
		return a.clearCommand(remainingArgs)
	case "stats":
		return a.statsCommand(remainingArgs)
	case "export":
		return a.exportCommand(remainingArgs)
	case "tui":
		return a.tuiCommand(ctx, remainingArgs)
	case "doctor":
		return a.doctorCommand(remainingArgs)
	case "config":
		return a.configCommand(remainingArgs)
	case "version":
		return versionCommand(stdout)
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// openStore opens the configured data file. A corrupt file is reported as
// a warning and the store starts empty.
func (a *app) openStore(logger *log.Logger) (*store.Store, string, error) {
	opts := []store.Option{
		store.WithLogger(logger),
		store.WithCategories(a.cfg.Categories, a.cfg.StrictCategories),
		store.WithDefaults(a.cfg.DefaultCategory, a.cfg.Priority()),
	}
	if a.cfg.SchemaFile != "" {
		opts = append(opts, store.WithSchemaFile(a.cfg.SchemaFile))
	}
	st, err := store.Open(a.cfg.DataFile, opts...)
	if err == nil {
		return st, "", nil
	}
	if errors.Is(err, store.ErrStorageCorrupt) && st != nil {
		warning := fmt.Sprintf("Data file could not be read, starting empty (it could not be moved aside; the next change overwrites %s)", a.cfg.DataFile)
		if backup := st.Backup(); backup != "" {
			warning = fmt.Sprintf("Data file could not be read, starting empty (backup at %s)", backup)
		}
		return st, warning, nil
	}
	return nil, "", err
}

// tuiCommand launches the TUI.
func (a *app) tuiCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("todolist tui", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	// Log lines would tear the alt screen, so only a log file receives them.
	logger := logging.Discard()
	if a.cfg.LogFile != "" {
		logger = a.logger
	}
	st, warning, err := a.openStore(logger)
	if err != nil {
		return err
	}
	return ui.RunTUI(ctx, st,
		ui.WithLightTheme(a.cfg.IsLightTheme()),
		ui.WithSort(a.cfg.SortKey()),
		ui.WithDefaults(a.cfg.DefaultCategory, a.cfg.Priority()),
		ui.WithLogger(logger),
		ui.WithWarning(warning),
	)
}

// versionCommand prints version information.
func versionCommand(w io.Writer) error {
	fmt.Fprintf(w, "todolist version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "todolist - a personal to-do manager")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  todolist [global options] [command] [options] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  add <description...>  Add a task")
	fmt.Fprintln(w, "  ls                    List tasks (default when output is not a terminal)")
	fmt.Fprintln(w, "  edit <id>             Change a task's fields")
	fmt.Fprintln(w, "  done <id>             Toggle a task between pending and completed")
	fmt.Fprintln(w, "  rm <id>               Delete a task")
	fmt.Fprintln(w, "  clear                 Delete every completed task")
	fmt.Fprintln(w, "  stats                 Show statistics for all tasks")
	fmt.Fprintln(w, "  export                Write a CSV, JSON or PDF report")
	fmt.Fprintln(w, "  tui                   Launch terminal UI (default in a terminal)")
	fmt.Fprintln(w, "  doctor                Check config, data file and schema")
	fmt.Fprintln(w, "  config                Show the effective configuration")
	fmt.Fprintln(w, "  version               Show version information")
	fmt.Fprintln(w, "  help                  Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Add Options:")
	fmt.Fprintln(w, "  -p string    Priority (high, medium, low)")
	fmt.Fprintln(w, "  -c string    Category")
	fmt.Fprintln(w, "  -due string  Due date (YYYY-MM-DD)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Ls Options:")
	fmt.Fprintln(w, "  -status string    Filter by status (all, pending, completed)")
	fmt.Fprintln(w, "  -priority string  Filter by priority (all, high, medium, low)")
	fmt.Fprintln(w, "  -category string  Filter by category")
	fmt.Fprintln(w, "  -sort string      Sort order (newest, oldest, priority, due_date)")
	fmt.Fprintln(w, "  -search string    Show tasks whose description or category contains text")
	fmt.Fprintln(w, "  -v                Show timestamps")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Edit Options:")
	fmt.Fprintln(w, "  -d string    New description")
	fmt.Fprintln(w, "  -p string    New priority")
	fmt.Fprintln(w, "  -c string    New category")
	fmt.Fprintln(w, "  -due string  New due date (YYYY-MM-DD)")
	fmt.Fprintln(w, "  -no-due      Remove the due date")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Export Options:")
	fmt.Fprintln(w, "  -format string  csv, json or pdf (default: from -o, else csv)")
	fmt.Fprintln(w, "  -o string       Output path (default: todo_export_<timestamp>.<ext> in export_dir)")
	fmt.Fprintln(w, "  (ls filter and sort options apply to export as well)")
}

// parseArgs parses flags that may appear before, between or after
// positional arguments, returning the positionals in order.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}
