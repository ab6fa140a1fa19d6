package config

import (
	"flag"

	"github.com/nibzard/todolist/internal/utils"
)

// flagFields maps global flag names to config field names.
var flagFields = map[string]string{
	"file":              "data_file",
	"schema":            "schema_file",
	"export-dir":        "export_dir",
	"categories":        "categories",
	"strict-categories": "strict_categories",
	"default-category":  "default_category",
	"default-priority":  "default_priority",
	"sort":              "default_sort",
	"theme":             "theme",
	"log-level":         "log_level",
	"log-format":        "log_format",
	"log-timestamps":    "log_timestamps",
	"log-caller":        "log_caller",
	"log-file":          "log_file",
}

// parseFlags defines the global flags on fs and parses args.
// If sources is non-nil, flags set explicitly are recorded.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]ConfigSource) error {
	if fs == nil {
		fs = flag.NewFlagSet("todolist", flag.ContinueOnError)
	}

	// Paths
	fs.StringVar(&cfg.DataFile, "file", cfg.DataFile, "Path to the task data file")
	fs.StringVar(&cfg.SchemaFile, "schema", cfg.SchemaFile, "Path to an external JSON Schema for the data file")
	fs.StringVar(&cfg.ExportDir, "export-dir", cfg.ExportDir, "Directory for exported reports")

	// Task defaults
	var categories string
	fs.StringVar(&categories, "categories", "", "Comma-separated category presets")
	fs.BoolVar(&cfg.StrictCategories, "strict-categories", cfg.StrictCategories, "Reject categories outside the presets")
	fs.StringVar(&cfg.DefaultCategory, "default-category", cfg.DefaultCategory, "Category for new tasks")
	fs.StringVar(&cfg.DefaultPriority, "default-priority", cfg.DefaultPriority, "Priority for new tasks (high, medium, low)")
	fs.StringVar(&cfg.DefaultSort, "sort", cfg.DefaultSort, "Default sort (newest, oldest, priority, due_date)")

	// Presentation
	fs.StringVar(&cfg.Theme, "theme", cfg.Theme, "TUI theme (dark, light)")

	// Logging
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Include timestamps in log output")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Include caller location in log output")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "Write logs to this file instead of stderr")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "categories" {
			cfg.Categories = utils.SplitAndTrim(categories, ",")
		}
		if field, ok := flagFields[f.Name]; ok && sources != nil {
			sources[field] = SourceFlag
		}
	})
	return nil
}
