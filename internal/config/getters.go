package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nibzard/todolist/internal/logging"
	"github.com/nibzard/todolist/internal/query"
	"github.com/nibzard/todolist/internal/todo"
	"github.com/nibzard/todolist/internal/utils"
)

// Priority returns the default priority for new tasks, falling back to
// medium when the configured value is invalid.
func (c *Config) Priority() todo.Priority {
	p, err := todo.ParsePriority(c.DefaultPriority)
	if err != nil {
		return todo.PriorityMedium
	}
	return p
}

// SortKey returns the initial sort key, falling back to newest.
func (c *Config) SortKey() query.SortKey {
	k, err := query.ParseSortKey(c.DefaultSort)
	if err != nil {
		return query.SortNewest
	}
	return k
}

// IsLightTheme reports whether the light TUI theme is selected.
func (c *Config) IsLightTheme() bool {
	return strings.EqualFold(strings.TrimSpace(c.Theme), ThemeLight)
}

// LoggingOptions returns the logger settings.
func (c *Config) LoggingOptions() logging.Options {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		level, _ = logging.ParseLevel(DefaultLogLevel)
	}
	format, err := logging.ParseFormat(c.LogFormat)
	if err != nil {
		format = logging.FormatText
	}
	return logging.Options{
		Level:      level,
		Format:     format,
		Timestamps: c.LogTimestamps,
		Caller:     c.LogCaller,
		File:       c.LogFile,
	}
}

// Validate reports every setting holding a value outside its accepted set.
func (c *Config) Validate() error {
	var errs []error
	if _, err := todo.ParsePriority(c.DefaultPriority); err != nil {
		errs = append(errs, fmt.Errorf("default_priority: %w", err))
	}
	if _, err := query.ParseSortKey(c.DefaultSort); err != nil {
		errs = append(errs, fmt.Errorf("default_sort: %w", err))
	}
	switch strings.ToLower(strings.TrimSpace(c.Theme)) {
	case ThemeDark, ThemeLight:
	default:
		errs = append(errs, fmt.Errorf("theme: unknown theme %q (want dark or light)", c.Theme))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if _, err := logging.ParseFormat(c.LogFormat); err != nil {
		errs = append(errs, fmt.Errorf("log_format: %w", err))
	}
	if c.StrictCategories {
		if _, ok := utils.MatchLabel(c.DefaultCategory, c.Categories); !ok {
			errs = append(errs, fmt.Errorf("default_category: %q is not one of the categories while strict_categories is set", c.DefaultCategory))
		}
	}
	return errors.Join(errs...)
}
