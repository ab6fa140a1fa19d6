package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/nibzard/todolist/internal/utils"
)

// DotEnvFile is read from the working directory when present.
const DotEnvFile = ".env"

// loadDotEnv copies variables from .env into the process environment.
// Variables that are already set keep their value.
func loadDotEnv() error {
	if _, err := os.Stat(DotEnvFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return godotenv.Load(DotEnvFile)
}

// loadFromEnv overrides config from TODOLIST_* environment variables.
// If sources is non-nil, it tracks the source of each value.
func loadFromEnv(cfg *Config, sources map[string]ConfigSource) {
	setEnv := func(field string) {
		if sources != nil {
			sources[field] = SourceEnv
		}
	}
	str := func(name, field string, target *string) {
		if v := os.Getenv(name); v != "" {
			*target = v
			setEnv(field)
		}
	}
	boolean := func(name, field string, target *bool) {
		if v := os.Getenv(name); v != "" {
			*target = boolFromString(v)
			setEnv(field)
		}
	}

	str("TODOLIST_DATA_FILE", "data_file", &cfg.DataFile)
	str("TODOLIST_SCHEMA", "schema_file", &cfg.SchemaFile)
	str("TODOLIST_EXPORT_DIR", "export_dir", &cfg.ExportDir)
	if v := os.Getenv("TODOLIST_CATEGORIES"); v != "" {
		cfg.Categories = utils.SplitAndTrim(v, ",")
		setEnv("categories")
	}
	boolean("TODOLIST_STRICT_CATEGORIES", "strict_categories", &cfg.StrictCategories)
	str("TODOLIST_DEFAULT_CATEGORY", "default_category", &cfg.DefaultCategory)
	str("TODOLIST_DEFAULT_PRIORITY", "default_priority", &cfg.DefaultPriority)
	str("TODOLIST_DEFAULT_SORT", "default_sort", &cfg.DefaultSort)
	str("TODOLIST_THEME", "theme", &cfg.Theme)

	// Logging configuration
	str("TODOLIST_LOG_LEVEL", "log_level", &cfg.LogLevel)
	str("TODOLIST_LOG_FORMAT", "log_format", &cfg.LogFormat)
	boolean("TODOLIST_LOG_TIMESTAMPS", "log_timestamps", &cfg.LogTimestamps)
	boolean("TODOLIST_LOG_CALLER", "log_caller", &cfg.LogCaller)
	str("TODOLIST_LOG_FILE", "log_file", &cfg.LogFile)
}

// boolFromString parses common truthy spellings.
func boolFromString(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
