package config

import (
	"github.com/nibzard/todolist/internal/store"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// ConfigWithSources holds configuration along with source information for each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]ConfigSource
}

// Default values.
const (
	DefaultDataFile  = "~/.todolist/todo_data.json"
	DefaultSort      = "newest"
	DefaultTheme     = ThemeDark
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// Themes.
const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Config holds the full configuration for todolist.
type Config struct {
	// Paths
	DataFile   string `toml:"data_file"`
	SchemaFile string `toml:"schema_file"` // empty uses the embedded schema
	ExportDir  string `toml:"export_dir"`

	// Task defaults
	Categories       []string `toml:"categories"`
	StrictCategories bool     `toml:"strict_categories"`
	DefaultCategory  string   `toml:"default_category"`
	DefaultPriority  string   `toml:"default_priority"`
	DefaultSort      string   `toml:"default_sort"`

	// Presentation
	Theme string `toml:"theme"`

	// Logging configuration
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`
	LogFile       string `toml:"log_file"`

	// Config files that were read, lowest precedence first (computed)
	Files []string `toml:"-"`
	// Unknown keys found in config files (computed)
	Warnings []string `toml:"-"`
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.DataFile = DefaultDataFile
	cfg.SchemaFile = ""
	cfg.ExportDir = "."
	cfg.Categories = store.DefaultCategories()
	cfg.StrictCategories = false
	cfg.DefaultCategory = store.DefaultCategory
	cfg.DefaultPriority = string(store.DefaultPriority)
	cfg.DefaultSort = DefaultSort
	cfg.Theme = DefaultTheme

	// Logging defaults
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
}

// configFields returns the list of configurable field names for source tracking.
func configFields() []string {
	return []string{
		"data_file",
		"schema_file",
		"export_dir",
		"categories",
		"strict_categories",
		"default_category",
		"default_priority",
		"default_sort",
		"theme",
		"log_level",
		"log_format",
		"log_timestamps",
		"log_caller",
		"log_file",
	}
}
