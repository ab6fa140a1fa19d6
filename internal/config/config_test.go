package config

import (
	"flag"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todolist/internal/logging"
	"github.com/nibzard/todolist/internal/query"
	"github.com/nibzard/todolist/internal/todo"
)

var envVars = []string{
	"TODOLIST_CONFIG",
	"TODOLIST_DATA_FILE",
	"TODOLIST_SCHEMA",
	"TODOLIST_EXPORT_DIR",
	"TODOLIST_CATEGORIES",
	"TODOLIST_STRICT_CATEGORIES",
	"TODOLIST_DEFAULT_CATEGORY",
	"TODOLIST_DEFAULT_SORT",
	"TODOLIST_THEME",
	"TODOLIST_LOG_LEVEL",
	"TODOLIST_LOG_FORMAT",
	"TODOLIST_LOG_TIMESTAMPS",
	"TODOLIST_LOG_CALLER",
	"TODOLIST_LOG_FILE",
}

// isolate points home and config directories at a temp dir, clears
// TODOLIST_* variables and changes into a fresh working directory, which
// it returns.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("APPDATA", filepath.Join(home, "AppData"))
	for _, name := range envVars {
		t.Setenv(name, "")
	}
	// TODOLIST_DEFAULT_PRIORITY stays unset so .env can provide it.
	if prev, ok := os.LookupEnv("TODOLIST_DEFAULT_PRIORITY"); ok {
		os.Unsetenv("TODOLIST_DEFAULT_PRIORITY")
		t.Cleanup(func() { os.Setenv("TODOLIST_DEFAULT_PRIORITY", prev) })
	}
	wd := t.TempDir()
	chdir(t, wd)
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	if cfg.DataFile != DefaultDataFile {
		t.Errorf("DataFile: got %q, want %q", cfg.DataFile, DefaultDataFile)
	}
	if cfg.DefaultCategory != "Other" {
		t.Errorf("DefaultCategory: got %q, want Other", cfg.DefaultCategory)
	}
	if cfg.Priority() != todo.PriorityMedium {
		t.Errorf("Priority: got %q, want medium", cfg.Priority())
	}
	if cfg.SortKey() != query.SortNewest {
		t.Errorf("SortKey: got %q, want newest", cfg.SortKey())
	}
	if want := []string{"Work", "Study", "Personal", "Health", "Other"}; !reflect.DeepEqual(cfg.Categories, want) {
		t.Errorf("Categories: got %v, want %v", cfg.Categories, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadDefaultsOnly(t *testing.T) {
	home := isolate(t)

	cfg, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := filepath.Join(home, ".todolist", "todo_data.json")
	if cfg.DataFile != want {
		t.Errorf("DataFile: got %q, want %q", cfg.DataFile, want)
	}
	if len(cfg.Files) != 0 {
		t.Errorf("no config files expected, got %v", cfg.Files)
	}
}

func TestLoadFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TODOLIST_DATA_FILE", "custom.json")
	t.Setenv("TODOLIST_CATEGORIES", "Home, Garden ,,")
	t.Setenv("TODOLIST_STRICT_CATEGORIES", "yes")
	t.Setenv("TODOLIST_THEME", "light")
	t.Setenv("TODOLIST_LOG_CALLER", "1")

	cfg := &Config{}
	setDefaults(cfg)
	sources := map[string]ConfigSource{}
	loadFromEnv(cfg, sources)

	if cfg.DataFile != "custom.json" {
		t.Errorf("DataFile: got %q, want custom.json", cfg.DataFile)
	}
	if !reflect.DeepEqual(cfg.Categories, []string{"Home", "Garden"}) {
		t.Errorf("Categories: got %v", cfg.Categories)
	}
	if !cfg.StrictCategories || !cfg.LogCaller || !cfg.IsLightTheme() {
		t.Errorf("boolean settings not applied: %+v", cfg)
	}
	if sources["theme"] != SourceEnv {
		t.Errorf("theme source: got %q", sources["theme"])
	}
	if _, ok := sources["log_level"]; ok {
		t.Error("unset variables must not be tracked")
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "todolist.toml")
	writeFile(t, path, `
data_file = "/tmp/tasks.json"
categories = ["Errands", "Work"]
default_sort = "priority"
log_timestamps = true
colour = "blue"
`)

	cfg := &Config{}
	setDefaults(cfg)
	sources := map[string]ConfigSource{}
	if err := loadConfigFile(cfg, path, sources, SourceProjFile); err != nil {
		t.Fatalf("loadConfigFile: %v", err)
	}

	if cfg.DataFile != "/tmp/tasks.json" {
		t.Errorf("DataFile: got %q", cfg.DataFile)
	}
	if !reflect.DeepEqual(cfg.Categories, []string{"Errands", "Work"}) {
		t.Errorf("Categories: got %v", cfg.Categories)
	}
	if cfg.SortKey() != query.SortPriority || !cfg.LogTimestamps {
		t.Errorf("values not applied: %+v", cfg)
	}
	if cfg.Theme != DefaultTheme {
		t.Errorf("keys absent from the file must keep their value, theme = %q", cfg.Theme)
	}
	if sources["default_sort"] != SourceProjFile {
		t.Errorf("default_sort source: got %q", sources["default_sort"])
	}
	if _, ok := sources["theme"]; ok {
		t.Error("theme was not in the file and must not be tracked")
	}
	if len(cfg.Warnings) != 1 || !strings.Contains(cfg.Warnings[0], "colour") {
		t.Errorf("Warnings: got %v", cfg.Warnings)
	}
}

func TestLoadConfigFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todolist.toml")
	writeFile(t, path, "data_file = [")

	cfg := &Config{}
	setDefaults(cfg)
	if err := loadConfigFile(cfg, path, nil, SourceUserFile); err == nil {
		t.Fatal("expected a decode error")
	}
}

func TestLoadWithSourcesLayering(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".todolist", "todolist.toml"), `
theme = "light"
default_sort = "oldest"
log_level = "info"
`)
	writeFile(t, "todolist.toml", `
default_sort = "priority"
`)
	t.Setenv("TODOLIST_LOG_LEVEL", "debug")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cws, err := LoadWithSources(fs, []string{"-file", "mine.json", "ls", "-v"})
	if err != nil {
		t.Fatalf("LoadWithSources: %v", err)
	}
	cfg := cws.Config

	if !cfg.IsLightTheme() {
		t.Errorf("theme from user file: got %q", cfg.Theme)
	}
	if cfg.DefaultSort != "priority" {
		t.Errorf("project file should override user file: got %q", cfg.DefaultSort)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("environment should override files: got %q", cfg.LogLevel)
	}
	if filepath.Base(cfg.DataFile) != "mine.json" || !filepath.IsAbs(cfg.DataFile) {
		t.Errorf("DataFile: got %q", cfg.DataFile)
	}
	if got := fs.Args(); !reflect.DeepEqual(got, []string{"ls", "-v"}) {
		t.Errorf("remaining args: got %v", got)
	}

	want := map[string]ConfigSource{
		"theme":        SourceUserFile,
		"default_sort": SourceProjFile,
		"log_level":    SourceEnv,
		"data_file":    SourceFlag,
		"log_format":   SourceDefault,
	}
	for field, source := range want {
		if cws.Sources[field] != source {
			t.Errorf("source of %s: got %q, want %q", field, cws.Sources[field], source)
		}
	}
	if cws.GetConfigFile() != "todolist.toml" {
		t.Errorf("GetConfigFile: got %q", cws.GetConfigFile())
	}
}

func TestExplicitUserConfig(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "elsewhere.toml")
	writeFile(t, path, `theme = "light"`)
	t.Setenv("TODOLIST_CONFIG", path)

	cfg, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.IsLightTheme() {
		t.Errorf("TODOLIST_CONFIG file not read, theme = %q", cfg.Theme)
	}
	if UserConfigPath() != path {
		t.Errorf("UserConfigPath: got %q, want %q", UserConfigPath(), path)
	}
}

func TestDotEnv(t *testing.T) {
	isolate(t)
	writeFile(t, DotEnvFile, "TODOLIST_DEFAULT_PRIORITY=high\n")
	t.Cleanup(func() { os.Unsetenv("TODOLIST_DEFAULT_PRIORITY") })

	cws, err := LoadWithSources(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatal(err)
	}
	if cws.Config.Priority() != todo.PriorityHigh {
		t.Errorf("Priority: got %q, want high", cws.Config.Priority())
	}
	if cws.Sources["default_priority"] != SourceEnv {
		t.Errorf("source: got %q", cws.Sources["default_priority"])
	}
}

func TestDotEnvDoesNotOverride(t *testing.T) {
	isolate(t)
	writeFile(t, DotEnvFile, "TODOLIST_THEME=light\n")
	t.Setenv("TODOLIST_THEME", "dark")

	cfg, err := Load(flag.NewFlagSet("test", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.IsLightTheme() {
		t.Error(".env must not override variables already set")
	}
}

func TestParseFlags(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	sources := map[string]ConfigSource{}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)

	args := []string{"-categories", "A, B", "-strict-categories", "-log-format", "json", "add", "x"}
	if err := parseFlags(cfg, fs, args, sources); err != nil {
		t.Fatalf("parseFlags: %v", err)
	}

	if !reflect.DeepEqual(cfg.Categories, []string{"A", "B"}) {
		t.Errorf("Categories: got %v", cfg.Categories)
	}
	if !cfg.StrictCategories || cfg.LogFormat != "json" {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if sources["categories"] != SourceFlag || sources["log_format"] != SourceFlag {
		t.Errorf("sources: %v", sources)
	}
	if _, ok := sources["theme"]; ok {
		t.Error("unset flags must not be tracked")
	}
	if got := fs.Args(); !reflect.DeepEqual(got, []string{"add", "x"}) {
		t.Errorf("Args: got %v", got)
	}
}

func TestParseFlagsUnknown(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(&strings.Builder{})
	if err := parseFlags(cfg, fs, []string{"-nope"}, nil); err == nil {
		t.Error("expected error for unknown flag")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"~/test", filepath.Join(home, "test")},
		{"~", home},
		{"/absolute/path", "/absolute/path"},
		{"relative", "relative"},
	}
	if runtime.GOOS == "windows" {
		t.Setenv("TODOLIST_TEST_HOME", home)
		tests = append(tests,
			struct{ input, want string }{`~\test`, filepath.Join(home, "test")},
			struct{ input, want string }{`%TODOLIST_TEST_HOME%\logs`, filepath.Join(home, "logs")},
			struct{ input, want string }{`%UNSET_TODOLIST_VAR%\x`, `%UNSET_TODOLIST_VAR%\x`},
		)
	} else {
		t.Setenv("TODOLIST_TEST_DIR", "/srv/data")
		tests = append(tests,
			struct{ input, want string }{`~\test`, `~\test`},
			struct{ input, want string }{"$TODOLIST_TEST_DIR/tasks.json", "/srv/data/tasks.json"},
		)
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := expandPath(tt.input); got != tt.want {
				t.Errorf("expandPath(%q): got %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBoolFromString(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1", true},
		{"true", true},
		{"YES", true},
		{" on ", true},
		{"0", false},
		{"false", false},
		{"", false},
		{"maybe", false},
	}
	for _, tt := range tests {
		if got := boolFromString(tt.in); got != tt.want {
			t.Errorf("boolFromString(%q): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad priority", func(c *Config) { c.DefaultPriority = "urgent" }, "default_priority"},
		{"bad sort", func(c *Config) { c.DefaultSort = "random" }, "default_sort"},
		{"bad theme", func(c *Config) { c.Theme = "neon" }, "theme"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
		{"strict default outside presets", func(c *Config) {
			c.StrictCategories = true
			c.DefaultCategory = "Garden"
		}, "default_category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			setDefaults(cfg)
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate: got %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoggingOptions(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)
	cfg.LogLevel = "debug"
	cfg.LogFormat = "logfmt"
	cfg.LogFile = "/tmp/todolist.log"

	opts := cfg.LoggingOptions()
	if opts.Level != log.DebugLevel || opts.Format != logging.FormatLogfmt || opts.File != "/tmp/todolist.log" {
		t.Errorf("LoggingOptions: %+v", opts)
	}

	cfg.LogLevel = "nonsense"
	if cfg.LoggingOptions().Level != log.WarnLevel {
		t.Error("invalid level should fall back to warn")
	}
}

func TestExampleConfigParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "todolist.toml")
	writeFile(t, path, ExampleConfig())

	cfg := &Config{}
	setDefaults(cfg)
	if err := loadConfigFile(cfg, path, nil, SourceUserFile); err != nil {
		t.Fatalf("example config does not parse: %v", err)
	}
	if len(cfg.Warnings) != 0 {
		t.Errorf("example config has unknown keys: %v", cfg.Warnings)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("example config does not validate: %v", err)
	}
}

// chdir changes the working directory to dir and restores it when the
// test finishes (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
