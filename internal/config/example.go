package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# todolist configuration file
# Values can be overridden by a .env file, TODOLIST_* environment
# variables or CLI flags.

# Task data file (supports ~ expansion and %VAR% on Windows)
data_file = "~/.todolist/todo_data.json"

# External JSON Schema for the data file; the embedded schema is used when empty
# schema_file = "tasks.schema.json"

# Where "todolist export" writes reports when -o is not given
export_dir = "."

# Category presets offered by the TUI and matched case-insensitively
categories = ["Work", "Study", "Personal", "Health", "Other"]

# Reject categories outside the presets
strict_categories = false

# Defaults for new tasks
default_category = "Other"
default_priority = "medium"   # high, medium or low

# Initial sort: newest, oldest, priority or due_date
default_sort = "newest"

# TUI theme: dark or light
theme = "dark"

# Logging
log_level = "warn"            # debug, info, warn, error
log_format = "text"           # text, json or logfmt
log_timestamps = false
log_caller = false
# log_file = "~/.todolist/todolist.log"
`
}
