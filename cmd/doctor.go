package cmd

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nibzard/todolist/internal/config"
	"github.com/nibzard/todolist/internal/store"
	"github.com/nibzard/todolist/internal/todo"
)

// doctorCommand checks config, data file and schema without modifying
// anything on disk.
func (a *app) doctorCommand(args []string) error {
	fs := flag.NewFlagSet("todolist doctor", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	verbose := fs.Bool("v", false, "Verbose output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	w := a.stdout
	fmt.Fprintln(w, "todolist doctor")
	fmt.Fprintln(w, "===============")
	fmt.Fprintln(w)

	allOK := true

	// Config
	fmt.Fprintln(w, "Config:")
	if len(a.cfg.Files) == 0 {
		fmt.Fprintln(w, "  ✅ No config file (defaults)")
	}
	for _, f := range a.cfg.Files {
		fmt.Fprintf(w, "  ✅ Read %s\n", f)
	}
	for _, warning := range a.cfg.Warnings {
		fmt.Fprintf(w, "  ⚠️  %s\n", warning)
	}
	if err := a.cfg.Validate(); err != nil {
		for _, line := range strings.Split(err.Error(), "\n") {
			fmt.Fprintf(w, "  ❌ %s\n", line)
		}
		allOK = false
	} else {
		fmt.Fprintln(w, "  ✅ Values valid")
	}
	fmt.Fprintln(w)

	// Schema
	schemaPath := a.cfg.SchemaFile
	if schemaPath == "" {
		fmt.Fprintln(w, "Schema: embedded")
		fmt.Fprintln(w, "  ✅ OK")
	} else {
		fmt.Fprintf(w, "Schema file: %s\n", schemaPath)
		if info, err := os.Stat(schemaPath); err != nil {
			fmt.Fprintf(w, "  ❌ Error: %v\n", err)
			allOK = false
		} else if info.IsDir() {
			fmt.Fprintln(w, "  ❌ Error: path is a directory")
			allOK = false
		} else {
			fmt.Fprintln(w, "  ✅ OK")
		}
	}
	fmt.Fprintln(w)

	// Data file
	dataPath := a.cfg.DataFile
	fmt.Fprintf(w, "Data file: %s\n", dataPath)
	data, err := os.ReadFile(dataPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		fmt.Fprintln(w, "  ⚠️  Not found (will be created by the first change)")
		if !dirWritable(filepath.Dir(dataPath)) {
			fmt.Fprintf(w, "  ❌ Cannot create files in %s\n", filepath.Dir(dataPath))
			allOK = false
		}
	case err != nil:
		fmt.Fprintf(w, "  ❌ Error: %v\n", err)
		allOK = false
	default:
		opts := todo.ValidationOptions{SchemaPath: schemaPath}
		result := todo.ValidateDocument(data, opts)
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  ⚠️  %s\n", warning)
		}
		if !result.Valid {
			fmt.Fprintln(w, "  ❌ Validation failed:")
			for _, e := range result.Errors {
				fmt.Fprintf(w, "     - %v\n", e)
			}
			allOK = false
			break
		}
		f, err := todo.Decode(data, opts)
		if err != nil {
			fmt.Fprintf(w, "  ❌ %v\n", err)
			allOK = false
			break
		}
		fmt.Fprintf(w, "  ✅ Valid (%d tasks, next id %d)\n", len(f.Tasks), f.NextID)
		if *verbose {
			for _, t := range f.Tasks {
				mark := " "
				if t.Completed {
					mark = "x"
				}
				fmt.Fprintf(w, "    - [%s] %d: %s\n", mark, t.ID, t.Description)
			}
		}
	}
	backups, _ := filepath.Glob(dataPath + store.CorruptSuffix + "*")
	for _, backup := range backups {
		fmt.Fprintf(w, "  ⚠️  Backup of an unreadable data file exists: %s\n", backup)
	}
	fmt.Fprintln(w)

	if allOK {
		fmt.Fprintln(w, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(w, "⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}

// dirWritable reports whether dir exists and accepts new files, or does not
// exist yet but could be created.
func dirWritable(dir string) bool {
	for {
		info, err := os.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return false
			}
			f, err := os.CreateTemp(dir, ".todolist-doctor-*")
			if err != nil {
				return false
			}
			name := f.Name()
			f.Close()
			os.Remove(name)
			return true
		}
		if !errors.Is(err, os.ErrNotExist) {
			return false
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
}

// configCommand prints the effective configuration and where each value
// came from.
func (a *app) configCommand(args []string) error {
	fs := flag.NewFlagSet("todolist config", flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	example := fs.Bool("example", false, "Print an example config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	w := a.stdout
	if *example {
		fmt.Fprint(w, config.ExampleConfig())
		return nil
	}

	cfg := a.cfg
	values := map[string]string{
		"data_file":         cfg.DataFile,
		"schema_file":       cfg.SchemaFile,
		"export_dir":        cfg.ExportDir,
		"categories":        strings.Join(cfg.Categories, ", "),
		"strict_categories": fmt.Sprint(cfg.StrictCategories),
		"default_category":  cfg.DefaultCategory,
		"default_priority":  cfg.DefaultPriority,
		"default_sort":      cfg.DefaultSort,
		"theme":             cfg.Theme,
		"log_level":         cfg.LogLevel,
		"log_format":        cfg.LogFormat,
		"log_timestamps":    fmt.Sprint(cfg.LogTimestamps),
		"log_caller":        fmt.Sprint(cfg.LogCaller),
		"log_file":          cfg.LogFile,
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if file := a.sources.GetConfigFile(); file != "" {
		fmt.Fprintf(w, "# config file: %s\n", file)
	} else {
		fmt.Fprintf(w, "# no config file (user config path: %s)\n", config.UserConfigPath())
	}
	for _, k := range keys {
		fmt.Fprintf(w, "%-18s = %-40q # %s\n", k, values[k], a.sources.Sources[k])
	}
	return nil
}
