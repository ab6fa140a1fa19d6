// Package store owns the in-memory task collection and keeps the data file
// in step with it.
//
// A Store is loaded once and then flushed after every mutation. Writes
// replace the whole file atomically. When a write fails the in-memory change
// stands, the store is marked dirty, and the next successful write (another
// mutation or an explicit Save) brings the file back in line.
//
// A Store is not safe for concurrent use; callers drive it from a single
// goroutine.
package store

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todolist/internal/todo"
	"github.com/nibzard/todolist/internal/utils"
)

var (
	// ErrNotFound is returned when an operation names an id absent from the
	// collection.
	ErrNotFound = errors.New("task not found")
	// ErrInvalidInput is returned for an empty description or a priority or
	// category outside the accepted values.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStorageCorrupt is returned when the data file cannot be read or
	// parsed. The store continues with an empty collection.
	ErrStorageCorrupt = errors.New("storage corrupt")
	// ErrStorageWriteFailed is returned when the data file could not be
	// written. The in-memory collection keeps the change.
	ErrStorageWriteFailed = errors.New("storage write failed")
)

// CorruptSuffix is appended to the name of a data file that failed to load
// before it is moved aside. A UTC timestamp follows it, and a counter when
// that name is already taken.
const CorruptSuffix = ".corrupt"

const backupStamp = "20060102T150405Z"

// Default values.
const (
	DefaultCategory = "Other"
	DefaultPriority = todo.PriorityMedium
)

// DefaultCategories returns the suggested category presets.
func DefaultCategories() []string {
	return []string{"Work", "Study", "Personal", "Health", "Other"}
}

// Store holds the authoritative task collection.
type Store struct {
	path             string
	file             *todo.File
	logger           *log.Logger
	now              func() time.Time
	validation       todo.ValidationOptions
	categories       []string
	strictCategories bool
	defaultCategory  string
	defaultPriority  todo.Priority
	dirty            bool
	backup           string
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards output.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSchemaFile validates the data file against an external JSON Schema
// instead of the embedded one.
func WithSchemaFile(path string) Option {
	return func(s *Store) {
		s.validation.SchemaPath = path
	}
}

// WithCategories sets the category presets. When strict is true, Add and
// Update reject categories outside the presets.
func WithCategories(presets []string, strict bool) Option {
	return func(s *Store) {
		if cleaned := utils.UniqueLabels(presets); cleaned != nil {
			s.categories = cleaned
		}
		s.strictCategories = strict
	}
}

// WithDefaults sets the category and priority applied when Add receives
// none.
func WithDefaults(category string, priority todo.Priority) Option {
	return func(s *Store) {
		if c := utils.NormalizeLabel(category); c != "" {
			s.defaultCategory = c
		}
		if priority.Valid() {
			s.defaultPriority = priority
		}
	}
}

// Open creates a store for the data file at path and loads it.
//
// Open returns a usable store even when loading fails with ErrStorageCorrupt;
// callers should surface that error as a warning and carry on.
func Open(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: data file path is empty", ErrInvalidInput)
	}

	s := &Store{
		path:            path,
		file:            todo.NewFile(),
		logger:          log.New(io.Discard),
		now:             time.Now,
		categories:      DefaultCategories(),
		defaultCategory: DefaultCategory,
		defaultPriority: DefaultPriority,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, s.Load()
}

// Path returns the data file path.
func (s *Store) Path() string {
	return s.path
}

// Categories returns the category presets.
func (s *Store) Categories() []string {
	out := make([]string, len(s.categories))
	copy(out, s.categories)
	return out
}

// Backup returns where Load moved an unreadable data file, or "" when it
// moved nothing.
func (s *Store) Backup() string {
	return s.backup
}

// Dirty reports whether the last write failed and memory is ahead of disk.
func (s *Store) Dirty() bool {
	return s.dirty
}

// Load replaces the in-memory collection with the data file content.
//
// A missing file yields an empty collection. A file that cannot be read or
// parsed also yields an empty collection; it is moved aside to a fresh
// <path>.corrupt-<timestamp> name so neither the next write nor a later
// corruption destroys it, and an error wrapping ErrStorageCorrupt is
// returned.
func (s *Store) Load() error {
	s.dirty = false
	s.backup = ""
	f, err := todo.Load(s.path, s.validation)
	if err == nil {
		s.file = f
		s.logger.Debug("loaded tasks", "path", s.path, "count", len(f.Tasks))
		return nil
	}

	s.file = todo.NewFile()
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Debug("no data file yet, starting empty", "path", s.path)
		return nil
	}

	s.logger.Warn("data file unreadable, starting empty", "path", s.path, "err", err)
	backup := s.backupPath()
	if renameErr := os.Rename(s.path, backup); renameErr != nil {
		s.logger.Warn("could not move corrupt data file aside", "path", s.path, "err", renameErr)
	} else {
		s.backup = backup
		s.logger.Warn("corrupt data file preserved", "backup", backup)
	}
	return fmt.Errorf("%w: %w", ErrStorageCorrupt, err)
}

// backupPath returns an unused name next to the data file.
func (s *Store) backupPath() string {
	base := s.path + CorruptSuffix + "-" + s.now().UTC().Format(backupStamp)
	candidate := base
	for i := 1; ; i++ {
		if _, err := os.Lstat(candidate); errors.Is(err, fs.ErrNotExist) {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

// Save writes the collection to the data file.
func (s *Store) Save() error {
	return s.flush()
}

func (s *Store) flush() error {
	now := s.now().UTC()
	s.file.LastUpdated = &now
	if err := s.file.Save(s.path); err != nil {
		s.dirty = true
		s.logger.Error("saving tasks failed", "path", s.path, "err", err)
		return fmt.Errorf("%w: %w", ErrStorageWriteFailed, err)
	}
	s.dirty = false
	s.logger.Debug("saved tasks", "path", s.path, "count", len(s.file.Tasks))
	return nil
}

// All returns a copy of every task in insertion order.
func (s *Store) All() []todo.Task {
	out := make([]todo.Task, len(s.file.Tasks))
	for i := range s.file.Tasks {
		out[i] = s.file.Tasks[i].Clone()
	}
	return out
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.file.Tasks)
}

// Get returns a copy of the task with id.
func (s *Store) Get(id int) (todo.Task, error) {
	task := s.file.GetTask(id)
	if task == nil {
		return todo.Task{}, notFound(id)
	}
	return task.Clone(), nil
}

func notFound(id int) error {
	return fmt.Errorf("%w: id %d", ErrNotFound, id)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// normalizeCategory resolves a category against the presets. An empty
// category is only accepted when allowEmpty is set and resolves to the
// default.
func (s *Store) normalizeCategory(category string, allowEmpty bool) (string, error) {
	category = utils.NormalizeLabel(category)
	if category == "" {
		if !allowEmpty {
			return "", invalid("category must not be empty")
		}
		category = s.defaultCategory
	}
	if preset, ok := utils.MatchLabel(category, s.categories); ok {
		return preset, nil
	}
	if s.strictCategories {
		return "", invalid("unknown category %q, must be one of: %s", category, strings.Join(s.categories, ", "))
	}
	return category, nil
}
