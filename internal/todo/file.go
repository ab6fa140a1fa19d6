package todo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// SchemaVersion is the data file format version written by this package.
const SchemaVersion = 1

// File represents the data file structure.
type File struct {
	SchemaVersion int        `json:"schema_version"`
	NextID        int        `json:"next_id"`
	LastUpdated   *time.Time `json:"last_updated,omitempty"`
	Tasks         []Task     `json:"tasks"`
}

// NewFile returns an empty data file.
func NewFile() *File {
	return &File{
		SchemaVersion: SchemaVersion,
		NextID:        1,
		Tasks:         []Task{},
	}
}

// Load reads, validates and parses the data file at path.
// A missing file is reported with an error wrapping fs.ErrNotExist.
func Load(path string, opts ValidationOptions) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read todo file: %w", err)
	}
	return Decode(data, opts)
}

// Decode validates and parses a data file held in memory.
// Every validation problem found is joined into the returned error.
func Decode(data []byte, opts ValidationOptions) (*File, error) {
	result := ValidateDocument(data, opts)
	if !result.Valid {
		return nil, fmt.Errorf("validate todo file: %w", errors.Join(result.Errors...))
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse todo file: %w", err)
	}
	f.normalize()

	minimal := f.Validate()
	if !minimal.Valid {
		return nil, fmt.Errorf("validate todo file: %w", errors.Join(minimal.Errors...))
	}
	return &f, nil
}

// normalize fills fields that older or hand-written files may omit.
func (f *File) normalize() {
	if f.SchemaVersion == 0 {
		f.SchemaVersion = SchemaVersion
	}
	if f.Tasks == nil {
		f.Tasks = []Task{}
	}
	if highest := f.MaxID(); f.NextID <= highest {
		f.NextID = highest + 1
	}
}

// Encode renders the file with 2-space indentation and a trailing newline.
func (f *File) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(f); err != nil {
		return nil, fmt.Errorf("marshal todo file: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the file to path, replacing any previous content atomically.
func (f *File) Save(path string) error {
	data, err := f.Encode()
	if err != nil {
		return err
	}
	if err := WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write todo file: %w", err)
	}
	return nil
}

// WriteFileAtomic writes data to a temporary file next to path, syncs it and
// renames it over path. The parent directory is created if needed.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// MaxID returns the largest task id in the file, or 0 when it is empty.
func (f *File) MaxID() int {
	highest := 0
	for i := range f.Tasks {
		if f.Tasks[i].ID > highest {
			highest = f.Tasks[i].ID
		}
	}
	return highest
}

// GetTask returns a task by ID, or nil if not found.
func (f *File) GetTask(id int) *Task {
	if i := f.IndexOf(id); i >= 0 {
		return &f.Tasks[i]
	}
	return nil
}

// IndexOf returns the slice index of the task with id, or -1.
func (f *File) IndexOf(id int) int {
	for i := range f.Tasks {
		if f.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}
