package todo

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func sampleFile() *File {
	created := time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)
	due := NewDate(2026, time.October, 20)
	f := NewFile()
	f.Tasks = []Task{
		{ID: 1, Description: "Buy milk", Category: "Personal", Priority: PriorityLow, CreatedAt: created, DueDate: &due},
		{ID: 2, Description: "Finish report", Category: "Work", Priority: PriorityHigh, Completed: true, CreatedAt: created.Add(time.Minute)},
	}
	f.NextID = 3
	return f
}

func TestLoadAndSave(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "tasks.json")

	original := sampleFile()
	if err := original.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path, ValidationOptions{})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.NextID != 3 {
		t.Errorf("NextID: got %d, want 3", loaded.NextID)
	}
	if len(loaded.Tasks) != 2 {
		t.Fatalf("Tasks count: got %d, want 2", len(loaded.Tasks))
	}
	got := loaded.Tasks[0]
	want := original.Tasks[0]
	if got.ID != want.ID || got.Description != want.Description || got.Category != want.Category ||
		got.Priority != want.Priority || got.Completed != want.Completed || !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("task mismatch: got %+v, want %+v", got, want)
	}
	if got.DueDate == nil || got.DueDate.String() != "2026-10-20" {
		t.Errorf("DueDate: got %v", got.DueDate)
	}
	if loaded.Tasks[1].DueDate != nil {
		t.Errorf("second task should have no due date, got %v", loaded.Tasks[1].DueDate)
	}
}

func TestSaveFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	if err := sampleFile().Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.HasSuffix(content, "}\n") {
		t.Error("file should end with a trailing newline")
	}
	if !strings.Contains(content, "\n  \"tasks\": [") {
		t.Error("file should use 2-space indentation")
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"), ValidationOptions{})
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load of missing file: got %v, want fs.ErrNotExist", err)
	}
}

func TestWriteFileAtomicFailure(t *testing.T) {
	tmpDir := t.TempDir()
	blocker := filepath.Join(tmpDir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	err := WriteFileAtomic(filepath.Join(blocker, "tasks.json"), []byte("{}"), 0644)
	if err == nil {
		t.Fatal("expected error writing below a regular file")
	}
}

func TestDecodeNormalizesNextID(t *testing.T) {
	f, err := Decode([]byte(`{"tasks":[
		{"id":4,"description":"a","category":"","priority":"low","completed":false,"created_at":"2026-10-18T09:00:00Z"}
	]}`), ValidationOptions{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if f.NextID != 5 {
		t.Errorf("NextID: got %d, want 5", f.NextID)
	}
	if f.SchemaVersion != SchemaVersion {
		t.Errorf("SchemaVersion: got %d", f.SchemaVersion)
	}
}

func TestDecodeRejects(t *testing.T) {
	task := func(body string) string {
		return `{"schema_version":1,"next_id":9,"tasks":[` + body + `]}`
	}
	tests := []struct {
		name     string
		content  string
		wantPath string
	}{
		{"malformed json", `{"tasks": [`, ""},
		{"trailing data", `{"tasks": []} {}`, ""},
		{"not an object", `[1,2,3]`, ""},
		{"unknown priority", task(`{"id":1,"description":"a","category":"","priority":"urgent","completed":false,"created_at":"2026-10-18T09:00:00Z"}`), "tasks[0].priority"},
		{"empty description", task(`{"id":1,"description":"","category":"","priority":"low","completed":false,"created_at":"2026-10-18T09:00:00Z"}`), "tasks[0].description"},
		{"bad due date", task(`{"id":1,"description":"a","category":"","priority":"low","completed":false,"created_at":"2026-10-18T09:00:00Z","due_date":"tomorrow"}`), "tasks[0].due_date"},
		{"missing id", task(`{"description":"a","category":"","priority":"low","completed":false,"created_at":"2026-10-18T09:00:00Z"}`), "tasks[0]"},
		{"wrong version", `{"schema_version":2,"tasks":[]}`, "schema_version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.content), ValidationOptions{})
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantPath != "" && !strings.Contains(err.Error(), tt.wantPath) {
				t.Errorf("error should mention %q: %v", tt.wantPath, err)
			}
		})
	}
}

func TestDecodeDuplicateIDs(t *testing.T) {
	content := `{"tasks":[
		{"id":1,"description":"a","category":"","priority":"low","completed":false,"created_at":"2026-10-18T09:00:00Z"},
		{"id":1,"description":"b","category":"","priority":"low","completed":false,"created_at":"2026-10-18T09:00:00Z"}
	]}`
	_, err := Decode([]byte(content), ValidationOptions{})
	if err == nil || !strings.Contains(err.Error(), "duplicate id 1") {
		t.Errorf("expected duplicate id error, got %v", err)
	}
}

func TestValidateMinimal(t *testing.T) {
	created := time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		file    *File
		wantErr bool
	}{
		{
			name: "valid file",
			file: &File{SchemaVersion: 1, NextID: 2, Tasks: []Task{
				{ID: 1, Description: "Test", Priority: PriorityLow, CreatedAt: created},
			}},
		},
		{
			name:    "missing tasks",
			file:    &File{SchemaVersion: 1, NextID: 1},
			wantErr: true,
		},
		{
			name: "zero id",
			file: &File{SchemaVersion: 1, NextID: 2, Tasks: []Task{
				{Description: "Test", Priority: PriorityLow, CreatedAt: created},
			}},
			wantErr: true,
		},
		{
			name: "blank description",
			file: &File{SchemaVersion: 1, NextID: 2, Tasks: []Task{
				{ID: 1, Description: "   ", Priority: PriorityLow, CreatedAt: created},
			}},
			wantErr: true,
		},
		{
			name: "invalid priority",
			file: &File{SchemaVersion: 1, NextID: 2, Tasks: []Task{
				{ID: 1, Description: "Test", Priority: "urgent", CreatedAt: created},
			}},
			wantErr: true,
		},
		{
			name: "missing created_at",
			file: &File{SchemaVersion: 1, NextID: 2, Tasks: []Task{
				{ID: 1, Description: "Test", Priority: PriorityLow},
			}},
			wantErr: true,
		},
		{
			name: "next_id not ahead",
			file: &File{SchemaVersion: 1, NextID: 1, Tasks: []Task{
				{ID: 1, Description: "Test", Priority: PriorityLow, CreatedAt: created},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.file.Validate()
			if result.Valid == tt.wantErr {
				t.Errorf("Validate() valid = %v, want error %v (errors: %v)", result.Valid, tt.wantErr, result.Errors)
			}
		})
	}
}

func TestValidateDocumentExternalSchema(t *testing.T) {
	tmpDir := t.TempDir()
	schemaPath := filepath.Join(tmpDir, "strict.schema.json")
	schema := `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {"tasks": {"type": "array", "maxItems": 0}}
}`
	if err := os.WriteFile(schemaPath, []byte(schema), 0644); err != nil {
		t.Fatal(err)
	}

	data, err := sampleFile().Encode()
	if err != nil {
		t.Fatal(err)
	}

	result := ValidateDocument(data, ValidationOptions{SchemaPath: schemaPath})
	if result.Valid {
		t.Error("external schema should reject a non-empty task list")
	}
	if result.SchemaUsed != schemaPath {
		t.Errorf("SchemaUsed: got %q, want %q", result.SchemaUsed, schemaPath)
	}
}

func TestValidateDocumentMissingSchemaFallsBack(t *testing.T) {
	data, err := sampleFile().Encode()
	if err != nil {
		t.Fatal(err)
	}

	result := ValidateDocument(data, ValidationOptions{SchemaPath: filepath.Join(t.TempDir(), "nope.json")})
	if !result.Valid {
		t.Errorf("expected valid with embedded schema, got %v", result.Errors)
	}
	if result.SchemaUsed != EmbeddedSchemaURL {
		t.Errorf("SchemaUsed: got %q, want embedded", result.SchemaUsed)
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a warning about the missing schema file")
	}
}

func TestValidateDocumentSkipSchema(t *testing.T) {
	result := ValidateDocument([]byte(`{"anything": true}`), ValidationOptions{SkipSchema: true})
	if !result.Valid {
		t.Errorf("SkipSchema should only check syntax, got %v", result.Errors)
	}
	if result.SchemaUsed != "" {
		t.Errorf("SchemaUsed: got %q, want empty", result.SchemaUsed)
	}
}

func TestGetTask(t *testing.T) {
	f := sampleFile()
	if task := f.GetTask(2); task == nil || task.Description != "Finish report" {
		t.Errorf("GetTask(2): got %+v", task)
	}
	if task := f.GetTask(99); task != nil {
		t.Errorf("GetTask(99): got %+v, want nil", task)
	}
	if f.MaxID() != 2 {
		t.Errorf("MaxID: got %d, want 2", f.MaxID())
	}
}
