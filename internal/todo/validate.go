package todo

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/todolist/internal/utils"
)

//go:embed tasks.schema.json
var embeddedSchema string

// EmbeddedSchemaURL identifies the built-in schema.
const EmbeddedSchemaURL = "https://github.com/nibzard/todolist/tasks.schema.json"

// EmbeddedSchema returns the built-in JSON Schema for data files.
func EmbeddedSchema() string {
	return embeddedSchema
}

var (
	builtinOnce   sync.Once
	builtinSchema *jsonschema.Schema
	builtinErr    error
)

func compiledBuiltinSchema() (*jsonschema.Schema, error) {
	builtinOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true
		if err := compiler.AddResource(EmbeddedSchemaURL, strings.NewReader(embeddedSchema)); err != nil {
			builtinErr = fmt.Errorf("load embedded schema: %w", err)
			return
		}
		builtinSchema, builtinErr = compiler.Compile(EmbeddedSchemaURL)
	})
	return builtinSchema, builtinErr
}

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // Dotted path to the error location
	Err  error  // Underlying error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationOptions controls validation behavior.
type ValidationOptions struct {
	// SchemaPath is the path to an external JSON Schema file.
	// If empty, the embedded schema is used.
	SchemaPath string
	// SkipSchema disables JSON Schema validation; only syntax is checked.
	SkipSchema bool
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid      bool
	Errors     []error
	Warnings   []string
	SchemaUsed string // URL or path of the schema applied, empty if none
}

func newResult() *ValidationResult {
	return &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}
}

func (r *ValidationResult) fail(err error) {
	r.Valid = false
	r.Errors = append(r.Errors, err)
}

// ValidateDocument checks raw file content: JSON syntax first, then the
// JSON Schema.
func ValidateDocument(data []byte, opts ValidationOptions) *ValidationResult {
	result := newResult()

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		result.fail(&ValidationError{Err: fmt.Errorf("invalid JSON: %w", err)})
		return result
	}
	if dec.More() {
		result.fail(&ValidationError{Err: fmt.Errorf("invalid JSON: trailing data after document")})
		return result
	}
	if opts.SkipSchema {
		return result
	}

	schema, used := resolveSchema(opts.SchemaPath, result)
	if schema == nil {
		return result
	}
	result.SchemaUsed = used

	if err := schema.Validate(doc); err != nil {
		appendSchemaErrors(result, err)
	}
	return result
}

// resolveSchema compiles the external schema when configured and falls back
// to the embedded one, recording why in the result warnings.
func resolveSchema(schemaPath string, result *ValidationResult) (*jsonschema.Schema, string) {
	if schemaPath != "" {
		schema, err := compileSchemaFile(schemaPath)
		if err == nil {
			return schema, schemaPath
		}
		result.Warnings = append(result.Warnings, err.Error())
		result.Warnings = append(result.Warnings, "using embedded schema")
	}

	schema, err := compiledBuiltinSchema()
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
		return nil, ""
	}
	return schema, EmbeddedSchemaURL
}

func compileSchemaFile(schemaPath string) (*jsonschema.Schema, error) {
	absPath, err := filepath.Abs(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("invalid schema path: %v", err)
	}

	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("schema file not found: %s", absPath)
		}
		return nil, fmt.Errorf("failed to read schema file: %v", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	schema, err := compiler.Compile(absPath)
	if err != nil {
		return nil, fmt.Errorf("invalid schema file: %v", err)
	}
	return schema, nil
}

func appendSchemaErrors(result *ValidationResult, err error) {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		result.fail(err)
		return
	}
	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		result.fail(&ValidationError{
			Path: utils.JSONPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}

// Validate performs the structural checks that hold regardless of schema.
func (f *File) Validate() *ValidationResult {
	result := newResult()

	if f.SchemaVersion != SchemaVersion {
		result.fail(&ValidationError{
			Path: "schema_version",
			Err:  fmt.Errorf("expected %d, got %d", SchemaVersion, f.SchemaVersion),
		})
	}

	if f.Tasks == nil {
		result.fail(&ValidationError{
			Path: "tasks",
			Err:  fmt.Errorf("missing required field"),
		})
		return result
	}

	seen := make(map[int]int, len(f.Tasks))
	for i := range f.Tasks {
		path := fmt.Sprintf("tasks[%d]", i)
		task := &f.Tasks[i]
		if err := validateTask(task, path); err != nil {
			result.fail(err)
			continue
		}
		if first, dup := seen[task.ID]; dup {
			result.fail(&ValidationError{
				Path: path + ".id",
				Err:  fmt.Errorf("duplicate id %d (also at tasks[%d])", task.ID, first),
			})
			continue
		}
		seen[task.ID] = i
		if task.ID >= f.NextID {
			result.fail(&ValidationError{
				Path: "next_id",
				Err:  fmt.Errorf("must be greater than every task id, got %d for id %d", f.NextID, task.ID),
			})
		}
	}

	return result
}

// validateTask performs minimal task validation.
func validateTask(task *Task, path string) *ValidationError {
	if task.ID <= 0 {
		return &ValidationError{
			Path: path + ".id",
			Err:  fmt.Errorf("must be a positive integer, got %d", task.ID),
		}
	}

	if strings.TrimSpace(task.Description) == "" {
		return &ValidationError{
			Path: path + ".description",
			Err:  fmt.Errorf("missing required field"),
		}
	}

	if !task.Priority.Valid() {
		return &ValidationError{
			Path: path + ".priority",
			Err:  fmt.Errorf("%w %q", ErrInvalidPriority, task.Priority),
		}
	}

	if task.CreatedAt.IsZero() {
		return &ValidationError{
			Path: path + ".created_at",
			Err:  fmt.Errorf("missing required field"),
		}
	}

	return nil
}
