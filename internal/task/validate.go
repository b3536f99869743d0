package task

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/taskdeck/taskdeck/internal/utils"
)

//go:embed schema.json
var defaultSchema string

// ValidationError represents a validation error with context.
type ValidationError struct {
	Path string // JSON path to the error location
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
	// SchemaPath overrides the embedded JSON Schema.
	// If the file is missing or broken, validation falls back to the
	// embedded schema and records a warning.
	SchemaPath string
}

// ValidationResult contains validation results.
type ValidationResult struct {
	Valid      bool
	Errors     []error
	Warnings   []string
	UsedSchema bool // true if JSON Schema validation was performed
}

// Validate validates the list against the JSON Schema (an override file when
// configured, otherwise the embedded default) and then applies structural
// checks the schema cannot express, such as duplicate ID detection.
func (l *List) Validate(opts ValidationOptions) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   make([]error, 0),
		Warnings: make([]string, 0),
	}

	schema := l.compileSchema(opts, result)
	if schema != nil {
		l.validateWithSchema(schema, result)
	} else {
		result.Warnings = append(result.Warnings, "JSON Schema validation not available, using minimal checks")
		l.validateMinimal(result)
	}

	l.validateStructure(result)
	return result
}

// compileSchema compiles the override schema if configured, falling back to
// the embedded one. Returns nil only if both fail.
func (l *List) compileSchema(opts ValidationOptions, result *ValidationResult) *jsonschema.Schema {
	if opts.SchemaPath != "" {
		schema, err := compileSchemaFile(opts.SchemaPath)
		if err == nil {
			return schema
		}
		result.Warnings = append(result.Warnings, err.Error())
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	if err := compiler.AddResource("taskdeck.schema.json", strings.NewReader(defaultSchema)); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("embedded schema unavailable: %v", err))
		return nil
	}
	schema, err := compiler.Compile("taskdeck.schema.json")
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("embedded schema unavailable: %v", err))
		return nil
	}
	return schema
}

func compileSchemaFile(path string) (*jsonschema.Schema, error) {
	absPath, err := filepath.Abs(path)
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

// validateWithSchema marshals the list back to JSON and checks it against
// the compiled schema.
func (l *List) validateWithSchema(schema *jsonschema.Schema, result *ValidationResult) {
	result.UsedSchema = true

	data, err := json.Marshal(l)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Err: fmt.Errorf("failed to marshal list for validation: %w", err),
		})
		return
	}

	var obj interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Err: fmt.Errorf("failed to unmarshal list for validation: %w", err),
		})
		return
	}

	if err := schema.Validate(obj); err != nil {
		result.Valid = false
		appendSchemaErrors(result, err)
	}
}

// validateMinimal performs minimal validation without JSON Schema.
func (l *List) validateMinimal(result *ValidationResult) {
	if l.SchemaVersion != 1 {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Path: "schema_version",
			Err:  fmt.Errorf("expected 1, got %d", l.SchemaVersion),
		})
	}

	if l.Tasks == nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Path: "tasks",
			Err:  fmt.Errorf("missing required field"),
		})
		return
	}

	for i := range l.Tasks {
		path := fmt.Sprintf("tasks[%d]", i)
		if err := validateTaskMinimal(&l.Tasks[i], path); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, err)
		}
	}
}

func validateTaskMinimal(t *Task, path string) *ValidationError {
	if t.ID == "" {
		return &ValidationError{
			Path: path + ".id",
			Err:  fmt.Errorf("missing required field"),
		}
	}

	if t.Title == "" {
		return &ValidationError{
			Path: path + ".title",
			Err:  fmt.Errorf("missing required field"),
		}
	}

	switch t.Status {
	case StatusActive, StatusCompleted:
	default:
		return &ValidationError{
			Path: path + ".status",
			Err:  fmt.Errorf("invalid status %q, must be one of: active, completed", t.Status),
		}
	}

	switch t.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		return &ValidationError{
			Path: path + ".priority",
			Err:  fmt.Errorf("invalid priority %q, must be one of: low, medium, high", t.Priority),
		}
	}

	if t.Order < 0 {
		return &ValidationError{
			Path: path + ".order",
			Err:  fmt.Errorf("must be non-negative, got %d", t.Order),
		}
	}

	return nil
}

// validateStructure applies checks that hold regardless of the schema.
func (l *List) validateStructure(result *ValidationResult) {
	seen := make(map[string]int, len(l.Tasks))
	for i := range l.Tasks {
		id := l.Tasks[i].ID
		if id == "" {
			continue
		}
		if first, dup := seen[id]; dup {
			result.Valid = false
			result.Errors = append(result.Errors, &ValidationError{
				Path: fmt.Sprintf("tasks[%d].id", i),
				Err:  fmt.Errorf("duplicate id %q (first seen at tasks[%d])", id, first),
			})
			continue
		}
		seen[id] = i
	}

	for i := range l.Tasks {
		t := &l.Tasks[i]
		if t.Status == StatusCompleted && t.CompletedAt == nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("tasks[%d] (%s): completed without completed_at", i, t.ID))
		}
	}
}

func appendSchemaErrors(result *ValidationResult, err error) {
	if err == nil {
		return
	}

	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		result.Errors = append(result.Errors, err)
		return
	}

	collectSchemaErrors(result, ve)
}

func collectSchemaErrors(result *ValidationResult, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		result.Errors = append(result.Errors, &ValidationError{
			Path: utils.JSONPointerToPath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(result, cause)
	}
}
