package task

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validList() *List {
	now := time.Now().UTC()
	return &List{
		SchemaVersion: 1,
		Tasks: []Task{
			{ID: "T001", Title: "one", Status: StatusActive, Priority: PriorityMedium, CreatedAt: &now, UpdatedAt: &now, Order: 0},
			{ID: "T002", Title: "two", Status: StatusCompleted, Priority: PriorityHigh, CompletedAt: &now, Order: 1},
		},
	}
}

func TestValidateOK(t *testing.T) {
	result := validList().Validate(ValidationOptions{})
	if !result.Valid {
		t.Fatalf("Validate() = invalid, errors: %v", result.Errors)
	}
	if !result.UsedSchema {
		t.Error("embedded schema was not used")
	}
}

func TestValidateSchemaErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*List)
		substr string
	}{
		{"bad schema version", func(l *List) { l.SchemaVersion = 2 }, "schema_version"},
		{"bad status", func(l *List) { l.Tasks[0].Status = "done" }, "status"},
		{"bad priority", func(l *List) { l.Tasks[0].Priority = "urgent" }, "priority"},
		{"missing title", func(l *List) { l.Tasks[0].Title = "" }, "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := validList()
			tt.mutate(l)
			result := l.Validate(ValidationOptions{})
			if result.Valid {
				t.Fatal("Validate() = valid, want invalid")
			}
			found := false
			for _, err := range result.Errors {
				if strings.Contains(err.Error(), tt.substr) {
					found = true
				}
			}
			if !found {
				t.Errorf("no error mentioning %q in %v", tt.substr, result.Errors)
			}
		})
	}
}

func TestValidateDuplicateIDs(t *testing.T) {
	l := validList()
	l.Tasks[1].ID = "T001"

	result := l.Validate(ValidationOptions{})
	if result.Valid {
		t.Fatal("duplicate IDs should fail validation")
	}
	found := false
	for _, err := range result.Errors {
		if strings.Contains(err.Error(), "duplicate id") {
			found = true
		}
	}
	if !found {
		t.Errorf("no duplicate id error in %v", result.Errors)
	}
}

func TestValidateCompletedWithoutTimestampWarns(t *testing.T) {
	l := validList()
	l.Tasks[1].CompletedAt = nil

	result := l.Validate(ValidationOptions{})
	if !result.Valid {
		t.Fatalf("Validate() = invalid, errors: %v", result.Errors)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "completed without completed_at") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected warning, got %v", result.Warnings)
	}
}

func TestValidateSchemaOverride(t *testing.T) {
	// A stricter override schema that caps the task count at one.
	override := `{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type": "object",
		"properties": {
			"tasks": {"type": "array", "maxItems": 1}
		}
	}`
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.json")
	if err := os.WriteFile(path, []byte(override), 0644); err != nil {
		t.Fatal(err)
	}

	result := validList().Validate(ValidationOptions{SchemaPath: path})
	if result.Valid {
		t.Fatal("override schema should have rejected two tasks")
	}
}

func TestValidateMissingOverrideFallsBack(t *testing.T) {
	result := validList().Validate(ValidationOptions{SchemaPath: "/nonexistent/schema.json"})
	if !result.Valid {
		t.Fatalf("Validate() = invalid, errors: %v", result.Errors)
	}
	if !result.UsedSchema {
		t.Error("should fall back to the embedded schema")
	}
	if len(result.Warnings) == 0 {
		t.Error("missing override should produce a warning")
	}
}
