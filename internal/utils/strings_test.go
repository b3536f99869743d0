package utils

import (
	"reflect"
	"testing"
)

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name  string
		input string
		sep   string
		want  []string
	}{
		{"simple", "a,b,c", ",", []string{"a", "b", "c"}},
		{"whitespace", " a , b ,c ", ",", []string{"a", "b", "c"}},
		{"empty parts dropped", "a,,c", ",", []string{"a", "c"}},
		{"all empty", " , , ", ",", []string{}},
		{"single", "one", ",", []string{"one"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitAndTrim(tt.input, tt.sep); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitAndTrim(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestJSONPointerToPath(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"#", ""},
		{"#/tasks/0/title", "tasks[0].title"},
		{"/tasks/12/status", "tasks[12].status"},
		{"#/schema_version", "schema_version"},
		{"#/a~1b/c", "a/b.c"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := JSONPointerToPath(tt.input); got != tt.want {
				t.Errorf("JSONPointerToPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
