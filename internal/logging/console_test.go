package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  log.Level
	}{
		{"debug", log.DebugLevel},
		{"info", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"warning", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"fatal", log.FatalLevel},
		{"bogus", log.InfoLevel},
		{"", log.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseLevel(tt.input); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFormatter(t *testing.T) {
	if ParseFormatter("json") != log.JSONFormatter {
		t.Error("json should map to the JSON formatter")
	}
	if ParseFormatter("logfmt") != log.LogfmtFormatter {
		t.Error("logfmt should map to the logfmt formatter")
	}
	if ParseFormatter("text") != log.TextFormatter {
		t.Error("text should map to the text formatter")
	}
	if ParseFormatter("") != log.TextFormatter {
		t.Error("empty should default to the text formatter")
	}
}

func TestTestConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewTestConsole(&buf)

	logger.Debug("debug line")
	logger.Info("info line")

	out := buf.String()
	if !strings.Contains(out, "debug line") {
		t.Error("test console should log at debug level")
	}
	if !strings.Contains(out, "info line") {
		t.Error("info line missing")
	}
}
