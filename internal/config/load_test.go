package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

// isolate points HOME and TASKDECK_HOME at temp dirs and moves the working
// directory away from any real project config.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TASKDECK_HOME", filepath.Join(home, ".taskdeck"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd() error = %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("Chdir() error = %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return filepath.Join(home, ".taskdeck")
}

func newFlagSet() *flag.FlagSet {
	return flag.NewFlagSet("test", flag.ContinueOnError)
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cws, err := LoadWithSources(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("LoadWithSources() error = %v", err)
	}
	cfg := cws.Config

	if cfg.Backend != DefaultBackend {
		t.Errorf("Backend = %q, want %q", cfg.Backend, DefaultBackend)
	}
	if cfg.DefaultPriority != DefaultPriority {
		t.Errorf("DefaultPriority = %q, want %q", cfg.DefaultPriority, DefaultPriority)
	}
	if cfg.Color != DefaultColor {
		t.Errorf("Color = %q, want %q", cfg.Color, DefaultColor)
	}
	if want := filepath.Join(home, DefaultDataFileJSON); cfg.DataFile != want {
		t.Errorf("DataFile = %q, want %q", cfg.DataFile, want)
	}
	if want := filepath.Join(home, DefaultLogDirName); cfg.LogDir != want {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, want)
	}
	if cws.Sources["backend"] != SourceDefault {
		t.Errorf("backend source = %q, want default", cws.Sources["backend"])
	}
}

func TestLoadSQLiteBackendDefaultDataFile(t *testing.T) {
	home := isolate(t)
	t.Setenv("TASKDECK_BACKEND", "sqlite")

	cws, err := LoadWithSources(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("LoadWithSources() error = %v", err)
	}
	cfg := cws.Config
	if want := filepath.Join(home, DefaultDataFileSQLite); cfg.DataFile != want {
		t.Errorf("DataFile = %q, want %q", cfg.DataFile, want)
	}
}

func TestLoadFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TASKDECK_PRIORITY", "high")
	t.Setenv("TASKDECK_COLOR", "never")
	t.Setenv("TASKDECK_LOG_TIMESTAMPS", "true")

	cws, err := LoadWithSources(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("LoadWithSources() error = %v", err)
	}
	cfg := cws.Config

	if cfg.DefaultPriority != "high" {
		t.Errorf("DefaultPriority = %q, want high", cfg.DefaultPriority)
	}
	if cfg.Color != "never" {
		t.Errorf("Color = %q, want never", cfg.Color)
	}
	if !cfg.LogTimestamps {
		t.Error("LogTimestamps = false, want true")
	}
	if cws.Sources["default_priority"] != SourceEnv {
		t.Errorf("default_priority source = %q, want environment", cws.Sources["default_priority"])
	}
}

func TestFlagsBeatEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TASKDECK_PRIORITY", "high")

	cws, err := LoadWithSources(newFlagSet(), []string{"-color", "always", "-priority-ignored"})
	if err == nil {
		// -priority-ignored is not a defined flag, parsing must fail.
		t.Fatal("expected flag parse error")
	}

	cws, err = LoadWithSources(newFlagSet(), []string{"-color", "always"})
	if err != nil {
		t.Fatalf("LoadWithSources() error = %v", err)
	}
	if cws.Config.Color != "always" {
		t.Errorf("Color = %q, want always", cws.Config.Color)
	}
	if cws.Sources["color"] != SourceFlag {
		t.Errorf("color source = %q, want flag", cws.Sources["color"])
	}
	// Env value untouched by the flag.
	if cws.Config.DefaultPriority != "high" {
		t.Errorf("DefaultPriority = %q, want high", cws.Config.DefaultPriority)
	}
}

func TestProjectConfigFile(t *testing.T) {
	isolate(t)

	content := "default_priority = \"low\"\nbackend = \"sqlite\"\n"
	if err := os.WriteFile("taskdeck.toml", []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cws, err := LoadWithSources(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("LoadWithSources() error = %v", err)
	}

	if cws.Config.DefaultPriority != "low" {
		t.Errorf("DefaultPriority = %q, want low", cws.Config.DefaultPriority)
	}
	if cws.Config.Backend != "sqlite" {
		t.Errorf("Backend = %q, want sqlite", cws.Config.Backend)
	}
	if cws.Sources["default_priority"] != SourceProjFile {
		t.Errorf("default_priority source = %q, want project file", cws.Sources["default_priority"])
	}
	// Untouched fields keep their default source.
	if cws.Sources["color"] != SourceDefault {
		t.Errorf("color source = %q, want default", cws.Sources["color"])
	}
}

func TestRelativeDataFileResolvedAgainstCwd(t *testing.T) {
	isolate(t)
	t.Setenv("TASKDECK_DATA", "local/tasks.json")

	cws, err := LoadWithSources(newFlagSet(), nil)
	if err != nil {
		t.Fatalf("LoadWithSources() error = %v", err)
	}
	cfg := cws.Config
	wd, _ := os.Getwd()
	if want := filepath.Join(wd, "local", "tasks.json"); cfg.DataFile != want {
		t.Errorf("DataFile = %q, want %q", cfg.DataFile, want)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"~", home},
		{"~/tasks", filepath.Join(home, "tasks")},
		{"/abs/path", "/abs/path"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := expandPath(tt.input); got != tt.want {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestBoolFromString(t *testing.T) {
	trues := []string{"1", "true", "TRUE", "yes", "on", " true "}
	falses := []string{"0", "false", "no", "off", "", "bogus"}

	for _, s := range trues {
		if !boolFromString(s) {
			t.Errorf("boolFromString(%q) = false, want true", s)
		}
	}
	for _, s := range falses {
		if boolFromString(s) {
			t.Errorf("boolFromString(%q) = true, want false", s)
		}
	}
}
