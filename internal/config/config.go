// Package config handles configuration loading and defaults.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Source represents where a configuration value came from.
type Source string

const (
	SourceDefault  Source = "default"
	SourceUserFile Source = "user file"
	SourceProjFile Source = "project file"
	SourceEnv      Source = "environment"
	SourceFlag     Source = "flag"
)

// Default values.
const (
	DefaultBackend         = "json"
	DefaultDataFileJSON    = "tasks.json"
	DefaultDataFileSQLite  = "tasks.db"
	DefaultLogDirName      = "logs"
	DefaultHomeDirName     = ".taskdeck"
	DefaultPriority        = "medium"
	DefaultColor           = "auto"
	DefaultConfigFileName  = "taskdeck.toml"
	projectConfigFileName  = "taskdeck.toml"
	projectConfigFileNameH = ".taskdeck.toml"
)

// Config holds the full configuration for taskdeck.
type Config struct {
	// Paths
	DataFile   string `toml:"data_file"`
	SchemaFile string `toml:"schema_file"`
	LogDir     string `toml:"log_dir"`

	// Storage
	Backend string `toml:"backend"`

	// Task defaults
	DefaultPriority string `toml:"default_priority"`

	// Output
	Color string `toml:"color"` // auto, always, never

	// Hooks
	HookCommand string `toml:"hook_command"`

	// Logging
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`

	// Computed
	HomeDir     string `toml:"-"`
	ProjectRoot string `toml:"-"`
}

// ConfigWithSources holds configuration along with source information for
// each field.
type ConfigWithSources struct {
	Config  *Config
	Sources map[string]Source
}

// configFields returns the list of configurable field names for source
// tracking.
func configFields() []string {
	return []string{
		"data_file",
		"schema_file",
		"log_dir",
		"backend",
		"default_priority",
		"color",
		"hook_command",
		"log_level",
		"log_format",
		"log_timestamps",
	}
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.Backend = DefaultBackend
	cfg.DefaultPriority = DefaultPriority
	cfg.Color = DefaultColor
	cfg.LogLevel = "info"
	cfg.LogFormat = "text"
	cfg.HomeDir = defaultHomeDir()
}

// defaultHomeDir returns the taskdeck home directory, honoring the
// TASKDECK_HOME override.
func defaultHomeDir() string {
	if v := os.Getenv("TASKDECK_HOME"); v != "" {
		return expandPath(v)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultHomeDirName
	}
	return filepath.Join(home, DefaultHomeDirName)
}

// findProjectConfigFile looks for a config file in the current directory.
func findProjectConfigFile() string {
	names := []string{projectConfigFileName, projectConfigFileNameH}
	for _, name := range names {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// findUserConfigFile looks for a user-level config file.
// Checks ~/.taskdeck/taskdeck.toml first, then falls back to OS-specific
// config directories.
func findUserConfigFile() string {
	home, err := os.UserHomeDir()
	if err == nil {
		userConfigPath := filepath.Join(home, DefaultHomeDirName, DefaultConfigFileName)
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	if cfgDir := osUserConfigDir(); cfgDir != "" {
		userConfigPath := filepath.Join(cfgDir, "taskdeck", DefaultConfigFileName)
		if _, err := os.Stat(userConfigPath); err == nil {
			return userConfigPath
		}
	}

	return ""
}

// osUserConfigDir returns the OS-specific user config directory.
// Returns empty string if the directory cannot be determined.
func osUserConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("APPDATA"); appdata != "" {
			return appdata
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, "Library", "Application Support")
		}
	case "linux", "openbsd", "freebsd", "netbsd":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return xdg
		}
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, ".config")
		}
	}
	return ""
}

// GetConfigFile returns the active config file path (project or user).
func (cws *ConfigWithSources) GetConfigFile() string {
	for _, source := range cws.Sources {
		if source == SourceProjFile {
			if p := findProjectConfigFile(); p != "" {
				return p
			}
		}
	}
	for _, source := range cws.Sources {
		if source == SourceUserFile {
			if p := findUserConfigFile(); p != "" {
				return p
			}
		}
	}
	return ""
}
