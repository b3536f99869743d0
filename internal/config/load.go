package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// LoadWithSources loads configuration from multiple sources in priority
// order, tracking the source of each value:
// 1. Defaults
// 2. User config file (~/.taskdeck/taskdeck.toml or OS-specific config dir)
// 3. Project config file (taskdeck.toml or .taskdeck.toml in current directory)
// 4. Environment variables
// 5. CLI flags
func LoadWithSources(fs *flag.FlagSet, args []string) (*ConfigWithSources, error) {
	sources := make(map[string]Source)
	cfg := &Config{}

	setDefaults(cfg)
	for _, field := range configFields() {
		sources[field] = SourceDefault
	}

	if userConfigFile := findUserConfigFile(); userConfigFile != "" {
		if err := loadConfigFile(cfg, userConfigFile, sources, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userConfigFile, err)
		}
	}

	if projectConfigFile := findProjectConfigFile(); projectConfigFile != "" {
		if err := loadConfigFile(cfg, projectConfigFile, sources, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projectConfigFile, err)
		}
	}

	loadFromEnv(cfg, sources)

	if err := parseFlags(cfg, fs, args, sources); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	if err := finalizeConfig(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}

	return &ConfigWithSources{Config: cfg, Sources: sources}, nil
}

// loadConfigFile loads TOML config from the given file and updates source
// tracking for the fields it sets.
func loadConfigFile(cfg *Config, path string, sources map[string]Source, source Source) error {
	var fileCfg Config
	meta, err := toml.DecodeFile(path, &fileCfg)
	if err != nil {
		return err
	}

	for _, key := range meta.Keys() {
		switch key.String() {
		case "data_file":
			setSource(&cfg.DataFile, fileCfg.DataFile, sources, "data_file", source)
		case "schema_file":
			setSource(&cfg.SchemaFile, fileCfg.SchemaFile, sources, "schema_file", source)
		case "log_dir":
			setSource(&cfg.LogDir, fileCfg.LogDir, sources, "log_dir", source)
		case "backend":
			setSource(&cfg.Backend, fileCfg.Backend, sources, "backend", source)
		case "default_priority":
			setSource(&cfg.DefaultPriority, fileCfg.DefaultPriority, sources, "default_priority", source)
		case "color":
			setSource(&cfg.Color, fileCfg.Color, sources, "color", source)
		case "hook_command":
			setSource(&cfg.HookCommand, fileCfg.HookCommand, sources, "hook_command", source)
		case "log_level":
			setSource(&cfg.LogLevel, fileCfg.LogLevel, sources, "log_level", source)
		case "log_format":
			setSource(&cfg.LogFormat, fileCfg.LogFormat, sources, "log_format", source)
		case "log_timestamps":
			setSource(&cfg.LogTimestamps, fileCfg.LogTimestamps, sources, "log_timestamps", source)
		}
	}

	return nil
}

// loadFromEnv overrides config from TASKDECK_* environment variables.
func loadFromEnv(cfg *Config, sources map[string]Source) {
	if v := os.Getenv("TASKDECK_DATA"); v != "" {
		setSource(&cfg.DataFile, v, sources, "data_file", SourceEnv)
	}
	if v := os.Getenv("TASKDECK_SCHEMA"); v != "" {
		setSource(&cfg.SchemaFile, v, sources, "schema_file", SourceEnv)
	}
	if v := os.Getenv("TASKDECK_LOG_DIR"); v != "" {
		setSource(&cfg.LogDir, v, sources, "log_dir", SourceEnv)
	}
	if v := os.Getenv("TASKDECK_BACKEND"); v != "" {
		setSource(&cfg.Backend, v, sources, "backend", SourceEnv)
	}
	if v := os.Getenv("TASKDECK_PRIORITY"); v != "" {
		setSource(&cfg.DefaultPriority, v, sources, "default_priority", SourceEnv)
	}
	if v := os.Getenv("TASKDECK_COLOR"); v != "" {
		setSource(&cfg.Color, v, sources, "color", SourceEnv)
	}
	if v := os.Getenv("TASKDECK_HOOK"); v != "" {
		setSource(&cfg.HookCommand, v, sources, "hook_command", SourceEnv)
	}
	if v := os.Getenv("TASKDECK_LOG_LEVEL"); v != "" {
		setSource(&cfg.LogLevel, v, sources, "log_level", SourceEnv)
	}
	if v := os.Getenv("TASKDECK_LOG_FORMAT"); v != "" {
		setSource(&cfg.LogFormat, v, sources, "log_format", SourceEnv)
	}
	if v := os.Getenv("TASKDECK_LOG_TIMESTAMPS"); v != "" {
		setSource(&cfg.LogTimestamps, boolFromString(v), sources, "log_timestamps", SourceEnv)
	}
}

// parseFlags defines and parses global CLI flags.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string, sources map[string]Source) error {
	if fs == nil {
		fs = flag.NewFlagSet("taskdeck", flag.ContinueOnError)
	}

	dataFile := fs.String("data", cfg.DataFile, "Path to task data file")
	schemaFile := fs.String("schema", cfg.SchemaFile, "Path to JSON Schema override")
	logDir := fs.String("log-dir", cfg.LogDir, "Changelog directory")
	backend := fs.String("backend", cfg.Backend, "Storage backend (json|sqlite)")
	colorMode := fs.String("color", cfg.Color, "Color output (auto|always|never)")
	hook := fs.String("hook", cfg.HookCommand, "Hook command to run after each mutation")
	logLevel := fs.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	logFormat := fs.String("log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	logTimestamps := fs.Bool("log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	flagToField := map[string]string{
		"data":           "data_file",
		"schema":         "schema_file",
		"log-dir":        "log_dir",
		"backend":        "backend",
		"color":          "color",
		"hook":           "hook_command",
		"log-level":      "log_level",
		"log-format":     "log_format",
		"log-timestamps": "log_timestamps",
	}

	fs.Visit(func(f *flag.Flag) {
		field, ok := flagToField[f.Name]
		if !ok {
			return
		}
		switch f.Name {
		case "data":
			setSource(&cfg.DataFile, *dataFile, sources, field, SourceFlag)
		case "schema":
			setSource(&cfg.SchemaFile, *schemaFile, sources, field, SourceFlag)
		case "log-dir":
			setSource(&cfg.LogDir, *logDir, sources, field, SourceFlag)
		case "backend":
			setSource(&cfg.Backend, *backend, sources, field, SourceFlag)
		case "color":
			setSource(&cfg.Color, *colorMode, sources, field, SourceFlag)
		case "hook":
			setSource(&cfg.HookCommand, *hook, sources, field, SourceFlag)
		case "log-level":
			setSource(&cfg.LogLevel, *logLevel, sources, field, SourceFlag)
		case "log-format":
			setSource(&cfg.LogFormat, *logFormat, sources, field, SourceFlag)
		case "log-timestamps":
			setSource(&cfg.LogTimestamps, *logTimestamps, sources, field, SourceFlag)
		}
	})

	return nil
}

// finalizeConfig computes derived values and resolves paths.
func finalizeConfig(cfg *Config) error {
	if cfg.ProjectRoot == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		cfg.ProjectRoot = wd
	}

	cfg.HomeDir = expandPath(cfg.HomeDir)

	if cfg.DataFile == "" {
		switch cfg.Backend {
		case "sqlite":
			cfg.DataFile = filepath.Join(cfg.HomeDir, DefaultDataFileSQLite)
		default:
			cfg.DataFile = filepath.Join(cfg.HomeDir, DefaultDataFileJSON)
		}
	} else {
		cfg.DataFile = expandPath(cfg.DataFile)
		if !filepath.IsAbs(cfg.DataFile) {
			cfg.DataFile = filepath.Join(cfg.ProjectRoot, cfg.DataFile)
		}
	}

	if cfg.LogDir == "" {
		cfg.LogDir = filepath.Join(cfg.HomeDir, DefaultLogDirName)
	} else {
		cfg.LogDir = expandPath(cfg.LogDir)
		if !filepath.IsAbs(cfg.LogDir) {
			cfg.LogDir = filepath.Join(cfg.ProjectRoot, cfg.LogDir)
		}
	}

	if cfg.SchemaFile != "" {
		cfg.SchemaFile = expandPath(cfg.SchemaFile)
		if !filepath.IsAbs(cfg.SchemaFile) {
			cfg.SchemaFile = filepath.Join(cfg.ProjectRoot, cfg.SchemaFile)
		}
	}

	return nil
}

// setSource assigns a value and records where it came from.
func setSource[T any](field *T, value T, sources map[string]Source, name string, source Source) {
	*field = value
	if sources != nil {
		sources[name] = source
	}
}

// boolFromString parses a boolean from a string.
func boolFromString(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}
