package cmd

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"sort"

	"github.com/taskdeck/taskdeck/internal/store"
	"github.com/taskdeck/taskdeck/internal/task"
)

// doctorCommand checks config, data file, schema, and hook validity.
func (a *app) doctorCommand(args []string) error {
	fs := flag.NewFlagSet("taskdeck doctor", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	cfg := a.cfg

	fmt.Println("Taskdeck Doctor")
	fmt.Println("===============")
	fmt.Println()

	allOK := true

	// Check config values
	fmt.Println("Config:")
	if configFile := a.sources.GetConfigFile(); configFile != "" {
		fmt.Printf("  ✅ Config file: %s\n", configFile)
	} else {
		fmt.Println("  ✅ Config file: (none, using defaults)")
	}
	switch cfg.Backend {
	case store.BackendJSON, store.BackendSQLite:
		fmt.Printf("  ✅ Backend: %s\n", cfg.Backend)
	default:
		fmt.Printf("  ❌ Backend: %s (expected json|sqlite)\n", cfg.Backend)
		allOK = false
	}
	if _, err := task.ParsePriority(cfg.DefaultPriority); err == nil {
		fmt.Printf("  ✅ Default priority: %s\n", cfg.DefaultPriority)
	} else {
		fmt.Printf("  ❌ Default priority: %s (expected low|medium|high)\n", cfg.DefaultPriority)
		allOK = false
	}
	switch cfg.Color {
	case "auto", "always", "never":
		fmt.Printf("  ✅ Color: %s\n", cfg.Color)
	default:
		fmt.Printf("  ❌ Color: %s (expected auto|always|never)\n", cfg.Color)
		allOK = false
	}
	fmt.Println()

	// Check data file
	fmt.Printf("Data file: %s\n", cfg.DataFile)
	info, err := os.Stat(cfg.DataFile)
	switch {
	case err != nil && os.IsNotExist(err):
		fmt.Println("  ⚠️  Not found (will be created on first write)")
	case err != nil:
		fmt.Printf("  ❌ Error: %v\n", err)
		allOK = false
	case info.IsDir():
		fmt.Println("  ❌ Error: path is a directory")
		allOK = false
	default:
		fmt.Println("  ✅ OK")
		if !a.checkDataFile(*verbose) {
			allOK = false
		}
	}
	fmt.Println()

	// Check schema file override
	if cfg.SchemaFile != "" {
		fmt.Printf("Schema file: %s\n", cfg.SchemaFile)
		if info, err := os.Stat(cfg.SchemaFile); err != nil {
			fmt.Printf("  ❌ Error: %v\n", err)
			allOK = false
		} else if info.IsDir() {
			fmt.Println("  ❌ Error: path is a directory")
			allOK = false
		} else {
			fmt.Println("  ✅ OK")
		}
		fmt.Println()
	}

	// Check log directory
	fmt.Printf("Log directory: %s\n", cfg.LogDir)
	if _, err := os.Stat(cfg.LogDir); err != nil {
		if os.IsNotExist(err) {
			fmt.Println("  ⚠️  Not found (will be created on first mutation)")
		} else {
			fmt.Printf("  ❌ Error: %v\n", err)
			allOK = false
		}
	} else {
		fmt.Println("  ✅ OK")
	}
	fmt.Println()

	// Check hook command
	if cfg.HookCommand != "" {
		fmt.Printf("Hook command: %s\n", cfg.HookCommand)
		if !checkBinary(cfg.HookCommand) {
			allOK = false
		}
		fmt.Println()
	}

	if allOK {
		fmt.Println("✅ All checks passed!")
		return nil
	}
	fmt.Println("⚠️  Some checks failed. Taskdeck may not function correctly.")
	return fmt.Errorf("doctor checks failed")
}

// checkDataFile loads and validates the data file, printing results.
func (a *app) checkDataFile(verbose bool) bool {
	st, err := a.openStore()
	if err != nil {
		fmt.Printf("  ❌ Open error: %v\n", err)
		return false
	}
	defer st.Close()

	l, err := st.Load()
	if err != nil {
		fmt.Printf("  ❌ Load error: %v\n", err)
		return false
	}

	result := l.Validate(task.ValidationOptions{SchemaPath: a.cfg.SchemaFile})
	for _, w := range result.Warnings {
		fmt.Printf("  ⚠️  %s\n", w)
	}
	ok := true
	if result.Valid {
		fmt.Println("  ✅ Valid")
	} else {
		fmt.Println("  ❌ Validation failed:")
		for _, e := range result.Errors {
			fmt.Printf("     - %v\n", e)
		}
		ok = false
	}
	if verbose {
		fmt.Printf("  Tasks: %d\n", len(l.Tasks))
		for _, t := range l.Tasks {
			fmt.Printf("    - [%s] %s: %s\n", t.Status, t.ID, t.Title)
		}
	}
	return ok
}

// checkBinary reports whether the hook command resolves to an executable.
func checkBinary(binary string) bool {
	if info, err := os.Stat(binary); err == nil {
		if info.IsDir() {
			fmt.Println("  ❌ Path is a directory")
			return false
		}
		if info.Mode().Perm()&0111 == 0 {
			fmt.Println("  ❌ Not executable")
			return false
		}
		fmt.Println("  ✅ OK")
		return true
	}

	resolved, err := exec.LookPath(binary)
	if err != nil {
		fmt.Printf("  ❌ Not found: %v\n", err)
		return false
	}
	fmt.Printf("  ✅ OK (found in PATH: %s)\n", resolved)
	return true
}

// configCommand prints the resolved configuration with value sources.
func (a *app) configCommand(args []string) error {
	fs := flag.NewFlagSet("taskdeck config", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	cfg := a.cfg
	values := map[string]string{
		"data_file":        cfg.DataFile,
		"schema_file":      cfg.SchemaFile,
		"log_dir":          cfg.LogDir,
		"backend":          cfg.Backend,
		"default_priority": cfg.DefaultPriority,
		"color":            cfg.Color,
		"hook_command":     cfg.HookCommand,
		"log_level":        cfg.LogLevel,
		"log_format":       cfg.LogFormat,
		"log_timestamps":   fmt.Sprintf("%t", cfg.LogTimestamps),
	}

	fields := make([]string, 0, len(values))
	for field := range values {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	width := 0
	for _, field := range fields {
		if len(field) > width {
			width = len(field)
		}
	}

	for _, field := range fields {
		source := a.sources.Sources[field]
		value := values[field]
		if value == "" {
			value = "(unset)"
		}
		fmt.Printf("%-*s  %s  (%s)\n", width, field, value, source)
	}

	fmt.Println()
	fmt.Printf("%-*s  %s\n", width, "home_dir", cfg.HomeDir)
	if configFile := a.sources.GetConfigFile(); configFile != "" {
		fmt.Printf("%-*s  %s\n", width, "config_file", configFile)
	}
	return nil
}
