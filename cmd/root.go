// Package cmd implements the CLI command structure for taskdeck.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/logging"
	"github.com/taskdeck/taskdeck/internal/store"
	"github.com/taskdeck/taskdeck/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the taskdeck CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("taskdeck", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	a := &app{
		cfg:     cfg,
		sources: cws,
		logger:  logging.NewConsoleFromConfig(cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps),
	}
	setupColor(cfg.Color)

	// Determine the subcommand
	// If no args or first arg is a flag, use "list" as default
	subcommand := "list"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 {
		if !strings.HasPrefix(remainingArgs[0], "-") {
			subcommand = remainingArgs[0]
			remainingArgs = remainingArgs[1:]
		}
	}

	// Execute the subcommand
	switch subcommand {
	case "list", "ls":
		return a.listCommand(remainingArgs)
	case "add":
		return a.addCommand(ctx, remainingArgs)
	case "show":
		return a.showCommand(remainingArgs)
	case "edit":
		return a.editCommand(ctx, remainingArgs)
	case "done":
		return a.doneCommand(ctx, remainingArgs)
	case "undone":
		return a.undoneCommand(ctx, remainingArgs)
	case "rm":
		return a.rmCommand(ctx, remainingArgs)
	case "mv":
		return a.mvCommand(ctx, remainingArgs)
	case "import":
		return a.importCommand(ctx, remainingArgs)
	case "export":
		return a.exportCommand(remainingArgs)
	case "validate":
		return a.validateCommand(remainingArgs)
	case "log":
		return a.logCommand(remainingArgs)
	case "tui":
		return a.tuiCommand(ctx, remainingArgs)
	case "doctor":
		return a.doctorCommand(remainingArgs)
	case "config":
		return a.configCommand(remainingArgs)
	case "version", "--version", "-v":
		return versionCommand()
	case "help", "--help", "-h":
		printUsage(fs, os.Stdout)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// tuiCommand launches the task browser.
func (a *app) tuiCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskdeck tui", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	return ui.RunTUI(ctx, a.cfg, st)
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Printf("taskdeck version %s\n", Version)
	return nil
}

// openStore opens the configured storage backend.
func (a *app) openStore() (store.Store, error) {
	st, err := store.Open(a.cfg.Backend, a.cfg.DataFile)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	return st, nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Taskdeck - A single-user task manager")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  taskdeck [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  list, ls      List tasks (default command)")
	fmt.Fprintln(w, "  add <title>   Add a task")
	fmt.Fprintln(w, "  show <id>     Show one task in detail")
	fmt.Fprintln(w, "  edit <id>     Edit task fields")
	fmt.Fprintln(w, "  done <id>     Mark a task completed")
	fmt.Fprintln(w, "  undone <id>   Reopen a completed task")
	fmt.Fprintln(w, "  rm <id>       Delete a task")
	fmt.Fprintln(w, "  mv <id> <pos> Move a task to a position (1-based)")
	fmt.Fprintln(w, "  import <file> Import tasks (json|yaml|csv)")
	fmt.Fprintln(w, "  export [file] Export tasks (json|yaml|csv)")
	fmt.Fprintln(w, "  validate      Validate the task file")
	fmt.Fprintln(w, "  log           Show the mutation changelog")
	fmt.Fprintln(w, "  tui           Launch the terminal task browser")
	fmt.Fprintln(w, "  doctor        Check config, data file, and dependencies")
	fmt.Fprintln(w, "  config        Show resolved configuration and sources")
	fmt.Fprintln(w, "  version       Show version information")
	fmt.Fprintln(w, "  help          Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List Options (use with 'list' command):")
	fmt.Fprintln(w, "  -status string      Filter by status (active|completed)")
	fmt.Fprintln(w, "  -priority string    Filter by priority (low|medium|high)")
	fmt.Fprintln(w, "  -category string    Filter by category")
	fmt.Fprintln(w, "  -tag string         Filter by tag")
	fmt.Fprintln(w, "  -q string           Filter by title/description substring")
	fmt.Fprintln(w, "  -due-before string  Filter by due date before (YYYY-MM-DD)")
	fmt.Fprintln(w, "  -due-after string   Filter by due date after (YYYY-MM-DD)")
	fmt.Fprintln(w, "  -overdue            Show only overdue tasks")
	fmt.Fprintln(w, "  -sort string        Sort key (order|id|created|updated|due|priority|title)")
	fmt.Fprintln(w, "  -desc               Reverse the sort direction")
	fmt.Fprintln(w, "  -v                  Show more details")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Import Options (use with 'import' command):")
	fmt.Fprintln(w, "  -format string      Input format (json|yaml|csv, default: by extension)")
	fmt.Fprintln(w, "  -mode string        Combine mode (replace|merge|append, default merge)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Log Options (use with 'log' command):")
	fmt.Fprintln(w, "  -f, --follow        Follow the changelog (like tail -f)")
	fmt.Fprintln(w, "  -n int              Number of lines to show (0 = all)")
}
