package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/taskdeck/taskdeck/internal/logging"
	"github.com/taskdeck/taskdeck/internal/task"
	"github.com/taskdeck/taskdeck/internal/transfer"
)

// importCommand reads tasks from a file (or stdin with "-") and combines
// them with the current list.
func (a *app) importCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskdeck import", flag.ContinueOnError)
	format := fs.String("format", "", "Input format (json|yaml|csv, default: by extension)")
	mode := fs.String("mode", string(transfer.ModeMerge), "Combine mode (replace|merge|append)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) != 1 {
		return fmt.Errorf("import requires exactly one input file (or - for stdin)")
	}
	path := fs.Arg(0)

	m, err := transfer.ParseMode(*mode)
	if err != nil {
		return err
	}
	f, err := transfer.DetectFormat(path, *format)
	if err != nil {
		return err
	}

	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		file, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening import file: %w", err)
		}
		defer file.Close()
		r = file
	}

	incoming, err := transfer.Import(r, f)
	if err != nil {
		return err
	}

	return a.mutate(ctx, func(l *task.List) (*mutation, error) {
		combined, stats, err := transfer.Combine(l, incoming, m)
		if err != nil {
			return nil, err
		}
		*l = *combined

		fmt.Printf("Imported %d tasks (%s): %d added, %d updated, %d kept\n",
			len(incoming.Tasks), m, stats.Added, stats.Updated, stats.Kept)
		return &mutation{
			Op:     "import",
			Detail: fmt.Sprintf("%s %s: %d added, %d updated, %d kept", f, m, stats.Added, stats.Updated, stats.Kept),
		}, nil
	})
}

// exportCommand writes the list to a file or stdout.
func (a *app) exportCommand(args []string) error {
	fs := flag.NewFlagSet("taskdeck export", flag.ContinueOnError)
	format := fs.String("format", "", "Output format (json|yaml|csv, default: by extension)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 1 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args()[1:])
	}

	path := ""
	if len(fs.Args()) == 1 {
		path = fs.Arg(0)
	}

	f, err := transfer.DetectFormat(path, *format)
	if err != nil {
		return err
	}

	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	l, err := st.Load()
	if err != nil {
		return fmt.Errorf("loading task list: %w", err)
	}

	var w io.Writer = os.Stdout
	if path != "" && path != "-" {
		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating export file: %w", err)
		}
		defer file.Close()
		w = file
	}

	if err := transfer.Export(w, l, f); err != nil {
		return err
	}
	if path != "" && path != "-" {
		fmt.Printf("Exported %d tasks to %s\n", len(l.Tasks), path)
	}
	return nil
}

// validateCommand checks the data file against the schema and structural
// rules.
func (a *app) validateCommand(args []string) error {
	fs := flag.NewFlagSet("taskdeck validate", flag.ContinueOnError)
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

	l, err := st.Load()
	if err != nil {
		return fmt.Errorf("loading task list: %w", err)
	}

	result := l.Validate(task.ValidationOptions{SchemaPath: a.cfg.SchemaFile})
	for _, w := range result.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	if result.Valid {
		fmt.Printf("%s: valid (%d tasks)\n", a.cfg.DataFile, len(l.Tasks))
		return nil
	}
	for _, e := range result.Errors {
		fmt.Printf("error: %v\n", e)
	}
	return fmt.Errorf("validation failed with %d error(s)", len(result.Errors))
}

// logCommand shows the mutation changelog for the current data file.
func (a *app) logCommand(args []string) error {
	fs := flag.NewFlagSet("taskdeck log", flag.ContinueOnError)
	follow := fs.Bool("f", false, "Follow the changelog (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the changelog (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	path := logging.ChangelogPath(a.cfg.LogDir, a.cfg.DataFile)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			fmt.Println("No changelog yet.")
			return nil
		}
		return fmt.Errorf("checking changelog: %w", err)
	}

	return logging.Tail(os.Stdout, path, *n, *follow)
}
