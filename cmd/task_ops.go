package cmd

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/taskdeck/taskdeck/internal/task"
	"github.com/taskdeck/taskdeck/internal/utils"
)

// addCommand creates a new task.
func (a *app) addCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskdeck add", flag.ContinueOnError)
	description := fs.String("desc", "", "Task description")
	priority := fs.String("priority", a.cfg.DefaultPriority, "Priority (low|medium|high)")
	category := fs.String("category", "", "Category")
	tags := fs.String("tags", "", "Comma-separated tags")
	due := fs.String("due", "", "Due date (YYYY-MM-DD or RFC 3339)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	title := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if title == "" {
		return fmt.Errorf("add requires a title")
	}

	p, err := task.ParsePriority(*priority)
	if err != nil {
		return err
	}
	dueDate, err := parseDate(*due)
	if err != nil {
		return err
	}

	t := task.Task{
		Title:       title,
		Description: *description,
		Priority:    p,
		Category:    *category,
		DueDate:     dueDate,
	}
	if *tags != "" {
		t.Tags = utils.SplitAndTrim(*tags, ",")
	}

	return a.mutate(ctx, func(l *task.List) (*mutation, error) {
		added := l.Add(t)
		fmt.Printf("Added %s: %s\n", added.ID, added.Title)
		return &mutation{
			Op:     "add",
			TaskID: added.ID,
			Title:  added.Title,
			Status: added.Status,
		}, nil
	})
}

// showCommand prints one task in detail.
func (a *app) showCommand(args []string) error {
	fs := flag.NewFlagSet("taskdeck show", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) != 1 {
		return fmt.Errorf("show requires exactly one task ID")
	}
	id := fs.Arg(0)

	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	l, err := st.Load()
	if err != nil {
		return fmt.Errorf("loading task list: %w", err)
	}

	t := l.Get(id)
	if t == nil {
		return &task.NotFoundError{ID: id}
	}

	printTaskDetail(t)
	return nil
}

// editCommand updates fields on an existing task.
func (a *app) editCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskdeck edit", flag.ContinueOnError)
	title := fs.String("title", "", "New title")
	description := fs.String("desc", "", "New description")
	priority := fs.String("priority", "", "New priority (low|medium|high)")
	status := fs.String("status", "", "New status (active|completed)")
	category := fs.String("category", "", "New category")
	tags := fs.String("tags", "", "New comma-separated tags")
	due := fs.String("due", "", "New due date (YYYY-MM-DD or RFC 3339)")
	clearDue := fs.Bool("clear-due", false, "Remove the due date")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) != 1 {
		return fmt.Errorf("edit requires exactly one task ID")
	}
	id := fs.Arg(0)

	var newPriority task.Priority
	if *priority != "" {
		p, err := task.ParsePriority(*priority)
		if err != nil {
			return err
		}
		newPriority = p
	}
	var newStatus task.Status
	if *status != "" {
		s, err := task.ParseStatus(*status)
		if err != nil {
			return err
		}
		newStatus = s
	}
	var newDue *time.Time
	if *due != "" {
		d, err := parseDate(*due)
		if err != nil {
			return err
		}
		newDue = d
	}

	var changed []string
	fs.Visit(func(f *flag.Flag) {
		changed = append(changed, f.Name)
	})
	if len(changed) == 0 {
		return fmt.Errorf("edit requires at least one field flag")
	}
	for _, name := range changed {
		if name == "title" && strings.TrimSpace(*title) == "" {
			return fmt.Errorf("title cannot be empty")
		}
	}

	return a.mutate(ctx, func(l *task.List) (*mutation, error) {
		err := l.Update(id, func(t *task.Task) {
			for _, name := range changed {
				switch name {
				case "title":
					t.Title = *title
				case "desc":
					t.Description = *description
				case "priority":
					t.Priority = newPriority
				case "status":
					applyStatus(t, newStatus)
				case "category":
					t.Category = *category
				case "tags":
					if *tags == "" {
						t.Tags = nil
					} else {
						t.Tags = utils.SplitAndTrim(*tags, ",")
					}
				case "due":
					t.DueDate = newDue
				case "clear-due":
					if *clearDue {
						t.DueDate = nil
					}
				}
			}
		})
		if err != nil {
			return nil, err
		}
		t := l.Get(id)
		fmt.Printf("Updated %s: %s\n", t.ID, t.Title)
		return &mutation{
			Op:     "edit",
			TaskID: t.ID,
			Title:  t.Title,
			Status: t.Status,
			Detail: strings.Join(changed, ","),
		}, nil
	})
}

// applyStatus transitions a task's status, keeping completed_at consistent.
func applyStatus(t *task.Task, s task.Status) {
	if t.Status == s {
		return
	}
	t.Status = s
	if s == task.StatusCompleted {
		now := time.Now().UTC()
		t.CompletedAt = &now
	} else {
		t.CompletedAt = nil
	}
}

// doneCommand marks tasks completed.
func (a *app) doneCommand(ctx context.Context, args []string) error {
	return a.statusCommand(ctx, "done", args, func(l *task.List, id string) error {
		return l.Complete(id)
	})
}

// undoneCommand reopens completed tasks.
func (a *app) undoneCommand(ctx context.Context, args []string) error {
	return a.statusCommand(ctx, "undone", args, func(l *task.List, id string) error {
		return l.Reopen(id)
	})
}

func (a *app) statusCommand(ctx context.Context, op string, args []string, apply func(*task.List, string) error) error {
	fs := flag.NewFlagSet("taskdeck "+op, flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	ids := fs.Args()
	if len(ids) == 0 {
		return fmt.Errorf("%s requires at least one task ID", op)
	}

	for _, id := range ids {
		err := a.mutate(ctx, func(l *task.List) (*mutation, error) {
			if err := apply(l, id); err != nil {
				return nil, err
			}
			t := l.Get(id)
			fmt.Printf("%s %s: %s\n", strings.ToUpper(op[:1])+op[1:], t.ID, t.Title)
			return &mutation{
				Op:     op,
				TaskID: t.ID,
				Title:  t.Title,
				Status: t.Status,
			}, nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// rmCommand deletes a task.
func (a *app) rmCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskdeck rm", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) != 1 {
		return fmt.Errorf("rm requires exactly one task ID")
	}
	id := fs.Arg(0)

	return a.mutate(ctx, func(l *task.List) (*mutation, error) {
		t := l.Get(id)
		if t == nil {
			return nil, &task.NotFoundError{ID: id}
		}
		title := t.Title
		if err := l.Delete(id); err != nil {
			return nil, err
		}
		fmt.Printf("Deleted %s: %s\n", id, title)
		return &mutation{
			Op:     "rm",
			TaskID: id,
			Title:  title,
		}, nil
	})
}

// mvCommand moves a task to a 1-based position in the manual order.
func (a *app) mvCommand(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskdeck mv", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) != 2 {
		return fmt.Errorf("mv requires a task ID and a position")
	}
	id := fs.Arg(0)
	pos, err := strconv.Atoi(fs.Arg(1))
	if err != nil || pos < 1 {
		return fmt.Errorf("invalid position %q, expected a positive number", fs.Arg(1))
	}

	return a.mutate(ctx, func(l *task.List) (*mutation, error) {
		if err := l.Move(id, pos-1); err != nil {
			return nil, err
		}
		t := l.Get(id)
		fmt.Printf("Moved %s to position %d\n", t.ID, t.Order+1)
		return &mutation{
			Op:     "mv",
			TaskID: t.ID,
			Title:  t.Title,
			Status: t.Status,
			Detail: fmt.Sprintf("position %d", t.Order+1),
		}, nil
	})
}
