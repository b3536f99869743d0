package cmd

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/taskdeck/taskdeck/internal/task"
)

var (
	colorHigh      = color.New(color.FgRed)
	colorMedium    = color.New(color.FgYellow)
	colorLow       = color.New(color.FgGreen)
	colorOverdue   = color.New(color.FgRed, color.Bold)
	colorCompleted = color.New(color.Faint)
	colorHeading   = color.New(color.Bold)
	colorID        = color.New(color.FgCyan)
)

// listCommand lists tasks, grouped by status unless a filter narrows them.
func (a *app) listCommand(args []string) error {
	fs := flag.NewFlagSet("taskdeck list", flag.ContinueOnError)
	status := fs.String("status", "", "Filter by status (active|completed)")
	priority := fs.String("priority", "", "Filter by priority (low|medium|high)")
	category := fs.String("category", "", "Filter by category")
	tag := fs.String("tag", "", "Filter by tag")
	query := fs.String("q", "", "Filter by title/description substring")
	dueBefore := fs.String("due-before", "", "Filter by due date before (YYYY-MM-DD)")
	dueAfter := fs.String("due-after", "", "Filter by due date after (YYYY-MM-DD)")
	overdue := fs.Bool("overdue", false, "Show only overdue tasks")
	sortKey := fs.String("sort", string(task.SortOrder), "Sort key (order|id|created|updated|due|priority|title)")
	desc := fs.Bool("desc", false, "Reverse the sort direction")
	verbose := fs.Bool("v", false, "Show more details")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	filter, err := buildFilter(*status, *priority, *category, *tag, *query, *dueBefore, *dueAfter, *overdue)
	if err != nil {
		return err
	}
	key, err := task.ParseSortKey(*sortKey)
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

	tasks := l.Filtered(filter)
	task.Sort(tasks, key, *desc)

	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return nil
	}

	// With a status filter the grouping is redundant.
	if filter.Status != "" {
		printTaskList(tasks, *verbose)
		return nil
	}

	printTasksByStatus("Active", tasks, task.StatusActive, *verbose)
	printTasksByStatus("Completed", tasks, task.StatusCompleted, *verbose)
	return nil
}

func buildFilter(status, priority, category, tag, query, dueBefore, dueAfter string, overdue bool) (task.Filter, error) {
	var f task.Filter
	var err error

	if status != "" {
		if f.Status, err = task.ParseStatus(status); err != nil {
			return f, err
		}
	}
	if priority != "" {
		if f.Priority, err = task.ParsePriority(priority); err != nil {
			return f, err
		}
	}
	f.Category = category
	f.Tag = tag
	f.Query = query
	if f.DueBefore, err = parseDate(dueBefore); err != nil {
		return f, err
	}
	if f.DueAfter, err = parseDate(dueAfter); err != nil {
		return f, err
	}
	f.Overdue = overdue
	return f, nil
}

// printTasksByStatus prints tasks of a specific status, preserving the
// caller's ordering.
func printTasksByStatus(label string, tasks []task.Task, status task.Status, verbose bool) {
	var matching []task.Task
	for _, t := range tasks {
		if t.Status == status {
			matching = append(matching, t)
		}
	}
	if len(matching) == 0 {
		return
	}
	colorHeading.Printf("%s (%d):\n", label, len(matching))
	for i := range matching {
		printTask(&matching[i], verbose)
	}
	fmt.Println()
}

// printTaskList prints a flat list of tasks.
func printTaskList(tasks []task.Task, verbose bool) {
	for i := range tasks {
		printTask(&tasks[i], verbose)
	}
}

// printTask prints a single task line.
func printTask(t *task.Task, verbose bool) {
	check := "[ ]"
	if t.Status == task.StatusCompleted {
		check = "[x]"
	}

	line := fmt.Sprintf("  %s %s %s %s",
		check, colorID.Sprint(t.ID), priorityLabel(t.Priority), t.Title)
	if t.Category != "" {
		line += " @" + t.Category
	}
	if len(t.Tags) > 0 {
		line += " #" + strings.Join(t.Tags, " #")
	}
	if t.DueDate != nil {
		due := t.DueDate.Format("2006-01-02")
		if t.Overdue(time.Now().UTC()) {
			due = colorOverdue.Sprintf("%s (overdue)", due)
		}
		line += " due:" + due
	}
	if t.Status == task.StatusCompleted {
		line = colorCompleted.Sprint(line)
	}
	fmt.Println(line)

	if verbose {
		if t.Description != "" {
			fmt.Printf("      %s\n", t.Description)
		}
		if t.CreatedAt != nil {
			fmt.Printf("      Created: %s\n", t.CreatedAt.Format(time.RFC3339))
		}
		if t.CompletedAt != nil {
			fmt.Printf("      Completed: %s\n", t.CompletedAt.Format(time.RFC3339))
		}
	}
}

// printTaskDetail prints the full field view used by the show command.
func printTaskDetail(t *task.Task) {
	colorHeading.Printf("%s: %s\n", t.ID, t.Title)
	fmt.Printf("  Status:   %s\n", t.Status)
	fmt.Printf("  Priority: %s\n", priorityLabel(t.Priority))
	if t.Description != "" {
		fmt.Printf("  Description: %s\n", t.Description)
	}
	if t.Category != "" {
		fmt.Printf("  Category: %s\n", t.Category)
	}
	if len(t.Tags) > 0 {
		fmt.Printf("  Tags:     %s\n", strings.Join(t.Tags, ", "))
	}
	if t.DueDate != nil {
		due := t.DueDate.Format("2006-01-02")
		if t.Overdue(time.Now().UTC()) {
			due = colorOverdue.Sprintf("%s (overdue)", due)
		}
		fmt.Printf("  Due:      %s\n", due)
	}
	if t.CreatedAt != nil {
		fmt.Printf("  Created:  %s\n", t.CreatedAt.Format(time.RFC3339))
	}
	if t.UpdatedAt != nil {
		fmt.Printf("  Updated:  %s\n", t.UpdatedAt.Format(time.RFC3339))
	}
	if t.CompletedAt != nil {
		fmt.Printf("  Completed: %s\n", t.CompletedAt.Format(time.RFC3339))
	}
	fmt.Printf("  Position: %d\n", t.Order+1)
}

func priorityLabel(p task.Priority) string {
	switch p {
	case task.PriorityHigh:
		return colorHigh.Sprint("high")
	case task.PriorityMedium:
		return colorMedium.Sprint("medium")
	case task.PriorityLow:
		return colorLow.Sprint("low")
	}
	return string(p)
}
