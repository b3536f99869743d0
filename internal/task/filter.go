package task

import (
	"strings"
	"time"
)

// Filter selects tasks by field values. Zero-valued fields match everything.
type Filter struct {
	Status    Status
	Priority  Priority
	Category  string
	Tag       string
	Query     string // substring match over title and description
	DueBefore *time.Time
	DueAfter  *time.Time
	Overdue   bool
}

// IsZero returns true if the filter matches every task.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

// Match reports whether a task passes the filter at the given time.
func (f Filter) Match(t *Task, now time.Time) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.Category != "" && !strings.EqualFold(t.Category, f.Category) {
		return false
	}
	if f.Tag != "" && !t.HasTag(f.Tag) {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	if f.DueBefore != nil {
		if t.DueDate == nil || !t.DueDate.Before(*f.DueBefore) {
			return false
		}
	}
	if f.DueAfter != nil {
		if t.DueDate == nil || !t.DueDate.After(*f.DueAfter) {
			return false
		}
	}
	if f.Overdue && !t.Overdue(now) {
		return false
	}
	return true
}

// Filtered returns the tasks passing the filter, in list order.
func (l *List) Filtered(f Filter) []Task {
	return l.filteredAt(f, time.Now().UTC())
}

func (l *List) filteredAt(f Filter, now time.Time) []Task {
	if f.IsZero() {
		out := make([]Task, len(l.Tasks))
		copy(out, l.Tasks)
		return out
	}
	var out []Task
	for i := range l.Tasks {
		if f.Match(&l.Tasks[i], now) {
			out = append(out, l.Tasks[i])
		}
	}
	return out
}
