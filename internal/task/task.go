// Package task holds the task list domain model and its operations.
package task

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Status represents a task status.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// ParseStatus parses a status string.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusActive:
		return StatusActive, nil
	case StatusCompleted:
		return StatusCompleted, nil
	default:
		return "", fmt.Errorf("invalid status %q, must be one of: active, completed", s)
	}
}

// Priority represents a task priority.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority parses a priority string.
func ParsePriority(s string) (Priority, error) {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityLow:
		return PriorityLow, nil
	case PriorityMedium:
		return PriorityMedium, nil
	case PriorityHigh:
		return PriorityHigh, nil
	default:
		return "", fmt.Errorf("invalid priority %q, must be one of: low, medium, high", s)
	}
}

// Weight returns the numeric rank of a priority. Higher is more urgent.
// Unknown priorities rank below low.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Task represents a single task record.
type Task struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Status      Status     `json:"status" yaml:"status"`
	Priority    Priority   `json:"priority" yaml:"priority"`
	Category    string     `json:"category,omitempty" yaml:"category,omitempty"`
	Tags        []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	Order       int        `json:"order" yaml:"order"`
}

// HasTag reports whether the task carries the given tag (case-insensitive).
func (t *Task) HasTag(tag string) bool {
	for _, have := range t.Tags {
		if strings.EqualFold(have, tag) {
			return true
		}
	}
	return false
}

// Overdue reports whether the task is active with a due date in the past.
func (t *Task) Overdue(now time.Time) bool {
	return t.Status == StatusActive && t.DueDate != nil && t.DueDate.Before(now)
}

// List represents the task list document.
type List struct {
	SchemaVersion int    `json:"schema_version" yaml:"schema_version"`
	Name          string `json:"name,omitempty" yaml:"name,omitempty"`
	Tasks         []Task `json:"tasks" yaml:"tasks"`
}

// NewList returns an empty list at the current schema version.
func NewList() *List {
	return &List{
		SchemaVersion: 1,
		Tasks:         []Task{},
	}
}

// NotFoundError reports a lookup for a task ID that does not exist.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("task %q not found", e.ID)
}

// idSortKey extracts the numeric value from a task ID for sorting.
// For IDs like "T001", "T2", "T10", it returns 1, 2, 10 respectively.
// If the ID doesn't contain a number, it returns -1.
func idSortKey(id string) int {
	i := 0
	for i < len(id) && (id[i] < '0' || id[i] > '9') {
		i++
	}
	if i == len(id) {
		return -1
	}
	num, err := strconv.Atoi(id[i:])
	if err != nil {
		return -1
	}
	return num
}

// CompareIDs returns true if id1 should come before id2 in numeric-aware
// ordering. If both IDs have numeric parts, compares numerically. Otherwise
// falls back to lexicographic comparison.
func CompareIDs(id1, id2 string) bool {
	k1 := idSortKey(id1)
	k2 := idSortKey(id2)
	if k1 >= 0 && k2 >= 0 {
		return k1 < k2
	}
	return id1 < id2
}

// Get returns a task by ID, or nil if not found.
func (l *List) Get(id string) *Task {
	for i := range l.Tasks {
		if l.Tasks[i].ID == id {
			return &l.Tasks[i]
		}
	}
	return nil
}

// NextID returns the next unused T-prefixed ID.
func (l *List) NextID() string {
	max := 0
	for i := range l.Tasks {
		if k := idSortKey(l.Tasks[i].ID); k > max {
			max = k
		}
	}
	return fmt.Sprintf("T%03d", max+1)
}

// Add appends a task to the list. An empty ID is assigned the next free one,
// the manual order index is set to the end of the list, and timestamps are
// stamped.
func (l *List) Add(t Task) *Task {
	now := time.Now().UTC()
	if t.ID == "" {
		t.ID = l.NextID()
	}
	if t.Status == "" {
		t.Status = StatusActive
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.CreatedAt == nil {
		t.CreatedAt = &now
	}
	t.UpdatedAt = &now
	t.Order = len(l.Tasks)
	l.Tasks = append(l.Tasks, t)
	return &l.Tasks[len(l.Tasks)-1]
}

// Update applies updater to the task with the given ID and stamps updated_at.
func (l *List) Update(id string, updater func(*Task)) error {
	for i := range l.Tasks {
		if l.Tasks[i].ID == id {
			updater(&l.Tasks[i])
			now := time.Now().UTC()
			l.Tasks[i].UpdatedAt = &now
			return nil
		}
	}
	return &NotFoundError{ID: id}
}

// Delete removes the task with the given ID and re-compacts the manual
// order indexes.
func (l *List) Delete(id string) error {
	for i := range l.Tasks {
		if l.Tasks[i].ID == id {
			l.Tasks = append(l.Tasks[:i], l.Tasks[i+1:]...)
			l.renumber()
			return nil
		}
	}
	return &NotFoundError{ID: id}
}

// Complete marks a task completed and stamps completed_at. Completing an
// already-completed task refreshes updated_at and nothing else.
func (l *List) Complete(id string) error {
	return l.Update(id, func(t *Task) {
		if t.Status == StatusCompleted {
			return
		}
		now := time.Now().UTC()
		t.Status = StatusCompleted
		t.CompletedAt = &now
	})
}

// Reopen marks a task active again and clears completed_at.
func (l *List) Reopen(id string) error {
	return l.Update(id, func(t *Task) {
		t.Status = StatusActive
		t.CompletedAt = nil
	})
}

// Move repositions a task in the manual order. The position is zero-based
// and clamped to the list bounds.
func (l *List) Move(id string, pos int) error {
	from := -1
	for i := range l.Tasks {
		if l.Tasks[i].ID == id {
			from = i
			break
		}
	}
	if from < 0 {
		return &NotFoundError{ID: id}
	}
	if pos < 0 {
		pos = 0
	}
	if pos > len(l.Tasks)-1 {
		pos = len(l.Tasks) - 1
	}

	moved := l.Tasks[from]
	l.Tasks = append(l.Tasks[:from], l.Tasks[from+1:]...)
	l.Tasks = append(l.Tasks[:pos], append([]Task{moved}, l.Tasks[pos:]...)...)
	l.renumber()

	now := time.Now().UTC()
	l.Tasks[pos].UpdatedAt = &now
	return nil
}

// Counts returns the number of tasks per status.
func (l *List) Counts() map[Status]int {
	counts := map[Status]int{
		StatusActive:    0,
		StatusCompleted: 0,
	}
	for i := range l.Tasks {
		counts[l.Tasks[i].Status]++
	}
	return counts
}

// renumber rewrites the manual order indexes to match slice positions.
func (l *List) renumber() {
	for i := range l.Tasks {
		l.Tasks[i].Order = i
	}
}
