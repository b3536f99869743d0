package task

import (
	"testing"
	"time"
)

func TestFilterMatch(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	sample := Task{
		ID:          "T001",
		Title:       "Buy groceries",
		Description: "milk and eggs",
		Status:      StatusActive,
		Priority:    PriorityHigh,
		Category:    "Errands",
		Tags:        []string{"shopping", "weekly"},
		DueDate:     &yesterday,
	}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"zero filter", Filter{}, true},
		{"status match", Filter{Status: StatusActive}, true},
		{"status mismatch", Filter{Status: StatusCompleted}, false},
		{"priority match", Filter{Priority: PriorityHigh}, true},
		{"priority mismatch", Filter{Priority: PriorityLow}, false},
		{"category case-insensitive", Filter{Category: "errands"}, true},
		{"category mismatch", Filter{Category: "work"}, false},
		{"tag case-insensitive", Filter{Tag: "SHOPPING"}, true},
		{"tag mismatch", Filter{Tag: "urgent"}, false},
		{"query in title", Filter{Query: "groceries"}, true},
		{"query in description", Filter{Query: "MILK"}, true},
		{"query mismatch", Filter{Query: "bread"}, false},
		{"due before", Filter{DueBefore: &now}, true},
		{"due before mismatch", Filter{DueBefore: &yesterday}, false},
		{"due after mismatch", Filter{DueAfter: &tomorrow}, false},
		{"overdue", Filter{Overdue: true}, true},
		{"combined", Filter{Status: StatusActive, Priority: PriorityHigh, Tag: "weekly"}, true},
		{"combined mismatch", Filter{Status: StatusActive, Priority: PriorityLow}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Match(&sample, now); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterDueNilDate(t *testing.T) {
	now := time.Now().UTC()
	undated := Task{Status: StatusActive}

	if (Filter{DueBefore: &now}).Match(&undated, now) {
		t.Error("DueBefore matched a task without a due date")
	}
	if (Filter{DueAfter: &now}).Match(&undated, now) {
		t.Error("DueAfter matched a task without a due date")
	}
}

func TestFiltered(t *testing.T) {
	l := NewList()
	l.Add(Task{Title: "one", Priority: PriorityHigh})
	l.Add(Task{Title: "two", Priority: PriorityLow})
	l.Add(Task{Title: "three", Priority: PriorityHigh})

	got := l.Filtered(Filter{Priority: PriorityHigh})
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Title != "one" || got[1].Title != "three" {
		t.Errorf("unexpected order: %q, %q", got[0].Title, got[1].Title)
	}

	// Filtered must copy, not alias the list.
	all := l.Filtered(Filter{})
	all[0].Title = "mutated"
	if l.Tasks[0].Title == "mutated" {
		t.Error("Filtered result aliases the list")
	}
}
