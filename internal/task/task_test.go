package task

import (
	"errors"
	"testing"
	"time"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    Status
		wantErr bool
	}{
		{"active", StatusActive, false},
		{"completed", StatusCompleted, false},
		{"  Active ", StatusActive, false},
		{"COMPLETED", StatusCompleted, false},
		{"done", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStatus(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseStatus(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePriority(t *testing.T) {
	tests := []struct {
		input   string
		want    Priority
		wantErr bool
	}{
		{"low", PriorityLow, false},
		{"medium", PriorityMedium, false},
		{"high", PriorityHigh, false},
		{" HIGH ", PriorityHigh, false},
		{"urgent", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePriority(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePriority(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePriority(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPriorityWeight(t *testing.T) {
	if PriorityHigh.Weight() <= PriorityMedium.Weight() {
		t.Error("high should outrank medium")
	}
	if PriorityMedium.Weight() <= PriorityLow.Weight() {
		t.Error("medium should outrank low")
	}
	if Priority("bogus").Weight() >= PriorityLow.Weight() {
		t.Error("unknown priority should rank below low")
	}
}

func TestCompareIDs(t *testing.T) {
	tests := []struct {
		name string
		id1  string
		id2  string
		want bool
	}{
		{"numeric order", "T2", "T10", true},
		{"numeric order reversed", "T10", "T2", false},
		{"padded vs unpadded", "T002", "T10", true},
		{"equal", "T5", "T5", false},
		{"non-numeric fallback", "abc", "abd", true},
		{"mixed falls back to lexicographic", "T1", "abc", true},
		{"mixed falls back reversed", "abc", "T1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CompareIDs(tt.id1, tt.id2); got != tt.want {
				t.Errorf("CompareIDs(%q, %q) = %v, want %v", tt.id1, tt.id2, got, tt.want)
			}
		})
	}
}

func TestNextID(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want string
	}{
		{"empty list", nil, "T001"},
		{"sequential", []string{"T001", "T002"}, "T003"},
		{"gap", []string{"T001", "T010"}, "T011"},
		{"unpadded", []string{"T2"}, "T003"},
		{"non-numeric ignored", []string{"abc"}, "T001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewList()
			for _, id := range tt.ids {
				l.Tasks = append(l.Tasks, Task{ID: id})
			}
			if got := l.NextID(); got != tt.want {
				t.Errorf("NextID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAddDefaults(t *testing.T) {
	l := NewList()
	added := l.Add(Task{Title: "write tests"})

	if added.ID != "T001" {
		t.Errorf("ID = %q, want T001", added.ID)
	}
	if added.Status != StatusActive {
		t.Errorf("Status = %q, want active", added.Status)
	}
	if added.Priority != PriorityMedium {
		t.Errorf("Priority = %q, want medium", added.Priority)
	}
	if added.CreatedAt == nil || added.UpdatedAt == nil {
		t.Error("timestamps not stamped")
	}
	if added.Order != 0 {
		t.Errorf("Order = %d, want 0", added.Order)
	}

	second := l.Add(Task{Title: "another", Priority: PriorityHigh})
	if second.ID != "T002" {
		t.Errorf("second ID = %q, want T002", second.ID)
	}
	if second.Priority != PriorityHigh {
		t.Errorf("explicit priority overridden: got %q", second.Priority)
	}
	if second.Order != 1 {
		t.Errorf("second Order = %d, want 1", second.Order)
	}
}

func TestUpdate(t *testing.T) {
	l := NewList()
	l.Add(Task{Title: "original"})

	before := *l.Tasks[0].UpdatedAt
	time.Sleep(time.Millisecond)

	if err := l.Update("T001", func(task *Task) {
		task.Title = "renamed"
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got := l.Get("T001")
	if got.Title != "renamed" {
		t.Errorf("Title = %q, want renamed", got.Title)
	}
	if !got.UpdatedAt.After(before) {
		t.Error("UpdatedAt not refreshed")
	}

	err := l.Update("T999", func(task *Task) {})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("Update(missing) error = %v, want NotFoundError", err)
	}
}

func TestDeleteRenumbers(t *testing.T) {
	l := NewList()
	l.Add(Task{Title: "one"})
	l.Add(Task{Title: "two"})
	l.Add(Task{Title: "three"})

	if err := l.Delete("T002"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if len(l.Tasks) != 2 {
		t.Fatalf("len(Tasks) = %d, want 2", len(l.Tasks))
	}
	for i, task := range l.Tasks {
		if task.Order != i {
			t.Errorf("Tasks[%d].Order = %d, want %d", i, task.Order, i)
		}
	}
	if l.Get("T002") != nil {
		t.Error("deleted task still present")
	}

	var nf *NotFoundError
	if err := l.Delete("T999"); !errors.As(err, &nf) {
		t.Errorf("Delete(missing) error = %v, want NotFoundError", err)
	}
}

func TestCompleteAndReopen(t *testing.T) {
	l := NewList()
	l.Add(Task{Title: "finish me"})

	if err := l.Complete("T001"); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	got := l.Get("T001")
	if got.Status != StatusCompleted {
		t.Errorf("Status = %q, want completed", got.Status)
	}
	if got.CompletedAt == nil {
		t.Fatal("CompletedAt not stamped")
	}

	// Completing again must not move completed_at.
	first := *got.CompletedAt
	time.Sleep(time.Millisecond)
	if err := l.Complete("T001"); err != nil {
		t.Fatalf("Complete() second call error = %v", err)
	}
	if !l.Get("T001").CompletedAt.Equal(first) {
		t.Error("CompletedAt changed on repeat completion")
	}

	if err := l.Reopen("T001"); err != nil {
		t.Fatalf("Reopen() error = %v", err)
	}
	got = l.Get("T001")
	if got.Status != StatusActive {
		t.Errorf("Status after reopen = %q, want active", got.Status)
	}
	if got.CompletedAt != nil {
		t.Error("CompletedAt not cleared on reopen")
	}
}

func TestMove(t *testing.T) {
	newList := func() *List {
		l := NewList()
		l.Add(Task{Title: "one"})
		l.Add(Task{Title: "two"})
		l.Add(Task{Title: "three"})
		return l
	}

	tests := []struct {
		name      string
		id        string
		pos       int
		wantOrder []string
		wantErr   bool
	}{
		{"to front", "T003", 0, []string{"T003", "T001", "T002"}, false},
		{"to back", "T001", 2, []string{"T002", "T003", "T001"}, false},
		{"clamped high", "T001", 99, []string{"T002", "T003", "T001"}, false},
		{"clamped low", "T002", -5, []string{"T002", "T001", "T003"}, false},
		{"missing", "T999", 0, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newList()
			err := l.Move(tt.id, tt.pos)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Move() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			for i, id := range tt.wantOrder {
				if l.Tasks[i].ID != id {
					t.Errorf("Tasks[%d].ID = %q, want %q", i, l.Tasks[i].ID, id)
				}
				if l.Tasks[i].Order != i {
					t.Errorf("Tasks[%d].Order = %d, want %d", i, l.Tasks[i].Order, i)
				}
			}
		})
	}
}

func TestCounts(t *testing.T) {
	l := NewList()
	l.Add(Task{Title: "one"})
	l.Add(Task{Title: "two"})
	l.Add(Task{Title: "three"})
	if err := l.Complete("T002"); err != nil {
		t.Fatal(err)
	}

	counts := l.Counts()
	if counts[StatusActive] != 2 {
		t.Errorf("active = %d, want 2", counts[StatusActive])
	}
	if counts[StatusCompleted] != 1 {
		t.Errorf("completed = %d, want 1", counts[StatusCompleted])
	}
}

func TestOverdue(t *testing.T) {
	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{"active past due", Task{Status: StatusActive, DueDate: &past}, true},
		{"active future due", Task{Status: StatusActive, DueDate: &future}, false},
		{"active no due", Task{Status: StatusActive}, false},
		{"completed past due", Task{Status: StatusCompleted, DueDate: &past}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.Overdue(now); got != tt.want {
				t.Errorf("Overdue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasTag(t *testing.T) {
	task := Task{Tags: []string{"Home", "errands"}}
	if !task.HasTag("home") {
		t.Error("HasTag should be case-insensitive")
	}
	if task.HasTag("work") {
		t.Error("HasTag matched an absent tag")
	}
}
