package task

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SortKey names a task ordering.
type SortKey string

const (
	SortOrder    SortKey = "order"
	SortID       SortKey = "id"
	SortCreated  SortKey = "created"
	SortUpdated  SortKey = "updated"
	SortDue      SortKey = "due"
	SortPriority SortKey = "priority"
	SortTitle    SortKey = "title"
)

// ParseSortKey parses a sort key string.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case SortOrder:
		return SortOrder, nil
	case SortID:
		return SortID, nil
	case SortCreated:
		return SortCreated, nil
	case SortUpdated:
		return SortUpdated, nil
	case SortDue:
		return SortDue, nil
	case SortPriority:
		return SortPriority, nil
	case SortTitle:
		return SortTitle, nil
	default:
		return "", fmt.Errorf("invalid sort key %q, must be one of: order, id, created, updated, due, priority, title", s)
	}
}

// Sort orders tasks in place by the given key. Ties fall back to the manual
// order index. Tasks without a due date sort after dated ones regardless of
// direction.
func Sort(tasks []Task, key SortKey, desc bool) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := &tasks[i], &tasks[j]
		switch key {
		case SortCreated:
			if (a.CreatedAt == nil) != (b.CreatedAt == nil) {
				return b.CreatedAt == nil
			}
			if c := compareTimes(a.CreatedAt, b.CreatedAt); c != 0 {
				return lessDirected(c, desc)
			}
		case SortUpdated:
			if (a.UpdatedAt == nil) != (b.UpdatedAt == nil) {
				return b.UpdatedAt == nil
			}
			if c := compareTimes(a.UpdatedAt, b.UpdatedAt); c != 0 {
				return lessDirected(c, desc)
			}
		case SortDue:
			// Undated tasks always last.
			if (a.DueDate == nil) != (b.DueDate == nil) {
				return b.DueDate == nil
			}
			if c := compareTimes(a.DueDate, b.DueDate); c != 0 {
				return lessDirected(c, desc)
			}
		case SortPriority:
			// Ascending means most urgent first.
			if a.Priority.Weight() != b.Priority.Weight() {
				return lessDirected(b.Priority.Weight()-a.Priority.Weight(), desc)
			}
		case SortTitle:
			at, bt := strings.ToLower(a.Title), strings.ToLower(b.Title)
			if at != bt {
				return lessDirected(strings.Compare(at, bt), desc)
			}
		case SortOrder:
			if a.Order != b.Order {
				return lessDirected(a.Order-b.Order, desc)
			}
		case SortID:
			// Numeric-aware, so T2 sorts before T10.
			if a.ID != b.ID {
				if desc {
					return CompareIDs(b.ID, a.ID)
				}
				return CompareIDs(a.ID, b.ID)
			}
		}
		return a.Order < b.Order
	})
}

// compareTimes orders two optional timestamps. Nil sorts last.
func compareTimes(a, b *time.Time) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return 1
	}
	if b == nil {
		return -1
	}
	if a.Before(*b) {
		return -1
	}
	if a.After(*b) {
		return 1
	}
	return 0
}

func lessDirected(cmp int, desc bool) bool {
	if desc {
		return cmp > 0
	}
	return cmp < 0
}
