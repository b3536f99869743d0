// Package transfer imports and exports task lists in interchange formats.
package transfer

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/taskdeck/taskdeck/internal/task"
	"github.com/taskdeck/taskdeck/internal/utils"
)

// Format names an interchange format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

// ParseFormat parses a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("invalid format %q, must be one of: json, yaml, csv", s)
	}
}

// DetectFormat resolves a format from an explicit name or a file extension.
// An explicit name wins; with neither, JSON is assumed.
func DetectFormat(path, explicit string) (Format, error) {
	if explicit != "" {
		return ParseFormat(explicit)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return FormatJSON, nil
	}
}

// csvHeader is the column layout for CSV import/export.
var csvHeader = []string{
	"id", "title", "description", "status", "priority", "category",
	"tags", "due_date", "created_at", "updated_at", "completed_at", "order",
}

// Export writes the list to w in the given format.
func Export(w io.Writer, l *task.List, f Format) error {
	switch f {
	case FormatJSON:
		data, err := json.MarshalIndent(l, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal list: %w", err)
		}
		data = append(data, '\n')
		_, err = w.Write(data)
		return err
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(l); err != nil {
			return fmt.Errorf("marshal list: %w", err)
		}
		return enc.Close()
	case FormatCSV:
		return exportCSV(w, l)
	default:
		return fmt.Errorf("unknown format %q", f)
	}
}

func exportCSV(w io.Writer, l *task.List) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := range l.Tasks {
		t := &l.Tasks[i]
		record := []string{
			t.ID,
			t.Title,
			t.Description,
			string(t.Status),
			string(t.Priority),
			t.Category,
			strings.Join(t.Tags, ","),
			formatTime(t.DueDate),
			formatTime(t.CreatedAt),
			formatTime(t.UpdatedAt),
			formatTime(t.CompletedAt),
			strconv.Itoa(t.Order),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row for %s: %w", t.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Import reads a list from r in the given format. The result is validated
// structurally before being returned.
func Import(r io.Reader, f Format) (*task.List, error) {
	var l *task.List
	var err error
	switch f {
	case FormatJSON:
		l, err = importJSON(r)
	case FormatYAML:
		l, err = importYAML(r)
	case FormatCSV:
		l, err = importCSV(r)
	default:
		return nil, fmt.Errorf("unknown format %q", f)
	}
	if err != nil {
		return nil, err
	}

	if l.SchemaVersion == 0 {
		l.SchemaVersion = 1
	}
	if l.Tasks == nil {
		l.Tasks = []task.Task{}
	}

	result := l.Validate(task.ValidationOptions{})
	if !result.Valid {
		return nil, fmt.Errorf("imported list is invalid: %v", result.Errors[0])
	}
	return l, nil
}

func importJSON(r io.Reader) (*task.List, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}
	var l task.List
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse JSON import: %w", err)
	}
	return &l, nil
}

func importYAML(r io.Reader) (*task.List, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read import: %w", err)
	}
	var l task.List
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("parse YAML import: %w", err)
	}
	return &l, nil
}

func importCSV(r io.Reader) (*task.List, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i, col := range csvHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return nil, fmt.Errorf("unexpected csv column %d: got %q, want %q", i, header[i], col)
		}
	}

	l := task.NewList()
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}

		t := task.Task{
			ID:          record[0],
			Title:       record[1],
			Description: record[2],
			Status:      task.Status(record[3]),
			Priority:    task.Priority(record[4]),
			Category:    record[5],
		}
		if record[6] != "" {
			t.Tags = utils.SplitAndTrim(record[6], ",")
		}
		if t.DueDate, err = parseTime(record[7]); err != nil {
			return nil, fmt.Errorf("csv line %d: due_date: %w", line, err)
		}
		if t.CreatedAt, err = parseTime(record[8]); err != nil {
			return nil, fmt.Errorf("csv line %d: created_at: %w", line, err)
		}
		if t.UpdatedAt, err = parseTime(record[9]); err != nil {
			return nil, fmt.Errorf("csv line %d: updated_at: %w", line, err)
		}
		if t.CompletedAt, err = parseTime(record[10]); err != nil {
			return nil, fmt.Errorf("csv line %d: completed_at: %w", line, err)
		}
		if t.Order, err = strconv.Atoi(record[11]); err != nil {
			return nil, fmt.Errorf("csv line %d: order: %w", line, err)
		}
		l.Tasks = append(l.Tasks, t)
	}

	return l, nil
}

// Mode controls how an imported list is combined with the current one.
type Mode string

const (
	// ModeReplace discards the current list.
	ModeReplace Mode = "replace"
	// ModeMerge combines by ID; on conflict the newer updated_at wins.
	ModeMerge Mode = "merge"
	// ModeAppend adds all imported tasks with fresh IDs.
	ModeAppend Mode = "append"
)

// ParseMode parses an import mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeReplace:
		return ModeReplace, nil
	case ModeMerge:
		return ModeMerge, nil
	case ModeAppend:
		return ModeAppend, nil
	default:
		return "", fmt.Errorf("invalid import mode %q, must be one of: replace, merge, append", s)
	}
}

// Stats summarizes the outcome of a Combine.
type Stats struct {
	Added   int
	Updated int
	Kept    int
}

// Combine merges src into dst according to mode and returns the resulting
// list. dst is not modified.
func Combine(dst, src *task.List, mode Mode) (*task.List, Stats, error) {
	switch mode {
	case ModeReplace:
		out := *src
		out.Tasks = make([]task.Task, len(src.Tasks))
		copy(out.Tasks, src.Tasks)
		return &out, Stats{Added: len(src.Tasks)}, nil
	case ModeMerge:
		return mergeByID(dst, src)
	case ModeAppend:
		return appendAll(dst, src)
	default:
		return nil, Stats{}, fmt.Errorf("unknown import mode %q", mode)
	}
}

func mergeByID(dst, src *task.List) (*task.List, Stats, error) {
	out := *dst
	out.Tasks = make([]task.Task, len(dst.Tasks))
	copy(out.Tasks, dst.Tasks)

	var stats Stats
	for i := range src.Tasks {
		incoming := src.Tasks[i]
		existing := out.Get(incoming.ID)
		if existing == nil {
			incoming.Order = len(out.Tasks)
			out.Tasks = append(out.Tasks, incoming)
			stats.Added++
			continue
		}
		if newerThan(incoming.UpdatedAt, existing.UpdatedAt) {
			incoming.Order = existing.Order
			*existing = incoming
			stats.Updated++
		} else {
			stats.Kept++
		}
	}
	return &out, stats, nil
}

func appendAll(dst, src *task.List) (*task.List, Stats, error) {
	out := *dst
	out.Tasks = make([]task.Task, len(dst.Tasks))
	copy(out.Tasks, dst.Tasks)

	var stats Stats
	for i := range src.Tasks {
		incoming := src.Tasks[i]
		incoming.ID = out.NextID()
		incoming.Order = len(out.Tasks)
		out.Tasks = append(out.Tasks, incoming)
		stats.Added++
	}
	return &out, stats, nil
}

// newerThan reports whether a is strictly newer than b. A nil timestamp is
// never newer.
func newerThan(a, b *time.Time) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}
	return a.After(*b)
}

func parseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
