// Package ui provides the optional terminal interface.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/store"
	"github.com/taskdeck/taskdeck/internal/task"
)

// RunTUI starts the task browser over the given store.
func RunTUI(ctx context.Context, cfg *config.Config, st store.Store) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}

	watcher, err := newDataWatcher(cfg.DataFile)
	if err != nil {
		return fmt.Errorf("watching data file: %w", err)
	}
	defer watcher.Close()

	model := newTUIModel(cfg, st, watcher)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := finalModel.(*tuiModel); ok && m.saveErr != nil {
		return m.saveErr
	}
	return nil
}

// dataWatcher wraps an fsnotify watcher scoped to one data file. The file's
// directory is watched because saves replace the file by rename.
type dataWatcher struct {
	watcher *fsnotify.Watcher
	file    string
}

func newDataWatcher(dataFile string) (*dataWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(dataFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}
	return &dataWatcher{watcher: w, file: filepath.Base(dataFile)}, nil
}

func (d *dataWatcher) Close() error {
	return d.watcher.Close()
}

// wait blocks until the data file changes or the watcher closes.
func (d *dataWatcher) wait() tea.Msg {
	for {
		select {
		case event, ok := <-d.watcher.Events:
			if !ok {
				return watcherClosedMsg{}
			}
			if filepath.Base(event.Name) != d.file {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				return fileChangedMsg{}
			}
		case _, ok := <-d.watcher.Errors:
			if !ok {
				return watcherClosedMsg{}
			}
		}
	}
}

type fileChangedMsg struct{}

type watcherClosedMsg struct{}

type tuiModel struct {
	cfg     *config.Config
	st      store.Store
	watcher *dataWatcher

	list    *task.List
	visible []task.Task
	cursor  int

	filter   task.Status
	showHelp bool
	loadErr  error
	saveErr  error
}

func newTUIModel(cfg *config.Config, st store.Store, watcher *dataWatcher) *tuiModel {
	return &tuiModel{
		cfg:     cfg,
		st:      st,
		watcher: watcher,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	m.refresh()
	return m.watchCmd()
}

func (m *tuiModel) watchCmd() tea.Cmd {
	return func() tea.Msg {
		return m.watcher.wait()
	}
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "j":
			if m.cursor < len(m.visible)-1 {
				m.cursor++
			}
			return m, nil
		case " ":
			m.toggleCurrent()
			return m, nil
		case "r", "f5":
			m.refresh()
			return m, nil
		case "h", "?":
			m.showHelp = !m.showHelp
			return m, nil
		case "f":
			m.cycleFilter()
			return m, nil
		case "1":
			m.filter = task.StatusActive
			m.applyFilter()
			return m, nil
		case "2":
			m.filter = task.StatusCompleted
			m.applyFilter()
			return m, nil
		case "0":
			m.filter = ""
			m.applyFilter()
			return m, nil
		}
	case fileChangedMsg:
		m.refresh()
		return m, m.watchCmd()
	case watcherClosedMsg:
		return m, nil
	}

	return m, nil
}

// cycleFilter steps through all -> active -> completed.
func (m *tuiModel) cycleFilter() {
	switch m.filter {
	case "":
		m.filter = task.StatusActive
	case task.StatusActive:
		m.filter = task.StatusCompleted
	default:
		m.filter = ""
	}
	m.applyFilter()
}

func (m *tuiModel) refresh() {
	l, err := m.st.Load()
	if err != nil {
		m.loadErr = err
		m.list = nil
		m.visible = nil
		return
	}
	m.loadErr = nil
	m.list = l
	m.applyFilter()
}

func (m *tuiModel) applyFilter() {
	if m.list == nil {
		m.visible = nil
		return
	}
	m.visible = m.list.Filtered(task.Filter{Status: m.filter})
	task.Sort(m.visible, task.SortOrder, false)
	if m.cursor > len(m.visible)-1 {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

// toggleCurrent flips the completion status of the task under the cursor
// and persists the change.
func (m *tuiModel) toggleCurrent() {
	if m.list == nil || len(m.visible) == 0 {
		return
	}
	t := m.visible[m.cursor]

	var err error
	if t.Status == task.StatusCompleted {
		err = m.list.Reopen(t.ID)
	} else {
		err = m.list.Complete(t.ID)
	}
	if err != nil {
		m.saveErr = err
		return
	}
	if err := m.st.Save(m.list); err != nil {
		m.saveErr = fmt.Errorf("saving task list: %w", err)
		return
	}
	m.saveErr = nil
	m.applyFilter()
}

func (m *tuiModel) View() string {
	var b strings.Builder
	writeTitle(&b, m.list)

	if m.showHelp {
		writeHelp(&b)
		writeFooter(&b)
		return b.String()
	}

	if m.filter != "" {
		fmt.Fprintf(&b, "Filter: %s (0 to clear)\n\n", m.filter)
	}

	if m.loadErr != nil {
		b.WriteString("Error loading task list:\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
		writeFooter(&b)
		return b.String()
	}
	if m.list == nil {
		b.WriteString("Loading...\n\n")
		writeFooter(&b)
		return b.String()
	}

	writeOverview(&b, m.list)
	writeTasks(&b, m.visible, m.cursor)

	if m.saveErr != nil {
		b.WriteString("Error: " + m.saveErr.Error() + "\n\n")
	}

	writeFooter(&b)
	return b.String()
}

func writeTitle(b *strings.Builder, l *task.List) {
	title := "Taskdeck"
	if l != nil && l.Name != "" {
		title = "Taskdeck - " + l.Name
	}
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeOverview(b *strings.Builder, l *task.List) {
	counts := l.Counts()
	fmt.Fprintf(b, "  Active: %d  Completed: %d\n\n",
		counts[task.StatusActive], counts[task.StatusCompleted])
}

func writeTasks(b *strings.Builder, tasks []task.Task, cursor int) {
	if len(tasks) == 0 {
		b.WriteString("  No tasks.\n\n")
		return
	}
	now := time.Now().UTC()
	for i := range tasks {
		marker := "  "
		if i == cursor {
			marker = "> "
		}
		b.WriteString(marker + formatTask(&tasks[i], now) + "\n")
	}
	b.WriteString("\n")
}

func formatTask(t *task.Task, now time.Time) string {
	check := " "
	if t.Status == task.StatusCompleted {
		check = "x"
	}
	line := fmt.Sprintf("[%s] %s (%s) %s", check, t.ID, t.Priority, t.Title)
	if t.Category != "" {
		line += " @" + t.Category
	}
	if t.DueDate != nil {
		due := t.DueDate.Format("2006-01-02")
		if t.Overdue(now) {
			due += " OVERDUE"
		}
		line += " due:" + due
	}
	return line
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  j/k, arrows  Move cursor\n")
	b.WriteString("  space        Toggle completion\n")
	b.WriteString("  r, F5        Refresh\n")
	b.WriteString("  f            Cycle status filter\n")
	b.WriteString("  1            Show active tasks\n")
	b.WriteString("  2            Show completed tasks\n")
	b.WriteString("  0            Show all tasks\n")
	b.WriteString("  h, ?         Toggle this help screen\n\n")
}

func writeFooter(b *strings.Builder) {
	b.WriteString("Press h for help | q to quit | Reloads on file change\n")
}

// IsTTY returns true if the writer is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
