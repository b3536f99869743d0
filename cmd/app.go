package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"

	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/hooks"
	"github.com/taskdeck/taskdeck/internal/logging"
	"github.com/taskdeck/taskdeck/internal/task"
)

// app carries the resolved configuration and logger through command handlers.
type app struct {
	cfg     *config.Config
	sources *config.ConfigWithSources
	logger  *log.Logger
}

// mutation describes one completed change for the changelog and hook.
type mutation struct {
	Op     string
	TaskID string
	Title  string
	Status task.Status
	Detail string
}

// mutate loads the list, applies fn, and saves the result. The returned
// mutation is appended to the changelog and passed to the configured hook.
// Changelog and hook failures are warnings, the data is already saved.
func (a *app) mutate(ctx context.Context, fn func(l *task.List) (*mutation, error)) error {
	st, err := a.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	l, err := st.Load()
	if err != nil {
		return fmt.Errorf("loading task list: %w", err)
	}

	m, err := fn(l)
	if err != nil {
		return err
	}

	if err := st.Save(l); err != nil {
		return fmt.Errorf("saving task list: %w", err)
	}

	a.record(ctx, m)
	return nil
}

// record appends the changelog entry and invokes the post-mutation hook.
func (a *app) record(ctx context.Context, m *mutation) {
	if m == nil {
		return
	}

	cl, err := logging.OpenChangelog(a.cfg.LogDir, a.cfg.DataFile)
	if err != nil {
		a.logger.Warn("changelog unavailable", "error", err)
	} else if err := cl.Append(logging.Entry{
		Op:     m.Op,
		TaskID: m.TaskID,
		Title:  m.Title,
		Detail: m.Detail,
	}); err != nil {
		a.logger.Warn("changelog append failed", "error", err)
	}

	result, err := hooks.Invoke(ctx, hooks.Options{
		Command:  a.cfg.HookCommand,
		Op:       m.Op,
		TaskID:   m.TaskID,
		Status:   string(m.Status),
		DataFile: a.cfg.DataFile,
		WorkDir:  a.cfg.ProjectRoot,
	})
	if err != nil {
		a.logger.Warn("hook failed", "command", strings.Join(result.Command, " "), "exit_code", result.ExitCode, "error", err)
	} else if result.Ran {
		a.logger.Debug("hook ran", "command", strings.Join(result.Command, " "))
	}
}

// setupColor applies the configured color mode to the color package.
func setupColor(mode string) {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	}
	// "auto" keeps the package's TTY detection.
}

// parseDate accepts a plain date or a full RFC 3339 timestamp. Plain dates
// are anchored at midnight UTC.
func parseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD or RFC 3339", s)
	}
	t = t.UTC()
	return &t, nil
}
