package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/taskdeck/taskdeck/internal/task"
)

// SQLiteStore persists the list in a SQLite database. Tag lists are
// JSON-encoded into a text column; timestamps are stored as RFC 3339 text.
type SQLiteStore struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tasks (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL,
	priority     TEXT NOT NULL,
	category     TEXT NOT NULL DEFAULT '',
	tags         TEXT NOT NULL DEFAULT '[]',
	due_date     TEXT,
	created_at   TEXT,
	updated_at   TEXT,
	completed_at TEXT,
	ord          INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// OpenSQLite opens (creating if needed) a SQLite-backed store at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize database schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Load reads all tasks in manual order.
func (s *SQLiteStore) Load() (*task.List, error) {
	l := task.NewList()

	if v, err := s.metaValue("schema_version"); err != nil {
		return nil, err
	} else if v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse schema_version: %w", err)
		}
		l.SchemaVersion = n
	}
	if v, err := s.metaValue("name"); err != nil {
		return nil, err
	} else {
		l.Name = v
	}

	rows, err := s.db.Query(`
		SELECT id, title, description, status, priority, category, tags,
		       due_date, created_at, updated_at, completed_at, ord
		FROM tasks ORDER BY ord`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t task.Task
		var tags string
		var due, created, updated, completed sql.NullString
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status,
			&t.Priority, &t.Category, &tags,
			&due, &created, &updated, &completed, &t.Order); err != nil {
			return nil, fmt.Errorf("scan task row: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil {
			return nil, fmt.Errorf("parse tags for %s: %w", t.ID, err)
		}
		if len(t.Tags) == 0 {
			t.Tags = nil
		}
		if t.DueDate, err = parseTimeColumn(due); err != nil {
			return nil, fmt.Errorf("parse due_date for %s: %w", t.ID, err)
		}
		if t.CreatedAt, err = parseTimeColumn(created); err != nil {
			return nil, fmt.Errorf("parse created_at for %s: %w", t.ID, err)
		}
		if t.UpdatedAt, err = parseTimeColumn(updated); err != nil {
			return nil, fmt.Errorf("parse updated_at for %s: %w", t.ID, err)
		}
		if t.CompletedAt, err = parseTimeColumn(completed); err != nil {
			return nil, fmt.Errorf("parse completed_at for %s: %w", t.ID, err)
		}
		l.Tasks = append(l.Tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task rows: %w", err)
	}
	if l.Tasks == nil {
		l.Tasks = []task.Task{}
	}

	return l, nil
}

// Save replaces all rows in one transaction.
func (s *SQLiteStore) Save(l *task.List) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO tasks (id, title, description, status, priority, category,
		                   tags, due_date, created_at, updated_at, completed_at, ord)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range l.Tasks {
		t := &l.Tasks[i]
		tags, err := json.Marshal(t.Tags)
		if err != nil {
			return fmt.Errorf("marshal tags for %s: %w", t.ID, err)
		}
		if _, err := stmt.Exec(t.ID, t.Title, t.Description, string(t.Status),
			string(t.Priority), t.Category, string(tags),
			formatTimeColumn(t.DueDate), formatTimeColumn(t.CreatedAt),
			formatTimeColumn(t.UpdatedAt), formatTimeColumn(t.CompletedAt),
			t.Order); err != nil {
			return fmt.Errorf("insert task %s: %w", t.ID, err)
		}
	}

	if err := setMeta(tx, "schema_version", strconv.Itoa(l.SchemaVersion)); err != nil {
		return err
	}
	if err := setMeta(tx, "name", l.Name); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) metaValue(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read meta %s: %w", key, err)
	}
	return value, nil
}

func setMeta(tx *sql.Tx, key, value string) error {
	if _, err := tx.Exec(`
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value); err != nil {
		return fmt.Errorf("write meta %s: %w", key, err)
	}
	return nil
}

func parseTimeColumn(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatTimeColumn(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}
