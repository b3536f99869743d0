package logging

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Entry is a single changelog record. Every mutating command appends one.
type Entry struct {
	Time   time.Time `json:"time"`
	Op     string    `json:"op"`
	TaskID string    `json:"task_id,omitempty"`
	Title  string    `json:"title,omitempty"`
	Detail string    `json:"detail,omitempty"`
}

// Changelog appends JSONL mutation records for one data file.
type Changelog struct {
	path string
}

// OpenChangelog resolves the changelog file for a data file and ensures its
// directory exists. Each data file gets its own changelog, named by a slug
// of the file name plus a hash of the full path.
func OpenChangelog(logDir, dataFile string) (*Changelog, error) {
	if logDir == "" {
		return nil, fmt.Errorf("log dir is empty")
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	return &Changelog{path: ChangelogPath(logDir, dataFile)}, nil
}

// ChangelogPath returns the changelog path for a data file without creating
// anything.
func ChangelogPath(logDir, dataFile string) string {
	abs := dataFile
	if a, err := filepath.Abs(dataFile); err == nil {
		abs = a
	}
	name := fmt.Sprintf("%s-%s.jsonl", slugify(filepath.Base(abs)), hashPath(abs))
	return filepath.Join(logDir, name)
}

// Path returns the changelog file path.
func (c *Changelog) Path() string {
	return c.path
}

// Append writes one entry. The file is opened per call so concurrent
// taskdeck invocations interleave whole lines.
func (c *Changelog) Append(e Entry) error {
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal changelog entry: %w", err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open changelog: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write changelog entry: %w", err)
	}
	return nil
}

func slugify(input string) string {
	if strings.TrimSpace(input) == "" {
		return "tasks"
	}

	var b strings.Builder
	lastUnderscore := false
	for i := 0; i < len(input); i++ {
		c := input[i]
		valid := (c >= 'A' && c <= 'Z') ||
			(c >= 'a' && c <= 'z') ||
			(c >= '0' && c <= '9') ||
			c == '.' || c == '_' || c == '-'
		if !valid {
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		}
		b.WriteByte(c)
		lastUnderscore = false
	}

	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		return "tasks"
	}
	return slug
}

func hashPath(input string) string {
	sum := sha1.Sum([]byte(input))
	return hex.EncodeToString(sum[:])[:8]
}

// Tail writes the tail of a changelog file to w, optionally following.
func Tail(w io.Writer, path string, n int, follow bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open changelog: %w", err)
	}
	defer file.Close()

	// If n > 0, seek to show only approximately the last n lines.
	if n > 0 {
		if err := tailSeek(file, n); err != nil {
			return fmt.Errorf("seek to tail position: %w", err)
		}
	}

	if follow {
		return tailFollow(w, file)
	}

	_, err = io.Copy(w, file)
	return err
}

// tailSeek seeks to a position that shows approximately the last n lines.
func tailSeek(file *os.File, n int) error {
	const avgLineLength = 120

	stat, err := file.Stat()
	if err != nil {
		return err
	}

	size := stat.Size()
	if size < avgLineLength*int64(n) {
		_, err = file.Seek(0, io.SeekStart)
		return err
	}

	offset := size - int64(n*avgLineLength)
	if offset < 0 {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return err
	}

	// Discard the partial first line.
	buf := make([]byte, 1)
	for {
		if _, err := file.Read(buf); err != nil {
			break
		}
		if buf[0] == '\n' {
			break
		}
	}

	return nil
}

// tailFollow follows a file like tail -f.
func tailFollow(w io.Writer, file *os.File) error {
	if _, err := io.Copy(w, file); err != nil {
		return err
	}

	for {
		_, err := io.Copy(w, file)
		if err != nil {
			return err
		}

		time.Sleep(100 * time.Millisecond)

		var buf [1]byte
		_, err = file.Read(buf[:])
		if err != nil {
			if err == io.EOF {
				continue
			}
			return err
		}
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
	}
}
