// Package pidfile persists the process identifier of the active background
// recording as a single decimal line.
package pidfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
)

// ErrNotFound is returned when no record exists.
var ErrNotFound = errors.New("pid record not found")

// ParseError reports a record whose content is not a positive integer.
type ParseError struct {
	Path    string
	Content string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse pid record %s: invalid content %q", e.Path, e.Content)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Store reads and writes one PID record. Writers serialize on a sibling lock
// file and replace the record by rename, so readers never see a partial write.
type Store struct {
	path string
	lock *flock.Flock
}

// New returns a store for the record at path.
func New(path string) *Store {
	return &Store{path: path, lock: flock.New(path + ".lock")}
}

// Path returns the record location.
func (s *Store) Path() string { return s.path }

// Write replaces the record with pid.
func (s *Store) Write(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("write pid record: invalid pid %d", pid)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create pid directory: %w", err)
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock pid record: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create pid temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(strconv.Itoa(pid) + "\n"); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write pid temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close pid temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod pid temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace pid record: %w", err)
	}
	return nil
}

// Read returns the recorded PID, ErrNotFound, or a *ParseError.
func (s *Store) Read() (int, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("read pid record: %w", err)
	}
	content := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(content)
	if err != nil {
		return 0, &ParseError{Path: s.path, Content: content, Err: err}
	}
	if pid <= 0 {
		return 0, &ParseError{Path: s.path, Content: content, Err: errors.New("pid must be positive")}
	}
	return pid, nil
}

// Remove deletes the record. A missing record is not an error.
func (s *Store) Remove() error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock pid record: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove pid record: %w", err)
	}
	return nil
}
