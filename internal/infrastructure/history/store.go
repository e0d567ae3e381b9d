package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/covtable/internal/application"
	"github.com/felixgeelhaar/covtable/internal/domain"
)

// DefaultMaxEntries is the default number of history entries to keep.
const DefaultMaxEntries = 100

// FileStore keeps recorded totals in a JSON file next to the project.
// Concurrent appends are serialized through a sibling ".lock" file.
type FileStore struct {
	Path       string
	MaxEntries int
}

// Open returns a store for path. It matches application.Service.OpenHistory.
func Open(path string) application.HistoryStore {
	return &FileStore{Path: path, MaxEntries: DefaultMaxEntries}
}

// Load reads the history. A missing file is an empty history.
func (s *FileStore) Load() (domain.History, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.History{}, nil
		}
		return domain.History{}, err
	}

	var h domain.History
	if err := json.Unmarshal(data, &h); err != nil {
		return domain.History{}, fmt.Errorf("decode %s: %w", s.Path, err)
	}

	return h, nil
}

// Save replaces the history file. The data is written to a temporary file
// in the same directory and renamed over the target.
func (s *FileStore) Save(h domain.History) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.Path)
}

// Append adds an entry under the file lock and trims the oldest entries
// beyond MaxEntries.
func (s *FileStore) Append(entry domain.HistoryEntry) (err error) {
	lock, err := s.acquireLock()
	if err != nil {
		return fmt.Errorf("lock %s: %w", s.Path, err)
	}
	defer func() {
		if releaseErr := lock.release(); err == nil {
			err = releaseErr
		}
	}()

	h, err := s.Load()
	if err != nil {
		return err
	}

	h.Entries = append(h.Entries, entry)

	max := s.MaxEntries
	if max <= 0 {
		max = DefaultMaxEntries
	}
	if len(h.Entries) > max {
		h.Entries = h.Entries[len(h.Entries)-max:]
	}

	return s.Save(h)
}

var _ application.HistoryStore = (*FileStore)(nil)
