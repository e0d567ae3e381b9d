package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// appendLock is an exclusive hold on the store's sidecar lock file. The
// platform files supply lockExclusive and unlock.
type appendLock struct {
	file *os.File
}

func (s *FileStore) lockPath() string {
	return s.Path + ".lock"
}

// acquireLock blocks until no other process is appending to the store.
func (s *FileStore) acquireLock() (*appendLock, error) {
	path := s.lockPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600) // #nosec G304 - derived from configured history path
	if err != nil {
		return nil, fmt.Errorf("open history lock: %w", err)
	}
	if err := lockExclusive(file); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	return &appendLock{file: file}, nil
}

// release drops the lock. Releasing twice is a no-op.
func (l *appendLock) release() error {
	if l == nil || l.file == nil {
		return nil
	}
	file := l.file
	l.file = nil
	return errors.Join(unlock(file), file.Close())
}
