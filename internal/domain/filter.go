package domain

import (
	"fmt"
	"iter"
	"path/filepath"
	"strings"
)

// DefaultSourceDir is the top-level directory whose files are reported.
const DefaultSourceDir = "Sources"

// SourceEntry is a FileEntry that passed the source filter, together with its
// path relative to the filter root.
type SourceEntry struct {
	FileEntry
	RelPath string
}

// SelectSources lazily yields the entries whose path relative to root starts
// with the directory dir. The match on the first segment is exact and
// case-sensitive. Input order is preserved.
//
// If an entry lies outside root the sequence yields ErrOutsideRoot once and
// stops.
func SelectSources(entries []FileEntry, root, dir string) iter.Seq2[SourceEntry, error] {
	return func(yield func(SourceEntry, error) bool) {
		for _, entry := range entries {
			rel, err := RelativePath(root, entry.Filename)
			if err != nil {
				yield(SourceEntry{}, err)
				return
			}
			if TopDir(rel) != dir {
				continue
			}
			if !yield(SourceEntry{FileEntry: entry, RelPath: rel}, nil) {
				return
			}
		}
	}
}

// RelativePath returns filename relative to root. Relative filenames are
// taken to be relative to root already. Filenames that resolve outside root
// return ErrOutsideRoot.
func RelativePath(root, filename string) (string, error) {
	// TODO: compare case-insensitively on filesystems that fold case.
	target := filename
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return "", fmt.Errorf("%w: %s (root %s): %v", ErrOutsideRoot, filename, root, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s (root %s)", ErrOutsideRoot, filename, root)
	}
	return rel, nil
}

// TopDir returns the first segment of a relative path, or "" for ".".
func TopDir(rel string) string {
	if rel == "." || rel == "" {
		return ""
	}
	first, _, _ := strings.Cut(filepath.ToSlash(rel), "/")
	return first
}
