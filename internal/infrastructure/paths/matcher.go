// Package paths matches report-relative paths against exclude globs.
package paths

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// GlobMatcher matches slash-separated paths against doublestar patterns.
// It implements the application.PathMatcher interface.
type GlobMatcher struct{}

// Match reports whether rel matches any of the patterns. Patterns without a
// slash are also tried against the base name, so "*_generated.swift"
// excludes the file at any depth.
func (GlobMatcher) Match(rel string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	rel = ToSlash(rel)
	for _, pattern := range patterns {
		if matchPattern(rel, ToSlash(pattern)) {
			return true
		}
	}
	return false
}

func matchPattern(rel, pattern string) bool {
	if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
		return true
	}
	if !strings.Contains(pattern, "/") {
		if ok, err := doublestar.Match(pattern, path.Base(rel)); err == nil && ok {
			return true
		}
	}
	return false
}

// ValidPatterns returns the patterns doublestar rejects as malformed.
func ValidPatterns(patterns []string) (bad []string) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(ToSlash(p)) {
			bad = append(bad, p)
		}
	}
	return bad
}

// ToSlash normalizes path separators to forward slashes.
func ToSlash(p string) string {
	return filepath.ToSlash(p)
}
