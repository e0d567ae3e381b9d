package domain

import (
	"errors"
	"path/filepath"
	"testing"
)

func entry(name string, covered, count int, percent float64) FileEntry {
	return FileEntry{
		Filename: name,
		Summary:  FileSummary{Lines: LineSummary{Covered: covered, Count: count, Percent: percent}},
	}
}

func collect(t *testing.T, entries []FileEntry, root string) []SourceEntry {
	t.Helper()
	var out []SourceEntry
	for e, err := range SelectSources(entries, root, DefaultSourceDir) {
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		out = append(out, e)
	}
	return out
}

func TestSelectSourcesKeepsOnlySources(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "work", "pkg")
	entries := []FileEntry{
		entry(filepath.Join(root, "Sources", "Foo", "Bar.swift"), 45, 50, 90),
		entry(filepath.Join(root, "Tests", "FooTests", "BarTests.swift"), 10, 10, 100),
		entry(filepath.Join(root, "Sources", "Foo", "Baz.swift"), 1, 4, 25),
		entry(filepath.Join(root, "sources", "lower.swift"), 1, 1, 100),
		entry(filepath.Join(root, "SourcesExtra", "x.swift"), 1, 1, 100),
	}

	got := collect(t, entries, root)
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	if got[0].RelPath != filepath.Join("Sources", "Foo", "Bar.swift") {
		t.Fatalf("unexpected first rel path %q", got[0].RelPath)
	}
	if got[1].RelPath != filepath.Join("Sources", "Foo", "Baz.swift") {
		t.Fatalf("order not preserved: %q", got[1].RelPath)
	}
}

func TestSelectSourcesIdempotent(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "work", "pkg")
	entries := []FileEntry{
		entry(filepath.Join(root, "Sources", "A.swift"), 1, 2, 50),
		entry(filepath.Join(root, "Tests", "B.swift"), 1, 2, 50),
		entry(filepath.Join(root, "Sources", "C.swift"), 2, 2, 100),
	}

	first := collect(t, entries, root)
	again := make([]FileEntry, 0, len(first))
	for _, e := range first {
		again = append(again, e.FileEntry)
	}
	second := collect(t, again, root)

	if len(first) != len(second) {
		t.Fatalf("expected %d entries after refilter, got %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("entry %d changed: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestSelectSourcesOutsideRoot(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "work", "pkg")
	entries := []FileEntry{
		entry(filepath.Join(root, "Sources", "A.swift"), 1, 2, 50),
		entry(filepath.Join(string(filepath.Separator), "elsewhere", "Sources", "B.swift"), 1, 2, 50),
		entry(filepath.Join(root, "Sources", "C.swift"), 2, 2, 100),
	}

	var yielded int
	var gotErr error
	for _, err := range SelectSources(entries, root, DefaultSourceDir) {
		if err != nil {
			gotErr = err
			continue
		}
		yielded++
	}
	if !errors.Is(gotErr, ErrOutsideRoot) {
		t.Fatalf("expected ErrOutsideRoot, got %v", gotErr)
	}
	if yielded != 1 {
		t.Fatalf("expected iteration to stop after the error, yielded %d", yielded)
	}
}

func TestSelectSourcesStopsWhenConsumerBreaks(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "work")
	entries := []FileEntry{
		entry(filepath.Join(root, "Sources", "A.swift"), 1, 1, 100),
		entry(filepath.Join(root, "Sources", "B.swift"), 1, 1, 100),
	}
	seen := 0
	for range SelectSources(entries, root, DefaultSourceDir) {
		seen++
		break
	}
	if seen != 1 {
		t.Fatalf("expected one entry before break, got %d", seen)
	}
}

func TestRelativePath(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "work", "pkg")
	cases := []struct {
		name     string
		filename string
		want     string
		wantErr  bool
	}{
		{"absolute under root", filepath.Join(root, "Sources", "A.swift"), filepath.Join("Sources", "A.swift"), false},
		{"relative name", filepath.Join("Sources", "A.swift"), filepath.Join("Sources", "A.swift"), false},
		{"root itself", root, ".", false},
		{"sibling", filepath.Join(string(filepath.Separator), "work", "other", "A.swift"), "", true},
		{"escapes via dotdot", filepath.Join("..", "A.swift"), "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := RelativePath(root, tc.filename)
			if tc.wantErr {
				if !errors.Is(err, ErrOutsideRoot) {
					t.Fatalf("expected ErrOutsideRoot, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTopDir(t *testing.T) {
	if TopDir(filepath.Join("Sources", "A", "B.swift")) != "Sources" {
		t.Fatal("expected Sources")
	}
	if TopDir("README.md") != "README.md" {
		t.Fatal("expected single segment to be its own top dir")
	}
	if TopDir(".") != "" {
		t.Fatal("expected empty top dir for root")
	}
}

func TestReportFiles(t *testing.T) {
	if _, err := (Report{}).Files(); !errors.Is(err, ErrNoRunData) {
		t.Fatalf("expected ErrNoRunData, got %v", err)
	}
	r := Report{Data: []RunData{{Files: []FileEntry{entry("a", 1, 1, 100)}}, {Files: nil}}}
	files, err := r.Files()
	if err != nil {
		t.Fatalf("files: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected first run's files, got %d", len(files))
	}
}
