package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherDetectsReportChanges(t *testing.T) {
	tmpDir := t.TempDir()
	report := filepath.Join(tmpDir, "test_coverage.json")

	w, err := New(WithDebounce(50 * time.Millisecond))
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	if err := w.WatchFile(report); err != nil {
		t.Fatalf("watch file: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	events := w.Events(ctx)

	if err := os.WriteFile(report, []byte(`{"data":[]}`), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	select {
	case <-events:
	case <-ctx.Done():
		t.Fatal("timeout waiting for file change event")
	}
}

func TestWatcherIgnoresSiblingFiles(t *testing.T) {
	tmpDir := t.TempDir()

	w, err := New(WithDebounce(50 * time.Millisecond))
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	if err := w.WatchFile(filepath.Join(tmpDir, "test_coverage.json")); err != nil {
		t.Fatalf("watch file: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	events := w.Events(ctx)

	if err := os.WriteFile(filepath.Join(tmpDir, "other.json"), []byte("{}"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	select {
	case <-events:
		t.Fatal("should not receive event for unwatched sibling")
	case <-ctx.Done():
	}
}

func TestWatchFileMissingDirectory(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	if err := w.WatchFile(filepath.Join(t.TempDir(), "missing", "report.json")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestWatcherDebounces(t *testing.T) {
	tmpDir := t.TempDir()
	report := filepath.Join(tmpDir, "test_coverage.json")

	w, err := New(WithDebounce(100 * time.Millisecond))
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	if err := w.WatchFile(report); err != nil {
		t.Fatalf("watch file: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	events := w.Events(ctx)

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(report, []byte(`{"data":[] }`+string(rune('a'+i))), 0o644); err != nil {
			t.Fatalf("write file: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	eventCount := 0
	timeout := time.After(300 * time.Millisecond)

loop:
	for {
		select {
		case <-events:
			eventCount++
		case <-timeout:
			break loop
		}
	}

	if eventCount != 1 {
		t.Fatalf("expected 1 debounced event, got %d", eventCount)
	}
}

func TestIsWatched(t *testing.T) {
	dir := t.TempDir()
	w := &Watcher{files: map[string]struct{}{filepath.Join(dir, "a.json"): {}}}

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(dir, "a.json"), true},
		{filepath.Join(dir, "sub", "..", "a.json"), true},
		{filepath.Join(dir, "b.json"), false},
	}

	for _, tt := range tests {
		if got := w.isWatched(tt.path); got != tt.want {
			t.Errorf("isWatched(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
