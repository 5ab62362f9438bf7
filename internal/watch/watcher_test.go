package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReportsNewPDF(t *testing.T) {
	dir := t.TempDir()
	seen := make(chan string, 1)

	w := New(dir, 50*time.Millisecond, func(path string) {
		seen <- path
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(dir, "offer.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatalf("Failed to write PDF: %v", err)
	}

	select {
	case got := <-seen:
		if got != path {
			t.Errorf("Expected %s, got %s", path, got)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Timed out waiting for watcher event")
	}
}

func TestWatcherIgnoresNonPDF(t *testing.T) {
	dir := t.TempDir()
	seen := make(chan string, 1)

	w := New(dir, 50*time.Millisecond, func(path string) {
		seen <- path
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	select {
	case got := <-seen:
		t.Errorf("Unexpected event for %s", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherDebouncesRepeatedWrites(t *testing.T) {
	dir := t.TempDir()
	seen := make(chan string, 4)

	w := New(dir, 150*time.Millisecond, func(path string) {
		seen <- path
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(dir, "offer.pdf")
	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("%PDF-1.4 chunk"), 0644); err != nil {
			t.Fatalf("Failed to write PDF: %v", err)
		}
		time.Sleep(30 * time.Millisecond)
	}

	select {
	case <-seen:
	case <-time.After(3 * time.Second):
		t.Fatal("Timed out waiting for debounced event")
	}

	select {
	case <-seen:
		t.Error("Expected a single debounced event for repeated writes")
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcherMissingDir(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "nope"), 50*time.Millisecond, func(string) {})

	if err := w.Run(context.Background()); err == nil {
		t.Fatal("Expected error for missing directory")
	}
}
