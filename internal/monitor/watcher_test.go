package monitor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"pakfs/internal/util"
)

func TestWatcherReportsRelativePaths(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "textures"), 0755); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	buf := NewBuffer()
	if err := w.Watch(dir, buf, nil); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "textures", "wall.dds"), []byte("pixels"), 0644); err != nil {
		t.Fatal(err)
	}

	err = util.PollUntil(context.Background(), util.DefaultPollConfig(), func() bool {
		return buf.Pending() > 0
	})
	if err != nil {
		t.Fatalf("no event observed: %v", err)
	}

	got := buf.Drain()
	found := false
	for _, p := range got {
		if p == "textures/wall.dds" {
			found = true
		}
	}
	if !found {
		t.Errorf("Drain = %v, want to contain textures/wall.dds", got)
	}
}

func TestWatcherIgnorePatterns(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	buf := NewBuffer()
	if err := w.Watch(dir, buf, []string{"*.swp", "*.tmp"}); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "scene.json.swp"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "scene.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	err = util.PollUntil(context.Background(), util.DefaultPollConfig(), func() bool {
		return buf.Pending() > 0
	})
	if err != nil {
		t.Fatalf("no event observed: %v", err)
	}

	for _, p := range buf.Drain() {
		if p == "scene.json.swp" {
			t.Error("ignored pattern leaked into buffer")
		}
	}
}

func TestUnwatchReleasesSubdirectoryWatches(t *testing.T) {
	dir := t.TempDir()
	for _, sub := range []string{"a", "a/b", "c"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0755); err != nil {
			t.Fatal(err)
		}
	}

	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	buf := NewBuffer()
	if err := w.Watch(dir, buf, nil); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	if got := len(w.w.WatchList()); got != 4 {
		t.Fatalf("watch handles after Watch = %d, want 4 (root + 3 subdirs)", got)
	}

	w.Unwatch(dir)
	if got := len(w.w.WatchList()); got != 0 {
		t.Errorf("watch handles after Unwatch = %d, want 0", got)
	}
}

func TestWatcherUnwatch(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Close()

	buf := NewBuffer()
	if err := w.Watch(dir, buf, nil); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	w.Unwatch(dir)

	if err := os.WriteFile(filepath.Join(dir, "late.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	// events for unwatched roots must not be routed to the buffer
	cfg := util.PollConfig{Timeout: 300 * time.Millisecond, Interval: 50 * time.Millisecond}
	_ = util.PollUntil(context.Background(), cfg, func() bool {
		return buf.Pending() > 0
	})
	if buf.Pending() != 0 {
		t.Errorf("buffer received %d events after Unwatch", buf.Pending())
	}
}
