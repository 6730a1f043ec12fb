package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/standardbeagle/orc/internal/config"
)

func testConfig(t *testing.T, root string) *config.Config {
	t.Helper()
	cfg, err := config.Load(root, filepath.Join(root, "missing_orc_config.yaml"))
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	return cfg
}

func TestWatcherTriggersOnceAfterDebounceWindow(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.py"), []byte("x = 1\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	cfg := testConfig(t, root)

	triggered := make(chan struct{}, 8)
	w, err := New(cfg, 50*time.Millisecond, func(ctx context.Context) error {
		triggered <- struct{}{}
		return nil
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)
	defer w.Close()

	// Two writes inside one debounce window should collapse into a single
	// trigger call.
	path := filepath.Join(root, "a.py")
	if err := os.WriteFile(path, []byte("x = 2\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := os.WriteFile(path, []byte("x = 3\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case <-triggered:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected a trigger within the debounce window")
	}

	select {
	case <-triggered:
		t.Fatalf("expected exactly one trigger for two writes inside one debounce window")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherIgnoresExcludedPaths(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "node_modules"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cfg := testConfig(t, root)

	triggered := make(chan struct{}, 8)
	w, err := New(cfg, 50*time.Millisecond, func(ctx context.Context) error {
		triggered <- struct{}{}
		return nil
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)
	defer w.Close()

	if err := os.WriteFile(filepath.Join(root, "node_modules", "dep.js"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case <-triggered:
		t.Fatalf("expected no trigger for a change under an ignored directory")
	case <-time.After(300 * time.Millisecond):
	}
}
