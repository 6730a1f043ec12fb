package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/goleak"

	"github.com/standardbeagle/orc/internal/parser"
	"github.com/standardbeagle/orc/internal/scanner"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

// TestRunLeavesNoGoroutinesRunning guards the worker pool's shutdown path:
// every worker and the reducer goroutine must exit once Run returns.
func TestRunLeavesNoGoroutinesRunning(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.py"), "def a():\n    return 1\n")
	tasks := []scanner.Task{{Path: filepath.Join(dir, "a.py"), RelPath: "a.py"}}

	o := New(parser.NewRegistry(), 2, nil)
	if _, _, err := o.Run(context.Background(), tasks); err != nil {
		t.Fatal(err)
	}
}

func TestRunMergesAllFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.py"), "def a():\n    return 1\n")
	writeFile(t, filepath.Join(dir, "b.py"), "def b():\n    return 2\n")

	tasks := []scanner.Task{
		{Path: filepath.Join(dir, "a.py"), RelPath: "a.py"},
		{Path: filepath.Join(dir, "b.py"), RelPath: "b.py"},
	}

	var progressCalls int
	o := New(parser.NewRegistry(), 2, func(done, total int) { progressCalls++ })
	result, stats, err := o.Run(context.Background(), tasks)
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesProcessed != 2 || stats.FilesFailed != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(result.Functions) != 2 {
		t.Fatalf("expected 2 merged functions, got %d: %v", len(result.Functions), result.Functions)
	}
	if progressCalls == 0 {
		t.Fatalf("expected at least one progress callback")
	}
}

func TestRunHandlesUnreadableFileAsParseError(t *testing.T) {
	tasks := []scanner.Task{{Path: "/nonexistent/nope.py", RelPath: "nope.py"}}
	o := New(parser.NewRegistry(), 1, nil)
	result, stats, err := o.Run(context.Background(), tasks)
	if err != nil {
		t.Fatal(err)
	}
	if stats.FilesFailed != 1 {
		t.Fatalf("expected 1 failed file, got %d", stats.FilesFailed)
	}
	if f, ok := result.Files["/nonexistent/nope.py"]; !ok || f.ParseError == "" {
		t.Fatalf("expected file record with ParseError set, got %+v", result.Files)
	}
}

func TestRunRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tasks := []scanner.Task{{Path: "a.py", RelPath: "a.py"}, {Path: "b.py", RelPath: "b.py"}}
	o := New(parser.NewRegistry(), 1, nil)
	_, stats, err := o.Run(ctx, tasks)
	if err != nil {
		t.Fatal(err)
	}
	if !stats.Cancelled {
		t.Fatalf("expected Cancelled=true when context is already done")
	}
}
