package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/standardbeagle/orc/internal/config"
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

func TestScanHonorsIgnoresAndExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "app.py"), "print('hi')")
	writeFile(t, filepath.Join(root, "README.txt"), "not indexed")
	writeFile(t, filepath.Join(root, "node_modules", "left-pad", "index.js"), "module.exports = {}")
	writeFile(t, filepath.Join(root, ".orcignore"), "vendor/\n")
	writeFile(t, filepath.Join(root, "vendor", "thirdparty.py"), "x = 1")

	cfg, err := config.Load(root, "")
	if err != nil {
		t.Fatal(err)
	}

	sc, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	tasks, err := sc.Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	got := map[string]bool{}
	for _, tk := range tasks {
		got[tk.RelPath] = true
	}
	if !got["app.py"] {
		t.Errorf("expected app.py to be scanned")
	}
	if got["README.txt"] {
		t.Errorf("did not expect README.txt (unaccepted extension)")
	}
	if got["node_modules/left-pad/index.js"] {
		t.Errorf("did not expect node_modules to be scanned")
	}
	if got["vendor/thirdparty.py"] {
		t.Errorf("did not expect .orcignore-excluded vendor/ to be scanned")
	}
}

func TestScanMissingRootIsScanError(t *testing.T) {
	root := t.TempDir()
	cfg, err := config.Load(root, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.RemoveAll(root); err != nil {
		t.Fatal(err)
	}
	sc, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sc.Scan(context.Background()); err == nil {
		t.Fatalf("expected ScanError for removed root")
	}
}
