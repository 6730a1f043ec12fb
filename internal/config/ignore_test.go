package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFastSegmentHit(t *testing.T) {
	m := NewMatcher(nil)
	cases := map[string]bool{
		"src/main.py":                    false,
		"node_modules/left-pad/index.js": true,
		"a/b/.git/HEAD":                  true,
		"venv/lib/site-packages/x.py":    true,
	}
	for path, want := range cases {
		if got := m.FastSegmentHit(path); got != want {
			t.Errorf("FastSegmentHit(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestShouldIgnoreGlobPatterns(t *testing.T) {
	m := NewMatcher([]string{"**/*.min.js", "dist/"})
	if !m.ShouldIgnore("vendor_js/jquery.min.js") {
		t.Errorf("expected *.min.js to be ignored")
	}
	if !m.ShouldIgnore("dist/bundle.js") {
		t.Errorf("expected dist/ directory pattern to be ignored")
	}
	if m.ShouldIgnore("src/app.js") {
		t.Errorf("did not expect src/app.js to be ignored")
	}
}

func TestShouldIgnoreBareTokenAnywhere(t *testing.T) {
	m := NewMatcher([]string{"__pycache__"})
	if !m.ShouldIgnore("pkg/sub/__pycache__/mod.pyc") {
		t.Errorf("expected bare token to match as a directory segment anywhere")
	}
}

func TestLoadOrcignoreMissingFileIsNotError(t *testing.T) {
	root := t.TempDir()
	patterns, err := LoadOrcignore(root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if patterns != nil {
		t.Fatalf("expected nil patterns for missing .orcignore, got %v", patterns)
	}
}

func TestLoadOrcignoreSkipsBlankAndComments(t *testing.T) {
	root := t.TempDir()
	body := "# comment\n\nvendor/\n*.pyc\n"
	if err := os.WriteFile(filepath.Join(root, ".orcignore"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	patterns, err := LoadOrcignore(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(patterns) != 2 || patterns[0] != "vendor/" || patterns[1] != "*.pyc" {
		t.Fatalf("unexpected patterns: %v", patterns)
	}
}

func TestAppendOrcignore(t *testing.T) {
	root := t.TempDir()
	if err := AppendOrcignore(root, "**/secrets/**"); err != nil {
		t.Fatal(err)
	}
	patterns, err := LoadOrcignore(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(patterns) != 1 || patterns[0] != "**/secrets/**" {
		t.Fatalf("unexpected patterns after append: %v", patterns)
	}
}
