package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	root := t.TempDir()

	cfg, err := Load(root, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ProjectRoot != root && cfg.ProjectRoot != mustAbs(t, root) {
		t.Fatalf("unexpected project root %q", cfg.ProjectRoot)
	}
	if cfg.CacheTTL != DefaultCacheTTL {
		t.Fatalf("expected default cache ttl, got %v", cfg.CacheTTL)
	}
	if cfg.MaxWorkers != nil {
		t.Fatalf("expected auto (nil) max workers by default")
	}
	if _, err := os.Stat(cfg.CacheDir); err != nil {
		t.Fatalf("expected cache dir to be created: %v", err)
	}
}

func TestLoadRejectsMissingRoot(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope"), ""); err == nil {
		t.Fatalf("expected ConfigError for missing project_root")
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	root := t.TempDir()
	yamlPath := filepath.Join(root, "orc_config.yaml")
	body := "cache_ttl: 1m\nmax_workers: 4\nlog_level: debug\nignore_patterns:\n  - \"**/fixtures/**\"\n"
	if err := os.WriteFile(yamlPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root, yamlPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.CacheTTL != time.Minute {
		t.Fatalf("expected 1m cache ttl, got %v", cfg.CacheTTL)
	}
	if cfg.MaxWorkers == nil || *cfg.MaxWorkers != 4 {
		t.Fatalf("expected max_workers=4, got %v", cfg.MaxWorkers)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected log_level=debug, got %q", cfg.LogLevel)
	}
	found := false
	for _, p := range cfg.IgnorePatterns {
		if p == "**/fixtures/**" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected custom ignore pattern to be appended, got %v", cfg.IgnorePatterns)
	}
}

func TestLoadRejectsNonMappingYAML(t *testing.T) {
	root := t.TempDir()
	yamlPath := filepath.Join(root, "orc_config.yaml")
	if err := os.WriteFile(yamlPath, []byte("- a\n- b\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(root, yamlPath); err == nil {
		t.Fatalf("expected ConfigError for non-mapping YAML")
	}
}

func TestEnvOverridesYAML(t *testing.T) {
	root := t.TempDir()
	t.Setenv("ORC_LOG_LEVEL", "warn")
	t.Setenv("ORC_MAX_WORKERS", "auto")
	t.Setenv("ORC_IGNORE_PATTERNS", "foo,bar; baz")

	cfg, err := Load(root, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected env log_level to win, got %q", cfg.LogLevel)
	}
	if cfg.MaxWorkers != nil {
		t.Fatalf("expected auto sentinel from env override")
	}
	want := map[string]bool{"foo": true, "bar": true, "baz": true}
	for _, p := range cfg.IgnorePatterns {
		delete(want, p)
	}
	if len(want) != 0 {
		t.Fatalf("missing env ignore patterns: %v", want)
	}
}

func TestWorkersResolvesAuto(t *testing.T) {
	cfg := &Config{MaxWorkers: nil}
	if cfg.Workers() < 1 {
		t.Fatalf("expected at least 1 worker, got %d", cfg.Workers())
	}
	n := 7
	cfg.MaxWorkers = &n
	if cfg.Workers() != 7 {
		t.Fatalf("expected explicit worker count to win, got %d", cfg.Workers())
	}
}

func mustAbs(t *testing.T, p string) string {
	t.Helper()
	abs, err := filepath.Abs(p)
	if err != nil {
		t.Fatal(err)
	}
	return abs
}
