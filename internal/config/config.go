// Package config implements C1 (configuration) and C2 (the ignore
// matcher). Config is a read-only value object constructed once by Load
// and threaded explicitly into every other component's constructor — the
// teacher's singleton config package is deliberately not reproduced here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	orcerrors "github.com/standardbeagle/orc/internal/errors"
)

// DefaultCacheTTL matches the teacher's cache-freshness convention of a
// five-minute default window for derived data.
const DefaultCacheTTL = 5 * time.Minute

var defaultFileExtensions = []string{
	".py", ".js", ".jsx", ".ts", ".tsx", ".html", ".css", ".json", ".yaml", ".yml", ".md",
}

// Config is the resolved, read-only configuration for one orc run.
type Config struct {
	ProjectRoot    string
	CacheDir       string
	CacheTTL       time.Duration
	MaxWorkers     *int // nil means "auto": runtime.NumCPU()-1, minimum 1
	IgnorePatterns []string
	FileExtensions []string
	LogLevel       string
}

// rawConfig is the shape of orc_config.yaml. Every field is a pointer or
// has a zero value meaning "unset", so Load can tell "absent" apart from
// "explicitly zero" when layering YAML over defaults.
type rawConfig struct {
	ProjectRoot    string   `yaml:"project_root"`
	CacheDir       string   `yaml:"cache_dir"`
	CacheTTL       string   `yaml:"cache_ttl"`
	MaxWorkers     string   `yaml:"max_workers"`
	IgnorePatterns []string `yaml:"ignore_patterns"`
	FileExtensions []string `yaml:"file_extensions"`
	LogLevel       string   `yaml:"log_level"`
}

// Load resolves a Config for projectRoot: built-in defaults, then
// configPath (if it exists; pass "" to default to
// "<projectRoot>/orc_config.yaml"), then ORC_* environment variables.
func Load(projectRoot string, configPath string) (*Config, error) {
	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, orcerrors.NewConfigError("project_root", projectRoot, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil || !info.IsDir() {
		return nil, orcerrors.NewConfigError("project_root", absRoot, fmt.Errorf("not a directory"))
	}

	cfg := &Config{
		ProjectRoot:    absRoot,
		CacheDir:       filepath.Join(absRoot, ".orc", "cache"),
		CacheTTL:       DefaultCacheTTL,
		MaxWorkers:     nil,
		IgnorePatterns: append([]string(nil), defaultIgnorePatterns...),
		FileExtensions: append([]string(nil), defaultFileExtensions...),
		LogLevel:       "info",
	}

	if configPath == "" {
		configPath = filepath.Join(absRoot, "orc_config.yaml")
	}
	if raw, err := readRawConfig(configPath); err != nil {
		return nil, err
	} else if raw != nil {
		if err := applyRaw(cfg, raw); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	absCache, err := filepath.Abs(cfg.CacheDir)
	if err != nil {
		return nil, orcerrors.NewConfigError("cache_dir", cfg.CacheDir, err)
	}
	cfg.CacheDir = absCache
	if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
		return nil, orcerrors.NewConfigError("cache_dir", cfg.CacheDir, err)
	}

	return cfg, nil
}

func readRawConfig(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, orcerrors.NewConfigError("config_file", path, err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, orcerrors.NewConfigError("config_file", path, err)
	}
	if len(node.Content) > 0 && node.Content[0].Kind != yaml.MappingNode {
		return nil, orcerrors.NewConfigError("config_file", path, fmt.Errorf("top-level YAML value must be a mapping"))
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, orcerrors.NewConfigError("config_file", path, err)
	}
	return &raw, nil
}

func applyRaw(cfg *Config, raw *rawConfig) error {
	if raw.ProjectRoot != "" {
		cfg.ProjectRoot = raw.ProjectRoot
	}
	if raw.CacheDir != "" {
		cfg.CacheDir = raw.CacheDir
	}
	if raw.CacheTTL != "" {
		d, err := time.ParseDuration(raw.CacheTTL)
		if err != nil {
			return orcerrors.NewConfigError("cache_ttl", raw.CacheTTL, err)
		}
		cfg.CacheTTL = d
	}
	if raw.MaxWorkers != "" {
		w, err := parseMaxWorkers(raw.MaxWorkers)
		if err != nil {
			return orcerrors.NewConfigError("max_workers", raw.MaxWorkers, err)
		}
		cfg.MaxWorkers = w
	}
	if len(raw.IgnorePatterns) > 0 {
		cfg.IgnorePatterns = append(append([]string(nil), defaultIgnorePatterns...), raw.IgnorePatterns...)
	}
	if len(raw.FileExtensions) > 0 {
		cfg.FileExtensions = raw.FileExtensions
	}
	if raw.LogLevel != "" {
		cfg.LogLevel = raw.LogLevel
	}
	return nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("ORC_PROJECT_ROOT"); v != "" {
		cfg.ProjectRoot = v
	}
	if v := os.Getenv("ORC_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("ORC_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return orcerrors.NewConfigError("cache_ttl", v, err)
		}
		cfg.CacheTTL = d
	}
	if v := os.Getenv("ORC_MAX_WORKERS"); v != "" {
		w, err := parseMaxWorkers(v)
		if err != nil {
			return orcerrors.NewConfigError("max_workers", v, err)
		}
		cfg.MaxWorkers = w
	}
	if v := os.Getenv("ORC_IGNORE_PATTERNS"); v != "" {
		cfg.IgnorePatterns = append(append([]string(nil), defaultIgnorePatterns...), splitList(v)...)
	}
	if v := os.Getenv("ORC_FILE_EXTENSIONS"); v != "" {
		cfg.FileExtensions = splitList(v)
	}
	if v := os.Getenv("ORC_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	return nil
}

// splitList splits on comma or semicolon, trims whitespace, and drops
// empty tokens (spec.md §4.1: "lists from env are comma- or
// semicolon-separated").
func splitList(v string) []string {
	fields := strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// parseMaxWorkers returns nil for "auto" (unbounded sentinel) or a
// pointer to the parsed integer.
func parseMaxWorkers(v string) (*int, error) {
	if strings.EqualFold(strings.TrimSpace(v), "auto") {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Workers resolves MaxWorkers to a concrete goroutine count: the
// configured value, or runtime.NumCPU()-1 (minimum 1) when auto.
func (c *Config) Workers() int {
	if c.MaxWorkers != nil {
		if *c.MaxWorkers < 1 {
			return 1
		}
		return *c.MaxWorkers
	}
	if n := runtime.NumCPU() - 1; n > 0 {
		return n
	}
	return 1
}
