package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/standardbeagle/orc/internal/config"
)

// splitCommaList parses a "foo,bar, baz" CLI value into trimmed,
// non-empty fields for the file_extensions config key.
func splitCommaList(v string) []string {
	var out []string
	for _, f := range strings.Split(v, ",") {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// fileConfig mirrors orc_config.yaml's shape for the show/set/add-ignore
// subcommands, which read and rewrite the file directly rather than
// going through config.Config (config.Load layers defaults and env vars
// on top, which would bake those into the file on every write).
type fileConfig struct {
	ProjectRoot    string   `yaml:"project_root,omitempty"`
	CacheDir       string   `yaml:"cache_dir,omitempty"`
	CacheTTL       string   `yaml:"cache_ttl,omitempty"`
	MaxWorkers     string   `yaml:"max_workers,omitempty"`
	IgnorePatterns []string `yaml:"ignore_patterns,omitempty"`
	FileExtensions []string `yaml:"file_extensions,omitempty"`
	LogLevel       string   `yaml:"log_level,omitempty"`
}

func readFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &fileConfig{}, nil
		}
		return nil, err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &fc, nil
}

func writeFileConfig(path string, fc *fileConfig) error {
	out, err := yaml.Marshal(fc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

// writeDefaultConfig seeds orc_config.yaml with the values Load already
// resolved for cfg, so `orc init` produces a file that documents the
// effective defaults rather than an empty shell.
func writeDefaultConfig(path string, cfg *config.Config) error {
	fc := &fileConfig{
		CacheTTL:       cfg.CacheTTL.String(),
		IgnorePatterns: cfg.IgnorePatterns,
		FileExtensions: cfg.FileExtensions,
		LogLevel:       cfg.LogLevel,
	}
	return writeFileConfig(path, fc)
}

func configPathFor(c *cli.Context, e *env) string {
	if p := c.String("config"); p != "" {
		return p
	}
	return filepath.Join(e.cfg.ProjectRoot, "orc_config.yaml")
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "inspect or edit orc_config.yaml",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "print the effective (defaults + file + env) configuration",
				Action: func(c *cli.Context) error {
					e := envFrom(c)
					cfg := e.cfg
					fmt.Printf("project_root:    %s\n", cfg.ProjectRoot)
					fmt.Printf("cache_dir:       %s\n", cfg.CacheDir)
					fmt.Printf("cache_ttl:       %s\n", cfg.CacheTTL)
					if cfg.MaxWorkers != nil {
						fmt.Printf("max_workers:     %d\n", *cfg.MaxWorkers)
					} else {
						fmt.Printf("max_workers:     auto (%d)\n", cfg.Workers())
					}
					fmt.Printf("log_level:       %s\n", cfg.LogLevel)
					fmt.Printf("file_extensions: %v\n", cfg.FileExtensions)
					fmt.Printf("ignore_patterns: %v\n", cfg.IgnorePatterns)
					return nil
				},
			},
			{
				Name:      "set",
				Usage:     "set one key in orc_config.yaml",
				ArgsUsage: "<key> <value>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return fmt.Errorf("usage: orc config set <key> <value>")
					}
					e := envFrom(c)
					path := configPathFor(c, e)
					fc, err := readFileConfig(path)
					if err != nil {
						return err
					}
					key, value := c.Args().Get(0), c.Args().Get(1)
					switch key {
					case "cache_dir":
						fc.CacheDir = value
					case "cache_ttl":
						fc.CacheTTL = value
					case "max_workers":
						fc.MaxWorkers = value
					case "log_level":
						fc.LogLevel = value
					case "file_extensions":
						fc.FileExtensions = splitCommaList(value)
					default:
						return fmt.Errorf("unknown config key %q", key)
					}
					if err := writeFileConfig(path, fc); err != nil {
						return err
					}
					fmt.Printf("set %s = %s in %s\n", key, value, path)
					return nil
				},
			},
			{
				Name:      "add-ignore",
				Usage:     "add a glob pattern to orc_config.yaml's ignore_patterns",
				ArgsUsage: "<pattern>",
				Action: func(c *cli.Context) error {
					if c.NArg() != 1 {
						return fmt.Errorf("usage: orc config add-ignore <pattern>")
					}
					e := envFrom(c)
					path := configPathFor(c, e)
					fc, err := readFileConfig(path)
					if err != nil {
						return err
					}
					pattern := c.Args().Get(0)
					for _, existing := range fc.IgnorePatterns {
						if existing == pattern {
							fmt.Printf("%s is already in ignore_patterns\n", pattern)
							return nil
						}
					}
					fc.IgnorePatterns = append(fc.IgnorePatterns, pattern)
					if err := writeFileConfig(path, fc); err != nil {
						return err
					}
					fmt.Printf("added %s to ignore_patterns in %s\n", pattern, path)
					return nil
				},
			},
		},
	}
}

// ignoreCommand backs `orc ignore <pattern>`, appending to .orcignore —
// the lighter-weight sibling of `orc config add-ignore`, matching the
// teacher's convention of a standalone ignore file alongside the main
// config (spec.md §4.1/§6).
func ignoreCommand() *cli.Command {
	return &cli.Command{
		Name:      "ignore",
		Usage:     "add a pattern to .orcignore",
		ArgsUsage: "<pattern>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("usage: orc ignore <pattern>")
			}
			e := envFrom(c)
			pattern := c.Args().Get(0)
			if err := config.AppendOrcignore(e.cfg.ProjectRoot, pattern); err != nil {
				return err
			}
			fmt.Printf("added %s to .orcignore\n", pattern)
			return nil
		},
	}
}
