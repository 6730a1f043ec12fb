// Command orc is the codebase-intelligence-engine CLI: it drives the
// scan → parse → resolve → store → TOC pipeline and serves the
// analytical queries (complexity, dead code, security, hotspots,
// dependency graph, codebase map) over the result. Grounded on the
// teacher's cmd/lci/main.go App/Before/cleanupFuncs shape, trimmed from
// its MCP/search/server surface down to the indexing and query
// subcommands this engine actually has.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/standardbeagle/orc/internal/analysis"
	"github.com/standardbeagle/orc/internal/cache"
	"github.com/standardbeagle/orc/internal/config"
	"github.com/standardbeagle/orc/internal/logging"
	"github.com/standardbeagle/orc/internal/store"
)

// Version is overridden at build time via -ldflags.
var Version = "dev"

// env bundles everything a command needs once config has been resolved.
// Built once in Before and threaded through cli.Context.App.Metadata —
// every command shares one *config.Config and *zap.Logger per process,
// matching the teacher's package-level indexer/projectRoot pattern but
// without the globals.
type env struct {
	cfg *config.Config
	log *zap.Logger
}

func envFrom(c *cli.Context) *env {
	return c.App.Metadata["env"].(*env)
}

// openStore opens the project's graph.db, creating the .orc directory
// if this is the first run.
func openStore(e *env) (*store.Store, error) {
	dbPath := filepath.Join(e.cfg.ProjectRoot, ".orc", "graph.db")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create .orc directory: %w", err)
	}
	return store.Open(dbPath)
}

func openCache(e *env) (*cache.Cache, error) {
	return cache.Open(e.cfg.CacheDir)
}

// openStoreAndCache opens both backing stores a query command needs:
// the relational index and the analytical-query result cache.
func openStoreAndCache(e *env) (*store.Store, *cache.Cache, error) {
	db, err := openStore(e)
	if err != nil {
		return nil, nil, err
	}
	c, err := openCache(e)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, c, nil
}

func newAnalyzer(e *env, db *store.Store, c *cache.Cache) *analysis.Analyzer {
	return analysis.New(db, c, config.NewMatcher(e.cfg.IgnorePatterns))
}

func main() {
	app := &cli.App{
		Name:    "orc",
		Usage:   "codebase intelligence engine: index a project and query its structure",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "project root to index or query",
				Value:   ".",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to orc_config.yaml (defaults to <root>/orc_config.yaml)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn, or error; overrides orc_config.yaml's log_level",
			},
		},
		Before: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("root"), c.String("config"))
			if err != nil {
				return err
			}
			if lvl := c.String("log-level"); lvl != "" {
				cfg.LogLevel = lvl
			}
			logger, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			c.App.Metadata["env"] = &env{cfg: cfg, log: logger}
			return nil
		},
		Commands: []*cli.Command{
			initCommand(),
			indexCommand(),
			queryCommand(),
			statsCommand(),
			complexityCommand(),
			deadCommand(),
			hotspotsCommand(),
			ignoreCommand(),
			configCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "orc: %v\n", err)
		os.Exit(1)
	}
}
