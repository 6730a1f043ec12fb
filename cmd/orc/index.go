package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/orc/internal/orchestrator"
	"github.com/standardbeagle/orc/internal/parser"
	"github.com/standardbeagle/orc/internal/resolver"
	"github.com/standardbeagle/orc/internal/scanner"
	"github.com/standardbeagle/orc/internal/semantic"
	"github.com/standardbeagle/orc/internal/store"
	"github.com/standardbeagle/orc/internal/toc"
	"github.com/standardbeagle/orc/internal/watch"
)

func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "write a default orc_config.yaml at the project root",
		Action: func(c *cli.Context) error {
			e := envFrom(c)
			path := filepath.Join(e.cfg.ProjectRoot, "orc_config.yaml")
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := writeDefaultConfig(path, e.cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}
}

func indexCommand() *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "scan the project, parse every file, and persist the index",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "ignore cached parse results"},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "suppress progress output"},
			&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "keep running and re-index on filesystem changes"},
		},
		Action: func(c *cli.Context) error {
			e := envFrom(c)
			quiet := c.Bool("quiet")
			force := c.Bool("force")

			runOnce := func(ctx context.Context) error {
				start := time.Now()
				stats, err := runIndexPipeline(ctx, e, quiet, force)
				if err != nil {
					return err
				}
				if !quiet {
					fmt.Printf("indexed %d files (%d failed) in %s\n", stats.FilesProcessed, stats.FilesFailed, time.Since(start).Round(time.Millisecond))
				}
				return nil
			}

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			if err := runOnce(ctx); err != nil {
				return err
			}
			if !c.Bool("watch") && os.Getenv("ORC_WATCH") == "" {
				return nil
			}

			w, err := watch.New(e.cfg, watch.DefaultDebounce, func(ctx context.Context) error {
				return runOnce(ctx)
			})
			if err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}
			if err := w.Start(); err != nil {
				return fmt.Errorf("watch project root: %w", err)
			}
			if !quiet {
				fmt.Println("watching for changes, press ctrl-c to stop")
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() { errCh <- w.Run(ctx) }()

			select {
			case <-sigCh:
				cancel()
				return <-errCh
			case err := <-errCh:
				return err
			}
		},
	}
}

// runIndexPipeline runs one full scan → parse → resolve → store → TOC
// cycle, per spec.md §4/§5's orchestration order, and invalidates the
// analytical-query cache so the next query reflects the new index.
// Per spec.md §8 S6, files whose cached parse result is still fresh
// (unchanged mtime) skip re-parsing entirely unless force is set.
func runIndexPipeline(ctx context.Context, e *env, quiet, force bool) (orchestrator.Stats, error) {
	sc, err := scanner.New(e.cfg)
	if err != nil {
		return orchestrator.Stats{}, err
	}
	tasks, err := sc.Scan(ctx)
	if err != nil {
		return orchestrator.Stats{}, err
	}

	c, err := openCache(e)
	if err != nil {
		return orchestrator.Stats{}, err
	}

	merged, toParse := splitCached(c, tasks, force)

	var progress orchestrator.ProgressFunc
	if !quiet {
		progress = func(done, total int) { fmt.Printf("\rparsing %d/%d", done, total) }
	}
	orch := orchestrator.New(parser.NewRegistry(), e.cfg.Workers(), progress)
	fresh, stats, err := orch.Run(ctx, toParse)
	if !quiet && progress != nil {
		fmt.Println()
	}
	if err != nil {
		return stats, err
	}
	storeFresh(c, toParse, fresh)
	merged.Merge(fresh)
	stats.FilesProcessed = len(tasks)

	resolved := resolver.Resolve(merged)

	db, err := openStore(e)
	if err != nil {
		return stats, err
	}
	defer db.Close()

	if err := db.ApplyParseResult(merged, time.Now()); err != nil {
		return stats, err
	}

	blob, err := json.Marshal(resolved)
	if err != nil {
		return stats, fmt.Errorf("marshal resolved dependencies: %w", err)
	}
	if err := db.SaveGraph(store.GraphTypeResolvedEdges, blob); err != nil {
		return stats, err
	}

	gen := toc.New(db, semantic.NewNameSplitter())
	if _, err := gen.Build(); err != nil {
		return stats, err
	}
	if err := gen.Save(c); err != nil {
		return stats, err
	}

	a := newAnalyzer(e, db, c)
	if err := a.Invalidate(); err != nil {
		return stats, err
	}

	return stats, nil
}
