// Package orchestrator implements C6: a worker pool over scanned files
// feeding a single-threaded reducer, grounded on the teacher's
// internal/indexing/pipeline_processor.go (FileProcessor/ProcessFiles
// worker shape, panic recovery via defer/recover) but using
// golang.org/x/sync/errgroup — a teacher dependency already used
// elsewhere in the corpus — instead of hand-rolled goroutine/channel
// bookkeeping for the pool itself.
package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/orc/internal/parser"
	"github.com/standardbeagle/orc/internal/scanner"
	"github.com/standardbeagle/orc/pkg/model"
)

// Stats reports what one orchestrator run did.
type Stats struct {
	FilesProcessed int
	FilesFailed    int
	Cancelled      bool
}

// ProgressFunc is invoked every ProgressEvery completed files, and once
// more on completion.
type ProgressFunc func(done, total int)

// Orchestrator runs parser.Registry-backed parsing over a set of
// scanner.Task values with bounded parallelism.
type Orchestrator struct {
	Registry      *parser.Registry
	Workers       int
	ProgressEvery int
	OnProgress    ProgressFunc
}

// New builds an Orchestrator. workers <= 0 is treated as 1.
func New(reg *parser.Registry, workers int, onProgress ProgressFunc) *Orchestrator {
	if workers <= 0 {
		workers = 1
	}
	return &Orchestrator{Registry: reg, Workers: workers, ProgressEvery: 50, OnProgress: onProgress}
}

// Run parses every task, merging results into one ParseResult on a
// single reducer goroutine. ctx cancellation stops new task submission
// but does not abort in-flight parses — they run to completion and are
// still merged, per spec.md §4.6/§5.
func (o *Orchestrator) Run(ctx context.Context, tasks []scanner.Task) (*model.ParseResult, Stats, error) {
	results := make(chan *model.ParseResult, len(tasks))
	g := new(errgroup.Group)
	g.SetLimit(o.Workers)

	submitted := 0
	cancelled := false

submitLoop:
	for _, task := range tasks {
		select {
		case <-ctx.Done():
			cancelled = true
			break submitLoop
		default:
		}

		task := task
		submitted++
		g.Go(func() error {
			results <- parseOneTask(o.Registry, task)
			return nil
		})
	}

	go func() {
		g.Wait()
		close(results)
	}()

	merged := model.NewParseResult()
	done := 0
	failed := 0
	for pr := range results {
		merged.Merge(pr)
		done++
		for _, f := range pr.Files {
			if f.ParseError != "" {
				failed++
			}
		}
		if o.OnProgress != nil && (o.ProgressEvery <= 0 || done%o.ProgressEvery == 0 || done == submitted) {
			o.OnProgress(done, submitted)
		}
	}

	return merged, Stats{FilesProcessed: done, FilesFailed: failed, Cancelled: cancelled}, nil
}

// parseOneTask recovers from a panicking parser so one broken file
// never aborts the pool (spec.md §4.6 step 3).
func parseOneTask(reg *parser.Registry, task scanner.Task) (result *model.ParseResult) {
	lang := parser.LanguageForExt(filepath.Ext(task.Path))
	defer func() {
		if r := recover(); r != nil {
			result = model.NewParseResult()
			result.Files[task.Path] = &model.File{
				Path:       task.Path,
				Language:   lang,
				ParseError: fmt.Sprintf("parser panic: %v", r),
			}
		}
	}()
	return parser.ParseFile(reg, task.Path, lang)
}
