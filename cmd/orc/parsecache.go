package main

import (
	"github.com/standardbeagle/orc/internal/cache"
	"github.com/standardbeagle/orc/internal/scanner"
	"github.com/standardbeagle/orc/pkg/model"
)

// parseCacheKey namespaces a task's cached ParseResult fragment so it
// never collides with the TOC or analytical-query cache entries sharing
// the same cache directory.
func parseCacheKey(t scanner.Task) string {
	return "parse:" + t.RelPath
}

// splitCached partitions tasks into files whose last parse is still
// fresh (per internal/cache's mtime check) and files that need
// (re-)parsing, per spec.md §8 S6: re-indexing an unchanged project
// reuses cached parse results instead of re-running every parser.
// force bypasses the cache entirely, treating every task as changed.
func splitCached(cch *cache.Cache, tasks []scanner.Task, force bool) (cachedMerge *model.ParseResult, toParse []scanner.Task) {
	cachedMerge = model.NewParseResult()
	for _, t := range tasks {
		if !force {
			var frag model.ParseResult
			if ok, _ := cch.Get(parseCacheKey(t), &frag); ok {
				cachedMerge.Merge(&frag)
				continue
			}
		}
		toParse = append(toParse, t)
	}
	return cachedMerge, toParse
}

// storeFresh extracts each task's own contribution out of fresh (the
// orchestrator's merged result over toParse) and caches it individually,
// keyed to that file's mtime, so the next unchanged re-index can skip it.
func storeFresh(cch *cache.Cache, toParse []scanner.Task, fresh *model.ParseResult) {
	for _, t := range toParse {
		frag := fileFragment(fresh, t.Path)
		_ = cch.Set(parseCacheKey(t), frag, 0, t.Path)
	}
}

// fileFragment rebuilds the single-file ParseResult that parser.ParseFile
// would have produced for path, filtering every merged collection down
// to entries belonging to that one file.
func fileFragment(pr *model.ParseResult, path string) *model.ParseResult {
	out := model.NewParseResult()
	if f, ok := pr.Files[path]; ok {
		out.Files[path] = f
	}
	for id, fn := range pr.Functions {
		if fn.File == path {
			out.Functions[id] = fn
		}
	}
	for id, cl := range pr.Classes {
		if cl.File == path {
			out.Classes[id] = cl
		}
	}
	if modules, ok := pr.Imports[path]; ok {
		out.Imports[path] = modules
	}
	if symbols, ok := pr.Exports[path]; ok {
		out.Exports[path] = symbols
	}
	for _, d := range pr.ImportsDetailed {
		if d.SourceFile == path {
			out.ImportsDetailed = append(out.ImportsDetailed, d)
		}
	}
	for _, ep := range pr.EntryPoints {
		if ep.File == path {
			out.EntryPoints = append(out.EntryPoints, ep)
		}
	}
	for _, e := range pr.APIEndpoints {
		if e.File == path {
			out.APIEndpoints = append(out.APIEndpoints, e)
		}
	}
	for _, q := range pr.DatabaseQueries {
		if q.File == path {
			out.DatabaseQueries = append(out.DatabaseQueries, q)
		}
	}
	for _, h := range pr.ErrorHandlers {
		if h.File == path {
			out.ErrorHandlers = append(out.ErrorHandlers, h)
		}
	}
	for _, u := range pr.ConfigUsages {
		if u.File == path {
			out.ConfigUsages = append(out.ConfigUsages, u)
		}
	}
	for _, s := range pr.SideEffects {
		if s.File == path {
			out.SideEffects = append(out.SideEffects, s)
		}
	}
	for _, cc := range pr.CrossCuttingConcerns {
		if cc.File == path {
			out.CrossCuttingConcerns = append(out.CrossCuttingConcerns, cc)
		}
	}
	for _, r := range pr.SecurityRisks {
		if r.File == path {
			out.SecurityRisks = append(out.SecurityRisks, r)
		}
	}
	for _, dm := range pr.DataModels {
		if dm.File == path {
			out.DataModels = append(out.DataModels, dm)
		}
	}
	for _, cp := range pr.ConcurrencyPatterns {
		if cp.File == path {
			out.ConcurrencyPatterns = append(out.ConcurrencyPatterns, cp)
		}
	}
	return out
}
