package store

import (
	"time"

	"github.com/standardbeagle/orc/pkg/model"
)

// ApplyParseResult persists a full scan's merged ParseResult following the
// durability rule spec.md §4.8 sets out: for every file produced by the
// scan, clear its existing rows and insert the fresh ones, then diff the
// manifest against the scanned path set and clear whatever was removed.
// Each file's write runs in its own transaction (see BulkUpsert* / ClearFileIndexForPath) so
// one file's failure never rolls back another file's already-committed state.
func (s *Store) ApplyParseResult(pr *model.ParseResult, scanTime time.Time) error {
	scanned := make(map[string]bool, len(pr.Files))
	functionsByFile := groupByFile(pr.Functions, func(fn *model.Function) string { return fn.File })
	classesByFile := groupByFile(pr.Classes, func(cls *model.Class) string { return cls.File })

	for path, f := range pr.Files {
		scanned[path] = true

		if err := s.ClearFileIndexForPath(path); err != nil {
			return err
		}
		if err := s.UpsertFileIndex(f); err != nil {
			return err
		}
		if err := s.BulkUpsertFunctions(functionsByFile[path]); err != nil {
			return err
		}
		if err := s.BulkUpsertClasses(classesByFile[path]); err != nil {
			return err
		}
		if err := s.BulkUpsertImports(path, pr.Imports[path]); err != nil {
			return err
		}
		if err := s.BulkUpsertExports(path, pr.Exports[path]); err != nil {
			return err
		}
		if err := s.ApplyFileOverlays(path, pr); err != nil {
			return err
		}
		if err := s.UpsertManifestEntry(path, f.Language, f.LastModified, f.ContentHash, scanTime); err != nil {
			return err
		}
	}

	return s.purgeRemovedPaths(scanned)
}

func groupByFile[T any](items map[string]T, fileOf func(T) string) map[string]map[string]T {
	grouped := make(map[string]map[string]T)
	for id, item := range items {
		file := fileOf(item)
		if grouped[file] == nil {
			grouped[file] = make(map[string]T)
		}
		grouped[file][id] = item
	}
	return grouped
}

// purgeRemovedPaths clears every manifest path not present in scanned —
// files that existed on a previous run but disappeared from this one.
func (s *Store) purgeRemovedPaths(scanned map[string]bool) error {
	manifestPaths, err := s.IterManifestPaths()
	if err != nil {
		return err
	}
	for _, path := range manifestPaths {
		if scanned[path] {
			continue
		}
		if err := s.ClearFileIndexForPath(path); err != nil {
			return err
		}
		if err := s.DeleteManifestEntry(path); err != nil {
			return err
		}
	}
	return nil
}

