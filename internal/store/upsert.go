package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/standardbeagle/orc/pkg/model"
)

// extras bundles the Function/Class fields that don't get a dedicated
// column, serialized into function_index.extras_json / class_index.extras_json.
type functionExtras struct {
	Params      []model.Param `json:"params,omitempty"`
	Docstring   string        `json:"docstring,omitempty"`
	IsExported  bool          `json:"is_exported"`
	IsAsync     bool          `json:"is_async"`
	ReturnType  string        `json:"return_type,omitempty"`
	Decorators  []string      `json:"decorators,omitempty"`
	SourceSlice string        `json:"source_slice,omitempty"`
}

type classExtras struct {
	Methods    []model.Method `json:"methods,omitempty"`
	Docstring  string         `json:"docstring,omitempty"`
	Decorators []string       `json:"decorators,omitempty"`
	LineEnd    int            `json:"line_end,omitempty"`
}

// UpsertFileIndex writes or replaces one file_index row.
func (s *Store) UpsertFileIndex(f *model.File) error {
	metaJSON, err := json.Marshal(f.Metadata)
	if err != nil {
		return wrapStoreErr("marshal file metadata", err)
	}
	_, err = s.writeDB.Exec(`
		INSERT INTO file_index (path, language, framework, loc, last_modified, hash, metadata_json, parse_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			language=excluded.language, framework=excluded.framework, loc=excluded.loc,
			last_modified=excluded.last_modified, hash=excluded.hash,
			metadata_json=excluded.metadata_json, parse_error=excluded.parse_error
	`, f.Path, string(f.Language), f.Framework, f.LOC, f.LastModified, f.ContentHash, string(metaJSON), f.ParseError)
	return wrapStoreErr("upsert_file_index", err)
}

// BulkUpsertFunctions REPLACEs every function row in one transaction.
func (s *Store) BulkUpsertFunctions(functions map[string]*model.Function) error {
	tx, err := s.writeDB.Begin()
	if err != nil {
		return wrapStoreErr("bulk_upsert_functions:begin", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO function_index
			(id, file_path, name, language, line_start, line_end, complexity, calls_json, extras_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return wrapStoreErr("bulk_upsert_functions:prepare", err)
	}
	defer stmt.Close()

	for id, fn := range functions {
		callsJSON, err := json.Marshal(fn.Calls)
		if err != nil {
			return wrapStoreErr("bulk_upsert_functions:marshal_calls", err)
		}
		extrasJSON, err := json.Marshal(functionExtras{
			Params: fn.Params, Docstring: fn.Docstring, IsExported: fn.IsExported,
			IsAsync: fn.IsAsync, ReturnType: fn.ReturnType, Decorators: fn.Decorators,
			SourceSlice: fn.SourceSlice,
		})
		if err != nil {
			return wrapStoreErr("bulk_upsert_functions:marshal_extras", err)
		}
		if _, err := stmt.Exec(id, fn.File, fn.Name, string(fn.Language), fn.LineStart, fn.LineEnd,
			fn.Complexity, string(callsJSON), string(extrasJSON)); err != nil {
			return wrapStoreErr("bulk_upsert_functions:exec", err)
		}
	}
	return wrapStoreErr("bulk_upsert_functions:commit", tx.Commit())
}

// BulkUpsertClasses REPLACEs every class row in one transaction.
func (s *Store) BulkUpsertClasses(classes map[string]*model.Class) error {
	tx, err := s.writeDB.Begin()
	if err != nil {
		return wrapStoreErr("bulk_upsert_classes:begin", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO class_index (id, file_path, name, language, bases_json, extras_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return wrapStoreErr("bulk_upsert_classes:prepare", err)
	}
	defer stmt.Close()

	for id, cls := range classes {
		basesJSON, err := json.Marshal(cls.Bases)
		if err != nil {
			return wrapStoreErr("bulk_upsert_classes:marshal_bases", err)
		}
		extrasJSON, err := json.Marshal(classExtras{
			Methods: cls.Methods, Docstring: cls.Docstring, Decorators: cls.Decorators, LineEnd: cls.LineEnd,
		})
		if err != nil {
			return wrapStoreErr("bulk_upsert_classes:marshal_extras", err)
		}
		if _, err := stmt.Exec(id, cls.File, cls.Name, string(cls.Language), string(basesJSON), string(extrasJSON)); err != nil {
			return wrapStoreErr("bulk_upsert_classes:exec", err)
		}
	}
	return wrapStoreErr("bulk_upsert_classes:commit", tx.Commit())
}

// BulkUpsertImports deletes filePath's existing import rows, then inserts
// the given module->count map.
func (s *Store) BulkUpsertImports(filePath string, modules map[string]int) error {
	tx, err := s.writeDB.Begin()
	if err != nil {
		return wrapStoreErr("bulk_upsert_imports:begin", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM import_index WHERE file_path = ?`, filePath); err != nil {
		return wrapStoreErr("bulk_upsert_imports:delete", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO import_index (file_path, module, count) VALUES (?, ?, ?)`)
	if err != nil {
		return wrapStoreErr("bulk_upsert_imports:prepare", err)
	}
	defer stmt.Close()
	for module, count := range modules {
		if _, err := stmt.Exec(filePath, module, count); err != nil {
			return wrapStoreErr("bulk_upsert_imports:exec", err)
		}
	}
	return wrapStoreErr("bulk_upsert_imports:commit", tx.Commit())
}

// BulkUpsertExports deletes filePath's existing export rows, then inserts
// the given symbol->info map.
func (s *Store) BulkUpsertExports(filePath string, exports map[string]model.ExportInfo) error {
	tx, err := s.writeDB.Begin()
	if err != nil {
		return wrapStoreErr("bulk_upsert_exports:begin", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM export_index WHERE file_path = ?`, filePath); err != nil {
		return wrapStoreErr("bulk_upsert_exports:delete", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO export_index (file_path, symbol, kind, line) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return wrapStoreErr("bulk_upsert_exports:prepare", err)
	}
	defer stmt.Close()
	for symbol, info := range exports {
		if _, err := stmt.Exec(filePath, symbol, string(info.Kind), info.Line); err != nil {
			return wrapStoreErr("bulk_upsert_exports:exec", err)
		}
	}
	return wrapStoreErr("bulk_upsert_exports:commit", tx.Commit())
}

// ClearFileIndexForPath cascades a delete of path's file_index row across
// every dependent table (foreign keys carry ON DELETE CASCADE).
func (s *Store) ClearFileIndexForPath(path string) error {
	_, err := s.writeDB.Exec(`DELETE FROM file_index WHERE path = ?`, path)
	return wrapStoreErr("clear_file_index_for_path", err)
}

// IterManifestPaths returns every path currently recorded in index_manifest.
func (s *Store) IterManifestPaths() ([]string, error) {
	rows, err := s.writeDB.Query(`SELECT path FROM index_manifest`)
	if err != nil {
		return nil, wrapStoreErr("iter_manifest_paths", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, wrapStoreErr("iter_manifest_paths:scan", err)
		}
		paths = append(paths, p)
	}
	return paths, wrapStoreErr("iter_manifest_paths:rows", rows.Err())
}

// UpsertManifestEntry records that path was indexed at the given moment.
func (s *Store) UpsertManifestEntry(path string, language model.Language, lastModified float64, hash string, indexedAt time.Time) error {
	_, err := s.writeDB.Exec(`
		INSERT INTO index_manifest (path, language, last_modified, hash, last_indexed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			language=excluded.language, last_modified=excluded.last_modified,
			hash=excluded.hash, last_indexed_at=excluded.last_indexed_at
	`, path, string(language), lastModified, hash, float64(indexedAt.Unix()))
	return wrapStoreErr("upsert_manifest_entry", err)
}

// DeleteManifestEntry removes path's manifest row without touching
// file_index (used when a manifest path was never actually re-scanned).
func (s *Store) DeleteManifestEntry(path string) error {
	_, err := s.writeDB.Exec(`DELETE FROM index_manifest WHERE path = ?`, path)
	return wrapStoreErr("delete_manifest_entry", err)
}

// bulkUpsertOverlay deletes filePath's rows from an overlay table and
// reinserts rows built by rowFn, sharing the clear-then-insert shape every
// overlay table follows.
func bulkUpsertOverlay(tx *sql.Tx, table, insertSQL, filePath string, n int, rowFn func(i int) []any) error {
	if _, err := tx.Exec(`DELETE FROM `+table+` WHERE file_path = ?`, filePath); err != nil {
		return wrapStoreErr("bulk_upsert_overlay:delete:"+table, err)
	}
	if n == 0 {
		return nil
	}
	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return wrapStoreErr("bulk_upsert_overlay:prepare:"+table, err)
	}
	defer stmt.Close()
	for i := 0; i < n; i++ {
		if _, err := stmt.Exec(rowFn(i)...); err != nil {
			return wrapStoreErr("bulk_upsert_overlay:exec:"+table, err)
		}
	}
	return nil
}

// ApplyFileOverlays clears and reinserts every semantic-overlay row scoped
// to filePath, all within one transaction — the same clear-then-insert
// durability rule spec.md §4.8 requires for imports/exports.
func (s *Store) ApplyFileOverlays(filePath string, pr *model.ParseResult) error {
	tx, err := s.writeDB.Begin()
	if err != nil {
		return wrapStoreErr("apply_file_overlays:begin", err)
	}
	defer tx.Rollback()

	apiEndpoints := filterByFile(pr.APIEndpoints, filePath, func(e model.APIEndpoint) string { return e.File })
	dbQueries := filterByFile(pr.DatabaseQueries, filePath, func(e model.DatabaseQuery) string { return e.File })
	errorHandlers := filterByFile(pr.ErrorHandlers, filePath, func(e model.ErrorHandler) string { return e.File })
	configUsages := filterByFile(pr.ConfigUsages, filePath, func(e model.ConfigUsage) string { return e.File })
	sideEffects := filterByFile(pr.SideEffects, filePath, func(e model.SideEffect) string { return e.File })
	concerns := filterByFile(pr.CrossCuttingConcerns, filePath, func(e model.CrossCuttingConcern) string { return e.File })
	risks := filterByFile(pr.SecurityRisks, filePath, func(e model.SecurityRisk) string { return e.File })
	dataModels := filterByFile(pr.DataModels, filePath, func(e model.DataModel) string { return e.File })
	concurrency := filterByFile(pr.ConcurrencyPatterns, filePath, func(e model.ConcurrencyPattern) string { return e.File })

	steps := []func() error{
		func() error {
			return bulkUpsertOverlay(tx, "api_endpoints",
				`INSERT INTO api_endpoints (file_path, route, method, handler, line) VALUES (?, ?, ?, ?, ?)`,
				filePath, len(apiEndpoints), func(i int) []any {
					e := apiEndpoints[i]
					return []any{filePath, e.Route, e.Method, e.Handler, e.Line}
				})
		},
		func() error {
			return bulkUpsertOverlay(tx, "database_queries",
				`INSERT INTO database_queries (file_path, orm_type, table_name, line, statement) VALUES (?, ?, ?, ?, ?)`,
				filePath, len(dbQueries), func(i int) []any {
					e := dbQueries[i]
					return []any{filePath, e.ORMType, e.TableName, e.Line, e.Statement}
				})
		},
		func() error {
			return bulkUpsertOverlay(tx, "error_handlers",
				`INSERT INTO error_handlers (file_path, handler_type, line) VALUES (?, ?, ?)`,
				filePath, len(errorHandlers), func(i int) []any {
					e := errorHandlers[i]
					return []any{filePath, e.HandlerType, e.Line}
				})
		},
		func() error {
			return bulkUpsertOverlay(tx, "config_usage",
				`INSERT INTO config_usage (file_path, key, kind, default_value, line) VALUES (?, ?, ?, ?, ?)`,
				filePath, len(configUsages), func(i int) []any {
					e := configUsages[i]
					return []any{filePath, e.Key, string(e.Kind), e.Default, e.Line}
				})
		},
		func() error {
			return bulkUpsertOverlay(tx, "side_effects",
				`INSERT INTO side_effects (file_path, effect_type, target, line) VALUES (?, ?, ?, ?)`,
				filePath, len(sideEffects), func(i int) []any {
					e := sideEffects[i]
					return []any{filePath, e.EffectType, e.Target, e.Line}
				})
		},
		func() error {
			return bulkUpsertOverlay(tx, "cross_cutting_concerns",
				`INSERT INTO cross_cutting_concerns (file_path, concern_type, line) VALUES (?, ?, ?)`,
				filePath, len(concerns), func(i int) []any {
					e := concerns[i]
					return []any{filePath, e.ConcernType, e.Line}
				})
		},
		func() error {
			return bulkUpsertOverlay(tx, "security_risks",
				`INSERT INTO security_risks (file_path, risk_type, risk_level, reason, line, snippet) VALUES (?, ?, ?, ?, ?, ?)`,
				filePath, len(risks), func(i int) []any {
					e := risks[i]
					return []any{filePath, e.RiskType, string(e.RiskLevel), e.Reason, e.Line, e.Snippet}
				})
		},
		func() error {
			return bulkUpsertOverlay(tx, "data_models",
				`INSERT INTO data_models (file_path, name, kind, line) VALUES (?, ?, ?, ?)`,
				filePath, len(dataModels), func(i int) []any {
					e := dataModels[i]
					return []any{filePath, e.Name, e.Kind, e.Line}
				})
		},
		func() error {
			return bulkUpsertOverlay(tx, "concurrency_patterns",
				`INSERT INTO concurrency_patterns (file_path, pattern_type, line) VALUES (?, ?, ?)`,
				filePath, len(concurrency), func(i int) []any {
					e := concurrency[i]
					return []any{filePath, e.PatternType, e.Line}
				})
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return wrapStoreErr("apply_file_overlays:commit", tx.Commit())
}

func filterByFile[T any](items []T, filePath string, fileOf func(T) string) []T {
	var out []T
	for _, it := range items {
		if fileOf(it) == filePath {
			out = append(out, it)
		}
	}
	return out
}
