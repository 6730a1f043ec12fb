package store

import (
	"encoding/json"
	"strings"

	"github.com/standardbeagle/orc/pkg/model"
)

// SymbolMatch is one row of a SearchSymbols result, spanning functions,
// classes, and bare file paths (spec.md §4.9 TOC-adjacent symbol search,
// but backed directly by the relational store for exact substring hits).
type SymbolMatch struct {
	Kind string `json:"kind"` // "function" | "class" | "file"
	Name string `json:"name"`
	File string `json:"file"`
	Line int    `json:"line,omitempty"`
}

// SearchSymbols matches query as a case-insensitive substring against
// function names, then class names, then file paths, in that order, each
// capped so the combined result never exceeds limit.
func (s *Store) SearchSymbols(query string, limit int) ([]SymbolMatch, error) {
	like := "%" + escapeLike(query) + "%"
	var out []SymbolMatch

	rows, err := s.readDB.Query(`
		SELECT name, file_path, line_start FROM function_index
		WHERE name LIKE ? ESCAPE '\' ORDER BY name LIMIT ?
	`, like, limit)
	if err != nil {
		return nil, wrapStoreErr("search_symbols:functions", err)
	}
	for rows.Next() {
		var name, file string
		var line int
		if err := rows.Scan(&name, &file, &line); err != nil {
			rows.Close()
			return nil, wrapStoreErr("search_symbols:functions:scan", err)
		}
		out = append(out, SymbolMatch{Kind: "function", Name: name, File: file, Line: line})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrapStoreErr("search_symbols:functions:rows", err)
	}
	if len(out) >= limit {
		return out[:limit], nil
	}

	rows, err = s.readDB.Query(`
		SELECT name, file_path, line_start FROM class_index
		WHERE name LIKE ? ESCAPE '\' ORDER BY name LIMIT ?
	`, like, limit-len(out))
	if err != nil {
		return nil, wrapStoreErr("search_symbols:classes", err)
	}
	for rows.Next() {
		var name, file string
		var line int
		if err := rows.Scan(&name, &file, &line); err != nil {
			rows.Close()
			return nil, wrapStoreErr("search_symbols:classes:scan", err)
		}
		out = append(out, SymbolMatch{Kind: "class", Name: name, File: file, Line: line})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, wrapStoreErr("search_symbols:classes:rows", err)
	}
	if len(out) >= limit {
		return out[:limit], nil
	}

	rows, err = s.readDB.Query(`
		SELECT path FROM file_index WHERE path LIKE ? ESCAPE '\' ORDER BY path LIMIT ?
	`, like, limit-len(out))
	if err != nil {
		return nil, wrapStoreErr("search_symbols:files", err)
	}
	defer rows.Close()
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, wrapStoreErr("search_symbols:files:scan", err)
		}
		out = append(out, SymbolMatch{Kind: "file", Name: path, File: path})
	}
	return out, wrapStoreErr("search_symbols:files:rows", rows.Err())
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// FunctionQuery narrows QueryFunctions; zero values mean "no filter".
type FunctionQuery struct {
	NamePattern   string
	MinComplexity int
	FilePattern   string
	Limit         int
	Offset        int
}

// FunctionRow is one function_index row shaped for query responses.
type FunctionRow struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	File       string `json:"file"`
	Language   string `json:"language"`
	LineStart  int    `json:"line_start"`
	LineEnd    int    `json:"line_end"`
	Complexity int    `json:"complexity"`
}

func (s *Store) QueryFunctions(q FunctionQuery) ([]FunctionRow, error) {
	where := []string{"1=1"}
	var args []any
	if q.NamePattern != "" {
		where = append(where, "name LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(q.NamePattern)+"%")
	}
	if q.MinComplexity > 0 {
		where = append(where, "complexity >= ?")
		args = append(args, q.MinComplexity)
	}
	if q.FilePattern != "" {
		where = append(where, "file_path LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(q.FilePattern)+"%")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit, q.Offset)

	rows, err := s.readDB.Query(`
		SELECT id, name, file_path, language, line_start, line_end, complexity
		FROM function_index WHERE `+strings.Join(where, " AND ")+`
		ORDER BY complexity DESC, file_path, line_start LIMIT ? OFFSET ?
	`, args...)
	if err != nil {
		return nil, wrapStoreErr("query_functions", err)
	}
	defer rows.Close()

	var out []FunctionRow
	for rows.Next() {
		var f FunctionRow
		if err := rows.Scan(&f.ID, &f.Name, &f.File, &f.Language, &f.LineStart, &f.LineEnd, &f.Complexity); err != nil {
			return nil, wrapStoreErr("query_functions:scan", err)
		}
		out = append(out, f)
	}
	return out, wrapStoreErr("query_functions:rows", rows.Err())
}

// ClassQuery narrows QueryClasses; zero values mean "no filter".
type ClassQuery struct {
	NamePattern string
	FilePattern string
	Limit       int
	Offset      int
}

type ClassRow struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	File      string `json:"file"`
	Language  string `json:"language"`
	LineStart int    `json:"line_start"`
}

func (s *Store) QueryClasses(q ClassQuery) ([]ClassRow, error) {
	where := []string{"1=1"}
	var args []any
	if q.NamePattern != "" {
		where = append(where, "name LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(q.NamePattern)+"%")
	}
	if q.FilePattern != "" {
		where = append(where, "file_path LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(q.FilePattern)+"%")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit, q.Offset)

	rows, err := s.readDB.Query(`
		SELECT id, name, file_path, language, line_start FROM class_index
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY file_path, line_start LIMIT ? OFFSET ?
	`, args...)
	if err != nil {
		return nil, wrapStoreErr("query_classes", err)
	}
	defer rows.Close()

	var out []ClassRow
	for rows.Next() {
		var c ClassRow
		if err := rows.Scan(&c.ID, &c.Name, &c.File, &c.Language, &c.LineStart); err != nil {
			return nil, wrapStoreErr("query_classes:scan", err)
		}
		out = append(out, c)
	}
	return out, wrapStoreErr("query_classes:rows", rows.Err())
}

// FileQuery narrows QueryFiles; zero values mean "no filter".
type FileQuery struct {
	PathPattern string
	Language    string
	Limit       int
	Offset      int
}

type FileRow struct {
	Path      string `json:"path"`
	Language  string `json:"language"`
	Framework string `json:"framework,omitempty"`
	LOC       int    `json:"loc"`
}

func (s *Store) QueryFiles(q FileQuery) ([]FileRow, error) {
	where := []string{"1=1"}
	var args []any
	if q.PathPattern != "" {
		where = append(where, "path LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(q.PathPattern)+"%")
	}
	if q.Language != "" {
		where = append(where, "language = ?")
		args = append(args, q.Language)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit, q.Offset)

	rows, err := s.readDB.Query(`
		SELECT path, language, framework, loc FROM file_index
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY path LIMIT ? OFFSET ?
	`, args...)
	if err != nil {
		return nil, wrapStoreErr("query_files", err)
	}
	defer rows.Close()

	var out []FileRow
	for rows.Next() {
		var f FileRow
		var framework *string
		if err := rows.Scan(&f.Path, &f.Language, &framework, &f.LOC); err != nil {
			return nil, wrapStoreErr("query_files:scan", err)
		}
		if framework != nil {
			f.Framework = *framework
		}
		out = append(out, f)
	}
	return out, wrapStoreErr("query_files:rows", rows.Err())
}

// GetComplexFunctions returns every function at or above threshold,
// ordered highest-complexity first — the raw feed for the complexity
// analytical report (spec.md §4.10).
func (s *Store) GetComplexFunctions(threshold int) ([]FunctionRow, error) {
	return s.QueryFunctions(FunctionQuery{MinComplexity: threshold, Limit: 10000})
}

// Statistics summarizes the current index, per spec.md's `stats` command.
type Statistics struct {
	TotalFiles        int            `json:"total_files"`
	TotalFunctions    int            `json:"total_functions"`
	TotalClasses      int            `json:"total_classes"`
	FilesByLanguage    map[string]int `json:"files_by_language"`
	AverageComplexity float64        `json:"average_complexity"`
	MaxComplexity     int            `json:"max_complexity"`
}

func (s *Store) GetStatistics() (*Statistics, error) {
	stats := &Statistics{FilesByLanguage: make(map[string]int)}

	if err := s.readDB.QueryRow(`SELECT COUNT(*) FROM file_index`).Scan(&stats.TotalFiles); err != nil {
		return nil, wrapStoreErr("get_statistics:files", err)
	}
	if err := s.readDB.QueryRow(`SELECT COUNT(*) FROM function_index`).Scan(&stats.TotalFunctions); err != nil {
		return nil, wrapStoreErr("get_statistics:functions", err)
	}
	if err := s.readDB.QueryRow(`SELECT COUNT(*) FROM class_index`).Scan(&stats.TotalClasses); err != nil {
		return nil, wrapStoreErr("get_statistics:classes", err)
	}

	var avg *float64
	var max *int
	if err := s.readDB.QueryRow(`SELECT AVG(complexity), MAX(complexity) FROM function_index`).Scan(&avg, &max); err != nil {
		return nil, wrapStoreErr("get_statistics:complexity", err)
	}
	if avg != nil {
		stats.AverageComplexity = *avg
	}
	if max != nil {
		stats.MaxComplexity = *max
	}

	rows, err := s.readDB.Query(`SELECT language, COUNT(*) FROM file_index GROUP BY language`)
	if err != nil {
		return nil, wrapStoreErr("get_statistics:by_language", err)
	}
	defer rows.Close()
	for rows.Next() {
		var lang string
		var n int
		if err := rows.Scan(&lang, &n); err != nil {
			return nil, wrapStoreErr("get_statistics:by_language:scan", err)
		}
		stats.FilesByLanguage[lang] = n
	}
	return stats, wrapStoreErr("get_statistics:by_language:rows", rows.Err())
}

// IterAPIEndpoints returns every recorded route, grouped by nothing in
// particular — callers group by path themselves (spec.md §4.9's "grouped
// routes per path" section summary).
func (s *Store) IterAPIEndpoints() ([]model.APIEndpoint, error) {
	rows, err := s.readDB.Query(`SELECT file_path, route, method, handler, line FROM api_endpoints`)
	if err != nil {
		return nil, wrapStoreErr("iter_api_endpoints", err)
	}
	defer rows.Close()
	var out []model.APIEndpoint
	for rows.Next() {
		var e model.APIEndpoint
		if err := rows.Scan(&e.File, &e.Route, &e.Method, &e.Handler, &e.Line); err != nil {
			return nil, wrapStoreErr("iter_api_endpoints:scan", err)
		}
		out = append(out, e)
	}
	return out, wrapStoreErr("iter_api_endpoints:rows", rows.Err())
}

// IterDatabaseQueries returns every recorded ORM/SQL usage site.
func (s *Store) IterDatabaseQueries() ([]model.DatabaseQuery, error) {
	rows, err := s.readDB.Query(`SELECT file_path, orm_type, table_name, line, statement FROM database_queries`)
	if err != nil {
		return nil, wrapStoreErr("iter_database_queries", err)
	}
	defer rows.Close()
	var out []model.DatabaseQuery
	for rows.Next() {
		var q model.DatabaseQuery
		var table, stmt *string
		if err := rows.Scan(&q.File, &q.ORMType, &table, &q.Line, &stmt); err != nil {
			return nil, wrapStoreErr("iter_database_queries:scan", err)
		}
		if table != nil {
			q.TableName = *table
		}
		if stmt != nil {
			q.Statement = *stmt
		}
		out = append(out, q)
	}
	return out, wrapStoreErr("iter_database_queries:rows", rows.Err())
}

// IterErrorHandlers returns every recorded error-handling construct.
func (s *Store) IterErrorHandlers() ([]model.ErrorHandler, error) {
	rows, err := s.readDB.Query(`SELECT file_path, handler_type, line FROM error_handlers`)
	if err != nil {
		return nil, wrapStoreErr("iter_error_handlers", err)
	}
	defer rows.Close()
	var out []model.ErrorHandler
	for rows.Next() {
		var h model.ErrorHandler
		if err := rows.Scan(&h.File, &h.HandlerType, &h.Line); err != nil {
			return nil, wrapStoreErr("iter_error_handlers:scan", err)
		}
		out = append(out, h)
	}
	return out, wrapStoreErr("iter_error_handlers:rows", rows.Err())
}

// IterConfigUsage returns every recorded config-key reference.
func (s *Store) IterConfigUsage() ([]model.ConfigUsage, error) {
	rows, err := s.readDB.Query(`SELECT file_path, key, kind, default_value, line FROM config_usage`)
	if err != nil {
		return nil, wrapStoreErr("iter_config_usage", err)
	}
	defer rows.Close()
	var out []model.ConfigUsage
	for rows.Next() {
		var c model.ConfigUsage
		var def *string
		if err := rows.Scan(&c.File, &c.Key, &c.Kind, &def, &c.Line); err != nil {
			return nil, wrapStoreErr("iter_config_usage:scan", err)
		}
		if def != nil {
			c.Default = *def
		}
		out = append(out, c)
	}
	return out, wrapStoreErr("iter_config_usage:rows", rows.Err())
}

// IterSideEffects returns every recorded side-effecting call site.
func (s *Store) IterSideEffects() ([]model.SideEffect, error) {
	rows, err := s.readDB.Query(`SELECT file_path, effect_type, target, line FROM side_effects`)
	if err != nil {
		return nil, wrapStoreErr("iter_side_effects", err)
	}
	defer rows.Close()
	var out []model.SideEffect
	for rows.Next() {
		var e model.SideEffect
		var target *string
		if err := rows.Scan(&e.File, &e.EffectType, &target, &e.Line); err != nil {
			return nil, wrapStoreErr("iter_side_effects:scan", err)
		}
		if target != nil {
			e.Target = *target
		}
		out = append(out, e)
	}
	return out, wrapStoreErr("iter_side_effects:rows", rows.Err())
}

// IterCrossCuttingConcerns returns every recorded cross-cutting concern.
func (s *Store) IterCrossCuttingConcerns() ([]model.CrossCuttingConcern, error) {
	rows, err := s.readDB.Query(`SELECT file_path, concern_type, line FROM cross_cutting_concerns`)
	if err != nil {
		return nil, wrapStoreErr("iter_cross_cutting_concerns", err)
	}
	defer rows.Close()
	var out []model.CrossCuttingConcern
	for rows.Next() {
		var c model.CrossCuttingConcern
		if err := rows.Scan(&c.File, &c.ConcernType, &c.Line); err != nil {
			return nil, wrapStoreErr("iter_cross_cutting_concerns:scan", err)
		}
		out = append(out, c)
	}
	return out, wrapStoreErr("iter_cross_cutting_concerns:rows", rows.Err())
}

// IterSecurityRisks returns every recorded security risk.
func (s *Store) IterSecurityRisks() ([]model.SecurityRisk, error) {
	rows, err := s.readDB.Query(`SELECT file_path, risk_type, risk_level, reason, line, snippet FROM security_risks`)
	if err != nil {
		return nil, wrapStoreErr("iter_security_risks", err)
	}
	defer rows.Close()
	var out []model.SecurityRisk
	for rows.Next() {
		var r model.SecurityRisk
		var snippet *string
		if err := rows.Scan(&r.File, &r.RiskType, &r.RiskLevel, &r.Reason, &r.Line, &snippet); err != nil {
			return nil, wrapStoreErr("iter_security_risks:scan", err)
		}
		if snippet != nil {
			r.Snippet = *snippet
		}
		out = append(out, r)
	}
	return out, wrapStoreErr("iter_security_risks:rows", rows.Err())
}

// IterDataModels returns every recorded data-model declaration.
func (s *Store) IterDataModels() ([]model.DataModel, error) {
	rows, err := s.readDB.Query(`SELECT file_path, name, kind, line FROM data_models`)
	if err != nil {
		return nil, wrapStoreErr("iter_data_models", err)
	}
	defer rows.Close()
	var out []model.DataModel
	for rows.Next() {
		var d model.DataModel
		if err := rows.Scan(&d.File, &d.Name, &d.Kind, &d.Line); err != nil {
			return nil, wrapStoreErr("iter_data_models:scan", err)
		}
		out = append(out, d)
	}
	return out, wrapStoreErr("iter_data_models:rows", rows.Err())
}

// IterConcurrencyPatterns returns every recorded concurrency construct.
func (s *Store) IterConcurrencyPatterns() ([]model.ConcurrencyPattern, error) {
	rows, err := s.readDB.Query(`SELECT file_path, pattern_type, line FROM concurrency_patterns`)
	if err != nil {
		return nil, wrapStoreErr("iter_concurrency_patterns", err)
	}
	defer rows.Close()
	var out []model.ConcurrencyPattern
	for rows.Next() {
		var c model.ConcurrencyPattern
		if err := rows.Scan(&c.File, &c.PatternType, &c.Line); err != nil {
			return nil, wrapStoreErr("iter_concurrency_patterns:scan", err)
		}
		out = append(out, c)
	}
	return out, wrapStoreErr("iter_concurrency_patterns:rows", rows.Err())
}

// IterImportFanIn returns, for every imported module, the number of
// distinct importing files — the raw feed for hotspot/dependency-graph
// fan-in ranking (spec.md §4.10).
func (s *Store) IterImportFanIn() (map[string]int, error) {
	rows, err := s.readDB.Query(`SELECT module, COUNT(DISTINCT file_path) FROM import_index GROUP BY module`)
	if err != nil {
		return nil, wrapStoreErr("iter_import_fan_in", err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var module string
		var n int
		if err := rows.Scan(&module, &n); err != nil {
			return nil, wrapStoreErr("iter_import_fan_in:scan", err)
		}
		out[module] = n
	}
	return out, wrapStoreErr("iter_import_fan_in:rows", rows.Err())
}

// IterImportEdges returns every (importer-file, imported-module) pair
// recorded in import_index — the raw edge list for the dependency graph.
func (s *Store) IterImportEdges() ([]ImportEdge, error) {
	rows, err := s.readDB.Query(`SELECT file_path, module FROM import_index`)
	if err != nil {
		return nil, wrapStoreErr("iter_import_edges", err)
	}
	defer rows.Close()
	var out []ImportEdge
	for rows.Next() {
		var e ImportEdge
		if err := rows.Scan(&e.File, &e.Module); err != nil {
			return nil, wrapStoreErr("iter_import_edges:scan", err)
		}
		out = append(out, e)
	}
	return out, wrapStoreErr("iter_import_edges:rows", rows.Err())
}

// ImportEdge is one row of import_index, shaped for graph construction.
type ImportEdge struct {
	File   string
	Module string
}

// IterAllFunctions returns every function_index row including its source
// slice and calls, used by the dead-code heuristic's call-site scan and the
// hotspot/complexity reports (spec.md §4.10).
func (s *Store) IterAllFunctions() ([]model.Function, error) {
	rows, err := s.readDB.Query(`SELECT id, file_path, name, language, line_start, line_end, complexity, calls_json, extras_json FROM function_index`)
	if err != nil {
		return nil, wrapStoreErr("iter_all_functions", err)
	}
	defer rows.Close()
	var out []model.Function
	for rows.Next() {
		var f model.Function
		var callsJSON, extrasJSON *string
		if err := rows.Scan(&f.ID, &f.File, &f.Name, &f.Language, &f.LineStart, &f.LineEnd, &f.Complexity, &callsJSON, &extrasJSON); err != nil {
			return nil, wrapStoreErr("iter_all_functions:scan", err)
		}
		if callsJSON != nil {
			_ = json.Unmarshal([]byte(*callsJSON), &f.Calls)
		}
		if extrasJSON != nil {
			var extras functionExtras
			if err := json.Unmarshal([]byte(*extrasJSON), &extras); err == nil {
				f.Params = extras.Params
				f.Docstring = extras.Docstring
				f.IsExported = extras.IsExported
				f.IsAsync = extras.IsAsync
				f.ReturnType = extras.ReturnType
				f.Decorators = extras.Decorators
				f.SourceSlice = extras.SourceSlice
			}
		}
		out = append(out, f)
	}
	return out, wrapStoreErr("iter_all_functions:rows", rows.Err())
}

// IterAllExports returns every exported symbol, file -> symbol -> info,
// mirroring model.ParseResult.Exports's shape.
func (s *Store) IterAllExports() (map[string]map[string]model.ExportInfo, error) {
	rows, err := s.readDB.Query(`SELECT file_path, symbol, kind, line FROM export_index`)
	if err != nil {
		return nil, wrapStoreErr("iter_all_exports", err)
	}
	defer rows.Close()
	out := make(map[string]map[string]model.ExportInfo)
	for rows.Next() {
		var file, symbol string
		var info model.ExportInfo
		if err := rows.Scan(&file, &symbol, &info.Kind, &info.Line); err != nil {
			return nil, wrapStoreErr("iter_all_exports:scan", err)
		}
		if out[file] == nil {
			out[file] = make(map[string]model.ExportInfo)
		}
		out[file][symbol] = info
	}
	return out, wrapStoreErr("iter_all_exports:rows", rows.Err())
}

// IterAllFiles returns a lightweight view of every indexed file, used by
// internal/analysis for the directory-rollup codebase map.
func (s *Store) IterAllFiles() ([]model.File, error) {
	rows, err := s.readDB.Query(`SELECT path, language, framework, loc, last_modified, hash, parse_error FROM file_index`)
	if err != nil {
		return nil, wrapStoreErr("iter_all_files", err)
	}
	defer rows.Close()

	var out []model.File
	for rows.Next() {
		var f model.File
		var framework, parseErr *string
		if err := rows.Scan(&f.Path, &f.Language, &framework, &f.LOC, &f.LastModified, &f.ContentHash, &parseErr); err != nil {
			return nil, wrapStoreErr("iter_all_files:scan", err)
		}
		if framework != nil {
			f.Framework = *framework
		}
		if parseErr != nil {
			f.ParseError = *parseErr
		}
		out = append(out, f)
	}
	return out, wrapStoreErr("iter_all_files:rows", rows.Err())
}
