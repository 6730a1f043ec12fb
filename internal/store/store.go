// Package store is the durable, normalized persistence layer for the data
// model (spec.md §4.8). It is backed by modernc.org/sqlite, the pure-Go
// cgo-free SQLite driver used elsewhere in the retrieved corpus (see
// DESIGN.md), driven through stdlib database/sql — the same
// WAL-plus-foreign_keys pragma string as the GoClode reference file.
package store

import (
	"database/sql"

	_ "modernc.org/sqlite"

	orcerrors "github.com/standardbeagle/orc/internal/errors"
)

// Store owns the single writer connection the orchestrator's reducer uses,
// per spec.md §5: only the reducer goroutine writes. A second, read-only
// connection pool (WAL allows concurrent readers) backs the analytical
// queries in internal/analysis.
type Store struct {
	writeDB *sql.DB
	readDB  *sql.DB
	path    string
}

const dsnPragmas = "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)"

// Open creates (if needed) and migrates the database at path, returning a
// Store with its single writer connection and a separate read pool.
func Open(path string) (*Store, error) {
	writeDB, err := sql.Open("sqlite", path+dsnPragmas)
	if err != nil {
		return nil, orcerrors.NewStoreError("open", err)
	}
	writeDB.SetMaxOpenConns(1)

	if err := writeDB.Ping(); err != nil {
		writeDB.Close()
		return nil, orcerrors.NewStoreError("ping", err)
	}

	readDB, err := sql.Open("sqlite", path+dsnPragmas)
	if err != nil {
		writeDB.Close()
		return nil, orcerrors.NewStoreError("open-readonly", err)
	}

	s := &Store{writeDB: writeDB, readDB: readDB, path: path}
	if err := s.migrate(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close releases both connections.
func (s *Store) Close() error {
	err1 := s.writeDB.Close()
	err2 := s.readDB.Close()
	if err1 != nil {
		return err1
	}
	return err2
}

func (s *Store) migrate() error {
	if _, err := s.writeDB.Exec(schemaSQL); err != nil {
		return orcerrors.NewStoreError("migrate", err)
	}
	return nil
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS file_index (
	path TEXT PRIMARY KEY,
	language TEXT,
	framework TEXT,
	loc INTEGER,
	last_modified REAL,
	hash TEXT,
	metadata_json TEXT,
	parse_error TEXT
);

CREATE TABLE IF NOT EXISTS function_index (
	id TEXT PRIMARY KEY,
	file_path TEXT NOT NULL REFERENCES file_index(path) ON DELETE CASCADE,
	name TEXT,
	language TEXT,
	line_start INTEGER,
	line_end INTEGER,
	complexity INTEGER,
	calls_json TEXT,
	extras_json TEXT
);
CREATE INDEX IF NOT EXISTS idx_function_file ON function_index(file_path);
CREATE INDEX IF NOT EXISTS idx_function_name ON function_index(name);
CREATE INDEX IF NOT EXISTS idx_function_complexity ON function_index(complexity);

CREATE TABLE IF NOT EXISTS class_index (
	id TEXT PRIMARY KEY,
	file_path TEXT NOT NULL REFERENCES file_index(path) ON DELETE CASCADE,
	name TEXT,
	language TEXT,
	bases_json TEXT,
	extras_json TEXT
);
CREATE INDEX IF NOT EXISTS idx_class_file ON class_index(file_path);
CREATE INDEX IF NOT EXISTS idx_class_name ON class_index(name);

CREATE TABLE IF NOT EXISTS import_index (
	file_path TEXT NOT NULL REFERENCES file_index(path) ON DELETE CASCADE,
	module TEXT NOT NULL,
	count INTEGER,
	PRIMARY KEY (file_path, module)
);

CREATE TABLE IF NOT EXISTS export_index (
	file_path TEXT NOT NULL REFERENCES file_index(path) ON DELETE CASCADE,
	symbol TEXT NOT NULL,
	kind TEXT,
	line INTEGER,
	PRIMARY KEY (file_path, symbol)
);

CREATE TABLE IF NOT EXISTS index_manifest (
	path TEXT PRIMARY KEY,
	language TEXT,
	last_modified REAL,
	hash TEXT,
	last_indexed_at REAL
);

CREATE TABLE IF NOT EXISTS api_endpoints (
	file_path TEXT NOT NULL REFERENCES file_index(path) ON DELETE CASCADE,
	route TEXT, method TEXT, handler TEXT, line INTEGER
);
CREATE TABLE IF NOT EXISTS database_queries (
	file_path TEXT NOT NULL REFERENCES file_index(path) ON DELETE CASCADE,
	orm_type TEXT, table_name TEXT, line INTEGER, statement TEXT
);
CREATE TABLE IF NOT EXISTS error_handlers (
	file_path TEXT NOT NULL REFERENCES file_index(path) ON DELETE CASCADE,
	handler_type TEXT, line INTEGER
);
CREATE TABLE IF NOT EXISTS config_usage (
	file_path TEXT NOT NULL REFERENCES file_index(path) ON DELETE CASCADE,
	key TEXT, kind TEXT, default_value TEXT, line INTEGER
);
CREATE TABLE IF NOT EXISTS side_effects (
	file_path TEXT NOT NULL REFERENCES file_index(path) ON DELETE CASCADE,
	effect_type TEXT, target TEXT, line INTEGER
);
CREATE TABLE IF NOT EXISTS cross_cutting_concerns (
	file_path TEXT NOT NULL REFERENCES file_index(path) ON DELETE CASCADE,
	concern_type TEXT, line INTEGER
);
CREATE TABLE IF NOT EXISTS security_risks (
	file_path TEXT NOT NULL REFERENCES file_index(path) ON DELETE CASCADE,
	risk_type TEXT, risk_level TEXT, reason TEXT, line INTEGER, snippet TEXT
);
CREATE TABLE IF NOT EXISTS data_models (
	file_path TEXT NOT NULL REFERENCES file_index(path) ON DELETE CASCADE,
	name TEXT, kind TEXT, line INTEGER
);
CREATE TABLE IF NOT EXISTS concurrency_patterns (
	file_path TEXT NOT NULL REFERENCES file_index(path) ON DELETE CASCADE,
	pattern_type TEXT, line INTEGER
);

CREATE TABLE IF NOT EXISTS graphs (
	graph_type TEXT PRIMARY KEY,
	blob BLOB
);
`

func wrapStoreErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return orcerrors.NewStoreError(op, err)
}
