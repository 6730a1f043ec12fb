package store

import (
	"database/sql"
	"errors"
)

// GraphTypeResolvedEdges is the graphs.graph_type key under which the
// indexing pipeline persists internal/resolver's Result (JSON-encoded).
const GraphTypeResolvedEdges = "resolved_edges"

// SaveGraph writes (or replaces) the serialized adjacency representation
// for graphType — spec.md §4.8's "optional serialized adjacency
// representation for resolved dependencies." The caller owns encoding
// (internal/resolver's Result, JSON-marshaled, is the only producer today).
func (s *Store) SaveGraph(graphType string, blob []byte) error {
	_, err := s.writeDB.Exec(`
		INSERT INTO graphs (graph_type, blob) VALUES (?, ?)
		ON CONFLICT(graph_type) DO UPDATE SET blob=excluded.blob
	`, graphType, blob)
	return wrapStoreErr("save_graph", err)
}

// LoadGraph reads back a previously saved graph blob. ok is false if no
// row exists for graphType.
func (s *Store) LoadGraph(graphType string) (blob []byte, ok bool, err error) {
	row := s.readDB.QueryRow(`SELECT blob FROM graphs WHERE graph_type = ?`, graphType)
	if scanErr := row.Scan(&blob); scanErr != nil {
		if errors.Is(scanErr, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, wrapStoreErr("load_graph", scanErr)
	}
	return blob, true, nil
}
