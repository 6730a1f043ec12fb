// Package analysis implements C10: the analytical queries layered over the
// Store — codebase map, complexity report, dead-code heuristic, security
// scan, hotspots, and dependency-graph data. Every query is a pure
// projection over the Store (plus, for the dead-code heuristic, a direct
// re-read of file content for call-site scanning — the store keeps
// structural rows, not raw source). Grounded on the teacher's query-layer
// caching pattern in internal/core's report builders, generalized from a
// single report type to the one-cache-wrapper-per-query shape spec.md
// §4.10 asks for.
package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/standardbeagle/orc/internal/cache"
	"github.com/standardbeagle/orc/internal/config"
	orcerrors "github.com/standardbeagle/orc/internal/errors"
	"github.com/standardbeagle/orc/internal/store"
)

// queryTTL is the 5-minute cache lifetime spec.md §4.10 specifies for
// every analytical query.
const queryTTL = 5 * time.Minute

// Analyzer runs every C10 query against db, caching results in c keyed by
// (query-name, arguments-hash).
type Analyzer struct {
	db      *store.Store
	c       *cache.Cache
	matcher *config.Matcher
}

// New builds an Analyzer. matcher may be nil (no path exclusion applied to
// the codebase map); c may be nil (queries run uncached).
func New(db *store.Store, c *cache.Cache, matcher *config.Matcher) *Analyzer {
	return &Analyzer{db: db, c: c, matcher: matcher}
}

// Invalidate clears every cached analytical query. Callers invoke this
// after a re-index, per spec.md §4.10's explicit-invalidation rule.
func (a *Analyzer) Invalidate() error {
	if a.c == nil {
		return nil
	}
	return a.c.Invalidate("")
}

// cacheKey derives the (query-name, arguments-hash) cache key spec.md
// §4.10 names.
func cacheKey(query string, args any) string {
	payload, _ := json.Marshal(args)
	sum := sha256.Sum256(payload)
	return "analysis:" + query + ":" + hex.EncodeToString(sum[:8])
}

// withCache runs compute and caches its result under cacheKey(query, args)
// for queryTTL, short-circuiting on a fresh hit. Skips caching entirely if
// a.c is nil.
func withCache[T any](a *Analyzer, query string, args any, compute func() (T, error)) (T, error) {
	var zero T
	if a.c == nil {
		return compute()
	}
	key := cacheKey(query, args)
	var cached T
	if ok, err := a.c.Get(key, &cached); err == nil && ok {
		return cached, nil
	}
	result, err := compute()
	if err != nil {
		return zero, err
	}
	if err := a.c.Set(key, result, queryTTL, ""); err != nil {
		return zero, orcerrors.NewQueryError(query, err)
	}
	return result, nil
}

func queryErr(query string, err error) error {
	if err == nil {
		return nil
	}
	return orcerrors.NewQueryError(query, err)
}

func severityOf(complexity int) string {
	switch {
	case complexity >= 20:
		return "critical"
	case complexity >= 15:
		return "high"
	case complexity >= 10:
		return "medium"
	default:
		return "low"
	}
}

func clampLimit(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}
