// Package errors defines the typed error kinds used throughout orc, in the
// shape the teacher's internal/errors package uses: a small struct per kind
// carrying Operation/Underlying/Timestamp and implementing Unwrap so callers
// can use errors.As/errors.Is against the underlying cause.
package errors

import (
	"fmt"
	"time"
)

// Kind identifies which of the seven error categories in spec.md §7 an
// error belongs to.
type Kind string

const (
	KindConfig   Kind = "config"
	KindScan     Kind = "scan"
	KindParse    Kind = "parse"
	KindStore    Kind = "store"
	KindCache    Kind = "cache"
	KindResolver Kind = "resolver"
	KindQuery    Kind = "query"
)

// ConfigError reports malformed or invalid configuration. Fatal at init.
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{Field: field, Value: value, Underlying: err, Timestamp: time.Now()}
}

func (e *ConfigError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("config error for field %q: %v", e.Field, e.Underlying)
	}
	return fmt.Sprintf("config error for field %q (value %q): %v", e.Field, e.Value, e.Underlying)
}

func (e *ConfigError) Unwrap() error { return e.Underlying }

// ScanError reports an unreadable project root. Fatal; subtree permission
// errors are logged and skipped rather than raised as ScanError.
type ScanError struct {
	Root       string
	Underlying error
	Timestamp  time.Time
}

func NewScanError(root string, err error) *ScanError {
	return &ScanError{Root: root, Underlying: err, Timestamp: time.Now()}
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan error for root %q: %v", e.Root, e.Underlying)
}

func (e *ScanError) Unwrap() error { return e.Underlying }

// ParseError reports that a single file could not be parsed. Non-fatal:
// the pipeline continues and the file contributes an empty ParseResult.
type ParseError struct {
	Path       string
	Underlying error
	Timestamp  time.Time
}

func NewParseError(path string, err error) *ParseError {
	return &ParseError{Path: path, Underlying: err, Timestamp: time.Now()}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for %s: %v", e.Path, e.Underlying)
}

func (e *ParseError) Unwrap() error { return e.Underlying }

// StoreError reports that the embedded database rejected a write, or the
// backing file is locked/unwritable. Fatal for the current run.
type StoreError struct {
	Operation  string
	Underlying error
	Timestamp  time.Time
}

func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Operation: op, Underlying: err, Timestamp: time.Now()}
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s failed: %v", e.Operation, e.Underlying)
}

func (e *StoreError) Unwrap() error { return e.Underlying }

// CacheError reports a cache read/write failure. Non-fatal: callers treat
// the cache as if it returned a miss.
type CacheError struct {
	Key        string
	Underlying error
	Timestamp  time.Time
}

func NewCacheError(key string, err error) *CacheError {
	return &CacheError{Key: key, Underlying: err, Timestamp: time.Now()}
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache error for key %q: %v", e.Key, e.Underlying)
}

func (e *CacheError) Unwrap() error { return e.Underlying }

// ResolverError reports a malformed resolver input — a parser contract
// violation. Fatal.
type ResolverError struct {
	Context    string
	Underlying error
	Timestamp  time.Time
}

func NewResolverError(context string, err error) *ResolverError {
	return &ResolverError{Context: context, Underlying: err, Timestamp: time.Now()}
}

func (e *ResolverError) Error() string {
	return fmt.Sprintf("resolver error (%s): %v", e.Context, e.Underlying)
}

func (e *ResolverError) Unwrap() error { return e.Underlying }

// QueryError reports invalid arguments to an analytical query. Returned to
// the caller synchronously without touching disk.
type QueryError struct {
	Query      string
	Underlying error
	Timestamp  time.Time
}

func NewQueryError(query string, err error) *QueryError {
	return &QueryError{Query: query, Underlying: err, Timestamp: time.Now()}
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %q invalid: %v", e.Query, e.Underlying)
}

func (e *QueryError) Unwrap() error { return e.Underlying }

// MultiError aggregates independent failures — e.g. per-file resolver
// failures collected across a whole run — without losing any of them.
type MultiError struct {
	Errors []error
}

func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors occurred, first: %v", len(e.Errors), e.Errors[0])
}

func (e *MultiError) Unwrap() []error { return e.Errors }
