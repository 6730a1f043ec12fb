package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// defaultIgnoreSegments is the O(1) fast-path set from spec.md §4.2: any
// path containing one of these as a path segment is ignored regardless
// of the compiled pattern list. Grounded on the teacher's
// build_artifact_detector.go default exclusions and config.go's Exclude
// seed list, condensed to directory segments.
var defaultIgnoreSegments = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	"venv":         true,
	".venv":        true,
	"env":          true,
	".env":         true,
	"__pycache__":  true,
	".pytest_cache": true,
	".mypy_cache":  true,
	".tox":         true,
	"dist":         true,
	"build":        true,
	"target":       true,
	".idea":        true,
	".vscode":      true,
	".orc":         true,
}

// defaultIgnorePatterns seeds Config.IgnorePatterns; YAML/env values are
// appended to, not substituted for, this list.
var defaultIgnorePatterns = []string{
	"**/.git/**",
	"**/.hg/**",
	"**/.svn/**",
	"**/node_modules/**",
	"**/vendor/**",
	"**/venv/**",
	"**/.venv/**",
	"**/__pycache__/**",
	"**/.pytest_cache/**",
	"**/.mypy_cache/**",
	"**/.tox/**",
	"**/dist/**",
	"**/build/**",
	"**/target/**",
	"**/.idea/**",
	"**/.vscode/**",
	"**/.orc/**",
	"**/*.pyc",
	"**/*.min.js",
	"**/*.min.css",
}

// pattern is one compiled ignore entry: either a directory-segment
// pattern (trailing "/" in the source, matches that segment anywhere in
// the path) or a doublestar glob.
type pattern struct {
	raw       string
	dirSegment string // set when the pattern is a bare directory token
	glob      string // set when the pattern contains glob metacharacters or slashes
}

// Matcher compiles a list of gitignore-style patterns into the
// should_ignore(path) predicate described in spec.md §4.2.
type Matcher struct {
	patterns []pattern
}

// NewMatcher compiles patterns (already normalized forward-slash,
// gitignore-style strings) into a Matcher.
func NewMatcher(patterns []string) *Matcher {
	m := &Matcher{patterns: make([]pattern, 0, len(patterns))}
	for _, p := range patterns {
		m.patterns = append(m.patterns, compilePattern(p))
	}
	return m
}

// compilePattern classifies one pattern line per spec.md §4.2: a
// pattern ending in "/" matches a directory anywhere in the path; a
// pattern containing a glob character matches via doublestar; a bare
// token (no glob, no slash) matches as a directory segment anywhere.
func compilePattern(line string) pattern {
	line = strings.TrimSpace(line)
	line = strings.TrimSuffix(line, "/")

	if !strings.ContainsAny(line, "*?[") && !strings.Contains(line, "/") {
		return pattern{raw: line, dirSegment: line}
	}

	glob := line
	if !strings.HasPrefix(glob, "**/") && !strings.HasPrefix(glob, "/") {
		glob = "**/" + glob
	}
	glob = strings.TrimPrefix(glob, "/")
	if !strings.HasSuffix(glob, "/**") && !strings.ContainsAny(filepath.Base(glob), "*?[") {
		glob = glob + "/**"
	}
	return pattern{raw: line, glob: glob}
}

// ShouldIgnore reports whether path (forward-slash, relative to
// project_root) should be excluded from the index.
func (m *Matcher) ShouldIgnore(path string) bool {
	path = filepath.ToSlash(path)
	if m.FastSegmentHit(path) {
		return true
	}
	for _, p := range m.patterns {
		if p.dirSegment != "" {
			continue // already covered by FastSegmentHit's general segment scan
		}
		if matched, _ := doublestar.Match(p.glob, path); matched {
			return true
		}
		if matched, _ := doublestar.Match(strings.TrimSuffix(p.glob, "/**"), path); matched {
			return true
		}
	}
	return false
}

// FastSegmentHit is the O(1)-per-segment fast path: it reports true if
// any path segment is in defaultIgnoreSegments or matches a compiled
// bare-token (directory) pattern.
func (m *Matcher) FastSegmentHit(path string) bool {
	segments := strings.Split(path, "/")
	for _, seg := range segments {
		if defaultIgnoreSegments[seg] {
			return true
		}
	}
	for _, p := range m.patterns {
		if p.dirSegment == "" {
			continue
		}
		for _, seg := range segments {
			if seg == p.dirSegment {
				return true
			}
		}
	}
	return false
}

// LoadOrcignore reads .orcignore from projectRoot, skipping blank lines
// and "#" comments, and returns the raw pattern lines (not yet
// compiled). A missing file is not an error — it yields no patterns.
func LoadOrcignore(projectRoot string) ([]string, error) {
	f, err := os.Open(filepath.Join(projectRoot, ".orcignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, scanner.Err()
}

// AppendOrcignore adds pattern as a new line to .orcignore under
// projectRoot, creating the file if necessary (backs `orc ignore
// <pattern>`).
func AppendOrcignore(projectRoot, pattern string) error {
	path := filepath.Join(projectRoot, ".orcignore")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(pattern + "\n")
	return err
}
