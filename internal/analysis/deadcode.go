package analysis

import (
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/standardbeagle/orc/pkg/model"
)

// DeadCodeCandidate is one function scored by its likelihood of being
// unused, with the reasons that drove its confidence.
type DeadCodeCandidate struct {
	Name       string   `json:"name"`
	File       string   `json:"file"`
	Line       int      `json:"line"`
	Confidence float64  `json:"confidence"`
	Bucket     string   `json:"bucket"`
	Reasons    []string `json:"reasons"`
}

// DeadCodeReport buckets every scored function by confidence, per
// spec.md §4.10's safe_to_delete/review_needed/possibly_unused split.
type DeadCodeReport struct {
	Counts         map[string]int       `json:"counts"`
	SafeToDelete   []DeadCodeCandidate  `json:"safe_to_delete"`
	ReviewNeeded   []DeadCodeCandidate  `json:"review_needed"`
	PossiblyUnused []DeadCodeCandidate  `json:"possibly_unused"`
}

// DeadCodeArgs selects scan mode: "fast" (substring check) or "deep"
// (regex call-site forms), per spec.md §4.10.
type DeadCodeArgs struct {
	Mode string `json:"mode"`
}

var deprecatedNamePattern = regexp.MustCompile(`(?i)^(old_|legacy_|deprecated_)`)

func (a *Analyzer) DeadCodeReport(args DeadCodeArgs) (*DeadCodeReport, error) {
	if args.Mode != "deep" {
		args.Mode = "fast"
	}
	return withCache(a, "dead_code", args, func() (*DeadCodeReport, error) {
		functions, err := a.db.IterAllFunctions()
		if err != nil {
			return nil, queryErr("dead_code", err)
		}
		files, err := a.db.IterAllFiles()
		if err != nil {
			return nil, queryErr("dead_code", err)
		}
		exports, err := a.db.IterAllExports()
		if err != nil {
			return nil, queryErr("dead_code", err)
		}

		contents := make(map[string]string, len(files))
		for _, f := range files {
			data, err := os.ReadFile(f.Path)
			if err != nil {
				continue // unreadable file: treat as having no call sites
			}
			contents[f.Path] = string(data)
		}

		report := &DeadCodeReport{Counts: map[string]int{"safe_to_delete": 0, "review_needed": 0, "possibly_unused": 0}}

		for _, fn := range functions {
			if isDunderName(fn.Name) {
				continue
			}
			callSites := countCallSites(fn.Name, contents, args.Mode)
			// A definition line itself isn't a call; every function
			// contributes at least its own occurrence in its defining file.
			confidence, reasons := scoreDeadCode(fn, callSites, exports)

			bucket := "possibly_unused"
			switch {
			case confidence >= 0.9:
				bucket = "safe_to_delete"
			case confidence >= 0.7:
				bucket = "review_needed"
			}
			report.Counts[bucket]++

			cand := DeadCodeCandidate{Name: fn.Name, File: fn.File, Line: fn.LineStart, Confidence: confidence, Bucket: bucket, Reasons: reasons}
			switch bucket {
			case "safe_to_delete":
				report.SafeToDelete = append(report.SafeToDelete, cand)
			case "review_needed":
				report.ReviewNeeded = append(report.ReviewNeeded, cand)
			default:
				report.PossiblyUnused = append(report.PossiblyUnused, cand)
			}
		}

		for _, list := range [][]DeadCodeCandidate{report.SafeToDelete, report.ReviewNeeded, report.PossiblyUnused} {
			sort.Slice(list, func(i, j int) bool { return list[i].Confidence > list[j].Confidence })
		}
		return report, nil
	})
}

func isDunderName(name string) bool {
	return strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}

// countCallSites counts occurrences of name(...) or .name(...) across every
// file's content. fast mode does a plain substring check; deep mode adds
// attribute-access, decorator, and argument-passing forms.
func countCallSites(name string, contents map[string]string, mode string) int {
	count := 0
	if mode == "deep" {
		pattern := regexp.MustCompile(`(?:\.|@|\b)` + regexp.QuoteMeta(name) + `\s*[\(,)]`)
		for _, src := range contents {
			count += len(pattern.FindAllString(src, -1))
		}
		return count
	}
	direct := name + "("
	attr := "." + name + "("
	for _, src := range contents {
		count += strings.Count(src, direct) + strings.Count(src, attr)
	}
	return count
}

// scoreDeadCode derives a base confidence from call-site count, then
// modulates it by the signals spec.md §4.10 names: private-prefix name
// (+), entry-point name/location (-), test function or file (-), presence
// in an exports list (-), deprecated-naming (strongly +), function size
// (small +).
func scoreDeadCode(fn model.Function, callSites int, exports map[string]map[string]model.ExportInfo) (float64, []string) {
	var confidence float64
	var reasons []string

	switch {
	case callSites == 0:
		confidence = 0.85
		reasons = append(reasons, "no call sites found in project")
	case callSites == 1:
		confidence = 0.5
		reasons = append(reasons, "only the definition site found")
	default:
		confidence = 0.1
		reasons = append(reasons, "multiple call sites found")
	}

	if strings.HasPrefix(fn.Name, "_") && !strings.HasPrefix(fn.Name, "__") {
		confidence += 0.1
		reasons = append(reasons, "private-prefixed name")
	}
	if isEntryPointName(fn.Name) {
		confidence -= 0.4
		reasons = append(reasons, "matches a known entry-point name")
	}
	if isTestName(fn.Name) || isTestFile(fn.File) {
		confidence -= 0.3
		reasons = append(reasons, "test function or test file")
	}
	if file, ok := exports[fn.File]; ok {
		if _, exported := file[fn.Name]; exported {
			confidence -= 0.3
			reasons = append(reasons, "present in the file's export list")
		}
	}
	if deprecatedNamePattern.MatchString(fn.Name) {
		confidence += 0.3
		reasons = append(reasons, "deprecated-style naming (old_/legacy_/deprecated_)")
	}
	length := fn.LineEnd - fn.LineStart
	if length > 0 && length < 5 {
		confidence += 0.1
		reasons = append(reasons, "very small function body")
	}

	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return confidence, reasons
}

func isEntryPointName(name string) bool {
	switch strings.ToLower(name) {
	case "main", "run", "handler", "handle", "init", "setup":
		return true
	}
	return false
}

func isTestName(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasPrefix(lower, "test_") || strings.HasPrefix(lower, "test")
}

func isTestFile(path string) bool {
	lower := strings.ToLower(path)
	return strings.Contains(lower, "test_") || strings.Contains(lower, "_test.") || strings.Contains(lower, "/tests/")
}
