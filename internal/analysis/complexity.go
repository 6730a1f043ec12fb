package analysis

import (
	"sort"

	"github.com/standardbeagle/orc/internal/store"
)

// ComplexityIssue is one problem function surfaced by the complexity
// report, ordered by (priority, -complexity) per spec.md §4.10.
type ComplexityIssue struct {
	Name       string   `json:"name"`
	File       string   `json:"file"`
	Line       int      `json:"line"`
	Complexity int      `json:"complexity"`
	Severity   string   `json:"severity"`
	Priority   int      `json:"priority"` // higher sorts first
	Issues     []string `json:"issues"`
}

// FileComplexity is one file's complexity aggregate.
type FileComplexity struct {
	File              string  `json:"file"`
	TotalComplexity   int     `json:"total_complexity"`
	MaxComplexity     int     `json:"max_complexity"`
	AverageComplexity float64 `json:"average_complexity"`
	FunctionCount     int     `json:"function_count"`
}

// ComplexityReport is the full C10 complexity analytical query result.
type ComplexityReport struct {
	CountsBySeverity map[string]int     `json:"counts_by_severity"`
	TopIssues        []ComplexityIssue  `json:"top_issues"`
	Files            []FileComplexity   `json:"files"`
}

// ComplexityReportArgs selects how many top problem functions to return.
type ComplexityReportArgs struct {
	TopN int `json:"top_n"`
}

func (a *Analyzer) ComplexityReport(args ComplexityReportArgs) (*ComplexityReport, error) {
	args.TopN = clampLimit(args.TopN, 20)
	return withCache(a, "complexity_report", args, func() (*ComplexityReport, error) {
		functions, err := a.db.QueryFunctions(store.FunctionQuery{Limit: 1 << 30})
		if err != nil {
			return nil, queryErr("complexity_report", err)
		}

		report := &ComplexityReport{CountsBySeverity: map[string]int{"critical": 0, "high": 0, "medium": 0, "low": 0}}
		byFile := make(map[string]*FileComplexity)

		var issues []ComplexityIssue
		for _, fn := range functions {
			sev := severityOf(fn.Complexity)
			report.CountsBySeverity[sev]++

			fc, ok := byFile[fn.File]
			if !ok {
				fc = &FileComplexity{File: fn.File}
				byFile[fn.File] = fc
			}
			fc.TotalComplexity += fn.Complexity
			fc.FunctionCount++
			if fn.Complexity > fc.MaxComplexity {
				fc.MaxComplexity = fn.Complexity
			}

			length := fn.LineEnd - fn.LineStart
			var fnIssues []string
			priority := 0
			if sev == "critical" {
				priority += 3
			} else if sev == "high" {
				priority += 2
			} else if sev == "medium" {
				priority++
			}
			if fn.Complexity >= 15 {
				fnIssues = append(fnIssues, "high_cyclomatic_complexity")
			}
			if length > 80 {
				fnIssues = append(fnIssues, "long_function")
				priority++
			}
			if length > 0 && fn.Complexity > 0 && float64(fn.Complexity)/float64(length) > 0.3 {
				fnIssues = append(fnIssues, "dense_branching")
				priority++
			}
			if len(fnIssues) == 0 {
				continue
			}
			issues = append(issues, ComplexityIssue{
				Name: fn.Name, File: fn.File, Line: fn.LineStart, Complexity: fn.Complexity,
				Severity: sev, Priority: priority, Issues: fnIssues,
			})
		}

		sort.Slice(issues, func(i, j int) bool {
			if issues[i].Priority != issues[j].Priority {
				return issues[i].Priority > issues[j].Priority
			}
			return issues[i].Complexity > issues[j].Complexity
		})
		if len(issues) > args.TopN {
			issues = issues[:args.TopN]
		}
		report.TopIssues = issues

		for _, fc := range byFile {
			if fc.FunctionCount > 0 {
				fc.AverageComplexity = float64(fc.TotalComplexity) / float64(fc.FunctionCount)
			}
			report.Files = append(report.Files, *fc)
		}
		sort.Slice(report.Files, func(i, j int) bool { return report.Files[i].File < report.Files[j].File })

		return report, nil
	})
}
