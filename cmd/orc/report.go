package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/orc/internal/analysis"
)

func complexityCommand() *cli.Command {
	return &cli.Command{
		Name:  "complexity",
		Usage: "report the most complex functions, bucketed by severity",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "threshold", Usage: "only report functions at or above this cyclomatic complexity"},
			&cli.IntFlag{Name: "limit", Value: 20, Usage: "how many top issues to print"},
			&cli.BoolFlag{Name: "json", Usage: "print as JSON"},
		},
		Action: func(c *cli.Context) error {
			e := envFrom(c)
			db, cch, err := openStoreAndCache(e)
			if err != nil {
				return err
			}
			defer db.Close()

			a := newAnalyzer(e, db, cch)
			report, err := a.ComplexityReport(analysis.ComplexityReportArgs{TopN: c.Int("limit")})
			if err != nil {
				return err
			}

			if c.Bool("json") {
				return printJSON(report)
			}

			fmt.Println("counts by severity:")
			for sev, n := range report.CountsBySeverity {
				fmt.Printf("  %-10s %d\n", sev, n)
			}
			fmt.Println("top issues:")
			threshold := c.Int("threshold")
			for _, issue := range report.TopIssues {
				if threshold > 0 && issue.Complexity < threshold {
					continue
				}
				fmt.Printf("  [%s] %-30s %s:%d complexity=%d\n", issue.Severity, issue.Name, issue.File, issue.Line, issue.Complexity)
			}
			return nil
		},
	}
}

func deadCommand() *cli.Command {
	return &cli.Command{
		Name:  "dead",
		Usage: "report functions that look unused",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "mode", Value: "fast", Usage: "fast (substring scan) or deep (regex call-site forms)"},
			&cli.Float64Flag{Name: "confidence", Usage: "only print candidates at or above this confidence"},
			&cli.IntFlag{Name: "limit", Value: 50, Usage: "maximum candidates to print per bucket"},
			&cli.BoolFlag{Name: "json", Usage: "print as JSON"},
		},
		Action: func(c *cli.Context) error {
			e := envFrom(c)
			db, cch, err := openStoreAndCache(e)
			if err != nil {
				return err
			}
			defer db.Close()

			a := newAnalyzer(e, db, cch)
			report, err := a.DeadCodeReport(analysis.DeadCodeArgs{Mode: c.String("mode")})
			if err != nil {
				return err
			}

			if c.Bool("json") {
				return printJSON(report)
			}

			minConf := c.Float64("confidence")
			limit := c.Int("limit")
			printBucket := func(title string, items []analysis.DeadCodeCandidate) {
				fmt.Println(title + ":")
				printed := 0
				for _, cand := range items {
					if cand.Confidence < minConf {
						continue
					}
					if printed >= limit {
						break
					}
					fmt.Printf("  %-30s %s:%d confidence=%.2f %v\n", cand.Name, cand.File, cand.Line, cand.Confidence, cand.Reasons)
					printed++
				}
			}
			printBucket("safe to delete", report.SafeToDelete)
			printBucket("review needed", report.ReviewNeeded)
			printBucket("possibly unused", report.PossiblyUnused)
			return nil
		},
	}
}

func hotspotsCommand() *cli.Command {
	return &cli.Command{
		Name:  "hotspots",
		Usage: "report the riskiest functions, files, and modules",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: 10, Usage: "how many entries per dimension to print"},
			&cli.BoolFlag{Name: "json", Usage: "print as JSON"},
		},
		Action: func(c *cli.Context) error {
			e := envFrom(c)
			db, cch, err := openStoreAndCache(e)
			if err != nil {
				return err
			}
			defer db.Close()

			a := newAnalyzer(e, db, cch)
			report, err := a.Hotspots(analysis.HotspotsArgs{TopN: c.Int("limit")})
			if err != nil {
				return err
			}

			if c.Bool("json") {
				return printJSON(report)
			}

			printHotspots := func(title string, items []analysis.Hotspot) {
				fmt.Println(title + ":")
				for _, h := range items {
					if h.File != "" {
						fmt.Printf("  %-30s %s:%d score=%d — %s\n", h.Name, h.File, h.Line, h.Score, h.Remediation)
					} else {
						fmt.Printf("  %-30s score=%d — %s\n", h.Name, h.Score, h.Remediation)
					}
				}
			}
			printHotspots("functions", report.Functions)
			printHotspots("files", report.Files)
			printHotspots("modules", report.Modules)
			return nil
		},
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
