package analysis

import (
	"sort"

	"github.com/standardbeagle/orc/internal/store"
)

// Hotspot is one top-N entry in a given dimension, annotated with a
// suggested remediation, per spec.md §4.10.
type Hotspot struct {
	Kind        string `json:"kind"` // "function_complexity" | "file_loc" | "module_fan_in"
	Name        string `json:"name"`
	File        string `json:"file,omitempty"`
	Line        int    `json:"line,omitempty"`
	Score       int    `json:"score"`
	Remediation string `json:"remediation"`
}

// HotspotsArgs selects how many entries to return per dimension.
type HotspotsArgs struct {
	TopN int `json:"top_n"`
}

// HotspotsReport is the top-N entries across all three hotspot dimensions.
type HotspotsReport struct {
	Functions []Hotspot `json:"functions"`
	Files     []Hotspot `json:"files"`
	Modules   []Hotspot `json:"modules"`
}

func (a *Analyzer) Hotspots(args HotspotsArgs) (*HotspotsReport, error) {
	args.TopN = clampLimit(args.TopN, 10)
	return withCache(a, "hotspots", args, func() (*HotspotsReport, error) {
		functions, err := a.db.QueryFunctions(store.FunctionQuery{Limit: 1 << 30})
		if err != nil {
			return nil, queryErr("hotspots", err)
		}
		files, err := a.db.QueryFiles(store.FileQuery{Limit: 1 << 30})
		if err != nil {
			return nil, queryErr("hotspots", err)
		}
		fanIn, err := a.db.IterImportFanIn()
		if err != nil {
			return nil, queryErr("hotspots", err)
		}

		report := &HotspotsReport{}

		sort.Slice(functions, func(i, j int) bool { return functions[i].Complexity > functions[j].Complexity })
		for i := 0; i < len(functions) && i < args.TopN; i++ {
			fn := functions[i]
			report.Functions = append(report.Functions, Hotspot{
				Kind: "function_complexity", Name: fn.Name, File: fn.File, Line: fn.LineStart,
				Score: fn.Complexity, Remediation: "break this function into smaller units",
			})
		}

		sort.Slice(files, func(i, j int) bool { return files[i].LOC > files[j].LOC })
		for i := 0; i < len(files) && i < args.TopN; i++ {
			f := files[i]
			report.Files = append(report.Files, Hotspot{
				Kind: "file_loc", Name: f.Path, File: f.Path,
				Score: f.LOC, Remediation: "split this file along its responsibilities",
			})
		}

		type moduleCount struct {
			module string
			count  int
		}
		modules := make([]moduleCount, 0, len(fanIn))
		for module, count := range fanIn {
			modules = append(modules, moduleCount{module, count})
		}
		sort.Slice(modules, func(i, j int) bool {
			if modules[i].count != modules[j].count {
				return modules[i].count > modules[j].count
			}
			return modules[i].module < modules[j].module
		})
		for i := 0; i < len(modules) && i < args.TopN; i++ {
			m := modules[i]
			report.Modules = append(report.Modules, Hotspot{
				Kind: "module_fan_in", Name: m.module,
				Score: m.count, Remediation: "consider narrowing this module's surface or splitting it",
			})
		}

		return report, nil
	})
}
