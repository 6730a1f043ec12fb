// Package resolver turns a merged ParseResult into resolved edges: which
// file an import actually points at, which definition a call targets, and
// which files form a circular dependency. Grounded on
// original_source/orc/core/dependency_resolver.py — module-name
// derivation, relative-import directory climbing, same-file-preferred call
// resolution, and canonical-rotation cycle de-duplication are all carried
// over from that implementation, generalized from Python-only imports to
// the JS/TS relative-path style the parsers also produce.
package resolver

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/standardbeagle/orc/pkg/model"
)

var moduleBoundaryDirs = map[string]bool{
	".venv": true, "venv": true, "node_modules": true, ".git": true,
}

var pyLikeExts = []string{".py"}
var jsLikeExts = []string{".ts", ".tsx", ".js", ".jsx"}

// Result is the output of Resolve: spec.md §4.7's
// {file_dependencies, function_calls_resolved, circular_dependencies}.
type Result struct {
	FileDependencies []model.FileDependency
	FunctionCalls    []model.CallEdge
	Cycles           []model.Cycle
}

type funcRef struct {
	file string
	id   string
	line int
}

// Resolve builds name_to_definitions and module_names, resolves every
// import to a file dependency, every call to a function edge, and detects
// circular dependencies among the resolved file edges.
func Resolve(pr *model.ParseResult) *Result {
	nameToDefs, orderedFuncs := buildFunctionIndex(pr.Functions)
	filePaths := make(map[string]bool, len(pr.Files))
	for f := range pr.Files {
		filePaths[f] = true
	}

	fileDeps := resolveFileDependencies(pr.ImportsDetailed, filePaths)
	calls := resolveFunctionCalls(orderedFuncs, nameToDefs)
	cycles := detectCycles(fileDeps)

	return &Result{FileDependencies: fileDeps, FunctionCalls: calls, Cycles: cycles}
}

// buildFunctionIndex maps function name -> every definition carrying that
// name, sorted by (file, line, id) for deterministic "first match"
// resolution — the Python original relies on dict insertion order, which
// Go's map iteration does not give us.
func buildFunctionIndex(functions map[string]*model.Function) (map[string][]funcRef, []*model.Function) {
	ordered := make([]*model.Function, 0, len(functions))
	for _, fn := range functions {
		ordered = append(ordered, fn)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].File != ordered[j].File {
			return ordered[i].File < ordered[j].File
		}
		if ordered[i].LineStart != ordered[j].LineStart {
			return ordered[i].LineStart < ordered[j].LineStart
		}
		return ordered[i].ID < ordered[j].ID
	})

	index := make(map[string][]funcRef)
	for _, fn := range ordered {
		if fn.Name == "" {
			continue
		}
		index[fn.Name] = append(index[fn.Name], funcRef{file: fn.File, id: fn.ID, line: fn.LineStart})
	}
	return index, ordered
}

// moduleName derives a dotted module name for a file path, stopping at the
// first boundary directory encountered walking from the project root down
// (mirrors the original's "walk from the end, break at .venv/node_modules/.git").
func moduleName(filePath string) string {
	parts := strings.Split(filepath.ToSlash(filePath), "/")
	var kept []string
	for i := len(parts) - 1; i >= 0; i-- {
		if moduleBoundaryDirs[parts[i]] {
			break
		}
		kept = append([]string{parts[i]}, kept...)
	}
	joined := strings.Join(kept, ".")
	return strings.TrimSuffix(joined, ".py")
}

func resolveFileDependencies(imports []model.ImportDetail, filePaths map[string]bool) []model.FileDependency {
	sorted := make([]model.ImportDetail, len(imports))
	copy(sorted, imports)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].SourceFile != sorted[j].SourceFile {
			return sorted[i].SourceFile < sorted[j].SourceFile
		}
		return sorted[i].Line < sorted[j].Line
	})

	deps := make([]model.FileDependency, 0, len(sorted))
	for _, imp := range sorted {
		target, ok := resolveModuleToFile(imp.Module, imp.SourceFile, filePaths)
		dep := model.FileDependency{
			SourceFile: imp.SourceFile,
			ImportKind: imp.Kind,
			Line:       imp.Line,
			IsResolved: ok,
			IsExternal: !ok,
		}
		if ok {
			dep.Target = target
		} else {
			dep.Target = imp.Module
		}
		deps = append(deps, dep)
	}
	return deps
}

// resolveModuleToFile implements spec.md §4.7 step 3: relative imports
// climb directories by dot count (or by "./"/"../" segment for JS-style
// relative paths); everything else is matched against module-name-derived
// path patterns.
func resolveModuleToFile(module, sourceFile string, filePaths map[string]bool) (string, bool) {
	if module == "" {
		return "", false
	}

	if strings.HasPrefix(module, ".") && strings.ContainsAny(module, "/\\") {
		return resolveJSRelativeImport(module, sourceFile, filePaths)
	}
	if strings.HasPrefix(module, ".") {
		return resolvePythonRelativeImport(module, sourceFile, filePaths)
	}
	return resolveAbsoluteModule(module, filePaths)
}

func resolvePythonRelativeImport(module, sourceFile string, filePaths map[string]bool) (string, bool) {
	if sourceFile == "" {
		return "", false
	}
	dots := 0
	for dots < len(module) && module[dots] == '.' {
		dots++
	}
	remainder := module[dots:]

	targetDir := filepath.Dir(sourceFile)
	for i := 0; i < dots-1; i++ {
		targetDir = filepath.Dir(targetDir)
	}

	var targetPath string
	if remainder != "" {
		targetPath = filepath.Join(targetDir, strings.ReplaceAll(remainder, ".", "/")+".py")
	} else {
		targetPath = filepath.Join(targetDir, "__init__.py")
	}
	return matchFilePath(targetPath, filePaths)
}

func resolveJSRelativeImport(module, sourceFile string, filePaths map[string]bool) (string, bool) {
	if sourceFile == "" {
		return "", false
	}
	base := filepath.Join(filepath.Dir(sourceFile), filepath.FromSlash(module))

	if t, ok := matchFilePath(base, filePaths); ok {
		return t, ok
	}
	for _, ext := range jsLikeExts {
		if t, ok := matchFilePath(base+ext, filePaths); ok {
			return t, ok
		}
		if t, ok := matchFilePath(filepath.Join(base, "index"+ext), filePaths); ok {
			return t, ok
		}
	}
	return "", false
}

// matchFilePath finds the entry in filePaths whose resolved (cleaned)
// path equals target, tolerating path-separator and case differences.
func matchFilePath(target string, filePaths map[string]bool) (string, bool) {
	clean := filepath.Clean(target)
	for fp := range filePaths {
		if filepath.Clean(fp) == clean {
			return fp, true
		}
	}
	cleanLower := strings.ToLower(filepath.ToSlash(clean))
	for fp := range filePaths {
		if strings.ToLower(filepath.ToSlash(filepath.Clean(fp))) == cleanLower {
			return fp, true
		}
	}
	return "", false
}

// resolveAbsoluteModule tries each known file path against patterns
// derived from the module name — ends-with "/<module>.<ext>" or contains
// "/<module>/" — case-insensitively, matching the original's pattern set
// generalized across the language extensions the parsers support.
func resolveAbsoluteModule(module string, filePaths map[string]bool) (string, bool) {
	moduleSlash := strings.ToLower(strings.ReplaceAll(module, ".", "/"))

	candidates := make([]string, 0, len(filePaths))
	for fp := range filePaths {
		candidates = append(candidates, fp)
	}
	sort.Strings(candidates)

	for _, fp := range candidates {
		lower := strings.ToLower(filepath.ToSlash(fp))
		if matchesModulePattern(lower, moduleSlash) {
			return fp, true
		}
	}
	return "", false
}

func matchesModulePattern(lowerPath, moduleSlash string) bool {
	for _, ext := range append(append([]string{}, pyLikeExts...), jsLikeExts...) {
		if strings.HasSuffix(lowerPath, "/"+moduleSlash+ext) || lowerPath == moduleSlash+ext {
			return true
		}
	}
	if strings.Contains(lowerPath, "/"+moduleSlash+"/") {
		return true
	}
	return false
}

func resolveFunctionCalls(functions []*model.Function, nameToDefs map[string][]funcRef) []model.CallEdge {
	var edges []model.CallEdge
	for _, fn := range functions {
		for _, callName := range fn.Calls {
			resolved, ok := resolveCall(callName, fn.File, nameToDefs)
			edge := model.CallEdge{CallerFunctionID: fn.ID, CalleeName: callName, Resolved: ok}
			if ok {
				edge.CalleeFunctionID = resolved.id
				edge.CalleeFile = resolved.file
			}
			edges = append(edges, edge)
		}
	}
	return edges
}

func resolveCall(name, callerFile string, nameToDefs map[string][]funcRef) (funcRef, bool) {
	matches := nameToDefs[name]
	if len(matches) == 0 {
		return funcRef{}, false
	}
	for _, m := range matches {
		if m.file == callerFile {
			return m, true
		}
	}
	return matches[0], true
}

// detectCycles runs iterative DFS over the resolved-only dependency graph
// and returns every simple cycle once, canonicalized to start at its
// lexicographically smallest node (spec.md §4.7 step 5).
func detectCycles(deps []model.FileDependency) []model.Cycle {
	graph := make(map[string][]string)
	nodes := make(map[string]bool)
	for _, d := range deps {
		if !d.IsResolved {
			continue
		}
		graph[d.SourceFile] = append(graph[d.SourceFile], d.Target)
		nodes[d.SourceFile] = true
		nodes[d.Target] = true
	}

	sortedNodes := make([]string, 0, len(nodes))
	for n := range nodes {
		sortedNodes = append(sortedNodes, n)
	}
	sort.Strings(sortedNodes)

	seen := make(map[string]bool)
	var cycles []model.Cycle
	dedup := make(map[string]bool)

	for _, start := range sortedNodes {
		if seen[start] {
			continue
		}
		dfsFindCycles(start, graph, seen, make(map[string]bool), &cycles, dedup)
	}
	return cycles
}

type frame struct {
	node  string
	path  []string
	index int
}

// dfsFindCycles is an explicit-stack DFS (no recursion) so arbitrarily deep
// dependency chains never risk a goroutine stack overflow.
func dfsFindCycles(start string, graph map[string][]string, seen, onStack map[string]bool, cycles *[]model.Cycle, dedup map[string]bool) {
	stack := []frame{{node: start, path: []string{start}, index: 0}}
	seen[start] = true
	onStack[start] = true

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		neighbors := graph[top.node]

		if top.index >= len(neighbors) {
			onStack[top.node] = false
			stack = stack[:len(stack)-1]
			continue
		}

		neighbor := neighbors[top.index]
		top.index++

		if onStack[neighbor] {
			cycle := canonicalCycle(append(append([]string{}, top.path...), neighbor))
			key := strings.Join(cycle.Files, "\x00")
			if !dedup[key] {
				dedup[key] = true
				*cycles = append(*cycles, cycle)
			}
			continue
		}
		if seen[neighbor] {
			continue
		}

		seen[neighbor] = true
		onStack[neighbor] = true
		newPath := append(append([]string{}, top.path...), neighbor)
		stack = append(stack, frame{node: neighbor, path: newPath, index: 0})
	}
}

// canonicalCycle rotates a closed walk (last element equals the neighbor
// that closed the cycle) so it starts at its lexicographically smallest
// node, trimming the graph lead-in before the actual cycle.
func canonicalCycle(walk []string) model.Cycle {
	closing := walk[len(walk)-1]
	start := -1
	for i, n := range walk[:len(walk)-1] {
		if n == closing {
			start = i
			break
		}
	}
	if start < 0 {
		start = 0
	}
	loop := walk[start : len(walk)-1]

	minIdx := 0
	for i, n := range loop {
		if n < loop[minIdx] {
			minIdx = i
		}
	}
	rotated := append(append([]string{}, loop[minIdx:]...), loop[:minIdx]...)
	rotated = append(rotated, rotated[0])
	return model.Cycle{Files: rotated}
}

// ModuleNameFor exposes moduleName for callers (store/TOC) that want a
// dotted module label for a file without re-deriving the boundary logic.
func ModuleNameFor(filePath string) string {
	return moduleName(filePath)
}
