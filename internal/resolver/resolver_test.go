package resolver

import (
	"testing"

	"github.com/standardbeagle/orc/pkg/model"
)

func TestModuleNameStopsAtBoundaryDir(t *testing.T) {
	got := moduleName("/repo/.venv/lib/pkg/mod.py")
	if got != "" {
		t.Fatalf("expected empty module name inside .venv, got %q", got)
	}
	got = moduleName("/repo/src/pkg/mod.py")
	want := "repo.src.pkg.mod"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestResolvePythonRelativeImport(t *testing.T) {
	pr := model.NewParseResult()
	pr.Files["/repo/pkg/utils.py"] = &model.File{Path: "/repo/pkg/utils.py", Language: model.LangPython}
	pr.Files["/repo/pkg/main.py"] = &model.File{Path: "/repo/pkg/main.py", Language: model.LangPython}
	pr.ImportsDetailed = append(pr.ImportsDetailed, model.ImportDetail{
		SourceFile: "/repo/pkg/main.py", Module: ".utils", Line: 1, Kind: model.ImportFrom,
	})

	result := Resolve(pr)
	if len(result.FileDependencies) != 1 {
		t.Fatalf("expected 1 file dependency, got %d", len(result.FileDependencies))
	}
	dep := result.FileDependencies[0]
	if !dep.IsResolved || dep.Target != "/repo/pkg/utils.py" {
		t.Fatalf("expected resolved dep to utils.py, got %+v", dep)
	}
}

func TestResolveJSRelativeImport(t *testing.T) {
	pr := model.NewParseResult()
	pr.Files["/repo/src/a.ts"] = &model.File{Path: "/repo/src/a.ts", Language: model.LangTypeScript}
	pr.Files["/repo/src/lib/b.ts"] = &model.File{Path: "/repo/src/lib/b.ts", Language: model.LangTypeScript}
	pr.ImportsDetailed = append(pr.ImportsDetailed, model.ImportDetail{
		SourceFile: "/repo/src/a.ts", Module: "./lib/b", Line: 3, Kind: model.ImportFrom,
	})

	result := Resolve(pr)
	dep := result.FileDependencies[0]
	if !dep.IsResolved || dep.Target != "/repo/src/lib/b.ts" {
		t.Fatalf("expected resolved dep to lib/b.ts, got %+v", dep)
	}
}

func TestUnresolvedImportMarkedExternal(t *testing.T) {
	pr := model.NewParseResult()
	pr.Files["/repo/a.py"] = &model.File{Path: "/repo/a.py", Language: model.LangPython}
	pr.ImportsDetailed = append(pr.ImportsDetailed, model.ImportDetail{
		SourceFile: "/repo/a.py", Module: "requests", Line: 1, Kind: model.ImportPlain,
	})

	result := Resolve(pr)
	dep := result.FileDependencies[0]
	if dep.IsResolved || !dep.IsExternal || dep.Target != "requests" {
		t.Fatalf("expected external dep labeled 'requests', got %+v", dep)
	}
}

func TestFunctionCallPrefersSameFile(t *testing.T) {
	pr := model.NewParseResult()
	pr.Functions["/repo/a.py::helper"] = &model.Function{ID: "/repo/a.py::helper", Name: "helper", File: "/repo/a.py", LineStart: 1}
	pr.Functions["/repo/b.py::helper"] = &model.Function{ID: "/repo/b.py::helper", Name: "helper", File: "/repo/b.py", LineStart: 1}
	pr.Functions["/repo/a.py::caller"] = &model.Function{
		ID: "/repo/a.py::caller", Name: "caller", File: "/repo/a.py", LineStart: 5,
		Calls: []string{"helper"},
	}

	result := Resolve(pr)
	var edge model.CallEdge
	for _, e := range result.FunctionCalls {
		if e.CallerFunctionID == "/repo/a.py::caller" {
			edge = e
		}
	}
	if !edge.Resolved || edge.CalleeFunctionID != "/repo/a.py::helper" {
		t.Fatalf("expected call resolved to same-file helper, got %+v", edge)
	}
}

func TestFunctionCallExternalWhenNoDefinition(t *testing.T) {
	pr := model.NewParseResult()
	pr.Functions["/repo/a.py::caller"] = &model.Function{
		ID: "/repo/a.py::caller", Name: "caller", File: "/repo/a.py", LineStart: 1,
		Calls: []string{"print"},
	}
	result := Resolve(pr)
	if result.FunctionCalls[0].Resolved {
		t.Fatalf("expected unresolved call for undefined name")
	}
}

func TestCycleDetectionCanonicalRotation(t *testing.T) {
	pr := model.NewParseResult()
	for _, f := range []string{"/repo/c.py", "/repo/a.py", "/repo/b.py"} {
		pr.Files[f] = &model.File{Path: f, Language: model.LangPython}
	}
	pr.ImportsDetailed = []model.ImportDetail{
		{SourceFile: "/repo/a.py", Module: ".b", Line: 1, Kind: model.ImportFrom},
		{SourceFile: "/repo/b.py", Module: ".c", Line: 1, Kind: model.ImportFrom},
		{SourceFile: "/repo/c.py", Module: ".a", Line: 1, Kind: model.ImportFrom},
	}

	result := Resolve(pr)
	if len(result.Cycles) != 1 {
		t.Fatalf("expected exactly 1 cycle, got %d: %+v", len(result.Cycles), result.Cycles)
	}
	cycle := result.Cycles[0]
	if cycle.Files[0] != "/repo/a.py" {
		t.Fatalf("expected canonical rotation to start at lexicographically smallest node, got %+v", cycle.Files)
	}
}

func TestNoCycleWhenGraphIsAcyclic(t *testing.T) {
	pr := model.NewParseResult()
	pr.Files["/repo/a.py"] = &model.File{Path: "/repo/a.py"}
	pr.Files["/repo/b.py"] = &model.File{Path: "/repo/b.py"}
	pr.ImportsDetailed = []model.ImportDetail{
		{SourceFile: "/repo/a.py", Module: ".b", Line: 1, Kind: model.ImportFrom},
	}
	result := Resolve(pr)
	if len(result.Cycles) != 0 {
		t.Fatalf("expected no cycles, got %+v", result.Cycles)
	}
}
