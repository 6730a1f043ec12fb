package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/standardbeagle/orc/pkg/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "orc.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertFileIndexRoundTrip(t *testing.T) {
	s := openTestStore(t)

	f := &model.File{Path: "/repo/a.py", Language: model.LangPython, LOC: 10, ContentHash: "abc"}
	if err := s.UpsertFileIndex(f); err != nil {
		t.Fatalf("UpsertFileIndex: %v", err)
	}

	rows, err := s.QueryFiles(FileQuery{PathPattern: "a.py"})
	if err != nil {
		t.Fatalf("QueryFiles: %v", err)
	}
	if len(rows) != 1 || rows[0].Path != "/repo/a.py" || rows[0].LOC != 10 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestBulkUpsertFunctionsReplaceSemantics(t *testing.T) {
	s := openTestStore(t)
	if err := s.UpsertFileIndex(&model.File{Path: "/repo/a.py", Language: model.LangPython}); err != nil {
		t.Fatalf("UpsertFileIndex: %v", err)
	}

	fn := &model.Function{ID: "/repo/a.py::foo", Name: "foo", File: "/repo/a.py", LineStart: 1, Complexity: 2}
	if err := s.BulkUpsertFunctions(map[string]*model.Function{fn.ID: fn}); err != nil {
		t.Fatalf("BulkUpsertFunctions: %v", err)
	}

	fn.Complexity = 9
	if err := s.BulkUpsertFunctions(map[string]*model.Function{fn.ID: fn}); err != nil {
		t.Fatalf("BulkUpsertFunctions (replace): %v", err)
	}

	rows, err := s.QueryFunctions(FunctionQuery{NamePattern: "foo"})
	if err != nil {
		t.Fatalf("QueryFunctions: %v", err)
	}
	if len(rows) != 1 || rows[0].Complexity != 9 {
		t.Fatalf("expected single replaced row with complexity 9, got %+v", rows)
	}
}

func TestClearFileIndexForPathCascades(t *testing.T) {
	s := openTestStore(t)
	if err := s.UpsertFileIndex(&model.File{Path: "/repo/a.py", Language: model.LangPython}); err != nil {
		t.Fatalf("UpsertFileIndex: %v", err)
	}
	fn := &model.Function{ID: "/repo/a.py::foo", Name: "foo", File: "/repo/a.py", LineStart: 1}
	if err := s.BulkUpsertFunctions(map[string]*model.Function{fn.ID: fn}); err != nil {
		t.Fatalf("BulkUpsertFunctions: %v", err)
	}

	if err := s.ClearFileIndexForPath("/repo/a.py"); err != nil {
		t.Fatalf("ClearFileIndexForPath: %v", err)
	}

	files, err := s.QueryFiles(FileQuery{})
	if err != nil {
		t.Fatalf("QueryFiles: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected file_index cleared, got %+v", files)
	}
	funcs, err := s.QueryFunctions(FunctionQuery{})
	if err != nil {
		t.Fatalf("QueryFunctions: %v", err)
	}
	if len(funcs) != 0 {
		t.Fatalf("expected cascaded function_index clear, got %+v", funcs)
	}
}

func TestApplyParseResultPurgesRemovedPaths(t *testing.T) {
	s := openTestStore(t)

	first := model.NewParseResult()
	first.Files["/repo/a.py"] = &model.File{Path: "/repo/a.py", Language: model.LangPython}
	first.Files["/repo/b.py"] = &model.File{Path: "/repo/b.py", Language: model.LangPython}
	if err := s.ApplyParseResult(first, time.Unix(1000, 0)); err != nil {
		t.Fatalf("ApplyParseResult (first): %v", err)
	}

	second := model.NewParseResult()
	second.Files["/repo/a.py"] = &model.File{Path: "/repo/a.py", Language: model.LangPython}
	if err := s.ApplyParseResult(second, time.Unix(2000, 0)); err != nil {
		t.Fatalf("ApplyParseResult (second): %v", err)
	}

	files, err := s.QueryFiles(FileQuery{})
	if err != nil {
		t.Fatalf("QueryFiles: %v", err)
	}
	if len(files) != 1 || files[0].Path != "/repo/a.py" {
		t.Fatalf("expected only a.py to remain after purge, got %+v", files)
	}

	manifestPaths, err := s.IterManifestPaths()
	if err != nil {
		t.Fatalf("IterManifestPaths: %v", err)
	}
	if len(manifestPaths) != 1 || manifestPaths[0] != "/repo/a.py" {
		t.Fatalf("expected manifest to track only a.py, got %+v", manifestPaths)
	}
}

func TestApplyFileOverlaysAttributesPerFile(t *testing.T) {
	s := openTestStore(t)
	pr := model.NewParseResult()
	pr.Files["/repo/a.py"] = &model.File{Path: "/repo/a.py", Language: model.LangPython}
	pr.Files["/repo/b.py"] = &model.File{Path: "/repo/b.py", Language: model.LangPython}
	pr.ConfigUsages = []model.ConfigUsage{
		{File: "/repo/a.py", Key: "DATABASE_URL", Kind: model.ConfigUsageEnv, Line: 3},
		{File: "/repo/b.py", Key: "API_KEY", Kind: model.ConfigUsageEnv, Line: 7},
	}

	if err := s.UpsertFileIndex(pr.Files["/repo/a.py"]); err != nil {
		t.Fatalf("UpsertFileIndex a.py: %v", err)
	}
	if err := s.UpsertFileIndex(pr.Files["/repo/b.py"]); err != nil {
		t.Fatalf("UpsertFileIndex b.py: %v", err)
	}
	if err := s.ApplyFileOverlays("/repo/a.py", pr); err != nil {
		t.Fatalf("ApplyFileOverlays a.py: %v", err)
	}
	if err := s.ApplyFileOverlays("/repo/b.py", pr); err != nil {
		t.Fatalf("ApplyFileOverlays b.py: %v", err)
	}

	var key string
	if err := s.readDB.QueryRow(`SELECT key FROM config_usage WHERE file_path = ?`, "/repo/a.py").Scan(&key); err != nil {
		t.Fatalf("query config_usage a.py: %v", err)
	}
	if key != "DATABASE_URL" {
		t.Fatalf("expected a.py's own config usage, got %q", key)
	}
	if err := s.readDB.QueryRow(`SELECT key FROM config_usage WHERE file_path = ?`, "/repo/b.py").Scan(&key); err != nil {
		t.Fatalf("query config_usage b.py: %v", err)
	}
	if key != "API_KEY" {
		t.Fatalf("expected b.py's own config usage, got %q", key)
	}
}

func TestSearchSymbolsOrdersFunctionsClassesFiles(t *testing.T) {
	s := openTestStore(t)
	if err := s.UpsertFileIndex(&model.File{Path: "/repo/widget.py", Language: model.LangPython}); err != nil {
		t.Fatalf("UpsertFileIndex: %v", err)
	}
	fn := &model.Function{ID: "/repo/widget.py::WidgetFactory", Name: "WidgetFactory", File: "/repo/widget.py", LineStart: 1}
	if err := s.BulkUpsertFunctions(map[string]*model.Function{fn.ID: fn}); err != nil {
		t.Fatalf("BulkUpsertFunctions: %v", err)
	}
	cls := &model.Class{ID: "/repo/widget.py::Widget", Name: "Widget", File: "/repo/widget.py", LineStart: 5}
	if err := s.BulkUpsertClasses(map[string]*model.Class{cls.ID: cls}); err != nil {
		t.Fatalf("BulkUpsertClasses: %v", err)
	}

	matches, err := s.SearchSymbols("Widget", 10)
	if err != nil {
		t.Fatalf("SearchSymbols: %v", err)
	}
	if len(matches) < 3 {
		t.Fatalf("expected function, class, and file matches, got %+v", matches)
	}
	if matches[0].Kind != "function" {
		t.Fatalf("expected function matches first, got %+v", matches)
	}
}

func TestGetStatistics(t *testing.T) {
	s := openTestStore(t)
	if err := s.UpsertFileIndex(&model.File{Path: "/repo/a.py", Language: model.LangPython}); err != nil {
		t.Fatalf("UpsertFileIndex: %v", err)
	}
	if err := s.UpsertFileIndex(&model.File{Path: "/repo/b.ts", Language: model.LangTypeScript}); err != nil {
		t.Fatalf("UpsertFileIndex: %v", err)
	}
	fns := map[string]*model.Function{
		"/repo/a.py::f1": {ID: "/repo/a.py::f1", Name: "f1", File: "/repo/a.py", Complexity: 2},
		"/repo/a.py::f2": {ID: "/repo/a.py::f2", Name: "f2", File: "/repo/a.py", Complexity: 8},
	}
	if err := s.BulkUpsertFunctions(fns); err != nil {
		t.Fatalf("BulkUpsertFunctions: %v", err)
	}

	stats, err := s.GetStatistics()
	if err != nil {
		t.Fatalf("GetStatistics: %v", err)
	}
	if stats.TotalFiles != 2 || stats.TotalFunctions != 2 {
		t.Fatalf("unexpected totals: %+v", stats)
	}
	if stats.MaxComplexity != 8 {
		t.Fatalf("expected max complexity 8, got %+v", stats)
	}
	if stats.FilesByLanguage["python"] != 1 || stats.FilesByLanguage["typescript"] != 1 {
		t.Fatalf("expected one file per language, got %+v", stats.FilesByLanguage)
	}
}

func TestGetComplexFunctionsThreshold(t *testing.T) {
	s := openTestStore(t)
	if err := s.UpsertFileIndex(&model.File{Path: "/repo/a.py", Language: model.LangPython}); err != nil {
		t.Fatalf("UpsertFileIndex: %v", err)
	}
	fns := map[string]*model.Function{
		"/repo/a.py::simple": {ID: "/repo/a.py::simple", Name: "simple", File: "/repo/a.py", Complexity: 1},
		"/repo/a.py::gnarly": {ID: "/repo/a.py::gnarly", Name: "gnarly", File: "/repo/a.py", Complexity: 15},
	}
	if err := s.BulkUpsertFunctions(fns); err != nil {
		t.Fatalf("BulkUpsertFunctions: %v", err)
	}

	rows, err := s.GetComplexFunctions(10)
	if err != nil {
		t.Fatalf("GetComplexFunctions: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "gnarly" {
		t.Fatalf("expected only gnarly above threshold, got %+v", rows)
	}
}
