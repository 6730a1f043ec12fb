package toc

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/standardbeagle/orc/internal/cache"
	"github.com/standardbeagle/orc/internal/store"
	"github.com/standardbeagle/orc/pkg/model"
)

func seedStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "orc.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	pr := model.NewParseResult()
	pr.Files["/repo/user_service.py"] = &model.File{Path: "/repo/user_service.py", Language: model.LangPython, LOC: 42}
	pr.Functions["/repo/user_service.py::getUserById"] = &model.Function{
		ID: "/repo/user_service.py::getUserById", Name: "getUserById", File: "/repo/user_service.py",
		LineStart: 10, Complexity: 25,
	}
	pr.Classes["/repo/user_service.py::UserRepository"] = &model.Class{
		ID: "/repo/user_service.py::UserRepository", Name: "UserRepository", File: "/repo/user_service.py", LineStart: 1,
	}
	pr.APIEndpoints = []model.APIEndpoint{
		{File: "/repo/user_service.py", Route: "/api/users", Method: "GET", Handler: "getUserById", Line: 10},
	}
	pr.SecurityRisks = []model.SecurityRisk{
		{File: "/repo/user_service.py", RiskType: "hardcoded_secret", RiskLevel: model.RiskCritical, Reason: "api key literal", Line: 5},
	}
	if err := s.ApplyParseResult(pr, time.Unix(1000, 0)); err != nil {
		t.Fatalf("ApplyParseResult: %v", err)
	}
	return s
}

func TestBuildExtractsKeywordsFromCamelCaseName(t *testing.T) {
	g := New(seedStore(t), nil)
	doc, err := g.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	for _, kw := range []string{"user", "get"} {
		if _, ok := doc.Keywords[kw]; !ok {
			t.Fatalf("expected keyword %q derived from getUserById, got keys %v", kw, keysOf(doc.Keywords))
		}
	}
	if _, ok := doc.Keywords["by"]; ok {
		t.Fatalf("expected short token 'by' to be discarded")
	}
}

func TestBuildPopulatesSections(t *testing.T) {
	g := New(seedStore(t), nil)
	doc, err := g.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(doc.Sections.Functions) != 1 || doc.Sections.Functions[0].Name != "getUserById" {
		t.Fatalf("expected getUserById in top functions, got %+v", doc.Sections.Functions)
	}
	if len(doc.Sections.Classes) != 1 || doc.Sections.Classes[0].Name != "UserRepository" {
		t.Fatalf("expected UserRepository class, got %+v", doc.Sections.Classes)
	}
	if len(doc.Sections.APIEndpoints) != 1 || doc.Sections.APIEndpoints[0].Route != "/api/users" {
		t.Fatalf("expected /api/users route group, got %+v", doc.Sections.APIEndpoints)
	}
	if len(doc.Sections.SecurityRisks) != 1 {
		t.Fatalf("expected critical risk surfaced, got %+v", doc.Sections.SecurityRisks)
	}
	if doc.Statistics.TotalFunctions != 1 || doc.Statistics.TotalClasses != 1 || doc.Statistics.TotalLines != 42 {
		t.Fatalf("unexpected statistics: %+v", doc.Statistics)
	}
}

func TestSearchReturnsLocationsForDerivedKeyword(t *testing.T) {
	g := New(seedStore(t), nil)
	if _, err := g.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}
	results, err := g.Search("User")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) == 0 {
		t.Fatalf("expected at least one result for 'User'")
	}
	for _, r := range results {
		if r.File != "/repo/user_service.py" {
			t.Fatalf("unexpected file in search result: %+v", r)
		}
	}
}

func TestSearchBeforeBuildReturnsError(t *testing.T) {
	g := New(seedStore(t), nil)
	if _, err := g.Search("user"); err == nil {
		t.Fatalf("expected error searching before Build")
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := seedStore(t)
	g := New(s, nil)
	if _, err := g.Build(); err != nil {
		t.Fatalf("Build: %v", err)
	}

	c, err := cache.Open(t.TempDir())
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	if err := g.Save(c); err != nil {
		t.Fatalf("Save: %v", err)
	}

	fresh := New(s, nil)
	ok, err := fresh.Load(c)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !ok {
		t.Fatalf("expected Load to find a cached document")
	}
	if fresh.Document().Statistics.TotalFunctions != 1 {
		t.Fatalf("expected loaded document to match built one, got %+v", fresh.Document().Statistics)
	}
}

func keysOf[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
