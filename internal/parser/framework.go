package parser

import (
	"regexp"
	"strings"

	"github.com/standardbeagle/orc/pkg/model"
)

// FrameworkAnnotator wraps a base Parser and stamps files[*].framework
// plus derives semantic overlays (spec.md §4.5: "wrap a base language
// parser and annotate files[*].framework plus semantic overlays").
type FrameworkAnnotator struct {
	base Parser
	name string
}

// NewDjangoAnnotator detects Django URL patterns (path()/re_path()/url())
// and view decorators, annotating api_endpoints.
func NewDjangoAnnotator(base Parser) *FrameworkAnnotator {
	return &FrameworkAnnotator{base: base, name: "django"}
}

// NewFastAPIAnnotator detects FastAPI route decorators
// (@app.get("/x"), @router.post("/x")).
func NewFastAPIAnnotator(base Parser) *FrameworkAnnotator {
	return &FrameworkAnnotator{base: base, name: "fastapi"}
}

// NewTailwindAnnotator detects Tailwind utility-class usage in markup
// and JSX files, annotating it as a cross-cutting concern rather than
// an API endpoint.
func NewTailwindAnnotator(base Parser) *FrameworkAnnotator {
	return &FrameworkAnnotator{base: base, name: "tailwind"}
}

var (
	djangoURLPattern   = regexp.MustCompile(`(?:path|re_path|url)\s*\(\s*["']([^"']*)["']\s*,\s*([\w.]+)`)
	fastAPIRoutePattern = regexp.MustCompile(`@(?:\w+)\.(get|post|put|patch|delete)\s*\(\s*["']([^"']+)["']`)
	tailwindClassPattern = regexp.MustCompile(`class(?:Name)?\s*=\s*["']([^"']*\b(?:flex|grid|text-|bg-|p-\d|m-\d|w-\d|h-\d)\b[^"']*)["']`)
)

func (a *FrameworkAnnotator) Parse(path string, content []byte) *model.ParseResult {
	r := a.base.Parse(path, content)
	if r == nil {
		return r
	}
	if f, ok := r.Files[path]; ok {
		f.Framework = a.name
	}

	switch a.name {
	case "django":
		for i, line := range strings.Split(string(content), "\n") {
			if m := djangoURLPattern.FindStringSubmatch(line); m != nil {
				r.APIEndpoints = append(r.APIEndpoints, model.APIEndpoint{
					Route: m[1], Method: "ANY", Handler: m[2], Line: i + 1,
				})
			}
		}
	case "fastapi":
		for i, line := range strings.Split(string(content), "\n") {
			if m := fastAPIRoutePattern.FindStringSubmatch(line); m != nil {
				r.APIEndpoints = append(r.APIEndpoints, model.APIEndpoint{
					Route: m[2], Method: strings.ToUpper(m[1]), Line: i + 1,
				})
			}
		}
	case "tailwind":
		for i, line := range strings.Split(string(content), "\n") {
			if tailwindClassPattern.MatchString(line) {
				r.CrossCuttingConcerns = append(r.CrossCuttingConcerns, model.CrossCuttingConcern{
					ConcernType: "tailwind_utility_classes", Line: i + 1,
				})
			}
		}
	}

	return r
}
