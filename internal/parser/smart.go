package parser

import (
	"strings"

	"github.com/standardbeagle/orc/pkg/model"
)

// AutoPythonParser runs the base Python parser and then applies the
// Django or FastAPI annotator when the file's own content identifies
// the framework, so the registry doesn't need a separate parser per
// possible framework combination (spec.md §4.5: annotators "wrap a
// base language parser").
type AutoPythonParser struct{}

func (p *AutoPythonParser) Parse(path string, content []byte) *model.ParseResult {
	text := string(content)
	switch {
	case strings.Contains(text, "django"):
		return NewDjangoAnnotator(&PythonParser{}).Parse(path, content)
	case fastAPIRoutePattern.Match(content):
		return NewFastAPIAnnotator(&PythonParser{}).Parse(path, content)
	default:
		return (&PythonParser{}).Parse(path, content)
	}
}

// AutoMarkupParser wraps the HTML/JSX structured or JS parser with the
// Tailwind annotator when the file contains Tailwind-shaped utility
// classes.
type AutoMarkupParser struct {
	base Parser
}

func (p *AutoMarkupParser) Parse(path string, content []byte) *model.ParseResult {
	if tailwindClassPattern.Match(content) {
		return NewTailwindAnnotator(p.base).Parse(path, content)
	}
	return p.base.Parse(path, content)
}
