// Package parser implements C5: one Parser per language family, each a
// pure function of file bytes to a *model.ParseResult. Dispatch is a
// static extension→parser table (no dynamic plugin loading — an Open
// Question in spec.md §9 resolved in favor of the teacher's own static
// per-language-analyzer registration in internal/analysis).
package parser

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/standardbeagle/orc/pkg/model"
)

// Parser converts one file's bytes into a ParseResult. Implementations
// must be deterministic and must never mutate shared state — workers
// run in parallel and share no memory (spec.md §4.6).
type Parser interface {
	Parse(path string, content []byte) *model.ParseResult
}

// Registry maps a lowercased file extension (including the leading dot)
// to the Parser responsible for it.
type Registry struct {
	byExt map[string]Parser
}

// NewRegistry builds the default extension→parser table.
func NewRegistry() *Registry {
	py := &AutoPythonParser{}
	js := &JSParser{lang: model.LangJavaScript}
	ts := &JSParser{lang: model.LangTypeScript}
	react := &AutoMarkupParser{base: &JSParser{lang: model.LangReact, react: true}}
	html := &AutoMarkupParser{base: &StructuredParser{lang: model.LangHTML}}
	css := &StructuredParser{lang: model.LangCSS}
	jsonP := &StructuredParser{lang: model.LangJSON}
	yamlP := &StructuredParser{lang: model.LangYAML}
	md := &StructuredParser{lang: model.LangMarkdown}

	return &Registry{byExt: map[string]Parser{
		".py":   py,
		".js":   js,
		".mjs":  js,
		".cjs":  js,
		".ts":   ts,
		".jsx":  react,
		".tsx":  react,
		".html": html,
		".htm":  html,
		".css":  css,
		".json": jsonP,
		".yaml": yamlP,
		".yml":  yamlP,
		".md":   md,
	}}
}

// Lookup returns the parser for ext (a lowercased extension including
// the dot), or nil if no parser is registered.
func (r *Registry) Lookup(ext string) Parser {
	return r.byExt[strings.ToLower(ext)]
}

var extLanguages = map[string]model.Language{
	".py":   model.LangPython,
	".js":   model.LangJavaScript,
	".mjs":  model.LangJavaScript,
	".cjs":  model.LangJavaScript,
	".ts":   model.LangTypeScript,
	".jsx":  model.LangReact,
	".tsx":  model.LangReact,
	".html": model.LangHTML,
	".htm":  model.LangHTML,
	".css":  model.LangCSS,
	".json": model.LangJSON,
	".yaml": model.LangYAML,
	".yml":  model.LangYAML,
	".md":   model.LangMarkdown,
}

// LanguageForExt returns the Language tag associated with ext, or
// LangUnknown if none is registered.
func LanguageForExt(ext string) model.Language {
	if lang, ok := extLanguages[strings.ToLower(ext)]; ok {
		return lang
	}
	return model.LangUnknown
}

// ParseFile reads path from disk and parses it with the registered
// parser for its extension. Callers are expected to have already
// checked ext is registered (the orchestrator groups tasks by
// extension before dispatch); a nil Parser or unreadable file yields a
// minimal ParseResult carrying just the file record and a ParseError,
// per spec.md §4.5/§7.
func ParseFile(reg *Registry, path string, lang model.Language) *model.ParseResult {
	content, err := os.ReadFile(path)
	if err != nil {
		return minimalResult(path, lang, err.Error())
	}

	p := reg.Lookup(strings.ToLower(filepath.Ext(path)))
	if p == nil {
		return minimalResult(path, lang, "no parser registered for extension")
	}

	result := p.Parse(path, content)
	if result == nil {
		return minimalResult(path, lang, "parser returned nil result")
	}
	return result
}

func minimalResult(path string, lang model.Language, errMsg string) *model.ParseResult {
	r := model.NewParseResult()
	r.Files[path] = &model.File{
		Path:       path,
		Language:   lang,
		ParseError: errMsg,
	}
	return r
}

func countLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	n := strings.Count(string(content), "\n")
	if content[len(content)-1] != '\n' {
		n++
	}
	return n
}
