package parser

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/standardbeagle/orc/pkg/model"
)

// StructuredParser handles JSON, YAML, HTML, CSS and Markdown: record
// language and LOC, and for the machine-readable formats attach the
// parsed content's top-level key set as metadata when the file parses;
// unparseable or markup-only files still get a plain file record,
// matching spec.md §4.5's "else only the raw file record" fallback.
type StructuredParser struct {
	lang model.Language
}

func (p *StructuredParser) Parse(path string, content []byte) *model.ParseResult {
	r := model.NewParseResult()
	file := &model.File{
		Path:     path,
		Language: p.lang,
		LOC:      countLines(content),
	}

	switch p.lang {
	case model.LangJSON:
		var v interface{}
		if err := json.Unmarshal(content, &v); err == nil {
			file.Metadata = topLevelKeys(v)
		} else {
			file.ParseError = err.Error()
		}
	case model.LangYAML:
		var v interface{}
		if err := yaml.Unmarshal(content, &v); err == nil {
			file.Metadata = topLevelKeys(normalizeYAML(v))
		} else {
			file.ParseError = err.Error()
		}
	}

	r.Files[path] = file
	return r
}

func topLevelKeys(v interface{}) map[string]string {
	m, ok := v.(map[string]interface{})
	if !ok || len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k := range m {
		out[k] = "present"
	}
	return out
}

// normalizeYAML converts map[interface{}]interface{} (yaml.v3's decode
// target for untyped documents) into map[string]interface{} so
// topLevelKeys can treat JSON and YAML uniformly.
func normalizeYAML(v interface{}) interface{} {
	switch m := v.(type) {
	case map[string]interface{}:
		return m
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			if ks, ok := k.(string); ok {
				out[ks] = val
			}
		}
		return out
	default:
		return nil
	}
}
