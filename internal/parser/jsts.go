package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/standardbeagle/orc/pkg/model"
)

// JSParser is the heuristic, line-scanned regex-class parser spec.md
// §4.5 calls for: no full parse tree, just top-level recognizers for
// function/class/import/export, with TS and React recognizers layered
// on when lang/react request them. Grounded on the same
// line-scan-plus-regex-table approach as PythonParser, generalized to
// brace-delimited languages.
type JSParser struct {
	lang  model.Language
	react bool
}

var (
	jsFunctionPattern   = regexp.MustCompile(`^\s*(export\s+)?(default\s+)?(async\s+)?function\s*\*?\s+(\w+)\s*\(`)
	jsArrowConstPattern = regexp.MustCompile(`^\s*(export\s+)?(default\s+)?const\s+(\w+)\s*(?::\s*[^=]+)?=\s*(async\s*)?\(`)
	jsClassPattern      = regexp.MustCompile(`^\s*(export\s+)?(default\s+)?class\s+(\w+)(?:\s+extends\s+([\w.]+))?`)
	jsImportPattern     = regexp.MustCompile(`^\s*import\s+(type\s+)?(.+?)\s+from\s+["'](.+?)["']`)
	jsImportBarePattern = regexp.MustCompile(`^\s*import\s+["'](.+?)["']`)
	jsExportNamed       = regexp.MustCompile(`^\s*export\s+(?:default\s+)?(function|class|const|let|var)\s+(\w+)`)

	tsInterfacePattern = regexp.MustCompile(`^\s*(export\s+)?interface\s+(\w+)`)
	tsTypePattern      = regexp.MustCompile(`^\s*(export\s+)?type\s+(\w+)\s*=`)
	tsEnumPattern      = regexp.MustCompile(`^\s*(export\s+)?enum\s+(\w+)`)
	tsNamespacePattern = regexp.MustCompile(`^\s*(export\s+)?namespace\s+(\w+)`)
	tsDecoratorPattern = regexp.MustCompile(`^\s*@(\w+(?:\.\w+)*)`)

	reactComponentReturn = regexp.MustCompile(`return\s*\(?\s*<`)
	reactHookCall        = regexp.MustCompile(`\buse[A-Z]\w*\s*\(`)
	reactMemoWrap        = regexp.MustCompile(`\b(React\.)?(memo|forwardRef|lazy)\s*\(`)
	reactPropTypes       = regexp.MustCompile(`\.propTypes\s*=`)
)

func (p *JSParser) Parse(path string, content []byte) *model.ParseResult {
	r := model.NewParseResult()
	lines := strings.Split(string(content), "\n")

	r.Files[path] = &model.File{
		Path:     path,
		Language: p.lang,
		LOC:      countLines(content),
	}

	for i, line := range lines {
		lineNo := i + 1

		if m := jsFunctionPattern.FindStringSubmatch(line); m != nil {
			p.recordFunction(r, path, m[4], lineNo, m[3] != "", m[1] != "" || m[2] != "")
			continue
		}
		if m := jsArrowConstPattern.FindStringSubmatch(line); m != nil {
			p.recordFunction(r, path, m[3], lineNo, m[4] != "", m[1] != "")
			continue
		}
		if m := jsClassPattern.FindStringSubmatch(line); m != nil {
			id := fmt.Sprintf("%s::%s", path, m[3])
			var bases []string
			if m[4] != "" {
				bases = []string{m[4]}
			}
			r.Classes[id] = &model.Class{
				ID: id, Name: m[3], File: path, Language: p.lang, LineStart: lineNo, Bases: bases,
			}
			if m[1] != "" {
				r.AddExport(path, m[3], model.ExportInfo{Kind: model.ExportClass, Line: lineNo})
			}
			if p.react && (m[4] == "Component" || strings.HasSuffix(m[4], ".Component")) {
				r.CrossCuttingConcerns = append(r.CrossCuttingConcerns, model.CrossCuttingConcern{
					File: path, ConcernType: "react_class_component", Line: lineNo,
				})
			}
			continue
		}
		if m := jsImportPattern.FindStringSubmatch(line); m != nil {
			module := m[3]
			names := parseJSImportNames(m[2])
			r.AddImport(path, module)
			r.ImportsDetailed = append(r.ImportsDetailed, model.ImportDetail{
				SourceFile: path,
				Module: module, Names: names, Line: lineNo, Kind: model.ImportFrom, Statement: strings.TrimSpace(line),
			})
			continue
		}
		if m := jsImportBarePattern.FindStringSubmatch(line); m != nil {
			r.AddImport(path, m[1])
			r.ImportsDetailed = append(r.ImportsDetailed, model.ImportDetail{
				SourceFile: path,
				Module: m[1], Line: lineNo, Kind: model.ImportPlain, Statement: strings.TrimSpace(line),
			})
			continue
		}
		if m := jsExportNamed.FindStringSubmatch(line); m != nil {
			kind := model.ExportFunction
			if m[1] == "class" {
				kind = model.ExportClass
			}
			r.AddExport(path, m[2], model.ExportInfo{Kind: kind, Line: lineNo})
		}

		if p.lang == model.LangTypeScript || p.react {
			p.scanTSConstructs(r, path, line, lineNo)
		}
		if p.react {
			p.scanReactConstructs(r, path, line, lineNo)
		}
	}

	scanOverlays(r, path, lines)
	return r
}

func (p *JSParser) recordFunction(r *model.ParseResult, path, name string, lineNo int, isAsync, exported bool) {
	if name == "" {
		return
	}
	id := fmt.Sprintf("%s::%s", path, name)
	r.Functions[id] = &model.Function{
		ID: id, Name: name, File: path, Language: p.lang, LineStart: lineNo,
		IsAsync: isAsync, IsExported: exported,
	}
	if exported {
		r.AddExport(path, name, model.ExportInfo{Kind: model.ExportFunction, Line: lineNo})
	}
	if p.react && isUpperInitial(name) {
		r.CrossCuttingConcerns = append(r.CrossCuttingConcerns, model.CrossCuttingConcern{
			File: path, ConcernType: "react_component_candidate", Line: lineNo,
		})
	}
}

func (p *JSParser) scanTSConstructs(r *model.ParseResult, path, line string, lineNo int) {
	if m := tsInterfacePattern.FindStringSubmatch(line); m != nil {
		r.DataModels = append(r.DataModels, model.DataModel{File: path, Name: m[2], Kind: "interface", Line: lineNo})
		if m[1] != "" {
			r.AddExport(path, m[2], model.ExportInfo{Kind: model.ExportClass, Line: lineNo})
		}
		return
	}
	if m := tsTypePattern.FindStringSubmatch(line); m != nil {
		r.DataModels = append(r.DataModels, model.DataModel{File: path, Name: m[2], Kind: "type_alias", Line: lineNo})
		return
	}
	if m := tsEnumPattern.FindStringSubmatch(line); m != nil {
		r.DataModels = append(r.DataModels, model.DataModel{File: path, Name: m[2], Kind: "enum", Line: lineNo})
		return
	}
	if m := tsNamespacePattern.FindStringSubmatch(line); m != nil {
		r.CrossCuttingConcerns = append(r.CrossCuttingConcerns, model.CrossCuttingConcern{
			File: path, ConcernType: "namespace:" + m[2], Line: lineNo,
		})
		return
	}
	if m := tsDecoratorPattern.FindStringSubmatch(line); m != nil {
		r.CrossCuttingConcerns = append(r.CrossCuttingConcerns, model.CrossCuttingConcern{
			File: path, ConcernType: "decorator:" + m[1], Line: lineNo,
		})
	}
}

func (p *JSParser) scanReactConstructs(r *model.ParseResult, path, line string, lineNo int) {
	if reactComponentReturn.MatchString(line) {
		r.CrossCuttingConcerns = append(r.CrossCuttingConcerns, model.CrossCuttingConcern{
			File: path, ConcernType: "react_jsx_return", Line: lineNo,
		})
	}
	if reactHookCall.MatchString(line) {
		r.CrossCuttingConcerns = append(r.CrossCuttingConcerns, model.CrossCuttingConcern{
			File: path, ConcernType: "react_hook_call", Line: lineNo,
		})
	}
	if reactMemoWrap.MatchString(line) {
		r.CrossCuttingConcerns = append(r.CrossCuttingConcerns, model.CrossCuttingConcern{
			File: path, ConcernType: "react_memo_wrapper", Line: lineNo,
		})
	}
	if reactPropTypes.MatchString(line) {
		r.CrossCuttingConcerns = append(r.CrossCuttingConcerns, model.CrossCuttingConcern{
			File: path, ConcernType: "react_proptypes", Line: lineNo,
		})
	}
}

func parseJSImportNames(clause string) []string {
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return nil
	}
	if idx := strings.Index(clause, "{"); idx != -1 {
		end := strings.Index(clause, "}")
		if end > idx {
			inner := clause[idx+1 : end]
			var names []string
			for _, n := range strings.Split(inner, ",") {
				n = strings.TrimSpace(n)
				if n == "" {
					continue
				}
				if as := strings.Index(n, " as "); as != -1 {
					n = strings.TrimSpace(n[:as])
				}
				names = append(names, n)
			}
			return names
		}
	}
	return []string{strings.TrimSpace(strings.SplitN(clause, ",", 2)[0])}
}

func isUpperInitial(name string) bool {
	return name != "" && name[0] >= 'A' && name[0] <= 'Z'
}
