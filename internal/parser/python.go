package parser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/standardbeagle/orc/pkg/model"
)

// PythonParser is a heuristic, indentation-tracked line scanner
// (regex-class/function/import patterns, indent-tracked class context)
// rather than a native AST walk. Each of the passes below
// (classes+functions, imports, calls, complexity) is a single linear
// scan over the file's lines; multi-line statements, nested dedent
// boundaries, and colons inside decorator arguments can be mis-scanned
// as a result.
type PythonParser struct{}

var (
	pyClassPattern    = regexp.MustCompile(`(?m)^(\s*)class\s+(\w+)(?:\s*\(([^)]*)\))?\s*:`)
	pyFunctionPattern = regexp.MustCompile(`(?m)^(\s*)(async\s+)?def\s+(\w+)\s*\(([^)]*)\)(?:\s*->\s*([^:]+))?\s*:`)
	pyImportPattern   = regexp.MustCompile(`(?m)^import\s+(.+)$`)
	pyFromImport      = regexp.MustCompile(`(?m)^from\s+(\S+)\s+import\s+(.+)$`)
	pyDecorator       = regexp.MustCompile(`(?m)^(\s*)@(\w+(?:\.\w+)*)(?:\s*\(([^)]*)\))?`)
	pyCallPattern     = regexp.MustCompile(`(\w+(?:\.\w+)*)\s*\(`)
	pyMainPattern     = regexp.MustCompile(`if\s+__name__\s*==\s*["'].*main.*["']\s*:`)

	// Branch-node patterns counted toward cyclomatic complexity: if,
	// for, while, except, boolean operators, comprehension filters,
	// ternary expressions, assert, pattern-match cases.
	pyBranchPattern = regexp.MustCompile(`\b(if|elif|for|while|except|assert|case)\b|\band\b|\bor\b| if .+ else |\bmatch\s+\w`)

	pyKeywords = map[string]bool{
		"if": true, "elif": true, "else": true, "for": true, "while": true,
		"try": true, "except": true, "finally": true, "with": true, "as": true,
		"import": true, "from": true, "class": true, "def": true, "return": true,
		"yield": true, "raise": true, "assert": true, "pass": true, "break": true,
		"continue": true, "del": true, "in": true, "not": true, "and": true,
		"or": true, "is": true, "lambda": true, "global": true, "nonlocal": true,
		"True": true, "False": true, "None": true, "async": true, "await": true,
		"print": true, "len": true, "range": true, "str": true, "int": true,
		"float": true, "list": true, "dict": true, "set": true, "tuple": true,
		"type": true, "isinstance": true, "issubclass": true, "super": true,
		"self": true, "cls": true,
	}
)

func (p *PythonParser) Parse(path string, content []byte) *model.ParseResult {
	r := model.NewParseResult()
	lines := strings.Split(string(content), "\n")

	r.Files[path] = &model.File{
		Path:     path,
		Language: model.LangPython,
		LOC:      countLines(content),
	}

	type classCtx struct {
		id     string
		indent int
	}
	var classStack []classCtx
	var pendingDecorators []string

	for i, line := range lines {
		lineNo := i + 1

		if m := pyDecorator.FindStringSubmatch(line); m != nil {
			dec := "@" + m[2]
			if m[3] != "" {
				dec += "(" + m[3] + ")"
			}
			pendingDecorators = append(pendingDecorators, dec)
			continue
		}

		if m := pyClassPattern.FindStringSubmatch(line); m != nil {
			indent := len(m[1])
			name := m[2]
			for len(classStack) > 0 && indent <= classStack[len(classStack)-1].indent {
				classStack = classStack[:len(classStack)-1]
			}
			id := fmt.Sprintf("%s::%s", path, name)
			var bases []string
			if strings.TrimSpace(m[3]) != "" {
				for _, b := range strings.Split(m[3], ",") {
					b = strings.TrimSpace(b)
					if b != "" && b != "object" {
						bases = append(bases, b)
					}
				}
			}
			r.Classes[id] = &model.Class{
				ID:         id,
				Name:       name,
				File:       path,
				Language:   model.LangPython,
				LineStart:  lineNo,
				Bases:      bases,
				Decorators: pendingDecorators,
				Docstring:  extractPyDocstring(lines, i+1),
			}
			pendingDecorators = nil
			classStack = append(classStack, classCtx{id: id, indent: indent})
			if name != "" && !strings.HasPrefix(name, "_") {
				r.AddExport(path, name, model.ExportInfo{Kind: model.ExportClass, Line: lineNo})
			}
			continue
		}

		if m := pyFunctionPattern.FindStringSubmatch(line); m != nil {
			indent := len(m[1])
			isAsync := m[2] != ""
			name := m[3]
			returnType := strings.TrimSpace(m[5])

			for len(classStack) > 0 && indent <= classStack[len(classStack)-1].indent {
				classStack = classStack[:len(classStack)-1]
			}
			isMethod := len(classStack) > 0

			id := fmt.Sprintf("%s::%s", path, name)
			fn := &model.Function{
				ID:         id,
				Name:       name,
				File:       path,
				Language:   model.LangPython,
				LineStart:  lineNo,
				Params:     parsePyParams(m[4]),
				IsExported: !strings.HasPrefix(name, "_"),
				IsAsync:    isAsync,
				ReturnType: returnType,
				Decorators: pendingDecorators,
			}
			fn.LineEnd, fn.Complexity, fn.Calls = analyzePyBody(lines, i, indent)
			fn.Docstring = extractPyDocstring(lines, i+1)
			fn.SourceSlice = strings.Join(lines[i:fn.LineEnd], "\n")
			r.Functions[id] = fn
			pendingDecorators = nil

			if isMethod {
				cls := r.Classes[classStack[len(classStack)-1].id]
				if cls != nil {
					cls.Methods = append(cls.Methods, model.Method{
						Name:        name,
						IsAsync:     isAsync,
						IsClassMeth: hasDecoratorSuffix(fn.Decorators, "classmethod"),
						IsStaticMeth: hasDecoratorSuffix(fn.Decorators, "staticmethod"),
						IsProperty:  hasDecoratorSuffix(fn.Decorators, "property"),
						IsPrivate:   strings.HasPrefix(name, "_"),
					})
				}
			} else if fn.IsExported {
				r.AddExport(path, name, model.ExportInfo{Kind: model.ExportFunction, Line: lineNo})
			}
			continue
		}

		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") && !strings.HasPrefix(trimmed, "@") {
			pendingDecorators = nil
		}

		if pyMainPattern.MatchString(line) {
			r.EntryPoints = append(r.EntryPoints, model.EntryPoint{
				File: path, EntryType: "__main__", Line: lineNo, Confidence: 0.95,
			})
		}
	}

	parsePyImports(r, path, lines)
	scanOverlays(r, path, lines)
	return r
}

func parsePyParams(raw string) []model.Param {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var params []model.Param
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" || part == "self" || part == "cls" {
			continue
		}
		name := part
		typ := ""
		if idx := strings.Index(part, ":"); idx != -1 {
			name = strings.TrimSpace(part[:idx])
			typ = strings.TrimSpace(part[idx+1:])
		}
		if idx := strings.Index(name, "="); idx != -1 {
			name = strings.TrimSpace(name[:idx])
		}
		name = strings.TrimLeft(name, "*")
		if name == "" {
			continue
		}
		params = append(params, model.Param{Name: name, Type: typ})
	}
	return params
}

// analyzePyBody scans from the def line to the first line at or below
// funcIndent, counting branch nodes for complexity (base 1) and
// collecting call targets (dotted chains included, keywords excluded).
func analyzePyBody(lines []string, defLine, funcIndent int) (lineEnd, complexity int, calls []string) {
	complexity = 1
	lineEnd = defLine + 1
	seen := make(map[string]bool)

	for i := defLine + 1; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			indent := len(line) - len(strings.TrimLeft(line, " \t"))
			if !strings.HasPrefix(trimmed, "#") && indent <= funcIndent {
				break
			}
			lineEnd = i + 1
		}

		complexity += len(pyBranchPattern.FindAllString(line, -1))

		for _, m := range pyCallPattern.FindAllStringSubmatch(line, -1) {
			name := m[1]
			base := name
			if idx := strings.LastIndex(name, "."); idx != -1 {
				base = name[idx+1:]
			}
			if pyKeywords[base] || seen[name] {
				continue
			}
			seen[name] = true
			calls = append(calls, name)
		}
	}
	return lineEnd, complexity, calls
}

// extractPyDocstring returns a function or class body's docstring: the
// first statement, if it is a bare string literal. start is the first
// line of the body (one past the def/class header). Triple-quoted
// strings may span multiple lines.
func extractPyDocstring(lines []string, start int) string {
	i := start
	for i < len(lines) && strings.TrimSpace(lines[i]) == "" {
		i++
	}
	if i >= len(lines) {
		return ""
	}
	trimmed := strings.TrimSpace(lines[i])

	for _, q := range []string{`"""`, `'''`} {
		if !strings.HasPrefix(trimmed, q) {
			continue
		}
		rest := trimmed[len(q):]
		if idx := strings.Index(rest, q); idx != -1 {
			return strings.TrimSpace(rest[:idx])
		}
		var sb strings.Builder
		sb.WriteString(rest)
		for j := i + 1; j < len(lines); j++ {
			if idx := strings.Index(lines[j], q); idx != -1 {
				sb.WriteString("\n")
				sb.WriteString(lines[j][:idx])
				return strings.TrimSpace(sb.String())
			}
			sb.WriteString("\n")
			sb.WriteString(lines[j])
		}
		return strings.TrimSpace(sb.String())
	}

	for _, q := range []string{`"`, `'`} {
		if strings.HasPrefix(trimmed, q) && strings.HasSuffix(trimmed, q) && len(trimmed) >= 2 {
			inner := trimmed[1 : len(trimmed)-1]
			if !strings.Contains(inner, q) {
				return strings.TrimSpace(inner)
			}
		}
	}
	return ""
}

func hasDecoratorSuffix(decorators []string, name string) bool {
	for _, d := range decorators {
		if strings.Contains(d, name) {
			return true
		}
	}
	return false
}

func parsePyImports(r *model.ParseResult, path string, lines []string) {
	for i, line := range lines {
		lineNo := i + 1
		if m := pyImportPattern.FindStringSubmatch(line); m != nil {
			for _, mod := range strings.Split(m[1], ",") {
				mod = strings.TrimSpace(mod)
				if idx := strings.Index(mod, " as "); idx != -1 {
					mod = strings.TrimSpace(mod[:idx])
				}
				if mod == "" {
					continue
				}
				r.AddImport(path, mod)
				r.ImportsDetailed = append(r.ImportsDetailed, model.ImportDetail{
					SourceFile: path,
					Module: mod, Line: lineNo, Kind: model.ImportPlain, Statement: strings.TrimSpace(line),
				})
			}
			continue
		}
		if m := pyFromImport.FindStringSubmatch(line); m != nil {
			module := m[1]
			var names []string
			if strings.TrimSpace(m[2]) != "*" {
				for _, n := range strings.Split(m[2], ",") {
					n = strings.TrimSpace(n)
					if idx := strings.Index(n, " as "); idx != -1 {
						n = strings.TrimSpace(n[:idx])
					}
					if n != "" {
						names = append(names, n)
					}
				}
			}
			r.AddImport(path, module)
			r.ImportsDetailed = append(r.ImportsDetailed, model.ImportDetail{
				SourceFile: path,
				Module: module, Names: names, Line: lineNo, Kind: model.ImportFrom, Statement: strings.TrimSpace(line),
			})
		}
	}
}
