package parser

import "testing"

const samplePy = `import os
from collections import OrderedDict

class Widget:
    """A widget."""

    def __init__(self, name):
        self.name = name

    def render(self, flag):
        if flag:
            return self.name
        for i in range(3):
            print(i)
        return None


def helper(x, y=1):
    return x + y


if __name__ == "__main__":
    helper(1, 2)
`

func TestPythonParserExtractsClassesAndFunctions(t *testing.T) {
	r := (&PythonParser{}).Parse("widget.py", []byte(samplePy))

	if _, ok := r.Classes["widget.py::Widget"]; !ok {
		t.Fatalf("expected Widget class, got %v", keysOf(r.Classes))
	}
	if _, ok := r.Functions["widget.py::helper"]; !ok {
		t.Fatalf("expected top-level helper function, got %v", keysOf(r.Functions))
	}
	render, ok := r.Functions["widget.py::render"]
	if !ok {
		t.Fatalf("expected render method to be recorded")
	}
	if render.Complexity < 2 {
		t.Fatalf("expected render's if/for to raise complexity above base, got %d", render.Complexity)
	}
}

func TestPythonParserDetectsMainEntryPoint(t *testing.T) {
	r := (&PythonParser{}).Parse("widget.py", []byte(samplePy))
	if len(r.EntryPoints) != 1 {
		t.Fatalf("expected exactly one entry point, got %d", len(r.EntryPoints))
	}
}

func TestPythonParserImports(t *testing.T) {
	r := (&PythonParser{}).Parse("widget.py", []byte(samplePy))
	if r.Imports["widget.py"]["os"] != 1 {
		t.Fatalf("expected import os to be recorded once, got %v", r.Imports["widget.py"])
	}
	if r.Imports["widget.py"]["collections"] != 1 {
		t.Fatalf("expected from-import module to be recorded, got %v", r.Imports["widget.py"])
	}
}

func TestPythonParserExtractsDocstringsAndSourceSlice(t *testing.T) {
	r := (&PythonParser{}).Parse("widget.py", []byte(samplePy))

	widget, ok := r.Classes["widget.py::Widget"]
	if !ok {
		t.Fatalf("expected Widget class, got %v", keysOf(r.Classes))
	}
	if widget.Docstring != "A widget." {
		t.Fatalf("expected class docstring %q, got %q", "A widget.", widget.Docstring)
	}

	render, ok := r.Functions["widget.py::render"]
	if !ok {
		t.Fatalf("expected render method to be recorded")
	}
	if render.Docstring != "" {
		t.Fatalf("render has no docstring in the fixture, got %q", render.Docstring)
	}
	wantSlice := "    def render(self, flag):\n        if flag:\n            return self.name\n        for i in range(3):\n            print(i)\n        return None"
	if render.SourceSlice != wantSlice {
		t.Fatalf("unexpected source slice:\n%q\nwant:\n%q", render.SourceSlice, wantSlice)
	}
}

func TestPythonParserExtractsFunctionDocstring(t *testing.T) {
	src := `def greet(name):
    """Say hello to name."""
    return "hello " + name
`
	r := (&PythonParser{}).Parse("greet.py", []byte(src))
	fn, ok := r.Functions["greet.py::greet"]
	if !ok {
		t.Fatalf("expected greet function to be recorded")
	}
	if fn.Docstring != "Say hello to name." {
		t.Fatalf("expected docstring %q, got %q", "Say hello to name.", fn.Docstring)
	}
}

func keysOf[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
