package parser

import "testing"

func TestStructuredParserJSON(t *testing.T) {
	p := &StructuredParser{lang: "json"}
	r := p.Parse("pkg.json", []byte(`{"name": "widget", "version": "1.0.0"}`))
	f := r.Files["pkg.json"]
	if f == nil {
		t.Fatal("expected file record")
	}
	if f.ParseError != "" {
		t.Fatalf("unexpected parse error: %s", f.ParseError)
	}
	if _, ok := f.Metadata["name"]; !ok {
		t.Fatalf("expected top-level key 'name' in metadata, got %v", f.Metadata)
	}
}

func TestStructuredParserInvalidJSONStillRecordsFile(t *testing.T) {
	p := &StructuredParser{lang: "json"}
	r := p.Parse("broken.json", []byte(`{not valid`))
	f := r.Files["broken.json"]
	if f == nil {
		t.Fatal("expected file record even for invalid JSON")
	}
	if f.ParseError == "" {
		t.Fatalf("expected ParseError to be set")
	}
}

func TestStructuredParserYAML(t *testing.T) {
	p := &StructuredParser{lang: "yaml"}
	r := p.Parse("config.yaml", []byte("project_root: .\nlog_level: info\n"))
	f := r.Files["config.yaml"]
	if f.ParseError != "" {
		t.Fatalf("unexpected parse error: %s", f.ParseError)
	}
	if _, ok := f.Metadata["project_root"]; !ok {
		t.Fatalf("expected project_root key, got %v", f.Metadata)
	}
}
