package store

import "testing"

func TestSaveAndLoadGraphRoundTrip(t *testing.T) {
	s := openTestStore(t)

	blob, ok, err := s.LoadGraph("resolved_edges")
	if err != nil {
		t.Fatalf("LoadGraph (missing): %v", err)
	}
	if ok || blob != nil {
		t.Fatalf("expected no graph row yet, got ok=%v blob=%v", ok, blob)
	}

	if err := s.SaveGraph("resolved_edges", []byte(`{"cycles":[]}`)); err != nil {
		t.Fatalf("SaveGraph: %v", err)
	}
	blob, ok, err = s.LoadGraph("resolved_edges")
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	if !ok || string(blob) != `{"cycles":[]}` {
		t.Fatalf("unexpected graph blob: ok=%v blob=%s", ok, blob)
	}

	if err := s.SaveGraph("resolved_edges", []byte(`{"cycles":["a.py"]}`)); err != nil {
		t.Fatalf("SaveGraph (replace): %v", err)
	}
	blob, ok, err = s.LoadGraph("resolved_edges")
	if err != nil {
		t.Fatalf("LoadGraph (replace): %v", err)
	}
	if !ok || string(blob) != `{"cycles":["a.py"]}` {
		t.Fatalf("expected replaced blob, got ok=%v blob=%s", ok, blob)
	}
}
