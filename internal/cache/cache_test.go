package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

type widget struct {
	Name  string
	Count int
}

func TestSetGetRoundTrip(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set("w1", widget{Name: "a", Count: 3}, time.Hour, ""); err != nil {
		t.Fatal(err)
	}

	var got widget
	ok, err := c.Get("w1", &got)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || got.Name != "a" || got.Count != 3 {
		t.Fatalf("got %+v, ok=%v", got, ok)
	}
}

func TestGetMissReturnsFalse(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	var got widget
	ok, err := c.Get("missing", &got)
	if err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
}

func TestTTLExpiry(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set("expiring", widget{Name: "x"}, time.Nanosecond, ""); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	var got widget
	ok, _ := c.Get("expiring", &got)
	if ok {
		t.Fatalf("expected expired entry to miss")
	}
}

func TestSourceMtimeInvalidation(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "source.py")
	if err := os.WriteFile(src, []byte("v1"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Set("parsed:"+src, widget{Name: "v1"}, time.Hour, src); err != nil {
		t.Fatal(err)
	}
	if !c.IsFresh("parsed:"+src, src) {
		t.Fatalf("expected fresh immediately after Set")
	}

	time.Sleep(10 * time.Millisecond)
	if err := os.WriteFile(src, []byte("v2 changed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if c.IsFresh("parsed:"+src, src) {
		t.Fatalf("expected staleness after source file was modified")
	}
	var got widget
	ok, _ := c.Get("parsed:"+src, &got)
	if ok {
		t.Fatalf("expected Get to report a miss once source is newer")
	}
}

func TestInvalidateSingleAndAll(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c.Set("a", widget{Name: "a"}, 0, "")
	c.Set("b", widget{Name: "b"}, 0, "")

	if err := c.Invalidate("a"); err != nil {
		t.Fatal(err)
	}
	entries, _ := c.Stats()
	if entries != 1 {
		t.Fatalf("expected 1 entry after single invalidate, got %d", entries)
	}

	if err := c.Invalidate(""); err != nil {
		t.Fatal(err)
	}
	entries, _ = c.Stats()
	if entries != 0 {
		t.Fatalf("expected 0 entries after full invalidate, got %d", entries)
	}
}

func TestOpenRecoversFromCorruptIndex(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	entries, _ := c.Stats()
	if entries != 0 {
		t.Fatalf("expected corrupt index to be treated as empty, got %d entries", entries)
	}
	if err := c.Set("k", widget{Name: "rebuilt"}, 0, ""); err != nil {
		t.Fatalf("expected Set to succeed after recovering from corrupt index: %v", err)
	}
}
