package local

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeFile(t *testing.T, base, rel string) {
	t.Helper()
	p := filepath.Join(base, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestListMatchesKeyPrefixAcrossDirectories(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "img/a.png")
	writeFile(t, base, "img/b.png")
	writeFile(t, base, "readme.txt")

	s := New(base)

	all, err := s.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 objects, got %d", len(all))
	}

	// Prefix matches the raw key string, not a directory component.
	got, err := s.List(context.Background(), "im")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	keys := make([]string, len(got))
	for i, o := range got {
		keys[i] = o.Key
	}
	sort.Strings(keys)
	if len(keys) != 2 || keys[0] != "img/a.png" || keys[1] != "img/b.png" {
		t.Fatalf("unexpected keys: %v", keys)
	}
}

func TestListMissingBaseYieldsNothing(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "missing"))
	got, err := s.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no objects, got %d", len(got))
	}
}

func TestDeleteRemovesObjectAndIgnoresMissing(t *testing.T) {
	base := t.TempDir()
	writeFile(t, base, "tmp/old.log")

	s := New(base)
	if err := s.Delete(context.Background(), "tmp/old.log"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(base, "tmp", "old.log")); !os.IsNotExist(err) {
		t.Fatalf("expected file gone, stat err=%v", err)
	}

	// Deleting an already-deleted key is not an error.
	if err := s.Delete(context.Background(), "tmp/old.log"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}
