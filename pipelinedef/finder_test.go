package pipelinedef

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(`{"pipeline": ["a.in"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestFinder_Find(t *testing.T) {
	root := t.TempDir()
	first := filepath.Join(root, "first")
	second := filepath.Join(root, "second")
	writeFile(t, filepath.Join(first, "tile.yaml"))
	writeFile(t, filepath.Join(second, "tile.json"))
	writeFile(t, filepath.Join(second, "nested", "deep", "denoise.yml"))

	f := NewFinder(first, second)
	tests := map[string]string{
		"tile":        filepath.Join(first, "tile.yaml"),
		"tile.json":   filepath.Join(second, "tile.json"),
		"denoise":     filepath.Join(second, "nested", "deep", "denoise.yml"),
		"denoise.yml": filepath.Join(second, "nested", "deep", "denoise.yml"),
	}
	for name, want := range tests {
		got, err := f.Find(name)
		if err != nil {
			t.Errorf("Find(%q): unexpected error: %v", name, err)
			continue
		}
		if got != want {
			t.Errorf("Find(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestFinder_ExistingPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.json")
	writeFile(t, path)
	got, err := NewFinder().Find(path)
	if err != nil || got != path {
		t.Fatalf("expected %q, got %q (%v)", path, got, err)
	}
}

func TestFinder_NotFound(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tile.yaml"))
	f := NewFinder(dir, "/does/not/exist")
	for _, name := range []string{"missing", "tile.json"} {
		if _, err := f.Find(name); err == nil {
			t.Errorf("Find(%q): expected error", name)
		}
	}
}

func TestNameFromPath(t *testing.T) {
	if got := NameFromPath("/a/b/tile-split.json"); got != "tile-split" {
		t.Errorf("expected tile-split, got %q", got)
	}
}
