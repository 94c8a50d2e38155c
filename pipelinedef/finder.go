package pipelinedef

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Extensions are the file extensions a named pipeline may carry, in lookup
// order.
var Extensions = []string{".json", ".jsonc", ".yaml", ".yml"}

// Finder locates pipeline documents by name in a list of directories.
type Finder struct {
	dirs []string
}

// NewFinder creates a finder that searches dirs in order.
func NewFinder(dirs ...string) *Finder {
	return &Finder{dirs: dirs}
}

// Find returns the path of the pipeline called name. A name that is already
// a path to an existing file is returned as-is. A name with a pipeline
// extension matches that file only; otherwise every extension is tried in
// order. Each directory is searched directly first, then recursively.
func (f *Finder) Find(name string) (string, error) {
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		return name, nil
	}

	candidates := []string{name}
	if !isPipelineExt(filepath.Ext(name)) {
		candidates = candidates[:0]
		for _, ext := range Extensions {
			candidates = append(candidates, name+ext)
		}
	}

	for _, dir := range f.dirs {
		for _, c := range candidates {
			path := filepath.Join(dir, c)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}
		if path, ok := searchTree(dir, candidates); ok {
			return path, nil
		}
	}
	return "", fmt.Errorf("pipelinedef: pipeline %q not found in %v", name, f.dirs)
}

// searchTree walks dir for the first file whose name is one of candidates.
func searchTree(dir string, candidates []string) (string, bool) {
	names := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		names[filepath.Base(c)] = true
	}
	var found string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() && names[d.Name()] {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	return found, found != ""
}

func isPipelineExt(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// NameFromPath strips the directory and extension from path.
func NameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
