package pipelinedef

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ExpandPath expands a leading "~" and $VAR references in path, then makes it
// absolute relative to dir. Expansion is skipped on Windows, and when it
// would turn one path into several words.
func ExpandPath(path, dir string) string {
	if path == "" {
		return path
	}
	if runtime.GOOS != "windows" {
		if expanded := expandShell(path); len(strings.Fields(expanded)) == 1 {
			path = expanded
		}
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, path)
}

func expandShell(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + path[1:]
		}
	}
	return os.ExpandEnv(path)
}
