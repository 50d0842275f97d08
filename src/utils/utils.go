package utils

import (
	"os"
	"path/filepath"
	"runtime"
)

// FindProjectRoot walks up from this source file to the directory holding go.mod.
func FindProjectRoot() string {
	_, filename, _, _ := runtime.Caller(0)
	dir := filepath.Dir(filename)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			panic("Could not find project root (go.mod not found)")
		}
		dir = parent
	}
}

// MigrationSource is the file:// URL of the migrations directory at the project root.
func MigrationSource() string {
	return "file://" + filepath.Join(FindProjectRoot(), "migrations")
}
