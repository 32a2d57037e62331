package config

import (
	"os"
	"path/filepath"
)

// SearchPaths returns the candidate locations of fileName, in lookup order.
// An explicit override replaces the default search entirely.
func SearchPaths(override, fileName string) []string {
	if override != "" {
		return []string{override}
	}
	paths := []string{filepath.Join(ProjectRoot(), "conf", fileName)}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appDirName, fileName))
	}
	return paths
}

// ProjectRoot walks up from the working directory to the first directory
// holding a go.mod or .git entry. It falls back to the working directory.
func ProjectRoot() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	for dir := cwd; ; {
		for _, marker := range []string{"go.mod", ".git"} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd
		}
		dir = parent
	}
}

// FirstExisting returns the first path naming a regular file.
func FirstExisting(paths []string) (string, bool) {
	for _, p := range paths {
		if Exists(p) {
			return p, true
		}
	}
	return "", false
}

// Exists reports whether path names a regular file.
func Exists(path string) bool {
	s, err := os.Stat(path)
	return err == nil && !s.IsDir()
}
