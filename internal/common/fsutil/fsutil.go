package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ExpandHome expands a leading '~' to the user's home directory.
func ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}

// IsExecutable reports whether path is a regular file the current user may
// run. On Windows any regular file counts.
func IsExecutable(path string) bool {
	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return fi.Mode().Perm()&0o111 != 0
}

// FindExecutable looks for name in each dir, in order, after home expansion.
// It returns the absolute path of the first executable match.
func FindExecutable(dirs []string, name string) (string, bool) {
	candidates := []string{name}
	if runtime.GOOS == "windows" && filepath.Ext(name) == "" {
		candidates = append(candidates, name+".exe")
	}
	for _, d := range dirs {
		base, err := ExpandHome(d)
		if err != nil || base == "" {
			continue
		}
		for _, c := range candidates {
			p := filepath.Join(base, c)
			if IsExecutable(p) {
				if abs, err := filepath.Abs(p); err == nil {
					return abs, true
				}
				return p, true
			}
		}
	}
	return "", false
}
