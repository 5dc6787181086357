// Package resolver locates the transfer executable. Lookups are cached in a
// Cache value owned by the caller; there is no package-level state.
package resolver

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"faspmgr/internal/common/fsutil"
)

// Cache resolves executable names against configured directories, then PATH.
// Hits are remembered until Invalidate.
type Cache struct {
	mu    sync.Mutex
	dirs  []string
	found map[string]string
	// lookPath is exec.LookPath; replaced in tests.
	lookPath func(string) (string, error)
}

// New returns a cache searching dirs in order before PATH.
func New(dirs []string) *Cache {
	return &Cache{
		dirs:     append([]string(nil), dirs...),
		found:    make(map[string]string),
		lookPath: exec.LookPath,
	}
}

// Resolve returns the absolute path of name. Names containing a path
// separator are checked directly and never searched.
func (c *Cache) Resolve(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("empty executable name")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.found[name]; ok {
		return p, nil
	}
	p, err := c.resolve(name)
	if err != nil {
		return "", err
	}
	c.found[name] = p
	return p, nil
}

// Find resolves a bare name against the configured directories only. Path-like
// names and PATH are never consulted, so callers may pass untrusted names.
func (c *Cache) Find(name string) (string, error) {
	if name == "" || isPathLike(name) {
		return "", fmt.Errorf("executable %q must be a bare name", name)
	}
	p, ok := fsutil.FindExecutable(c.dirs, name)
	if !ok {
		return "", fmt.Errorf("%s not found in %v", name, c.dirs)
	}
	return p, nil
}

func isPathLike(name string) bool {
	return strings.ContainsAny(name, "/\\") || strings.HasPrefix(name, "~") || name == "." || name == ".."
}

func (c *Cache) resolve(name string) (string, error) {
	if isPathLike(name) {
		p, err := fsutil.ExpandHome(name)
		if err != nil {
			return "", err
		}
		if !fsutil.IsExecutable(p) {
			return "", fmt.Errorf("not an executable: %s", p)
		}
		return filepath.Abs(p)
	}
	if p, ok := fsutil.FindExecutable(c.dirs, name); ok {
		return p, nil
	}
	p, err := c.lookPath(name)
	if err != nil {
		return "", fmt.Errorf("%s not found in %v or PATH: %w", name, c.dirs, err)
	}
	return filepath.Abs(p)
}

// Invalidate drops every cached lookup, e.g. after an install or upgrade.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.found = make(map[string]string)
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.found)
}
