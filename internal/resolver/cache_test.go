package resolver

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func mkExe(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write %s: %v", p, err)
	}
	return p
}

func TestResolveSearchDirs(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	d := t.TempDir()
	want := mkExe(t, d, "ascp")
	c := New([]string{d})
	c.lookPath = func(string) (string, error) { t.Fatal("PATH should not be searched"); return "", nil }
	got, err := c.Resolve("ascp")
	if err != nil || got != want {
		t.Fatalf("got %q err=%v", got, err)
	}
	if c.Len() != 1 {
		t.Fatalf("expected one cached entry, got %d", c.Len())
	}
}

func TestResolveCachesUntilInvalidate(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	d := t.TempDir()
	p := mkExe(t, d, "ascp")
	c := New([]string{d})
	if _, err := c.Resolve("ascp"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if err := os.Remove(p); err != nil {
		t.Fatal(err)
	}
	if got, err := c.Resolve("ascp"); err != nil || got != p {
		t.Fatalf("expected cached %q, got %q err=%v", p, got, err)
	}
	c.Invalidate()
	c.lookPath = func(string) (string, error) { return "", errors.New("not found") }
	if _, err := c.Resolve("ascp"); err == nil {
		t.Fatalf("expected miss after invalidate")
	}
}

func TestResolveFallsBackToPATH(t *testing.T) {
	c := New(nil)
	c.lookPath = func(name string) (string, error) { return "/usr/bin/" + name, nil }
	got, err := c.Resolve("ascp")
	if err != nil || got != "/usr/bin/ascp" {
		t.Fatalf("got %q err=%v", got, err)
	}
}

func TestResolveExplicitPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	d := t.TempDir()
	p := mkExe(t, d, "custom-ascp")
	c := New(nil)
	if got, err := c.Resolve(p); err != nil || got != p {
		t.Fatalf("got %q err=%v", got, err)
	}
	if _, err := c.Resolve(filepath.Join(d, "missing")); err == nil {
		t.Fatalf("expected error for missing explicit path")
	}
	if _, err := c.Resolve("  "); err == nil {
		t.Fatalf("expected error for empty name")
	}
}

func TestFindOnlySearchesConfiguredDirs(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}
	d := t.TempDir()
	want := mkExe(t, d, "ascp4")
	outside := mkExe(t, t.TempDir(), "evil.sh")
	c := New([]string{d})
	c.lookPath = func(string) (string, error) { t.Fatal("PATH should not be searched"); return "", nil }

	if got, err := c.Find("ascp4"); err != nil || got != want {
		t.Fatalf("got %q err=%v", got, err)
	}
	for _, name := range []string{outside, "../evil.sh", "~/evil.sh", "sh", "", ".."} {
		if got, err := c.Find(name); err == nil {
			t.Fatalf("Find(%q) = %q, want error", name, got)
		}
	}
	if c.Len() != 0 {
		t.Fatalf("Find must not populate the cache, got %d entries", c.Len())
	}
}
