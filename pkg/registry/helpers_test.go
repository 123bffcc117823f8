package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/plugindepot/plugindepot/pkg/catalog"
)

// darwinFixture builds a catalog whose darwin directory tables live under
// a temp dir, so scans never touch the real machine.
func darwinFixture(t *testing.T) (*catalog.Catalog, string) {
	t.Helper()
	tmp := t.TempDir()
	cat, err := catalog.New(catalog.Config{
		Platform:   catalog.Darwin,
		Home:       filepath.Join(tmp, "home"),
		SystemRoot: tmp,
	})
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return cat, tmp
}

func windowsFixture(t *testing.T) (*catalog.Catalog, string) {
	t.Helper()
	tmp := t.TempDir()
	cat, err := catalog.New(catalog.Config{
		Platform:        catalog.Windows,
		Home:            filepath.Join(tmp, "home"),
		ProgramFiles:    filepath.Join(tmp, "pf"),
		ProgramFilesX86: filepath.Join(tmp, "pf86"),
		CommonFiles:     filepath.Join(tmp, "cf"),
		CommonFilesX86:  filepath.Join(tmp, "cf86"),
		AppData:         filepath.Join(tmp, "appdata"),
		ProgramData:     filepath.Join(tmp, "programdata"),
	})
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return cat, tmp
}

func makeBundle(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(path, "Contents"), 0o755); err != nil {
		t.Fatal(err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func installPaths(plugins []Plugin) []string {
	out := make([]string, 0, len(plugins))
	for _, p := range plugins {
		out = append(out, p.InstallPath)
	}
	return out
}
