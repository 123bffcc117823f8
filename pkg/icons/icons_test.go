package icons

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/opencontainers/go-digest"
)

func TestStoreAndPathRoundtrip(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "icons"))
	url := "https://example.com/assets/icon.png"

	stored, err := c.Store(url, []byte("png-bytes"))
	if err != nil {
		t.Fatalf("store failed: %v", err)
	}
	wantName := digest.FromString(url).Encoded() + ".png"
	if filepath.Base(stored) != wantName {
		t.Fatalf("expected cache file %s, got %s", wantName, filepath.Base(stored))
	}

	path, ok := c.Path(url)
	if !ok {
		t.Fatalf("expected cached icon to resolve")
	}
	if path != stored {
		t.Fatalf("expected %s, got %s", stored, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read cached icon: %v", err)
	}
	if string(data) != "png-bytes" {
		t.Fatalf("cached bytes mismatch: %q", data)
	}
}

func TestStoreRejectsEmptyInput(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "icons"))
	if _, err := c.Store("", []byte("data")); err == nil {
		t.Fatalf("expected an error for an empty url")
	}
	if _, err := c.Store("https://example.com/icon.png", nil); err == nil {
		t.Fatalf("expected an error for empty data")
	}
}

func TestStoreOverwritesSameURL(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "icons"))
	url := "https://example.com/icon.png"

	if _, err := c.Store(url, []byte("old")); err != nil {
		t.Fatalf("first store failed: %v", err)
	}
	path, err := c.Store(url, []byte("new"))
	if err != nil {
		t.Fatalf("second store failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read cached icon: %v", err)
	}
	if string(data) != "new" {
		t.Fatalf("expected overwrite, got %q", data)
	}
}

func TestCacheNameExtensionRules(t *testing.T) {
	tests := []struct {
		url string
		ext string
	}{
		{"https://example.com/icon.png", ".png"},
		{"https://example.com/icon.jpeg", ".jpeg"},
		{"https://example.com/icon.PNG", ".PNG"},
		{"https://example.com/icon.png?v=2", ""},
		{"https://example.com/icon", ""},
		{"https://example.com/archive.tarball", ""},
	}
	for _, tc := range tests {
		name := cacheName(tc.url)
		want := digest.FromString(tc.url).Encoded() + tc.ext
		if name != want {
			t.Fatalf("cacheName(%q): expected %s, got %s", tc.url, want, name)
		}
	}
}

func TestPathMissingReturnsFalse(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "icons"))
	path, ok := c.Path("https://example.com/never-stored.png")
	if ok {
		t.Fatalf("expected a miss, got %s", path)
	}
	if path == "" {
		t.Fatalf("expected the would-be cache path even on a miss")
	}
}

func TestFileURLResolvesDirectly(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "icons"))

	icon := filepath.Join(t.TempDir(), "Foo.icns")
	if err := os.WriteFile(icon, []byte("icns"), 0o644); err != nil {
		t.Fatalf("failed to write icon: %v", err)
	}

	url := "file://" + filepath.ToSlash(icon)
	path, ok := c.Path(url)
	if !ok {
		t.Fatalf("expected the file url to resolve")
	}
	if path != icon {
		t.Fatalf("expected %s, got %s", icon, path)
	}

	if err := os.Remove(icon); err != nil {
		t.Fatalf("failed to remove icon: %v", err)
	}
	if _, ok := c.Path(url); ok {
		t.Fatalf("expected a miss after the source file is gone")
	}
}

func TestClearEmptiesCache(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "icons"))
	url := "https://example.com/icon.png"
	if _, err := c.Store(url, []byte("data")); err != nil {
		t.Fatalf("store failed: %v", err)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, ok := c.Path(url); ok {
		t.Fatalf("expected an empty cache after clear")
	}
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		t.Fatalf("cache dir should exist after clear: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected an empty cache dir, found %v", entries)
	}
}

func TestDefaultUsesXDGCacheHome(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "darwin" {
		t.Skip("cache location is fixed on this platform")
	}
	base := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", base)

	c, err := Default()
	if err != nil {
		t.Fatalf("default cache failed: %v", err)
	}
	want := filepath.Join(base, "plugindepot", "icons")
	if c.Dir != want {
		t.Fatalf("expected %s, got %s", want, c.Dir)
	}
}
