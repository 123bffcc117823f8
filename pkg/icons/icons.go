// Package icons caches plugin icon images on disk, keyed by the content
// digest of the source URL so repeated fetches of the same icon land on
// the same file.
package icons

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/opencontainers/go-digest"
)

// Cache stores icon files under a single directory.
type Cache struct {
	Dir string
}

func New(dir string) Cache {
	return Cache{Dir: dir}
}

// Default returns the cache rooted at the platform's cache location.
func Default() (Cache, error) {
	home, err := homedir.Dir()
	if err != nil {
		return Cache{}, err
	}
	switch runtime.GOOS {
	case "darwin":
		return New(filepath.Join(home, "Library", "Caches", "PluginDepot", "icons")), nil
	case "windows":
		base := os.Getenv("LOCALAPPDATA")
		if base == "" {
			base = filepath.Join(home, "AppData", "Local")
		}
		return New(filepath.Join(base, "PluginDepot", "icons")), nil
	}
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		base = filepath.Join(home, ".cache")
	}
	return New(filepath.Join(base, "plugindepot", "icons")), nil
}

// Store writes the icon bytes for url into the cache and returns the file
// path. Storing the same url again overwrites the previous content.
func (c Cache) Store(url string, data []byte) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", fmt.Errorf("no icon url given")
	}
	if len(data) == 0 {
		return "", fmt.Errorf("refusing to cache an empty icon for %s", url)
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(c.Dir, cacheName(url))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Path resolves url to a local file. file:// URLs point straight at the
// bundle resource and are returned as-is when the file still exists;
// anything else is looked up in the cache. The returned path is where the
// icon would live even when the second return is false.
func (c Cache) Path(url string) (string, bool) {
	if strings.HasPrefix(url, "file://") {
		direct := filepath.FromSlash(strings.TrimPrefix(url, "file://"))
		if fileExists(direct) {
			return direct, true
		}
	}
	path := filepath.Join(c.Dir, cacheName(url))
	return path, fileExists(path)
}

// Clear removes every cached icon and leaves an empty cache directory.
func (c Cache) Clear() error {
	if err := os.RemoveAll(c.Dir); err != nil {
		return err
	}
	return os.MkdirAll(c.Dir, 0o755)
}

// cacheName hashes the url and keeps its extension when it looks like a
// real one, so image viewers can still sniff the type from the name.
func cacheName(url string) string {
	name := digest.FromString(url).Encoded()
	if ext := urlExt(url); ext != "" {
		name += "." + ext
	}
	return name
}

// urlExt returns the text after the last dot when it is at most four
// alphanumeric characters, case preserved. Query strings and path
// separators disqualify it.
func urlExt(url string) string {
	i := strings.LastIndexByte(url, '.')
	if i < 0 {
		return ""
	}
	ext := url[i+1:]
	if len(ext) == 0 || len(ext) > 4 {
		return ""
	}
	for _, r := range ext {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return ""
		}
	}
	return ext
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
