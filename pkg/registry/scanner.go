package registry

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/plugindepot/plugindepot/internal/utils"
	"github.com/plugindepot/plugindepot/pkg/catalog"
)

// maxWalkDepth bounds how deep the scanner descends below a search root.
// Vendors nest plugins at most one or two folders down (e.g. VST3/Vendor/).
const maxWalkDepth = 3

// Scanner discovers installed plugins under the catalog's search roots.
type Scanner struct {
	cat         *catalog.Catalog
	concurrency int
}

// NewScanner returns a scanner walking cat's roots with up to concurrency
// parallel workers (default 4).
func NewScanner(cat *catalog.Catalog, concurrency int) *Scanner {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Scanner{cat: cat, concurrency: concurrency}
}

// Scan walks every search root and returns the plugins found, sorted by
// install path. It never fails as a whole: unreadable directories and
// malformed bundles are logged and skipped. Cancelling the context stops
// the walk between entries and marks the result incomplete.
func (s *Scanner) Scan(ctx context.Context) *ScanResult {
	roots := s.cat.SearchRoots()
	rootChan := make(chan catalog.SearchRoot, len(roots))

	var mu sync.Mutex
	var found []Plugin
	incomplete := false

	var wg sync.WaitGroup
	for i := 0; i < s.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for root := range rootChan {
				plugins, partial := s.walkRoot(ctx, root)
				mu.Lock()
				found = append(found, plugins...)
				if partial {
					incomplete = true
				}
				mu.Unlock()
			}
		}()
	}
	for _, r := range roots {
		rootChan <- r
	}
	close(rootChan)
	wg.Wait()

	plugins := dedupeByInstallPath(found)
	sort.Slice(plugins, func(i, j int) bool {
		return plugins[i].InstallPath < plugins[j].InstallPath
	})
	ShareIcons(plugins)
	return &ScanResult{Plugins: plugins, Incomplete: incomplete}
}

func (s *Scanner) walkRoot(ctx context.Context, root catalog.SearchRoot) ([]Plugin, bool) {
	if _, err := os.Stat(root.Dir); err != nil {
		// Missing roots are normal: most machines only have a few of the
		// catalog's directories.
		return nil, false
	}
	var plugins []Plugin
	incomplete := s.walkDir(ctx, root, root.Dir, 0, &plugins)
	return plugins, incomplete
}

// walkDir reports true when the walk stopped early on cancellation.
func (s *Scanner) walkDir(ctx context.Context, root catalog.SearchRoot, dir string, depth int, out *[]Plugin) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		utils.Log.Warnf("Failed to read plugin directory %s: %v", dir, err)
		return false
	}
	for _, entry := range entries {
		if ctx.Err() != nil {
			return true
		}
		path := filepath.Join(dir, entry.Name())
		if p, ok := s.recognize(root.Format, path, entry.IsDir()); ok {
			*out = append(*out, p)
			// Never descend into a recognized bundle.
			continue
		}
		if entry.IsDir() && depth+1 < maxWalkDepth {
			if s.walkDir(ctx, root, path, depth+1, out) {
				return true
			}
		}
	}
	return false
}

// recognize decides whether path is a valid plugin of the given format and
// builds its record if so.
func (s *Scanner) recognize(format catalog.Format, path string, isDir bool) (Plugin, bool) {
	ext, ok := s.cat.Extension(format)
	if !ok {
		return Plugin{}, false
	}
	if !strings.EqualFold(strings.TrimPrefix(filepath.Ext(path), "."), ext) {
		return Plugin{}, false
	}
	if isDir {
		if !s.cat.IsBundle(format) {
			return Plugin{}, false
		}
		// A real bundle carries a Contents directory. A bare directory
		// with the right extension is a partial or corrupted install and
		// is left for the orphan detector to report.
		if fi, err := os.Stat(filepath.Join(path, "Contents")); err != nil || !fi.IsDir() {
			return Plugin{}, false
		}
	} else {
		if !s.cat.IsLooseFile(format) {
			return Plugin{}, false
		}
		if fi, err := os.Stat(path); err != nil || fi.Size() == 0 {
			return Plugin{}, false
		}
	}
	return s.newPlugin(format, path, isDir), true
}

func (s *Scanner) newPlugin(format catalog.Format, path string, isDir bool) Plugin {
	canonical := canonicalPath(path)
	name := strings.TrimSuffix(filepath.Base(canonical), filepath.Ext(canonical))

	p := Plugin{
		Name:        name,
		Version:     "unknown",
		Description: format.String() + " plugin",
		InstallPath: canonical,
		Format:      format,
	}
	if isDir {
		applyBundleMetadata(&p)
	}
	p.ID = PluginID(format, canonical)
	p.IconURL = discoverIcon(canonical, p.Name)
	return p
}

// canonicalPath makes install paths comparable when the same bundle is
// reachable through several roots or symlinks.
func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

func dedupeByInstallPath(plugins []Plugin) []Plugin {
	seen := make(map[string]bool, len(plugins))
	out := make([]Plugin, 0, len(plugins))
	for _, p := range plugins {
		if seen[p.InstallPath] {
			continue
		}
		seen[p.InstallPath] = true
		out = append(out, p)
	}
	return out
}
