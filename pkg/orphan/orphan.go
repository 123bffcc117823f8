// Package orphan finds leftovers in the plugin search roots: files and
// directories that no installed plugin claims, typically remnants of
// half-finished installs or uninstallers that missed things.
package orphan

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/plugindepot/plugindepot/internal/utils"
	"github.com/plugindepot/plugindepot/pkg/associate"
	"github.com/plugindepot/plugindepot/pkg/catalog"
	"github.com/plugindepot/plugindepot/pkg/registry"
)

// Orphan is one unclaimed path. An unclaimed directory is reported as a
// single entry rather than file by file, unless a claimed path lives
// somewhere beneath it.
type Orphan struct {
	Path  string `json:"path"`
	IsDir bool   `json:"is_dir"`
}

// Detector sweeps the search roots against the claims of installed plugins.
type Detector struct {
	cat         *catalog.Catalog
	scanner     *registry.Scanner
	assoc       *associate.Associator
	concurrency int
}

func NewDetector(cat *catalog.Catalog, scanner *registry.Scanner, assoc *associate.Associator, concurrency int) *Detector {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Detector{cat: cat, scanner: scanner, assoc: assoc, concurrency: concurrency}
}

// Detect runs a fresh scan and sweeps the roots against it. A scan cut
// short by ctx would make every unvisited install look abandoned, so an
// incomplete scan aborts the sweep instead of reporting false positives.
func (d *Detector) Detect(ctx context.Context) ([]Orphan, error) {
	res := d.scanner.Scan(ctx)
	if res.Incomplete {
		return nil, ctx.Err()
	}
	return d.DetectAgainst(ctx, res.Plugins)
}

// DetectAgainst sweeps the roots against an existing plugin list.
func (d *Detector) DetectAgainst(ctx context.Context, plugins []registry.Plugin) ([]Orphan, error) {
	claimed, err := d.claims(ctx, plugins)
	if err != nil {
		return nil, err
	}
	ancestors := ancestorsOf(claimed)

	var orphans []Orphan
	visited := make(map[string]bool)
	for _, root := range d.cat.SearchRoots() {
		dir := canonical(root.Dir)
		if visited[dir] {
			continue
		}
		visited[dir] = true
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			continue
		}
		if err := d.sweep(ctx, dir, claimed, ancestors, &orphans); err != nil {
			return nil, err
		}
	}

	sort.Slice(orphans, func(i, j int) bool { return orphans[i].Path < orphans[j].Path })
	return orphans, nil
}

// claims collects every location the installed plugins own. Install paths
// and adjacent siblings are the only claims that can appear under a search
// root, but keeping the full set costs nothing.
func (d *Detector) claims(ctx context.Context, plugins []registry.Plugin) (map[string]bool, error) {
	claimed := make(map[string]bool, len(plugins)*2)
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for _, p := range plugins {
		p := p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			locs := d.assoc.Locations(p)
			mu.Lock()
			defer mu.Unlock()
			claimed[p.InstallPath] = true
			for _, set := range [][]string{locs.PresetDirs, locs.LibraryDirs, locs.LibraryFiles, locs.PreferenceFiles} {
				for _, path := range set {
					claimed[path] = true
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return claimed, nil
}

func (d *Detector) sweep(ctx context.Context, dir string, claimed, ancestors map[string]bool, out *[]Orphan) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		utils.Log.Warnf("Failed to sweep %s: %v", dir, err)
		return nil
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		full := filepath.Join(dir, entry.Name())
		if claimed[full] {
			continue
		}
		if !entry.IsDir() {
			*out = append(*out, Orphan{Path: full})
			continue
		}
		// A claimed path somewhere below means this directory is shared
		// territory; report only what inside it is actually unclaimed.
		if ancestors[full] {
			if err := d.sweep(ctx, full, claimed, ancestors, out); err != nil {
				return err
			}
			continue
		}
		*out = append(*out, Orphan{Path: full, IsDir: true})
	}
	return nil
}

// ancestorsOf returns every proper ancestor directory of the claimed paths.
func ancestorsOf(claimed map[string]bool) map[string]bool {
	ancestors := make(map[string]bool)
	for path := range claimed {
		for p := filepath.Dir(path); ; p = filepath.Dir(p) {
			if ancestors[p] {
				break
			}
			ancestors[p] = true
			if p == filepath.Dir(p) {
				break
			}
		}
	}
	return ancestors
}

func canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return abs
	}
	return resolved
}
