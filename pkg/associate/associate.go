// Package associate determines the complete set of filesystem paths that
// belong to an installed plugin: the bundle itself, preset folders, shared
// content libraries and preference files.
//
// Association is conservative. A path is attributed to a plugin only when
// its name matches one of the plugin's identifiers exactly; directory
// proximity alone never claims anything, because claimed paths feed
// destructive operations.
package associate

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/plugindepot/plugindepot/internal/utils"
	"github.com/plugindepot/plugindepot/pkg/catalog"
	"github.com/plugindepot/plugindepot/pkg/registry"
)

// Category classifies an associated path.
type Category string

const (
	CategoryPrimary    Category = "primary"
	CategoryPreset     Category = "preset"
	CategoryLibrary    Category = "library"
	CategoryPreference Category = "preference"
)

// File is one path attributed to a plugin.
type File struct {
	Path     string   `json:"path"`
	Category Category `json:"category"`
}

// Locations are the claimed places before recursive expansion: whole
// preset/library directories, loose library files next to the bundle, and
// preference files. Their counts are what scan results report.
type Locations struct {
	PresetDirs      []string
	LibraryDirs     []string
	LibraryFiles    []string
	PreferenceFiles []string
}

// Associator discovers plugin-owned paths using the catalog's conventions.
type Associator struct {
	cat *catalog.Catalog
}

func New(cat *catalog.Catalog) *Associator {
	return &Associator{cat: cat}
}

// Locations probes the conventional parent directories with the plugin's
// identifiers and returns everything that exists. Deterministic for an
// unchanged filesystem.
func (a *Associator) Locations(p registry.Plugin) Locations {
	ids := identifiers(p)

	var locs Locations
	locs.PresetDirs = a.probeDirs(a.cat.PresetParents(), ids, p.Vendor, true)
	locs.LibraryDirs = a.probeDirs(a.cat.LibraryParents(), ids, p.Vendor, false)

	sibDirs, sibFiles := a.adjacentSiblings(p)
	locs.LibraryDirs = appendUnique(locs.LibraryDirs, sibDirs...)
	locs.LibraryFiles = sibFiles

	locs.PreferenceFiles = a.probePreferences(p)
	return locs
}

// Enumerate returns every path belonging to the plugin: the install path
// first, then preset, library and preference paths, each group sorted.
// Claimed directories are expanded to the files they contain. The only
// error returned is context cancellation; unreadable subtrees are logged
// and skipped.
func (a *Associator) Enumerate(ctx context.Context, p registry.Plugin) ([]File, error) {
	locs := a.Locations(p)
	files := []File{{Path: p.InstallPath, Category: CategoryPrimary}}

	presets, err := expandAll(ctx, locs.PresetDirs, CategoryPreset)
	if err != nil {
		return nil, err
	}
	libs, err := expandAll(ctx, locs.LibraryDirs, CategoryLibrary)
	if err != nil {
		return nil, err
	}
	for _, f := range locs.LibraryFiles {
		libs = append(libs, File{Path: f, Category: CategoryLibrary})
	}
	sortFiles(libs)

	var prefs []File
	for _, f := range locs.PreferenceFiles {
		prefs = append(prefs, File{Path: f, Category: CategoryPreference})
	}
	sortFiles(prefs)

	files = append(files, presets...)
	files = append(files, libs...)
	files = append(files, prefs...)
	return files, nil
}

// expandAll lists the files under each claimed directory recursively.
func expandAll(ctx context.Context, dirs []string, cat Category) ([]File, error) {
	var out []File
	for _, dir := range dirs {
		if err := expand(ctx, dir, cat, &out); err != nil {
			return nil, err
		}
	}
	sortFiles(out)
	return out, nil
}

func expand(ctx context.Context, path string, cat Category, out *[]File) error {
	fi, err := os.Stat(path)
	if err != nil {
		utils.Log.Warnf("Failed to stat associated path %s: %v", path, err)
		return nil
	}
	if !fi.IsDir() {
		*out = append(*out, File{Path: path, Category: cat})
		return nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		utils.Log.Warnf("Failed to read associated directory %s: %v", path, err)
		return nil
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := expand(ctx, filepath.Join(path, entry.Name()), cat, out); err != nil {
			return err
		}
	}
	return nil
}

func sortFiles(files []File) {
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
}

func appendUnique(dst []string, extra ...string) []string {
	seen := make(map[string]bool, len(dst))
	for _, d := range dst {
		seen[d] = true
	}
	for _, e := range extra {
		if !seen[e] {
			seen[e] = true
			dst = append(dst, e)
		}
	}
	return dst
}
