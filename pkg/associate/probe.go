package associate

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/plugindepot/plugindepot/pkg/catalog"
	"github.com/plugindepot/plugindepot/pkg/registry"
)

// identifiers returns the names a plugin's support paths may carry: the
// display name as-is, with spaces removed, and fully normalized. Duplicates
// are dropped so a one-word name probes once.
func identifiers(p registry.Plugin) []string {
	candidates := []string{
		p.Name,
		strings.ReplaceAll(p.Name, " ", ""),
		registry.NormalizeName(p.Name),
	}
	var ids []string
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		ids = append(ids, c)
	}
	return ids
}

// probeDirs checks parent/<id> for every parent and identifier, plus the
// "<id> Library" convention for preset parents and parent/<vendor>/<id>
// when the vendor is known. Only directories that exist are claimed; the
// vendor directory itself is never claimed because other plugins from the
// same vendor may live in it.
func (a *Associator) probeDirs(parents []string, ids []string, vendor string, presets bool) []string {
	var dirs []string
	seen := make(map[string]bool)
	claim := func(path string) {
		if seen[path] {
			return
		}
		seen[path] = true
		if fi, err := os.Stat(path); err == nil && fi.IsDir() {
			dirs = append(dirs, path)
		}
	}
	for _, parent := range parents {
		for _, id := range ids {
			claim(filepath.Join(parent, id))
			if presets {
				claim(filepath.Join(parent, id+" Library"))
			}
			if vendor != "" {
				claim(filepath.Join(parent, vendor, id))
			}
		}
	}
	return dirs
}

// adjacentSiblings claims entries that sit next to the install path and
// share its name, like Foo.dat beside Foo.vst3 or a Foo content folder in
// a loose-file plugin directory. Entries carrying a plugin extension are
// never claimed; those are installs in their own right.
func (a *Associator) adjacentSiblings(p registry.Plugin) (dirs, files []string) {
	parent := filepath.Dir(p.InstallPath)
	self := filepath.Base(p.InstallPath)
	want := registry.NormalizeName(p.Name)
	if want == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(parent)
	if err != nil {
		return nil, nil
	}
	for _, entry := range entries {
		name := entry.Name()
		if name == self {
			continue
		}
		ext := strings.TrimPrefix(filepath.Ext(name), ".")
		if a.pluginExtension(ext) {
			continue
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		if registry.NormalizeName(stem) != want {
			continue
		}
		full := filepath.Join(parent, name)
		if entry.IsDir() {
			dirs = append(dirs, full)
		} else {
			files = append(files, full)
		}
	}
	return dirs, files
}

func (a *Associator) pluginExtension(ext string) bool {
	if ext == "" {
		return false
	}
	for _, f := range catalog.AllFormats() {
		if want, ok := a.cat.Extension(f); ok && strings.EqualFold(ext, want) {
			return true
		}
	}
	return false
}

// probePreferences checks the platform's preference directories for files
// matching the plugin's reverse-DNS and plain-name conventions. The bundle
// identifier read from the plugin's metadata is the most reliable key and
// is probed alongside the name-derived guesses.
func (a *Associator) probePreferences(p registry.Plugin) []string {
	parents := a.cat.PreferenceDirs()
	if len(parents) == 0 {
		return nil
	}

	nospace := strings.ReplaceAll(p.Name, " ", "")
	lower := strings.ToLower(nospace)
	ext := ".plist"
	if a.cat.Platform() == catalog.Linux {
		ext = ".conf"
	}

	var names []string
	if lower != "" {
		names = append(names, "com."+lower+ext)
	}
	if nospace != "" {
		names = append(names, nospace+ext)
	}
	if p.BundleID != "" {
		names = append(names, p.BundleID+ext)
	}
	if p.Vendor != "" && lower != "" {
		vendor := strings.ToLower(strings.ReplaceAll(p.Vendor, " ", ""))
		names = append(names, "com."+vendor+"."+lower+ext)
	}

	var files []string
	seen := make(map[string]bool)
	for _, parent := range parents {
		for _, name := range names {
			path := filepath.Join(parent, name)
			if seen[path] {
				continue
			}
			seen[path] = true
			if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
				files = append(files, path)
			}
		}
	}
	return files
}
