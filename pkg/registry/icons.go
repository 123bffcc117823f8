package registry

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/plugindepot/plugindepot/pkg/catalog"
)

// bundleIconDirs are the places bundles keep artwork, most specific first.
var bundleIconDirs = []string{
	filepath.Join("Contents", "Resources"),
	"Resources",
	"Contents",
}

var bundleIconExts = map[string]bool{
	".icns": true,
	".png":  true,
	".ico":  true,
	".jpg":  true,
	".jpeg": true,
}

// discoverIcon looks for an icon image inside a plugin bundle, or next to
// a loose plugin file, and returns it as a file:// URL. Empty when the
// plugin ships no artwork.
func discoverIcon(installPath, name string) string {
	if fi, err := os.Stat(installPath); err == nil && fi.IsDir() {
		if url := bundleIcon(installPath, name); url != "" {
			return url
		}
	}
	return siblingIcon(installPath, name)
}

func bundleIcon(installPath, name string) string {
	nameKey := strings.ReplaceAll(strings.ToLower(name), " ", "")

	// Prefer an icon clearly named for the plugin or as the bundle's main
	// icon; fall back to the first icon seen anywhere.
	fallback := ""
	for _, sub := range bundleIconDirs {
		entries, err := os.ReadDir(filepath.Join(installPath, sub))
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if !bundleIconExts[ext] {
				continue
			}
			path := filepath.Join(installPath, sub, entry.Name())
			stem := strings.ToLower(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
			if (nameKey != "" && strings.Contains(stem, nameKey)) ||
				stem == "appicon" ||
				strings.HasPrefix(stem, "icon") ||
				strings.HasPrefix(stem, "logo") {
				return fileURL(path)
			}
			if fallback == "" {
				fallback = fileURL(path)
			}
		}
	}
	return fallback
}

// siblingIcon covers loose plugin files that ship artwork next to the
// binary, e.g. Plugin.dll with Plugin.png alongside.
func siblingIcon(installPath, name string) string {
	parent := filepath.Dir(installPath)
	compact := strings.ReplaceAll(strings.ToLower(name), " ", "")
	for _, ext := range []string{"png", "ico", "jpg", "jpeg"} {
		for _, stem := range []string{name, compact} {
			path := filepath.Join(parent, stem+"."+ext)
			if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
				return fileURL(path)
			}
		}
	}
	return ""
}

func fileURL(path string) string {
	return "file://" + filepath.ToSlash(path)
}

// ShareIcons copies icon URLs from VST3 plugins to VST2 builds of the same
// plugin that found none of their own. VST2 files rarely carry resources
// while their VST3 siblings are bundles with artwork. Call after sorting
// so the donor choice is deterministic.
func ShareIcons(plugins []Plugin) {
	vst3 := make(map[string]string)
	for _, p := range plugins {
		if p.Format == catalog.VST3 && p.IconURL != "" {
			key := NormalizeName(p.Name)
			if _, ok := vst3[key]; !ok {
				vst3[key] = p.IconURL
			}
		}
	}
	for i := range plugins {
		if plugins[i].Format == catalog.VST2 && plugins[i].IconURL == "" {
			if url, ok := vst3[NormalizeName(plugins[i].Name)]; ok {
				plugins[i].IconURL = url
			}
		}
	}
}
