// Package registry discovers installed audio plugins across the catalog's
// search roots and models each installation as a Plugin record.
package registry

import (
	"strings"

	"github.com/google/uuid"

	"github.com/plugindepot/plugindepot/pkg/catalog"
)

// Plugin is one installed plugin instance found by a scan.
type Plugin struct {
	// ID is stable across scans of an unchanged filesystem.
	ID string `json:"id"`

	Name        string `json:"name"`
	Version     string `json:"version"`
	Vendor      string `json:"vendor,omitempty"`
	Description string `json:"description,omitempty"`

	// BundleID is the bundle identifier from Info.plist when the plugin
	// is a macOS bundle. It keys preference-file association.
	BundleID string `json:"bundle_id,omitempty"`

	// InstallPath is the canonical absolute path of the primary bundle or
	// binary. Unique within a scan result.
	InstallPath string `json:"install_path"`

	Format catalog.Format `json:"format"`

	// Counts of associated locations by category, derived by the file
	// associator after the scan.
	PresetCount     int `json:"preset_count"`
	LibraryCount    int `json:"library_count"`
	PreferenceCount int `json:"preference_count"`

	// IconURL is a file:// URL to artwork found inside the bundle or next
	// to the plugin file, when any exists.
	IconURL string `json:"icon_url,omitempty"`
}

// ScanResult is the outcome of one scan. Incomplete is set when the scan
// was cancelled and covers only part of the search roots.
type ScanResult struct {
	Plugins    []Plugin
	Incomplete bool
}

// PluginID derives the stable identifier for a plugin install. It is a
// pure function of format and install path.
func PluginID(f catalog.Format, installPath string) string {
	prefix := strings.ToLower(f.String())
	u := uuid.NewSHA1(uuid.NameSpaceURL, []byte("plugin://"+prefix+"/"+installPath))
	return prefix + "." + u.String()
}

// NormalizeName reduces a plugin name to a comparable key: lowercased,
// common format/architecture suffixes stripped, separators removed.
// "Foo Synth VST3" and "foo-synth" both normalize to "foosynth", which is
// how the VST2 and VST3 builds of one plugin are matched up.
func NormalizeName(name string) string {
	normalized := strings.ToLower(name)

	suffixes := []string{
		" vst", " vst2", " vst3",
		"vst", "vst2", "vst3",
		" x64", " x86", "_x64", "_x86",
		" 64", " 32", "_64", "_32",
		" fx", " effect", "_fx", "_effect",
	}
	for _, suffix := range suffixes {
		for strings.HasSuffix(normalized, suffix) {
			normalized = strings.TrimSuffix(normalized, suffix)
		}
	}

	normalized = strings.ReplaceAll(normalized, " ", "")
	normalized = strings.ReplaceAll(normalized, "-", "")
	return strings.ReplaceAll(normalized, "_", "")
}
