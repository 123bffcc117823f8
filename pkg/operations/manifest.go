package operations

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/plugindepot/plugindepot/pkg/associate"
	"github.com/plugindepot/plugindepot/pkg/registry"
)

const (
	backupManifestName = "backup_manifest.json"
	exportManifestName = "export_manifest.json"
)

// Manifest describes an archived plugin: enough metadata to re-identify
// the install and a record of where each file ended up in the archive.
type Manifest struct {
	PluginID    string       `json:"plugin_id"`
	Name        string       `json:"name"`
	Version     string       `json:"version"`
	Vendor      string       `json:"vendor,omitempty"`
	Description string       `json:"description,omitempty"`
	Format      string       `json:"format"`
	InstallPath string       `json:"install_path"`
	CreatedAt   time.Time    `json:"created_at"`
	Files       []FileRecord `json:"files"`
}

// FileRecord maps an original path to its location inside the archive.
// ArchivePath is slash-separated regardless of platform.
type FileRecord struct {
	Path        string             `json:"path"`
	ArchivePath string             `json:"archive_path"`
	Category    associate.Category `json:"category"`
}

func writeManifest(dest, name string, p registry.Plugin, records []FileRecord) error {
	m := Manifest{
		PluginID:    p.ID,
		Name:        p.Name,
		Version:     p.Version,
		Vendor:      p.Vendor,
		Description: p.Description,
		Format:      strings.ToLower(p.Format.String()),
		InstallPath: p.InstallPath,
		CreatedAt:   time.Now().UTC(),
		Files:       records,
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(dest, name), data, 0o644)
}

// ReadManifest loads the manifest from an archive directory, trying the
// backup name first and the export name second.
func ReadManifest(dir string) (*Manifest, error) {
	var lastErr error
	for _, name := range []string{backupManifestName, exportManifestName} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			lastErr = err
			continue
		}
		var m Manifest
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		return &m, nil
	}
	return nil, lastErr
}
