// Package operations implements the destructive and archival plugin
// lifecycle operations: backup, export and uninstall. All of them work
// from a file set produced by the associator, never from paths they
// discover themselves.
package operations

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/plugindepot/plugindepot/internal/utils"
	"github.com/plugindepot/plugindepot/pkg/associate"
	"github.com/plugindepot/plugindepot/pkg/registry"
)

// Backup copies every file belonging to p into a fresh directory under
// targetDir, named after the plugin's identifier, and writes a manifest
// describing the contents. A backup is all or nothing: any copy failure
// removes the partial directory and returns the error.
func Backup(ctx context.Context, p registry.Plugin, files []associate.File, targetDir string) (string, error) {
	dest, err := freshDir(targetDir, p.ID)
	if err != nil {
		return "", err
	}
	if err := archive(ctx, p, files, dest, backupManifestName); err != nil {
		os.RemoveAll(dest)
		return "", err
	}
	return dest, nil
}

// Export is Backup with a manifest meant to travel: the archive carries
// enough metadata to re-identify the plugin on another machine.
func Export(ctx context.Context, p registry.Plugin, files []associate.File, exportDir string) (string, error) {
	dest, err := freshDir(exportDir, p.ID+"_export")
	if err != nil {
		return "", err
	}
	if err := archive(ctx, p, files, dest, exportManifestName); err != nil {
		os.RemoveAll(dest)
		return "", err
	}
	return dest, nil
}

// Uninstall deletes the plugin's files, skipping any path in protected
// (paths other plugins also claim). With dryRun it only reports what would
// go. Deletion is best effort: a path that is already gone counts as
// removed, a path that cannot be removed is logged and skipped. The
// returned slice is exactly the set of paths no longer present.
func Uninstall(ctx context.Context, p registry.Plugin, files []associate.File, protected map[string]bool, dryRun bool) ([]string, error) {
	var targets []string
	for _, f := range files {
		if protected[f.Path] {
			utils.Log.Debugf("Keeping %s, another plugin claims it", f.Path)
			continue
		}
		targets = append(targets, f.Path)
	}
	sort.Strings(targets)

	if dryRun {
		return targets, nil
	}

	var removed []string
	for _, path := range targets {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		fi, err := os.Lstat(path)
		if os.IsNotExist(err) {
			removed = append(removed, path)
			continue
		}
		if err != nil {
			utils.Log.Warnf("Failed to inspect %s: %v", path, err)
			continue
		}
		if fi.IsDir() {
			err = os.RemoveAll(path)
		} else {
			err = os.Remove(path)
		}
		if err != nil {
			utils.Log.Warnf("Failed to remove %s: %v", path, err)
			continue
		}
		removed = append(removed, path)
	}
	return removed, nil
}

func archive(ctx context.Context, p registry.Plugin, files []associate.File, dest, manifestName string) error {
	records, err := copyAll(ctx, p, files, dest)
	if err != nil {
		return err
	}
	return writeManifest(dest, manifestName, p, records)
}

// freshDir creates dir/name, falling back to a timestamped sibling when a
// previous run left one behind.
func freshDir(dir, name string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("no destination directory given")
	}
	dest := filepath.Join(dir, name)
	if _, err := os.Lstat(dest); err == nil {
		dest = dest + "-" + time.Now().Format("20060102-150405")
		if _, err := os.Lstat(dest); err == nil {
			return "", fmt.Errorf("destination %s already exists", dest)
		}
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dest, err)
	}
	return dest, nil
}
