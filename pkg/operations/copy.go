package operations

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/plugindepot/plugindepot/pkg/associate"
	"github.com/plugindepot/plugindepot/pkg/registry"
)

// copyAll copies the file set into destRoot and returns one record per
// input file. Paths under the plugin's install parent keep their relative
// layout; everything else is mirrored under a per-category subtree so two
// same-named preset files from different places cannot collide.
func copyAll(ctx context.Context, p registry.Plugin, files []associate.File, destRoot string) ([]FileRecord, error) {
	installParent := filepath.Dir(p.InstallPath)

	records := make([]FileRecord, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		dest := destPath(installParent, f, destRoot)
		if err := copyTree(ctx, f.Path, dest); err != nil {
			return nil, fmt.Errorf("failed to copy %s: %w", f.Path, err)
		}
		rel, err := filepath.Rel(destRoot, dest)
		if err != nil {
			rel = filepath.Base(dest)
		}
		records = append(records, FileRecord{
			Path:        f.Path,
			ArchivePath: filepath.ToSlash(rel),
			Category:    f.Category,
		})
	}
	return records, nil
}

func destPath(installParent string, f associate.File, destRoot string) string {
	if rel, err := filepath.Rel(installParent, f.Path); err == nil && !isOutside(rel) {
		return filepath.Join(destRoot, rel)
	}
	trimmed := strings.TrimPrefix(f.Path, filepath.VolumeName(f.Path))
	trimmed = strings.TrimPrefix(trimmed, string(filepath.Separator))
	return filepath.Join(destRoot, string(f.Category), trimmed)
}

func isOutside(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// copyTree copies a file or a whole directory, preserving modes.
func copyTree(ctx context.Context, src, dest string) error {
	fi, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return copyFile(src, dest, fi.Mode())
	}
	if err := os.MkdirAll(dest, fi.Mode().Perm()); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := copyTree(ctx, filepath.Join(src, entry.Name()), filepath.Join(dest, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src, dest string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
