package depot

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/plugindepot/plugindepot/pkg/associate"
	"github.com/plugindepot/plugindepot/pkg/operations"
	"github.com/plugindepot/plugindepot/pkg/orphan"
)

// EnumerateFiles returns every path associated with the plugin at index i.
func (d *Depot) EnumerateFiles(ctx context.Context, list *PluginList, i int) ([]associate.File, error) {
	p, err := list.At(i)
	if err != nil {
		return nil, err
	}
	lock := d.lockFor(p.ID)
	lock.RLock()
	defer lock.RUnlock()
	return d.assoc.Enumerate(ctx, p)
}

// Backup archives the plugin at index i under targetDir and returns the
// backup directory.
func (d *Depot) Backup(ctx context.Context, list *PluginList, i int, targetDir string) (string, error) {
	if strings.TrimSpace(targetDir) == "" {
		return "", fmt.Errorf("%w: no backup directory given", ErrInvalidInput)
	}
	p, err := list.At(i)
	if err != nil {
		return "", err
	}
	lock := d.lockFor(p.ID)
	lock.RLock()
	defer lock.RUnlock()

	files, err := d.assoc.Enumerate(ctx, p)
	if err != nil {
		return "", err
	}
	return operations.Backup(ctx, p, files, targetDir)
}

// Export archives the plugin at index i with a portable manifest.
func (d *Depot) Export(ctx context.Context, list *PluginList, i int, exportDir string) (string, error) {
	if strings.TrimSpace(exportDir) == "" {
		return "", fmt.Errorf("%w: no export directory given", ErrInvalidInput)
	}
	p, err := list.At(i)
	if err != nil {
		return "", err
	}
	lock := d.lockFor(p.ID)
	lock.RLock()
	defer lock.RUnlock()

	files, err := d.assoc.Enumerate(ctx, p)
	if err != nil {
		return "", err
	}
	return operations.Export(ctx, p, files, exportDir)
}

// Uninstall removes the plugin at index i and everything it owns, except
// paths other plugins in the list also claim. Dry runs report the target
// paths without touching the disk.
func (d *Depot) Uninstall(ctx context.Context, list *PluginList, i int, dryRun bool) ([]string, error) {
	p, err := list.At(i)
	if err != nil {
		return nil, err
	}

	protected, err := d.protectedPaths(ctx, list, p.ID)
	if err != nil {
		return nil, err
	}

	lock := d.lockFor(p.ID)
	lock.Lock()
	defer lock.Unlock()

	files, err := d.assoc.Enumerate(ctx, p)
	if err != nil {
		return nil, err
	}
	return operations.Uninstall(ctx, p, files, protected, dryRun)
}

// protectedPaths enumerates every plugin except excludeID and collects
// their paths. Anything in this set survives an uninstall.
func (d *Depot) protectedPaths(ctx context.Context, list *PluginList, excludeID string) (map[string]bool, error) {
	protected := make(map[string]bool)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for _, other := range list.plugins {
		if other.ID == excludeID {
			continue
		}
		other := other
		g.Go(func() error {
			files, err := d.assoc.Enumerate(gctx, other)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for _, f := range files {
				protected[f.Path] = true
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return protected, nil
}

// DetectOrphans sweeps the search roots for paths no plugin claims.
func (d *Depot) DetectOrphans(ctx context.Context) ([]orphan.Orphan, error) {
	return d.detector.Detect(ctx)
}

// CacheIcon stores icon bytes for a url and returns the cache path.
func (d *Depot) CacheIcon(url string, data []byte) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", fmt.Errorf("%w: no icon url given", ErrInvalidInput)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty icon data for %s", ErrInvalidInput, url)
	}
	return d.icons.Store(url, data)
}

// CachedIconPath resolves a url to a local icon file.
func (d *Depot) CachedIconPath(url string) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", fmt.Errorf("%w: no icon url given", ErrInvalidInput)
	}
	path, ok := d.icons.Path(url)
	if !ok {
		return "", fmt.Errorf("%w: no cached icon for %s", ErrNotFound, url)
	}
	return path, nil
}

// ClearIconCache removes every cached icon.
func (d *Depot) ClearIconCache() error {
	return d.icons.Clear()
}
