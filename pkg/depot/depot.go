// Package depot ties the scanner, associator, lifecycle operations and
// icon cache together behind one facade for embedding. Hosts address
// plugins by index into a scan result they keep alive, so every method
// takes the list together with the index and validates both.
package depot

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/plugindepot/plugindepot/pkg/associate"
	"github.com/plugindepot/plugindepot/pkg/catalog"
	"github.com/plugindepot/plugindepot/pkg/icons"
	"github.com/plugindepot/plugindepot/pkg/orphan"
	"github.com/plugindepot/plugindepot/pkg/registry"
)

var (
	// ErrNotFound marks lookups that point at nothing: an index past the
	// end of a list, a selector matching no plugin, an icon never cached.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput marks arguments that cannot be acted on at all.
	ErrInvalidInput = errors.New("invalid input")
)

// Options configures a Depot. The zero value scans the current machine
// with default concurrency and the platform icon cache.
type Options struct {
	Catalog      *catalog.Catalog
	Concurrency  int
	IconCacheDir string
}

type Depot struct {
	cat      *catalog.Catalog
	scanner  *registry.Scanner
	assoc    *associate.Associator
	detector *orphan.Detector
	icons    icons.Cache

	concurrency int

	mu    sync.Mutex
	locks map[string]*sync.RWMutex
}

func New(opts Options) (*Depot, error) {
	cat := opts.Catalog
	if cat == nil {
		cfg, err := catalog.DefaultConfig()
		if err != nil {
			return nil, err
		}
		cat, err = catalog.New(cfg)
		if err != nil {
			return nil, err
		}
	}

	cache := icons.New(opts.IconCacheDir)
	if opts.IconCacheDir == "" {
		var err error
		cache, err = icons.Default()
		if err != nil {
			return nil, err
		}
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	scanner := registry.NewScanner(cat, concurrency)
	assoc := associate.New(cat)
	return &Depot{
		cat:         cat,
		scanner:     scanner,
		assoc:       assoc,
		detector:    orphan.NewDetector(cat, scanner, assoc, concurrency),
		icons:       cache,
		concurrency: concurrency,
		locks:       make(map[string]*sync.RWMutex),
	}, nil
}

// Scan walks the search roots and returns the discovered plugins with
// their related-location counts filled in. Scanning never fails as a
// whole: cancellation or a cut-short count fill yields the partial list
// marked incomplete.
func (d *Depot) Scan(ctx context.Context) *PluginList {
	res := d.scanner.Scan(ctx)
	list := &PluginList{plugins: res.Plugins, incomplete: res.Incomplete}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for i := range list.plugins {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			locs := d.assoc.Locations(list.plugins[i])
			list.plugins[i].PresetCount = len(locs.PresetDirs)
			list.plugins[i].LibraryCount = len(locs.LibraryDirs) + len(locs.LibraryFiles)
			list.plugins[i].PreferenceCount = len(locs.PreferenceFiles)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		list.incomplete = true
	}
	return list
}

// lockFor returns the lock serializing operations on one plugin id.
func (d *Depot) lockFor(id string) *sync.RWMutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	l, ok := d.locks[id]
	if !ok {
		l = &sync.RWMutex{}
		d.locks[id] = l
	}
	return l
}
