package depot

import (
	"fmt"
	"strings"

	"github.com/plugindepot/plugindepot/pkg/registry"
)

// PluginList is an immutable scan result. Hosts hold on to it and address
// plugins by index; indexes stay valid for the lifetime of the list.
type PluginList struct {
	plugins    []registry.Plugin
	incomplete bool
}

func (l *PluginList) Count() int {
	return len(l.plugins)
}

// Incomplete reports whether the scan behind this list was cut short.
func (l *PluginList) Incomplete() bool {
	return l.incomplete
}

// At returns the plugin at index i.
func (l *PluginList) At(i int) (registry.Plugin, error) {
	if i < 0 || i >= len(l.plugins) {
		return registry.Plugin{}, fmt.Errorf("%w: plugin index %d out of range (%d plugins)", ErrNotFound, i, len(l.plugins))
	}
	return l.plugins[i], nil
}

// Plugins returns a copy of the list.
func (l *PluginList) Plugins() []registry.Plugin {
	return append([]registry.Plugin(nil), l.plugins...)
}

// Find resolves a user-supplied selector to an index. IDs and install
// paths are unique; names may be shared across formats, in which case
// the caller has to use one of the listed ids instead.
func (l *PluginList) Find(key string) (int, error) {
	if key == "" {
		return 0, fmt.Errorf("%w: empty plugin selector", ErrInvalidInput)
	}
	var byName []int
	for i, p := range l.plugins {
		if p.ID == key || p.InstallPath == key {
			return i, nil
		}
		if p.Name == key {
			byName = append(byName, i)
		}
	}
	switch len(byName) {
	case 0:
		return 0, fmt.Errorf("%w: no plugin matches %q", ErrNotFound, key)
	case 1:
		return byName[0], nil
	}
	ids := make([]string, 0, len(byName))
	for _, i := range byName {
		ids = append(ids, l.plugins[i].ID)
	}
	return 0, fmt.Errorf("%w: %q matches %d plugins (%s), select by id or install path", ErrInvalidInput, key, len(byName), strings.Join(ids, ", "))
}
