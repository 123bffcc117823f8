package associate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/plugindepot/plugindepot/pkg/catalog"
	"github.com/plugindepot/plugindepot/pkg/registry"
)

func darwinCatalog(t *testing.T) (*catalog.Catalog, string, string) {
	t.Helper()
	root := t.TempDir()
	home := filepath.Join(root, "home")
	cat, err := catalog.New(catalog.Config{
		Platform:   catalog.Darwin,
		Home:       home,
		SystemRoot: root,
	})
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}
	return cat, root, home
}

func windowsCatalog(t *testing.T) (*catalog.Catalog, string) {
	t.Helper()
	root := t.TempDir()
	cat, err := catalog.New(catalog.Config{
		Platform:        catalog.Windows,
		Home:            filepath.Join(root, "Users", "tester"),
		SystemRoot:      root,
		ProgramFiles:    filepath.Join(root, "Program Files"),
		ProgramFilesX86: filepath.Join(root, "Program Files (x86)"),
		CommonFiles:     filepath.Join(root, "Common Files"),
		CommonFilesX86:  filepath.Join(root, "Common Files (x86)"),
		AppData:         filepath.Join(root, "AppData", "Roaming"),
		ProgramData:     filepath.Join(root, "ProgramData"),
	})
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}
	return cat, root
}

func mkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	mkdir(t, filepath.Dir(path))
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func testPlugin(name string, f catalog.Format, installPath string) registry.Plugin {
	return registry.Plugin{
		ID:          registry.PluginID(f, installPath),
		Name:        name,
		Format:      f,
		InstallPath: installPath,
	}
}

func TestLocationsClaimsMatchingDirectories(t *testing.T) {
	cat, root, home := darwinCatalog(t)
	a := New(cat)

	install := filepath.Join(root, "Library", "Audio", "Plug-Ins", "VST3", "Foo Synth.vst3")
	mkdir(t, filepath.Join(install, "Contents"))

	mkdir(t, filepath.Join(home, "Music", "Foo Synth"))
	mkdir(t, filepath.Join(home, "Documents", "FooSynth"))
	mkdir(t, filepath.Join(home, "Documents", "Foo Synth Library"))
	mkdir(t, filepath.Join(root, "Library", "Application Support", "Foo Synth"))
	mkdir(t, filepath.Join(root, "Library", "Application Support", "Acme", "Foo Synth"))

	p := testPlugin("Foo Synth", catalog.VST3, install)
	p.Vendor = "Acme"
	locs := a.Locations(p)

	wantPresets := []string{
		filepath.Join(home, "Music", "Foo Synth"),
		filepath.Join(home, "Documents", "Foo Synth Library"),
		filepath.Join(home, "Documents", "FooSynth"),
	}
	if len(locs.PresetDirs) != len(wantPresets) {
		t.Fatalf("expected %d preset dirs, got %d: %v", len(wantPresets), len(locs.PresetDirs), locs.PresetDirs)
	}
	for i, want := range wantPresets {
		if locs.PresetDirs[i] != want {
			t.Fatalf("preset dir %d: expected %s, got %s", i, want, locs.PresetDirs[i])
		}
	}

	wantLibs := []string{
		filepath.Join(root, "Library", "Application Support", "Foo Synth"),
		filepath.Join(root, "Library", "Application Support", "Acme", "Foo Synth"),
	}
	if len(locs.LibraryDirs) != len(wantLibs) {
		t.Fatalf("expected %d library dirs, got %d: %v", len(wantLibs), len(locs.LibraryDirs), locs.LibraryDirs)
	}
	for i, want := range wantLibs {
		if locs.LibraryDirs[i] != want {
			t.Fatalf("library dir %d: expected %s, got %s", i, want, locs.LibraryDirs[i])
		}
	}
}

func TestLocationsIgnoresLookalikeNames(t *testing.T) {
	cat, root, home := darwinCatalog(t)
	a := New(cat)

	install := filepath.Join(root, "Library", "Audio", "Plug-Ins", "VST3", "Foo Synth.vst3")
	mkdir(t, filepath.Join(install, "Contents"))

	// Near misses: a longer name, a different case and an unrelated
	// neighbor sharing the parent directory.
	mkdir(t, filepath.Join(home, "Music", "Foo Synth Pro"))
	mkdir(t, filepath.Join(home, "Music", "foo synth"))
	mkdir(t, filepath.Join(root, "Library", "Application Support", "Totally Unrelated"))

	locs := a.Locations(testPlugin("Foo Synth", catalog.VST3, install))
	if len(locs.PresetDirs) != 0 {
		t.Fatalf("expected no preset dirs, got %v", locs.PresetDirs)
	}
	if len(locs.LibraryDirs) != 0 {
		t.Fatalf("expected no library dirs, got %v", locs.LibraryDirs)
	}
	if len(locs.PreferenceFiles) != 0 {
		t.Fatalf("expected no preference files, got %v", locs.PreferenceFiles)
	}
}

func TestEnumerateReturnsPrimaryPresetsAndPreferences(t *testing.T) {
	cat, root, home := darwinCatalog(t)
	a := New(cat)

	install := filepath.Join(root, "Library", "Audio", "Plug-Ins", "VST3", "Foo.vst3")
	mkdir(t, filepath.Join(install, "Contents"))

	preset := filepath.Join(home, "Music", "Foo", "a.fxp")
	writeFile(t, preset)
	pref := filepath.Join(home, "Library", "Preferences", "com.vendor.Foo.plist")
	writeFile(t, pref)

	p := testPlugin("Foo", catalog.VST3, install)
	p.BundleID = "com.vendor.Foo"

	files, err := a.Enumerate(context.Background(), p)
	if err != nil {
		t.Fatalf("enumerate failed: %v", err)
	}
	want := []File{
		{Path: install, Category: CategoryPrimary},
		{Path: preset, Category: CategoryPreset},
		{Path: pref, Category: CategoryPreference},
	}
	if len(files) != len(want) {
		t.Fatalf("expected %d files, got %d: %v", len(want), len(files), files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("file %d: expected %+v, got %+v", i, want[i], files[i])
		}
	}
}

func TestEnumerateRecursesIntoClaimedDirectories(t *testing.T) {
	cat, root, home := darwinCatalog(t)
	a := New(cat)

	install := filepath.Join(root, "Library", "Audio", "Plug-Ins", "VST3", "Foo.vst3")
	mkdir(t, filepath.Join(install, "Contents"))

	writeFile(t, filepath.Join(home, "Music", "Foo", "init.fxp"))
	writeFile(t, filepath.Join(home, "Music", "Foo", "Banks", "lead.fxp"))

	files, err := a.Enumerate(context.Background(), testPlugin("Foo", catalog.VST3, install))
	if err != nil {
		t.Fatalf("enumerate failed: %v", err)
	}

	var presets []string
	for _, f := range files {
		if f.Category == CategoryPreset {
			presets = append(presets, f.Path)
		}
	}
	want := []string{
		filepath.Join(home, "Music", "Foo", "Banks", "lead.fxp"),
		filepath.Join(home, "Music", "Foo", "init.fxp"),
	}
	if len(presets) != len(want) {
		t.Fatalf("expected %d preset files, got %d: %v", len(want), len(presets), presets)
	}
	for i := range want {
		if presets[i] != want[i] {
			t.Fatalf("preset %d: expected %s, got %s", i, want[i], presets[i])
		}
	}
}

func TestAdjacentSiblingsClaimedByName(t *testing.T) {
	cat, root := windowsCatalog(t)
	a := New(cat)

	dir := filepath.Join(root, "Program Files", "VSTPlugins")
	install := filepath.Join(dir, "Synth.dll")
	writeFile(t, install)
	writeFile(t, filepath.Join(dir, "Synth.dat"))
	mkdir(t, filepath.Join(dir, "Synth"))
	writeFile(t, filepath.Join(dir, "Synth.vst3"))
	writeFile(t, filepath.Join(dir, "SynthPro.dat"))

	locs := a.Locations(testPlugin("Synth", catalog.VST2, install))

	if len(locs.LibraryDirs) != 1 || locs.LibraryDirs[0] != filepath.Join(dir, "Synth") {
		t.Fatalf("expected the Synth folder to be claimed, got %v", locs.LibraryDirs)
	}
	if len(locs.LibraryFiles) != 1 || locs.LibraryFiles[0] != filepath.Join(dir, "Synth.dat") {
		t.Fatalf("expected Synth.dat to be claimed, got %v", locs.LibraryFiles)
	}
}

func TestSharedLibraryClaimedByBothFormats(t *testing.T) {
	cat, root, _ := darwinCatalog(t)
	a := New(cat)

	shared := filepath.Join(root, "Library", "Application Support", "Foo")
	mkdir(t, shared)

	vst2 := filepath.Join(root, "Library", "Audio", "Plug-Ins", "VST", "Foo.vst")
	vst3 := filepath.Join(root, "Library", "Audio", "Plug-Ins", "VST3", "Foo.vst3")
	mkdir(t, filepath.Join(vst2, "Contents"))
	mkdir(t, filepath.Join(vst3, "Contents"))

	for _, p := range []registry.Plugin{
		testPlugin("Foo", catalog.VST2, vst2),
		testPlugin("Foo", catalog.VST3, vst3),
	} {
		locs := a.Locations(p)
		if len(locs.LibraryDirs) != 1 || locs.LibraryDirs[0] != shared {
			t.Fatalf("expected %s plugin to claim %s, got %v", p.Format, shared, locs.LibraryDirs)
		}
	}
}

func TestPreferencePatterns(t *testing.T) {
	cat, root, home := darwinCatalog(t)
	a := New(cat)

	install := filepath.Join(root, "Library", "Audio", "Plug-Ins", "VST3", "Foo Bar.vst3")
	mkdir(t, filepath.Join(install, "Contents"))

	prefs := filepath.Join(home, "Library", "Preferences")
	writeFile(t, filepath.Join(prefs, "com.foobar.plist"))
	writeFile(t, filepath.Join(prefs, "FooBar.plist"))
	writeFile(t, filepath.Join(prefs, "com.acme.foobar2.plist"))
	writeFile(t, filepath.Join(prefs, "com.acmeaudio.foobar.plist"))
	writeFile(t, filepath.Join(prefs, "com.other.plist"))

	p := testPlugin("Foo Bar", catalog.VST3, install)
	p.Vendor = "Acme Audio"
	p.BundleID = "com.acme.foobar2"

	locs := a.Locations(p)
	want := []string{
		filepath.Join(prefs, "com.foobar.plist"),
		filepath.Join(prefs, "FooBar.plist"),
		filepath.Join(prefs, "com.acme.foobar2.plist"),
		filepath.Join(prefs, "com.acmeaudio.foobar.plist"),
	}
	if len(locs.PreferenceFiles) != len(want) {
		t.Fatalf("expected %d preference files, got %d: %v", len(want), len(locs.PreferenceFiles), locs.PreferenceFiles)
	}
	for i, w := range want {
		if locs.PreferenceFiles[i] != w {
			t.Fatalf("preference file %d: expected %s, got %s", i, w, locs.PreferenceFiles[i])
		}
	}
}

func TestEnumerateHonorsCancellation(t *testing.T) {
	cat, root, home := darwinCatalog(t)
	a := New(cat)

	install := filepath.Join(root, "Library", "Audio", "Plug-Ins", "VST3", "Foo.vst3")
	mkdir(t, filepath.Join(install, "Contents"))
	writeFile(t, filepath.Join(home, "Music", "Foo", "a.fxp"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Enumerate(ctx, testPlugin("Foo", catalog.VST3, install))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
