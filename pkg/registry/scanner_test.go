package registry

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/plugindepot/plugindepot/pkg/catalog"
)

func TestScanFindsDarwinBundles(t *testing.T) {
	cat, tmp := darwinFixture(t)
	vst3Root := filepath.Join(tmp, "Library", "Audio", "Plug-Ins", "VST3")
	auRoot := filepath.Join(tmp, "home", "Library", "Audio", "Plug-Ins", "Components")
	makeBundle(t, filepath.Join(vst3Root, "Foo.vst3"))
	makeBundle(t, filepath.Join(auRoot, "Bar.component"))

	res := NewScanner(cat, 2).Scan(context.Background())
	if res.Incomplete {
		t.Fatal("expected complete scan")
	}
	if len(res.Plugins) != 2 {
		t.Fatalf("expected 2 plugins, got %d: %v", len(res.Plugins), installPaths(res.Plugins))
	}

	foo, bar := res.Plugins[0], res.Plugins[1]
	if foo.Name != "Foo" || foo.Format != catalog.VST3 {
		t.Fatalf("unexpected plugin: %+v", foo)
	}
	if bar.Name != "Bar" || bar.Format != catalog.AU {
		t.Fatalf("unexpected plugin: %+v", bar)
	}
	if foo.ID != PluginID(catalog.VST3, foo.InstallPath) {
		t.Fatalf("ID not derived from format+path: %s", foo.ID)
	}
}

func TestScanSkipsBundleWithoutContents(t *testing.T) {
	cat, tmp := darwinFixture(t)
	root := filepath.Join(tmp, "Library", "Audio", "Plug-Ins", "VST3")
	writeFile(t, filepath.Join(root, "Broken.vst3", "leftover.txt"), "x")

	res := NewScanner(cat, 1).Scan(context.Background())
	if len(res.Plugins) != 0 {
		t.Fatalf("expected no plugins, got %v", installPaths(res.Plugins))
	}
}

func TestScanFindsNestedVendorBundles(t *testing.T) {
	cat, tmp := darwinFixture(t)
	root := filepath.Join(tmp, "Library", "Audio", "Plug-Ins", "VST3")
	makeBundle(t, filepath.Join(root, "VendorCo", "Deep.vst3"))

	res := NewScanner(cat, 1).Scan(context.Background())
	if len(res.Plugins) != 1 || res.Plugins[0].Name != "Deep" {
		t.Fatalf("expected nested bundle found, got %v", installPaths(res.Plugins))
	}
}

func TestScanDoesNotDescendIntoBundles(t *testing.T) {
	cat, tmp := darwinFixture(t)
	root := filepath.Join(tmp, "Library", "Audio", "Plug-Ins", "VST3")
	outer := filepath.Join(root, "Outer.vst3")
	makeBundle(t, outer)
	// A nested bundle inside a recognized one must not produce a record.
	makeBundle(t, filepath.Join(outer, "Contents", "Inner.vst3"))

	res := NewScanner(cat, 1).Scan(context.Background())
	if len(res.Plugins) != 1 {
		t.Fatalf("expected 1 plugin, got %v", installPaths(res.Plugins))
	}
}

func TestScanDeterministicAndSorted(t *testing.T) {
	cat, tmp := darwinFixture(t)
	root := filepath.Join(tmp, "Library", "Audio", "Plug-Ins", "VST3")
	for _, name := range []string{"Zeta.vst3", "Alpha.vst3", "Mid.vst3"} {
		makeBundle(t, filepath.Join(root, name))
	}

	s := NewScanner(cat, 4)
	first := s.Scan(context.Background())
	second := s.Scan(context.Background())

	if len(first.Plugins) != 3 || len(second.Plugins) != 3 {
		t.Fatalf("expected 3 plugins in both scans, got %d and %d", len(first.Plugins), len(second.Plugins))
	}
	for i := range first.Plugins {
		if first.Plugins[i].ID != second.Plugins[i].ID {
			t.Fatalf("scan not deterministic at %d: %s vs %s", i, first.Plugins[i].ID, second.Plugins[i].ID)
		}
		if i > 0 && first.Plugins[i-1].InstallPath >= first.Plugins[i].InstallPath {
			t.Fatalf("result not sorted by install path: %v", installPaths(first.Plugins))
		}
	}
}

func TestScanCollapsesDuplicateRoots(t *testing.T) {
	_, tmp := darwinFixture(t)
	root := filepath.Join(tmp, "Library", "Audio", "Plug-Ins", "VST3")
	makeBundle(t, filepath.Join(root, "Foo.vst3"))

	// The same directory reachable through an extra root must not yield a
	// second record.
	cat, err := catalog.New(catalog.Config{
		Platform:   catalog.Darwin,
		Home:       filepath.Join(tmp, "home"),
		SystemRoot: tmp,
		ExtraRoots: []catalog.SearchRoot{{Dir: root, Format: catalog.VST3, Scope: catalog.ScopeSystem}},
	})
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}

	res := NewScanner(cat, 2).Scan(context.Background())
	if len(res.Plugins) != 1 {
		t.Fatalf("expected duplicates collapsed to 1, got %d", len(res.Plugins))
	}
}

func TestScanWindowsLooseAndBundle(t *testing.T) {
	cat, tmp := windowsFixture(t)
	writeFile(t, filepath.Join(tmp, "pf", "VSTPlugins", "Synth.dll"), "binary")
	writeFile(t, filepath.Join(tmp, "pf", "VSTPlugins", "Empty.dll"), "")
	writeFile(t, filepath.Join(tmp, "cf", "VST3", "Loose.vst3"), "binary")
	makeBundle(t, filepath.Join(tmp, "cf", "VST3", "Bundled.vst3"))
	writeFile(t, filepath.Join(tmp, "cf", "Avid", "Audio", "Plug-Ins", "Pro.aax"), "binary")

	res := NewScanner(cat, 2).Scan(context.Background())
	if len(res.Plugins) != 4 {
		t.Fatalf("expected 4 plugins, got %d: %v", len(res.Plugins), installPaths(res.Plugins))
	}

	byName := make(map[string]Plugin)
	for _, p := range res.Plugins {
		byName[p.Name] = p
	}
	if byName["Synth"].Format != catalog.VST2 {
		t.Fatalf("expected Synth as VST2, got %+v", byName["Synth"])
	}
	if byName["Loose"].Format != catalog.VST3 || byName["Bundled"].Format != catalog.VST3 {
		t.Fatal("expected both loose and bundled VST3 recognized")
	}
	if byName["Pro"].Format != catalog.AAX {
		t.Fatalf("expected Pro as AAX, got %+v", byName["Pro"])
	}
	if _, ok := byName["Empty"]; ok {
		t.Fatal("expected empty plugin file skipped")
	}
}

func TestScanCancelledMarksIncomplete(t *testing.T) {
	cat, tmp := darwinFixture(t)
	makeBundle(t, filepath.Join(tmp, "Library", "Audio", "Plug-Ins", "VST3", "Foo.vst3"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := NewScanner(cat, 1).Scan(ctx)
	if !res.Incomplete {
		t.Fatal("expected cancelled scan marked incomplete")
	}
	if len(res.Plugins) != 0 {
		t.Fatalf("expected no plugins from cancelled scan, got %d", len(res.Plugins))
	}
}

func TestScanMissingRootsSkipped(t *testing.T) {
	cat, _ := darwinFixture(t)
	res := NewScanner(cat, 2).Scan(context.Background())
	if res.Incomplete || len(res.Plugins) != 0 {
		t.Fatalf("expected clean empty scan, got %+v", res)
	}
}

func TestScanSharesVST3IconsWithVST2(t *testing.T) {
	cat, tmp := darwinFixture(t)
	vst3 := filepath.Join(tmp, "Library", "Audio", "Plug-Ins", "VST3", "Foo Synth.vst3")
	vst2 := filepath.Join(tmp, "Library", "Audio", "Plug-Ins", "VST", "Foo Synth.vst")
	makeBundle(t, vst3)
	writeFile(t, filepath.Join(vst3, "Contents", "Resources", "icon.png"), "png")
	makeBundle(t, vst2)

	res := NewScanner(cat, 2).Scan(context.Background())
	if len(res.Plugins) != 2 {
		t.Fatalf("expected 2 plugins, got %d", len(res.Plugins))
	}

	var vst2Icon, vst3Icon string
	for _, p := range res.Plugins {
		switch p.Format {
		case catalog.VST2:
			vst2Icon = p.IconURL
		case catalog.VST3:
			vst3Icon = p.IconURL
		}
	}
	if vst3Icon == "" {
		t.Fatal("expected VST3 icon discovered")
	}
	if vst2Icon != vst3Icon {
		t.Fatalf("expected VST2 to inherit VST3 icon, got %q vs %q", vst2Icon, vst3Icon)
	}
}
