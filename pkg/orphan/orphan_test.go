package orphan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/plugindepot/plugindepot/pkg/associate"
	"github.com/plugindepot/plugindepot/pkg/catalog"
	"github.com/plugindepot/plugindepot/pkg/registry"
)

func testDetector(t *testing.T) (*Detector, string, string) {
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
	scanner := registry.NewScanner(cat, 2)
	det := NewDetector(cat, scanner, associate.New(cat), 2)
	return det, root, home
}

func mkBundle(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(path, "Contents"), 0o755); err != nil {
		t.Fatalf("failed to create bundle %s: %v", path, err)
	}
}

func mkFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent of %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestDetectReportsUnclaimedPaths(t *testing.T) {
	det, root, _ := testDetector(t)
	vst3 := filepath.Join(root, "Library", "Audio", "Plug-Ins", "VST3")

	mkBundle(t, filepath.Join(vst3, "Foo.vst3"))
	mkBundle(t, filepath.Join(vst3, "Vendor", "Bar.vst3"))
	mkFile(t, filepath.Join(vst3, "Stray.txt"))
	mkFile(t, filepath.Join(vst3, "Vendor", "Notes.txt"))
	// A bundle missing its Contents directory is not a valid install, so
	// the whole thing counts as leftovers.
	mkFile(t, filepath.Join(vst3, "Broken.vst3", "leftover.bin"))

	orphans, err := det.Detect(context.Background())
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}

	want := []Orphan{
		{Path: filepath.Join(vst3, "Broken.vst3"), IsDir: true},
		{Path: filepath.Join(vst3, "Stray.txt")},
		{Path: filepath.Join(vst3, "Vendor", "Notes.txt")},
	}
	if len(orphans) != len(want) {
		t.Fatalf("expected %d orphans, got %d: %v", len(want), len(orphans), orphans)
	}
	for i := range want {
		if orphans[i] != want[i] {
			t.Fatalf("orphan %d: expected %+v, got %+v", i, want[i], orphans[i])
		}
	}
}

func TestDetectSkipsClaimedSiblings(t *testing.T) {
	det, root, _ := testDetector(t)
	vst3 := filepath.Join(root, "Library", "Audio", "Plug-Ins", "VST3")

	mkBundle(t, filepath.Join(vst3, "Foo.vst3"))
	// Foo.dat sits next to the bundle and matches its name, so the plugin
	// claims it and the sweep must not flag it.
	mkFile(t, filepath.Join(vst3, "Foo.dat"))

	orphans, err := det.Detect(context.Background())
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	if len(orphans) != 0 {
		t.Fatalf("expected no orphans, got %v", orphans)
	}
}

func TestDetectAbortsOnIncompleteScan(t *testing.T) {
	det, root, _ := testDetector(t)
	mkBundle(t, filepath.Join(root, "Library", "Audio", "Plug-Ins", "VST3", "Foo.vst3"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	orphans, err := det.Detect(ctx)
	if err == nil {
		t.Fatalf("expected an error from a cancelled detect, got orphans %v", orphans)
	}
	if orphans != nil {
		t.Fatalf("expected no orphans on cancellation, got %v", orphans)
	}
}

func TestDetectAgainstEmptyRegistryReportsEverything(t *testing.T) {
	det, root, _ := testDetector(t)
	vst := filepath.Join(root, "Library", "Audio", "Plug-Ins", "VST")

	mkBundle(t, filepath.Join(vst, "Old.vst"))
	mkFile(t, filepath.Join(vst, "readme.txt"))

	orphans, err := det.DetectAgainst(context.Background(), nil)
	if err != nil {
		t.Fatalf("detect failed: %v", err)
	}
	want := []Orphan{
		{Path: filepath.Join(vst, "Old.vst"), IsDir: true},
		{Path: filepath.Join(vst, "readme.txt")},
	}
	if len(orphans) != len(want) {
		t.Fatalf("expected %d orphans, got %d: %v", len(want), len(orphans), orphans)
	}
	for i := range want {
		if orphans[i] != want[i] {
			t.Fatalf("orphan %d: expected %+v, got %+v", i, want[i], orphans[i])
		}
	}
}
