// Package catalog holds the static plugin-location knowledge: which
// packaging formats exist, where each platform installs them, and where
// plugin data (presets, libraries, preferences) conventionally lives.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	homedir "github.com/mitchellh/go-homedir"
)

// Platform names an operating system family with known plugin conventions.
type Platform string

const (
	Darwin  Platform = "darwin"
	Windows Platform = "windows"
	Linux   Platform = "linux"
)

// Scope says whether a search root is machine-wide or per-user.
type Scope string

const (
	ScopeSystem Scope = "system"
	ScopeUser   Scope = "user"
)

// SearchRoot is one directory the scanner walks for a single format.
type SearchRoot struct {
	Dir    string
	Format Format
	Scope  Scope
}

// Config anchors the catalog's directory tables. Tests point it at temp
// directories; production code starts from DefaultConfig.
type Config struct {
	Platform Platform

	// Home is the user home directory.
	Home string

	// SystemRoot is prepended to absolute unix system paths. It is "/"
	// outside tests.
	SystemRoot string

	// Windows installation and data directories, resolved from the
	// environment by DefaultConfig.
	ProgramFiles    string
	ProgramFilesX86 string
	CommonFiles     string
	CommonFilesX86  string
	AppData         string
	ProgramData     string

	// ExtraRoots are appended after the platform defaults.
	ExtraRoots []SearchRoot
}

// DefaultConfig resolves the current machine's directories.
func DefaultConfig() (Config, error) {
	home, err := homedir.Dir()
	if err != nil {
		return Config{}, fmt.Errorf("could not resolve home directory: %w", err)
	}
	cfg := Config{
		Platform:   Platform(runtime.GOOS),
		Home:       home,
		SystemRoot: "/",
	}
	if cfg.Platform == Windows {
		cfg.ProgramFiles = envOr("ProgramFiles", `C:\Program Files`)
		cfg.ProgramFilesX86 = envOr("ProgramFiles(x86)", `C:\Program Files (x86)`)
		cfg.CommonFiles = envOr("CommonProgramFiles", `C:\Program Files\Common Files`)
		cfg.CommonFilesX86 = envOr("CommonProgramFiles(x86)", `C:\Program Files (x86)\Common Files`)
		cfg.AppData = os.Getenv("APPDATA")
		cfg.ProgramData = os.Getenv("PROGRAMDATA")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Catalog answers format and location questions for one platform.
type Catalog struct {
	cfg   Config
	roots []SearchRoot
}

// New builds a catalog from cfg. Unknown platforms get no default roots,
// only cfg.ExtraRoots.
func New(cfg Config) (*Catalog, error) {
	if cfg.Home == "" {
		return nil, fmt.Errorf("catalog: home directory is required")
	}
	if cfg.SystemRoot == "" {
		cfg.SystemRoot = "/"
	}
	c := &Catalog{cfg: cfg}
	c.roots = append(c.defaultRoots(), cfg.ExtraRoots...)
	return c, nil
}

func (c *Catalog) Platform() Platform { return c.cfg.Platform }

// SearchRoots returns every directory the scanner should walk, in a fixed
// order: platform defaults first, then extras.
func (c *Catalog) SearchRoots() []SearchRoot {
	out := make([]SearchRoot, len(c.roots))
	copy(out, c.roots)
	return out
}

// Extension returns the file extension (without dot) for a format, and
// false when the platform has no install convention for it.
func (c *Catalog) Extension(f Format) (string, bool) {
	switch c.cfg.Platform {
	case Darwin:
		switch f {
		case VST2:
			return "vst", true
		case VST3:
			return "vst3", true
		case AU:
			return "component", true
		case AAX:
			return "aaxplugin", true
		}
	case Windows:
		switch f {
		case VST2:
			return "dll", true
		case VST3:
			return "vst3", true
		case AAX:
			return "aax", true
		}
	case Linux:
		switch f {
		case VST2:
			return "so", true
		case VST3:
			return "vst3", true
		}
	}
	return "", false
}

// IsBundle reports whether the format installs as a directory bundle.
// Windows and Linux VST3 plugins ship both as bundles and as loose files,
// so IsBundle and IsLooseFile are not mutually exclusive.
func (c *Catalog) IsBundle(f Format) bool {
	switch c.cfg.Platform {
	case Darwin:
		return true
	case Windows, Linux:
		return f == VST3
	}
	return false
}

// IsLooseFile reports whether the format installs as a plain file.
func (c *Catalog) IsLooseFile(f Format) bool {
	switch c.cfg.Platform {
	case Windows:
		return f == VST2 || f == VST3 || f == AAX
	case Linux:
		return f == VST2 || f == VST3
	}
	return false
}

// PresetParents lists the directories under which plugins keep preset
// folders named after themselves.
func (c *Catalog) PresetParents() []string {
	switch c.cfg.Platform {
	case Darwin:
		return []string{
			c.home("Music"),
			c.home("Library", "Audio", "Presets"),
			c.home("Documents"),
		}
	case Windows:
		if c.cfg.AppData == "" {
			return nil
		}
		return []string{c.cfg.AppData}
	case Linux:
		return []string{c.home("Documents")}
	}
	return nil
}

// LibraryParents lists the directories under which plugins keep shared
// content libraries named after themselves.
func (c *Catalog) LibraryParents() []string {
	switch c.cfg.Platform {
	case Darwin:
		return []string{
			c.sys("Library", "Application Support"),
			c.home("Library", "Application Support"),
			c.sys("Library", "Audio", "Sounds"),
			c.home("Library", "Audio", "Sounds"),
		}
	case Windows:
		if c.cfg.ProgramData == "" {
			return nil
		}
		return []string{c.cfg.ProgramData}
	case Linux:
		return []string{c.home(".local", "share")}
	}
	return nil
}

// PreferenceDirs lists the directories holding per-plugin settings files.
// Windows preferences live in the registry, which this tool does not touch,
// so the list is empty there.
func (c *Catalog) PreferenceDirs() []string {
	switch c.cfg.Platform {
	case Darwin:
		return []string{c.home("Library", "Preferences")}
	case Linux:
		return []string{c.home(".config")}
	}
	return nil
}

func (c *Catalog) defaultRoots() []SearchRoot {
	switch c.cfg.Platform {
	case Darwin:
		return []SearchRoot{
			{Dir: c.sys("Library", "Audio", "Plug-Ins", "Components"), Format: AU, Scope: ScopeSystem},
			{Dir: c.home("Library", "Audio", "Plug-Ins", "Components"), Format: AU, Scope: ScopeUser},
			{Dir: c.sys("Library", "Audio", "Plug-Ins", "VST"), Format: VST2, Scope: ScopeSystem},
			{Dir: c.home("Library", "Audio", "Plug-Ins", "VST"), Format: VST2, Scope: ScopeUser},
			{Dir: c.sys("Library", "Audio", "Plug-Ins", "VST3"), Format: VST3, Scope: ScopeSystem},
			{Dir: c.home("Library", "Audio", "Plug-Ins", "VST3"), Format: VST3, Scope: ScopeUser},
			{Dir: c.sys("Library", "Application Support", "Avid", "Audio", "Plug-Ins"), Format: AAX, Scope: ScopeSystem},
		}
	case Windows:
		return []SearchRoot{
			{Dir: filepath.Join(c.cfg.ProgramFiles, "VSTPlugins"), Format: VST2, Scope: ScopeSystem},
			{Dir: filepath.Join(c.cfg.ProgramFiles, "Steinberg", "VSTPlugins"), Format: VST2, Scope: ScopeSystem},
			{Dir: filepath.Join(c.cfg.CommonFiles, "VST2"), Format: VST2, Scope: ScopeSystem},
			{Dir: filepath.Join(c.cfg.ProgramFilesX86, "VSTPlugins"), Format: VST2, Scope: ScopeSystem},
			{Dir: filepath.Join(c.cfg.ProgramFilesX86, "Steinberg", "VSTPlugins"), Format: VST2, Scope: ScopeSystem},
			{Dir: filepath.Join(c.cfg.CommonFiles, "VST3"), Format: VST3, Scope: ScopeSystem},
			{Dir: filepath.Join(c.cfg.CommonFiles, "Avid", "Audio", "Plug-Ins"), Format: AAX, Scope: ScopeSystem},
			{Dir: filepath.Join(c.cfg.CommonFilesX86, "Avid", "Audio", "Plug-Ins"), Format: AAX, Scope: ScopeSystem},
		}
	case Linux:
		return []SearchRoot{
			{Dir: c.sys("usr", "lib", "vst"), Format: VST2, Scope: ScopeSystem},
			{Dir: c.sys("usr", "local", "lib", "vst"), Format: VST2, Scope: ScopeSystem},
			{Dir: c.home(".vst"), Format: VST2, Scope: ScopeUser},
			{Dir: c.sys("usr", "lib", "vst3"), Format: VST3, Scope: ScopeSystem},
			{Dir: c.sys("usr", "local", "lib", "vst3"), Format: VST3, Scope: ScopeSystem},
			{Dir: c.home(".vst3"), Format: VST3, Scope: ScopeUser},
		}
	}
	return nil
}

func (c *Catalog) sys(parts ...string) string {
	return filepath.Join(append([]string{c.cfg.SystemRoot}, parts...)...)
}

func (c *Catalog) home(parts ...string) string {
	return filepath.Join(append([]string{c.cfg.Home}, parts...)...)
}
