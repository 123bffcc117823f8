package inventory

import "time"

// Record represents a single stored plugin installation.
type Record struct {
	PluginID    string
	Name        string
	Version     string
	Vendor      string
	Format      string
	InstallPath string

	PresetCount     int
	LibraryCount    int
	PreferenceCount int

	FirstSeenAt time.Time
	LastSeenAt  time.Time
}

// Change captures a single inventory transition for auditing or printing.
type Change struct {
	OccurredAt time.Time

	PluginID    string
	Name        string
	Format      string
	InstallPath string
	ChangeType  string // added | updated | removed
}

// FormatStats aggregates the inventory per plugin format.
type FormatStats struct {
	Format          string
	PluginCount     int
	PresetLocations int
}
