// Package inventory persists scan results in a local SQLite database and
// keeps a journal of how the installed plugin set changes between scans.
package inventory

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/plugindepot/plugindepot/pkg/registry"
)

type DB struct {
	sql *sql.DB
}

func Open(path string) (*DB, error) {
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	// Ensure schema exists for convenience.
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS plugins (
  id               INTEGER PRIMARY KEY,
  plugin_id        TEXT NOT NULL,
  name             TEXT NOT NULL,
  version          TEXT NOT NULL,
  vendor           TEXT,
  format           TEXT NOT NULL,
  install_path     TEXT NOT NULL,
  preset_count     INTEGER NOT NULL DEFAULT 0,
  library_count    INTEGER NOT NULL DEFAULT 0,
  preference_count INTEGER NOT NULL DEFAULT 0,
  run_id           INTEGER NOT NULL DEFAULT 0,
  first_seen_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  last_seen_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(plugin_id)
);
CREATE INDEX IF NOT EXISTS idx_plugins_format ON plugins(format);
CREATE TABLE IF NOT EXISTS plugin_changes (
  id           INTEGER PRIMARY KEY,
  occurred_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  plugin_id    TEXT NOT NULL,
  name         TEXT NOT NULL,
  format       TEXT NOT NULL,
  install_path TEXT NOT NULL,
  change_type  TEXT NOT NULL CHECK (change_type IN ('added','updated','removed'))
);
CREATE INDEX IF NOT EXISTS idx_plugin_changes_time ON plugin_changes(occurred_at);
    `); err != nil {
		return nil, err
	}
	return &DB{sql: db}, nil
}

func (d *DB) Close() error {
	if d == nil || d.sql == nil {
		return nil
	}
	return d.sql.Close()
}

// Snapshot reconciles the database with the plugins a scan found. New ids
// are inserted, changed metadata is updated and ids missing from this run
// are swept out, each movement journaled. Callers must not snapshot an
// incomplete scan; a plugin the scan never reached would be recorded as
// removed.
func (d *DB) Snapshot(ctx context.Context, plugins []registry.Plugin) ([]Change, error) {
	now := time.Now().UTC()
	// Nanoseconds so back-to-back snapshots never share a run id.
	runID := time.Now().UnixNano()

	tx, err := d.sql.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx, "SELECT plugin_id, name, version, vendor, preset_count, library_count, preference_count FROM plugins")
	if err != nil {
		return nil, err
	}

	type existing struct {
		Name, Version, Vendor           string
		Presets, Libraries, Preferences int
	}
	existingMap := make(map[string]existing)
	for rows.Next() {
		var (
			id, name, version    string
			vendor               sql.NullString
			presets, libs, prefs int
		)
		if err = rows.Scan(&id, &name, &version, &vendor, &presets, &libs, &prefs); err != nil {
			rows.Close()
			return nil, err
		}
		existingMap[id] = existing{Name: name, Version: version, Vendor: vendor.String, Presets: presets, Libraries: libs, Preferences: prefs}
	}
	if err = rows.Close(); err != nil {
		return nil, err
	}

	var changes []Change
	for _, p := range plugins {
		format := strings.ToLower(p.Format.String())
		next := existing{Name: p.Name, Version: p.Version, Vendor: p.Vendor, Presets: p.PresetCount, Libraries: p.LibraryCount, Preferences: p.PreferenceCount}

		ex, existed := existingMap[p.ID]
		if !existed {
			_, err = tx.ExecContext(ctx, `INSERT INTO plugins(plugin_id, name, version, vendor, format, install_path, preset_count, library_count, preference_count, run_id, first_seen_at, last_seen_at) VALUES(?,?,?,?,?,?,?,?,?,?,CURRENT_TIMESTAMP,CURRENT_TIMESTAMP)`, p.ID, p.Name, p.Version, nullIfEmpty(p.Vendor), format, p.InstallPath, p.PresetCount, p.LibraryCount, p.PreferenceCount, runID)
			if err != nil {
				return nil, err
			}
			if err = journal(ctx, tx, p.ID, p.Name, format, p.InstallPath, "added"); err != nil {
				return nil, err
			}
			changes = append(changes, Change{OccurredAt: now, PluginID: p.ID, Name: p.Name, Format: format, InstallPath: p.InstallPath, ChangeType: "added"})
			existingMap[p.ID] = next // Track the new entry
			continue
		}

		if ex != next {
			_, err = tx.ExecContext(ctx, `UPDATE plugins SET name = ?, version = ?, vendor = ?, preset_count = ?, library_count = ?, preference_count = ?, run_id = ?, last_seen_at = CURRENT_TIMESTAMP WHERE plugin_id = ?`, p.Name, p.Version, nullIfEmpty(p.Vendor), p.PresetCount, p.LibraryCount, p.PreferenceCount, runID, p.ID)
			if err != nil {
				return nil, err
			}
			if err = journal(ctx, tx, p.ID, p.Name, format, p.InstallPath, "updated"); err != nil {
				return nil, err
			}
			changes = append(changes, Change{OccurredAt: now, PluginID: p.ID, Name: p.Name, Format: format, InstallPath: p.InstallPath, ChangeType: "updated"})
			existingMap[p.ID] = next
			continue
		}

		_, err = tx.ExecContext(ctx, `UPDATE plugins SET run_id = ?, last_seen_at = CURRENT_TIMESTAMP WHERE plugin_id = ?`, runID, p.ID)
		if err != nil {
			return nil, err
		}
	}

	// Sweep: plugins not touched in this run are gone from disk.
	staleRows, err := tx.QueryContext(ctx, "SELECT plugin_id, name, format, install_path FROM plugins WHERE run_id != ?", runID)
	if err != nil {
		return nil, err
	}

	type stale struct{ ID, Name, Format, Path string }
	var toRemove []stale
	for staleRows.Next() {
		var s stale
		if err = staleRows.Scan(&s.ID, &s.Name, &s.Format, &s.Path); err != nil {
			staleRows.Close()
			return nil, err
		}
		toRemove = append(toRemove, s)
	}
	if err = staleRows.Close(); err != nil {
		return nil, err
	}

	if len(toRemove) > 0 {
		_, err = tx.ExecContext(ctx, `DELETE FROM plugins WHERE run_id != ?`, runID)
		if err != nil {
			return nil, err
		}
		for _, s := range toRemove {
			if err = journal(ctx, tx, s.ID, s.Name, s.Format, s.Path, "removed"); err != nil {
				return nil, err
			}
			changes = append(changes, Change{OccurredAt: now, PluginID: s.ID, Name: s.Name, Format: s.Format, InstallPath: s.Path, ChangeType: "removed"})
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return changes, nil
}

func journal(ctx context.Context, tx *sql.Tx, pluginID, name, format, installPath, changeType string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO plugin_changes(occurred_at, plugin_id, name, format, install_path, change_type) VALUES(CURRENT_TIMESTAMP, ?, ?, ?, ?, ?)`, pluginID, name, format, installPath, changeType)
	return err
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
