package inventory

import (
	"context"
	"database/sql"
	"time"
)

// ListPlugins returns every stored plugin ordered by install path.
func (d *DB) ListPlugins(ctx context.Context) ([]Record, error) {
	q := "SELECT plugin_id, name, version, vendor, format, install_path, preset_count, library_count, preference_count, first_seen_at, last_seen_at FROM plugins ORDER BY install_path"
	rows, err := d.sql.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		var vendor sql.NullString
		var first, last string
		if err := rows.Scan(&r.PluginID, &r.Name, &r.Version, &vendor, &r.Format, &r.InstallPath, &r.PresetCount, &r.LibraryCount, &r.PreferenceCount, &first, &last); err != nil {
			return nil, err
		}
		r.Vendor = vendor.String
		r.FirstSeenAt = parseTimestamp(first)
		r.LastSeenAt = parseTimestamp(last)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRecentChanges returns the most recent N inventory changes.
func (d *DB) ListRecentChanges(ctx context.Context, limit int) ([]Change, error) {
	if limit <= 0 {
		limit = 50
	}
	q := "SELECT occurred_at, plugin_id, name, format, install_path, change_type FROM plugin_changes ORDER BY occurred_at DESC, id DESC LIMIT ?"
	rows, err := d.sql.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	changes := []Change{}
	for rows.Next() {
		var c Change
		var occurredAt string
		if err := rows.Scan(&occurredAt, &c.PluginID, &c.Name, &c.Format, &c.InstallPath, &c.ChangeType); err != nil {
			return nil, err
		}
		c.OccurredAt = parseTimestamp(occurredAt)
		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return changes, nil
}

func (d *DB) Stats(ctx context.Context) ([]FormatStats, error) {
	query := `
		SELECT
			format,
			COUNT(*),
			SUM(preset_count)
		FROM
			plugins
		GROUP BY
			format
		ORDER BY
			format;
	`
	rows, err := d.sql.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []FormatStats
	for rows.Next() {
		var s FormatStats
		if err := rows.Scan(&s.Format, &s.PluginCount, &s.PresetLocations); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}

// parseTimestamp handles both the SQLite CURRENT_TIMESTAMP format and
// RFC3339.
func parseTimestamp(s string) time.Time {
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
