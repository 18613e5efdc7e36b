package store

import (
	"context"
	"fmt"
	"time"
)

// FileChecksum returns the stored checksum for an inventory file, or empty
// string if it has never been synced.
func (db *DB) FileChecksum(ctx context.Context, path string) (string, error) {
	var cs string
	err := db.conn.QueryRowContext(ctx, `SELECT checksum FROM inventory_files WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// SetFileChecksum records the checksum of a synced inventory file.
func (db *DB) SetFileChecksum(ctx context.Context, path, checksum string) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO inventory_files (path, checksum, synced_at) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET checksum = excluded.checksum, synced_at = excluded.synced_at
	`, path, checksum, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store: set checksum: %w", err)
	}
	return nil
}

// AllFileChecksums returns path→checksum for every synced inventory file.
func (db *DB) AllFileChecksums(ctx context.Context) (map[string]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT path, checksum FROM inventory_files`)
	if err != nil {
		return nil, fmt.Errorf("store: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}
