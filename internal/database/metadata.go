package database

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Metadata keys.
const (
	MetaLastScanRoot = "last_scan_root"
	MetaLastScanAt   = "last_scan_at"
)

// GetMetadata retrieves a metadata value by key.
// Returns sql.ErrNoRows if the key doesn't exist.
func (d *Database) GetMetadata(ctx context.Context, key string) (value string, err error) {
	start := time.Now()
	defer func() {
		if errors.Is(err, sql.ErrNoRows) {
			recordQuery("get_metadata", start, nil)
			return
		}
		recordQuery("get_metadata", start, err)
	}()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	err = d.db.QueryRowContext(ctx, "SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetMetadata sets a metadata key-value pair.
func (d *Database) SetMetadata(ctx context.Context, key, value string) (err error) {
	start := time.Now()
	defer func() { recordQuery("set_metadata", start, err) }()

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// GetLastScan returns the root and completion time of the last finished scan.
// Zero values mean no scan has completed yet.
func (d *Database) GetLastScan(ctx context.Context) (root string, at time.Time, err error) {
	root, err = d.GetMetadata(ctx, MetaLastScanRoot)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return "", time.Time{}, err
	}

	value, err := d.GetMetadata(ctx, MetaLastScanAt)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && value == "") {
		return root, time.Time{}, nil
	}
	if err != nil {
		return "", time.Time{}, err
	}

	at, err = time.Parse(time.RFC3339, value)
	if err != nil {
		return "", time.Time{}, err
	}
	return root, at, nil
}

// SetLastScan records a completed scan.
func (d *Database) SetLastScan(ctx context.Context, root string, at time.Time) error {
	if err := d.SetMetadata(ctx, MetaLastScanRoot, root); err != nil {
		return err
	}
	return d.SetMetadata(ctx, MetaLastScanAt, at.UTC().Format(time.RFC3339))
}
