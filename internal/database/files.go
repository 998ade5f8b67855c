package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const fileColumns = `identity, name, extension, path, size_bytes, modified_at, fingerprint,
	duration_seconds, resolution, frame_rate, video_codec, bitrate_kbps, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func scanFile(row rowScanner) (*FileRecord, error) {
	var (
		r                    FileRecord
		modTime              int64
		createdAt, updatedAt int64
		fingerprint          sql.NullString
		duration             sql.NullFloat64
		resolution           sql.NullString
		frameRate            sql.NullFloat64
		codec                sql.NullString
		bitrate              sql.NullInt64
	)

	err := row.Scan(
		&r.Identity, &r.Name, &r.Extension, &r.Path, &r.SizeBytes, &modTime, &fingerprint,
		&duration, &resolution, &frameRate, &codec, &bitrate, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.ModifiedAt = time.Unix(modTime, 0)
	r.CreatedAt = time.Unix(createdAt, 0)
	r.UpdatedAt = time.Unix(updatedAt, 0)
	r.Fingerprint = nullable(fingerprint.String, fingerprint.Valid)
	r.DurationSeconds = nullable(duration.Float64, duration.Valid)
	r.Resolution = nullable(resolution.String, resolution.Valid)
	r.FrameRate = nullable(frameRate.Float64, frameRate.Valid)
	r.VideoCodec = nullable(codec.String, codec.Valid)
	r.BitrateKbps = nullable(bitrate.Int64, bitrate.Valid)

	return &r, nil
}

func nullable[T any](v T, valid bool) *T {
	if !valid {
		return nil
	}
	return &v
}

// lookup returns nil, nil when no row matches.
func lookup(ctx context.Context, q queryRower, column, value string) (*FileRecord, error) {
	row := q.QueryRowContext(ctx, "SELECT "+fileColumns+" FROM files WHERE "+column+" = ?", value)
	rec, err := scanFile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// Upsert writes one record atomically. A new identity is inserted with only
// the supplied groups populated. An existing one always gets fresh attributes
// and only the supplied groups overwritten. A write that would change nothing
// is skipped so re-scans leave the row untouched.
func (d *Database) Upsert(ctx context.Context, u FileUpsert) (err error) {
	start := time.Now()
	defer func() { recordQuery("upsert_file", start, err) }()

	if u.Identity == "" {
		return fmt.Errorf("%w: empty identity for %q", ErrStoreWrite, u.Attributes.Path)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", ErrStoreWrite, err)
	}
	txStart := time.Now()

	err = applyUpsert(ctx, tx, u)
	if err = endTx(tx, txStart, err); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrStoreWrite, u.Attributes.Path, err)
	}
	return nil
}

func applyUpsert(ctx context.Context, tx *sql.Tx, u FileUpsert) error {
	existing, err := lookup(ctx, tx, "identity", u.Identity)
	if err != nil {
		return err
	}

	next := merge(existing, u)
	now := time.Now().Unix()

	if existing == nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO files (`+fileColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			next.Identity, next.Name, next.Extension, next.Path, next.SizeBytes, next.ModifiedAt.Unix(),
			next.Fingerprint, next.DurationSeconds, next.Resolution, next.FrameRate,
			next.VideoCodec, next.BitrateKbps, now, now,
		)
		return err
	}

	if sameContent(existing, next) {
		return nil
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE files SET
			name = ?, extension = ?, path = ?, size_bytes = ?, modified_at = ?, fingerprint = ?,
			duration_seconds = ?, resolution = ?, frame_rate = ?, video_codec = ?, bitrate_kbps = ?,
			updated_at = ?
		WHERE identity = ?`,
		next.Name, next.Extension, next.Path, next.SizeBytes, next.ModifiedAt.Unix(), next.Fingerprint,
		next.DurationSeconds, next.Resolution, next.FrameRate, next.VideoCodec, next.BitrateKbps,
		now, next.Identity,
	)
	return err
}

// merge applies the field groups of u on top of existing.
func merge(existing *FileRecord, u FileUpsert) FileRecord {
	var next FileRecord
	if existing != nil {
		next = *existing
	}

	next.Identity = u.Identity
	next.Name = u.Attributes.Name
	next.Extension = u.Attributes.Extension
	next.Path = u.Attributes.Path
	next.SizeBytes = u.Attributes.SizeBytes
	next.ModifiedAt = time.Unix(u.Attributes.ModifiedAt.Unix(), 0)

	if md := u.Metadata; md != nil {
		next.DurationSeconds = md.DurationSeconds
		next.Resolution = md.Resolution
		next.FrameRate = md.FrameRate
		next.VideoCodec = md.VideoCodec
		next.BitrateKbps = md.BitrateKbps
	}
	if u.Fingerprint != nil {
		fp := *u.Fingerprint
		next.Fingerprint = &fp
	}

	return next
}

func sameContent(a *FileRecord, b FileRecord) bool {
	return a.Name == b.Name &&
		a.Extension == b.Extension &&
		a.Path == b.Path &&
		a.SizeBytes == b.SizeBytes &&
		a.ModifiedAt.Unix() == b.ModifiedAt.Unix() &&
		equalPtr(a.Fingerprint, b.Fingerprint) &&
		equalPtr(a.DurationSeconds, b.DurationSeconds) &&
		equalPtr(a.Resolution, b.Resolution) &&
		equalPtr(a.FrameRate, b.FrameRate) &&
		equalPtr(a.VideoCodec, b.VideoCodec) &&
		equalPtr(a.BitrateKbps, b.BitrateKbps)
}

func equalPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// GetFileByPath retrieves a single file by path. It returns nil, nil when the
// path has never been stored.
func (d *Database) GetFileByPath(ctx context.Context, path string) (rec *FileRecord, err error) {
	start := time.Now()
	defer func() { recordQuery("get_file_by_path", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return lookup(ctx, d.db, "path", path)
}

// GetFile retrieves a single file by identity. It returns nil, nil when absent.
func (d *Database) GetFile(ctx context.Context, identity string) (rec *FileRecord, err error) {
	start := time.Now()
	defer func() { recordQuery("get_file", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return lookup(ctx, d.db, "identity", identity)
}

// ListAll returns every stored record ordered by path.
func (d *Database) ListAll(ctx context.Context) (files []FileRecord, err error) {
	start := time.Now()
	defer func() { recordQuery("list_all", start, err) }()

	rows, err := d.db.QueryContext(ctx, "SELECT "+fileColumns+" FROM files ORDER BY path")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files = []FileRecord{}
	for rows.Next() {
		rec, scanErr := scanFile(rows)
		if scanErr != nil {
			err = scanErr
			return nil, err
		}
		files = append(files, *rec)
	}
	err = rows.Err()
	if err != nil {
		return nil, err
	}
	return files, nil
}
