package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"video-inventory/internal/probe"
)

func setupTestDB(t testing.TB) *Database {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func ptr[T any](v T) *T { return &v }

func attrs(path string, size int64) Attributes {
	return Attributes{
		Name:       filepath.Base(path),
		Extension:  filepath.Ext(path),
		Path:       path,
		SizeBytes:  size,
		ModifiedAt: time.Unix(1700000000, 0),
	}
}

func fullMetadata() *probe.Metadata {
	return &probe.Metadata{
		DurationSeconds: ptr(90.5),
		Resolution:      ptr("1280x720"),
		FrameRate:       ptr(25.0),
		VideoCodec:      ptr("h264"),
		BitrateKbps:     ptr(int64(2500)),
	}
}

// TestRecordQuery tests the recordQuery helper function.
func TestRecordQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
	}{
		{"successful query", nil},
		{"failed query", errors.New("test error")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			// Must not panic for either status label.
			recordQuery("test_operation", time.Now(), tt.err)
		})
	}
}

func TestNewDatabase(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
	if db.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", db.Path(), dbPath)
	}

	var indexName string
	err = db.db.QueryRow("SELECT name FROM sqlite_master WHERE type = 'index' AND name = 'idx_files_path'").Scan(&indexName)
	if err != nil {
		t.Errorf("path index missing: %v", err)
	}
}

func TestNewDatabaseMissingDirectory(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "missing", "test.db")
	if _, err := New(context.Background(), dbPath); err == nil {
		t.Fatal("New() should fail when the parent directory does not exist")
	}
}

func TestMigrationAddsTimestamps(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "legacy.db")

	legacy, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open legacy db: %v", err)
	}
	_, err = legacy.Exec(`
		CREATE TABLE files (
			identity TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			extension TEXT NOT NULL DEFAULT '',
			path TEXT NOT NULL,
			size_bytes INTEGER NOT NULL DEFAULT 0,
			modified_at INTEGER NOT NULL DEFAULT 0,
			fingerprint TEXT,
			duration_seconds REAL,
			resolution TEXT,
			frame_rate REAL,
			video_codec TEXT,
			bitrate_kbps INTEGER
		);
		INSERT INTO files (identity, name, path) VALUES ('abc', 'old.mp4', '/v/old.mp4');
	`)
	if err != nil {
		t.Fatalf("create legacy schema: %v", err)
	}
	legacy.Close()

	db, err := New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("New() on legacy store failed: %v", err)
	}
	defer db.Close()

	rec, err := db.GetFile(context.Background(), "abc")
	if err != nil || rec == nil {
		t.Fatalf("GetFile() = %v, %v", rec, err)
	}
	if rec.CreatedAt.Unix() == 0 || rec.UpdatedAt.Unix() == 0 {
		t.Errorf("timestamps not backfilled: created=%v updated=%v", rec.CreatedAt, rec.UpdatedAt)
	}
}

func TestUpsertInsertAndGet(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	err := db.Upsert(ctx, FileUpsert{
		Identity:   "id-a",
		Attributes: attrs("/v/a.mp4", 1024),
		Metadata:   fullMetadata(),
	})
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	rec, err := db.GetFileByPath(ctx, "/v/a.mp4")
	if err != nil {
		t.Fatalf("GetFileByPath() error = %v", err)
	}
	if rec == nil {
		t.Fatal("GetFileByPath() returned nil for stored path")
	}

	if rec.Identity != "id-a" || rec.Name != "a.mp4" || rec.Extension != ".mp4" || rec.SizeBytes != 1024 {
		t.Errorf("unexpected attributes: %+v", rec)
	}
	if !rec.ModifiedAt.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("ModifiedAt = %v", rec.ModifiedAt)
	}
	if rec.Fingerprint != nil {
		t.Errorf("Fingerprint = %q, want nil after metadata-only upsert", *rec.Fingerprint)
	}
	if !rec.HasCompleteMetadata() {
		t.Error("metadata group should be complete")
	}
	if *rec.BitrateKbps != 2500 || *rec.FrameRate != 25.0 {
		t.Errorf("bitrate/frame rate = %v/%v", *rec.BitrateKbps, *rec.FrameRate)
	}
}

func TestGetMissing(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	rec, err := db.GetFileByPath(ctx, "/nope.mp4")
	if err != nil || rec != nil {
		t.Errorf("GetFileByPath() = %v, %v; want nil, nil", rec, err)
	}
	rec, err = db.GetFile(ctx, "nope")
	if err != nil || rec != nil {
		t.Errorf("GetFile() = %v, %v; want nil, nil", rec, err)
	}
}

func TestUpsertPhaseIndependence(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Upsert(ctx, FileUpsert{Identity: "id", Attributes: attrs("/v/a.mkv", 10), Metadata: fullMetadata()}); err != nil {
		t.Fatalf("metadata upsert: %v", err)
	}

	grown := attrs("/v/a.mkv", 20)
	if err := db.Upsert(ctx, FileUpsert{Identity: "id", Attributes: grown, Fingerprint: ptr("deadbeef")}); err != nil {
		t.Fatalf("fingerprint upsert: %v", err)
	}

	rec, err := db.GetFile(ctx, "id")
	if err != nil {
		t.Fatalf("GetFile() error = %v", err)
	}
	if rec.Fingerprint == nil || *rec.Fingerprint != "deadbeef" {
		t.Errorf("Fingerprint = %v, want deadbeef", rec.Fingerprint)
	}
	if !rec.HasCompleteMetadata() || *rec.Resolution != "1280x720" {
		t.Error("fingerprint upsert must not touch the metadata group")
	}
	if rec.SizeBytes != 20 {
		t.Errorf("SizeBytes = %d, want attributes refreshed to 20", rec.SizeBytes)
	}

	// A later metadata write replaces the whole group, including fields the
	// probe no longer reports, but keeps the fingerprint.
	partial := &probe.Metadata{DurationSeconds: ptr(10.0)}
	if err := db.Upsert(ctx, FileUpsert{Identity: "id", Attributes: grown, Metadata: partial}); err != nil {
		t.Fatalf("second metadata upsert: %v", err)
	}
	rec, _ = db.GetFile(ctx, "id")
	if rec.Resolution != nil || rec.VideoCodec != nil {
		t.Error("metadata group should be overwritten as a whole")
	}
	if rec.Fingerprint == nil || *rec.Fingerprint != "deadbeef" {
		t.Error("metadata upsert must not touch the fingerprint")
	}
}

func TestUpsertFingerprintFirst(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Upsert(ctx, FileUpsert{Identity: "id", Attributes: attrs("/v/b.avi", 5), Fingerprint: ptr("ff")}); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	rec, _ := db.GetFile(ctx, "id")
	if rec.DurationSeconds != nil || rec.Resolution != nil || rec.VideoCodec != nil {
		t.Error("fingerprint-only record should have no metadata")
	}
}

func TestUpsertUnchangedLeavesRowUntouched(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	u := FileUpsert{Identity: "id", Attributes: attrs("/v/c.mp4", 7), Fingerprint: ptr("aa")}
	if err := db.Upsert(ctx, u); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if _, err := db.db.Exec("UPDATE files SET updated_at = 1 WHERE identity = 'id'"); err != nil {
		t.Fatalf("reset updated_at: %v", err)
	}

	if err := db.Upsert(ctx, u); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}
	rec, _ := db.GetFile(ctx, "id")
	if rec.UpdatedAt.Unix() != 1 {
		t.Errorf("UpdatedAt changed on a no-op upsert: %v", rec.UpdatedAt)
	}

	u.Attributes.SizeBytes = 8
	if err := db.Upsert(ctx, u); err != nil {
		t.Fatalf("third Upsert() error = %v", err)
	}
	rec, _ = db.GetFile(ctx, "id")
	if rec.UpdatedAt.Unix() == 1 {
		t.Error("UpdatedAt should advance when attributes change")
	}
}

func TestUpsertEmptyIdentity(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	err := db.Upsert(context.Background(), FileUpsert{Attributes: attrs("/v/x.mp4", 1)})
	if !errors.Is(err, ErrStoreWrite) {
		t.Errorf("Upsert() error = %v, want ErrStoreWrite", err)
	}
}

func TestUpsertClosedDatabase(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	db.Close()

	err := db.Upsert(context.Background(), FileUpsert{Identity: "id", Attributes: attrs("/v/x.mp4", 1)})
	if !errors.Is(err, ErrStoreWrite) {
		t.Errorf("Upsert() error = %v, want ErrStoreWrite", err)
	}
}

func TestUpsertConcurrent(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	const n = 32
	var wg sync.WaitGroup
	errs := make(chan error, n*2)
	for i := 0; i < n; i++ {
		path := filepath.Join("/v", string(rune('a'+i%26))+string(rune('0'+i/26))+".mp4")
		id := path
		wg.Add(2)
		go func() {
			defer wg.Done()
			errs <- db.Upsert(ctx, FileUpsert{Identity: id, Attributes: attrs(path, 1), Metadata: fullMetadata()})
		}()
		go func() {
			defer wg.Done()
			errs <- db.Upsert(ctx, FileUpsert{Identity: id, Attributes: attrs(path, 1), Fingerprint: ptr("fp")})
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent Upsert() error = %v", err)
		}
	}

	files, err := db.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(files) != n {
		t.Fatalf("ListAll() returned %d rows, want %d", len(files), n)
	}
	for _, f := range files {
		if f.Fingerprint == nil || !f.HasCompleteMetadata() {
			t.Errorf("%s lost a field group: %+v", f.Path, f)
		}
	}
}

func TestListAllOrderedByPath(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	empty, err := db.ListAll(ctx)
	if err != nil || len(empty) != 0 {
		t.Fatalf("ListAll() on empty store = %v, %v", empty, err)
	}

	for _, p := range []string{"/v/c.mp4", "/v/a.mp4", "/v/b.mp4"} {
		if err := db.Upsert(ctx, FileUpsert{Identity: p, Attributes: attrs(p, 1)}); err != nil {
			t.Fatalf("Upsert(%s) error = %v", p, err)
		}
	}

	files, err := db.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	want := []string{"/v/a.mp4", "/v/b.mp4", "/v/c.mp4"}
	for i, f := range files {
		if f.Path != want[i] {
			t.Errorf("files[%d] = %s, want %s", i, f.Path, want[i])
		}
	}
}

func TestCalculateStats(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	stats, err := db.CalculateStats(ctx)
	if err != nil {
		t.Fatalf("CalculateStats() on empty store error = %v", err)
	}
	if stats != (Stats{}) {
		t.Errorf("empty stats = %+v", stats)
	}

	md := fullMetadata()
	md.DurationSeconds = ptr(60.0)
	_ = db.Upsert(ctx, FileUpsert{Identity: "1", Attributes: attrs("/v/1.mp4", 100), Metadata: md, Fingerprint: ptr("a")})
	md2 := fullMetadata()
	md2.DurationSeconds = ptr(120.0)
	_ = db.Upsert(ctx, FileUpsert{Identity: "2", Attributes: attrs("/v/2.mp4", 300), Metadata: md2})
	_ = db.Upsert(ctx, FileUpsert{Identity: "3", Attributes: attrs("/v/3.mp4", 200), Fingerprint: ptr("c")})

	stats, err = db.CalculateStats(ctx)
	if err != nil {
		t.Fatalf("CalculateStats() error = %v", err)
	}

	want := Stats{
		TotalFiles:             3,
		FingerprintedFiles:     2,
		WithMetadataFiles:      2,
		TotalBytes:             600,
		AverageSizeBytes:       200,
		TotalDurationSeconds:   180,
		AverageDurationSeconds: 90,
	}
	if stats != want {
		t.Errorf("CalculateStats() = %+v, want %+v", stats, want)
	}

	inv, err := db.InventoryStats(ctx)
	if err != nil {
		t.Fatalf("InventoryStats() error = %v", err)
	}
	if inv.TotalFiles != 3 || inv.TotalBytes != 600 || inv.FingerprintedFiles != 2 {
		t.Errorf("InventoryStats() = %+v", inv)
	}
}

func TestMetadataKeys(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.GetMetadata(ctx, "missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetMetadata(missing) error = %v, want sql.ErrNoRows", err)
	}

	root, at, err := db.GetLastScan(ctx)
	if err != nil || root != "" || !at.IsZero() {
		t.Errorf("GetLastScan() on fresh store = %q, %v, %v", root, at, err)
	}

	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := db.SetLastScan(ctx, "/videos", when); err != nil {
		t.Fatalf("SetLastScan() error = %v", err)
	}
	root, at, err = db.GetLastScan(ctx)
	if err != nil {
		t.Fatalf("GetLastScan() error = %v", err)
	}
	if root != "/videos" || !at.Equal(when) {
		t.Errorf("GetLastScan() = %q, %v; want /videos, %v", root, at, when)
	}

	if err := db.SetMetadata(ctx, MetaLastScanRoot, "/other"); err != nil {
		t.Fatalf("SetMetadata() overwrite error = %v", err)
	}
	if v, _ := db.GetMetadata(ctx, MetaLastScanRoot); v != "/other" {
		t.Errorf("GetMetadata() = %q, want /other", v)
	}
}
