package filesystem

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"
)

func TestDefaultRetryConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultRetryConfig()
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.MaxRetries)
	}
	if cfg.InitialBackoff != 50*time.Millisecond {
		t.Errorf("InitialBackoff = %v, want 50ms", cfg.InitialBackoff)
	}
	if cfg.MaxBackoff != 500*time.Millisecond {
		t.Errorf("MaxBackoff = %v, want 500ms", cfg.MaxBackoff)
	}
}

func TestIsNFSStaleError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"ESTALE", syscall.ESTALE, true},
		{"wrapped ESTALE", fmt.Errorf("open: %w", syscall.ESTALE), true},
		{"path error ESTALE", &os.PathError{Op: "open", Path: "/x", Err: syscall.ESTALE}, true},
		{"ENOENT", syscall.ENOENT, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isNFSStaleError(tt.err); got != tt.want {
				t.Errorf("isNFSStaleError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestVolumeResolver_Resolve(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	scanDir := filepath.Join(root, "videos")
	dbDir := filepath.Join(root, "videos", "db")

	vr := NewVolumeResolver(map[string]string{
		"scan":     scanDir,
		"database": dbDir,
	})

	tests := []struct {
		path string
		want string
	}{
		{filepath.Join(scanDir, "a.mp4"), "scan"},
		{scanDir, "scan"},
		{filepath.Join(dbDir, "inventory.db"), "database"},
		{filepath.Join(root, "elsewhere", "x"), "unknown"},
	}

	for _, tt := range tests {
		if got := vr.Resolve(tt.path); got != tt.want {
			t.Errorf("Resolve(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestVolumeResolver_NilResolver(t *testing.T) {
	t.Parallel()

	var vr *VolumeResolver
	if got := vr.Resolve("/anything"); got != "unknown" {
		t.Errorf("nil resolver returned %q", got)
	}
}

func TestStatWithRetry_Success(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}

	info, err := StatWithRetry(path, DefaultRetryConfig())
	if err != nil {
		t.Fatalf("StatWithRetry: %v", err)
	}
	if info.Size() != 4 {
		t.Errorf("size = %d, want 4", info.Size())
	}
}

func TestStatWithRetry_NotExistFailsFast(t *testing.T) {
	t.Parallel()

	cfg := RetryConfig{MaxRetries: 3, InitialBackoff: time.Second, MaxBackoff: time.Second}
	start := time.Now()
	_, err := StatWithRetry(filepath.Join(t.TempDir(), "missing"), cfg)
	if !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("non-ESTALE errors must not be retried")
	}
}

func TestOpenWithRetry_Success(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "clip.mkv")
	if err := os.WriteFile(path, []byte("matroska"), 0o644); err != nil {
		t.Fatal(err)
	}

	f, err := OpenWithRetry(path, DefaultRetryConfig())
	if err != nil {
		t.Fatalf("OpenWithRetry: %v", err)
	}
	defer f.Close()
}

func TestWithRetry_RetriesStaleThenSucceeds(t *testing.T) {
	t.Parallel()

	cfg := RetryConfig{MaxRetries: 3, InitialBackoff: time.Millisecond, MaxBackoff: 2 * time.Millisecond}
	calls := 0
	got, err := withRetry("stat", "/x", cfg, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, syscall.ESTALE
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 || calls != 3 {
		t.Errorf("got %d after %d calls, want 42 after 3", got, calls)
	}
}

func TestWithRetry_GivesUp(t *testing.T) {
	t.Parallel()

	cfg := RetryConfig{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
	calls := 0
	_, err := withRetry("open", "/x", cfg, func() (string, error) {
		calls++
		return "", syscall.ESTALE
	})
	if !errors.Is(err, syscall.ESTALE) {
		t.Fatalf("expected ESTALE, got %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3 (1 + 2 retries)", calls)
	}
}

func TestPathExistsOnDisk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "a.mp4")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if !PathExistsOnDisk(file) {
		t.Error("expected existing file to be reported")
	}
	if PathExistsOnDisk(dir) {
		t.Error("directories are not openable records")
	}
	if PathExistsOnDisk(filepath.Join(dir, "gone.mp4")) {
		t.Error("missing file reported as existing")
	}
	if PathExistsOnDisk("") {
		t.Error("empty path reported as existing")
	}
}
