package startup

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"video-inventory/internal/fingerprint"
	"video-inventory/internal/indexer"

	"github.com/gorilla/mux"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.GoVersion == "" {
		t.Error("Expected GoVersion to be set")
	}
	if info.OS == "" {
		t.Error("Expected OS to be set")
	}
	if info.Arch == "" {
		t.Error("Expected Arch to be set")
	}

	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
		setEnv       bool
	}{
		{
			name:         "Returns default when env var not set",
			key:          "TEST_UNSET_VAR",
			defaultValue: "default",
			want:         "default",
		},
		{
			name:         "Returns env value when set",
			key:          "TEST_SET_VAR",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
			setEnv:       true,
		},
		{
			name:         "Empty env var falls back to default",
			key:          "TEST_EMPTY_VAR",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
			setEnv:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			} else {
				os.Unsetenv(tt.key)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

// clearConfigEnv unsets every variable LoadConfig reads so the host
// environment cannot leak into a test.
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CONFIG_FILE", "SCAN_ROOT", "DATABASE_DIR", "PORT", "METRICS_PORT",
		"METRICS_ENABLED", "LOG_HEALTH_CHECKS", "SCAN_WORKERS", "SCAN_ITEM_TIMEOUT",
		"SCAN_INTERVAL", "SAMPLE_BYTES", "FFPROBE_PATH",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearConfigEnv(t)
	dbDir := filepath.Join(t.TempDir(), "db")
	t.Setenv("DATABASE_DIR", dbDir)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.DatabasePath != filepath.Join(dbDir, DatabaseFileName) {
		t.Errorf("DatabasePath = %q", cfg.DatabasePath)
	}
	if _, err := os.Stat(dbDir); err != nil {
		t.Errorf("database directory was not created: %v", err)
	}
	if cfg.Port != "8080" || cfg.MetricsPort != "9090" {
		t.Errorf("ports = %s/%s, want 8080/9090", cfg.Port, cfg.MetricsPort)
	}
	if !cfg.MetricsEnabled {
		t.Error("metrics should be enabled by default")
	}
	if cfg.ScanItemTimeout != indexer.DefaultItemTimeout {
		t.Errorf("ScanItemTimeout = %v, want %v", cfg.ScanItemTimeout, indexer.DefaultItemTimeout)
	}
	if cfg.ScanInterval != 0 {
		t.Errorf("ScanInterval = %v, want 0", cfg.ScanInterval)
	}
	if cfg.SampleBytes != fingerprint.DefaultSampleBytes {
		t.Errorf("SampleBytes = %d, want %d", cfg.SampleBytes, fingerprint.DefaultSampleBytes)
	}
	if cfg.ScanWorkers < 1 {
		t.Errorf("ScanWorkers = %d, want >= 1", cfg.ScanWorkers)
	}
	if cfg.FFprobePath != "ffprobe" {
		t.Errorf("FFprobePath = %q, want ffprobe", cfg.FFprobePath)
	}
	if cfg.ScanRoot != "" {
		t.Errorf("ScanRoot = %q, want empty", cfg.ScanRoot)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	root := t.TempDir()
	t.Setenv("DATABASE_DIR", t.TempDir())
	t.Setenv("SCAN_ROOT", root)
	t.Setenv("SCAN_WORKERS", "3")
	t.Setenv("SCAN_ITEM_TIMEOUT", "5s")
	t.Setenv("SCAN_INTERVAL", "1h")
	t.Setenv("SAMPLE_BYTES", "1MiB")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.ScanRoot != root {
		t.Errorf("ScanRoot = %q, want %q", cfg.ScanRoot, root)
	}
	if cfg.ScanWorkers != 3 {
		t.Errorf("ScanWorkers = %d, want 3", cfg.ScanWorkers)
	}
	if cfg.ScanItemTimeout != 5*time.Second {
		t.Errorf("ScanItemTimeout = %v, want 5s", cfg.ScanItemTimeout)
	}
	if cfg.ScanInterval != time.Hour {
		t.Errorf("ScanInterval = %v, want 1h", cfg.ScanInterval)
	}
	if cfg.SampleBytes != 1<<20 {
		t.Errorf("SampleBytes = %d, want %d", cfg.SampleBytes, 1<<20)
	}
	if cfg.MetricsEnabled {
		t.Error("METRICS_ENABLED=false should disable metrics")
	}
}

func TestLoadConfig_FileOverlay(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	dbDir := filepath.Join(dir, "from-file")
	configPath := filepath.Join(dir, "config.yaml")
	content := "database_dir: " + dbDir + "\n" +
		"port: \"8181\"\n" +
		"scan_workers: 2\n" +
		"scan_item_timeout: 45s\n" +
		"sample_bytes: 4MiB\n" +
		"metrics_enabled: false\n"
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", configPath)
	// Environment wins over the file
	t.Setenv("SCAN_WORKERS", "6")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.ConfigFile != configPath {
		t.Errorf("ConfigFile = %q", cfg.ConfigFile)
	}
	if cfg.DatabaseDir != dbDir {
		t.Errorf("DatabaseDir = %q, want %q", cfg.DatabaseDir, dbDir)
	}
	if cfg.Port != "8181" {
		t.Errorf("Port = %q, want 8181", cfg.Port)
	}
	if cfg.ScanWorkers != 6 {
		t.Errorf("ScanWorkers = %d, want env value 6", cfg.ScanWorkers)
	}
	if cfg.ScanItemTimeout != 45*time.Second {
		t.Errorf("ScanItemTimeout = %v, want 45s", cfg.ScanItemTimeout)
	}
	if cfg.SampleBytes != 4<<20 {
		t.Errorf("SampleBytes = %d, want %d", cfg.SampleBytes, 4<<20)
	}
	if cfg.MetricsEnabled {
		t.Error("metrics_enabled: false in file should disable metrics")
	}
}

func TestLoadConfig_BadFile(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DATABASE_DIR", t.TempDir())

	t.Run("missing file", func(t *testing.T) {
		t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
		if _, err := LoadConfig(); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("scan_workers: [unterminated"), 0o644); err != nil {
			t.Fatal(err)
		}
		t.Setenv("CONFIG_FILE", path)
		if _, err := LoadConfig(); err == nil {
			t.Error("expected error for invalid yaml")
		}
	})
}

func TestLoadConfig_InvalidValuesFallBack(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("DATABASE_DIR", t.TempDir())
	t.Setenv("SCAN_ITEM_TIMEOUT", "-1s")
	t.Setenv("SAMPLE_BYTES", "lots")
	t.Setenv("SCAN_INTERVAL", "soon")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.ScanItemTimeout != indexer.DefaultItemTimeout {
		t.Errorf("ScanItemTimeout = %v, want default", cfg.ScanItemTimeout)
	}
	if cfg.SampleBytes != fingerprint.DefaultSampleBytes {
		t.Errorf("SampleBytes = %d, want default", cfg.SampleBytes)
	}
	if cfg.ScanInterval != 0 {
		t.Errorf("ScanInterval = %v, want 0", cfg.ScanInterval)
	}
}

func TestLoadConfig_DatabaseDirIsFile(t *testing.T) {
	clearConfigEnv(t)
	path := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DATABASE_DIR", path)

	if _, err := LoadConfig(); err == nil {
		t.Error("expected error when DATABASE_DIR is a regular file")
	}
}

func TestRouteInfo(t *testing.T) {
	route := RouteInfo{
		Method: "GET",
		Path:   "/api/test",
		Name:   "TestRoute",
	}

	if route.Method != "GET" {
		t.Errorf("Expected Method=GET, got %s", route.Method)
	}
	if route.Path != "/api/test" {
		t.Errorf("Expected Path=/api/test, got %s", route.Path)
	}
	if route.Name != "TestRoute" {
		t.Errorf("Expected Name=TestRoute, got %s", route.Name)
	}
}

func TestGetRoutes(t *testing.T) {
	t.Parallel()

	noop := func(http.ResponseWriter, *http.Request) {}
	router := mux.NewRouter()
	router.HandleFunc("/api/scan", noop).Methods("POST", "DELETE").Name("scan")
	router.HandleFunc("/api/files/{identity}", noop).Methods("GET")
	router.Handle("/metrics", http.HandlerFunc(noop))

	routes, err := GetRoutes(router)
	if err != nil {
		t.Fatalf("GetRoutes failed: %v", err)
	}
	if len(routes) != 4 {
		t.Fatalf("got %d routes, want 4: %+v", len(routes), routes)
	}
	if routes[0].Name != "scan" || routes[0].Method != "POST" || routes[1].Method != "DELETE" {
		t.Errorf("unexpected scan routes: %+v", routes[:2])
	}
	if routes[3].Method != "*" {
		t.Errorf("route without methods should report *, got %q", routes[3].Method)
	}
}

func TestGetRouteGroup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want string
	}{
		{"/api/files/{identity}", "api/files"},
		{"/api/scan", "api/scan"},
		{"/health", "health"},
		{"/", ""},
		{"/api", "api"},
	}

	for _, tt := range tests {
		if got := getRouteGroup(tt.path); got != tt.want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
