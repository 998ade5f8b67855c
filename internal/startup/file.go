package startup

import (
	"fmt"
	"os"
	"time"

	"video-inventory/internal/logging"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML overlay named by CONFIG_FILE. Unset keys
// stay nil so the built-in defaults apply; environment variables override
// anything set here.
//
//	scan_root: /media/videos
//	database_dir: /var/lib/video-inventory
//	scan_workers: 4
//	scan_item_timeout: 45s
//	scan_interval: 6h
//	sample_bytes: 4MiB
//	ffprobe_path: /usr/bin/ffprobe
type fileConfig struct {
	ScanRoot        *string `yaml:"scan_root"`
	DatabaseDir     *string `yaml:"database_dir"`
	Port            *string `yaml:"port"`
	MetricsPort     *string `yaml:"metrics_port"`
	MetricsEnabled  *bool   `yaml:"metrics_enabled"`
	LogHealthChecks *bool   `yaml:"log_health_checks"`
	ScanWorkers     *int    `yaml:"scan_workers"`
	ScanItemTimeout *string `yaml:"scan_item_timeout"`
	ScanInterval    *string `yaml:"scan_interval"`
	SampleBytes     *string `yaml:"sample_bytes"`
	FFprobePath     *string `yaml:"ffprobe_path"`
}

// loadFileConfig reads the overlay at path. An empty path yields an empty
// overlay; a named file that cannot be read or parsed is an error.
func loadFileConfig(path string) (*fileConfig, error) {
	cfg := &fileConfig{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	logging.Debug("  Loaded config overlay from %s", path)
	return cfg, nil
}

func stringOr(v *string, def string) string {
	if v == nil || *v == "" {
		return def
	}
	return *v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func durationOr(key string, v *string, def time.Duration) time.Duration {
	if v == nil || *v == "" {
		return def
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		logging.Warn("Invalid duration for %s in config file: %q, using default: %v", key, *v, def)
		return def
	}
	return d
}

func bytesOr(v *string, def int64) int64 {
	if v == nil || *v == "" {
		return def
	}
	n, err := humanize.ParseBytes(*v)
	if err != nil {
		logging.Warn("Invalid size for sample_bytes in config file: %q, using default: %d", *v, def)
		return def
	}
	return int64(n)
}
