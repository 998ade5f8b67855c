// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// Configuration is loaded via [LoadConfig] from an optional YAML file named by
// CONFIG_FILE, then from environment variables, which take precedence:
//
//   - SCAN_ROOT: Directory scanned at startup and on each interval (default: none)
//   - DATABASE_DIR: Directory holding inventory.db (default: /database)
//   - PORT: HTTP server port (default: 8080)
//   - METRICS_PORT: Prometheus metrics server port (default: 9090)
//   - METRICS_ENABLED: Enable or disable metrics server (default: true)
//   - SCAN_WORKERS: Worker goroutines per scan phase (default: 8, capped by CPU count)
//   - SCAN_ITEM_TIMEOUT: Per-file timeout in each phase as Go duration (default: 30s)
//   - SCAN_INTERVAL: Periodic re-scan interval as Go duration, 0 disables (default: 0)
//   - SAMPLE_BYTES: Fingerprint sample size, plain bytes or "4MiB" style (default: 2MiB)
//   - FFPROBE_PATH: ffprobe binary name or path (default: ffprobe)
//   - LOG_LEVEL: Logging level - debug, info, warn, error (default: info)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//
// The YAML keys are the lower-case variable names (scan_root, sample_bytes, ...).
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
//
// # Lifecycle Logging
//
//   - [LogDatabaseInit]: Database initialization timing
//   - [LogProbeInit]: ffprobe availability
//   - [LogIndexerInit]: Scan root, interval and pool width
//   - [LogHTTPRoutes]: Registered HTTP routes (debug level)
//   - [LogServerStarted]: Server endpoints and startup duration
//   - [LogShutdownInitiated]: Graceful shutdown start
//   - [LogShutdownComplete]: Shutdown completion
package startup
