// Package metrics provides Prometheus instrumentation for the video inventory.
//
// This package defines the metrics the inventory server exposes for scraping.
// The vidscan CLI records into the same collectors but never serves them. All
// metrics are registered with promauto at package init and prefixed with
// "video_inventory_" to avoid collisions with other exporters on the host.
//
// # Metric Categories
//
// ## HTTP Metrics
//
// Track API request volume and latency, recorded by middleware.Metrics:
//   - HTTPRequestsTotal: Counter of requests by method, route template and status
//   - HTTPRequestDuration: Histogram of request duration by method and route
//   - HTTPRequestsInFlight: Gauge of requests currently being served
//
// The path label is the gorilla/mux route template ("/api/files/{id}"), not
// the raw URL, so record identities never become label values.
//
// ## Database Metrics
//
// Monitor the SQLite record store:
//   - DBQueryTotal: Counter of queries by operation and status (success/error)
//   - DBQueryDuration: Histogram of query duration by operation
//   - DBTransactionDuration: Histogram of transaction duration by result (commit/rollback)
//   - DBConnectionsOpen: Gauge of open database connections
//   - DBSizeBytes: Gauge of database file sizes (main, wal, shm)
//
// ## Scan Metrics
//
// Track scan runs and their two phases:
//   - ScanRunsTotal: Counter of runs by result (completed, aborted, invalid_root, no_videos)
//   - ScanIsRunning: Gauge set to 1 while a scan is active
//   - ScanLastRunTimestamp: Gauge of the last run's completion time
//   - ScanLastRunDuration: Gauge of the last run's duration in seconds
//   - ScanFilesDiscovered: Counter of files seen by discovery, by class (video/other)
//   - ScanItemsTotal: Counter of per-file outcomes by phase and outcome
//   - ScanItemDuration: Histogram of time spent on one file by phase
//   - ScanPhaseDuration: Histogram of whole-phase duration
//   - ScanWorkers: Gauge of the pool width used by the current run
//
// Phases are "metadata" and "hash". Outcomes are "processed", "skipped",
// "failed" and "aborted", matching the progress package.
//
// ## Probe and Fingerprint Metrics
//
//   - ProbeDuration: Histogram of ffprobe wall time
//   - ProbeFailuresTotal: Counter by reason (unavailable, probe_error, no_streams)
//   - FingerprintBytesRead: Counter of bytes sampled while fingerprinting
//
// ## Progress Metrics
//
//   - ProgressEventsTotal: Counter of events appended to a sink, by kind
//   - ProgressEventsDropped: Counter of events a bounded sink discarded
//
// A rising drop rate means no observer is draining /api/events fast enough.
//
// ## Inventory Metrics
//
// Describe what the store holds, refreshed by the Collector:
//   - InventoryFilesTotal: Gauge of stored records
//   - InventoryFilesByState: Gauge by state (fingerprinted, with_metadata)
//   - InventoryBytesTotal: Gauge of total bytes across records
//   - InventoryDurationSeconds: Gauge of total playing time
//
// ## Filesystem Metrics
//
// Recorded through the filesystem.Observer returned by NewFilesystemObserver,
// labelled by volume (scan, database, unknown) and operation:
//   - FilesystemOperationDuration: Histogram of stat/open latency
//   - FilesystemOperationErrors: Counter of failed operations
//   - FilesystemRetryAttempts, FilesystemRetrySuccess, FilesystemRetryFailures:
//     Counters describing NFS retry behavior
//   - FilesystemStaleErrors: Counter of ESTALE errors seen
//   - FilesystemRetryDuration: Histogram of time spent inside retry loops
//
// ## Application Info
//
//   - AppInfo: Gauge with version, commit and Go version labels, always 1
//
// # Usage
//
// The server mounts promhttp on its own listener (METRICS_PORT, default 9090):
//
//	metricsMux := http.NewServeMux()
//	metricsMux.Handle("/metrics", h.MetricsHandler())
//
// InitializeMetrics pre-creates every label combination so dashboards see
// zero-valued series before the first scan. Call it once at startup.
//
// # Recording Metrics
//
// Other packages import this one and use the exported variables directly:
//
//	import "video-inventory/internal/metrics"
//
//	metrics.ScanItemsTotal.WithLabelValues("hash", "processed").Inc()
//	metrics.ProbeDuration.Observe(elapsed.Seconds())
//	metrics.ScanIsRunning.Set(1)
//
// # Collector
//
// [Collector] periodically reads totals from a [StatsProvider] (the database)
// and the sizes of the SQLite files next to dbPath:
//
//	collector := metrics.NewCollector(db, db.Path(), time.Minute)
//	collector.Start()
//	defer collector.Stop()
//
// It collects once immediately on Start. A failed collection is logged and
// leaves the previous gauge values in place.
//
// # Prometheus Queries
//
// Request rate by route:
//
//	sum(rate(video_inventory_http_requests_total[5m])) by (path)
//
// P95 API latency:
//
//	histogram_quantile(0.95, sum(rate(video_inventory_http_request_duration_seconds_bucket[5m])) by (le))
//
// Share of files failing in the metadata phase:
//
//	sum(rate(video_inventory_scan_items_total{phase="metadata",outcome="failed"}[1h])) /
//	sum(rate(video_inventory_scan_items_total{phase="metadata"}[1h]))
//
// Hash-phase skip ratio (unchanged fingerprints):
//
//	sum(rate(video_inventory_scan_items_total{phase="hash",outcome="skipped"}[1h])) /
//	sum(rate(video_inventory_scan_items_total{phase="hash"}[1h]))
//
// Missing ffprobe:
//
//	increase(video_inventory_probe_failures_total{reason="unavailable"}[1h]) > 0
//
// Per-file P95 by phase:
//
//	histogram_quantile(0.95, sum(rate(video_inventory_scan_item_duration_seconds_bucket[1h])) by (le, phase))
//
// Sampling throughput:
//
//	rate(video_inventory_fingerprint_bytes_read_total[5m])
//
// Fingerprint coverage of the inventory:
//
//	video_inventory_files_by_state{state="fingerprinted"} / video_inventory_files
//
// Stale NFS handles on the scan volume:
//
//	rate(video_inventory_filesystem_stale_errors_total{volume="scan"}[15m])
//
// Progress events lost to a full sink:
//
//	rate(video_inventory_progress_events_dropped_total[5m])
package metrics
