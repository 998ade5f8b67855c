package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_inventory_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_inventory_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_inventory_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_inventory_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_inventory_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBTransactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_inventory_db_transaction_duration_seconds",
			Help:    "Database transaction duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"result"}, // "commit", "rollback"
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_inventory_db_connections_open",
			Help: "Number of open database connections",
		},
	)

	DBSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "video_inventory_db_size_bytes",
			Help: "Size of SQLite database files in bytes",
		},
		[]string{"file"}, // "main", "wal", "shm"
	)
)

// Scan metrics
var (
	ScanRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_inventory_scan_runs_total",
			Help: "Total number of scan runs by result",
		},
		[]string{"result"}, // "completed", "aborted", "invalid_root", "no_videos"
	)

	ScanIsRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_inventory_scan_running",
			Help: "Whether a scan is currently running (1 = running, 0 = idle)",
		},
	)

	ScanLastRunTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_inventory_scan_last_run_timestamp",
			Help: "Timestamp of the last completed scan",
		},
	)

	ScanLastRunDuration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_inventory_scan_last_run_duration_seconds",
			Help: "Duration of the last scan in seconds",
		},
	)

	ScanFilesDiscovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_inventory_scan_files_discovered_total",
			Help: "Files found during traversal by classification",
		},
		[]string{"class"}, // "video", "other"
	)

	ScanItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_inventory_scan_items_total",
			Help: "Per-file phase outcomes",
		},
		[]string{"phase", "outcome"},
	)

	ScanItemDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_inventory_scan_item_duration_seconds",
			Help:    "Time spent on one file in one phase",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"phase"},
	)

	ScanPhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_inventory_scan_phase_duration_seconds",
			Help:    "Wall-clock duration of a scan phase",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 300, 900, 3600},
		},
		[]string{"phase"},
	)

	ScanWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_inventory_scan_workers",
			Help: "Worker pool width used by the current or last scan phase",
		},
	)
)

// Probe and fingerprint metrics
var (
	ProbeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "video_inventory_probe_duration_seconds",
			Help:    "Duration of ffprobe invocations",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	ProbeFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_inventory_probe_failures_total",
			Help: "Metadata extraction failures by reason",
		},
		[]string{"reason"}, // "unavailable", "probe_error", "no_streams"
	)

	FingerprintBytesRead = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_inventory_fingerprint_bytes_read_total",
			Help: "Bytes read while computing sampled fingerprints",
		},
	)
)

// Progress sink metrics
var (
	ProgressEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_inventory_progress_events_total",
			Help: "Progress events appended by kind",
		},
		[]string{"kind"},
	)

	ProgressEventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "video_inventory_progress_events_dropped_total",
			Help: "Progress events discarded because a bounded sink was full",
		},
	)
)

// Inventory metrics
var (
	InventoryFilesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_inventory_files",
			Help: "Number of records in the inventory",
		},
	)

	InventoryFilesByState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "video_inventory_files_by_state",
			Help: "Records by completeness",
		},
		[]string{"state"}, // "fingerprinted", "with_metadata"
	)

	InventoryBytesTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_inventory_bytes",
			Help: "Total size of inventoried files in bytes",
		},
	)

	InventoryDurationSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "video_inventory_duration_seconds",
			Help: "Total playing time of inventoried files",
		},
	)
)

// Filesystem metrics
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_inventory_filesystem_operation_duration_seconds",
			Help:    "Duration of filesystem operations by volume",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_inventory_filesystem_operation_errors_total",
			Help: "Filesystem operation errors by volume",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_inventory_filesystem_retry_attempts_total",
			Help: "Retries caused by NFS stale file handles",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_inventory_filesystem_retry_success_total",
			Help: "Operations that succeeded after at least one retry",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_inventory_filesystem_retry_failures_total",
			Help: "Operations that failed after exhausting retries",
		},
		[]string{"operation", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "video_inventory_filesystem_stale_errors_total",
			Help: "ESTALE errors observed",
		},
		[]string{"operation", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "video_inventory_filesystem_retry_duration_seconds",
			Help:    "Total time spent in operations that needed retries",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation", "volume"},
	)
)

// AppInfo exposes build information as labels.
var AppInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "video_inventory_app_info",
		Help: "Application build information",
	},
	[]string{"version", "commit", "go_version"},
)
