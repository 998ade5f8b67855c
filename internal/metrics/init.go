package metrics

// Phase and outcome label values shared with the indexer.
var (
	Phases   = []string{"metadata", "hash"}
	Outcomes = []string{"processed", "skipped", "failed", "aborted"}
)

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, file := range []string{"main", "wal", "shm"} {
		DBSizeBytes.WithLabelValues(file)
	}

	volumes := []string{"scan", "database", "unknown"}
	for _, vol := range volumes {
		for _, op := range []string{"stat", "open"} {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}

	for _, phase := range Phases {
		for _, outcome := range Outcomes {
			ScanItemsTotal.WithLabelValues(phase, outcome)
		}
		ScanItemDuration.WithLabelValues(phase)
		ScanPhaseDuration.WithLabelValues(phase)
	}

	for _, result := range []string{"completed", "aborted", "invalid_root", "no_videos"} {
		ScanRunsTotal.WithLabelValues(result)
	}

	for _, class := range []string{"video", "other"} {
		ScanFilesDiscovered.WithLabelValues(class)
	}

	for _, reason := range []string{"unavailable", "probe_error", "no_streams"} {
		ProbeFailuresTotal.WithLabelValues(reason)
	}

	for _, state := range []string{"fingerprinted", "with_metadata"} {
		InventoryFilesByState.WithLabelValues(state)
	}

	for _, op := range []string{"initialize_schema", "upsert_file", "get_file_by_path",
		"get_file", "list_all", "calculate_stats", "get_metadata", "set_metadata"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	for _, t := range []string{"commit", "rollback"} {
		DBTransactionDuration.WithLabelValues(t)
	}
}
