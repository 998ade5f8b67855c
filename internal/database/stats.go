package database

import (
	"context"
	"time"

	"video-inventory/internal/metrics"
)

// CalculateStats computes inventory totals. Averages only count records that
// carry the value, so files without metadata do not drag the duration down.
func (d *Database) CalculateStats(ctx context.Context) (stats Stats, err error) {
	start := time.Now()
	defer func() { recordQuery("calculate_stats", start, err) }()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var sized, timed int
	err = d.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(fingerprint),
			COALESCE(SUM(CASE WHEN duration_seconds IS NOT NULL
				AND resolution IS NOT NULL
				AND video_codec IS NOT NULL THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(size_bytes), 0),
			COUNT(CASE WHEN size_bytes > 0 THEN 1 END),
			COALESCE(SUM(duration_seconds), 0),
			COUNT(CASE WHEN duration_seconds > 0 THEN 1 END)
		FROM files
	`).Scan(
		&stats.TotalFiles,
		&stats.FingerprintedFiles,
		&stats.WithMetadataFiles,
		&stats.TotalBytes,
		&sized,
		&stats.TotalDurationSeconds,
		&timed,
	)
	if err != nil {
		return Stats{}, err
	}

	if sized > 0 {
		stats.AverageSizeBytes = float64(stats.TotalBytes) / float64(sized)
	}
	if timed > 0 {
		stats.AverageDurationSeconds = stats.TotalDurationSeconds / float64(timed)
	}
	return stats, nil
}

// InventoryStats adapts CalculateStats for the metrics collector.
func (d *Database) InventoryStats(ctx context.Context) (metrics.Stats, error) {
	d.UpdateDBMetrics()

	s, err := d.CalculateStats(ctx)
	if err != nil {
		return metrics.Stats{}, err
	}
	return metrics.Stats{
		TotalFiles:           s.TotalFiles,
		FingerprintedFiles:   s.FingerprintedFiles,
		WithMetadataFiles:    s.WithMetadataFiles,
		TotalBytes:           s.TotalBytes,
		TotalDurationSeconds: s.TotalDurationSeconds,
	}, nil
}
