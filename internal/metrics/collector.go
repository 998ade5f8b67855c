package metrics

import (
	"context"
	"os"
	"time"

	"video-inventory/internal/logging"
)

// StatsProvider supplies inventory totals for the gauges.
type StatsProvider interface {
	InventoryStats(ctx context.Context) (Stats, error)
}

// Stats holds the current inventory totals
type Stats struct {
	TotalFiles           int
	FingerprintedFiles   int
	WithMetadataFiles    int
	TotalBytes           int64
	TotalDurationSeconds float64
}

// Collector periodically refreshes inventory and database size gauges.
type Collector struct {
	statsProvider StatsProvider
	dbPath        string
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector. dbPath may be empty to skip
// file size gauges.
func NewCollector(provider StatsProvider, dbPath string, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		dbPath:        dbPath,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.dbPath != "" {
		for label, suffix := range map[string]string{"main": "", "wal": "-wal", "shm": "-shm"} {
			if info, err := os.Stat(c.dbPath + suffix); err == nil {
				DBSizeBytes.WithLabelValues(label).Set(float64(info.Size()))
			} else {
				DBSizeBytes.WithLabelValues(label).Set(0)
			}
		}
	}

	if c.statsProvider == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stats, err := c.statsProvider.InventoryStats(ctx)
	if err != nil {
		logging.Warn("Metrics collection failed: %v", err)
		return
	}

	InventoryFilesTotal.Set(float64(stats.TotalFiles))
	InventoryFilesByState.WithLabelValues("fingerprinted").Set(float64(stats.FingerprintedFiles))
	InventoryFilesByState.WithLabelValues("with_metadata").Set(float64(stats.WithMetadataFiles))
	InventoryBytesTotal.Set(float64(stats.TotalBytes))
	InventoryDurationSeconds.Set(stats.TotalDurationSeconds)

	logging.Debug("Metrics collected: files=%d, fingerprinted=%d, with_metadata=%d",
		stats.TotalFiles, stats.FingerprintedFiles, stats.WithMetadataFiles)
}
