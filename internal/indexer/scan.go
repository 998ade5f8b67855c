package indexer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"video-inventory/internal/logging"
	"video-inventory/internal/metrics"
	"video-inventory/internal/progress"
)

// runState is the per-run bookkeeping shared by the phases.
type runState struct {
	id        string
	root      string
	startedAt time.Time

	// set by the first metadata item that finds ffprobe missing
	probeUnavailable atomic.Bool
}

// Summary is the result of one scan.
type Summary struct {
	RunID           string          `json:"runId"`
	Root            string          `json:"root"`
	StorePath       string          `json:"storePath"`
	Videos          int             `json:"videos"`
	SkippedNonVideo int             `json:"skippedNonVideo"`
	Metadata        progress.Counts `json:"metadata"`
	Hash            progress.Counts `json:"hash"`
	HashPhaseRan    bool            `json:"hashPhaseRan"`
	Aborted         bool            `json:"aborted"`
	StartedAt       time.Time       `json:"startedAt"`
	FinishedAt      time.Time       `json:"finishedAt"`
}

// Totals adds up both phases.
func (s Summary) Totals() progress.Counts {
	return progress.Counts{
		Processed: s.Metadata.Processed + s.Hash.Processed,
		Skipped:   s.Metadata.Skipped + s.Hash.Skipped,
		Failed:    s.Metadata.Failed + s.Hash.Failed,
		Aborted:   s.Metadata.Aborted + s.Hash.Aborted,
	}
}

// Duration is the wall time of the run.
func (s Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// Scan walks root, probes every video it finds and then fingerprints them,
// reporting each outcome to the sink. Per-file failures never fail the scan;
// the only errors are ErrInvalidRoot, ErrNoVideoFiles, ErrScanInProgress and
// ErrStopped.
// Canceling ctx or calling Stop aborts the run: files not yet dispatched are
// counted as aborted and the summary is returned without error.
func (idx *Indexer) Scan(ctx context.Context, root string) (Summary, error) {
	runCtx, err := idx.tryStartScan(ctx)
	if err != nil {
		logging.Info("Not starting scan of %s: %v", root, err)
		return Summary{}, err
	}
	defer idx.finishScan()

	return idx.runScan(runCtx, root)
}

func (idx *Indexer) runScan(ctx context.Context, root string) (Summary, error) {
	run := &runState{
		id:        uuid.NewString(),
		root:      root,
		startedAt: time.Now(),
	}

	metrics.ScanIsRunning.Set(1)
	defer metrics.ScanIsRunning.Set(0)

	idx.resetProgress(run)
	defer idx.endProgress()

	summary, err := idx.scan(ctx, run)
	summary.FinishedAt = time.Now()

	result := "completed"
	switch {
	case errors.Is(err, ErrInvalidRoot):
		result = "invalid_root"
	case errors.Is(err, ErrNoVideoFiles):
		result = "no_videos"
	case summary.Aborted:
		result = "aborted"
	}
	metrics.ScanRunsTotal.WithLabelValues(result).Inc()

	if err != nil {
		logging.Error("Scan %s failed: %v", run.id, err)
		idx.emit(run, progress.Event{Kind: progress.KindRunFailed, Message: err.Error()})
		return summary, err
	}

	metrics.ScanLastRunTimestamp.Set(float64(summary.FinishedAt.Unix()))
	metrics.ScanLastRunDuration.Set(summary.Duration().Seconds())

	if !summary.Aborted {
		if err := idx.store.SetLastScan(context.WithoutCancel(ctx), summary.Root, summary.FinishedAt); err != nil {
			logging.Warn("Failed to record last scan: %v", err)
		}
	}

	idx.scanMu.Lock()
	idx.lastScanTime = summary.FinishedAt
	s := summary
	idx.lastSummary = &s
	idx.scanMu.Unlock()

	totals := summary.Totals()
	message := "scan complete"
	if summary.Aborted {
		message = "scan aborted"
	}
	logging.Info("%s in %v: %d videos, processed=%d skipped=%d failed=%d (non-video skipped: %d)",
		message, summary.Duration().Round(time.Millisecond), summary.Videos,
		totals.Processed, totals.Skipped, totals.Failed, summary.SkippedNonVideo)

	idx.emit(run, progress.Event{
		Kind:      progress.KindRunFinished,
		Message:   message,
		Counts:    &totals,
		StorePath: summary.StorePath,
	})

	return summary, nil
}

func (idx *Indexer) scan(ctx context.Context, run *runState) (Summary, error) {
	summary := Summary{
		RunID:     run.id,
		Root:      run.root,
		StorePath: idx.store.Path(),
		StartedAt: run.startedAt,
	}

	root, err := validateRoot(run.root)
	if err != nil {
		return summary, err
	}
	run.root = root
	summary.Root = root

	logging.Info("Starting scan %s of %s", run.id, root)
	idx.emit(run, progress.Event{
		Kind:    progress.KindRunStarted,
		Message: fmt.Sprintf("scanning %s", root),
	})

	items, nonVideo, err := idx.discover(ctx, run, root)
	summary.SkippedNonVideo = nonVideo
	summary.Videos = len(items)
	if err != nil {
		if ctx.Err() != nil {
			summary.Aborted = true
			return summary, nil
		}
		// A failed walk still yields what was collected before the error.
		logging.Error("Discovery under %s stopped early: %v", root, err)
	}
	if len(items) == 0 {
		return summary, fmt.Errorf("%w under %s", ErrNoVideoFiles, root)
	}

	var totalBytes int64
	for _, item := range items {
		totalBytes += item.SizeBytes
	}
	idx.emit(run, progress.Event{
		Kind: progress.KindDiscovery,
		Message: fmt.Sprintf("found %d video files to process (%s), %d other files skipped",
			len(items), humanize.IBytes(uint64(totalBytes)), nonVideo),
	})

	summary.Metadata = idx.runPhase(ctx, run, progress.PhaseMetadata, items, idx.metadataItem(run))

	switch {
	case ctx.Err() != nil:
		summary.Aborted = true
		idx.skipHashPhase(run, "scan aborted")
		return summary, nil
	case summary.Metadata.NonFailed() == 0:
		idx.skipHashPhase(run, "every file failed the metadata phase")
		return summary, nil
	}

	summary.HashPhaseRan = true
	summary.Hash = idx.runPhase(ctx, run, progress.PhaseHash, items, idx.hashItem(run))
	summary.Aborted = summary.Hash.Aborted > 0 || ctx.Err() != nil

	return summary, nil
}

func (idx *Indexer) skipHashPhase(run *runState, reason string) {
	logging.Warn("Skipping hash phase: %s", reason)
	idx.emit(run, progress.Event{
		Kind:    progress.KindPhaseSkipped,
		Phase:   progress.PhaseHash,
		Message: "hash phase skipped: " + reason,
		Reason:  reason,
	})
}

func (idx *Indexer) emit(run *runState, e progress.Event) {
	e.RunID = run.id
	idx.sink.Append(e)
}
