package indexer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"video-inventory/internal/logging"
	"video-inventory/internal/metrics"
	"video-inventory/internal/progress"
)

// itemFunc handles one work item within a phase and returns its outcome and,
// for skips and failures, a human-readable reason.
type itemFunc func(ctx context.Context, item WorkItem) (progress.Outcome, string)

type itemResult struct {
	item    WorkItem
	outcome progress.Outcome
	reason  string
	elapsed time.Duration
}

// runPhase feeds items to a fresh pool of workers and blocks until every
// dispatched item has reported. Once ctx is canceled no further items are
// dispatched; they are counted as aborted. In-flight items keep running until
// they finish or hit the per-item timeout.
func (idx *Indexer) runPhase(ctx context.Context, run *runState, phase progress.Phase, items []WorkItem, fn itemFunc) progress.Counts {
	numWorkers := idx.workers
	if numWorkers > len(items) {
		numWorkers = len(items)
	}

	start := time.Now()
	idx.beginPhase(phase, len(items))
	idx.emit(run, progress.Event{
		Kind:    progress.KindPhaseStarted,
		Phase:   phase,
		Message: fmt.Sprintf("processing %d files with %d workers", len(items), numWorkers),
		Total:   len(items),
	})
	logging.Info("Starting %s phase: %d files, %d workers", phase, len(items), numWorkers)
	metrics.ScanWorkers.Set(float64(numWorkers))

	jobs := make(chan WorkItem)
	results := make(chan itemResult, numWorkers)
	var dispatched atomic.Int64

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			logging.Debug("%s worker %d started", phase, id)
			for item := range jobs {
				results <- idx.runItem(ctx, item, fn)
			}
			logging.Debug("%s worker %d finished", phase, id)
		}(i)
	}

	go func() {
		defer close(jobs)
		for _, item := range items {
			if ctx.Err() != nil {
				return
			}
			select {
			case jobs <- item:
				dispatched.Add(1)
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var counts progress.Counts
	for r := range results {
		counts.Add(r.outcome)
		idx.recordItem(r.outcome)

		metrics.ScanItemsTotal.WithLabelValues(string(phase), string(r.outcome)).Inc()
		metrics.ScanItemDuration.WithLabelValues(string(phase)).Observe(r.elapsed.Seconds())

		if r.outcome == progress.OutcomeFailed {
			logging.Warn("[%s] %s failed: %s", phase, r.item.Path, r.reason)
		} else {
			logging.Debug("[%s] %s %s %s", phase, r.item.Path, r.outcome, r.reason)
		}

		snapshot := counts
		idx.emit(run, progress.Event{
			Kind:    progress.KindItem,
			Phase:   phase,
			Path:    r.item.Path,
			Outcome: r.outcome,
			Reason:  r.reason,
			Counts:  &snapshot,
		})
	}

	counts.Aborted = len(items) - int(dispatched.Load())
	if counts.Aborted > 0 {
		metrics.ScanItemsTotal.WithLabelValues(string(phase), string(progress.OutcomeAborted)).Add(float64(counts.Aborted))
		logging.Warn("%s phase aborted: %d files not dispatched", phase, counts.Aborted)
	}

	elapsed := time.Since(start)
	metrics.ScanPhaseDuration.WithLabelValues(string(phase)).Observe(elapsed.Seconds())
	logging.Info("%s phase complete in %v: processed=%d skipped=%d failed=%d aborted=%d",
		phase, elapsed.Round(time.Millisecond), counts.Processed, counts.Skipped, counts.Failed, counts.Aborted)

	final := counts
	idx.emit(run, progress.Event{
		Kind:    progress.KindPhaseFinished,
		Phase:   phase,
		Message: fmt.Sprintf("phase complete in %v", elapsed.Round(time.Millisecond)),
		Counts:  &final,
	})

	return counts
}

// runItem runs fn under the per-item timeout. The item context is detached
// from run cancellation so an abort lets in-flight work finish. A timeout is
// reported as a failure even if fn has not returned yet.
func (idx *Indexer) runItem(ctx context.Context, item WorkItem, fn itemFunc) itemResult {
	start := time.Now()

	itemCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), idx.itemTimeout)
	defer cancel()

	done := make(chan itemResult, 1)
	go func() {
		outcome, reason := fn(itemCtx, item)
		done <- itemResult{item: item, outcome: outcome, reason: reason}
	}()

	var res itemResult
	select {
	case res = <-done:
	case <-itemCtx.Done():
		res = itemResult{
			item:    item,
			outcome: progress.OutcomeFailed,
			reason:  fmt.Sprintf("timed out after %v", idx.itemTimeout),
		}
	}
	res.elapsed = time.Since(start)
	return res
}
