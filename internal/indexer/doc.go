/*
Package indexer builds the video inventory by scanning a directory tree.

# Overview

An [Indexer] owns one progress.Sink and runs at most one scan at a time. A
scan walks a root directory, records technical metadata for every video it
finds and then fingerprints each one, writing results to a [Store] (the
SQLite database in production). The server runs an initial scan of its
configured root at startup; the vidscan CLI calls [Indexer.Scan] directly.

	idx := indexer.New(db, probe.NewFFprobe("ffprobe", nil), nil, indexer.Config{
		Root:        "/videos",
		Workers:     8,
		ItemTimeout: 30 * time.Second,
	})
	summary, err := idx.Scan(ctx, "/videos")

# Scan Steps

A scan runs three steps over one materialized list of work items:

 1. Discovery walks the root, keeps files whose extension maps to a video
    MIME type and reports everything else as a non-video skip.
 2. The metadata phase probes each video with a bounded worker pool,
    skipping files whose stored duration, resolution and codec are all
    present.
 3. The hash phase fingerprints each video with a fresh pool. It only runs
    if the metadata phase produced at least one non-failed outcome; when
    every file failed (for example because ffprobe is missing) the hash
    phase is skipped and the summary shows no hash attempts.

Both phases see the same item list in the same order. The list is built once
and never re-walked, so a file created mid-scan is picked up by the next run.

# Discovery

Discovery does not follow symlinked directories, so cyclic links are never
traversed. Symlinks to regular files are scanned under the link's path. Errors
reading a single directory are logged and the walk continues; a walk that
fails outright keeps whatever it collected before the error.

A discovery event is emitted every ten videos found, then once with the totals
when the walk ends. A root with no videos returns [ErrNoVideoFiles] and a root
that is missing or not a directory returns [ErrInvalidRoot]; neither counts as
a completed run.

# Metadata Phase

For each file the stored record is read first. A record that already has a
duration, a resolution and a codec is skipped. Otherwise the probe.Extractor
runs and whatever fields it returns are upserted together with the file's
size and modification time.

The first probe.ErrProbeUnavailable marks the run: every later metadata item
fails immediately with the same error instead of starting another doomed
subprocess.

# Hash Phase

Each file is fingerprinted with the configured sample size. If the new
fingerprint equals the stored one the item is a skip, but its size and
modification time are still refreshed. A changed or first fingerprint is
written and the item counts as processed.

# Outcomes

Every item in a phase ends as exactly one of:

	processed   work was done and written
	skipped     nothing to do (metadata complete, fingerprint unchanged)
	failed      the item errored or timed out
	aborted     the scan was cancelled before the item was dispatched

Failures of individual files never fail the scan. A store write that fails for
one file is that file's failure only.

# Timeouts and Cancellation

Every item has its own timeout (DefaultItemTimeout unless configured). A
timeout counts as a failure and the pool moves on; the worker's slot is freed
even if the underlying call ignores its context.

Item contexts are detached from run cancellation. Cancelling the run context,
calling [Indexer.CancelScan] or calling [Indexer.Stop] stops dispatching, lets
in-flight items finish (or time out) and counts the rest as aborted. An
aborted scan is not an error: [Indexer.Scan] returns its summary with Aborted
set, and the hash phase does not start.

Stop also waits for the running scan to return, so the store can be closed
safely afterwards. Once Stopped, new scans fail with [ErrStopped]. Do not call
Stop from inside an Extractor or Store method; it would wait on itself.

# Progress

Progress is reported to the sink returned by [Indexer.Sink]. Each run gets a
fresh UUID and every event carries it. The order within a run is:

	run_started
	discovery ... (and non_video for each skipped file)
	phase_started(metadata, total=N)
	item(outcome) ... (completion order)
	phase_finished(metadata)
	phase_started(hash) ... phase_finished(hash)  or  phase_skipped(hash)
	run_finished | run_failed

Within a phase per-file events arrive in completion order, not discovery
order. [Indexer.GetProgress] exposes the same information as a snapshot for
the HTTP API.

# Concurrency

Only one scan runs at a time. [Indexer.Scan] and [Indexer.TriggerScan] return
[ErrScanInProgress] while another is active. The pool width comes from
workers.ForScan, so SCAN_WORKERS overrides the computed default.

# Readiness

[Indexer.IsReady] becomes true when the initial scan finishes, or earlier once
100 items have been handled, so a large first scan does not hold the health
check back for its whole duration.
*/
package indexer
