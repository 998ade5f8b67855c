package indexer

import (
	"context"
	"errors"
	"fmt"

	"video-inventory/internal/database"
	"video-inventory/internal/probe"
	"video-inventory/internal/progress"
)

const (
	reasonMetadataComplete  = "metadata complete"
	reasonFingerprintSame   = "fingerprint unchanged"
	reasonProbeShortCircuit = "ffprobe unavailable earlier in this run"
)

// metadataItem probes one file unless its stored metadata is already
// complete. After the first ErrProbeUnavailable the remaining files fail
// without invoking the probe.
func (idx *Indexer) metadataItem(run *runState) itemFunc {
	return func(ctx context.Context, item WorkItem) (progress.Outcome, string) {
		rec, err := idx.store.GetFileByPath(ctx, item.Path)
		if err != nil {
			return progress.OutcomeFailed, fmt.Sprintf("store lookup: %v", err)
		}
		if rec.HasCompleteMetadata() {
			return progress.OutcomeSkipped, reasonMetadataComplete
		}

		if run.probeUnavailable.Load() {
			return progress.OutcomeFailed, fmt.Sprintf("%v: %s", probe.ErrProbeUnavailable, reasonProbeShortCircuit)
		}

		md, err := idx.extractor.Extract(ctx, item.Path)
		if err != nil {
			if errors.Is(err, probe.ErrProbeUnavailable) {
				run.probeUnavailable.Store(true)
			}
			return progress.OutcomeFailed, err.Error()
		}

		err = idx.store.Upsert(ctx, database.FileUpsert{
			Identity:   item.Identity,
			Attributes: item.Attributes(),
			Metadata:   md,
		})
		if err != nil {
			return progress.OutcomeFailed, err.Error()
		}
		return progress.OutcomeProcessed, ""
	}
}

// hashItem fingerprints one file. An unchanged fingerprint is a skip, but the
// filesystem attributes are still refreshed.
func (idx *Indexer) hashItem(run *runState) itemFunc {
	return func(ctx context.Context, item WorkItem) (progress.Outcome, string) {
		rec, err := idx.store.GetFileByPath(ctx, item.Path)
		if err != nil {
			return progress.OutcomeFailed, fmt.Sprintf("store lookup: %v", err)
		}

		fp, err := idx.fingerprint(ctx, item.Path, idx.sampleBytes)
		if err != nil {
			return progress.OutcomeFailed, err.Error()
		}

		upsert := database.FileUpsert{
			Identity:   item.Identity,
			Attributes: item.Attributes(),
		}
		unchanged := rec != nil && rec.Fingerprint != nil && *rec.Fingerprint == fp
		if !unchanged {
			upsert.Fingerprint = &fp
		}

		if err := idx.store.Upsert(ctx, upsert); err != nil {
			return progress.OutcomeFailed, err.Error()
		}
		if unchanged {
			return progress.OutcomeSkipped, reasonFingerprintSame
		}
		return progress.OutcomeProcessed, ""
	}
}
