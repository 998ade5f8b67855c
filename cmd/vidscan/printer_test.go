package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"video-inventory/internal/indexer"
	"video-inventory/internal/progress"
)

func item(outcome progress.Outcome, path string) progress.Event {
	return progress.Event{Kind: progress.KindItem, Phase: progress.PhaseHash, Outcome: outcome, Path: path}
}

func TestPrinterLiveBarPerPhase(t *testing.T) {
	var out bytes.Buffer
	p := newPrinter(&out, false, true)

	p.event(progress.Event{Kind: progress.KindPhaseStarted, Phase: progress.PhaseHash, Message: "processing 3 files", Total: 3})
	if p.bar == nil {
		t.Fatal("expected a bar after phase_started")
	}
	if got := p.bar.GetMax(); got != 3 {
		t.Errorf("bar max = %d, want 3", got)
	}

	p.event(item(progress.OutcomeProcessed, "/v/a.mp4"))
	p.event(item(progress.OutcomeFailed, "/v/b.mp4"))
	if got := p.bar.State().CurrentNum; got != 2 {
		t.Errorf("bar position = %d, want 2", got)
	}

	p.event(progress.Event{Kind: progress.KindPhaseFinished, Phase: progress.PhaseHash, Message: "phase complete"})
	if p.bar != nil {
		t.Error("bar should be released when the phase finishes")
	}

	text := out.String()
	if !strings.Contains(text, "failed /v/b.mp4") {
		t.Errorf("failure line missing from output: %q", text)
	}
	if strings.Contains(text, "processed /v/a.mp4") {
		t.Errorf("non-verbose output should not list processed files: %q", text)
	}
}

func TestPrinterNoBarWhenNotLive(t *testing.T) {
	var out bytes.Buffer
	p := newPrinter(&out, true, false)

	p.event(progress.Event{Kind: progress.KindPhaseStarted, Phase: progress.PhaseMetadata, Total: 2})
	if p.bar != nil {
		t.Error("bar created outside live mode")
	}
	p.event(item(progress.OutcomeSkipped, "/v/a.mp4"))
	if !strings.Contains(out.String(), "skipped /v/a.mp4") {
		t.Errorf("verbose output missing skipped file: %q", out.String())
	}
}

func TestPrinterSummaryHashNotRun(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		summary indexer.Summary
		want    string
	}{
		{
			name:    "aborted",
			summary: indexer.Summary{Aborted: true, StartedAt: now, FinishedAt: now},
			want:    "not run (scan aborted)",
		},
		{
			name:    "metadata all failed",
			summary: indexer.Summary{Metadata: progress.Counts{Failed: 2}, StartedAt: now, FinishedAt: now},
			want:    "not run (no file passed the metadata phase)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			newPrinter(&out, false, false).summary(tt.summary)
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("summary = %q, want it to contain %q", out.String(), tt.want)
			}
		})
	}
}
