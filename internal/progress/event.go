package progress

import (
	"fmt"
	"strings"
	"time"
)

// Kind classifies a progress event.
type Kind string

const (
	KindRunStarted    Kind = "run_started"
	KindDiscovery     Kind = "discovery"
	KindNonVideo      Kind = "non_video"
	KindPhaseStarted  Kind = "phase_started"
	KindItem          Kind = "item"
	KindPhaseFinished Kind = "phase_finished"
	KindPhaseSkipped  Kind = "phase_skipped"
	KindRunFinished   Kind = "run_finished"
	KindRunFailed     Kind = "run_failed"
)

// Phase names one of the two scan passes.
type Phase string

const (
	PhaseMetadata Phase = "metadata"
	PhaseHash     Phase = "hash"
)

// Outcome is the result of one file in one phase.
type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
	OutcomeAborted   Outcome = "aborted"
)

// Counts tallies per-file outcomes.
type Counts struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
	Aborted   int `json:"aborted,omitempty"`
}

// Add records one outcome.
func (c *Counts) Add(o Outcome) {
	switch o {
	case OutcomeProcessed:
		c.Processed++
	case OutcomeSkipped:
		c.Skipped++
	case OutcomeFailed:
		c.Failed++
	case OutcomeAborted:
		c.Aborted++
	}
}

// Total is the number of outcomes recorded.
func (c Counts) Total() int {
	return c.Processed + c.Skipped + c.Failed + c.Aborted
}

// NonFailed is the number of processed plus skipped outcomes.
func (c Counts) NonFailed() int {
	return c.Processed + c.Skipped
}

// Event is one timestamped report delivered to the observer.
type Event struct {
	Time      time.Time `json:"time"`
	RunID     string    `json:"runId"`
	Kind      Kind      `json:"kind"`
	Phase     Phase     `json:"phase,omitempty"`
	Path      string    `json:"path,omitempty"`
	Outcome   Outcome   `json:"outcome,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Message   string    `json:"message,omitempty"`
	Counts    *Counts   `json:"counts,omitempty"`
	StorePath string    `json:"storePath,omitempty"`
	// Total is the number of files a phase will process. Set on phase_started.
	Total int `json:"total,omitempty"`
}

// String renders the event as a single human-readable line.
func (e Event) String() string {
	var b strings.Builder
	b.WriteString(e.Time.Format("2006-01-02 15:04:05.000"))
	b.WriteString(" ")

	switch e.Kind {
	case KindItem:
		fmt.Fprintf(&b, "[%s] %s %s", e.Phase, e.Outcome, e.Path)
		if e.Reason != "" {
			fmt.Fprintf(&b, " (%s)", e.Reason)
		}
	case KindNonVideo:
		fmt.Fprintf(&b, "skipped %s (not a video)", e.Path)
	case KindPhaseStarted, KindPhaseFinished, KindPhaseSkipped:
		fmt.Fprintf(&b, "[%s] %s", e.Phase, e.Message)
	default:
		b.WriteString(e.Message)
	}

	if e.Counts != nil && e.Kind != KindItem {
		fmt.Fprintf(&b, " (processed: %d, skipped: %d, failed: %d",
			e.Counts.Processed, e.Counts.Skipped, e.Counts.Failed)
		if e.Counts.Aborted > 0 {
			fmt.Fprintf(&b, ", aborted: %d", e.Counts.Aborted)
		}
		b.WriteString(")")
	}
	if e.StorePath != "" {
		fmt.Fprintf(&b, " store: %s", e.StorePath)
	}

	return b.String()
}
