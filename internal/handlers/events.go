package handlers

import (
	"net/http"
	"time"

	"video-inventory/internal/progress"
)

// maxEventWait caps the long-poll duration a client may request.
const maxEventWait = 30 * time.Second

// EventsResponse is one drain of the progress sink.
type EventsResponse struct {
	Events  []progress.Event `json:"events"`
	Count   int              `json:"count"`
	Dropped int64            `json:"dropped"`
}

// GetEvents drains queued progress events. With ?wait=<duration> and an
// empty queue the request blocks until an event arrives, the wait elapses or
// the client goes away.
func (h *Handlers) GetEvents(w http.ResponseWriter, r *http.Request) {
	sink := h.scanner.Sink()

	var wait time.Duration
	if v := r.URL.Query().Get("wait"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			writeJSONError(w, "Invalid wait duration", http.StatusBadRequest)
			return
		}
		wait = min(d, maxEventWait)
	}

	events := sink.Drain()
	if len(events) == 0 && wait > 0 && sink != nil {
		timer := time.NewTimer(wait)
		defer timer.Stop()

		// A signal left over from an earlier drain wakes us with nothing
		// queued, so keep waiting until the deadline.
	waitLoop:
		for len(events) == 0 {
			select {
			case <-sink.Notify():
				events = sink.Drain()
			case <-timer.C:
				break waitLoop
			case <-r.Context().Done():
				return
			}
		}
	}

	if events == nil {
		events = []progress.Event{}
	}

	var dropped int64
	if sink != nil {
		dropped = sink.Dropped()
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	writeJSON(w, EventsResponse{Events: events, Count: len(events), Dropped: dropped})
}
