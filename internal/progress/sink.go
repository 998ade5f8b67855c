package progress

import (
	"sync"
	"time"

	"video-inventory/internal/metrics"
)

// Sink is a thread-safe event queue. Any number of goroutines may Append;
// exactly one observer should Drain. A zero capacity means unbounded; a
// bounded sink discards its oldest events when full.
type Sink struct {
	mu       sync.Mutex
	events   []Event
	capacity int
	dropped  int64
	notify   chan struct{}
	now      func() time.Time
}

// NewSink creates a sink. capacity <= 0 means unbounded.
func NewSink(capacity int) *Sink {
	if capacity < 0 {
		capacity = 0
	}
	return &Sink{
		capacity: capacity,
		notify:   make(chan struct{}, 1),
		now:      time.Now,
	}
}

// Append adds an event, stamping Time when it is zero.
func (s *Sink) Append(e Event) {
	if s == nil {
		return
	}

	s.mu.Lock()
	if e.Time.IsZero() {
		e.Time = s.now()
	}
	if s.capacity > 0 && len(s.events) >= s.capacity {
		// Drop the oldest; copy keeps the backing array from growing.
		copy(s.events, s.events[1:])
		s.events = s.events[:len(s.events)-1]
		s.dropped++
		metrics.ProgressEventsDropped.Inc()
	}
	s.events = append(s.events, e)
	s.mu.Unlock()

	metrics.ProgressEventsTotal.WithLabelValues(string(e.Kind)).Inc()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Drain removes and returns every queued event in append order.
func (s *Sink) Drain() []Event {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.events) == 0 {
		return nil
	}
	out := s.events
	s.events = nil
	return out
}

// Notify returns a channel that receives after Append, so the observer can
// block instead of polling. Signals coalesce: one receive may cover many
// events, so always Drain after waking.
func (s *Sink) Notify() <-chan struct{} {
	return s.notify
}

// Len returns the number of queued events.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// Dropped returns how many events a bounded sink has discarded.
func (s *Sink) Dropped() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}
