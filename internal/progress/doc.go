// Package progress carries scan progress from worker goroutines to a single
// observer such as a terminal printer or the HTTP events endpoint.
//
// The indexer owns a Sink and appends Events to it: run start, non-video
// skips, phase start, one event per file per phase, phase end and the run
// summary. Within a phase, per-file events arrive in completion order, but the
// phase start and end events always bracket them.
//
// Observers either poll Drain on a timer or block on Notify:
//
//	for {
//	    select {
//	    case <-sink.Notify():
//	        for _, e := range sink.Drain() {
//	            fmt.Println(e)
//	        }
//	    case <-done:
//	        return
//	    }
//	}
package progress
