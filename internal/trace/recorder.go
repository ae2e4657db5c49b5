package trace

import "sync"

// Sink is the minimal interface the execution engine depends on.
//
// Record must be inert: it must not panic and must not return errors.
// The caller must assume Record may be a no-op.
type Sink interface {
	Record(event Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Record(Event) {}

// Recorder is a concurrency-safe in-memory collector.
//
// Recording uses a single mutex. Contention does not affect the
// canonical trace ordering because ordering is computed after
// collection.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Record(event Event) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

// Snapshot returns a point-in-time copy of all recorded events.
func (r *Recorder) Snapshot() []Event {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Trace builds a canonicalized BuildTrace from the recorded events.
// The returned trace is independent of the recorder.
func (r *Recorder) Trace(runID, planHash string) BuildTrace {
	t := BuildTrace{RunID: runID, PlanHash: planHash, Events: r.Snapshot()}
	t.Canonicalize()
	return t
}
