// Package trace produces the canonical, deterministic record of a build
// run: which jobs were rebuilt and why, which were already fresh, and
// which failed.
//
// The trace is observational only and must never affect execution
// behavior. Its canonical bytes exclude anything runtime-dependent
// (timestamps, durations, error text); the run ID travels in the file
// envelope but is excluded from the canonical hash.
package trace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// EventKind is the stable, canonical discriminator for Event.
// The string values are part of the trace's canonical bytes; do not rename.
type EventKind string

const (
	EventJobExecuted EventKind = "JobExecuted"
	EventJobFresh    EventKind = "JobFresh"
	EventJobFailed   EventKind = "JobFailed"
)

// Event is a single logical build decision.
//
// Determinism constraints:
//   - No timestamps.
//   - No error strings or stack traces.
//   - No fields derived from pointer identity or map iteration.
type Event struct {
	Kind EventKind

	// JobID identifies the (program, variant) job. Required.
	JobID string

	// Reason is a stable staleness reason code (e.g. "ArtifactMissing",
	// "ProgramNewer", "ToolNewer"). Empty for fresh jobs.
	Reason string

	// ExitCode is the tool exit code for failed jobs; 0 otherwise.
	ExitCode int
}

// BuildTrace is the canonical record of one build run.
type BuildTrace struct {
	// RunID labels the run (a UUID). It is serialized in the envelope
	// but canonicalization and hashing ignore it.
	RunID string

	// PlanHash is the deterministic identity of the executed plan.
	PlanHash string

	Events []Event
}

// Validate checks basic invariants and returns a descriptive error.
func (t *BuildTrace) Validate() error {
	if t == nil {
		return errors.New("trace is nil")
	}
	if t.PlanHash == "" {
		return errors.New("planHash is required")
	}
	for i := range t.Events {
		e := t.Events[i]
		if e.Kind == "" {
			return fmt.Errorf("events[%d].kind is required", i)
		}
		if e.JobID == "" {
			return fmt.Errorf("events[%d].jobId is required", i)
		}
	}
	return nil
}

// Canonicalize sorts the trace into its canonical form.
//
// Ordering is independent of execution timing or concurrency: events are
// totally ordered by (jobId, kindOrder, reason, exitCode).
func (t *BuildTrace) Canonicalize() {
	if t == nil {
		return
	}
	sort.SliceStable(t.Events, func(i, j int) bool {
		a, b := t.Events[i], t.Events[j]
		if a.JobID != b.JobID {
			return a.JobID < b.JobID
		}
		if kindOrder(a.Kind) != kindOrder(b.Kind) {
			return kindOrder(a.Kind) < kindOrder(b.Kind)
		}
		if a.Reason != b.Reason {
			return a.Reason < b.Reason
		}
		return a.ExitCode < b.ExitCode
	})
}

func kindOrder(k EventKind) int {
	switch k {
	case EventJobFresh:
		return 10
	case EventJobExecuted:
		return 20
	case EventJobFailed:
		return 30
	default:
		return 1000
	}
}

// CanonicalJSON returns the canonical JSON encoding of the trace: the
// sorted events plus the plan hash, with the run ID stripped. It
// canonicalizes a copy to avoid mutating the caller's slice.
func (t BuildTrace) CanonicalJSON() ([]byte, error) {
	cp := BuildTrace{PlanHash: t.PlanHash}
	cp.Events = make([]Event, len(t.Events))
	copy(cp.Events, t.Events)
	cp.Canonicalize()
	if err := cp.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(&cp)
}

// Hash returns the deterministic trace hash (sha256 hex) of the
// canonical JSON bytes.
func (t BuildTrace) Hash() (string, error) {
	b, err := t.CanonicalJSON()
	if err != nil {
		return "", err
	}
	return ComputeTraceHash(b), nil
}

// EnvelopeJSON returns the full serialized trace including the run ID.
// Events are canonicalized first so the file bytes are stable for a
// given run ID.
func (t BuildTrace) EnvelopeJSON() ([]byte, error) {
	cp := BuildTrace{RunID: t.RunID, PlanHash: t.PlanHash}
	cp.Events = make([]Event, len(t.Events))
	copy(cp.Events, t.Events)
	cp.Canonicalize()
	if err := cp.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(&cp)
}

// MarshalJSON fixes field ordering and omission rules.
func (t BuildTrace) MarshalJSON() ([]byte, error) {
	if t.PlanHash == "" {
		return nil, errors.New("planHash is required")
	}
	var buf bytes.Buffer
	buf.WriteByte('{')

	if t.RunID != "" {
		buf.WriteString("\"runId\":")
		rb, _ := json.Marshal(t.RunID)
		buf.Write(rb)
		buf.WriteByte(',')
	}

	buf.WriteString("\"planHash\":")
	ph, _ := json.Marshal(t.PlanHash)
	buf.Write(ph)
	buf.WriteByte(',')

	buf.WriteString("\"events\":[")
	for i := range t.Events {
		if i > 0 {
			buf.WriteByte(',')
		}
		eb, err := json.Marshal(t.Events[i])
		if err != nil {
			return nil, err
		}
		buf.Write(eb)
	}
	buf.WriteByte(']')

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON fixes field ordering and omits empty optional fields.
func (e Event) MarshalJSON() ([]byte, error) {
	if e.Kind == "" {
		return nil, errors.New("kind is required")
	}

	var buf bytes.Buffer
	buf.WriteByte('{')

	buf.WriteString("\"kind\":")
	kb, _ := json.Marshal(string(e.Kind))
	buf.Write(kb)

	buf.WriteByte(',')
	buf.WriteString("\"jobId\":")
	jb, _ := json.Marshal(e.JobID)
	buf.Write(jb)

	if e.Reason != "" {
		buf.WriteByte(',')
		buf.WriteString("\"reason\":")
		rb, _ := json.Marshal(e.Reason)
		buf.Write(rb)
	}

	if e.ExitCode != 0 {
		buf.WriteByte(',')
		buf.WriteString("\"exitCode\":")
		cb, _ := json.Marshal(e.ExitCode)
		buf.Write(cb)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
