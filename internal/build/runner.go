package build

import (
	"context"

	"circuitmake/internal/core"
)

// JobRunner regenerates a single job's artifact.
//
// Probe must be cheap and side-effect free: a true result means the
// artifact is already up to date and the executor records the job as
// FRESH without spawning anything. Run performs the actual rebuild; a
// non-nil error marks the job FAILED (it never aborts the batch).
type JobRunner interface {
	Probe(job Job) (fresh bool, err error)
	Run(ctx context.Context, job Job) (*JobResult, error)
}

// JobResult is the outcome of one executed job.
type JobResult struct {
	// Artifact is the path the job brought up to date.
	Artifact string

	// Reason is the staleness reason that triggered the rebuild.
	Reason string

	// Stdout/Stderr are the captured tool streams.
	Stdout []byte
	Stderr []byte
}

// DriverRunner adapts core.Driver to the JobRunner interface.
type DriverRunner struct {
	Driver *core.Driver
}

// NewDriverRunner wires a core.Driver into the execution engine.
func NewDriverRunner(d *core.Driver) *DriverRunner {
	return &DriverRunner{Driver: d}
}

func (r *DriverRunner) Probe(job Job) (bool, error) {
	stale, _, err := r.Driver.Check(job.Program, job.Variant)
	if err != nil {
		return false, err
	}
	return !stale, nil
}

func (r *DriverRunner) Run(ctx context.Context, job Job) (*JobResult, error) {
	// Re-check under Run so the recorded reason matches the rebuild.
	stale, reason, err := r.Driver.Check(job.Program, job.Variant)
	if err != nil {
		return nil, err
	}
	if !stale {
		// Raced with an external writer; treat as a no-reason rebuild.
		reason = ""
	}

	res, err := r.Driver.Rebuild(ctx, job.Program, job.Variant)
	if err != nil {
		return nil, err
	}
	return &JobResult{
		Artifact: res.Artifact,
		Reason:   reason,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
	}, nil
}
