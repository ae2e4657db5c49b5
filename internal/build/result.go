package build

import (
	"errors"

	"circuitmake/internal/core"
)

// JobFailure records one failed (program, variant) pair.
type JobFailure struct {
	Job Job

	// Err is the failure cause. For compiler failures it is a
	// *core.ToolError carrying the exit code and captured stderr.
	Err error
}

// ExitCode extracts the tool exit code, or -1 when the failure was not
// a tool exit (e.g. the process could not be started).
func (f JobFailure) ExitCode() int {
	var toolErr *core.ToolError
	if errors.As(f.Err, &toolErr) {
		return toolErr.ExitCode
	}
	return -1
}

// BuildResult is the deterministic summary of one batch execution.
type BuildResult struct {
	PlanHash PlanHash

	// FinalState is the terminal state of every job by name.
	FinalState ExecutionState

	// ExecutionOrder lists the jobs that actually ran (transitioned to
	// RUNNING), in dispatch order.
	ExecutionOrder []string

	// Failures collects every failed pair, in canonical job order.
	Failures []JobFailure
}

// Failed reports whether any job failed.
func (r *BuildResult) Failed() bool {
	return len(r.Failures) > 0
}

// Counts tallies the terminal states.
func (r *BuildResult) Counts() (built, fresh, failed int) {
	for _, st := range r.FinalState {
		switch st {
		case JobBuilt:
			built++
		case JobFresh:
			fresh++
		case JobFailed:
			failed++
		}
	}
	return built, fresh, failed
}
