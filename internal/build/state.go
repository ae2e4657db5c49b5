package build

// JobState is the runtime execution state of a single job.
//
// Every job starts PENDING. A freshness probe moves it straight to
// FRESH (no subprocess); otherwise it runs and terminates in BUILT or
// FAILED.
type JobState string

const (
	JobPending JobState = "PENDING"
	JobRunning JobState = "RUNNING"
	JobBuilt   JobState = "BUILT"
	JobFresh   JobState = "FRESH"
	JobFailed  JobState = "FAILED"
)

// ExecutionState maps job name to its current JobState.
//
// It is intentionally a plain map so the scheduler can remain a pure
// function without coupling to an executor implementation.
type ExecutionState map[string]JobState
