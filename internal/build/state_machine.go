package build

import "fmt"

// IsTerminal reports whether the state is terminal (finished).
func IsTerminal(s JobState) bool {
	switch s {
	case JobBuilt, JobFresh, JobFailed:
		return true
	default:
		return false
	}
}

// Transition performs an atomic validated transition for a single job.
//
// The caller supplies the expected prior state (from) to make races
// observable. The state map is mutated if and only if the transition is
// valid.
func Transition(state ExecutionState, jobName string, from, to JobState) error {
	cur, ok := state[jobName]
	if !ok {
		return fmt.Errorf("unknown job in state: %q", jobName)
	}
	if cur != from {
		return fmt.Errorf("invalid transition for %q: expected %s, got %s", jobName, from, cur)
	}
	if !isAllowedTransition(from, to) {
		return fmt.Errorf("disallowed transition for %q: %s -> %s", jobName, from, to)
	}
	state[jobName] = to
	return nil
}

func isAllowedTransition(from, to JobState) bool {
	switch from {
	case JobPending:
		return to == JobRunning || to == JobFresh
	case JobRunning:
		return to == JobBuilt || to == JobFailed
	default:
		return false
	}
}
