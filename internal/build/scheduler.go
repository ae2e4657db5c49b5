package build

// ReadyJobs returns the deterministically ordered list of job names that
// are eligible to run: every PENDING job, in the plan's canonical order.
//
// Jobs have no dependencies on each other, so readiness is purely a
// question of not having started yet. This function is pure: it mutates
// neither the plan nor the state.
func ReadyJobs(p *Plan, state ExecutionState) []string {
	if p == nil {
		return nil
	}

	ready := make([]string, 0)
	for _, j := range p.Jobs() {
		if st, ok := state[j.Name()]; ok && st == JobPending {
			ready = append(ready, j.Name())
		}
	}
	return ready
}
