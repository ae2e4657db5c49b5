// Package build is the orchestration engine for the circuit driver.
//
// It is intentionally split into:
//   - Immutable build definition (Plan): the (program, variant) jobs in
//     canonical order, plus a stable PlanHash
//   - Mutable execution state (ExecutionState): per-job runtime statuses
//
// Jobs are mutually independent (disjoint output paths, no shared
// mutable state), so there are no inter-job edges: a failure is isolated
// to its own (program, variant) pair and never skips other work.
package build
