package build

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"circuitmake/internal/trace"
)

// Executor drives a Plan to completion.
//
// Failure policy: a failed job never aborts the batch. The executor
// keeps dispatching the remaining jobs and aggregates every failure into
// the BuildResult, maximizing the work done per invocation. Only an
// engine-level invariant violation or context cancellation returns an
// error.
type Executor struct {
	Plan   *Plan
	Runner JobRunner

	// Sink receives trace events. Never nil after NewExecutor.
	Sink trace.Sink

	mu    sync.Mutex
	state ExecutionState
}

// NewExecutor creates an executor with all jobs initialized to PENDING.
// A nil sink is replaced by trace.NopSink.
func NewExecutor(p *Plan, runner JobRunner, sink trace.Sink) (*Executor, error) {
	if p == nil {
		return nil, fmt.Errorf("nil plan")
	}
	if runner == nil {
		return nil, fmt.Errorf("nil runner")
	}
	if sink == nil {
		sink = trace.NopSink{}
	}

	state := make(ExecutionState, p.Len())
	for _, j := range p.Jobs() {
		state[j.Name()] = JobPending
	}
	return &Executor{Plan: p, Runner: runner, Sink: sink, state: state}, nil
}

// StateSnapshot returns a copy of the current execution state.
func (e *Executor) StateSnapshot() ExecutionState {
	e.mu.Lock()
	defer e.mu.Unlock()

	cp := make(ExecutionState, len(e.state))
	for k, v := range e.state {
		cp[k] = v
	}
	return cp
}

// RunSerial executes the plan one job at a time, in canonical order.
// This matches the original build exactly: no declared parallelism.
func (e *Executor) RunSerial(ctx context.Context) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	order := make([]string, 0, e.Plan.Len())
	var failures []JobFailure

	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("build cancelled: %w", err)
		}

		e.mu.Lock()
		ready := ReadyJobs(e.Plan, e.state)
		if len(ready) == 0 {
			e.mu.Unlock()
			return e.finish(order, failures)
		}
		next := ready[0]
		job, ok := e.Plan.Job(next)
		if !ok {
			e.mu.Unlock()
			return nil, fmt.Errorf("unknown job in plan: %q", next)
		}

		fresh, err := e.Runner.Probe(job)
		if err != nil {
			e.mu.Unlock()
			return nil, fmt.Errorf("probing %q: %w", next, err)
		}
		if fresh {
			if err := Transition(e.state, next, JobPending, JobFresh); err != nil {
				e.mu.Unlock()
				return nil, err
			}
			e.mu.Unlock()
			e.Sink.Record(trace.Event{Kind: trace.EventJobFresh, JobID: next})
			continue
		}

		if err := Transition(e.state, next, JobPending, JobRunning); err != nil {
			e.mu.Unlock()
			return nil, err
		}
		e.mu.Unlock()

		order = append(order, next)
		res, runErr := e.Runner.Run(ctx, job)

		e.mu.Lock()
		if runErr != nil {
			if ctx.Err() != nil {
				e.mu.Unlock()
				return nil, fmt.Errorf("build cancelled: %w", ctx.Err())
			}
			if err := Transition(e.state, next, JobRunning, JobFailed); err != nil {
				e.mu.Unlock()
				return nil, err
			}
			failures = append(failures, JobFailure{Job: job, Err: runErr})
			e.mu.Unlock()
			e.Sink.Record(trace.Event{
				Kind:     trace.EventJobFailed,
				JobID:    next,
				ExitCode: JobFailure{Job: job, Err: runErr}.ExitCode(),
			})
			continue
		}

		if err := Transition(e.state, next, JobRunning, JobBuilt); err != nil {
			e.mu.Unlock()
			return nil, err
		}
		e.mu.Unlock()
		e.Sink.Record(trace.Event{Kind: trace.EventJobExecuted, JobID: next, Reason: res.Reason})
	}
}

type workItem struct {
	name string
	job  Job
}

type workResult struct {
	name   string
	job    Job
	result *JobResult
	err    error
}

// RunParallel executes the plan using up to `concurrency` workers.
//
// Jobs are mutually independent (disjoint artifact paths), so dispatch
// is simply the canonical order; determinism of the recorded outcome is
// preserved because the trace and the result are canonicalized after
// collection, not by arrival order.
func (e *Executor) RunParallel(ctx context.Context, concurrency int) (*BuildResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if concurrency <= 0 {
		return nil, fmt.Errorf("concurrency must be > 0")
	}
	if concurrency == 1 {
		return e.RunSerial(ctx)
	}

	workCh := make(chan workItem, concurrency)
	doneCh := make(chan workResult, concurrency)

	var wg sync.WaitGroup
	var stopOnce sync.Once
	stopWorkers := func() {
		stopOnce.Do(func() {
			close(workCh)
			wg.Wait()
		})
	}
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for w := range workCh {
				res, err := e.Runner.Run(ctx, w.job)
				doneCh <- workResult{name: w.name, job: w.job, result: res, err: err}
			}
		}()
	}

	order := make([]string, 0, e.Plan.Len())
	var failures []JobFailure

	e.mu.Lock()
	pending := ReadyJobs(e.Plan, e.state)
	e.mu.Unlock()

	nextToStart := 0
	inFlight := 0

	for {
		// Dispatch as many jobs as the pool allows.
		for inFlight < concurrency && nextToStart < len(pending) {
			name := pending[nextToStart]
			job, ok := e.Plan.Job(name)
			if !ok {
				stopWorkers()
				return nil, fmt.Errorf("unknown job in plan: %q", name)
			}

			fresh, err := e.Runner.Probe(job)
			if err != nil {
				stopWorkers()
				return nil, fmt.Errorf("probing %q: %w", name, err)
			}

			e.mu.Lock()
			if fresh {
				if terr := Transition(e.state, name, JobPending, JobFresh); terr != nil {
					e.mu.Unlock()
					stopWorkers()
					return nil, terr
				}
				e.mu.Unlock()
				e.Sink.Record(trace.Event{Kind: trace.EventJobFresh, JobID: name})
				nextToStart++
				continue
			}
			if terr := Transition(e.state, name, JobPending, JobRunning); terr != nil {
				e.mu.Unlock()
				stopWorkers()
				return nil, terr
			}
			e.mu.Unlock()

			order = append(order, name)
			inFlight++
			nextToStart++
			workCh <- workItem{name: name, job: job}
		}

		if inFlight == 0 && nextToStart >= len(pending) {
			break
		}

		select {
		case <-ctx.Done():
			stopWorkers()
			return nil, fmt.Errorf("build cancelled: %w", ctx.Err())
		case r := <-doneCh:
			e.mu.Lock()
			if r.err != nil {
				if terr := Transition(e.state, r.name, JobRunning, JobFailed); terr != nil {
					e.mu.Unlock()
					stopWorkers()
					return nil, terr
				}
				failures = append(failures, JobFailure{Job: r.job, Err: r.err})
				e.mu.Unlock()
				e.Sink.Record(trace.Event{
					Kind:     trace.EventJobFailed,
					JobID:    r.name,
					ExitCode: JobFailure{Job: r.job, Err: r.err}.ExitCode(),
				})
			} else {
				if terr := Transition(e.state, r.name, JobRunning, JobBuilt); terr != nil {
					e.mu.Unlock()
					stopWorkers()
					return nil, terr
				}
				e.mu.Unlock()
				e.Sink.Record(trace.Event{Kind: trace.EventJobExecuted, JobID: r.name, Reason: r.result.Reason})
			}
			inFlight--
		}
	}

	stopWorkers()
	return e.finish(order, failures)
}

// finish assembles the BuildResult, with failures re-sorted into
// canonical job order so concurrent runs report identically.
func (e *Executor) finish(order []string, failures []JobFailure) (*BuildResult, error) {
	final := e.StateSnapshot()
	for name, st := range final {
		if !IsTerminal(st) {
			return nil, fmt.Errorf("job %q finished in non-terminal state %s", name, st)
		}
	}

	sort.Slice(failures, func(i, j int) bool {
		return failures[i].Job.Name() < failures[j].Job.Name()
	})

	return &BuildResult{
		PlanHash:       e.Plan.Hash(),
		FinalState:     final,
		ExecutionOrder: order,
		Failures:       failures,
	}, nil
}
