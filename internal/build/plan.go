package build

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sort"

	"circuitmake/internal/core"
)

// Job is a single (program, variant) unit of work.
type Job struct {
	Program core.Program
	Variant core.Variant
}

// Name is the stable job identifier used for state tracking, ordering,
// and trace events.
func (j Job) Name() string {
	return j.Program.Path + ":" + j.Variant.String()
}

// PlanHash is the deterministic identity of a Plan.
//
// It is computed solely from the job names in canonical order, so it is
// stable across runs and invariant to the insertion order of programs.
type PlanHash string

func (h PlanHash) String() string { return string(h) }

// Plan is the immutable set of jobs for one build invocation.
//
// Canonical order: program path ascending, then variant in the fixed
// core.Variants() order. Every executor iterates jobs in this order.
type Plan struct {
	jobs       []Job
	jobsByName map[string]Job
	hash       PlanHash
}

// NewPlan enumerates both variants for every program and fixes the
// canonical job order.
func NewPlan(programs []core.Program) *Plan {
	sorted := make([]core.Program, len(programs))
	copy(sorted, programs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	jobs := make([]Job, 0, len(sorted)*len(core.Variants()))
	byName := make(map[string]Job, cap(jobs))
	for _, p := range sorted {
		for _, v := range core.Variants() {
			j := Job{Program: p, Variant: v}
			jobs = append(jobs, j)
			byName[j.Name()] = j
		}
	}

	return &Plan{jobs: jobs, jobsByName: byName, hash: computePlanHash(jobs)}
}

// Jobs returns the jobs in canonical order. The caller must not mutate
// the returned slice.
func (p *Plan) Jobs() []Job { return p.jobs }

// Job looks up a job by its stable name.
func (p *Plan) Job(name string) (Job, bool) {
	j, ok := p.jobsByName[name]
	return j, ok
}

// Len returns the number of jobs in the plan.
func (p *Plan) Len() int { return len(p.jobs) }

// Hash returns the plan's stable identity.
func (p *Plan) Hash() PlanHash { return p.hash }

// computePlanHash hashes the canonical job names with length prefixes so
// adjacent names cannot be confused for one another.
func computePlanHash(jobs []Job) PlanHash {
	hasher := sha256.New()
	var lenBuf [8]byte
	for _, j := range jobs {
		name := j.Name()
		binary.BigEndian.PutUint64(lenBuf[:], uint64(len(name)))
		hasher.Write(lenBuf[:])
		hasher.Write([]byte(name))
	}
	return PlanHash(hex.EncodeToString(hasher.Sum(nil)))
}
