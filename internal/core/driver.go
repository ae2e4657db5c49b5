package core

import (
	"context"
	"fmt"
	"os"
)

// Staleness reason codes. These are stable identifiers recorded in the
// build trace; do not rename.
const (
	ReasonArtifactMissing = "ArtifactMissing"
	ReasonProgramNewer    = "ProgramNewer"
	ReasonToolNewer       = "ToolNewer"
)

// Driver decides per (program, variant) whether the artifact must be
// regenerated, and performs the regeneration.
//
// Staleness is purely a function of filesystem timestamps, recomputed on
// every invocation: an artifact is stale iff it is missing, older than
// its program file, or older than the tool binary. There is no persisted
// build state.
type Driver struct {
	Tool  Tool
	Stats *StatCache
}

// NewDriver creates a Driver with a fresh stat cache.
func NewDriver(tool Tool) *Driver {
	return &Driver{Tool: tool, Stats: NewStatCache()}
}

// EnsureResult describes the outcome of one EnsureArtifact call.
type EnsureResult struct {
	// Artifact is the derived output path.
	Artifact string

	// Rebuilt reports whether a subprocess was spawned. False means the
	// artifact was already fresh and nothing happened.
	Rebuilt bool

	// Reason is the staleness reason that triggered the rebuild
	// (one of the Reason* constants), or "" when fresh.
	Reason string

	// Stdout/Stderr are the captured tool streams (nil when fresh).
	Stdout []byte
	Stderr []byte
}

// Check reports whether the artifact for (program, variant) is stale,
// and why. It never spawns a subprocess.
func (d *Driver) Check(program Program, v Variant) (stale bool, reason string, err error) {
	artifact := program.ArtifactPath(v)

	// Artifacts are stat'ed directly: they change mid-run.
	info, err := os.Stat(artifact)
	if err != nil {
		if os.IsNotExist(err) {
			return true, ReasonArtifactMissing, nil
		}
		return false, "", &IOError{Op: "stat", Path: artifact, Err: err}
	}
	artifactTime := info.ModTime()

	progTime, exists, err := d.Stats.ModTime(program.Path)
	if err != nil {
		return false, "", fmt.Errorf("stat program %s: %w", program.Path, err)
	}
	if !exists {
		return false, "", fmt.Errorf("program file does not exist: %s", program.Path)
	}
	if artifactTime.Before(progTime) {
		return true, ReasonProgramNewer, nil
	}

	// A missing tool does not make a fresh artifact stale; invoking it
	// for a genuinely stale artifact will surface the real error.
	toolTime, exists, err := d.Stats.ModTime(d.Tool.Path)
	if err != nil {
		return false, "", fmt.Errorf("stat tool %s: %w", d.Tool.Path, err)
	}
	if exists && artifactTime.Before(toolTime) {
		return true, ReasonToolNewer, nil
	}

	return false, "", nil
}

// Rebuild unconditionally invokes the tool for (program, variant) and
// materializes the artifact.
//
// Output contract: some compilers write the artifact themselves, others
// print the circuit to stdout. After a zero exit, if the artifact file
// was not touched by the tool, the captured stdout is written to the
// artifact path atomically. On a non-zero exit nothing the tool may have
// produced is trusted: the artifact path is removed so no stale-looking
// output survives, and a ToolError is returned.
func (d *Driver) Rebuild(ctx context.Context, program Program, v Variant) (*EnsureResult, error) {
	artifact := program.ArtifactPath(v)

	var pre os.FileInfo
	if info, err := os.Stat(artifact); err == nil {
		pre = info
	}

	res, err := d.Tool.Compile(ctx, program, v)
	if err != nil {
		return nil, err
	}

	if res.ExitCode != 0 {
		if err := os.Remove(artifact); err != nil && !os.IsNotExist(err) {
			return nil, &IOError{Op: "remove", Path: artifact, Err: err}
		}
		return nil, &ToolError{
			Program:  program.Path,
			Variant:  v,
			ExitCode: res.ExitCode,
			Stderr:   res.Stderr,
		}
	}

	if !wroteDirectly(artifact, pre) {
		if err := WriteFileAtomic(artifact, res.Stdout, 0o644); err != nil {
			return nil, &IOError{Op: "write", Path: artifact, Err: err}
		}
	}

	return &EnsureResult{
		Artifact: artifact,
		Rebuilt:  true,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
	}, nil
}

// wroteDirectly reports whether the tool materialized the artifact
// itself: the file exists and its modification time moved relative to
// the pre-invocation snapshot (or it did not exist before).
func wroteDirectly(artifact string, pre os.FileInfo) bool {
	post, err := os.Stat(artifact)
	if err != nil {
		return false
	}
	if pre == nil {
		return true
	}
	return !post.ModTime().Equal(pre.ModTime())
}

// EnsureArtifact brings the artifact for (program, variant) up to date.
//
// When the artifact is fresh, zero subprocesses are spawned and the
// returned result has Rebuilt == false; the operation is idempotent.
func (d *Driver) EnsureArtifact(ctx context.Context, program Program, v Variant) (*EnsureResult, error) {
	stale, reason, err := d.Check(program, v)
	if err != nil {
		return nil, err
	}
	if !stale {
		return &EnsureResult{Artifact: program.ArtifactPath(v)}, nil
	}

	res, err := d.Rebuild(ctx, program, v)
	if err != nil {
		return nil, err
	}
	res.Reason = reason
	return res, nil
}
