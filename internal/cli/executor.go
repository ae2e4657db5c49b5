package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"circuitmake/internal/build"
	"circuitmake/internal/config"
	"circuitmake/internal/core"
	"circuitmake/internal/shdl"
	"circuitmake/internal/trace"
)

// runBuild executes buildAll: both variants of every discovered program,
// continuing past per-pair failures and aggregating them.
func runBuild(cmd *cobra.Command, flags config.Config, out, errOut io.Writer) error {
	cfg, err := config.Load(flags)
	if err != nil {
		return configErrorf(err, "%v", err)
	}

	programs, err := core.DiscoverPrograms(cfg.Dir)
	if err != nil {
		return configErrorf(err, "%v", err)
	}

	plan := build.NewPlan(programs)
	if plan.Len() == 0 {
		fmt.Fprintf(out, "no %s files in %s\n", core.ProgramSuffix, cfg.Dir)
		return nil
	}

	runner := build.NewDriverRunner(core.NewDriver(core.Tool{Path: cfg.Tool}))
	recorder := trace.NewRecorder()
	exec, err := build.NewExecutor(plan, runner, recorder)
	if err != nil {
		return internalErrorf(err, "initializing executor: %v", err)
	}

	var res *build.BuildResult
	if cfg.Jobs > 1 {
		res, err = exec.RunParallel(cmd.Context(), cfg.Jobs)
	} else {
		res, err = exec.RunSerial(cmd.Context())
	}
	if err != nil {
		return internalErrorf(err, "%v", err)
	}

	if cfg.TracePath != "" {
		if err := writeTrace(cfg.TracePath, recorder, plan); err != nil {
			return configErrorf(err, "writing trace: %v", err)
		}
	}

	built, fresh, failed := res.Counts()
	fmt.Fprintf(out, "%d built, %d fresh, %d failed (%d programs)\n", built, fresh, failed, len(programs))

	if !res.Failed() {
		return nil
	}
	for _, f := range res.Failures {
		fmt.Fprintln(errOut, failureLine(f))
	}
	return &InvocationError{
		ExitCode: ExitBuildFailure,
		Message:  fmt.Sprintf("build failed: %d of %d jobs", failed, plan.Len()),
	}
}

// failureLine renders one failed (program, variant) pair, naming the
// file, the variant, the exit code, and a bounded stderr excerpt.
func failureLine(f build.JobFailure) string {
	var toolErr *core.ToolError
	if errors.As(f.Err, &toolErr) {
		line := fmt.Sprintf("FAIL %s [%s]: exit %d", f.Job.Program.Name(), f.Job.Variant, toolErr.ExitCode)
		if excerpt := toolErr.StderrExcerpt(); excerpt != "" {
			line += ": " + excerpt
		}
		return line
	}
	return fmt.Sprintf("FAIL %s [%s]: %v", f.Job.Program.Name(), f.Job.Variant, f.Err)
}

func writeTrace(path string, recorder *trace.Recorder, plan *build.Plan) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	t := recorder.Trace(uuid.NewString(), plan.Hash().String())
	b, err := t.EnvelopeJSON()
	if err != nil {
		return err
	}
	return core.WriteFileAtomic(path, b, 0o644)
}

// runClean removes every generated artifact. Nothing to delete is
// success; only a genuine filesystem error is surfaced.
func runClean(flags config.Config, out io.Writer) error {
	cfg, err := config.Load(flags)
	if err != nil {
		return configErrorf(err, "%v", err)
	}

	removed, err := core.Clean(cfg.Dir)
	if err != nil {
		return configErrorf(err, "%v", err)
	}
	fmt.Fprintf(out, "removed %d artifacts\n", len(removed))
	return nil
}

// runInspect parses a generated circuit (and optionally its companion
// .fmt file) and prints a structural summary.
func runInspect(circuitPath, fmtPath string, out io.Writer) error {
	cf, err := os.Open(circuitPath)
	if err != nil {
		return configErrorf(err, "%v", err)
	}
	defer cf.Close()

	gates, err := shdl.ParseCircuit(cf)
	if err != nil {
		return configErrorf(err, "parsing %s: %v", circuitPath, err)
	}

	var vars []shdl.Variable
	if fmtPath != "" {
		ff, err := os.Open(fmtPath)
		if err != nil {
			return configErrorf(err, "%v", err)
		}
		defer ff.Close()
		vars, err = shdl.ParseFormat(ff)
		if err != nil {
			return configErrorf(err, "parsing %s: %v", fmtPath, err)
		}
	}

	fmt.Fprintf(out, "%s\n", circuitPath)
	return shdl.Summarize(gates, vars).Write(out)
}
