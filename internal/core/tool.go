package core

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
)

// Tool invokes the external SFDL compiler as a subprocess.
//
// The compiler is an opaque collaborator: the driver only relies on its
// documented CLI contract (`tool [--no-optimize] <program-file>`, zero
// exit on success) and never interprets its output beyond capturing it.
type Tool struct {
	// Path locates the compiler executable. A path ending in ".jar" is
	// launched through `java -jar`; anything else is executed directly.
	Path string
}

// Argv returns the argv prefix used to launch the tool.
func (t Tool) Argv() []string {
	if strings.HasSuffix(t.Path, ".jar") {
		return []string{"java", "-jar", t.Path}
	}
	return []string{t.Path}
}

// CompileResult captures one subprocess invocation.
type CompileResult struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Compile runs the tool once for (program, variant).
//
// The subprocess runs in the program's directory and receives the
// program's base name, so compilers that derive output paths from their
// argument write next to the source, matching the original build rules.
//
// A non-zero exit is NOT an error here; it is reported via ExitCode so
// the driver can build a ToolError with full context. A non-nil error
// means the process could not be run at all.
//
// On context cancellation the entire process group is killed, so a
// compiler that forks helpers does not outlive the driver.
func (t Tool) Compile(ctx context.Context, program Program, v Variant) (*CompileResult, error) {
	if t.Path == "" {
		return nil, fmt.Errorf("tool path is empty")
	}

	args := t.Argv()
	if flag := v.Flag(); flag != "" {
		args = append(args, flag)
	}
	args = append(args, filepath.Base(program.Path))

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = filepath.Dir(program.Path)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", strings.Join(args, " "), err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var err error
	select {
	case <-ctx.Done():
		if cmd.Process != nil {
			// Negative PID kills the whole process group.
			syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		<-done
		return nil, fmt.Errorf("compilation cancelled: %w", ctx.Err())
	case err = <-done:
	}

	exitCode := 0
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return nil, fmt.Errorf("running %s: %w", strings.Join(args, " "), err)
		}
		exitCode = exitErr.ExitCode()
	}

	return &CompileResult{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: exitCode,
	}, nil
}
