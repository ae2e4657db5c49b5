package core

import (
	"bytes"
	"fmt"
)

// maxStderrReport bounds how much captured compiler stderr is echoed in
// error messages. The full capture stays available on the error value.
const maxStderrReport = 512

// DiscoveryError reports an input directory that cannot be scanned.
type DiscoveryError struct {
	Dir string
	Err error
}

func (e *DiscoveryError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("discovering inputs in %s: %v", e.Dir, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// ToolError reports a non-zero exit from the external compiler for a
// specific (program, variant) pair.
type ToolError struct {
	Program  string
	Variant  Variant
	ExitCode int

	// Stderr is the full captured error stream of the subprocess.
	Stderr []byte
}

func (e *ToolError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("compiling %s [%s]: tool exited %d", e.Program, e.Variant, e.ExitCode)
	if tail := e.StderrExcerpt(); tail != "" {
		msg += ": " + tail
	}
	return msg
}

// StderrExcerpt returns a single-line, length-bounded view of the captured
// stderr, suitable for user-facing failure summaries.
func (e *ToolError) StderrExcerpt() string {
	if e == nil || len(e.Stderr) == 0 {
		return ""
	}
	b := bytes.TrimSpace(e.Stderr)
	if len(b) > maxStderrReport {
		b = append(bytes.TrimSpace(b[:maxStderrReport]), []byte("...")...)
	}
	return string(bytes.ReplaceAll(b, []byte("\n"), []byte(" | ")))
}

// IOError reports a failed artifact write or removal.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
