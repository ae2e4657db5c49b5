package cli

import (
	"errors"
	"fmt"
)

// Semantic process exit codes.
const (
	ExitSuccess           = 0
	ExitBuildFailure      = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
	ExitInternalError     = 4
)

// InvocationError carries a semantic exit code alongside the message.
type InvocationError struct {
	ExitCode int
	Message  string

	// Err is the underlying cause, if any.
	Err error
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func (e *InvocationError) Unwrap() error { return e.Err }

func configErrorf(err error, format string, args ...any) error {
	return &InvocationError{ExitCode: ExitConfigError, Message: fmt.Sprintf(format, args...), Err: err}
}

func internalErrorf(err error, format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInternalError, Message: fmt.Sprintf(format, args...), Err: err}
}

// ExitCodeFor maps an error returned by command execution to a semantic
// exit code. Errors the commands did not classify themselves are flag
// parse or usage errors surfaced by the command tree.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var invErr *InvocationError
	if errors.As(err, &invErr) && invErr != nil {
		if invErr.ExitCode != 0 {
			return invErr.ExitCode
		}
		return ExitInternalError
	}
	return ExitInvalidInvocation
}
