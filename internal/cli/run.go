package cli

import (
	"context"
	"fmt"
	"io"
)

// Run is the high-level CLI entrypoint, suitable for black-box tests.
// It accepts the argument slice (excluding argv[0]) and returns the
// semantic process exit code. Errors are printed to errOut exactly once.
func Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	root := newRootCommand(out, errOut)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(errOut, err)
		return ExitCodeFor(err)
	}
	return ExitSuccess
}
