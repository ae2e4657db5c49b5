// Package cli wires the command surface of the circuit build driver:
// `build` (the default), `clean`, and `inspect`.
package cli

import (
	"io"

	"github.com/spf13/cobra"

	"circuitmake/internal/config"
)

func newRootCommand(out, errOut io.Writer) *cobra.Command {
	var flags config.Config

	root := &cobra.Command{
		Use:   "circuitmake",
		Short: "Keeps compiled circuit artifacts up to date with their SFDL sources",
		Long: "circuitmake discovers .sfdl program files and keeps both compiled\n" +
			"variants of each (<input>.Opt.circuit and <input>.NoOpt.circuit)\n" +
			"up to date by invoking the external Fairplay compiler when an\n" +
			"artifact is missing or older than its inputs.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, flags, out, errOut)
		},
	}

	root.PersistentFlags().StringVar(&flags.Dir, "dir", "", "directory holding the program files (default \".\")")
	root.PersistentFlags().StringVar(&flags.Tool, "tool", "", "path to the external compiler executable or jar (default \"sfdl.jar\")")
	root.PersistentFlags().IntVar(&flags.Jobs, "jobs", 0, "number of concurrent compiler invocations (default 1)")
	root.PersistentFlags().StringVar(&flags.TracePath, "trace", "", "write a canonical build trace to this path")

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Bring every (program, variant) artifact up to date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd, flags, out, errOut)
		},
	}

	cleanCmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove all generated circuit and format artifacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(flags, out)
		},
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect <file.circuit> [file.fmt]",
		Short: "Parse a generated circuit and print a structural summary",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmtPath := ""
			if len(args) == 2 {
				fmtPath = args[1]
			}
			return runInspect(args[0], fmtPath, out)
		},
	}

	root.AddCommand(buildCmd, cleanCmd, inspectCmd)
	return root
}
