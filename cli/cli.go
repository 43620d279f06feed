// Package cli is the command line front end of decu.
//
// Scripts are compiled into the binary: a project's main package imports the packages that call
// [decu.Register] and then calls [Execute].
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := NewCommand()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// NewCommand returns the root command with the init, exec and inspect subcommands.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "decu",
		Short:         "Run experimental-computation scripts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(
		newInitCommand(),
		newExecCommand(),
		newInspectCommand(),
	)

	return cmd
}
