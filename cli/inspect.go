package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/teenjuna/decu"
)

func newInspectCommand() *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Load a result file and explore it",
		Long: "Load a result file through the result registry. On a terminal a prompt is opened " +
			"with the loaded value; otherwise the value is printed.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := decu.LoadSettings(project)
			if err != nil {
				return err
			}
			registry, err := decu.NewRegistry(settings, zap.NewNop())
			if err != nil {
				return err
			}

			path := args[0]
			if _, err := os.Stat(path); err != nil {
				return err
			}
			value, err := registry.Read(path)
			if err != nil {
				return err
			}

			sh := &shell{path: path, value: value}
			if fd, ok := terminal(cmd.InOrStdin()); ok {
				return sh.interact(fd, cmd.InOrStdin(), cmd.OutOrStdout())
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), format(value))
			return err
		},
	}

	cmd.Flags().StringVarP(&project, "project", "p", ".", "project directory whose settings are used")

	return cmd
}

func terminal(r io.Reader) (int, bool) {
	f, ok := r.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	return fd, term.IsTerminal(fd)
}
