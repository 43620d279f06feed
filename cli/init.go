package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teenjuna/decu"
)

func newInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init [dir]",
		Short: "Create the directories of a project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			settings, err := decu.LoadSettings(dir)
			if err != nil {
				return err
			}
			if err := decu.InitProject(dir, settings); err != nil {
				return fmt.Errorf("init project: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Initialized project in %s\n", dir)
			return nil
		},
	}
}
