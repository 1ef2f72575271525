package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/poe-code/poe-code/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "poe-code version %s\n", version.Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Commit: %s\n", version.Commit)
			fmt.Fprintf(cmd.OutOrStdout(), "Build time: %s\n", version.BuildTime)
		},
	}
}
