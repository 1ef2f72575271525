package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/poe-code/poe-code/providers"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List supported coding-agent CLIs",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range providers.List() {
				m, err := providers.Get(id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s\n", m.ID, m.DisplayName)
			}
			return nil
		},
	}
}
