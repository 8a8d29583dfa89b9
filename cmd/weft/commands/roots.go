package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/weft/internal/app"
)

func (c *CLI) newRootsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roots",
		Short: "Print the modules a traversal has to start from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}
			entries, err := c.app.Roots(cmd.Context(), path)
			if err != nil {
				return err
			}
			return app.WriteRoots(cmd.OutOrStdout(), entries)
		},
	}
}
