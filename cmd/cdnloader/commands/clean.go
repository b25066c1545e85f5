package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/cdnloader/internal/app"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove cached files and fingerprints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Clean(cmd.Context(), app.CleanOptions{ConfigPaths: configPaths(cmd)})
		},
	}
}
