package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/cdnloader/internal/app"
)

func (c *CLI) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether each cache matches its configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Status(cmd.Context(), cmd.OutOrStdout(), app.StatusOptions{ConfigPaths: configPaths(cmd)})
		},
	}
}
