package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.trai.ch/cdnloader/internal/app"
)

func (c *CLI) newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch",
		Short: "Download configured libraries into the cache and list the linkable files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			results, err := c.app.Fetch(cmd.Context(), app.FetchOptions{ConfigPaths: configPaths(cmd)})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, res := range results {
				for _, file := range res.Files {
					_, _ = fmt.Fprintln(out, file)
				}
			}
			return nil
		},
	}
}
