package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/cdnloader/internal/app"
)

func (c *CLI) newTagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Fetch libraries and print HTML tags that include them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			basePath, _ := cmd.Flags().GetString("base-path")
			webRoot, _ := cmd.Flags().GetString("web-root")

			return c.app.Tags(cmd.Context(), cmd.OutOrStdout(), app.TagsOptions{
				ConfigPaths: configPaths(cmd),
				BasePath:    basePath,
				WebRoot:     webRoot,
			})
		},
	}
	cmd.Flags().String("base-path", "", "Prefix for every generated href, e.g. /static")
	cmd.Flags().String("web-root", "", "Directory the hrefs are relative to")
	return cmd
}
