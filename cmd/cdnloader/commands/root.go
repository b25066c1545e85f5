// Package commands implements the CLI commands for cdnloader.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/cdnloader/internal/app"
	"go.trai.ch/cdnloader/internal/build"
	"go.trai.ch/cdnloader/internal/core/domain"
)

// CLI represents the command line interface for cdnloader.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Fetch(ctx context.Context, opts app.FetchOptions) ([]app.Result, error)
	Tags(ctx context.Context, w io.Writer, opts app.TagsOptions) error
	Status(ctx context.Context, w io.Writer, opts app.StatusOptions) error
	Clean(ctx context.Context, opts app.CleanOptions) error
	SetJSONLogs(enabled bool)
	SetProgress(w io.Writer)
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "cdnloader",
		Short:         "Fetch CDN libraries into a local cache directory",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringSliceP("config", "c", []string{domain.ConfigFileName},
		"Configuration file to use (repeatable)")
	rootCmd.PersistentFlags().Bool("json-logs", false, "Write logs as JSON")
	rootCmd.PersistentFlags().Bool("progress", false, "Print each finished fetch to stderr")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if jsonLogs, _ := cmd.Flags().GetBool("json-logs"); jsonLogs {
			c.app.SetJSONLogs(true)
		}
		if progress, _ := cmd.Flags().GetBool("progress"); progress {
			c.app.SetProgress(cmd.ErrOrStderr())
		}
	}

	rootCmd.AddCommand(c.newFetchCmd())
	rootCmd.AddCommand(c.newTagsCmd())
	rootCmd.AddCommand(c.newStatusCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

func configPaths(cmd *cobra.Command) []string {
	paths, _ := cmd.Flags().GetStringSlice("config")
	return paths
}
