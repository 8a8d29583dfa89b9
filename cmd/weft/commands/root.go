// Package commands implements the CLI commands for weft.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/weft/internal/app"
	"go.trai.ch/weft/internal/build"
	"go.trai.ch/weft/internal/core/domain"
)

// CLI represents the command line interface for weft.
type CLI struct {
	app     *app.App
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app.
func New(a *app.App) *CLI {
	rootCmd := &cobra.Command{
		Use:           "weft",
		Short:         "Find entry points and chunks of a module graph",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Info(),
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.PersistentFlags().StringP("config", "c", domain.ConfigFileName, "Path to configuration file")
	rootCmd.PersistentFlags().String("log-level", "info", "Minimum log level (debug, info, warn, error)")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		raw, err := cmd.Flags().GetString("log-level")
		if err != nil {
			return err
		}
		c.app.SetLogLevel(domain.ParseLogLevel(raw))
		return nil
	}

	rootCmd.AddCommand(c.newRootsCmd())
	rootCmd.AddCommand(c.newPlanCmd())
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

// SetOutput redirects command output. Used for testing.
func (c *CLI) SetOutput(w io.Writer) {
	c.rootCmd.SetOut(w)
	c.rootCmd.SetErr(w)
}

func configPath(cmd *cobra.Command) (string, error) {
	return cmd.Flags().GetString("config")
}
