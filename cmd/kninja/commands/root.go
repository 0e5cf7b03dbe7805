// Package commands implements the CLI commands for the kninja tool.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/nishantjr/kninja/internal/runner"
)

// Application is the surface the commands need from the app layer.
type Application interface {
	Generate(ctx context.Context, configPath string) (string, error)
	Build(ctx context.Context, configPath string, ninjaArgs []string) error
	Dispatch(ctx context.Context, configPath string, action runner.Action, alias, program string, trailing []string) error
}

// CLI represents the command line interface for kninja.
type CLI struct {
	app     Application
	rootCmd *cobra.Command
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "kninja",
		Short:         "Generate and drive ninja builds for K definitions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringP("file", "f", "kninja.yaml", "Path to the project configuration file")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.AddCommand(c.newGenCmd())
	rootCmd.AddCommand(c.newBuildCmd())
	rootCmd.AddCommand(c.newDispatchCmd(runner.ActionKast, "kast", "Parse a program against a definition", "program"))
	rootCmd.AddCommand(c.newDispatchCmd(runner.ActionRun, "run", "Run a program against a definition", "program"))
	rootCmd.AddCommand(c.newDispatchCmd(runner.ActionProve, "prove", "Check a specification against a definition", "specification"))
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

func (c *CLI) configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("file")
	return path
}
