package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newGenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gen",
		Short: "Write the ninja manifest for the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := c.app.Generate(cmd.Context(), c.configPath(cmd))
			return err
		},
	}
}

func (c *CLI) newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build [ninja args...]",
		Short: "Write the ninja manifest and hand off to ninja",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Build(cmd.Context(), c.configPath(cmd), args)
		},
	}
}
