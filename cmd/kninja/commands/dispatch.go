package commands

import (
	"github.com/spf13/cobra"

	"github.com/nishantjr/kninja/internal/runner"
)

// newDispatchCmd builds one of the kast/run/prove commands. All three share
// the same shape: a --definition choice, a positional input, and trailing
// arguments forwarded verbatim to the replaced tool.
func (c *CLI) newDispatchCmd(action runner.Action, use, short, positional string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " <" + positional + "> [-- args...]",
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alias, err := cmd.Flags().GetString("definition")
			if err != nil {
				return err
			}
			return c.app.Dispatch(cmd.Context(), c.configPath(cmd), action, alias, args[0], args[1:])
		},
	}
	cmd.Flags().String("definition", "", "Alias of the definition (defaults to the project default)")
	return cmd
}
