package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTimerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timer",
		Short: "Turn timer commands",
	}

	cmd.AddCommand(newTimerIntentCmd("start", "Start or resume the active player's countdown"))
	cmd.AddCommand(newTimerIntentCmd("pause", "Pause the running countdown"))
	cmd.AddCommand(newTimerIntentCmd("skip", "End the turn and move to the next player"))
	cmd.AddCommand(newTimerIntentCmd("reset", "Restore the current player's full turn time"))

	return cmd
}

func newTimerIntentCmd(intent, short string) *cobra.Command {
	return &cobra.Command{
		Use:   intent + " <code>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			var result TimerResult

			if err := client.Post(fmt.Sprintf("/api/v1/sessions/%s/timer/%s", code, intent), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
