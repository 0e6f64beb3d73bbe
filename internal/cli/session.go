package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session management commands",
	}

	cmd.AddCommand(newSessionCreateCmd())
	cmd.AddCommand(newSessionGetCmd())
	cmd.AddCommand(newSessionEndCmd())

	return cmd
}

func newSessionCreateCmd() *cobra.Command {
	var players int
	var names []string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new session",
		Long: `Create a new session for 2 to 4 players.

Names given with --name set the player count; otherwise --players seats that
many players with default names.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{}
			if len(names) > 0 {
				req["names"] = names
			} else {
				req["player_count"] = players
			}

			var result Session

			if err := client.Post("/api/v1/sessions", req, &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().IntVarP(&players, "players", "p", 2, "Number of players (2-4)")
	cmd.Flags().StringArrayVarP(&names, "name", "n", nil, "Player name, repeat once per seat")

	return cmd
}

func newSessionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <code>",
		Short: "Get session state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			var result Session

			if err := client.Get(fmt.Sprintf("/api/v1/sessions/%s", code), &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newSessionEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end <code>",
		Short: "End a session, discarding its scores",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			if err := client.Delete(fmt.Sprintf("/api/v1/sessions/%s", code)); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.PrintMessage(fmt.Sprintf("Ended session %s", code))
			return nil
		},
	}
}
