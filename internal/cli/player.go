package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player management commands",
	}

	cmd.AddCommand(newPlayerRenameCmd())

	return cmd
}

func newPlayerRenameCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "rename <code> <player_id>",
		Short: "Rename a player",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]
			playerID, err := parsePlayerID(args[1])
			if err != nil {
				return err
			}

			req := map[string]string{"name": name}
			var result Player

			if err := client.Patch(fmt.Sprintf("/api/v1/sessions/%s/players/%d", code, playerID), req, &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New display name (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newPointsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "points",
		Short: "Score ledger commands",
	}

	cmd.AddCommand(newPointsAddCmd())

	return cmd
}

func newPointsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <code> <player_id> [--] <delta>",
		Short: "Add points to a player (negative deltas subtract, never below zero)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]
			playerID, err := parsePlayerID(args[1])
			if err != nil {
				return err
			}
			delta, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid delta %q: must be an integer", args[2])
			}

			req := map[string]int{"delta": delta}
			var result Player

			if err := client.Post(fmt.Sprintf("/api/v1/sessions/%s/players/%d/points", code, playerID), req, &result); err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func parsePlayerID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid player id %q", s)
	}
	return id, nil
}
