package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/lifeboard/internal/model"
)

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player management commands",
	}

	cmd.AddCommand(newPlayerAddCmd())
	cmd.AddCommand(newPlayerRemoveCmd())
	cmd.AddCommand(newPlayerColorCmd())
	cmd.AddCommand(newPlayerRenameCmd())

	return cmd
}

func newPlayerAddCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "add <game>",
		Short: "Add a player with starting counters (ignored when the game is full)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit(cmd, model.GameID(args[0]), model.AddPlayer{Name: name})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Player name (default: Player N)")

	return cmd
}

func newPlayerRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <game> <player>",
		Short: "Remove a player",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit(cmd, model.GameID(args[0]), model.RemovePlayer{Player: model.PlayerID(args[1])})
		},
	}
}

func newPlayerColorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "color <game> <player> [color]",
		Short: "Set a player's color; omit the color to clear it",
		Long:  "Set a player's color. Colors: red, orange, yellow, green, teal, blue, purple, pink.",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var color model.Color
			if len(args) == 3 {
				color = model.Color(strings.ToLower(args[2]))
			}
			return submit(cmd, model.GameID(args[0]), model.SetColor{Player: model.PlayerID(args[1]), Color: color})
		},
	}
}

func newPlayerRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <game> <player> <name>",
		Short: "Rename a player",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args[2:], " ")
			return submit(cmd, model.GameID(args[0]), model.RenamePlayer{Player: model.PlayerID(args[1]), Name: name})
		},
	}
}
