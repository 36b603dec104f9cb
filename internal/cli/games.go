package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/lifeboard/internal/model"
	"github.com/mcoot/lifeboard/internal/services/game"
	"github.com/mcoot/lifeboard/internal/services/lobby"
)

func newGamesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "games",
		Short: "Game management commands",
	}

	cmd.AddCommand(newGamesListCmd())
	cmd.AddCommand(newGamesCreateCmd())
	cmd.AddCommand(newGamesShowCmd())
	cmd.AddCommand(newGamesDeleteCmd())

	return cmd
}

func newGamesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List games",
		RunE: func(cmd *cobra.Command, args []string) error {
			games, err := app.LobbyController.ListGames(cmd.Context())
			if err != nil {
				return err
			}
			out.Print(games)
			return nil
		},
	}
}

func newGamesCreateCmd() *cobra.Command {
	var id, name, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new game with no players",
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := app.LobbyController.CreateGame(cmd.Context(), lobby.CreateOptions{
				ID:       model.GameID(id),
				Name:     name,
				Password: password,
			})
			if err != nil {
				return err
			}

			// The creator is joined to their own game
			if err := cfg.SaveJoined(g.ID, password); err != nil {
				return fmt.Errorf("game created but join not recorded: %w", err)
			}

			out.Print(g)
			return nil
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Game id (default: server assigned)")
	cmd.Flags().StringVar(&name, "name", "", "Game name")
	cmd.Flags().StringVar(&password, "password", "", "Join password (default: open game)")

	return cmd
}

func newGamesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <game>",
		Short: "Show a game's board",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := model.GameID(args[0])
			if err := requireJoined(cmd.Context(), id); err != nil {
				return err
			}

			g, err := app.LobbyController.GetGame(cmd.Context(), id)
			if err != nil {
				return err
			}
			out.PrintBoard(g, game.ViewsOf(app.Policy, g))
			return nil
		},
	}
}

func newGamesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <game>",
		Short: "Delete a game, ending every subscription to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := model.GameID(args[0])
			if err := requireJoined(cmd.Context(), id); err != nil {
				return err
			}

			if err := app.LobbyController.DeleteGame(cmd.Context(), id); err != nil {
				return err
			}
			out.PrintMessage("Deleted game " + string(id))
			return nil
		},
	}
}

func newJoinCmd() *cobra.Command {
	var password, name string

	cmd := &cobra.Command{
		Use:   "join <game>",
		Short: "Join a game, recording its password for later commands",
		Long: `Join a game, recording its password for later commands.
With --name a player seat is added for you unless the game is already full.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := model.GameID(args[0])

			joined, err := app.LobbyController.JoinGame(cmd.Context(), id, lobby.JoinOptions{
				Password:   password,
				PlayerName: name,
			})
			if err != nil {
				return err
			}
			if err := cfg.SaveJoined(id, password); err != nil {
				return err
			}

			out.PrintBoard(joined.Game, game.ViewsOf(app.Policy, joined.Game))
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Game password")
	cmd.Flags().StringVar(&name, "name", "", "Take a seat under this player name")

	return cmd
}
