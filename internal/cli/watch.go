package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/mcoot/lifeboard/internal/model"
	"github.com/mcoot/lifeboard/internal/services/game"
)

func newWatchCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "watch <game>",
		Short: "Print the board every time it changes",
		Long: `Subscribe to a game and print its board on every confirmed change.

Stops when the game is deleted, after --count boards, or on Ctrl+C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := model.GameID(args[0])

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			if err := requireJoined(ctx, id); err != nil {
				return err
			}

			ctrl := app.NewGameController()
			defer ctrl.Unsubscribe()

			seen := make(chan struct{}, 1)
			remaining := count
			remove := ctrl.OnChange(func(g *model.Game) {
				out.PrintWatch(g, game.ViewsOf(app.Policy, g))
				if count <= 0 {
					return
				}
				remaining--
				if remaining == 0 {
					select {
					case seen <- struct{}{}:
					default:
					}
				}
			})
			defer remove()

			if err := ctrl.Subscribe(ctx, id); err != nil {
				return err
			}

			select {
			case <-seen:
			case <-ctx.Done():
				out.PrintMessage("Disconnected")
			case <-ctrl.Done():
				if errors.Is(ctrl.Err(), model.ErrGameNotFound) {
					out.PrintMessage("Game " + string(id) + " was deleted")
					return nil
				}
				return ctrl.Err()
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 0, "Exit after this many boards (0: until interrupted)")

	return cmd
}
