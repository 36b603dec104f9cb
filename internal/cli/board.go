package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/lifeboard/internal/model"
	"github.com/mcoot/lifeboard/internal/services/board"
	"github.com/mcoot/lifeboard/internal/services/game"
	"github.com/mcoot/lifeboard/internal/services/gesture"
)

// deltaFlag registers the required --delta flag. Deltas are flags so negative
// values are not mistaken for shorthand options.
func deltaFlag(cmd *cobra.Command, delta *int) {
	cmd.Flags().IntVarP(delta, "delta", "d", 0, "Amount to change by (negative to decrease)")
	_ = cmd.MarkFlagRequired("delta")
}

func newLifeCmd() *cobra.Command {
	var delta int

	cmd := &cobra.Command{
		Use:   "life <game> <player> --delta N",
		Short: "Change a player's life total",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit(cmd, model.GameID(args[0]), model.AdjustLife{Player: model.PlayerID(args[1]), Delta: delta})
		},
	}
	deltaFlag(cmd, &delta)

	return cmd
}

func newEffectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "effect",
		Short: "Status effect commands (poison, monarch, initiative)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "toggle <game> <player> <effect>",
		Short: "Flip a flag effect",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit(cmd, model.GameID(args[0]), model.ToggleEffect{
				Player: model.PlayerID(args[1]),
				Effect: strings.ToLower(args[2]),
			})
		},
	})

	var delta int
	adjust := &cobra.Command{
		Use:   "adjust <game> <player> <effect> --delta N",
		Short: "Change a counter effect; counters never go below zero",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit(cmd, model.GameID(args[0]), model.AdjustEffect{
				Player: model.PlayerID(args[1]),
				Effect: strings.ToLower(args[2]),
				Delta:  delta,
			})
		},
	}
	deltaFlag(adjust, &delta)
	cmd.AddCommand(adjust)

	return cmd
}

func newDamageCmd() *cobra.Command {
	var delta int

	cmd := &cobra.Command{
		Use:   "damage <game> <source> <target> --delta N",
		Short: "Change the commander damage source has dealt to target",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit(cmd, model.GameID(args[0]), model.AdjustCommanderDamage{
				Source: model.PlayerID(args[1]),
				Target: model.PlayerID(args[2]),
				Delta:  delta,
			})
		},
	}
	deltaFlag(cmd, &delta)

	return cmd
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <game>",
		Short: "Restore every player's life and effects, keeping names and colors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return submit(cmd, model.GameID(args[0]), model.ResetGame{})
		},
	}
}

func newPressCmd() *cobra.Command {
	var hold bool

	cmd := &cobra.Command{
		Use:   "press <game> <player> <zone>",
		Short: "Press a board zone like a touch screen would",
		Long: `Press one of a player's zones: life-up, life-down, poison-up, poison-down.

A plain press is a tap and changes the value by one. With --hold the press is
kept down past the hold delay, firing a burst of ten instead.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := model.GameID(args[0])
			player := model.PlayerID(args[1])

			err := withController(cmd.Context(), id, func(ctx context.Context, ctrl *game.Controller) error {
				return press(ctx, ctrl, player, board.ZoneName(args[2]), hold)
			})
			if err != nil {
				return err
			}

			g, err := app.Storage.GetGame(cmd.Context(), id)
			if err != nil {
				return err
			}
			out.PrintBoard(g, game.ViewsOf(app.Policy, g))
			return nil
		},
	}

	cmd.Flags().BoolVar(&hold, "hold", false, "Hold past the hold delay for a burst")

	return cmd
}

// press drives one zone through a panel and waits for its submit to finish
func press(ctx context.Context, ctrl *game.Controller, player model.PlayerID, name board.ZoneName, hold bool) error {
	var (
		mu        sync.Mutex
		submitErr error
	)
	panel := app.NewPanel(player, ctrl, func(err error) {
		mu.Lock()
		defer mu.Unlock()
		submitErr = errors.Join(submitErr, err)
	})
	defer panel.Close()

	zone, err := panel.Zone(name)
	if err != nil {
		return err
	}

	zone.PressStart()
	if hold {
		if err := waitFired(ctx, zone, app.Gesture.HoldDelay); err != nil {
			zone.Leave()
			return err
		}
	}
	zone.PressEnd()
	panel.Wait()

	mu.Lock()
	defer mu.Unlock()
	return submitErr
}

// waitFired holds until the zone's burst has fired
func waitFired(ctx context.Context, zone *gesture.Zone, holdDelay time.Duration) error {
	timer := time.NewTimer(holdDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
		return ctx.Err()
	}

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for zone.State() != gesture.StateFired {
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return fmt.Errorf("hold did not fire: %w", ctx.Err())
		}
	}
	return nil
}
