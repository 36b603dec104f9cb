package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/lifeboard/internal/factory"
	"github.com/mcoot/lifeboard/internal/model"
	"github.com/mcoot/lifeboard/internal/services/game"
	"github.com/mcoot/lifeboard/internal/services/lobby"
	"github.com/mcoot/lifeboard/internal/storage/remote"
)

var (
	cfg *Config
	app *factory.App
	out *Output
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "lifeboard",
		Short: "CLI tool for shared life counter boards",
		Long: `lifeboard drives a shared life counter board on a lifeboard server.

Every change goes through the same sync path a board UI uses: subscribe to the
game, wait for its first snapshot, submit one intent, and let the server
broadcast the result to everyone watching.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewTextHandler(io.Discard, nil))
			if cfg.Verbose {
				logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelDebug}))
			}

			var err error
			app, err = factory.New(factory.Config{
				Logger:       logger,
				StorageType:  factory.StorageTypeRemote,
				RemoteConfig: &remote.Config{BaseURL: cfg.ServerURL, Timeout: cfg.Timeout},
			})
			if err != nil {
				return err
			}
			out = NewOutput(cfg.Output, cmd.OutOrStdout())
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app == nil {
				return nil
			}
			return app.Close()
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: LIFEBOARD_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.JoinFile, "join-file", cfg.JoinFile, "File recording joined games (env: LIFEBOARD_JOIN_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Request timeout")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newGamesCmd())
	rootCmd.AddCommand(newJoinCmd())
	rootCmd.AddCommand(newPlayerCmd())
	rootCmd.AddCommand(newLifeCmd())
	rootCmd.AddCommand(newEffectCmd())
	rootCmd.AddCommand(newDamageCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newPressCmd())
	rootCmd.AddCommand(newWatchCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// signalContext is cancelled on Ctrl+C
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// requireJoined checks the recorded password still admits this CLI to the game
func requireJoined(ctx context.Context, id model.GameID) error {
	joined, err := cfg.LoadJoined()
	if err != nil {
		return err
	}
	_, err = app.LobbyController.JoinGame(ctx, id, lobby.JoinOptions{Password: joined[id]})
	if errors.Is(err, model.ErrPasswordMismatch) {
		return fmt.Errorf("%w: run 'lifeboard join %s --password ...' first", err, id)
	}
	return err
}

// withController subscribes a fresh sync controller to the game and waits for its first snapshot
func withController(ctx context.Context, id model.GameID, fn func(ctx context.Context, ctrl *game.Controller) error) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := requireJoined(ctx, id); err != nil {
		return err
	}

	ctrl := app.NewGameController()
	defer ctrl.Unsubscribe()

	if err := ctrl.Subscribe(ctx, id); err != nil {
		return err
	}
	if err := ctrl.WaitReady(ctx); err != nil {
		return err
	}
	return fn(ctx, ctrl)
}

// submit sends one intent and prints the board as the server now holds it
func submit(cmd *cobra.Command, id model.GameID, intent model.Intent) error {
	err := withController(cmd.Context(), id, func(ctx context.Context, ctrl *game.Controller) error {
		return ctrl.Submit(ctx, intent)
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
}
