// Package lobby holds the thin create/join/list/delete flows around shared games.
package lobby

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcoot/lifeboard/internal/dependencies/clock"
	"github.com/mcoot/lifeboard/internal/model"
	"github.com/mcoot/lifeboard/internal/services/mutation"
	"github.com/mcoot/lifeboard/internal/storage"
)

// MaxNameLength bounds game names
const MaxNameLength = 64

// CreateOptions describes a new game
type CreateOptions struct {
	// ID is optional; the store assigns one when empty
	ID       model.GameID
	Name     string
	Password string
}

// JoinOptions describes a join attempt
type JoinOptions struct {
	Password string
	// PlayerName seats a new player when set; an empty name only checks access
	PlayerName string
}

// JoinResult is the game as it stands after a join
type JoinResult struct {
	Game *model.Game
	// Player is the seat created by the join, nil when none was requested or the game is full
	Player *model.Player
}

// Controller manages the game list and join checks
type Controller struct {
	storage storage.Store
	builder *mutation.Builder
	clock   clock.Clock
	logger  *slog.Logger
}

// NewController creates a new lobby Controller
func NewController(
	storage storage.Store,
	builder *mutation.Builder,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		builder: builder,
		clock:   clock,
		logger:  logger.With(slog.String("component", "lobby")),
	}
}

// ValidateGameID rejects ids that cannot be used in keys and URLs
func ValidateGameID(id model.GameID) error {
	if id == "" {
		return nil
	}
	if strings.ContainsAny(string(id), "/.?#: \t\n") {
		return fmt.Errorf("%w: game id %q", model.ErrInvalidIntent, id)
	}
	return nil
}

// CreateGame creates an empty game
func (c *Controller) CreateGame(ctx context.Context, opts CreateOptions) (*model.Game, error) {
	id := model.GameID(strings.TrimSpace(string(opts.ID)))
	if err := ValidateGameID(id); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(opts.Name)
	if len(name) > MaxNameLength {
		return nil, fmt.Errorf("%w: name longer than %d", model.ErrInvalidIntent, MaxNameLength)
	}

	game := model.NewGame(id, name, opts.Password, c.clock.Now().UTC())
	id, err := c.storage.CreateGame(ctx, game)
	if err != nil {
		c.logger.Warn("failed to create game",
			slog.String("game_id", string(game.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	game.ID = id

	c.logger.Info("game created",
		slog.String("game_id", string(id)),
		slog.Bool("has_password", game.HasPassword()),
	)
	return game, nil
}

// GetGame retrieves a game by ID
func (c *Controller) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	return c.storage.GetGame(ctx, id)
}

// JoinGame checks the join secret and, when a player name is given, seats a new
// player. The secret is compared verbatim and an empty stored secret admits anyone.
// Joining a full game admits without seating and writes nothing.
func (c *Controller) JoinGame(ctx context.Context, id model.GameID, opts JoinOptions) (*JoinResult, error) {
	game, err := c.storage.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if game.HasPassword() && game.Password != opts.Password {
		c.logger.Info("join rejected", slog.String("game_id", string(id)))
		return nil, model.ErrPasswordMismatch
	}
	if strings.TrimSpace(opts.PlayerName) == "" {
		return &JoinResult{Game: game}, nil
	}

	player, updates, err := c.builder.NewPlayer(game, opts.PlayerName)
	if errors.Is(err, model.ErrGameFull) {
		c.logger.Info("join without seat - game full", slog.String("game_id", string(id)))
		return &JoinResult{Game: game}, nil
	}
	if err != nil {
		return nil, err
	}
	if err := c.storage.ApplyPathUpdates(ctx, id, updates); err != nil {
		c.logger.Warn("failed to seat player",
			slog.String("game_id", string(id)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	game, err = c.storage.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	c.logger.Info("player joined",
		slog.String("game_id", string(id)),
		slog.String("player_id", string(player.ID)),
		slog.Int("player_count", game.PlayerCount()),
	)
	return &JoinResult{Game: game, Player: player}, nil
}

// ListGames returns every game, newest first
func (c *Controller) ListGames(ctx context.Context) ([]*model.Game, error) {
	return c.storage.ListGames(ctx)
}

// DeleteGame removes a game and ends its subscriptions
func (c *Controller) DeleteGame(ctx context.Context, id model.GameID) error {
	if err := c.storage.DeleteGame(ctx, id); err != nil {
		return err
	}
	c.logger.Info("game deleted", slog.String("game_id", string(id)))
	return nil
}
