package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/mcoot/lifeboard/internal/dependencies/clock"
	"github.com/mcoot/lifeboard/internal/dependencies/random"
	"github.com/mcoot/lifeboard/internal/model"
	"github.com/mcoot/lifeboard/internal/services/board"
	"github.com/mcoot/lifeboard/internal/services/effects"
	"github.com/mcoot/lifeboard/internal/services/game"
	"github.com/mcoot/lifeboard/internal/services/gesture"
	"github.com/mcoot/lifeboard/internal/services/lobby"
	"github.com/mcoot/lifeboard/internal/services/mutation"
	"github.com/mcoot/lifeboard/internal/storage"
	"github.com/mcoot/lifeboard/internal/storage/memory"
	redisstorage "github.com/mcoot/lifeboard/internal/storage/redis"
	"github.com/mcoot/lifeboard/internal/storage/remote"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeRemote = "remote"
)

// Backend is a document store the App owns and must close
type Backend interface {
	storage.Store
	Ping(ctx context.Context) error
	Close() error
}

// App contains all wired application components
type App struct {
	// Storage
	Storage     Backend
	StorageType string

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Policy          *effects.Policy
	Builder         *mutation.Builder
	LobbyController *lobby.Controller
	Gesture         gesture.Config

	Logger *slog.Logger
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "remote")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// RemoteConfig points at a lifeboard server (required if StorageType is "remote")
	RemoteConfig *remote.Config
	// Gesture overrides hold timing; zero value means gesture.DefaultConfig()
	Gesture gesture.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	// Create storage based on type
	var store Backend
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New(rnd, logger)
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig, rnd, logger)
		if err != nil {
			return nil, err
		}
		store = redisStore
	case StorageTypeRemote:
		if cfg.RemoteConfig == nil {
			return nil, errors.New("RemoteConfig required when StorageType is remote")
		}
		store = remote.New(*cfg.RemoteConfig, logger)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'redis' or 'remote'")
	}

	gestureCfg := cfg.Gesture
	if gestureCfg.HoldDelay == 0 {
		gestureCfg = gesture.DefaultConfig()
	}

	app := newWithDependencies(store, clk, rnd, gestureCfg, logger)
	app.StorageType = storageType
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store Backend, clk clock.Clock, rnd random.Random, gestureCfg gesture.Config, logger *slog.Logger) *App {
	// Create services
	policy := effects.New()
	builder := mutation.New(policy, clk, rnd)
	lobbyController := lobby.NewController(store, builder, clk, logger)

	return &App{
		Storage:         store,
		StorageType:     StorageTypeMemory,
		Clock:           clk,
		Random:          rnd,
		Policy:          policy,
		Builder:         builder,
		LobbyController: lobbyController,
		Gesture:         gestureCfg,
		Logger:          logger,
	}
}

// NewGameController creates a sync controller for one client view.
// Each view owns its controller and must Unsubscribe it when done.
func (a *App) NewGameController() *game.Controller {
	return game.NewController(a.Storage, a.Builder, a.Policy, a.Logger)
}

// NewPanel creates the press zones for player, submitting through submitter
func (a *App) NewPanel(player model.PlayerID, submitter board.Submitter, onError func(error)) *board.Panel {
	return board.NewPanel(player, submitter, board.PanelOptions{
		Gesture: a.Gesture,
		OnError: onError,
	}, a.Clock, a.Logger)
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}
