// Package remote implements the document store as a client of a lifeboard server.
package remote

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"time"

	"github.com/mcoot/lifeboard/internal/api/request"
	"github.com/mcoot/lifeboard/internal/api/response"
	"github.com/mcoot/lifeboard/internal/model"
	"github.com/mcoot/lifeboard/internal/realtime"
	"github.com/mcoot/lifeboard/internal/storage"
	"github.com/mcoot/lifeboard/internal/storage/document"
)

// Config points the store at a server
type Config struct {
	// BaseURL is the server root, e.g. http://localhost:8080
	BaseURL string
	// Timeout bounds every non-streaming request
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults for a local server
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8080",
		Timeout: 30 * time.Second,
	}
}

// Storage is a document store backed by the HTTP API
type Storage struct {
	client *Client
	logger *slog.Logger
}

// New creates a new remote storage instance
func New(cfg Config, logger *slog.Logger) *Storage {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}
	return &Storage{
		client: NewClient(cfg.BaseURL, cfg.Timeout),
		logger: logger.With(slog.String("component", "remote-store")),
	}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

func gamePath(id model.GameID, suffix string) string {
	return "/api/v1/games/" + url.PathEscape(string(id)) + suffix
}

// Ping checks the server health endpoint
func (s *Storage) Ping(ctx context.Context) error {
	var health response.Health
	return s.client.Get(ctx, "/api/v1/health", &health)
}

// Health returns the server's health report
func (s *Storage) Health(ctx context.Context) (response.Health, error) {
	var health response.Health
	err := s.client.Get(ctx, "/api/v1/health", &health)
	return health, err
}

// Close drops idle connections; open subscriptions end on their own contexts
func (s *Storage) Close() error {
	s.client.Close()
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	var raw []byte
	if err := s.client.Get(ctx, gamePath(id, ""), &raw); err != nil {
		return nil, err
	}
	return document.Decode(id, raw), nil
}

// CreateGame creates the game on the server, then writes any initial players in one update
func (s *Storage) CreateGame(ctx context.Context, game *model.Game) (model.GameID, error) {
	var created model.Game
	err := s.client.Post(ctx, "/api/v1/games", request.CreateGameRequest{
		ID:       string(game.ID),
		Name:     game.Name,
		Password: game.Password,
	}, &created)
	if err != nil {
		return "", err
	}

	if len(game.Players) > 0 {
		updates := storage.Updates{}
		for pid, p := range game.Players {
			updates.Set(storage.JoinPath("players", string(pid)), p)
		}
		if err := s.ApplyPathUpdates(ctx, created.ID, updates); err != nil {
			return created.ID, err
		}
	}
	return created.ID, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	return s.client.Delete(ctx, gamePath(id, ""))
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	var list response.GameList
	if err := s.client.Get(ctx, "/api/v1/games", &list); err != nil {
		return nil, err
	}
	if list.Games == nil {
		list.Games = []*model.Game{}
	}
	return list.Games, nil
}

func (s *Storage) ApplyPathUpdates(ctx context.Context, id model.GameID, updates storage.Updates) error {
	set, deletes := updates.Split()
	return s.client.Patch(ctx, gamePath(id, ""), request.PatchGameRequest{Set: set, Delete: deletes}, nil)
}

// Subscribe reads the game's event stream until Unsubscribe or the stream ends
func (s *Storage) Subscribe(ctx context.Context, id model.GameID, onSnapshot storage.SnapshotFunc) (storage.Subscription, error) {
	// The stream outlives the caller's ctx; only Unsubscribe ends it
	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	resp, err := s.client.Stream(streamCtx, gamePath(id, "/events"))
	if err != nil {
		cancel()
		return nil, err
	}

	feed := storage.NewFeed(onSnapshot, cancel)

	go func() {
		defer func() { _ = resp.Body.Close() }()

		closed := false
		_ = realtime.ReadEvents(resp.Body, func(event, data string) {
			switch event {
			case realtime.EventSnapshot:
				feed.Deliver(document.Decode(id, []byte(data)))
			case realtime.EventClosed:
				closed = true
			}
		})

		if streamCtx.Err() != nil {
			feed.End(nil)
			return
		}
		cancel()
		feed.End(s.endReason(id, closed))
	}()

	s.logger.Debug("subscribed", slog.String("game_id", string(id)))
	return feed, nil
}

// endReason works out why the server ended a stream
func (s *Storage) endReason(id model.GameID, closedByServer bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := s.GetGame(ctx, id)
	switch {
	case errors.Is(err, model.ErrGameNotFound):
		return model.ErrGameNotFound
	case closedByServer && err == nil:
		return nil
	default:
		return model.ErrStoreUnavailable
	}
}
