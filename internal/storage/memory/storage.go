package memory

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/mcoot/lifeboard/internal/dependencies/random"
	"github.com/mcoot/lifeboard/internal/model"
	"github.com/mcoot/lifeboard/internal/realtime"
	"github.com/mcoot/lifeboard/internal/storage"
	"github.com/mcoot/lifeboard/internal/storage/document"
)

// Storage is an in-memory implementation of the document store
type Storage struct {
	mu sync.RWMutex

	games  map[model.GameID][]byte
	hubs   *realtime.HubManager
	random random.Random
	logger *slog.Logger

	// subscriber ids only label log lines; they never draw from random
	subscribers atomic.Uint64
}

// New creates a new in-memory storage instance
func New(rnd random.Random, logger *slog.Logger) *Storage {
	return &Storage{
		games:  make(map[model.GameID][]byte),
		hubs:   realtime.NewHubManager(logger),
		random: rnd,
		logger: logger.With(slog.String("component", "memory-store")),
	}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return document.Decode(id, data), nil
}

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) (model.GameID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := game.Clone()
	if g.ID == "" {
		g.ID = model.GameID(s.random.UUID())
	}
	if _, exists := s.games[g.ID]; exists {
		return "", model.ErrGameExists
	}
	if g.Players == nil {
		g.Players = make(map[model.PlayerID]*model.Player)
	}
	g.Revision = 0

	data, err := document.Encode(g)
	if err != nil {
		return "", err
	}
	s.games[g.ID] = data
	return g.ID, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return model.ErrGameNotFound
	}
	delete(s.games, id)
	s.hubs.RemoveHub(id)
	return nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	games := make([]*model.Game, 0, len(s.games))
	for id, data := range s.games {
		games = append(games, document.Decode(id, data))
	}
	storage.SortGames(games)
	return games, nil
}

func (s *Storage) ApplyPathUpdates(ctx context.Context, id model.GameID, updates storage.Updates) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.games[id]
	if !ok {
		return model.ErrGameNotFound
	}
	next, err := document.Apply(data, updates)
	if err != nil {
		return err
	}
	s.games[id] = next

	if hub := s.hubs.GetHub(id); hub != nil {
		hub.Broadcast(next)
	}
	return nil
}

// Subscribe delivers the current document, then every change, on a dedicated goroutine
func (s *Storage) Subscribe(ctx context.Context, id model.GameID, onSnapshot storage.SnapshotFunc) (storage.Subscription, error) {
	client := realtime.NewClient("sub-" + strconv.FormatUint(s.subscribers.Add(1), 10))

	s.mu.Lock()
	data, ok := s.games[id]
	if !ok {
		s.mu.Unlock()
		return nil, model.ErrGameNotFound
	}
	client.Offer(data)
	hub := s.hubs.Join(id, client)
	s.mu.Unlock()

	// The last subscriber to leave takes the game's hub with it
	feed := storage.NewFeed(onSnapshot, func() { s.hubs.Leave(hub, client) })

	go func() {
		for msg := range client.Messages() {
			feed.Deliver(document.Decode(id, msg))
		}
		// Mailbox closed: either we unsubscribed or the game was deleted
		s.mu.RLock()
		_, exists := s.games[id]
		s.mu.RUnlock()
		if exists {
			feed.End(nil)
		} else {
			feed.End(model.ErrGameNotFound)
		}
	}()

	s.logger.Debug("subscribed", slog.String("game_id", string(id)), slog.String("client", client.ID()))
	return feed, nil
}

// Close shuts down every live subscription
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.games {
		s.hubs.RemoveHub(id)
	}
	return nil
}

// Ping always succeeds for the in-process store
func (s *Storage) Ping(ctx context.Context) error {
	return nil
}
