package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/lifeboard/internal/dependencies/random"
	"github.com/mcoot/lifeboard/internal/model"
	"github.com/mcoot/lifeboard/internal/storage"
	"github.com/mcoot/lifeboard/internal/storage/document"
)

// Storage is a Redis-backed implementation of the document store.
// Each game is one JSON value; writes use WATCH/MULTI and publish the new snapshot.
type Storage struct {
	client *redis.Client
	cfg    Config
	random random.Random
	logger *slog.Logger
}

// New creates a new Redis storage instance
func New(cfg Config, rnd random.Random, logger *slog.Logger) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, unavailable(err)
	}

	return NewWithClient(client, cfg, rnd, logger), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config, rnd random.Random, logger *slog.Logger) *Storage {
	if cfg.MaxTxRetries <= 0 {
		cfg.MaxTxRetries = DefaultConfig().MaxTxRetries
	}
	return &Storage{
		client: client,
		cfg:    cfg,
		random: rnd,
		logger: logger.With(slog.String("component", "redis-store")),
	}
}

// Close closes the Redis connection, ending every subscription
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping checks the connection
func (s *Storage) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return unavailable(err)
	}
	return nil
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", model.ErrStoreUnavailable, err)
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	data, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, unavailable(err)
	}
	return document.Decode(id, data), nil
}

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) (model.GameID, error) {
	g := game.Clone()
	if g.ID == "" {
		g.ID = model.GameID(s.random.UUID())
	}
	if g.Players == nil {
		g.Players = make(map[model.PlayerID]*model.Player)
	}
	g.Revision = 0

	data, err := document.Encode(g)
	if err != nil {
		return "", err
	}

	ok, err := s.client.SetNX(ctx, gameKey(g.ID), data, s.cfg.GameTTL).Result()
	if err != nil {
		return "", unavailable(err)
	}
	if !ok {
		return "", model.ErrGameExists
	}
	if err := s.client.SAdd(ctx, gamesIndexKey(), string(g.ID)).Err(); err != nil {
		return "", unavailable(err)
	}

	s.logger.Debug("game created", slog.String("game_id", string(g.ID)))
	return g.ID, nil
}

func (s *Storage) DeleteGame(ctx context.Context, id model.GameID) error {
	var deleted *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, gameKey(id))
		pipe.SRem(ctx, gamesIndexKey(), string(id))
		return nil
	})
	if err != nil {
		return unavailable(err)
	}
	if deleted.Val() == 0 {
		return model.ErrGameNotFound
	}

	if err := s.client.Publish(ctx, updatesChannel(id), tombstone).Err(); err != nil {
		s.logger.Warn("failed to publish delete", slog.String("game_id", string(id)), slog.String("error", err.Error()))
	}
	return nil
}

func (s *Storage) ListGames(ctx context.Context) ([]*model.Game, error) {
	ids, err := s.client.SMembers(ctx, gamesIndexKey()).Result()
	if err != nil {
		return nil, unavailable(err)
	}
	if len(ids) == 0 {
		return []*model.Game{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = gameKey(model.GameID(id))
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, unavailable(err)
	}

	games := make([]*model.Game, 0, len(values))
	var expired []any
	for i, val := range values {
		str, ok := val.(string)
		if !ok {
			expired = append(expired, ids[i])
			continue
		}
		games = append(games, document.Decode(model.GameID(ids[i]), []byte(str)))
	}
	if len(expired) > 0 {
		// Expired documents leave stale index entries behind
		_ = s.client.SRem(ctx, gamesIndexKey(), expired...).Err()
	}

	storage.SortGames(games)
	return games, nil
}

// ApplyPathUpdates applies updates inside an optimistic transaction, retrying when
// another writer touched the document in between.
func (s *Storage) ApplyPathUpdates(ctx context.Context, id model.GameID, updates storage.Updates) error {
	if err := document.Validate(updates); err != nil {
		return err
	}

	key := gameKey(id)
	var next []byte
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrGameNotFound
			}
			return err
		}
		next, err = document.Apply(data, updates)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, s.cfg.GameTTL)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < s.cfg.MaxTxRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		switch {
		case err == nil:
			s.publish(ctx, id, next)
			return nil
		case errors.Is(err, redis.TxFailedErr):
			continue
		case errors.Is(err, model.ErrGameNotFound), errors.Is(err, model.ErrInvalidPath):
			return err
		default:
			return unavailable(err)
		}
	}
	return fmt.Errorf("%w: write contention on game %s", model.ErrStoreUnavailable, id)
}

// publish broadcasts a committed snapshot. A lost publish is repaired by the next
// write, since every message carries the whole document.
func (s *Storage) publish(ctx context.Context, id model.GameID, data []byte) {
	if err := s.client.Publish(ctx, updatesChannel(id), data).Err(); err != nil {
		s.logger.Warn("failed to publish snapshot",
			slog.String("game_id", string(id)),
			slog.String("error", err.Error()),
		)
	}
}

// Subscribe listens on the game's channel before reading the current document,
// so no committed write can fall between the two.
func (s *Storage) Subscribe(ctx context.Context, id model.GameID, onSnapshot storage.SnapshotFunc) (storage.Subscription, error) {
	pubsub := s.client.Subscribe(ctx, updatesChannel(id))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, unavailable(err)
	}

	initial, err := s.GetGame(ctx, id)
	if err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	feed := storage.NewFeed(onSnapshot, func() { _ = pubsub.Close() })
	messages := pubsub.Channel()

	go func() {
		feed.Deliver(initial)
		for msg := range messages {
			if msg.Payload == tombstone {
				feed.End(model.ErrGameNotFound)
				_ = pubsub.Close()
				return
			}
			feed.Deliver(document.Decode(id, []byte(msg.Payload)))
		}
		// Channel closed without an Unsubscribe: the connection is gone
		feed.End(model.ErrStoreUnavailable)
	}()

	s.logger.Debug("subscribed", slog.String("game_id", string(id)))
	return feed, nil
}
