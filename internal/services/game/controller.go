// Package game keeps a client's read-only mirror of a shared game in step with the
// store and forwards intents as atomic path updates.
package game

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/mcoot/lifeboard/internal/model"
	"github.com/mcoot/lifeboard/internal/services/effects"
	"github.com/mcoot/lifeboard/internal/services/mutation"
	"github.com/mcoot/lifeboard/internal/storage"
)

// PlayerView is a player with the display state derived from the effect rules
type PlayerView struct {
	*model.Player
	Defeated   bool
	PoisonTier effects.Tier
}

// ChangeFunc observes every snapshot applied to the mirror
type ChangeFunc func(game *model.Game)

// Controller owns the local mirror of one subscribed game.
// The mirror is written only by the subscription feed; Submit never touches it.
type Controller struct {
	store   storage.Store
	builder *mutation.Builder
	policy  *effects.Policy
	logger  *slog.Logger

	mu         sync.RWMutex
	gameID     model.GameID
	game       *model.Game
	sub        storage.Subscription
	generation uint64
	ready      chan struct{}
	listeners  map[int]ChangeFunc
	nextID     int

	inFlight atomic.Int32
}

// NewController creates a new Controller
func NewController(
	store storage.Store,
	builder *mutation.Builder,
	policy *effects.Policy,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		store:     store,
		builder:   builder,
		policy:    policy,
		logger:    logger.With(slog.String("component", "game-sync")),
		ready:     make(chan struct{}),
		listeners: make(map[int]ChangeFunc),
	}
}

// Subscribe starts mirroring gameID, replacing any previous subscription
func (c *Controller) Subscribe(ctx context.Context, gameID model.GameID) error {
	c.Unsubscribe()

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.gameID = gameID
	c.game = nil
	c.ready = make(chan struct{})
	c.mu.Unlock()

	sub, err := c.store.Subscribe(ctx, gameID, func(g *model.Game) {
		c.applySnapshot(gen, g)
	})
	if err != nil {
		c.mu.Lock()
		if c.generation == gen {
			c.gameID = ""
		}
		c.mu.Unlock()
		c.logger.Warn("subscribe failed",
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()),
		)
		return err
	}

	c.mu.Lock()
	if c.generation != gen {
		// Replaced or cancelled while the store was subscribing
		c.mu.Unlock()
		sub.Unsubscribe()
		return nil
	}
	c.sub = sub
	c.mu.Unlock()

	go c.watchFeed(gameID, sub)

	c.logger.Info("subscribed", slog.String("game_id", string(gameID)))
	return nil
}

func (c *Controller) watchFeed(gameID model.GameID, sub storage.Subscription) {
	<-sub.Done()
	if err := sub.Err(); err != nil {
		c.logger.Warn("subscription ended",
			slog.String("game_id", string(gameID)),
			slog.String("error", err.Error()),
		)
	}
}

// applySnapshot replaces the mirror wholesale; snapshots from an older subscription are ignored
func (c *Controller) applySnapshot(gen uint64, g *model.Game) {
	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		return
	}
	c.game = g
	select {
	case <-c.ready:
	default:
		close(c.ready)
	}
	listeners := make([]ChangeFunc, 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(g.Clone())
	}
}

// Unsubscribe stops mirroring; it is safe to call when not subscribed
func (c *Controller) Unsubscribe() {
	c.mu.Lock()
	sub := c.sub
	gameID := c.gameID
	c.sub = nil
	c.gameID = ""
	c.game = nil
	c.generation++
	c.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
		c.logger.Info("unsubscribed", slog.String("game_id", string(gameID)))
	}
}

// GameID returns the subscribed game, or "" when not subscribed
func (c *Controller) GameID() model.GameID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gameID
}

// Ready is closed once the first snapshot of the current subscription arrives
func (c *Controller) Ready() <-chan struct{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// Done is closed when the current subscription ends; nil when not subscribed
func (c *Controller) Done() <-chan struct{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.sub == nil {
		return nil
	}
	return c.sub.Done()
}

// Err explains why the current subscription ended
func (c *Controller) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.sub == nil {
		return nil
	}
	return c.sub.Err()
}

// WaitReady blocks until the first snapshot arrives
func (c *Controller) WaitReady(ctx context.Context) error {
	c.mu.RLock()
	ready, sub := c.ready, c.sub
	c.mu.RUnlock()
	if sub == nil {
		return model.ErrNotSubscribed
	}

	select {
	case <-ready:
		return nil
	case <-sub.Done():
		if err := sub.Err(); err != nil {
			return err
		}
		return model.ErrNotSubscribed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitFor blocks until a snapshot satisfies cond. The current snapshot is checked first.
func (c *Controller) WaitFor(ctx context.Context, cond func(*model.Game) bool) error {
	matched := make(chan struct{})
	var once sync.Once
	remove := c.OnChange(func(g *model.Game) {
		if cond(g) {
			once.Do(func() { close(matched) })
		}
	})
	defer remove()

	if g := c.Snapshot(); g != nil && cond(g) {
		return nil
	}

	done := c.Done()
	if done == nil {
		return model.ErrNotSubscribed
	}

	select {
	case <-matched:
		return nil
	case <-done:
		if err := c.Err(); err != nil {
			return err
		}
		return model.ErrNotSubscribed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OnChange registers fn for every future snapshot and returns its removal func
func (c *Controller) OnChange(fn ChangeFunc) (remove func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

// Snapshot returns a copy of the last confirmed game, or nil before the first snapshot
func (c *Controller) Snapshot() *model.Game {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.game.Clone()
}

// Players returns the players in board order
func (c *Controller) Players() []*model.Player {
	return c.Snapshot().OrderedPlayers()
}

// Views returns the players in board order with derived display state
func (c *Controller) Views() []PlayerView {
	return ViewsOf(c.policy, c.Snapshot())
}

// ViewsOf derives the board views for g without a subscription
func ViewsOf(policy *effects.Policy, g *model.Game) []PlayerView {
	players := g.OrderedPlayers()
	views := make([]PlayerView, len(players))
	for i, p := range players {
		views[i] = PlayerView{
			Player:     p,
			Defeated:   policy.IsDefeated(p),
			PoisonTier: policy.DisplayTier(p.Effects.Counter(effects.Poison)),
		}
	}
	return views
}

// InFlight counts submits awaiting a store response, for a pending overlay
func (c *Controller) InFlight() int {
	return int(c.inFlight.Load())
}

// Submit builds path updates against the last snapshot and sends them as one atomic write.
// Failures are returned without retry and leave the mirror untouched. An add on a full
// game is dropped without a store call.
func (c *Controller) Submit(ctx context.Context, intent model.Intent) error {
	c.mu.RLock()
	game, gameID := c.game, c.gameID
	c.mu.RUnlock()
	if game == nil {
		return model.ErrNotSubscribed
	}

	updates, err := c.builder.Build(game, intent)
	if errors.Is(err, model.ErrGameFull) {
		c.logger.Info("add player ignored, game is full",
			slog.String("game_id", string(gameID)),
			slog.Int("player_count", game.PlayerCount()),
		)
		return nil
	}
	if err != nil {
		return err
	}
	if len(updates) == 0 {
		return nil
	}

	c.inFlight.Add(1)
	defer c.inFlight.Add(-1)

	if err := c.store.ApplyPathUpdates(ctx, gameID, updates); err != nil {
		c.logger.Warn("submit failed",
			slog.String("game_id", string(gameID)),
			slog.String("intent", model.DescribeIntent(intent)),
			slog.String("error", err.Error()),
		)
		return err
	}

	c.logger.Debug("submitted",
		slog.String("game_id", string(gameID)),
		slog.String("intent", model.DescribeIntent(intent)),
		slog.Int("paths", len(updates)),
	)
	return nil
}
