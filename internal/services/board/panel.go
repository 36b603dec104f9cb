// Package board binds gesture zones on a player's panel to board intents.
package board

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/lifeboard/internal/dependencies/clock"
	"github.com/mcoot/lifeboard/internal/model"
	"github.com/mcoot/lifeboard/internal/services/effects"
	"github.com/mcoot/lifeboard/internal/services/gesture"
)

// ZoneName identifies one press zone on a player panel
type ZoneName string

const (
	ZoneLifeUp     ZoneName = "life-up"
	ZoneLifeDown   ZoneName = "life-down"
	ZonePoisonUp   ZoneName = "poison-up"
	ZonePoisonDown ZoneName = "poison-down"
)

// ZoneNames lists the panel zones in display order
var ZoneNames = []ZoneName{ZoneLifeUp, ZoneLifeDown, ZonePoisonUp, ZonePoisonDown}

// Submitter sends an intent to the shared game
type Submitter interface {
	Submit(ctx context.Context, intent model.Intent) error
}

// IntentFunc builds the intent for an emitted delta
type IntentFunc func(delta int) model.Intent

// Adjuster turns the emissions of one gesture zone into submitted intents
type Adjuster struct {
	zone       *gesture.Zone
	makeIntent IntentFunc
	submitter  Submitter
	onError    func(error)

	ctx    context.Context
	wg     *sync.WaitGroup
	logger *slog.Logger
}

// NewAdjuster creates an Adjuster. Submits run asynchronously under ctx and are tracked by wg.
func NewAdjuster(
	ctx context.Context,
	wg *sync.WaitGroup,
	name string,
	step int,
	makeIntent IntentFunc,
	submitter Submitter,
	onError func(error),
	cfg gesture.Config,
	clk clock.Clock,
	logger *slog.Logger,
) *Adjuster {
	a := &Adjuster{
		makeIntent: makeIntent,
		submitter:  submitter,
		onError:    onError,
		ctx:        ctx,
		wg:         wg,
		logger:     logger,
	}
	a.zone = gesture.NewZone(name, step, cfg, clk, a.handle, logger)
	return a
}

// Zone returns the underlying gesture zone
func (a *Adjuster) Zone() *gesture.Zone {
	return a.zone
}

func (a *Adjuster) handle(adj gesture.Adjustment) {
	intent := a.makeIntent(adj.Delta)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.submitter.Submit(a.ctx, intent); err != nil {
			a.logger.Warn("adjustment rejected",
				slog.String("zone", a.zone.Name()),
				slog.String("kind", adj.Kind.String()),
				slog.String("error", err.Error()),
			)
			if a.onError != nil {
				a.onError(err)
			}
		}
	}()
}

// Panel owns the press zones for one player
type Panel struct {
	player    model.PlayerID
	adjusters map[ZoneName]*Adjuster

	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// PanelOptions configures a Panel
type PanelOptions struct {
	Gesture gesture.Config
	// OnError receives failed submits for a transient message; board state is untouched
	OnError func(error)
}

// NewPanel creates the life and poison zones for player
func NewPanel(player model.PlayerID, submitter Submitter, opts PanelOptions, clk clock.Clock, logger *slog.Logger) *Panel {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Panel{
		player:    player,
		adjusters: make(map[ZoneName]*Adjuster, len(ZoneNames)),
		cancel:    cancel,
	}
	logger = logger.With(slog.String("component", "board-panel"), slog.String("player_id", string(player)))

	life := func(delta int) model.Intent { return model.AdjustLife{Player: player, Delta: delta} }
	poison := func(delta int) model.Intent {
		return model.AdjustEffect{Player: player, Effect: effects.Poison, Delta: delta}
	}
	steps := map[ZoneName]struct {
		step int
		fn   IntentFunc
	}{
		ZoneLifeUp:     {1, life},
		ZoneLifeDown:   {-1, life},
		ZonePoisonUp:   {1, poison},
		ZonePoisonDown: {-1, poison},
	}
	for _, name := range ZoneNames {
		cfg := steps[name]
		p.adjusters[name] = NewAdjuster(ctx, &p.wg, string(name), cfg.step, cfg.fn, submitter, opts.OnError, opts.Gesture, clk, logger)
	}
	return p
}

// Player returns the player this panel adjusts
func (p *Panel) Player() model.PlayerID {
	return p.player
}

// Zone returns the named zone
func (p *Panel) Zone(name ZoneName) (*gesture.Zone, error) {
	a, ok := p.adjusters[name]
	if !ok {
		return nil, fmt.Errorf("unknown zone %q", name)
	}
	return a.Zone(), nil
}

// Wait blocks until every submitted adjustment has completed
func (p *Panel) Wait() {
	p.wg.Wait()
}

// Close cancels pending hold timers, then waits for outstanding submits
func (p *Panel) Close() {
	p.once.Do(func() {
		for _, a := range p.adjusters {
			a.zone.Close()
		}
		p.wg.Wait()
		p.cancel()
	})
}
