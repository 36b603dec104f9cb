// Package mutation turns board intents into leaf-scoped document path updates.
package mutation

import (
	"fmt"
	"strings"

	"github.com/mcoot/lifeboard/internal/dependencies/clock"
	"github.com/mcoot/lifeboard/internal/dependencies/random"
	"github.com/mcoot/lifeboard/internal/model"
	"github.com/mcoot/lifeboard/internal/services/effects"
	"github.com/mcoot/lifeboard/internal/storage"
)

// Document field names used in paths
const (
	fieldPlayers         = "players"
	fieldLife            = "life"
	fieldEffects         = "effects"
	fieldCommanderDamage = "commanderDamage"
	fieldColor           = "color"
	fieldName            = "name"
)

// Builder computes the minimal set of path writes for an intent against a game snapshot
type Builder struct {
	policy *effects.Policy
	clock  clock.Clock
	random random.Random
}

// New creates a new Builder
func New(policy *effects.Policy, clk clock.Clock, rnd random.Random) *Builder {
	return &Builder{
		policy: policy,
		clock:  clk,
		random: rnd,
	}
}

// PlayerPath returns the path of a player's subtree, or of a field beneath it
func PlayerPath(id model.PlayerID, fields ...string) string {
	return storage.JoinPath(append([]string{fieldPlayers, string(id)}, fields...)...)
}

// Build returns the path updates for intent. The updates must be applied as one
// atomic store operation. ErrGameFull is returned for an add on a full game; callers
// treat it as a no-op.
func (b *Builder) Build(game *model.Game, intent model.Intent) (storage.Updates, error) {
	switch in := intent.(type) {
	case model.AdjustLife:
		return b.adjustLife(game, in)
	case model.ToggleEffect:
		return b.toggleEffect(game, in)
	case model.AdjustEffect:
		return b.adjustEffect(game, in)
	case model.AdjustCommanderDamage:
		return b.adjustCommanderDamage(game, in)
	case model.SetColor:
		return b.setColor(game, in)
	case model.RenamePlayer:
		return b.rename(game, in)
	case model.RemovePlayer:
		return b.removePlayer(game, in)
	case model.ResetGame:
		return b.reset(game), nil
	case model.AddPlayer:
		return b.addPlayer(game, in)
	default:
		return nil, fmt.Errorf("%w: %T", model.ErrInvalidIntent, intent)
	}
}

func requirePlayer(game *model.Game, id model.PlayerID) (*model.Player, error) {
	p := game.GetPlayer(id)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", model.ErrPlayerNotFound, id)
	}
	return p, nil
}

// adjustLife has no floor; negative life is a valid stored state
func (b *Builder) adjustLife(game *model.Game, in model.AdjustLife) (storage.Updates, error) {
	p, err := requirePlayer(game, in.Player)
	if err != nil {
		return nil, err
	}
	return storage.Updates{}.Set(PlayerPath(p.ID, fieldLife), p.Life+in.Delta), nil
}

func (b *Builder) toggleEffect(game *model.Game, in model.ToggleEffect) (storage.Updates, error) {
	p, err := requirePlayer(game, in.Player)
	if err != nil {
		return nil, err
	}
	if _, err := b.policy.Lookup(in.Effect); err != nil {
		return nil, err
	}
	if !b.policy.IsFlagEffect(in.Effect) {
		return nil, fmt.Errorf("%w: %s is not a flag", model.ErrEffectKind, in.Effect)
	}
	return storage.Updates{}.Set(PlayerPath(p.ID, fieldEffects, in.Effect), !p.Effects.Flag(in.Effect)), nil
}

func (b *Builder) adjustEffect(game *model.Game, in model.AdjustEffect) (storage.Updates, error) {
	p, err := requirePlayer(game, in.Player)
	if err != nil {
		return nil, err
	}
	if _, err := b.policy.Lookup(in.Effect); err != nil {
		return nil, err
	}
	if !b.policy.IsCounterEffect(in.Effect) {
		return nil, fmt.Errorf("%w: %s is not a counter", model.ErrEffectKind, in.Effect)
	}
	value, err := b.policy.Clamp(in.Effect, p.Effects.Counter(in.Effect)+in.Delta)
	if err != nil {
		return nil, err
	}
	return storage.Updates{}.Set(PlayerPath(p.ID, fieldEffects, in.Effect), value), nil
}

// adjustCommanderDamage only touches the target's entry for the source.
// Damage the target dealt back to the source is a separate leaf.
func (b *Builder) adjustCommanderDamage(game *model.Game, in model.AdjustCommanderDamage) (storage.Updates, error) {
	if in.Source == in.Target {
		return nil, fmt.Errorf("%w: commander damage source and target are both %s", model.ErrInvalidIntent, in.Source)
	}
	if _, err := requirePlayer(game, in.Source); err != nil {
		return nil, err
	}
	target, err := requirePlayer(game, in.Target)
	if err != nil {
		return nil, err
	}
	value := effects.ClampCounter(target.DamageFrom(in.Source) + in.Delta)
	return storage.Updates{}.Set(PlayerPath(target.ID, fieldCommanderDamage, string(in.Source)), value), nil
}

// setColor checks uniqueness against the snapshot only. Two clients racing for the
// same color can both succeed.
func (b *Builder) setColor(game *model.Game, in model.SetColor) (storage.Updates, error) {
	p, err := requirePlayer(game, in.Player)
	if err != nil {
		return nil, err
	}
	if in.Color == "" {
		return storage.Updates{}.Remove(PlayerPath(p.ID, fieldColor)), nil
	}
	if !in.Color.IsValid() {
		return nil, fmt.Errorf("%w: %s", model.ErrInvalidColor, in.Color)
	}
	if owner := game.ColorOwner(in.Color); owner != nil && owner.ID != p.ID {
		return nil, fmt.Errorf("%w: %s holds %s", model.ErrColorTaken, owner.ID, in.Color)
	}
	return storage.Updates{}.Set(PlayerPath(p.ID, fieldColor), string(in.Color)), nil
}

func (b *Builder) rename(game *model.Game, in model.RenamePlayer) (storage.Updates, error) {
	p, err := requirePlayer(game, in.Player)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", model.ErrInvalidIntent)
	}
	return storage.Updates{}.Set(PlayerPath(p.ID, fieldName), name), nil
}

func (b *Builder) removePlayer(game *model.Game, in model.RemovePlayer) (storage.Updates, error) {
	p, err := requirePlayer(game, in.Player)
	if err != nil {
		return nil, err
	}
	return storage.Updates{}.Remove(PlayerPath(p.ID)), nil
}

// reset rewrites counters only; identity, name and color stay as they are
func (b *Builder) reset(game *model.Game) storage.Updates {
	updates := storage.Updates{}
	for _, p := range game.OrderedPlayers() {
		updates.Set(PlayerPath(p.ID, fieldLife), model.StartingLife)
		updates.Set(PlayerPath(p.ID, fieldEffects), map[string]any(b.policy.Defaults()))
		updates.Set(PlayerPath(p.ID, fieldCommanderDamage), map[string]any{})
	}
	return updates
}

func (b *Builder) addPlayer(game *model.Game, in model.AddPlayer) (storage.Updates, error) {
	_, updates, err := b.NewPlayer(game, in.Name)
	return updates, err
}

// NewPlayer builds the player an AddPlayer intent adds, with the update that stores it.
// A blank name gets the lowest free default name.
func (b *Builder) NewPlayer(game *model.Game, name string) (*model.Player, storage.Updates, error) {
	if game.IsFull() {
		return nil, nil, model.ErrGameFull
	}

	id := model.PlayerID(b.random.UUID())
	for game.GetPlayer(id) != nil {
		id = model.PlayerID(b.random.UUID())
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = game.NextDefaultName()
	}

	player := &model.Player{
		ID:              id,
		Name:            name,
		Life:            model.StartingLife,
		Color:           b.NextColor(game),
		Effects:         b.policy.Defaults(),
		CommanderDamage: map[model.PlayerID]int{},
		JoinedAt:        b.clock.Now().UTC(),
	}
	return player, storage.Updates{}.Set(PlayerPath(id), player), nil
}

// NextColor returns the first palette color nobody holds, or a uniformly random
// palette entry when all are taken
func (b *Builder) NextColor(game *model.Game) model.Color {
	used := game.UsedColors()
	for _, c := range model.Palette {
		if !used[c] {
			return c
		}
	}
	return model.Palette[b.random.Intn(len(model.Palette))]
}
