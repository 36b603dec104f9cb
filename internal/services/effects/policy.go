// Package effects is the single registry of status effects and the rules
// derived from them (clamping, display tiers, the defeated condition).
package effects

import (
	"fmt"

	"github.com/mcoot/lifeboard/internal/model"
)

// Kind distinguishes stacking counters from on/off flags
type Kind int

const (
	KindCounter Kind = iota
	KindFlag
)

func (k Kind) String() string {
	switch k {
	case KindCounter:
		return "counter"
	case KindFlag:
		return "flag"
	default:
		return "unknown"
	}
}

// Registered effect names
const (
	Poison     = "poison"
	Monarch    = "monarch"
	Initiative = "initiative"
)

const (
	// PoisonLethal is the poison count at which a player is defeated.
	// Fixed game rule, not configurable.
	PoisonLethal = 10
	// CounterSoftCap is the display-only threshold for the critical tier.
	// Storage is never clamped to it.
	CounterSoftCap = 10
)

// Tier is a presentation bucket for counter values
type Tier string

const (
	TierLow      Tier = "low"
	TierMid      Tier = "mid"
	TierHigh     Tier = "high"
	TierCritical Tier = "critical"
)

// Definition describes one known effect
type Definition struct {
	Name  string
	Label string
	Kind  Kind
}

// Default returns the reset value for the effect
func (d Definition) Default() any {
	if d.Kind == KindCounter {
		return 0
	}
	return false
}

// Policy answers every effect question for the rest of the system
type Policy struct {
	definitions []Definition
	byName      map[string]Definition
}

// DefaultDefinitions returns the effects tracked on every player
func DefaultDefinitions() []Definition {
	return []Definition{
		{Name: Poison, Label: "Poison", Kind: KindCounter},
		{Name: Monarch, Label: "Monarch", Kind: KindFlag},
		{Name: Initiative, Label: "Initiative", Kind: KindFlag},
	}
}

// New creates a Policy with the default registry
func New() *Policy {
	return NewWithDefinitions(DefaultDefinitions())
}

// NewWithDefinitions creates a Policy with a custom registry
func NewWithDefinitions(defs []Definition) *Policy {
	p := &Policy{
		definitions: make([]Definition, len(defs)),
		byName:      make(map[string]Definition, len(defs)),
	}
	copy(p.definitions, defs)
	for _, d := range defs {
		p.byName[d.Name] = d
	}
	return p
}

// Definitions returns the registered effects in display order
func (p *Policy) Definitions() []Definition {
	out := make([]Definition, len(p.definitions))
	copy(out, p.definitions)
	return out
}

// Lookup returns the definition for name
func (p *Policy) Lookup(name string) (Definition, error) {
	d, ok := p.byName[name]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %q", model.ErrUnknownEffect, name)
	}
	return d, nil
}

// IsCounterEffect reports whether name is a registered counter
func (p *Policy) IsCounterEffect(name string) bool {
	d, ok := p.byName[name]
	return ok && d.Kind == KindCounter
}

// IsFlagEffect reports whether name is a registered flag
func (p *Policy) IsFlagEffect(name string) bool {
	d, ok := p.byName[name]
	return ok && d.Kind == KindFlag
}

// Clamp normalizes a raw value for the named effect.
// Counters are floored at 0 with no ceiling; flags become plain bools.
func (p *Policy) Clamp(name string, raw any) (any, error) {
	d, err := p.Lookup(name)
	if err != nil {
		return nil, err
	}
	if d.Kind == KindFlag {
		v, _ := raw.(bool)
		return v, nil
	}
	return ClampCounter(model.Effects{name: raw}.Counter(name)), nil
}

// ClampCounter applies the counter floor
func ClampCounter(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// Defaults returns a fresh effect map with every registered effect at its default
func (p *Policy) Defaults() model.Effects {
	out := make(model.Effects, len(p.definitions))
	for _, d := range p.definitions {
		out[d.Name] = d.Default()
	}
	return out
}

// IsDefeated is true iff life < 1 or poison >= PoisonLethal
func (p *Policy) IsDefeated(player *model.Player) bool {
	if player == nil {
		return false
	}
	return player.Life < 1 || player.Effects.Counter(Poison) >= PoisonLethal
}

// DisplayTier buckets a counter value for presentation
func (p *Policy) DisplayTier(v int) Tier {
	switch {
	case v >= CounterSoftCap:
		return TierCritical
	case v >= 7:
		return TierHigh
	case v >= 3:
		return TierMid
	default:
		return TierLow
	}
}
