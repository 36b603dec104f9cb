package model

import (
	"fmt"
	"time"
)

// PlayerID uniquely identifies a player within a game
type PlayerID string

// Color is one entry of the fixed player palette
type Color string

const (
	ColorRed    Color = "red"
	ColorOrange Color = "orange"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorTeal   Color = "teal"
	ColorBlue   Color = "blue"
	ColorPurple Color = "purple"
	ColorPink   Color = "pink"
)

// Palette lists the assignable colors in assignment order
var Palette = []Color{
	ColorRed,
	ColorOrange,
	ColorYellow,
	ColorGreen,
	ColorTeal,
	ColorBlue,
	ColorPurple,
	ColorPink,
}

// IsValid reports whether the color is part of the palette
func (c Color) IsValid() bool {
	for _, p := range Palette {
		if p == c {
			return true
		}
	}
	return false
}

// Player holds one participant's counters within a game
type Player struct {
	ID              PlayerID         `json:"id"`
	Name            string           `json:"name"`
	Life            int              `json:"life"`
	Color           Color            `json:"color,omitempty"`
	Effects         Effects          `json:"effects"`
	CommanderDamage map[PlayerID]int `json:"commanderDamage"`
	JoinedAt        time.Time        `json:"joinedAt"`
}

// DefaultPlayerName is the name given to the nth player added to a game
func DefaultPlayerName(n int) string {
	return fmt.Sprintf("Player %d", n)
}

// DamageFrom returns commander damage dealt to this player by source
func (p *Player) DamageFrom(source PlayerID) int {
	if p == nil || p.CommanderDamage == nil {
		return 0
	}
	return p.CommanderDamage[source]
}

// Clone returns a deep copy of the player
func (p *Player) Clone() *Player {
	if p == nil {
		return nil
	}
	out := *p
	out.Effects = p.Effects.Clone()
	out.CommanderDamage = make(map[PlayerID]int, len(p.CommanderDamage))
	for id, dmg := range p.CommanderDamage {
		out.CommanderDamage[id] = dmg
	}
	return &out
}

// Effects maps effect name to its stored value (bool for flags, number for counters).
// Values come straight from the shared document, so accessors tolerate any shape.
type Effects map[string]any

// Counter returns the numeric value of a counter effect, 0 if absent or malformed
func (e Effects) Counter(name string) int {
	switch v := e[name].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Flag returns the value of a flag effect, false if absent or malformed
func (e Effects) Flag(name string) bool {
	v, _ := e[name].(bool)
	return v
}

// Clone returns a shallow copy of the effect map (values are scalars)
func (e Effects) Clone() Effects {
	out := make(Effects, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}
