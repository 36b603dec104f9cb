package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrderedPlayersUsesJoinTimeThenID(t *testing.T) {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	g := NewGame("g1", "", "", base)
	g.Players["c"] = &Player{ID: "c", JoinedAt: base.Add(2 * time.Second)}
	g.Players["b"] = &Player{ID: "b", JoinedAt: base}
	g.Players["a"] = &Player{ID: "a", JoinedAt: base}

	ids := []PlayerID{}
	for _, p := range g.OrderedPlayers() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []PlayerID{"a", "b", "c"}, ids)
}

func TestEffectsAccessorsTolerateDocumentShapes(t *testing.T) {
	e := Effects{
		"poison":  float64(3),
		"count":   int64(2),
		"monarch": true,
		"broken":  "yes",
	}
	assert.Equal(t, 3, e.Counter("poison"))
	assert.Equal(t, 2, e.Counter("count"))
	assert.Equal(t, 0, e.Counter("broken"))
	assert.Equal(t, 0, e.Counter("missing"))
	assert.True(t, e.Flag("monarch"))
	assert.False(t, e.Flag("broken"))
	assert.False(t, e.Flag("missing"))
}

func TestCloneIsDeep(t *testing.T) {
	g := NewGame("g1", "", "", time.Time{})
	g.Players["a"] = &Player{
		ID:              "a",
		Effects:         Effects{"poison": 1},
		CommanderDamage: map[PlayerID]int{"b": 3},
	}

	c := g.Clone()
	c.Players["a"].Effects["poison"] = 5
	c.Players["a"].CommanderDamage["b"] = 9
	c.Players["a"].Life = 12

	assert.Equal(t, 1, g.Players["a"].Effects.Counter("poison"))
	assert.Equal(t, 3, g.Players["a"].DamageFrom("b"))
	assert.Equal(t, 0, g.Players["a"].Life)
}

func TestColorOwnerAndValidity(t *testing.T) {
	g := NewGame("g1", "", "", time.Time{})
	g.Players["a"] = &Player{ID: "a", Color: ColorBlue}

	assert.Equal(t, PlayerID("a"), g.ColorOwner(ColorBlue).ID)
	assert.Nil(t, g.ColorOwner(ColorRed))
	assert.True(t, ColorTeal.IsValid())
	assert.False(t, Color("chartreuse").IsValid())
	assert.Len(t, Palette, MaxPlayers)
}

func TestNextDefaultNameTakesLowestFree(t *testing.T) {
	g := NewGame("g1", "", "", time.Time{})
	assert.Equal(t, "Player 1", g.NextDefaultName())

	g.Players["a"] = &Player{ID: "a", Name: "Player 1"}
	g.Players["c"] = &Player{ID: "c", Name: "Player 3"}
	assert.Equal(t, "Player 2", g.NextDefaultName())

	g.Players["b"] = &Player{ID: "b", Name: "Player 2"}
	assert.Equal(t, "Player 4", g.NextDefaultName())
}
