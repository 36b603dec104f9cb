package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/lifeboard/internal/model"
)

func TestIsDefeatedBoundaries(t *testing.T) {
	p := New()

	tests := []struct {
		name     string
		life     int
		poison   int
		expected bool
	}{
		{name: "healthy", life: 40, poison: 0, expected: false},
		{name: "life one", life: 1, poison: 0, expected: false},
		{name: "life zero", life: 0, poison: 0, expected: true},
		{name: "negative life", life: -3, poison: 0, expected: true},
		{name: "poison nine", life: 20, poison: 9, expected: false},
		{name: "poison ten", life: 20, poison: 10, expected: true},
		{name: "poison eleven", life: 20, poison: 11, expected: true},
		{name: "both lethal", life: 0, poison: 10, expected: true},
		{name: "life one poison nine", life: 1, poison: 9, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player := &model.Player{
				Life:    tt.life,
				Effects: model.Effects{Poison: tt.poison},
			}
			assert.Equal(t, tt.expected, p.IsDefeated(player))
		})
	}
}

func TestIsDefeatedNilPlayer(t *testing.T) {
	assert.False(t, New().IsDefeated(nil))
}

func TestDisplayTier(t *testing.T) {
	p := New()

	tests := []struct {
		value    int
		expected Tier
	}{
		{0, TierLow},
		{2, TierLow},
		{3, TierMid},
		{4, TierMid},
		{6, TierMid},
		{7, TierHigh},
		{9, TierHigh},
		{10, TierCritical},
		{25, TierCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, p.DisplayTier(tt.value), "value %d", tt.value)
	}
}

func TestClamp(t *testing.T) {
	p := New()

	v, err := p.Clamp(Poison, -4)
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	v, err = p.Clamp(Poison, float64(14))
	require.NoError(t, err)
	assert.Equal(t, 14, v, "no ceiling at the storage layer")

	v, err = p.Clamp(Monarch, true)
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = p.Clamp(Monarch, "garbage")
	require.NoError(t, err)
	assert.Equal(t, false, v)

	_, err = p.Clamp("hexproof", 1)
	assert.ErrorIs(t, err, model.ErrUnknownEffect)
}

func TestRegistry(t *testing.T) {
	p := New()

	assert.True(t, p.IsCounterEffect(Poison))
	assert.False(t, p.IsCounterEffect(Monarch))
	assert.True(t, p.IsFlagEffect(Initiative))
	assert.False(t, p.IsFlagEffect("hexproof"))

	assert.Equal(t, model.Effects{Poison: 0, Monarch: false, Initiative: false}, p.Defaults())

	defs := p.Definitions()
	require.Len(t, defs, 3)
	assert.Equal(t, Poison, defs[0].Name)
	assert.Equal(t, "counter", defs[0].Kind.String())
}
