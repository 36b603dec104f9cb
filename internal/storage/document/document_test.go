package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/lifeboard/internal/model"
	"github.com/mcoot/lifeboard/internal/storage"
)

func seedDocument(t *testing.T) []byte {
	t.Helper()
	g := model.NewGame("game-1", "Friday", "", time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	g.Players["a"] = &model.Player{
		ID:              "a",
		Name:            "Alice",
		Life:            40,
		Color:           model.ColorRed,
		Effects:         model.Effects{"poison": 0, "monarch": false},
		CommanderDamage: map[model.PlayerID]int{},
	}
	g.Players["b"] = &model.Player{ID: "b", Name: "Bob", Life: 40}
	data, err := Encode(g)
	require.NoError(t, err)
	return data
}

func TestApplyLeafWritesLeaveSiblingsAlone(t *testing.T) {
	data := seedDocument(t)

	out, err := Apply(data, storage.Updates{
		"players.a.life":           35,
		"players.a.effects.poison": 2,
	})
	require.NoError(t, err)

	g := Decode("game-1", out)
	assert.Equal(t, 35, g.Players["a"].Life)
	assert.Equal(t, 2, g.Players["a"].Effects.Counter("poison"))
	assert.False(t, g.Players["a"].Effects.Flag("monarch"))
	assert.Equal(t, "Alice", g.Players["a"].Name)
	assert.Equal(t, model.ColorRed, g.Players["a"].Color)
	assert.Equal(t, 40, g.Players["b"].Life)
	assert.Equal(t, int64(1), g.Revision)
}

func TestApplyCreatesIntermediateObjects(t *testing.T) {
	data := seedDocument(t)

	out, err := Apply(data, storage.Updates{"players.b.commanderDamage.a": 7})
	require.NoError(t, err)

	g := Decode("game-1", out)
	assert.Equal(t, 7, g.Players["b"].DamageFrom("a"))
}

func TestApplyDeleteRemovesSubtree(t *testing.T) {
	data := seedDocument(t)

	out, err := Apply(data, storage.Updates{}.Remove("players.a"))
	require.NoError(t, err)

	g := Decode("game-1", out)
	assert.Nil(t, g.GetPlayer("a"))
	assert.NotNil(t, g.GetPlayer("b"))
}

func TestApplyDeleteMissingPathIsNoop(t *testing.T) {
	data := seedDocument(t)

	out, err := Apply(data, storage.Updates{}.Remove("players.zz.effects"))
	require.NoError(t, err)
	assert.Equal(t, 2, Decode("game-1", out).PlayerCount())
}

func TestApplyTypedValues(t *testing.T) {
	data := seedDocument(t)
	joined := time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC)

	out, err := Apply(data, storage.Updates{
		"players.c": &model.Player{
			ID:              "c",
			Name:            "Cara",
			Life:            40,
			Effects:         model.Effects{"poison": 0},
			CommanderDamage: map[model.PlayerID]int{},
			JoinedAt:        joined,
		},
	})
	require.NoError(t, err)

	c := Decode("game-1", out).GetPlayer("c")
	require.NotNil(t, c)
	assert.Equal(t, "Cara", c.Name)
	assert.True(t, joined.Equal(c.JoinedAt))
}

func TestApplyRevisionIncrements(t *testing.T) {
	data := seedDocument(t)
	var err error
	for i := 0; i < 3; i++ {
		data, err = Apply(data, storage.Updates{"players.a.life": i})
		require.NoError(t, err)
	}
	assert.Equal(t, int64(3), Decode("game-1", data).Revision)
}

func TestValidateRejectsBadPaths(t *testing.T) {
	tests := []struct {
		name    string
		updates storage.Updates
	}{
		{name: "empty path", updates: storage.Updates{"": 1}},
		{name: "empty segment", updates: storage.Updates{"players..life": 1}},
		{name: "trailing dot", updates: storage.Updates{"players.a.": 1}},
		{name: "overlap", updates: storage.Updates{"players.a": 1, "players.a.life": 2}},
		{name: "revision", updates: storage.Updates{"revision": 9}},
		{name: "id", updates: storage.Updates{"id": "other"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Apply(seedDocument(t), tt.updates)
			assert.ErrorIs(t, err, model.ErrInvalidPath)
		})
	}
}

func TestValidateAllowsSimilarPrefixes(t *testing.T) {
	err := Validate(storage.Updates{"players.a": 1, "players.ab": 2, "players.a-b.life": 3})
	assert.NoError(t, err)
}

func TestDecodeMalformedIsEmptyGame(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("not json"), []byte("[1,2]"), []byte("null")} {
		g := Decode("game-9", data)
		require.NotNil(t, g)
		assert.Equal(t, model.GameID("game-9"), g.ID)
		assert.Equal(t, 0, g.PlayerCount())
	}
}

func TestDecodeNormalizesPlayers(t *testing.T) {
	g := Decode("game-1", []byte(`{"players":{"x":{"life":3},"y":null}}`))
	require.Equal(t, 1, g.PlayerCount())
	x := g.GetPlayer("x")
	assert.Equal(t, model.PlayerID("x"), x.ID)
	assert.NotNil(t, x.Effects)
	assert.NotNil(t, x.CommanderDamage)
}
