package testutil

import (
	"time"

	"github.com/mcoot/lifeboard/internal/model"
)

// BaseTime is the fixed instant fixtures and mock clocks start from
var BaseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// NewPlayer builds a player with starting counters, joined n seconds after BaseTime
func NewPlayer(id string, n int) *model.Player {
	return &model.Player{
		ID:              model.PlayerID(id),
		Name:            model.DefaultPlayerName(n + 1),
		Life:            model.StartingLife,
		Color:           model.Palette[n%len(model.Palette)],
		Effects:         model.Effects{"poison": 0, "monarch": false, "initiative": false},
		CommanderDamage: map[model.PlayerID]int{},
		JoinedAt:        BaseTime.Add(time.Duration(n) * time.Second),
	}
}

// NewGame builds a game holding one starting player per id
func NewGame(id string, playerIDs ...string) *model.Game {
	g := model.NewGame(model.GameID(id), "Test Game", "", BaseTime)
	for i, pid := range playerIDs {
		g.Players[model.PlayerID(pid)] = NewPlayer(pid, i)
	}
	return g
}
