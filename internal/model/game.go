package model

import (
	"sort"
	"time"
)

// GameID identifies a shared game document
type GameID string

const (
	// MaxPlayers is the most players a single game can hold
	MaxPlayers = 8
	// StartingLife is the life total for new and reset players
	StartingLife = 40
)

// Game is the root shared document for one play session
type Game struct {
	ID        GameID               `json:"id"`
	Name      string               `json:"name,omitempty"`
	Password  string               `json:"password,omitempty"` // Stored and compared in plaintext
	CreatedAt time.Time            `json:"createdAt"`
	Revision  int64                `json:"revision"`
	Players   map[PlayerID]*Player `json:"players"`
}

// NewGame creates an empty game document
func NewGame(id GameID, name, password string, createdAt time.Time) *Game {
	return &Game{
		ID:        id,
		Name:      name,
		Password:  password,
		CreatedAt: createdAt,
		Players:   make(map[PlayerID]*Player),
	}
}

// GetPlayer returns the player with the given ID, or nil if absent
func (g *Game) GetPlayer(id PlayerID) *Player {
	if g == nil || g.Players == nil {
		return nil
	}
	return g.Players[id]
}

// PlayerCount returns the number of players in the game
func (g *Game) PlayerCount() int {
	if g == nil {
		return 0
	}
	return len(g.Players)
}

// IsFull reports whether the game has reached MaxPlayers
func (g *Game) IsFull() bool {
	return g.PlayerCount() >= MaxPlayers
}

// HasPassword reports whether joining requires a secret
func (g *Game) HasPassword() bool {
	return g != nil && g.Password != ""
}

// OrderedPlayers returns players by join time, then by ID.
// Board order never depends on the order updates arrived in.
func (g *Game) OrderedPlayers() []*Player {
	if g == nil {
		return nil
	}
	players := make([]*Player, 0, len(g.Players))
	for _, p := range g.Players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool {
		a, b := players[i], players[j]
		if !a.JoinedAt.Equal(b.JoinedAt) {
			return a.JoinedAt.Before(b.JoinedAt)
		}
		return a.ID < b.ID
	})
	return players
}

// ColorOwner returns the player currently holding the color, or nil
func (g *Game) ColorOwner(c Color) *Player {
	if g == nil || c == "" {
		return nil
	}
	for _, p := range g.OrderedPlayers() {
		if p.Color == c {
			return p
		}
	}
	return nil
}

// UsedColors returns the set of colors held by any player
func (g *Game) UsedColors() map[Color]bool {
	used := make(map[Color]bool)
	if g == nil {
		return used
	}
	for _, p := range g.Players {
		if p.Color != "" {
			used[p.Color] = true
		}
	}
	return used
}

// NextDefaultName returns the lowest "Player N" not already used as a name
func (g *Game) NextDefaultName() string {
	used := make(map[string]bool)
	if g != nil {
		for _, p := range g.Players {
			used[p.Name] = true
		}
	}
	for n := 1; ; n++ {
		if name := DefaultPlayerName(n); !used[name] {
			return name
		}
	}
}

// Clone returns a deep copy of the game
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	out := *g
	out.Players = make(map[PlayerID]*Player, len(g.Players))
	for id, p := range g.Players {
		out.Players[id] = p.Clone()
	}
	return &out
}
