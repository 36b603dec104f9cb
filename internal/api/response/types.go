package response

import (
	"github.com/mcoot/lifeboard/internal/model"
)

// Health is the health check response
type Health struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

// GameList is the response for listing games
type GameList struct {
	Games []*model.Game `json:"games"`
}

// GameJoined is the response for joining a game. PlayerID is empty when no
// seat was taken.
type GameJoined struct {
	Game     *model.Game `json:"game"`
	PlayerID string      `json:"playerId,omitempty"`
}

// GameCreated is the response for creating a game
type GameCreated struct {
	ID string `json:"id"`
}
