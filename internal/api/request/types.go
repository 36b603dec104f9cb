package request

// CreateGameRequest is the request body for creating a game
type CreateGameRequest struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password,omitempty"`
}

// JoinGameRequest is the request body for joining a game. A non-empty
// PlayerName also seats a new player.
type JoinGameRequest struct {
	Password   string `json:"password"`
	PlayerName string `json:"playerName,omitempty"`
}

// PatchGameRequest applies leaf writes and subtree deletions as one atomic update
type PatchGameRequest struct {
	Set    map[string]any `json:"set,omitempty"`
	Delete []string       `json:"delete,omitempty"`
}
