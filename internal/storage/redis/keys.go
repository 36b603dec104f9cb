package redis

import (
	"fmt"

	"github.com/mcoot/lifeboard/internal/model"
)

// Key prefix for all board data
const keyPrefix = "lifeboard"

// tombstone is published on a game's channel when the game is deleted
const tombstone = "deleted"

// gameKey returns the Redis key holding a game document
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// gamesIndexKey returns the Redis key for the SET of known game ids
func gamesIndexKey() string {
	return fmt.Sprintf("%s:idx:games", keyPrefix)
}

// updatesChannel returns the pub/sub channel carrying a game's snapshots
func updatesChannel(id model.GameID) string {
	return fmt.Sprintf("%s:updates:%s", keyPrefix, id)
}
