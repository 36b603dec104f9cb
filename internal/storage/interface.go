package storage

import (
	"context"
	"sort"
	"strings"

	"github.com/mcoot/lifeboard/internal/model"
)

// deleteMarker is the type of the Delete sentinel
type deleteMarker struct{}

// Delete is the path-update value that removes the addressed subtree
var Delete any = deleteMarker{}

// IsDelete reports whether v is the Delete sentinel
func IsDelete(v any) bool {
	_, ok := v.(deleteMarker)
	return ok
}

// Updates maps dot-delimited document paths to new values.
// All entries are applied as one atomic operation.
type Updates map[string]any

// Set records a leaf write
func (u Updates) Set(path string, value any) Updates {
	u[path] = value
	return u
}

// Remove records a subtree deletion
func (u Updates) Remove(path string) Updates {
	u[path] = Delete
	return u
}

// Paths returns the paths in lexicographic order
func (u Updates) Paths() []string {
	paths := make([]string, 0, len(u))
	for p := range u {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Split separates leaf writes from deletions (used for wire encodings)
func (u Updates) Split() (set map[string]any, deletes []string) {
	set = make(map[string]any)
	for _, p := range u.Paths() {
		if IsDelete(u[p]) {
			deletes = append(deletes, p)
		} else {
			set[p] = u[p]
		}
	}
	return set, deletes
}

// JoinPath builds a document path from segments
func JoinPath(segments ...string) string {
	return strings.Join(segments, ".")
}

// SnapshotFunc receives the full current game on every change
type SnapshotFunc func(game *model.Game)

// Subscription is a live feed of game snapshots
type Subscription interface {
	// Unsubscribe stops the feed. No snapshots are delivered after it returns.
	// It must not be called from the SnapshotFunc.
	Unsubscribe()
	// Done is closed when the feed ends for any reason
	Done() <-chan struct{}
	// Err explains why the feed ended; nil after a plain Unsubscribe
	Err() error
}

// Store is the shared document store every client reads and writes
type Store interface {
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	Subscribe(ctx context.Context, id model.GameID, onSnapshot SnapshotFunc) (Subscription, error)
	ApplyPathUpdates(ctx context.Context, id model.GameID, updates Updates) error
	CreateGame(ctx context.Context, game *model.Game) (model.GameID, error)
	DeleteGame(ctx context.Context, id model.GameID) error
	ListGames(ctx context.Context) ([]*model.Game, error)
}

// SortGames orders games newest first, then by ID
func SortGames(games []*model.Game) {
	sort.Slice(games, func(i, j int) bool {
		if !games[i].CreatedAt.Equal(games[j].CreatedAt) {
			return games[i].CreatedAt.After(games[j].CreatedAt)
		}
		return games[i].ID < games[j].ID
	})
}
