// Package document applies dot-path updates to JSON game documents.
// Both the memory and redis backends keep games as JSON and share this code.
package document

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mcoot/lifeboard/internal/model"
	"github.com/mcoot/lifeboard/internal/storage"
)

const (
	fieldID       = "id"
	fieldRevision = "revision"
)

// Encode serializes a game document
func Encode(game *model.Game) ([]byte, error) {
	return json.Marshal(game)
}

// Decode parses a game document. Malformed or empty input yields an empty game
// with the given ID rather than an error.
func Decode(id model.GameID, data []byte) *model.Game {
	var game model.Game
	if len(data) == 0 || json.Unmarshal(data, &game) != nil {
		return model.NewGame(id, "", "", game.CreatedAt)
	}
	normalize(id, &game)
	return &game
}

// normalize fills defaults so readers never see nil maps or blank ids
func normalize(id model.GameID, game *model.Game) {
	if game.ID == "" {
		game.ID = id
	}
	if game.Players == nil {
		game.Players = make(map[model.PlayerID]*model.Player)
	}
	for pid, p := range game.Players {
		if p == nil {
			delete(game.Players, pid)
			continue
		}
		if p.ID == "" {
			p.ID = pid
		}
		if p.Effects == nil {
			p.Effects = make(model.Effects)
		}
		if p.CommanderDamage == nil {
			p.CommanderDamage = make(map[model.PlayerID]int)
		}
	}
}

// Validate checks every path in updates without applying anything
func Validate(updates storage.Updates) error {
	paths := updates.Paths()
	for i, p := range paths {
		segs, err := splitPath(p)
		if err != nil {
			return err
		}
		if segs[0] == fieldID || segs[0] == fieldRevision {
			return fmt.Errorf("%w: %q is read-only", model.ErrInvalidPath, p)
		}
		for _, other := range paths[i+1:] {
			if strings.HasPrefix(other, p+".") || strings.HasPrefix(p, other+".") {
				return fmt.Errorf("%w: %q overlaps %q", model.ErrInvalidPath, p, other)
			}
		}
	}
	return nil
}

// Apply performs all updates on the encoded document and bumps its revision.
// Either every update is applied or none is.
func Apply(data []byte, updates storage.Updates) ([]byte, error) {
	if err := Validate(updates); err != nil {
		return nil, err
	}

	tree := map[string]any{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &tree); err != nil || tree == nil {
			tree = map[string]any{}
		}
	}

	for _, p := range updates.Paths() {
		segs, _ := splitPath(p)
		value := updates[p]
		if storage.IsDelete(value) {
			deletePath(tree, segs)
			continue
		}
		normalized, err := toJSONValue(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", model.ErrInvalidPath, p, err)
		}
		setPath(tree, segs, normalized)
	}

	rev, _ := tree[fieldRevision].(float64)
	tree[fieldRevision] = int64(rev) + 1

	return json.Marshal(tree)
}

func splitPath(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", model.ErrInvalidPath)
	}
	segs := strings.Split(path, ".")
	for _, s := range segs {
		if s == "" {
			return nil, fmt.Errorf("%w: %q", model.ErrInvalidPath, path)
		}
	}
	return segs, nil
}

func setPath(tree map[string]any, segs []string, value any) {
	node := tree
	for _, s := range segs[:len(segs)-1] {
		child, ok := node[s].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[s] = child
		}
		node = child
	}
	node[segs[len(segs)-1]] = value
}

func deletePath(tree map[string]any, segs []string) {
	node := tree
	for _, s := range segs[:len(segs)-1] {
		child, ok := node[s].(map[string]any)
		if !ok {
			return
		}
		node = child
	}
	delete(node, segs[len(segs)-1])
}

// toJSONValue converts typed values (structs, typed maps) to plain JSON values
func toJSONValue(v any) (any, error) {
	switch v.(type) {
	case nil, bool, string, float64, map[string]any:
		return v, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}
