package components

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/mcoot/lifeboard/internal/model"
	"github.com/mcoot/lifeboard/internal/services/effects"
	"github.com/mcoot/lifeboard/internal/services/game"
)

// BoardID is the element id swapped by board events
const BoardID = "board"

// BoardData is everything needed to draw one game's board
type BoardData struct {
	Game   *model.Game
	Views  []game.PlayerView
	Policy *effects.Policy
}

// NewBoardData derives the board views for g
func NewBoardData(g *model.Game, policy *effects.Policy) BoardData {
	return BoardData{
		Game:   g,
		Views:  game.ViewsOf(policy, g),
		Policy: policy,
	}
}

// Layout names the grid as columns x rows for the number of panels on the board
func (d BoardData) Layout() string {
	switch n := len(d.Views); {
	case n <= 1:
		return "1x1"
	case n == 2:
		return "2x1"
	case n <= 4:
		return "2x2"
	case n <= 6:
		return "3x2"
	default:
		return "4x2"
	}
}

// Wide reports whether panel i spans two columns. The last panel of an odd board does.
func (d BoardData) Wide(i int) bool {
	n := len(d.Views)
	return n > 1 && n%2 == 1 && i == n-1
}

// URL is the address of a game level action
func (d BoardData) URL(segments ...string) templ.SafeURL {
	return GameURL(d.Game.ID, segments...)
}

// PlayerURL is the address of an action on one player
func (d BoardData) PlayerURL(id model.PlayerID, segments ...string) templ.SafeURL {
	return GameURL(d.Game.ID, append([]string{"players", string(id)}, segments...)...)
}

// GameURL joins path-escaped segments under the game's root
func GameURL(id model.GameID, segments ...string) templ.SafeURL {
	path := "/games/" + url.PathEscape(string(id))
	for _, s := range segments {
		path += "/" + url.PathEscape(s)
	}
	return templ.URL(path)
}

type hiddenField struct {
	Name  string
	Value string
}

var toggleField = []hiddenField{{Name: "toggle", Value: "true"}}

func deltaField(n int) []hiddenField {
	return []hiddenField{{Name: "delta", Value: strconv.Itoa(n)}}
}

func damageFields(source model.PlayerID, n int) []hiddenField {
	return []hiddenField{
		{Name: "source", Value: string(source)},
		{Name: "delta", Value: strconv.Itoa(n)},
	}
}

// Render draws a component to a string, for SSE payloads
func Render(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", fmt.Errorf("render: %w", err)
	}
	return buf.String(), nil
}
