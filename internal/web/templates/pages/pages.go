package pages

import (
	"fmt"

	"github.com/mcoot/lifeboard/internal/model"
	"github.com/mcoot/lifeboard/internal/web/templates/components"
	"github.com/mcoot/lifeboard/internal/web/templates/layout"
)

// HomeData lists the open games
type HomeData struct {
	layout.PageData
	Games []*model.Game
}

// GameData is the board page for one game
type GameData struct {
	layout.PageData
	Board components.BoardData
}

func displayName(g *model.Game) string {
	if g.Name == "" {
		return string(g.ID)
	}
	return g.Name
}

func playerCount(g *model.Game) string {
	return fmt.Sprintf("%d/%d", g.PlayerCount(), model.MaxPlayers)
}
