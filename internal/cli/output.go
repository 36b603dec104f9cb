package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mcoot/lifeboard/internal/api/response"
	"github.com/mcoot/lifeboard/internal/model"
	"github.com/mcoot/lifeboard/internal/services/effects"
	"github.com/mcoot/lifeboard/internal/services/game"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

// PrintBoard outputs a game with its derived player views
func (o *Output) PrintBoard(g *model.Game, views []game.PlayerView) {
	if o.format == "json" {
		o.printJSON(g)
		return
	}
	o.printGameHeader(g)
	o.printViews(views)
}

// PrintWatch outputs one board of a watch stream; JSON boards are one per line
func (o *Output) PrintWatch(g *model.Game, views []game.PlayerView) {
	if o.format == "json" {
		data, _ := json.Marshal(g)
		_, _ = fmt.Fprintln(o.w, string(data))
		return
	}
	_, _ = fmt.Fprintf(o.w, "--- revision %d ---\n", g.Revision)
	o.printViews(views)
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Health:
		_, _ = fmt.Fprintf(o.w, "Status: %s\nStorage: %s\n", v.Status, v.Storage)
	case []*model.Game:
		o.printGameList(v)
	case *model.Game:
		o.printGameHeader(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printGameList(games []*model.Game) {
	if len(games) == 0 {
		_, _ = fmt.Fprintln(o.w, "No games")
		return
	}
	for _, g := range games {
		lock := ""
		if g.HasPassword() {
			lock = " (password)"
		}
		_, _ = fmt.Fprintf(o.w, "%s\t%s\t%d/%d players%s\n", g.ID, g.Name, g.PlayerCount(), model.MaxPlayers, lock)
	}
}

func (o *Output) printGameHeader(g *model.Game) {
	_, _ = fmt.Fprintf(o.w, "Game: %s\n", g.ID)
	if g.Name != "" {
		_, _ = fmt.Fprintf(o.w, "Name: %s\n", g.Name)
	}
	_, _ = fmt.Fprintf(o.w, "Revision: %d\n", g.Revision)
	_, _ = fmt.Fprintf(o.w, "Players (%d/%d):\n", g.PlayerCount(), model.MaxPlayers)
}

func (o *Output) printViews(views []game.PlayerView) {
	for _, v := range views {
		status := ""
		if v.Defeated {
			status = " DEFEATED"
		}
		color := string(v.Color)
		if color == "" {
			color = "-"
		}
		_, _ = fmt.Fprintf(o.w, "  %s %q [%s] life %d%s\n", v.ID, v.Name, color, v.Life, status)

		var parts []string
		if poison := v.Effects.Counter(effects.Poison); poison > 0 {
			parts = append(parts, fmt.Sprintf("poison %d (%s)", poison, v.PoisonTier))
		}
		for _, flag := range []string{effects.Monarch, effects.Initiative} {
			if v.Effects.Flag(flag) {
				parts = append(parts, flag)
			}
		}
		if len(parts) > 0 {
			_, _ = fmt.Fprintf(o.w, "    effects: %s\n", strings.Join(parts, ", "))
		}

		sources := make([]string, 0, len(v.CommanderDamage))
		for src, dmg := range v.CommanderDamage {
			if dmg > 0 {
				sources = append(sources, fmt.Sprintf("%s %d", src, dmg))
			}
		}
		sort.Strings(sources)
		if len(sources) > 0 {
			_, _ = fmt.Fprintf(o.w, "    commander damage: %s\n", strings.Join(sources, ", "))
		}
	}
}
