package model

import "fmt"

// IntentType identifies a logical board mutation
type IntentType string

const (
	IntentAdjustLife            IntentType = "adjust_life"
	IntentToggleEffect          IntentType = "toggle_effect"
	IntentAdjustEffect          IntentType = "adjust_effect"
	IntentAdjustCommanderDamage IntentType = "adjust_commander_damage"
	IntentSetColor              IntentType = "set_color"
	IntentRenamePlayer          IntentType = "rename_player"
	IntentRemovePlayer          IntentType = "remove_player"
	IntentResetGame             IntentType = "reset_game"
	IntentAddPlayer             IntentType = "add_player"
)

// Intent is a logical change a client wants to make to the shared game
type Intent interface {
	Type() IntentType
}

// AdjustLife changes a player's life total by Delta
type AdjustLife struct {
	Player PlayerID
	Delta  int
}

// ToggleEffect flips a flag effect
type ToggleEffect struct {
	Player PlayerID
	Effect string
}

// AdjustEffect changes a counter effect by Delta
type AdjustEffect struct {
	Player PlayerID
	Effect string
	Delta  int
}

// AdjustCommanderDamage changes the damage Source has dealt to Target
type AdjustCommanderDamage struct {
	Source PlayerID
	Target PlayerID
	Delta  int
}

// SetColor assigns a palette color to a player
type SetColor struct {
	Player PlayerID
	Color  Color
}

// RenamePlayer changes a player's display name
type RenamePlayer struct {
	Player PlayerID
	Name   string
}

// RemovePlayer deletes a player from the game
type RemovePlayer struct {
	Player PlayerID
}

// ResetGame restores every player's counters to their starting values
type ResetGame struct{}

// AddPlayer adds a new player with default counters.
// Name is optional; a default is generated when empty.
type AddPlayer struct {
	Name string
}

func (AdjustLife) Type() IntentType            { return IntentAdjustLife }
func (ToggleEffect) Type() IntentType          { return IntentToggleEffect }
func (AdjustEffect) Type() IntentType          { return IntentAdjustEffect }
func (AdjustCommanderDamage) Type() IntentType { return IntentAdjustCommanderDamage }
func (SetColor) Type() IntentType              { return IntentSetColor }
func (RenamePlayer) Type() IntentType          { return IntentRenamePlayer }
func (RemovePlayer) Type() IntentType          { return IntentRemovePlayer }
func (ResetGame) Type() IntentType             { return IntentResetGame }
func (AddPlayer) Type() IntentType             { return IntentAddPlayer }

// DescribeIntent renders an intent for logs and CLI output
func DescribeIntent(i Intent) string {
	switch v := i.(type) {
	case AdjustLife:
		return fmt.Sprintf("life %s %+d", v.Player, v.Delta)
	case ToggleEffect:
		return fmt.Sprintf("toggle %s on %s", v.Effect, v.Player)
	case AdjustEffect:
		return fmt.Sprintf("%s %s %+d", v.Effect, v.Player, v.Delta)
	case AdjustCommanderDamage:
		return fmt.Sprintf("commander damage %s -> %s %+d", v.Source, v.Target, v.Delta)
	case SetColor:
		return fmt.Sprintf("color %s = %s", v.Player, v.Color)
	case RenamePlayer:
		return fmt.Sprintf("rename %s = %q", v.Player, v.Name)
	case RemovePlayer:
		return fmt.Sprintf("remove %s", v.Player)
	case ResetGame:
		return "reset"
	case AddPlayer:
		return "add player"
	default:
		return "unknown intent"
	}
}
