package mutation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/lifeboard/internal/dependencies/mocks"
	"github.com/mcoot/lifeboard/internal/model"
	"github.com/mcoot/lifeboard/internal/services/effects"
	"github.com/mcoot/lifeboard/internal/storage"
	"github.com/mcoot/lifeboard/internal/storage/document"
	"github.com/mcoot/lifeboard/internal/testutil"
)

type BuilderSuite struct {
	suite.Suite
	clock   *mocks.MockClock
	random  *mocks.MockRandom
	builder *Builder
}

func TestBuilderSuite(t *testing.T) {
	suite.Run(t, new(BuilderSuite))
}

func (s *BuilderSuite) SetupTest() {
	s.clock = mocks.NewMockClock(testutil.BaseTime)
	s.random = mocks.NewMockRandom()
	s.builder = New(effects.New(), s.clock, s.random)
}

// apply runs the updates through the document layer the way a store would
func (s *BuilderSuite) apply(game *model.Game, updates storage.Updates) *model.Game {
	data, err := document.Encode(game)
	s.Require().NoError(err)
	next, err := document.Apply(data, updates)
	s.Require().NoError(err)
	return document.Decode(game.ID, next)
}

func (s *BuilderSuite) submit(game *model.Game, intent model.Intent) *model.Game {
	updates, err := s.builder.Build(game, intent)
	s.Require().NoError(err)
	return s.apply(game, updates)
}

// Life

func (s *BuilderSuite) TestAdjustLifeWritesSingleLeaf() {
	game := testutil.NewGame("g", "a", "b")

	updates, err := s.builder.Build(game, model.AdjustLife{Player: "a", Delta: -3})
	s.Require().NoError(err)
	s.Equal(storage.Updates{"players.a.life": 37}, updates)
}

func (s *BuilderSuite) TestAdjustLifeAllowsNegative() {
	game := testutil.NewGame("g", "a")
	game = s.submit(game, model.AdjustLife{Player: "a", Delta: -45})
	s.Equal(-5, game.Players["a"].Life)
}

func (s *BuilderSuite) TestAdjustLifeUnknownPlayer() {
	_, err := s.builder.Build(testutil.NewGame("g", "a"), model.AdjustLife{Player: "zz", Delta: 1})
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

// Effects

func (s *BuilderSuite) TestToggleTwiceRestoresValue() {
	game := testutil.NewGame("g", "a")
	for i := 1; i <= 5; i++ {
		game = s.submit(game, model.ToggleEffect{Player: "a", Effect: effects.Monarch})
		s.Equal(i%2 == 1, game.Players["a"].Effects.Flag(effects.Monarch), "after %d toggles", i)
	}
}

func (s *BuilderSuite) TestToggleMissingFlagDefaultsFalse() {
	game := testutil.NewGame("g", "a")
	delete(game.Players["a"].Effects, effects.Initiative)

	updates, err := s.builder.Build(game, model.ToggleEffect{Player: "a", Effect: effects.Initiative})
	s.Require().NoError(err)
	s.Equal(true, updates["players.a.effects.initiative"])
}

func (s *BuilderSuite) TestToggleRejectsCounter() {
	_, err := s.builder.Build(testutil.NewGame("g", "a"), model.ToggleEffect{Player: "a", Effect: effects.Poison})
	s.ErrorIs(err, model.ErrEffectKind)
}

func (s *BuilderSuite) TestUnknownEffect() {
	_, err := s.builder.Build(testutil.NewGame("g", "a"), model.AdjustEffect{Player: "a", Effect: "energy", Delta: 1})
	s.ErrorIs(err, model.ErrUnknownEffect)
}

func (s *BuilderSuite) TestCounterNeverNegative() {
	deltas := [][]int{
		{3, -1, -5, 2},
		{-1},
		{10, 5, -2},
		{-4, 4, -4, 4},
	}
	for _, seq := range deltas {
		game := testutil.NewGame("g", "a")
		expected := 0
		for _, d := range seq {
			game = s.submit(game, model.AdjustEffect{Player: "a", Effect: effects.Poison, Delta: d})
			expected = max(0, expected+d)
			s.GreaterOrEqual(game.Players["a"].Effects.Counter(effects.Poison), 0)
		}
		s.Equal(expected, game.Players["a"].Effects.Counter(effects.Poison), fmt.Sprint(seq))
	}
}

func (s *BuilderSuite) TestCounterHasNoCeiling() {
	game := testutil.NewGame("g", "a")
	game = s.submit(game, model.AdjustEffect{Player: "a", Effect: effects.Poison, Delta: 25})
	s.Equal(25, game.Players["a"].Effects.Counter(effects.Poison))
}

func (s *BuilderSuite) TestAdjustEffectRejectsFlag() {
	_, err := s.builder.Build(testutil.NewGame("g", "a"), model.AdjustEffect{Player: "a", Effect: effects.Monarch, Delta: 1})
	s.ErrorIs(err, model.ErrEffectKind)
}

// Commander damage

func (s *BuilderSuite) TestCommanderDamageIsAsymmetric() {
	game := testutil.NewGame("g", "a", "b")
	game = s.submit(game, model.AdjustCommanderDamage{Source: "a", Target: "b", Delta: 6})

	s.Equal(6, game.Players["b"].DamageFrom("a"))
	s.Equal(0, game.Players["a"].DamageFrom("b"))

	game = s.submit(game, model.AdjustCommanderDamage{Source: "b", Target: "a", Delta: 2})
	s.Equal(6, game.Players["b"].DamageFrom("a"))
	s.Equal(2, game.Players["a"].DamageFrom("b"))
}

func (s *BuilderSuite) TestCommanderDamageFloor() {
	game := testutil.NewGame("g", "a", "b")
	game = s.submit(game, model.AdjustCommanderDamage{Source: "a", Target: "b", Delta: 2})
	game = s.submit(game, model.AdjustCommanderDamage{Source: "a", Target: "b", Delta: -7})
	s.Equal(0, game.Players["b"].DamageFrom("a"))
}

func (s *BuilderSuite) TestCommanderDamageSelfRejected() {
	_, err := s.builder.Build(testutil.NewGame("g", "a"), model.AdjustCommanderDamage{Source: "a", Target: "a", Delta: 1})
	s.ErrorIs(err, model.ErrInvalidIntent)
}

// Color, name and removal

func (s *BuilderSuite) TestSetColor() {
	game := testutil.NewGame("g", "a", "b")

	updates, err := s.builder.Build(game, model.SetColor{Player: "a", Color: model.ColorTeal})
	s.Require().NoError(err)
	s.Equal(storage.Updates{"players.a.color": "teal"}, updates)
}

func (s *BuilderSuite) TestSetColorTaken() {
	game := testutil.NewGame("g", "a", "b")
	_, err := s.builder.Build(game, model.SetColor{Player: "a", Color: game.Players["b"].Color})
	s.ErrorIs(err, model.ErrColorTaken)
}

func (s *BuilderSuite) TestSetOwnColorIsAllowed() {
	game := testutil.NewGame("g", "a")
	_, err := s.builder.Build(game, model.SetColor{Player: "a", Color: game.Players["a"].Color})
	s.NoError(err)
}

func (s *BuilderSuite) TestSetColorInvalid() {
	_, err := s.builder.Build(testutil.NewGame("g", "a"), model.SetColor{Player: "a", Color: "mauve"})
	s.ErrorIs(err, model.ErrInvalidColor)
}

func (s *BuilderSuite) TestRename() {
	game := s.submit(testutil.NewGame("g", "a"), model.RenamePlayer{Player: "a", Name: "  Nissa "})
	s.Equal("Nissa", game.Players["a"].Name)

	_, err := s.builder.Build(game, model.RenamePlayer{Player: "a", Name: "   "})
	s.ErrorIs(err, model.ErrInvalidIntent)
}

func (s *BuilderSuite) TestRemovePlayerDeletesSubtree() {
	game := testutil.NewGame("g", "a", "b")

	updates, err := s.builder.Build(game, model.RemovePlayer{Player: "a"})
	s.Require().NoError(err)
	s.Len(updates, 1)
	s.True(storage.IsDelete(updates["players.a"]))

	game = s.apply(game, updates)
	s.Nil(game.GetPlayer("a"))
	s.NotNil(game.GetPlayer("b"))
}

// Reset

func (s *BuilderSuite) TestResetRestoresCountersOnly() {
	game := testutil.NewGame("g", "a", "b", "c")
	game = s.submit(game, model.AdjustLife{Player: "a", Delta: -12})
	game = s.submit(game, model.AdjustEffect{Player: "b", Effect: effects.Poison, Delta: 4})
	game = s.submit(game, model.ToggleEffect{Player: "c", Effect: effects.Monarch})
	game = s.submit(game, model.AdjustCommanderDamage{Source: "a", Target: "c", Delta: 9})
	game = s.submit(game, model.RenamePlayer{Player: "b", Name: "Bob"})
	before := game.Clone()

	game = s.submit(game, model.ResetGame{})

	s.Equal(3, game.PlayerCount())
	for id, p := range game.Players {
		s.Equal(model.StartingLife, p.Life)
		s.Equal(0, p.Effects.Counter(effects.Poison))
		s.False(p.Effects.Flag(effects.Monarch))
		s.False(p.Effects.Flag(effects.Initiative))
		s.Empty(p.CommanderDamage)
		s.Equal(before.Players[id].Name, p.Name)
		s.Equal(before.Players[id].Color, p.Color)
		s.True(before.Players[id].JoinedAt.Equal(p.JoinedAt))
	}
}

func (s *BuilderSuite) TestResetEmptyGame() {
	updates, err := s.builder.Build(testutil.NewGame("g"), model.ResetGame{})
	s.Require().NoError(err)
	s.Empty(updates)
}

// Add player

func (s *BuilderSuite) TestAddPlayer() {
	s.random.QueueUUID("new-player")
	game := testutil.NewGame("g", "a")

	game = s.submit(game, model.AddPlayer{})

	p := game.GetPlayer("new-player")
	s.Require().NotNil(p)
	s.Equal("Player 2", p.Name)
	s.Equal(model.StartingLife, p.Life)
	s.Equal(model.ColorOrange, p.Color)
	s.Equal(0, p.Effects.Counter(effects.Poison))
	s.False(p.Effects.Flag(effects.Monarch))
	s.Empty(p.CommanderDamage)
	s.True(testutil.BaseTime.Equal(p.JoinedAt))
}

func (s *BuilderSuite) TestAddPlayerUsesGivenName() {
	s.random.QueueUUID("p")
	game := s.submit(testutil.NewGame("g"), model.AddPlayer{Name: "Kaya"})
	s.Equal("Kaya", game.Players["p"].Name)
}

func (s *BuilderSuite) TestAddPlayerDefaultNameSkipsNamesInUse() {
	game := testutil.NewGame("g", "a", "b", "c")
	game = s.submit(game, model.RemovePlayer{Player: "a"})

	s.random.QueueUUID("d")
	game = s.submit(game, model.AddPlayer{})
	s.Equal("Player 1", game.Players["d"].Name)

	s.random.QueueUUID("e")
	game = s.submit(game, model.AddPlayer{})
	s.Equal("Player 4", game.Players["e"].Name)
}

func (s *BuilderSuite) TestAddPlayerDefaultNameAfterRename() {
	game := testutil.NewGame("g", "a", "b")
	game = s.submit(game, model.RenamePlayer{Player: "a", Name: "Player 3"})

	s.random.QueueUUID("c")
	game = s.submit(game, model.AddPlayer{})
	s.Equal("Player 1", game.Players["c"].Name)
}

func (s *BuilderSuite) TestAddPlayerSkipsUsedColors() {
	game := testutil.NewGame("g", "a", "b")
	game.Players["a"].Color = model.ColorRed
	game.Players["b"].Color = model.ColorYellow

	s.Equal(model.ColorOrange, s.builder.NextColor(game))
}

func (s *BuilderSuite) TestNextColorFillsGap() {
	game := testutil.NewGame("g", "a", "b", "c", "d", "e", "f", "g")
	game.Players["e"].Color = model.ColorPink

	s.Equal(model.ColorTeal, s.builder.NextColor(game))
}

func (s *BuilderSuite) TestNextColorRandomWhenPaletteExhausted() {
	game := testutil.NewGame("g", "a", "b", "c", "d", "e", "f", "g", "h")
	s.Len(game.UsedColors(), len(model.Palette))
	s.random.QueueIntn(5)

	s.Equal(model.ColorBlue, s.builder.NextColor(game))
}

func (s *BuilderSuite) TestAddPlayerWhenFull() {
	game := testutil.NewGame("g", "a", "b", "c", "d", "e", "f", "g", "h")

	updates, err := s.builder.Build(game, model.AddPlayer{})
	s.ErrorIs(err, model.ErrGameFull)
	s.Nil(updates)
}

func (s *BuilderSuite) TestUnknownIntent() {
	_, err := s.builder.Build(testutil.NewGame("g"), nil)
	s.ErrorIs(err, model.ErrInvalidIntent)
}
