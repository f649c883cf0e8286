package game

import (
	"testing"

	"github.com/plus3/shelfmaze/maze"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Seed = 42
	s, err := NewSession(cfg, opts...)
	require.NoError(t, err)
	return s
}

func teleport(s *Session, pos maze.Vec) {
	p := s.players.Get(s.arena.Get().Player)
	*p.Position = Position(pos)
}

func eventsOf[T Event](events []Event) []T {
	var out []T
	for _, e := range events {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// wallBeside finds an open tile with an in-bounds wall next to it and the
// movement input that pushes into that wall.
func wallBeside(t *testing.T, m *maze.Maze) (maze.Tile, maze.Tile, maze.Vec) {
	t.Helper()
	dirs := []struct {
		dc, dr int
		move   maze.Vec
	}{
		{1, 0, maze.Vec{X: 1}},
		{-1, 0, maze.Vec{X: -1}},
		{0, 1, maze.Vec{Y: -1}},
		{0, -1, maze.Vec{Y: 1}},
	}
	for _, tile := range m.OpenTiles() {
		for _, d := range dirs {
			n := tile.Add(d.dc, d.dr)
			if m.InBounds(n) && !m.IsOpen(n) {
				return tile, n, d.move
			}
		}
	}
	t.Fatal("maze has no interior wall")
	return maze.Tile{}, maze.Tile{}, maze.Vec{}
}

func TestNewSessionBuildsFirstLevel(t *testing.T) {
	s := newTestSession(t)

	st := s.State()
	assert.Equal(t, PhasePlaying, st.Phase)
	assert.Equal(t, 1, st.Level)
	assert.Equal(t, 13, st.Cols)
	assert.Equal(t, 11, st.Rows)
	assert.Equal(t, 0, st.Found)
	assert.Equal(t, 5, st.Total)
	assert.Equal(t, 90.0, st.Countdown)
	assert.NotEmpty(t, st.ID)

	m := s.Maze()
	assert.Equal(t, 13, m.Cols())
	assert.Equal(t, 11, m.Rows())
	assert.Equal(t, maze.Tile{Col: 0, Row: 0}, s.Start())
	assert.Len(t, m.Reachable(s.Start()), m.CountOpen())

	assert.Equal(t, s.Layout().TileToWorld(s.Start()), s.Player().Position)
	assert.Equal(t, FacingDown, s.Player().Facing)

	pages := s.Collectibles()
	require.Len(t, pages, 5)
	seen := map[maze.Tile]bool{}
	for i, p := range pages {
		assert.Equal(t, i+1, p.ID)
		assert.True(t, m.IsOpen(p.Tile))
		assert.NotEqual(t, s.Start(), p.Tile)
		assert.False(t, seen[p.Tile], "duplicate page tile %v", p.Tile)
		seen[p.Tile] = true
	}

	assert.Len(t, s.Shelves(), len(m.WallTiles()))
	assert.Empty(t, s.Hazards())

	built := eventsOf[MazeBuilt](s.DrainEvents())
	require.Len(t, built, 1)
	assert.Equal(t, 1, built[0].Level)
	assert.Equal(t, pages, built[0].Collectibles)
	assert.Empty(t, s.DrainEvents())
}

func TestNewSessionErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TileSize = 0
	_, err := NewSession(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.Cols, cfg.Rows = 3, 3
	cfg.Collectibles = 10
	_, err = NewSession(cfg)
	assert.ErrorIs(t, err, ErrTooManyCollectibles)
}

func TestSessionDeterministicForSeed(t *testing.T) {
	a := newTestSession(t)
	b := newTestSession(t)
	assert.Equal(t, a.Maze().String(), b.Maze().String())
	assert.Equal(t, a.Collectibles(), b.Collectibles())
}

func TestPlayerMoves(t *testing.T) {
	s := newTestSession(t)
	s.DrainEvents()

	start := s.Player().Position
	move, facing := maze.Vec{X: 1}, FacingRight
	if !s.Maze().IsOpen(s.Start().Add(1, 0)) {
		move, facing = maze.Vec{Y: -1}, FacingDown
	}

	require.NoError(t, s.Tick(0.1, move))

	p := s.Player()
	assert.InDelta(t, 18, p.Position.Dist(start), 1e-6)
	assert.Equal(t, facing, p.Facing)
	assert.Equal(t, move.Scale(180), p.Velocity)

	moved := eventsOf[PlayerMoved](s.DrainEvents())
	require.NotEmpty(t, moved)
	assert.Equal(t, p.Position, moved[len(moved)-1].Position)
}

func TestCollectingEveryPageAdvancesLevel(t *testing.T) {
	s := newTestSession(t)
	s.DrainEvents()

	for _, page := range s.Collectibles() {
		teleport(s, page.Position)
		require.NoError(t, s.Tick(0.01, maze.Vec{}))
	}

	st := s.State()
	assert.Equal(t, PhasePlaying, st.Phase)
	assert.Equal(t, 2, st.Level)
	assert.Equal(t, 19, st.Cols)
	assert.Equal(t, 16, st.Rows)
	assert.Equal(t, 135.0, st.Countdown)
	assert.Equal(t, 0, st.Found)
	assert.Equal(t, 0.0, st.Elapsed)
	assert.Equal(t, 19, s.Maze().Cols())
	assert.Equal(t, 16, s.Maze().Rows())
	assert.Len(t, s.Collectibles(), 5)

	events := s.DrainEvents()
	collected := eventsOf[CollectibleCollected](events)
	require.Len(t, collected, 5)
	for i, c := range collected {
		assert.Equal(t, i+1, c.Found)
		assert.Equal(t, 5, c.Total)
	}

	levelUp := eventsOf[LevelUp](events)
	require.Len(t, levelUp, 1)
	assert.Equal(t, LevelUp{Level: 2, Cols: 19, Rows: 16, Countdown: 135}, levelUp[0])

	built := eventsOf[MazeBuilt](events)
	require.Len(t, built, 1)
	assert.Equal(t, 2, built[0].Level)

	var sounds []string
	for _, p := range eventsOf[PlaySound](events) {
		sounds = append(sounds, p.Name)
	}
	assert.Equal(t, []string{
		SoundCollect, SoundCollect, SoundCollect, SoundCollect, SoundCollect, SoundLevelUp,
	}, sounds)
}

func TestFailedLevelBuildIsSticky(t *testing.T) {
	tests := []struct {
		name string
		// breakNextLevel runs after level 1 is built.
		breakNextLevel func(c *Config)
		want           error
	}{
		{"too many pages", func(c *Config) { c.Collectibles = 10_000 }, ErrTooManyCollectibles},
		{"maze shrinks to nothing", func(c *Config) { c.Growth = 0.1 }, maze.ErrInvalidDimensions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Seed = 42
			cfg.Cols, cfg.Rows = 5, 5
			cfg.Collectibles = 1
			s, err := NewSession(cfg)
			require.NoError(t, err)
			tt.breakNextLevel(&s.cfg)

			teleport(s, s.Collectibles()[0].Position)
			require.ErrorIs(t, s.Tick(0.01, maze.Vec{}), tt.want)
			assert.Equal(t, 2, s.State().Level)
			assert.Equal(t, PhaseBuilding, s.State().Phase)

			assert.ErrorIs(t, s.Tick(0.01, maze.Vec{}), tt.want, "later ticks keep failing")
			assert.ErrorIs(t, s.Tick(0.01, maze.Vec{X: 1}), tt.want)
		})
	}
}

func TestCountdownTimeout(t *testing.T) {
	s := newTestSession(t)
	s.DrainEvents()

	for range 89 {
		require.NoError(t, s.Tick(1, maze.Vec{}))
	}
	st := s.State()
	assert.Equal(t, PhasePlaying, st.Phase)
	assert.InDelta(t, 1, st.Remaining(), 1e-6)

	require.NoError(t, s.Tick(1.5, maze.Vec{}))
	st = s.State()
	assert.Equal(t, PhaseGameOver, st.Phase)
	assert.Equal(t, EndTimeout, st.Reason)
	assert.Equal(t, 1, st.HighScore)

	events := s.DrainEvents()
	over := eventsOf[GameOver](events)
	require.Len(t, over, 1)
	assert.Equal(t, GameOver{Level: 1, HighScore: 1, NewHighScore: true, Reason: EndTimeout}, over[0])
	assert.Equal(t, []PersistHighScore{{Score: 1}}, eventsOf[PersistHighScore](events))

	// Finished sessions ignore ticks.
	elapsed := st.Elapsed
	require.NoError(t, s.Tick(5, maze.Vec{X: 1}))
	assert.Equal(t, elapsed, s.State().Elapsed)
	assert.Empty(t, s.DrainEvents())
}

func spawnHazardOnPlayer(s *Session) {
	s.storage.Spawn(
		Position(s.Player().Position),
		Velocity{X: 10},
		Body{Radius: s.cfg.Hazard.Radius},
		Hazard{Serial: 99, ExpiresAt: s.State().Clock + 5},
	)
}

func TestHazardContactEndsSession(t *testing.T) {
	s := newTestSession(t)
	s.DrainEvents()

	spawnHazardOnPlayer(s)
	require.NoError(t, s.Tick(0.01, maze.Vec{}))

	st := s.State()
	assert.Equal(t, PhaseGameOver, st.Phase)
	assert.Equal(t, EndHit, st.Reason)

	hazards := s.Hazards()
	require.Len(t, hazards, 1)
	assert.True(t, hazards[0].Velocity.IsZero(), "velocities freeze at game over")

	over := eventsOf[GameOver](s.DrainEvents())
	require.Len(t, over, 1)
	assert.Equal(t, EndHit, over[0].Reason)
}

func TestHighScore(t *testing.T) {
	t.Run("new best", func(t *testing.T) {
		s := newTestSession(t, WithHighScore(3))
		s.state.Get().Level = 5
		s.DrainEvents()

		spawnHazardOnPlayer(s)
		require.NoError(t, s.Tick(0.01, maze.Vec{}))

		assert.Equal(t, 5, s.State().HighScore)
		events := s.DrainEvents()
		assert.Equal(t, []GameOver{{Level: 5, HighScore: 5, NewHighScore: true, Reason: EndHit}}, eventsOf[GameOver](events))
		assert.Equal(t, []PersistHighScore{{Score: 5}}, eventsOf[PersistHighScore](events))
	})

	t.Run("below best", func(t *testing.T) {
		s := newTestSession(t, WithHighScore(3))
		s.state.Get().Level = 2
		s.DrainEvents()

		spawnHazardOnPlayer(s)
		require.NoError(t, s.Tick(0.01, maze.Vec{}))

		assert.Equal(t, 3, s.State().HighScore)
		events := s.DrainEvents()
		assert.Equal(t, []GameOver{{Level: 2, HighScore: 3, Reason: EndHit}}, eventsOf[GameOver](events))
		assert.Empty(t, eventsOf[PersistHighScore](events))
	})
}

func TestFirstTerminalTransitionWins(t *testing.T) {
	s := newTestSession(t)
	s.state.Get().Found = 4
	s.DrainEvents()

	// The last page and a book are touched in the same tick. Pages are routed first.
	teleport(s, s.Collectibles()[0].Position)
	spawnHazardOnPlayer(s)
	require.NoError(t, s.Tick(0.01, maze.Vec{}))

	st := s.State()
	assert.Equal(t, PhasePlaying, st.Phase)
	assert.Equal(t, 2, st.Level)
	assert.Empty(t, eventsOf[GameOver](s.DrainEvents()))
}

func TestShelfDropsBookOnPlayer(t *testing.T) {
	s := newTestSession(t)
	s.DrainEvents()

	tile, wall, push := wallBeside(t, s.Maze())
	teleport(s, s.Layout().TileToWorld(tile))

	var events []Event
	for i := 0; i < 40 && len(eventsOf[HazardSpawned](events)) == 0; i++ {
		require.NoError(t, s.Tick(0.05, push))
		events = append(events, s.DrainEvents()...)
	}

	shook := eventsOf[ShelfShook](events)
	require.NotEmpty(t, shook)
	assert.Equal(t, wall, shook[0].Shelf)
	assert.Equal(t, tile, shook[0].Target)
	assert.InDelta(t, 1.0, shook[0].FireAt-0.05, 0.06)

	spawned := eventsOf[HazardSpawned](events)
	require.Len(t, spawned, 1)
	assert.Equal(t, s.Layout().TileToWorld(wall), spawned[0].Position)
	assert.Equal(t, tile, spawned[0].Target)
	assert.Contains(t, eventsOf[PlaySound](events), PlaySound{Name: SoundBookFall})

	for i := 0; i < 20 && s.State().Phase == PhasePlaying; i++ {
		require.NoError(t, s.Tick(0.05, maze.Vec{}))
	}
	st := s.State()
	assert.Equal(t, PhaseGameOver, st.Phase)
	assert.Equal(t, EndHit, st.Reason)
}

func TestZeroFallChanceNeverDrops(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Seed = 42
	cfg.Hazard.FallChance = 0
	s, err := NewSession(cfg)
	require.NoError(t, err)

	tile, _, push := wallBeside(t, s.Maze())
	teleport(s, s.Layout().TileToWorld(tile))
	for range 100 {
		require.NoError(t, s.Tick(0.05, push))
	}

	events := s.DrainEvents()
	assert.Empty(t, eventsOf[ShelfShook](events))
	assert.Empty(t, eventsOf[HazardSpawned](events))
	assert.Empty(t, s.PendingDrops())
	assert.Equal(t, PhasePlaying, s.State().Phase)
}

func TestHazardExpires(t *testing.T) {
	s := newTestSession(t)
	s.DrainEvents()

	far := s.Layout().TileToWorld(s.Collectibles()[0].Tile)
	s.storage.Spawn(Position(far), Velocity{}, Body{Radius: 16}, Hazard{Serial: 7, ExpiresAt: 0.2})
	require.NoError(t, s.Tick(0.1, maze.Vec{}))
	assert.Len(t, s.Hazards(), 1)

	require.NoError(t, s.Tick(0.2, maze.Vec{}))
	assert.Empty(t, s.Hazards())
	assert.Equal(t, []HazardExpired{{Serial: 7}}, eventsOf[HazardExpired](s.DrainEvents()))
}

func TestDropsReleasedTogetherPickDistinctTargets(t *testing.T) {
	s := newTestSession(t)
	s.DrainEvents()

	tile, wall, _ := wallBeside(t, s.Maze())
	teleport(s, s.Layout().TileToWorld(tile))
	from := s.Layout().TileToWorld(wall)
	for range 2 {
		s.timeline.Get().Schedule(DropIntent{Shelf: wall, From: from, Target: tile, FireAt: 0.01, ExpiresAt: 5})
	}

	require.NoError(t, s.Tick(0.02, maze.Vec{}))
	spawned := eventsOf[HazardSpawned](s.DrainEvents())
	require.Len(t, spawned, 2)
	assert.Equal(t, tile, spawned[0].Target)
	assert.NotEqual(t, spawned[0].Target, spawned[1].Target)
}

func TestExpiringBookFreesItsTile(t *testing.T) {
	s := newTestSession(t)
	s.DrainEvents()

	tile, wall, _ := wallBeside(t, s.Maze())
	at := s.Layout().TileToWorld(tile)
	teleport(s, at)
	// No Body, so the book holds the tile without touching the player.
	s.storage.Spawn(Position(at), Hazard{Serial: 1, ExpiresAt: 0.05})

	require.NoError(t, s.Tick(0.02, maze.Vec{}))
	require.True(t, s.arena.Get().Index.Occupied(tile))

	s.timeline.Get().Schedule(DropIntent{Shelf: wall, From: s.Layout().TileToWorld(wall), Target: tile, FireAt: 0.05, ExpiresAt: 5})
	require.NoError(t, s.Tick(0.04, maze.Vec{}))

	spawned := eventsOf[HazardSpawned](s.DrainEvents())
	require.Len(t, spawned, 1)
	assert.Equal(t, tile, spawned[0].Target, "the expired book released the tile before the drop was aimed")
}

func TestPauseResume(t *testing.T) {
	s := newTestSession(t)
	s.DrainEvents()

	assert.True(t, s.Pause())
	assert.False(t, s.Pause())
	require.NoError(t, s.Tick(2, maze.Vec{X: 1}))
	assert.Zero(t, s.State().Elapsed)
	assert.Equal(t, s.Layout().TileToWorld(s.Start()), s.Player().Position)

	assert.True(t, s.Resume())
	assert.False(t, s.Resume())
	require.NoError(t, s.Tick(0.5, maze.Vec{}))
	assert.InDelta(t, 0.5, s.State().Elapsed, 1e-9)

	assert.True(t, s.TogglePause())
	assert.True(t, s.State().Paused)
	assert.True(t, s.TogglePause())
	assert.False(t, s.State().Paused)

	var kinds []string
	for _, e := range s.DrainEvents() {
		kinds = append(kinds, e.Kind())
	}
	assert.Equal(t, []string{"paused", "resumed", "paused", "resumed"}, kinds)
}

func TestRestart(t *testing.T) {
	s := newTestSession(t)
	assert.False(t, s.Restart(), "restart is only allowed after game over")

	firstID := s.State().ID
	s.state.Get().Level = 3
	spawnHazardOnPlayer(s)
	require.NoError(t, s.Tick(0.01, maze.Vec{}))
	require.Equal(t, PhaseGameOver, s.State().Phase)
	assert.False(t, s.Pause())
	s.DrainEvents()

	require.True(t, s.Restart())
	st := s.State()
	assert.Equal(t, PhasePlaying, st.Phase)
	assert.Equal(t, 1, st.Level)
	assert.Equal(t, 3, st.HighScore)
	assert.Equal(t, EndNone, st.Reason)
	assert.Equal(t, 13, s.Maze().Cols())
	assert.NotEqual(t, firstID, st.ID)
	assert.Empty(t, s.Hazards())
	assert.Len(t, s.Collectibles(), 5)

	built := eventsOf[MazeBuilt](s.DrainEvents())
	require.Len(t, built, 1)
	assert.Equal(t, 1, built[0].Level)
}

func TestLongTickIsSubStepped(t *testing.T) {
	s := newTestSession(t)
	before := s.Scheduler().GetStats()
	require.NoError(t, s.Tick(0.5, maze.Vec{}))
	after := s.Scheduler().GetStats()

	require.Len(t, after.Systems, 8)
	assert.Equal(t, before.Systems[0].ExecutionCount+10, after.Systems[0].ExecutionCount)
	assert.Equal(t, before.TotalExecutions+80, after.TotalExecutions)
}
