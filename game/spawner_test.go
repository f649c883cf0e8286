package game

import (
	"math/rand/v2"
	"testing"

	"github.com/plus3/shelfmaze/maze"
	"github.com/plus3/shelfmaze/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spawnerFixture(t *testing.T, cfg HazardConfig) (*Spawner, *spatial.Index) {
	t.Helper()
	m, err := maze.Parse(
		"#########",
		"#.......#",
		"#.#####.#",
		"#.......#",
		"#########",
	)
	require.NoError(t, err)
	ix := spatial.New(m, maze.NewLayout(m, 64))
	return NewSpawner(cfg, ix, rand.New(rand.NewPCG(1, 2))), ix
}

func testHazardConfig() HazardConfig {
	cfg := DefaultConfig().Hazard
	cfg.FallChance = 1
	return cfg
}

func TestTryDropTargetsNearestOpenTileToPlayer(t *testing.T) {
	sp, ix := spawnerFixture(t, testHazardConfig())
	layout := ix.Layout()

	shelf := &Shelf{Tile: maze.Tile{Col: 4, Row: 2}}
	player := layout.TileToWorld(maze.Tile{Col: 4, Row: 1})

	intent, ok := sp.TryDrop(shelf, 10, player)
	require.True(t, ok)
	assert.Equal(t, maze.Tile{Col: 4, Row: 1}, intent.Target)
	assert.Equal(t, shelf.Tile, intent.Shelf)
	assert.Equal(t, layout.TileToWorld(shelf.Tile), intent.From)
	assert.InDelta(t, 10.3, shelf.NextDropAllowedAt, 1e-9)
	assert.InDelta(t, 11.0, intent.FireAt, 1e-9)
	assert.InDelta(t, 16.0, intent.ExpiresAt, 1e-9)

	// Straight up, at full impulse.
	assert.InDelta(t, 0, intent.Velocity.X, 1e-9)
	assert.InDelta(t, 240, intent.Velocity.Y, 1e-9)
}

func TestTryDropCooldown(t *testing.T) {
	sp, ix := spawnerFixture(t, testHazardConfig())
	player := ix.Layout().TileToWorld(maze.Tile{Col: 2, Row: 1})
	shelf := &Shelf{Tile: maze.Tile{Col: 2, Row: 2}}

	emitted := 0
	for step := 0; step <= 100; step++ {
		now := float64(step) * 0.01
		if _, ok := sp.TryDrop(shelf, now, player); ok {
			emitted++
		}
	}
	// Drops at 0, 0.3, 0.6 and 0.9 within the first second.
	assert.Equal(t, 4, emitted)
}

func TestTryDropNeverWithZeroChance(t *testing.T) {
	cfg := testHazardConfig()
	cfg.FallChance = 0
	sp, ix := spawnerFixture(t, cfg)
	player := ix.Layout().TileToWorld(maze.Tile{Col: 3, Row: 3})

	for i := range 1000 {
		shelf := &Shelf{Tile: maze.Tile{Col: 3, Row: 2}}
		_, ok := sp.TryDrop(shelf, float64(i), player)
		require.False(t, ok)
		assert.Zero(t, shelf.NextDropAllowedAt, "a failed roll does not start the cooldown")
	}
}

func TestTryDropProbability(t *testing.T) {
	cfg := testHazardConfig()
	cfg.FallChance = 0.25
	sp, ix := spawnerFixture(t, cfg)
	player := ix.Layout().TileToWorld(maze.Tile{Col: 3, Row: 3})

	hits := 0
	for i := range 4000 {
		if _, ok := sp.TryDrop(&Shelf{Tile: maze.Tile{Col: 3, Row: 2}}, float64(i), player); ok {
			hits++
		}
	}
	assert.InDelta(t, 1000, hits, 150)
}

func TestTryDropNeverTargetsWallsOrOccupiedTiles(t *testing.T) {
	sp, ix := spawnerFixture(t, testHazardConfig())
	layout := ix.Layout()
	ix.Occupy(maze.Tile{Col: 1, Row: 1})
	ix.Occupy(maze.Tile{Col: 2, Row: 1})
	ix.Occupy(maze.Tile{Col: 1, Row: 2})

	rng := rand.New(rand.NewPCG(5, 6))
	bounds := layout.Bounds()
	for i := range 500 {
		player := maze.Vec{
			X: bounds.Min.X + rng.Float64()*(bounds.Max.X-bounds.Min.X),
			Y: bounds.Min.Y + rng.Float64()*(bounds.Max.Y-bounds.Min.Y),
		}
		intent, ok := sp.TryDrop(&Shelf{Tile: maze.Tile{Col: 4, Row: 2}}, float64(i), player)
		require.True(t, ok)
		assert.True(t, ix.Open(intent.Target), "target %v is a wall", intent.Target)
		assert.False(t, ix.Occupied(intent.Target), "target %v is occupied", intent.Target)
	}
}

func TestTryDropFallsBackToShelf(t *testing.T) {
	cfg := testHazardConfig()
	cfg.SearchRadius = 0.5
	sp, ix := spawnerFixture(t, cfg)
	layout := ix.Layout()

	// The player stands on a wall centre, so nothing is within half a tile.
	player := layout.TileToWorld(maze.Tile{Col: 0, Row: 0})
	shelf := &Shelf{Tile: maze.Tile{Col: 6, Row: 2}}

	intent, ok := sp.TryDrop(shelf, 0, player)
	require.True(t, ok)
	assert.Equal(t, maze.Tile{Col: 6, Row: 1}, intent.Target, "nearest to the shelf, row-major tie break")
}

func TestTryDropNoViableTarget(t *testing.T) {
	sp, ix := spawnerFixture(t, testHazardConfig())
	for _, tile := range ix.OpenTiles() {
		ix.Occupy(tile)
	}

	shelf := &Shelf{Tile: maze.Tile{Col: 4, Row: 2}}
	_, ok := sp.TryDrop(shelf, 0, ix.Layout().TileToWorld(maze.Tile{Col: 4, Row: 1}))
	assert.False(t, ok)
	assert.Zero(t, shelf.NextDropAllowedAt)
}

func TestTryDropSkipsReservedTargets(t *testing.T) {
	sp, ix := spawnerFixture(t, testHazardConfig())
	var timeline Timeline
	sp.Reserved = timeline.Reserved

	player := ix.Layout().TileToWorld(maze.Tile{Col: 4, Row: 1})
	first, ok := sp.TryDrop(&Shelf{Tile: maze.Tile{Col: 4, Row: 2}}, 0, player)
	require.True(t, ok)
	timeline.Schedule(first)

	second, ok := sp.TryDrop(&Shelf{Tile: maze.Tile{Col: 3, Row: 2}}, 0, player)
	require.True(t, ok)
	assert.NotEqual(t, first.Target, second.Target)
}

func TestTimelineOrdering(t *testing.T) {
	var tl Timeline
	tl.Schedule(DropIntent{FireAt: 2, Target: maze.Tile{Col: 1}})
	tl.Schedule(DropIntent{FireAt: 1, Target: maze.Tile{Col: 2}})
	tl.Schedule(DropIntent{FireAt: 2, Target: maze.Tile{Col: 3}})
	tl.Schedule(DropIntent{FireAt: 3, Target: maze.Tile{Col: 4}})

	assert.Equal(t, 4, tl.Len())
	assert.True(t, tl.Reserved(maze.Tile{Col: 3}))
	assert.Empty(t, tl.Due(0.5))

	due := tl.Due(2)
	require.Len(t, due, 3)
	assert.Equal(t, []int{2, 1, 3}, []int{due[0].Target.Col, due[1].Target.Col, due[2].Target.Col})
	assert.Equal(t, 1, tl.Len())
	assert.False(t, tl.Reserved(maze.Tile{Col: 3}))

	tl.Clear()
	assert.Zero(t, tl.Len())
	assert.Empty(t, tl.Due(100))
}
