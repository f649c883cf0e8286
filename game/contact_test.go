package game

import (
	"testing"

	"github.com/plus3/shelfmaze/ecs"
	"github.com/plus3/shelfmaze/maze"
	"github.com/plus3/shelfmaze/spatial"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteDedupesAndIgnoresUnknownKinds(t *testing.T) {
	router := NewCollisionRouter()

	var walls, pages []ecs.EntityId
	router.Handle(ContactPlayerWall, func(_ *ecs.UpdateFrame, id ecs.EntityId) { walls = append(walls, id) })
	router.Handle(ContactPlayerCollectible, func(_ *ecs.UpdateFrame, id ecs.EntityId) { pages = append(pages, id) })

	n := router.Route(nil, []Contact{
		{Kind: ContactPlayerWall, Other: 4},
		{Kind: ContactPlayerCollectible, Other: 9},
		{Kind: ContactPlayerWall, Other: 4},
		{Kind: ContactPlayerWall, Other: 5},
		{Kind: ContactPlayerHazard, Other: 1},
		{Kind: ContactKind(42), Other: 1},
		{Kind: ContactPlayerCollectible, Other: 9},
	})

	assert.Equal(t, 3, n)
	assert.Equal(t, []ecs.EntityId{4, 5}, walls)
	assert.Equal(t, []ecs.EntityId{9}, pages)
}

func TestRouteReplacesHandler(t *testing.T) {
	router := NewCollisionRouter()
	calls := ""
	router.Handle(ContactPlayerHazard, func(*ecs.UpdateFrame, ecs.EntityId) { calls += "a" })
	router.Handle(ContactPlayerHazard, func(*ecs.UpdateFrame, ecs.EntityId) { calls += "b" })

	router.Route(nil, []Contact{{Kind: ContactPlayerHazard, Other: 1}})
	assert.Equal(t, "b", calls)
}

func TestContactBufferDrain(t *testing.T) {
	var buf ContactBuffer
	buf.Add(ContactPlayerWall, 1)
	buf.Add(ContactPlayerHazard, 2)

	got := buf.Drain()
	assert.Equal(t, []Contact{{ContactPlayerWall, 1}, {ContactPlayerHazard, 2}}, got)
	assert.Empty(t, buf.Drain())
}

func TestContactKindString(t *testing.T) {
	assert.Equal(t, "PlayerWall", ContactPlayerWall.String())
	assert.Equal(t, "PlayerHazard", ContactPlayerHazard.String())
	assert.Equal(t, "ContactKind(0)", ContactKind(0).String())
}

func TestFacingFor(t *testing.T) {
	tests := []struct {
		name    string
		current Facing
		move    maze.Vec
		want    Facing
	}{
		{"right", FacingDown, maze.Vec{X: 1}, FacingRight},
		{"left", FacingDown, maze.Vec{X: -1}, FacingLeft},
		{"up", FacingLeft, maze.Vec{Y: 1}, FacingUp},
		{"down", FacingUp, maze.Vec{Y: -1}, FacingDown},
		{"dominant axis", FacingDown, maze.Vec{X: 0.4, Y: -0.9}, FacingDown},
		{"dominant x", FacingUp, maze.Vec{X: -0.8, Y: 0.3}, FacingLeft},
		{"tie keeps", FacingLeft, maze.Vec{X: 1, Y: 1}, FacingLeft},
		{"idle keeps", FacingRight, maze.Vec{}, FacingRight},
		{"tiny keeps", FacingUp, maze.Vec{X: 0.05, Y: 0.02}, FacingUp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, facingFor(tt.current, tt.move))
		})
	}
}

func TestSlideStopsFlushAgainstWalls(t *testing.T) {
	m, err := maze.Parse(
		"#####",
		"#...#",
		"#####",
	)
	require.NoError(t, err)
	layout := maze.NewLayout(m, 64)
	ix := spatial.New(m, layout)

	// Tile (3,1) is the east end of the corridor; its wall face is at x=96.
	pos := layout.TileToWorld(maze.Tile{Col: 3, Row: 1})
	var hits []maze.Tile
	stopX, stopY := slide(ix, &pos, maze.Vec{X: 50}, 20, nil, func(t maze.Tile) { hits = append(hits, t) })

	assert.True(t, stopX)
	assert.False(t, stopY)
	assert.InDelta(t, 76, pos.X, 1e-9)
	assert.Equal(t, []maze.Tile{{Col: 4, Row: 1}}, hits)

	// Pushing again while flush reports the same wall without moving.
	hits = nil
	stopX, _ = slide(ix, &pos, maze.Vec{X: 1}, 20, nil, func(t maze.Tile) { hits = append(hits, t) })
	assert.True(t, stopX)
	assert.InDelta(t, 76, pos.X, 1e-9)
	assert.Len(t, hits, 1)

	// Moving away is free.
	hits = nil
	stopX, _ = slide(ix, &pos, maze.Vec{X: -10}, 20, nil, func(t maze.Tile) { hits = append(hits, t) })
	assert.False(t, stopX)
	assert.InDelta(t, 66, pos.X, 1e-9)
	assert.Empty(t, hits)
}

func TestSlideIgnoresTiles(t *testing.T) {
	m, err := maze.Parse(
		"#####",
		"#...#",
		"#####",
	)
	require.NoError(t, err)
	layout := maze.NewLayout(m, 64)
	ix := spatial.New(m, layout)

	// A book leaving the shelf above the middle corridor tile.
	source := maze.Tile{Col: 2, Row: 0}
	pos := layout.TileToWorld(source)
	stopX, stopY := slide(ix, &pos, maze.Vec{Y: -20}, 16, func(t maze.Tile) bool { return t == source }, nil)

	assert.False(t, stopX)
	assert.False(t, stopY)
	assert.InDelta(t, 64-20, pos.Y, 1e-9)
}

func TestCirclesTouch(t *testing.T) {
	assert.True(t, circlesTouch(maze.Vec{}, 20, maze.Vec{X: 35}, 16))
	assert.False(t, circlesTouch(maze.Vec{}, 20, maze.Vec{X: 36}, 16))
	assert.False(t, circlesTouch(maze.Vec{}, 20, maze.Vec{X: 30, Y: 30}, 16))
}
