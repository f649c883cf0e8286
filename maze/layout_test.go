package maze

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTileToWorld(t *testing.T) {
	l := Layout{Cols: 13, Rows: 11, TileSize: 64}

	tests := []struct {
		tile Tile
		want Vec
	}{
		{Tile{6, 5}, Vec{0, 0}},
		{Tile{0, 0}, Vec{-384, 320}},
		{Tile{12, 10}, Vec{384, -320}},
		{Tile{7, 4}, Vec{64, 64}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, l.TileToWorld(tt.tile), "tile %v", tt.tile)
	}
}

func TestLayoutBijection(t *testing.T) {
	for _, l := range []Layout{
		{Cols: 13, Rows: 11, TileSize: 64},
		{Cols: 19, Rows: 16, TileSize: 64},
		{Cols: 4, Rows: 3, TileSize: 10},
	} {
		seen := make(map[Vec]Tile)
		for r := 0; r < l.Rows; r++ {
			for c := 0; c < l.Cols; c++ {
				tile := Tile{c, r}
				p := l.TileToWorld(tile)
				if other, dup := seen[p]; dup {
					t.Fatalf("%v and %v both map to %v", other, tile, p)
				}
				seen[p] = tile
				assert.Equal(t, tile, l.WorldToTile(p))
				// Any point inside the box maps back to the tile.
				assert.Equal(t, tile, l.WorldToTile(p.Add(Vec{l.TileSize * 0.49, -l.TileSize * 0.49})))
			}
		}
	}
}

func TestLayoutBounds(t *testing.T) {
	l := Layout{Cols: 13, Rows: 11, TileSize: 64}
	b := l.Bounds()
	assert.Equal(t, Vec{-416, -352}, b.Min)
	assert.Equal(t, Vec{416, 352}, b.Max)

	assert.True(t, l.InBounds(Tile{12, 10}))
	assert.False(t, l.InBounds(Tile{13, 0}))
	assert.Equal(t, Tile{-1, 5}, l.WorldToTile(Vec{-420, 0}))
}

func TestRectOverlaps(t *testing.T) {
	a := RectAround(Vec{0, 0}, 10)
	assert.True(t, a.Overlaps(RectAround(Vec{15, 0}, 10)))
	assert.False(t, a.Overlaps(RectAround(Vec{20, 0}, 10)), "touching edges do not overlap")
	assert.False(t, a.Overlaps(RectAround(Vec{0, -25}, 10)))
}

func TestVecNormalize(t *testing.T) {
	assert.Equal(t, Vec{}, Vec{}.Normalize())
	n := Vec{3, 4}.Normalize()
	assert.InDelta(t, 0.6, n.X, 1e-12)
	assert.InDelta(t, 0.8, n.Y, 1e-12)
	assert.InDelta(t, 5, Vec{0, 0}.Dist(Vec{3, 4}), 1e-12)
}
