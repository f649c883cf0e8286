package maze

import "math"

// Vec is a point or direction in world space. Y grows upward.
type Vec struct {
	X, Y float64
}

func (v Vec) Add(o Vec) Vec       { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec       { return Vec{v.X - o.X, v.Y - o.Y} }
func (v Vec) Scale(s float64) Vec { return Vec{v.X * s, v.Y * s} }
func (v Vec) Len() float64        { return math.Hypot(v.X, v.Y) }
func (v Vec) Dist(o Vec) float64  { return v.Sub(o).Len() }
func (v Vec) IsZero() bool        { return v.X == 0 && v.Y == 0 }

// Normalize returns the unit vector in v's direction, or the zero vector.
func (v Vec) Normalize() Vec {
	l := v.Len()
	if l == 0 {
		return Vec{}
	}
	return Vec{v.X / l, v.Y / l}
}

// Rect is an axis-aligned box in world space.
type Rect struct {
	Min, Max Vec
}

// RectAround returns the square of the given half extent centred on c.
func RectAround(c Vec, half float64) Rect {
	return Rect{Min: Vec{c.X - half, c.Y - half}, Max: Vec{c.X + half, c.Y + half}}
}

// Overlaps reports whether the interiors of r and o intersect. Touching edges do not count.
func (r Rect) Overlaps(o Rect) bool {
	return r.Min.X < o.Max.X && o.Min.X < r.Max.X && r.Min.Y < o.Max.Y && o.Min.Y < r.Max.Y
}

// Layout maps grid tiles to world positions. The grid is centred on the origin
// using integer halves of its size, and row 0 is the top of the screen.
type Layout struct {
	Cols, Rows int
	TileSize   float64
}

// NewLayout returns the layout for m with the given tile size.
func NewLayout(m *Maze, tileSize float64) Layout {
	return Layout{Cols: m.Cols(), Rows: m.Rows(), TileSize: tileSize}
}

// TileToWorld returns the centre of the tile.
func (l Layout) TileToWorld(t Tile) Vec {
	return Vec{
		X: float64(t.Col-l.Cols/2) * l.TileSize,
		Y: float64(l.Rows/2-t.Row) * l.TileSize,
	}
}

// WorldToTile returns the tile whose box contains p. Points on a shared edge
// belong to the tile to the right or above. The result may be out of bounds.
func (l Layout) WorldToTile(p Vec) Tile {
	return Tile{
		Col: int(math.Floor(p.X/l.TileSize+0.5)) + l.Cols/2,
		Row: l.Rows/2 - int(math.Floor(p.Y/l.TileSize+0.5)),
	}
}

// TileBounds returns the world box covered by the tile.
func (l Layout) TileBounds(t Tile) Rect {
	return RectAround(l.TileToWorld(t), l.TileSize/2)
}

// Bounds returns the world box covered by the whole grid.
func (l Layout) Bounds() Rect {
	topLeft := l.TileBounds(Tile{0, 0})
	bottomRight := l.TileBounds(Tile{l.Cols - 1, l.Rows - 1})
	return Rect{
		Min: Vec{topLeft.Min.X, bottomRight.Min.Y},
		Max: Vec{bottomRight.Max.X, topLeft.Max.Y},
	}
}

// InBounds reports whether t is a tile of the grid.
func (l Layout) InBounds(t Tile) bool {
	return t.Col >= 0 && t.Row >= 0 && t.Col < l.Cols && t.Row < l.Rows
}
