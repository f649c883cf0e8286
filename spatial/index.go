// Package spatial answers tile queries against a generated maze: which tiles are
// blocked, which are held by a hazard, and which open tile is nearest to a point.
package spatial

import (
	"cmp"
	"slices"

	"github.com/kamstrup/intmap"
	"github.com/plus3/shelfmaze/maze"
)

// Index wraps an immutable maze with its layout and a mutable hazard occupancy overlay.
type Index struct {
	grid     *maze.Maze
	layout   maze.Layout
	open     []maze.Tile
	occupied *intmap.Map[int, int]
}

// New builds an index over m. The layout must describe m's dimensions.
func New(m *maze.Maze, layout maze.Layout) *Index {
	return &Index{
		grid:     m,
		layout:   layout,
		open:     m.OpenTiles(),
		occupied: intmap.New[int, int](16),
	}
}

func (ix *Index) Maze() *maze.Maze       { return ix.grid }
func (ix *Index) Layout() maze.Layout    { return ix.layout }
func (ix *Index) OpenTiles() []maze.Tile { return ix.open }

// Blocked reports whether t is a wall or lies outside the maze.
func (ix *Index) Blocked(t maze.Tile) bool {
	return !ix.grid.IsOpen(t)
}

// Open reports whether t is an open in-bounds tile.
func (ix *Index) Open(t maze.Tile) bool {
	return ix.grid.IsOpen(t)
}

// TileAt returns the tile containing the world position.
func (ix *Index) TileAt(p maze.Vec) maze.Tile {
	return ix.layout.WorldToTile(p)
}

// Occupy marks an in-bounds tile as holding one more hazard.
func (ix *Index) Occupy(t maze.Tile) {
	if !ix.grid.InBounds(t) {
		return
	}
	k := ix.grid.Index(t)
	n, _ := ix.occupied.Get(k)
	ix.occupied.Put(k, n+1)
}

// Vacate releases one hazard from t.
func (ix *Index) Vacate(t maze.Tile) {
	if !ix.grid.InBounds(t) {
		return
	}
	k := ix.grid.Index(t)
	n, ok := ix.occupied.Get(k)
	switch {
	case !ok:
	case n <= 1:
		ix.occupied.Del(k)
	default:
		ix.occupied.Put(k, n-1)
	}
}

// Occupied reports whether any hazard currently sits on t.
func (ix *Index) Occupied(t maze.Tile) bool {
	if !ix.grid.InBounds(t) {
		return false
	}
	_, ok := ix.occupied.Get(ix.grid.Index(t))
	return ok
}

// OccupiedCount returns the number of occupied tiles.
func (ix *Index) OccupiedCount() int {
	return ix.occupied.Len()
}

// Reset clears the occupancy overlay.
func (ix *Index) Reset() {
	ix.occupied.Clear()
}

// Viable reports whether a hazard may be aimed at t.
func (ix *Index) Viable(t maze.Tile) bool {
	return ix.Open(t) && !ix.Occupied(t)
}

type candidate struct {
	tile  maze.Tile
	index int
	dist  float64
}

// Nearest returns the viable tile closest to origin within radius world units.
// Ties are broken in row-major order. A negative radius searches the whole maze.
// exclude may be nil.
func (ix *Index) Nearest(origin maze.Vec, radius float64, exclude func(maze.Tile) bool) (maze.Tile, bool) {
	ranked := ix.Ranked(origin, radius, exclude)
	if len(ranked) == 0 {
		return maze.Tile{}, false
	}
	return ranked[0], true
}

// Ranked lists every viable tile within radius of origin, nearest first.
func (ix *Index) Ranked(origin maze.Vec, radius float64, exclude func(maze.Tile) bool) []maze.Tile {
	var cands []candidate
	for _, t := range ix.open {
		if ix.Occupied(t) || (exclude != nil && exclude(t)) {
			continue
		}
		d := ix.layout.TileToWorld(t).Dist(origin)
		if radius >= 0 && d > radius {
			continue
		}
		cands = append(cands, candidate{tile: t, index: ix.grid.Index(t), dist: d})
	}

	slices.SortFunc(cands, func(a, b candidate) int {
		if c := cmp.Compare(a.dist, b.dist); c != 0 {
			return c
		}
		return cmp.Compare(a.index, b.index)
	})

	out := make([]maze.Tile, len(cands))
	for i, c := range cands {
		out[i] = c.tile
	}
	return out
}

// WallsAround calls fn for every blocked tile whose box overlaps r, including
// tiles outside the maze. Iteration stops when fn returns false.
func (ix *Index) WallsAround(r maze.Rect, fn func(maze.Tile, maze.Rect) bool) {
	lo := ix.layout.WorldToTile(maze.Vec{X: r.Min.X, Y: r.Max.Y})
	hi := ix.layout.WorldToTile(maze.Vec{X: r.Max.X, Y: r.Min.Y})

	for row := lo.Row; row <= hi.Row; row++ {
		for col := lo.Col; col <= hi.Col; col++ {
			t := maze.Tile{Col: col, Row: row}
			if !ix.Blocked(t) {
				continue
			}
			box := ix.layout.TileBounds(t)
			if !box.Overlaps(r) {
				continue
			}
			if !fn(t, box) {
				return
			}
		}
	}
}
