package game

import (
	"github.com/plus3/shelfmaze/maze"
	"github.com/plus3/shelfmaze/spatial"
)

// contactSlop shrinks boxes before overlap tests so a body resting flush
// against a wall is not pushed again by rounding error.
const contactSlop = 1e-6

// slide moves pos by delta, X axis first, then Y. After each axis step the
// position is pushed flush against every blocked tile it overlaps. ignore
// exempts tiles from collision and may be nil; hit is called for each tile that
// stopped the body. It reports which axes were stopped.
func slide(ix *spatial.Index, pos *maze.Vec, delta maze.Vec, half float64, ignore func(maze.Tile) bool, hit func(maze.Tile)) (stopX, stopY bool) {
	if delta.X != 0 {
		pos.X += delta.X
		limit := pos.X
		ix.WallsAround(maze.RectAround(*pos, half-contactSlop), func(t maze.Tile, box maze.Rect) bool {
			if ignore != nil && ignore(t) {
				return true
			}
			if delta.X > 0 {
				limit = min(limit, box.Min.X-half)
			} else {
				limit = max(limit, box.Max.X+half)
			}
			stopX = true
			if hit != nil {
				hit(t)
			}
			return true
		})
		pos.X = limit
	}

	if delta.Y != 0 {
		pos.Y += delta.Y
		limit := pos.Y
		ix.WallsAround(maze.RectAround(*pos, half-contactSlop), func(t maze.Tile, box maze.Rect) bool {
			if ignore != nil && ignore(t) {
				return true
			}
			if delta.Y > 0 {
				limit = min(limit, box.Min.Y-half)
			} else {
				limit = max(limit, box.Max.Y+half)
			}
			stopY = true
			if hit != nil {
				hit(t)
			}
			return true
		})
		pos.Y = limit
	}

	return stopX, stopY
}

// circlesTouch reports whether two circles overlap.
func circlesTouch(a maze.Vec, ra float64, b maze.Vec, rb float64) bool {
	d := a.Sub(b)
	r := ra + rb
	return d.X*d.X+d.Y*d.Y < r*r
}
