package maze

import (
	"fmt"
	"math/rand/v2"
)

var carveDirections = [4][2]int{{0, -2}, {2, 0}, {0, 2}, {-2, 0}}

// StartTile returns the cell carving begins from for a grid of the given size.
// Even dimensions start one cell in so the outer ring stays solid.
func StartTile(cols, rows int) Tile {
	start := Tile{}
	if cols%2 == 0 {
		start.Col = 1
	}
	if rows%2 == 0 {
		start.Row = 1
	}
	return Tile{Col: min(start.Col, cols-1), Row: min(start.Row, rows-1)}
}

// Generate carves a maze with a randomized depth-first backtracker and returns it
// together with the start tile. Every open cell is reachable from the start and
// the open cells form a spanning tree over the carvable sub-grid.
//
// The walk uses an explicit stack, so large grids cannot exhaust the goroutine stack.
// A nil rng falls back to a randomly seeded PCG source.
func Generate(cols, rows int, rng *rand.Rand) (*Maze, Tile, error) {
	if cols < 1 || rows < 1 {
		return nil, Tile{}, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, cols, rows)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	m := newMaze(cols, rows)
	start := StartTile(cols, rows)
	m.set(start, Open)

	type frame struct {
		tile  Tile
		order [4]int
		next  int
	}

	shuffled := func(t Tile) frame {
		f := frame{tile: t, order: [4]int{0, 1, 2, 3}}
		rng.Shuffle(len(f.order), func(i, j int) {
			f.order[i], f.order[j] = f.order[j], f.order[i]
		})
		return f
	}

	stack := []frame{shuffled(start)}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next == len(top.order) {
			stack = stack[:len(stack)-1]
			continue
		}

		d := carveDirections[top.order[top.next]]
		top.next++

		next := top.tile.Add(d[0], d[1])
		if !m.InBounds(next) || m.At(next) != Wall {
			continue
		}
		m.set(top.tile.Add(d[0]/2, d[1]/2), Open)
		m.set(next, Open)
		// top is invalidated by the append below.
		stack = append(stack, shuffled(next))
	}

	return m, start, nil
}
