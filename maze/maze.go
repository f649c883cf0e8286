// Package maze carves grid mazes and maps their tiles into world space.
package maze

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDimensions is returned when a maze is requested with a non-positive size.
var ErrInvalidDimensions = errors.New("invalid maze dimensions")

// Cell is the content of a single grid cell.
type Cell uint8

const (
	Wall Cell = iota
	Open
)

// Tile addresses a cell by column and row. Row 0 is the top row.
type Tile struct {
	Col, Row int
}

func (t Tile) String() string {
	return fmt.Sprintf("(%d,%d)", t.Col, t.Row)
}

// Add offsets the tile by the given column and row deltas.
func (t Tile) Add(dc, dr int) Tile {
	return Tile{Col: t.Col + dc, Row: t.Row + dr}
}

// Maze is an immutable grid of Wall and Open cells stored row-major.
type Maze struct {
	cols, rows int
	cells      []Cell
}

func newMaze(cols, rows int) *Maze {
	// The zero Cell is Wall, so a fresh grid is solid.
	return &Maze{cols: cols, rows: rows, cells: make([]Cell, cols*rows)}
}

func (m *Maze) Cols() int { return m.cols }
func (m *Maze) Rows() int { return m.rows }

// InBounds reports whether the tile lies inside the grid.
func (m *Maze) InBounds(t Tile) bool {
	return t.Col >= 0 && t.Row >= 0 && t.Col < m.cols && t.Row < m.rows
}

// At returns the cell at t. Tiles outside the grid read as Wall.
func (m *Maze) At(t Tile) Cell {
	if !m.InBounds(t) {
		return Wall
	}
	return m.cells[t.Row*m.cols+t.Col]
}

func (m *Maze) IsOpen(t Tile) bool {
	return m.At(t) == Open
}

func (m *Maze) set(t Tile, c Cell) {
	m.cells[t.Row*m.cols+t.Col] = c
}

// Index returns the row-major index of an in-bounds tile.
func (m *Maze) Index(t Tile) int {
	return t.Row*m.cols + t.Col
}

// TileOf is the inverse of Index.
func (m *Maze) TileOf(index int) Tile {
	return Tile{Col: index % m.cols, Row: index / m.cols}
}

// OpenTiles lists every open tile in row-major order.
func (m *Maze) OpenTiles() []Tile {
	var tiles []Tile
	for i, c := range m.cells {
		if c == Open {
			tiles = append(tiles, m.TileOf(i))
		}
	}
	return tiles
}

// WallTiles lists every wall tile in row-major order.
func (m *Maze) WallTiles() []Tile {
	var tiles []Tile
	for i, c := range m.cells {
		if c == Wall {
			tiles = append(tiles, m.TileOf(i))
		}
	}
	return tiles
}

// CountOpen returns the number of open cells.
func (m *Maze) CountOpen() int {
	n := 0
	for _, c := range m.cells {
		if c == Open {
			n++
		}
	}
	return n
}

var neighbours = [4][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}}

// Reachable flood fills open cells from the given tile and returns the set of
// reached tiles keyed by row-major index. An empty map is returned when from is
// not open.
func (m *Maze) Reachable(from Tile) map[int]bool {
	seen := make(map[int]bool)
	if !m.IsOpen(from) {
		return seen
	}

	queue := []Tile{from}
	seen[m.Index(from)] = true
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range neighbours {
			next := cur.Add(d[0], d[1])
			if !m.IsOpen(next) || seen[m.Index(next)] {
				continue
			}
			seen[m.Index(next)] = true
			queue = append(queue, next)
		}
	}
	return seen
}

// String renders the grid with '#' for walls and '.' for open cells, one line per row.
func (m *Maze) String() string {
	var sb strings.Builder
	sb.Grow((m.cols + 1) * m.rows)
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			if m.cells[r*m.cols+c] == Open {
				sb.WriteByte('.')
			} else {
				sb.WriteByte('#')
			}
		}
		if r < m.rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Parse builds a maze from '#'/'.' rows. All rows must share the same width.
func Parse(lines ...string) (*Maze, error) {
	if len(lines) == 0 || len(lines[0]) == 0 {
		return nil, fmt.Errorf("parsing maze: %w", ErrInvalidDimensions)
	}

	m := newMaze(len(lines[0]), len(lines))
	for r, line := range lines {
		if len(line) != m.cols {
			return nil, fmt.Errorf("parsing maze: row %d has width %d, want %d", r, len(line), m.cols)
		}
		for c, ch := range line {
			switch ch {
			case '.':
				m.set(Tile{c, r}, Open)
			case '#':
			default:
				return nil, fmt.Errorf("parsing maze: unexpected %q at %d,%d", ch, c, r)
			}
		}
	}
	return m, nil
}
