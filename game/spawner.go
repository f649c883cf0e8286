package game

import (
	"math/rand/v2"

	"github.com/plus3/shelfmaze/maze"
	"github.com/plus3/shelfmaze/spatial"
)

// DropIntent describes a book a shelf is about to drop.
type DropIntent struct {
	Shelf     maze.Tile
	From      maze.Vec
	Target    maze.Tile
	Velocity  maze.Vec
	FireAt    float64
	ExpiresAt float64
}

// Spawner decides whether a bumped shelf drops a book and where the book is aimed.
type Spawner struct {
	cfg   HazardConfig
	index *spatial.Index
	rng   *rand.Rand

	// Reserved excludes tiles already promised to a queued drop. May be nil.
	Reserved func(maze.Tile) bool
}

func NewSpawner(cfg HazardConfig, index *spatial.Index, rng *rand.Rand) *Spawner {
	return &Spawner{cfg: cfg, index: index, rng: rng}
}

// SetIndex points the spawner at a freshly built level.
func (sp *Spawner) SetIndex(index *spatial.Index) {
	sp.index = index
}

// SelectTarget picks the open, unoccupied tile nearest the player within the
// search radius, falling back to the tile nearest the shelf anywhere in the maze.
func (sp *Spawner) SelectTarget(shelf maze.Tile, player maze.Vec) (maze.Tile, bool) {
	return sp.selectTarget(shelf, player, nil)
}

// selectTarget is SelectTarget that also passes over tiles for which skip
// reports true. skip may be nil.
func (sp *Spawner) selectTarget(shelf maze.Tile, player maze.Vec, skip func(maze.Tile) bool) (maze.Tile, bool) {
	layout := sp.index.Layout()
	radius := sp.cfg.SearchRadius * layout.TileSize

	exclude := sp.Reserved
	if skip != nil {
		exclude = func(t maze.Tile) bool {
			return skip(t) || (sp.Reserved != nil && sp.Reserved(t))
		}
	}

	if t, ok := sp.index.Nearest(player, radius, exclude); ok {
		return t, true
	}
	return sp.index.Nearest(layout.TileToWorld(shelf), -1, exclude)
}

// Aim returns the launch velocity from a shelf position toward a target tile.
func (sp *Spawner) Aim(from maze.Vec, target maze.Tile) maze.Vec {
	dir := sp.index.Layout().TileToWorld(target).Sub(from)
	return dir.Normalize().Scale(sp.cfg.Impulse)
}

// TryDrop rolls for a drop from shelf at session time now. On success it
// starts the shelf's cooldown and returns the intent. No viable target, an
// active cooldown and a failed roll all return false.
func (sp *Spawner) TryDrop(shelf *Shelf, now float64, player maze.Vec) (DropIntent, bool) {
	if now < shelf.NextDropAllowedAt {
		return DropIntent{}, false
	}

	target, ok := sp.SelectTarget(shelf.Tile, player)
	if !ok {
		return DropIntent{}, false
	}

	if sp.rng.Float64() >= sp.cfg.FallChance {
		return DropIntent{}, false
	}

	shelf.NextDropAllowedAt = now + sp.cfg.Cooldown
	from := sp.index.Layout().TileToWorld(shelf.Tile)
	fireAt := now + sp.cfg.DropDelay
	return DropIntent{
		Shelf:     shelf.Tile,
		From:      from,
		Target:    target,
		Velocity:  sp.Aim(from, target),
		FireAt:    fireAt,
		ExpiresAt: fireAt + sp.cfg.Lifetime,
	}, true
}
