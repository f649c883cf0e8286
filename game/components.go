package game

import (
	"math"

	"github.com/plus3/shelfmaze/ecs"
	"github.com/plus3/shelfmaze/maze"
)

//go:generate go run golang.org/x/tools/cmd/stringer -type=Facing -trimprefix=Facing

// Facing is the direction the player sprite looks.
type Facing int

const (
	FacingDown Facing = iota
	FacingUp
	FacingLeft
	FacingRight
)

// Position is a world position in pixels, Y up.
type Position maze.Vec

// Velocity is in pixels per second.
type Velocity maze.Vec

// Body is the contact circle of an entity. Its bounding square collides with walls.
type Body struct {
	Radius float64
}

type Player struct {
	Facing Facing
}

// Shelf stands on every wall tile and may drop books when bumped.
type Shelf struct {
	Tile              maze.Tile
	NextDropAllowedAt float64
	ShakeUntil        float64
}

// Collectible is a page. ID is 1-based and unique within a level.
type Collectible struct {
	ID    int
	Tile  maze.Tile
	Taken bool
}

// Hazard is a falling book.
type Hazard struct {
	Serial    int
	Source    maze.Tile
	Target    maze.Tile
	SpawnedAt float64
	ExpiresAt float64

	// Cell is the tile the book holds in the occupancy overlay once Placed.
	Cell   maze.Tile
	Placed bool
}

func newRegistry() *ecs.ComponentRegistry {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[Position](registry)
	ecs.RegisterComponent[Velocity](registry)
	ecs.RegisterComponent[Body](registry)
	ecs.RegisterComponent[Player](registry)
	ecs.RegisterComponent[Shelf](registry)
	ecs.RegisterComponent[Collectible](registry)
	ecs.RegisterComponent[Hazard](registry)
	return registry
}

// facingFor turns a movement vector into a facing. The dominant axis wins; ties
// and near-zero vectors keep the current facing.
func facingFor(current Facing, d maze.Vec) Facing {
	ax, ay := math.Abs(d.X), math.Abs(d.Y)
	switch {
	case ax+ay <= 0.1, ax == ay:
		return current
	case ax > ay && d.X > 0:
		return FacingRight
	case ax > ay:
		return FacingLeft
	case d.Y > 0:
		return FacingUp
	default:
		return FacingDown
	}
}
