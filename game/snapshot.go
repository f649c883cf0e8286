package game

import (
	"cmp"
	"slices"

	"github.com/plus3/shelfmaze/ecs"
	"github.com/plus3/shelfmaze/maze"
)

// PlayerState is a read-only copy of the player for renderers.
type PlayerState struct {
	Position maze.Vec
	Velocity maze.Vec
	Facing   Facing
	Tile     maze.Tile
}

type CollectibleState struct {
	ID       int
	Tile     maze.Tile
	Position maze.Vec
}

type HazardState struct {
	Serial    int
	Position  maze.Vec
	Velocity  maze.Vec
	Source    maze.Tile
	Target    maze.Tile
	ExpiresAt float64
	// Remaining is the lifetime left, in seconds.
	Remaining float64
}

type ShelfState struct {
	Tile     maze.Tile
	Position maze.Vec
	Shaking  bool
}

// State returns a copy of the session state.
func (s *Session) State() SessionState {
	return *s.state.Get()
}

func (s *Session) Config() Config {
	return s.cfg
}

func (s *Session) Maze() *maze.Maze {
	return s.arena.Get().Maze
}

func (s *Session) Layout() maze.Layout {
	return s.arena.Get().Layout
}

// Start returns the tile the player spawned on this level.
func (s *Session) Start() maze.Tile {
	return s.arena.Get().Start
}

// PlayerEntity returns the player's entity in Storage.
func (s *Session) PlayerEntity() ecs.EntityId {
	return s.arena.Get().Player
}

func (s *Session) Player() PlayerState {
	arena := s.arena.Get()
	p := s.players.Get(arena.Player)
	if p == nil {
		return PlayerState{}
	}
	pos := maze.Vec(*p.Position)
	return PlayerState{
		Position: pos,
		Velocity: maze.Vec(*p.Velocity),
		Facing:   p.Facing,
		Tile:     arena.Layout.WorldToTile(pos),
	}
}

// Collectibles lists the pages still in the maze, by ID.
func (s *Session) Collectibles() []CollectibleState {
	var out []CollectibleState
	for p := range s.pages.Values() {
		if p.Taken {
			continue
		}
		out = append(out, CollectibleState{ID: p.ID, Tile: p.Tile, Position: maze.Vec(*p.Position)})
	}
	slices.SortFunc(out, func(a, b CollectibleState) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// Hazards lists the falling books, oldest first.
func (s *Session) Hazards() []HazardState {
	now := s.state.Get().Clock
	var out []HazardState
	for h := range s.hazards.Values() {
		out = append(out, HazardState{
			Serial:    h.Serial,
			Position:  maze.Vec(*h.Position),
			Velocity:  maze.Vec(*h.Velocity),
			Source:    h.Source,
			Target:    h.Target,
			ExpiresAt: h.ExpiresAt,
			Remaining: max(h.ExpiresAt-now, 0),
		})
	}
	slices.SortFunc(out, func(a, b HazardState) int { return cmp.Compare(a.Serial, b.Serial) })
	return out
}

// Shelves lists every shelf in row-major order.
func (s *Session) Shelves() []ShelfState {
	now := s.state.Get().Clock
	m := s.arena.Get().Maze
	var out []ShelfState
	for sh := range s.shelves.Values() {
		out = append(out, ShelfState{Tile: sh.Tile, Position: maze.Vec(*sh.Position), Shaking: sh.ShakeUntil > now})
	}
	slices.SortFunc(out, func(a, b ShelfState) int { return cmp.Compare(m.Index(a.Tile), m.Index(b.Tile)) })
	return out
}

// PendingDrops returns the drops queued behind shaking shelves.
func (s *Session) PendingDrops() []DropIntent {
	return s.timeline.Get().Pending()
}

// Scheduler exposes the system scheduler for stats overlays.
func (s *Session) Scheduler() *ecs.Scheduler {
	return s.scheduler
}

func (s *Session) Storage() *ecs.Storage {
	return s.storage
}
