package game

import (
	"github.com/kamstrup/intmap"
	"github.com/plus3/shelfmaze/ecs"
	"github.com/plus3/shelfmaze/maze"
	"github.com/plus3/shelfmaze/spatial"
)

//go:generate go run golang.org/x/tools/cmd/stringer -type=Phase -trimprefix=Phase
//go:generate go run golang.org/x/tools/cmd/stringer -type=EndReason -trimprefix=End

// Phase is the session lifecycle stage.
type Phase int

const (
	PhaseBuilding Phase = iota
	PhasePlaying
	PhaseLevelComplete
	PhaseGameOver
)

// EndReason says why a session reached GameOver.
type EndReason int

const (
	EndNone EndReason = iota
	EndTimeout
	EndHit
)

// SessionState is the scalar state of a session. Systems read and write it as a singleton.
type SessionState struct {
	ID        string
	Phase     Phase
	Reason    EndReason
	Level     int
	Found     int
	Total     int
	Countdown float64
	// Elapsed restarts every level; Clock runs for the whole session and
	// drives cooldowns and hazard expiry.
	Elapsed   float64
	Clock     float64
	HighScore int
	Cols      int
	Rows      int
	Paused    bool
	Hazards   int
}

// Remaining is the countdown time left in the current level.
func (s SessionState) Remaining() float64 {
	return max(s.Countdown-s.Elapsed, 0)
}

// end moves a playing session to GameOver. Only the first terminal transition of a tick sticks.
func (s *SessionState) end(reason EndReason) {
	if s.Phase != PhasePlaying {
		return
	}
	s.Phase = PhaseGameOver
	s.Reason = reason
}

func (s *SessionState) complete() {
	if s.Phase != PhasePlaying {
		return
	}
	s.Phase = PhaseLevelComplete
}

func (s *SessionState) playing() bool {
	return s.Phase == PhasePlaying
}

// Arena is the geometry of the current level.
type Arena struct {
	Maze   *maze.Maze
	Layout maze.Layout
	Index  *spatial.Index
	Start  maze.Tile
	Player ecs.EntityId
	// Shelves maps a wall tile's row-major index to its shelf entity.
	Shelves *intmap.Map[int, ecs.EntityId]
}

// ShelfAt returns the shelf entity standing on tile.
func (a *Arena) ShelfAt(tile maze.Tile) (ecs.EntityId, bool) {
	if a.Shelves == nil || !a.Maze.InBounds(tile) {
		return 0, false
	}
	return a.Shelves.Get(a.Maze.Index(tile))
}

// Input is the movement vector for the next tick.
type Input struct {
	Move maze.Vec
}
