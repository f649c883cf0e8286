package game

import "github.com/plus3/shelfmaze/maze"

// Sound names carried by PlaySound.
const (
	SoundCollect  = "collect"
	SoundBookFall = "bookFall"
	SoundLevelUp  = "levelUp"
	SoundHit      = "hit"
)

// Event is an intent or notification for a collaborator outside the core:
// renderers, audio, persistence, spectators.
type Event interface {
	Kind() string
}

type MazeBuilt struct {
	Level        int
	Maze         *maze.Maze
	Layout       maze.Layout
	Start        maze.Tile
	Collectibles []CollectibleState
	Countdown    float64
}

type PlayerMoved struct {
	Position maze.Vec
	Facing   Facing
}

type CollectibleCollected struct {
	ID    int
	Found int
	Total int
}

// ShelfShook announces a queued drop. The book follows after the drop delay.
type ShelfShook struct {
	Shelf  maze.Tile
	Target maze.Tile
	FireAt float64
}

type HazardSpawned struct {
	Serial   int
	Position maze.Vec
	Velocity maze.Vec
	Target   maze.Tile
}

type HazardExpired struct {
	Serial int
}

type LevelUp struct {
	Level     int
	Cols      int
	Rows      int
	Countdown float64
}

type GameOver struct {
	Level        int
	HighScore    int
	NewHighScore bool
	Reason       EndReason
}

type PlaySound struct {
	Name string
}

// PersistHighScore asks the store to save a new high score.
type PersistHighScore struct {
	Score int
}

type Paused struct{}

type Resumed struct{}

func (MazeBuilt) Kind() string            { return "maze_built" }
func (PlayerMoved) Kind() string          { return "player_moved" }
func (CollectibleCollected) Kind() string { return "collectible_collected" }
func (ShelfShook) Kind() string           { return "shelf_shook" }
func (HazardSpawned) Kind() string        { return "hazard_spawned" }
func (HazardExpired) Kind() string        { return "hazard_expired" }
func (LevelUp) Kind() string              { return "level_up" }
func (GameOver) Kind() string             { return "game_over" }
func (PlaySound) Kind() string            { return "play_sound" }
func (PersistHighScore) Kind() string     { return "persist_high_score" }
func (Paused) Kind() string               { return "paused" }
func (Resumed) Kind() string              { return "resumed" }

// Outbox collects the events of a session until a client drains them.
type Outbox struct {
	events []Event
}

func (o *Outbox) Emit(e Event) {
	o.events = append(o.events, e)
}

// Drain returns the queued events in emission order and empties the outbox.
func (o *Outbox) Drain() []Event {
	events := o.events
	o.events = nil
	return events
}

func (o *Outbox) Len() int {
	return len(o.events)
}

// Listener receives events one at a time.
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(Event)

func (f ListenerFunc) OnEvent(e Event) { f(e) }

// Dispatch hands every event to every listener, in order.
func Dispatch(events []Event, listeners ...Listener) {
	for _, e := range events {
		for _, l := range listeners {
			l.OnEvent(e)
		}
	}
}
