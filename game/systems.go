package game

import (
	"math"

	"github.com/plus3/shelfmaze/ecs"
	"github.com/plus3/shelfmaze/maze"
	"github.com/zyedidia/generic/mapset"
)

// ClockSystem advances the level and session clocks and ends the session when
// the countdown runs out.
type ClockSystem struct {
	State ecs.Singleton[SessionState]
}

func (s *ClockSystem) Execute(frame *ecs.UpdateFrame) {
	st := s.State.Get()
	if !st.playing() {
		return
	}

	st.Elapsed += frame.DeltaTime
	st.Clock += frame.DeltaTime
	if st.Elapsed >= st.Countdown {
		st.end(EndTimeout)
	}
}

// ControlSystem turns the input vector into player velocity and facing.
type ControlSystem struct {
	Players ecs.Query[struct {
		*Velocity
		*Player
	}]
	State ecs.Singleton[SessionState]
	Input ecs.Singleton[Input]

	Speed float64
}

func (s *ControlSystem) Execute(frame *ecs.UpdateFrame) {
	if !s.State.Get().playing() {
		return
	}

	move := s.Input.Get().Move
	for p := range s.Players.Values() {
		p.Player.Facing = facingFor(p.Player.Facing, move)
		if move.IsZero() {
			*p.Velocity = Velocity{}
			continue
		}
		*p.Velocity = Velocity(move.Normalize().Scale(s.Speed))
	}
}

type movingBody struct {
	*Position
	*Velocity
	*Body
	Player *Player `ecs:"optional"`
	Hazard *Hazard `ecs:"optional"`
}

// MovementSystem integrates players and hazards against the maze walls.
// Shelves the player is pushed back by become wall contacts.
type MovementSystem struct {
	Bodies   ecs.Query[movingBody]
	State    ecs.Singleton[SessionState]
	Arena    ecs.Singleton[Arena]
	Contacts ecs.Singleton[ContactBuffer]
	Outbox   ecs.Singleton[Outbox]

	Damping float64

	lastFacing Facing
}

func (s *MovementSystem) Execute(frame *ecs.UpdateFrame) {
	if !s.State.Get().playing() {
		return
	}

	arena := s.Arena.Get()
	for _, b := range s.Bodies.Iter() {
		switch {
		case b.Player != nil:
			s.movePlayer(frame.DeltaTime, arena, b)
		case b.Hazard != nil:
			s.moveHazard(frame.DeltaTime, arena, b)
		}
	}
}

func (s *MovementSystem) movePlayer(dt float64, arena *Arena, b movingBody) {
	before := maze.Vec(*b.Position)
	pos := before
	contacts := s.Contacts.Get()

	slide(arena.Index, &pos, maze.Vec(*b.Velocity).Scale(dt), b.Radius, nil, func(t maze.Tile) {
		if shelf, ok := arena.ShelfAt(t); ok {
			contacts.Add(ContactPlayerWall, shelf)
		}
	})
	*b.Position = Position(pos)

	if pos != before || b.Player.Facing != s.lastFacing {
		s.lastFacing = b.Player.Facing
		s.Outbox.Get().Emit(PlayerMoved{Position: pos, Facing: b.Player.Facing})
	}
}

func (s *MovementSystem) moveHazard(dt float64, arena *Arena, b movingBody) {
	vel := maze.Vec(*b.Velocity)
	if vel.IsZero() {
		return
	}

	pos := maze.Vec(*b.Position)
	source := b.Hazard.Source
	stopX, stopY := slide(arena.Index, &pos, vel.Scale(dt), b.Radius, func(t maze.Tile) bool {
		return t == source
	}, nil)
	*b.Position = Position(pos)

	if stopX {
		vel.X = 0
	}
	if stopY {
		vel.Y = 0
	}
	*b.Velocity = Velocity(vel.Scale(math.Exp(-s.Damping * dt)))
}

// ContactSystem finds pages and books overlapping the player.
type ContactSystem struct {
	Players ecs.Query[struct {
		*Position
		*Body
		*Player
	}]
	Pages ecs.Query[struct {
		*Position
		*Body
		*Collectible
	}]
	Hazards ecs.Query[struct {
		*Position
		*Body
		*Hazard
	}]
	State    ecs.Singleton[SessionState]
	Contacts ecs.Singleton[ContactBuffer]
}

func (s *ContactSystem) Execute(frame *ecs.UpdateFrame) {
	if !s.State.Get().playing() {
		return
	}

	contacts := s.Contacts.Get()
	for p := range s.Players.Values() {
		at, r := maze.Vec(*p.Position), p.Body.Radius
		for id, page := range s.Pages.Iter() {
			if !page.Taken && circlesTouch(at, r, maze.Vec(*page.Position), page.Body.Radius) {
				contacts.Add(ContactPlayerCollectible, id)
			}
		}
		for id, book := range s.Hazards.Iter() {
			if circlesTouch(at, r, maze.Vec(*book.Position), book.Body.Radius) {
				contacts.Add(ContactPlayerHazard, id)
			}
		}
	}
}

// RouterSystem hands the tick's contacts to the collision router.
type RouterSystem struct {
	State    ecs.Singleton[SessionState]
	Contacts ecs.Singleton[ContactBuffer]

	Router *CollisionRouter
}

func (s *RouterSystem) Execute(frame *ecs.UpdateFrame) {
	contacts := s.Contacts.Get().Drain()
	if !s.State.Get().playing() {
		return
	}
	s.Router.Route(frame, contacts)
}

// TimelineSystem releases queued drops whose delay has passed.
type TimelineSystem struct {
	Players ecs.Query[struct {
		*Position
		*Player
	}]
	State    ecs.Singleton[SessionState]
	Arena    ecs.Singleton[Arena]
	Timeline ecs.Singleton[Timeline]
	Outbox   ecs.Singleton[Outbox]

	Spawner *Spawner
	Radius  float64
}

func (s *TimelineSystem) Execute(frame *ecs.UpdateFrame) {
	st := s.State.Get()
	if !st.playing() {
		return
	}

	due := s.Timeline.Get().Due(st.Clock)
	if len(due) == 0 {
		return
	}

	_, player, ok := s.Players.First()
	if !ok {
		return
	}
	index := s.Arena.Get().Index
	outbox := s.Outbox.Get()

	// Popped drops are no longer reserved, so books released together must
	// not share a target.
	chosen := mapset.New[maze.Tile]()
	for _, d := range due {
		// The player has moved since the shelf shook; aim at where they are now.
		target, ok := s.Spawner.selectTarget(d.Shelf, maze.Vec(*player.Position), chosen.Has)
		if !ok {
			if !index.Viable(d.Target) || chosen.Has(d.Target) {
				continue
			}
			target = d.Target
		}
		chosen.Put(target)
		vel := s.Spawner.Aim(d.From, target)

		st.Hazards++
		frame.Commands.Spawn(
			Position(d.From),
			Velocity(vel),
			Body{Radius: s.Radius},
			Hazard{
				Serial:    st.Hazards,
				Source:    d.Shelf,
				Target:    target,
				SpawnedAt: st.Clock,
				ExpiresAt: d.ExpiresAt,
			},
		)
		outbox.Emit(HazardSpawned{Serial: st.Hazards, Position: d.From, Velocity: vel, Target: target})
		outbox.Emit(PlaySound{Name: SoundBookFall})
	}
}

// HazardLifetimeSystem removes books whose lifetime is over and frees their
// tiles for drops released later in the same pass.
type HazardLifetimeSystem struct {
	Hazards ecs.Query[struct{ *Hazard }]
	State   ecs.Singleton[SessionState]
	Arena   ecs.Singleton[Arena]
	Outbox  ecs.Singleton[Outbox]
}

func (s *HazardLifetimeSystem) Execute(frame *ecs.UpdateFrame) {
	st := s.State.Get()
	if !st.playing() {
		return
	}

	for id, h := range s.Hazards.Iter() {
		if h.ExpiresAt <= st.Clock {
			if index := s.Arena.Get().Index; index != nil && h.Placed {
				index.Vacate(h.Cell)
				h.Placed = false
			}
			frame.Commands.Delete(id)
			s.Outbox.Get().Emit(HazardExpired{Serial: h.Serial})
		}
	}
}

// OccupancySystem rebuilds the hazard occupancy overlay from book positions.
type OccupancySystem struct {
	Hazards ecs.Query[struct {
		*Position
		*Hazard
	}]
	State ecs.Singleton[SessionState]
	Arena ecs.Singleton[Arena]
}

func (s *OccupancySystem) Execute(frame *ecs.UpdateFrame) {
	index := s.Arena.Get().Index
	if index == nil {
		return
	}

	now := s.State.Get().Clock
	index.Reset()
	for h := range s.Hazards.Values() {
		if h.ExpiresAt > now {
			h.Cell = index.TileAt(maze.Vec(*h.Position))
			h.Placed = true
			index.Occupy(h.Cell)
		}
	}
}
