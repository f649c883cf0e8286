// Package game runs a library maze session: it builds levels, moves the player
// and falling books through them, and turns contacts into progress or defeat.
//
// The package holds no rendering, audio or storage. Everything a client needs to
// present or persist is emitted as an Event and drained with Session.DrainEvents.
package game

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/google/uuid"
	"github.com/kamstrup/intmap"
	"github.com/plus3/shelfmaze/ecs"
	"github.com/plus3/shelfmaze/maze"
	"github.com/plus3/shelfmaze/spatial"
)

// ErrTooManyCollectibles is returned when a level has fewer free open tiles than pages.
var ErrTooManyCollectibles = errors.New("too many collectibles for maze")

// Session owns one game from level 1 until game over and any restarts after it.
// It is not safe for concurrent use.
type Session struct {
	cfg       Config
	rng       *rand.Rand
	storage   *ecs.Storage
	scheduler *ecs.Scheduler
	spawner   *Spawner
	router    *CollisionRouter
	err       error

	state    *ecs.Singleton[SessionState]
	arena    *ecs.Singleton[Arena]
	input    *ecs.Singleton[Input]
	outbox   *ecs.Singleton[Outbox]
	timeline *ecs.Singleton[Timeline]
	contacts *ecs.Singleton[ContactBuffer]

	players  *ecs.View[playerView]
	pages    *ecs.View[pageView]
	hazards  *ecs.View[hazardView]
	shelves  *ecs.View[shelfView]
	velocity *ecs.View[struct{ *Velocity }]
}

type playerView struct {
	*Position
	*Velocity
	*Player
}

type pageView struct {
	*Position
	*Collectible
}

type hazardView struct {
	*Position
	*Velocity
	*Hazard
}

type shelfView struct {
	*Position
	*Shelf
}

// Option customises a Session.
type Option func(*Session)

// WithRand replaces the seeded RNG.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) { s.rng = rng }
}

// WithHighScore seeds the best level reached in earlier sessions.
func WithHighScore(score int) Option {
	return func(s *Session) { s.state.Get().HighScore = score }
}

// NewSession validates cfg and builds level 1.
func NewSession(cfg Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	storage := ecs.NewStorage(newRegistry())
	s := &Session{
		cfg:       cfg,
		rng:       rand.New(rand.NewPCG(seed, seed>>1|1)),
		storage:   storage,
		scheduler: ecs.NewScheduler(storage),
		router:    NewCollisionRouter(),

		state:    ecs.NewSingleton(storage, SessionState{Level: 1, Cols: cfg.Cols, Rows: cfg.Rows}),
		arena:    ecs.NewSingleton[Arena](storage),
		input:    ecs.NewSingleton[Input](storage),
		outbox:   ecs.NewSingleton[Outbox](storage),
		timeline: ecs.NewSingleton[Timeline](storage),
		contacts: ecs.NewSingleton[ContactBuffer](storage),

		players:  ecs.NewView[playerView](storage),
		pages:    ecs.NewView[pageView](storage),
		hazards:  ecs.NewView[hazardView](storage),
		shelves:  ecs.NewView[shelfView](storage),
		velocity: ecs.NewView[struct{ *Velocity }](storage),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.spawner = NewSpawner(cfg.Hazard, nil, s.rng)
	s.spawner.Reserved = s.timeline.Get().Reserved

	s.router.Handle(ContactPlayerWall, s.onShelf)
	s.router.Handle(ContactPlayerCollectible, s.onCollectible)
	s.router.Handle(ContactPlayerHazard, s.onHazard)

	s.scheduler.Register(&ClockSystem{})
	s.scheduler.Register(&ControlSystem{Speed: cfg.MoveSpeed})
	s.scheduler.Register(&MovementSystem{Damping: cfg.Hazard.Damping})
	s.scheduler.Register(&ContactSystem{})
	s.scheduler.Register(&RouterSystem{Router: s.router})
	s.scheduler.Register(&HazardLifetimeSystem{})
	s.scheduler.Register(&TimelineSystem{Spawner: s.spawner, Radius: cfg.Hazard.Radius})
	s.scheduler.Register(&OccupancySystem{})

	s.state.Get().ID = uuid.NewString()
	if err := s.build(); err != nil {
		return nil, err
	}
	return s, nil
}

// Tick advances a playing session by dt seconds with the given movement input.
// Paused and finished sessions ignore ticks. Long ticks run as several
// scheduler passes of at most Config.MaxStep seconds each.
func (s *Session) Tick(dt float64, move maze.Vec) error {
	if s.err != nil {
		return s.err
	}

	st := s.state.Get()
	if !st.playing() || st.Paused || dt <= 0 {
		return nil
	}

	s.input.Get().Move = move
	steps := max(int(math.Ceil(dt/s.cfg.MaxStep-1e-9)), 1)
	step := dt / float64(steps)
	for i := 0; i < steps && st.playing(); i++ {
		s.scheduler.Once(step)
	}

	switch st.Phase {
	case PhaseLevelComplete:
		if err := s.advance(); err != nil {
			// The level could not be built; the session cannot continue.
			s.err = err
			return err
		}
	case PhaseGameOver:
		s.finish()
	}
	return nil
}

// build generates the maze for the current level and populates it.
func (s *Session) build() error {
	st := s.state.Get()
	st.Phase = PhaseBuilding

	m, start, err := maze.Generate(st.Cols, st.Rows, s.rng)
	if err != nil {
		return fmt.Errorf("building level %d: %w", st.Level, err)
	}

	candidates := slices.DeleteFunc(m.OpenTiles(), func(t maze.Tile) bool { return t == start })
	if len(candidates) < s.cfg.Collectibles {
		return fmt.Errorf("building level %d: %w: %d pages, %d free tiles",
			st.Level, ErrTooManyCollectibles, s.cfg.Collectibles, len(candidates))
	}

	layout := maze.NewLayout(m, s.cfg.TileSize)
	index := spatial.New(m, layout)

	s.storage.Clear()
	s.timeline.Get().Clear()
	s.contacts.Get().Drain()

	walls := m.WallTiles()
	shelves := intmap.New[int, ecs.EntityId](len(walls))
	for _, t := range walls {
		id := s.storage.Spawn(Position(layout.TileToWorld(t)), Shelf{Tile: t})
		shelves.Put(m.Index(t), id)
	}

	player := s.storage.Spawn(
		Position(layout.TileToWorld(start)),
		Velocity{},
		Body{Radius: s.cfg.PlayerRadius},
		Player{Facing: FacingDown},
	)

	// Partial Fisher-Yates: the first n candidates become pages.
	n := s.cfg.Collectibles
	for i := range n {
		j := i + s.rng.IntN(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}
	pages := make([]CollectibleState, n)
	for i, t := range candidates[:n] {
		pos := layout.TileToWorld(t)
		s.storage.Spawn(Position(pos), Body{Radius: s.cfg.CollectibleRadius}, Collectible{ID: i + 1, Tile: t})
		pages[i] = CollectibleState{ID: i + 1, Tile: t, Position: pos}
	}

	s.arena.Set(Arena{
		Maze:    m,
		Layout:  layout,
		Index:   index,
		Start:   start,
		Player:  player,
		Shelves: shelves,
	})
	s.spawner.SetIndex(index)

	st.Found = 0
	st.Total = n
	st.Elapsed = 0
	st.Reason = EndNone
	st.Countdown = s.cfg.CountdownFor(st.Level)

	s.emit(MazeBuilt{
		Level:        st.Level,
		Maze:         m,
		Layout:       layout,
		Start:        start,
		Collectibles: pages,
		Countdown:    st.Countdown,
	})
	st.Phase = PhasePlaying
	return nil
}

func (s *Session) advance() error {
	st := s.state.Get()
	st.Level++
	st.Cols, st.Rows = s.cfg.DimensionsFor(st.Level)

	s.emit(LevelUp{Level: st.Level, Cols: st.Cols, Rows: st.Rows, Countdown: s.cfg.CountdownFor(st.Level)})
	s.emit(PlaySound{Name: SoundLevelUp})
	return s.build()
}

func (s *Session) finish() {
	for v := range s.velocity.Values() {
		*v.Velocity = Velocity{}
	}
	s.timeline.Get().Clear()

	st := s.state.Get()
	isNew := st.Level > st.HighScore
	if isNew {
		st.HighScore = st.Level
	}

	s.emit(GameOver{Level: st.Level, HighScore: st.HighScore, NewHighScore: isNew, Reason: st.Reason})
	s.emit(PlaySound{Name: SoundHit})
	if isNew {
		s.emit(PersistHighScore{Score: st.HighScore})
	}
}

// Restart begins a new game at level 1 after a game over. It returns false and
// does nothing in any other phase.
func (s *Session) Restart() bool {
	st := s.state.Get()
	if st.Phase != PhaseGameOver {
		return false
	}

	*st = SessionState{
		ID:        uuid.NewString(),
		Level:     1,
		Cols:      s.cfg.Cols,
		Rows:      s.cfg.Rows,
		HighScore: st.HighScore,
	}
	s.err = s.build()
	return true
}

// Pause freezes a playing session. It reports whether the state changed.
func (s *Session) Pause() bool {
	st := s.state.Get()
	if !st.playing() || st.Paused {
		return false
	}
	st.Paused = true
	s.emit(Paused{})
	return true
}

// Resume unfreezes a paused session. It reports whether the state changed.
func (s *Session) Resume() bool {
	st := s.state.Get()
	if !st.playing() || !st.Paused {
		return false
	}
	st.Paused = false
	s.emit(Resumed{})
	return true
}

func (s *Session) TogglePause() bool {
	if s.state.Get().Paused {
		return s.Resume()
	}
	return s.Pause()
}

func (s *Session) emit(e Event) {
	s.outbox.Get().Emit(e)
}

// DrainEvents returns every event emitted since the previous call.
func (s *Session) DrainEvents() []Event {
	return s.outbox.Get().Drain()
}

func (s *Session) onShelf(frame *ecs.UpdateFrame, id ecs.EntityId) {
	st := s.state.Get()
	shelf := ecs.ReadComponent[Shelf](frame.Storage, id)
	player := s.players.Get(s.arena.Get().Player)
	if !st.playing() || shelf == nil || player == nil {
		return
	}

	intent, ok := s.spawner.TryDrop(shelf, st.Clock, maze.Vec(*player.Position))
	if !ok {
		return
	}
	shelf.ShakeUntil = intent.FireAt
	s.timeline.Get().Schedule(intent)
	s.emit(ShelfShook{Shelf: intent.Shelf, Target: intent.Target, FireAt: intent.FireAt})
}

func (s *Session) onCollectible(frame *ecs.UpdateFrame, id ecs.EntityId) {
	st := s.state.Get()
	page := ecs.ReadComponent[Collectible](frame.Storage, id)
	if !st.playing() || page == nil || page.Taken {
		return
	}

	page.Taken = true
	frame.Commands.Delete(id)
	st.Found++
	s.emit(CollectibleCollected{ID: page.ID, Found: st.Found, Total: st.Total})
	s.emit(PlaySound{Name: SoundCollect})
	if st.Found >= st.Total {
		st.complete()
	}
}

func (s *Session) onHazard(*ecs.UpdateFrame, ecs.EntityId) {
	s.state.Get().end(EndHit)
}
