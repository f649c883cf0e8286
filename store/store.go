// Package store persists the best level a player has reached.
package store

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/plus3/shelfmaze/game"
)

// HighScores loads and saves the high score. Save keeps the larger of the
// stored and the given score.
type HighScores interface {
	Load(ctx context.Context) (int, error)
	Save(ctx context.Context, score int) error
	Close() error
}

// Open picks a store for dsn: postgres:// and postgresql:// URLs open
// Postgres, an empty dsn keeps scores in memory, anything else is a JSON file path.
func Open(ctx context.Context, dsn string) (HighScores, error) {
	switch {
	case dsn == "":
		return NewMemory(0), nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return NewPostgres(ctx, dsn)
	default:
		return NewJSONFile(dsn), nil
	}
}

// Memory is a process-local store.
type Memory struct {
	mu    sync.Mutex
	score int
}

func NewMemory(score int) *Memory {
	return &Memory{score: score}
}

func (m *Memory) Load(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.score, nil
}

func (m *Memory) Save(_ context.Context, score int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.score = max(m.score, score)
	return nil
}

func (m *Memory) Close() error { return nil }

const (
	saveTimeout  = 5 * time.Second
	pendingSaves = 8
)

// Persister saves PersistHighScore events on a background goroutine so a slow
// store never stalls the caller dispatching events.
type Persister struct {
	store  HighScores
	logger *slog.Logger
	queue  chan int
	done   chan struct{}
	once   sync.Once
}

func NewPersister(store HighScores, logger *slog.Logger) *Persister {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Persister{
		store:  store,
		logger: logger.With("component", "store"),
		queue:  make(chan int, pendingSaves),
		done:   make(chan struct{}),
	}
	go p.saveLoop()
	return p
}

// OnEvent queues the score and returns. A score arriving while the queue is
// full is dropped.
func (p *Persister) OnEvent(e game.Event) {
	hs, ok := e.(game.PersistHighScore)
	if !ok {
		return
	}
	select {
	case p.queue <- hs.Score:
	default:
		p.logger.Warn("save queue full, dropping high score", "score", hs.Score)
	}
}

// Close waits for queued scores to be saved. It does not close the store.
// OnEvent must not be called after Close.
func (p *Persister) Close() {
	p.once.Do(func() { close(p.queue) })
	<-p.done
}

func (p *Persister) saveLoop() {
	defer close(p.done)
	for score := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		err := p.store.Save(ctx, score)
		cancel()
		if err != nil {
			p.logger.Error("failed to persist high score", "score", score, "error", err)
			continue
		}
		p.logger.Info("high score saved", "score", score)
	}
}
