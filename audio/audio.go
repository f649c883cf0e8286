// Package audio turns PlaySound events into synthesized sound effects.
package audio

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/plus3/shelfmaze/game"
)

const DefaultSampleRate = beep.SampleRate(44100)

type Options struct {
	SampleRate beep.SampleRate
	// Volume is a linear master gain; 1 plays sounds as synthesized.
	Volume float64
	// Silent skips the speaker entirely. Sounds are still counted.
	Silent bool
	Logger *slog.Logger
}

// Player plays sound effects on a shared mixer. It implements game.Listener
// and is safe for concurrent use.
type Player struct {
	mu      sync.Mutex
	opts    Options
	mixer   *beep.Mixer
	started bool
	played  map[string]int
	logger  *slog.Logger
}

func New(opts Options) *Player {
	if opts.SampleRate == 0 {
		opts.SampleRate = DefaultSampleRate
	}
	if opts.Volume == 0 {
		opts.Volume = 1
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Player{
		opts:   opts,
		mixer:  &beep.Mixer{},
		played: make(map[string]int),
		logger: logger.With("component", "audio"),
	}
}

// Start opens the speaker. A silent player never touches the device.
func (p *Player) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started || p.opts.Silent {
		return nil
	}
	rate := p.opts.SampleRate
	if err := speaker.Init(rate, rate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.started = true
	p.logger.Info("speaker started", "sample_rate", int(rate))
	return nil
}

// Close silences everything still playing.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	p.started = false
}

// Play starts the named sound. Unknown names are ignored and return false.
func (p *Player) Play(name string) bool {
	s, ok := synth(name, p.opts.SampleRate)
	if !ok {
		p.logger.Debug("unknown sound", "name", name)
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.played[name]++
	if !p.started {
		return true
	}
	speaker.Lock()
	p.mixer.Add(gain(s, p.opts.Volume))
	speaker.Unlock()
	return true
}

// Played reports how many times name has been played.
func (p *Player) Played(name string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.played[name]
}

func (p *Player) OnEvent(e game.Event) {
	if s, ok := e.(game.PlaySound); ok {
		p.Play(s.Name)
	}
}
