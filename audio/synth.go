package audio

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/plus3/shelfmaze/game"
)

// Wave is an oscillator shape.
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

type oscillator struct {
	freq     float64
	phase    float64
	length   int
	position int
	wave     Wave
	rate     beep.SampleRate
	noise    *rand.Rand
}

// Tone returns a streamer playing freq for d. Noise ignores freq.
func Tone(freq float64, d time.Duration, wave Wave, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:   freq,
		length: rate.N(d),
		wave:   wave,
		rate:   rate,
		noise:  rand.New(rand.NewPCG(uint64(freq*1000), uint64(d))),
	}
}

func (o *oscillator) Stream(samples [][2]float64) (int, bool) {
	if o.position >= o.length {
		return 0, false
	}
	for i := range samples {
		if o.position >= o.length {
			return i, true
		}

		var v float64
		switch o.wave {
		case WaveSine:
			v = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			v = 1
			if o.phase >= 0.5 {
				v = -1
			}
		case WaveSaw:
			v = 2 * (o.phase - 0.5)
		case WaveNoise:
			v = o.noise.Float64()*2 - 1
		}
		samples[i][0], samples[i][1] = v, v

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope fades a stream in over attack and out over its final release.
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

func shape(s beep.Streamer, d, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer: s,
		attack:   rate.N(attack),
		release:  rate.N(release),
		total:    rate.N(d),
	}
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.streamer.Stream(samples)
	for i := range n {
		if e.position >= e.total {
			return i, i > 0
		}

		gain := 1.0
		if e.position < e.attack {
			gain = float64(e.position) / float64(e.attack)
		}
		if left := e.total - e.position; e.release > 0 && left < e.release {
			gain = min(gain, float64(left)/float64(e.release))
		}
		samples[i][0] *= gain
		samples[i][1] *= gain
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// gain scales a stream linearly. Zero or less is silent.
func gain(s beep.Streamer, v float64) beep.Streamer {
	if v <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(v)}
}

func note(freq float64, d time.Duration, wave Wave, rate beep.SampleRate) beep.Streamer {
	return shape(Tone(freq, d, wave, rate), d, 5*time.Millisecond, d/2, rate)
}

// synth builds the streamer for one named sound, or false for an unknown name.
func synth(name string, rate beep.SampleRate) (beep.Streamer, bool) {
	switch name {
	case game.SoundCollect:
		// Bell: fundamental plus an octave.
		d := 250 * time.Millisecond
		return beep.Mix(
			gain(note(880, d, WaveSine, rate), 0.7),
			gain(note(1760, d, WaveSine, rate), 0.3),
		), true
	case game.SoundBookFall:
		// Rustle of pages, then the thud.
		return beep.Seq(
			gain(shape(Tone(0, 220*time.Millisecond, WaveNoise, rate), 220*time.Millisecond, 60*time.Millisecond, 100*time.Millisecond, rate), 0.35),
			gain(note(90, 120*time.Millisecond, WaveSquare, rate), 0.6),
		), true
	case game.SoundLevelUp:
		d := 110 * time.Millisecond
		return beep.Seq(
			gain(note(523.25, d, WaveSine, rate), 0.6),
			gain(note(659.25, d, WaveSine, rate), 0.6),
			gain(note(783.99, 2*d, WaveSine, rate), 0.6),
		), true
	case game.SoundHit:
		return gain(note(110, 400*time.Millisecond, WaveSaw, rate), 0.5), true
	}
	return nil, false
}
