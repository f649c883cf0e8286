package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/plus3/shelfmaze/game"
	"github.com/plus3/shelfmaze/maze"
	"golang.org/x/sync/errgroup"
)

// Each walker keeps a direction for this long before picking another.
const turnEvery = 0.5

func main() {
	duration := flag.Duration("duration", 10*time.Second, "The total duration the test should run for.")
	sessionCount := flag.Int("sessions", 16, "The number of sessions ticked side by side.")
	seed := flag.Uint64("seed", 1, "Base seed. Session i uses seed+i.")
	step := flag.Float64("dt", 1.0/60.0, "Simulated seconds per tick.")
	workers := flag.Int("workers", runtime.NumCPU(), "The number of goroutines ticking sessions.")
	gcPauseMetrics := flag.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flag.Parse()

	log.Println("Starting maze stress test...")

	// 1. Build the sessions
	walkers := make([]*walker, 0, *sessionCount)
	for i := range *sessionCount {
		cfg := game.DefaultConfig()
		cfg.Seed = *seed + uint64(i)
		w, err := newWalker(cfg)
		if err != nil {
			log.Fatalf("Failed to create session %d: %v", i, err)
		}
		walkers = append(walkers, w)
	}
	log.Printf("Created %d sessions.\n", len(walkers))

	// 2. Run the simulation loop
	report := &Report{
		Duration:       *duration,
		Sessions:       len(walkers),
		Workers:        max(1, min(*workers, len(walkers))),
		Step:           *step,
		GCPauseMetrics: *gcPauseMetrics,
		GameOvers:      make(map[string]int),
		TickTime: Stats{
			Samples: make([]time.Duration, 0),
		},
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running simulation for %s on %d workers...\n", *duration, report.Workers)
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	startTime := time.Now()

	// Sessions are not safe for concurrent use, so each worker owns a disjoint
	// share of them and records into its own shard.
	shards := make([]*Report, report.Workers)
	g, ctx := errgroup.WithContext(ctx)
	for i := range shards {
		shard := &Report{GameOvers: make(map[string]int)}
		shards[i] = shard
		var owned []*walker
		for j := i; j < len(walkers); j += report.Workers {
			owned = append(owned, walkers[j])
		}
		g.Go(func() error { return runWorker(ctx, owned, *step, shard) })
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("Tick failed: %v", err)
	}
	for _, shard := range shards {
		report.Merge(shard)
	}

	report.TotalTime = time.Since(startTime)
	report.TickTime.Finalize()
	for _, w := range walkers {
		stats := w.session.Storage().CollectStats()
		report.Entities += stats.TotalEntityCount
	}
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Println("Simulation finished.")

	// 3. Generate Report to Console
	fmt.Println("\n\n--- Stress Test Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")

	log.Println("Stress test complete.")
}

func runWorker(ctx context.Context, walkers []*walker, step float64, shard *Report) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			for _, w := range walkers {
				tickStart := time.Now()
				if err := w.step(step, shard); err != nil {
					return err
				}
				shard.TickTime.Samples = append(shard.TickTime.Samples, time.Since(tickStart))
				shard.TotalTicks++
			}
		}
	}
}

// walker drives a session with a random walk and restarts it after every game over.
type walker struct {
	session *game.Session
	rng     *rand.Rand
	move    maze.Vec
	turnAt  float64
}

var directions = []maze.Vec{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {X: 1, Y: 1}, {X: -1, Y: -1}}

func newWalker(cfg game.Config) (*walker, error) {
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	session, err := game.NewSession(cfg, game.WithRand(rng))
	if err != nil {
		return nil, err
	}
	return &walker{session: session, rng: rng}, nil
}

func (w *walker) step(dt float64, report *Report) error {
	st := w.session.State()
	if st.Clock >= w.turnAt {
		w.move = directions[w.rng.IntN(len(directions))]
		w.turnAt = st.Clock + turnEvery
	}
	if err := w.session.Tick(dt, w.move); err != nil {
		return err
	}
	report.SimulatedTime += dt

	for _, e := range w.session.DrainEvents() {
		switch ev := e.(type) {
		case game.CollectibleCollected:
			report.PagesCollected++
		case game.HazardSpawned:
			report.BooksDropped++
		case game.LevelUp:
			report.LevelUps++
			report.MaxLevel = max(report.MaxLevel, ev.Level)
		case game.GameOver:
			report.GameOvers[ev.Reason.String()]++
			report.MaxLevel = max(report.MaxLevel, ev.Level)
		}
	}

	if w.session.State().Phase == game.PhaseGameOver {
		w.session.Restart()
		// The new level's events are not interesting.
		w.session.DrainEvents()
		w.turnAt = 0
	}
	return nil
}
