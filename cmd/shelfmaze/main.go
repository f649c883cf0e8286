package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/shelfmaze/audio"
	debugui_ebiten "github.com/plus3/shelfmaze/debugui/ebiten"
	"github.com/plus3/shelfmaze/game"
	"github.com/plus3/shelfmaze/spectate"
	"github.com/plus3/shelfmaze/store"
)

const (
	ScreenWidth  = 1280
	ScreenHeight = 720
)

func main() {
	configPath := flag.String("config", "", "YAML file overriding the default game settings.")
	seed := flag.Uint64("seed", 0, "Maze seed. Zero picks a random one.")
	dsn := flag.String("store", "highscore.json", "High score store: a JSON file path or a postgres:// URL. Empty keeps it in memory.")
	spectateAddr := flag.String("spectate", "", "Serve spectator websockets on this address, e.g. :8080.")
	debug := flag.Bool("debug", false, "Show the ImGui debug overlay.")
	mute := flag.Bool("mute", false, "Disable sound.")
	verbose := flag.Bool("v", false, "Log debug messages.")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(logger, options{
		configPath:   *configPath,
		seed:         *seed,
		dsn:          *dsn,
		spectateAddr: *spectateAddr,
		debug:        *debug,
		mute:         *mute,
	}); err != nil {
		logger.Error("shelfmaze exited", "error", err)
		os.Exit(1)
	}
}

type options struct {
	configPath   string
	seed         uint64
	dsn          string
	spectateAddr string
	debug        bool
	mute         bool
}

func run(logger *slog.Logger, opts options) error {
	cfg := game.DefaultConfig()
	if opts.configPath != "" {
		loaded, err := game.LoadConfig(opts.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if opts.seed != 0 {
		cfg.Seed = opts.seed
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	scores, err := store.Open(ctx, opts.dsn)
	if err != nil {
		cancel()
		return err
	}
	best, err := scores.Load(ctx)
	cancel()
	if err != nil {
		logger.Warn("failed to load high score, starting from zero", "error", err)
		best = 0
	}
	defer scores.Close()
	persister := store.NewPersister(scores, logger)
	defer persister.Close()

	session, err := game.NewSession(cfg, game.WithHighScore(best))
	if err != nil {
		return err
	}

	player := audio.New(audio.Options{Silent: opts.mute, Logger: logger})
	if err := player.Start(); err != nil {
		logger.Warn("audio unavailable", "error", err)
	}
	defer player.Close()

	listeners := []game.Listener{
		player,
		persister,
		eventLogger(logger),
	}

	var hub *spectate.Hub
	if opts.spectateAddr != "" {
		hub = spectate.NewHub(spectate.Options{Logger: logger})
		hub.SetHighScore(best)
		listeners = append(listeners, hub)

		srv := &http.Server{Addr: opts.spectateAddr, Handler: hub.Router()}
		go func() {
			logger.Info("spectator server listening", "addr", opts.spectateAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("spectator server failed", "error", err)
			}
		}()
		defer func() {
			hub.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	ebiten.SetWindowSize(ScreenWidth, ScreenHeight)
	ebiten.SetWindowTitle("Shelf Maze")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g, err := NewGame(session, hub, listeners)
	if err != nil {
		return err
	}
	if opts.debug {
		g.debug = debugui_ebiten.NewHost("Shelf Maze", ScreenWidth, ScreenHeight, session)
	}

	// Events from the first level were emitted before the loop started.
	g.dispatch()

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	logger.Info("bye", "level", session.State().Level, "high_score", session.State().HighScore)
	return nil
}

// eventLogger records the milestones of a session.
func eventLogger(logger *slog.Logger) game.Listener {
	logger = logger.With("component", "session")
	return game.ListenerFunc(func(e game.Event) {
		switch ev := e.(type) {
		case game.MazeBuilt:
			logger.Info("maze built", "level", ev.Level, "cols", ev.Maze.Cols(), "rows", ev.Maze.Rows(), "countdown", ev.Countdown)
		case game.LevelUp:
			logger.Info("level up", "level", ev.Level)
		case game.GameOver:
			logger.Info("game over", "level", ev.Level, "reason", ev.Reason, "high_score", ev.HighScore, "new", ev.NewHighScore)
		case game.HazardSpawned:
			logger.Debug("book falling", "serial", ev.Serial, "target", ev.Target)
		}
	})
}
