// Command shelfmaze-tui plays the shelf maze in a terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/plus3/shelfmaze/game"
	"github.com/plus3/shelfmaze/store"
)

func main() {
	configPath := flag.String("config", "", "YAML file overriding the default game settings.")
	seed := flag.Uint64("seed", 0, "Maze seed. Zero picks a random one.")
	dsn := flag.String("store", "highscore.json", "High score store: a JSON file path or a postgres:// URL. Empty keeps it in memory.")
	logPath := flag.String("log", "", "Write logs to this file. The terminal is busy drawing the maze.")
	fps := flag.Int("fps", 30, "Frames per second.")
	flag.Parse()

	var out io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, "failed to open log file:", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	logger := slog.New(slog.NewTextHandler(out, nil))
	slog.SetDefault(logger)

	if err := run(logger, *configPath, *seed, *dsn, *fps); err != nil {
		logger.Error("shelfmaze-tui exited", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, configPath string, seed uint64, dsn string, fps int) error {
	cfg := game.DefaultConfig()
	if configPath != "" {
		loaded, err := game.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if fps <= 0 {
		fps = 30
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	scores, err := store.Open(ctx, dsn)
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

	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	t := &terminal{
		screen:    screen,
		session:   session,
		keys:      newKeyState(holdWindow),
		listeners: []game.Listener{persister},
		logger:    logger.With("component", "tui"),
	}
	return t.run(time.Second / time.Duration(fps))
}
