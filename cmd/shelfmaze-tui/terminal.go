package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/plus3/shelfmaze/game"
	"github.com/plus3/shelfmaze/maze"
)

// Terminals report key presses and repeats but never releases, so a direction
// counts as held until holdWindow passes without a repeat.
const holdWindow = 180 * time.Millisecond

type direction int

const (
	dirUp direction = iota
	dirDown
	dirLeft
	dirRight
)

type keyState struct {
	window time.Duration
	last   [4]time.Time
}

func newKeyState(window time.Duration) *keyState {
	return &keyState{window: window}
}

func (k *keyState) Press(d direction, now time.Time) {
	k.last[d] = now
}

func (k *keyState) held(d direction, now time.Time) bool {
	return !k.last[d].IsZero() && now.Sub(k.last[d]) < k.window
}

// Move returns the movement vector for the directions still held at now.
func (k *keyState) Move(now time.Time) maze.Vec {
	var move maze.Vec
	if k.held(dirLeft, now) {
		move.X--
	}
	if k.held(dirRight, now) {
		move.X++
	}
	if k.held(dirUp, now) {
		move.Y++
	}
	if k.held(dirDown, now) {
		move.Y--
	}
	return move
}

type terminal struct {
	screen    tcell.Screen
	session   *game.Session
	keys      *keyState
	listeners []game.Listener
	logger    *slog.Logger
}

func (t *terminal) run(frame time.Duration) error {
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				// Fini was called.
				return
			}
			events <- ev
		}
	}()

	last := time.Now()
	game.Dispatch(t.session.DrainEvents(), t.listeners...)
	for {
		select {
		case ev := <-events:
			if !t.handleInput(ev) {
				return nil
			}

		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if err := t.session.Tick(dt, t.keys.Move(now)); err != nil {
				return err
			}
			drained := t.session.DrainEvents()
			for _, e := range drained {
				if over, ok := e.(game.GameOver); ok {
					t.logger.Info("game over", "level", over.Level, "reason", over.Reason)
				}
			}
			game.Dispatch(drained, t.listeners...)
			t.draw()
		}
	}
}

// handleInput returns false when the player quits.
func (t *terminal) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		now := time.Now()
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			t.keys.Press(dirUp, now)
		case tcell.KeyDown:
			t.keys.Press(dirDown, now)
		case tcell.KeyLeft:
			t.keys.Press(dirLeft, now)
		case tcell.KeyRight:
			t.keys.Press(dirRight, now)
		case tcell.KeyEnter:
			t.session.Restart()
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case 'w':
				t.keys.Press(dirUp, now)
			case 's':
				t.keys.Press(dirDown, now)
			case 'a':
				t.keys.Press(dirLeft, now)
			case 'd':
				t.keys.Press(dirRight, now)
			case 'p':
				t.session.TogglePause()
			case ' ':
				t.session.Restart()
			}
		}
	case *tcell.EventResize:
		t.screen.Sync()
	}
	return true
}

var (
	floorStyle  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	shelfStyle  = tcell.StyleDefault.Foreground(tcell.ColorSaddleBrown).Background(tcell.ColorSaddleBrown)
	shakeStyle  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Background(tcell.ColorSaddleBrown)
	pageStyle   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	bookStyle   = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	targetStyle = tcell.StyleDefault.Foreground(tcell.ColorRed)
	playerStyle = tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true)
	hudStyle    = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

type cell struct {
	r     rune
	style tcell.Style
}

// viewport returns the tiles drawn on a terminal of the given size. Each tile
// is two columns wide and the view is centred on focus.
func viewport(focus maze.Tile, width, height int) (origin maze.Tile, cols, rows int) {
	cols, rows = width/2, height-2
	return maze.Tile{Col: focus.Col - cols/2, Row: focus.Row - rows/2}, cols, rows
}

// cells renders the current level keyed by tile. Later layers win: floor,
// shelves, drop targets, pages, books and finally the player.
func cells(session *game.Session) map[maze.Tile]cell {
	m := session.Maze()
	layout := session.Layout()
	out := make(map[maze.Tile]cell, m.Cols()*m.Rows())

	for _, tile := range m.OpenTiles() {
		out[tile] = cell{'.', floorStyle}
	}
	for _, shelf := range session.Shelves() {
		if shelf.Shaking {
			out[shelf.Tile] = cell{'%', shakeStyle}
		} else {
			out[shelf.Tile] = cell{'#', shelfStyle}
		}
	}
	for _, drop := range session.PendingDrops() {
		out[drop.Target] = cell{'!', targetStyle}
	}
	for _, page := range session.Collectibles() {
		out[page.Tile] = cell{'*', pageStyle}
	}
	for _, book := range session.Hazards() {
		out[layout.WorldToTile(book.Position)] = cell{'o', bookStyle}
	}
	out[session.Player().Tile] = cell{'@', playerStyle}
	return out
}

func (t *terminal) draw() {
	t.screen.Clear()
	width, height := t.screen.Size()

	st := t.session.State()
	status := fmt.Sprintf("Level %d  Pages %d/%d  Time %.1f  Best %d", st.Level, st.Found, st.Total, st.Remaining(), st.HighScore)
	switch {
	case st.Phase == game.PhaseGameOver:
		status += fmt.Sprintf("  GAME OVER (%s) space restarts", st.Reason)
	case st.Paused:
		status += "  PAUSED"
	}
	drawText(t.screen, 0, 0, status, hudStyle)

	grid := cells(t.session)
	origin, cols, rows := viewport(t.session.Player().Tile, width, height)
	for r := range rows {
		for c := range cols {
			tile := maze.Tile{Col: origin.Col + c, Row: origin.Row + r}
			cl, ok := grid[tile]
			if !ok {
				continue
			}
			t.screen.SetContent(c*2, r+2, cl.r, nil, cl.style)
			t.screen.SetContent(c*2+1, r+2, filler(cl.r), nil, cl.style)
		}
	}
	t.screen.Show()
}

// filler is the second column of a tile.
func filler(r rune) rune {
	if r == '#' || r == '%' {
		return r
	}
	return ' '
}

func drawText(s tcell.Screen, x, y int, text string, style tcell.Style) {
	for i, r := range []rune(text) {
		s.SetContent(x+i, y, r, nil, style)
	}
}
