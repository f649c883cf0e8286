package main

import (
	"bytes"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	debugui_ebiten "github.com/plus3/shelfmaze/debugui/ebiten"
	"github.com/plus3/shelfmaze/game"
	"github.com/plus3/shelfmaze/maze"
	"github.com/plus3/shelfmaze/spectate"
	"golang.org/x/image/font/gofont/goregular"
)

// Game adapts a session to ebiten's Update/Draw/Layout loop.
type Game struct {
	session   *game.Session
	hub       *spectate.Hub
	listeners []game.Listener
	debug     *debugui_ebiten.Host

	font      *text.GoTextFaceSource
	// sessionID is the ID last announced to the hub.
	sessionID string
	width     int
	height    int
}

func NewGame(session *game.Session, hub *spectate.Hub, listeners []game.Listener) (*Game, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("failed to load HUD font: %w", err)
	}
	return &Game{
		session:   session,
		hub:       hub,
		listeners: listeners,
		font:      src,
		width:     ScreenWidth,
		height:    ScreenHeight,
	}, nil
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	dt := 1.0 / float64(ebiten.TPS())
	keyboard := true
	if g.debug != nil {
		g.debug.Update(dt)
		keyboard = !g.debug.WantsKeyboard()
	}

	var move maze.Vec
	if keyboard {
		move = readMove()
		if inpututil.IsKeyJustPressed(ebiten.KeyP) {
			g.session.TogglePause()
		}
		if inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
			g.session.Restart()
		}
	}

	if err := g.session.Tick(dt, move); err != nil {
		return err
	}
	g.dispatch()
	return nil
}

// dispatch hands drained events to the listeners, tagging spectator frames
// with the current session ID.
func (g *Game) dispatch() {
	if g.hub != nil {
		if id := g.session.State().ID; id != g.sessionID {
			g.hub.SetSession(id)
			g.sessionID = id
		}
	}
	game.Dispatch(g.session.DrainEvents(), g.listeners...)
}

func readMove() maze.Vec {
	var move maze.Vec
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) || ebiten.IsKeyPressed(ebiten.KeyA) {
		move.X--
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) || ebiten.IsKeyPressed(ebiten.KeyD) {
		move.X++
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) || ebiten.IsKeyPressed(ebiten.KeyW) {
		move.Y++
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) || ebiten.IsKeyPressed(ebiten.KeyS) {
		move.Y--
	}
	return move
}

func (g *Game) Draw(screen *ebiten.Image) {
	drawWorld(screen, g.session)
	g.drawHUD(screen)
	if g.debug != nil {
		g.debug.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	if g.debug != nil {
		g.debug.Layout(outsideWidth, outsideHeight)
	}
	return outsideWidth, outsideHeight
}
