package main

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/plus3/shelfmaze/game"
	"github.com/plus3/shelfmaze/maze"
)

var (
	floorColor   = color.RGBA{245, 240, 228, 255}
	shelfColor   = color.RGBA{122, 84, 52, 255}
	shakingColor = color.RGBA{186, 120, 64, 255}
	pageColor    = color.RGBA{250, 250, 250, 255}
	pageEdge     = color.RGBA{90, 90, 90, 255}
	bookColor    = color.RGBA{160, 40, 40, 255}
	playerColor  = color.RGBA{60, 110, 200, 255}
	targetColor  = color.NRGBA{220, 60, 60, 90}
	hudColor     = color.RGBA{30, 30, 30, 255}
)

// camera maps world pixels (Y up, origin at the maze centre) to screen pixels
// with Focus in the middle of the screen.
type camera struct {
	Focus         maze.Vec
	Width, Height int
}

func (c camera) toScreen(p maze.Vec) (float32, float32) {
	return float32(float64(c.Width)/2 + p.X - c.Focus.X),
		float32(float64(c.Height)/2 - (p.Y - c.Focus.Y))
}

// visible reports whether a box of the given half size around p lands on screen.
func (c camera) visible(p maze.Vec, half float64) bool {
	x, y := c.toScreen(p)
	h := float32(half)
	return x+h >= 0 && y+h >= 0 && x-h <= float32(c.Width) && y-h <= float32(c.Height)
}

func drawWorld(screen *ebiten.Image, session *game.Session) {
	screen.Fill(floorColor)

	bounds := screen.Bounds()
	player := session.Player()
	cam := camera{Focus: player.Position, Width: bounds.Dx(), Height: bounds.Dy()}
	layout := session.Layout()
	size := float32(layout.TileSize)
	half := layout.TileSize / 2

	for _, shelf := range session.Shelves() {
		if !cam.visible(shelf.Position, half) {
			continue
		}
		x, y := cam.toScreen(shelf.Position)
		c := shelfColor
		if shelf.Shaking {
			c = shakingColor
		}
		vector.DrawFilledRect(screen, x-size/2, y-size/2, size, size, c, false)
	}

	for _, drop := range session.PendingDrops() {
		x, y := cam.toScreen(layout.TileToWorld(drop.Target))
		vector.DrawFilledRect(screen, x-size/2, y-size/2, size, size, targetColor, false)
	}

	pageSize := float32(session.Config().CollectibleRadius)
	for _, page := range session.Collectibles() {
		if !cam.visible(page.Position, half) {
			continue
		}
		x, y := cam.toScreen(page.Position)
		vector.DrawFilledRect(screen, x-pageSize/2, y-pageSize*0.65, pageSize, pageSize*1.3, pageColor, false)
		vector.StrokeRect(screen, x-pageSize/2, y-pageSize*0.65, pageSize, pageSize*1.3, 1, pageEdge, false)
	}

	bookRadius := float32(session.Config().Hazard.Radius)
	for _, book := range session.Hazards() {
		if !cam.visible(book.Position, half) {
			continue
		}
		x, y := cam.toScreen(book.Position)
		vector.DrawFilledCircle(screen, x, y, bookRadius, bookColor, true)
	}

	x, y := cam.toScreen(player.Position)
	radius := float32(session.Config().PlayerRadius)
	vector.DrawFilledCircle(screen, x, y, radius, playerColor, true)
	dx, dy := facingOffset(player.Facing)
	vector.DrawFilledCircle(screen, x+dx*radius*0.6, y+dy*radius*0.6, radius/4, color.White, true)
}

// facingOffset is a unit vector in screen space, Y down.
func facingOffset(f game.Facing) (float32, float32) {
	switch f {
	case game.FacingUp:
		return 0, -1
	case game.FacingLeft:
		return -1, 0
	case game.FacingRight:
		return 1, 0
	default:
		return 0, 1
	}
}

// hudLines is the status text drawn in the top-left corner.
func hudLines(st game.SessionState) []string {
	lines := []string{
		fmt.Sprintf("Level %d   Pages %d/%d   Time %.1f   Best %d", st.Level, st.Found, st.Total, st.Remaining(), st.HighScore),
	}
	switch {
	case st.Phase == game.PhaseGameOver && st.Reason == game.EndHit:
		lines = append(lines, "A falling book knocked you out. Press Space to restart.")
	case st.Phase == game.PhaseGameOver:
		lines = append(lines, "Out of time. Press Space to restart.")
	case st.Paused:
		lines = append(lines, "Paused. Press P to resume.")
	}
	return lines
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	face := &text.GoTextFace{Source: g.font, Size: 20}
	lineHeight := face.Size * 1.4

	for i, line := range hudLines(g.session.State()) {
		op := &text.DrawOptions{}
		op.GeoM.Translate(16, 12+float64(i)*lineHeight)
		op.ColorScale.ScaleWithColor(hudColor)
		text.Draw(screen, line, face, op)
	}
}
