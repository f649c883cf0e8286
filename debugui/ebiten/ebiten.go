// Package ebiten hosts the debug overlay inside an Ebiten game loop.
package ebiten

import (
	ebitenbackend "github.com/AllenDang/cimgui-go/backend/ebiten-backend"
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/shelfmaze/debugui"
	"github.com/plus3/shelfmaze/game"
)

// ImguiBackend wraps the Ebiten Dear ImGui backend.
type ImguiBackend struct {
	*ebitenbackend.EbitenBackend
}

// Host drives a debugui.Overlay from Ebiten's Update, Draw and Layout calls.
type Host struct {
	backend ImguiBackend
	overlay *debugui.Overlay
}

// NewHost creates the ImGui window and the overlay for session.
func NewHost(title string, width, height int, session *game.Session) *Host {
	backend := ebitenbackend.NewEbitenBackend()
	backend.CreateWindow(title, width, height)
	imgui.CurrentIO().SetIniFilename("")

	return &Host{
		backend: ImguiBackend{EbitenBackend: backend},
		overlay: debugui.NewOverlay(session),
	}
}

func (h *Host) Update(dt float64) {
	h.backend.BeginFrame()
	h.overlay.Update(dt)
	h.backend.EndFrame()
}

func (h *Host) Draw(screen *ebiten.Image) {
	h.backend.Draw(screen)
}

func (h *Host) Layout(width, height int) {
	h.backend.Layout(width, height)
}

// WantsKeyboard reports whether game keys should be ignored this frame.
func (h *Host) WantsKeyboard() bool {
	return h.overlay.WantsKeyboard()
}
