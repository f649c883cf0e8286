// Package debugui draws Dear ImGui inspector windows over a running session.
// Windows are ImguiItem entities in a storage of their own, rendered by ImguiSystem.
package debugui

import (
	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/shelfmaze/ecs"
	"github.com/plus3/shelfmaze/game"
)

// ImguiItem is a component that holds a Dear ImGui render function.
type ImguiItem struct {
	Render func()
}

// ImguiInputState tracks whether ImGui is consuming mouse or keyboard input.
type ImguiInputState struct {
	WantCaptureMouse    bool
	WantCaptureKeyboard bool
}

// ImguiSystem updates ImguiInputState and defers every ImguiItem render
// function to the end of the frame.
type ImguiSystem struct {
	Items      ecs.Query[struct{ *ImguiItem }]
	InputState ecs.Singleton[ImguiInputState]
}

func (i *ImguiSystem) Execute(frame *ecs.UpdateFrame) {
	state := i.InputState.Get()
	state.WantCaptureMouse = imgui.CurrentIO().WantCaptureMouse()
	state.WantCaptureKeyboard = imgui.CurrentIO().WantCaptureKeyboard()

	for item := range i.Items.Values() {
		frame.Commands.Defer(item.Render)
	}
}

// Overlay owns the inspector windows for one session. Update must run between
// the ImGui backend's BeginFrame and EndFrame.
type Overlay struct {
	storage   *ecs.Storage
	scheduler *ecs.Scheduler
	input     *ecs.Singleton[ImguiInputState]
	dt        float64
}

func NewOverlay(session *game.Session) *Overlay {
	registry := ecs.NewComponentRegistry()
	ecs.RegisterComponent[ImguiItem](registry)
	storage := ecs.NewStorage(registry)

	o := &Overlay{
		storage:   storage,
		scheduler: ecs.NewScheduler(storage),
		input:     ecs.NewSingleton[ImguiInputState](storage),
	}

	inspector := NewSessionInspector(session)
	entities := NewEntityInspector(session)
	stats := NewStatsWindow(120)

	storage.Spawn(ImguiItem{Render: inspector.Render})
	storage.Spawn(ImguiItem{Render: entities.Render})
	storage.Spawn(ImguiItem{Render: func() { stats.Render(session, o.dt) }})

	o.scheduler.Register(&ImguiSystem{})
	return o
}

func (o *Overlay) Update(dt float64) {
	o.dt = dt
	o.scheduler.Once(dt)
}

// WantsKeyboard reports whether ImGui consumed keyboard input last frame.
func (o *Overlay) WantsKeyboard() bool {
	return o.input.Get().WantCaptureKeyboard
}

func (o *Overlay) WantsMouse() bool {
	return o.input.Get().WantCaptureMouse
}
