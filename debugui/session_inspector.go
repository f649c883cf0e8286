package debugui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/shelfmaze/game"
)

// SessionInspector shows the scalar state of a session and its hazards.
type SessionInspector struct {
	session *game.Session
}

func NewSessionInspector(session *game.Session) *SessionInspector {
	return &SessionInspector{session: session}
}

// countdownFraction is the share of the level countdown still left, in [0,1].
func countdownFraction(st game.SessionState) float32 {
	if st.Countdown <= 0 {
		return 0
	}
	return float32(st.Remaining() / st.Countdown)
}

func (si *SessionInspector) Render() {
	if !imgui.BeginV("Session", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	st := si.session.State()
	imgui.Text(fmt.Sprintf("Session: %s", st.ID))
	imgui.Text(fmt.Sprintf("Phase: %s", st.Phase))
	if st.Phase == game.PhaseGameOver {
		imgui.SameLine()
		imgui.Text(fmt.Sprintf("(%s)", st.Reason))
	}
	imgui.Text(fmt.Sprintf("Level %d  (%dx%d)", st.Level, st.Cols, st.Rows))
	imgui.Text(fmt.Sprintf("Pages: %d / %d", st.Found, st.Total))
	imgui.Text(fmt.Sprintf("High score: %d", st.HighScore))
	imgui.ProgressBarV(countdownFraction(st), imgui.NewVec2(-1, 0), fmt.Sprintf("%.1fs left", st.Remaining()))

	switch {
	case st.Phase == game.PhaseGameOver:
		if imgui.Button("Restart") {
			si.session.Restart()
		}
	case st.Paused:
		if imgui.Button("Resume") {
			si.session.Resume()
		}
	default:
		if imgui.Button("Pause") {
			si.session.Pause()
		}
	}

	p := si.session.Player()
	imgui.Separator()
	imgui.Text(fmt.Sprintf("Player: %s at (%.1f, %.1f) facing %s", p.Tile, p.Position.X, p.Position.Y, p.Facing))

	hazards := si.session.Hazards()
	if imgui.TreeNodeStr(fmt.Sprintf("Books (%d)", len(hazards))) {
		const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg
		if imgui.BeginTableV("HazardTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
			imgui.TableSetupColumn("Serial")
			imgui.TableSetupColumn("Shelf")
			imgui.TableSetupColumn("Target")
			imgui.TableSetupColumn("Left")
			imgui.TableHeadersRow()

			for _, h := range hazards {
				imgui.TableNextRow()
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%d", h.Serial))
				imgui.TableNextColumn()
				imgui.Text(h.Source.String())
				imgui.TableNextColumn()
				imgui.Text(h.Target.String())
				imgui.TableNextColumn()
				imgui.Text(fmt.Sprintf("%.1fs", h.Remaining))
			}
			imgui.EndTable()
		}
		imgui.TreePop()
	}

	drops := si.session.PendingDrops()
	if imgui.TreeNodeStr(fmt.Sprintf("Pending drops (%d)", len(drops))) {
		for _, d := range drops {
			imgui.BulletText(fmt.Sprintf("%s -> %s at %.2fs", d.Shelf, d.Target, d.FireAt))
		}
		imgui.TreePop()
	}

	imgui.End()
}
