package viewer

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sph2d/config"
)

// pickRadius is how far from a particle, in domain units, a right click
// still selects it.
const pickRadius = 15

// handleInput processes keyboard and mouse input.
func (v *Viewer) handleInput() {
	v.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}

	g := v.game
	if rl.IsKeyPressed(rl.KeySpace) {
		paused := g.TogglePause()
		slog.Info("pause toggled", "paused", paused, "tick", g.Tick())
	}
	if rl.IsKeyPressed(rl.KeyN) && g.Paused() {
		if err := g.Step(); err != nil {
			slog.Error("single step failed", "error", err)
		}
	}

	// Steps-per-update control with < > keys (comma and period)
	if rl.IsKeyPressed(rl.KeyComma) {
		g.SetStepsPerUpdate(g.StepsPerUpdate() - 1)
	}
	if rl.IsKeyPressed(rl.KeyPeriod) {
		g.SetStepsPerUpdate(g.StepsPerUpdate() + 1)
	}

	if rl.IsKeyPressed(rl.KeyZ) {
		v.reset(config.SpawnRandom)
	}
	if rl.IsKeyPressed(rl.KeyX) {
		v.reset(config.SpawnOrganized)
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		v.params.Toggle()
	}
	if rl.IsKeyPressed(rl.KeyS) {
		v.snapshot()
	}

	v.overlays.HandleKeys()
	v.handleCameraInput()
	v.handleMouse()
}

// handleResize checks for window resize and propagates new dimensions.
func (v *Viewer) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := int32(rl.GetScreenWidth())
	h := int32(rl.GetScreenHeight())
	if w == v.screenWidth && h == v.screenHeight {
		return
	}
	v.screenWidth, v.screenHeight = w, h
	v.camera.Resize(float64(w), float64(h))
	v.params.SetPosition(w-270, 10)
}

// handleCameraInput processes camera pan/zoom controls.
func (v *Viewer) handleCameraInput() {
	const panSpeed = 8.0

	if rl.IsKeyDown(rl.KeyRight) {
		v.camera.Pan(panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyLeft) {
		v.camera.Pan(-panSpeed, 0)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.camera.Pan(0, panSpeed)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.camera.Pan(0, -panSpeed)
	}

	// Zoom toward the cursor
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		m := rl.GetMousePosition()
		v.camera.ZoomAt(float64(m.X), float64(m.Y), 1+float64(wheel)*0.1)
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.camera.ZoomBy(1.25)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.camera.ZoomBy(0.8)
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		v.camera.Reset()
	}
}

// handleMouse moves the interaction point, toggles interaction on left
// click, adds particles and picks particles for the inspector.
func (v *Viewer) handleMouse() {
	g := v.game
	m := rl.GetMousePosition()
	wx, wy := v.camera.ScreenToWorld(float64(m.X), float64(m.Y))
	g.SetPointer(wx, wy)

	if rl.IsKeyPressed(rl.KeyC) {
		i := g.AddParticle(wx, wy)
		slog.Info("particle added", "index", i, "x", wx, "y", wy)
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		switch {
		case v.inspector.HandleClick(m.X, m.Y):
		case v.params.Contains(m.X, m.Y):
		default:
			g.SetInteraction(!g.Interacting())
		}
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonRight) {
		if !v.inspector.Select(g.Particles(), r2.Vec{X: wx, Y: wy}, pickRadius) {
			v.inspector.Deselect()
		}
	}
}

func (v *Viewer) reset(pattern string) {
	if err := v.game.Reset(pattern); err != nil {
		slog.Error("reset failed", "pattern", pattern, "error", err)
		return
	}
	v.inspector.Deselect()
}

func (v *Viewer) snapshot() {
	path, err := v.game.SaveSnapshot("")
	if err != nil {
		slog.Error("snapshot failed", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path, "tick", v.game.Tick())
}
