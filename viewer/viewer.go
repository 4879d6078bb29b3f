// Package viewer runs a game in a raylib window: it owns the camera, the
// input handling and all drawing.
package viewer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sph2d/camera"
	"github.com/pthm-cable/sph2d/game"
	"github.com/pthm-cable/sph2d/inspector"
	"github.com/pthm-cable/sph2d/renderer"
	"github.com/pthm-cable/sph2d/ui"
)

// defaultMaxSpeed is the top of the speed colour ramp when the integrator
// has no speed cap.
const defaultMaxSpeed = 500

const controlsLegend = "[Space] pause  [N] step  [Click] interact  [Z/X] reset  [C] add  [S] snapshot  [Tab] panel  [</>] speed  [RMB] inspect  [Home] camera"

// Viewer draws a game and feeds it window input.
type Viewer struct {
	game *game.Game

	camera    *camera.Camera
	particles *renderer.ParticleRenderer
	hud       *ui.HUD
	controls  *ui.ControlsPanel
	params    *ui.ParamPanel
	overlays  *ui.OverlayRegistry
	inspector *inspector.Inspector

	screenWidth, screenHeight int32
}

// New creates a viewer for g. The raylib window must already be open.
func New(g *game.Game) (*Viewer, error) {
	cfg := g.Config()

	maxSpeed := cfg.Physics.MaxSpeed
	if maxSpeed <= 0 {
		maxSpeed = defaultMaxSpeed
	}
	pr, err := renderer.NewParticleRenderer(maxSpeed)
	if err != nil {
		return nil, err
	}
	pr.DensityHi = 2 * cfg.SPH.TargetDensity

	w := int32(rl.GetScreenWidth())
	h := int32(rl.GetScreenHeight())

	v := &Viewer{
		game:         g,
		camera:       camera.New(float64(w), float64(h), cfg.Derived.DomainW, cfg.Derived.DomainH),
		particles:    pr,
		hud:          ui.NewHUD(),
		controls:     ui.NewControlsPanel(10, 0, 240),
		params:       ui.NewParamPanel(w-270, 10, 260),
		overlays:     ui.NewOverlayRegistry(),
		inspector:    inspector.NewInspector(w-inspector.PanelWidth-10, 10),
		screenWidth:  w,
		screenHeight: h,
	}
	return v, nil
}

// Update handles input and advances the game by one frame.
func (v *Viewer) Update() error {
	v.handleInput()
	if err := v.game.Update(); err != nil {
		return err
	}
	v.inspector.Update(v.game.Fluid(), v.game.Particles())
	return nil
}

// camera2D converts the domain camera to raylib's.
func (v *Viewer) camera2D() rl.Camera2D {
	return rl.Camera2D{
		Offset: rl.Vector2{X: float32(v.camera.ViewportW / 2), Y: float32(v.camera.ViewportH / 2)},
		Target: rl.Vector2{X: float32(v.camera.X), Y: float32(v.camera.Y)},
		Zoom:   float32(v.camera.Zoom),
	}
}
