package viewer

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/sph2d/config"
	"github.com/pthm-cable/sph2d/inspector"
	"github.com/pthm-cable/sph2d/renderer"
	"github.com/pthm-cable/sph2d/ui"
)

var colorBackground = rl.Color{R: 18, G: 20, B: 26, A: 255}

// Draw renders one frame.
func (v *Viewer) Draw() {
	g := v.game
	cfg := g.Config()
	ps := g.Particles()
	fluid := g.Fluid()

	rl.BeginDrawing()
	rl.ClearBackground(colorBackground)

	rl.BeginMode2D(v.camera2D())

	renderer.DrawWalls(cfg.Derived.DomainW, cfg.Derived.DomainH, cfg.Domain.WallThickness)
	if v.overlays.IsEnabled(ui.OverlayGrid) {
		renderer.DrawGrid(fluid.Grid(), cfg.Derived.Margin/2)
	}

	v.particles.Mode = renderer.ColorBySpeed
	if v.overlays.IsEnabled(ui.OverlayDensityColors) {
		v.particles.Mode = renderer.ColorByDensity
	}
	v.particles.DensityHi = 2 * cfg.SPH.TargetDensity
	v.particles.Draw(ps, fluid.LastDensities())

	if v.overlays.IsEnabled(ui.OverlayVelocity) {
		v.particles.DrawVelocities(ps, cfg.Derived.DT*4)
	}
	if v.overlays.IsEnabled(ui.OverlayPointer) || g.Interacting() {
		renderer.DrawPointer(g.Pointer(), cfg.SPH.SmoothingRadius, g.Interacting(),
			cfg.Interaction.Mode == config.InteractionAttract)
	}
	v.inspector.DrawSelectionHighlight(ps, cfg.SPH.SmoothingRadius)

	rl.EndMode2D()

	v.drawUI()

	rl.EndDrawing()
	g.RecordFrame()
}

// drawUI renders the screen-space panels and applies panel edits.
func (v *Viewer) drawUI() {
	g := v.game
	cfg := g.Config()
	stats, hasStats := g.LastStats()

	data := &ui.HUDData{
		Tick:           g.Tick(),
		SimTime:        float64(g.Tick()) * cfg.Derived.DT,
		Particles:      g.Particles().Len(),
		StepsPerUpdate: g.StepsPerUpdate(),
		Paused:         g.Paused(),
		Interacting:    g.Interacting(),
		Mode:           cfg.Interaction.Mode,
		Kernel:         cfg.SPH.KernelFamily,
		Stats:          stats,
		HasStats:       hasStats,
		Perf:           g.Perf(),
		ShowPerf:       v.overlays.IsEnabled(ui.OverlayPerf),
	}
	bottom := v.hud.Draw(10, 10, data)
	v.controls.SetPosition(10, bottom+10)
	v.controls.Draw(v.overlays)

	v.applyParams()
	v.inspector.SetPosition(v.screenWidth-inspector.PanelWidth-10, v.params.Bottom()+10)
	v.inspector.Draw()

	v.hud.DrawControls(v.screenHeight, controlsLegend)
}

// applyParams draws the parameter panel and pushes any edits to the game.
func (v *Viewer) applyParams() {
	g := v.game
	p := g.Params()
	cur := ui.ParamValues{
		PressureMultiplier:  p.PressureMultiplier,
		TargetDensity:       p.TargetDensity,
		InteractionStrength: p.InteractionStrength,
		Attract:             p.InteractionMode == config.InteractionAttract,
	}

	next, action := v.params.Draw(cur)
	if next != cur {
		p.PressureMultiplier = next.PressureMultiplier
		p.TargetDensity = next.TargetDensity
		p.InteractionStrength = next.InteractionStrength
		if err := g.SetParams(p); err != nil {
			slog.Warn("rejected parameter change", "error", err)
		}
	}

	switch action {
	case ui.ActionToggleMode:
		if err := g.ToggleInteractionMode(); err != nil {
			slog.Error("mode toggle failed", "error", err)
		}
	case ui.ActionResetRandom:
		v.reset(config.SpawnRandom)
	case ui.ActionResetOrganized:
		v.reset(config.SpawnOrganized)
	case ui.ActionSnapshot:
		v.snapshot()
	}
}
