// Package inspector shows the solver state of a single selected particle.
package inspector

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sph2d/inspector/fields"
	"github.com/pthm-cable/sph2d/systems"
)

// Panel dimensions
const (
	PanelWidth   = 300
	PanelPadding = 10
	HeaderHeight = 30
	rowHeight    = 18
)

// Panel colors
var (
	ColorPanelBg     = rl.Color{R: 30, G: 30, B: 35, A: 240}
	ColorPanelHeader = rl.Color{R: 45, G: 45, B: 55, A: 255}
	ColorPanelBorder = rl.Color{R: 70, G: 70, B: 80, A: 255}
	ColorHeaderText  = rl.Color{R: 255, G: 255, B: 255, A: 255}
	ColorCloseBtn    = rl.Color{R: 180, G: 80, B: 80, A: 255}
)

// Inspector manages particle selection and panel rendering. Selection is by
// index, so it is dropped whenever the particle set shrinks below it.
type Inspector struct {
	selected    int
	hasSelected bool
	panelX      int32
	panelY      int32

	info      fields.ParticleInfo
	neighbors []int
}

// NewInspector creates an inspector whose panel has its top-left corner at
// (x, y).
func NewInspector(x, y int32) *Inspector {
	return &Inspector{panelX: x, panelY: y}
}

// SetPosition moves the panel.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.panelX, ins.panelY = x, y
}

// Select picks the particle nearest to p within pickRadius. It returns false
// and keeps the previous selection when nothing is close enough.
func (ins *Inspector) Select(ps systems.Positioned, p r2.Vec, pickRadius float64) bool {
	i, ok := systems.NearestParticle(ps, p, pickRadius)
	if !ok {
		return false
	}
	ins.selected = i
	ins.hasSelected = true
	slog.Debug("particle selected", "index", i)
	return true
}

// Deselect clears the current selection.
func (ins *Inspector) Deselect() {
	ins.hasSelected = false
	ins.neighbors = ins.neighbors[:0]
}

// Selected returns the index of the selected particle.
func (ins *Inspector) Selected() (int, bool) {
	return ins.selected, ins.hasSelected
}

// PanelContains reports whether a screen point is over the open panel.
func (ins *Inspector) PanelContains(mx, my float32) bool {
	if !ins.hasSelected {
		return false
	}
	return int32(mx) >= ins.panelX && int32(mx) <= ins.panelX+PanelWidth &&
		int32(my) >= ins.panelY && int32(my) <= ins.panelY+ins.panelHeight()
}

// HandleClick processes a left click on the panel. It returns true when the
// click was consumed.
func (ins *Inspector) HandleClick(mx, my float32) bool {
	if !ins.PanelContains(mx, my) {
		return false
	}
	closeX := ins.panelX + PanelWidth - 25
	closeY := ins.panelY + 5
	if int32(mx) >= closeX && int32(mx) <= closeX+20 &&
		int32(my) >= closeY && int32(my) <= closeY+20 {
		ins.Deselect()
	}
	return true
}

// Update refreshes the cached particle data. Call it once per frame after
// the simulation has stepped.
func (ins *Inspector) Update(fluid *systems.FluidSystem, ps fields.Body) {
	if !ins.hasSelected {
		return
	}
	if ins.selected >= ps.Len() {
		ins.Deselect()
		return
	}
	info, err := fields.Collect(fluid, ps, ins.selected)
	if err != nil {
		slog.Warn("inspector collect failed", "index", ins.selected, "error", err)
		ins.Deselect()
		return
	}
	ins.info = info
	ins.neighbors = systems.WithinRadius(ps, ins.selected, fluid.Kernel().Radius(), ins.neighbors[:0])
}

func (ins *Inspector) panelHeight() int32 {
	rows := int32(len(fields.Extract(&ins.info)))
	return HeaderHeight + 2*PanelPadding + rows*rowHeight
}

// Draw renders the inspector panel if a particle is selected. It must be
// called in screen space.
func (ins *Inspector) Draw() {
	if !ins.hasSelected {
		return
	}

	fs := fields.Extract(&ins.info)
	panelHeight := ins.panelHeight()

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, panelHeight, ColorPanelBg)
	rl.DrawRectangleLinesEx(
		rl.Rectangle{X: float32(ins.panelX), Y: float32(ins.panelY), Width: PanelWidth, Height: float32(panelHeight)},
		1,
		ColorPanelBorder,
	)

	rl.DrawRectangle(ins.panelX, ins.panelY, PanelWidth, HeaderHeight, ColorPanelHeader)
	rl.DrawText("PARTICLE", ins.panelX+PanelPadding, ins.panelY+7, 16, ColorHeaderText)

	closeX := ins.panelX + PanelWidth - 25
	closeY := ins.panelY + 5
	rl.DrawRectangle(closeX, closeY, 20, 20, ColorCloseBtn)
	rl.DrawText("X", closeX+6, closeY+3, 14, rl.White)

	y := ins.panelY + HeaderHeight + PanelPadding
	x := ins.panelX + PanelPadding
	for _, f := range fs {
		y += DrawField(x, y, f)
	}
}

// DrawSelectionHighlight rings the selected particle and its neighbours. It
// must be called in world space.
func (ins *Inspector) DrawSelectionHighlight(ps fields.Body, smoothingRadius float64) {
	if !ins.hasSelected || ins.selected >= ps.Len() {
		return
	}
	for _, j := range ins.neighbors {
		if j >= ps.Len() {
			continue
		}
		p := ps.Position(j)
		rl.DrawCircleLines(int32(p.X), int32(p.Y), float32(ps.Radius(j)+2), ColorNeighbor)
	}

	p := ps.Position(ins.selected)
	rl.DrawCircleLines(int32(p.X), int32(p.Y), float32(ps.Radius(ins.selected)*1.8), ColorSelected)
	rl.DrawCircleLines(int32(p.X), int32(p.Y), float32(smoothingRadius), ColorNeighbor)
}
