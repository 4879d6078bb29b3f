package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// ParamValues are the solver settings exposed on the parameter panel.
type ParamValues struct {
	PressureMultiplier  float64
	TargetDensity       float64
	InteractionStrength float64
	Attract             bool
}

// PanelAction is a button pressed on the parameter panel.
type PanelAction int

const (
	ActionNone PanelAction = iota
	ActionToggleMode
	ActionResetRandom
	ActionResetOrganized
	ActionSnapshot
)

// Slider ranges. The two multipliers span several decades and slide in log10.
const (
	pressureLogMin, pressureLogMax = 0, 6
	strengthLogMin, strengthLogMax = 3, 9
	densityMin, densityMax         = 0, 5
)

// ParamPanel is the raygui side panel for live solver tuning.
type ParamPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool
}

// NewParamPanel creates a visible panel at (x, y).
func NewParamPanel(x, y, width int32) *ParamPanel {
	return &ParamPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
	}
}

// Toggle switches panel visibility.
func (p *ParamPanel) Toggle() bool {
	p.visible = !p.visible
	return p.visible
}

// SetPosition moves the panel.
func (p *ParamPanel) SetPosition(x, y int32) {
	p.x, p.y = x, y
}

// Bottom returns the panel's bottom edge, or its top when hidden.
func (p *ParamPanel) Bottom() int32 {
	if !p.visible {
		return p.y
	}
	return p.y + p.height()
}

// IsVisible returns whether the panel is shown.
func (p *ParamPanel) IsVisible() bool { return p.visible }

// height is the fixed panel height.
func (p *ParamPanel) height() int32 {
	const sliderBlock = 50
	const buttonRow = 36
	return p.renderer.Theme.Padding*2 + 24 + 3*sliderBlock + 2*buttonRow
}

// Contains reports whether the screen point lies on the visible panel, so
// clicks there are not taken as interaction toggles.
func (p *ParamPanel) Contains(x, y float32) bool {
	if !p.visible {
		return false
	}
	return rl.CheckCollisionPointRec(rl.Vector2{X: x, Y: y}, p.bounds())
}

func (p *ParamPanel) bounds() rl.Rectangle {
	return rl.Rectangle{X: float32(p.x), Y: float32(p.y), Width: float32(p.width), Height: float32(p.height())}
}

// Draw renders the panel and returns the possibly edited values and the
// button pressed this frame.
func (p *ParamPanel) Draw(v ParamValues) (ParamValues, PanelAction) {
	if !p.visible {
		return v, ActionNone
	}

	r := p.renderer
	r.DrawPanel(p.x, p.y, p.width, p.height())

	pad := float32(r.Theme.Padding)
	x := float32(p.x) + pad
	y := float32(p.y) + pad
	sliderW := float32(p.width) - 2*pad - 70

	rl.DrawText("Parameters", int32(x), int32(y), 16, rl.White)
	y += 24

	slider := func(label, value string, cur, lo, hi float32) float32 {
		rl.DrawText(label, int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
		y += 16
		next := gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: sliderW, Height: 20}, "", "", cur, lo, hi)
		rl.DrawText(value, int32(x+sliderW+8), int32(y+4), r.Theme.FontSize, r.Theme.ValueColor)
		y += 34
		return next
	}

	logP := float32(math.Log10(math.Max(v.PressureMultiplier, 1)))
	if next := slider("Pressure multiplier", fmt.Sprintf("%.3g", v.PressureMultiplier), logP, pressureLogMin, pressureLogMax); next != logP {
		v.PressureMultiplier = math.Pow(10, float64(next))
	}

	rho := float32(v.TargetDensity)
	if next := slider("Target density", fmt.Sprintf("%.2f", v.TargetDensity), rho, densityMin, densityMax); next != rho {
		v.TargetDensity = float64(next)
	}

	logS := float32(math.Log10(math.Max(v.InteractionStrength, 1)))
	if next := slider("Interaction strength", fmt.Sprintf("%.3g", v.InteractionStrength), logS, strengthLogMin, strengthLogMax); next != logS {
		v.InteractionStrength = math.Pow(10, float64(next))
	}

	action := ActionNone
	bw := (float32(p.width) - 2*pad - 8) / 2
	mode := "Mode: repel"
	if v.Attract {
		mode = "Mode: attract"
	}
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: bw, Height: 28}, mode) {
		action = ActionToggleMode
	}
	if gui.Button(rl.Rectangle{X: x + bw + 8, Y: y, Width: bw, Height: 28}, "Snapshot") {
		action = ActionSnapshot
	}
	y += 36
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: bw, Height: 28}, "Reset random") {
		action = ActionResetRandom
	}
	if gui.Button(rl.Rectangle{X: x + bw + 8, Y: y, Width: bw, Height: 28}, "Reset grid") {
		action = ActionResetOrganized
	}

	return v, action
}
