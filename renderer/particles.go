// Package renderer draws the fluid domain with raylib.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sph2d/renderer/colormap"
)

// Drawable is the particle state the renderer reads.
type Drawable interface {
	Len() int
	Position(i int) r2.Vec
	Velocity(i int) r2.Vec
	Radius(i int) float64
}

// ColorMode selects the scalar the particle colour encodes.
type ColorMode int

const (
	ColorBySpeed ColorMode = iota
	ColorByDensity
)

// ParticleRenderer draws particles as filled circles coloured by speed or
// density.
type ParticleRenderer struct {
	speed   *colormap.Map
	density *colormap.Map

	Mode ColorMode

	// MaxSpeed is the speed drawn at the hot end of the speed ramp.
	MaxSpeed float64
	// DensityLo and DensityHi bound the density ramp.
	DensityLo, DensityHi float64
}

// NewParticleRenderer builds the colour tables.
func NewParticleRenderer(maxSpeed float64) (*ParticleRenderer, error) {
	speed, err := colormap.NewHueRamp(240, 0, 256, 220)
	if err != nil {
		return nil, err
	}
	density, err := colormap.NewHueRamp(180, 300, 256, 220)
	if err != nil {
		return nil, err
	}
	return &ParticleRenderer{
		speed:     speed,
		density:   density,
		MaxSpeed:  maxSpeed,
		DensityLo: 0,
		DensityHi: 1,
	}, nil
}

// Draw renders every particle. densities may be shorter than ps when
// particles were added since the last density pass; those draw at the low end.
func (r *ParticleRenderer) Draw(ps Drawable, densities []float64) {
	for i := 0; i < ps.Len(); i++ {
		p := ps.Position(i)
		var c rl.Color
		switch r.Mode {
		case ColorByDensity:
			var rho float64
			if i < len(densities) {
				rho = densities[i]
			}
			c = r.density.Scaled(rho, r.DensityLo, r.DensityHi)
		default:
			v := ps.Velocity(i)
			c = r.speed.Scaled(math.Hypot(v.X, v.Y), 0, r.MaxSpeed)
		}
		rl.DrawCircleV(vec(p), float32(ps.Radius(i)), c)
	}
}

// DrawVelocities draws a line from each particle along its velocity, scaled
// by seconds.
func (r *ParticleRenderer) DrawVelocities(ps Drawable, seconds float64) {
	lineColor := rl.Color{R: 220, G: 220, B: 220, A: 140}
	for i := 0; i < ps.Len(); i++ {
		p := ps.Position(i)
		end := r2.Add(p, r2.Scale(seconds, ps.Velocity(i)))
		rl.DrawLineV(vec(p), vec(end), lineColor)
	}
}

// DrawWalls fills the four wall strips around the domain.
func DrawWalls(width, height, wall float64) {
	wallColor := rl.Color{R: 60, G: 70, B: 80, A: 255}
	w, h, t := float32(width), float32(height), float32(wall)
	rl.DrawRectangleRec(rl.Rectangle{X: 0, Y: 0, Width: w, Height: t}, wallColor)
	rl.DrawRectangleRec(rl.Rectangle{X: 0, Y: h - t, Width: w, Height: t}, wallColor)
	rl.DrawRectangleRec(rl.Rectangle{X: 0, Y: 0, Width: t, Height: h}, wallColor)
	rl.DrawRectangleRec(rl.Rectangle{X: w - t, Y: 0, Width: t, Height: h}, wallColor)
}

// GridGeometry is the part of the spatial grid needed to draw it.
type GridGeometry interface {
	Cols() int
	Rows() int
	CellSize() float64
}

// DrawGrid outlines the solver's cells, starting at origin.
func DrawGrid(g GridGeometry, origin float64) {
	lineColor := rl.Color{R: 80, G: 90, B: 100, A: 120}
	size := g.CellSize()
	x0, y0 := origin, origin
	x1 := origin + float64(g.Cols())*size
	y1 := origin + float64(g.Rows())*size
	for c := 0; c <= g.Cols(); c++ {
		x := x0 + float64(c)*size
		rl.DrawLineV(vec(r2.Vec{X: x, Y: y0}), vec(r2.Vec{X: x, Y: y1}), lineColor)
	}
	for row := 0; row <= g.Rows(); row++ {
		y := y0 + float64(row)*size
		rl.DrawLineV(vec(r2.Vec{X: x0, Y: y}), vec(r2.Vec{X: x1, Y: y}), lineColor)
	}
}

// DrawPointer draws the interaction ring with the smoothing radius. Attract
// mode draws green, repel red; an idle pointer is grey.
func DrawPointer(p r2.Vec, radius float64, active, attract bool) {
	c := rl.Color{R: 150, G: 150, B: 150, A: 120}
	if active {
		c = rl.Color{R: 230, G: 90, B: 90, A: 200}
		if attract {
			c = rl.Color{R: 90, G: 220, B: 120, A: 200}
		}
	}
	rl.DrawCircleLines(int32(p.X), int32(p.Y), float32(radius), c)
}

func vec(p r2.Vec) rl.Vector2 {
	return rl.Vector2{X: float32(p.X), Y: float32(p.Y)}
}
