package systems

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sph2d/config"
)

// Interaction is the pointer impulse applied while the user holds interaction on.
type Interaction struct {
	Mode     string
	Strength float64
}

// NewInteraction validates mode and returns the interaction settings.
func NewInteraction(mode string, strength float64) (Interaction, error) {
	switch mode {
	case config.InteractionRepel, config.InteractionAttract:
		return Interaction{Mode: mode, Strength: strength}, nil
	}
	return Interaction{}, fmt.Errorf("unknown interaction mode %q", mode)
}

// sign is +1 for repel: Slope is negative inside the support, so subtracting
// dir*Slope pushes particles away from the pointer.
func (in Interaction) sign() float64 {
	if in.Mode == config.InteractionAttract {
		return -1
	}
	return 1
}

// ApplyInteraction pushes particles in the 3x3 neighbourhood of the pointer's
// cell, weighted by the kernel slope at their distance from the pointer. A
// particle exactly under the pointer is left alone. Returns how many particles
// received a non-zero impulse.
func (s *FluidSystem) ApplyInteraction(ps ParticleSet, pointer r2.Vec) (int, error) {
	if err := s.checkBuilt(ps); err != nil {
		return 0, err
	}

	strength := s.interaction.Strength * s.interaction.sign()
	touched := 0
	for _, cell := range s.neighborCells(s.grid.CellAt(pointer)) {
		for _, i := range s.grid.Cell(cell) {
			delta := r2.Sub(ps.Position(i), pointer)
			dist := r2.Norm(delta)
			if dist == 0 {
				s.guards.ZeroDistance++
				continue
			}
			if !(dist < s.kernel.Radius()) { // also rejects a NaN pointer
				continue
			}
			slope := s.kernel.Slope(dist)
			dir := r2.Scale(1/dist, delta)
			ps.AddVelocity(i, r2.Scale(-slope*strength, dir))
			touched++
		}
	}
	return touched, nil
}
