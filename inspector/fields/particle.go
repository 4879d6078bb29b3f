package fields

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/sph2d/systems"
)

// Body is a particle set that also exposes the integrator's state.
type Body interface {
	systems.ParticleSet
	Velocity(i int) r2.Vec
	Radius(i int) float64
}

// ParticleInfo is what the inspector shows for one particle. Density,
// pressure and the pressure impulse come from the last completed solve;
// Solved is false when that solve did not include the particle (for example
// right after it was added). Neighbors counts particles within the smoothing
// radius at the current positions.
type ParticleInfo struct {
	Index     int
	Position  string  `inspect:"label"`
	Velocity  string  `inspect:"label"`
	Speed     float64 `inspect:"bar,max:500,name:Speed"`
	Mass      float64 `inspect:"label,fmt:%.0f"`
	Radius    float64 `inspect:"label,fmt:%.1f"`
	Solved    bool
	Density   float64 `inspect:"label,fmt:%.5f"`
	Pressure  float64 `inspect:"label,fmt:%.3f"`
	Force     string  `inspect:"label,name:Pressure dv"`
	Neighbors int
}

// Collect reads particle i from ps and fluid. It never advances the solver
// and never queries the grid, which is stale once the particles have moved.
func Collect(fluid *systems.FluidSystem, ps Body, i int) (ParticleInfo, error) {
	if i < 0 || i >= ps.Len() {
		return ParticleInfo{}, fmt.Errorf("particle %d out of range [0, %d)", i, ps.Len())
	}
	pos := ps.Position(i)
	vel := ps.Velocity(i)
	info := ParticleInfo{
		Index:     i,
		Position:  formatVec(pos, "%.1f"),
		Velocity:  formatVec(vel, "%.1f"),
		Speed:     math.Hypot(vel.X, vel.Y),
		Mass:      ps.Mass(i),
		Radius:    ps.Radius(i),
		Force:     "-",
		Neighbors: len(systems.WithinRadius(ps, i, fluid.Kernel().Radius(), nil)),
	}

	densities := fluid.LastDensities()
	if i >= len(densities) {
		return info, nil
	}
	info.Solved = true
	info.Density = densities[i]
	info.Pressure = fluid.EOS().Pressure(densities[i])
	if forces := fluid.LastForces(); i < len(forces) {
		info.Force = formatVec(forces[i], "%.2f")
	}
	return info, nil
}

func formatVec(v r2.Vec, verb string) string {
	return fmt.Sprintf("("+verb+", "+verb+")", v.X, v.Y)
}
