package systems

import "gonum.org/v1/gonum/spatial/r2"

// ParticleSet is the view of the particle bodies the fluid solver works on.
// Positions are owned by whoever integrates the bodies; the solver only reads
// them and adds to velocities.
type ParticleSet interface {
	Len() int
	Position(i int) r2.Vec
	Mass(i int) float64
	AddVelocity(i int, dv r2.Vec)
}

// Particle is a plain fluid particle.
type Particle struct {
	Position r2.Vec
	Velocity r2.Vec
	Mass     float64
	Radius   float64
}

// Particles is a slice-backed ParticleSet.
type Particles []Particle

func (p Particles) Len() int                     { return len(p) }
func (p Particles) Position(i int) r2.Vec        { return p[i].Position }
func (p Particles) Mass(i int) float64           { return p[i].Mass }
func (p Particles) AddVelocity(i int, dv r2.Vec) { p[i].Velocity = r2.Add(p[i].Velocity, dv) }
