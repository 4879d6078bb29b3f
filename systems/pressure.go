package systems

import "gonum.org/v1/gonum/spatial/r2"

// PressureForce returns the pressure impulse on particle i:
//
//	sum over j != i of shared(rho_i, rho_j) * (p_j - p_i)/d * Slope(d) * m_j / rho_j
//
// Neighbours with zero density or at zero distance are skipped. It fails with
// ErrDensitiesStale unless the density pass of the current grid has finished.
func (s *FluidSystem) PressureForce(ps ParticleSet, i int) (r2.Vec, error) {
	if err := s.checkBuilt(ps); err != nil {
		return r2.Vec{}, err
	}
	if s.phase < PhaseDensities {
		return r2.Vec{}, ErrDensitiesStale
	}
	return s.pressureForce(ps, i), nil
}

func (s *FluidSystem) pressureForce(ps ParticleSet, i int) r2.Vec {
	var force r2.Vec
	pi := ps.Position(i)
	rhoI := s.densities[i]
	h := s.kernel.Radius()

	for _, cell := range s.neighborCells(s.grid.CellOf(i)) {
		for _, j := range s.grid.Cell(cell) {
			if j == i {
				continue
			}
			rhoJ := s.densities[j]
			if rhoJ == 0 {
				s.guards.ZeroDensity++
				continue
			}

			delta := r2.Sub(ps.Position(j), pi)
			dist := r2.Norm(delta)
			if dist == 0 {
				s.guards.ZeroDistance++
				continue
			}
			if dist >= h {
				continue
			}

			dir := r2.Scale(1/dist, delta)
			scale := s.eos.SharedPressure(rhoI, rhoJ) * s.kernel.Slope(dist) * ps.Mass(j) / rhoJ
			force = r2.Add(force, r2.Scale(scale, dir))
		}
	}
	return force
}

// ApplyPressure computes the pressure impulse of every particle from the
// finalized densities, then adds each one to its particle's velocity. The
// impulse is added as is, not scaled by a timestep.
func (s *FluidSystem) ApplyPressure(ps ParticleSet) error {
	if err := s.checkBuilt(ps); err != nil {
		return err
	}
	switch s.phase {
	case PhaseGridBuilt:
		return ErrDensitiesStale
	case PhaseForces:
		return ErrForcesApplied
	}

	n := ps.Len()
	if cap(s.forces) < n {
		s.forces = make([]r2.Vec, n)
	}
	s.forces = s.forces[:n]
	for i := 0; i < n; i++ {
		s.forces[i] = s.pressureForce(ps, i)
	}
	for i, f := range s.forces {
		ps.AddVelocity(i, f)
	}

	s.phase = PhaseForces
	return nil
}
