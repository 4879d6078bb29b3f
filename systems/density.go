package systems

import "gonum.org/v1/gonum/spatial/r2"

// Density returns the kernel-weighted mass sum around particle i using the
// current grid. The particle itself contributes Weight(0) * mass.
func (s *FluidSystem) Density(ps ParticleSet, i int) (float64, error) {
	if err := s.checkBuilt(ps); err != nil {
		return 0, err
	}
	return s.density(ps, i), nil
}

func (s *FluidSystem) density(ps ParticleSet, i int) float64 {
	pi := ps.Position(i)
	density := 0.0
	for _, cell := range s.neighborCells(s.grid.CellOf(i)) {
		for _, j := range s.grid.Cell(cell) {
			dist := r2.Norm(r2.Sub(ps.Position(j), pi))
			density += s.kernel.Weight(dist) * ps.Mass(j)
		}
	}
	return density
}

// ComputeDensities fills the density field for every particle. It must run
// after Rebuild and before any pressure query in the same frame.
func (s *FluidSystem) ComputeDensities(ps ParticleSet) error {
	if err := s.checkBuilt(ps); err != nil {
		return err
	}

	n := ps.Len()
	if cap(s.densities) < n {
		s.densities = make([]float64, n)
	}
	s.densities = s.densities[:n]
	for i := 0; i < n; i++ {
		s.densities[i] = s.density(ps, i)
	}

	s.phase = PhaseDensities
	return nil
}
