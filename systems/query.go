package systems

import "gonum.org/v1/gonum/spatial/r2"

// Positioned is anything with indexed positions.
type Positioned interface {
	Len() int
	Position(i int) r2.Vec
}

// NearestParticle returns the particle closest to p within maxDist. Ties go
// to the lower index.
func NearestParticle(ps Positioned, p r2.Vec, maxDist float64) (int, bool) {
	best, bestDist := -1, maxDist
	for i := 0; i < ps.Len(); i++ {
		d := r2.Norm(r2.Sub(ps.Position(i), p))
		if d <= bestDist && (best < 0 || d < bestDist) {
			best, bestDist = i, d
		}
	}
	return best, best >= 0
}

// WithinRadius appends to dst every other particle closer than radius to
// particle i at the current positions. It scans the whole set and needs no
// grid, so it stays correct after the particles have moved.
func WithinRadius(ps Positioned, i int, radius float64, dst []int) []int {
	pi := ps.Position(i)
	for j := 0; j < ps.Len(); j++ {
		if j != i && r2.Norm(r2.Sub(ps.Position(j), pi)) < radius {
			dst = append(dst, j)
		}
	}
	return dst
}

// Neighbors appends to dst every other particle within the smoothing radius
// of particle i, using the grid from the current frame.
func (s *FluidSystem) Neighbors(ps ParticleSet, i int, dst []int) ([]int, error) {
	if err := s.checkBuilt(ps); err != nil {
		return dst, err
	}
	pi := ps.Position(i)
	h := s.kernel.Radius()
	for _, cell := range s.neighborCells(s.grid.CellOf(i)) {
		for _, j := range s.grid.Cell(cell) {
			if j == i {
				continue
			}
			if r2.Norm(r2.Sub(ps.Position(j), pi)) < h {
				dst = append(dst, j)
			}
		}
	}
	return dst, nil
}
