package systems

import "errors"

// Solver precondition violations. Each one is a programming error in the
// caller's frame sequencing, never a transient condition.
var (
	ErrGridNotBuilt         = errors.New("fluid: grid not rebuilt this frame")
	ErrDensitiesStale       = errors.New("fluid: densities not computed for the current grid")
	ErrForcesApplied        = errors.New("fluid: pressure already applied this frame")
	ErrParticleCountChanged = errors.New("fluid: particle count changed since grid rebuild")
)
